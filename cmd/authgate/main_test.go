package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecretCommand(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"secret", "--bytes", "16"})
	require.NoError(t, root.Execute())

	s := strings.TrimSpace(out.String())
	assert.Len(t, s, 22, "16 bytes base64url sin padding")
}

func TestCheckCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "authgate.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
auth:
  url: http://localhost:3000/api/auth
  secret: s3cret
adapter:
  driver: memory
providers:
  - kind: github
    client_id: gh
    client_secret: shh
`), 0o600))

	require.NoError(t, run(context.Background(), "check", "--config", path))
}

func TestCheckCommand_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "authgate.yaml")
	require.NoError(t, os.WriteFile(path, []byte("adapter:\n  driver: mongo\n"), 0o600))

	assert.Error(t, run(context.Background(), "check", "--config", path))
}

func run(ctx context.Context, args ...string) error {
	root := newRootCmd()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}
