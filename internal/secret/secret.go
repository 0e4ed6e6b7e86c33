// Package secret deriva la clave de la aplicación a partir del secret configurado
// y el origen (base URL + base path) del servicio.
//
// La misma Material firma los JWT de sesión y keyea el hash del CSRF token:
// un único secret, varios usos derivados.
package secret

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	apperrors "github.com/dropDatabas3/authgate/internal/errors"
	"github.com/dropDatabas3/authgate/internal/observability/logger"
	"go.uber.org/zap"
	"golang.org/x/crypto/hkdf"
)

const keySize = 32

// Input agrupa lo necesario para derivar la clave.
type Input struct {
	// Secret configurado por el usuario (puede venir vacío).
	Secret string
	// BaseURL y BasePath namespacean la clave derivada.
	BaseURL  string
	BasePath string
	// Fallback es el default provisto por la aplicación cuando Secret está vacío.
	Fallback string
	// Strict rechaza la ausencia de Secret en lugar de usar el fallback.
	Strict bool
}

// Material es la clave derivada. El zero value no es utilizable.
type Material struct {
	key []byte
	// Default indica que la clave no vino de un secret configurado.
	Default bool
}

// Derive calcula la Material para in. Sólo falla cuando Strict está activo y no hay
// Secret; en modo no estricto un secret ausente es una advertencia (NO_SECRET).
func Derive(log *zap.Logger, in Input) (Material, error) {
	log = logger.OrNop(log)

	ikm := strings.TrimSpace(in.Secret)
	usedDefault := false
	if ikm == "" {
		if in.Strict {
			return Material{}, apperrors.ErrMissingSecret
		}
		usedDefault = true
		ikm = strings.TrimSpace(in.Fallback)
		if ikm == "" {
			sum := sha256.Sum256([]byte(in.BaseURL + "\x00" + in.BasePath))
			ikm = hex.EncodeToString(sum[:])
		}
		log.Warn("no secret configured, using a default derived secret; set AUTH_SECRET in production",
			logger.Code("NO_SECRET"),
			logger.BaseURL(in.BaseURL),
		)
	}

	r := hkdf.New(sha256.New, []byte(ikm), []byte(in.BaseURL+in.BasePath), []byte("authgate/v1"))
	key := make([]byte, keySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return Material{}, fmt.Errorf("secret: hkdf: %w", err)
	}
	return Material{key: key, Default: usedDefault}, nil
}

// FromBytes arma una Material a partir de una clave ya derivada.
func FromBytes(key []byte) Material {
	k := make([]byte, len(key))
	copy(k, key)
	return Material{key: k}
}

// Bytes devuelve una copia de la clave.
func (m Material) Bytes() []byte {
	k := make([]byte, len(m.key))
	copy(k, m.key)
	return k
}

// IsZero indica si la Material no fue derivada.
func (m Material) IsZero() bool { return len(m.key) == 0 }

// Sum devuelve HMAC-SHA256(clave, purpose|data) en hex.
func (m Material) Sum(purpose, data string) string {
	mac := hmac.New(sha256.New, m.key)
	mac.Write([]byte(purpose))
	mac.Write([]byte{0})
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify compara en tiempo constante sum contra Sum(purpose, data).
func (m Material) Verify(purpose, data, sum string) bool {
	if m.IsZero() {
		return false
	}
	return hmac.Equal([]byte(m.Sum(purpose, data)), []byte(sum))
}
