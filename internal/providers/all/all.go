// Package all registra todos los providers del catálogo.
package all

import (
	_ "github.com/dropDatabas3/authgate/internal/providers/apple"
	_ "github.com/dropDatabas3/authgate/internal/providers/facebook"
	_ "github.com/dropDatabas3/authgate/internal/providers/github"
	_ "github.com/dropDatabas3/authgate/internal/providers/google"
	_ "github.com/dropDatabas3/authgate/internal/providers/microsoft"
)
