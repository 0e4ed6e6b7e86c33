package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError define la estructura estándar para errores de authgate.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	HTTPStatus int    `json:"-"` // No se serializa, usado para el header
	Err        error  `json:"-"` // Causa original, sólo para logs
}

// Error implementa la interfaz error
func (e *AppError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap permite acceder al error original
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is compara por Code, así errors.Is(err, ErrDuplicateProvider) funciona
// aunque err sea una copia con Detail/Err.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New crea un nuevo AppError
func New(status int, code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: status,
	}
}

// FromError intenta convertir un error genérico en un AppError.
// Si no es un AppError, devuelve un error interno genérico conservando el error original.
func FromError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return ErrInternalServerError.WithCause(err)
}

// WithDetail devuelve una COPIA del error con detalle adicional.
func (e *AppError) WithDetail(detail string) *AppError {
	newErr := *e
	newErr.Detail = detail
	return &newErr
}

// WithDetailf es WithDetail con formato printf.
func (e *AppError) WithDetailf(format string, args ...any) *AppError {
	return e.WithDetail(fmt.Sprintf(format, args...))
}

// WithCause devuelve una COPIA del error con la causa original.
func (e *AppError) WithCause(err error) *AppError {
	newErr := *e
	newErr.Err = err
	return &newErr
}

// IsConfiguration indica si err es un error de configuración (fatal al arrancar).
func IsConfiguration(err error) bool {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return false
	}
	switch appErr.Code {
	case ErrConfiguration.Code, ErrDuplicateProvider.Code, ErrMissingProviderField.Code, ErrMissingSecret.Code:
		return true
	}
	return false
}

// =================================================================================
// ERRORES DE CONFIGURACIÓN
// Fatales al arrancar; nunca se degradan a un default silencioso.
// =================================================================================

var (
	ErrConfiguration = &AppError{
		Code:       "CONFIGURATION_ERROR",
		Message:    "La configuración de autenticación es inválida.",
		HTTPStatus: http.StatusInternalServerError,
	}

	ErrDuplicateProvider = &AppError{
		Code:       "DUPLICATE_PROVIDER",
		Message:    "Dos providers comparten el mismo id.",
		HTTPStatus: http.StatusInternalServerError,
	}

	ErrMissingProviderField = &AppError{
		Code:       "MISSING_PROVIDER_FIELD",
		Message:    "Falta un campo requerido en la configuración del provider.",
		HTTPStatus: http.StatusInternalServerError,
	}

	ErrMissingSecret = &AppError{
		Code:       "NO_SECRET",
		Message:    "No se configuró un secret y el modo estricto está activo.",
		HTTPStatus: http.StatusInternalServerError,
	}
)

// =================================================================================
// ERRORES DE REQUEST
// =================================================================================

var (
	ErrUnknownAction = &AppError{
		Code:       "UNKNOWN_ACTION",
		Message:    "La acción solicitada no existe.",
		HTTPStatus: http.StatusNotFound,
	}

	ErrMethodNotAllowed = &AppError{
		Code:       "METHOD_NOT_ALLOWED",
		Message:    "Método HTTP no permitido para esta acción.",
		HTTPStatus: http.StatusMethodNotAllowed,
	}

	ErrCSRFTokenInvalid = &AppError{
		Code:       "INVALID_CSRF_TOKEN",
		Message:    "CSRF token faltante o inválido.",
		HTTPStatus: http.StatusForbidden,
	}

	ErrProviderNotFound = &AppError{
		Code:       "PROVIDER_NOT_FOUND",
		Message:    "El provider solicitado no está configurado.",
		HTTPStatus: http.StatusNotFound,
	}

	ErrSignInRejected = &AppError{
		Code:       "SIGNIN_REJECTED",
		Message:    "El inicio de sesión fue rechazado.",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrVerificationTokenInvalid = &AppError{
		Code:       "VERIFICATION_TOKEN_INVALID",
		Message:    "El link de verificación es inválido o expiró.",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrRateLimitExceeded = &AppError{
		Code:       "RATE_LIMIT_EXCEEDED",
		Message:    "Demasiados intentos. Probá de nuevo más tarde.",
		HTTPStatus: http.StatusTooManyRequests,
	}

	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "La solicitud contiene parámetros inválidos o faltantes.",
		HTTPStatus: http.StatusBadRequest,
	}
)

// =================================================================================
// ERRORES DE SERVIDOR
// =================================================================================

var (
	ErrNotImplemented = &AppError{
		Code:       "NOT_IMPLEMENTED",
		Message:    "Esta operación no está soportada por el servidor.",
		HTTPStatus: http.StatusNotImplemented,
	}

	ErrInternalServerError = &AppError{
		Code:       "INTERNAL_SERVER_ERROR",
		Message:    "Ocurrió un error interno inesperado.",
		HTTPStatus: http.StatusInternalServerError,
	}
)
