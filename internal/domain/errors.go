package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrAccountNotFound    = errors.New("cuenta no encontrada")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConfirmRequired    = errors.New("la operación requiere confirmación explícita")
	ErrSessionNotFound    = errors.New("sesión no encontrada")
)
