package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrForbidden         = errors.New("operación no permitida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrInsufficientStock = errors.New("stock insuficiente")
)
