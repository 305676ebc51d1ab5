package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// Las referencias cruzadas entre organizaciones responden ErrNotFound, igual que
// un recurso inexistente, para no filtrar existencia entre tenants.
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInvalidTransition = errors.New("transición de estado no permitida")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrSKUImmutable      = errors.New("el SKU no puede cambiar: tiene movimientos registrados")
)
