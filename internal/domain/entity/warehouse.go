package entity

import "time"

// Warehouse representa una bodega física o lógica donde se almacena inventario.
// Code es único por organización. Borrado lógico vía DeletedAt.
type Warehouse struct {
	ID             string
	OrganizationID string
	Code           string
	Name           string
	Address        string
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      *time.Time
}
