package dto

import (
	"time"

	"github.com/invorya/almacen-api/internal/domain/entity"
)

// CreateWarehouseRequest entrada para crear una bodega.
type CreateWarehouseRequest struct {
	Code    string `json:"code" validate:"required,min=1,max=50"`
	Name    string `json:"name" validate:"required,min=1,max=200"`
	Address string `json:"address"`
	Active  *bool  `json:"active"`
}

// UpdateWarehouseRequest entrada para actualizar una bodega. El código no cambia.
type UpdateWarehouseRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Active  *bool  `json:"active"`
}

// WarehouseResponse salida de una bodega.
type WarehouseResponse struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	Code           string    `json:"code"`
	Name           string    `json:"name"`
	Address        string    `json:"address"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// WarehouseListResponse lista paginada de bodegas.
type WarehouseListResponse struct {
	Items []WarehouseResponse `json:"items"`
	Page  PageResponse        `json:"page"`
}

// FromWarehouse mapea la entidad a su DTO.
func FromWarehouse(w *entity.Warehouse) WarehouseResponse {
	return WarehouseResponse{
		ID:             w.ID,
		OrganizationID: w.OrganizationID,
		Code:           w.Code,
		Name:           w.Name,
		Address:        w.Address,
		Active:         w.Active,
		CreatedAt:      w.CreatedAt,
		UpdatedAt:      w.UpdatedAt,
	}
}
