package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/invorya/almacen-api/internal/domain"
	"github.com/invorya/almacen-api/internal/domain/entity"
	"github.com/invorya/almacen-api/internal/domain/repository"
)

// WarehouseUseCase CRUD de bodegas. El código es único por organización.
type WarehouseUseCase struct {
	warehouseRepo repository.WarehouseRepository
	itemRepo      repository.InventoryItemRepository
}

// NewWarehouseUseCase construye el caso de uso.
func NewWarehouseUseCase(warehouseRepo repository.WarehouseRepository, itemRepo repository.InventoryItemRepository) *WarehouseUseCase {
	return &WarehouseUseCase{warehouseRepo: warehouseRepo, itemRepo: itemRepo}
}

// WarehouseInput entrada de creación/actualización.
type WarehouseInput struct {
	Code    string
	Name    string
	Address string
	Active  *bool
}

// Create valida y persiste una bodega nueva.
func (uc *WarehouseUseCase) Create(ctx context.Context, organizationID string, in WarehouseInput) (*entity.Warehouse, error) {
	if in.Code == "" || in.Name == "" {
		return nil, fmt.Errorf("código y nombre son obligatorios: %w", domain.ErrInvalidInput)
	}
	if existing, err := uc.warehouseRepo.GetByCode(organizationID, in.Code); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, fmt.Errorf("código %q: %w", in.Code, domain.ErrDuplicate)
	}

	now := time.Now()
	warehouse := &entity.Warehouse{
		ID:             uuid.New().String(),
		OrganizationID: organizationID,
		Code:           in.Code,
		Name:           in.Name,
		Address:        in.Address,
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if in.Active != nil {
		warehouse.Active = *in.Active
	}
	if err := uc.warehouseRepo.Create(warehouse); err != nil {
		return nil, err
	}
	return warehouse, nil
}

// Update actualiza nombre, dirección y estado. El código no se cambia.
func (uc *WarehouseUseCase) Update(ctx context.Context, organizationID, warehouseID string, in WarehouseInput) (*entity.Warehouse, error) {
	warehouse, err := uc.warehouseRepo.GetByID(organizationID, warehouseID)
	if err != nil {
		return nil, err
	}
	if warehouse == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != "" {
		warehouse.Name = in.Name
	}
	warehouse.Address = in.Address
	if in.Active != nil {
		warehouse.Active = *in.Active
	}
	warehouse.UpdatedAt = time.Now()
	if err := uc.warehouseRepo.Update(warehouse); err != nil {
		return nil, err
	}
	return warehouse, nil
}

// GetByID lectura puntual; cross-tenant responde no encontrado.
func (uc *WarehouseUseCase) GetByID(ctx context.Context, organizationID, warehouseID string) (*entity.Warehouse, error) {
	warehouse, err := uc.warehouseRepo.GetByID(organizationID, warehouseID)
	if err != nil {
		return nil, err
	}
	if warehouse == nil {
		return nil, domain.ErrNotFound
	}
	return warehouse, nil
}

// List lista bodegas de la organización.
func (uc *WarehouseUseCase) List(ctx context.Context, organizationID string, limit, offset int) ([]*entity.Warehouse, error) {
	return uc.warehouseRepo.ListByOrganization(organizationID, limit, offset)
}

// Delete borrado lógico. Se rechaza si la bodega aún tiene existencias.
func (uc *WarehouseUseCase) Delete(ctx context.Context, organizationID, warehouseID string) error {
	warehouse, err := uc.warehouseRepo.GetByID(organizationID, warehouseID)
	if err != nil {
		return err
	}
	if warehouse == nil {
		return domain.ErrNotFound
	}
	const page = 500
	for offset := 0; ; offset += page {
		items, err := uc.itemRepo.ListByWarehouse(organizationID, warehouseID, page, offset)
		if err != nil {
			return err
		}
		for _, item := range items {
			if !item.QuantityOnHand.IsZero() || !item.AllocatedQty.IsZero() {
				return fmt.Errorf("la bodega tiene existencias: %w", domain.ErrConflict)
			}
		}
		if len(items) < page {
			break
		}
	}
	return uc.warehouseRepo.SoftDelete(organizationID, warehouseID)
}
