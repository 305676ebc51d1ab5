package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/invorya/almacen-api/internal/domain"
	"github.com/invorya/almacen-api/internal/domain/entity"
	"github.com/invorya/almacen-api/internal/domain/repository"
)

// ProductUseCase CRUD de productos. El SKU es único por organización y queda
// inmutable en cuanto el producto tiene movimientos; el borrado es lógico.
type ProductUseCase struct {
	productRepo  repository.ProductRepository
	movementRepo repository.InventoryMovementRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(productRepo repository.ProductRepository, movementRepo repository.InventoryMovementRepository) *ProductUseCase {
	return &ProductUseCase{productRepo: productRepo, movementRepo: movementRepo}
}

// ProductInput entrada de creación/actualización.
type ProductInput struct {
	SKU               string
	Name              string
	Description       string
	UnitMeasure       string
	Price             decimal.Decimal
	Cost              decimal.Decimal
	LowStockThreshold decimal.Decimal
}

// Create valida y persiste un producto nuevo.
func (uc *ProductUseCase) Create(ctx context.Context, organizationID string, in ProductInput) (*entity.Product, error) {
	if in.SKU == "" || in.Name == "" {
		return nil, fmt.Errorf("sku y nombre son obligatorios: %w", domain.ErrInvalidInput)
	}
	if in.Price.LessThan(decimal.Zero) || in.Cost.LessThan(decimal.Zero) || in.LowStockThreshold.LessThan(decimal.Zero) {
		return nil, fmt.Errorf("precio, costo y umbral no pueden ser negativos: %w", domain.ErrInvalidInput)
	}
	if existing, err := uc.productRepo.GetBySKU(organizationID, in.SKU); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, fmt.Errorf("sku %q: %w", in.SKU, domain.ErrDuplicate)
	}

	now := time.Now()
	product := &entity.Product{
		ID:                uuid.New().String(),
		OrganizationID:    organizationID,
		SKU:               in.SKU,
		Name:              in.Name,
		Description:       in.Description,
		UnitMeasure:       in.UnitMeasure,
		Price:             in.Price,
		Cost:              in.Cost,
		LowStockThreshold: in.LowStockThreshold,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := uc.productRepo.Create(product); err != nil {
		return nil, err
	}
	return product, nil
}

// Update actualiza un producto. Cambiar el SKU se rechaza si ya existen
// movimientos que lo referencian.
func (uc *ProductUseCase) Update(ctx context.Context, organizationID, productID string, in ProductInput) (*entity.Product, error) {
	product, err := uc.productRepo.GetByID(organizationID, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if in.SKU != "" && in.SKU != product.SKU {
		has, err := uc.movementRepo.ExistsForProduct(organizationID, productID)
		if err != nil {
			return nil, err
		}
		if has {
			return nil, domain.ErrSKUImmutable
		}
		product.SKU = in.SKU
	}
	if in.Name != "" {
		product.Name = in.Name
	}
	product.Description = in.Description
	product.UnitMeasure = in.UnitMeasure
	if !in.Price.LessThan(decimal.Zero) {
		product.Price = in.Price
	}
	if !in.Cost.LessThan(decimal.Zero) {
		product.Cost = in.Cost
	}
	if !in.LowStockThreshold.LessThan(decimal.Zero) {
		product.LowStockThreshold = in.LowStockThreshold
	}
	product.UpdatedAt = time.Now()
	if err := uc.productRepo.Update(product); err != nil {
		return nil, err
	}
	return product, nil
}

// GetByID lectura puntual; cross-tenant responde no encontrado.
func (uc *ProductUseCase) GetByID(ctx context.Context, organizationID, productID string) (*entity.Product, error) {
	product, err := uc.productRepo.GetByID(organizationID, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return product, nil
}

// List lista productos de la organización.
func (uc *ProductUseCase) List(ctx context.Context, organizationID string, limit, offset int) ([]*entity.Product, error) {
	return uc.productRepo.ListByOrganization(organizationID, limit, offset)
}

// Delete borrado lógico: el historial de movimientos lo sigue referenciando.
func (uc *ProductUseCase) Delete(ctx context.Context, organizationID, productID string) error {
	product, err := uc.productRepo.GetByID(organizationID, productID)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	return uc.productRepo.SoftDelete(organizationID, productID)
}
