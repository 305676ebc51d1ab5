package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/invorya/almacen-api/internal/application/outbox"
	"github.com/invorya/almacen-api/internal/domain"
	"github.com/invorya/almacen-api/internal/domain/entity"
	"github.com/invorya/almacen-api/internal/domain/repository"
)

// AdjustmentUseCase corrige stock manualmente con un código de razón.
// Un ajuste es inmutable: no hay edición posterior, la única remediación es
// crear un ajuste opuesto. Cada ajuste genera exactamente un movimiento ADJUST.
type AdjustmentUseCase struct {
	txRunner       repository.TxRunner
	productRepo    repository.ProductRepository
	warehouseRepo  repository.WarehouseRepository
	adjustmentRepo repository.StockAdjustmentRepository
	ledger         *Ledger
}

// NewAdjustmentUseCase construye el caso de uso.
func NewAdjustmentUseCase(
	txRunner repository.TxRunner,
	productRepo repository.ProductRepository,
	warehouseRepo repository.WarehouseRepository,
	adjustmentRepo repository.StockAdjustmentRepository,
	ledger *Ledger,
) *AdjustmentUseCase {
	return &AdjustmentUseCase{
		txRunner:       txRunner,
		productRepo:    productRepo,
		warehouseRepo:  warehouseRepo,
		adjustmentRepo: adjustmentRepo,
		ledger:         ledger,
	}
}

// AdjustmentInput entrada para crear un ajuste manual.
type AdjustmentInput struct {
	OrganizationID string
	ProductID      string
	WarehouseID    string
	Direction      entity.AdjustmentDirection
	Quantity       decimal.Decimal
	Reason         string
	Notes          string
	ActorID        string
}

// Create valida entrada y tenencia, y en una transacción: crea la fila de
// ajuste, postea el movimiento ADJUST vía la primitiva y deja el evento de
// outbox. Una disminución por encima del disponible revierte todo.
func (uc *AdjustmentUseCase) Create(ctx context.Context, in AdjustmentInput) (*entity.StockAdjustment, error) {
	if !in.Quantity.GreaterThan(decimal.Zero) {
		return nil, fmt.Errorf("cantidad debe ser positiva: %w", domain.ErrInvalidInput)
	}
	if in.Direction != entity.AdjustmentIncrease && in.Direction != entity.AdjustmentDecrease {
		return nil, fmt.Errorf("dirección inválida: %w", domain.ErrInvalidInput)
	}
	if !entity.ValidReason(in.Reason) {
		return nil, fmt.Errorf("código de razón desconocido %q: %w", in.Reason, domain.ErrInvalidInput)
	}

	product, err := uc.productRepo.GetByID(in.OrganizationID, in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	warehouse, err := uc.warehouseRepo.GetByID(in.OrganizationID, in.WarehouseID)
	if err != nil {
		return nil, err
	}
	if warehouse == nil {
		return nil, domain.ErrNotFound
	}

	adj := &entity.StockAdjustment{
		ID:             uuid.New().String(),
		OrganizationID: in.OrganizationID,
		ProductID:      in.ProductID,
		WarehouseID:    in.WarehouseID,
		Direction:      in.Direction,
		Quantity:       in.Quantity,
		Reason:         in.Reason,
		Notes:          in.Notes,
		CreatedAt:      time.Now(),
		CreatedBy:      in.ActorID,
	}

	err = uc.txRunner.Run(ctx, func(tx *repository.TxRepos) error {
		if err := tx.Adjustments.Create(adj); err != nil {
			return err
		}
		if _, err := uc.ledger.Append(tx, MovementInput{
			OrganizationID: in.OrganizationID,
			ProductID:      in.ProductID,
			WarehouseID:    in.WarehouseID,
			Type:           entity.MovementTypeADJUST,
			Quantity:       in.Quantity,
			Direction:      in.Direction,
			RefType:        entity.RefTypeAdjustment,
			RefID:          adj.ID,
			ActorID:        in.ActorID,
		}); err != nil {
			return err
		}
		event, err := outbox.NewMovementEvent(in.OrganizationID, in.ProductID, in.WarehouseID)
		if err != nil {
			return err
		}
		return tx.Outbox.Create(event)
	})
	if err != nil {
		return nil, err
	}
	return adj, nil
}

// GetByID retorna un ajuste de la organización.
func (uc *AdjustmentUseCase) GetByID(ctx context.Context, organizationID, id string) (*entity.StockAdjustment, error) {
	adj, err := uc.adjustmentRepo.GetByID(organizationID, id)
	if err != nil {
		return nil, err
	}
	if adj == nil {
		return nil, domain.ErrNotFound
	}
	return adj, nil
}

// List retorna los ajustes de la organización, más recientes primero.
func (uc *AdjustmentUseCase) List(ctx context.Context, organizationID string, limit, offset int) ([]*entity.StockAdjustment, error) {
	return uc.adjustmentRepo.ListByOrganization(organizationID, limit, offset)
}
