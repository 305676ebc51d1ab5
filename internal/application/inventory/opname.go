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
	"github.com/invorya/almacen-api/internal/domain/fsm"
	"github.com/invorya/almacen-api/internal/domain/repository"
)

// OpnameUseCase maneja conteos físicos: DRAFT → IN_PROGRESS → COMPLETED
// (o CANCELLED antes de completar). Al completar, cada línea con discrepancia
// postea un ADJUST que reconcilia el sistema con lo contado, todo en una
// transacción.
type OpnameUseCase struct {
	txRunner      repository.TxRunner
	warehouseRepo repository.WarehouseRepository
	productRepo   repository.ProductRepository
	opnameRepo    repository.StockOpnameRepository
	ledger        *Ledger
}

// NewOpnameUseCase construye el caso de uso.
func NewOpnameUseCase(
	txRunner repository.TxRunner,
	warehouseRepo repository.WarehouseRepository,
	productRepo repository.ProductRepository,
	opnameRepo repository.StockOpnameRepository,
	ledger *Ledger,
) *OpnameUseCase {
	return &OpnameUseCase{
		txRunner:      txRunner,
		warehouseRepo: warehouseRepo,
		productRepo:   productRepo,
		opnameRepo:    opnameRepo,
		ledger:        ledger,
	}
}

// OpnameDraftInput entrada para abrir un conteo sobre una bodega.
type OpnameDraftInput struct {
	OrganizationID string
	WarehouseID    string
	OpnameDate     time.Time
	Notes          string
	ProductIDs     []string
	ActorID        string
}

// CreateDraft abre un conteo capturando la cantidad de sistema de cada
// producto en ese momento.
func (uc *OpnameUseCase) CreateDraft(ctx context.Context, in OpnameDraftInput) (*entity.StockOpname, error) {
	if len(in.ProductIDs) == 0 {
		return nil, fmt.Errorf("el conteo requiere al menos un producto: %w", domain.ErrInvalidInput)
	}
	warehouse, err := uc.warehouseRepo.GetByID(in.OrganizationID, in.WarehouseID)
	if err != nil {
		return nil, err
	}
	if warehouse == nil {
		return nil, domain.ErrNotFound
	}

	now := time.Now()
	opname := &entity.StockOpname{
		ID:             uuid.New().String(),
		OrganizationID: in.OrganizationID,
		WarehouseID:    in.WarehouseID,
		Status:         entity.OpnameStatusDraft,
		OpnameDate:     in.OpnameDate,
		Notes:          in.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
		CreatedBy:      in.ActorID,
	}

	err = uc.txRunner.Run(ctx, func(tx *repository.TxRepos) error {
		for _, productID := range in.ProductIDs {
			product, err := uc.productRepo.GetByID(in.OrganizationID, productID)
			if err != nil {
				return err
			}
			if product == nil {
				return domain.ErrNotFound
			}
			systemQty := decimal.Zero
			item, err := tx.Items.Get(in.OrganizationID, productID, in.WarehouseID)
			if err != nil {
				return err
			}
			if item != nil {
				systemQty = item.QuantityOnHand
			}
			opname.Items = append(opname.Items, &entity.StockOpnameItem{
				ID:         uuid.New().String(),
				OpnameID:   opname.ID,
				ProductID:  productID,
				SystemQty:  systemQty,
				CountedQty: systemQty,
			})
		}
		return tx.Opnames.Create(opname)
	})
	if err != nil {
		return nil, err
	}
	return opname, nil
}

// Start transiciona DRAFT → IN_PROGRESS.
func (uc *OpnameUseCase) Start(ctx context.Context, organizationID, opnameID string) error {
	return uc.transition(ctx, organizationID, opnameID, entity.OpnameStatusInProgress)
}

// RecordCount registra la cantidad contada de una línea (solo IN_PROGRESS).
func (uc *OpnameUseCase) RecordCount(ctx context.Context, organizationID, opnameID, itemID string, counted decimal.Decimal) error {
	if counted.LessThan(decimal.Zero) {
		return fmt.Errorf("cantidad contada no puede ser negativa: %w", domain.ErrInvalidInput)
	}
	return uc.txRunner.Run(ctx, func(tx *repository.TxRepos) error {
		opname, err := tx.Opnames.GetForUpdate(organizationID, opnameID)
		if err != nil {
			return err
		}
		if opname == nil {
			return domain.ErrNotFound
		}
		if opname.Status != entity.OpnameStatusInProgress {
			return fmt.Errorf("conteo en estado %s: %w", opname.Status, domain.ErrInvalidTransition)
		}
		for _, it := range opname.Items {
			if it.ID == itemID {
				return tx.Opnames.UpdateCount(itemID, counted)
			}
		}
		return domain.ErrNotFound
	})
}

// Complete transiciona IN_PROGRESS → COMPLETED y postea un ADJUST por cada
// línea con discrepancia, referenciando el conteo.
func (uc *OpnameUseCase) Complete(ctx context.Context, organizationID, opnameID, actorID string) error {
	return uc.txRunner.Run(ctx, func(tx *repository.TxRepos) error {
		opname, err := tx.Opnames.GetForUpdate(organizationID, opnameID)
		if err != nil {
			return err
		}
		if opname == nil {
			return domain.ErrNotFound
		}
		if err := fsm.Opname.Transition(opname.Status, entity.OpnameStatusCompleted); err != nil {
			return err
		}
		for _, it := range opname.Items {
			delta := it.Discrepancy()
			if delta.IsZero() {
				continue
			}
			direction := entity.AdjustmentIncrease
			if delta.LessThan(decimal.Zero) {
				direction = entity.AdjustmentDecrease
			}
			if _, err := uc.ledger.Append(tx, MovementInput{
				OrganizationID: organizationID,
				ProductID:      it.ProductID,
				WarehouseID:    opname.WarehouseID,
				Type:           entity.MovementTypeADJUST,
				Quantity:       delta.Abs(),
				Direction:      direction,
				RefType:        entity.RefTypeOpname,
				RefID:          opname.ID,
				ActorID:        actorID,
			}); err != nil {
				return err
			}
			event, err := outbox.NewMovementEvent(organizationID, it.ProductID, opname.WarehouseID)
			if err != nil {
				return err
			}
			if err := tx.Outbox.Create(event); err != nil {
				return err
			}
		}
		return tx.Opnames.UpdateStatus(organizationID, opnameID, entity.OpnameStatusCompleted)
	})
}

// Cancel anula desde DRAFT o IN_PROGRESS, sin efecto en el libro.
func (uc *OpnameUseCase) Cancel(ctx context.Context, organizationID, opnameID string) error {
	return uc.transition(ctx, organizationID, opnameID, entity.OpnameStatusCancelled)
}

func (uc *OpnameUseCase) transition(ctx context.Context, organizationID, opnameID, target string) error {
	return uc.txRunner.Run(ctx, func(tx *repository.TxRepos) error {
		opname, err := tx.Opnames.GetForUpdate(organizationID, opnameID)
		if err != nil {
			return err
		}
		if opname == nil {
			return domain.ErrNotFound
		}
		if err := fsm.Opname.Transition(opname.Status, target); err != nil {
			return err
		}
		return tx.Opnames.UpdateStatus(organizationID, opnameID, target)
	})
}

// GetByID retorna un conteo con sus líneas.
func (uc *OpnameUseCase) GetByID(ctx context.Context, organizationID, opnameID string) (*entity.StockOpname, error) {
	opname, err := uc.opnameRepo.GetByID(organizationID, opnameID)
	if err != nil {
		return nil, err
	}
	if opname == nil {
		return nil, domain.ErrNotFound
	}
	return opname, nil
}

// List retorna los conteos de la organización, filtrando por estado si se indica.
func (uc *OpnameUseCase) List(ctx context.Context, organizationID, status string, limit, offset int) ([]*entity.StockOpname, error) {
	return uc.opnameRepo.ListByOrganization(organizationID, status, limit, offset)
}
