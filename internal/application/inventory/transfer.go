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

// TransferUseCase maneja el ciclo de vida de traslados entre bodegas:
// DRAFT → SENT → COMPLETED (o CANCELLED desde DRAFT/SENT). El stock solo se
// mueve al completar: por cada línea un TRANSFER_OUT en origen seguido de un
// TRANSFER_IN en destino, en una sola transacción. Si el descuento en origen
// falla, todo revierte y el traslado queda en SENT: nunca hay traslado parcial.
type TransferUseCase struct {
	txRunner      repository.TxRunner
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
	transferRepo  repository.StockTransferRepository
	ledger        *Ledger
}

// NewTransferUseCase construye el caso de uso.
func NewTransferUseCase(
	txRunner repository.TxRunner,
	productRepo repository.ProductRepository,
	warehouseRepo repository.WarehouseRepository,
	transferRepo repository.StockTransferRepository,
	ledger *Ledger,
) *TransferUseCase {
	return &TransferUseCase{
		txRunner:      txRunner,
		productRepo:   productRepo,
		warehouseRepo: warehouseRepo,
		transferRepo:  transferRepo,
		ledger:        ledger,
	}
}

// TransferLine línea de entrada para un borrador de traslado.
type TransferLine struct {
	ProductID string
	Quantity  decimal.Decimal
}

// TransferDraftInput entrada para crear un borrador.
type TransferDraftInput struct {
	OrganizationID  string
	FromWarehouseID string
	ToWarehouseID   string
	Notes           string
	Lines           []TransferLine
	ActorID         string
}

// CreateDraft valida y persiste un borrador. Un borrador es un plan: no toca
// el libro ni los contadores.
func (uc *TransferUseCase) CreateDraft(ctx context.Context, in TransferDraftInput) (*entity.StockTransfer, error) {
	if in.FromWarehouseID == in.ToWarehouseID {
		return nil, fmt.Errorf("bodega origen y destino deben ser distintas: %w", domain.ErrInvalidInput)
	}
	if len(in.Lines) == 0 {
		return nil, fmt.Errorf("el traslado requiere al menos una línea: %w", domain.ErrInvalidInput)
	}
	for _, w := range []string{in.FromWarehouseID, in.ToWarehouseID} {
		wh, err := uc.warehouseRepo.GetByID(in.OrganizationID, w)
		if err != nil {
			return nil, err
		}
		if wh == nil {
			return nil, domain.ErrNotFound
		}
	}

	now := time.Now()
	transfer := &entity.StockTransfer{
		ID:              uuid.New().String(),
		OrganizationID:  in.OrganizationID,
		FromWarehouseID: in.FromWarehouseID,
		ToWarehouseID:   in.ToWarehouseID,
		Status:          entity.TransferStatusDraft,
		Notes:           in.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
		CreatedBy:       in.ActorID,
	}
	for _, line := range in.Lines {
		if !line.Quantity.GreaterThan(decimal.Zero) {
			return nil, fmt.Errorf("cantidad debe ser positiva: %w", domain.ErrInvalidInput)
		}
		product, err := uc.productRepo.GetByID(in.OrganizationID, line.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, domain.ErrNotFound
		}
		transfer.Items = append(transfer.Items, &entity.StockTransferItem{
			ID:         uuid.New().String(),
			TransferID: transfer.ID,
			ProductID:  line.ProductID,
			Quantity:   line.Quantity,
		})
	}

	err := uc.txRunner.Run(ctx, func(tx *repository.TxRepos) error {
		return tx.Transfers.Create(transfer)
	})
	if err != nil {
		return nil, err
	}
	return transfer, nil
}

// Send transiciona DRAFT → SENT con un chequeo de disponibilidad en origen.
// El chequeo duro definitivo ocurre dentro de la transacción de Complete.
func (uc *TransferUseCase) Send(ctx context.Context, organizationID, transferID string) error {
	return uc.txRunner.Run(ctx, func(tx *repository.TxRepos) error {
		transfer, err := tx.Transfers.GetForUpdate(organizationID, transferID)
		if err != nil {
			return err
		}
		if transfer == nil {
			return domain.ErrNotFound
		}
		if err := fsm.Transfer.Transition(transfer.Status, entity.TransferStatusSent); err != nil {
			return err
		}
		for _, it := range transfer.Items {
			item, err := tx.Items.Get(organizationID, it.ProductID, transfer.FromWarehouseID)
			if err != nil {
				return err
			}
			if item == nil || item.Available().LessThan(it.Quantity) {
				return fmt.Errorf("producto %s en bodega origen: %w", it.ProductID, domain.ErrInsufficientStock)
			}
		}
		return tx.Transfers.UpdateStatus(organizationID, transferID, entity.TransferStatusSent)
	})
}

// Complete transiciona SENT → COMPLETED posteando el par de movimientos por
// línea. El conteo total OUT en origen siempre iguala el total IN en destino.
func (uc *TransferUseCase) Complete(ctx context.Context, organizationID, transferID, actorID string) error {
	return uc.txRunner.Run(ctx, func(tx *repository.TxRepos) error {
		transfer, err := tx.Transfers.GetForUpdate(organizationID, transferID)
		if err != nil {
			return err
		}
		if transfer == nil {
			return domain.ErrNotFound
		}
		if err := fsm.Transfer.Transition(transfer.Status, entity.TransferStatusCompleted); err != nil {
			return err
		}
		for _, it := range transfer.Items {
			if _, err := uc.ledger.Append(tx, MovementInput{
				OrganizationID: organizationID,
				ProductID:      it.ProductID,
				WarehouseID:    transfer.FromWarehouseID,
				Type:           entity.MovementTypeTransferOUT,
				Quantity:       it.Quantity,
				RefType:        entity.RefTypeTransfer,
				RefID:          transfer.ID,
				ActorID:        actorID,
			}); err != nil {
				return err
			}
			if _, err := uc.ledger.Append(tx, MovementInput{
				OrganizationID: organizationID,
				ProductID:      it.ProductID,
				WarehouseID:    transfer.ToWarehouseID,
				Type:           entity.MovementTypeTransferIN,
				Quantity:       it.Quantity,
				RefType:        entity.RefTypeTransfer,
				RefID:          transfer.ID,
				ActorID:        actorID,
			}); err != nil {
				return err
			}
			for _, warehouseID := range []string{transfer.FromWarehouseID, transfer.ToWarehouseID} {
				event, err := outbox.NewMovementEvent(organizationID, it.ProductID, warehouseID)
				if err != nil {
					return err
				}
				if err := tx.Outbox.Create(event); err != nil {
					return err
				}
			}
		}
		return tx.Transfers.UpdateStatus(organizationID, transferID, entity.TransferStatusCompleted)
	})
}

// Cancel anula desde DRAFT o SENT. Sin efecto en el libro: nada fue posteado.
func (uc *TransferUseCase) Cancel(ctx context.Context, organizationID, transferID string) error {
	return uc.txRunner.Run(ctx, func(tx *repository.TxRepos) error {
		transfer, err := tx.Transfers.GetForUpdate(organizationID, transferID)
		if err != nil {
			return err
		}
		if transfer == nil {
			return domain.ErrNotFound
		}
		if err := fsm.Transfer.Transition(transfer.Status, entity.TransferStatusCancelled); err != nil {
			return err
		}
		return tx.Transfers.UpdateStatus(organizationID, transferID, entity.TransferStatusCancelled)
	})
}

// GetByID retorna un traslado con sus líneas.
func (uc *TransferUseCase) GetByID(ctx context.Context, organizationID, transferID string) (*entity.StockTransfer, error) {
	transfer, err := uc.transferRepo.GetByID(organizationID, transferID)
	if err != nil {
		return nil, err
	}
	if transfer == nil {
		return nil, domain.ErrNotFound
	}
	return transfer, nil
}

// List retorna los traslados de la organización, filtrando por estado si se indica.
func (uc *TransferUseCase) List(ctx context.Context, organizationID, status string, limit, offset int) ([]*entity.StockTransfer, error) {
	return uc.transferRepo.ListByOrganization(organizationID, status, limit, offset)
}
