package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/invorya/almacen-api/internal/application/inventory"
	"github.com/invorya/almacen-api/internal/application/outbox"
	"github.com/invorya/almacen-api/internal/domain"
	"github.com/invorya/almacen-api/internal/domain/entity"
	"github.com/invorya/almacen-api/internal/domain/fsm"
	"github.com/invorya/almacen-api/internal/domain/repository"
)

// SalesUseCase maneja órdenes de venta: DRAFT → CONFIRMED → FULFILLED, o
// CANCELLED antes de despachar. Confirmar reserva stock (sube AllocatedQty sin
// tocar on-hand, bajando el disponible para otras órdenes); despachar consume
// la reserva y postea un OUT por línea; cancelar libera la reserva sin tocar
// el libro. El despacho es todo-o-nada: si una línea no tiene disponible, la
// transacción completa revierte.
type SalesUseCase struct {
	txRunner      repository.TxRunner
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
	salesRepo     repository.SalesOrderRepository
	ledger        *inventory.Ledger
}

// NewSalesUseCase construye el caso de uso.
func NewSalesUseCase(
	txRunner repository.TxRunner,
	productRepo repository.ProductRepository,
	warehouseRepo repository.WarehouseRepository,
	salesRepo repository.SalesOrderRepository,
	ledger *inventory.Ledger,
) *SalesUseCase {
	return &SalesUseCase{
		txRunner:      txRunner,
		productRepo:   productRepo,
		warehouseRepo: warehouseRepo,
		salesRepo:     salesRepo,
		ledger:        ledger,
	}
}

// SalesLine línea de entrada para un borrador de venta.
type SalesLine struct {
	ProductID string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Discount  decimal.Decimal
}

// SalesDraftInput entrada para crear una orden de venta.
type SalesDraftInput struct {
	OrganizationID string
	CustomerID     string
	WarehouseID    string
	TaxRate        decimal.Decimal
	Lines          []SalesLine
	ActorID        string
}

// CreateDraft computa totales desde las líneas y persiste el borrador.
// No exige disponibilidad: un borrador no compromete stock.
func (uc *SalesUseCase) CreateDraft(ctx context.Context, in SalesDraftInput) (*entity.SalesOrder, error) {
	if len(in.Lines) == 0 {
		return nil, fmt.Errorf("la orden requiere al menos una línea: %w", domain.ErrInvalidInput)
	}
	if in.TaxRate.LessThan(decimal.Zero) {
		return nil, fmt.Errorf("tasa de impuesto no puede ser negativa: %w", domain.ErrInvalidInput)
	}
	warehouse, err := uc.warehouseRepo.GetByID(in.OrganizationID, in.WarehouseID)
	if err != nil {
		return nil, err
	}
	if warehouse == nil {
		return nil, domain.ErrNotFound
	}

	now := time.Now()
	order := &entity.SalesOrder{
		ID:             uuid.New().String(),
		OrganizationID: in.OrganizationID,
		CustomerID:     in.CustomerID,
		WarehouseID:    in.WarehouseID,
		Status:         entity.SalesStatusDraft,
		CreatedAt:      now,
		UpdatedAt:      now,
		CreatedBy:      in.ActorID,
	}
	for _, line := range in.Lines {
		if !line.Quantity.GreaterThan(decimal.Zero) {
			return nil, fmt.Errorf("cantidad debe ser positiva: %w", domain.ErrInvalidInput)
		}
		if line.UnitPrice.LessThan(decimal.Zero) || line.Discount.LessThan(decimal.Zero) {
			return nil, fmt.Errorf("precio y descuento no pueden ser negativos: %w", domain.ErrInvalidInput)
		}
		product, err := uc.productRepo.GetByID(in.OrganizationID, line.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, domain.ErrNotFound
		}
		order.Items = append(order.Items, &entity.SalesOrderItem{
			ID:        uuid.New().String(),
			OrderID:   order.ID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Discount:  line.Discount,
		})
	}
	order.ComputeTotals(in.TaxRate)

	err = uc.txRunner.Run(ctx, func(tx *repository.TxRepos) error {
		return tx.Sales.Create(order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Confirm transiciona DRAFT → CONFIRMED reservando stock por línea: sube
// AllocatedQty bajo bloqueo de fila, chequeando contra el disponible. La
// reserva es reversible en Cancel y se consume en Fulfill.
func (uc *SalesUseCase) Confirm(ctx context.Context, organizationID, orderID string) error {
	return uc.txRunner.Run(ctx, func(tx *repository.TxRepos) error {
		order, err := tx.Sales.GetForUpdate(organizationID, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		if err := fsm.SalesOrder.Transition(order.Status, entity.SalesStatusConfirmed); err != nil {
			return err
		}
		now := time.Now()
		for _, it := range order.Items {
			item, err := tx.Items.GetForUpdate(organizationID, it.ProductID, order.WarehouseID)
			if err != nil {
				return err
			}
			if item == nil || item.Available().LessThan(it.Quantity) {
				return fmt.Errorf("producto %s: %w", it.ProductID, domain.ErrInsufficientStock)
			}
			item.AllocatedQty = item.AllocatedQty.Add(it.Quantity)
			item.UpdatedAt = now
			if err := tx.Items.Upsert(item); err != nil {
				return err
			}
		}
		return tx.Sales.UpdateStatus(organizationID, orderID, entity.SalesStatusConfirmed)
	})
}

// Fulfill transiciona CONFIRMED → FULFILLED: por cada línea libera la reserva
// y postea el OUT. Todo-o-nada; nunca hay despacho parcial.
func (uc *SalesUseCase) Fulfill(ctx context.Context, organizationID, orderID, actorID string) error {
	return uc.txRunner.Run(ctx, func(tx *repository.TxRepos) error {
		order, err := tx.Sales.GetForUpdate(organizationID, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		if err := fsm.SalesOrder.Transition(order.Status, entity.SalesStatusFulfilled); err != nil {
			return err
		}
		now := time.Now()
		for _, it := range order.Items {
			item, err := tx.Items.GetForUpdate(organizationID, it.ProductID, order.WarehouseID)
			if err != nil {
				return err
			}
			if item == nil || item.QuantityOnHand.LessThan(it.Quantity) {
				return fmt.Errorf("producto %s: %w", it.ProductID, domain.ErrInsufficientStock)
			}
			// Libera la reserva tomada en Confirm antes de descontar on-hand,
			// así el disponible de otras órdenes no se ve afectado dos veces.
			item.AllocatedQty = item.AllocatedQty.Sub(it.Quantity)
			if item.AllocatedQty.LessThan(decimal.Zero) {
				item.AllocatedQty = decimal.Zero
			}
			item.UpdatedAt = now
			if err := tx.Items.Upsert(item); err != nil {
				return err
			}
			if _, err := uc.ledger.Append(tx, inventory.MovementInput{
				OrganizationID: organizationID,
				ProductID:      it.ProductID,
				WarehouseID:    order.WarehouseID,
				Type:           entity.MovementTypeOUT,
				Quantity:       it.Quantity,
				RefType:        entity.RefTypeSalesOrder,
				RefID:          order.ID,
				ActorID:        actorID,
			}); err != nil {
				return err
			}
			event, err := outbox.NewMovementEvent(organizationID, it.ProductID, order.WarehouseID)
			if err != nil {
				return err
			}
			if err := tx.Outbox.Create(event); err != nil {
				return err
			}
		}
		return tx.Sales.UpdateStatus(organizationID, orderID, entity.SalesStatusFulfilled)
	})
}

// Cancel anula antes del despacho. Si la orden estaba CONFIRMED libera las
// reservas; nunca postea movimientos (nada fue descontado).
func (uc *SalesUseCase) Cancel(ctx context.Context, organizationID, orderID string) error {
	return uc.txRunner.Run(ctx, func(tx *repository.TxRepos) error {
		order, err := tx.Sales.GetForUpdate(organizationID, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		wasConfirmed := order.Status == entity.SalesStatusConfirmed
		if err := fsm.SalesOrder.Transition(order.Status, entity.SalesStatusCancelled); err != nil {
			return err
		}
		if wasConfirmed {
			now := time.Now()
			for _, it := range order.Items {
				item, err := tx.Items.GetForUpdate(organizationID, it.ProductID, order.WarehouseID)
				if err != nil {
					return err
				}
				if item == nil {
					continue
				}
				item.AllocatedQty = item.AllocatedQty.Sub(it.Quantity)
				if item.AllocatedQty.LessThan(decimal.Zero) {
					item.AllocatedQty = decimal.Zero
				}
				item.UpdatedAt = now
				if err := tx.Items.Upsert(item); err != nil {
					return err
				}
			}
		}
		return tx.Sales.UpdateStatus(organizationID, orderID, entity.SalesStatusCancelled)
	})
}

// GetByID retorna una orden de venta con sus líneas.
func (uc *SalesUseCase) GetByID(ctx context.Context, organizationID, orderID string) (*entity.SalesOrder, error) {
	order, err := uc.salesRepo.GetByID(organizationID, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	return order, nil
}

// List retorna las órdenes de la organización, filtrando por estado si se indica.
func (uc *SalesUseCase) List(ctx context.Context, organizationID, status string, limit, offset int) ([]*entity.SalesOrder, error) {
	return uc.salesRepo.ListByOrganization(organizationID, status, limit, offset)
}
