package purchasing

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

// PurchaseUseCase maneja órdenes de compra y su recepción:
// DRAFT → (PARTIALLY_RECEIVED) → COMPLETED, o CANCELLED desde DRAFT.
// Cada recepción crea un PurchaseReceipt, acumula ReceivedQty por línea y
// postea un IN por línea vía la primitiva, todo en una transacción.
// Invariante: ReceivedQty jamás supera OrderedQty (sobre-recepción rechazada).
type PurchaseUseCase struct {
	txRunner      repository.TxRunner
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
	purchaseRepo  repository.PurchaseOrderRepository
	receiptRepo   repository.PurchaseReceiptRepository
	ledger        *inventory.Ledger
}

// NewPurchaseUseCase construye el caso de uso.
func NewPurchaseUseCase(
	txRunner repository.TxRunner,
	productRepo repository.ProductRepository,
	warehouseRepo repository.WarehouseRepository,
	purchaseRepo repository.PurchaseOrderRepository,
	receiptRepo repository.PurchaseReceiptRepository,
	ledger *inventory.Ledger,
) *PurchaseUseCase {
	return &PurchaseUseCase{
		txRunner:      txRunner,
		productRepo:   productRepo,
		warehouseRepo: warehouseRepo,
		purchaseRepo:  purchaseRepo,
		receiptRepo:   receiptRepo,
		ledger:        ledger,
	}
}

// PurchaseLine línea de entrada para un borrador de orden de compra.
type PurchaseLine struct {
	ProductID  string
	OrderedQty decimal.Decimal
	UnitCost   decimal.Decimal
}

// PurchaseDraftInput entrada para crear una orden de compra.
type PurchaseDraftInput struct {
	OrganizationID string
	SupplierID     string
	WarehouseID    string
	Notes          string
	Lines          []PurchaseLine
	ActorID        string
}

// ReceiptLine cantidad recibida de un producto en una entrega.
type ReceiptLine struct {
	ProductID string
	Quantity  decimal.Decimal
}

// CreateDraft valida y persiste la orden con ReceivedQty en cero. Sin efecto
// en stock.
func (uc *PurchaseUseCase) CreateDraft(ctx context.Context, in PurchaseDraftInput) (*entity.PurchaseOrder, error) {
	if len(in.Lines) == 0 {
		return nil, fmt.Errorf("la orden requiere al menos una línea: %w", domain.ErrInvalidInput)
	}
	warehouse, err := uc.warehouseRepo.GetByID(in.OrganizationID, in.WarehouseID)
	if err != nil {
		return nil, err
	}
	if warehouse == nil {
		return nil, domain.ErrNotFound
	}

	now := time.Now()
	order := &entity.PurchaseOrder{
		ID:             uuid.New().String(),
		OrganizationID: in.OrganizationID,
		SupplierID:     in.SupplierID,
		WarehouseID:    in.WarehouseID,
		Status:         entity.PurchaseStatusDraft,
		Notes:          in.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
		CreatedBy:      in.ActorID,
	}
	for _, line := range in.Lines {
		if !line.OrderedQty.GreaterThan(decimal.Zero) {
			return nil, fmt.Errorf("cantidad ordenada debe ser positiva: %w", domain.ErrInvalidInput)
		}
		if line.UnitCost.LessThan(decimal.Zero) {
			return nil, fmt.Errorf("costo unitario no puede ser negativo: %w", domain.ErrInvalidInput)
		}
		product, err := uc.productRepo.GetByID(in.OrganizationID, line.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, domain.ErrNotFound
		}
		order.Items = append(order.Items, &entity.PurchaseOrderItem{
			ID:          uuid.New().String(),
			OrderID:     order.ID,
			ProductID:   line.ProductID,
			OrderedQty:  line.OrderedQty,
			UnitCost:    line.UnitCost,
			ReceivedQty: decimal.Zero,
		})
	}

	err = uc.txRunner.Run(ctx, func(tx *repository.TxRepos) error {
		return tx.Purchases.Create(order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// CreateReceipt registra una recepción parcial o total contra la orden.
// Recibir contra una orden CANCELLED o COMPLETED se rechaza.
func (uc *PurchaseUseCase) CreateReceipt(ctx context.Context, organizationID, orderID string, lines []ReceiptLine, actorID string) (*entity.PurchaseReceipt, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("el recibo requiere al menos una línea: %w", domain.ErrInvalidInput)
	}
	var receipt *entity.PurchaseReceipt
	err := uc.txRunner.Run(ctx, func(tx *repository.TxRepos) error {
		var err error
		receipt, err = uc.receiveInTx(tx, organizationID, orderID, lines, actorID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

// Complete recibe de una sola vez todo lo pendiente de la orden (atajo sobre
// CreateReceipt con las cantidades restantes calculadas).
func (uc *PurchaseUseCase) Complete(ctx context.Context, organizationID, orderID, actorID string) (*entity.PurchaseReceipt, error) {
	var receipt *entity.PurchaseReceipt
	err := uc.txRunner.Run(ctx, func(tx *repository.TxRepos) error {
		order, err := tx.Purchases.GetForUpdate(organizationID, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		var remaining []ReceiptLine
		for _, it := range order.Items {
			if it.Remaining().GreaterThan(decimal.Zero) {
				remaining = append(remaining, ReceiptLine{ProductID: it.ProductID, Quantity: it.Remaining()})
			}
		}
		if len(remaining) == 0 {
			return fmt.Errorf("orden sin cantidades pendientes: %w", domain.ErrConflict)
		}
		receipt, err = uc.receiveInTx(tx, organizationID, orderID, remaining, actorID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

// Cancel anula la orden, solo desde DRAFT. Sin efecto en el libro.
func (uc *PurchaseUseCase) Cancel(ctx context.Context, organizationID, orderID string) error {
	return uc.txRunner.Run(ctx, func(tx *repository.TxRepos) error {
		order, err := tx.Purchases.GetForUpdate(organizationID, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		if err := fsm.PurchaseOrder.Transition(order.Status, entity.PurchaseStatusCancelled); err != nil {
			return err
		}
		return tx.Purchases.UpdateStatus(organizationID, orderID, entity.PurchaseStatusCancelled)
	})
}

// GetByID retorna una orden de compra con sus líneas.
func (uc *PurchaseUseCase) GetByID(ctx context.Context, organizationID, orderID string) (*entity.PurchaseOrder, error) {
	order, err := uc.purchaseRepo.GetByID(organizationID, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	return order, nil
}

// List retorna las órdenes de la organización, filtrando por estado si se indica.
func (uc *PurchaseUseCase) List(ctx context.Context, organizationID, status string, limit, offset int) ([]*entity.PurchaseOrder, error) {
	return uc.purchaseRepo.ListByOrganization(organizationID, status, limit, offset)
}

// ListReceipts retorna los recibos registrados contra una orden.
func (uc *PurchaseUseCase) ListReceipts(ctx context.Context, organizationID, orderID string) ([]*entity.PurchaseReceipt, error) {
	order, err := uc.purchaseRepo.GetByID(organizationID, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	return uc.receiptRepo.ListByOrder(organizationID, orderID)
}

// receiveInTx lógica común de recepción sobre una transacción abierta:
// valida líneas contra la orden bloqueada, crea el recibo, acumula
// ReceivedQty, postea los IN y transiciona el estado de la orden.
func (uc *PurchaseUseCase) receiveInTx(tx *repository.TxRepos, organizationID, orderID string, lines []ReceiptLine, actorID string) (*entity.PurchaseReceipt, error) {
	order, err := tx.Purchases.GetForUpdate(organizationID, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	if order.Status != entity.PurchaseStatusDraft && order.Status != entity.PurchaseStatusPartiallyReceived {
		return nil, fmt.Errorf("no se puede recibir contra una orden %s: %w", order.Status, domain.ErrInvalidTransition)
	}

	byProduct := make(map[string]*entity.PurchaseOrderItem, len(order.Items))
	for _, it := range order.Items {
		byProduct[it.ProductID] = it
	}

	now := time.Now()
	receipt := &entity.PurchaseReceipt{
		ID:             uuid.New().String(),
		OrganizationID: organizationID,
		OrderID:        orderID,
		CreatedAt:      now,
		CreatedBy:      actorID,
	}
	// requested acumula lo pedido por producto dentro de este mismo recibo:
	// varias líneas de un producto se validan por su suma, no línea a línea.
	requested := make(map[string]decimal.Decimal, len(lines))
	for _, line := range lines {
		if !line.Quantity.GreaterThan(decimal.Zero) {
			return nil, fmt.Errorf("cantidad recibida debe ser positiva: %w", domain.ErrInvalidInput)
		}
		item, ok := byProduct[line.ProductID]
		if !ok {
			return nil, fmt.Errorf("producto %s no pertenece a la orden: %w", line.ProductID, domain.ErrInvalidInput)
		}
		total := requested[line.ProductID].Add(line.Quantity)
		if item.ReceivedQty.Add(total).GreaterThan(item.OrderedQty) {
			return nil, fmt.Errorf("sobre-recepción del producto %s (recibido %s + %s > ordenado %s): %w",
				line.ProductID, item.ReceivedQty.String(), total.String(), item.OrderedQty.String(), domain.ErrInvalidInput)
		}
		requested[line.ProductID] = total
		receipt.Items = append(receipt.Items, &entity.PurchaseReceiptItem{
			ID:        uuid.New().String(),
			ReceiptID: receipt.ID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		})
	}
	if err := tx.Receipts.Create(receipt); err != nil {
		return nil, err
	}

	for _, rcLine := range receipt.Items {
		item := byProduct[rcLine.ProductID]
		if err := tx.Purchases.IncrementReceived(item.ID, rcLine.Quantity); err != nil {
			return nil, err
		}
		item.ReceivedQty = item.ReceivedQty.Add(rcLine.Quantity)

		if _, err := uc.ledger.Append(tx, inventory.MovementInput{
			OrganizationID: organizationID,
			ProductID:      rcLine.ProductID,
			WarehouseID:    order.WarehouseID,
			Type:           entity.MovementTypeIN,
			Quantity:       rcLine.Quantity,
			RefType:        entity.RefTypePurchaseReceipt,
			RefID:          receipt.ID,
			ActorID:        actorID,
		}); err != nil {
			return nil, err
		}
		event, err := outbox.NewMovementEvent(organizationID, rcLine.ProductID, order.WarehouseID)
		if err != nil {
			return nil, err
		}
		if err := tx.Outbox.Create(event); err != nil {
			return nil, err
		}
	}

	next := entity.PurchaseStatusPartiallyReceived
	if order.FullyReceived() {
		next = entity.PurchaseStatusCompleted
	}
	if err := fsm.PurchaseOrder.Transition(order.Status, next); err != nil {
		return nil, err
	}
	if err := tx.Purchases.UpdateStatus(organizationID, orderID, next); err != nil {
		return nil, err
	}
	return receipt, nil
}
