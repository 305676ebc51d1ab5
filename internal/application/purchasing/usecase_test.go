package purchasing_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invorya/almacen-api/internal/application/inventory"
	"github.com/invorya/almacen-api/internal/application/purchasing"
	"github.com/invorya/almacen-api/internal/domain"
	"github.com/invorya/almacen-api/internal/domain/entity"
	"github.com/invorya/almacen-api/internal/infrastructure/memory"
)

const (
	testOrgID      = "org-0001"
	testActorID    = "user-0001"
	testSupplierID = "prov-0001"
)

type env struct {
	store     *memory.Store
	product   *entity.Product
	warehouse *entity.Warehouse
	uc        *purchasing.PurchaseUseCase
}

func newEnv(t *testing.T) *env {
	t.Helper()

	store := memory.NewStore()
	now := time.Now()
	product := &entity.Product{
		ID:             uuid.New().String(),
		OrganizationID: testOrgID,
		SKU:            "SKU-001",
		Name:           "Producto SKU-001",
		UnitMeasure:    "UN",
		Price:          decimal.NewFromInt(100),
		Cost:           decimal.NewFromInt(60),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	require.NoError(t, store.Products().Create(product))
	warehouse := &entity.Warehouse{
		ID:             uuid.New().String(),
		OrganizationID: testOrgID,
		Code:           "BOD-A",
		Name:           "Bodega BOD-A",
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	require.NoError(t, store.Warehouses().Create(warehouse))

	uc := purchasing.NewPurchaseUseCase(
		memory.NewTxRunner(store),
		store.Products(),
		store.Warehouses(),
		store.Repos().Purchases,
		store.Repos().Receipts,
		inventory.NewLedger(false),
	)
	return &env{store: store, product: product, warehouse: warehouse, uc: uc}
}

func (e *env) draftOrder(t *testing.T, qty int64) *entity.PurchaseOrder {
	t.Helper()
	order, err := e.uc.CreateDraft(context.Background(), purchasing.PurchaseDraftInput{
		OrganizationID: testOrgID,
		SupplierID:     testSupplierID,
		WarehouseID:    e.warehouse.ID,
		Lines: []purchasing.PurchaseLine{
			{ProductID: e.product.ID, OrderedQty: decimal.NewFromInt(qty), UnitCost: decimal.NewFromInt(60)},
		},
		ActorID: testActorID,
	})
	require.NoError(t, err)
	return order
}

func (e *env) onHand(t *testing.T) decimal.Decimal {
	t.Helper()
	item, err := e.store.Repos().Items.Get(testOrgID, e.product.ID, e.warehouse.ID)
	require.NoError(t, err)
	if item == nil {
		return decimal.Zero
	}
	return item.QuantityOnHand
}

// ──────────────────────────────────────────────────────────────────────────────
// Borrador
// ──────────────────────────────────────────────────────────────────────────────

func TestPurchase_CreateDraftSinEfectoEnStock(t *testing.T) {
	e := newEnv(t)

	order := e.draftOrder(t, 20)
	assert.Equal(t, entity.PurchaseStatusDraft, order.Status)
	require.Len(t, order.Items, 1)
	assert.True(t, order.Items[0].ReceivedQty.IsZero())
	assert.True(t, order.Items[0].Remaining().Equal(decimal.NewFromInt(20)))
	assert.True(t, e.onHand(t).IsZero())
}

func TestPurchase_CreateDraftValidaciones(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	t.Run("sin líneas", func(t *testing.T) {
		_, err := e.uc.CreateDraft(ctx, purchasing.PurchaseDraftInput{
			OrganizationID: testOrgID,
			SupplierID:     testSupplierID,
			WarehouseID:    e.warehouse.ID,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("cantidad ordenada no positiva", func(t *testing.T) {
		_, err := e.uc.CreateDraft(ctx, purchasing.PurchaseDraftInput{
			OrganizationID: testOrgID,
			SupplierID:     testSupplierID,
			WarehouseID:    e.warehouse.ID,
			Lines:          []purchasing.PurchaseLine{{ProductID: e.product.ID, OrderedQty: decimal.Zero}},
		})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("costo negativo", func(t *testing.T) {
		_, err := e.uc.CreateDraft(ctx, purchasing.PurchaseDraftInput{
			OrganizationID: testOrgID,
			SupplierID:     testSupplierID,
			WarehouseID:    e.warehouse.ID,
			Lines: []purchasing.PurchaseLine{
				{ProductID: e.product.ID, OrderedQty: decimal.NewFromInt(1), UnitCost: decimal.NewFromInt(-1)},
			},
		})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("bodega inexistente", func(t *testing.T) {
		_, err := e.uc.CreateDraft(ctx, purchasing.PurchaseDraftInput{
			OrganizationID: testOrgID,
			SupplierID:     testSupplierID,
			WarehouseID:    "no-existe",
			Lines: []purchasing.PurchaseLine{
				{ProductID: e.product.ID, OrderedQty: decimal.NewFromInt(1)},
			},
		})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

// ──────────────────────────────────────────────────────────────────────────────
// Recepción parcial y total
// ──────────────────────────────────────────────────────────────────────────────

func TestPurchase_RecepcionParcialLuegoTotal(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	order := e.draftOrder(t, 20)

	// Primera entrega: 12 de 20.
	rec1, err := e.uc.CreateReceipt(ctx, testOrgID, order.ID,
		[]purchasing.ReceiptLine{{ProductID: e.product.ID, Quantity: decimal.NewFromInt(12)}}, testActorID)
	require.NoError(t, err)
	require.Len(t, rec1.Items, 1)

	got, err := e.uc.GetByID(ctx, testOrgID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PurchaseStatusPartiallyReceived, got.Status)
	assert.True(t, got.Items[0].ReceivedQty.Equal(decimal.NewFromInt(12)))
	assert.True(t, e.onHand(t).Equal(decimal.NewFromInt(12)))

	// Segunda entrega: los 8 restantes cierran la orden.
	_, err = e.uc.CreateReceipt(ctx, testOrgID, order.ID,
		[]purchasing.ReceiptLine{{ProductID: e.product.ID, Quantity: decimal.NewFromInt(8)}}, testActorID)
	require.NoError(t, err)

	got, err = e.uc.GetByID(ctx, testOrgID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PurchaseStatusCompleted, got.Status)
	assert.True(t, got.FullyReceived())
	assert.True(t, e.onHand(t).Equal(decimal.NewFromInt(20)))

	// Un movimiento IN por línea de cada recibo, referenciando al recibo.
	movs, err := e.store.Repos().Movements.ListByProduct(testOrgID, e.product.ID, nil, nil, 100, 0)
	require.NoError(t, err)
	require.Len(t, movs, 2)
	for _, m := range movs {
		assert.Equal(t, entity.MovementTypeIN, m.Type)
		assert.Equal(t, entity.RefTypePurchaseReceipt, m.RefType)
	}

	// Historial de recibos consultable.
	receipts, err := e.uc.ListReceipts(ctx, testOrgID, order.ID)
	require.NoError(t, err)
	assert.Len(t, receipts, 2)
}

func TestPurchase_SobreRecepcionRechazada(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	order := e.draftOrder(t, 10)

	_, err := e.uc.CreateReceipt(ctx, testOrgID, order.ID,
		[]purchasing.ReceiptLine{{ProductID: e.product.ID, Quantity: decimal.NewFromInt(7)}}, testActorID)
	require.NoError(t, err)

	// 7 recibidos + 5 > 10 ordenados.
	_, err = e.uc.CreateReceipt(ctx, testOrgID, order.ID,
		[]purchasing.ReceiptLine{{ProductID: e.product.ID, Quantity: decimal.NewFromInt(5)}}, testActorID)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// Rollback: ni stock ni estado cambiaron.
	assert.True(t, e.onHand(t).Equal(decimal.NewFromInt(7)))
	got, gerr := e.uc.GetByID(ctx, testOrgID, order.ID)
	require.NoError(t, gerr)
	assert.Equal(t, entity.PurchaseStatusPartiallyReceived, got.Status)
	assert.True(t, got.Items[0].ReceivedQty.Equal(decimal.NewFromInt(7)))
}

func TestPurchase_SobreRecepcionEnLineasRepetidasRechazada(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	order := e.draftOrder(t, 10)

	// Un solo recibo con el producto repetido: 6 + 6 = 12 > 10 ordenados.
	// Las líneas deben validarse por su suma, no cada una contra la orden.
	_, err := e.uc.CreateReceipt(ctx, testOrgID, order.ID,
		[]purchasing.ReceiptLine{
			{ProductID: e.product.ID, Quantity: decimal.NewFromInt(6)},
			{ProductID: e.product.ID, Quantity: decimal.NewFromInt(6)},
		}, testActorID)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// Rollback completo: la orden sigue DRAFT sin nada recibido y sin stock.
	assert.True(t, e.onHand(t).IsZero())
	got, gerr := e.uc.GetByID(ctx, testOrgID, order.ID)
	require.NoError(t, gerr)
	assert.Equal(t, entity.PurchaseStatusDraft, got.Status)
	assert.True(t, got.Items[0].ReceivedQty.IsZero())

	// Dentro del límite sí se aceptan líneas repetidas: 6 + 4 = 10.
	_, err = e.uc.CreateReceipt(ctx, testOrgID, order.ID,
		[]purchasing.ReceiptLine{
			{ProductID: e.product.ID, Quantity: decimal.NewFromInt(6)},
			{ProductID: e.product.ID, Quantity: decimal.NewFromInt(4)},
		}, testActorID)
	require.NoError(t, err)
	got, gerr = e.uc.GetByID(ctx, testOrgID, order.ID)
	require.NoError(t, gerr)
	assert.Equal(t, entity.PurchaseStatusCompleted, got.Status)
	assert.True(t, e.onHand(t).Equal(decimal.NewFromInt(10)))
}

func TestPurchase_RecepcionValidaciones(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	order := e.draftOrder(t, 10)

	t.Run("sin líneas", func(t *testing.T) {
		_, err := e.uc.CreateReceipt(ctx, testOrgID, order.ID, nil, testActorID)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("producto ajeno a la orden", func(t *testing.T) {
		_, err := e.uc.CreateReceipt(ctx, testOrgID, order.ID,
			[]purchasing.ReceiptLine{{ProductID: "otro", Quantity: decimal.NewFromInt(1)}}, testActorID)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("orden inexistente", func(t *testing.T) {
		_, err := e.uc.CreateReceipt(ctx, testOrgID, "no-existe",
			[]purchasing.ReceiptLine{{ProductID: e.product.ID, Quantity: decimal.NewFromInt(1)}}, testActorID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestPurchase_RecibirContraOrdenTerminalRechazado(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	t.Run("cancelada", func(t *testing.T) {
		order := e.draftOrder(t, 5)
		require.NoError(t, e.uc.Cancel(ctx, testOrgID, order.ID))
		_, err := e.uc.CreateReceipt(ctx, testOrgID, order.ID,
			[]purchasing.ReceiptLine{{ProductID: e.product.ID, Quantity: decimal.NewFromInt(1)}}, testActorID)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("completada", func(t *testing.T) {
		order := e.draftOrder(t, 5)
		_, err := e.uc.Complete(ctx, testOrgID, order.ID, testActorID)
		require.NoError(t, err)
		_, err = e.uc.CreateReceipt(ctx, testOrgID, order.ID,
			[]purchasing.ReceiptLine{{ProductID: e.product.ID, Quantity: decimal.NewFromInt(1)}}, testActorID)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})
}

// ──────────────────────────────────────────────────────────────────────────────
// Complete: recibir todo lo pendiente
// ──────────────────────────────────────────────────────────────────────────────

func TestPurchase_CompleteRecibeLoPendiente(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	order := e.draftOrder(t, 20)

	_, err := e.uc.CreateReceipt(ctx, testOrgID, order.ID,
		[]purchasing.ReceiptLine{{ProductID: e.product.ID, Quantity: decimal.NewFromInt(12)}}, testActorID)
	require.NoError(t, err)

	receipt, err := e.uc.Complete(ctx, testOrgID, order.ID, testActorID)
	require.NoError(t, err)
	require.Len(t, receipt.Items, 1)
	assert.True(t, receipt.Items[0].Quantity.Equal(decimal.NewFromInt(8)))

	got, err := e.uc.GetByID(ctx, testOrgID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PurchaseStatusCompleted, got.Status)
	assert.True(t, e.onHand(t).Equal(decimal.NewFromInt(20)))
}

func TestPurchase_CompleteSinPendientesEsConflicto(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	order := e.draftOrder(t, 5)

	_, err := e.uc.Complete(ctx, testOrgID, order.ID, testActorID)
	require.NoError(t, err)

	_, err = e.uc.Complete(ctx, testOrgID, order.ID, testActorID)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

// ──────────────────────────────────────────────────────────────────────────────
// Cancelación
// ──────────────────────────────────────────────────────────────────────────────

func TestPurchase_CancelSoloDesdeDraft(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	t.Run("desde DRAFT", func(t *testing.T) {
		order := e.draftOrder(t, 5)
		require.NoError(t, e.uc.Cancel(ctx, testOrgID, order.ID))
		got, err := e.uc.GetByID(ctx, testOrgID, order.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.PurchaseStatusCancelled, got.Status)
	})

	t.Run("con stock ingresado no se anula", func(t *testing.T) {
		order := e.draftOrder(t, 5)
		_, err := e.uc.CreateReceipt(ctx, testOrgID, order.ID,
			[]purchasing.ReceiptLine{{ProductID: e.product.ID, Quantity: decimal.NewFromInt(2)}}, testActorID)
		require.NoError(t, err)
		err = e.uc.Cancel(ctx, testOrgID, order.ID)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})
}

func TestPurchase_ListFiltraPorStatus(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	d1 := e.draftOrder(t, 5)
	d2 := e.draftOrder(t, 5)
	require.NoError(t, e.uc.Cancel(ctx, testOrgID, d2.ID))

	drafts, err := e.uc.List(ctx, testOrgID, entity.PurchaseStatusDraft, 10, 0)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, d1.ID, drafts[0].ID)

	all, err := e.uc.List(ctx, testOrgID, "", 10, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
