package inventory_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invorya/almacen-api/internal/application/inventory"
	"github.com/invorya/almacen-api/internal/domain"
	"github.com/invorya/almacen-api/internal/domain/entity"
)

func draftTransfer(t *testing.T, e *env, qty int64) *entity.StockTransfer {
	t.Helper()
	tr, err := e.transfer.CreateDraft(context.Background(), inventory.TransferDraftInput{
		OrganizationID:  testOrgID,
		FromWarehouseID: e.whA.ID,
		ToWarehouseID:   e.whB.ID,
		Lines: []inventory.TransferLine{
			{ProductID: e.product.ID, Quantity: decimal.NewFromInt(qty)},
		},
		ActorID: testActorID,
	})
	require.NoError(t, err)
	return tr
}

// ──────────────────────────────────────────────────────────────────────────────
// Borrador
// ──────────────────────────────────────────────────────────────────────────────

func TestTransfer_CreateDraftNoTocaStock(t *testing.T) {
	e := newEnv(t)
	e.seedStock(t, e.product.ID, e.whA.ID, 10, 0)

	tr := draftTransfer(t, e, 4)
	assert.Equal(t, entity.TransferStatusDraft, tr.Status)
	require.Len(t, tr.Items, 1)

	// Un borrador es un plan: ni libro ni contadores.
	assert.True(t, e.onHand(t, e.product.ID, e.whA.ID).Equal(decimal.NewFromInt(10)))
	assert.True(t, e.onHand(t, e.product.ID, e.whB.ID).IsZero())
	assert.Empty(t, e.movements(t, e.product.ID))
}

func TestTransfer_CreateDraftValidaciones(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	t.Run("misma bodega origen y destino", func(t *testing.T) {
		_, err := e.transfer.CreateDraft(ctx, inventory.TransferDraftInput{
			OrganizationID:  testOrgID,
			FromWarehouseID: e.whA.ID,
			ToWarehouseID:   e.whA.ID,
			Lines:           []inventory.TransferLine{{ProductID: e.product.ID, Quantity: decimal.NewFromInt(1)}},
		})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("sin líneas", func(t *testing.T) {
		_, err := e.transfer.CreateDraft(ctx, inventory.TransferDraftInput{
			OrganizationID:  testOrgID,
			FromWarehouseID: e.whA.ID,
			ToWarehouseID:   e.whB.ID,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("cantidad no positiva", func(t *testing.T) {
		_, err := e.transfer.CreateDraft(ctx, inventory.TransferDraftInput{
			OrganizationID:  testOrgID,
			FromWarehouseID: e.whA.ID,
			ToWarehouseID:   e.whB.ID,
			Lines:           []inventory.TransferLine{{ProductID: e.product.ID, Quantity: decimal.Zero}},
		})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("producto inexistente", func(t *testing.T) {
		_, err := e.transfer.CreateDraft(ctx, inventory.TransferDraftInput{
			OrganizationID:  testOrgID,
			FromWarehouseID: e.whA.ID,
			ToWarehouseID:   e.whB.ID,
			Lines:           []inventory.TransferLine{{ProductID: "no-existe", Quantity: decimal.NewFromInt(1)}},
		})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

// ──────────────────────────────────────────────────────────────────────────────
// Ciclo completo: DRAFT → SENT → COMPLETED
// ──────────────────────────────────────────────────────────────────────────────

func TestTransfer_CicloCompletoMueveStockEntreBodegas(t *testing.T) {
	e := newEnv(t)
	e.seedStock(t, e.product.ID, e.whA.ID, 10, 0)
	ctx := context.Background()

	tr := draftTransfer(t, e, 4)

	require.NoError(t, e.transfer.Send(ctx, testOrgID, tr.ID))
	got, err := e.transfer.GetByID(ctx, testOrgID, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusSent, got.Status)
	// Enviar valida disponibilidad pero aún no mueve stock.
	assert.True(t, e.onHand(t, e.product.ID, e.whA.ID).Equal(decimal.NewFromInt(10)))

	require.NoError(t, e.transfer.Complete(ctx, testOrgID, tr.ID, testActorID))
	got, err = e.transfer.GetByID(ctx, testOrgID, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusCompleted, got.Status)

	assert.True(t, e.onHand(t, e.product.ID, e.whA.ID).Equal(decimal.NewFromInt(6)))
	assert.True(t, e.onHand(t, e.product.ID, e.whB.ID).Equal(decimal.NewFromInt(4)))

	// Par de movimientos enlazados al traslado: salida en origen, entrada en destino.
	movs := e.movements(t, e.product.ID)
	require.Len(t, movs, 2)
	byType := map[entity.MovementType]*entity.InventoryMovement{}
	for _, m := range movs {
		byType[m.Type] = m
	}
	out := byType[entity.MovementTypeTransferOUT]
	in := byType[entity.MovementTypeTransferIN]
	require.NotNil(t, out)
	require.NotNil(t, in)
	assert.Equal(t, e.whA.ID, out.WarehouseID)
	assert.Equal(t, e.whB.ID, in.WarehouseID)
	assert.True(t, out.Quantity.Equal(decimal.NewFromInt(4)))
	assert.True(t, in.Quantity.Equal(decimal.NewFromInt(4)))
	assert.Equal(t, entity.RefTypeTransfer, out.RefType)
	assert.Equal(t, tr.ID, out.RefID)

	// Un evento de outbox por bodega afectada.
	assert.Len(t, e.pendingOutbox(t), 2)
}

func TestTransfer_SendSinDisponibilidad(t *testing.T) {
	e := newEnv(t)
	e.seedStock(t, e.product.ID, e.whA.ID, 3, 0)

	tr := draftTransfer(t, e, 5)
	err := e.transfer.Send(context.Background(), testOrgID, tr.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	// El traslado sigue en borrador.
	got, gerr := e.transfer.GetByID(context.Background(), testOrgID, tr.ID)
	require.NoError(t, gerr)
	assert.Equal(t, entity.TransferStatusDraft, got.Status)
}

func TestTransfer_SendConsideraReservas(t *testing.T) {
	e := newEnv(t)
	// 10 en mano pero 8 reservados: solo 2 disponibles.
	e.seedStock(t, e.product.ID, e.whA.ID, 10, 8)

	tr := draftTransfer(t, e, 3)
	err := e.transfer.Send(context.Background(), testOrgID, tr.ID)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestTransfer_CompleteFallidoQuedaEnSent(t *testing.T) {
	e := newEnv(t)
	e.seedStock(t, e.product.ID, e.whA.ID, 5, 0)
	ctx := context.Background()

	tr := draftTransfer(t, e, 5)
	require.NoError(t, e.transfer.Send(ctx, testOrgID, tr.ID))

	// Entre SENT y COMPLETED el stock de origen se drenó por otra vía.
	_, err := e.adjust.Create(ctx, inventory.AdjustmentInput{
		OrganizationID: testOrgID,
		ProductID:      e.product.ID,
		WarehouseID:    e.whA.ID,
		Direction:      entity.AdjustmentDecrease,
		Quantity:       decimal.NewFromInt(3),
		Reason:         entity.ReasonDamage,
		ActorID:        testActorID,
	})
	require.NoError(t, err)

	err = e.transfer.Complete(ctx, testOrgID, tr.ID, testActorID)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	// Rollback total: nada se movió y el traslado sigue SENT para reintentar.
	got, gerr := e.transfer.GetByID(ctx, testOrgID, tr.ID)
	require.NoError(t, gerr)
	assert.Equal(t, entity.TransferStatusSent, got.Status)
	assert.True(t, e.onHand(t, e.product.ID, e.whA.ID).Equal(decimal.NewFromInt(2)))
	assert.True(t, e.onHand(t, e.product.ID, e.whB.ID).IsZero())
}

// ──────────────────────────────────────────────────────────────────────────────
// Transiciones ilegales y cancelación
// ──────────────────────────────────────────────────────────────────────────────

func TestTransfer_CompleteDesdeDraftEsIlegal(t *testing.T) {
	e := newEnv(t)
	e.seedStock(t, e.product.ID, e.whA.ID, 10, 0)

	tr := draftTransfer(t, e, 2)
	err := e.transfer.Complete(context.Background(), testOrgID, tr.ID, testActorID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestTransfer_CancelDesdeDraftYSent(t *testing.T) {
	e := newEnv(t)
	e.seedStock(t, e.product.ID, e.whA.ID, 10, 0)
	ctx := context.Background()

	t.Run("desde DRAFT", func(t *testing.T) {
		tr := draftTransfer(t, e, 2)
		require.NoError(t, e.transfer.Cancel(ctx, testOrgID, tr.ID))
		got, err := e.transfer.GetByID(ctx, testOrgID, tr.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.TransferStatusCancelled, got.Status)
	})

	t.Run("desde SENT", func(t *testing.T) {
		tr := draftTransfer(t, e, 2)
		require.NoError(t, e.transfer.Send(ctx, testOrgID, tr.ID))
		require.NoError(t, e.transfer.Cancel(ctx, testOrgID, tr.ID))
		got, err := e.transfer.GetByID(ctx, testOrgID, tr.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.TransferStatusCancelled, got.Status)
	})

	t.Run("cancelado es terminal", func(t *testing.T) {
		tr := draftTransfer(t, e, 2)
		require.NoError(t, e.transfer.Cancel(ctx, testOrgID, tr.ID))
		err := e.transfer.Send(ctx, testOrgID, tr.ID)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	// Cancelar nunca movió stock.
	assert.True(t, e.onHand(t, e.product.ID, e.whA.ID).Equal(decimal.NewFromInt(10)))
}

func TestTransfer_ListFiltraPorStatus(t *testing.T) {
	e := newEnv(t)
	e.seedStock(t, e.product.ID, e.whA.ID, 10, 0)
	ctx := context.Background()

	d1 := draftTransfer(t, e, 1)
	d2 := draftTransfer(t, e, 1)
	require.NoError(t, e.transfer.Send(ctx, testOrgID, d2.ID))

	drafts, err := e.transfer.List(ctx, testOrgID, entity.TransferStatusDraft, 10, 0)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, d1.ID, drafts[0].ID)

	all, err := e.transfer.List(ctx, testOrgID, "", 10, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
