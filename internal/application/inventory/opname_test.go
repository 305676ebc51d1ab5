package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invorya/almacen-api/internal/application/inventory"
	"github.com/invorya/almacen-api/internal/domain"
	"github.com/invorya/almacen-api/internal/domain/entity"
)

func draftOpname(t *testing.T, e *env, productIDs ...string) *entity.StockOpname {
	t.Helper()
	op, err := e.opname.CreateDraft(context.Background(), inventory.OpnameDraftInput{
		OrganizationID: testOrgID,
		WarehouseID:    e.whA.ID,
		OpnameDate:     time.Now(),
		ProductIDs:     productIDs,
		ActorID:        testActorID,
	})
	require.NoError(t, err)
	return op
}

// ──────────────────────────────────────────────────────────────────────────────
// Apertura: captura de cantidades de sistema
// ──────────────────────────────────────────────────────────────────────────────

func TestOpname_CreateDraftCapturaSystemQty(t *testing.T) {
	e := newEnv(t)
	e.seedStock(t, e.product.ID, e.whA.ID, 12, 0)
	otro := e.seedProduct(t, "SKU-002", decimal.Zero)

	op := draftOpname(t, e, e.product.ID, otro.ID)
	assert.Equal(t, entity.OpnameStatusDraft, op.Status)
	require.Len(t, op.Items, 2)

	byProduct := map[string]*entity.StockOpnameItem{}
	for _, it := range op.Items {
		byProduct[it.ProductID] = it
	}
	// Con fila de inventario: la foto del momento. Sin fila: cero.
	assert.True(t, byProduct[e.product.ID].SystemQty.Equal(decimal.NewFromInt(12)))
	assert.True(t, byProduct[otro.ID].SystemQty.IsZero())
	// La cantidad contada arranca igual a la de sistema.
	assert.True(t, byProduct[e.product.ID].CountedQty.Equal(decimal.NewFromInt(12)))
}

func TestOpname_CreateDraftValidaciones(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	t.Run("sin productos", func(t *testing.T) {
		_, err := e.opname.CreateDraft(ctx, inventory.OpnameDraftInput{
			OrganizationID: testOrgID,
			WarehouseID:    e.whA.ID,
			OpnameDate:     time.Now(),
		})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("bodega inexistente", func(t *testing.T) {
		_, err := e.opname.CreateDraft(ctx, inventory.OpnameDraftInput{
			OrganizationID: testOrgID,
			WarehouseID:    "no-existe",
			OpnameDate:     time.Now(),
			ProductIDs:     []string{e.product.ID},
		})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

// ──────────────────────────────────────────────────────────────────────────────
// Registro de conteos
// ──────────────────────────────────────────────────────────────────────────────

func TestOpname_RecordCountSoloEnProgreso(t *testing.T) {
	e := newEnv(t)
	e.seedStock(t, e.product.ID, e.whA.ID, 10, 0)
	ctx := context.Background()

	op := draftOpname(t, e, e.product.ID)
	itemID := op.Items[0].ID

	// En DRAFT todavía no se cuenta.
	err := e.opname.RecordCount(ctx, testOrgID, op.ID, itemID, decimal.NewFromInt(8))
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	require.NoError(t, e.opname.Start(ctx, testOrgID, op.ID))
	require.NoError(t, e.opname.RecordCount(ctx, testOrgID, op.ID, itemID, decimal.NewFromInt(8)))

	got, err := e.opname.GetByID(ctx, testOrgID, op.ID)
	require.NoError(t, err)
	assert.True(t, got.Items[0].CountedQty.Equal(decimal.NewFromInt(8)))
	assert.True(t, got.Items[0].Discrepancy().Equal(decimal.NewFromInt(-2)))
}

func TestOpname_RecordCountValidaciones(t *testing.T) {
	e := newEnv(t)
	e.seedStock(t, e.product.ID, e.whA.ID, 10, 0)
	ctx := context.Background()

	op := draftOpname(t, e, e.product.ID)
	require.NoError(t, e.opname.Start(ctx, testOrgID, op.ID))

	t.Run("cantidad negativa", func(t *testing.T) {
		err := e.opname.RecordCount(ctx, testOrgID, op.ID, op.Items[0].ID, decimal.NewFromInt(-1))
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("línea ajena al conteo", func(t *testing.T) {
		err := e.opname.RecordCount(ctx, testOrgID, op.ID, "item-ajeno", decimal.NewFromInt(5))
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("conteo inexistente", func(t *testing.T) {
		err := e.opname.RecordCount(ctx, testOrgID, "no-existe", op.Items[0].ID, decimal.NewFromInt(5))
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

// ──────────────────────────────────────────────────────────────────────────────
// Cierre: ajustes solo por discrepancias
// ──────────────────────────────────────────────────────────────────────────────

func TestOpname_CompletePosteaAjustesPorDiscrepancia(t *testing.T) {
	e := newEnv(t)
	e.seedStock(t, e.product.ID, e.whA.ID, 10, 0)
	faltante := e.seedProduct(t, "SKU-002", decimal.Zero)
	e.seedStock(t, faltante.ID, e.whA.ID, 6, 0)
	exacto := e.seedProduct(t, "SKU-003", decimal.Zero)
	e.seedStock(t, exacto.ID, e.whA.ID, 3, 0)
	ctx := context.Background()

	op := draftOpname(t, e, e.product.ID, faltante.ID, exacto.ID)
	require.NoError(t, e.opname.Start(ctx, testOrgID, op.ID))

	byProduct := map[string]string{}
	for _, it := range op.Items {
		byProduct[it.ProductID] = it.ID
	}
	// Sobrante de 2 en el primero, faltante de 4 en el segundo, el tercero exacto.
	require.NoError(t, e.opname.RecordCount(ctx, testOrgID, op.ID, byProduct[e.product.ID], decimal.NewFromInt(12)))
	require.NoError(t, e.opname.RecordCount(ctx, testOrgID, op.ID, byProduct[faltante.ID], decimal.NewFromInt(2)))

	require.NoError(t, e.opname.Complete(ctx, testOrgID, op.ID, testActorID))

	got, err := e.opname.GetByID(ctx, testOrgID, op.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OpnameStatusCompleted, got.Status)

	// El stock queda alineado a lo contado.
	assert.True(t, e.onHand(t, e.product.ID, e.whA.ID).Equal(decimal.NewFromInt(12)))
	assert.True(t, e.onHand(t, faltante.ID, e.whA.ID).Equal(decimal.NewFromInt(2)))
	assert.True(t, e.onHand(t, exacto.ID, e.whA.ID).Equal(decimal.NewFromInt(3)))

	// ADJUST con delta firmado solo para las líneas con discrepancia.
	movsSobrante := e.movements(t, e.product.ID)
	require.Len(t, movsSobrante, 1)
	assert.Equal(t, entity.MovementTypeADJUST, movsSobrante[0].Type)
	assert.True(t, movsSobrante[0].Quantity.Equal(decimal.NewFromInt(2)))
	assert.Equal(t, entity.RefTypeOpname, movsSobrante[0].RefType)
	assert.Equal(t, op.ID, movsSobrante[0].RefID)

	movsFaltante := e.movements(t, faltante.ID)
	require.Len(t, movsFaltante, 1)
	assert.True(t, movsFaltante[0].Quantity.Equal(decimal.NewFromInt(-4)))

	assert.Empty(t, e.movements(t, exacto.ID))
	// Un evento de outbox por línea ajustada.
	assert.Len(t, e.pendingOutbox(t), 2)
}

func TestOpname_CompleteDesdeDraftEsIlegal(t *testing.T) {
	e := newEnv(t)
	e.seedStock(t, e.product.ID, e.whA.ID, 10, 0)

	op := draftOpname(t, e, e.product.ID)
	err := e.opname.Complete(context.Background(), testOrgID, op.ID, testActorID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestOpname_CancelNoTocaElLibro(t *testing.T) {
	e := newEnv(t)
	e.seedStock(t, e.product.ID, e.whA.ID, 10, 0)
	ctx := context.Background()

	op := draftOpname(t, e, e.product.ID)
	require.NoError(t, e.opname.Start(ctx, testOrgID, op.ID))
	require.NoError(t, e.opname.RecordCount(ctx, testOrgID, op.ID, op.Items[0].ID, decimal.NewFromInt(1)))
	require.NoError(t, e.opname.Cancel(ctx, testOrgID, op.ID))

	got, err := e.opname.GetByID(ctx, testOrgID, op.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OpnameStatusCancelled, got.Status)

	// Nada llegó al libro aunque hubiera discrepancias registradas.
	assert.True(t, e.onHand(t, e.product.ID, e.whA.ID).Equal(decimal.NewFromInt(10)))
	assert.Empty(t, e.movements(t, e.product.ID))

	// Un conteo cancelado no se reabre.
	err = e.opname.Start(ctx, testOrgID, op.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}
