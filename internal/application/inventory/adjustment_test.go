package inventory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invorya/almacen-api/internal/application/inventory"
	"github.com/invorya/almacen-api/internal/domain"
	"github.com/invorya/almacen-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Ajustes manuales: creación y efectos en el libro
// ──────────────────────────────────────────────────────────────────────────────

func TestAdjustment_IncreaseCreaItemMovimientoYOutbox(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	adj, err := e.adjust.Create(ctx, inventory.AdjustmentInput{
		OrganizationID: testOrgID,
		ProductID:      e.product.ID,
		WarehouseID:    e.whA.ID,
		Direction:      entity.AdjustmentIncrease,
		Quantity:       decimal.NewFromInt(10),
		Reason:         entity.ReasonRestock,
		Notes:          "carga inicial",
		ActorID:        testActorID,
	})
	require.NoError(t, err)
	require.NotNil(t, adj)
	assert.NotEmpty(t, adj.ID)

	// El ítem se crea perezosamente con el delta del ajuste.
	assert.True(t, e.onHand(t, e.product.ID, e.whA.ID).Equal(decimal.NewFromInt(10)))

	// Exactamente un movimiento ADJUST con delta positivo y referencia al ajuste.
	movs := e.movements(t, e.product.ID)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementTypeADJUST, movs[0].Type)
	assert.True(t, movs[0].Quantity.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, entity.RefTypeAdjustment, movs[0].RefType)
	assert.Equal(t, adj.ID, movs[0].RefID)
	assert.Equal(t, testActorID, movs[0].CreatedBy)

	// El evento de outbox quedó en la misma transacción.
	events := e.pendingOutbox(t)
	require.Len(t, events, 1)
	assert.Equal(t, entity.TopicMovementCreated, events[0].Topic)
	assert.Equal(t, entity.OutboxStatusPending, events[0].Status)
}

func TestAdjustment_DecreaseGuardaDeltaNegativo(t *testing.T) {
	e := newEnv(t)
	e.seedStock(t, e.product.ID, e.whA.ID, 10, 0)

	_, err := e.adjust.Create(context.Background(), inventory.AdjustmentInput{
		OrganizationID: testOrgID,
		ProductID:      e.product.ID,
		WarehouseID:    e.whA.ID,
		Direction:      entity.AdjustmentDecrease,
		Quantity:       decimal.NewFromInt(4),
		Reason:         entity.ReasonDamage,
		ActorID:        testActorID,
	})
	require.NoError(t, err)

	assert.True(t, e.onHand(t, e.product.ID, e.whA.ID).Equal(decimal.NewFromInt(6)))

	movs := e.movements(t, e.product.ID)
	require.Len(t, movs, 1)
	// ADJUST registra el delta con signo, no la magnitud.
	assert.True(t, movs[0].Quantity.Equal(decimal.NewFromInt(-4)))
}

func TestAdjustment_DecreaseSobreDisponibleRevierteTodo(t *testing.T) {
	e := newEnv(t)
	e.seedStock(t, e.product.ID, e.whA.ID, 5, 0)

	_, err := e.adjust.Create(context.Background(), inventory.AdjustmentInput{
		OrganizationID: testOrgID,
		ProductID:      e.product.ID,
		WarehouseID:    e.whA.ID,
		Direction:      entity.AdjustmentDecrease,
		Quantity:       decimal.NewFromInt(8),
		Reason:         entity.ReasonLoss,
		ActorID:        testActorID,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	// Rollback total: ni ajuste, ni movimiento, ni evento, ni cambio de stock.
	assert.True(t, e.onHand(t, e.product.ID, e.whA.ID).Equal(decimal.NewFromInt(5)))
	assert.Empty(t, e.movements(t, e.product.ID))
	assert.Empty(t, e.pendingOutbox(t))
	adjs, err := e.store.Repos().Adjustments.ListByOrganization(testOrgID, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, adjs)
}

func TestAdjustment_DecreaseExactoAlDisponibleDejaCero(t *testing.T) {
	e := newEnv(t)
	e.seedStock(t, e.product.ID, e.whA.ID, 5, 0)

	_, err := e.adjust.Create(context.Background(), inventory.AdjustmentInput{
		OrganizationID: testOrgID,
		ProductID:      e.product.ID,
		WarehouseID:    e.whA.ID,
		Direction:      entity.AdjustmentDecrease,
		Quantity:       decimal.NewFromInt(5),
		Reason:         entity.ReasonCorrection,
		ActorID:        testActorID,
	})
	require.NoError(t, err)
	assert.True(t, e.onHand(t, e.product.ID, e.whA.ID).IsZero())
}

func TestAdjustment_DecreaseRespetaReservas(t *testing.T) {
	e := newEnv(t)
	// 10 en mano, 4 reservados: solo 6 disponibles.
	e.seedStock(t, e.product.ID, e.whA.ID, 10, 4)

	_, err := e.adjust.Create(context.Background(), inventory.AdjustmentInput{
		OrganizationID: testOrgID,
		ProductID:      e.product.ID,
		WarehouseID:    e.whA.ID,
		Direction:      entity.AdjustmentDecrease,
		Quantity:       decimal.NewFromInt(7),
		Reason:         entity.ReasonDamage,
		ActorID:        testActorID,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestAdjustment_DecreaseSinItemExistente(t *testing.T) {
	e := newEnv(t)

	_, err := e.adjust.Create(context.Background(), inventory.AdjustmentInput{
		OrganizationID: testOrgID,
		ProductID:      e.product.ID,
		WarehouseID:    e.whA.ID,
		Direction:      entity.AdjustmentDecrease,
		Quantity:       decimal.NewFromInt(1),
		Reason:         entity.ReasonLoss,
		ActorID:        testActorID,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

// ──────────────────────────────────────────────────────────────────────────────
// Validaciones de entrada
// ──────────────────────────────────────────────────────────────────────────────

func TestAdjustment_ValidacionesDeEntrada(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	base := inventory.AdjustmentInput{
		OrganizationID: testOrgID,
		ProductID:      e.product.ID,
		WarehouseID:    e.whA.ID,
		Direction:      entity.AdjustmentIncrease,
		Quantity:       decimal.NewFromInt(1),
		Reason:         entity.ReasonRestock,
		ActorID:        testActorID,
	}

	t.Run("cantidad cero", func(t *testing.T) {
		in := base
		in.Quantity = decimal.Zero
		_, err := e.adjust.Create(ctx, in)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("cantidad negativa", func(t *testing.T) {
		in := base
		in.Quantity = decimal.NewFromInt(-3)
		_, err := e.adjust.Create(ctx, in)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("dirección desconocida", func(t *testing.T) {
		in := base
		in.Direction = entity.AdjustmentDirection("SIDEWAYS")
		_, err := e.adjust.Create(ctx, in)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("razón fuera de catálogo", func(t *testing.T) {
		in := base
		in.Reason = "PORQUE_SI"
		_, err := e.adjust.Create(ctx, in)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("producto inexistente", func(t *testing.T) {
		in := base
		in.ProductID = "no-existe"
		_, err := e.adjust.Create(ctx, in)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("bodega inexistente", func(t *testing.T) {
		in := base
		in.WarehouseID = "no-existe"
		_, err := e.adjust.Create(ctx, in)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

// ──────────────────────────────────────────────────────────────────────────────
// Aislamiento entre organizaciones y lecturas
// ──────────────────────────────────────────────────────────────────────────────

func TestAdjustment_GetByIDFiltraPorOrganizacion(t *testing.T) {
	e := newEnv(t)

	adj, err := e.adjust.Create(context.Background(), inventory.AdjustmentInput{
		OrganizationID: testOrgID,
		ProductID:      e.product.ID,
		WarehouseID:    e.whA.ID,
		Direction:      entity.AdjustmentIncrease,
		Quantity:       decimal.NewFromInt(2),
		Reason:         entity.ReasonFound,
		ActorID:        testActorID,
	})
	require.NoError(t, err)

	got, err := e.adjust.GetByID(context.Background(), testOrgID, adj.ID)
	require.NoError(t, err)
	assert.Equal(t, adj.ID, got.ID)

	// Desde otra organización el mismo ID se comporta como inexistente.
	_, err = e.adjust.GetByID(context.Background(), "otra-org", adj.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Concurrencia: dos disminuciones compitiendo por el mismo stock
// ──────────────────────────────────────────────────────────────────────────────

func TestAdjustment_DisminucionesConcurrentesNoSobregiran(t *testing.T) {
	e := newEnv(t)
	e.seedStock(t, e.product.ID, e.whA.ID, 3, 0)

	in := inventory.AdjustmentInput{
		OrganizationID: testOrgID,
		ProductID:      e.product.ID,
		WarehouseID:    e.whA.ID,
		Direction:      entity.AdjustmentDecrease,
		Quantity:       decimal.NewFromInt(3),
		Reason:         entity.ReasonDamage,
		ActorID:        testActorID,
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = e.adjust.Create(context.Background(), in)
		}(i)
	}
	wg.Wait()

	// Exactamente una gana; la otra choca con stock insuficiente.
	var oks, insuf int
	for _, err := range errs {
		switch {
		case err == nil:
			oks++
		default:
			require.ErrorIs(t, err, domain.ErrInsufficientStock)
			insuf++
		}
	}
	assert.Equal(t, 1, oks)
	assert.Equal(t, 1, insuf)
	assert.True(t, e.onHand(t, e.product.ID, e.whA.ID).IsZero())
	assert.Len(t, e.movements(t, e.product.ID), 1)
}
