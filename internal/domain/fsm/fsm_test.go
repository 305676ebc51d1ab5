package fsm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invorya/almacen-api/internal/domain"
	"github.com/invorya/almacen-api/internal/domain/entity"
	"github.com/invorya/almacen-api/internal/domain/fsm"
)

// ──────────────────────────────────────────────────────────────────────────────
// Tablas de transiciones por flujo
// ──────────────────────────────────────────────────────────────────────────────

func TestTransfer_TransicionesLegales(t *testing.T) {
	cases := []struct {
		from, to string
		ok       bool
	}{
		{entity.TransferStatusDraft, entity.TransferStatusSent, true},
		{entity.TransferStatusDraft, entity.TransferStatusCancelled, true},
		{entity.TransferStatusSent, entity.TransferStatusCompleted, true},
		{entity.TransferStatusSent, entity.TransferStatusCancelled, true},
		{entity.TransferStatusDraft, entity.TransferStatusCompleted, false}, // no se salta SENT
		{entity.TransferStatusCompleted, entity.TransferStatusCancelled, false},
		{entity.TransferStatusCancelled, entity.TransferStatusSent, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.ok, fsm.Transfer.Can(c.from, c.to), "%s → %s", c.from, c.to)
	}
}

func TestPurchaseOrder_TransicionesLegales(t *testing.T) {
	cases := []struct {
		from, to string
		ok       bool
	}{
		{entity.PurchaseStatusDraft, entity.PurchaseStatusPartiallyReceived, true},
		{entity.PurchaseStatusDraft, entity.PurchaseStatusCompleted, true},
		{entity.PurchaseStatusDraft, entity.PurchaseStatusCancelled, true},
		// Recepciones sucesivas mantienen el estado parcial hasta completar.
		{entity.PurchaseStatusPartiallyReceived, entity.PurchaseStatusPartiallyReceived, true},
		{entity.PurchaseStatusPartiallyReceived, entity.PurchaseStatusCompleted, true},
		// Con stock ya ingresado no se puede anular.
		{entity.PurchaseStatusPartiallyReceived, entity.PurchaseStatusCancelled, false},
		{entity.PurchaseStatusCompleted, entity.PurchaseStatusCancelled, false},
		{entity.PurchaseStatusCancelled, entity.PurchaseStatusDraft, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.ok, fsm.PurchaseOrder.Can(c.from, c.to), "%s → %s", c.from, c.to)
	}
}

func TestSalesOrder_TransicionesLegales(t *testing.T) {
	cases := []struct {
		from, to string
		ok       bool
	}{
		{entity.SalesStatusDraft, entity.SalesStatusConfirmed, true},
		{entity.SalesStatusDraft, entity.SalesStatusCancelled, true},
		{entity.SalesStatusConfirmed, entity.SalesStatusFulfilled, true},
		{entity.SalesStatusConfirmed, entity.SalesStatusCancelled, true},
		{entity.SalesStatusDraft, entity.SalesStatusFulfilled, false}, // no se despacha sin confirmar
		{entity.SalesStatusFulfilled, entity.SalesStatusCancelled, false},
		{entity.SalesStatusFulfilled, entity.SalesStatusFulfilled, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.ok, fsm.SalesOrder.Can(c.from, c.to), "%s → %s", c.from, c.to)
	}
}

func TestOpname_TransicionesLegales(t *testing.T) {
	cases := []struct {
		from, to string
		ok       bool
	}{
		{entity.OpnameStatusDraft, entity.OpnameStatusInProgress, true},
		{entity.OpnameStatusDraft, entity.OpnameStatusCancelled, true},
		{entity.OpnameStatusInProgress, entity.OpnameStatusCompleted, true},
		{entity.OpnameStatusInProgress, entity.OpnameStatusCancelled, true},
		{entity.OpnameStatusDraft, entity.OpnameStatusCompleted, false},
		{entity.OpnameStatusCompleted, entity.OpnameStatusCancelled, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.ok, fsm.Opname.Can(c.from, c.to), "%s → %s", c.from, c.to)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Transition y Terminal
// ──────────────────────────────────────────────────────────────────────────────

func TestTransition_IlegalRetornaErrInvalidTransition(t *testing.T) {
	err := fsm.Transfer.Transition(entity.TransferStatusCompleted, entity.TransferStatusSent)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	// El mensaje debe incluir origen y destino para diagnóstico.
	assert.Contains(t, err.Error(), entity.TransferStatusCompleted)
	assert.Contains(t, err.Error(), entity.TransferStatusSent)
}

func TestTransition_LegalRetornaNil(t *testing.T) {
	assert.NoError(t, fsm.SalesOrder.Transition(entity.SalesStatusDraft, entity.SalesStatusConfirmed))
}

func TestTerminal(t *testing.T) {
	assert.True(t, fsm.Transfer.Terminal(entity.TransferStatusCompleted))
	assert.True(t, fsm.Transfer.Terminal(entity.TransferStatusCancelled))
	assert.False(t, fsm.Transfer.Terminal(entity.TransferStatusDraft))
	assert.False(t, fsm.Transfer.Terminal(entity.TransferStatusSent))

	assert.True(t, fsm.SalesOrder.Terminal(entity.SalesStatusFulfilled))
	assert.True(t, fsm.Opname.Terminal(entity.OpnameStatusCompleted))
	assert.True(t, fsm.PurchaseOrder.Terminal(entity.PurchaseStatusCompleted))
}
