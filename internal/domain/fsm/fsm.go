// Package fsm centraliza las transiciones de estado legales de cada flujo
// (traslados, órdenes de compra, órdenes de venta, conteos físicos).
// La tabla de transiciones es la única fuente de verdad: todos los puntos de
// entrada validan contra ella en vez de repartir chequeos de status ad hoc.
package fsm

import (
	"fmt"

	"github.com/invorya/almacen-api/internal/domain"
	"github.com/invorya/almacen-api/internal/domain/entity"
)

// Machine tabla de transiciones de un flujo: estado origen → estados destino.
type Machine struct {
	name        string
	transitions map[string][]string
}

// New construye una máquina con su tabla.
func New(name string, transitions map[string][]string) *Machine {
	return &Machine{name: name, transitions: transitions}
}

// Can indica si la transición from → to es legal.
func (m *Machine) Can(from, to string) bool {
	for _, t := range m.transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// Transition valida la transición y devuelve ErrInvalidTransition con contexto
// si no es legal. El caller persiste el nuevo estado solo si no hay error.
func (m *Machine) Transition(from, to string) error {
	if !m.Can(from, to) {
		return fmt.Errorf("%s: %s → %s: %w", m.name, from, to, domain.ErrInvalidTransition)
	}
	return nil
}

// Terminal indica si ninguna transición sale del estado.
func (m *Machine) Terminal(state string) bool {
	return len(m.transitions[state]) == 0
}

// Máquinas por flujo. El stock solo se mueve en los estados que cada caso de
// uso postea explícitamente (COMPLETED para traslados y conteos, recepciones
// para compras, FULFILLED para ventas).
var (
	Transfer = New("transfer", map[string][]string{
		entity.TransferStatusDraft: {entity.TransferStatusSent, entity.TransferStatusCancelled},
		entity.TransferStatusSent:  {entity.TransferStatusCompleted, entity.TransferStatusCancelled},
	})

	PurchaseOrder = New("purchase_order", map[string][]string{
		entity.PurchaseStatusDraft:             {entity.PurchaseStatusPartiallyReceived, entity.PurchaseStatusCompleted, entity.PurchaseStatusCancelled},
		entity.PurchaseStatusPartiallyReceived: {entity.PurchaseStatusPartiallyReceived, entity.PurchaseStatusCompleted},
	})

	SalesOrder = New("sales_order", map[string][]string{
		entity.SalesStatusDraft:     {entity.SalesStatusConfirmed, entity.SalesStatusCancelled},
		entity.SalesStatusConfirmed: {entity.SalesStatusFulfilled, entity.SalesStatusCancelled},
	})

	Opname = New("stock_opname", map[string][]string{
		entity.OpnameStatusDraft:      {entity.OpnameStatusInProgress, entity.OpnameStatusCancelled},
		entity.OpnameStatusInProgress: {entity.OpnameStatusCompleted, entity.OpnameStatusCancelled},
	})
)
