package inventory

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/invorya/almacen-api/internal/domain"
	"github.com/invorya/almacen-api/internal/domain/entity"
	"github.com/invorya/almacen-api/internal/domain/repository"
)

// Ledger es la primitiva del libro de inventario: inserta un InventoryMovement
// inmutable y actualiza los contadores del InventoryItem del par, siempre
// dentro de la transacción del caller (jamás hace Commit propio). Es el único
// código que aplica deltas al on-hand, lo que simplifica la disciplina de
// bloqueo: toda mutación pasa por el mismo GetForUpdate.
//
// Emitir el evento de outbox es responsabilidad del caller, así la primitiva
// compone igual desde ajustes, traslados, recepciones y despachos.
type Ledger struct {
	// allowNegative permite on-hand negativo (backorder). Por defecto falso:
	// toda disminución que dejaría disponible < 0 se rechaza.
	allowNegative bool
}

// NewLedger construye la primitiva con la política de stock negativo.
func NewLedger(allowNegative bool) *Ledger {
	return &Ledger{allowNegative: allowNegative}
}

// MovementInput entrada para Append. Quantity es magnitud (> 0); para ADJUST,
// Direction aporta el signo.
type MovementInput struct {
	OrganizationID string
	ProductID      string
	WarehouseID    string
	Type           entity.MovementType
	Quantity       decimal.Decimal
	Direction      entity.AdjustmentDirection // solo para ADJUST
	RefType        string
	RefID          string
	ActorID        string
}

// Append inserta el movimiento y actualiza el InventoryItem del par:
// si no existe, lo crea vía Insert condicional (falla si el evento creador es
// una disminución); si existe, incrementa on-hand por el delta con signo bajo
// SELECT FOR UPDATE. Cuando dos transacciones crean el mismo par a la vez,
// la perdedora del Insert relee la fila bloqueada y aplica su delta encima.
func (l *Ledger) Append(tx *repository.TxRepos, in MovementInput) (*entity.InventoryMovement, error) {
	if !in.Quantity.GreaterThan(decimal.Zero) {
		return nil, fmt.Errorf("cantidad debe ser positiva: %w", domain.ErrInvalidInput)
	}

	signed, err := l.signedDelta(in)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	item, err := tx.Items.GetForUpdate(in.OrganizationID, in.ProductID, in.WarehouseID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		if signed.LessThan(decimal.Zero) {
			return nil, fmt.Errorf("no se puede disminuir stock de un ítem de inventario inexistente: %w", domain.ErrInsufficientStock)
		}
		fresh := &entity.InventoryItem{
			ID:             uuid.New().String(),
			OrganizationID: in.OrganizationID,
			ProductID:      in.ProductID,
			WarehouseID:    in.WarehouseID,
			QuantityOnHand: signed,
			AllocatedQty:   decimal.Zero,
			UpdatedAt:      now,
		}
		inserted, err := tx.Items.Insert(fresh)
		if err != nil {
			return nil, err
		}
		if inserted {
			item = fresh
		} else {
			// Otro escritor creó el par entre la lectura y el insert: releer
			// bajo bloqueo y aplicar el delta sobre la fila ajena, nunca
			// sobrescribirla con el valor calculado a partir de nil.
			item, err = tx.Items.GetForUpdate(in.OrganizationID, in.ProductID, in.WarehouseID)
			if err != nil {
				return nil, err
			}
			if item == nil {
				return nil, fmt.Errorf("ítem de inventario %s/%s inaccesible tras conflicto de creación: %w",
					in.ProductID, in.WarehouseID, domain.ErrConflict)
			}
			if err := l.applyDelta(tx, item, signed, now); err != nil {
				return nil, err
			}
		}
	} else {
		if err := l.applyDelta(tx, item, signed, now); err != nil {
			return nil, err
		}
	}

	// ADJUST guarda el delta con signo; el resto guarda magnitud y el tipo
	// indica la dirección.
	stored := in.Quantity
	if in.Type == entity.MovementTypeADJUST {
		stored = signed
	}
	mov := &entity.InventoryMovement{
		ID:             uuid.New().String(),
		OrganizationID: in.OrganizationID,
		ProductID:      in.ProductID,
		WarehouseID:    in.WarehouseID,
		Type:           in.Type,
		Quantity:       stored,
		RefType:        in.RefType,
		RefID:          in.RefID,
		CreatedAt:      now,
		CreatedBy:      in.ActorID,
	}
	if err := tx.Movements.Create(mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// applyDelta incrementa el on-hand de una fila ya bloqueada y la persiste.
func (l *Ledger) applyDelta(tx *repository.TxRepos, item *entity.InventoryItem, signed decimal.Decimal, now time.Time) error {
	newOnHand := item.QuantityOnHand.Add(signed)
	if signed.LessThan(decimal.Zero) && !l.allowNegative && newOnHand.LessThan(item.AllocatedQty) {
		return fmt.Errorf("disponible %s, solicitado %s: %w",
			item.Available().String(), signed.Neg().String(), domain.ErrInsufficientStock)
	}
	item.QuantityOnHand = newOnHand
	item.UpdatedAt = now
	return tx.Items.Upsert(item)
}

// signedDelta traduce tipo (+dirección para ADJUST) a delta con signo.
func (l *Ledger) signedDelta(in MovementInput) (decimal.Decimal, error) {
	switch in.Type {
	case entity.MovementTypeIN, entity.MovementTypeTransferIN:
		return in.Quantity, nil
	case entity.MovementTypeOUT, entity.MovementTypeTransferOUT:
		return in.Quantity.Neg(), nil
	case entity.MovementTypeADJUST:
		switch in.Direction {
		case entity.AdjustmentIncrease:
			return in.Quantity, nil
		case entity.AdjustmentDecrease:
			return in.Quantity.Neg(), nil
		}
		return decimal.Zero, fmt.Errorf("dirección de ajuste desconocida: %w", domain.ErrInvalidInput)
	}
	return decimal.Zero, fmt.Errorf("tipo de movimiento desconocido %q: %w", in.Type, domain.ErrInvalidInput)
}
