package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/invorya/almacen-api/internal/domain/entity"
	"github.com/invorya/almacen-api/internal/domain/repository"
)

var _ repository.InventoryMovementRepository = (*InventoryMovementRepo)(nil)

// InventoryMovementRepo implementación del libro de movimientos sobre PostgreSQL
// (usable con pool o tx). Solo inserta y lee: el libro es inmutable.
type InventoryMovementRepo struct {
	q Querier
}

// NewInventoryMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryMovementRepository(q Querier) *InventoryMovementRepo {
	return &InventoryMovementRepo{q: q}
}

const movementColumns = `id, organization_id, product_id, warehouse_id, type, quantity, ref_type, ref_id, created_at, created_by`

// Create persiste un movimiento de inventario.
func (r *InventoryMovementRepo) Create(movement *entity.InventoryMovement) error {
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	query := `
		INSERT INTO inventory_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	createdBy := (*string)(nil)
	if movement.CreatedBy != "" {
		createdBy = &movement.CreatedBy
	}
	_, err := r.q.Exec(context.Background(), query,
		movement.ID, movement.OrganizationID, movement.ProductID, movement.WarehouseID,
		movement.Type, movement.Quantity, movement.RefType, movement.RefID,
		movement.CreatedAt, createdBy,
	)
	if err != nil {
		return fmt.Errorf("create inventory movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento de la organización.
func (r *InventoryMovementRepo) GetByID(organizationID, id string) (*entity.InventoryMovement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM inventory_movements WHERE organization_id = $1 AND id = $2`
	var m entity.InventoryMovement
	var createdBy *string
	err := r.q.QueryRow(context.Background(), query, organizationID, id).Scan(
		&m.ID, &m.OrganizationID, &m.ProductID, &m.WarehouseID, &m.Type,
		&m.Quantity, &m.RefType, &m.RefID, &m.CreatedAt, &createdBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	if createdBy != nil {
		m.CreatedBy = *createdBy
	}
	return &m, nil
}

// ListByWarehouse lista movimientos de una bodega en un rango de fechas.
func (r *InventoryMovementRepo) ListByWarehouse(organizationID, warehouseID string, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM inventory_movements WHERE organization_id = $1 AND warehouse_id = $2`
	return r.list(query, []any{organizationID, warehouseID}, from, to, limit, offset, "list by warehouse")
}

// ListByProduct lista movimientos de un producto en un rango de fechas.
func (r *InventoryMovementRepo) ListByProduct(organizationID, productID string, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM inventory_movements WHERE organization_id = $1 AND product_id = $2`
	return r.list(query, []any{organizationID, productID}, from, to, limit, offset, "list by product")
}

func (r *InventoryMovementRepo) list(query string, args []any, from, to *time.Time, limit, offset int, op string) ([]*entity.InventoryMovement, error) {
	pos := len(args) + 1
	if from != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()
	var list []*entity.InventoryMovement
	for rows.Next() {
		var m entity.InventoryMovement
		var createdBy *string
		if err := rows.Scan(&m.ID, &m.OrganizationID, &m.ProductID, &m.WarehouseID, &m.Type,
			&m.Quantity, &m.RefType, &m.RefID, &m.CreatedAt, &createdBy); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		if createdBy != nil {
			m.CreatedBy = *createdBy
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}

// ExistsForProduct indica si el producto tiene algún movimiento registrado.
func (r *InventoryMovementRepo) ExistsForProduct(organizationID, productID string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(context.Background(),
		`SELECT EXISTS (SELECT 1 FROM inventory_movements WHERE organization_id = $1 AND product_id = $2)`,
		organizationID, productID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("exists for product: %w", err)
	}
	return exists, nil
}

// TotalsForPair re-escanea el libro completo del par y agrega entradas y salidas.
// ADJUST positivo cuenta como entrada y negativo como salida (en valor absoluto).
func (r *InventoryMovementRepo) TotalsForPair(organizationID, productID, warehouseID string) (*repository.LedgerTotals, error) {
	query := `
		SELECT
			COALESCE(SUM(CASE
				WHEN type IN ('IN', 'TRANSFER_IN') THEN quantity
				WHEN type = 'ADJUST' AND quantity > 0 THEN quantity
				ELSE 0 END), 0) AS total_in,
			COALESCE(SUM(CASE
				WHEN type IN ('OUT', 'TRANSFER_OUT') THEN quantity
				WHEN type = 'ADJUST' AND quantity < 0 THEN -quantity
				ELSE 0 END), 0) AS total_out,
			MAX(created_at) AS last_movement_at
		FROM inventory_movements
		WHERE organization_id = $1 AND product_id = $2 AND warehouse_id = $3`
	var t repository.LedgerTotals
	err := r.q.QueryRow(context.Background(), query, organizationID, productID, warehouseID).Scan(
		&t.TotalIn, &t.TotalOut, &t.LastMovementAt,
	)
	if err != nil {
		return nil, fmt.Errorf("totals for pair: %w", err)
	}
	return &t, nil
}
