package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/invorya/almacen-api/internal/domain/entity"
	"github.com/invorya/almacen-api/internal/domain/repository"
)

var _ repository.InventoryItemRepository = (*InventoryItemRepo)(nil)

// InventoryItemRepo implementación de InventoryItemRepository sobre PostgreSQL
// (usable con pool o tx). La foto de existencias por (producto, bodega).
type InventoryItemRepo struct {
	q Querier
}

// NewInventoryItemRepository construye el adaptador de existencias. Pasar pool o tx (Querier).
func NewInventoryItemRepository(q Querier) *InventoryItemRepo {
	return &InventoryItemRepo{q: q}
}

const itemColumns = `id, organization_id, product_id, warehouse_id, quantity_on_hand, allocated_qty, updated_at`

// Get obtiene la fila de existencias. Devuelve nil (sin error) si el par aún no existe.
func (r *InventoryItemRepo) Get(organizationID, productID, warehouseID string) (*entity.InventoryItem, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM inventory_items
		WHERE organization_id = $1 AND product_id = $2 AND warehouse_id = $3`
	return r.scanOne(r.q.QueryRow(context.Background(), query, organizationID, productID, warehouseID), "get inventory item")
}

// GetForUpdate obtiene la fila y la bloquea (SELECT FOR UPDATE) para serializar
// escrituras concurrentes sobre el mismo par. Devuelve nil si no existe.
func (r *InventoryItemRepo) GetForUpdate(organizationID, productID, warehouseID string) (*entity.InventoryItem, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM inventory_items
		WHERE organization_id = $1 AND product_id = $2 AND warehouse_id = $3
		FOR UPDATE`
	return r.scanOne(r.q.QueryRow(context.Background(), query, organizationID, productID, warehouseID), "get inventory item for update")
}

// Insert crea la fila solo si el par aún no existe (ON CONFLICT DO NOTHING).
// Devuelve false cuando un escritor concurrente creó la fila primero: el
// caller debe releer con GetForUpdate en vez de sobrescribir a ciegas.
func (r *InventoryItemRepo) Insert(item *entity.InventoryItem) (bool, error) {
	query := `
		INSERT INTO inventory_items (id, organization_id, product_id, warehouse_id, quantity_on_hand, allocated_qty, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (organization_id, product_id, warehouse_id) DO NOTHING`
	tag, err := r.q.Exec(context.Background(), query,
		item.ID, item.OrganizationID, item.ProductID, item.WarehouseID,
		item.QuantityOnHand, item.AllocatedQty,
	)
	if err != nil {
		return false, fmt.Errorf("insert inventory item: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Upsert actualiza la fila del par. El caller ya la tiene bloqueada con
// GetForUpdate, por lo que escribir los valores completos es seguro.
func (r *InventoryItemRepo) Upsert(item *entity.InventoryItem) error {
	query := `
		INSERT INTO inventory_items (id, organization_id, product_id, warehouse_id, quantity_on_hand, allocated_qty, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (organization_id, product_id, warehouse_id)
		DO UPDATE SET quantity_on_hand = EXCLUDED.quantity_on_hand, allocated_qty = EXCLUDED.allocated_qty, updated_at = now()`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.OrganizationID, item.ProductID, item.WarehouseID,
		item.QuantityOnHand, item.AllocatedQty,
	)
	if err != nil {
		return fmt.Errorf("upsert inventory item: %w", err)
	}
	return nil
}

// ListByWarehouse lista las existencias de una bodega.
func (r *InventoryItemRepo) ListByWarehouse(organizationID, warehouseID string, limit, offset int) ([]*entity.InventoryItem, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM inventory_items
		WHERE organization_id = $1 AND warehouse_id = $2
		ORDER BY product_id LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(context.Background(), query, organizationID, warehouseID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list inventory items: %w", err)
	}
	defer rows.Close()
	return r.collect(rows)
}

// ListLowStock lista los pares cuyo on-hand está en o por debajo del umbral del
// producto. Umbral cero o negativo desactiva la alerta para ese producto.
func (r *InventoryItemRepo) ListLowStock(organizationID string, limit, offset int) ([]*entity.InventoryItem, error) {
	query := `
		SELECT i.id, i.organization_id, i.product_id, i.warehouse_id, i.quantity_on_hand, i.allocated_qty, i.updated_at
		FROM inventory_items i
		JOIN products p ON p.id = i.product_id AND p.organization_id = i.organization_id
		WHERE i.organization_id = $1
		  AND p.deleted_at IS NULL
		  AND p.low_stock_threshold > 0
		  AND i.quantity_on_hand <= p.low_stock_threshold
		ORDER BY i.quantity_on_hand ASC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, organizationID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	defer rows.Close()
	return r.collect(rows)
}

func (r *InventoryItemRepo) scanOne(row pgx.Row, op string) (*entity.InventoryItem, error) {
	var it entity.InventoryItem
	err := row.Scan(
		&it.ID, &it.OrganizationID, &it.ProductID, &it.WarehouseID,
		&it.QuantityOnHand, &it.AllocatedQty, &it.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &it, nil
}

func (r *InventoryItemRepo) collect(rows pgx.Rows) ([]*entity.InventoryItem, error) {
	var list []*entity.InventoryItem
	for rows.Next() {
		var it entity.InventoryItem
		if err := rows.Scan(&it.ID, &it.OrganizationID, &it.ProductID, &it.WarehouseID,
			&it.QuantityOnHand, &it.AllocatedQty, &it.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan inventory item: %w", err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}
