package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/invorya/almacen-api/internal/domain"
	"github.com/invorya/almacen-api/internal/domain/entity"
	"github.com/invorya/almacen-api/internal/domain/repository"
)

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)

// PurchaseOrderRepo implementación de PurchaseOrderRepository sobre PostgreSQL
// (usable con pool o tx).
type PurchaseOrderRepo struct {
	q Querier
}

// NewPurchaseOrderRepository construye el adaptador de órdenes de compra. Pasar pool o tx (Querier).
func NewPurchaseOrderRepository(q Querier) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{q: q}
}

const purchaseColumns = `id, organization_id, supplier_id, warehouse_id, status, notes, created_at, updated_at, created_by`

// Create persiste la cabecera y las líneas de la orden.
func (r *PurchaseOrderRepo) Create(order *entity.PurchaseOrder) error {
	query := `
		INSERT INTO purchase_orders (` + purchaseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	createdBy := (*string)(nil)
	if order.CreatedBy != "" {
		createdBy = &order.CreatedBy
	}
	_, err := r.q.Exec(context.Background(), query,
		order.ID, order.OrganizationID, order.SupplierID, order.WarehouseID,
		order.Status, order.Notes, order.CreatedAt, order.UpdatedAt, createdBy,
	)
	if err != nil {
		return fmt.Errorf("insert purchase order: %w", err)
	}
	for _, it := range order.Items {
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		it.OrderID = order.ID
		_, err := r.q.Exec(context.Background(),
			`INSERT INTO purchase_order_items (id, order_id, product_id, ordered_qty, unit_cost, received_qty)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			it.ID, it.OrderID, it.ProductID, it.OrderedQty, it.UnitCost, it.ReceivedQty,
		)
		if err != nil {
			return fmt.Errorf("insert purchase order item: %w", err)
		}
	}
	return nil
}

// GetByID carga cabecera + líneas. Devuelve nil si no existe en la organización.
func (r *PurchaseOrderRepo) GetByID(organizationID, id string) (*entity.PurchaseOrder, error) {
	return r.get(organizationID, id, false)
}

// GetForUpdate igual que GetByID pero bloquea la cabecera (SELECT FOR UPDATE):
// dos recepciones concurrentes sobre la misma orden se serializan aquí.
func (r *PurchaseOrderRepo) GetForUpdate(organizationID, id string) (*entity.PurchaseOrder, error) {
	return r.get(organizationID, id, true)
}

func (r *PurchaseOrderRepo) get(organizationID, id string, forUpdate bool) (*entity.PurchaseOrder, error) {
	query := `
		SELECT ` + purchaseColumns + `
		FROM purchase_orders WHERE organization_id = $1 AND id = $2`
	if forUpdate {
		query += " FOR UPDATE"
	}
	var o entity.PurchaseOrder
	var createdBy *string
	err := r.q.QueryRow(context.Background(), query, organizationID, id).Scan(
		&o.ID, &o.OrganizationID, &o.SupplierID, &o.WarehouseID, &o.Status,
		&o.Notes, &o.CreatedAt, &o.UpdatedAt, &createdBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase order: %w", err)
	}
	if createdBy != nil {
		o.CreatedBy = *createdBy
	}
	rows, err := r.q.Query(context.Background(),
		`SELECT id, order_id, product_id, ordered_qty, unit_cost, received_qty
		 FROM purchase_order_items WHERE order_id = $1 ORDER BY id`,
		o.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("list purchase order items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.PurchaseOrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.OrderedQty, &it.UnitCost, &it.ReceivedQty); err != nil {
			return nil, fmt.Errorf("scan purchase order item: %w", err)
		}
		o.Items = append(o.Items, &it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &o, nil
}

// UpdateStatus cambia el estado de la cabecera.
func (r *PurchaseOrderRepo) UpdateStatus(organizationID, id, status string) error {
	cmd, err := r.q.Exec(context.Background(),
		`UPDATE purchase_orders SET status = $3, updated_at = now() WHERE organization_id = $1 AND id = $2`,
		organizationID, id, status,
	)
	if err != nil {
		return fmt.Errorf("update purchase order status: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// IncrementReceived acumula cantidad recibida sobre una línea.
func (r *PurchaseOrderRepo) IncrementReceived(itemID string, quantity decimal.Decimal) error {
	cmd, err := r.q.Exec(context.Background(),
		`UPDATE purchase_order_items SET received_qty = received_qty + $2 WHERE id = $1`,
		itemID, quantity,
	)
	if err != nil {
		return fmt.Errorf("increment received: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByOrganization lista órdenes, opcionalmente filtradas por estado.
func (r *PurchaseOrderRepo) ListByOrganization(organizationID, status string, limit, offset int) ([]*entity.PurchaseOrder, error) {
	query := `
		SELECT ` + purchaseColumns + `
		FROM purchase_orders WHERE organization_id = $1`
	args := []any{organizationID}
	pos := 2
	if status != "" {
		query += fmt.Sprintf(" AND status = $%d", pos)
		args = append(args, status)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list purchase orders: %w", err)
	}
	defer rows.Close()
	var list []*entity.PurchaseOrder
	for rows.Next() {
		var o entity.PurchaseOrder
		var createdBy *string
		if err := rows.Scan(&o.ID, &o.OrganizationID, &o.SupplierID, &o.WarehouseID, &o.Status,
			&o.Notes, &o.CreatedAt, &o.UpdatedAt, &createdBy); err != nil {
			return nil, fmt.Errorf("scan purchase order: %w", err)
		}
		if createdBy != nil {
			o.CreatedBy = *createdBy
		}
		list = append(list, &o)
	}
	return list, rows.Err()
}

var _ repository.PurchaseReceiptRepository = (*PurchaseReceiptRepo)(nil)

// PurchaseReceiptRepo implementación de PurchaseReceiptRepository sobre PostgreSQL
// (usable con pool o tx). Los recibos son inmutables una vez creados.
type PurchaseReceiptRepo struct {
	q Querier
}

// NewPurchaseReceiptRepository construye el adaptador de recibos. Pasar pool o tx (Querier).
func NewPurchaseReceiptRepository(q Querier) *PurchaseReceiptRepo {
	return &PurchaseReceiptRepo{q: q}
}

// Create persiste el recibo y sus líneas.
func (r *PurchaseReceiptRepo) Create(receipt *entity.PurchaseReceipt) error {
	createdBy := (*string)(nil)
	if receipt.CreatedBy != "" {
		createdBy = &receipt.CreatedBy
	}
	_, err := r.q.Exec(context.Background(),
		`INSERT INTO purchase_receipts (id, organization_id, order_id, created_at, created_by)
		 VALUES ($1, $2, $3, $4, $5)`,
		receipt.ID, receipt.OrganizationID, receipt.OrderID, receipt.CreatedAt, createdBy,
	)
	if err != nil {
		return fmt.Errorf("insert receipt: %w", err)
	}
	for _, it := range receipt.Items {
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		it.ReceiptID = receipt.ID
		_, err := r.q.Exec(context.Background(),
			`INSERT INTO purchase_receipt_items (id, receipt_id, product_id, quantity) VALUES ($1, $2, $3, $4)`,
			it.ID, it.ReceiptID, it.ProductID, it.Quantity,
		)
		if err != nil {
			return fmt.Errorf("insert receipt item: %w", err)
		}
	}
	return nil
}

// ListByOrder lista los recibos de una orden con sus líneas.
func (r *PurchaseReceiptRepo) ListByOrder(organizationID, orderID string) ([]*entity.PurchaseReceipt, error) {
	rows, err := r.q.Query(context.Background(),
		`SELECT id, organization_id, order_id, created_at, created_by
		 FROM purchase_receipts WHERE organization_id = $1 AND order_id = $2 ORDER BY created_at`,
		organizationID, orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("list receipts: %w", err)
	}
	defer rows.Close()
	var list []*entity.PurchaseReceipt
	for rows.Next() {
		var rec entity.PurchaseReceipt
		var createdBy *string
		if err := rows.Scan(&rec.ID, &rec.OrganizationID, &rec.OrderID, &rec.CreatedAt, &createdBy); err != nil {
			return nil, fmt.Errorf("scan receipt: %w", err)
		}
		if createdBy != nil {
			rec.CreatedBy = *createdBy
		}
		list = append(list, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, rec := range list {
		itemRows, err := r.q.Query(context.Background(),
			`SELECT id, receipt_id, product_id, quantity FROM purchase_receipt_items WHERE receipt_id = $1 ORDER BY id`,
			rec.ID,
		)
		if err != nil {
			return nil, fmt.Errorf("list receipt items: %w", err)
		}
		for itemRows.Next() {
			var it entity.PurchaseReceiptItem
			if err := itemRows.Scan(&it.ID, &it.ReceiptID, &it.ProductID, &it.Quantity); err != nil {
				itemRows.Close()
				return nil, fmt.Errorf("scan receipt item: %w", err)
			}
			rec.Items = append(rec.Items, &it)
		}
		itemRows.Close()
		if err := itemRows.Err(); err != nil {
			return nil, err
		}
	}
	return list, nil
}
