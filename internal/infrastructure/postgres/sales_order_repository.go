package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/invorya/almacen-api/internal/domain"
	"github.com/invorya/almacen-api/internal/domain/entity"
	"github.com/invorya/almacen-api/internal/domain/repository"
)

var _ repository.SalesOrderRepository = (*SalesOrderRepo)(nil)

// SalesOrderRepo implementación de SalesOrderRepository sobre PostgreSQL
// (usable con pool o tx).
type SalesOrderRepo struct {
	q Querier
}

// NewSalesOrderRepository construye el adaptador de órdenes de venta. Pasar pool o tx (Querier).
func NewSalesOrderRepository(q Querier) *SalesOrderRepo {
	return &SalesOrderRepo{q: q}
}

const salesColumns = `id, organization_id, customer_id, warehouse_id, status, subtotal, tax_amount, discount_amount, total, created_at, updated_at, created_by`

// Create persiste la cabecera con sus totales y las líneas.
func (r *SalesOrderRepo) Create(order *entity.SalesOrder) error {
	query := `
		INSERT INTO sales_orders (` + salesColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	createdBy := (*string)(nil)
	if order.CreatedBy != "" {
		createdBy = &order.CreatedBy
	}
	_, err := r.q.Exec(context.Background(), query,
		order.ID, order.OrganizationID, order.CustomerID, order.WarehouseID, order.Status,
		order.Subtotal, order.TaxAmount, order.DiscountAmount, order.Total,
		order.CreatedAt, order.UpdatedAt, createdBy,
	)
	if err != nil {
		return fmt.Errorf("insert sales order: %w", err)
	}
	for _, it := range order.Items {
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		it.OrderID = order.ID
		_, err := r.q.Exec(context.Background(),
			`INSERT INTO sales_order_items (id, order_id, product_id, quantity, unit_price, discount, line_total)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			it.ID, it.OrderID, it.ProductID, it.Quantity, it.UnitPrice, it.Discount, it.LineTotal,
		)
		if err != nil {
			return fmt.Errorf("insert sales order item: %w", err)
		}
	}
	return nil
}

// GetByID carga cabecera + líneas. Devuelve nil si no existe en la organización.
func (r *SalesOrderRepo) GetByID(organizationID, id string) (*entity.SalesOrder, error) {
	return r.get(organizationID, id, false)
}

// GetForUpdate igual que GetByID pero bloquea la cabecera (SELECT FOR UPDATE).
func (r *SalesOrderRepo) GetForUpdate(organizationID, id string) (*entity.SalesOrder, error) {
	return r.get(organizationID, id, true)
}

func (r *SalesOrderRepo) get(organizationID, id string, forUpdate bool) (*entity.SalesOrder, error) {
	query := `
		SELECT ` + salesColumns + `
		FROM sales_orders WHERE organization_id = $1 AND id = $2`
	if forUpdate {
		query += " FOR UPDATE"
	}
	var o entity.SalesOrder
	var createdBy *string
	err := r.q.QueryRow(context.Background(), query, organizationID, id).Scan(
		&o.ID, &o.OrganizationID, &o.CustomerID, &o.WarehouseID, &o.Status,
		&o.Subtotal, &o.TaxAmount, &o.DiscountAmount, &o.Total,
		&o.CreatedAt, &o.UpdatedAt, &createdBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sales order: %w", err)
	}
	if createdBy != nil {
		o.CreatedBy = *createdBy
	}
	rows, err := r.q.Query(context.Background(),
		`SELECT id, order_id, product_id, quantity, unit_price, discount, line_total
		 FROM sales_order_items WHERE order_id = $1 ORDER BY id`,
		o.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("list sales order items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.SalesOrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity,
			&it.UnitPrice, &it.Discount, &it.LineTotal); err != nil {
			return nil, fmt.Errorf("scan sales order item: %w", err)
		}
		o.Items = append(o.Items, &it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &o, nil
}

// UpdateStatus cambia el estado de la cabecera.
func (r *SalesOrderRepo) UpdateStatus(organizationID, id, status string) error {
	cmd, err := r.q.Exec(context.Background(),
		`UPDATE sales_orders SET status = $3, updated_at = now() WHERE organization_id = $1 AND id = $2`,
		organizationID, id, status,
	)
	if err != nil {
		return fmt.Errorf("update sales order status: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByOrganization lista órdenes, opcionalmente filtradas por estado.
func (r *SalesOrderRepo) ListByOrganization(organizationID, status string, limit, offset int) ([]*entity.SalesOrder, error) {
	query := `
		SELECT ` + salesColumns + `
		FROM sales_orders WHERE organization_id = $1`
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
		return nil, fmt.Errorf("list sales orders: %w", err)
	}
	defer rows.Close()
	var list []*entity.SalesOrder
	for rows.Next() {
		var o entity.SalesOrder
		var createdBy *string
		if err := rows.Scan(&o.ID, &o.OrganizationID, &o.CustomerID, &o.WarehouseID, &o.Status,
			&o.Subtotal, &o.TaxAmount, &o.DiscountAmount, &o.Total,
			&o.CreatedAt, &o.UpdatedAt, &createdBy); err != nil {
			return nil, fmt.Errorf("scan sales order: %w", err)
		}
		if createdBy != nil {
			o.CreatedBy = *createdBy
		}
		list = append(list, &o)
	}
	return list, rows.Err()
}
