package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/invorya/almacen-api/internal/domain/entity"
	"github.com/invorya/almacen-api/internal/domain/repository"
)

var _ repository.StockSummaryRepository = (*StockSummaryRepo)(nil)

// StockSummaryRepo implementación del resumen denormalizado sobre PostgreSQL.
// Solo el worker de reconstrucción escribe aquí.
type StockSummaryRepo struct {
	q Querier
}

// NewStockSummaryRepository construye el adaptador del resumen. Pasar pool o tx (Querier).
func NewStockSummaryRepository(q Querier) *StockSummaryRepo {
	return &StockSummaryRepo{q: q}
}

const summaryColumns = `organization_id, warehouse_id, product_id, total_in, total_out, current_stock, last_movement_at, updated_at`

// Get obtiene el resumen de un par. Devuelve nil si aún no fue calculado.
func (r *StockSummaryRepo) Get(organizationID, productID, warehouseID string) (*entity.StockSummary, error) {
	query := `
		SELECT ` + summaryColumns + `
		FROM stock_summaries
		WHERE organization_id = $1 AND product_id = $2 AND warehouse_id = $3`
	var s entity.StockSummary
	err := r.q.QueryRow(context.Background(), query, organizationID, productID, warehouseID).Scan(
		&s.OrganizationID, &s.WarehouseID, &s.ProductID, &s.TotalIn, &s.TotalOut,
		&s.CurrentStock, &s.LastMovementAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get summary: %w", err)
	}
	return &s, nil
}

// Upsert reemplaza el resumen del par con los valores recalculados.
func (r *StockSummaryRepo) Upsert(summary *entity.StockSummary) error {
	query := `
		INSERT INTO stock_summaries (organization_id, warehouse_id, product_id, total_in, total_out, current_stock, last_movement_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		ON CONFLICT (organization_id, warehouse_id, product_id)
		DO UPDATE SET total_in = EXCLUDED.total_in, total_out = EXCLUDED.total_out,
			current_stock = EXCLUDED.current_stock, last_movement_at = EXCLUDED.last_movement_at, updated_at = now()`
	_, err := r.q.Exec(context.Background(), query,
		summary.OrganizationID, summary.WarehouseID, summary.ProductID,
		summary.TotalIn, summary.TotalOut, summary.CurrentStock, summary.LastMovementAt,
	)
	if err != nil {
		return fmt.Errorf("upsert summary: %w", err)
	}
	return nil
}

// ListByWarehouse lista los resúmenes de una bodega.
func (r *StockSummaryRepo) ListByWarehouse(organizationID, warehouseID string, limit, offset int) ([]*entity.StockSummary, error) {
	query := `
		SELECT ` + summaryColumns + `
		FROM stock_summaries
		WHERE organization_id = $1 AND warehouse_id = $2
		ORDER BY product_id LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(context.Background(), query, organizationID, warehouseID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list summaries: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockSummary
	for rows.Next() {
		var s entity.StockSummary
		if err := rows.Scan(&s.OrganizationID, &s.WarehouseID, &s.ProductID, &s.TotalIn, &s.TotalOut,
			&s.CurrentStock, &s.LastMovementAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}
