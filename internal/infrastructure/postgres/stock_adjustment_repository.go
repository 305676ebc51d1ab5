package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/invorya/almacen-api/internal/domain/entity"
	"github.com/invorya/almacen-api/internal/domain/repository"
)

var _ repository.StockAdjustmentRepository = (*StockAdjustmentRepo)(nil)

// StockAdjustmentRepo implementación de StockAdjustmentRepository sobre PostgreSQL
// (usable con pool o tx). Sin Update ni Delete: la auditoría es inmutable.
type StockAdjustmentRepo struct {
	q Querier
}

// NewStockAdjustmentRepository construye el adaptador de ajustes. Pasar pool o tx (Querier).
func NewStockAdjustmentRepository(q Querier) *StockAdjustmentRepo {
	return &StockAdjustmentRepo{q: q}
}

const adjustmentColumns = `id, organization_id, product_id, warehouse_id, direction, quantity, reason, notes, created_at, created_by`

// Create persiste un ajuste manual.
func (r *StockAdjustmentRepo) Create(adjustment *entity.StockAdjustment) error {
	if adjustment.ID == "" {
		adjustment.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_adjustments (` + adjustmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	createdBy := (*string)(nil)
	if adjustment.CreatedBy != "" {
		createdBy = &adjustment.CreatedBy
	}
	_, err := r.q.Exec(context.Background(), query,
		adjustment.ID, adjustment.OrganizationID, adjustment.ProductID, adjustment.WarehouseID,
		adjustment.Direction, adjustment.Quantity, adjustment.Reason, adjustment.Notes,
		adjustment.CreatedAt, createdBy,
	)
	if err != nil {
		return fmt.Errorf("create stock adjustment: %w", err)
	}
	return nil
}

// GetByID obtiene un ajuste de la organización. Devuelve nil si no existe.
func (r *StockAdjustmentRepo) GetByID(organizationID, id string) (*entity.StockAdjustment, error) {
	query := `
		SELECT ` + adjustmentColumns + `
		FROM stock_adjustments WHERE organization_id = $1 AND id = $2`
	var a entity.StockAdjustment
	var createdBy *string
	err := r.q.QueryRow(context.Background(), query, organizationID, id).Scan(
		&a.ID, &a.OrganizationID, &a.ProductID, &a.WarehouseID, &a.Direction,
		&a.Quantity, &a.Reason, &a.Notes, &a.CreatedAt, &createdBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get adjustment: %w", err)
	}
	if createdBy != nil {
		a.CreatedBy = *createdBy
	}
	return &a, nil
}

// ListByOrganization lista ajustes con paginación, los más recientes primero.
func (r *StockAdjustmentRepo) ListByOrganization(organizationID string, limit, offset int) ([]*entity.StockAdjustment, error) {
	query := `
		SELECT ` + adjustmentColumns + `
		FROM stock_adjustments WHERE organization_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, organizationID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list adjustments: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockAdjustment
	for rows.Next() {
		var a entity.StockAdjustment
		var createdBy *string
		if err := rows.Scan(&a.ID, &a.OrganizationID, &a.ProductID, &a.WarehouseID, &a.Direction,
			&a.Quantity, &a.Reason, &a.Notes, &a.CreatedAt, &createdBy); err != nil {
			return nil, fmt.Errorf("scan adjustment: %w", err)
		}
		if createdBy != nil {
			a.CreatedBy = *createdBy
		}
		list = append(list, &a)
	}
	return list, rows.Err()
}
