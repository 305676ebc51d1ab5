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

var _ repository.StockOpnameRepository = (*StockOpnameRepo)(nil)

// StockOpnameRepo implementación de StockOpnameRepository sobre PostgreSQL
// (usable con pool o tx).
type StockOpnameRepo struct {
	q Querier
}

// NewStockOpnameRepository construye el adaptador de conteos físicos. Pasar pool o tx (Querier).
func NewStockOpnameRepository(q Querier) *StockOpnameRepo {
	return &StockOpnameRepo{q: q}
}

const opnameColumns = `id, organization_id, warehouse_id, status, opname_date, notes, created_at, updated_at, created_by`

// Create persiste la cabecera y las líneas del conteo.
func (r *StockOpnameRepo) Create(opname *entity.StockOpname) error {
	query := `
		INSERT INTO stock_opnames (` + opnameColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	createdBy := (*string)(nil)
	if opname.CreatedBy != "" {
		createdBy = &opname.CreatedBy
	}
	_, err := r.q.Exec(context.Background(), query,
		opname.ID, opname.OrganizationID, opname.WarehouseID, opname.Status,
		opname.OpnameDate, opname.Notes, opname.CreatedAt, opname.UpdatedAt, createdBy,
	)
	if err != nil {
		return fmt.Errorf("insert opname: %w", err)
	}
	for _, it := range opname.Items {
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		it.OpnameID = opname.ID
		_, err := r.q.Exec(context.Background(),
			`INSERT INTO stock_opname_items (id, opname_id, product_id, system_qty, counted_qty)
			 VALUES ($1, $2, $3, $4, $5)`,
			it.ID, it.OpnameID, it.ProductID, it.SystemQty, it.CountedQty,
		)
		if err != nil {
			return fmt.Errorf("insert opname item: %w", err)
		}
	}
	return nil
}

// GetByID carga cabecera + líneas. Devuelve nil si no existe en la organización.
func (r *StockOpnameRepo) GetByID(organizationID, id string) (*entity.StockOpname, error) {
	return r.get(organizationID, id, false)
}

// GetForUpdate igual que GetByID pero bloquea la cabecera (SELECT FOR UPDATE).
func (r *StockOpnameRepo) GetForUpdate(organizationID, id string) (*entity.StockOpname, error) {
	return r.get(organizationID, id, true)
}

func (r *StockOpnameRepo) get(organizationID, id string, forUpdate bool) (*entity.StockOpname, error) {
	query := `
		SELECT ` + opnameColumns + `
		FROM stock_opnames WHERE organization_id = $1 AND id = $2`
	if forUpdate {
		query += " FOR UPDATE"
	}
	var op entity.StockOpname
	var createdBy *string
	err := r.q.QueryRow(context.Background(), query, organizationID, id).Scan(
		&op.ID, &op.OrganizationID, &op.WarehouseID, &op.Status, &op.OpnameDate,
		&op.Notes, &op.CreatedAt, &op.UpdatedAt, &createdBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get opname: %w", err)
	}
	if createdBy != nil {
		op.CreatedBy = *createdBy
	}
	rows, err := r.q.Query(context.Background(),
		`SELECT id, opname_id, product_id, system_qty, counted_qty FROM stock_opname_items WHERE opname_id = $1 ORDER BY id`,
		op.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("list opname items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.StockOpnameItem
		if err := rows.Scan(&it.ID, &it.OpnameID, &it.ProductID, &it.SystemQty, &it.CountedQty); err != nil {
			return nil, fmt.Errorf("scan opname item: %w", err)
		}
		op.Items = append(op.Items, &it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &op, nil
}

// UpdateStatus cambia el estado de la cabecera.
func (r *StockOpnameRepo) UpdateStatus(organizationID, id, status string) error {
	cmd, err := r.q.Exec(context.Background(),
		`UPDATE stock_opnames SET status = $3, updated_at = now() WHERE organization_id = $1 AND id = $2`,
		organizationID, id, status,
	)
	if err != nil {
		return fmt.Errorf("update opname status: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateCount registra la cantidad contada de una línea.
func (r *StockOpnameRepo) UpdateCount(itemID string, countedQty decimal.Decimal) error {
	cmd, err := r.q.Exec(context.Background(),
		`UPDATE stock_opname_items SET counted_qty = $2 WHERE id = $1`,
		itemID, countedQty,
	)
	if err != nil {
		return fmt.Errorf("update counted qty: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByOrganization lista conteos, opcionalmente filtrados por estado.
func (r *StockOpnameRepo) ListByOrganization(organizationID, status string, limit, offset int) ([]*entity.StockOpname, error) {
	query := `
		SELECT ` + opnameColumns + `
		FROM stock_opnames WHERE organization_id = $1`
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
		return nil, fmt.Errorf("list opnames: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockOpname
	for rows.Next() {
		var op entity.StockOpname
		var createdBy *string
		if err := rows.Scan(&op.ID, &op.OrganizationID, &op.WarehouseID, &op.Status, &op.OpnameDate,
			&op.Notes, &op.CreatedAt, &op.UpdatedAt, &createdBy); err != nil {
			return nil, fmt.Errorf("scan opname: %w", err)
		}
		if createdBy != nil {
			op.CreatedBy = *createdBy
		}
		list = append(list, &op)
	}
	return list, rows.Err()
}
