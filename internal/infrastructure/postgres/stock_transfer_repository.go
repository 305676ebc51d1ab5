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

var _ repository.StockTransferRepository = (*StockTransferRepo)(nil)

// StockTransferRepo implementación de StockTransferRepository sobre PostgreSQL
// (usable con pool o tx). Cabecera + líneas en tablas separadas.
type StockTransferRepo struct {
	q Querier
}

// NewStockTransferRepository construye el adaptador de traslados. Pasar pool o tx (Querier).
func NewStockTransferRepository(q Querier) *StockTransferRepo {
	return &StockTransferRepo{q: q}
}

const transferColumns = `id, organization_id, from_warehouse_id, to_warehouse_id, status, notes, created_at, updated_at, created_by`

// Create persiste la cabecera y las líneas del traslado.
func (r *StockTransferRepo) Create(transfer *entity.StockTransfer) error {
	query := `
		INSERT INTO stock_transfers (` + transferColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	createdBy := (*string)(nil)
	if transfer.CreatedBy != "" {
		createdBy = &transfer.CreatedBy
	}
	_, err := r.q.Exec(context.Background(), query,
		transfer.ID, transfer.OrganizationID, transfer.FromWarehouseID, transfer.ToWarehouseID,
		transfer.Status, transfer.Notes, transfer.CreatedAt, transfer.UpdatedAt, createdBy,
	)
	if err != nil {
		return fmt.Errorf("insert transfer: %w", err)
	}
	for _, it := range transfer.Items {
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		it.TransferID = transfer.ID
		_, err := r.q.Exec(context.Background(),
			`INSERT INTO stock_transfer_items (id, transfer_id, product_id, quantity) VALUES ($1, $2, $3, $4)`,
			it.ID, it.TransferID, it.ProductID, it.Quantity,
		)
		if err != nil {
			return fmt.Errorf("insert transfer item: %w", err)
		}
	}
	return nil
}

// GetByID carga cabecera + líneas. Devuelve nil si no existe en la organización.
func (r *StockTransferRepo) GetByID(organizationID, id string) (*entity.StockTransfer, error) {
	return r.get(organizationID, id, false)
}

// GetForUpdate igual que GetByID pero bloquea la cabecera (SELECT FOR UPDATE)
// para serializar transiciones de estado concurrentes.
func (r *StockTransferRepo) GetForUpdate(organizationID, id string) (*entity.StockTransfer, error) {
	return r.get(organizationID, id, true)
}

func (r *StockTransferRepo) get(organizationID, id string, forUpdate bool) (*entity.StockTransfer, error) {
	query := `
		SELECT ` + transferColumns + `
		FROM stock_transfers WHERE organization_id = $1 AND id = $2`
	if forUpdate {
		query += " FOR UPDATE"
	}
	var t entity.StockTransfer
	var createdBy *string
	err := r.q.QueryRow(context.Background(), query, organizationID, id).Scan(
		&t.ID, &t.OrganizationID, &t.FromWarehouseID, &t.ToWarehouseID, &t.Status,
		&t.Notes, &t.CreatedAt, &t.UpdatedAt, &createdBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transfer: %w", err)
	}
	if createdBy != nil {
		t.CreatedBy = *createdBy
	}
	items, err := r.loadItems(t.ID)
	if err != nil {
		return nil, err
	}
	t.Items = items
	return &t, nil
}

func (r *StockTransferRepo) loadItems(transferID string) ([]*entity.StockTransferItem, error) {
	rows, err := r.q.Query(context.Background(),
		`SELECT id, transfer_id, product_id, quantity FROM stock_transfer_items WHERE transfer_id = $1 ORDER BY id`,
		transferID,
	)
	if err != nil {
		return nil, fmt.Errorf("list transfer items: %w", err)
	}
	defer rows.Close()
	var items []*entity.StockTransferItem
	for rows.Next() {
		var it entity.StockTransferItem
		if err := rows.Scan(&it.ID, &it.TransferID, &it.ProductID, &it.Quantity); err != nil {
			return nil, fmt.Errorf("scan transfer item: %w", err)
		}
		items = append(items, &it)
	}
	return items, rows.Err()
}

// UpdateStatus cambia el estado de la cabecera.
func (r *StockTransferRepo) UpdateStatus(organizationID, id, status string) error {
	cmd, err := r.q.Exec(context.Background(),
		`UPDATE stock_transfers SET status = $3, updated_at = now() WHERE organization_id = $1 AND id = $2`,
		organizationID, id, status,
	)
	if err != nil {
		return fmt.Errorf("update transfer status: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByOrganization lista traslados, opcionalmente filtrados por estado.
func (r *StockTransferRepo) ListByOrganization(organizationID, status string, limit, offset int) ([]*entity.StockTransfer, error) {
	query := `
		SELECT ` + transferColumns + `
		FROM stock_transfers WHERE organization_id = $1`
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
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockTransfer
	for rows.Next() {
		var t entity.StockTransfer
		var createdBy *string
		if err := rows.Scan(&t.ID, &t.OrganizationID, &t.FromWarehouseID, &t.ToWarehouseID, &t.Status,
			&t.Notes, &t.CreatedAt, &t.UpdatedAt, &createdBy); err != nil {
			return nil, fmt.Errorf("scan transfer: %w", err)
		}
		if createdBy != nil {
			t.CreatedBy = *createdBy
		}
		list = append(list, &t)
	}
	return list, rows.Err()
}
