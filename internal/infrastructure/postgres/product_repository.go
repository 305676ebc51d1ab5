package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/invorya/almacen-api/internal/domain"
	"github.com/invorya/almacen-api/internal/domain/entity"
	"github.com/invorya/almacen-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `id, organization_id, sku, name, description, unit_measure, price, cost, low_stock_threshold, created_at, updated_at, deleted_at`

// Create persiste un producto nuevo.
func (r *ProductRepo) Create(product *entity.Product) error {
	query := `
		INSERT INTO products (id, organization_id, sku, name, description, unit_measure, price, cost, low_stock_threshold, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(context.Background(), query,
		product.ID, product.OrganizationID, product.SKU, product.Name, product.Description,
		product.UnitMeasure, product.Price, product.Cost, product.LowStockThreshold,
		product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto de la organización. Devuelve nil si no existe o está borrado.
func (r *ProductRepo) GetByID(organizationID, id string) (*entity.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products WHERE organization_id = $1 AND id = $2 AND deleted_at IS NULL`
	return r.scanOne(r.q.QueryRow(context.Background(), query, organizationID, id), "get product")
}

// GetBySKU obtiene un producto por SKU dentro de la organización.
func (r *ProductRepo) GetBySKU(organizationID, sku string) (*entity.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products WHERE organization_id = $1 AND sku = $2 AND deleted_at IS NULL`
	return r.scanOne(r.q.QueryRow(context.Background(), query, organizationID, sku), "get product by sku")
}

// Update actualiza los campos editables. Cost y stock se mueven vía movimientos, no aquí.
func (r *ProductRepo) Update(product *entity.Product) error {
	query := `
		UPDATE products
		SET sku = $3, name = $4, description = $5, unit_measure = $6, price = $7, cost = $8, low_stock_threshold = $9, updated_at = $10
		WHERE organization_id = $1 AND id = $2 AND deleted_at IS NULL`
	cmd, err := r.q.Exec(context.Background(), query,
		product.OrganizationID, product.ID, product.SKU, product.Name, product.Description,
		product.UnitMeasure, product.Price, product.Cost, product.LowStockThreshold, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByOrganization lista productos activos con paginación.
func (r *ProductRepo) ListByOrganization(organizationID string, limit, offset int) ([]*entity.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products WHERE organization_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, organizationID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// SoftDelete marca el producto como borrado. El historial queda intacto.
func (r *ProductRepo) SoftDelete(organizationID, id string) error {
	cmd, err := r.q.Exec(context.Background(),
		`UPDATE products SET deleted_at = now(), updated_at = now() WHERE organization_id = $1 AND id = $2 AND deleted_at IS NULL`,
		organizationID, id,
	)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ProductRepo) scanOne(row pgx.Row, op string) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(
		&p.ID, &p.OrganizationID, &p.SKU, &p.Name, &p.Description, &p.UnitMeasure,
		&p.Price, &p.Cost, &p.LowStockThreshold, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &p, nil
}

func scanProduct(rows pgx.Rows) (*entity.Product, error) {
	var p entity.Product
	if err := rows.Scan(&p.ID, &p.OrganizationID, &p.SKU, &p.Name, &p.Description, &p.UnitMeasure,
		&p.Price, &p.Cost, &p.LowStockThreshold, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt); err != nil {
		return nil, fmt.Errorf("scan product: %w", err)
	}
	return &p, nil
}
