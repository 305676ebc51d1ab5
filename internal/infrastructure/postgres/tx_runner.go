package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/invorya/almacen-api/internal/domain/repository"
)

var _ repository.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con los repos atados a la tx y hace
// Commit o Rollback. Un error de fn revierte todo: documento, movimientos,
// contadores y eventos de outbox, como una sola unidad.
func (r *TxRunner) Run(ctx context.Context, fn func(tx *repository.TxRepos) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	repos := &repository.TxRepos{
		Items:       NewInventoryItemRepository(tx),
		Movements:   NewInventoryMovementRepository(tx),
		Adjustments: NewStockAdjustmentRepository(tx),
		Transfers:   NewStockTransferRepository(tx),
		Purchases:   NewPurchaseOrderRepository(tx),
		Receipts:    NewPurchaseReceiptRepository(tx),
		Sales:       NewSalesOrderRepository(tx),
		Opnames:     NewStockOpnameRepository(tx),
		Outbox:      NewOutboxRepository(tx),
	}

	if err := fn(repos); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
