package repository

import "context"

// TxRepos agrupa los repositorios atados a una misma transacción de BD.
// Todo caso de uso que toque el libro de movimientos recibe este conjunto:
// un solo Commit cubre documento, movimientos, contadores y evento de outbox.
type TxRepos struct {
	Items       InventoryItemRepository
	Movements   InventoryMovementRepository
	Adjustments StockAdjustmentRepository
	Transfers   StockTransferRepository
	Purchases   PurchaseOrderRepository
	Receipts    PurchaseReceiptRepository
	Sales       SalesOrderRepository
	Opnames     StockOpnameRepository
	Outbox      OutboxRepository
}

// TxRunner ejecuta fn dentro de una transacción: Commit si fn retorna nil,
// Rollback completo si retorna error. Garantiza la atomicidad del motor.
type TxRunner interface {
	Run(ctx context.Context, fn func(tx *TxRepos) error) error
}
