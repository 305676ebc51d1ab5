package inventory_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/invorya/almacen-api/internal/application/inventory"
	"github.com/invorya/almacen-api/internal/domain/entity"
	"github.com/invorya/almacen-api/internal/infrastructure/memory"
)

const (
	testOrgID   = "org-0001"
	testActorID = "user-0001"
)

// env arma el motor completo sobre el almacén en memoria: mismo contrato que
// PostgreSQL, incluyendo rollback total en transacciones fallidas.
type env struct {
	store    *memory.Store
	product  *entity.Product
	whA      *entity.Warehouse
	whB      *entity.Warehouse
	adjust   *inventory.AdjustmentUseCase
	transfer *inventory.TransferUseCase
	opname   *inventory.OpnameUseCase
}

func newEnv(t *testing.T) *env {
	t.Helper()

	store := memory.NewStore()
	txRunner := memory.NewTxRunner(store)
	ledger := inventory.NewLedger(false)

	e := &env{
		store:    store,
		adjust:   inventory.NewAdjustmentUseCase(txRunner, store.Products(), store.Warehouses(), store.Repos().Adjustments, ledger),
		transfer: inventory.NewTransferUseCase(txRunner, store.Products(), store.Warehouses(), store.Repos().Transfers, ledger),
		opname:   inventory.NewOpnameUseCase(txRunner, store.Warehouses(), store.Products(), store.Repos().Opnames, ledger),
	}
	e.product = e.seedProduct(t, "SKU-001", decimal.NewFromInt(5))
	e.whA = e.seedWarehouse(t, "BOD-A")
	e.whB = e.seedWarehouse(t, "BOD-B")
	return e
}

func (e *env) seedProduct(t *testing.T, sku string, lowStock decimal.Decimal) *entity.Product {
	t.Helper()
	now := time.Now()
	p := &entity.Product{
		ID:                uuid.New().String(),
		OrganizationID:    testOrgID,
		SKU:               sku,
		Name:              "Producto " + sku,
		UnitMeasure:       "UN",
		Price:             decimal.NewFromInt(100),
		Cost:              decimal.NewFromInt(60),
		LowStockThreshold: lowStock,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	require.NoError(t, e.store.Products().Create(p))
	return p
}

func (e *env) seedWarehouse(t *testing.T, code string) *entity.Warehouse {
	t.Helper()
	now := time.Now()
	w := &entity.Warehouse{
		ID:             uuid.New().String(),
		OrganizationID: testOrgID,
		Code:           code,
		Name:           "Bodega " + code,
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	require.NoError(t, e.store.Warehouses().Create(w))
	return w
}

// seedStock escribe la foto de existencias directamente, sin pasar por el
// libro; los tests que auditan movimientos parten así de un libro limpio.
func (e *env) seedStock(t *testing.T, productID, warehouseID string, onHand, allocated int64) {
	t.Helper()
	require.NoError(t, e.store.Repos().Items.Upsert(&entity.InventoryItem{
		ID:             uuid.New().String(),
		OrganizationID: testOrgID,
		ProductID:      productID,
		WarehouseID:    warehouseID,
		QuantityOnHand: decimal.NewFromInt(onHand),
		AllocatedQty:   decimal.NewFromInt(allocated),
		UpdatedAt:      time.Now(),
	}))
}

func (e *env) onHand(t *testing.T, productID, warehouseID string) decimal.Decimal {
	t.Helper()
	item, err := e.store.Repos().Items.Get(testOrgID, productID, warehouseID)
	require.NoError(t, err)
	if item == nil {
		return decimal.Zero
	}
	return item.QuantityOnHand
}

func (e *env) movements(t *testing.T, productID string) []*entity.InventoryMovement {
	t.Helper()
	movs, err := e.store.Repos().Movements.ListByProduct(testOrgID, productID, nil, nil, 100, 0)
	require.NoError(t, err)
	return movs
}

func (e *env) pendingOutbox(t *testing.T) []*entity.OutboxEvent {
	t.Helper()
	events, err := e.store.Repos().Outbox.ListPending(100, 5)
	require.NoError(t, err)
	return events
}
