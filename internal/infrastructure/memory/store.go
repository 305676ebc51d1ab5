package memory

import (
	"context"
	"sync"

	"github.com/invorya/almacen-api/internal/domain/entity"
	"github.com/invorya/almacen-api/internal/domain/repository"
)

// Store almacén en memoria que implementa todos los puertos de persistencia.
// Pensado para tests y modo demo: mismo contrato que PostgreSQL, incluyendo
// transacciones con rollback total (vía snapshot) y serialización de
// escrituras concurrentes.
type Store struct {
	mu sync.RWMutex
	// txMu serializa transacciones completas; equivale al bloqueo de fila
	// del SELECT FOR UPDATE en PostgreSQL.
	txMu sync.Mutex

	products    map[string]entity.Product
	warehouses  map[string]entity.Warehouse
	items       map[string]entity.InventoryItem // clave org|producto|bodega
	movements   []entity.InventoryMovement
	adjustments map[string]entity.StockAdjustment
	transfers   map[string]entity.StockTransfer
	purchases   map[string]entity.PurchaseOrder
	receipts    map[string]entity.PurchaseReceipt
	sales       map[string]entity.SalesOrder
	opnames     map[string]entity.StockOpname
	summaries   map[string]entity.StockSummary // clave org|bodega|producto
	outbox      []entity.OutboxEvent
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		products:    make(map[string]entity.Product),
		warehouses:  make(map[string]entity.Warehouse),
		items:       make(map[string]entity.InventoryItem),
		adjustments: make(map[string]entity.StockAdjustment),
		transfers:   make(map[string]entity.StockTransfer),
		purchases:   make(map[string]entity.PurchaseOrder),
		receipts:    make(map[string]entity.PurchaseReceipt),
		sales:       make(map[string]entity.SalesOrder),
		opnames:     make(map[string]entity.StockOpname),
		summaries:   make(map[string]entity.StockSummary),
	}
}

func itemKey(organizationID, productID, warehouseID string) string {
	return organizationID + "|" + productID + "|" + warehouseID
}

func summaryKey(organizationID, warehouseID, productID string) string {
	return organizationID + "|" + warehouseID + "|" + productID
}

// Repos devuelve el conjunto de repositorios sobre este almacén. El mismo
// conjunto sirve dentro y fuera de transacción: la atomicidad la da TxRunner.
func (s *Store) Repos() *repository.TxRepos {
	return &repository.TxRepos{
		Items:       &itemRepo{s},
		Movements:   &movementRepo{s},
		Adjustments: &adjustmentRepo{s},
		Transfers:   &transferRepo{s},
		Purchases:   &purchaseRepo{s},
		Receipts:    &receiptRepo{s},
		Sales:       &salesRepo{s},
		Opnames:     &opnameRepo{s},
		Outbox:      &outboxRepo{s},
	}
}

// Products repositorio de productos.
func (s *Store) Products() repository.ProductRepository { return &productRepo{s} }

// Warehouses repositorio de bodegas.
func (s *Store) Warehouses() repository.WarehouseRepository { return &warehouseRepo{s} }

// Summaries repositorio del resumen denormalizado.
func (s *Store) Summaries() repository.StockSummaryRepository { return &summaryRepo{s} }

var _ repository.TxRunner = (*TxRunner)(nil)

// TxRunner transacciones sobre el almacén en memoria: toma un snapshot
// completo antes de fn y lo restaura si fn falla. Las transacciones se
// serializan entre sí, igual que los bloqueos de fila en la base real.
type TxRunner struct {
	store *Store
}

// NewTxRunner construye el runner.
func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

// Run ejecuta fn con semántica todo-o-nada.
func (r *TxRunner) Run(ctx context.Context, fn func(tx *repository.TxRepos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.txMu.Lock()
	defer r.store.txMu.Unlock()

	snap := r.store.snapshot()
	if err := fn(r.store.Repos()); err != nil {
		r.store.restore(snap)
		return err
	}
	return nil
}

type snapshot struct {
	products    map[string]entity.Product
	warehouses  map[string]entity.Warehouse
	items       map[string]entity.InventoryItem
	movements   []entity.InventoryMovement
	adjustments map[string]entity.StockAdjustment
	transfers   map[string]entity.StockTransfer
	purchases   map[string]entity.PurchaseOrder
	receipts    map[string]entity.PurchaseReceipt
	sales       map[string]entity.SalesOrder
	opnames     map[string]entity.StockOpname
	summaries   map[string]entity.StockSummary
	outbox      []entity.OutboxEvent
}

func (s *Store) snapshot() *snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := &snapshot{
		products:    make(map[string]entity.Product, len(s.products)),
		warehouses:  make(map[string]entity.Warehouse, len(s.warehouses)),
		items:       make(map[string]entity.InventoryItem, len(s.items)),
		movements:   make([]entity.InventoryMovement, len(s.movements)),
		adjustments: make(map[string]entity.StockAdjustment, len(s.adjustments)),
		transfers:   make(map[string]entity.StockTransfer, len(s.transfers)),
		purchases:   make(map[string]entity.PurchaseOrder, len(s.purchases)),
		receipts:    make(map[string]entity.PurchaseReceipt, len(s.receipts)),
		sales:       make(map[string]entity.SalesOrder, len(s.sales)),
		opnames:     make(map[string]entity.StockOpname, len(s.opnames)),
		summaries:   make(map[string]entity.StockSummary, len(s.summaries)),
		outbox:      make([]entity.OutboxEvent, len(s.outbox)),
	}
	for k, v := range s.products {
		snap.products[k] = v
	}
	for k, v := range s.warehouses {
		snap.warehouses[k] = v
	}
	for k, v := range s.items {
		snap.items[k] = v
	}
	copy(snap.movements, s.movements)
	for k, v := range s.adjustments {
		snap.adjustments[k] = v
	}
	for k, v := range s.transfers {
		snap.transfers[k] = cloneTransfer(v)
	}
	for k, v := range s.purchases {
		snap.purchases[k] = clonePurchase(v)
	}
	for k, v := range s.receipts {
		snap.receipts[k] = cloneReceipt(v)
	}
	for k, v := range s.sales {
		snap.sales[k] = cloneSales(v)
	}
	for k, v := range s.opnames {
		snap.opnames[k] = cloneOpname(v)
	}
	for k, v := range s.summaries {
		snap.summaries[k] = v
	}
	copy(snap.outbox, s.outbox)
	return snap
}

func (s *Store) restore(snap *snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = snap.products
	s.warehouses = snap.warehouses
	s.items = snap.items
	s.movements = snap.movements
	s.adjustments = snap.adjustments
	s.transfers = snap.transfers
	s.purchases = snap.purchases
	s.receipts = snap.receipts
	s.sales = snap.sales
	s.opnames = snap.opnames
	s.summaries = snap.summaries
	s.outbox = snap.outbox
}

// Clones profundos: las cabeceras guardan punteros a líneas, hay que copiarlas
// para que el snapshot no comparta estado con el original.

func cloneTransfer(t entity.StockTransfer) entity.StockTransfer {
	items := make([]*entity.StockTransferItem, len(t.Items))
	for i, it := range t.Items {
		c := *it
		items[i] = &c
	}
	t.Items = items
	return t
}

func clonePurchase(o entity.PurchaseOrder) entity.PurchaseOrder {
	items := make([]*entity.PurchaseOrderItem, len(o.Items))
	for i, it := range o.Items {
		c := *it
		items[i] = &c
	}
	o.Items = items
	return o
}

func cloneReceipt(r entity.PurchaseReceipt) entity.PurchaseReceipt {
	items := make([]*entity.PurchaseReceiptItem, len(r.Items))
	for i, it := range r.Items {
		c := *it
		items[i] = &c
	}
	r.Items = items
	return r
}

func cloneSales(o entity.SalesOrder) entity.SalesOrder {
	items := make([]*entity.SalesOrderItem, len(o.Items))
	for i, it := range o.Items {
		c := *it
		items[i] = &c
	}
	o.Items = items
	return o
}

func cloneOpname(op entity.StockOpname) entity.StockOpname {
	items := make([]*entity.StockOpnameItem, len(op.Items))
	for i, it := range op.Items {
		c := *it
		items[i] = &c
	}
	op.Items = items
	return op
}
