package memory

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/invorya/almacen-api/internal/domain"
	"github.com/invorya/almacen-api/internal/domain/entity"
	"github.com/invorya/almacen-api/internal/domain/repository"
)

// paginate recorta [offset, offset+limit) sobre una lista ya ordenada.
// limit <= 0 significa sin tope.
func paginate[T any](list []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(list) {
		return nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}

// --- productos ---

type productRepo struct{ s *Store }

func (r *productRepo) Create(product *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.products {
		if p.OrganizationID == product.OrganizationID && p.SKU == product.SKU && p.DeletedAt == nil {
			return domain.ErrDuplicate
		}
	}
	r.s.products[product.ID] = *product
	return nil
}

func (r *productRepo) GetByID(organizationID, id string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.products[id]
	if !ok || p.OrganizationID != organizationID || p.DeletedAt != nil {
		return nil, nil
	}
	return &p, nil
}

func (r *productRepo) GetBySKU(organizationID, sku string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, p := range r.s.products {
		if p.OrganizationID == organizationID && p.SKU == sku && p.DeletedAt == nil {
			found := p
			return &found, nil
		}
	}
	return nil, nil
}

func (r *productRepo) Update(product *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	old, ok := r.s.products[product.ID]
	if !ok || old.OrganizationID != product.OrganizationID || old.DeletedAt != nil {
		return domain.ErrNotFound
	}
	if old.SKU != product.SKU {
		for _, p := range r.s.products {
			if p.ID != product.ID && p.OrganizationID == product.OrganizationID && p.SKU == product.SKU && p.DeletedAt == nil {
				return domain.ErrDuplicate
			}
		}
	}
	r.s.products[product.ID] = *product
	return nil
}

func (r *productRepo) ListByOrganization(organizationID string, limit, offset int) ([]*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.Product
	for _, p := range r.s.products {
		if p.OrganizationID == organizationID && p.DeletedAt == nil {
			found := p
			list = append(list, &found)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return paginate(list, limit, offset), nil
}

func (r *productRepo) SoftDelete(organizationID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok || p.OrganizationID != organizationID || p.DeletedAt != nil {
		return domain.ErrNotFound
	}
	now := time.Now()
	p.DeletedAt = &now
	p.UpdatedAt = now
	r.s.products[id] = p
	return nil
}

// --- bodegas ---

type warehouseRepo struct{ s *Store }

func (r *warehouseRepo) Create(warehouse *entity.Warehouse) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, w := range r.s.warehouses {
		if w.OrganizationID == warehouse.OrganizationID && w.Code == warehouse.Code && w.DeletedAt == nil {
			return domain.ErrDuplicate
		}
	}
	r.s.warehouses[warehouse.ID] = *warehouse
	return nil
}

func (r *warehouseRepo) GetByID(organizationID, id string) (*entity.Warehouse, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	w, ok := r.s.warehouses[id]
	if !ok || w.OrganizationID != organizationID || w.DeletedAt != nil {
		return nil, nil
	}
	return &w, nil
}

func (r *warehouseRepo) GetByCode(organizationID, code string) (*entity.Warehouse, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, w := range r.s.warehouses {
		if w.OrganizationID == organizationID && w.Code == code && w.DeletedAt == nil {
			found := w
			return &found, nil
		}
	}
	return nil, nil
}

func (r *warehouseRepo) Update(warehouse *entity.Warehouse) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	old, ok := r.s.warehouses[warehouse.ID]
	if !ok || old.OrganizationID != warehouse.OrganizationID || old.DeletedAt != nil {
		return domain.ErrNotFound
	}
	r.s.warehouses[warehouse.ID] = *warehouse
	return nil
}

func (r *warehouseRepo) ListByOrganization(organizationID string, limit, offset int) ([]*entity.Warehouse, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.Warehouse
	for _, w := range r.s.warehouses {
		if w.OrganizationID == organizationID && w.DeletedAt == nil {
			found := w
			list = append(list, &found)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	return paginate(list, limit, offset), nil
}

func (r *warehouseRepo) SoftDelete(organizationID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w, ok := r.s.warehouses[id]
	if !ok || w.OrganizationID != organizationID || w.DeletedAt != nil {
		return domain.ErrNotFound
	}
	now := time.Now()
	w.DeletedAt = &now
	w.UpdatedAt = now
	r.s.warehouses[id] = w
	return nil
}

// --- existencias ---

type itemRepo struct{ s *Store }

func (r *itemRepo) Get(organizationID, productID, warehouseID string) (*entity.InventoryItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	it, ok := r.s.items[itemKey(organizationID, productID, warehouseID)]
	if !ok {
		return nil, nil
	}
	return &it, nil
}

// GetForUpdate en memoria equivale a Get: el bloqueo lo da la serialización
// de transacciones del TxRunner.
func (r *itemRepo) GetForUpdate(organizationID, productID, warehouseID string) (*entity.InventoryItem, error) {
	return r.Get(organizationID, productID, warehouseID)
}

func (r *itemRepo) Insert(item *entity.InventoryItem) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := itemKey(item.OrganizationID, item.ProductID, item.WarehouseID)
	if _, ok := r.s.items[key]; ok {
		return false, nil
	}
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	item.UpdatedAt = time.Now()
	r.s.items[key] = *item
	return true, nil
}

func (r *itemRepo) Upsert(item *entity.InventoryItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	item.UpdatedAt = time.Now()
	r.s.items[itemKey(item.OrganizationID, item.ProductID, item.WarehouseID)] = *item
	return nil
}

func (r *itemRepo) ListByWarehouse(organizationID, warehouseID string, limit, offset int) ([]*entity.InventoryItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.InventoryItem
	for _, it := range r.s.items {
		if it.OrganizationID == organizationID && it.WarehouseID == warehouseID {
			found := it
			list = append(list, &found)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ProductID < list[j].ProductID })
	return paginate(list, limit, offset), nil
}

func (r *itemRepo) ListLowStock(organizationID string, limit, offset int) ([]*entity.InventoryItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.InventoryItem
	for _, it := range r.s.items {
		if it.OrganizationID != organizationID {
			continue
		}
		p, ok := r.s.products[it.ProductID]
		if !ok || p.DeletedAt != nil || !p.LowStockThreshold.IsPositive() {
			continue
		}
		if it.QuantityOnHand.LessThanOrEqual(p.LowStockThreshold) {
			found := it
			list = append(list, &found)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].QuantityOnHand.LessThan(list[j].QuantityOnHand)
	})
	return paginate(list, limit, offset), nil
}

// --- libro de movimientos ---

type movementRepo struct{ s *Store }

func (r *movementRepo) Create(movement *entity.InventoryMovement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	r.s.movements = append(r.s.movements, *movement)
	return nil
}

func (r *movementRepo) GetByID(organizationID, id string) (*entity.InventoryMovement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, m := range r.s.movements {
		if m.ID == id && m.OrganizationID == organizationID {
			found := m
			return &found, nil
		}
	}
	return nil, nil
}

func (r *movementRepo) ListByWarehouse(organizationID, warehouseID string, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error) {
	return r.list(func(m *entity.InventoryMovement) bool {
		return m.OrganizationID == organizationID && m.WarehouseID == warehouseID
	}, from, to, limit, offset)
}

func (r *movementRepo) ListByProduct(organizationID, productID string, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error) {
	return r.list(func(m *entity.InventoryMovement) bool {
		return m.OrganizationID == organizationID && m.ProductID == productID
	}, from, to, limit, offset)
}

func (r *movementRepo) list(match func(*entity.InventoryMovement) bool, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.InventoryMovement
	for i := range r.s.movements {
		m := r.s.movements[i]
		if !match(&m) {
			continue
		}
		if from != nil && m.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && m.CreatedAt.After(*to) {
			continue
		}
		list = append(list, &m)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return paginate(list, limit, offset), nil
}

func (r *movementRepo) ExistsForProduct(organizationID, productID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, m := range r.s.movements {
		if m.OrganizationID == organizationID && m.ProductID == productID {
			return true, nil
		}
	}
	return false, nil
}

func (r *movementRepo) TotalsForPair(organizationID, productID, warehouseID string) (*repository.LedgerTotals, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t := &repository.LedgerTotals{TotalIn: decimal.Zero, TotalOut: decimal.Zero}
	for _, m := range r.s.movements {
		if m.OrganizationID != organizationID || m.ProductID != productID || m.WarehouseID != warehouseID {
			continue
		}
		switch {
		case m.Type == entity.MovementTypeIN || m.Type == entity.MovementTypeTransferIN:
			t.TotalIn = t.TotalIn.Add(m.Quantity)
		case m.Type == entity.MovementTypeOUT || m.Type == entity.MovementTypeTransferOUT:
			t.TotalOut = t.TotalOut.Add(m.Quantity)
		case m.Type == entity.MovementTypeADJUST && m.Quantity.IsPositive():
			t.TotalIn = t.TotalIn.Add(m.Quantity)
		case m.Type == entity.MovementTypeADJUST && m.Quantity.IsNegative():
			t.TotalOut = t.TotalOut.Add(m.Quantity.Neg())
		}
		if t.LastMovementAt == nil || m.CreatedAt.After(*t.LastMovementAt) {
			at := m.CreatedAt
			t.LastMovementAt = &at
		}
	}
	return t, nil
}

// --- ajustes ---

type adjustmentRepo struct{ s *Store }

func (r *adjustmentRepo) Create(adjustment *entity.StockAdjustment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if adjustment.ID == "" {
		adjustment.ID = uuid.New().String()
	}
	r.s.adjustments[adjustment.ID] = *adjustment
	return nil
}

func (r *adjustmentRepo) GetByID(organizationID, id string) (*entity.StockAdjustment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.adjustments[id]
	if !ok || a.OrganizationID != organizationID {
		return nil, nil
	}
	return &a, nil
}

func (r *adjustmentRepo) ListByOrganization(organizationID string, limit, offset int) ([]*entity.StockAdjustment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.StockAdjustment
	for _, a := range r.s.adjustments {
		if a.OrganizationID == organizationID {
			found := a
			list = append(list, &found)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return paginate(list, limit, offset), nil
}

// --- traslados ---

type transferRepo struct{ s *Store }

func (r *transferRepo) Create(transfer *entity.StockTransfer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, it := range transfer.Items {
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		it.TransferID = transfer.ID
	}
	r.s.transfers[transfer.ID] = cloneTransfer(*transfer)
	return nil
}

func (r *transferRepo) GetByID(organizationID, id string) (*entity.StockTransfer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.transfers[id]
	if !ok || t.OrganizationID != organizationID {
		return nil, nil
	}
	c := cloneTransfer(t)
	return &c, nil
}

func (r *transferRepo) GetForUpdate(organizationID, id string) (*entity.StockTransfer, error) {
	return r.GetByID(organizationID, id)
}

func (r *transferRepo) UpdateStatus(organizationID, id, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.transfers[id]
	if !ok || t.OrganizationID != organizationID {
		return domain.ErrNotFound
	}
	t.Status = status
	t.UpdatedAt = time.Now()
	r.s.transfers[id] = t
	return nil
}

func (r *transferRepo) ListByOrganization(organizationID, status string, limit, offset int) ([]*entity.StockTransfer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.StockTransfer
	for _, t := range r.s.transfers {
		if t.OrganizationID != organizationID {
			continue
		}
		if status != "" && t.Status != status {
			continue
		}
		c := cloneTransfer(t)
		list = append(list, &c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return paginate(list, limit, offset), nil
}

// --- órdenes de compra ---

type purchaseRepo struct{ s *Store }

func (r *purchaseRepo) Create(order *entity.PurchaseOrder) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, it := range order.Items {
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		it.OrderID = order.ID
	}
	r.s.purchases[order.ID] = clonePurchase(*order)
	return nil
}

func (r *purchaseRepo) GetByID(organizationID, id string) (*entity.PurchaseOrder, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	o, ok := r.s.purchases[id]
	if !ok || o.OrganizationID != organizationID {
		return nil, nil
	}
	c := clonePurchase(o)
	return &c, nil
}

func (r *purchaseRepo) GetForUpdate(organizationID, id string) (*entity.PurchaseOrder, error) {
	return r.GetByID(organizationID, id)
}

func (r *purchaseRepo) UpdateStatus(organizationID, id, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.purchases[id]
	if !ok || o.OrganizationID != organizationID {
		return domain.ErrNotFound
	}
	o.Status = status
	o.UpdatedAt = time.Now()
	r.s.purchases[id] = o
	return nil
}

func (r *purchaseRepo) IncrementReceived(itemID string, quantity decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, o := range r.s.purchases {
		for _, it := range o.Items {
			if it.ID == itemID {
				it.ReceivedQty = it.ReceivedQty.Add(quantity)
				r.s.purchases[id] = o
				return nil
			}
		}
	}
	return domain.ErrNotFound
}

func (r *purchaseRepo) ListByOrganization(organizationID, status string, limit, offset int) ([]*entity.PurchaseOrder, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.PurchaseOrder
	for _, o := range r.s.purchases {
		if o.OrganizationID != organizationID {
			continue
		}
		if status != "" && o.Status != status {
			continue
		}
		c := clonePurchase(o)
		list = append(list, &c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return paginate(list, limit, offset), nil
}

// --- recibos ---

type receiptRepo struct{ s *Store }

func (r *receiptRepo) Create(receipt *entity.PurchaseReceipt) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, it := range receipt.Items {
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		it.ReceiptID = receipt.ID
	}
	r.s.receipts[receipt.ID] = cloneReceipt(*receipt)
	return nil
}

func (r *receiptRepo) ListByOrder(organizationID, orderID string) ([]*entity.PurchaseReceipt, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.PurchaseReceipt
	for _, rec := range r.s.receipts {
		if rec.OrganizationID == organizationID && rec.OrderID == orderID {
			c := cloneReceipt(rec)
			list = append(list, &c)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	return list, nil
}

// --- órdenes de venta ---

type salesRepo struct{ s *Store }

func (r *salesRepo) Create(order *entity.SalesOrder) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, it := range order.Items {
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		it.OrderID = order.ID
	}
	r.s.sales[order.ID] = cloneSales(*order)
	return nil
}

func (r *salesRepo) GetByID(organizationID, id string) (*entity.SalesOrder, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	o, ok := r.s.sales[id]
	if !ok || o.OrganizationID != organizationID {
		return nil, nil
	}
	c := cloneSales(o)
	return &c, nil
}

func (r *salesRepo) GetForUpdate(organizationID, id string) (*entity.SalesOrder, error) {
	return r.GetByID(organizationID, id)
}

func (r *salesRepo) UpdateStatus(organizationID, id, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.sales[id]
	if !ok || o.OrganizationID != organizationID {
		return domain.ErrNotFound
	}
	o.Status = status
	o.UpdatedAt = time.Now()
	r.s.sales[id] = o
	return nil
}

func (r *salesRepo) ListByOrganization(organizationID, status string, limit, offset int) ([]*entity.SalesOrder, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.SalesOrder
	for _, o := range r.s.sales {
		if o.OrganizationID != organizationID {
			continue
		}
		if status != "" && o.Status != status {
			continue
		}
		c := cloneSales(o)
		list = append(list, &c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return paginate(list, limit, offset), nil
}

// --- conteos físicos ---

type opnameRepo struct{ s *Store }

func (r *opnameRepo) Create(opname *entity.StockOpname) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, it := range opname.Items {
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		it.OpnameID = opname.ID
	}
	r.s.opnames[opname.ID] = cloneOpname(*opname)
	return nil
}

func (r *opnameRepo) GetByID(organizationID, id string) (*entity.StockOpname, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	op, ok := r.s.opnames[id]
	if !ok || op.OrganizationID != organizationID {
		return nil, nil
	}
	c := cloneOpname(op)
	return &c, nil
}

func (r *opnameRepo) GetForUpdate(organizationID, id string) (*entity.StockOpname, error) {
	return r.GetByID(organizationID, id)
}

func (r *opnameRepo) UpdateStatus(organizationID, id, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	op, ok := r.s.opnames[id]
	if !ok || op.OrganizationID != organizationID {
		return domain.ErrNotFound
	}
	op.Status = status
	op.UpdatedAt = time.Now()
	r.s.opnames[id] = op
	return nil
}

func (r *opnameRepo) UpdateCount(itemID string, countedQty decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, op := range r.s.opnames {
		for _, it := range op.Items {
			if it.ID == itemID {
				it.CountedQty = countedQty
				r.s.opnames[id] = op
				return nil
			}
		}
	}
	return domain.ErrNotFound
}

func (r *opnameRepo) ListByOrganization(organizationID, status string, limit, offset int) ([]*entity.StockOpname, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.StockOpname
	for _, op := range r.s.opnames {
		if op.OrganizationID != organizationID {
			continue
		}
		if status != "" && op.Status != status {
			continue
		}
		c := cloneOpname(op)
		list = append(list, &c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return paginate(list, limit, offset), nil
}

// --- resumen ---

type summaryRepo struct{ s *Store }

func (r *summaryRepo) Get(organizationID, productID, warehouseID string) (*entity.StockSummary, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sm, ok := r.s.summaries[summaryKey(organizationID, warehouseID, productID)]
	if !ok {
		return nil, nil
	}
	return &sm, nil
}

func (r *summaryRepo) Upsert(summary *entity.StockSummary) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	summary.UpdatedAt = time.Now()
	r.s.summaries[summaryKey(summary.OrganizationID, summary.WarehouseID, summary.ProductID)] = *summary
	return nil
}

func (r *summaryRepo) ListByWarehouse(organizationID, warehouseID string, limit, offset int) ([]*entity.StockSummary, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.StockSummary
	for _, sm := range r.s.summaries {
		if sm.OrganizationID == organizationID && sm.WarehouseID == warehouseID {
			found := sm
			list = append(list, &found)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ProductID < list[j].ProductID })
	return paginate(list, limit, offset), nil
}

// --- outbox ---

type outboxRepo struct{ s *Store }

func (r *outboxRepo) Create(event *entity.OutboxEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	r.s.outbox = append(r.s.outbox, *event)
	return nil
}

func (r *outboxRepo) ListPending(limit, maxAttempts int) ([]*entity.OutboxEvent, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.OutboxEvent
	for i := range r.s.outbox {
		e := r.s.outbox[i]
		if e.Status == entity.OutboxStatusPending ||
			(e.Status == entity.OutboxStatusFailed && e.Attempts < maxAttempts) {
			list = append(list, &e)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	return paginate(list, limit, 0), nil
}

func (r *outboxRepo) MarkCompleted(id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.outbox {
		if r.s.outbox[i].ID == id {
			now := time.Now()
			r.s.outbox[i].Status = entity.OutboxStatusCompleted
			r.s.outbox[i].ProcessedAt = &now
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *outboxRepo) MarkFailed(id string, lastError string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.outbox {
		if r.s.outbox[i].ID == id {
			r.s.outbox[i].Status = entity.OutboxStatusFailed
			r.s.outbox[i].Attempts++
			r.s.outbox[i].LastError = lastError
			return nil
		}
	}
	return domain.ErrNotFound
}
