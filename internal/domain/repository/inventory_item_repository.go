package repository

import "github.com/invorya/almacen-api/internal/domain/entity"

// InventoryItemRepository define el puerto para la foto de existencias por
// (producto, bodega). Usado dentro de transacciones para garantizar consistencia.
type InventoryItemRepository interface {
	// Get devuelve nil (sin error) si el par aún no tiene fila.
	Get(organizationID, productID, warehouseID string) (*entity.InventoryItem, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE). Devuelve nil si no existe:
	// la creación perezosa es decisión del caller.
	GetForUpdate(organizationID, productID, warehouseID string) (*entity.InventoryItem, error)
	// Insert crea la fila solo si el par aún no existe. Devuelve false cuando
	// otro escritor se adelantó; el caller debe releer bajo bloqueo.
	Insert(item *entity.InventoryItem) (bool, error)
	// Upsert escribe la fila completa. Solo para filas ya bloqueadas con
	// GetForUpdate; la primera escritura del par pasa por Insert.
	Upsert(item *entity.InventoryItem) error
	ListByWarehouse(organizationID, warehouseID string, limit, offset int) ([]*entity.InventoryItem, error)
	// ListLowStock lista pares cuyo on-hand está en o por debajo del umbral del producto.
	ListLowStock(organizationID string, limit, offset int) ([]*entity.InventoryItem, error)
}
