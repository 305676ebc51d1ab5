package outbox

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/invorya/almacen-api/internal/domain/entity"
)

// MovementPayload identifica el par afectado por un commit que tocó el libro.
// Es todo lo que el worker necesita: la reconstrucción relee el libro completo.
type MovementPayload struct {
	OrganizationID string `json:"organization_id"`
	ProductID      string `json:"product_id"`
	WarehouseID    string `json:"warehouse_id"`
}

// LowStockPayload evento emitido al cruzar hacia abajo el umbral de stock bajo.
type LowStockPayload struct {
	OrganizationID string `json:"organization_id"`
	ProductID      string `json:"product_id"`
	WarehouseID    string `json:"warehouse_id"`
	SKU            string `json:"sku"`
	CurrentStock   string `json:"current_stock"`
	Threshold      string `json:"threshold"`
}

// NewMovementEvent construye el evento de outbox para un par (producto, bodega).
// Debe insertarse en la misma transacción que los movimientos que describe.
func NewMovementEvent(organizationID, productID, warehouseID string) (*entity.OutboxEvent, error) {
	payload, err := json.Marshal(MovementPayload{
		OrganizationID: organizationID,
		ProductID:      productID,
		WarehouseID:    warehouseID,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal movement payload: %w", err)
	}
	return &entity.OutboxEvent{
		ID:             uuid.New().String(),
		OrganizationID: organizationID,
		Topic:          entity.TopicMovementCreated,
		Payload:        payload,
		Status:         entity.OutboxStatusPending,
		CreatedAt:      time.Now(),
	}, nil
}
