package entity

import "time"

// Estados de un evento de outbox.
const (
	OutboxStatusPending   = "PENDING"
	OutboxStatusCompleted = "COMPLETED"
	OutboxStatusFailed    = "FAILED"
)

// Tópicos de eventos de dominio.
const (
	TopicMovementCreated = "inventory.movement.created"
	TopicLowStock        = "inventory.low_stock"
)

// OutboxEvent registro durable de un evento de dominio pendiente de relevo al
// pipeline asíncrono. Se inserta en la misma transacción que la escritura de
// dominio que describe (patrón transactional outbox): no puede perderse
// respecto a esa escritura, aunque sí puede entregarse más de una vez.
type OutboxEvent struct {
	ID             string
	OrganizationID string
	Topic          string
	Payload        []byte
	Status         string
	Attempts       int
	LastError      string
	CreatedAt      time.Time
	ProcessedAt    *time.Time
}
