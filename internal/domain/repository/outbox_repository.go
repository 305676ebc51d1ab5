package repository

import "github.com/invorya/almacen-api/internal/domain/entity"

// OutboxRepository define el puerto del outbox transaccional. Create se invoca
// dentro de la misma transacción que la escritura de dominio; el resto lo usa
// el poller fuera de transacción de dominio.
type OutboxRepository interface {
	Create(event *entity.OutboxEvent) error
	// ListPending devuelve hasta limit eventos pendientes (o fallidos con
	// intentos por debajo de maxAttempts), los más antiguos primero.
	ListPending(limit, maxAttempts int) ([]*entity.OutboxEvent, error)
	MarkCompleted(id string) error
	MarkFailed(id string, lastError string) error
}
