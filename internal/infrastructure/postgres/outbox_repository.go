package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/invorya/almacen-api/internal/domain"
	"github.com/invorya/almacen-api/internal/domain/entity"
	"github.com/invorya/almacen-api/internal/domain/repository"
)

var _ repository.OutboxRepository = (*OutboxRepo)(nil)

// OutboxRepo implementación del outbox transaccional sobre PostgreSQL
// (usable con pool o tx). Create corre dentro de la transacción de dominio;
// el resto lo usa el relevador fuera de ella.
type OutboxRepo struct {
	q Querier
}

// NewOutboxRepository construye el adaptador del outbox. Pasar pool o tx (Querier).
func NewOutboxRepository(q Querier) *OutboxRepo {
	return &OutboxRepo{q: q}
}

// Create inserta un evento pendiente.
func (r *OutboxRepo) Create(event *entity.OutboxEvent) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	query := `
		INSERT INTO outbox_events (id, organization_id, topic, payload, status, attempts, last_error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		event.ID, event.OrganizationID, event.Topic, event.Payload,
		event.Status, event.Attempts, event.LastError, event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create outbox event: %w", err)
	}
	return nil
}

// ListPending devuelve hasta limit eventos por despachar, los más antiguos
// primero. Incluye FAILED con intentos por debajo de maxAttempts (reintento).
// La lectura no reclama los eventos: con varios relevadores el mismo lote
// puede despacharse más de una vez, y los consumidores lo toleran porque el
// recálculo es idempotente (entrega al menos una vez).
func (r *OutboxRepo) ListPending(limit, maxAttempts int) ([]*entity.OutboxEvent, error) {
	query := `
		SELECT id, organization_id, topic, payload, status, attempts, last_error, created_at, processed_at
		FROM outbox_events
		WHERE status = $1 OR (status = $2 AND attempts < $3)
		ORDER BY created_at ASC
		LIMIT $4`
	rows, err := r.q.Query(context.Background(), query,
		entity.OutboxStatusPending, entity.OutboxStatusFailed, maxAttempts, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list pending events: %w", err)
	}
	defer rows.Close()
	var list []*entity.OutboxEvent
	for rows.Next() {
		var e entity.OutboxEvent
		if err := rows.Scan(&e.ID, &e.OrganizationID, &e.Topic, &e.Payload, &e.Status,
			&e.Attempts, &e.LastError, &e.CreatedAt, &e.ProcessedAt); err != nil {
			return nil, fmt.Errorf("scan outbox event: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}

// MarkCompleted marca el evento como despachado.
func (r *OutboxRepo) MarkCompleted(id string) error {
	cmd, err := r.q.Exec(context.Background(),
		`UPDATE outbox_events SET status = $2, processed_at = now() WHERE id = $1`,
		id, entity.OutboxStatusCompleted,
	)
	if err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MarkFailed registra el fallo e incrementa el contador de intentos.
func (r *OutboxRepo) MarkFailed(id string, lastError string) error {
	cmd, err := r.q.Exec(context.Background(),
		`UPDATE outbox_events SET status = $2, attempts = attempts + 1, last_error = $3 WHERE id = $1`,
		id, entity.OutboxStatusFailed, lastError,
	)
	if err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
