package outbox

import (
	"context"
	"time"

	"github.com/invorya/almacen-api/internal/application/ports"
	"github.com/invorya/almacen-api/internal/domain/entity"
	"github.com/invorya/almacen-api/internal/domain/repository"
	"github.com/invorya/almacen-api/pkg/logger"
)

// JobRecalculateSummary job encolado por el relay para el worker de resúmenes.
const JobRecalculateSummary = "recalculate-summary"

// RelayConfig parámetros del poller del outbox.
type RelayConfig struct {
	BatchSize    int           // eventos por pasada (acotado)
	PollInterval time.Duration // espera entre pasadas
	MaxAttempts  int           // intentos de relevo antes de dejar el evento en FAILED
}

// Relay drena el outbox hacia la cola de trabajos y el broker de eventos.
// Por cada evento pendiente (los más antiguos primero): encola el job de
// recálculo, publica el evento para consumidores externos y marca COMPLETED;
// un fallo marca FAILED con el intento acumulado y el último error. Reprocesar
// un evento tras un crash es seguro: el recálculo es idempotente por diseño.
type Relay struct {
	outboxRepo repository.OutboxRepository
	queue      ports.Queue
	publisher  ports.Publisher
	cfg        RelayConfig
	log        *logger.Logger
}

// NewRelay construye el poller.
func NewRelay(outboxRepo repository.OutboxRepository, queue ports.Queue, publisher ports.Publisher, cfg RelayConfig, log *logger.Logger) *Relay {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	return &Relay{outboxRepo: outboxRepo, queue: queue, publisher: publisher, cfg: cfg, log: log}
}

// Run ejecuta el ciclo de polling hasta que el contexto se cancele.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if n, err := r.Drain(ctx); err != nil {
				r.log.Error().Err(err).Msg("pasada del outbox falló")
			} else if n > 0 {
				r.log.Debug().Int("events", n).Msg("outbox drenado")
			}
		}
	}
}

// Drain procesa una pasada acotada y devuelve cuántos eventos relevó con éxito.
func (r *Relay) Drain(ctx context.Context) (int, error) {
	events, err := r.outboxRepo.ListPending(r.cfg.BatchSize, r.cfg.MaxAttempts)
	if err != nil {
		return 0, err
	}
	relayed := 0
	for _, ev := range events {
		if err := r.dispatch(ctx, ev); err != nil {
			r.log.Warn().Err(err).Str("event_id", ev.ID).Str("topic", ev.Topic).Msg("relevo de evento falló")
			if markErr := r.outboxRepo.MarkFailed(ev.ID, err.Error()); markErr != nil {
				r.log.Error().Err(markErr).Str("event_id", ev.ID).Msg("no se pudo marcar FAILED")
			}
			continue
		}
		if err := r.outboxRepo.MarkCompleted(ev.ID); err != nil {
			// El evento quedará pendiente y se relevará de nuevo: entrega
			// at-least-once, el worker tolera duplicados.
			r.log.Error().Err(err).Str("event_id", ev.ID).Msg("no se pudo marcar COMPLETED")
			continue
		}
		relayed++
	}
	return relayed, nil
}

func (r *Relay) dispatch(ctx context.Context, ev *entity.OutboxEvent) error {
	if ev.Topic == entity.TopicMovementCreated {
		if _, err := r.queue.Enqueue(ctx, JobRecalculateSummary, ev.Payload, 0); err != nil {
			return err
		}
	}
	return r.publisher.Publish(ctx, ev.Topic, ev.OrganizationID, ev.Payload)
}
