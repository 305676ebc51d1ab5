package ports

import (
	"context"
	"time"
)

// JobHandler procesa el payload de un job. Un error dispara el reintento
// con backoff de la cola (acotado, nunca infinito).
type JobHandler func(ctx context.Context, payload []byte) error

// Queue puerto de cola durable de trabajos con entrega at-least-once.
type Queue interface {
	// Enqueue encola un job; delay > 0 lo difiere. Devuelve el ID del job.
	Enqueue(ctx context.Context, job string, payload []byte, delay time.Duration) (string, error)
	// Process registra el handler de un job. El consumo arranca con Start.
	Process(job string, handler JobHandler)
}

// Publisher puerto de publicación de eventos para consumidores externos
// (notificaciones, otros servicios).
type Publisher interface {
	Publish(ctx context.Context, topic, key string, payload []byte) error
}
