package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"

	"github.com/invorya/almacen-api/internal/application/ports"
	"github.com/invorya/almacen-api/pkg/logger"
)

var _ ports.Queue = (*RedisQueue)(nil)

// task es el sobre serializado que viaja por Redis.
type task struct {
	ID       string `json:"id"`
	Job      string `json:"job"`
	Payload  []byte `json:"payload"`
	Attempts int    `json:"attempts"`
}

// RedisQueue cola durable de trabajos sobre Redis con entrega at-least-once.
// Cada job tiene una lista "ready" (LPUSH/BRPOP) y un sorted set "delayed"
// cuyo score es el instante de ejecución; un promotor mueve los vencidos a la
// lista. Los fallos reintentan con backoff exponencial hasta maxAttempts y
// después van a la lista "dead" para inspección manual.
type RedisQueue struct {
	client      *redis.Client
	log         *logger.Logger
	maxAttempts int

	mu       sync.Mutex
	handlers map[string]ports.JobHandler
}

// NewRedisQueue construye la cola con su propio cliente.
func NewRedisQueue(addr, password string, db, maxAttempts int, log *logger.Logger) *RedisQueue {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return NewRedisQueueWithClient(client, maxAttempts, log)
}

// NewRedisQueueWithClient construye la cola sobre un cliente compartido.
func NewRedisQueueWithClient(client *redis.Client, maxAttempts int, log *logger.Logger) *RedisQueue {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &RedisQueue{
		client:      client,
		log:         log,
		maxAttempts: maxAttempts,
		handlers:    make(map[string]ports.JobHandler),
	}
}

func readyKey(job string) string   { return "queue:" + job + ":ready" }
func delayedKey(job string) string { return "queue:" + job + ":delayed" }
func deadKey(job string) string    { return "queue:" + job + ":dead" }

// Enqueue encola un job; delay > 0 lo difiere vía el sorted set.
func (q *RedisQueue) Enqueue(ctx context.Context, job string, payload []byte, delay time.Duration) (string, error) {
	t := task{ID: uuid.New().String(), Job: job, Payload: payload}
	raw, err := json.Marshal(t)
	if err != nil {
		return "", fmt.Errorf("marshal task: %w", err)
	}
	if delay > 0 {
		score := float64(time.Now().Add(delay).UnixMilli())
		if err := q.client.ZAdd(ctx, delayedKey(job), redis.Z{Score: score, Member: raw}).Err(); err != nil {
			return "", fmt.Errorf("enqueue delayed: %w", err)
		}
		return t.ID, nil
	}
	if err := q.client.LPush(ctx, readyKey(job), raw).Err(); err != nil {
		return "", fmt.Errorf("enqueue: %w", err)
	}
	return t.ID, nil
}

// Process registra el handler de un job. Debe llamarse antes de Start.
func (q *RedisQueue) Process(job string, handler ports.JobHandler) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers[job] = handler
}

// Start consume todos los jobs registrados hasta que el contexto se cancele.
// Bloqueante: correr en su propia goroutine.
func (q *RedisQueue) Start(ctx context.Context) error {
	q.mu.Lock()
	jobs := make([]string, 0, len(q.handlers))
	for job := range q.handlers {
		jobs = append(jobs, job)
	}
	q.mu.Unlock()
	if len(jobs) == 0 {
		return errors.New("sin handlers registrados")
	}

	var wg sync.WaitGroup
	for _, job := range jobs {
		wg.Add(1)
		go func(job string) {
			defer wg.Done()
			q.consume(ctx, job)
		}(job)
		wg.Add(1)
		go func(job string) {
			defer wg.Done()
			q.promote(ctx, job)
		}(job)
	}
	wg.Wait()
	return ctx.Err()
}

// consume procesa la lista ready de un job con BRPOP.
func (q *RedisQueue) consume(ctx context.Context, job string) {
	for {
		if ctx.Err() != nil {
			return
		}
		res, err := q.client.BRPop(ctx, 2*time.Second, readyKey(job)).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			q.log.Error().Err(err).Str("job", job).Msg("error leyendo cola")
			time.Sleep(time.Second)
			continue
		}
		// res[0] es la clave, res[1] el valor
		var t task
		if err := json.Unmarshal([]byte(res[1]), &t); err != nil {
			q.log.Error().Err(err).Str("job", job).Msg("task corrupto, descartado")
			continue
		}
		q.run(ctx, &t)
	}
}

func (q *RedisQueue) run(ctx context.Context, t *task) {
	q.mu.Lock()
	handler := q.handlers[t.Job]
	q.mu.Unlock()
	if handler == nil {
		q.log.Error().Str("job", t.Job).Msg("sin handler para job")
		return
	}
	if err := handler(ctx, t.Payload); err != nil {
		q.retry(ctx, t, err)
		return
	}
	q.log.Debug().Str("job", t.Job).Str("task_id", t.ID).Msg("job procesado")
}

// retry re-encola con backoff exponencial (1s, 2s, 4s...) o manda a dead.
func (q *RedisQueue) retry(ctx context.Context, t *task, cause error) {
	t.Attempts++
	if t.Attempts >= q.maxAttempts {
		raw, _ := json.Marshal(t)
		if err := q.client.LPush(context.WithoutCancel(ctx), deadKey(t.Job), raw).Err(); err != nil {
			q.log.Error().Err(err).Str("job", t.Job).Msg("error moviendo task a dead")
		}
		q.log.Error().Err(cause).Str("job", t.Job).Str("task_id", t.ID).
			Int("attempts", t.Attempts).Msg("job agotó reintentos")
		return
	}
	backoff := time.Second << (t.Attempts - 1)
	raw, err := json.Marshal(t)
	if err != nil {
		q.log.Error().Err(err).Str("job", t.Job).Msg("error serializando reintento")
		return
	}
	score := float64(time.Now().Add(backoff).UnixMilli())
	if err := q.client.ZAdd(context.WithoutCancel(ctx), delayedKey(t.Job), redis.Z{Score: score, Member: raw}).Err(); err != nil {
		q.log.Error().Err(err).Str("job", t.Job).Msg("error encolando reintento")
		return
	}
	q.log.Warn().Err(cause).Str("job", t.Job).Str("task_id", t.ID).
		Int("attempts", t.Attempts).Dur("backoff", backoff).Msg("job falló, reintento programado")
}

// promote mueve tasks vencidos del sorted set a la lista ready.
func (q *RedisQueue) promote(ctx context.Context, job string) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		now := strconv.FormatInt(time.Now().UnixMilli(), 10)
		members, err := q.client.ZRangeByScore(ctx, delayedKey(job), &redis.ZRangeBy{
			Min: "-inf", Max: now, Count: 100,
		}).Result()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			q.log.Error().Err(err).Str("job", job).Msg("error promoviendo tasks")
			continue
		}
		for _, m := range members {
			// ZRem primero: si otro promotor ganó la carrera, no duplicamos.
			removed, err := q.client.ZRem(ctx, delayedKey(job), m).Result()
			if err != nil || removed == 0 {
				continue
			}
			if err := q.client.LPush(ctx, readyKey(job), m).Err(); err != nil {
				q.log.Error().Err(err).Str("job", job).Msg("error moviendo task a ready")
			}
		}
	}
}

// Close cierra el cliente.
func (q *RedisQueue) Close() error {
	return q.client.Close()
}
