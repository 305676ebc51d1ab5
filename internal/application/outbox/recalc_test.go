package outbox_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invorya/almacen-api/internal/application/inventory"
	"github.com/invorya/almacen-api/internal/application/outbox"
	"github.com/invorya/almacen-api/internal/domain/entity"
	"github.com/invorya/almacen-api/internal/infrastructure/memory"
	"github.com/invorya/almacen-api/pkg/logger"
)

const (
	testOrgID   = "org-0001"
	testWhID    = "wh-0001"
	testActorID = "user-0001"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Env: "production", Level: "error"})
}

// ──────────────────────────────────────────────────────────────────────────────
// Dobles de los puertos de infraestructura
// ──────────────────────────────────────────────────────────────────────────────

type fakeCache struct {
	deletedPrefixes []string
	failDelete      error
}

func (c *fakeCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}
func (c *fakeCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return nil
}
func (c *fakeCache) Delete(ctx context.Context, key string) error { return nil }
func (c *fakeCache) DeleteByPattern(ctx context.Context, prefix string) error {
	if c.failDelete != nil {
		return c.failDelete
	}
	c.deletedPrefixes = append(c.deletedPrefixes, prefix)
	return nil
}

type published struct {
	topic   string
	key     string
	payload []byte
}

type fakePublisher struct {
	events  []published
	failure error
}

func (p *fakePublisher) Publish(ctx context.Context, topic, key string, payload []byte) error {
	if p.failure != nil {
		return p.failure
	}
	p.events = append(p.events, published{topic: topic, key: key, payload: payload})
	return nil
}

func (p *fakePublisher) byTopic(topic string) []published {
	var out []published
	for _, ev := range p.events {
		if ev.topic == topic {
			out = append(out, ev)
		}
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Armado del worker sobre el almacén en memoria
// ──────────────────────────────────────────────────────────────────────────────

type recalcEnv struct {
	store     *memory.Store
	cache     *fakeCache
	publisher *fakePublisher
	rc        *outbox.Recalculator
	product   *entity.Product
}

func newRecalcEnv(t *testing.T, threshold int64) *recalcEnv {
	t.Helper()

	store := memory.NewStore()
	now := time.Now()
	product := &entity.Product{
		ID:                uuid.New().String(),
		OrganizationID:    testOrgID,
		SKU:               "SKU-001",
		Name:              "Producto SKU-001",
		LowStockThreshold: decimal.NewFromInt(threshold),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	require.NoError(t, store.Products().Create(product))

	cache := &fakeCache{}
	publisher := &fakePublisher{}
	rc := outbox.NewRecalculator(
		store.Repos().Movements,
		store.Summaries(),
		store.Products(),
		cache,
		publisher,
		testLogger(),
		inventory.SummaryKeyPrefix,
	)
	return &recalcEnv{store: store, cache: cache, publisher: publisher, rc: rc, product: product}
}

func (e *recalcEnv) seedMovement(t *testing.T, typ entity.MovementType, qty int64) {
	t.Helper()
	require.NoError(t, e.store.Repos().Movements.Create(&entity.InventoryMovement{
		ID:             uuid.New().String(),
		OrganizationID: testOrgID,
		ProductID:      e.product.ID,
		WarehouseID:    testWhID,
		Type:           typ,
		Quantity:       decimal.NewFromInt(qty),
		RefType:        entity.RefTypeAdjustment,
		RefID:          uuid.New().String(),
		CreatedAt:      time.Now(),
		CreatedBy:      testActorID,
	}))
}

func (e *recalcEnv) payload(t *testing.T) []byte {
	t.Helper()
	b, err := json.Marshal(outbox.MovementPayload{
		OrganizationID: testOrgID,
		ProductID:      e.product.ID,
		WarehouseID:    testWhID,
	})
	require.NoError(t, err)
	return b
}

func (e *recalcEnv) summary(t *testing.T) *entity.StockSummary {
	t.Helper()
	s, err := e.store.Summaries().Get(testOrgID, e.product.ID, testWhID)
	require.NoError(t, err)
	require.NotNil(t, s)
	return s
}

// ──────────────────────────────────────────────────────────────────────────────
// Reconstrucción del resumen
// ──────────────────────────────────────────────────────────────────────────────

func TestRecalculator_ReconstruyeDesdeElLibro(t *testing.T) {
	e := newRecalcEnv(t, 5)
	e.seedMovement(t, entity.MovementTypeIN, 10)
	e.seedMovement(t, entity.MovementTypeOUT, 3)

	require.NoError(t, e.rc.Handle(context.Background(), e.payload(t)))

	s := e.summary(t)
	assert.True(t, s.TotalIn.Equal(decimal.NewFromInt(10)))
	assert.True(t, s.TotalOut.Equal(decimal.NewFromInt(3)))
	assert.True(t, s.CurrentStock.Equal(decimal.NewFromInt(7)))
	assert.NotNil(t, s.LastMovementAt)

	// Las claves de lectura de la organización se invalidan al final.
	require.Len(t, e.cache.deletedPrefixes, 1)
	assert.Equal(t, inventory.SummaryKeyPrefix(testOrgID), e.cache.deletedPrefixes[0])

	// 7 > umbral 5: sin alerta.
	assert.Empty(t, e.publisher.byTopic(entity.TopicLowStock))
}

func TestRecalculator_ProcesarDosVecesEsIdempotente(t *testing.T) {
	e := newRecalcEnv(t, 0)
	e.seedMovement(t, entity.MovementTypeIN, 10)
	e.seedMovement(t, entity.MovementTypeOUT, 4)
	ctx := context.Background()

	require.NoError(t, e.rc.Handle(ctx, e.payload(t)))
	require.NoError(t, e.rc.Handle(ctx, e.payload(t)))

	// La reconstrucción relee el libro completo: un duplicado no deriva.
	s := e.summary(t)
	assert.True(t, s.TotalIn.Equal(decimal.NewFromInt(10)))
	assert.True(t, s.TotalOut.Equal(decimal.NewFromInt(4)))
	assert.True(t, s.CurrentStock.Equal(decimal.NewFromInt(6)))
}

func TestRecalculator_PayloadCorruptoEsError(t *testing.T) {
	e := newRecalcEnv(t, 0)
	err := e.rc.Handle(context.Background(), []byte("{no es json"))
	assert.Error(t, err)
}

// ──────────────────────────────────────────────────────────────────────────────
// Alerta de stock bajo: solo en el cruce descendente
// ──────────────────────────────────────────────────────────────────────────────

func TestRecalculator_AlertaEnCruceDescendente(t *testing.T) {
	e := newRecalcEnv(t, 5)
	ctx := context.Background()

	// Primera pasada: 8 en stock, por encima del umbral.
	e.seedMovement(t, entity.MovementTypeIN, 8)
	require.NoError(t, e.rc.Handle(ctx, e.payload(t)))
	require.Empty(t, e.publisher.byTopic(entity.TopicLowStock))

	// Una salida cruza el umbral hacia abajo: 8 → 4.
	e.seedMovement(t, entity.MovementTypeOUT, 4)
	require.NoError(t, e.rc.Handle(ctx, e.payload(t)))

	alerts := e.publisher.byTopic(entity.TopicLowStock)
	require.Len(t, alerts, 1)
	assert.Equal(t, testOrgID, alerts[0].key)

	var p outbox.LowStockPayload
	require.NoError(t, json.Unmarshal(alerts[0].payload, &p))
	assert.Equal(t, e.product.ID, p.ProductID)
	assert.Equal(t, "SKU-001", p.SKU)
	assert.Equal(t, "4", p.CurrentStock)
	assert.Equal(t, "5", p.Threshold)
}

func TestRecalculator_SinAlertaSiYaEstabaDebajo(t *testing.T) {
	e := newRecalcEnv(t, 5)
	ctx := context.Background()

	// Ya debajo del umbral: 3. La primera pasada alerta.
	e.seedMovement(t, entity.MovementTypeIN, 3)
	require.NoError(t, e.rc.Handle(ctx, e.payload(t)))
	require.Len(t, e.publisher.byTopic(entity.TopicLowStock), 1)

	// Sigue bajando: 3 → 2. No se repite la alerta.
	e.seedMovement(t, entity.MovementTypeOUT, 1)
	require.NoError(t, e.rc.Handle(ctx, e.payload(t)))
	assert.Len(t, e.publisher.byTopic(entity.TopicLowStock), 1)
}

func TestRecalculator_UmbralCeroNuncaAlerta(t *testing.T) {
	e := newRecalcEnv(t, 0)
	e.seedMovement(t, entity.MovementTypeIN, 1)
	e.seedMovement(t, entity.MovementTypeOUT, 1)

	require.NoError(t, e.rc.Handle(context.Background(), e.payload(t)))
	assert.Empty(t, e.publisher.byTopic(entity.TopicLowStock))
}

// ──────────────────────────────────────────────────────────────────────────────
// Degradación de colaboradores secundarios
// ──────────────────────────────────────────────────────────────────────────────

func TestRecalculator_ErrorDeCacheNoFallaElJob(t *testing.T) {
	e := newRecalcEnv(t, 0)
	e.cache.failDelete = errors.New("redis caído")
	e.seedMovement(t, entity.MovementTypeIN, 5)

	// El resumen ya quedó correcto; la clave obsoleta expira por TTL.
	require.NoError(t, e.rc.Handle(context.Background(), e.payload(t)))
	s := e.summary(t)
	assert.True(t, s.CurrentStock.Equal(decimal.NewFromInt(5)))
}

func TestRecalculator_ErrorDePublicacionNoFallaElJob(t *testing.T) {
	e := newRecalcEnv(t, 5)
	e.publisher.failure = errors.New("broker caído")
	e.seedMovement(t, entity.MovementTypeIN, 2)

	require.NoError(t, e.rc.Handle(context.Background(), e.payload(t)))
}
