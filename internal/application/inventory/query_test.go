package inventory_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invorya/almacen-api/internal/application/inventory"
	"github.com/invorya/almacen-api/internal/domain"
	"github.com/invorya/almacen-api/pkg/logger"
)

// cacheDoble caché en memoria con fallos inyectables para probar la degradación.
type cacheDoble struct {
	data    map[string][]byte
	sets    int
	failGet error
	failSet error
}

func newCacheDoble() *cacheDoble {
	return &cacheDoble{data: map[string][]byte{}}
}

func (c *cacheDoble) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if c.failGet != nil {
		return nil, false, c.failGet
	}
	raw, ok := c.data[key]
	return raw, ok, nil
}

func (c *cacheDoble) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if c.failSet != nil {
		return c.failSet
	}
	c.data[key] = value
	c.sets++
	return nil
}

func (c *cacheDoble) Delete(ctx context.Context, key string) error {
	delete(c.data, key)
	return nil
}

func (c *cacheDoble) DeleteByPattern(ctx context.Context, prefix string) error {
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
		}
	}
	return nil
}

func newQueryUC(e *env, cache *cacheDoble) *inventory.QueryUseCase {
	return inventory.NewQueryUseCase(
		e.store.Repos().Items,
		e.store.Repos().Movements,
		e.store.Summaries(),
		cache,
		time.Minute,
		logger.New(logger.Config{Env: "production", Level: "error"}),
	)
}

// ──────────────────────────────────────────────────────────────────────────────
// Lectura puntual con caché
// ──────────────────────────────────────────────────────────────────────────────

func TestQuery_GetItemCacheaLaLectura(t *testing.T) {
	e := newEnv(t)
	e.seedStock(t, e.product.ID, e.whA.ID, 7, 0)
	cache := newCacheDoble()
	uc := newQueryUC(e, cache)
	ctx := context.Background()

	// Primer acceso: miss, lectura fresca y escritura en caché.
	item, err := uc.GetItem(ctx, testOrgID, e.product.ID, e.whA.ID)
	require.NoError(t, err)
	assert.True(t, item.QuantityOnHand.Equal(decimal.NewFromInt(7)))
	assert.Equal(t, 1, cache.sets)

	// Segundo acceso: sirve desde caché aunque la fila haya cambiado.
	e.seedStock(t, e.product.ID, e.whA.ID, 99, 0)
	item, err = uc.GetItem(ctx, testOrgID, e.product.ID, e.whA.ID)
	require.NoError(t, err)
	assert.True(t, item.QuantityOnHand.Equal(decimal.NewFromInt(7)))
	assert.Equal(t, 1, cache.sets)

	// Tras la invalidación por prefijo vuelve a leer fresco.
	require.NoError(t, cache.DeleteByPattern(ctx, inventory.SummaryKeyPrefix(testOrgID)))
	item, err = uc.GetItem(ctx, testOrgID, e.product.ID, e.whA.ID)
	require.NoError(t, err)
	assert.True(t, item.QuantityOnHand.Equal(decimal.NewFromInt(99)))
}

func TestQuery_GetItemDegradaSiElCacheFalla(t *testing.T) {
	e := newEnv(t)
	e.seedStock(t, e.product.ID, e.whA.ID, 7, 0)
	cache := newCacheDoble()
	cache.failGet = errors.New("redis caído")
	cache.failSet = errors.New("redis caído")
	uc := newQueryUC(e, cache)

	// Un caché roto jamás rompe la lectura.
	item, err := uc.GetItem(context.Background(), testOrgID, e.product.ID, e.whA.ID)
	require.NoError(t, err)
	assert.True(t, item.QuantityOnHand.Equal(decimal.NewFromInt(7)))
}

func TestQuery_GetItemParSinEventos(t *testing.T) {
	e := newEnv(t)
	uc := newQueryUC(e, newCacheDoble())

	_, err := uc.GetItem(context.Background(), testOrgID, e.product.ID, e.whA.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Stock bajo
// ──────────────────────────────────────────────────────────────────────────────

func TestQuery_ListLowStock(t *testing.T) {
	e := newEnv(t)
	// product tiene umbral 5 (de newEnv); este otro no alerta nunca.
	sinUmbral := e.seedProduct(t, "SKU-002", decimal.Zero)
	e.seedStock(t, e.product.ID, e.whA.ID, 3, 0)
	e.seedStock(t, sinUmbral.ID, e.whA.ID, 1, 0)
	uc := newQueryUC(e, newCacheDoble())

	low, err := uc.ListLowStock(context.Background(), testOrgID, 10, 0)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, e.product.ID, low[0].ProductID)

	// Por encima del umbral desaparece de la lista.
	e.seedStock(t, e.product.ID, e.whA.ID, 8, 0)
	low, err = uc.ListLowStock(context.Background(), testOrgID, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, low)
}
