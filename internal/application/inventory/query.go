package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/invorya/almacen-api/internal/application/ports"
	"github.com/invorya/almacen-api/internal/domain"
	"github.com/invorya/almacen-api/internal/domain/entity"
	"github.com/invorya/almacen-api/internal/domain/repository"
	"github.com/invorya/almacen-api/pkg/logger"
)

// SummaryKeyPrefix prefijo de claves de caché de lecturas de inventario de una
// organización. El worker invalida por este prefijo tras cada reconstrucción.
func SummaryKeyPrefix(organizationID string) string {
	return fmt.Sprintf("inv:%s:", organizationID)
}

func itemKey(organizationID, productID, warehouseID string) string {
	return fmt.Sprintf("inv:%s:item:%s:%s", organizationID, productID, warehouseID)
}

// QueryUseCase lado de lectura del inventario: ítem actual, historial de
// movimientos, resúmenes y stock bajo. Las lecturas puntuales pasan por el
// caché con TTL; cualquier error del caché degrada a lectura fresca.
type QueryUseCase struct {
	itemRepo     repository.InventoryItemRepository
	movementRepo repository.InventoryMovementRepository
	summaryRepo  repository.StockSummaryRepository
	cache        ports.Cache
	cacheTTL     time.Duration
	log          *logger.Logger
}

// NewQueryUseCase construye el lado de lectura.
func NewQueryUseCase(
	itemRepo repository.InventoryItemRepository,
	movementRepo repository.InventoryMovementRepository,
	summaryRepo repository.StockSummaryRepository,
	cache ports.Cache,
	cacheTTL time.Duration,
	log *logger.Logger,
) *QueryUseCase {
	return &QueryUseCase{
		itemRepo:     itemRepo,
		movementRepo: movementRepo,
		summaryRepo:  summaryRepo,
		cache:        cache,
		cacheTTL:     cacheTTL,
		log:          log,
	}
}

// GetItem devuelve la foto actual del par (producto, bodega), cacheada.
// Un par sin eventos responde ErrNotFound.
func (uc *QueryUseCase) GetItem(ctx context.Context, organizationID, productID, warehouseID string) (*entity.InventoryItem, error) {
	key := itemKey(organizationID, productID, warehouseID)
	if raw, ok, err := uc.cache.Get(ctx, key); err != nil {
		uc.log.Warn().Err(err).Str("key", key).Msg("caché no disponible, lectura fresca")
	} else if ok {
		var item entity.InventoryItem
		if err := json.Unmarshal(raw, &item); err == nil {
			return &item, nil
		}
	}

	item, err := uc.itemRepo.Get(organizationID, productID, warehouseID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	if raw, err := json.Marshal(item); err == nil {
		if err := uc.cache.Set(ctx, key, raw, uc.cacheTTL); err != nil {
			uc.log.Warn().Err(err).Str("key", key).Msg("no se pudo cachear el ítem")
		}
	}
	return item, nil
}

// ListMovements historial del libro por bodega con rango de fechas y paginación.
func (uc *QueryUseCase) ListMovements(ctx context.Context, organizationID, warehouseID string, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error) {
	return uc.movementRepo.ListByWarehouse(organizationID, warehouseID, from, to, limit, offset)
}

// ListSummaries resúmenes denormalizados de una bodega.
func (uc *QueryUseCase) ListSummaries(ctx context.Context, organizationID, warehouseID string, limit, offset int) ([]*entity.StockSummary, error) {
	return uc.summaryRepo.ListByWarehouse(organizationID, warehouseID, limit, offset)
}

// ListLowStock pares en o por debajo del umbral del producto.
func (uc *QueryUseCase) ListLowStock(ctx context.Context, organizationID string, limit, offset int) ([]*entity.InventoryItem, error) {
	return uc.itemRepo.ListLowStock(organizationID, limit, offset)
}
