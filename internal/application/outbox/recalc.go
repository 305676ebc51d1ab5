package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/invorya/almacen-api/internal/application/ports"
	"github.com/invorya/almacen-api/internal/domain/entity"
	"github.com/invorya/almacen-api/internal/domain/repository"
	"github.com/invorya/almacen-api/pkg/logger"
)

// Recalculator reconstruye StockSummary desde cero re-escaneando el libro de
// movimientos del par (suma de entradas = total-in, de salidas = total-out,
// actual = in − out). Reconstruir en vez de incrementar hace el job
// naturalmente idempotente: un evento perdido o duplicado se autocorrige en
// la siguiente pasada en lugar de derivar para siempre.
type Recalculator struct {
	movementRepo repository.InventoryMovementRepository
	summaryRepo  repository.StockSummaryRepository
	productRepo  repository.ProductRepository
	cache        ports.Cache
	publisher    ports.Publisher
	log          *logger.Logger
	keyPrefix    func(organizationID string) string
}

// NewRecalculator construye el worker de resúmenes.
func NewRecalculator(
	movementRepo repository.InventoryMovementRepository,
	summaryRepo repository.StockSummaryRepository,
	productRepo repository.ProductRepository,
	cache ports.Cache,
	publisher ports.Publisher,
	log *logger.Logger,
	keyPrefix func(organizationID string) string,
) *Recalculator {
	return &Recalculator{
		movementRepo: movementRepo,
		summaryRepo:  summaryRepo,
		productRepo:  productRepo,
		cache:        cache,
		publisher:    publisher,
		log:          log,
		keyPrefix:    keyPrefix,
	}
}

// Handle procesa un job recalculate-summary: reconstruye el resumen, detecta
// el cruce descendente del umbral de stock bajo y, al final, invalida las
// claves de caché de la organización. Los errores de caché y de publicación
// se registran y se tragan: el resumen ya quedó correcto y una clave obsoleta
// expira por TTL.
func (rc *Recalculator) Handle(ctx context.Context, payload []byte) error {
	var p MovementPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("unmarshal recalculate payload: %w", err)
	}

	totals, err := rc.movementRepo.TotalsForPair(p.OrganizationID, p.ProductID, p.WarehouseID)
	if err != nil {
		return err
	}
	previous, err := rc.summaryRepo.Get(p.OrganizationID, p.ProductID, p.WarehouseID)
	if err != nil {
		return err
	}

	current := totals.TotalIn.Sub(totals.TotalOut)
	summary := &entity.StockSummary{
		OrganizationID: p.OrganizationID,
		WarehouseID:    p.WarehouseID,
		ProductID:      p.ProductID,
		TotalIn:        totals.TotalIn,
		TotalOut:       totals.TotalOut,
		CurrentStock:   current,
		LastMovementAt: totals.LastMovementAt,
		UpdatedAt:      time.Now(),
	}
	if err := rc.summaryRepo.Upsert(summary); err != nil {
		return err
	}

	rc.notifyLowStock(ctx, p, previous, current)

	if err := rc.cache.DeleteByPattern(ctx, rc.keyPrefix(p.OrganizationID)); err != nil {
		rc.log.Warn().Err(err).Str("organization_id", p.OrganizationID).Msg("invalidación de caché falló")
	}
	return nil
}

// notifyLowStock emite inventory.low_stock solo en el cruce descendente del
// umbral: el colaborador de notificaciones decide qué hacer con él.
func (rc *Recalculator) notifyLowStock(ctx context.Context, p MovementPayload, previous *entity.StockSummary, current decimal.Decimal) {
	product, err := rc.productRepo.GetByID(p.OrganizationID, p.ProductID)
	if err != nil || product == nil {
		return
	}
	threshold := product.LowStockThreshold
	if !threshold.GreaterThan(decimal.Zero) || current.GreaterThan(threshold) {
		return
	}
	if previous != nil && !previous.CurrentStock.GreaterThan(threshold) {
		return // ya estaba por debajo, no repetir la alerta
	}
	payload, err := json.Marshal(LowStockPayload{
		OrganizationID: p.OrganizationID,
		ProductID:      p.ProductID,
		WarehouseID:    p.WarehouseID,
		SKU:            product.SKU,
		CurrentStock:   current.String(),
		Threshold:      threshold.String(),
	})
	if err != nil {
		return
	}
	if err := rc.publisher.Publish(ctx, entity.TopicLowStock, p.OrganizationID, payload); err != nil {
		rc.log.Warn().Err(err).Str("product_id", p.ProductID).Msg("publicación de stock bajo falló")
	}
}
