package ports

import (
	"context"
	"time"
)

// Cache puerto de caché de lecturas. Contrato: cualquier error del caché debe
// degradar a una lectura fresca en el caller, nunca propagarse como fallo.
type Cache interface {
	// Get devuelve (nil, false, nil) en miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// DeleteByPattern borra todas las claves con el prefijo dado.
	DeleteByPattern(ctx context.Context, prefix string) error
}
