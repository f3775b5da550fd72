// Package cache guarda en Redis las lecturas costosas del tablero. Cada tenant tiene
// un contador de versión que forma parte de la llave; incrementarlo invalida todo lo
// cacheado para ese tenant sin borrar llaves.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/ferreteria-api/internal/application/inventory"
	"github.com/jhoicas/ferreteria-api/internal/application/reports"
)

const keyPrefix = "ferreteria"

var (
	_ reports.Cache            = (*Cache)(nil)
	_ inventory.ChangeNotifier = (*Cache)(nil)
)

// Cache envuelve un cliente Redis. Un *Cache nil o sin cliente no cachea: llama al loader siempre.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New construye la caché.
func New(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func versionKey(tenantID string) string {
	return keyPrefix + ":version:" + tenantID
}

// Version devuelve la versión vigente del tenant, inicializándola en 1.
func (c *Cache) Version(ctx context.Context, tenantID string) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, versionKey(tenantID)).Int64()
	if errors.Is(err, redis.Nil) {
		// SetNX: si otro proceso la creó primero, se respeta su valor.
		if err := c.client.SetNX(ctx, versionKey(tenantID), 1, 0).Err(); err != nil {
			return 0, err
		}
		return c.client.Get(ctx, versionKey(tenantID)).Int64()
	}
	if err != nil {
		return 0, err
	}
	return ver, nil
}

// Key arma ferreteria:<tenant>:<parts...>:v<versión>.
func (c *Cache) Key(ctx context.Context, tenantID string, parts ...string) (string, error) {
	base := keyPrefix + ":" + tenantID + ":" + strings.Join(parts, ":")
	if c == nil || c.client == nil {
		return base, nil
	}
	ver, err := c.Version(ctx, tenantID)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:v%d", base, ver), nil
}

// FetchJSON devuelve el valor cacheado o lo calcula con loader y lo guarda con el TTL.
// Si Redis falla al leer o escribir, se sirve el valor calculado igualmente.
func (c *Cache) FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error {
	if loader == nil {
		return errors.New("cache: loader requerido")
	}
	if c != nil && c.client != nil {
		payload, err := c.client.Get(ctx, key).Bytes()
		if err == nil {
			return json.Unmarshal(payload, dest)
		}
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("key", key).Msg("cache: lectura fallida, se recalcula")
		}
	}
	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if c != nil && c.client != nil {
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("cache: escritura fallida")
		}
	}
	return json.Unmarshal(raw, dest)
}

// Bump invalida la caché del tenant.
func (c *Cache) Bump(ctx context.Context, tenantID string) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Incr(ctx, versionKey(tenantID)).Err()
}

// StockChanged invalida la caché del tenant tras un commit. Un fallo solo se registra:
// la operación ya quedó confirmada y el TTL acota lo que se sirva desactualizado.
func (c *Cache) StockChanged(ctx context.Context, tenantID string) {
	if err := c.Bump(ctx, tenantID); err != nil {
		log.Warn().Err(err).Str("tenant_id", tenantID).Msg("cache: no se pudo invalidar")
	}
}
