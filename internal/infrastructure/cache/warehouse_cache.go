// Package cache implementa el cache Redis de la bodega primaria, que se
// resuelve en cada evento de pedido sin bodega asignada.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/bodegas-api/internal/application/usecase"
	"github.com/jhoicas/bodegas-api/internal/domain/entity"
	"github.com/jhoicas/bodegas-api/pkg/config"
	"github.com/redis/go-redis/v9"
)

var _ usecase.PrimaryCache = (*WarehouseCache)(nil)

const primaryKey = "bodegas:warehouse:primary"

// NewRedis conecta el cliente Redis. Devuelve nil si no hay Addr configurada.
func NewRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

// WarehouseCache cache de la bodega primaria con TTL.
type WarehouseCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewWarehouseCache construye el cache sobre un cliente ya conectado.
func NewWarehouseCache(rdb *redis.Client, ttl time.Duration) *WarehouseCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &WarehouseCache{rdb: rdb, ttl: ttl}
}

// GetPrimary devuelve la bodega cacheada o (nil, nil) en miss.
func (c *WarehouseCache) GetPrimary(ctx context.Context) (*entity.Warehouse, error) {
	raw, err := c.rdb.Get(ctx, primaryKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get primary cache: %w", err)
	}
	var w entity.Warehouse
	if err := json.Unmarshal(raw, &w); err != nil {
		// Entrada corrupta: descartarla y reportar miss.
		_ = c.rdb.Del(ctx, primaryKey).Err()
		return nil, nil
	}
	return &w, nil
}

// SetPrimary cachea la bodega primaria.
func (c *WarehouseCache) SetPrimary(ctx context.Context, w *entity.Warehouse) error {
	raw, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("marshal primary cache: %w", err)
	}
	if err := c.rdb.Set(ctx, primaryKey, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("set primary cache: %w", err)
	}
	return nil
}

// Invalidate borra la entrada cacheada.
func (c *WarehouseCache) Invalidate(ctx context.Context) error {
	if err := c.rdb.Del(ctx, primaryKey).Err(); err != nil {
		return fmt.Errorf("invalidate primary cache: %w", err)
	}
	return nil
}
