package repository

import (
	"context"

	"github.com/jhoicas/bodegas-api/internal/domain/entity"
)

// WarehouseRepository define el puerto de persistencia para bodegas (DIP).
// Los Get* devuelven (nil, nil) cuando la fila no existe.
type WarehouseRepository interface {
	Create(ctx context.Context, warehouse *entity.Warehouse) error
	GetByID(ctx context.Context, id int64) (*entity.Warehouse, error)
	GetBySlug(ctx context.Context, slug string) (*entity.Warehouse, error)
	GetPrimary(ctx context.Context) (*entity.Warehouse, error)
	Update(ctx context.Context, warehouse *entity.Warehouse) error
	List(ctx context.Context, status string, limit, offset int) ([]*entity.Warehouse, error)
}
