package repository

import (
	"context"

	"github.com/jhoicas/bodegas-api/internal/domain/entity"
)

// OrderStateRepository define el puerto para la etiqueta de stock por pedido
// y la bodega asignada. Es estado prestado del sistema de pedidos externo;
// el motor de stock es su único dueño lógico. Get devuelve (nil, nil) si el
// pedido aún no tiene estado.
type OrderStateRepository interface {
	Get(ctx context.Context, orderID int64) (*entity.OrderStockState, error)
	Save(ctx context.Context, state *entity.OrderStockState) error
}
