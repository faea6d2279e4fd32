package inventory

import (
	"context"

	"github.com/jhoicas/bodegas-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad para el motor de stock.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		invRepo repository.InventoryRepository,
		logRepo repository.StockLogRepository,
		orderRepo repository.OrderStateRepository,
	) error) error
}

// CatalogService es el cliente del catálogo externo de la tienda. Solo se
// invoca, nunca se consulta: empuja el stock de la bodega primaria al campo
// de stock del producto.
type CatalogService interface {
	SetManagedStock(ctx context.Context, productID int64, variationID *int64, qty decimal.Decimal, inStock bool) error
}

// Marca de contexto que suprime el push al catálogo durante una operación
// lógica. Se usa cuando la mutación se origina en un evento del propio
// catálogo, para cortar el ciclo de realimentación. Va en el contexto (no en
// un flag global) para ser correcta bajo requests concurrentes.
type catalogSyncSuppressKey struct{}

// WithCatalogSyncSuppressed devuelve un contexto que suprime el push al
// catálogo para las mutaciones que lo porten.
func WithCatalogSyncSuppressed(ctx context.Context) context.Context {
	return context.WithValue(ctx, catalogSyncSuppressKey{}, true)
}

// CatalogSyncSuppressed informa si el contexto porta la marca de supresión.
func CatalogSyncSuppressed(ctx context.Context) bool {
	v, _ := ctx.Value(catalogSyncSuppressKey{}).(bool)
	return v
}
