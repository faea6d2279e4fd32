// Package nats suscribe el motor de stock a los eventos de ciclo de vida de
// pedidos que publica la tienda.
package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jhoicas/bodegas-api/internal/application/inventory"
	"github.com/jhoicas/bodegas-api/internal/domain/entity"
	"github.com/jhoicas/bodegas-api/pkg/config"
	"github.com/jhoicas/bodegas-api/pkg/logger"
	"github.com/nats-io/nats.go"
	"github.com/shopspring/decimal"
)

// Connect abre la conexión NATS con reconexión indefinida. Devuelve nil si
// no hay URL configurada.
func Connect(cfg config.NATSConfig, appName string) (*nats.Conn, error) {
	if cfg.URL == "" {
		return nil, nil
	}
	conn, err := nats.Connect(cfg.URL,
		nats.Name(appName),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("conectar NATS: %w", err)
	}
	return conn, nil
}

// OrderListener consume eventos de pedidos y los entrega a la máquina de
// estados. Usa queue group para repartir entre réplicas.
type OrderListener struct {
	conn   *nats.Conn
	orders *inventory.OrderUseCase
	prefix string
	queue  string
	log    *logger.Logger
	subs   []*nats.Subscription
}

// NewOrderListener construye el listener.
func NewOrderListener(conn *nats.Conn, orders *inventory.OrderUseCase, cfg config.NATSConfig, log *logger.Logger) *OrderListener {
	return &OrderListener{
		conn:   conn,
		orders: orders,
		prefix: cfg.SubjectPrefix,
		queue:  cfg.QueueGroup,
		log:    log,
	}
}

// statusEvent payload de <prefix>.status.
type statusEvent struct {
	OrderID             int64      `json:"order_id"`
	Status              string     `json:"status"`
	WarehouseID         int64      `json:"warehouse_id,omitempty"`
	Lines               []lineItem `json:"lines"`
	SuppressCatalogSync bool       `json:"suppress_catalog_sync,omitempty"`
}

type lineItem struct {
	ProductID   int64           `json:"product_id"`
	VariationID *int64          `json:"variation_id,omitempty"`
	Qty         decimal.Decimal `json:"qty"`
}

// itemEvent payload de <prefix>.item. Delta = newQty - oldQty; un borrado
// llega como -oldQty.
type itemEvent struct {
	OrderID             int64           `json:"order_id"`
	ProductID           int64           `json:"product_id"`
	VariationID         *int64          `json:"variation_id,omitempty"`
	Delta               decimal.Decimal `json:"delta"`
	SuppressCatalogSync bool            `json:"suppress_catalog_sync,omitempty"`
}

// Start suscribe los subjects de estado y de líneas.
func (l *OrderListener) Start() error {
	statusSub, err := l.conn.QueueSubscribe(l.prefix+".status", l.queue, l.handleStatus)
	if err != nil {
		return fmt.Errorf("suscribir %s.status: %w", l.prefix, err)
	}
	l.subs = append(l.subs, statusSub)

	itemSub, err := l.conn.QueueSubscribe(l.prefix+".item", l.queue, l.handleItem)
	if err != nil {
		return fmt.Errorf("suscribir %s.item: %w", l.prefix, err)
	}
	l.subs = append(l.subs, itemSub)

	l.log.Info().Str("prefix", l.prefix).Str("queue", l.queue).Msg("listener de eventos de pedidos activo")
	return nil
}

func (l *OrderListener) handleStatus(msg *nats.Msg) {
	var ev statusEvent
	if err := json.Unmarshal(msg.Data, &ev); err != nil {
		l.log.Error().Err(err).Str("subject", msg.Subject).Msg("evento de estado ilegible")
		return
	}

	ctx := context.Background()
	if ev.SuppressCatalogSync {
		ctx = inventory.WithCatalogSyncSuppressed(ctx)
	}
	lines := make([]entity.OrderLine, 0, len(ev.Lines))
	for _, li := range ev.Lines {
		lines = append(lines, entity.OrderLine{ProductID: li.ProductID, VariationID: li.VariationID, Qty: li.Qty})
	}

	lineErrs, err := l.orders.HandleStatusChanged(ctx, inventory.OrderStatusEvent{
		OrderID:     ev.OrderID,
		NewStatus:   entity.OrderStatus(ev.Status),
		Lines:       lines,
		WarehouseID: ev.WarehouseID,
	})
	if err != nil {
		l.log.Error().Err(err).Int64("order_id", ev.OrderID).Str("status", ev.Status).Msg("evento de estado falló")
		return
	}
	for _, le := range lineErrs {
		l.log.Error().Err(le.Err).Int64("order_id", ev.OrderID).Int64("product_id", le.ProductID).Msg("línea de pedido falló")
	}
}

func (l *OrderListener) handleItem(msg *nats.Msg) {
	var ev itemEvent
	if err := json.Unmarshal(msg.Data, &ev); err != nil {
		l.log.Error().Err(err).Str("subject", msg.Subject).Msg("evento de línea ilegible")
		return
	}

	ctx := context.Background()
	if ev.SuppressCatalogSync {
		ctx = inventory.WithCatalogSyncSuppressed(ctx)
	}
	err := l.orders.HandleItemQuantityChanged(ctx, inventory.ItemQtyEvent{
		OrderID:     ev.OrderID,
		ProductID:   ev.ProductID,
		VariationID: ev.VariationID,
		Delta:       ev.Delta,
	})
	if err != nil {
		l.log.Error().Err(err).Int64("order_id", ev.OrderID).Int64("product_id", ev.ProductID).Msg("evento de línea falló")
	}
}

// Close desuscribe y drena la conexión.
func (l *OrderListener) Close() {
	for _, sub := range l.subs {
		_ = sub.Drain()
	}
}
