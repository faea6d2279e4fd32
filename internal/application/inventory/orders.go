package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/bodegas-api/internal/domain"
	"github.com/jhoicas/bodegas-api/internal/domain/entity"
	"github.com/jhoicas/bodegas-api/internal/domain/repository"
	"github.com/jhoicas/bodegas-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// OrderUseCase es la máquina de estados de stock por pedido: traduce
// transiciones del ciclo de vida del pedido externo en mutaciones del libro
// de inventario, garantizando que cada unidad se reserva, consume o restaura
// exactamente una vez por par pedido-producto aunque los hooks externos se
// disparen repetidos o solapados.
type OrderUseCase struct {
	txRunner      TxRunner
	warehouseRepo repository.WarehouseRepository
	orderRepo     repository.OrderStateRepository
	catalog       CatalogService
	log           *logger.Logger
}

// NewOrderUseCase construye la máquina de estados.
func NewOrderUseCase(
	txRunner TxRunner,
	warehouseRepo repository.WarehouseRepository,
	orderRepo repository.OrderStateRepository,
	catalog CatalogService,
	log *logger.Logger,
) *OrderUseCase {
	return &OrderUseCase{
		txRunner:      txRunner,
		warehouseRepo: warehouseRepo,
		orderRepo:     orderRepo,
		catalog:       catalog,
		log:           log,
	}
}

// OrderStatusEvent evento de cambio de estado reportado por el sistema de
// pedidos. WarehouseID en 0 usa la bodega ya asignada al pedido o, en su
// defecto, la primaria.
type OrderStatusEvent struct {
	OrderID     int64
	NewStatus   entity.OrderStatus
	Lines       []entity.OrderLine
	WarehouseID int64
	EmployeeID  *int64
}

// ItemQtyEvent evento de edición de cantidad de una línea de pedido ya
// procesada. Delta es newQty - oldQty (puede ser negativo).
type ItemQtyEvent struct {
	OrderID     int64
	ProductID   int64
	VariationID *int64
	Delta       decimal.Decimal
	EmployeeID  *int64
}

// POSOrderInput venta de punto de venta: descuenta (o reserva) stock de la
// bodega indicada en el momento de crear el pedido.
type POSOrderInput struct {
	OrderID     int64
	WarehouseID int64
	Lines       []entity.OrderLine
	Reserve     bool
	EmployeeID  *int64
}

// LineError fallo aislado de una línea dentro de una transición. Las demás
// líneas continúan.
type LineError struct {
	ProductID   int64
	VariationID *int64
	Err         error
}

// lineMutation aplica el efecto de una transición sobre una fila. Todos los
// contadores se pisan en cero, nunca quedan negativos.
type lineMutation func(row *entity.InventoryRow, qty decimal.Decimal)

func floorZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

func reserveLine(row *entity.InventoryRow, q decimal.Decimal) {
	row.Qty = floorZero(row.Qty.Sub(q))
	row.ReservedQty = row.ReservedQty.Add(q)
}

// reReserveLine deshace un consumo: la reserva vuelve sin tocar qty (inversa
// exacta de consumeLine).
func reReserveLine(row *entity.InventoryRow, q decimal.Decimal) {
	row.ReservedQty = row.ReservedQty.Add(q)
}

func consumeLine(row *entity.InventoryRow, q decimal.Decimal) {
	row.ReservedQty = floorZero(row.ReservedQty.Sub(q))
}

func directConsumeLine(row *entity.InventoryRow, q decimal.Decimal) {
	row.Qty = floorZero(row.Qty.Sub(q))
}

func restoreReservedLine(row *entity.InventoryRow, q decimal.Decimal) {
	row.Qty = row.Qty.Add(q)
	row.ReservedQty = floorZero(row.ReservedQty.Sub(q))
}

func restoreConsumedLine(row *entity.InventoryRow, q decimal.Decimal) {
	row.Qty = row.Qty.Add(q)
}

// transition resuelve (tag actual, grupo destino) a la mutación por línea y
// el tipo de acción a registrar. ok=false significa que no hay nada que
// hacer (guardia de idempotencia o transición vacía).
func transition(tag entity.StockTag, group entity.StatusGroup) (lineMutation, string, bool) {
	switch group {
	case entity.GroupReserving:
		switch tag {
		case entity.TagNone, entity.TagRestored:
			return reserveLine, entity.ActionOrderReserve, true
		case entity.TagConsumed:
			return reReserveLine, entity.ActionStatusChangeToReserve, true
		}
	case entity.GroupConsuming:
		switch tag {
		case entity.TagReserved:
			return consumeLine, entity.ActionOrderComplete, true
		case entity.TagNone, entity.TagRestored:
			return directConsumeLine, entity.ActionStatusChangeToComplete, true
		}
	case entity.GroupRestoring:
		switch tag {
		case entity.TagReserved:
			return restoreReservedLine, entity.ActionOrderRestore, true
		case entity.TagConsumed:
			return restoreConsumedLine, entity.ActionOrderRestore, true
		}
	}
	return nil, "", false
}

func tagForGroup(group entity.StatusGroup) entity.StockTag {
	switch group {
	case entity.GroupReserving:
		return entity.TagReserved
	case entity.GroupConsuming:
		return entity.TagConsumed
	default:
		return entity.TagRestored
	}
}

// HandleStatusChanged procesa un cambio de estado del pedido. Lee la
// etiqueta de stock, decide la transición y la aplica línea por línea, cada
// una en su propia transacción. La etiqueta solo avanza si todas las líneas
// se aplicaron; ante fallos parciales el caller reintenta en el mismo estado.
// Nunca propaga un error de stock hacia la transición del pedido externo:
// los fallos vuelven como lista por línea.
func (uc *OrderUseCase) HandleStatusChanged(ctx context.Context, ev OrderStatusEvent) ([]LineError, error) {
	if ev.OrderID <= 0 {
		return nil, domain.ErrInvalidInput
	}
	group, ok := ev.NewStatus.Group()
	if !ok {
		// Estado fuera del vocabulario: se ignora.
		return nil, nil
	}
	target := tagForGroup(group)

	state, err := uc.orderRepo.Get(ctx, ev.OrderID)
	if err != nil {
		return nil, err
	}
	tag := entity.TagNone
	if state != nil {
		tag = state.Tag
	}
	if tag == target {
		// Guardia de idempotencia: la transición ya se aplicó.
		return nil, nil
	}

	mutate, action, ok := transition(tag, group)
	if !ok {
		return nil, nil
	}

	warehouseID, err := uc.resolveWarehouse(ctx, state, ev.WarehouseID)
	if err != nil {
		return nil, err
	}

	lineErrs := uc.applyLines(ctx, warehouseID, ev.OrderID, ev.EmployeeID, ev.Lines, mutate, action)
	if len(lineErrs) > 0 {
		return lineErrs, nil
	}

	newState := &entity.OrderStockState{OrderID: ev.OrderID, Tag: target, WarehouseID: warehouseID}
	if err := uc.saveState(ctx, newState); err != nil {
		return nil, err
	}
	return nil, nil
}

// HandleItemQuantityChanged procesa la edición de cantidad de una línea ya
// reservada o consumida. Con etiqueta reserved el delta se mueve entre qty y
// reserved; con consumed solo se descuenta de qty. Cualquier otra etiqueta
// es un no-op.
func (uc *OrderUseCase) HandleItemQuantityChanged(ctx context.Context, ev ItemQtyEvent) error {
	if ev.OrderID <= 0 || ev.ProductID <= 0 {
		return domain.ErrInvalidInput
	}
	if ev.Delta.IsZero() {
		return nil
	}
	state, err := uc.orderRepo.Get(ctx, ev.OrderID)
	if err != nil {
		return err
	}
	if state == nil || (state.Tag != entity.TagReserved && state.Tag != entity.TagConsumed) {
		return nil
	}

	var mutate lineMutation
	if state.Tag == entity.TagReserved {
		mutate = func(row *entity.InventoryRow, q decimal.Decimal) {
			row.Qty = floorZero(row.Qty.Sub(q))
			row.ReservedQty = floorZero(row.ReservedQty.Add(q))
		}
	} else {
		mutate = func(row *entity.InventoryRow, q decimal.Decimal) {
			row.Qty = floorZero(row.Qty.Sub(q))
		}
	}

	line := entity.OrderLine{ProductID: ev.ProductID, VariationID: ev.VariationID, Qty: ev.Delta}
	errs := uc.applyLines(ctx, state.WarehouseID, ev.OrderID, ev.EmployeeID, []entity.OrderLine{line}, mutate, entity.ActionOrderItemEdit)
	if len(errs) > 0 {
		return errs[0].Err
	}
	return nil
}

// HandleItemDeleted procesa el borrado de una línea: equivale a una edición
// de cantidad con delta = -oldQty.
func (uc *OrderUseCase) HandleItemDeleted(ctx context.Context, orderID, productID int64, variationID *int64, oldQty decimal.Decimal, employeeID *int64) error {
	return uc.HandleItemQuantityChanged(ctx, ItemQtyEvent{
		OrderID:     orderID,
		ProductID:   productID,
		VariationID: variationID,
		Delta:       oldQty.Neg(),
		EmployeeID:  employeeID,
	})
}

// RegisterPOSOrder registra un pedido de punto de venta contra una bodega
// concreta: venta directa (descuenta qty) o reserva según Reserve.
func (uc *OrderUseCase) RegisterPOSOrder(ctx context.Context, input POSOrderInput) ([]LineError, error) {
	if input.OrderID <= 0 || input.WarehouseID <= 0 || len(input.Lines) == 0 {
		return nil, domain.ErrInvalidInput
	}
	wh, err := uc.warehouseRepo.GetByID(ctx, input.WarehouseID)
	if err != nil {
		return nil, err
	}
	if wh == nil {
		return nil, domain.ErrNotFound
	}

	mutate, action := lineMutation(directConsumeLine), entity.ActionPOSSale
	target := entity.TagConsumed
	if input.Reserve {
		mutate, action = reserveLine, entity.ActionPOSReserve
		target = entity.TagReserved
	}

	lineErrs := uc.applyLines(ctx, input.WarehouseID, input.OrderID, input.EmployeeID, input.Lines, mutate, action)
	if len(lineErrs) > 0 {
		return lineErrs, nil
	}
	state := &entity.OrderStockState{OrderID: input.OrderID, Tag: target, WarehouseID: input.WarehouseID}
	if err := uc.saveState(ctx, state); err != nil {
		return nil, err
	}
	return nil, nil
}

// applyLines aplica la mutación a cada línea en su propia transacción, con
// bloqueo de fila y entrada de log emparejada. Las líneas cuyo efecto neto
// es cero no escriben nada.
func (uc *OrderUseCase) applyLines(
	ctx context.Context,
	warehouseID, orderID int64,
	employeeID *int64,
	lines []entity.OrderLine,
	mutate lineMutation,
	action string,
) []LineError {
	var lineErrs []LineError
	for _, line := range lines {
		if line.ProductID <= 0 || line.Qty.IsZero() {
			continue
		}
		changed, row, err := uc.applyLine(ctx, warehouseID, orderID, employeeID, line, mutate, action)
		if err != nil {
			uc.log.Error().
				Err(err).
				Int64("order_id", orderID).
				Int64("product_id", line.ProductID).
				Str("action", action).
				Msg("mutación de stock de pedido falló")
			lineErrs = append(lineErrs, LineError{ProductID: line.ProductID, VariationID: line.VariationID, Err: err})
			continue
		}
		if changed {
			uc.pushCatalog(ctx, warehouseID, row)
		}
	}
	return lineErrs
}

func (uc *OrderUseCase) applyLine(
	ctx context.Context,
	warehouseID, orderID int64,
	employeeID *int64,
	line entity.OrderLine,
	mutate lineMutation,
	action string,
) (qtyChanged bool, result *entity.InventoryRow, err error) {
	err = uc.txRunner.Run(ctx, func(
		invRepo repository.InventoryRepository,
		logRepo repository.StockLogRepository,
		_ repository.OrderStateRepository,
	) error {
		row, err := invRepo.GetForUpdate(ctx, warehouseID, line.ProductID, line.VariationID)
		if err != nil {
			return err
		}
		if row == nil {
			row = &entity.InventoryRow{
				WarehouseID: warehouseID,
				ProductID:   line.ProductID,
				VariationID: line.VariationID,
				Qty:         decimal.Zero,
				ReservedQty: decimal.Zero,
				MinQty:      decimal.Zero,
			}
		}
		qtyBefore, reservedBefore := row.Qty, row.ReservedQty

		mutate(row, line.Qty)

		qtyDelta := row.Qty.Sub(qtyBefore)
		reservedDelta := row.ReservedQty.Sub(reservedBefore)
		if qtyDelta.IsZero() && reservedDelta.IsZero() {
			return nil
		}
		row.UpdatedAt = time.Now()
		if err := invRepo.Upsert(ctx, row); err != nil {
			return err
		}

		entry := &entity.StockLogEntry{
			WarehouseID:    warehouseID,
			ProductID:      line.ProductID,
			VariationID:    line.VariationID,
			OrderID:        &orderID,
			EmployeeID:     employeeID,
			ActionType:     action,
			QtyChange:      qtyDelta,
			QtyBefore:      qtyBefore,
			QtyAfter:       row.Qty,
			ReservedBefore: reservedBefore,
			ReservedAfter:  row.ReservedQty,
		}
		if _, err := logRepo.Append(ctx, entry); err != nil {
			return err
		}
		qtyChanged = !qtyDelta.IsZero()
		result = row
		return nil
	})
	return qtyChanged, result, err
}

func (uc *OrderUseCase) saveState(ctx context.Context, state *entity.OrderStockState) error {
	return uc.txRunner.Run(ctx, func(
		_ repository.InventoryRepository,
		_ repository.StockLogRepository,
		orderRepo repository.OrderStateRepository,
	) error {
		return orderRepo.Save(ctx, state)
	})
}

// resolveWarehouse decide contra qué bodega opera el pedido: la ya asignada,
// la indicada en el evento o la primaria.
func (uc *OrderUseCase) resolveWarehouse(ctx context.Context, state *entity.OrderStockState, override int64) (int64, error) {
	if state != nil && state.WarehouseID > 0 {
		return state.WarehouseID, nil
	}
	if override > 0 {
		wh, err := uc.warehouseRepo.GetByID(ctx, override)
		if err != nil {
			return 0, err
		}
		if wh == nil {
			return 0, domain.ErrNotFound
		}
		return wh.ID, nil
	}
	primary, err := uc.warehouseRepo.GetPrimary(ctx)
	if err != nil {
		return 0, err
	}
	if primary == nil {
		return 0, domain.ErrNotFound
	}
	return primary.ID, nil
}

// pushCatalog replica qty al catálogo cuando la bodega es la primaria. Best
// effort; respeta la marca de supresión del contexto.
func (uc *OrderUseCase) pushCatalog(ctx context.Context, warehouseID int64, row *entity.InventoryRow) {
	if uc.catalog == nil || row == nil || CatalogSyncSuppressed(ctx) {
		return
	}
	wh, err := uc.warehouseRepo.GetByID(ctx, warehouseID)
	if err != nil || wh == nil || !wh.IsPrimary {
		return
	}
	if err := uc.catalog.SetManagedStock(ctx, row.ProductID, row.VariationID, row.Qty, row.Qty.IsPositive()); err != nil {
		uc.log.Warn().
			Err(err).
			Int64("product_id", row.ProductID).
			Msg("push de stock al catálogo falló")
	}
}
