package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/bodegas-api/internal/application/dto"
	"github.com/jhoicas/bodegas-api/internal/application/inventory"
	"github.com/jhoicas/bodegas-api/internal/domain/entity"
)

// OrderEventsHandler recibe por HTTP los eventos de ciclo de vida de pedidos
// (alternativa síncrona al listener NATS) y las ventas de punto de venta.
type OrderEventsHandler struct {
	orders *inventory.OrderUseCase
}

// NewOrderEventsHandler construye el handler.
func NewOrderEventsHandler(orders *inventory.OrderUseCase) *OrderEventsHandler {
	return &OrderEventsHandler{orders: orders}
}

func toOrderLines(lines []dto.OrderLineDTO) []entity.OrderLine {
	out := make([]entity.OrderLine, 0, len(lines))
	for _, li := range lines {
		out = append(out, entity.OrderLine{ProductID: li.ProductID, VariationID: li.VariationID, Qty: li.Qty})
	}
	return out
}

func toEventResponse(orderID int64, lineErrs []inventory.LineError) dto.OrderEventResponse {
	out := dto.OrderEventResponse{OrderID: orderID, Applied: len(lineErrs) == 0}
	for i, le := range lineErrs {
		out.Errors = append(out.Errors, dto.ItemErrorResponse{
			Index:   i,
			Code:    errorCode(le.Err),
			Message: le.Err.Error(),
		})
	}
	return out
}

// StatusChanged godoc
// @Summary      Evento de cambio de estado de pedido
// @Description  Aplica la transición de la máquina de estados de stock. Idempotente por etiqueta de pedido.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.OrderStatusEventRequest  true  "Evento"
// @Success      200   {object}  dto.OrderEventResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/orders/events/status [post]
func (h *OrderEventsHandler) StatusChanged(c *fiber.Ctx) error {
	var in dto.OrderStatusEventRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	lineErrs, err := h.orders.HandleStatusChanged(c.Context(), inventory.OrderStatusEvent{
		OrderID:     in.OrderID,
		NewStatus:   entity.OrderStatus(in.Status),
		Lines:       toOrderLines(in.Lines),
		WarehouseID: in.WarehouseID,
		EmployeeID:  EmployeeIDPtr(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toEventResponse(in.OrderID, lineErrs))
}

// ItemChanged godoc
// @Summary      Evento de edición o borrado de línea de pedido
// @Description  Delta = newQty - oldQty; para un borrado, enviar -oldQty.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.OrderItemEventRequest  true  "Evento"
// @Success      200   {object}  dto.OrderEventResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/orders/events/item [post]
func (h *OrderEventsHandler) ItemChanged(c *fiber.Ctx) error {
	var in dto.OrderItemEventRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	err := h.orders.HandleItemQuantityChanged(c.Context(), inventory.ItemQtyEvent{
		OrderID:     in.OrderID,
		ProductID:   in.ProductID,
		VariationID: in.VariationID,
		Delta:       in.Delta,
		EmployeeID:  EmployeeIDPtr(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.OrderEventResponse{OrderID: in.OrderID, Applied: true})
}

// POSOrder godoc
// @Summary      Registrar pedido de punto de venta
// @Description  Venta directa (pos_sale) o reserva (pos_reserve) contra una bodega concreta.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.POSOrderRequest  true  "Pedido POS"
// @Success      201   {object}  dto.OrderEventResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/orders/pos [post]
func (h *OrderEventsHandler) POSOrder(c *fiber.Ctx) error {
	var in dto.POSOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	lineErrs, err := h.orders.RegisterPOSOrder(c.Context(), inventory.POSOrderInput{
		OrderID:     in.OrderID,
		WarehouseID: in.WarehouseID,
		Lines:       toOrderLines(in.Lines),
		Reserve:     in.Reserve,
		EmployeeID:  EmployeeIDPtr(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toEventResponse(in.OrderID, lineErrs))
}
