package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/bodegas-api/internal/application/dto"
	"github.com/jhoicas/bodegas-api/internal/application/inventory"
	"github.com/jhoicas/bodegas-api/internal/domain/repository"
)

// StockLogHandler consultas del registro de auditoría (protegido).
type StockLogHandler struct {
	uc *inventory.StockLogUseCase
}

// NewStockLogHandler construye el handler.
func NewStockLogHandler(uc *inventory.StockLogUseCase) *StockLogHandler {
	return &StockLogHandler{uc: uc}
}

func parseTimeQuery(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		// También se aceptan fechas simples.
		t, err = time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, err
		}
	}
	return &t, nil
}

// List godoc
// @Summary      Consultar el stock log
// @Tags         stock-log
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  int     false  "Bodega"
// @Param        product_id    query  int     false  "Producto"
// @Param        order_id      query  int     false  "Pedido"
// @Param        action_type   query  string  false  "Tipo de acción"
// @Param        from          query  string  false  "Desde (RFC3339 o YYYY-MM-DD)"
// @Param        to            query  string  false  "Hasta (RFC3339 o YYYY-MM-DD)"
// @Param        limit         query  int     false  "Límite"  default(100)
// @Success      200  {object}  dto.StockLogListResponse
// @Router       /api/stock-log [get]
func (h *StockLogHandler) List(c *fiber.Ctx) error {
	from, err := parseTimeQuery(c, "from")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from inválido"})
	}
	to, err := parseTimeQuery(c, "to")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to inválido"})
	}
	entries, err := h.uc.List(c.Context(), repository.StockLogFilter{
		WarehouseID: int64(c.QueryInt("warehouse_id", 0)),
		ProductID:   int64(c.QueryInt("product_id", 0)),
		OrderID:     int64(c.QueryInt("order_id", 0)),
		ActionType:  c.Query("action_type"),
		From:        from,
		To:          to,
		Limit:       c.QueryInt("limit", 100),
	})
	if err != nil {
		return respondError(c, err)
	}
	out := dto.StockLogListResponse{Items: make([]dto.StockLogEntryResponse, 0, len(entries))}
	for _, e := range entries {
		out.Items = append(out.Items, dto.StockLogEntryResponse{
			ID:             e.ID,
			WarehouseID:    e.WarehouseID,
			ProductID:      e.ProductID,
			VariationID:    e.VariationID,
			OrderID:        e.OrderID,
			EmployeeID:     e.EmployeeID,
			ActionType:     e.ActionType,
			QtyChange:      e.QtyChange,
			QtyBefore:      e.QtyBefore,
			QtyAfter:       e.QtyAfter,
			ReservedBefore: e.ReservedBefore,
			ReservedAfter:  e.ReservedAfter,
			Notes:          e.Notes,
			CreatedAt:      e.CreatedAt,
		})
	}
	return c.JSON(out)
}

// Reconcile godoc
// @Summary      Reporte de conciliación por rango de fechas
// @Description  Saldos de apertura/cierre derivados del stock actual y los deltas del log, con desglose por categoría de acción.
// @Tags         stock-log
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  int     false  "Bodega (0 = todas)"
// @Param        from          query  string  true   "Desde (RFC3339 o YYYY-MM-DD)"
// @Param        to            query  string  true   "Hasta (RFC3339 o YYYY-MM-DD)"
// @Success      200  {object}  dto.ReconciliationResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock-log/reconciliation [get]
func (h *StockLogHandler) Reconcile(c *fiber.Ctx) error {
	from, err := parseTimeQuery(c, "from")
	if err != nil || from == nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from requerido"})
	}
	to, err := parseTimeQuery(c, "to")
	if err != nil || to == nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to requerido"})
	}
	warehouseID := int64(c.QueryInt("warehouse_id", 0))

	rows, err := h.uc.Reconcile(c.Context(), warehouseID, *from, *to)
	if err != nil {
		return respondError(c, err)
	}
	out := dto.ReconciliationResponse{
		WarehouseID: warehouseID,
		From:        *from,
		To:          *to,
		Rows:        make([]dto.ReconciliationRowResponse, 0, len(rows)),
	}
	for _, r := range rows {
		out.Rows = append(out.Rows, dto.ReconciliationRowResponse{
			ProductID:       r.ProductID,
			OpeningQty:      r.OpeningQty,
			ClosingQty:      r.ClosingQty,
			TotalIn:         r.TotalIn,
			TotalOut:        r.TotalOut,
			EntriesIn:       r.EntriesIn,
			SalesOut:        r.SalesOut,
			SalesReturns:    r.SalesReturns,
			TransferIn:      r.TransferIn,
			TransferOut:     r.TransferOut,
			ExpectedClosing: r.ExpectedClosing,
			Discrepancy:     r.Discrepancy,
		})
	}
	return c.JSON(out)
}
