package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/bodegas-api/internal/application/dto"
	"github.com/jhoicas/bodegas-api/internal/application/inventory"
	"github.com/jhoicas/bodegas-api/internal/domain/entity"
)

// InventoryHandler maneja las peticiones HTTP del libro de inventario
// (protegido).
type InventoryHandler struct {
	ledger *inventory.LedgerUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(ledger *inventory.LedgerUseCase) *InventoryHandler {
	return &InventoryHandler{ledger: ledger}
}

func toRowResponse(row *entity.InventoryRow) dto.InventoryRowResponse {
	return dto.InventoryRowResponse{
		ID:          row.ID,
		WarehouseID: row.WarehouseID,
		ProductID:   row.ProductID,
		VariationID: row.VariationID,
		Qty:         row.Qty,
		ReservedQty: row.ReservedQty,
		TotalQty:    row.TotalPhysicalQty(),
		Price:       row.Price,
		MinQty:      row.MinQty,
		UpdatedAt:   row.UpdatedAt,
	}
}

func variationQuery(c *fiber.Ctx) *int64 {
	v := c.QueryInt("variation_id", 0)
	if v <= 0 {
		return nil
	}
	id := int64(v)
	return &id
}

// GetRow godoc
// @Summary      Obtener fila de inventario
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  int  true   "Bodega"
// @Param        product_id    query  int  true   "Producto"
// @Param        variation_id  query  int  false  "Variación"
// @Success      200  {object}  dto.InventoryRowResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory [get]
func (h *InventoryHandler) GetRow(c *fiber.Ctx) error {
	warehouseID := int64(c.QueryInt("warehouse_id", 0))
	productID := int64(c.QueryInt("product_id", 0))
	row, err := h.ledger.GetRow(c.Context(), warehouseID, productID, variationQuery(c))
	if err != nil {
		return respondError(c, err)
	}
	if row == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "fila de inventario no encontrada"})
	}
	return c.JSON(toRowResponse(row))
}

// List godoc
// @Summary      Listar inventario de una bodega
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  int  true   "Bodega"
// @Param        limit         query  int  false  "Límite"  default(50)
// @Param        offset        query  int  false  "Offset"  default(0)
// @Success      200  {object}  dto.InventoryListResponse
// @Router       /api/inventory/list [get]
func (h *InventoryHandler) List(c *fiber.Ctx) error {
	warehouseID := int64(c.QueryInt("warehouse_id", 0))
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)
	rows, err := h.ledger.ListByWarehouse(c.Context(), warehouseID, limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	items := make([]dto.InventoryRowResponse, 0, len(rows))
	for _, row := range rows {
		items = append(items, toRowResponse(row))
	}
	return c.JSON(dto.InventoryListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	})
}

// LowStock godoc
// @Summary      Filas en o bajo su umbral de reposición
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  int  true  "Bodega"
// @Success      200  {object}  dto.InventoryListResponse
// @Router       /api/inventory/low-stock [get]
func (h *InventoryHandler) LowStock(c *fiber.Ctx) error {
	warehouseID := int64(c.QueryInt("warehouse_id", 0))
	rows, err := h.ledger.ListBelowMin(c.Context(), warehouseID)
	if err != nil {
		return respondError(c, err)
	}
	items := make([]dto.InventoryRowResponse, 0, len(rows))
	for _, row := range rows {
		items = append(items, toRowResponse(row))
	}
	return c.JSON(dto.InventoryListResponse{Items: items})
}

func upsertInput(in dto.UpsertInventoryRequest, employeeID *int64) inventory.UpsertInput {
	return inventory.UpsertInput{
		WarehouseID: in.WarehouseID,
		ProductID:   in.ProductID,
		VariationID: in.VariationID,
		Qty:         in.Qty,
		ReservedQty: in.ReservedQty,
		Price:       in.Price,
		MinQty:      in.MinQty,
		EmployeeID:  employeeID,
		Notes:       in.Notes,
	}
}

func adjustInput(in dto.AdjustInventoryRequest, employeeID *int64) inventory.AdjustInput {
	return inventory.AdjustInput{
		WarehouseID:   in.WarehouseID,
		ProductID:     in.ProductID,
		VariationID:   in.VariationID,
		QtyDelta:      in.QtyDelta,
		ReservedDelta: in.ReservedDelta,
		EmployeeID:    employeeID,
		Notes:         in.Notes,
	}
}

// Upsert godoc
// @Summary      Escribir fila de inventario (semántica parcial)
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.UpsertInventoryRequest  true  "Campos a escribir; los omitidos se conservan"
// @Success      200   {object}  dto.InventoryRowResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory [put]
func (h *InventoryHandler) Upsert(c *fiber.Ctx) error {
	var in dto.UpsertInventoryRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	row, err := h.ledger.Upsert(c.Context(), upsertInput(in, EmployeeIDPtr(c)))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toRowResponse(row))
}

// Adjust godoc
// @Summary      Ajustar inventario por delta
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustInventoryRequest  true  "Deltas sobre qty y/o reserved_qty"
// @Success      200   {object}  dto.InventoryRowResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/adjust [post]
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustInventoryRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	row, err := h.ledger.Adjust(c.Context(), adjustInput(in, EmployeeIDPtr(c)))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toRowResponse(row))
}

// BulkUpsert godoc
// @Summary      Escritura masiva de inventario
// @Description  Cada ítem se procesa aislado; los fallos se reportan por índice.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BulkUpsertInventoryRequest  true  "Ítems"
// @Success      200   {object}  dto.BulkInventoryResponse
// @Router       /api/inventory/bulk [put]
func (h *InventoryHandler) BulkUpsert(c *fiber.Ctx) error {
	var in dto.BulkUpsertInventoryRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if len(in.Items) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "items vacío"})
	}
	employeeID := EmployeeIDPtr(c)
	inputs := make([]inventory.UpsertInput, 0, len(in.Items))
	for _, item := range in.Items {
		inputs = append(inputs, upsertInput(item, employeeID))
	}
	return c.JSON(toBulkResponse(h.ledger.BulkUpsert(c.Context(), inputs)))
}

// BulkAdjust godoc
// @Summary      Ajuste masivo de inventario
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BulkAdjustInventoryRequest  true  "Ítems"
// @Success      200   {object}  dto.BulkInventoryResponse
// @Router       /api/inventory/adjust/bulk [post]
func (h *InventoryHandler) BulkAdjust(c *fiber.Ctx) error {
	var in dto.BulkAdjustInventoryRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if len(in.Items) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "items vacío"})
	}
	employeeID := EmployeeIDPtr(c)
	inputs := make([]inventory.AdjustInput, 0, len(in.Items))
	for _, item := range in.Items {
		inputs = append(inputs, adjustInput(item, employeeID))
	}
	return c.JSON(toBulkResponse(h.ledger.BulkAdjust(c.Context(), inputs)))
}

func toBulkResponse(results []inventory.ItemResult) dto.BulkInventoryResponse {
	var out dto.BulkInventoryResponse
	for _, r := range results {
		if r.Err != nil {
			out.Errors = append(out.Errors, dto.ItemErrorResponse{
				Index:   r.Index,
				Code:    errorCode(r.Err),
				Message: r.Err.Error(),
			})
			continue
		}
		out.Items = append(out.Items, toRowResponse(r.Row))
	}
	return out
}
