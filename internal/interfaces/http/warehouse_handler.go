package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/bodegas-api/internal/application/dto"
	"github.com/jhoicas/bodegas-api/internal/application/usecase"
)

// WarehouseHandler maneja las peticiones HTTP para bodegas (protegido).
type WarehouseHandler struct {
	uc *usecase.WarehouseUseCase
}

// NewWarehouseHandler construye el handler.
func NewWarehouseHandler(uc *usecase.WarehouseUseCase) *WarehouseHandler {
	return &WarehouseHandler{uc: uc}
}

// Save godoc
// @Summary      Crear o actualizar bodega
// @Tags         warehouses
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SaveWarehouseRequest  true  "Datos de la bodega (id en cero crea)"
// @Success      200   {object}  dto.WarehouseResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/warehouses [post]
func (h *WarehouseHandler) Save(c *fiber.Ctx) error {
	var in dto.SaveWarehouseRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.CreateOrUpdate(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	status := fiber.StatusOK
	if in.ID == 0 {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(out)
}

// GetByID godoc
// @Summary      Obtener bodega por ID
// @Tags         warehouses
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID de la bodega"
// @Success      200  {object}  dto.WarehouseResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/warehouses/{id} [get]
func (h *WarehouseHandler) GetByID(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id inválido"})
	}
	out, err := h.uc.GetByID(c.Context(), int64(id))
	if err != nil {
		return respondError(c, err)
	}
	if out == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "bodega no encontrada"})
	}
	return c.JSON(out)
}

// GetPrimary godoc
// @Summary      Obtener la bodega primaria
// @Tags         warehouses
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.WarehouseResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/warehouses/primary [get]
func (h *WarehouseHandler) GetPrimary(c *fiber.Ctx) error {
	out, err := h.uc.GetPrimary(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar bodegas
// @Tags         warehouses
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "active | inactive"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200     {object}  dto.WarehouseListResponse
// @Router       /api/warehouses [get]
func (h *WarehouseHandler) List(c *fiber.Ctx) error {
	page := dto.PageRequest{
		Limit:  c.QueryInt("limit", 20),
		Offset: c.QueryInt("offset", 0),
	}
	out, err := h.uc.List(c.Context(), c.Query("status"), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Disable godoc
// @Summary      Desactivar bodega
// @Description  Idempotente; falla con 403 sobre la bodega primaria.
// @Tags         warehouses
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID de la bodega"
// @Success      200  {object}  dto.WarehouseResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/warehouses/{id}/disable [post]
func (h *WarehouseHandler) Disable(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id inválido"})
	}
	out, err := h.uc.Disable(c.Context(), int64(id))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
