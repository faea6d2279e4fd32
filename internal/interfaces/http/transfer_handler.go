package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/bodegas-api/internal/application/dto"
	"github.com/jhoicas/bodegas-api/internal/application/inventory"
)

// TransferHandler maneja las transferencias entre bodegas (protegido).
type TransferHandler struct {
	uc *inventory.TransferUseCase
}

// NewTransferHandler construye el handler.
func NewTransferHandler(uc *inventory.TransferUseCase) *TransferHandler {
	return &TransferHandler{uc: uc}
}

func transferInput(in dto.TransferRequest, employeeID *int64) inventory.TransferInput {
	return inventory.TransferInput{
		FromWarehouseID: in.FromWarehouseID,
		ToWarehouseID:   in.ToWarehouseID,
		ProductID:       in.ProductID,
		VariationID:     in.VariationID,
		Qty:             in.Qty,
		EmployeeID:      employeeID,
		Notes:           in.Notes,
	}
}

// Transfer godoc
// @Summary      Transferir stock entre bodegas
// @Description  Atómica: ambas mutaciones y el par transfer_out/transfer_in persisten o ninguna.
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferRequest  true  "Transferencia"
// @Success      201   {object}  map[string]string
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transfers [post]
func (h *TransferHandler) Transfer(c *fiber.Ctx) error {
	var in dto.TransferRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.uc.Transfer(c.Context(), transferInput(in, EmployeeIDPtr(c))); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "transferencia registrada"})
}

// TransferBulk godoc
// @Summary      Transferencias masivas
// @Description  Cada ítem se procesa aislado; los fallos se reportan por índice.
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BulkTransferRequest  true  "Transferencias"
// @Success      200   {object}  dto.BulkTransferResponse
// @Router       /api/transfers/bulk [post]
func (h *TransferHandler) TransferBulk(c *fiber.Ctx) error {
	var in dto.BulkTransferRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if len(in.Items) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "items vacío"})
	}
	employeeID := EmployeeIDPtr(c)
	inputs := make([]inventory.TransferInput, 0, len(in.Items))
	for _, item := range in.Items {
		inputs = append(inputs, transferInput(item, employeeID))
	}
	results := h.uc.TransferBulk(c.Context(), inputs)
	out := dto.BulkTransferResponse{}
	for _, r := range results {
		if r.Err != nil {
			out.Errors = append(out.Errors, dto.ItemErrorResponse{
				Index:   r.Index,
				Code:    errorCode(r.Err),
				Message: r.Err.Error(),
			})
			continue
		}
		out.Processed++
	}
	return c.JSON(out)
}
