package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/santoshvandari/AccountingSystem/internal/application/billing"
	"github.com/santoshvandari/AccountingSystem/internal/application/dto"
)

// BillHandler maneja las peticiones HTTP de facturación (protegido).
type BillHandler struct {
	uc *billing.BillUseCase
}

// NewBillHandler construye el handler.
func NewBillHandler(uc *billing.BillUseCase) *BillHandler {
	return &BillHandler{uc: uc}
}

// Create godoc
// @Summary      Crear factura
// @Description  Calcula totales en el servidor. Sin bill_number se genera INV-YYMMDDXXXX.
// @Tags         bills
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.CreateBillRequest  true  "cabecera y líneas"
// @Success      201   {object}  dto.BillResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /api/bills [post]
func (h *BillHandler) Create(c *fiber.Ctx) error {
	actor, ok := GetActor(c)
	if !ok {
		return unauthenticated(c)
	}
	var in dto.CreateBillRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	bill, err := h.uc.CreateBill(c.UserContext(), actor, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(bill)
}

// List godoc
// @Summary      Listar facturas
// @Tags         bills
// @Produce      json
// @Security     BearerAuth
// @Param        limit   query  int  false  "máx. 100"
// @Param        offset  query  int  false  "desplazamiento"
// @Success      200  {object}  dto.BillListResponse
// @Router       /api/bills [get]
func (h *BillHandler) List(c *fiber.Ctx) error {
	actor, ok := GetActor(c)
	if !ok {
		return unauthenticated(c)
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "parámetros de paginación inválidos"})
	}
	out, err := h.uc.ListBills(c.UserContext(), actor, page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Detalle de factura con líneas
// @Tags         bills
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "bill id"
// @Success      200  {object}  dto.BillResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/bills/{id} [get]
func (h *BillHandler) GetByID(c *fiber.Ctx) error {
	actor, ok := GetActor(c)
	if !ok {
		return unauthenticated(c)
	}
	bill, err := h.uc.GetBill(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(bill)
}

// Update godoc
// @Summary      Actualizar factura
// @Description  items, si se envía, reemplaza todas las líneas. Los totales se recalculan.
// @Tags         bills
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                 true  "bill id"
// @Param        body  body  dto.UpdateBillRequest  true  "campos a modificar"
// @Success      200   {object}  dto.BillResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/bills/{id} [put]
func (h *BillHandler) Update(c *fiber.Ctx) error {
	actor, ok := GetActor(c)
	if !ok {
		return unauthenticated(c)
	}
	var in dto.UpdateBillRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	bill, err := h.uc.UpdateBill(c.UserContext(), actor, c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(bill)
}

// Delete godoc
// @Summary      Eliminar factura (solo superusuario)
// @Tags         bills
// @Security     BearerAuth
// @Param        id   path  string  true  "bill id"
// @Success      204
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/bills/{id} [delete]
func (h *BillHandler) Delete(c *fiber.Ctx) error {
	actor, ok := GetActor(c)
	if !ok {
		return unauthenticated(c)
	}
	if err := h.uc.DeleteBill(c.UserContext(), actor, c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
