package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jsalazar/obracontrol-api/internal/application/document"
	"github.com/jsalazar/obracontrol-api/internal/application/dto"
)

// TimesheetHandler maneja las peticiones HTTP para planillas de horas.
type TimesheetHandler struct {
	uc       *document.TimesheetUseCase
	validate *Validator
}

// NewTimesheetHandler construye el handler.
func NewTimesheetHandler(uc *document.TimesheetUseCase, validate *Validator) *TimesheetHandler {
	return &TimesheetHandler{uc: uc, validate: validate}
}

// Create godoc
// @Summary      Crear planilla de horas
// @Description  Crea el documento sin contabilizar. Cada línea lleva su propia fecha de trabajo.
// @Tags         timesheets
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateTimesheetRequest  true  "Cabecera y líneas de la planilla"
// @Success      201   {object}  dto.TimesheetResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/timesheets [post]
func (h *TimesheetHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateTimesheetRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if msg, ok := h.validate.Check(in); !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: msg})
	}
	out, err := h.uc.Create(c.Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update godoc
// @Summary      Editar planilla de horas
// @Description  Reemplaza cabecera y líneas. Solo se editan documentos sin contabilizar; uno contabilizado responde 409 (descontabilizar primero).
// @Tags         timesheets
// @Accept       json
// @Produce      json
// @Param        id    path  int                         true  "ID de la planilla"
// @Param        body  body  dto.CreateTimesheetRequest  true  "Cabecera y líneas de reemplazo"
// @Success      200   {object}  dto.TimesheetResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/timesheets/{id} [put]
func (h *TimesheetHandler) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_ID", Message: "id debe ser un entero positivo"})
	}
	var in dto.CreateTimesheetRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if msg, ok := h.validate.Check(in); !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: msg})
	}
	out, err := h.uc.Update(c.Context(), int64(id), in)
	if err != nil {
		return writeError(c, err)
	}
	if out == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "planilla no encontrada"})
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener planilla por ID
// @Tags         timesheets
// @Produce      json
// @Param        id   path  int  true  "ID de la planilla"
// @Success      200  {object}  dto.TimesheetResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/timesheets/{id} [get]
func (h *TimesheetHandler) GetByID(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_ID", Message: "id debe ser un entero positivo"})
	}
	out, err := h.uc.GetByID(c.Context(), int64(id))
	if err != nil {
		return writeError(c, err)
	}
	if out == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "planilla no encontrada"})
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar planillas de horas
// @Tags         timesheets
// @Produce      json
// @Param        limit   query  int  false  "Límite"   default(20)
// @Param        offset  query  int  false  "Offset"   default(0)
// @Success      200     {object}  dto.TimesheetListResponse
// @Router       /api/timesheets [get]
func (h *TimesheetHandler) List(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	out, err := h.uc.List(c.Context(), limit, offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
