package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jsalazar/obracontrol-api/internal/application/document"
	"github.com/jsalazar/obracontrol-api/internal/application/dto"
)

// DailyReportHandler maneja las peticiones HTTP para partes diarios.
type DailyReportHandler struct {
	uc       *document.DailyReportUseCase
	validate *Validator
}

// NewDailyReportHandler construye el handler.
func NewDailyReportHandler(uc *document.DailyReportUseCase, validate *Validator) *DailyReportHandler {
	return &DailyReportHandler{uc: uc, validate: validate}
}

// Create godoc
// @Summary      Crear parte diario
// @Description  Crea el documento sin contabilizar. Debe traer al menos una línea de trabajo o de cuadrilla.
// @Tags         daily-reports
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateDailyReportRequest  true  "Cabecera, líneas de trabajo y de cuadrilla"
// @Success      201   {object}  dto.DailyReportResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/daily-reports [post]
func (h *DailyReportHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateDailyReportRequest
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
// @Summary      Editar parte diario
// @Description  Reemplaza cabecera y ambos juegos de líneas. Solo se editan documentos sin contabilizar; uno contabilizado responde 409 (descontabilizar primero).
// @Tags         daily-reports
// @Accept       json
// @Produce      json
// @Param        id    path  int                           true  "ID del parte"
// @Param        body  body  dto.CreateDailyReportRequest  true  "Cabecera y líneas de reemplazo"
// @Success      200   {object}  dto.DailyReportResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/daily-reports/{id} [put]
func (h *DailyReportHandler) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_ID", Message: "id debe ser un entero positivo"})
	}
	var in dto.CreateDailyReportRequest
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
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "parte diario no encontrado"})
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener parte diario por ID
// @Tags         daily-reports
// @Produce      json
// @Param        id   path  int  true  "ID del parte"
// @Success      200  {object}  dto.DailyReportResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/daily-reports/{id} [get]
func (h *DailyReportHandler) GetByID(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_ID", Message: "id debe ser un entero positivo"})
	}
	out, err := h.uc.GetByID(c.Context(), int64(id))
	if err != nil {
		return writeError(c, err)
	}
	if out == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "parte diario no encontrado"})
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar partes diarios
// @Tags         daily-reports
// @Produce      json
// @Param        limit   query  int  false  "Límite"   default(20)
// @Param        offset  query  int  false  "Offset"   default(0)
// @Success      200     {object}  dto.DailyReportListResponse
// @Router       /api/daily-reports [get]
func (h *DailyReportHandler) List(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	out, err := h.uc.List(c.Context(), limit, offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
