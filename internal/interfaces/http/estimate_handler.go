package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jsalazar/obracontrol-api/internal/application/document"
	"github.com/jsalazar/obracontrol-api/internal/application/dto"
)

// EstimateHandler maneja las peticiones HTTP para presupuestos.
type EstimateHandler struct {
	uc       *document.EstimateUseCase
	validate *Validator
}

// NewEstimateHandler construye el handler.
func NewEstimateHandler(uc *document.EstimateUseCase, validate *Validator) *EstimateHandler {
	return &EstimateHandler{uc: uc, validate: validate}
}

// Create godoc
// @Summary      Crear presupuesto
// @Description  Crea el documento sin contabilizar. Las líneas se numeran 1..n en el orden recibido.
// @Tags         estimates
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateEstimateRequest  true  "Cabecera y líneas del presupuesto"
// @Success      201   {object}  dto.EstimateResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/estimates [post]
func (h *EstimateHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateEstimateRequest
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
// @Summary      Editar presupuesto
// @Description  Reemplaza cabecera y líneas. Solo se editan documentos sin contabilizar; uno contabilizado responde 409 (descontabilizar primero).
// @Tags         estimates
// @Accept       json
// @Produce      json
// @Param        id    path  int                        true  "ID del presupuesto"
// @Param        body  body  dto.CreateEstimateRequest  true  "Cabecera y líneas de reemplazo"
// @Success      200   {object}  dto.EstimateResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/estimates/{id} [put]
func (h *EstimateHandler) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_ID", Message: "id debe ser un entero positivo"})
	}
	var in dto.CreateEstimateRequest
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
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "presupuesto no encontrado"})
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener presupuesto por ID
// @Tags         estimates
// @Produce      json
// @Param        id   path  int  true  "ID del presupuesto"
// @Success      200  {object}  dto.EstimateResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/estimates/{id} [get]
func (h *EstimateHandler) GetByID(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_ID", Message: "id debe ser un entero positivo"})
	}
	out, err := h.uc.GetByID(c.Context(), int64(id))
	if err != nil {
		return writeError(c, err)
	}
	if out == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "presupuesto no encontrado"})
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar presupuestos
// @Tags         estimates
// @Produce      json
// @Param        limit   query  int  false  "Límite"   default(20)
// @Param        offset  query  int  false  "Offset"   default(0)
// @Success      200     {object}  dto.EstimateListResponse
// @Router       /api/estimates [get]
func (h *EstimateHandler) List(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	out, err := h.uc.List(c.Context(), limit, offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// pageParams lee y acota limit/offset de la query.
func pageParams(c *fiber.Ctx) (limit, offset int) {
	limit = c.QueryInt("limit", 20)
	offset = c.QueryInt("offset", 0)
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
