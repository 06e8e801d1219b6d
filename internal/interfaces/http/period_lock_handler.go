package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jsalazar/obracontrol-api/internal/application/dto"
	appregister "github.com/jsalazar/obracontrol-api/internal/application/register"
	"github.com/jsalazar/obracontrol-api/internal/domain/entity"
)

// PeriodLockHandler maneja el cierre de período global.
type PeriodLockHandler struct {
	uc       *appregister.PeriodLockUseCase
	validate *Validator
}

// NewPeriodLockHandler construye el handler.
func NewPeriodLockHandler(uc *appregister.PeriodLockUseCase, validate *Validator) *PeriodLockHandler {
	return &PeriodLockHandler{uc: uc, validate: validate}
}

// Get godoc
// @Summary      Cierre de período vigente
// @Description  Devuelve la fecha hasta la que los períodos están cerrados. locked_through vacío significa que nunca se ha fijado un cierre.
// @Tags         period-lock
// @Produce      json
// @Success      200  {object}  dto.PeriodLockResponse
// @Router       /api/period-lock [get]
func (h *PeriodLockHandler) Get(c *fiber.Ctx) error {
	lock, err := h.uc.Get(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toPeriodLockResponse(lock))
}

// Set godoc
// @Summary      Fijar cierre de período
// @Description  Fija la fecha de cierre global (normalizada a día). Mover la fecha hacia atrás reabre los períodos posteriores.
// @Tags         period-lock
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SetPeriodLockRequest  true  "Nueva fecha de cierre"
// @Success      200   {object}  dto.PeriodLockResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/period-lock [put]
func (h *PeriodLockHandler) Set(c *fiber.Ctx) error {
	var in dto.SetPeriodLockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if msg, ok := h.validate.Check(in); !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: msg})
	}
	lock, err := h.uc.Set(c.Context(), in.LockedThrough)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toPeriodLockResponse(lock))
}

func toPeriodLockResponse(lock *entity.PeriodLock) dto.PeriodLockResponse {
	if lock == nil {
		return dto.PeriodLockResponse{}
	}
	updatedAt := lock.UpdatedAt
	return dto.PeriodLockResponse{
		LockedThrough: lock.LockedThrough.Format("2006-01-02"),
		UpdatedAt:     &updatedAt,
	}
}
