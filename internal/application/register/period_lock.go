package register

import (
	"context"
	"fmt"
	"time"

	"github.com/jsalazar/obracontrol-api/internal/domain"
	"github.com/jsalazar/obracontrol-api/internal/domain/entity"
	"github.com/jsalazar/obracontrol-api/internal/domain/register"
	"github.com/jsalazar/obracontrol-api/internal/domain/repository"
)

// PeriodLockUseCase administra el cierre de período global. Mover el cierre
// hacia atrás está permitido: reabre los períodos posteriores a la nueva fecha.
type PeriodLockUseCase struct {
	locks repository.PeriodLockRepository
}

// NewPeriodLockUseCase construye el caso de uso.
func NewPeriodLockUseCase(locks repository.PeriodLockRepository) *PeriodLockUseCase {
	return &PeriodLockUseCase{locks: locks}
}

// Get devuelve el cierre vigente o (nil, nil) si nunca se ha fijado.
func (uc *PeriodLockUseCase) Get(ctx context.Context) (*entity.PeriodLock, error) {
	return uc.locks.Get(ctx)
}

// Set fija la fecha de cierre (normalizada a día UTC) y devuelve el vigente.
func (uc *PeriodLockUseCase) Set(ctx context.Context, lockedThrough time.Time) (*entity.PeriodLock, error) {
	if lockedThrough.IsZero() {
		return nil, fmt.Errorf("fecha de cierre requerida: %w", domain.ErrInvalidInput)
	}
	if err := uc.locks.Set(ctx, register.Day(lockedThrough)); err != nil {
		return nil, err
	}
	return uc.locks.Get(ctx)
}
