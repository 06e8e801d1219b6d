package repository

import (
	"context"
	"time"

	"github.com/jsalazar/obracontrol-api/internal/domain/entity"
)

// PeriodLockRepository puerto del cierre de período global (fila única).
type PeriodLockRepository interface {
	// Get devuelve el cierre vigente o (nil, nil) si nunca se ha fijado.
	Get(ctx context.Context) (*entity.PeriodLock, error)
	Set(ctx context.Context, lockedThrough time.Time) error
}
