package memory

import (
	"context"
	"time"

	"github.com/jsalazar/obracontrol-api/internal/domain/entity"
	"github.com/jsalazar/obracontrol-api/internal/domain/register"
	"github.com/jsalazar/obracontrol-api/internal/domain/repository"
)

var _ repository.PeriodLockRepository = (*PeriodLockRepo)(nil)

// PeriodLockRepo cierre de período en memoria (fila única).
type PeriodLockRepo struct {
	txBound
}

// NewPeriodLockRepository construye el adaptador sobre el almacén.
func NewPeriodLockRepository(s *Store) *PeriodLockRepo {
	return &PeriodLockRepo{txBound{s: s}}
}

// Get devuelve una copia del cierre vigente o (nil, nil) si nunca se ha fijado.
func (r *PeriodLockRepo) Get(ctx context.Context) (*entity.PeriodLock, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if r.s.lock == nil {
		return nil, nil
	}
	lock := *r.s.lock
	return &lock, nil
}

// Set fija la fecha de cierre, normalizada a día calendario como la columna
// DATE del esquema SQL.
func (r *PeriodLockRepo) Set(ctx context.Context, lockedThrough time.Time) error {
	lock := &entity.PeriodLock{
		LockedThrough: register.Day(lockedThrough),
		UpdatedAt:     time.Now().UTC(),
	}
	r.run(func(s *Store) {
		s.lock = lock
	})
	return nil
}
