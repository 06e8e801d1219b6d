package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jsalazar/obracontrol-api/internal/domain/entity"
	"github.com/jsalazar/obracontrol-api/internal/domain/repository"
)

var _ repository.PeriodLockRepository = (*PeriodLockRepo)(nil)

// PeriodLockRepo cierre de período global: una sola fila, upsert sobre id fijo.
//
// Esquema esperado:
//
//	CREATE TABLE period_lock (
//	    id             SMALLINT    PRIMARY KEY CHECK (id = 1),
//	    locked_through DATE        NOT NULL,
//	    updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
type PeriodLockRepo struct {
	q Querier
}

// NewPeriodLockRepository construye el adaptador.
func NewPeriodLockRepository(q Querier) *PeriodLockRepo {
	return &PeriodLockRepo{q: q}
}

// Get devuelve el cierre vigente o (nil, nil) si nunca se ha fijado.
func (r *PeriodLockRepo) Get(ctx context.Context) (*entity.PeriodLock, error) {
	var lock entity.PeriodLock
	err := r.q.QueryRow(ctx,
		`SELECT locked_through, updated_at FROM period_lock WHERE id = 1`,
	).Scan(&lock.LockedThrough, &lock.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, storageErr("get period lock", err)
	}
	return &lock, nil
}

// Set fija la fecha de cierre. Mover el cierre hacia atrás también está
// permitido: reabre los períodos posteriores a la nueva fecha.
func (r *PeriodLockRepo) Set(ctx context.Context, lockedThrough time.Time) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO period_lock (id, locked_through, updated_at)
		VALUES (1, $1, now())
		ON CONFLICT (id) DO UPDATE SET locked_through = EXCLUDED.locked_through, updated_at = now()`,
		lockedThrough,
	)
	if err != nil {
		return storageErr("set period lock", err)
	}
	return nil
}
