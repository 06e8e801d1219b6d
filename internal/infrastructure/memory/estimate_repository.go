package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jsalazar/obracontrol-api/internal/domain"
	"github.com/jsalazar/obracontrol-api/internal/domain/entity"
	"github.com/jsalazar/obracontrol-api/internal/domain/repository"
)

var _ repository.EstimateRepository = (*EstimateRepo)(nil)

// EstimateRepo persistencia en memoria de presupuestos.
type EstimateRepo struct {
	txBound
}

// NewEstimateRepository construye el adaptador sobre el almacén.
func NewEstimateRepository(s *Store) *EstimateRepo {
	return &EstimateRepo{txBound{s: s}}
}

// Create asigna id y persiste una copia. El número debe ser único, como la
// restricción UNIQUE del esquema SQL. La asignación de id no se revierte si
// el tx se descarta (mismo comportamiento que una secuencia de PostgreSQL).
func (r *EstimateRepo) Create(ctx context.Context, est *entity.Estimate) error {
	r.s.mu.Lock()
	for _, existing := range r.s.estimates {
		if existing.Number == est.Number {
			r.s.mu.Unlock()
			return fmt.Errorf("presupuesto número %q: %w", est.Number, domain.ErrDuplicate)
		}
	}
	if est.ID == 0 {
		r.s.nextEstimateID++
		est.ID = r.s.nextEstimateID
	} else if est.ID > r.s.nextEstimateID {
		r.s.nextEstimateID = est.ID
	}
	r.s.mu.Unlock()

	if est.CreatedAt.IsZero() {
		est.CreatedAt = time.Now().UTC()
	}
	stored := cloneEstimate(est)
	r.run(func(s *Store) {
		s.estimates[stored.ID] = stored
	})
	return nil
}

// Update reemplaza el documento completo conservando created_at y el estado
// de contabilización. Verificación y escritura ocurren bajo un solo candado,
// como el UPDATE condicionado por is_posted del adaptador de PostgreSQL.
func (r *EstimateRepo) Update(ctx context.Context, est *entity.Estimate) error {
	updated := cloneEstimate(est)
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.estimates[est.ID]
	if !ok {
		return fmt.Errorf("presupuesto %d: %w", est.ID, domain.ErrNotFound)
	}
	if stored.IsPosted {
		return fmt.Errorf("presupuesto %d contabilizado, descontabilizar primero: %w", est.ID, domain.ErrConflict)
	}
	for id, existing := range r.s.estimates {
		if id != est.ID && existing.Number == est.Number {
			return fmt.Errorf("presupuesto número %q: %w", est.Number, domain.ErrDuplicate)
		}
	}
	updated.CreatedAt = stored.CreatedAt
	updated.IsPosted = stored.IsPosted
	updated.PostedAt = cloneTime(stored.PostedAt)
	r.s.estimates[est.ID] = updated
	return nil
}

// GetByID devuelve una copia del presupuesto, o (nil, nil) si no existe.
func (r *EstimateRepo) GetByID(ctx context.Context, id int64) (*entity.Estimate, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	est, ok := r.s.estimates[id]
	if !ok {
		return nil, nil
	}
	return cloneEstimate(est), nil
}

// List devuelve copias de las cabeceras (sin líneas), más recientes primero,
// igual que el SELECT de listado del adaptador de PostgreSQL.
func (r *EstimateRepo) List(ctx context.Context, limit, offset int) ([]*entity.Estimate, error) {
	r.s.mu.RLock()
	all := make([]*entity.Estimate, 0, len(r.s.estimates))
	for _, est := range r.s.estimates {
		all = append(all, est)
	}
	r.s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].Date.Equal(all[j].Date) {
			return all[i].Date.After(all[j].Date)
		}
		return all[i].ID > all[j].ID
	})
	return clonePage(all, limit, offset, func(est *entity.Estimate) *entity.Estimate {
		out := cloneEstimate(est)
		out.Lines = nil
		return out
	}), nil
}

// SetPosted actualiza el estado de contabilización.
func (r *EstimateRepo) SetPosted(ctx context.Context, id int64, posted bool, postedAt *time.Time) error {
	r.s.mu.RLock()
	_, ok := r.s.estimates[id]
	r.s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("presupuesto %d: %w", id, domain.ErrNotFound)
	}
	at := cloneTime(postedAt)
	r.run(func(s *Store) {
		if est, ok := s.estimates[id]; ok {
			est.IsPosted = posted
			est.PostedAt = at
		}
	})
	return nil
}

func cloneEstimate(est *entity.Estimate) *entity.Estimate {
	out := *est
	out.PostedAt = cloneTime(est.PostedAt)
	out.Lines = append([]entity.EstimateLine(nil), est.Lines...)
	return &out
}

// clonePage aplica offset/limit y copia cada elemento.
func clonePage[T any](all []*T, limit, offset int, clone func(*T) *T) []*T {
	if offset >= len(all) {
		return nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	out := make([]*T, len(all))
	for i, v := range all {
		out[i] = clone(v)
	}
	return out
}
