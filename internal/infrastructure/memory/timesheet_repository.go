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

var _ repository.TimesheetRepository = (*TimesheetRepo)(nil)

// TimesheetRepo persistencia en memoria de planillas de horas.
type TimesheetRepo struct {
	txBound
}

// NewTimesheetRepository construye el adaptador sobre el almacén.
func NewTimesheetRepository(s *Store) *TimesheetRepo {
	return &TimesheetRepo{txBound{s: s}}
}

// Create asigna id y persiste una copia. El número debe ser único.
func (r *TimesheetRepo) Create(ctx context.Context, sheet *entity.Timesheet) error {
	r.s.mu.Lock()
	for _, existing := range r.s.timesheets {
		if existing.Number == sheet.Number {
			r.s.mu.Unlock()
			return fmt.Errorf("planilla número %q: %w", sheet.Number, domain.ErrDuplicate)
		}
	}
	if sheet.ID == 0 {
		r.s.nextTimesheetID++
		sheet.ID = r.s.nextTimesheetID
	} else if sheet.ID > r.s.nextTimesheetID {
		r.s.nextTimesheetID = sheet.ID
	}
	r.s.mu.Unlock()

	if sheet.CreatedAt.IsZero() {
		sheet.CreatedAt = time.Now().UTC()
	}
	stored := cloneTimesheet(sheet)
	r.run(func(s *Store) {
		s.timesheets[stored.ID] = stored
	})
	return nil
}

// Update reemplaza el documento completo conservando created_at y el estado
// de contabilización. Verificación y escritura ocurren bajo un solo candado,
// como el UPDATE condicionado por is_posted del adaptador de PostgreSQL.
func (r *TimesheetRepo) Update(ctx context.Context, sheet *entity.Timesheet) error {
	updated := cloneTimesheet(sheet)
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.timesheets[sheet.ID]
	if !ok {
		return fmt.Errorf("planilla %d: %w", sheet.ID, domain.ErrNotFound)
	}
	if stored.IsPosted {
		return fmt.Errorf("planilla %d contabilizada, descontabilizar primero: %w", sheet.ID, domain.ErrConflict)
	}
	for id, existing := range r.s.timesheets {
		if id != sheet.ID && existing.Number == sheet.Number {
			return fmt.Errorf("planilla número %q: %w", sheet.Number, domain.ErrDuplicate)
		}
	}
	updated.CreatedAt = stored.CreatedAt
	updated.IsPosted = stored.IsPosted
	updated.PostedAt = cloneTime(stored.PostedAt)
	r.s.timesheets[sheet.ID] = updated
	return nil
}

// GetByID devuelve una copia de la planilla, o (nil, nil) si no existe.
func (r *TimesheetRepo) GetByID(ctx context.Context, id int64) (*entity.Timesheet, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sheet, ok := r.s.timesheets[id]
	if !ok {
		return nil, nil
	}
	return cloneTimesheet(sheet), nil
}

// List devuelve copias de las cabeceras (sin líneas), más recientes primero,
// igual que el SELECT de listado del adaptador de PostgreSQL.
func (r *TimesheetRepo) List(ctx context.Context, limit, offset int) ([]*entity.Timesheet, error) {
	r.s.mu.RLock()
	all := make([]*entity.Timesheet, 0, len(r.s.timesheets))
	for _, sheet := range r.s.timesheets {
		all = append(all, sheet)
	}
	r.s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].Date.Equal(all[j].Date) {
			return all[i].Date.After(all[j].Date)
		}
		return all[i].ID > all[j].ID
	})
	return clonePage(all, limit, offset, func(sheet *entity.Timesheet) *entity.Timesheet {
		out := cloneTimesheet(sheet)
		out.Lines = nil
		return out
	}), nil
}

// SetPosted actualiza el estado de contabilización.
func (r *TimesheetRepo) SetPosted(ctx context.Context, id int64, posted bool, postedAt *time.Time) error {
	r.s.mu.RLock()
	_, ok := r.s.timesheets[id]
	r.s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("planilla %d: %w", id, domain.ErrNotFound)
	}
	at := cloneTime(postedAt)
	r.run(func(s *Store) {
		if sheet, ok := s.timesheets[id]; ok {
			sheet.IsPosted = posted
			sheet.PostedAt = at
		}
	})
	return nil
}

func cloneTimesheet(sheet *entity.Timesheet) *entity.Timesheet {
	out := *sheet
	out.PostedAt = cloneTime(sheet.PostedAt)
	out.Lines = make([]entity.TimesheetLine, len(sheet.Lines))
	for i, l := range sheet.Lines {
		l.EstimateID = cloneInt64(l.EstimateID)
		out.Lines[i] = l
	}
	return &out
}
