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

var _ repository.DailyReportRepository = (*DailyReportRepo)(nil)

// DailyReportRepo persistencia en memoria de partes diarios.
type DailyReportRepo struct {
	txBound
}

// NewDailyReportRepository construye el adaptador sobre el almacén.
func NewDailyReportRepository(s *Store) *DailyReportRepo {
	return &DailyReportRepo{txBound{s: s}}
}

// Create asigna id y persiste una copia. El número debe ser único.
func (r *DailyReportRepo) Create(ctx context.Context, report *entity.DailyReport) error {
	r.s.mu.Lock()
	for _, existing := range r.s.dailyReports {
		if existing.Number == report.Number {
			r.s.mu.Unlock()
			return fmt.Errorf("parte diario número %q: %w", report.Number, domain.ErrDuplicate)
		}
	}
	if report.ID == 0 {
		r.s.nextDailyReportID++
		report.ID = r.s.nextDailyReportID
	} else if report.ID > r.s.nextDailyReportID {
		r.s.nextDailyReportID = report.ID
	}
	r.s.mu.Unlock()

	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now().UTC()
	}
	stored := cloneDailyReport(report)
	r.run(func(s *Store) {
		s.dailyReports[stored.ID] = stored
	})
	return nil
}

// Update reemplaza el documento completo conservando created_at y el estado
// de contabilización. Verificación y escritura ocurren bajo un solo candado,
// como el UPDATE condicionado por is_posted del adaptador de PostgreSQL.
func (r *DailyReportRepo) Update(ctx context.Context, report *entity.DailyReport) error {
	updated := cloneDailyReport(report)
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.dailyReports[report.ID]
	if !ok {
		return fmt.Errorf("parte diario %d: %w", report.ID, domain.ErrNotFound)
	}
	if stored.IsPosted {
		return fmt.Errorf("parte diario %d contabilizado, descontabilizar primero: %w", report.ID, domain.ErrConflict)
	}
	for id, existing := range r.s.dailyReports {
		if id != report.ID && existing.Number == report.Number {
			return fmt.Errorf("parte diario número %q: %w", report.Number, domain.ErrDuplicate)
		}
	}
	updated.CreatedAt = stored.CreatedAt
	updated.IsPosted = stored.IsPosted
	updated.PostedAt = cloneTime(stored.PostedAt)
	r.s.dailyReports[report.ID] = updated
	return nil
}

// GetByID devuelve una copia del parte, o (nil, nil) si no existe.
func (r *DailyReportRepo) GetByID(ctx context.Context, id int64) (*entity.DailyReport, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	report, ok := r.s.dailyReports[id]
	if !ok {
		return nil, nil
	}
	return cloneDailyReport(report), nil
}

// List devuelve copias de las cabeceras (sin líneas), más recientes primero,
// igual que el SELECT de listado del adaptador de PostgreSQL.
func (r *DailyReportRepo) List(ctx context.Context, limit, offset int) ([]*entity.DailyReport, error) {
	r.s.mu.RLock()
	all := make([]*entity.DailyReport, 0, len(r.s.dailyReports))
	for _, report := range r.s.dailyReports {
		all = append(all, report)
	}
	r.s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].Date.Equal(all[j].Date) {
			return all[i].Date.After(all[j].Date)
		}
		return all[i].ID > all[j].ID
	})
	return clonePage(all, limit, offset, func(report *entity.DailyReport) *entity.DailyReport {
		out := cloneDailyReport(report)
		out.WorkLines = nil
		out.CrewLines = nil
		return out
	}), nil
}

// SetPosted actualiza el estado de contabilización.
func (r *DailyReportRepo) SetPosted(ctx context.Context, id int64, posted bool, postedAt *time.Time) error {
	r.s.mu.RLock()
	_, ok := r.s.dailyReports[id]
	r.s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("parte diario %d: %w", id, domain.ErrNotFound)
	}
	at := cloneTime(postedAt)
	r.run(func(s *Store) {
		if report, ok := s.dailyReports[id]; ok {
			report.IsPosted = posted
			report.PostedAt = at
		}
	})
	return nil
}

func cloneDailyReport(report *entity.DailyReport) *entity.DailyReport {
	out := *report
	out.PostedAt = cloneTime(report.PostedAt)
	out.WorkLines = make([]entity.DailyReportWorkLine, len(report.WorkLines))
	for i, l := range report.WorkLines {
		l.EstimateID = cloneInt64(l.EstimateID)
		out.WorkLines[i] = l
	}
	out.CrewLines = make([]entity.DailyReportCrewLine, len(report.CrewLines))
	for i, l := range report.CrewLines {
		l.EstimateID = cloneInt64(l.EstimateID)
		out.CrewLines[i] = l
	}
	return &out
}
