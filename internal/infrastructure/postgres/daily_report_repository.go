package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jsalazar/obracontrol-api/internal/domain"
	"github.com/jsalazar/obracontrol-api/internal/domain/entity"
	"github.com/jsalazar/obracontrol-api/internal/domain/repository"
)

var _ repository.DailyReportRepository = (*DailyReportRepo)(nil)

// DailyReportRepo persistencia de partes diarios (usable con pool o tx).
//
// Esquema esperado:
//
//	CREATE TABLE daily_reports (
//	    id         BIGSERIAL PRIMARY KEY,
//	    object_id  BIGINT      NOT NULL,
//	    number     TEXT        NOT NULL UNIQUE,
//	    date       DATE        NOT NULL,
//	    is_posted  BOOLEAN     NOT NULL DEFAULT FALSE,
//	    posted_at  TIMESTAMPTZ,
//	    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
//
//	CREATE TABLE daily_report_work_lines (
//	    daily_report_id BIGINT        NOT NULL REFERENCES daily_reports(id) ON DELETE CASCADE,
//	    line_number     INT           NOT NULL CHECK (line_number >= 1),
//	    estimate_id     BIGINT,
//	    work_id         BIGINT        NOT NULL,
//	    quantity        NUMERIC(18,3) NOT NULL,
//	    amount          NUMERIC(18,2) NOT NULL,
//	    PRIMARY KEY (daily_report_id, line_number)
//	);
//
//	CREATE TABLE daily_report_crew_lines (
//	    daily_report_id BIGINT        NOT NULL REFERENCES daily_reports(id) ON DELETE CASCADE,
//	    line_number     INT           NOT NULL CHECK (line_number >= 1),
//	    employee_id     BIGINT        NOT NULL,
//	    estimate_id     BIGINT,
//	    hours           NUMERIC(18,3) NOT NULL,
//	    amount          NUMERIC(18,2) NOT NULL,
//	    PRIMARY KEY (daily_report_id, line_number)
//	);
type DailyReportRepo struct {
	q Querier
}

// NewDailyReportRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDailyReportRepository(q Querier) *DailyReportRepo {
	return &DailyReportRepo{q: q}
}

// Create persiste cabecera y ambos juegos de líneas en un solo batch.
func (r *DailyReportRepo) Create(ctx context.Context, report *entity.DailyReport) error {
	if report.ID == 0 {
		if err := r.q.QueryRow(ctx, `SELECT nextval('daily_reports_id_seq')`).Scan(&report.ID); err != nil {
			return storageErr("next daily report id", err)
		}
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now().UTC()
	}

	batch := &pgx.Batch{}
	batch.Queue(`
		INSERT INTO daily_reports (id, object_id, number, date, is_posted, posted_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		report.ID, report.ObjectID, report.Number, report.Date,
		report.IsPosted, report.PostedAt, report.CreatedAt,
	)
	for _, l := range report.WorkLines {
		batch.Queue(`
			INSERT INTO daily_report_work_lines (daily_report_id, line_number, estimate_id, work_id, quantity, amount)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			report.ID, l.LineNumber, l.EstimateID, l.WorkID, l.Quantity, l.Amount,
		)
	}
	for _, l := range report.CrewLines {
		batch.Queue(`
			INSERT INTO daily_report_crew_lines (daily_report_id, line_number, employee_id, estimate_id, hours, amount)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			report.ID, l.LineNumber, l.EmployeeID, l.EstimateID, l.Hours, l.Amount,
		)
	}

	br := r.q.SendBatch(ctx, batch)
	defer br.Close()
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("parte diario número %q: %w", report.Number, domain.ErrDuplicate)
			}
			return storageErr("insert daily report", err)
		}
	}
	return nil
}

// Update reemplaza cabecera y ambos juegos de líneas en una transacción
// propia. La condición is_posted = FALSE viaja en el UPDATE: una
// contabilización concurrente deja el documento intacto.
func (r *DailyReportRepo) Update(ctx context.Context, report *entity.DailyReport) error {
	tx, err := r.q.Begin(ctx)
	if err != nil {
		return storageErr("begin update daily report", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE daily_reports SET object_id = $2, number = $3, date = $4
		 WHERE id = $1 AND is_posted = FALSE`,
		report.ID, report.ObjectID, report.Number, report.Date,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("parte diario número %q: %w", report.Number, domain.ErrDuplicate)
		}
		return storageErr("update daily report", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("parte diario %d contabilizado, descontabilizar primero: %w", report.ID, domain.ErrConflict)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM daily_report_work_lines WHERE daily_report_id = $1`, report.ID); err != nil {
		return storageErr("purge work lines", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM daily_report_crew_lines WHERE daily_report_id = $1`, report.ID); err != nil {
		return storageErr("purge crew lines", err)
	}
	batch := &pgx.Batch{}
	for _, l := range report.WorkLines {
		batch.Queue(`
			INSERT INTO daily_report_work_lines (daily_report_id, line_number, estimate_id, work_id, quantity, amount)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			report.ID, l.LineNumber, l.EstimateID, l.WorkID, l.Quantity, l.Amount,
		)
	}
	for _, l := range report.CrewLines {
		batch.Queue(`
			INSERT INTO daily_report_crew_lines (daily_report_id, line_number, employee_id, estimate_id, hours, amount)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			report.ID, l.LineNumber, l.EmployeeID, l.EstimateID, l.Hours, l.Amount,
		)
	}
	br := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return storageErr("insert daily report lines", err)
		}
	}
	if err := br.Close(); err != nil {
		return storageErr("insert daily report lines", err)
	}
	return storageErr("commit update daily report", tx.Commit(ctx))
}

// GetByID devuelve el parte completo, o (nil, nil) si no existe.
func (r *DailyReportRepo) GetByID(ctx context.Context, id int64) (*entity.DailyReport, error) {
	const header = `
		SELECT id, object_id, number, date, is_posted, posted_at, created_at
		FROM daily_reports WHERE id = $1`
	var report entity.DailyReport
	err := r.q.QueryRow(ctx, header, id).Scan(
		&report.ID, &report.ObjectID, &report.Number, &report.Date,
		&report.IsPosted, &report.PostedAt, &report.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, storageErr("get daily report", err)
	}

	const workLines = `
		SELECT line_number, estimate_id, work_id, quantity, amount
		FROM daily_report_work_lines WHERE daily_report_id = $1 ORDER BY line_number`
	rows, err := r.q.Query(ctx, workLines, id)
	if err != nil {
		return nil, storageErr("list work lines", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.DailyReportWorkLine
		if err := rows.Scan(&l.LineNumber, &l.EstimateID, &l.WorkID, &l.Quantity, &l.Amount); err != nil {
			return nil, storageErr("scan work line", err)
		}
		report.WorkLines = append(report.WorkLines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("work lines", err)
	}

	const crewLines = `
		SELECT line_number, employee_id, estimate_id, hours, amount
		FROM daily_report_crew_lines WHERE daily_report_id = $1 ORDER BY line_number`
	crew, err := r.q.Query(ctx, crewLines, id)
	if err != nil {
		return nil, storageErr("list crew lines", err)
	}
	defer crew.Close()
	for crew.Next() {
		var l entity.DailyReportCrewLine
		if err := crew.Scan(&l.LineNumber, &l.EmployeeID, &l.EstimateID, &l.Hours, &l.Amount); err != nil {
			return nil, storageErr("scan crew line", err)
		}
		report.CrewLines = append(report.CrewLines, l)
	}
	if err := crew.Err(); err != nil {
		return nil, storageErr("crew lines", err)
	}
	return &report, nil
}

// List devuelve cabeceras (sin líneas), más recientes primero.
func (r *DailyReportRepo) List(ctx context.Context, limit, offset int) ([]*entity.DailyReport, error) {
	const query = `
		SELECT id, object_id, number, date, is_posted, posted_at, created_at
		FROM daily_reports ORDER BY date DESC, id DESC LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, storageErr("list daily reports", err)
	}
	defer rows.Close()

	var list []*entity.DailyReport
	for rows.Next() {
		var report entity.DailyReport
		if err := rows.Scan(&report.ID, &report.ObjectID, &report.Number, &report.Date,
			&report.IsPosted, &report.PostedAt, &report.CreatedAt); err != nil {
			return nil, storageErr("scan daily report", err)
		}
		list = append(list, &report)
	}
	return list, storageErr("daily reports", rows.Err())
}

// SetPosted actualiza el estado de contabilización de la cabecera.
func (r *DailyReportRepo) SetPosted(ctx context.Context, id int64, posted bool, postedAt *time.Time) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE daily_reports SET is_posted = $2, posted_at = $3 WHERE id = $1`,
		id, posted, postedAt,
	)
	if err != nil {
		return storageErr("set daily report posted", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("parte diario %d: %w", id, domain.ErrNotFound)
	}
	return nil
}
