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

var _ repository.TimesheetRepository = (*TimesheetRepo)(nil)

// TimesheetRepo persistencia de planillas de horas (usable con pool o tx).
//
// Esquema esperado:
//
//	CREATE TABLE timesheets (
//	    id         BIGSERIAL PRIMARY KEY,
//	    object_id  BIGINT      NOT NULL,
//	    number     TEXT        NOT NULL UNIQUE,
//	    date       DATE        NOT NULL,
//	    is_posted  BOOLEAN     NOT NULL DEFAULT FALSE,
//	    posted_at  TIMESTAMPTZ,
//	    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
//
//	CREATE TABLE timesheet_lines (
//	    timesheet_id BIGINT        NOT NULL REFERENCES timesheets(id) ON DELETE CASCADE,
//	    line_number  INT           NOT NULL CHECK (line_number >= 1),
//	    employee_id  BIGINT        NOT NULL,
//	    estimate_id  BIGINT,
//	    work_date    DATE          NOT NULL,
//	    hours        NUMERIC(18,3) NOT NULL,
//	    amount       NUMERIC(18,2) NOT NULL,
//	    PRIMARY KEY (timesheet_id, line_number)
//	);
type TimesheetRepo struct {
	q Querier
}

// NewTimesheetRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTimesheetRepository(q Querier) *TimesheetRepo {
	return &TimesheetRepo{q: q}
}

// Create persiste cabecera y líneas en un solo batch.
func (r *TimesheetRepo) Create(ctx context.Context, sheet *entity.Timesheet) error {
	if sheet.ID == 0 {
		if err := r.q.QueryRow(ctx, `SELECT nextval('timesheets_id_seq')`).Scan(&sheet.ID); err != nil {
			return storageErr("next timesheet id", err)
		}
	}
	if sheet.CreatedAt.IsZero() {
		sheet.CreatedAt = time.Now().UTC()
	}

	batch := &pgx.Batch{}
	batch.Queue(`
		INSERT INTO timesheets (id, object_id, number, date, is_posted, posted_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		sheet.ID, sheet.ObjectID, sheet.Number, sheet.Date,
		sheet.IsPosted, sheet.PostedAt, sheet.CreatedAt,
	)
	for _, l := range sheet.Lines {
		batch.Queue(`
			INSERT INTO timesheet_lines (timesheet_id, line_number, employee_id, estimate_id, work_date, hours, amount)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			sheet.ID, l.LineNumber, l.EmployeeID, l.EstimateID, l.WorkDate, l.Hours, l.Amount,
		)
	}

	br := r.q.SendBatch(ctx, batch)
	defer br.Close()
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("planilla número %q: %w", sheet.Number, domain.ErrDuplicate)
			}
			return storageErr("insert timesheet", err)
		}
	}
	return nil
}

// Update reemplaza cabecera y líneas en una transacción propia. La condición
// is_posted = FALSE viaja en el UPDATE: una contabilización concurrente deja
// el documento intacto.
func (r *TimesheetRepo) Update(ctx context.Context, sheet *entity.Timesheet) error {
	tx, err := r.q.Begin(ctx)
	if err != nil {
		return storageErr("begin update timesheet", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE timesheets SET object_id = $2, number = $3, date = $4
		 WHERE id = $1 AND is_posted = FALSE`,
		sheet.ID, sheet.ObjectID, sheet.Number, sheet.Date,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("planilla número %q: %w", sheet.Number, domain.ErrDuplicate)
		}
		return storageErr("update timesheet", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("planilla %d contabilizada, descontabilizar primero: %w", sheet.ID, domain.ErrConflict)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM timesheet_lines WHERE timesheet_id = $1`, sheet.ID); err != nil {
		return storageErr("purge timesheet lines", err)
	}
	batch := &pgx.Batch{}
	for _, l := range sheet.Lines {
		batch.Queue(`
			INSERT INTO timesheet_lines (timesheet_id, line_number, employee_id, estimate_id, work_date, hours, amount)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			sheet.ID, l.LineNumber, l.EmployeeID, l.EstimateID, l.WorkDate, l.Hours, l.Amount,
		)
	}
	br := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return storageErr("insert timesheet lines", err)
		}
	}
	if err := br.Close(); err != nil {
		return storageErr("insert timesheet lines", err)
	}
	return storageErr("commit update timesheet", tx.Commit(ctx))
}

// GetByID devuelve la planilla con sus líneas, o (nil, nil) si no existe.
func (r *TimesheetRepo) GetByID(ctx context.Context, id int64) (*entity.Timesheet, error) {
	const header = `
		SELECT id, object_id, number, date, is_posted, posted_at, created_at
		FROM timesheets WHERE id = $1`
	var sheet entity.Timesheet
	err := r.q.QueryRow(ctx, header, id).Scan(
		&sheet.ID, &sheet.ObjectID, &sheet.Number, &sheet.Date,
		&sheet.IsPosted, &sheet.PostedAt, &sheet.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, storageErr("get timesheet", err)
	}

	const lines = `
		SELECT line_number, employee_id, estimate_id, work_date, hours, amount
		FROM timesheet_lines WHERE timesheet_id = $1 ORDER BY line_number`
	rows, err := r.q.Query(ctx, lines, id)
	if err != nil {
		return nil, storageErr("list timesheet lines", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.TimesheetLine
		if err := rows.Scan(&l.LineNumber, &l.EmployeeID, &l.EstimateID, &l.WorkDate, &l.Hours, &l.Amount); err != nil {
			return nil, storageErr("scan timesheet line", err)
		}
		sheet.Lines = append(sheet.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("timesheet lines", err)
	}
	return &sheet, nil
}

// List devuelve cabeceras (sin líneas), más recientes primero.
func (r *TimesheetRepo) List(ctx context.Context, limit, offset int) ([]*entity.Timesheet, error) {
	const query = `
		SELECT id, object_id, number, date, is_posted, posted_at, created_at
		FROM timesheets ORDER BY date DESC, id DESC LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, storageErr("list timesheets", err)
	}
	defer rows.Close()

	var list []*entity.Timesheet
	for rows.Next() {
		var sheet entity.Timesheet
		if err := rows.Scan(&sheet.ID, &sheet.ObjectID, &sheet.Number, &sheet.Date,
			&sheet.IsPosted, &sheet.PostedAt, &sheet.CreatedAt); err != nil {
			return nil, storageErr("scan timesheet", err)
		}
		list = append(list, &sheet)
	}
	return list, storageErr("timesheets", rows.Err())
}

// SetPosted actualiza el estado de contabilización de la cabecera.
func (r *TimesheetRepo) SetPosted(ctx context.Context, id int64, posted bool, postedAt *time.Time) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE timesheets SET is_posted = $2, posted_at = $3 WHERE id = $1`,
		id, posted, postedAt,
	)
	if err != nil {
		return storageErr("set timesheet posted", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("planilla %d: %w", id, domain.ErrNotFound)
	}
	return nil
}
