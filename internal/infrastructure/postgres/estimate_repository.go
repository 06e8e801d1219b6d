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

var _ repository.EstimateRepository = (*EstimateRepo)(nil)

// EstimateRepo persistencia de presupuestos (usable con pool o tx).
//
// Esquema esperado:
//
//	CREATE TABLE estimates (
//	    id         BIGSERIAL PRIMARY KEY,
//	    object_id  BIGINT      NOT NULL,
//	    number     TEXT        NOT NULL UNIQUE,
//	    date       DATE        NOT NULL,
//	    is_posted  BOOLEAN     NOT NULL DEFAULT FALSE,
//	    posted_at  TIMESTAMPTZ,
//	    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
//
//	CREATE TABLE estimate_lines (
//	    estimate_id BIGINT        NOT NULL REFERENCES estimates(id) ON DELETE CASCADE,
//	    line_number INT           NOT NULL CHECK (line_number >= 1),
//	    work_id     BIGINT        NOT NULL,
//	    quantity    NUMERIC(18,3) NOT NULL,
//	    amount      NUMERIC(18,2) NOT NULL,
//	    PRIMARY KEY (estimate_id, line_number)
//	);
type EstimateRepo struct {
	q Querier
}

// NewEstimateRepository construye el adaptador. Pasar pool o tx (Querier).
func NewEstimateRepository(q Querier) *EstimateRepo {
	return &EstimateRepo{q: q}
}

// Create persiste cabecera y líneas en un solo batch (transacción implícita:
// si una línea falla no queda cabecera huérfana).
func (r *EstimateRepo) Create(ctx context.Context, est *entity.Estimate) error {
	if est.ID == 0 {
		if err := r.q.QueryRow(ctx, `SELECT nextval('estimates_id_seq')`).Scan(&est.ID); err != nil {
			return storageErr("next estimate id", err)
		}
	}
	if est.CreatedAt.IsZero() {
		est.CreatedAt = time.Now().UTC()
	}

	batch := &pgx.Batch{}
	batch.Queue(`
		INSERT INTO estimates (id, object_id, number, date, is_posted, posted_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		est.ID, est.ObjectID, est.Number, est.Date, est.IsPosted, est.PostedAt, est.CreatedAt,
	)
	for _, l := range est.Lines {
		batch.Queue(`
			INSERT INTO estimate_lines (estimate_id, line_number, work_id, quantity, amount)
			VALUES ($1, $2, $3, $4, $5)`,
			est.ID, l.LineNumber, l.WorkID, l.Quantity, l.Amount,
		)
	}

	br := r.q.SendBatch(ctx, batch)
	defer br.Close()
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("presupuesto número %q: %w", est.Number, domain.ErrDuplicate)
			}
			return storageErr("insert estimate", err)
		}
	}
	return nil
}

// Update reemplaza cabecera y líneas en una transacción propia. La condición
// is_posted = FALSE viaja en el UPDATE: una contabilización concurrente entre
// la lectura del caso de uso y esta escritura deja el documento intacto.
func (r *EstimateRepo) Update(ctx context.Context, est *entity.Estimate) error {
	tx, err := r.q.Begin(ctx)
	if err != nil {
		return storageErr("begin update estimate", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE estimates SET object_id = $2, number = $3, date = $4
		 WHERE id = $1 AND is_posted = FALSE`,
		est.ID, est.ObjectID, est.Number, est.Date,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("presupuesto número %q: %w", est.Number, domain.ErrDuplicate)
		}
		return storageErr("update estimate", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("presupuesto %d contabilizado, descontabilizar primero: %w", est.ID, domain.ErrConflict)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM estimate_lines WHERE estimate_id = $1`, est.ID); err != nil {
		return storageErr("purge estimate lines", err)
	}
	batch := &pgx.Batch{}
	for _, l := range est.Lines {
		batch.Queue(`
			INSERT INTO estimate_lines (estimate_id, line_number, work_id, quantity, amount)
			VALUES ($1, $2, $3, $4, $5)`,
			est.ID, l.LineNumber, l.WorkID, l.Quantity, l.Amount,
		)
	}
	br := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return storageErr("insert estimate lines", err)
		}
	}
	if err := br.Close(); err != nil {
		return storageErr("insert estimate lines", err)
	}
	return storageErr("commit update estimate", tx.Commit(ctx))
}

// GetByID devuelve el presupuesto con sus líneas, o (nil, nil) si no existe.
func (r *EstimateRepo) GetByID(ctx context.Context, id int64) (*entity.Estimate, error) {
	const header = `
		SELECT id, object_id, number, date, is_posted, posted_at, created_at
		FROM estimates WHERE id = $1`
	var est entity.Estimate
	err := r.q.QueryRow(ctx, header, id).Scan(
		&est.ID, &est.ObjectID, &est.Number, &est.Date,
		&est.IsPosted, &est.PostedAt, &est.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, storageErr("get estimate", err)
	}

	const lines = `
		SELECT line_number, work_id, quantity, amount
		FROM estimate_lines WHERE estimate_id = $1 ORDER BY line_number`
	rows, err := r.q.Query(ctx, lines, id)
	if err != nil {
		return nil, storageErr("list estimate lines", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.EstimateLine
		if err := rows.Scan(&l.LineNumber, &l.WorkID, &l.Quantity, &l.Amount); err != nil {
			return nil, storageErr("scan estimate line", err)
		}
		est.Lines = append(est.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("estimate lines", err)
	}
	return &est, nil
}

// List devuelve cabeceras (sin líneas), más recientes primero.
func (r *EstimateRepo) List(ctx context.Context, limit, offset int) ([]*entity.Estimate, error) {
	const query = `
		SELECT id, object_id, number, date, is_posted, posted_at, created_at
		FROM estimates ORDER BY date DESC, id DESC LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, storageErr("list estimates", err)
	}
	defer rows.Close()

	var list []*entity.Estimate
	for rows.Next() {
		var est entity.Estimate
		if err := rows.Scan(&est.ID, &est.ObjectID, &est.Number, &est.Date,
			&est.IsPosted, &est.PostedAt, &est.CreatedAt); err != nil {
			return nil, storageErr("scan estimate", err)
		}
		list = append(list, &est)
	}
	return list, storageErr("estimates", rows.Err())
}

// SetPosted actualiza el estado de contabilización de la cabecera.
func (r *EstimateRepo) SetPosted(ctx context.Context, id int64, posted bool, postedAt *time.Time) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE estimates SET is_posted = $2, posted_at = $3 WHERE id = $1`,
		id, posted, postedAt,
	)
	if err != nil {
		return storageErr("set estimate posted", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("presupuesto %d: %w", id, domain.ErrNotFound)
	}
	return nil
}
