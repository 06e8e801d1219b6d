package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jsalazar/obracontrol-api/internal/domain"
	"github.com/jsalazar/obracontrol-api/internal/domain/register"
	"github.com/jsalazar/obracontrol-api/internal/domain/repository"
)

var _ repository.RegisterMovementRepository = (*RegisterMovementRepo)(nil)

// RegisterMovementRepo almacén de movimientos sobre PostgreSQL (usable con
// pool o tx). Tabla única compartida por los tres registros:
//
//	CREATE TABLE register_movements (
//	    id               BIGSERIAL PRIMARY KEY,
//	    register_name    TEXT        NOT NULL,
//	    recorder_type    TEXT        NOT NULL,
//	    recorder_id      BIGINT      NOT NULL,
//	    line_number      INT         NOT NULL CHECK (line_number >= 1),
//	    period           DATE        NOT NULL,
//	    object_id        BIGINT,
//	    estimate_id      BIGINT,
//	    work_id          BIGINT,
//	    employee_id      BIGINT,
//	    quantity_income  NUMERIC(15,3) NOT NULL CHECK (quantity_income  >= 0),
//	    quantity_expense NUMERIC(15,3) NOT NULL CHECK (quantity_expense >= 0),
//	    sum_income       NUMERIC(15,2) NOT NULL CHECK (sum_income  >= 0),
//	    sum_expense      NUMERIC(15,2) NOT NULL CHECK (sum_expense >= 0),
//	    created_at       TIMESTAMPTZ NOT NULL
//	);
//	CREATE INDEX idx_register_movements_recorder
//	    ON register_movements (register_name, recorder_type, recorder_id);
//	CREATE INDEX idx_register_movements_dimensions
//	    ON register_movements (register_name, object_id, estimate_id, work_id, employee_id, period);
//
// Sin constraint único sobre las dimensiones: duplicados entre recorders son
// legítimos y el detector de duplicados solo advierte.
type RegisterMovementRepo struct {
	q Querier
}

// NewRegisterMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRegisterMovementRepository(q Querier) *RegisterMovementRepo {
	return &RegisterMovementRepo{q: q}
}

const movementColumns = `register_name, recorder_type, recorder_id, line_number, period,
       object_id, estimate_id, work_id, employee_id,
       quantity_income, quantity_expense, sum_income, sum_expense, created_at`

// Append inserta todos los movimientos en un solo batch (una transacción
// implícita si el Querier es el pool; la del llamador si es una tx). Ningún
// lector observa una escritura parcial.
func (r *RegisterMovementRepo) Append(ctx context.Context, movements []register.Movement) error {
	if len(movements) == 0 {
		return nil
	}
	for _, m := range movements {
		if m.QuantityIncome.IsNegative() || m.QuantityExpense.IsNegative() ||
			m.SumIncome.IsNegative() || m.SumExpense.IsNegative() {
			return &domain.StorageError{
				Op:  fmt.Sprintf("append línea %d", m.LineNumber),
				Err: fmt.Errorf("monto negativo en %s", m.RegisterName),
			}
		}
	}

	query := `
		INSERT INTO register_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	batch := &pgx.Batch{}
	for _, m := range movements {
		batch.Queue(query,
			m.RegisterName, m.RecorderType, m.RecorderID, m.LineNumber, m.Period,
			m.ObjectID, m.EstimateID, m.WorkID, m.EmployeeID,
			m.QuantityIncome, m.QuantityExpense, m.SumIncome, m.SumExpense, m.CreatedAt,
		)
	}
	br := r.q.SendBatch(ctx, batch)
	defer br.Close()
	for i := range movements {
		if _, err := br.Exec(); err != nil {
			return storageErr(fmt.Sprintf("append línea %d", movements[i].LineNumber), err)
		}
	}
	return nil
}

// DeleteByRecorder borra todo movimiento del recorder en ese registro.
// Idempotente: cero filas también es éxito.
func (r *RegisterMovementRepo) DeleteByRecorder(ctx context.Context, registerName, recorderType string, recorderID int64) (int64, error) {
	tag, err := r.q.Exec(ctx, `
		DELETE FROM register_movements
		WHERE register_name = $1 AND recorder_type = $2 AND recorder_id = $3`,
		registerName, recorderType, recorderID,
	)
	if err != nil {
		return 0, storageErr("delete by recorder", err)
	}
	return tag.RowsAffected(), nil
}

// QueryByRecorder devuelve los movimientos del recorder en todos los
// registros, ordenados por registro y línea. Superficie de inspección.
func (r *RegisterMovementRepo) QueryByRecorder(ctx context.Context, recorderType string, recorderID int64) ([]register.Movement, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+movementColumns+`
		FROM register_movements
		WHERE recorder_type = $1 AND recorder_id = $2
		ORDER BY register_name, line_number`,
		recorderType, recorderID,
	)
	if err != nil {
		return nil, storageErr("query by recorder", err)
	}
	defer rows.Close()
	return scanMovements(rows)
}

// FindByUniquenessKeys busca movimientos del registro cuya tupla de unicidad
// (más período) coincide con alguna de las claves. La comparación usa solo las
// columnas de unicidad del registro, con COALESCE a 0 para el bucket ausente
// (los ids del dominio empiezan en 1).
func (r *RegisterMovementRepo) FindByUniquenessKeys(ctx context.Context, registerName string, keys []register.Key) ([]register.Movement, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	def, ok := register.Lookup(registerName)
	if !ok {
		return nil, fmt.Errorf("registro desconocido %q: %w", registerName, domain.ErrInvalidInput)
	}

	cols := make([]string, 0, len(def.Uniqueness)+1)
	for _, dim := range def.Uniqueness {
		cols = append(cols, "COALESCE("+dimensionColumn(dim)+", 0)")
	}
	cols = append(cols, "period")

	args := []any{registerName}
	tuples := make([]string, 0, len(keys))
	for _, k := range keys {
		ph := make([]string, 0, len(def.Uniqueness)+1)
		for _, dim := range def.Uniqueness {
			args = append(args, keyDimension(k, dim))
			ph = append(ph, fmt.Sprintf("$%d", len(args)))
		}
		args = append(args, k.PeriodTime())
		ph = append(ph, fmt.Sprintf("$%d", len(args)))
		tuples = append(tuples, "("+strings.Join(ph, ", ")+")")
	}

	query := fmt.Sprintf(`
		SELECT `+movementColumns+`
		FROM register_movements
		WHERE register_name = $1 AND (%s) IN (%s)
		ORDER BY recorder_type, recorder_id, line_number`,
		strings.Join(cols, ", "), strings.Join(tuples, ", "),
	)
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, storageErr("find by uniqueness keys", err)
	}
	defer rows.Close()
	return scanMovements(rows)
}

func scanMovements(rows pgx.Rows) ([]register.Movement, error) {
	var list []register.Movement
	for rows.Next() {
		var m register.Movement
		if err := rows.Scan(
			&m.RegisterName, &m.RecorderType, &m.RecorderID, &m.LineNumber, &m.Period,
			&m.ObjectID, &m.EstimateID, &m.WorkID, &m.EmployeeID,
			&m.QuantityIncome, &m.QuantityExpense, &m.SumIncome, &m.SumExpense, &m.CreatedAt,
		); err != nil {
			return nil, storageErr("scan movement", err)
		}
		list = append(list, m)
	}
	return list, storageErr("rows", rows.Err())
}

// dimensionColumn mapea una dimensión a su columna. Switch exhaustivo: las
// consultas nunca interpolan texto del llamador.
func dimensionColumn(dim register.Dimension) string {
	switch dim {
	case register.DimObject:
		return "object_id"
	case register.DimEstimate:
		return "estimate_id"
	case register.DimWork:
		return "work_id"
	case register.DimEmployee:
		return "employee_id"
	case register.DimPeriod:
		return "period"
	}
	panic(fmt.Sprintf("dimensión desconocida %q", dim))
}

func keyDimension(k register.Key, dim register.Dimension) int64 {
	switch dim {
	case register.DimObject:
		return k.Object
	case register.DimEstimate:
		return k.Estimate
	case register.DimWork:
		return k.Work
	case register.DimEmployee:
		return k.Employee
	}
	return 0
}
