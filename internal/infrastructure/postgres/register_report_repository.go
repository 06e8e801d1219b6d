package postgres

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jsalazar/obracontrol-api/internal/domain/register"
	"github.com/jsalazar/obracontrol-api/internal/domain/repository"
)

var _ repository.RegisterReportRepository = (*RegisterReportRepo)(nil)

// RegisterReportRepo consultas de solo lectura para saldos y giros. El GROUP BY
// se arma desde el enum de dimensiones (columna fija por dimensión), nunca
// desde strings del llamador; el agregador ya validó la consulta.
type RegisterReportRepo struct {
	q Querier
}

// NewRegisterReportRepository construye el adaptador de reportes.
func NewRegisterReportRepository(q Querier) *RegisterReportRepo {
	return &RegisterReportRepo{q: q}
}

// Balance acumula hasta la fecha de corte inclusive. Sin dimensiones de
// agrupación devuelve exactamente una fila con el total del registro.
func (r *RegisterReportRepo) Balance(ctx context.Context, q register.BalanceQuery) ([]register.BalanceRow, error) {
	dims, withPeriod := register.IDDimensions(q.GroupBy)

	where, args := reportFilter(q.Register, q.Filter)
	args = append(args, q.Cutoff)
	where = append(where, fmt.Sprintf("period <= $%d", len(args)))

	query := buildReportQuery(dims, withPeriod, where)
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, storageErr("balance", err)
	}
	defer rows.Close()

	var result []register.BalanceRow
	for rows.Next() {
		dimVals, period, sums, err := scanReportRow(rows, dims, withPeriod)
		if err != nil {
			return nil, err
		}
		result = append(result, register.BalanceRow{
			Dimensions:      dimVals,
			Period:          period,
			QuantityIncome:  sums[0],
			QuantityExpense: sums[1],
			QuantityBalance: sums[0].Sub(sums[1]),
			SumIncome:       sums[2],
			SumExpense:      sums[3],
			SumBalance:      sums[2].Sub(sums[3]),
		})
	}
	return result, storageErr("balance rows", rows.Err())
}

// Turnover suma ingresos y egresos dentro del rango [From, To], ambos inclusive.
func (r *RegisterReportRepo) Turnover(ctx context.Context, q register.TurnoverQuery) ([]register.TurnoverRow, error) {
	dims, withPeriod := register.IDDimensions(q.GroupBy)

	where, args := reportFilter(q.Register, q.Filter)
	args = append(args, q.From, q.To)
	where = append(where, fmt.Sprintf("period BETWEEN $%d AND $%d", len(args)-1, len(args)))

	query := buildReportQuery(dims, withPeriod, where)
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, storageErr("turnover", err)
	}
	defer rows.Close()

	var result []register.TurnoverRow
	for rows.Next() {
		dimVals, period, sums, err := scanReportRow(rows, dims, withPeriod)
		if err != nil {
			return nil, err
		}
		result = append(result, register.TurnoverRow{
			Dimensions:      dimVals,
			Period:          period,
			QuantityIncome:  sums[0],
			QuantityExpense: sums[1],
			SumIncome:       sums[2],
			SumExpense:      sums[3],
		})
	}
	return result, storageErr("turnover rows", rows.Err())
}

// reportFilter arma las condiciones de filtro por dimensión. Filtro con valor
// nil selecciona el bucket ausente (columna NULL). Las claves se recorren en
// orden fijo para que el SQL sea reproducible.
func reportFilter(registerName string, filter map[register.Dimension]*int64) ([]string, []any) {
	args := []any{registerName}
	where := []string{"register_name = $1"}

	dims := make([]register.Dimension, 0, len(filter))
	for dim := range filter {
		dims = append(dims, dim)
	}
	sort.Slice(dims, func(i, j int) bool { return dims[i] < dims[j] })

	for _, dim := range dims {
		col := dimensionColumn(dim)
		if v := filter[dim]; v == nil {
			where = append(where, col+" IS NULL")
		} else {
			args = append(args, *v)
			where = append(where, fmt.Sprintf("%s = $%d", col, len(args)))
		}
	}
	return where, args
}

// buildReportQuery arma el SELECT agregado. El orden de las filas sigue las
// dimensiones pedidas, ascendente y con el bucket ausente primero, estable
// para la misma entrada.
func buildReportQuery(dims []register.Dimension, withPeriod bool, where []string) string {
	var sel, group, order []string
	for _, dim := range dims {
		col := dimensionColumn(dim)
		sel = append(sel, col)
		group = append(group, col)
		order = append(order, col+" ASC NULLS FIRST")
	}
	if withPeriod {
		sel = append(sel, "period")
		group = append(group, "period")
		order = append(order, "period ASC")
	}
	sel = append(sel,
		"COALESCE(SUM(quantity_income), 0)",
		"COALESCE(SUM(quantity_expense), 0)",
		"COALESCE(SUM(sum_income), 0)",
		"COALESCE(SUM(sum_expense), 0)",
	)

	query := "SELECT " + strings.Join(sel, ", ") +
		" FROM register_movements WHERE " + strings.Join(where, " AND ")
	if len(group) > 0 {
		query += " GROUP BY " + strings.Join(group, ", ")
		query += " ORDER BY " + strings.Join(order, ", ")
	}
	return query
}

// scanReportRow lee una fila agregada: valores de dimensión en el orden pedido,
// período si se agrupó por él y los cuatro acumulados.
func scanReportRow(rows pgx.Rows, dims []register.Dimension, withPeriod bool) (map[register.Dimension]*int64, *time.Time, [4]decimal.Decimal, error) {
	var sums [4]decimal.Decimal
	dimPtrs := make([]*int64, len(dims))
	var period *time.Time

	targets := make([]any, 0, len(dims)+5)
	for i := range dimPtrs {
		targets = append(targets, &dimPtrs[i])
	}
	if withPeriod {
		targets = append(targets, &period)
	}
	for i := range sums {
		targets = append(targets, &sums[i])
	}
	if err := rows.Scan(targets...); err != nil {
		return nil, nil, sums, storageErr("scan report row", err)
	}

	var dimVals map[register.Dimension]*int64
	if len(dims) > 0 {
		dimVals = make(map[register.Dimension]*int64, len(dims))
		for i, dim := range dims {
			dimVals[dim] = dimPtrs[i]
		}
	}
	return dimVals, period, sums, nil
}
