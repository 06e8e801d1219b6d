package register

import (
	"context"
	"fmt"

	"github.com/jsalazar/obracontrol-api/internal/domain"
	"github.com/jsalazar/obracontrol-api/internal/domain/register"
	"github.com/jsalazar/obracontrol-api/internal/domain/repository"
)

// Aggregator calcula saldos y giros sobre los registros de acumulación. Valida
// la consulta contra la definición del registro (dimensión fuera del registro
// es un bug del llamador, nunca un resultado vacío silencioso) y delega el
// cálculo al repositorio de reportes. Es de solo lectura: nunca escribe.
type Aggregator struct {
	reports repository.RegisterReportRepository
}

// NewAggregator construye el agregador sobre un repositorio de reportes
// (directo o decorado con caché).
func NewAggregator(reports repository.RegisterReportRepository) *Aggregator {
	return &Aggregator{reports: reports}
}

// Balance acumula ingresos, egresos y saldo (ingreso − egreso) hasta la fecha
// de corte inclusive, una fila por combinación distinta de las dimensiones
// agrupadas. Filas con saldo cero se devuelven igual: filtrarlas es decisión
// del llamador.
func (a *Aggregator) Balance(ctx context.Context, q register.BalanceQuery) ([]register.BalanceRow, error) {
	def, err := a.definition(q.Register)
	if err != nil {
		return nil, err
	}
	if q.Cutoff.IsZero() {
		return nil, fmt.Errorf("fecha de corte requerida: %w", domain.ErrInvalidInput)
	}
	if err := a.validateQuery(def, q.GroupBy, q.Filter); err != nil {
		return nil, err
	}
	q.Cutoff = register.Day(q.Cutoff)
	rows, err := a.reports.Balance(ctx, q)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Turnover suma ingresos y egresos dentro del rango [From, To], ambos extremos
// inclusive. No devuelve saldo: el giro es por definición de alcance acotado.
func (a *Aggregator) Turnover(ctx context.Context, q register.TurnoverQuery) ([]register.TurnoverRow, error) {
	def, err := a.definition(q.Register)
	if err != nil {
		return nil, err
	}
	if q.From.IsZero() || q.To.IsZero() {
		return nil, fmt.Errorf("rango de fechas requerido: %w", domain.ErrInvalidInput)
	}
	if q.To.Before(q.From) {
		return nil, fmt.Errorf("rango invertido (from > to): %w", domain.ErrInvalidInput)
	}
	if err := a.validateQuery(def, q.GroupBy, q.Filter); err != nil {
		return nil, err
	}
	q.From = register.Day(q.From)
	q.To = register.Day(q.To)
	rows, err := a.reports.Turnover(ctx, q)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (a *Aggregator) definition(name string) (register.Definition, error) {
	def, ok := register.Lookup(name)
	if !ok {
		return register.Definition{}, fmt.Errorf("registro desconocido %q: %w", name, domain.ErrInvalidInput)
	}
	return def, nil
}

// validateQuery rechaza dimensiones de agrupación o filtro ajenas al registro.
// El período se agrupa con DimPeriod y se filtra solo vía corte o rango, nunca
// como clave de filtro.
func (a *Aggregator) validateQuery(def register.Definition, groupBy []register.Dimension, filter map[register.Dimension]*int64) error {
	for _, dim := range groupBy {
		if !def.Groupable(dim) {
			return &domain.InvalidGroupingError{Register: def.Name, Dimension: string(dim)}
		}
	}
	for dim := range filter {
		if !def.Has(dim) {
			return &domain.InvalidGroupingError{Register: def.Name, Dimension: string(dim)}
		}
	}
	return nil
}
