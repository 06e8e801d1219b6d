package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jsalazar/obracontrol-api/internal/domain/register"
	"github.com/jsalazar/obracontrol-api/internal/domain/repository"
)

var _ repository.RegisterReportRepository = (*RegisterReportRepo)(nil)

// RegisterReportRepo agrega saldos y giros recorriendo el almacén en memoria,
// con la misma semántica de agrupación, filtros y orden que el adaptador SQL.
type RegisterReportRepo struct {
	s *Store
}

// NewRegisterReportRepository construye el adaptador de reportes.
func NewRegisterReportRepository(s *Store) *RegisterReportRepo {
	return &RegisterReportRepo{s: s}
}

// Balance acumula hasta la fecha de corte inclusive.
func (r *RegisterReportRepo) Balance(ctx context.Context, q register.BalanceQuery) ([]register.BalanceRow, error) {
	cutoff := register.Day(q.Cutoff)
	groups := r.aggregate(q.Register, q.GroupBy, q.Filter, func(period time.Time) bool {
		return !period.After(cutoff)
	})

	result := make([]register.BalanceRow, 0, len(groups))
	for _, g := range groups {
		result = append(result, register.BalanceRow{
			Dimensions:      g.dims,
			Period:          g.period,
			QuantityIncome:  g.qi,
			QuantityExpense: g.qe,
			QuantityBalance: g.qi.Sub(g.qe),
			SumIncome:       g.si,
			SumExpense:      g.se,
			SumBalance:      g.si.Sub(g.se),
		})
	}
	return result, nil
}

// Turnover suma ingresos y egresos dentro del rango [From, To], ambos inclusive.
func (r *RegisterReportRepo) Turnover(ctx context.Context, q register.TurnoverQuery) ([]register.TurnoverRow, error) {
	from, to := register.Day(q.From), register.Day(q.To)
	groups := r.aggregate(q.Register, q.GroupBy, q.Filter, func(period time.Time) bool {
		return !period.Before(from) && !period.After(to)
	})

	result := make([]register.TurnoverRow, 0, len(groups))
	for _, g := range groups {
		result = append(result, register.TurnoverRow{
			Dimensions:      g.dims,
			Period:          g.period,
			QuantityIncome:  g.qi,
			QuantityExpense: g.qe,
			SumIncome:       g.si,
			SumExpense:      g.se,
		})
	}
	return result, nil
}

type group struct {
	dims   map[register.Dimension]*int64
	period *time.Time
	qi, qe decimal.Decimal
	si, se decimal.Decimal
}

// aggregate agrupa los movimientos que pasan el filtro y la ventana temporal.
// El orden de salida sigue las dimensiones pedidas, ascendente, ausentes
// primero, y por período al final si se agrupó por él.
func (r *RegisterReportRepo) aggregate(registerName string, groupBy []register.Dimension, filter map[register.Dimension]*int64, inWindow func(time.Time) bool) []*group {
	dims, withPeriod := register.IDDimensions(groupBy)

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	acc := make(map[register.Key]*group)
	var order []register.Key
	for _, m := range r.s.movements {
		if m.RegisterName != registerName || !inWindow(m.Period) || !matchesFilter(m, filter) {
			continue
		}
		k := groupKeyOf(m, dims, withPeriod)
		g, ok := acc[k]
		if !ok {
			g = &group{dims: groupDims(m, dims)}
			if withPeriod {
				p := register.Day(m.Period)
				g.period = &p
			}
			acc[k] = g
			order = append(order, k)
		}
		g.qi = g.qi.Add(m.QuantityIncome)
		g.qe = g.qe.Add(m.QuantityExpense)
		g.si = g.si.Add(m.SumIncome)
		g.se = g.se.Add(m.SumExpense)
	}

	// Sin agrupación el agregado SQL devuelve exactamente una fila aunque no
	// haya movimientos; replicar eso aquí.
	if len(dims) == 0 && !withPeriod && len(order) == 0 {
		return []*group{{}}
	}

	sort.Slice(order, func(i, j int) bool {
		a, b := order[i], order[j]
		for _, d := range dims {
			av, bv := keyField(a, d), keyField(b, d)
			if av != bv {
				return av < bv
			}
		}
		return a.Period < b.Period
	})

	result := make([]*group, 0, len(order))
	for _, k := range order {
		result = append(result, acc[k])
	}
	return result
}

func matchesFilter(m register.Movement, filter map[register.Dimension]*int64) bool {
	for dim, want := range filter {
		have := m.DimensionValue(dim)
		if want == nil {
			if have != nil {
				return false
			}
			continue
		}
		if have == nil || *have != *want {
			return false
		}
	}
	return true
}

// groupKeyOf proyecta el movimiento sobre las dimensiones agrupadas. El valor 0
// representa la dimensión ausente (los ids del dominio empiezan en 1).
func groupKeyOf(m register.Movement, dims []register.Dimension, withPeriod bool) register.Key {
	var k register.Key
	for _, d := range dims {
		if v := m.DimensionValue(d); v != nil {
			setKeyField(&k, d, *v)
		}
	}
	if withPeriod {
		k.Period = register.PeriodDay(m.Period)
	}
	return k
}

func groupDims(m register.Movement, dims []register.Dimension) map[register.Dimension]*int64 {
	if len(dims) == 0 {
		return nil
	}
	out := make(map[register.Dimension]*int64, len(dims))
	for _, d := range dims {
		out[d] = cloneInt64(m.DimensionValue(d))
	}
	return out
}

func keyField(k register.Key, dim register.Dimension) int64 {
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

func setKeyField(k *register.Key, dim register.Dimension, v int64) {
	switch dim {
	case register.DimObject:
		k.Object = v
	case register.DimEstimate:
		k.Estimate = v
	case register.DimWork:
		k.Work = v
	case register.DimEmployee:
		k.Employee = v
	}
}
