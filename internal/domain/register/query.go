package register

import (
	"time"

	"github.com/shopspring/decimal"
)

// BalanceQuery pide saldos acumulados hasta una fecha de corte (inclusive),
// agrupados por un subconjunto de dimensiones del registro y filtrados por
// igualdad exacta sobre dimensiones id. Un filtro con valor nil selecciona el
// bucket "ausente" (columna NULL).
type BalanceQuery struct {
	Register string
	Cutoff   time.Time
	GroupBy  []Dimension
	Filter   map[Dimension]*int64
}

// TurnoverQuery pide giros (ingresos/egresos) dentro de un rango de fechas,
// ambos extremos inclusive, con la misma semántica de agrupación y filtros.
type TurnoverQuery struct {
	Register string
	From     time.Time
	To       time.Time
	GroupBy  []Dimension
	Filter   map[Dimension]*int64
}

// BalanceRow es una combinación distinta de dimensiones con sus acumulados.
// Dimensions trae una entrada por cada dimensión id pedida en GroupBy (nil si
// el grupo corresponde al bucket ausente); Period se llena solo si se agrupó
// por período.
type BalanceRow struct {
	Dimensions map[Dimension]*int64
	Period     *time.Time

	QuantityIncome  decimal.Decimal
	QuantityExpense decimal.Decimal
	QuantityBalance decimal.Decimal // income - expense
	SumIncome       decimal.Decimal
	SumExpense      decimal.Decimal
	SumBalance      decimal.Decimal
}

// TurnoverRow es una combinación distinta de dimensiones con los giros del
// intervalo. No trae saldo: el giro es por definición de alcance acotado.
type TurnoverRow struct {
	Dimensions map[Dimension]*int64
	Period     *time.Time

	QuantityIncome  decimal.Decimal
	QuantityExpense decimal.Decimal
	SumIncome       decimal.Decimal
	SumExpense      decimal.Decimal
}

// IDDimensions devuelve las dimensiones id de la agrupación (sin el período),
// preservando el orden pedido. groupsPeriod indica si GroupBy incluye DimPeriod.
func IDDimensions(groupBy []Dimension) (dims []Dimension, groupsPeriod bool) {
	for _, g := range groupBy {
		if g == DimPeriod {
			groupsPeriod = true
			continue
		}
		dims = append(dims, g)
	}
	return dims, groupsPeriod
}
