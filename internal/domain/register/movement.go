package register

import (
	"time"

	"github.com/shopspring/decimal"
)

// Recorder identifica el documento que originó un juego de movimientos.
type Recorder struct {
	Type string
	ID   int64
}

// Movement es una fila inmutable de un registro de acumulación. Las correcciones
// se hacen borrando y reinsertando el juego completo del recorder, nunca con UPDATE.
// Los montos son siempre >= 0; el signo lo expresa el lado (income/expense) poblado.
type Movement struct {
	RegisterName string
	RecorderType string
	RecorderID   int64
	LineNumber   int // 1-based, posición de la línea origen en el documento

	Period time.Time // fecha (medianoche UTC); eje temporal de saldos y giros

	// Dimensiones opcionales: nil = ausente, que agrupa como su propio bucket.
	ObjectID   *int64
	EstimateID *int64
	WorkID     *int64
	EmployeeID *int64

	QuantityIncome  decimal.Decimal
	QuantityExpense decimal.Decimal
	SumIncome       decimal.Decimal
	SumExpense      decimal.Decimal

	CreatedAt time.Time
}

// Recorder devuelve la identidad del documento dueño del movimiento.
func (m Movement) Recorder() Recorder {
	return Recorder{Type: m.RecorderType, ID: m.RecorderID}
}

// DimensionValue devuelve el valor de una dimensión id (nil si está ausente).
// Switch exhaustivo sobre el enum; DimPeriod no es una dimensión id.
func (m Movement) DimensionValue(dim Dimension) *int64 {
	switch dim {
	case DimObject:
		return m.ObjectID
	case DimEstimate:
		return m.EstimateID
	case DimWork:
		return m.WorkID
	case DimEmployee:
		return m.EmployeeID
	}
	return nil
}

// Day normaliza una fecha al día calendario en UTC (medianoche). Todos los
// períodos de movimientos se almacenan así para que la igualdad sea por valor.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Key es la celda canónica (dimensiones de unicidad + período) de un movimiento.
// Es comparable por valor y usable como clave de mapa en O(1). El valor 0
// representa una dimensión ausente: los identificadores del dominio son
// secuencias que empiezan en 1, por lo que 0 nunca colisiona con un id real.
type Key struct {
	Register string
	Object   int64
	Estimate int64
	Work     int64
	Employee int64
	Period   int64 // días desde época Unix, en UTC
}

// Less define un orden total sobre claves (registro, dimensiones en orden
// canónico, período). Estable y reproducible para la misma entrada.
func (k Key) Less(other Key) bool {
	if k.Register != other.Register {
		return k.Register < other.Register
	}
	if k.Object != other.Object {
		return k.Object < other.Object
	}
	if k.Estimate != other.Estimate {
		return k.Estimate < other.Estimate
	}
	if k.Work != other.Work {
		return k.Work < other.Work
	}
	if k.Employee != other.Employee {
		return k.Employee < other.Employee
	}
	return k.Period < other.Period
}

// PeriodDay convierte una fecha a su número de día Unix (bucket del período).
func PeriodDay(t time.Time) int64 {
	return Day(t).Unix() / 86400
}

// PeriodTime reconstruye la fecha (medianoche UTC) del bucket de período.
func (k Key) PeriodTime() time.Time {
	return time.Unix(k.Period*86400, 0).UTC()
}

// UniquenessKey proyecta el movimiento sobre la tupla de unicidad de su registro
// más el período. Dos movimientos con la misma clave y distinto recorder son
// candidatos a duplicado.
func (d Definition) UniquenessKey(m Movement) Key {
	k := Key{Register: d.Name, Period: PeriodDay(m.Period)}
	for _, dim := range d.Uniqueness {
		v := m.DimensionValue(dim)
		if v == nil {
			continue
		}
		switch dim {
		case DimObject:
			k.Object = *v
		case DimEstimate:
			k.Estimate = *v
		case DimWork:
			k.Work = *v
		case DimEmployee:
			k.Employee = *v
		}
	}
	return k
}

// ValidateMovement revisa un movimiento contra la forma del registro: dimensiones
// obligatorias presentes, dimensiones ajenas ausentes, montos no negativos y
// línea válida. Devuelve el campo y el motivo del primer problema encontrado.
func (d Definition) ValidateMovement(m Movement) (field, reason string, ok bool) {
	if m.LineNumber < 1 {
		return "line_number", "debe ser >= 1", false
	}
	if m.Period.IsZero() {
		return "period", "fecha requerida", false
	}
	for _, dim := range d.Required {
		if m.DimensionValue(dim) == nil {
			return string(dim), "dimensión obligatoria ausente", false
		}
	}
	for _, dim := range []Dimension{DimObject, DimEstimate, DimWork, DimEmployee} {
		if !d.Has(dim) && m.DimensionValue(dim) != nil {
			return string(dim), "dimensión no pertenece al registro", false
		}
	}
	for _, amt := range []struct {
		name string
		v    decimal.Decimal
	}{
		{"quantity_income", m.QuantityIncome},
		{"quantity_expense", m.QuantityExpense},
		{"sum_income", m.SumIncome},
		{"sum_expense", m.SumExpense},
	} {
		if amt.v.IsNegative() {
			return amt.name, "monto negativo", false
		}
	}
	return "", "", true
}
