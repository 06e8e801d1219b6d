package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyReport parte diario de obra: volúmenes ejecutados y cuadrilla del día.
// Al contabilizarse genera ingresos en ejecución de obra, egresos en obra
// planificada (las líneas que referencian presupuesto consumen plan) e
// ingresos de nómina por las líneas de cuadrilla.
type DailyReport struct {
	ID       int64
	ObjectID int64
	Number   string
	Date     time.Time
	PostingState
	CreatedAt time.Time

	WorkLines []DailyReportWorkLine
	CrewLines []DailyReportCrewLine
}

// DailyReportWorkLine volumen ejecutado de un trabajo. EstimateID nil = trabajo
// fuera de presupuesto (no consume plan).
type DailyReportWorkLine struct {
	LineNumber int
	EstimateID *int64
	WorkID     int64
	Quantity   decimal.Decimal
	Amount     decimal.Decimal
}

// DailyReportCrewLine horas y monto de un empleado en el día del parte.
type DailyReportCrewLine struct {
	LineNumber int
	EmployeeID int64
	EstimateID *int64
	Hours      decimal.Decimal
	Amount     decimal.Decimal
}
