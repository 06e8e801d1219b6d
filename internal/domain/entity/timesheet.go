package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Timesheet planilla de horas: registra jornadas de empleados en un objeto,
// cada línea con su propia fecha de trabajo. Al contabilizarse genera ingresos
// en el registro de nómina con el período de cada línea.
type Timesheet struct {
	ID       int64
	ObjectID int64
	Number   string
	Date     time.Time
	PostingState
	CreatedAt time.Time

	Lines []TimesheetLine
}

// TimesheetLine jornada de un empleado: fecha trabajada, horas y monto.
type TimesheetLine struct {
	LineNumber int
	EmployeeID int64
	EstimateID *int64
	WorkDate   time.Time
	Hours      decimal.Decimal
	Amount     decimal.Decimal
}
