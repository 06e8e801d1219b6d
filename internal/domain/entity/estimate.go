package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estimate presupuesto de obra: el plan de trabajos de un objeto. Al
// contabilizarse genera ingresos en el registro de obra planificada.
type Estimate struct {
	ID       int64
	ObjectID int64
	Number   string
	Date     time.Time
	PostingState
	CreatedAt time.Time

	Lines []EstimateLine
}

// EstimateLine una partida del presupuesto: trabajo, volumen y monto planeados.
type EstimateLine struct {
	LineNumber int
	WorkID     int64
	Quantity   decimal.Decimal
	Amount     decimal.Decimal
}
