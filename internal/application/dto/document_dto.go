package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateEstimateRequest body para POST /api/estimates. Las líneas se numeran
// 1..n en el orden recibido.
type CreateEstimateRequest struct {
	ObjectID int64                 `json:"object_id" validate:"required,gt=0"`
	Number   string                `json:"number" validate:"required"`
	Date     time.Time             `json:"date" validate:"required"`
	Lines    []EstimateLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// EstimateLineRequest una partida del presupuesto.
type EstimateLineRequest struct {
	WorkID   int64           `json:"work_id" validate:"required,gt=0"`
	Quantity decimal.Decimal `json:"quantity"`
	Amount   decimal.Decimal `json:"amount"`
}

// EstimateResponse presupuesto con sus líneas.
type EstimateResponse struct {
	ID        int64                  `json:"id"`
	ObjectID  int64                  `json:"object_id"`
	Number    string                 `json:"number"`
	Date      time.Time              `json:"date"`
	IsPosted  bool                   `json:"is_posted"`
	PostedAt  *time.Time             `json:"posted_at,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
	Lines     []EstimateLineResponse `json:"lines,omitempty"`
}

// EstimateLineResponse partida con su número de línea asignado.
type EstimateLineResponse struct {
	LineNumber int             `json:"line_number"`
	WorkID     int64           `json:"work_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	Amount     decimal.Decimal `json:"amount"`
}

// EstimateListResponse listado paginado de presupuestos (sin líneas).
type EstimateListResponse struct {
	Items []EstimateResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// CreateDailyReportRequest body para POST /api/daily-reports. Líneas de trabajo
// y de cuadrilla se numeran 1..n por separado, en el orden recibido.
type CreateDailyReportRequest struct {
	ObjectID  int64                        `json:"object_id" validate:"required,gt=0"`
	Number    string                       `json:"number" validate:"required"`
	Date      time.Time                    `json:"date" validate:"required"`
	WorkLines []DailyReportWorkLineRequest `json:"work_lines" validate:"dive"`
	CrewLines []DailyReportCrewLineRequest `json:"crew_lines" validate:"dive"`
}

// DailyReportWorkLineRequest volumen ejecutado. estimate_id nulo = trabajo
// fuera de presupuesto.
type DailyReportWorkLineRequest struct {
	EstimateID *int64          `json:"estimate_id,omitempty" validate:"omitempty,gt=0"`
	WorkID     int64           `json:"work_id" validate:"required,gt=0"`
	Quantity   decimal.Decimal `json:"quantity"`
	Amount     decimal.Decimal `json:"amount"`
}

// DailyReportCrewLineRequest horas de un empleado en el día del parte.
type DailyReportCrewLineRequest struct {
	EmployeeID int64           `json:"employee_id" validate:"required,gt=0"`
	EstimateID *int64          `json:"estimate_id,omitempty" validate:"omitempty,gt=0"`
	Hours      decimal.Decimal `json:"hours"`
	Amount     decimal.Decimal `json:"amount"`
}

// DailyReportResponse parte diario completo.
type DailyReportResponse struct {
	ID        int64                         `json:"id"`
	ObjectID  int64                         `json:"object_id"`
	Number    string                        `json:"number"`
	Date      time.Time                     `json:"date"`
	IsPosted  bool                          `json:"is_posted"`
	PostedAt  *time.Time                    `json:"posted_at,omitempty"`
	CreatedAt time.Time                     `json:"created_at"`
	WorkLines []DailyReportWorkLineResponse `json:"work_lines,omitempty"`
	CrewLines []DailyReportCrewLineResponse `json:"crew_lines,omitempty"`
}

// DailyReportWorkLineResponse línea de trabajo con su número asignado.
type DailyReportWorkLineResponse struct {
	LineNumber int             `json:"line_number"`
	EstimateID *int64          `json:"estimate_id,omitempty"`
	WorkID     int64           `json:"work_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	Amount     decimal.Decimal `json:"amount"`
}

// DailyReportCrewLineResponse línea de cuadrilla con su número asignado.
type DailyReportCrewLineResponse struct {
	LineNumber int             `json:"line_number"`
	EmployeeID int64           `json:"employee_id"`
	EstimateID *int64          `json:"estimate_id,omitempty"`
	Hours      decimal.Decimal `json:"hours"`
	Amount     decimal.Decimal `json:"amount"`
}

// DailyReportListResponse listado paginado de partes diarios (sin líneas).
type DailyReportListResponse struct {
	Items []DailyReportResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}

// CreateTimesheetRequest body para POST /api/timesheets. Cada línea lleva su
// propia fecha de trabajo, que será el período del movimiento de nómina.
type CreateTimesheetRequest struct {
	ObjectID int64                  `json:"object_id" validate:"required,gt=0"`
	Number   string                 `json:"number" validate:"required"`
	Date     time.Time              `json:"date" validate:"required"`
	Lines    []TimesheetLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// TimesheetLineRequest jornada de un empleado.
type TimesheetLineRequest struct {
	EmployeeID int64           `json:"employee_id" validate:"required,gt=0"`
	EstimateID *int64          `json:"estimate_id,omitempty" validate:"omitempty,gt=0"`
	WorkDate   time.Time       `json:"work_date" validate:"required"`
	Hours      decimal.Decimal `json:"hours"`
	Amount     decimal.Decimal `json:"amount"`
}

// TimesheetResponse planilla completa.
type TimesheetResponse struct {
	ID        int64                   `json:"id"`
	ObjectID  int64                   `json:"object_id"`
	Number    string                  `json:"number"`
	Date      time.Time               `json:"date"`
	IsPosted  bool                    `json:"is_posted"`
	PostedAt  *time.Time              `json:"posted_at,omitempty"`
	CreatedAt time.Time               `json:"created_at"`
	Lines     []TimesheetLineResponse `json:"lines,omitempty"`
}

// TimesheetLineResponse jornada con su número de línea asignado.
type TimesheetLineResponse struct {
	LineNumber int             `json:"line_number"`
	EmployeeID int64           `json:"employee_id"`
	EstimateID *int64          `json:"estimate_id,omitempty"`
	WorkDate   time.Time       `json:"work_date"`
	Hours      decimal.Decimal `json:"hours"`
	Amount     decimal.Decimal `json:"amount"`
}

// TimesheetListResponse listado paginado de planillas (sin líneas).
type TimesheetListResponse struct {
	Items []TimesheetResponse `json:"items"`
	Page  PageResponse        `json:"page"`
}
