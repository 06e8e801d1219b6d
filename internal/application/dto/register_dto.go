package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// PostRequest body opcional para contabilizar. strict nulo usa el valor por
// defecto configurado en el servidor.
type PostRequest struct {
	Strict *bool `json:"strict,omitempty"`
}

// PostResponse resultado de una contabilización.
type PostResponse struct {
	Movements int                `json:"movements"`
	PostedAt  time.Time          `json:"posted_at"`
	Conflicts []ConflictResponse `json:"conflicts,omitempty"`
}

// UnpostResponse resultado de una descontabilización.
type UnpostResponse struct {
	Removed int64 `json:"removed"`
	NoOp    bool  `json:"no_op"`
}

// ConflictResponse un movimiento propio que choca con el de otro documento ya
// contabilizado (misma tupla de unicidad y período).
type ConflictResponse struct {
	RegisterName         string `json:"register_name"`
	LineNumber           int    `json:"line_number"`
	Period               string `json:"period"`
	ExistingDocumentType string `json:"existing_document_type"`
	ExistingDocumentID   int64  `json:"existing_document_id"`
	ExistingLineNumber   int    `json:"existing_line_number"`
}

// MovementResponse una fila del almacén de movimientos (inspección).
type MovementResponse struct {
	RegisterName    string          `json:"register_name"`
	RecorderType    string          `json:"recorder_type"`
	RecorderID      int64           `json:"recorder_id"`
	LineNumber      int             `json:"line_number"`
	Period          string          `json:"period"`
	ObjectID        *int64          `json:"object_id,omitempty"`
	EstimateID      *int64          `json:"estimate_id,omitempty"`
	WorkID          *int64          `json:"work_id,omitempty"`
	EmployeeID      *int64          `json:"employee_id,omitempty"`
	QuantityIncome  decimal.Decimal `json:"quantity_income"`
	QuantityExpense decimal.Decimal `json:"quantity_expense"`
	SumIncome       decimal.Decimal `json:"sum_income"`
	SumExpense      decimal.Decimal `json:"sum_expense"`
	CreatedAt       time.Time       `json:"created_at"`
}

// MovementListResponse movimientos de un recorder.
type MovementListResponse struct {
	RecorderType string             `json:"recorder_type"`
	RecorderID   int64              `json:"recorder_id"`
	Items        []MovementResponse `json:"items"`
}

// BalanceRowResponse una combinación de dimensiones con sus acumulados al corte.
type BalanceRowResponse struct {
	Dimensions      map[string]*int64 `json:"dimensions,omitempty"`
	Period          *string           `json:"period,omitempty"`
	QuantityIncome  decimal.Decimal   `json:"quantity_income"`
	QuantityExpense decimal.Decimal   `json:"quantity_expense"`
	QuantityBalance decimal.Decimal   `json:"quantity_balance"`
	SumIncome       decimal.Decimal   `json:"sum_income"`
	SumExpense      decimal.Decimal   `json:"sum_expense"`
	SumBalance      decimal.Decimal   `json:"sum_balance"`
}

// BalanceReportResponse saldos de un registro a una fecha de corte.
type BalanceReportResponse struct {
	Register string               `json:"register"`
	Cutoff   string               `json:"cutoff"`
	GroupBy  []string             `json:"group_by,omitempty"`
	Rows     []BalanceRowResponse `json:"rows"`
}

// TurnoverRowResponse una combinación de dimensiones con los giros del rango.
type TurnoverRowResponse struct {
	Dimensions      map[string]*int64 `json:"dimensions,omitempty"`
	Period          *string           `json:"period,omitempty"`
	QuantityIncome  decimal.Decimal   `json:"quantity_income"`
	QuantityExpense decimal.Decimal   `json:"quantity_expense"`
	SumIncome       decimal.Decimal   `json:"sum_income"`
	SumExpense      decimal.Decimal   `json:"sum_expense"`
}

// TurnoverReportResponse giros de un registro dentro de un rango de fechas.
type TurnoverReportResponse struct {
	Register string                `json:"register"`
	From     string                `json:"from"`
	To       string                `json:"to"`
	GroupBy  []string              `json:"group_by,omitempty"`
	Rows     []TurnoverRowResponse `json:"rows"`
}

// PayrollCellRequest celda (objeto, presupuesto, empleado, fecha) a verificar.
type PayrollCellRequest struct {
	ObjectID   int64     `json:"object_id" validate:"required,gt=0"`
	EstimateID *int64    `json:"estimate_id,omitempty" validate:"omitempty,gt=0"`
	EmployeeID int64     `json:"employee_id" validate:"required,gt=0"`
	Date       time.Time `json:"date" validate:"required"`
}

// CheckPayrollDuplicatesRequest verificación previa al guardado: celdas de la
// planilla en edición, con el propio documento excluido si ya existe.
type CheckPayrollDuplicatesRequest struct {
	Cells               []PayrollCellRequest `json:"cells" validate:"required,min=1,dive"`
	ExcludeDocumentType string               `json:"exclude_document_type,omitempty"`
	ExcludeDocumentID   int64                `json:"exclude_document_id,omitempty"`
}

// CheckPayrollDuplicatesResponse choques detectados; line_number refiere al
// índice 1..n de la celda enviada.
type CheckPayrollDuplicatesResponse struct {
	Conflicts []ConflictResponse `json:"conflicts"`
}

// PeriodLockResponse cierre de período vigente. locked_through vacío = sin cierre.
type PeriodLockResponse struct {
	LockedThrough string     `json:"locked_through,omitempty"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

// SetPeriodLockRequest body para PUT /api/period-lock.
type SetPeriodLockRequest struct {
	LockedThrough time.Time `json:"locked_through" validate:"required"`
}
