package register

import (
	"context"
	"time"

	"github.com/jsalazar/obracontrol-api/internal/domain/entity"
	"github.com/jsalazar/obracontrol-api/internal/domain/register"
)

var _ DocumentHandler = (*TimesheetHandler)(nil)

// TimesheetHandler adapta la planilla de horas al motor de registros: cada
// jornada entra como ingreso de nómina con la fecha trabajada de la línea como
// período (no la fecha del documento: las planillas agrupan días distintos).
type TimesheetHandler struct{}

// NewTimesheetHandler construye el handler.
func NewTimesheetHandler() *TimesheetHandler { return &TimesheetHandler{} }

func (h *TimesheetHandler) DocType() string { return entity.DocTypeTimesheet }

func (h *TimesheetHandler) Registers() []string { return []string{register.Payroll} }

// Load carga la planilla con sus líneas dentro de la transacción.
func (h *TimesheetHandler) Load(ctx context.Context, repos TxRepos, id int64) (Document, error) {
	doc, err := repos.Timesheets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}
	return &timesheetDocument{doc}, nil
}

func (h *TimesheetHandler) SetPosted(ctx context.Context, repos TxRepos, id int64, postedAt *time.Time) error {
	return repos.Timesheets.SetPosted(ctx, id, postedAt != nil, postedAt)
}

type timesheetDocument struct {
	doc *entity.Timesheet
}

func (d *timesheetDocument) Recorder() register.Recorder {
	return register.Recorder{Type: entity.DocTypeTimesheet, ID: d.doc.ID}
}

func (d *timesheetDocument) Date() time.Time { return d.doc.Date }

func (d *timesheetDocument) Posted() bool { return d.doc.IsPosted }

// BuildMovements una jornada = un ingreso de nómina fechado en el día trabajado.
func (d *timesheetDocument) BuildMovements() ([]register.Movement, error) {
	movements := make([]register.Movement, 0, len(d.doc.Lines))
	for _, line := range d.doc.Lines {
		objectID := d.doc.ObjectID
		employeeID := line.EmployeeID
		movements = append(movements, register.Movement{
			RegisterName:   register.Payroll,
			RecorderType:   entity.DocTypeTimesheet,
			RecorderID:     d.doc.ID,
			LineNumber:     line.LineNumber,
			Period:         register.Day(line.WorkDate),
			ObjectID:       &objectID,
			EstimateID:     cloneID(line.EstimateID),
			EmployeeID:     &employeeID,
			QuantityIncome: line.Hours,
			SumIncome:      line.Amount,
		})
	}
	return movements, nil
}
