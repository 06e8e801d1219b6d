package register

import (
	"context"
	"time"

	"github.com/jsalazar/obracontrol-api/internal/domain/entity"
	"github.com/jsalazar/obracontrol-api/internal/domain/register"
)

var _ DocumentHandler = (*DailyReportHandler)(nil)

// DailyReportHandler adapta el parte diario al motor de registros. Es el
// documento con más efectos: volúmenes ejecutados como ingreso en ejecución de
// obra, consumo de plan como egreso en obra planificada (solo líneas con
// presupuesto) y horas de cuadrilla como ingreso de nómina.
type DailyReportHandler struct{}

// NewDailyReportHandler construye el handler.
func NewDailyReportHandler() *DailyReportHandler { return &DailyReportHandler{} }

func (h *DailyReportHandler) DocType() string { return entity.DocTypeDailyReport }

func (h *DailyReportHandler) Registers() []string {
	return []string{register.WorkExecution, register.PlannedWork, register.Payroll}
}

// Load carga el parte con sus líneas de trabajo y de cuadrilla.
func (h *DailyReportHandler) Load(ctx context.Context, repos TxRepos, id int64) (Document, error) {
	doc, err := repos.DailyReports.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}
	return &dailyReportDocument{doc}, nil
}

func (h *DailyReportHandler) SetPosted(ctx context.Context, repos TxRepos, id int64, postedAt *time.Time) error {
	return repos.DailyReports.SetPosted(ctx, id, postedAt != nil, postedAt)
}

type dailyReportDocument struct {
	doc *entity.DailyReport
}

func (d *dailyReportDocument) Recorder() register.Recorder {
	return register.Recorder{Type: entity.DocTypeDailyReport, ID: d.doc.ID}
}

func (d *dailyReportDocument) Date() time.Time { return d.doc.Date }

func (d *dailyReportDocument) Posted() bool { return d.doc.IsPosted }

// BuildMovements el grupo de movimientos de la línea de trabajo N conserva el
// número N en ambos registros: ingreso en ejecución y, si la línea referencia
// un presupuesto, egreso en obra planificada (consumo del plan). Las líneas de
// cuadrilla numeran por su cuenta dentro del registro de nómina.
func (d *dailyReportDocument) BuildMovements() ([]register.Movement, error) {
	period := register.Day(d.doc.Date)
	movements := make([]register.Movement, 0, 2*len(d.doc.WorkLines)+len(d.doc.CrewLines))

	for _, line := range d.doc.WorkLines {
		objectID := d.doc.ObjectID
		workID := line.WorkID
		movements = append(movements, register.Movement{
			RegisterName:   register.WorkExecution,
			RecorderType:   entity.DocTypeDailyReport,
			RecorderID:     d.doc.ID,
			LineNumber:     line.LineNumber,
			Period:         period,
			ObjectID:       &objectID,
			EstimateID:     cloneID(line.EstimateID),
			WorkID:         &workID,
			QuantityIncome: line.Quantity,
			SumIncome:      line.Amount,
		})
		if line.EstimateID == nil {
			continue // trabajo fuera de presupuesto: no consume plan
		}
		expObjectID := d.doc.ObjectID
		expWorkID := line.WorkID
		movements = append(movements, register.Movement{
			RegisterName:    register.PlannedWork,
			RecorderType:    entity.DocTypeDailyReport,
			RecorderID:      d.doc.ID,
			LineNumber:      line.LineNumber,
			Period:          period,
			ObjectID:        &expObjectID,
			EstimateID:      cloneID(line.EstimateID),
			WorkID:          &expWorkID,
			QuantityExpense: line.Quantity,
			SumExpense:      line.Amount,
		})
	}

	for _, line := range d.doc.CrewLines {
		objectID := d.doc.ObjectID
		employeeID := line.EmployeeID
		movements = append(movements, register.Movement{
			RegisterName:   register.Payroll,
			RecorderType:   entity.DocTypeDailyReport,
			RecorderID:     d.doc.ID,
			LineNumber:     line.LineNumber,
			Period:         period,
			ObjectID:       &objectID,
			EstimateID:     cloneID(line.EstimateID),
			EmployeeID:     &employeeID,
			QuantityIncome: line.Hours,
			SumIncome:      line.Amount,
		})
	}
	return movements, nil
}

// cloneID copia un id opcional para que el movimiento no comparta memoria con
// la línea del documento.
func cloneID(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
