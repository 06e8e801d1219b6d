package register

import (
	"context"
	"time"

	"github.com/jsalazar/obracontrol-api/internal/domain/entity"
	"github.com/jsalazar/obracontrol-api/internal/domain/register"
)

var _ DocumentHandler = (*EstimateHandler)(nil)

// EstimateHandler adapta el presupuesto de obra al motor de registros: cada
// partida entra como ingreso en obra planificada (el plan entra al registro).
type EstimateHandler struct{}

// NewEstimateHandler construye el handler.
func NewEstimateHandler() *EstimateHandler { return &EstimateHandler{} }

func (h *EstimateHandler) DocType() string { return entity.DocTypeEstimate }

func (h *EstimateHandler) Registers() []string { return []string{register.PlannedWork} }

// Load carga el presupuesto con sus líneas dentro de la transacción.
func (h *EstimateHandler) Load(ctx context.Context, repos TxRepos, id int64) (Document, error) {
	doc, err := repos.Estimates.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}
	return &estimateDocument{doc}, nil
}

func (h *EstimateHandler) SetPosted(ctx context.Context, repos TxRepos, id int64, postedAt *time.Time) error {
	return repos.Estimates.SetPosted(ctx, id, postedAt != nil, postedAt)
}

type estimateDocument struct {
	doc *entity.Estimate
}

func (d *estimateDocument) Recorder() register.Recorder {
	return register.Recorder{Type: entity.DocTypeEstimate, ID: d.doc.ID}
}

func (d *estimateDocument) Date() time.Time { return d.doc.Date }

func (d *estimateDocument) Posted() bool { return d.doc.IsPosted }

// BuildMovements una partida del presupuesto = un ingreso en obra planificada,
// con el propio presupuesto como dimensión estimate.
func (d *estimateDocument) BuildMovements() ([]register.Movement, error) {
	period := register.Day(d.doc.Date)
	movements := make([]register.Movement, 0, len(d.doc.Lines))
	for _, line := range d.doc.Lines {
		objectID := d.doc.ObjectID
		estimateID := d.doc.ID
		workID := line.WorkID
		movements = append(movements, register.Movement{
			RegisterName:   register.PlannedWork,
			RecorderType:   entity.DocTypeEstimate,
			RecorderID:     d.doc.ID,
			LineNumber:     line.LineNumber,
			Period:         period,
			ObjectID:       &objectID,
			EstimateID:     &estimateID,
			WorkID:         &workID,
			QuantityIncome: line.Quantity,
			SumIncome:      line.Amount,
		})
	}
	return movements, nil
}
