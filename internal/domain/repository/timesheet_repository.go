package repository

import (
	"context"
	"time"

	"github.com/jsalazar/obracontrol-api/internal/domain/entity"
)

// TimesheetRepository puerto de persistencia para planillas de horas.
// Update reemplaza cabecera y líneas como unidad; solo aplica sobre documentos
// no contabilizados (ErrConflict en caso contrario).
type TimesheetRepository interface {
	Create(ctx context.Context, sheet *entity.Timesheet) error
	Update(ctx context.Context, sheet *entity.Timesheet) error
	GetByID(ctx context.Context, id int64) (*entity.Timesheet, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Timesheet, error)
	SetPosted(ctx context.Context, id int64, posted bool, postedAt *time.Time) error
}
