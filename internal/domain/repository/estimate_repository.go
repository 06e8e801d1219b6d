package repository

import (
	"context"
	"time"

	"github.com/jsalazar/obracontrol-api/internal/domain/entity"
)

// EstimateRepository puerto de persistencia para presupuestos.
// Update reemplaza cabecera y líneas como unidad; solo aplica sobre documentos
// no contabilizados (ErrConflict en caso contrario).
type EstimateRepository interface {
	Create(ctx context.Context, estimate *entity.Estimate) error
	Update(ctx context.Context, estimate *entity.Estimate) error
	GetByID(ctx context.Context, id int64) (*entity.Estimate, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Estimate, error)
	SetPosted(ctx context.Context, id int64, posted bool, postedAt *time.Time) error
}
