package repository

import (
	"context"
	"time"

	"github.com/jsalazar/obracontrol-api/internal/domain/entity"
)

// DailyReportRepository puerto de persistencia para partes diarios.
type DailyReportRepository interface {
	Create(ctx context.Context, report *entity.DailyReport) error
	// Update reemplaza cabecera y ambos juegos de líneas como unidad; solo
	// aplica sobre documentos no contabilizados (ErrConflict en caso contrario).
	Update(ctx context.Context, report *entity.DailyReport) error
	// GetByID devuelve el parte con sus líneas, o (nil, nil) si no existe.
	GetByID(ctx context.Context, id int64) (*entity.DailyReport, error)
	List(ctx context.Context, limit, offset int) ([]*entity.DailyReport, error)
	// SetPosted actualiza el estado de contabilización. postedAt nil = descontabilizado.
	SetPosted(ctx context.Context, id int64, posted bool, postedAt *time.Time) error
}
