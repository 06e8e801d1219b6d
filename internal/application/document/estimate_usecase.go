package document

import (
	"context"
	"fmt"

	"github.com/jsalazar/obracontrol-api/internal/application/dto"
	"github.com/jsalazar/obracontrol-api/internal/domain"
	"github.com/jsalazar/obracontrol-api/internal/domain/entity"
	"github.com/jsalazar/obracontrol-api/internal/domain/register"
	"github.com/jsalazar/obracontrol-api/internal/domain/repository"
)

// EstimateUseCase casos de uso CRUD para presupuestos. La contabilización no
// pasa por aquí: es del Poster, que corre en su propia transacción.
type EstimateUseCase struct {
	repo repository.EstimateRepository
}

// NewEstimateUseCase construye el caso de uso.
func NewEstimateUseCase(repo repository.EstimateRepository) *EstimateUseCase {
	return &EstimateUseCase{repo: repo}
}

// Create crea un presupuesto sin contabilizar. Las líneas se numeran 1..n en
// el orden recibido; las fechas se normalizan a día calendario UTC.
func (uc *EstimateUseCase) Create(ctx context.Context, in dto.CreateEstimateRequest) (*dto.EstimateResponse, error) {
	est := &entity.Estimate{
		ObjectID: in.ObjectID,
		Number:   in.Number,
		Date:     register.Day(in.Date),
		Lines:    make([]entity.EstimateLine, 0, len(in.Lines)),
	}
	for i, l := range in.Lines {
		est.Lines = append(est.Lines, entity.EstimateLine{
			LineNumber: i + 1,
			WorkID:     l.WorkID,
			Quantity:   l.Quantity,
			Amount:     l.Amount,
		})
	}
	if err := uc.repo.Create(ctx, est); err != nil {
		return nil, err
	}
	return toEstimateResponse(est), nil
}

// Update reemplaza cabecera y líneas de un presupuesto sin contabilizar. Un
// documento contabilizado no se edita (ErrConflict): primero se
// descontabiliza, se corrige y se vuelve a contabilizar. Devuelve (nil, nil)
// si el documento no existe.
func (uc *EstimateUseCase) Update(ctx context.Context, id int64, in dto.CreateEstimateRequest) (*dto.EstimateResponse, error) {
	current, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, nil
	}
	if !current.CanModify() {
		return nil, fmt.Errorf("presupuesto %d contabilizado, descontabilizar primero: %w", id, domain.ErrConflict)
	}
	est := &entity.Estimate{
		ID:        id,
		ObjectID:  in.ObjectID,
		Number:    in.Number,
		Date:      register.Day(in.Date),
		CreatedAt: current.CreatedAt,
		Lines:     make([]entity.EstimateLine, 0, len(in.Lines)),
	}
	for i, l := range in.Lines {
		est.Lines = append(est.Lines, entity.EstimateLine{
			LineNumber: i + 1,
			WorkID:     l.WorkID,
			Quantity:   l.Quantity,
			Amount:     l.Amount,
		})
	}
	if err := uc.repo.Update(ctx, est); err != nil {
		return nil, err
	}
	return toEstimateResponse(est), nil
}

// GetByID obtiene un presupuesto con sus líneas, o (nil, nil) si no existe.
func (uc *EstimateUseCase) GetByID(ctx context.Context, id int64) (*dto.EstimateResponse, error) {
	est, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if est == nil {
		return nil, nil
	}
	return toEstimateResponse(est), nil
}

// List lista presupuestos (sin líneas) con paginación.
func (uc *EstimateUseCase) List(ctx context.Context, limit, offset int) (*dto.EstimateListResponse, error) {
	list, err := uc.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.EstimateResponse, 0, len(list))
	for _, est := range list {
		items = append(items, *toEstimateResponse(est))
	}
	return &dto.EstimateListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

func toEstimateResponse(est *entity.Estimate) *dto.EstimateResponse {
	if est == nil {
		return nil
	}
	out := &dto.EstimateResponse{
		ID:        est.ID,
		ObjectID:  est.ObjectID,
		Number:    est.Number,
		Date:      est.Date,
		IsPosted:  est.IsPosted,
		PostedAt:  est.PostedAt,
		CreatedAt: est.CreatedAt,
	}
	for _, l := range est.Lines {
		out.Lines = append(out.Lines, dto.EstimateLineResponse{
			LineNumber: l.LineNumber,
			WorkID:     l.WorkID,
			Quantity:   l.Quantity,
			Amount:     l.Amount,
		})
	}
	return out
}
