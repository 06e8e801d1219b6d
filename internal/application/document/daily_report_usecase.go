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

// DailyReportUseCase casos de uso CRUD para partes diarios.
type DailyReportUseCase struct {
	repo repository.DailyReportRepository
}

// NewDailyReportUseCase construye el caso de uso.
func NewDailyReportUseCase(repo repository.DailyReportRepository) *DailyReportUseCase {
	return &DailyReportUseCase{repo: repo}
}

// Create crea un parte diario sin contabilizar. Debe traer al menos una línea
// de trabajo o de cuadrilla; cada juego se numera 1..n por separado.
func (uc *DailyReportUseCase) Create(ctx context.Context, in dto.CreateDailyReportRequest) (*dto.DailyReportResponse, error) {
	if len(in.WorkLines) == 0 && len(in.CrewLines) == 0 {
		return nil, fmt.Errorf("el parte necesita al menos una línea: %w", domain.ErrInvalidInput)
	}
	report := &entity.DailyReport{
		ObjectID:  in.ObjectID,
		Number:    in.Number,
		Date:      register.Day(in.Date),
		WorkLines: make([]entity.DailyReportWorkLine, 0, len(in.WorkLines)),
		CrewLines: make([]entity.DailyReportCrewLine, 0, len(in.CrewLines)),
	}
	for i, l := range in.WorkLines {
		report.WorkLines = append(report.WorkLines, entity.DailyReportWorkLine{
			LineNumber: i + 1,
			EstimateID: l.EstimateID,
			WorkID:     l.WorkID,
			Quantity:   l.Quantity,
			Amount:     l.Amount,
		})
	}
	for i, l := range in.CrewLines {
		report.CrewLines = append(report.CrewLines, entity.DailyReportCrewLine{
			LineNumber: i + 1,
			EmployeeID: l.EmployeeID,
			EstimateID: l.EstimateID,
			Hours:      l.Hours,
			Amount:     l.Amount,
		})
	}
	if err := uc.repo.Create(ctx, report); err != nil {
		return nil, err
	}
	return toDailyReportResponse(report), nil
}

// Update reemplaza cabecera y ambos juegos de líneas de un parte sin
// contabilizar. Un documento contabilizado no se edita (ErrConflict): primero
// se descontabiliza. Devuelve (nil, nil) si el documento no existe.
func (uc *DailyReportUseCase) Update(ctx context.Context, id int64, in dto.CreateDailyReportRequest) (*dto.DailyReportResponse, error) {
	if len(in.WorkLines) == 0 && len(in.CrewLines) == 0 {
		return nil, fmt.Errorf("el parte necesita al menos una línea: %w", domain.ErrInvalidInput)
	}
	current, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, nil
	}
	if !current.CanModify() {
		return nil, fmt.Errorf("parte diario %d contabilizado, descontabilizar primero: %w", id, domain.ErrConflict)
	}
	report := &entity.DailyReport{
		ID:        id,
		ObjectID:  in.ObjectID,
		Number:    in.Number,
		Date:      register.Day(in.Date),
		CreatedAt: current.CreatedAt,
		WorkLines: make([]entity.DailyReportWorkLine, 0, len(in.WorkLines)),
		CrewLines: make([]entity.DailyReportCrewLine, 0, len(in.CrewLines)),
	}
	for i, l := range in.WorkLines {
		report.WorkLines = append(report.WorkLines, entity.DailyReportWorkLine{
			LineNumber: i + 1,
			EstimateID: l.EstimateID,
			WorkID:     l.WorkID,
			Quantity:   l.Quantity,
			Amount:     l.Amount,
		})
	}
	for i, l := range in.CrewLines {
		report.CrewLines = append(report.CrewLines, entity.DailyReportCrewLine{
			LineNumber: i + 1,
			EmployeeID: l.EmployeeID,
			EstimateID: l.EstimateID,
			Hours:      l.Hours,
			Amount:     l.Amount,
		})
	}
	if err := uc.repo.Update(ctx, report); err != nil {
		return nil, err
	}
	return toDailyReportResponse(report), nil
}

// GetByID obtiene un parte con sus líneas, o (nil, nil) si no existe.
func (uc *DailyReportUseCase) GetByID(ctx context.Context, id int64) (*dto.DailyReportResponse, error) {
	report, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, nil
	}
	return toDailyReportResponse(report), nil
}

// List lista partes diarios (sin líneas) con paginación.
func (uc *DailyReportUseCase) List(ctx context.Context, limit, offset int) (*dto.DailyReportListResponse, error) {
	list, err := uc.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.DailyReportResponse, 0, len(list))
	for _, report := range list {
		items = append(items, *toDailyReportResponse(report))
	}
	return &dto.DailyReportListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

func toDailyReportResponse(report *entity.DailyReport) *dto.DailyReportResponse {
	if report == nil {
		return nil
	}
	out := &dto.DailyReportResponse{
		ID:        report.ID,
		ObjectID:  report.ObjectID,
		Number:    report.Number,
		Date:      report.Date,
		IsPosted:  report.IsPosted,
		PostedAt:  report.PostedAt,
		CreatedAt: report.CreatedAt,
	}
	for _, l := range report.WorkLines {
		out.WorkLines = append(out.WorkLines, dto.DailyReportWorkLineResponse{
			LineNumber: l.LineNumber,
			EstimateID: l.EstimateID,
			WorkID:     l.WorkID,
			Quantity:   l.Quantity,
			Amount:     l.Amount,
		})
	}
	for _, l := range report.CrewLines {
		out.CrewLines = append(out.CrewLines, dto.DailyReportCrewLineResponse{
			LineNumber: l.LineNumber,
			EmployeeID: l.EmployeeID,
			EstimateID: l.EstimateID,
			Hours:      l.Hours,
			Amount:     l.Amount,
		})
	}
	return out
}
