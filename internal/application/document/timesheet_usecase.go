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

// TimesheetUseCase casos de uso CRUD para planillas de horas.
type TimesheetUseCase struct {
	repo repository.TimesheetRepository
}

// NewTimesheetUseCase construye el caso de uso.
func NewTimesheetUseCase(repo repository.TimesheetRepository) *TimesheetUseCase {
	return &TimesheetUseCase{repo: repo}
}

// Create crea una planilla sin contabilizar. Las líneas se numeran 1..n en el
// orden recibido; la fecha de trabajo de cada línea se normaliza a día UTC
// porque será el período de su movimiento de nómina.
func (uc *TimesheetUseCase) Create(ctx context.Context, in dto.CreateTimesheetRequest) (*dto.TimesheetResponse, error) {
	sheet := &entity.Timesheet{
		ObjectID: in.ObjectID,
		Number:   in.Number,
		Date:     register.Day(in.Date),
		Lines:    make([]entity.TimesheetLine, 0, len(in.Lines)),
	}
	for i, l := range in.Lines {
		sheet.Lines = append(sheet.Lines, entity.TimesheetLine{
			LineNumber: i + 1,
			EmployeeID: l.EmployeeID,
			EstimateID: l.EstimateID,
			WorkDate:   register.Day(l.WorkDate),
			Hours:      l.Hours,
			Amount:     l.Amount,
		})
	}
	if err := uc.repo.Create(ctx, sheet); err != nil {
		return nil, err
	}
	return toTimesheetResponse(sheet), nil
}

// Update reemplaza cabecera y líneas de una planilla sin contabilizar. Un
// documento contabilizado no se edita (ErrConflict): primero se
// descontabiliza. Devuelve (nil, nil) si el documento no existe.
func (uc *TimesheetUseCase) Update(ctx context.Context, id int64, in dto.CreateTimesheetRequest) (*dto.TimesheetResponse, error) {
	current, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, nil
	}
	if !current.CanModify() {
		return nil, fmt.Errorf("planilla %d contabilizada, descontabilizar primero: %w", id, domain.ErrConflict)
	}
	sheet := &entity.Timesheet{
		ID:        id,
		ObjectID:  in.ObjectID,
		Number:    in.Number,
		Date:      register.Day(in.Date),
		CreatedAt: current.CreatedAt,
		Lines:     make([]entity.TimesheetLine, 0, len(in.Lines)),
	}
	for i, l := range in.Lines {
		sheet.Lines = append(sheet.Lines, entity.TimesheetLine{
			LineNumber: i + 1,
			EmployeeID: l.EmployeeID,
			EstimateID: l.EstimateID,
			WorkDate:   register.Day(l.WorkDate),
			Hours:      l.Hours,
			Amount:     l.Amount,
		})
	}
	if err := uc.repo.Update(ctx, sheet); err != nil {
		return nil, err
	}
	return toTimesheetResponse(sheet), nil
}

// GetByID obtiene una planilla con sus líneas, o (nil, nil) si no existe.
func (uc *TimesheetUseCase) GetByID(ctx context.Context, id int64) (*dto.TimesheetResponse, error) {
	sheet, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sheet == nil {
		return nil, nil
	}
	return toTimesheetResponse(sheet), nil
}

// List lista planillas (sin líneas) con paginación.
func (uc *TimesheetUseCase) List(ctx context.Context, limit, offset int) (*dto.TimesheetListResponse, error) {
	list, err := uc.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.TimesheetResponse, 0, len(list))
	for _, sheet := range list {
		items = append(items, *toTimesheetResponse(sheet))
	}
	return &dto.TimesheetListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

func toTimesheetResponse(sheet *entity.Timesheet) *dto.TimesheetResponse {
	if sheet == nil {
		return nil
	}
	out := &dto.TimesheetResponse{
		ID:        sheet.ID,
		ObjectID:  sheet.ObjectID,
		Number:    sheet.Number,
		Date:      sheet.Date,
		IsPosted:  sheet.IsPosted,
		PostedAt:  sheet.PostedAt,
		CreatedAt: sheet.CreatedAt,
	}
	for _, l := range sheet.Lines {
		out.Lines = append(out.Lines, dto.TimesheetLineResponse{
			LineNumber: l.LineNumber,
			EmployeeID: l.EmployeeID,
			EstimateID: l.EstimateID,
			WorkDate:   l.WorkDate,
			Hours:      l.Hours,
			Amount:     l.Amount,
		})
	}
	return out
}
