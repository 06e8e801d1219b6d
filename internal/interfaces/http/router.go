package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jsalazar/obracontrol-api/internal/application/document"
	appregister "github.com/jsalazar/obracontrol-api/internal/application/register"
	"github.com/jsalazar/obracontrol-api/internal/domain/repository"
	"github.com/jsalazar/obracontrol-api/internal/infrastructure/excel"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	EstimateUC    *document.EstimateUseCase
	DailyReportUC *document.DailyReportUseCase
	TimesheetUC   *document.TimesheetUseCase

	Poster       *appregister.Poster
	Bulk         *appregister.BulkRunner
	Registry     *appregister.HandlerRegistry
	Aggregator   *appregister.Aggregator
	Checker      *appregister.DuplicateChecker
	PeriodLockUC *appregister.PeriodLockUseCase

	Movements repository.RegisterMovementRepository
	Excel     *excel.ReportWriter
	Validate  *Validator

	// StrictDuplicates valor por defecto del modo estricto al contabilizar;
	// el body de cada petición puede sobrescribirlo.
	StrictDuplicates bool
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Presupuestos
	estimates := api.Group("/estimates")
	estimateHandler := NewEstimateHandler(deps.EstimateUC, deps.Validate)
	estimates.Post("/", estimateHandler.Create)
	estimates.Get("/", estimateHandler.List)
	estimates.Get("/:id", estimateHandler.GetByID)
	estimates.Put("/:id", estimateHandler.Update)

	// Partes diarios
	dailyReports := api.Group("/daily-reports")
	dailyReportHandler := NewDailyReportHandler(deps.DailyReportUC, deps.Validate)
	dailyReports.Post("/", dailyReportHandler.Create)
	dailyReports.Get("/", dailyReportHandler.List)
	dailyReports.Get("/:id", dailyReportHandler.GetByID)
	dailyReports.Put("/:id", dailyReportHandler.Update)

	// Planillas de horas
	timesheets := api.Group("/timesheets")
	timesheetHandler := NewTimesheetHandler(deps.TimesheetUC, deps.Validate)
	timesheets.Post("/", timesheetHandler.Create)
	timesheets.Get("/", timesheetHandler.List)
	timesheets.Get("/:id", timesheetHandler.GetByID)
	timesheets.Put("/:id", timesheetHandler.Update)

	// Contabilización (genérico sobre el tipo de documento)
	documents := api.Group("/documents")
	postingHandler := NewPostingHandler(deps.Poster, deps.Bulk, deps.Registry, deps.Movements, deps.Validate, deps.StrictDuplicates)
	documents.Post("/bulk", postingHandler.Bulk)
	documents.Post("/:type/:id/post", postingHandler.Post)
	documents.Post("/:type/:id/unpost", postingHandler.Unpost)
	documents.Get("/:type/:id/movements", postingHandler.Movements)

	// Reportes de registros
	registers := api.Group("/registers")
	registerHandler := NewRegisterHandler(deps.Aggregator, deps.Checker, deps.Excel, deps.Validate)
	registers.Post("/payroll/check-duplicates", registerHandler.CheckDuplicates)
	registers.Get("/:name/balance", registerHandler.Balance)
	registers.Get("/:name/turnover", registerHandler.Turnover)

	// Cierre de período
	periodLockHandler := NewPeriodLockHandler(deps.PeriodLockUC, deps.Validate)
	api.Get("/period-lock", periodLockHandler.Get)
	api.Put("/period-lock", periodLockHandler.Set)
}
