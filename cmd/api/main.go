package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/jsalazar/obracontrol-api/internal/application/document"
	appregister "github.com/jsalazar/obracontrol-api/internal/application/register"
	"github.com/jsalazar/obracontrol-api/internal/infrastructure/excel"
	"github.com/jsalazar/obracontrol-api/internal/infrastructure/postgres"
	"github.com/jsalazar/obracontrol-api/internal/infrastructure/rediscache"
	httpRouter "github.com/jsalazar/obracontrol-api/internal/interfaces/http"
	"github.com/jsalazar/obracontrol-api/pkg/config"
	"github.com/jsalazar/obracontrol-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	estimateRepo := postgres.NewEstimateRepository(pool)
	dailyReportRepo := postgres.NewDailyReportRepository(pool)
	timesheetRepo := postgres.NewTimesheetRepository(pool)
	movementRepo := postgres.NewRegisterMovementRepository(pool)
	reportRepo := postgres.NewRegisterReportRepository(pool)
	lockRepo := postgres.NewPeriodLockRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Caché de reportes: Redis es opcional, con REDIS_ADDR vacío queda apagado.
	// Un Redis caído en el arranque tampoco es fatal: el caché degrada a
	// consultas directas al almacén.
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis no disponible, caché de reportes apagado")
			rdb = nil
		}
	}
	reports := rediscache.NewReportCache(rdb, reportRepo, cfg.Redis.ReportTTL, log.Component("report_cache"))

	registry := appregister.NewHandlerRegistry(
		appregister.NewEstimateHandler(),
		appregister.NewDailyReportHandler(),
		appregister.NewTimesheetHandler(),
	)
	poster := appregister.NewPoster(txRunner, registry, reports, log.Component("poster"), cfg.Register.PostTimeout)
	bulk := appregister.NewBulkRunner(poster, log.Component("bulk"), cfg.Register.BulkWorkers)
	aggregator := appregister.NewAggregator(reports)
	checker := appregister.NewDuplicateChecker(movementRepo)
	periodLockUC := appregister.NewPeriodLockUseCase(lockRepo)

	estimateUC := document.NewEstimateUseCase(estimateRepo)
	dailyReportUC := document.NewDailyReportUseCase(dailyReportRepo)
	timesheetUC := document.NewTimesheetUseCase(timesheetRepo)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "ObraControl API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		EstimateUC:       estimateUC,
		DailyReportUC:    dailyReportUC,
		TimesheetUC:      timesheetUC,
		Poster:           poster,
		Bulk:             bulk,
		Registry:         registry,
		Aggregator:       aggregator,
		Checker:          checker,
		PeriodLockUC:     periodLockUC,
		Movements:        movementRepo,
		Excel:            excel.NewReportWriter(),
		Validate:         httpRouter.NewValidator(),
		StrictDuplicates: cfg.Register.StrictDuplicates,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("cierre de Redis")
		}
	}

	log.Info().Msg("aplicación detenida")
}
