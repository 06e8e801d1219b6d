package register

import (
	"context"

	"github.com/jsalazar/obracontrol-api/internal/domain/register"
	"github.com/jsalazar/obracontrol-api/internal/domain/repository"
)

// TxRepos repositorios atados a una misma transacción. El TxRunner los
// construye sobre la tx y los pasa al callback; fuera de él no deben usarse.
type TxRepos struct {
	Movements    repository.RegisterMovementRepository
	DailyReports repository.DailyReportRepository
	Timesheets   repository.TimesheetRepository
	Estimates    repository.EstimateRepository
	Locks        repository.PeriodLockRepository
}

// TxRunner ejecuta una función dentro de una transacción del almacén, pasando
// repositorios atados a esa tx. Garantiza atomicidad del motor de registros.
type TxRunner interface {
	// RunInRecorderTx ejecuta fn en una transacción serializada contra
	// cualquier otra transacción del mismo recorder (candado por recorder,
	// nunca global: recorders distintos avanzan en paralelo). Contabilizar
	// y descontabilizar pasan siempre por aquí.
	RunInRecorderTx(ctx context.Context, rec register.Recorder, fn func(repos TxRepos) error) error
}

// ReportCache invalidación del caché de reportes. La invalidación debe ser
// síncrona con el commit de cada contabilización que toque el registro.
type ReportCache interface {
	Invalidate(ctx context.Context, registers ...string) error
}
