package postgres

import (
	"context"
	"fmt"
	"hash/fnv"

	"github.com/jackc/pgx/v5/pgxpool"

	appregister "github.com/jsalazar/obracontrol-api/internal/application/register"
	"github.com/jsalazar/obracontrol-api/internal/domain/register"
)

var _ appregister.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL serializada
// por recorder mediante un advisory lock transaccional: dos contabilizaciones
// del mismo documento se encolan, documentos distintos avanzan en paralelo.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunInRecorderTx inicia una transacción, toma el candado del recorder y
// ejecuta fn con repos atados a la tx. Commit al retornar nil; Rollback en
// cualquier otro caso. El candado se libera solo, al cerrar la transacción.
func (r *TxRunner) RunInRecorderTx(ctx context.Context, rec register.Recorder, fn func(repos appregister.TxRepos) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return storageErr("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, recorderLockKey(rec)); err != nil {
		return storageErr("recorder lock", err)
	}

	repos := appregister.TxRepos{
		Movements:    NewRegisterMovementRepository(tx),
		DailyReports: NewDailyReportRepository(tx),
		Timesheets:   NewTimesheetRepository(tx),
		Estimates:    NewEstimateRepository(tx),
		Locks:        NewPeriodLockRepository(tx),
	}

	if err := fn(repos); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return storageErr("commit transaction", err)
	}
	return nil
}

// recorderLockKey deriva la clave bigint del advisory lock. FNV-1a sobre
// "tipo:id": estable entre procesos, colisiones solo encolan de más.
func recorderLockKey(rec register.Recorder) int64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s:%d", rec.Type, rec.ID)
	return int64(h.Sum64())
}
