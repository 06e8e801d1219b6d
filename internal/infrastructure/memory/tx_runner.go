package memory

import (
	"context"

	appregister "github.com/jsalazar/obracontrol-api/internal/application/register"
	"github.com/jsalazar/obracontrol-api/internal/domain/register"
)

var _ appregister.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks serializados por recorder sobre el almacén en
// memoria. Las escrituras del callback se difieren y se aplican todas bajo un
// solo candado de escritura al commit; si el callback falla o el contexto se
// cancela, nada se aplica.
type TxRunner struct {
	s *Store
}

// NewTxRunner construye el runner sobre el almacén.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{s: s}
}

// RunInRecorderTx toma el candado del recorder, ejecuta fn con repos atados al
// tx y aplica las escrituras acumuladas si fn retorna nil.
func (r *TxRunner) RunInRecorderTx(ctx context.Context, rec register.Recorder, fn func(repos appregister.TxRepos) error) error {
	mu := r.s.recorderMutex(rec)
	mu.Lock()
	defer mu.Unlock()

	tx := &storeTx{s: r.s}
	repos := appregister.TxRepos{
		Movements:    &RegisterMovementRepo{txBound{s: r.s, tx: tx}},
		DailyReports: &DailyReportRepo{txBound{s: r.s, tx: tx}},
		Timesheets:   &TimesheetRepo{txBound{s: r.s, tx: tx}},
		Estimates:    &EstimateRepo{txBound{s: r.s, tx: tx}},
		Locks:        &PeriodLockRepo{txBound{s: r.s, tx: tx}},
	}
	if err := fn(repos); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return storageErr("commit", err)
	}
	tx.commit()
	return nil
}
