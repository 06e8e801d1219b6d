package memory

import (
	"errors"
	"sync"
	"time"

	"github.com/jsalazar/obracontrol-api/internal/domain"
	"github.com/jsalazar/obracontrol-api/internal/domain/entity"
	"github.com/jsalazar/obracontrol-api/internal/domain/register"
)

// Store almacén en memoria con la misma semántica observable que el adaptador
// de PostgreSQL: las escrituras de una contabilización se aplican como unidad
// bajo el candado de escritura (los lectores ven el estado previo o el
// posterior, nunca uno intermedio) y las transacciones del mismo recorder se
// serializan. Pensado para desarrollo y pruebas; no persiste nada.
type Store struct {
	mu sync.RWMutex

	movements []register.Movement

	estimates    map[int64]*entity.Estimate
	dailyReports map[int64]*entity.DailyReport
	timesheets   map[int64]*entity.Timesheet

	nextEstimateID    int64
	nextDailyReportID int64
	nextTimesheetID   int64

	lock *entity.PeriodLock

	recMu     sync.Mutex
	recorders map[register.Recorder]*sync.Mutex
}

// NewStore construye un almacén vacío.
func NewStore() *Store {
	return &Store{
		estimates:    make(map[int64]*entity.Estimate),
		dailyReports: make(map[int64]*entity.DailyReport),
		timesheets:   make(map[int64]*entity.Timesheet),
		recorders:    make(map[register.Recorder]*sync.Mutex),
	}
}

// recorderMutex devuelve el mutex propio del recorder, creándolo la primera vez.
// Equivale al pg_advisory_xact_lock del adaptador de PostgreSQL.
func (s *Store) recorderMutex(rec register.Recorder) *sync.Mutex {
	s.recMu.Lock()
	defer s.recMu.Unlock()
	m, ok := s.recorders[rec]
	if !ok {
		m = &sync.Mutex{}
		s.recorders[rec] = m
	}
	return m
}

// op es una mutación que se aplica con el candado de escritura ya tomado.
type op func(s *Store)

// storeTx acumula mutaciones y las aplica todas bajo un solo candado de
// escritura. Descartar el tx sin commit equivale a un rollback: el estado
// comprometido nunca se tocó. Las lecturas dentro del tx ven el estado
// comprometido; el flujo de contabilización siempre lee antes de escribir.
type storeTx struct {
	s   *Store
	ops []op
}

func (t *storeTx) buffer(o op) { t.ops = append(t.ops, o) }

func (t *storeTx) commit() {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	for _, o := range t.ops {
		o(t.s)
	}
}

// txBound da a cada repositorio el mismo comportamiento dual que los
// adaptadores de PostgreSQL (pool o tx): con tx las escrituras se difieren al
// commit; sin tx se aplican de inmediato.
type txBound struct {
	s  *Store
	tx *storeTx
}

func (b txBound) run(o op) {
	if b.tx != nil {
		b.tx.buffer(o)
		return
	}
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	o(b.s)
}

func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *domain.StorageError
	if errors.As(err, &se) {
		return err
	}
	return &domain.StorageError{Op: op, Err: err}
}

func cloneInt64(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneTime(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	t := *p
	return &t
}

func cloneMovement(m register.Movement) register.Movement {
	m.ObjectID = cloneInt64(m.ObjectID)
	m.EstimateID = cloneInt64(m.EstimateID)
	m.WorkID = cloneInt64(m.WorkID)
	m.EmployeeID = cloneInt64(m.EmployeeID)
	return m
}
