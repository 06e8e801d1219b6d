package register_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appregister "github.com/jsalazar/obracontrol-api/internal/application/register"
	"github.com/jsalazar/obracontrol-api/internal/domain/entity"
	"github.com/jsalazar/obracontrol-api/internal/domain/register"
	"github.com/jsalazar/obracontrol-api/internal/infrastructure/memory"
	"github.com/jsalazar/obracontrol-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixture compartido: motor de registros completo sobre el almacén en memoria,
// con los handlers reales de los tres tipos de documento. Cada test obtiene un
// almacén limpio; los IDs de documento arrancan en 1.
// ──────────────────────────────────────────────────────────────────────────────

type testEngine struct {
	store    *memory.Store
	registry *appregister.HandlerRegistry
	poster   *appregister.Poster
	agg      *appregister.Aggregator
	checker  *appregister.DuplicateChecker
	cache    *recordingCache

	estimates    *memory.EstimateRepo
	dailyReports *memory.DailyReportRepo
	timesheets   *memory.TimesheetRepo
	movements    *memory.RegisterMovementRepo
	locks        *memory.PeriodLockRepo
}

// newTestEngine arma el motor con los handlers de documento reales más los
// extra que pida el test (dobles para casos que necesitan líneas mutables).
func newTestEngine(t *testing.T, extra ...appregister.DocumentHandler) *testEngine {
	t.Helper()
	store := memory.NewStore()
	handlers := append([]appregister.DocumentHandler{
		appregister.NewEstimateHandler(),
		appregister.NewDailyReportHandler(),
		appregister.NewTimesheetHandler(),
	}, extra...)
	registry := appregister.NewHandlerRegistry(handlers...)
	cache := &recordingCache{}
	movements := memory.NewRegisterMovementRepository(store)
	poster := appregister.NewPoster(memory.NewTxRunner(store), registry, cache, testLogger(), 0)
	return &testEngine{
		store:        store,
		registry:     registry,
		poster:       poster,
		agg:          appregister.NewAggregator(memory.NewRegisterReportRepository(store)),
		checker:      appregister.NewDuplicateChecker(movements),
		cache:        cache,
		estimates:    memory.NewEstimateRepository(store),
		dailyReports: memory.NewDailyReportRepository(store),
		timesheets:   memory.NewTimesheetRepository(store),
		movements:    movements,
		locks:        memory.NewPeriodLockRepository(store),
	}
}

func testLogger() *logger.Logger {
	return logger.Nop()
}

// ── Seeds de documentos ───────────────────────────────────────────────────────

func (e *testEngine) createEstimate(t *testing.T, objectID int64, number string, date time.Time, lines ...entity.EstimateLine) *entity.Estimate {
	t.Helper()
	for i := range lines {
		lines[i].LineNumber = i + 1
	}
	est := &entity.Estimate{ObjectID: objectID, Number: number, Date: date, Lines: lines}
	require.NoError(t, e.estimates.Create(context.Background(), est))
	return est
}

func (e *testEngine) createDailyReport(t *testing.T, objectID int64, number string, date time.Time, work []entity.DailyReportWorkLine, crew []entity.DailyReportCrewLine) *entity.DailyReport {
	t.Helper()
	for i := range work {
		work[i].LineNumber = i + 1
	}
	for i := range crew {
		crew[i].LineNumber = i + 1
	}
	rep := &entity.DailyReport{ObjectID: objectID, Number: number, Date: date, WorkLines: work, CrewLines: crew}
	require.NoError(t, e.dailyReports.Create(context.Background(), rep))
	return rep
}

func (e *testEngine) createTimesheet(t *testing.T, objectID int64, number string, date time.Time, lines ...entity.TimesheetLine) *entity.Timesheet {
	t.Helper()
	for i := range lines {
		lines[i].LineNumber = i + 1
	}
	ts := &entity.Timesheet{ObjectID: objectID, Number: number, Date: date, Lines: lines}
	require.NoError(t, e.timesheets.Create(context.Background(), ts))
	return ts
}

// mustPost contabiliza y falla el test ante cualquier error.
func (e *testEngine) mustPost(t *testing.T, docType string, id int64) *appregister.PostResult {
	t.Helper()
	res, err := e.poster.Post(context.Background(), docType, id, appregister.PostOptions{})
	require.NoError(t, err, "contabilizar %s %d no debe fallar", docType, id)
	return res
}

// ── Constructores de líneas ───────────────────────────────────────────────────

func estLine(workID int64, qty, amount string) entity.EstimateLine {
	return entity.EstimateLine{WorkID: workID, Quantity: dec(qty), Amount: dec(amount)}
}

func workLine(estimateID *int64, workID int64, qty, amount string) entity.DailyReportWorkLine {
	return entity.DailyReportWorkLine{EstimateID: estimateID, WorkID: workID, Quantity: dec(qty), Amount: dec(amount)}
}

func crewLine(employeeID int64, estimateID *int64, hours, amount string) entity.DailyReportCrewLine {
	return entity.DailyReportCrewLine{EmployeeID: employeeID, EstimateID: estimateID, Hours: dec(hours), Amount: dec(amount)}
}

func tsLine(employeeID int64, estimateID *int64, workDate time.Time, hours, amount string) entity.TimesheetLine {
	return entity.TimesheetLine{EmployeeID: employeeID, EstimateID: estimateID, WorkDate: workDate, Hours: dec(hours), Amount: dec(amount)}
}

// ── Utilitarios ───────────────────────────────────────────────────────────────

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func i64(v int64) *int64 { return &v }

// assertDecimal compara por valor numérico: 8, 8.0 y 8.000 son iguales.
func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.Truef(t, got.Equal(dec(want)), "esperaba %s, obtuvo %s (%v)", want, got, msgAndArgs)
}

// ── Dobles de prueba ──────────────────────────────────────────────────────────

// recordingCache registra cada invalidación recibida, en orden.
type recordingCache struct {
	mu          sync.Mutex
	invalidated [][]string
}

func (c *recordingCache) Invalidate(_ context.Context, registers ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, registers)
	return nil
}

func (c *recordingCache) calls() [][]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]string, len(c.invalidated))
	copy(out, c.invalidated)
	return out
}

// stubHandler sirve documentos con juegos de movimientos arbitrarios y mutables
// entre contabilizaciones; cubre los casos que los documentos reales (de líneas
// inmutables) no permiten provocar.
type stubHandler struct {
	docs map[int64]*stubDoc
}

const stubDocType = "stub_doc"

func newStubHandler(docs ...*stubDoc) *stubHandler {
	m := make(map[int64]*stubDoc, len(docs))
	for _, d := range docs {
		m[d.id] = d
	}
	return &stubHandler{docs: m}
}

func (h *stubHandler) DocType() string { return stubDocType }

func (h *stubHandler) Registers() []string {
	return []string{register.PlannedWork, register.WorkExecution, register.Payroll}
}

func (h *stubHandler) Load(_ context.Context, _ appregister.TxRepos, id int64) (appregister.Document, error) {
	d, ok := h.docs[id]
	if !ok {
		return nil, nil
	}
	return d, nil
}

func (h *stubHandler) SetPosted(_ context.Context, _ appregister.TxRepos, id int64, postedAt *time.Time) error {
	h.docs[id].posted = postedAt != nil
	return nil
}

type stubDoc struct {
	id        int64
	date      time.Time
	posted    bool
	movements []register.Movement
}

func (d *stubDoc) Recorder() register.Recorder {
	return register.Recorder{Type: stubDocType, ID: d.id}
}

func (d *stubDoc) Date() time.Time { return d.date }

func (d *stubDoc) Posted() bool { return d.posted }

func (d *stubDoc) BuildMovements() ([]register.Movement, error) {
	out := make([]register.Movement, len(d.movements))
	copy(out, d.movements)
	return out, nil
}

// stubMovement movimiento de obra planificada correcto para el doble.
func stubMovement(docID int64, line int, period time.Time, qtyIncome string) register.Movement {
	objectID := int64(1)
	workID := int64(line)
	return register.Movement{
		RegisterName:   register.PlannedWork,
		RecorderType:   stubDocType,
		RecorderID:     docID,
		LineNumber:     line,
		Period:         period,
		ObjectID:       &objectID,
		WorkID:         &workID,
		QuantityIncome: dec(qtyIncome),
	}
}
