package http_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsalazar/obracontrol-api/internal/application/dto"
	"github.com/jsalazar/obracontrol-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Saldos y giros: filtros, agrupaciones y parámetros inválidos
// ──────────────────────────────────────────────────────────────────────────────

func TestRegisterAPI_FiltrosYBucketNulo(t *testing.T) {
	app := buildTestApp(t)

	// Mismo trabajo ejecutado dentro y fuera de presupuesto.
	report := createDailyReportHTTP(t, app, dto.CreateDailyReportRequest{
		ObjectID: 2,
		Number:   "PD-030",
		Date:     day("2024-02-10"),
		WorkLines: []dto.DailyReportWorkLineRequest{
			{EstimateID: i64(40), WorkID: 5, Quantity: dec("8"), Amount: dec("1600")},
			{WorkID: 5, Quantity: dec("2"), Amount: dec("400")},
		},
	})
	postDocument(t, app, entity.DocTypeDailyReport, report.ID)

	// Caso 1: agrupado por presupuesto, el bucket ausente ordena primero.
	balance := getBalance(t, app, "work_execution", "cutoff=2024-02-29&group_by=estimate")
	require.Len(t, balance.Rows, 2)
	v, ok := balance.Rows[0].Dimensions["estimate"]
	require.True(t, ok)
	assert.Nil(t, v, "la primera fila debe ser el bucket ausente")
	assertDecimal(t, "2", balance.Rows[0].QuantityBalance)
	assert.Equal(t, int64(40), dimValue(t, balance.Rows[1].Dimensions, "estimate"))
	assertDecimal(t, "8", balance.Rows[1].QuantityBalance)

	// Caso 2: estimate=null filtra solo lo no presupuestado.
	balance = getBalance(t, app, "work_execution", "cutoff=2024-02-29&estimate=null")
	require.Len(t, balance.Rows, 1)
	assertDecimal(t, "2", balance.Rows[0].QuantityBalance)

	// Caso 3: filtro por id concreto.
	balance = getBalance(t, app, "work_execution", "cutoff=2024-02-29&estimate=40")
	require.Len(t, balance.Rows, 1)
	assertDecimal(t, "8", balance.Rows[0].QuantityBalance)

	// Caso 4: valores de filtro que no son id positivo ni null → 400.
	for _, query := range []string{
		"cutoff=2024-02-29&work=abc",
		"cutoff=2024-02-29&estimate=-3",
	} {
		resp := doJSON(t, app, http.MethodGet, "/api/registers/work_execution/balance?"+query, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, readBody(t, resp), "INVALID_FILTER", "query %s", query)
	}
}

func TestRegisterAPI_GiroPorRango(t *testing.T) {
	app := buildTestApp(t)

	ts := createTimesheetHTTP(t, app, 3, "PL-030", "2024-05-02",
		dto.TimesheetLineRequest{EmployeeID: 7, WorkDate: day("2024-03-31"), Hours: dec("1"), Amount: dec("150")},
		dto.TimesheetLineRequest{EmployeeID: 7, WorkDate: day("2024-04-01"), Hours: dec("2"), Amount: dec("300")},
		dto.TimesheetLineRequest{EmployeeID: 7, WorkDate: day("2024-04-30"), Hours: dec("3"), Amount: dec("450")},
		dto.TimesheetLineRequest{EmployeeID: 7, WorkDate: day("2024-05-01"), Hours: dec("4"), Amount: dec("600")},
	)
	postDocument(t, app, entity.DocTypeTimesheet, ts.ID)

	// Caso 1: ambos extremos del rango son inclusivos.
	turnover := getTurnover(t, app, "payroll", "from=2024-04-01&to=2024-04-30&group_by=employee")
	assert.Equal(t, "2024-04-01", turnover.From)
	assert.Equal(t, "2024-04-30", turnover.To)
	require.Len(t, turnover.Rows, 1)
	assert.Equal(t, int64(7), dimValue(t, turnover.Rows[0].Dimensions, "employee"))
	assertDecimal(t, "5", turnover.Rows[0].QuantityIncome)

	// Caso 2: agrupar además por período reparte el giro por día.
	turnover = getTurnover(t, app, "payroll", "from=2024-04-01&to=2024-04-30&group_by=employee,period")
	require.Len(t, turnover.Rows, 2)
	require.NotNil(t, turnover.Rows[0].Period)
	assert.Equal(t, "2024-04-01", *turnover.Rows[0].Period)
	assertDecimal(t, "2", turnover.Rows[0].QuantityIncome)
	require.NotNil(t, turnover.Rows[1].Period)
	assert.Equal(t, "2024-04-30", *turnover.Rows[1].Period)
	assertDecimal(t, "3", turnover.Rows[1].QuantityIncome)

	// Caso 3: fechas faltantes → 400 INVALID_DATE.
	resp := doJSON(t, app, http.MethodGet, "/api/registers/payroll/turnover?to=2024-04-30", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "INVALID_DATE")

	// Caso 4: rango invertido → 400 VALIDATION.
	resp = doJSON(t, app, http.MethodGet, "/api/registers/payroll/turnover?from=2024-05-01&to=2024-04-01", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "VALIDATION")
}

func TestRegisterAPI_ConsultasRechazadas(t *testing.T) {
	app := buildTestApp(t)

	// Caso 1: saldo sin fecha de corte → 400 INVALID_DATE.
	resp := doJSON(t, app, http.MethodGet, "/api/registers/work_execution/balance", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "INVALID_DATE")

	// Caso 2: registro fuera del catálogo → 400 VALIDATION.
	resp = doJSON(t, app, http.MethodGet, "/api/registers/materiales/balance?cutoff=2024-02-29", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "VALIDATION")

	// Caso 3: dimensión ajena al registro → 400 INVALID_GROUPING.
	resp = doJSON(t, app, http.MethodGet, "/api/registers/payroll/balance?cutoff=2024-02-29&group_by=work", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "INVALID_GROUPING")
}

// ──────────────────────────────────────────────────────────────────────────────
// Exportación a Excel
// ──────────────────────────────────────────────────────────────────────────────

func TestRegisterAPI_ExportaExcel(t *testing.T) {
	app := buildTestApp(t)

	est := createEstimateHTTP(t, app, 1, "PRE-040", "2024-01-05",
		dto.EstimateLineRequest{WorkID: 5, Quantity: dec("10"), Amount: dec("2000")},
		dto.EstimateLineRequest{WorkID: 6, Quantity: dec("6"), Amount: dec("900")},
	)
	postDocument(t, app, entity.DocTypeEstimate, est.ID)

	// Caso 1: format=xlsx devuelve un libro Excel adjunto.
	resp := doJSON(t, app, http.MethodGet, "/api/registers/planned_work/balance?cutoff=2024-01-31&group_by=work&format=xlsx", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		resp.Header.Get(fiber.HeaderContentType))
	disposition := resp.Header.Get(fiber.HeaderContentDisposition)
	assert.Contains(t, disposition, "attachment")
	assert.Contains(t, disposition, "balance_planned_work_2024-01-31.xlsx")
	body := readBody(t, resp)
	assert.True(t, strings.HasPrefix(body, "PK"), "un xlsx es un zip y empieza con PK")
	assert.Greater(t, len(body), 1000, "el libro debe traer contenido real")

	// Caso 2: el giro exporta igual, con el rango en el nombre del archivo.
	resp = doJSON(t, app, http.MethodGet, "/api/registers/planned_work/turnover?from=2024-01-01&to=2024-01-31&format=xlsx", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		resp.Header.Get(fiber.HeaderContentType))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "turnover_planned_work_2024-01-01_2024-01-31.xlsx")
	assert.True(t, strings.HasPrefix(readBody(t, resp), "PK"))
}

// ──────────────────────────────────────────────────────────────────────────────
// Verificación de duplicados de nómina
// ──────────────────────────────────────────────────────────────────────────────

func TestRegisterAPI_VerificaDuplicadosDeNomina(t *testing.T) {
	app := buildTestApp(t)

	ts := createTimesheetHTTP(t, app, 3, "PL-040", "2024-05-15",
		dto.TimesheetLineRequest{EmployeeID: 7, WorkDate: day("2024-05-14"), Hours: dec("8"), Amount: dec("1200")},
	)
	postDocument(t, app, entity.DocTypeTimesheet, ts.ID)

	cells := []dto.PayrollCellRequest{
		{ObjectID: 3, EmployeeID: 7, Date: day("2024-05-14")},
		{ObjectID: 3, EmployeeID: 8, Date: day("2024-05-14")},
	}

	// Caso 1: la celda ya ocupada se reporta con el documento que la ocupa.
	resp := doJSON(t, app, http.MethodPost, "/api/registers/payroll/check-duplicates",
		dto.CheckPayrollDuplicatesRequest{Cells: cells})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out dto.CheckPayrollDuplicatesResponse
	decodeBody(t, resp, &out)
	require.Len(t, out.Conflicts, 1)
	assert.Equal(t, "payroll", out.Conflicts[0].RegisterName)
	assert.Equal(t, 1, out.Conflicts[0].LineNumber, "line_number refiere al índice 1..n de la celda")
	assert.Equal(t, "2024-05-14", out.Conflicts[0].Period)
	assert.Equal(t, entity.DocTypeTimesheet, out.Conflicts[0].ExistingDocumentType)
	assert.Equal(t, ts.ID, out.Conflicts[0].ExistingDocumentID)
	assert.Equal(t, 1, out.Conflicts[0].ExistingLineNumber)

	// Caso 2: excluir al propio documento deja la verificación limpia, con el
	// arreglo de conflictos presente aunque vacío.
	resp = doJSON(t, app, http.MethodPost, "/api/registers/payroll/check-duplicates",
		dto.CheckPayrollDuplicatesRequest{
			Cells:               cells,
			ExcludeDocumentType: entity.DocTypeTimesheet,
			ExcludeDocumentID:   ts.ID,
		})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), `"conflicts":[]`)

	// Caso 3: un presupuesto distinto cambia la tupla y no choca.
	resp = doJSON(t, app, http.MethodPost, "/api/registers/payroll/check-duplicates",
		dto.CheckPayrollDuplicatesRequest{Cells: []dto.PayrollCellRequest{
			{ObjectID: 3, EstimateID: i64(9), EmployeeID: 7, Date: day("2024-05-14")},
		}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &out)
	assert.Empty(t, out.Conflicts)

	// Caso 4: sin celdas o con celdas inválidas → 400 VALIDATION.
	resp = doJSON(t, app, http.MethodPost, "/api/registers/payroll/check-duplicates",
		dto.CheckPayrollDuplicatesRequest{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "VALIDATION")

	resp = doJSON(t, app, http.MethodPost, "/api/registers/payroll/check-duplicates",
		dto.CheckPayrollDuplicatesRequest{Cells: []dto.PayrollCellRequest{
			{ObjectID: 3, EmployeeID: 0, Date: day("2024-05-14")},
		}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "VALIDATION")

	// Caso 5: body malformado → 400 INVALID_BODY.
	resp = doRaw(t, app, http.MethodPost, "/api/registers/payroll/check-duplicates", `{"cells":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "INVALID_BODY")
}
