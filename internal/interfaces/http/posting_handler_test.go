package http_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsalazar/obracontrol-api/internal/application/dto"
	"github.com/jsalazar/obracontrol-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Contabilización individual: parámetros y códigos de error
// ──────────────────────────────────────────────────────────────────────────────

func TestPostingAPI_ParametrosInvalidos(t *testing.T) {
	app := buildTestApp(t)

	// Caso 1: tipo de documento fuera del catálogo → 400 en las tres rutas.
	for _, path := range []string{
		"/api/documents/factura/1/post",
		"/api/documents/factura/1/unpost",
	} {
		resp := doJSON(t, app, http.MethodPost, path, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, readBody(t, resp), "UNKNOWN_DOCUMENT_TYPE", "ruta %s", path)
	}
	resp := doJSON(t, app, http.MethodGet, "/api/documents/factura/1/movements", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "UNKNOWN_DOCUMENT_TYPE")

	// Caso 2: id no numérico o no positivo → 400 INVALID_ID.
	resp = doJSON(t, app, http.MethodPost, "/api/documents/estimate/abc/post", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "INVALID_ID")

	resp = doJSON(t, app, http.MethodPost, "/api/documents/estimate/0/post", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "INVALID_ID")

	// Caso 3: body presente pero malformado → 400 INVALID_BODY.
	resp = doRaw(t, app, http.MethodPost, "/api/documents/estimate/1/post", `{"strict":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "INVALID_BODY")
}

func TestPostingAPI_PeriodoCerrado(t *testing.T) {
	app := buildTestApp(t)

	// Un documento contabilizado antes del cierre, para probar el lado unpost.
	early := createEstimateHTTP(t, app, 1, "PRE-010", "2024-03-10",
		dto.EstimateLineRequest{WorkID: 5, Quantity: dec("3"), Amount: dec("450")},
	)
	postDocument(t, app, entity.DocTypeEstimate, early.ID)

	setPeriodLock(t, app, "2024-04-30")

	// Caso 1: contabilizar un documento fechado dentro del cierre → 409.
	closed := createEstimateHTTP(t, app, 1, "PRE-011", "2024-04-20",
		dto.EstimateLineRequest{WorkID: 5, Quantity: dec("1"), Amount: dec("100")},
	)
	resp := doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/documents/%s/%d/post", entity.DocTypeEstimate, closed.ID), nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "PERIOD_CLOSED")
	assert.False(t, getEstimateHTTP(t, app, closed.ID).IsPosted, "el documento rechazado no debe quedar marcado")

	// Caso 2: descontabilizar un documento cuyos movimientos caen en el cierre → 409.
	resp = doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/documents/%s/%d/unpost", entity.DocTypeEstimate, early.ID), nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "PERIOD_CLOSED")
	assert.True(t, getEstimateHTTP(t, app, early.ID).IsPosted, "el juego del documento queda intacto")

	// Caso 3: mover el cierre hacia atrás reabre el período y el unpost procede.
	setPeriodLock(t, app, "2024-01-31")
	res := unpostDocument(t, app, entity.DocTypeEstimate, early.ID)
	assert.Equal(t, int64(1), res.Removed)
}

func TestPostingAPI_DuplicadoEstrictoYConsultivo(t *testing.T) {
	app := buildTestApp(t)

	// Dos planillas con la misma celda (objeto, empleado, fecha).
	ts1 := createTimesheetHTTP(t, app, 3, "PL-001", "2024-05-15",
		dto.TimesheetLineRequest{EmployeeID: 7, WorkDate: day("2024-05-14"), Hours: dec("8"), Amount: dec("1200")},
	)
	ts2 := createTimesheetHTTP(t, app, 3, "PL-002", "2024-05-15",
		dto.TimesheetLineRequest{EmployeeID: 7, WorkDate: day("2024-05-14"), Hours: dec("6"), Amount: dec("900")},
	)
	postDocument(t, app, entity.DocTypeTimesheet, ts1.ID)

	// Caso 1: en modo estricto el duplicado bloquea la contabilización → 409.
	strict := true
	resp := doJSON(t, app, http.MethodPost,
		fmt.Sprintf("/api/documents/%s/%d/post", entity.DocTypeTimesheet, ts2.ID),
		dto.PostRequest{Strict: &strict},
	)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "DUPLICATE")

	resp = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/timesheets/%d", ts2.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got dto.TimesheetResponse
	decodeBody(t, resp, &got)
	assert.False(t, got.IsPosted, "el documento bloqueado no debe quedar contabilizado")

	// Caso 2: sin body rige el modo consultivo del servidor: contabiliza y avisa.
	postRes := postDocument(t, app, entity.DocTypeTimesheet, ts2.ID)
	assert.Equal(t, 1, postRes.Movements)
	require.Len(t, postRes.Conflicts, 1)
	conflict := postRes.Conflicts[0]
	assert.Equal(t, "payroll", conflict.RegisterName)
	assert.Equal(t, 1, conflict.LineNumber)
	assert.Equal(t, "2024-05-14", conflict.Period)
	assert.Equal(t, entity.DocTypeTimesheet, conflict.ExistingDocumentType)
	assert.Equal(t, ts1.ID, conflict.ExistingDocumentID)
	assert.Equal(t, 1, conflict.ExistingLineNumber)
}

// ──────────────────────────────────────────────────────────────────────────────
// Operaciones masivas
// ──────────────────────────────────────────────────────────────────────────────

func TestPostingAPI_LoteConFallaParcial(t *testing.T) {
	app := buildTestApp(t)

	e1 := createEstimateHTTP(t, app, 1, "PRE-020", "2024-05-10",
		dto.EstimateLineRequest{WorkID: 5, Quantity: dec("2"), Amount: dec("200")},
	)
	e2 := createEstimateHTTP(t, app, 1, "PRE-021", "2024-04-20",
		dto.EstimateLineRequest{WorkID: 5, Quantity: dec("3"), Amount: dec("300")},
	)
	e3 := createEstimateHTTP(t, app, 1, "PRE-022", "2024-05-12",
		dto.EstimateLineRequest{WorkID: 6, Quantity: dec("4"), Amount: dec("400")},
	)
	setPeriodLock(t, app, "2024-04-30")

	// Caso 1: la falla de un documento no aborta el resto del lote.
	resp := doJSON(t, app, http.MethodPost, "/api/documents/bulk", dto.BulkOperationRequest{
		Action:       "post",
		DocumentType: entity.DocTypeEstimate,
		IDs:          []int64{e1.ID, e2.ID, e3.ID},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var res dto.BulkOperationResponse
	decodeBody(t, resp, &res)
	assert.NotEmpty(t, res.OperationID)
	assert.Equal(t, 2, res.Processed)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], fmt.Sprintf("documento %s %d", entity.DocTypeEstimate, e2.ID))
	assert.Contains(t, res.Errors[0], "cerrado")

	assert.True(t, getEstimateHTTP(t, app, e1.ID).IsPosted)
	assert.False(t, getEstimateHTTP(t, app, e2.ID).IsPosted)
	assert.True(t, getEstimateHTTP(t, app, e3.ID).IsPosted)

	// Caso 2: descontabilización masiva; el documento nunca contabilizado cuenta
	// como procesado sin efecto.
	resp = doJSON(t, app, http.MethodPost, "/api/documents/bulk", dto.BulkOperationRequest{
		Action:       "unpost",
		DocumentType: entity.DocTypeEstimate,
		IDs:          []int64{e1.ID, e2.ID, e3.ID},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	res = dto.BulkOperationResponse{}
	decodeBody(t, resp, &res)
	assert.Equal(t, 3, res.Processed)
	assert.Empty(t, res.Errors)

	for _, id := range []int64{e1.ID, e2.ID, e3.ID} {
		assert.False(t, getEstimateHTTP(t, app, id).IsPosted)
	}
}

func TestPostingAPI_LoteInvalido(t *testing.T) {
	app := buildTestApp(t)

	// Caso 1: acción fuera de post/unpost → 400 VALIDATION.
	resp := doJSON(t, app, http.MethodPost, "/api/documents/bulk", dto.BulkOperationRequest{
		Action:       "archivar",
		DocumentType: entity.DocTypeEstimate,
		IDs:          []int64{1},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "VALIDATION")

	// Caso 2: lote sin ids → 400 VALIDATION.
	resp = doJSON(t, app, http.MethodPost, "/api/documents/bulk", dto.BulkOperationRequest{
		Action:       "post",
		DocumentType: entity.DocTypeEstimate,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "VALIDATION")

	// Caso 3: tipo de documento desconocido llega al runner y vuelve como 400.
	resp = doJSON(t, app, http.MethodPost, "/api/documents/bulk", dto.BulkOperationRequest{
		Action:       "post",
		DocumentType: "factura",
		IDs:          []int64{1},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "VALIDATION")

	// Caso 4: body malformado → 400 INVALID_BODY.
	resp = doRaw(t, app, http.MethodPost, "/api/documents/bulk", `{"action":"post",`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "INVALID_BODY")
}
