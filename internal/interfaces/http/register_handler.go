package http

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jsalazar/obracontrol-api/internal/application/dto"
	appregister "github.com/jsalazar/obracontrol-api/internal/application/register"
	"github.com/jsalazar/obracontrol-api/internal/domain/register"
	"github.com/jsalazar/obracontrol-api/internal/infrastructure/excel"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// RegisterHandler maneja los reportes de saldos y giros de los registros de
// acumulación y la verificación de duplicados de nómina.
type RegisterHandler struct {
	agg      *appregister.Aggregator
	checker  *appregister.DuplicateChecker
	excel    *excel.ReportWriter
	validate *Validator
}

// NewRegisterHandler construye el handler.
func NewRegisterHandler(agg *appregister.Aggregator, checker *appregister.DuplicateChecker, excel *excel.ReportWriter, validate *Validator) *RegisterHandler {
	return &RegisterHandler{agg: agg, checker: checker, excel: excel, validate: validate}
}

// Balance godoc
// @Summary      Saldos de un registro
// @Description  Acumulados (ingreso, egreso, saldo) hasta la fecha de corte inclusive, agrupados por las dimensiones pedidas. Los filtros van como query params con el nombre de la dimensión; el valor "null" selecciona el bucket ausente. format=xlsx descarga el reporte como libro Excel.
// @Tags         registers
// @Produce      json
// @Param        name      path   string  true   "Registro (planned_work, work_execution, payroll)"
// @Param        cutoff    query  string  true   "Fecha de corte YYYY-MM-DD"
// @Param        group_by  query  string  false  "Dimensiones separadas por coma (p. ej. work,period)"
// @Param        object    query  string  false  "Filtro por objeto (id o null)"
// @Param        estimate  query  string  false  "Filtro por presupuesto (id o null)"
// @Param        work      query  string  false  "Filtro por trabajo (id o null)"
// @Param        employee  query  string  false  "Filtro por empleado (id o null)"
// @Param        format    query  string  false  "xlsx para exportar a Excel"
// @Success      200       {object}  dto.BalanceReportResponse
// @Failure      400       {object}  dto.ErrorResponse
// @Router       /api/registers/{name}/balance [get]
func (h *RegisterHandler) Balance(c *fiber.Ctx) error {
	name := c.Params("name")
	cutoff, ok := queryDay(c, "cutoff")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_DATE", Message: "cutoff requerido en formato YYYY-MM-DD"})
	}
	groupBy := parseGroupBy(c.Query("group_by"))
	filter, err := parseFilters(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_FILTER", Message: err.Error()})
	}

	rows, err := h.agg.Balance(c.Context(), register.BalanceQuery{
		Register: name,
		Cutoff:   cutoff,
		GroupBy:  groupBy,
		Filter:   filter,
	})
	if err != nil {
		return writeError(c, err)
	}

	if c.Query("format") == "xlsx" {
		var buf bytes.Buffer
		if err := h.excel.WriteBalance(&buf, name, groupBy, rows); err != nil {
			return writeError(c, err)
		}
		filename := fmt.Sprintf("balance_%s_%s.xlsx", name, cutoff.Format("2006-01-02"))
		c.Set(fiber.HeaderContentType, xlsxContentType)
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
		return c.Send(buf.Bytes())
	}

	out := dto.BalanceReportResponse{
		Register: name,
		Cutoff:   cutoff.Format("2006-01-02"),
		GroupBy:  dimensionNames(groupBy),
		Rows:     make([]dto.BalanceRowResponse, 0, len(rows)),
	}
	for _, r := range rows {
		out.Rows = append(out.Rows, dto.BalanceRowResponse{
			Dimensions:      toDimensionMap(r.Dimensions),
			Period:          formatDay(r.Period),
			QuantityIncome:  r.QuantityIncome,
			QuantityExpense: r.QuantityExpense,
			QuantityBalance: r.QuantityBalance,
			SumIncome:       r.SumIncome,
			SumExpense:      r.SumExpense,
			SumBalance:      r.SumBalance,
		})
	}
	return c.JSON(out)
}

// Turnover godoc
// @Summary      Giros de un registro
// @Description  Ingresos y egresos dentro del rango [from, to], ambos extremos inclusive, con la misma semántica de agrupación y filtros que el saldo. format=xlsx descarga el reporte como libro Excel.
// @Tags         registers
// @Produce      json
// @Param        name      path   string  true   "Registro (planned_work, work_execution, payroll)"
// @Param        from      query  string  true   "Inicio del rango YYYY-MM-DD"
// @Param        to        query  string  true   "Fin del rango YYYY-MM-DD"
// @Param        group_by  query  string  false  "Dimensiones separadas por coma"
// @Param        object    query  string  false  "Filtro por objeto (id o null)"
// @Param        estimate  query  string  false  "Filtro por presupuesto (id o null)"
// @Param        work      query  string  false  "Filtro por trabajo (id o null)"
// @Param        employee  query  string  false  "Filtro por empleado (id o null)"
// @Param        format    query  string  false  "xlsx para exportar a Excel"
// @Success      200       {object}  dto.TurnoverReportResponse
// @Failure      400       {object}  dto.ErrorResponse
// @Router       /api/registers/{name}/turnover [get]
func (h *RegisterHandler) Turnover(c *fiber.Ctx) error {
	name := c.Params("name")
	from, ok := queryDay(c, "from")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_DATE", Message: "from requerido en formato YYYY-MM-DD"})
	}
	to, ok := queryDay(c, "to")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_DATE", Message: "to requerido en formato YYYY-MM-DD"})
	}
	groupBy := parseGroupBy(c.Query("group_by"))
	filter, err := parseFilters(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_FILTER", Message: err.Error()})
	}

	rows, err := h.agg.Turnover(c.Context(), register.TurnoverQuery{
		Register: name,
		From:     from,
		To:       to,
		GroupBy:  groupBy,
		Filter:   filter,
	})
	if err != nil {
		return writeError(c, err)
	}

	if c.Query("format") == "xlsx" {
		var buf bytes.Buffer
		if err := h.excel.WriteTurnover(&buf, name, groupBy, rows); err != nil {
			return writeError(c, err)
		}
		filename := fmt.Sprintf("turnover_%s_%s_%s.xlsx", name, from.Format("2006-01-02"), to.Format("2006-01-02"))
		c.Set(fiber.HeaderContentType, xlsxContentType)
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
		return c.Send(buf.Bytes())
	}

	out := dto.TurnoverReportResponse{
		Register: name,
		From:     from.Format("2006-01-02"),
		To:       to.Format("2006-01-02"),
		GroupBy:  dimensionNames(groupBy),
		Rows:     make([]dto.TurnoverRowResponse, 0, len(rows)),
	}
	for _, r := range rows {
		out.Rows = append(out.Rows, dto.TurnoverRowResponse{
			Dimensions:      toDimensionMap(r.Dimensions),
			Period:          formatDay(r.Period),
			QuantityIncome:  r.QuantityIncome,
			QuantityExpense: r.QuantityExpense,
			SumIncome:       r.SumIncome,
			SumExpense:      r.SumExpense,
		})
	}
	return c.JSON(out)
}

// CheckDuplicates godoc
// @Summary      Verificar duplicados de nómina
// @Description  Revisa celdas (objeto, presupuesto, empleado, fecha) contra los movimientos de nómina ya contabilizados, sin persistir nada. exclude_document_* omite al documento en edición.
// @Tags         registers
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CheckPayrollDuplicatesRequest  true  "Celdas a verificar"
// @Success      200   {object}  dto.CheckPayrollDuplicatesResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/registers/payroll/check-duplicates [post]
func (h *RegisterHandler) CheckDuplicates(c *fiber.Ctx) error {
	var in dto.CheckPayrollDuplicatesRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if msg, ok := h.validate.Check(in); !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: msg})
	}

	cells := make([]appregister.PayrollCell, 0, len(in.Cells))
	for _, cell := range in.Cells {
		cells = append(cells, appregister.PayrollCell{
			ObjectID:   cell.ObjectID,
			EstimateID: cell.EstimateID,
			EmployeeID: cell.EmployeeID,
			Date:       cell.Date,
		})
	}
	var exclude *register.Recorder
	if in.ExcludeDocumentType != "" && in.ExcludeDocumentID > 0 {
		exclude = &register.Recorder{Type: in.ExcludeDocumentType, ID: in.ExcludeDocumentID}
	}

	conflicts, err := h.checker.CheckPayrollDuplicates(c.Context(), cells, exclude)
	if err != nil {
		return writeError(c, err)
	}
	out := dto.CheckPayrollDuplicatesResponse{Conflicts: toConflictResponses(conflicts)}
	if out.Conflicts == nil {
		out.Conflicts = []dto.ConflictResponse{}
	}
	return c.JSON(out)
}

// queryDay lee un query param de fecha YYYY-MM-DD. ok=false si falta o no parsea.
func queryDay(c *fiber.Ctx, key string) (time.Time, bool) {
	raw := c.Query(key)
	if raw == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// parseGroupBy divide la lista de dimensiones separada por comas. La validación
// de pertenencia al registro la hace el agregador.
func parseGroupBy(raw string) []register.Dimension {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	dims := make([]register.Dimension, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		dims = append(dims, register.Dimension(p))
	}
	return dims
}

// parseFilters arma el filtro de igualdad por dimensión a partir de los query
// params. El valor "null" selecciona el bucket ausente (columna NULL).
func parseFilters(c *fiber.Ctx) (map[register.Dimension]*int64, error) {
	var filter map[register.Dimension]*int64
	for _, dim := range []register.Dimension{register.DimObject, register.DimEstimate, register.DimWork, register.DimEmployee} {
		raw := c.Query(string(dim))
		if raw == "" {
			continue
		}
		if filter == nil {
			filter = make(map[register.Dimension]*int64)
		}
		if raw == "null" {
			filter[dim] = nil
			continue
		}
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v <= 0 {
			return nil, fmt.Errorf("filtro %s: se espera un id positivo o null", dim)
		}
		filter[dim] = &v
	}
	return filter, nil
}

func dimensionNames(groupBy []register.Dimension) []string {
	if len(groupBy) == 0 {
		return nil
	}
	names := make([]string, 0, len(groupBy))
	for _, dim := range groupBy {
		names = append(names, string(dim))
	}
	return names
}

func toDimensionMap(dims map[register.Dimension]*int64) map[string]*int64 {
	if len(dims) == 0 {
		return nil
	}
	out := make(map[string]*int64, len(dims))
	for dim, v := range dims {
		out[string(dim)] = v
	}
	return out
}

func formatDay(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}
