package excel_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jsalazar/obracontrol-api/internal/domain/register"
	"github.com/jsalazar/obracontrol-api/internal/infrastructure/excel"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func i64(v int64) *int64 {
	return &v
}

func dayPtr(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

// reopen vuelve a abrir el libro recién escrito, que es como lo verá el cliente.
func reopen(t *testing.T, buf *bytes.Buffer) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err, "el libro escrito debe poder abrirse")
	t.Cleanup(func() { f.Close() })
	return f
}

func cell(t *testing.T, f *excelize.File, sheet, ref string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, ref)
	require.NoError(t, err)
	return v
}

// Caso: saldo agrupado por trabajo y período; la hoja lleva una columna por
// dimensión con los mismos nombres que la API JSON, y la dimensión ausente
// queda como celda vacía.
func TestReportWriter_SaldoConDimensiones(t *testing.T) {
	rows := []register.BalanceRow{
		{
			Dimensions:      map[register.Dimension]*int64{register.DimWork: i64(5)},
			Period:          dayPtr("2024-01-15"),
			QuantityIncome:  dec("10"),
			QuantityExpense: dec("8"),
			QuantityBalance: dec("2"),
			SumIncome:       dec("2000"),
			SumExpense:      dec("1600"),
			SumBalance:      dec("400"),
		},
		{
			Dimensions:      map[register.Dimension]*int64{register.DimWork: nil},
			QuantityIncome:  dec("3"),
			QuantityExpense: dec("0"),
			QuantityBalance: dec("3"),
			SumIncome:       dec("450"),
			SumExpense:      dec("0"),
			SumBalance:      dec("450"),
		},
	}

	var buf bytes.Buffer
	w := excel.NewReportWriter()
	groupBy := []register.Dimension{register.DimWork, register.DimPeriod}
	require.NoError(t, w.WriteBalance(&buf, "planned_work", groupBy, rows))

	f := reopen(t, &buf)
	require.Equal(t, []string{"balance_planned_work"}, f.GetSheetList())
	const sheet = "balance_planned_work"

	for ref, want := range map[string]string{
		"A1": "work_id",
		"B1": "period",
		"C1": "quantity_income",
		"D1": "quantity_expense",
		"E1": "quantity_balance",
		"F1": "sum_income",
		"G1": "sum_expense",
		"H1": "sum_balance",
	} {
		assert.Equal(t, want, cell(t, f, sheet, ref), "encabezado %s", ref)
	}

	assert.Equal(t, "5", cell(t, f, sheet, "A2"))
	assert.Equal(t, "2024-01-15", cell(t, f, sheet, "B2"))
	assert.Equal(t, "10", cell(t, f, sheet, "C2"))
	assert.Equal(t, "8", cell(t, f, sheet, "D2"))
	assert.Equal(t, "2", cell(t, f, sheet, "E2"))
	assert.Equal(t, "2000", cell(t, f, sheet, "F2"))
	assert.Equal(t, "1600", cell(t, f, sheet, "G2"))
	assert.Equal(t, "400", cell(t, f, sheet, "H2"))

	assert.Equal(t, "", cell(t, f, sheet, "A3"), "el bucket ausente es celda vacía")
	assert.Equal(t, "", cell(t, f, sheet, "B3"), "sin agrupar por período la celda queda vacía")
	assert.Equal(t, "3", cell(t, f, sheet, "C3"))
	assert.Equal(t, "450", cell(t, f, sheet, "F3"))
}

// Caso: giro sin agrupación; solo las cuatro columnas de acumulados y la fila
// de totales.
func TestReportWriter_GiroSinAgrupar(t *testing.T) {
	rows := []register.TurnoverRow{
		{
			QuantityIncome:  dec("5"),
			QuantityExpense: dec("0"),
			SumIncome:       dec("750"),
			SumExpense:      dec("0"),
		},
	}

	var buf bytes.Buffer
	w := excel.NewReportWriter()
	require.NoError(t, w.WriteTurnover(&buf, "payroll", nil, rows))

	f := reopen(t, &buf)
	require.Equal(t, []string{"turnover_payroll"}, f.GetSheetList())
	const sheet = "turnover_payroll"

	assert.Equal(t, "quantity_income", cell(t, f, sheet, "A1"))
	assert.Equal(t, "quantity_expense", cell(t, f, sheet, "B1"))
	assert.Equal(t, "sum_income", cell(t, f, sheet, "C1"))
	assert.Equal(t, "sum_expense", cell(t, f, sheet, "D1"))

	assert.Equal(t, "5", cell(t, f, sheet, "A2"))
	assert.Equal(t, "0", cell(t, f, sheet, "B2"))
	assert.Equal(t, "750", cell(t, f, sheet, "C2"))
	assert.Equal(t, "0", cell(t, f, sheet, "D2"))
}

// Caso: un reporte sin filas deja solo la fila de encabezados.
func TestReportWriter_SinFilas(t *testing.T) {
	var buf bytes.Buffer
	w := excel.NewReportWriter()
	require.NoError(t, w.WriteBalance(&buf, "work_execution", nil, nil))

	f := reopen(t, &buf)
	const sheet = "balance_work_execution"
	assert.Equal(t, "quantity_income", cell(t, f, sheet, "A1"))
	assert.Equal(t, "", cell(t, f, sheet, "A2"))
}
