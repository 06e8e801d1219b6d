package excel

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/jsalazar/obracontrol-api/internal/domain/register"
)

// ReportWriter arma libros xlsx de saldos y giros. Las columnas siguen las
// dimensiones agrupadas en el orden pedido, con los mismos nombres que expone
// la API JSON, para que el export y la respuesta sean intercambiables.
type ReportWriter struct{}

// NewReportWriter construye el escritor.
func NewReportWriter() *ReportWriter {
	return &ReportWriter{}
}

// WriteBalance escribe un libro con una hoja de saldos del registro.
func (w *ReportWriter) WriteBalance(out io.Writer, registerName string, groupBy []register.Dimension, rows []register.BalanceRow) error {
	headers := append(dimensionHeaders(groupBy),
		"quantity_income", "quantity_expense", "quantity_balance",
		"sum_income", "sum_expense", "sum_balance",
	)
	return writeSheet(out, "balance_"+registerName, headers, len(rows), func(i int) []any {
		r := rows[i]
		cells := dimensionCells(groupBy, r.Dimensions, r.Period)
		return append(cells,
			r.QuantityIncome.InexactFloat64(), r.QuantityExpense.InexactFloat64(), r.QuantityBalance.InexactFloat64(),
			r.SumIncome.InexactFloat64(), r.SumExpense.InexactFloat64(), r.SumBalance.InexactFloat64(),
		)
	})
}

// WriteTurnover escribe un libro con una hoja de giros del registro.
func (w *ReportWriter) WriteTurnover(out io.Writer, registerName string, groupBy []register.Dimension, rows []register.TurnoverRow) error {
	headers := append(dimensionHeaders(groupBy),
		"quantity_income", "quantity_expense", "sum_income", "sum_expense",
	)
	return writeSheet(out, "turnover_"+registerName, headers, len(rows), func(i int) []any {
		r := rows[i]
		cells := dimensionCells(groupBy, r.Dimensions, r.Period)
		return append(cells,
			r.QuantityIncome.InexactFloat64(), r.QuantityExpense.InexactFloat64(),
			r.SumIncome.InexactFloat64(), r.SumExpense.InexactFloat64(),
		)
	})
}

func writeSheet(out io.Writer, sheet string, headers []string, rowCount int, cells func(i int) []any) error {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("renombrar hoja: %w", err)
	}

	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("escribir encabezado: %w", err)
		}
	}
	for i := 0; i < rowCount; i++ {
		for col, v := range cells(i) {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("escribir fila %d: %w", i+1, err)
			}
		}
	}
	if err := f.Write(out); err != nil {
		return fmt.Errorf("escribir libro: %w", err)
	}
	return nil
}

func dimensionHeaders(groupBy []register.Dimension) []string {
	headers := make([]string, 0, len(groupBy)+6)
	for _, dim := range groupBy {
		if dim == register.DimPeriod {
			headers = append(headers, "period")
			continue
		}
		headers = append(headers, string(dim)+"_id")
	}
	return headers
}

// dimensionCells proyecta una fila sobre las columnas de dimensión pedidas.
// La dimensión ausente queda como celda vacía.
func dimensionCells(groupBy []register.Dimension, dims map[register.Dimension]*int64, period *time.Time) []any {
	cells := make([]any, 0, len(groupBy)+6)
	for _, dim := range groupBy {
		if dim == register.DimPeriod {
			if period != nil {
				cells = append(cells, period.Format("2006-01-02"))
			} else {
				cells = append(cells, "")
			}
			continue
		}
		if v := dims[dim]; v != nil {
			cells = append(cells, *v)
		} else {
			cells = append(cells, "")
		}
	}
	return cells
}
