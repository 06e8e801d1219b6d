package repository

import (
	"context"

	"github.com/jsalazar/obracontrol-api/internal/domain/register"
)

// RegisterReportRepository puerto de solo lectura para saldos y giros.
// La validación de la consulta (registro y dimensiones) es responsabilidad del
// agregador; las implementaciones asumen consultas ya validadas.
type RegisterReportRepository interface {
	// Balance acumula hasta la fecha de corte inclusive, una fila por
	// combinación distinta de las dimensiones agrupadas. Filas con saldo cero
	// se devuelven igual; el orden es por las dimensiones pedidas, ascendente,
	// ausentes primero.
	Balance(ctx context.Context, q register.BalanceQuery) ([]register.BalanceRow, error)

	// Turnover suma ingresos y egresos dentro del rango [From, To], ambos
	// inclusive, con la misma semántica de agrupación y orden que Balance.
	Turnover(ctx context.Context, q register.TurnoverQuery) ([]register.TurnoverRow, error)
}
