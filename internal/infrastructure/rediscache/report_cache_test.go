package rediscache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsalazar/obracontrol-api/internal/domain/register"
	"github.com/jsalazar/obracontrol-api/internal/domain/repository"
	"github.com/jsalazar/obracontrol-api/internal/infrastructure/rediscache"
	"github.com/jsalazar/obracontrol-api/pkg/logger"
)

var _ repository.RegisterReportRepository = (*stubReports)(nil)

// stubReports repositorio de reportes fijo que cuenta las consultas recibidas.
type stubReports struct {
	balanceCalls  int
	turnoverCalls int
	err           error
}

func (s *stubReports) Balance(ctx context.Context, q register.BalanceQuery) ([]register.BalanceRow, error) {
	s.balanceCalls++
	if s.err != nil {
		return nil, s.err
	}
	return []register.BalanceRow{{QuantityBalance: decimal.RequireFromString("7")}}, nil
}

func (s *stubReports) Turnover(ctx context.Context, q register.TurnoverQuery) ([]register.TurnoverRow, error) {
	s.turnoverCalls++
	if s.err != nil {
		return nil, s.err
	}
	return []register.TurnoverRow{{QuantityIncome: decimal.RequireFromString("4")}}, nil
}

// Caso: con cliente nil el caché está apagado; cada lectura va directo al
// repositorio y la invalidación es un no-op sin error.
func TestReportCache_ApagadoDelegaAlRepositorio(t *testing.T) {
	inner := &stubReports{}
	cache := rediscache.NewReportCache(nil, inner, time.Minute, logger.Nop())
	ctx := context.Background()

	q := register.BalanceQuery{Register: "planned_work", Cutoff: time.Now()}
	rows, err := cache.Balance(ctx, q)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].QuantityBalance.Equal(decimal.RequireFromString("7")))

	_, err = cache.Balance(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.balanceCalls, "apagado no debe memorizar nada entre consultas")

	turns, err := cache.Turnover(ctx, register.TurnoverQuery{Register: "payroll"})
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, 1, inner.turnoverCalls)

	assert.NoError(t, cache.Invalidate(ctx, "planned_work", "payroll"))
}

// Caso: el error del repositorio se propaga tal cual al llamador.
func TestReportCache_ErrorDelRepositorio(t *testing.T) {
	boom := errors.New("consulta fallida")
	cache := rediscache.NewReportCache(nil, &stubReports{err: boom}, 0, logger.Nop())

	_, err := cache.Balance(context.Background(), register.BalanceQuery{Register: "planned_work"})
	assert.ErrorIs(t, err, boom)

	_, err = cache.Turnover(context.Background(), register.TurnoverQuery{Register: "planned_work"})
	assert.ErrorIs(t, err, boom)
}
