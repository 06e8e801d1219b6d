package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/redis/go-redis/v9"

	appregister "github.com/jsalazar/obracontrol-api/internal/application/register"
	"github.com/jsalazar/obracontrol-api/internal/domain/register"
	"github.com/jsalazar/obracontrol-api/internal/domain/repository"
	"github.com/jsalazar/obracontrol-api/pkg/logger"
)

var (
	_ repository.RegisterReportRepository = (*ReportCache)(nil)
	_ appregister.ReportCache             = (*ReportCache)(nil)
)

// ReportCache decora el repositorio de reportes con un caché Redis versionado
// por registro: cada invalidación incrementa la versión del registro y las
// claves viejas simplemente dejan de consultarse (expiran solas por TTL).
// Con cliente nil el caché está apagado y todo pasa directo al repositorio.
// Un Redis caído nunca rompe una lectura: se registra y se consulta el almacén.
type ReportCache struct {
	rdb   *redis.Client
	inner repository.RegisterReportRepository
	ttl   time.Duration
	log   *logger.Logger
}

// NewReportCache construye el decorador. rdb nil = caché apagado.
func NewReportCache(rdb *redis.Client, inner repository.RegisterReportRepository, ttl time.Duration, log *logger.Logger) *ReportCache {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &ReportCache{rdb: rdb, inner: inner, ttl: ttl, log: log}
}

// Balance consulta el caché y cae al repositorio interno si no hay entrada.
func (c *ReportCache) Balance(ctx context.Context, q register.BalanceQuery) ([]register.BalanceRow, error) {
	key, ok := c.cacheKey(ctx, "balance", q.Register, q)
	if ok {
		var rows []register.BalanceRow
		if hit := c.get(ctx, key, &rows); hit {
			return rows, nil
		}
	}
	rows, err := c.inner.Balance(ctx, q)
	if err != nil {
		return nil, err
	}
	if ok {
		c.set(ctx, key, rows)
	}
	return rows, nil
}

// Turnover consulta el caché y cae al repositorio interno si no hay entrada.
func (c *ReportCache) Turnover(ctx context.Context, q register.TurnoverQuery) ([]register.TurnoverRow, error) {
	key, ok := c.cacheKey(ctx, "turnover", q.Register, q)
	if ok {
		var rows []register.TurnoverRow
		if hit := c.get(ctx, key, &rows); hit {
			return rows, nil
		}
	}
	rows, err := c.inner.Turnover(ctx, q)
	if err != nil {
		return nil, err
	}
	if ok {
		c.set(ctx, key, rows)
	}
	return rows, nil
}

// Invalidate sube la versión de cada registro tocado. Debe llamarse síncrono
// con el commit de toda contabilización o descontabilización.
func (c *ReportCache) Invalidate(ctx context.Context, registers ...string) error {
	if c.rdb == nil {
		return nil
	}
	var errs []error
	for _, name := range registers {
		if err := c.rdb.Incr(ctx, versionKey(name)).Err(); err != nil {
			errs = append(errs, fmt.Errorf("invalidar %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// cacheKey arma la clave versionada. ok=false cuando el caché está apagado o
// Redis no responde: el llamador consulta directo.
func (c *ReportCache) cacheKey(ctx context.Context, kind, registerName string, query any) (string, bool) {
	if c.rdb == nil {
		return "", false
	}
	version, err := c.rdb.Get(ctx, versionKey(registerName)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		c.log.Warn().Err(err).Str("register", registerName).Msg("caché de reportes: versión no disponible")
		return "", false
	}
	payload, err := json.Marshal(query)
	if err != nil {
		return "", false
	}
	h := fnv.New64a()
	h.Write(payload)
	return fmt.Sprintf("reports:%s:%s:v%d:%x", kind, registerName, version, h.Sum64()), true
}

func (c *ReportCache) get(ctx context.Context, key string, dest any) bool {
	val, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn().Err(err).Str("key", key).Msg("caché de reportes: lectura fallida")
		}
		return false
	}
	if err := json.Unmarshal(val, dest); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("caché de reportes: entrada corrupta")
		return false
	}
	return true
}

func (c *ReportCache) set(ctx context.Context, key string, rows any) {
	payload, err := json.Marshal(rows)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("caché de reportes: escritura fallida")
	}
}

func versionKey(registerName string) string {
	return "reports:version:" + registerName
}
