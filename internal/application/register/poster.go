package register

import (
	"context"
	"errors"
	"time"

	"github.com/jsalazar/obracontrol-api/internal/domain"
	"github.com/jsalazar/obracontrol-api/internal/domain/entity"
	"github.com/jsalazar/obracontrol-api/internal/domain/register"
	"github.com/jsalazar/obracontrol-api/pkg/logger"
)

// PostOptions opciones de una contabilización.
type PostOptions struct {
	// Strict rechaza la operación completa si hay conflictos de duplicado.
	// En modo normal los conflictos solo se devuelven como advertencia.
	Strict bool
}

// PostResult resultado de una contabilización exitosa.
type PostResult struct {
	Movements int
	Conflicts []Conflict
	PostedAt  time.Time
}

// UnpostResult resultado de una descontabilización exitosa.
type UnpostResult struct {
	Removed int64
	// NoOp indica que el documento ya estaba descontabilizado y no se tocó nada.
	NoOp bool
}

// Poster orquesta contabilizar y descontabilizar documentos contra los
// registros de acumulación. Cada operación corre completa dentro de una
// transacción serializada por recorder: o se aplica todo el juego de
// movimientos o el estado queda exactamente como antes.
type Poster struct {
	tx       TxRunner
	registry *HandlerRegistry
	cache    ReportCache
	log      *logger.Logger
	timeout  time.Duration
}

// NewPoster construye el contabilizador. cache puede ser nil (sin caché de
// reportes); timeout cero desactiva el límite por operación.
func NewPoster(tx TxRunner, registry *HandlerRegistry, cache ReportCache, log *logger.Logger, timeout time.Duration) *Poster {
	return &Poster{tx: tx, registry: registry, cache: cache, log: log, timeout: timeout}
}

// Post contabiliza el documento: construye el juego completo de movimientos a
// partir de sus líneas actuales y reemplaza de forma atómica cualquier juego
// anterior del mismo recorder (borrar + insertar dentro de una transacción).
// Re-contabilizar es la vía de corrección: con líneas idénticas el estado
// almacenado queda idéntico; con líneas distintas solo sobrevive el juego
// nuevo. Los conflictos de duplicado son advertencia salvo en modo estricto.
func (p *Poster) Post(ctx context.Context, docType string, id int64, opts PostOptions) (*PostResult, error) {
	h, ok := p.registry.Get(docType)
	if !ok {
		return nil, &domain.ValidationError{DocType: docType, DocID: id, Field: "document_type", Reason: "tipo de documento desconocido"}
	}
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	rec := register.Recorder{Type: h.DocType(), ID: id}
	var res PostResult
	err := p.tx.RunInRecorderTx(ctx, rec, func(repos TxRepos) error {
		doc, err := h.Load(ctx, repos, id)
		if err != nil {
			return err
		}
		if doc == nil {
			return domain.ErrNotFound
		}

		lock, err := repos.Locks.Get(ctx)
		if err != nil {
			return err
		}
		if lock.Covers(register.Day(doc.Date())) {
			return &domain.AlreadyClosedError{DocType: docType, DocID: id, Period: register.Day(doc.Date()), LockedThrough: lock.LockedThrough}
		}

		movements, err := doc.BuildMovements()
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		for i := range movements {
			movements[i].CreatedAt = now
		}
		if err := p.validate(docType, id, rec, lock, movements); err != nil {
			return err
		}

		checker := NewDuplicateChecker(repos.Movements)
		conflicts, err := checker.FindConflicts(ctx, movements)
		if err != nil {
			return err
		}
		res.Conflicts = conflicts
		if opts.Strict && len(conflicts) > 0 {
			return &DuplicateError{Conflicts: conflicts}
		}

		// Reemplazo atómico: borrar el juego anterior e insertar el nuevo
		// dentro de la misma transacción da semántica de upsert idempotente.
		for _, name := range h.Registers() {
			if _, err := repos.Movements.DeleteByRecorder(ctx, name, rec.Type, rec.ID); err != nil {
				return err
			}
		}
		if err := repos.Movements.Append(ctx, movements); err != nil {
			return err
		}
		if err := h.SetPosted(ctx, repos, id, &now); err != nil {
			return err
		}
		res.Movements = len(movements)
		res.PostedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}

	p.invalidate(ctx, h.Registers())
	p.log.Info().
		Str("document", docType).
		Int64("id", id).
		Int("movements", res.Movements).
		Int("conflicts", len(res.Conflicts)).
		Msg("documento contabilizado")
	return &res, nil
}

// Unpost descontabiliza el documento: borra todos sus movimientos y limpia el
// estado de contabilización. Descontabilizar un documento ya descontabilizado
// es éxito sin efecto (soporta reintentos).
func (p *Poster) Unpost(ctx context.Context, docType string, id int64) (*UnpostResult, error) {
	h, ok := p.registry.Get(docType)
	if !ok {
		return nil, &domain.ValidationError{DocType: docType, DocID: id, Field: "document_type", Reason: "tipo de documento desconocido"}
	}
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	rec := register.Recorder{Type: h.DocType(), ID: id}
	var res UnpostResult
	err := p.tx.RunInRecorderTx(ctx, rec, func(repos TxRepos) error {
		doc, err := h.Load(ctx, repos, id)
		if err != nil {
			return err
		}
		if doc == nil {
			return domain.ErrNotFound
		}
		if !doc.Posted() {
			res.NoOp = true
			return nil
		}

		lock, err := repos.Locks.Get(ctx)
		if err != nil {
			return err
		}
		if lock.Covers(register.Day(doc.Date())) {
			return &domain.AlreadyClosedError{DocType: docType, DocID: id, Period: register.Day(doc.Date()), LockedThrough: lock.LockedThrough}
		}
		// Retirar movimientos con fecha dentro del cierre también alteraría
		// saldos de un período cerrado (líneas de planilla retrofechadas).
		existing, err := repos.Movements.QueryByRecorder(ctx, rec.Type, rec.ID)
		if err != nil {
			return err
		}
		for _, m := range existing {
			if lock.Covers(m.Period) {
				return &domain.AlreadyClosedError{DocType: docType, DocID: id, Period: m.Period, LockedThrough: lock.LockedThrough}
			}
		}

		for _, name := range h.Registers() {
			n, err := repos.Movements.DeleteByRecorder(ctx, name, rec.Type, rec.ID)
			if err != nil {
				return err
			}
			res.Removed += n
		}
		return h.SetPosted(ctx, repos, id, nil)
	})
	if err != nil {
		return nil, err
	}

	if !res.NoOp {
		p.invalidate(ctx, h.Registers())
	}
	p.log.Info().
		Str("document", docType).
		Int64("id", id).
		Int64("removed", res.Removed).
		Bool("noop", res.NoOp).
		Msg("documento descontabilizado")
	return &res, nil
}

// validate revisa cada movimiento contra la forma de su registro y contra el
// recorder esperado, y que ningún período caiga dentro del cierre. Devuelve
// ValidationError con la línea que falla; nada se escribe si algo falla.
func (p *Poster) validate(docType string, id int64, rec register.Recorder, lock *entity.PeriodLock, movements []register.Movement) error {
	for _, m := range movements {
		def, ok := register.Lookup(m.RegisterName)
		if !ok {
			return &domain.ValidationError{DocType: docType, DocID: id, Line: m.LineNumber, Field: "register_name", Reason: "registro desconocido"}
		}
		if m.Recorder() != rec {
			return &domain.ValidationError{DocType: docType, DocID: id, Line: m.LineNumber, Field: "recorder", Reason: "movimiento atribuido a otro recorder"}
		}
		if field, reason, ok := def.ValidateMovement(m); !ok {
			return &domain.ValidationError{DocType: docType, DocID: id, Line: m.LineNumber, Field: field, Reason: reason}
		}
		if lock.Covers(m.Period) {
			return &domain.AlreadyClosedError{DocType: docType, DocID: id, Period: m.Period, LockedThrough: lock.LockedThrough}
		}
	}
	return nil
}

// invalidate limpia el caché de reportes de los registros afectados. La
// transacción ya está confirmada: una falla aquí se registra y no se propaga.
func (p *Poster) invalidate(ctx context.Context, registers []string) {
	if p.cache == nil {
		return
	}
	if err := p.cache.Invalidate(ctx, registers...); err != nil {
		p.log.Error().Err(err).Strs("registers", registers).Msg("invalidación de caché de reportes")
	}
}

// IsRetryable indica si el error de una contabilización es transitorio
// (falla de transacción o conexión) y la operación puede reintentarse tal cual.
func IsRetryable(err error) bool {
	var se *domain.StorageError
	return errors.As(err, &se)
}
