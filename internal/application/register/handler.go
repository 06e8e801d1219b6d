package register

import (
	"context"
	"sort"
	"time"

	"github.com/jsalazar/obracontrol-api/internal/domain/register"
)

// Document vista del contabilizador sobre un documento ya cargado en la
// transacción. Cada handler adapta su entidad concreta a esta interfaz.
type Document interface {
	Recorder() register.Recorder
	// Date fecha del documento; decide contra el cierre de período.
	Date() time.Time
	Posted() bool
	// BuildMovements construye el juego completo de movimientos a partir de
	// las líneas actuales del documento, una pasada por contabilización.
	BuildMovements() ([]register.Movement, error)
}

// DocumentHandler adapta un tipo de documento al motor de registros: sabe
// cargarlo, qué registros afecta y cómo persistir su estado de contabilización.
type DocumentHandler interface {
	DocType() string
	// Registers registros que este tipo de documento puede afectar; el
	// descontabilizado borra en todos ellos.
	Registers() []string
	// Load devuelve el documento o (nil, nil) si no existe.
	Load(ctx context.Context, repos TxRepos, id int64) (Document, error)
	// SetPosted postedAt nil marca el documento como descontabilizado.
	SetPosted(ctx context.Context, repos TxRepos, id int64, postedAt *time.Time) error
}

// HandlerRegistry mapa explícito tipo de documento → handler. Se construye en
// el arranque y se inyecta donde haga falta; no hay registro global mutable.
type HandlerRegistry struct {
	handlers map[string]DocumentHandler
}

// NewHandlerRegistry construye el registro con los handlers dados.
func NewHandlerRegistry(handlers ...DocumentHandler) *HandlerRegistry {
	m := make(map[string]DocumentHandler, len(handlers))
	for _, h := range handlers {
		m[h.DocType()] = h
	}
	return &HandlerRegistry{handlers: m}
}

// Get devuelve el handler para un tipo de documento.
func (r *HandlerRegistry) Get(docType string) (DocumentHandler, bool) {
	h, ok := r.handlers[docType]
	return h, ok
}

// Types tipos de documento registrados, en orden estable.
func (r *HandlerRegistry) Types() []string {
	types := make([]string, 0, len(r.handlers))
	for t := range r.handlers {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
