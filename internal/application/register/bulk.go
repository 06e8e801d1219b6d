package register

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/jsalazar/obracontrol-api/internal/domain"
	"github.com/jsalazar/obracontrol-api/pkg/logger"
)

// Acciones de una operación masiva.
const (
	BulkActionPost   = "post"
	BulkActionUnpost = "unpost"
)

// BulkRequest operación masiva sobre documentos del mismo tipo.
type BulkRequest struct {
	Action  string
	DocType string
	IDs     []int64
	Strict  bool
}

// BulkResult resultado agregado: cuántos documentos se procesaron con éxito y
// un mensaje por cada uno que falló (la falla de uno nunca aborta el lote).
type BulkResult struct {
	OperationID string
	Processed   int
	Errors      []string
}

// BulkRunner ejecuta contabilizaciones y descontabilizaciones masivas sobre un
// pool de workers acotado. Cada documento corre en su propia transacción;
// documentos independientes avanzan en paralelo, el mismo documento nunca
// (el candado por recorder del Poster lo garantiza).
type BulkRunner struct {
	poster  *Poster
	log     *logger.Logger
	workers int
}

// NewBulkRunner construye el runner. workers se acota a [1, 16]; el tope
// protege el pool de conexiones del almacén.
func NewBulkRunner(poster *Poster, log *logger.Logger, workers int) *BulkRunner {
	if workers < 1 {
		workers = 1
	}
	if workers > 16 {
		workers = 16
	}
	return &BulkRunner{poster: poster, log: log, workers: workers}
}

// Execute procesa cada documento de forma independiente y recolecta errores
// por documento sin abortar el resto. La cancelación del contexto es
// cooperativa: el documento en curso termina su transacción completa y los
// restantes se reportan como no procesados; nunca se aborta a mitad de
// transacción.
func (b *BulkRunner) Execute(ctx context.Context, req BulkRequest) (*BulkResult, error) {
	if req.Action != BulkActionPost && req.Action != BulkActionUnpost {
		return nil, fmt.Errorf("acción %q no soportada: %w", req.Action, domain.ErrInvalidInput)
	}
	if _, ok := b.poster.registry.Get(req.DocType); !ok {
		return nil, fmt.Errorf("tipo de documento %q desconocido: %w", req.DocType, domain.ErrInvalidInput)
	}

	res := &BulkResult{OperationID: uuid.New().String()}
	blog := b.log.With().
		Str("operation_id", res.OperationID).
		Str("action", req.Action).
		Str("document", req.DocType).
		Logger()

	type item struct {
		idx int
		id  int64
	}
	// failures[i] != "" marca el id i-ésimo como fallido; el orden del
	// resultado sigue el orden de entrada aunque el procesamiento sea paralelo.
	failures := make([]string, len(req.IDs))

	workers := b.workers
	if workers > len(req.IDs) {
		workers = len(req.IDs)
	}
	jobs := make(chan item)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for it := range jobs {
				if ctx.Err() != nil {
					failures[it.idx] = fmt.Sprintf("documento %s %d: operación cancelada antes de procesarse", req.DocType, it.id)
					continue
				}
				// El documento en curso termina aunque el lote se cancele:
				// abortarlo a mitad de transacción dejaría estado mixto.
				docCtx := context.WithoutCancel(ctx)
				var err error
				switch req.Action {
				case BulkActionPost:
					_, err = b.poster.Post(docCtx, req.DocType, it.id, PostOptions{Strict: req.Strict})
				case BulkActionUnpost:
					_, err = b.poster.Unpost(docCtx, req.DocType, it.id)
				}
				if err != nil {
					failures[it.idx] = fmt.Sprintf("documento %s %d: %v", req.DocType, it.id, err)
					blog.Warn().Int64("id", it.id).Err(err).Msg("documento del lote falló")
				}
			}
		}()
	}

feed:
	for i, id := range req.IDs {
		select {
		case jobs <- item{idx: i, id: id}:
		case <-ctx.Done():
			for j := i; j < len(req.IDs); j++ {
				failures[j] = fmt.Sprintf("documento %s %d: operación cancelada antes de procesarse", req.DocType, req.IDs[j])
			}
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	for _, msg := range failures {
		if msg == "" {
			res.Processed++
		} else {
			res.Errors = append(res.Errors, msg)
		}
	}
	blog.Info().
		Int("total", len(req.IDs)).
		Int("processed", res.Processed).
		Int("failed", len(res.Errors)).
		Msg("operación masiva finalizada")
	return res, nil
}
