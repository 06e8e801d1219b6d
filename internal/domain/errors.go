package domain

import (
	"errors"
	"fmt"
	"time"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrConflict     = errors.New("conflicto con el estado actual")
	ErrPeriodClosed = errors.New("período cerrado")
)

// ValidationError señala una línea de documento mal formada o con dimensiones
// faltantes. Es fatal para ese documento y nunca toca el almacenamiento.
// Line == 0 indica un problema a nivel de documento, no de línea.
type ValidationError struct {
	DocType string
	DocID   int64
	Line    int
	Field   string
	Reason  string
}

func (e *ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("documento %s %d: línea %d: %s: %s", e.DocType, e.DocID, e.Line, e.Field, e.Reason)
	}
	return fmt.Sprintf("documento %s %d: %s: %s", e.DocType, e.DocID, e.Field, e.Reason)
}

// Is permite errors.Is(err, ErrInvalidInput) sobre errores de validación.
func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// AlreadyClosedError señala que la fecha del documento cae dentro de un período
// cerrado: ni contabilizar ni descontabilizar están permitidos.
type AlreadyClosedError struct {
	DocType       string
	DocID         int64
	Period        time.Time
	LockedThrough time.Time
}

func (e *AlreadyClosedError) Error() string {
	return fmt.Sprintf("documento %s %d: fecha %s dentro del período cerrado (bloqueado hasta %s)",
		e.DocType, e.DocID, e.Period.Format("2006-01-02"), e.LockedThrough.Format("2006-01-02"))
}

func (e *AlreadyClosedError) Is(target error) bool { return target == ErrPeriodClosed }

// StorageError envuelve una falla de transacción o conexión del almacén.
// Es reintentable: el estado del documento quedó exactamente como antes.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("almacenamiento: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// InvalidGroupingError señala que el llamador pidió agrupar o filtrar por una
// dimensión que no pertenece al registro. Es un bug del llamador, no un estado.
type InvalidGroupingError struct {
	Register  string
	Dimension string
}

func (e *InvalidGroupingError) Error() string {
	return fmt.Sprintf("dimensión %q no pertenece al registro %q", e.Dimension, e.Register)
}

func (e *InvalidGroupingError) Is(target error) bool { return target == ErrInvalidInput }
