package repository

import (
	"context"

	"github.com/jsalazar/obracontrol-api/internal/domain/register"
)

// RegisterMovementRepository puerto de persistencia del almacén de movimientos.
// Solo el contabilizador escribe aquí; las lecturas de agregación van por
// RegisterReportRepository.
type RegisterMovementRepository interface {
	// Append inserta todos los movimientos como unidad atómica. Ningún lector
	// puede observar una escritura parcial. Falla con StorageError si algún
	// monto es negativo o el almacén no está disponible.
	Append(ctx context.Context, movements []register.Movement) error

	// DeleteByRecorder elimina todo movimiento del recorder en ese registro y
	// devuelve cuántas filas quitó. Es idempotente: sin filas también es éxito.
	DeleteByRecorder(ctx context.Context, registerName, recorderType string, recorderID int64) (int64, error)

	// QueryByRecorder devuelve los movimientos de un recorder en todos los
	// registros, ordenados por registro y línea. Para inspección, no agregación.
	QueryByRecorder(ctx context.Context, recorderType string, recorderID int64) ([]register.Movement, error)

	// FindByUniquenessKeys devuelve los movimientos existentes de un registro
	// cuya tupla de unicidad (más período) coincide con alguna de las claves.
	FindByUniquenessKeys(ctx context.Context, registerName string, keys []register.Key) ([]register.Movement, error)
}
