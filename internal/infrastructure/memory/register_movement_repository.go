package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jsalazar/obracontrol-api/internal/domain/register"
	"github.com/jsalazar/obracontrol-api/internal/domain/repository"
)

var _ repository.RegisterMovementRepository = (*RegisterMovementRepo)(nil)

var errNegativeAmount = errors.New("monto negativo")

// RegisterMovementRepo almacén de movimientos en memoria.
type RegisterMovementRepo struct {
	txBound
}

// NewRegisterMovementRepository construye el adaptador sobre el almacén.
func NewRegisterMovementRepository(s *Store) *RegisterMovementRepo {
	return &RegisterMovementRepo{txBound{s: s}}
}

// Append inserta el juego completo como unidad. Rechaza montos negativos antes
// de tocar el almacén, igual que los CHECK del esquema de PostgreSQL.
func (r *RegisterMovementRepo) Append(ctx context.Context, movements []register.Movement) error {
	if len(movements) == 0 {
		return nil
	}
	batch := make([]register.Movement, 0, len(movements))
	for _, m := range movements {
		if m.QuantityIncome.IsNegative() || m.QuantityExpense.IsNegative() ||
			m.SumIncome.IsNegative() || m.SumExpense.IsNegative() {
			return storageErr(fmt.Sprintf("append línea %d", m.LineNumber), errNegativeAmount)
		}
		batch = append(batch, cloneMovement(m))
	}
	r.run(func(s *Store) {
		s.movements = append(s.movements, batch...)
	})
	return nil
}

// DeleteByRecorder elimina los movimientos del recorder en ese registro y
// devuelve cuántos quitó (contados sobre el estado comprometido).
func (r *RegisterMovementRepo) DeleteByRecorder(ctx context.Context, registerName, recorderType string, recorderID int64) (int64, error) {
	match := func(m register.Movement) bool {
		return m.RegisterName == registerName && m.RecorderType == recorderType && m.RecorderID == recorderID
	}

	r.s.mu.RLock()
	var count int64
	for _, m := range r.s.movements {
		if match(m) {
			count++
		}
	}
	r.s.mu.RUnlock()

	r.run(func(s *Store) {
		kept := s.movements[:0]
		for _, m := range s.movements {
			if !match(m) {
				kept = append(kept, m)
			}
		}
		s.movements = kept
	})
	return count, nil
}

// QueryByRecorder devuelve los movimientos del recorder en todos los registros,
// ordenados por registro y línea.
func (r *RegisterMovementRepo) QueryByRecorder(ctx context.Context, recorderType string, recorderID int64) ([]register.Movement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var result []register.Movement
	for _, m := range r.s.movements {
		if m.RecorderType == recorderType && m.RecorderID == recorderID {
			result = append(result, cloneMovement(m))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].RegisterName != result[j].RegisterName {
			return result[i].RegisterName < result[j].RegisterName
		}
		return result[i].LineNumber < result[j].LineNumber
	})
	return result, nil
}

// FindByUniquenessKeys devuelve los movimientos del registro cuya tupla de
// unicidad más período coincide con alguna de las claves.
func (r *RegisterMovementRepo) FindByUniquenessKeys(ctx context.Context, registerName string, keys []register.Key) ([]register.Movement, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	def, ok := register.Lookup(registerName)
	if !ok {
		return nil, storageErr("find by uniqueness keys", fmt.Errorf("registro desconocido %q", registerName))
	}
	wanted := make(map[register.Key]struct{}, len(keys))
	for _, k := range keys {
		wanted[k] = struct{}{}
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var result []register.Movement
	for _, m := range r.s.movements {
		if m.RegisterName != registerName {
			continue
		}
		if _, hit := wanted[def.UniquenessKey(m)]; hit {
			result = append(result, cloneMovement(m))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].RecorderType != result[j].RecorderType {
			return result[i].RecorderType < result[j].RecorderType
		}
		if result[i].RecorderID != result[j].RecorderID {
			return result[i].RecorderID < result[j].RecorderID
		}
		return result[i].LineNumber < result[j].LineNumber
	})
	return result, nil
}
