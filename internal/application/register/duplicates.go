package register

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jsalazar/obracontrol-api/internal/domain"
	"github.com/jsalazar/obracontrol-api/internal/domain/register"
	"github.com/jsalazar/obracontrol-api/internal/domain/repository"
)

// Conflict empareja un movimiento candidato con uno existente de OTRO recorder
// que ocupa la misma tupla de unicidad (dimensiones + período).
type Conflict struct {
	Candidate register.Movement
	Existing  register.Movement
}

// DuplicateError se devuelve solo en modo estricto: el juego de movimientos
// choca con documentos ya contabilizados y la operación se rechaza completa.
type DuplicateError struct {
	Conflicts []Conflict
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%d movimientos en conflicto con otros documentos", len(e.Conflicts))
}

func (e *DuplicateError) Is(target error) bool { return target == domain.ErrDuplicate }

// DuplicateChecker detecta movimientos existentes que comparten la tupla de
// unicidad de un candidato. Los conflictos son advertencias, no bloqueos:
// entradas solapadas legítimas existen (dos partes diarios con distintos
// empleados sobre el mismo objeto y fecha). El que decide es el llamador.
type DuplicateChecker struct {
	movements repository.RegisterMovementRepository
}

// NewDuplicateChecker construye el detector sobre un repositorio de movimientos
// (atado a tx dentro de una contabilización, o al pool para chequeos sueltos).
func NewDuplicateChecker(movements repository.RegisterMovementRepository) *DuplicateChecker {
	return &DuplicateChecker{movements: movements}
}

// FindConflicts busca, para cada candidato, movimientos existentes con su misma
// tupla de unicidad pero de un recorder distinto. Los movimientos del propio
// recorder nunca se reportan: en un reemplazo el auto-choque es lo esperado.
func (c *DuplicateChecker) FindConflicts(ctx context.Context, candidates []register.Movement) ([]Conflict, error) {
	keysByRegister := make(map[string][]register.Key)
	seen := make(map[register.Key]bool)
	for _, m := range candidates {
		def, ok := register.Lookup(m.RegisterName)
		if !ok {
			return nil, fmt.Errorf("registro desconocido %q", m.RegisterName)
		}
		k := def.UniquenessKey(m)
		if !seen[k] {
			seen[k] = true
			keysByRegister[m.RegisterName] = append(keysByRegister[m.RegisterName], k)
		}
	}

	registers := make([]string, 0, len(keysByRegister))
	for name := range keysByRegister {
		registers = append(registers, name)
	}
	sort.Strings(registers)

	var conflicts []Conflict
	for _, name := range registers {
		existing, err := c.movements.FindByUniquenessKeys(ctx, name, keysByRegister[name])
		if err != nil {
			return nil, err
		}
		if len(existing) == 0 {
			continue
		}
		def, _ := register.Lookup(name)
		byKey := make(map[register.Key][]register.Movement, len(existing))
		for _, em := range existing {
			k := def.UniquenessKey(em)
			byKey[k] = append(byKey[k], em)
		}
		for _, cand := range candidates {
			if cand.RegisterName != name {
				continue
			}
			for _, em := range byKey[def.UniquenessKey(cand)] {
				if em.Recorder() == cand.Recorder() {
					continue
				}
				conflicts = append(conflicts, Conflict{Candidate: cand, Existing: em})
			}
		}
	}
	return conflicts, nil
}

// PayrollCell celda (objeto, presupuesto, empleado, fecha) a verificar antes de
// guardar una planilla o un parte diario.
type PayrollCell struct {
	ObjectID   int64
	EstimateID *int64
	EmployeeID int64
	Date       time.Time
}

// CheckPayrollDuplicates valida celdas de nómina sin persistir nada: arma
// movimientos hipotéticos y reporta choques con documentos ya contabilizados.
// exclude omite al documento que se está editando (mismas semánticas que el
// auto-reemplazo de FindConflicts).
func (c *DuplicateChecker) CheckPayrollDuplicates(ctx context.Context, cells []PayrollCell, exclude *register.Recorder) ([]Conflict, error) {
	candidates := make([]register.Movement, 0, len(cells))
	for i, cell := range cells {
		objectID := cell.ObjectID
		employeeID := cell.EmployeeID
		m := register.Movement{
			RegisterName: register.Payroll,
			LineNumber:   i + 1,
			Period:       register.Day(cell.Date),
			ObjectID:     &objectID,
			EstimateID:   cell.EstimateID,
			EmployeeID:   &employeeID,
		}
		if exclude != nil {
			m.RecorderType = exclude.Type
			m.RecorderID = exclude.ID
		}
		candidates = append(candidates, m)
	}
	return c.FindConflicts(ctx, candidates)
}
