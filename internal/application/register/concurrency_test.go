package register_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appregister "github.com/jsalazar/obracontrol-api/internal/application/register"
	"github.com/jsalazar/obracontrol-api/internal/domain/register"
)

// ──────────────────────────────────────────────────────────────────────────────
// Reemplazo atómico bajo lectores concurrentes: ningún lector debe observar un
// juego de movimientos parcial (ni vacío ni mezclado) mientras el documento se
// re-contabiliza alternando entre dos juegos que suman lo mismo.
// ──────────────────────────────────────────────────────────────────────────────

func TestEngine_ReemplazoAtomicoBajoLectoresConcurrentes(t *testing.T) {
	setA := []register.Movement{
		stubMovement(1, 1, day("2024-05-10"), "10"),
		stubMovement(1, 2, day("2024-05-10"), "20"),
		stubMovement(1, 3, day("2024-05-10"), "30"),
	}
	setB := []register.Movement{
		stubMovement(1, 1, day("2024-05-10"), "25"),
		stubMovement(1, 2, day("2024-05-10"), "35"),
	}
	doc := &stubDoc{id: 1, date: day("2024-05-10"), movements: setA}
	eng := newTestEngine(t, newStubHandler(doc))
	eng.mustPost(t, stubDocType, 1)

	done := make(chan struct{})
	var readers sync.WaitGroup
	for r := 0; r < 4; r++ {
		readers.Add(1)
		go func() {
			defer readers.Done()
			ctx := context.Background()
			for {
				select {
				case <-done:
					return
				default:
				}
				movs, err := eng.movements.QueryByRecorder(ctx, stubDocType, 1)
				if !assert.NoError(t, err) {
					return
				}
				if !assert.Contains(t, []int{2, 3}, len(movs), "nunca debe verse un juego parcial: %d movimientos", len(movs)) {
					return
				}
				rows, err := eng.agg.Balance(ctx, register.BalanceQuery{
					Register: register.PlannedWork,
					Cutoff:   day("2100-01-01"),
				})
				if !assert.NoError(t, err) {
					return
				}
				if !assert.Len(t, rows, 1) {
					return
				}
				// Ambos juegos suman 60: cualquier otro saldo delata una mezcla.
				if !assert.True(t, rows[0].QuantityBalance.Equal(dec("60")),
					"saldo mixto observado: %s", rows[0].QuantityBalance) {
					return
				}
			}
		}()
	}

	for i := 0; i < 50; i++ {
		if i%2 == 0 {
			doc.movements = setB
		} else {
			doc.movements = setA
		}
		eng.mustPost(t, stubDocType, 1)
	}
	close(done)
	readers.Wait()
}

// ──────────────────────────────────────────────────────────────────────────────
// Serialización por recorder: dos contabilizaciones concurrentes del mismo
// documento nunca entrelazan sus pares borrar+insertar. El estado final es un
// juego completo de uno de los dos escritores, jamás una mezcla.
// ──────────────────────────────────────────────────────────────────────────────

func TestEngine_MismoRecorderSeSerializa(t *testing.T) {
	docA := &stubDoc{id: 1, date: day("2024-05-10"), movements: []register.Movement{
		stubMovement(1, 1, day("2024-05-10"), "10"),
		stubMovement(1, 2, day("2024-05-10"), "20"),
		stubMovement(1, 3, day("2024-05-10"), "30"),
	}}
	eng := newTestEngine(t, newStubHandler(docA))

	// Dos escritores compiten por el mismo recorder; el candado del TxRunner
	// debe serializarlos (el detector de carreras vigila SetPosted compartido).
	var writers sync.WaitGroup
	for w := 0; w < 2; w++ {
		writers.Add(1)
		go func() {
			defer writers.Done()
			for i := 0; i < 20; i++ {
				_, err := eng.poster.Post(context.Background(), stubDocType, 1, appregister.PostOptions{})
				assert.NoError(t, err)
			}
		}()
	}
	writers.Wait()

	movs, err := eng.movements.QueryByRecorder(context.Background(), stubDocType, 1)
	require.NoError(t, err)
	require.Len(t, movs, 3, "el estado final debe ser un juego completo")
	assertDecimal(t, "10", movs[0].QuantityIncome)
	assertDecimal(t, "20", movs[1].QuantityIncome)
	assertDecimal(t, "30", movs[2].QuantityIncome)
	assert.True(t, docA.posted)
}

// Recorders distintos avanzan en paralelo sin bloquearse entre sí; cada juego
// queda completo y atribuido a su propio documento.
func TestEngine_RecordersDistintosEnParalelo(t *testing.T) {
	docs := make([]*stubDoc, 8)
	for i := range docs {
		id := int64(i + 1)
		docs[i] = &stubDoc{id: id, date: day("2024-05-10"), movements: []register.Movement{
			stubMovement(id, 1, day("2024-05-10"), "5"),
			stubMovement(id, 2, day("2024-05-10"), "7"),
		}}
	}
	eng := newTestEngine(t, newStubHandler(docs...))

	var wg sync.WaitGroup
	for _, d := range docs {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_, err := eng.poster.Post(context.Background(), stubDocType, id, appregister.PostOptions{})
			assert.NoError(t, err)
		}(d.id)
	}
	wg.Wait()

	for _, d := range docs {
		movs, err := eng.movements.QueryByRecorder(context.Background(), stubDocType, d.id)
		require.NoError(t, err)
		require.Len(t, movs, 2)
		for _, m := range movs {
			assert.Equal(t, d.id, m.RecorderID)
		}
		assert.True(t, d.posted)
	}
}
