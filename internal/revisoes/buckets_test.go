package revisoes

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/estudos/pkg/models"
)

var agora = time.Date(2026, 10, 18, 15, 30, 0, 0, time.UTC)

func rev(id string, dias int, status, origem string) models.Revisao {
	return models.Revisao{
		ID:           id,
		DataPrevista: agora.AddDate(0, 0, dias),
		Status:       status,
		Origem:       origem,
		Dificuldade:  models.DificuldadeMedio,
	}
}

func bucketIDs(rs []models.Revisao) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.ID)
	}
	return out
}

func TestCategorizarExemplo(t *testing.T) {
	concluidaEm := agora.Add(-2 * time.Hour)
	concluida := rev("done", -3, models.StatusConcluida, models.OrigemTeorica)
	concluida.DataConclusao = &concluidaEm

	b := Categorizar([]models.Revisao{
		rev("today", 0, models.StatusPendente, models.OrigemTeorica),
		rev("yesterday", -1, models.StatusPendente, models.OrigemManual),
		rev("tomorrow", 1, models.StatusPendente, models.OrigemTeorica),
		concluida,
	}, agora)

	assert.Equal(t, []string{"today"}, bucketIDs(b.PendentesHoje))
	assert.Equal(t, []string{"yesterday"}, bucketIDs(b.Atrasadas))
	assert.Equal(t, []string{"tomorrow"}, bucketIDs(b.ProgramadasAmanha))
	assert.Equal(t, []string{"done"}, bucketIDs(b.ConcluidasHoje))
	assert.Equal(t, 25, b.Estatisticas.TaxaConclusao)
	assert.Equal(t, 4, b.Estatisticas.Total)
}

func TestCategorizarStatusOfToday(t *testing.T) {
	tests := []struct {
		status      string
		inHoje      bool
		inAtrasadas bool
	}{
		{models.StatusPendente, true, false},
		{models.StatusAtrasada, false, true},
		{models.StatusConcluida, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			b := Categorizar([]models.Revisao{rev("r", 0, tt.status, models.OrigemTeorica)}, agora)
			assert.Equal(t, tt.inHoje, len(b.PendentesHoje) == 1)
			assert.Equal(t, tt.inAtrasadas, len(b.Atrasadas) == 1)
			assert.Empty(t, b.Programadas)
		})
	}
}

func TestCategorizarProgramadasSubBuckets(t *testing.T) {
	var in []models.Revisao
	for d := 1; d <= 10; d++ {
		in = append(in, rev(fmt.Sprintf("d%d", d), d, models.StatusPendente, models.OrigemTeorica))
	}

	b := Categorizar(in, agora)

	assert.Len(t, b.Programadas, 10)
	assert.Len(t, b.ProgramadasAmanha, 1)
	assert.Len(t, b.ProgramadasProximaSemana, 6) // days 2..7
	assert.Len(t, b.ProgramadasFuturas, 3)       // days 8..10
	assert.Equal(t, models.Dia(agora).AddDate(0, 0, 8), models.Dia(b.ProgramadasFuturas[0].DataPrevista))
}

func TestCategorizarSkipsOtherOrigins(t *testing.T) {
	b := Categorizar([]models.Revisao{
		rev("fc", 0, models.StatusPendente, models.OrigemFlashcard),
		rev("erro", -1, models.StatusPendente, models.OrigemErro),
	}, agora)

	assert.Empty(t, b.PendentesHoje)
	assert.Empty(t, b.Atrasadas)
	assert.Zero(t, b.Estatisticas.Total)
	assert.Zero(t, b.Estatisticas.TaxaConclusao)
}

func TestCategorizarDisjointAndExhaustive(t *testing.T) {
	statuses := []string{models.StatusPendente, models.StatusAtrasada, models.StatusConcluida}
	var in []models.Revisao
	for d := -10; d <= 12; d++ {
		for _, s := range statuses {
			r := rev(fmt.Sprintf("%s%d", s, d), d, s, models.OrigemManual)
			if s == models.StatusConcluida {
				c := agora.AddDate(0, 0, d)
				r.DataConclusao = &c
			}
			in = append(in, r)
		}
	}

	b := Categorizar(in, agora)

	seen := make(map[string]int)
	for _, group := range [][]models.Revisao{b.PendentesHoje, b.Programadas, b.Atrasadas, b.Concluidas} {
		for _, r := range group {
			seen[r.ID]++
		}
	}
	require.Len(t, seen, len(in))
	for id, n := range seen {
		assert.Equal(t, 1, n, "revision %s", id)
	}
	assert.Equal(t, len(b.Programadas), len(b.ProgramadasAmanha)+len(b.ProgramadasProximaSemana)+len(b.ProgramadasFuturas))
	assert.Len(t, b.ConcluidasHoje, 1)
}

func TestEstatisticas(t *testing.T) {
	facil := rev("a", 0, models.StatusPendente, models.OrigemTeorica)
	facil.Dificuldade = models.DificuldadeFacil

	b := Categorizar([]models.Revisao{
		facil,
		rev("b", 1, models.StatusPendente, models.OrigemManual),
		rev("c", -1, models.StatusConcluida, models.OrigemManual),
	}, agora)

	assert.Equal(t, map[string]int{models.OrigemTeorica: 1, models.OrigemManual: 2}, b.Estatisticas.PorOrigem)
	assert.Equal(t, map[string]int{models.DificuldadeFacil: 1, models.DificuldadeMedio: 2}, b.Estatisticas.PorDificuldade)
	assert.Equal(t, map[string]int{models.StatusPendente: 2, models.StatusConcluida: 1}, b.Estatisticas.PorStatus)
	assert.Equal(t, 33, b.Estatisticas.TaxaConclusao)
}

func TestAgendar(t *testing.T) {
	out := Agendar("u1", "t1", agora, models.OrigemTeorica, "", nil)

	require.Len(t, out, 3)
	for i, d := range DefaultIntervalos {
		assert.Equal(t, models.Dia(agora).AddDate(0, 0, d), out[i].DataPrevista)
		assert.Equal(t, models.StatusPendente, out[i].Status)
		assert.Equal(t, models.DificuldadeMedio, out[i].Dificuldade)
		assert.NotEmpty(t, out[i].ID)
	}

	out = Agendar("u1", "t1", agora, models.OrigemManual, models.DificuldadeDificil, []int{0, 2})
	require.Len(t, out, 1)
	assert.Equal(t, models.DificuldadeDificil, out[0].Dificuldade)
}

func TestDeveAtrasar(t *testing.T) {
	assert.True(t, DeveAtrasar(rev("a", -1, models.StatusPendente, models.OrigemTeorica), agora))
	assert.False(t, DeveAtrasar(rev("b", 0, models.StatusPendente, models.OrigemTeorica), agora))
	assert.False(t, DeveAtrasar(rev("c", -1, models.StatusAtrasada, models.OrigemTeorica), agora))
}

type fakeMarker struct {
	mu    sync.Mutex
	calls int
	err   error
	pend  map[string]models.Revisao
	hoje  time.Time
}

func (f *fakeMarker) MarcarAtrasadas(_ context.Context, hoje time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.hoje = hoje
	if f.err != nil {
		return 0, f.err
	}
	var n int64
	for id, r := range f.pend {
		if DeveAtrasar(r, hoje) {
			r.Status = models.StatusAtrasada
			f.pend[id] = r
			n++
		}
	}
	return n, nil
}

func TestReconcilerIdempotent(t *testing.T) {
	m := &fakeMarker{pend: map[string]models.Revisao{
		"a": rev("a", -2, models.StatusPendente, models.OrigemTeorica),
		"b": rev("b", 0, models.StatusPendente, models.OrigemTeorica),
	}}
	r := NewReconciler(m)
	r.now = func() time.Time { return agora }

	var wg sync.WaitGroup
	var mu sync.Mutex
	var total int64
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := r.Run(context.Background())
			assert.NoError(t, err)
			mu.Lock()
			total += n
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), total)
	assert.Equal(t, 5, m.calls)
	assert.Equal(t, models.StatusAtrasada, m.pend["a"].Status)
	assert.Equal(t, models.StatusPendente, m.pend["b"].Status)
}

func TestReconcilerReturnsError(t *testing.T) {
	boom := errors.New("connection refused")
	m := &fakeMarker{err: boom}

	_, err := NewReconciler(m).Run(context.Background())

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, m.calls)
}

func TestReconcilerDefaultClockIsUTC(t *testing.T) {
	local := time.Local
	time.Local = time.FixedZone("UTC+20", 20*3600)
	t.Cleanup(func() { time.Local = local })

	hoje := models.Dia(time.Now().UTC())
	m := &fakeMarker{pend: map[string]models.Revisao{
		"hoje":  {ID: "hoje", DataPrevista: hoje, Status: models.StatusPendente, Origem: models.OrigemManual},
		"ontem": {ID: "ontem", DataPrevista: hoje.AddDate(0, 0, -1), Status: models.StatusPendente, Origem: models.OrigemManual},
	}}

	n, err := NewReconciler(m).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(1), n)
	assert.Equal(t, time.UTC, m.hoje.Location())
	assert.Equal(t, models.StatusPendente, m.pend["hoje"].Status)
	assert.Equal(t, models.StatusAtrasada, m.pend["ontem"].Status)
}
