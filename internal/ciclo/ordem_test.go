package ciclo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/estudos/pkg/models"
)

func ids(sessoes []models.SessaoCiclo) []string {
	out := make([]string, len(sessoes))
	for i, s := range sessoes {
		out[i] = s.ID
	}
	return out
}

func assertDense(t *testing.T, sessoes []models.SessaoCiclo) {
	t.Helper()
	for i, s := range sessoes {
		assert.Equal(t, i, s.Ordem, "session %s", s.ID)
	}
}

func TestOrdenarSortsByOrdem(t *testing.T) {
	in := []models.SessaoCiclo{{ID: "b", Ordem: 5}, {ID: "a", Ordem: 2}, {ID: "c", Ordem: 9}}

	out := Ordenar(in)

	assert.Equal(t, []string{"a", "b", "c"}, ids(out))
	assert.Equal(t, "b", in[0].ID, "input must not be modified")
}

func TestAdicionarCompacts(t *testing.T) {
	in := []models.SessaoCiclo{{ID: "a", Ordem: 3}, {ID: "b", Ordem: 10}}

	out := Adicionar(in, models.SessaoCiclo{ID: "c", Ordem: 99})

	assert.Equal(t, []string{"a", "b", "c"}, ids(out))
	assertDense(t, out)
}

func TestRemover(t *testing.T) {
	in := sessoesTeste(1, 1, 1, 1)

	out, err := Remover(in, "s2")
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s3", "s4"}, ids(out))
	assertDense(t, out)

	_, err = Remover(in, "zz")
	assert.ErrorIs(t, err, ErrSessaoNaoEncontrada)
}

func TestReordenar(t *testing.T) {
	in := sessoesTeste(1, 1, 1, 1)

	tests := []struct {
		name string
		id   string
		pos  int
		want []string
	}{
		{"to front", "s3", 0, []string{"s3", "s1", "s2", "s4"}},
		{"to back", "s1", 3, []string{"s2", "s3", "s4", "s1"}},
		{"clamped high", "s2", 42, []string{"s1", "s3", "s4", "s2"}},
		{"clamped low", "s4", -1, []string{"s4", "s1", "s2", "s3"}},
		{"same place", "s2", 1, []string{"s1", "s2", "s3", "s4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Reordenar(in, tt.id, tt.pos)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(out))
			assertDense(t, out)
		})
	}

	_, err := Reordenar(in, "missing", 0)
	assert.ErrorIs(t, err, ErrSessaoNaoEncontrada)
}
