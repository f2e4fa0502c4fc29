package ciclo

import (
	"errors"
	"sort"

	"github.com/example/estudos/pkg/models"
)

// ErrSessaoNaoEncontrada is returned when an id is not part of the cycle
var ErrSessaoNaoEncontrada = errors.New("sessão não encontrada no ciclo")

// Ordenar returns a copy of sessoes sorted by ordem, ties broken by id
func Ordenar(sessoes []models.SessaoCiclo) []models.SessaoCiclo {
	out := make([]models.SessaoCiclo, len(sessoes))
	copy(out, sessoes)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Ordem != out[j].Ordem {
			return out[i].Ordem < out[j].Ordem
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Compactar rewrites ordem as 0..n-1 keeping the current relative order
func Compactar(sessoes []models.SessaoCiclo) []models.SessaoCiclo {
	out := Ordenar(sessoes)
	for i := range out {
		out[i].Ordem = i
	}
	return out
}

// Adicionar appends a session at the end of the cycle
func Adicionar(sessoes []models.SessaoCiclo, nova models.SessaoCiclo) []models.SessaoCiclo {
	out := Compactar(sessoes)
	nova.Ordem = len(out)
	return append(out, nova)
}

// Remover drops a session and closes the gap it leaves
func Remover(sessoes []models.SessaoCiclo, id string) ([]models.SessaoCiclo, error) {
	ordenadas := Ordenar(sessoes)
	out := make([]models.SessaoCiclo, 0, len(ordenadas))
	found := false
	for _, s := range ordenadas {
		if s.ID == id {
			found = true
			continue
		}
		out = append(out, s)
	}
	if !found {
		return nil, ErrSessaoNaoEncontrada
	}
	for i := range out {
		out[i].Ordem = i
	}
	return out, nil
}

// Reordenar moves a session to position pos (clamped to the cycle bounds)
func Reordenar(sessoes []models.SessaoCiclo, id string, pos int) ([]models.SessaoCiclo, error) {
	restantes, err := Remover(sessoes, id)
	if err != nil {
		return nil, err
	}

	var movida models.SessaoCiclo
	for _, s := range sessoes {
		if s.ID == id {
			movida = s
			break
		}
	}

	if pos < 0 {
		pos = 0
	}
	if pos > len(restantes) {
		pos = len(restantes)
	}

	out := make([]models.SessaoCiclo, 0, len(sessoes))
	out = append(out, restantes[:pos]...)
	out = append(out, movida)
	out = append(out, restantes[pos:]...)
	for i := range out {
		out[i].Ordem = i
	}
	return out, nil
}
