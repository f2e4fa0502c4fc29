package revisoes

import (
	"math"
	"time"

	"github.com/example/estudos/pkg/models"
)

// Buckets splits revisions into date-relative, mutually exclusive groups
type Buckets struct {
	PendentesHoje []models.Revisao
	Atrasadas     []models.Revisao
	Concluidas    []models.Revisao

	// Programadas holds every pending revision after today; the three
	// subsets below partition it.
	Programadas              []models.Revisao
	ProgramadasAmanha        []models.Revisao
	ProgramadasProximaSemana []models.Revisao
	ProgramadasFuturas       []models.Revisao

	// ConcluidasHoje is the subset of Concluidas finished today
	ConcluidasHoje []models.Revisao

	Estatisticas Estatisticas
}

// Estatisticas aggregates the revisions that take part in the view
type Estatisticas struct {
	Total          int
	PorOrigem      map[string]int
	PorDificuldade map[string]int
	PorStatus      map[string]int
	TaxaConclusao  int
}

// Participa reports whether a revision belongs to the theory/manual view.
// Flashcard and error-notebook revisions live elsewhere.
func Participa(r models.Revisao) bool {
	return r.Origem == models.OrigemTeorica || r.Origem == models.OrigemManual
}

// Categorizar buckets revisions relative to the day of now
func Categorizar(revisoes []models.Revisao, now time.Time) Buckets {
	hoje := models.Dia(now)
	amanha := hoje.AddDate(0, 0, 1)
	semana := hoje.AddDate(0, 0, 8)

	b := Buckets{
		Estatisticas: Estatisticas{
			PorOrigem:      make(map[string]int),
			PorDificuldade: make(map[string]int),
			PorStatus:      make(map[string]int),
		},
	}

	for _, r := range revisoes {
		if !Participa(r) {
			continue
		}

		b.Estatisticas.Total++
		b.Estatisticas.PorOrigem[r.Origem]++
		b.Estatisticas.PorDificuldade[r.Dificuldade]++
		b.Estatisticas.PorStatus[r.Status]++

		dia := models.Dia(r.DataPrevista)

		switch r.Status {
		case models.StatusConcluida:
			b.Concluidas = append(b.Concluidas, r)
			if r.DataConclusao != nil && models.Dia(*r.DataConclusao).Equal(hoje) {
				b.ConcluidasHoje = append(b.ConcluidasHoje, r)
			}
		case models.StatusAtrasada:
			b.Atrasadas = append(b.Atrasadas, r)
		case models.StatusPendente:
			switch {
			case dia.Before(hoje):
				b.Atrasadas = append(b.Atrasadas, r)
			case dia.Equal(hoje):
				b.PendentesHoje = append(b.PendentesHoje, r)
			default:
				b.Programadas = append(b.Programadas, r)
				switch {
				case dia.Equal(amanha):
					b.ProgramadasAmanha = append(b.ProgramadasAmanha, r)
				case dia.Before(semana):
					b.ProgramadasProximaSemana = append(b.ProgramadasProximaSemana, r)
				default:
					b.ProgramadasFuturas = append(b.ProgramadasFuturas, r)
				}
			}
		}
	}

	if b.Estatisticas.Total > 0 {
		b.Estatisticas.TaxaConclusao = int(math.Round(float64(len(b.Concluidas)) / float64(b.Estatisticas.Total) * 100))
	}

	return b
}
