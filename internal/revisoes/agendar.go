package revisoes

import (
	"time"

	"github.com/google/uuid"

	"github.com/example/estudos/pkg/models"
)

// DefaultIntervalos are the days after a theory session when a review is due
var DefaultIntervalos = []int{1, 7, 30}

// Agendar builds the pending revisions that follow studying a topic on base.
// An empty intervalos slice falls back to DefaultIntervalos.
func Agendar(userID, topicoID string, base time.Time, origem, dificuldade string, intervalos []int) []models.Revisao {
	if len(intervalos) == 0 {
		intervalos = DefaultIntervalos
	}
	if dificuldade == "" {
		dificuldade = models.DificuldadeMedio
	}

	dia := models.Dia(base)
	out := make([]models.Revisao, 0, len(intervalos))
	for _, d := range intervalos {
		if d <= 0 {
			continue
		}
		out = append(out, models.Revisao{
			ID:           uuid.NewString(),
			UserID:       userID,
			TopicoID:     topicoID,
			DataPrevista: dia.AddDate(0, 0, d),
			Status:       models.StatusPendente,
			Origem:       origem,
			Dificuldade:  dificuldade,
		})
	}
	return out
}

// DeveAtrasar reports whether a pending revision is past due on the day of now
func DeveAtrasar(r models.Revisao, now time.Time) bool {
	return r.Status == models.StatusPendente && models.Dia(r.DataPrevista).Before(models.Dia(now))
}
