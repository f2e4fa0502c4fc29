package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/estudos/pkg/models"
)

// EstatisticaRepository computes study statistics from the study log
type EstatisticaRepository struct {
	db *sqlx.DB
}

// NewEstatisticaRepository creates a new repository instance
func NewEstatisticaRepository(db *sqlx.DB) *EstatisticaRepository {
	return &EstatisticaRepository{db: db}
}

// TempoPorDisciplina returns the time studied per subject since desde,
// most studied first. Only sessions linked to a cycle session are grouped.
func (r *EstatisticaRepository) TempoPorDisciplina(ctx context.Context, userID string, desde time.Time) ([]models.TempoDisciplina, error) {
	query := r.db.Rebind(`
		SELECT cs.disciplina_id, MAX(cs.disciplina_nome) AS disciplina_nome,
		       SUM(se.tempo_estudado) AS tempo_estudado, COUNT(*) AS sessoes
		FROM sessoes_estudo se
		JOIN ciclo_sessoes cs ON cs.id = se.ciclo_sessao_id
		WHERE se.user_id = ? AND se.data_estudo >= ?
		GROUP BY cs.disciplina_id
		ORDER BY tempo_estudado DESC
	`)
	var out []models.TempoDisciplina
	if err := r.db.SelectContext(ctx, &out, query, userID, desde.UTC()); err != nil {
		return nil, fmt.Errorf("failed to get time per subject: %w", err)
	}
	return out, nil
}

// TotalEstudado returns the seconds studied since desde
func (r *EstatisticaRepository) TotalEstudado(ctx context.Context, userID string, desde time.Time) (int, error) {
	var total int
	query := r.db.Rebind("SELECT COALESCE(SUM(tempo_estudado), 0) FROM sessoes_estudo WHERE user_id = ? AND data_estudo >= ?")
	if err := r.db.GetContext(ctx, &total, query, userID, desde.UTC()); err != nil {
		return 0, fmt.Errorf("failed to get total study time: %w", err)
	}
	return total, nil
}
