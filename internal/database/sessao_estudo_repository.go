package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/example/estudos/internal/ciclo"
	"github.com/example/estudos/pkg/models"
)

// SessaoEstudoRepository handles database operations for the study log
type SessaoEstudoRepository struct {
	db *sqlx.DB
}

// NewSessaoEstudoRepository creates a new repository instance
func NewSessaoEstudoRepository(db *sqlx.DB) *SessaoEstudoRepository {
	return &SessaoEstudoRepository{db: db}
}

// Create inserts a finished study session
func (r *SessaoEstudoRepository) Create(ctx context.Context, s *models.SessaoEstudo) error {
	if s.TempoEstudado <= 0 {
		return fmt.Errorf("tempo estudado must be positive")
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.DataEstudo.IsZero() {
		s.DataEstudo = timeNow()
	}
	s.DataEstudo = s.DataEstudo.UTC()
	s.CreatedAt = timeNow()

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO sessoes_estudo (id, user_id, topico_id, ciclo_sessao_id, tempo_estudado, data_estudo, comentarios, created_at)
		VALUES (:id, :user_id, :topico_id, :ciclo_sessao_id, :tempo_estudado, :data_estudo, :comentarios, :created_at)
	`, s)
	if err != nil {
		return fmt.Errorf("failed to create study session: %w", err)
	}
	return nil
}

// Update edits a study session owned by s.UserID
func (r *SessaoEstudoRepository) Update(ctx context.Context, s *models.SessaoEstudo) error {
	result, err := r.db.NamedExecContext(ctx, `
		UPDATE sessoes_estudo SET
			topico_id = :topico_id,
			ciclo_sessao_id = :ciclo_sessao_id,
			tempo_estudado = :tempo_estudado,
			data_estudo = :data_estudo,
			comentarios = :comentarios
		WHERE id = :id AND user_id = :user_id
	`, s)
	if err != nil {
		return fmt.Errorf("failed to update study session: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("failed to update study session: %w", ErrNotFound)
	}
	return nil
}

// Delete removes a study session owned by userID
func (r *SessaoEstudoRepository) Delete(ctx context.Context, id, userID string) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM sessoes_estudo WHERE id = ? AND user_id = ?"), id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete study session: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("failed to delete study session: %w", ErrNotFound)
	}
	return nil
}

// ListByUser returns a user's study sessions, newest first
func (r *SessaoEstudoRepository) ListByUser(ctx context.Context, userID string, limit int) ([]models.SessaoEstudo, error) {
	if limit <= 0 {
		limit = 50
	}
	var sessoes []models.SessaoEstudo
	query := r.db.Rebind("SELECT * FROM sessoes_estudo WHERE user_id = ? ORDER BY data_estudo DESC LIMIT ?")
	if err := r.db.SelectContext(ctx, &sessoes, query, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to get study sessions: %w", err)
	}
	return sessoes, nil
}

// ListByCicloSessoes returns every study session of userID that counts for
// one of sessaoIDs, studied at or after desde (zero means no bound). Rows
// using the legacy encodings are matched too.
func (r *SessaoEstudoRepository) ListByCicloSessoes(ctx context.Context, userID string, sessaoIDs []string, desde time.Time) ([]models.SessaoEstudo, error) {
	if len(sessaoIDs) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`
		SELECT * FROM sessoes_estudo
		WHERE user_id = ?
		AND data_estudo >= ?
		AND (
			ciclo_sessao_id IN (?)
			OR topico_id LIKE 'ciclo-%'
			OR LOWER(comentarios) LIKE '%ciclo_sessao_id%'
		)
		ORDER BY data_estudo
	`, userID, desde.UTC(), sessaoIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build study session query: %w", err)
	}

	var candidatas []models.SessaoEstudo
	if err := r.db.SelectContext(ctx, &candidatas, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to get cycle study sessions: %w", err)
	}

	wanted := make(map[string]bool, len(sessaoIDs))
	for _, id := range sessaoIDs {
		wanted[id] = true
	}

	out := candidatas[:0]
	for _, s := range candidatas {
		if id, ok := ciclo.ResolveSessaoCicloID(s); ok && wanted[id] {
			out = append(out, s)
		}
	}
	return out, nil
}
