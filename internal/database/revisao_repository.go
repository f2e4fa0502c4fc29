package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/example/estudos/pkg/models"
)

// RevisaoRepository handles database operations for revisions
type RevisaoRepository struct {
	db *sqlx.DB
}

// NewRevisaoRepository creates a new repository instance
func NewRevisaoRepository(db *sqlx.DB) *RevisaoRepository {
	return &RevisaoRepository{db: db}
}

const selectRevisao = `
	SELECT r.id, r.user_id, r.topico_id, COALESCE(t.nome, '') AS topico_nome,
	       r.data_prevista, r.status, r.origem, r.dificuldade, r.data_conclusao, r.created_at
	FROM revisoes r
	LEFT JOIN topicos t ON t.id = r.topico_id
`

// Create inserts a new revision
func (r *RevisaoRepository) Create(ctx context.Context, rev *models.Revisao) error {
	return r.CreateBatch(ctx, []models.Revisao{*rev})
}

// CreateBatch inserts several revisions in one transaction
func (r *RevisaoRepository) CreateBatch(ctx context.Context, revs []models.Revisao) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := timeNow()
	for i := range revs {
		rev := &revs[i]
		if rev.ID == "" {
			rev.ID = uuid.NewString()
		}
		if rev.Status == "" {
			rev.Status = models.StatusPendente
		}
		if rev.Dificuldade == "" {
			rev.Dificuldade = models.DificuldadeMedio
		}
		rev.DataPrevista = models.Dia(rev.DataPrevista)
		rev.CreatedAt = now

		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO revisoes (id, user_id, topico_id, data_prevista, status, origem, dificuldade, data_conclusao, created_at)
			VALUES (:id, :user_id, :topico_id, :data_prevista, :status, :origem, :dificuldade, :data_conclusao, :created_at)
		`, rev)
		if err != nil {
			return fmt.Errorf("failed to create revision: %w", err)
		}
	}

	return tx.Commit()
}

// GetByID returns a revision owned by userID
func (r *RevisaoRepository) GetByID(ctx context.Context, id, userID string) (*models.Revisao, error) {
	var rev models.Revisao
	query := r.db.Rebind(selectRevisao + "WHERE r.id = ? AND r.user_id = ?")
	if err := r.db.GetContext(ctx, &rev, query, id, userID); err != nil {
		return nil, fmt.Errorf("failed to get revision: %w", notFound(err))
	}
	return &rev, nil
}

// ListByUser returns every revision of a user ordered by due date
func (r *RevisaoRepository) ListByUser(ctx context.Context, userID string) ([]models.Revisao, error) {
	var revs []models.Revisao
	query := r.db.Rebind(selectRevisao + "WHERE r.user_id = ? ORDER BY r.data_prevista, r.id")
	if err := r.db.SelectContext(ctx, &revs, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get revisions: %w", err)
	}
	return revs, nil
}

// CountDueToday returns how many open revisions a user has due up to the day of now
func (r *RevisaoRepository) CountDueToday(ctx context.Context, userID string, now time.Time) (int, error) {
	var n int
	query := r.db.Rebind(`
		SELECT COUNT(*) FROM revisoes
		WHERE user_id = ? AND status IN (?, ?) AND data_prevista <= ?
		AND origem IN (?, ?)
	`)
	err := r.db.GetContext(ctx, &n, query, userID, models.StatusPendente, models.StatusAtrasada, models.Dia(now),
		models.OrigemTeorica, models.OrigemManual)
	if err != nil {
		return 0, fmt.Errorf("failed to count due revisions: %w", err)
	}
	return n, nil
}

// Concluir marks a revision as done at the given time
func (r *RevisaoRepository) Concluir(ctx context.Context, id, userID string, at time.Time) error {
	at = at.UTC()
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE revisoes SET status = ?, data_conclusao = ?
		WHERE id = ? AND user_id = ? AND status <> ?
	`), models.StatusConcluida, at, id, userID, models.StatusConcluida)
	if err != nil {
		return fmt.Errorf("failed to complete revision: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("failed to complete revision: %w", ErrNotFound)
	}
	return nil
}

// Reagendar moves an open revision to another day and reopens it
func (r *RevisaoRepository) Reagendar(ctx context.Context, id, userID string, dia time.Time) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE revisoes SET data_prevista = ?, status = ?
		WHERE id = ? AND user_id = ? AND status <> ?
	`), models.Dia(dia), models.StatusPendente, id, userID, models.StatusConcluida)
	if err != nil {
		return fmt.Errorf("failed to reschedule revision: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("failed to reschedule revision: %w", ErrNotFound)
	}
	return nil
}

// Delete removes a revision
func (r *RevisaoRepository) Delete(ctx context.Context, id, userID string) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM revisoes WHERE id = ? AND user_id = ?"), id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete revision: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("failed to delete revision: %w", ErrNotFound)
	}
	return nil
}

// MarcarAtrasadas flips pending revisions dated before the day of hoje to
// atrasada. Running it again is a no-op.
func (r *RevisaoRepository) MarcarAtrasadas(ctx context.Context, hoje time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE revisoes SET status = ?
		WHERE status = ? AND data_prevista < ?
	`), models.StatusAtrasada, models.StatusPendente, models.Dia(hoje))
	if err != nil {
		return 0, fmt.Errorf("failed to mark overdue revisions: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}
