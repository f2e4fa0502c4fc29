package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/example/estudos/pkg/models"
)

// SolicitacaoRepository handles requests to add an edital to the catalogue
type SolicitacaoRepository struct {
	db *sqlx.DB
}

// NewSolicitacaoRepository creates a new repository instance
func NewSolicitacaoRepository(db *sqlx.DB) *SolicitacaoRepository {
	return &SolicitacaoRepository{db: db}
}

// Create inserts a new pending request
func (r *SolicitacaoRepository) Create(ctx context.Context, s *models.SolicitacaoEdital) error {
	if strings.TrimSpace(s.NomeEdital) == "" {
		return fmt.Errorf("nome do edital is required")
	}
	now := timeNow()
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	s.Status = models.SolicitacaoPendente
	s.CreatedAt = now
	s.UpdatedAt = now

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO solicitacoes_editais (id, user_id, nome_edital, orgao, arquivo_path, status, observacao, created_at, updated_at)
		VALUES (:id, :user_id, :nome_edital, :orgao, :arquivo_path, :status, :observacao, :created_at, :updated_at)
	`, s)
	if err != nil {
		return fmt.Errorf("failed to create solicitacao: %w", err)
	}
	return nil
}

// GetByID returns a request by id
func (r *SolicitacaoRepository) GetByID(ctx context.Context, id string) (*models.SolicitacaoEdital, error) {
	var s models.SolicitacaoEdital
	if err := r.db.GetContext(ctx, &s, r.db.Rebind("SELECT * FROM solicitacoes_editais WHERE id = ?"), id); err != nil {
		return nil, fmt.Errorf("failed to get solicitacao: %w", notFound(err))
	}
	return &s, nil
}

// ListByStatus returns requests with the given status, oldest first.
// An empty status lists every request.
func (r *SolicitacaoRepository) ListByStatus(ctx context.Context, status string) ([]models.SolicitacaoEdital, error) {
	var out []models.SolicitacaoEdital
	var err error
	if status == "" {
		err = r.db.SelectContext(ctx, &out, "SELECT * FROM solicitacoes_editais ORDER BY created_at")
	} else {
		err = r.db.SelectContext(ctx, &out, r.db.Rebind("SELECT * FROM solicitacoes_editais WHERE status = ? ORDER BY created_at"), status)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list solicitacoes: %w", err)
	}
	return out, nil
}

// ListByUser returns a user's requests, newest first
func (r *SolicitacaoRepository) ListByUser(ctx context.Context, userID string) ([]models.SolicitacaoEdital, error) {
	var out []models.SolicitacaoEdital
	query := r.db.Rebind("SELECT * FROM solicitacoes_editais WHERE user_id = ? ORDER BY created_at DESC")
	if err := r.db.SelectContext(ctx, &out, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list solicitacoes: %w", err)
	}
	return out, nil
}

// UpdateStatus resolves a request
func (r *SolicitacaoRepository) UpdateStatus(ctx context.Context, id, status, observacao string) error {
	switch status {
	case models.SolicitacaoPendente, models.SolicitacaoAprovada, models.SolicitacaoRejeitada:
	default:
		return fmt.Errorf("invalid solicitacao status %q", status)
	}

	var obs interface{}
	if observacao != "" {
		obs = observacao
	}
	result, err := r.db.ExecContext(ctx, r.db.Rebind("UPDATE solicitacoes_editais SET status = ?, observacao = ?, updated_at = ? WHERE id = ?"),
		status, obs, timeNow(), id)
	if err != nil {
		return fmt.Errorf("failed to update solicitacao: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("failed to update solicitacao: %w", ErrNotFound)
	}
	return nil
}
