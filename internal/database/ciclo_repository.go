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

// CicloRepository handles database operations for study cycles
type CicloRepository struct {
	db *sqlx.DB
}

// NewCicloRepository creates a new repository instance
func NewCicloRepository(db *sqlx.DB) *CicloRepository {
	return &CicloRepository{db: db}
}

// Create inserts a cycle and its sessions and makes it the user's active one
func (r *CicloRepository) Create(ctx context.Context, c *models.Ciclo) error {
	now := timeNow()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.Ativo = true
	c.CreatedAt = now
	c.UpdatedAt = now
	c.Sessoes = ciclo.Compactar(c.Sessoes)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, tx.Rebind("UPDATE ciclos SET ativo = ?, updated_at = ? WHERE user_id = ?"), false, now, c.UserID); err != nil {
		return fmt.Errorf("failed to deactivate cycles: %w", err)
	}

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO ciclos (id, user_id, nome, ativo, proxima_sessao_manual_id, volta_iniciada_em, created_at, updated_at)
		VALUES (:id, :user_id, :nome, :ativo, :proxima_sessao_manual_id, :volta_iniciada_em, :created_at, :updated_at)
	`, c)
	if err != nil {
		return fmt.Errorf("failed to create cycle: %w", err)
	}

	for i := range c.Sessoes {
		c.Sessoes[i].CicloID = c.ID
		if c.Sessoes[i].ID == "" {
			c.Sessoes[i].ID = uuid.NewString()
		}
		if err := insertSessaoCiclo(ctx, tx, c.Sessoes[i]); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func insertSessaoCiclo(ctx context.Context, tx *sqlx.Tx, s models.SessaoCiclo) error {
	_, err := tx.NamedExecContext(ctx, `
		INSERT INTO ciclo_sessoes (id, ciclo_id, disciplina_id, disciplina_nome, tempo_previsto, ordem)
		VALUES (:id, :ciclo_id, :disciplina_id, :disciplina_nome, :tempo_previsto, :ordem)
	`, s)
	if err != nil {
		return fmt.Errorf("failed to create cycle session: %w", err)
	}
	return nil
}

// GetByID returns a cycle with its sessions sorted by ordem
func (r *CicloRepository) GetByID(ctx context.Context, id string) (*models.Ciclo, error) {
	var c models.Ciclo
	if err := r.db.GetContext(ctx, &c, r.db.Rebind("SELECT * FROM ciclos WHERE id = ?"), id); err != nil {
		return nil, fmt.Errorf("failed to get cycle: %w", notFound(err))
	}
	sessoes, err := r.GetSessoes(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Sessoes = sessoes
	return &c, nil
}

// GetAtivo returns the user's active cycle
func (r *CicloRepository) GetAtivo(ctx context.Context, userID string) (*models.Ciclo, error) {
	var id string
	query := r.db.Rebind("SELECT id FROM ciclos WHERE user_id = ? AND ativo = ? ORDER BY created_at DESC LIMIT 1")
	if err := r.db.GetContext(ctx, &id, query, userID, true); err != nil {
		return nil, fmt.Errorf("failed to get active cycle: %w", notFound(err))
	}
	return r.GetByID(ctx, id)
}

// ListByUser returns the user's cycles without sessions
func (r *CicloRepository) ListByUser(ctx context.Context, userID string) ([]models.Ciclo, error) {
	var ciclos []models.Ciclo
	query := r.db.Rebind("SELECT * FROM ciclos WHERE user_id = ? ORDER BY created_at DESC")
	if err := r.db.SelectContext(ctx, &ciclos, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list cycles: %w", err)
	}
	return ciclos, nil
}

// GetSessoes returns the sessions of a cycle sorted by ordem
func (r *CicloRepository) GetSessoes(ctx context.Context, cicloID string) ([]models.SessaoCiclo, error) {
	var sessoes []models.SessaoCiclo
	query := r.db.Rebind("SELECT * FROM ciclo_sessoes WHERE ciclo_id = ? ORDER BY ordem, id")
	if err := r.db.SelectContext(ctx, &sessoes, query, cicloID); err != nil {
		return nil, fmt.Errorf("failed to get cycle sessions: %w", err)
	}
	return sessoes, nil
}

// AddSessao appends a session to the end of the cycle
func (r *CicloRepository) AddSessao(ctx context.Context, cicloID string, s models.SessaoCiclo) (*models.SessaoCiclo, error) {
	if s.TempoPrevisto <= 0 {
		return nil, fmt.Errorf("tempo previsto must be positive")
	}

	var added models.SessaoCiclo
	err := r.withSessoes(ctx, cicloID, func(tx *sqlx.Tx, atuais []models.SessaoCiclo) ([]models.SessaoCiclo, error) {
		if s.ID == "" {
			s.ID = uuid.NewString()
		}
		s.CicloID = cicloID
		novas := ciclo.Adicionar(atuais, s)
		added = novas[len(novas)-1]
		if err := insertSessaoCiclo(ctx, tx, added); err != nil {
			return nil, err
		}
		return novas[:len(novas)-1], nil
	})
	if err != nil {
		return nil, err
	}
	return &added, nil
}

// RemoveSessao deletes a session and closes the gap in ordem
func (r *CicloRepository) RemoveSessao(ctx context.Context, cicloID, sessaoID string) error {
	return r.withSessoes(ctx, cicloID, func(tx *sqlx.Tx, atuais []models.SessaoCiclo) ([]models.SessaoCiclo, error) {
		restantes, err := ciclo.Remover(atuais, sessaoID)
		if err != nil {
			return nil, err
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM ciclo_sessoes WHERE id = ?"), sessaoID); err != nil {
			return nil, fmt.Errorf("failed to delete cycle session: %w", err)
		}
		_, err = tx.ExecContext(ctx, tx.Rebind(`
			UPDATE ciclos SET proxima_sessao_manual_id = NULL
			WHERE id = ? AND proxima_sessao_manual_id = ?
		`), cicloID, sessaoID)
		if err != nil {
			return nil, fmt.Errorf("failed to clear manual next session: %w", err)
		}
		return restantes, nil
	})
}

// ReorderSessao moves a session to position pos
func (r *CicloRepository) ReorderSessao(ctx context.Context, cicloID, sessaoID string, pos int) error {
	return r.withSessoes(ctx, cicloID, func(_ *sqlx.Tx, atuais []models.SessaoCiclo) ([]models.SessaoCiclo, error) {
		return ciclo.Reordenar(atuais, sessaoID, pos)
	})
}

// withSessoes loads the cycle's sessions in a transaction, lets fn change
// them, then writes back a dense ordem for the sessions fn returns
func (r *CicloRepository) withSessoes(ctx context.Context, cicloID string, fn func(*sqlx.Tx, []models.SessaoCiclo) ([]models.SessaoCiclo, error)) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.GetContext(ctx, &exists, tx.Rebind("SELECT COUNT(*) FROM ciclos WHERE id = ?"), cicloID); err != nil {
		return fmt.Errorf("failed to get cycle: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("failed to get cycle: %w", ErrNotFound)
	}

	var atuais []models.SessaoCiclo
	if err := tx.SelectContext(ctx, &atuais, tx.Rebind("SELECT * FROM ciclo_sessoes WHERE ciclo_id = ? ORDER BY ordem, id"), cicloID); err != nil {
		return fmt.Errorf("failed to get cycle sessions: %w", err)
	}

	novas, err := fn(tx, atuais)
	if err != nil {
		return err
	}

	for _, s := range novas {
		if _, err := tx.ExecContext(ctx, tx.Rebind("UPDATE ciclo_sessoes SET ordem = ? WHERE id = ?"), s.Ordem, s.ID); err != nil {
			return fmt.Errorf("failed to update session order: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind("UPDATE ciclos SET updated_at = ? WHERE id = ?"), timeNow(), cicloID); err != nil {
		return fmt.Errorf("failed to touch cycle: %w", err)
	}

	return tx.Commit()
}

// SetProximaManual records the session the user picked to study next.
// An empty sessaoID clears the pick.
func (r *CicloRepository) SetProximaManual(ctx context.Context, cicloID, sessaoID string) error {
	var value interface{}
	if sessaoID != "" {
		var n int
		query := r.db.Rebind("SELECT COUNT(*) FROM ciclo_sessoes WHERE id = ? AND ciclo_id = ?")
		if err := r.db.GetContext(ctx, &n, query, sessaoID, cicloID); err != nil {
			return fmt.Errorf("failed to check cycle session: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("failed to set next session: %w", ciclo.ErrSessaoNaoEncontrada)
		}
		value = sessaoID
	}
	return r.update(ctx, "UPDATE ciclos SET proxima_sessao_manual_id = ?, updated_at = ? WHERE id = ?", value, timeNow(), cicloID)
}

// ReiniciarVolta starts a new lap: study logs before at no longer count
func (r *CicloRepository) ReiniciarVolta(ctx context.Context, cicloID string, at time.Time) error {
	return r.update(ctx, "UPDATE ciclos SET volta_iniciada_em = ?, proxima_sessao_manual_id = NULL, updated_at = ? WHERE id = ?",
		at.UTC(), timeNow(), cicloID)
}

// Ativar makes cicloID the user's only active cycle
func (r *CicloRepository) Ativar(ctx context.Context, userID, cicloID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := timeNow()
	if _, err := tx.ExecContext(ctx, tx.Rebind("UPDATE ciclos SET ativo = ?, updated_at = ? WHERE user_id = ?"), false, now, userID); err != nil {
		return fmt.Errorf("failed to deactivate cycles: %w", err)
	}
	result, err := tx.ExecContext(ctx, tx.Rebind("UPDATE ciclos SET ativo = ?, updated_at = ? WHERE id = ? AND user_id = ?"), true, now, cicloID, userID)
	if err != nil {
		return fmt.Errorf("failed to activate cycle: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("failed to activate cycle: %w", ErrNotFound)
	}
	return tx.Commit()
}

// Delete removes a cycle and its sessions
func (r *CicloRepository) Delete(ctx context.Context, id string) error {
	return r.update(ctx, "DELETE FROM ciclos WHERE id = ?", id)
}

func (r *CicloRepository) update(ctx context.Context, query string, args ...interface{}) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return fmt.Errorf("failed to update cycle: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("failed to update cycle: %w", ErrNotFound)
	}
	return nil
}
