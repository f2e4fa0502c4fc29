package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/example/estudos/pkg/models"
)

// EditalRepository handles the curated edital templates and user study plans
type EditalRepository struct {
	db *sqlx.DB
}

// NewEditalRepository creates a new repository instance
func NewEditalRepository(db *sqlx.DB) *EditalRepository {
	return &EditalRepository{db: db}
}

// CreateDefault inserts a new edital template
func (r *EditalRepository) CreateDefault(ctx context.Context, e *models.EditalDefault) error {
	if strings.TrimSpace(e.Nome) == "" {
		return fmt.Errorf("nome do edital is required")
	}
	now := timeNow()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.CreatedAt = now
	e.UpdatedAt = now

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO editais_default (id, nome, orgao, banca, ano, publicado, created_at, updated_at)
		VALUES (:id, :nome, :orgao, :banca, :ano, :publicado, :created_at, :updated_at)
	`, e)
	if err != nil {
		return fmt.Errorf("failed to create edital default: %w", err)
	}
	return nil
}

// UpdateDefault changes the metadata of an edital template
func (r *EditalRepository) UpdateDefault(ctx context.Context, e *models.EditalDefault) error {
	e.UpdatedAt = timeNow()
	result, err := r.db.NamedExecContext(ctx, `
		UPDATE editais_default SET
			nome = :nome, orgao = :orgao, banca = :banca, ano = :ano,
			publicado = :publicado, updated_at = :updated_at
		WHERE id = :id
	`, e)
	if err != nil {
		return fmt.Errorf("failed to update edital default: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("failed to update edital default: %w", ErrNotFound)
	}
	return nil
}

// DeleteDefault removes an edital template with its whole tree
func (r *EditalRepository) DeleteDefault(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM editais_default WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("failed to delete edital default: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("failed to delete edital default: %w", ErrNotFound)
	}
	return nil
}

// GetDefault returns an edital template by id
func (r *EditalRepository) GetDefault(ctx context.Context, id string) (*models.EditalDefault, error) {
	var e models.EditalDefault
	if err := r.db.GetContext(ctx, &e, r.db.Rebind("SELECT * FROM editais_default WHERE id = ?"), id); err != nil {
		return nil, fmt.Errorf("failed to get edital default: %w", notFound(err))
	}
	return &e, nil
}

// GetDefaultByNome finds an edital template by name, case-insensitively
func (r *EditalRepository) GetDefaultByNome(ctx context.Context, nome string) (*models.EditalDefault, error) {
	var e models.EditalDefault
	query := r.db.Rebind("SELECT * FROM editais_default WHERE LOWER(nome) = LOWER(?)")
	if err := r.db.GetContext(ctx, &e, query, strings.TrimSpace(nome)); err != nil {
		return nil, fmt.Errorf("failed to get edital default: %w", notFound(err))
	}
	return &e, nil
}

// ListDefaults returns the edital templates; only published ones unless all is set
func (r *EditalRepository) ListDefaults(ctx context.Context, all bool) ([]models.EditalDefault, error) {
	var editais []models.EditalDefault
	var err error
	if all {
		err = r.db.SelectContext(ctx, &editais, "SELECT * FROM editais_default ORDER BY nome")
	} else {
		err = r.db.SelectContext(ctx, &editais, r.db.Rebind("SELECT * FROM editais_default WHERE publicado = ? ORDER BY nome"), true)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list editais default: %w", err)
	}
	return editais, nil
}

// SetPublicado publishes or hides an edital template
func (r *EditalRepository) SetPublicado(ctx context.Context, id string, publicado bool) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind("UPDATE editais_default SET publicado = ?, updated_at = ? WHERE id = ?"),
		publicado, timeNow(), id)
	if err != nil {
		return fmt.Errorf("failed to publish edital default: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("failed to publish edital default: %w", ErrNotFound)
	}
	return nil
}

// GetOrCreateDisciplinaDefault returns the subject named nome inside an
// edital template, creating it at the end when missing
func (r *EditalRepository) GetOrCreateDisciplinaDefault(ctx context.Context, editalID, nome string) (*models.DisciplinaDefault, bool, error) {
	var d models.DisciplinaDefault
	err := r.db.GetContext(ctx, &d, r.db.Rebind("SELECT * FROM disciplinas_default WHERE edital_default_id = ? AND LOWER(nome) = LOWER(?)"), editalID, nome)
	if err == nil {
		return &d, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("failed to get disciplina default: %w", err)
	}

	var ordem int
	if err := r.db.GetContext(ctx, &ordem, r.db.Rebind("SELECT COUNT(*) FROM disciplinas_default WHERE edital_default_id = ?"), editalID); err != nil {
		return nil, false, fmt.Errorf("failed to count disciplinas default: %w", err)
	}

	d = models.DisciplinaDefault{ID: uuid.NewString(), EditalDefaultID: editalID, Nome: nome, Ordem: ordem}
	_, err = r.db.NamedExecContext(ctx, `
		INSERT INTO disciplinas_default (id, edital_default_id, nome, ordem)
		VALUES (:id, :edital_default_id, :nome, :ordem)
	`, d)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create disciplina default: %w", err)
	}
	return &d, true, nil
}

// GetOrCreateTopicoDefault returns the topic named nome inside a subject
// template, creating it at the end when missing
func (r *EditalRepository) GetOrCreateTopicoDefault(ctx context.Context, disciplinaID, nome string) (*models.TopicoDefault, bool, error) {
	var t models.TopicoDefault
	err := r.db.GetContext(ctx, &t, r.db.Rebind("SELECT * FROM topicos_default WHERE disciplina_default_id = ? AND LOWER(nome) = LOWER(?)"), disciplinaID, nome)
	if err == nil {
		return &t, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("failed to get topico default: %w", err)
	}

	var ordem int
	if err := r.db.GetContext(ctx, &ordem, r.db.Rebind("SELECT COUNT(*) FROM topicos_default WHERE disciplina_default_id = ?"), disciplinaID); err != nil {
		return nil, false, fmt.Errorf("failed to count topicos default: %w", err)
	}

	t = models.TopicoDefault{ID: uuid.NewString(), DisciplinaDefaultID: disciplinaID, Nome: nome, Ordem: ordem}
	_, err = r.db.NamedExecContext(ctx, `
		INSERT INTO topicos_default (id, disciplina_default_id, nome, ordem)
		VALUES (:id, :disciplina_default_id, :nome, :ordem)
	`, t)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create topico default: %w", err)
	}
	return &t, true, nil
}

// AddFlashcardDefault attaches a template flashcard to a topic template
func (r *EditalRepository) AddFlashcardDefault(ctx context.Context, f *models.FlashcardDefault) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO flashcards_default (id, topico_default_id, frente, verso)
		VALUES (:id, :topico_default_id, :frente, :verso)
	`, f)
	if err != nil {
		return fmt.Errorf("failed to create flashcard default: %w", err)
	}
	return nil
}

// ListDisciplinasDefault returns the subjects of an edital template in order
func (r *EditalRepository) ListDisciplinasDefault(ctx context.Context, editalID string) ([]models.DisciplinaDefault, error) {
	var out []models.DisciplinaDefault
	query := r.db.Rebind("SELECT * FROM disciplinas_default WHERE edital_default_id = ? ORDER BY ordem, nome")
	if err := r.db.SelectContext(ctx, &out, query, editalID); err != nil {
		return nil, fmt.Errorf("failed to list disciplinas default: %w", err)
	}
	return out, nil
}

// ListTopicosDefault returns the topics of a subject template in order
func (r *EditalRepository) ListTopicosDefault(ctx context.Context, disciplinaID string) ([]models.TopicoDefault, error) {
	var out []models.TopicoDefault
	query := r.db.Rebind("SELECT * FROM topicos_default WHERE disciplina_default_id = ? ORDER BY ordem, nome")
	if err := r.db.SelectContext(ctx, &out, query, disciplinaID); err != nil {
		return nil, fmt.Errorf("failed to list topicos default: %w", err)
	}
	return out, nil
}

// CloneEditalDefault deep-copies an edital template into userID's own study
// plan (edital, subjects, topics and flashcards) and returns the new edital id.
// Nothing is written when the template doesn't exist.
func (r *EditalRepository) CloneEditalDefault(ctx context.Context, editalDefaultID, userID string) (string, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var tpl models.EditalDefault
	if err := tx.GetContext(ctx, &tpl, tx.Rebind("SELECT * FROM editais_default WHERE id = ?"), editalDefaultID); err != nil {
		return "", fmt.Errorf("failed to get edital default: %w", notFound(err))
	}

	now := timeNow()
	edital := models.Edital{
		ID:              uuid.NewString(),
		UserID:          userID,
		EditalDefaultID: &tpl.ID,
		Nome:            tpl.Nome,
		CreatedAt:       now,
	}
	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO editais (id, user_id, edital_default_id, nome, created_at)
		VALUES (:id, :user_id, :edital_default_id, :nome, :created_at)
	`, edital)
	if err != nil {
		return "", fmt.Errorf("failed to create edital: %w", err)
	}

	var disciplinas []models.DisciplinaDefault
	if err := tx.SelectContext(ctx, &disciplinas, tx.Rebind("SELECT * FROM disciplinas_default WHERE edital_default_id = ? ORDER BY ordem"), tpl.ID); err != nil {
		return "", fmt.Errorf("failed to list disciplinas default: %w", err)
	}

	for _, dd := range disciplinas {
		d := models.Disciplina{ID: uuid.NewString(), EditalID: edital.ID, UserID: userID, Nome: dd.Nome, Ordem: dd.Ordem}
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO disciplinas (id, edital_id, user_id, nome, ordem)
			VALUES (:id, :edital_id, :user_id, :nome, :ordem)
		`, d)
		if err != nil {
			return "", fmt.Errorf("failed to create disciplina: %w", err)
		}

		var topicos []models.TopicoDefault
		if err := tx.SelectContext(ctx, &topicos, tx.Rebind("SELECT * FROM topicos_default WHERE disciplina_default_id = ? ORDER BY ordem"), dd.ID); err != nil {
			return "", fmt.Errorf("failed to list topicos default: %w", err)
		}

		for _, td := range topicos {
			t := models.Topico{ID: uuid.NewString(), DisciplinaID: d.ID, UserID: userID, Nome: td.Nome, Ordem: td.Ordem}
			_, err := tx.NamedExecContext(ctx, `
				INSERT INTO topicos (id, disciplina_id, user_id, nome, ordem, concluido)
				VALUES (:id, :disciplina_id, :user_id, :nome, :ordem, :concluido)
			`, t)
			if err != nil {
				return "", fmt.Errorf("failed to create topico: %w", err)
			}

			var cards []models.FlashcardDefault
			if err := tx.SelectContext(ctx, &cards, tx.Rebind("SELECT * FROM flashcards_default WHERE topico_default_id = ?"), td.ID); err != nil {
				return "", fmt.Errorf("failed to list flashcards default: %w", err)
			}
			for _, cd := range cards {
				card := newFlashcard(userID, t.ID, cd.Frente, cd.Verso, now)
				if err := insertFlashcard(ctx, tx, card); err != nil {
					return "", err
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit clone: %w", err)
	}
	return edital.ID, nil
}

// ListEditais returns the user's study plans
func (r *EditalRepository) ListEditais(ctx context.Context, userID string) ([]models.Edital, error) {
	var out []models.Edital
	query := r.db.Rebind("SELECT * FROM editais WHERE user_id = ? ORDER BY created_at DESC")
	if err := r.db.SelectContext(ctx, &out, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list editais: %w", err)
	}
	return out, nil
}

// ListDisciplinas returns the subjects of a user's edital in order
func (r *EditalRepository) ListDisciplinas(ctx context.Context, editalID string) ([]models.Disciplina, error) {
	var out []models.Disciplina
	query := r.db.Rebind("SELECT * FROM disciplinas WHERE edital_id = ? ORDER BY ordem, nome")
	if err := r.db.SelectContext(ctx, &out, query, editalID); err != nil {
		return nil, fmt.Errorf("failed to list disciplinas: %w", err)
	}
	return out, nil
}

// ListTopicos returns the topics of a user's subject in order
func (r *EditalRepository) ListTopicos(ctx context.Context, disciplinaID string) ([]models.Topico, error) {
	var out []models.Topico
	query := r.db.Rebind("SELECT * FROM topicos WHERE disciplina_id = ? ORDER BY ordem, nome")
	if err := r.db.SelectContext(ctx, &out, query, disciplinaID); err != nil {
		return nil, fmt.Errorf("failed to list topicos: %w", err)
	}
	return out, nil
}

// SetTopicoConcluido marks a topic of the user's plan as covered or not
func (r *EditalRepository) SetTopicoConcluido(ctx context.Context, topicoID, userID string, concluido bool) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind("UPDATE topicos SET concluido = ? WHERE id = ? AND user_id = ?"), concluido, topicoID, userID)
	if err != nil {
		return fmt.Errorf("failed to update topico: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("failed to update topico: %w", ErrNotFound)
	}
	return nil
}
