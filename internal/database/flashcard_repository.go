package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/example/estudos/pkg/models"
)

// FlashcardRepository handles database operations for user flashcards
type FlashcardRepository struct {
	db *sqlx.DB
}

// NewFlashcardRepository creates a new repository instance
func NewFlashcardRepository(db *sqlx.DB) *FlashcardRepository {
	return &FlashcardRepository{db: db}
}

func newFlashcard(userID, topicoID, frente, verso string, now time.Time) models.Flashcard {
	return models.Flashcard{
		ID:             uuid.NewString(),
		UserID:         userID,
		TopicoID:       topicoID,
		Frente:         frente,
		Verso:          verso,
		EasinessFactor: 2.5,
		NextReviewDate: now,
		CreatedAt:      now,
	}
}

func insertFlashcard(ctx context.Context, e sqlx.ExtContext, f models.Flashcard) error {
	_, err := sqlx.NamedExecContext(ctx, e, `
		INSERT INTO flashcards (
			id, user_id, topico_id, frente, verso, easiness_factor, intervalo,
			repetitions, last_quality, consecutive_right, last_review_date, next_review_date, created_at
		) VALUES (
			:id, :user_id, :topico_id, :frente, :verso, :easiness_factor, :intervalo,
			:repetitions, :last_quality, :consecutive_right, :last_review_date, :next_review_date, :created_at
		)
	`, f)
	if err != nil {
		return fmt.Errorf("failed to create flashcard: %w", err)
	}
	return nil
}

// Create inserts a new flashcard due immediately
func (r *FlashcardRepository) Create(ctx context.Context, userID, topicoID, frente, verso string) (*models.Flashcard, error) {
	f := newFlashcard(userID, topicoID, frente, verso, timeNow())
	if err := insertFlashcard(ctx, r.db, f); err != nil {
		return nil, err
	}
	return &f, nil
}

// GetByID returns a flashcard owned by userID
func (r *FlashcardRepository) GetByID(ctx context.Context, id, userID string) (*models.Flashcard, error) {
	var f models.Flashcard
	query := r.db.Rebind("SELECT * FROM flashcards WHERE id = ? AND user_id = ?")
	if err := r.db.GetContext(ctx, &f, query, id, userID); err != nil {
		return nil, fmt.Errorf("failed to get flashcard: %w", notFound(err))
	}
	return &f, nil
}

// ListByUser returns all flashcards of a user
func (r *FlashcardRepository) ListByUser(ctx context.Context, userID string) ([]models.Flashcard, error) {
	var cards []models.Flashcard
	query := r.db.Rebind("SELECT * FROM flashcards WHERE user_id = ? ORDER BY next_review_date")
	if err := r.db.SelectContext(ctx, &cards, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get flashcards: %w", err)
	}
	return cards, nil
}

// GetDue returns the user's flashcards due at now
func (r *FlashcardRepository) GetDue(ctx context.Context, userID string, now time.Time) ([]models.Flashcard, error) {
	var cards []models.Flashcard
	query := r.db.Rebind("SELECT * FROM flashcards WHERE user_id = ? AND next_review_date <= ? ORDER BY next_review_date")
	if err := r.db.SelectContext(ctx, &cards, query, userID, now.UTC()); err != nil {
		return nil, fmt.Errorf("failed to get due flashcards: %w", err)
	}
	return cards, nil
}

// UpdateProgress stores the SM-2 state of a reviewed card
func (r *FlashcardRepository) UpdateProgress(ctx context.Context, f *models.Flashcard) error {
	f.NextReviewDate = f.NextReviewDate.UTC()
	if f.LastReviewDate != nil {
		t := f.LastReviewDate.UTC()
		f.LastReviewDate = &t
	}
	result, err := r.db.NamedExecContext(ctx, `
		UPDATE flashcards SET
			easiness_factor = :easiness_factor,
			intervalo = :intervalo,
			repetitions = :repetitions,
			last_quality = :last_quality,
			consecutive_right = :consecutive_right,
			last_review_date = :last_review_date,
			next_review_date = :next_review_date
		WHERE id = :id AND user_id = :user_id
	`, f)
	if err != nil {
		return fmt.Errorf("failed to update flashcard: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("failed to update flashcard: %w", ErrNotFound)
	}
	return nil
}

// Delete removes a flashcard
func (r *FlashcardRepository) Delete(ctx context.Context, id, userID string) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM flashcards WHERE id = ? AND user_id = ?"), id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete flashcard: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("failed to delete flashcard: %w", ErrNotFound)
	}
	return nil
}
