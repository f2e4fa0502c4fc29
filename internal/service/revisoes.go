package service

import (
	"context"
	"fmt"
	"time"

	"github.com/example/estudos/internal/revisoes"
	"github.com/example/estudos/internal/spaced_repetition"
	"github.com/example/estudos/pkg/models"
)

// PainelRevisoes groups the user's revisions into the dashboard buckets
func (s *Service) PainelRevisoes(ctx context.Context, userID string) (revisoes.Buckets, error) {
	revs, err := s.repos.Revisoes.ListByUser(ctx, userID)
	if err != nil {
		return revisoes.Buckets{}, err
	}
	return revisoes.Categorizar(revs, s.now()), nil
}

// ConcluirRevisao marks a revision as done now
func (s *Service) ConcluirRevisao(ctx context.Context, userID, revisaoID string) error {
	return s.repos.Revisoes.Concluir(ctx, revisaoID, userID, s.now())
}

// AdiarRevisao moves an open revision dias days after today
func (s *Service) AdiarRevisao(ctx context.Context, userID, revisaoID string, dias int) error {
	if dias <= 0 {
		return fmt.Errorf("dias must be positive")
	}
	return s.repos.Revisoes.Reagendar(ctx, revisaoID, userID, models.Dia(s.now()).AddDate(0, 0, dias))
}

// AgendarRevisaoManual schedules a single review of a topic on dia
func (s *Service) AgendarRevisaoManual(ctx context.Context, userID, topicoID string, dia time.Time, dificuldade string) (*models.Revisao, error) {
	switch dificuldade {
	case "":
		dificuldade = models.DificuldadeMedio
	case models.DificuldadeFacil, models.DificuldadeMedio, models.DificuldadeDificil:
	default:
		return nil, fmt.Errorf("invalid dificuldade %q", dificuldade)
	}

	rev := &models.Revisao{
		UserID:       userID,
		TopicoID:     topicoID,
		DataPrevista: dia,
		Origem:       models.OrigemManual,
		Dificuldade:  dificuldade,
	}
	if err := s.repos.Revisoes.Create(ctx, rev); err != nil {
		return nil, err
	}
	return rev, nil
}

// FlashcardsPendentes returns up to limit flashcards to review now
func (s *Service) FlashcardsPendentes(ctx context.Context, userID string, limit int) ([]models.Flashcard, error) {
	now := s.now()
	cards, err := s.repos.Flashcards.GetDue(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	return s.sm2.GetDueCards(cards, now, limit), nil
}

// RevisarFlashcard records an answer of the given quality (0-5). A failed
// answer also schedules a flashcard revision for tomorrow.
func (s *Service) RevisarFlashcard(ctx context.Context, userID, flashcardID string, quality int) (*models.Flashcard, bool, error) {
	if quality < 0 || quality > 5 {
		return nil, false, fmt.Errorf("quality must be between 0 and 5")
	}

	card, err := s.repos.Flashcards.GetByID(ctx, flashcardID, userID)
	if err != nil {
		return nil, false, err
	}

	now := s.now()
	passed := s.sm2.Process(card, spaced_repetition.QualityResponse(quality), now)
	if err := s.repos.Flashcards.UpdateProgress(ctx, card); err != nil {
		return nil, false, err
	}

	if !passed {
		rev := &models.Revisao{
			UserID:       userID,
			TopicoID:     card.TopicoID,
			DataPrevista: models.Dia(now).AddDate(0, 0, 1),
			Origem:       models.OrigemFlashcard,
			Dificuldade:  models.DificuldadeDificil,
		}
		if err := s.repos.Revisoes.Create(ctx, rev); err != nil {
			return nil, false, err
		}
	}
	return card, passed, nil
}

// Dominado reports whether a flashcard counts as learned
func (s *Service) Dominado(card *models.Flashcard) bool {
	return s.sm2.IsMastered(card)
}

// Flashcard returns one of the user's flashcards
func (s *Service) Flashcard(ctx context.Context, userID, flashcardID string) (*models.Flashcard, error) {
	return s.repos.Flashcards.GetByID(ctx, flashcardID, userID)
}
