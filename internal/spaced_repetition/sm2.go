package spaced_repetition

import (
	"sort"
	"time"

	"github.com/example/estudos/pkg/models"
)

// SM2 implements the SuperMemo-2 algorithm for flashcard review
type SM2 struct {
	// Answers at or above this quality count as recalled
	PassThreshold int
	// Longest interval between reviews, in days
	MaxInterval int
	// Fixed intervals for the first repetitions, in days
	InitialIntervals []int
	// Lowest allowed easiness factor
	MinEasiness float64
}

// NewSM2 creates an SM2 instance with default settings
func NewSM2() *SM2 {
	return &SM2{
		PassThreshold:    3,
		MaxInterval:      365,
		InitialIntervals: []int{1, 3, 7, 15, 30},
		MinEasiness:      1.3,
	}
}

// QualityResponse represents the quality of a recall in SM-2
type QualityResponse int

const (
	// Complete blackout, unable to recall
	QualityBlackout QualityResponse = 0
	// Incorrect response but remembered upon seeing the answer
	QualityIncorrect QualityResponse = 1
	// Incorrect response but the answer felt familiar
	QualityIncorrectFamiliar QualityResponse = 2
	// Correct response but required significant effort
	QualityCorrectDifficult QualityResponse = 3
	// Correct response after some hesitation
	QualityCorrectHesitation QualityResponse = 4
	// Perfect response with no hesitation
	QualityPerfect QualityResponse = 5
)

// DefaultEasiness is the easiness factor of a card never reviewed
const DefaultEasiness = 2.5

// Process applies a review of the given quality to card at time now.
// It reports whether the answer passed.
func (sm *SM2) Process(card *models.Flashcard, quality QualityResponse, now time.Time) bool {
	if quality < QualityBlackout {
		quality = QualityBlackout
	}
	if quality > QualityPerfect {
		quality = QualityPerfect
	}

	if card.EasinessFactor == 0 {
		card.EasinessFactor = DefaultEasiness
	}

	reviewed := now
	card.LastReviewDate = &reviewed
	card.LastQuality = int(quality)

	q := float64(quality)
	ef := card.EasinessFactor + (0.1 - (5.0-q)*(0.08+(5.0-q)*0.02))
	if ef < sm.MinEasiness {
		ef = sm.MinEasiness
	}
	card.EasinessFactor = ef

	passed := int(quality) >= sm.PassThreshold
	if passed {
		card.ConsecutiveRight++

		var next int
		if card.Repetitions < len(sm.InitialIntervals) {
			next = sm.InitialIntervals[card.Repetitions]
		} else {
			next = int(float64(card.Interval) * card.EasinessFactor)
		}
		if next > sm.MaxInterval {
			next = sm.MaxInterval
		}
		if next < 1 {
			next = 1
		}

		card.Interval = next
		card.Repetitions++
	} else {
		// Repetitions is kept for statistics
		card.ConsecutiveRight = 0
		card.Interval = 1
	}

	card.NextReviewDate = now.AddDate(0, 0, card.Interval)
	return passed
}

// GetDueCards returns up to limit cards due at now, most urgent first
func (sm *SM2) GetDueCards(cards []models.Flashcard, now time.Time, limit int) []models.Flashcard {
	var due []models.Flashcard
	for _, c := range cards {
		if !c.NextReviewDate.After(now) {
			due = append(due, c)
		}
	}

	// Priority:
	// 1. cards never reviewed
	// 2. lowest easiness factor (hardest cards)
	// 3. most overdue
	sort.SliceStable(due, func(i, j int) bool {
		if (due[i].Repetitions == 0) != (due[j].Repetitions == 0) {
			return due[i].Repetitions == 0
		}
		if due[i].EasinessFactor != due[j].EasinessFactor {
			return due[i].EasinessFactor < due[j].EasinessFactor
		}
		return due[i].NextReviewDate.Before(due[j].NextReviewDate)
	})

	if limit > 0 && len(due) > limit {
		return due[:limit]
	}
	return due
}

// IsMastered determines whether a card is considered learned:
// reviewed at least 5 times, last answer 4 or 5 and an interval of 30+ days.
func (sm *SM2) IsMastered(card *models.Flashcard) bool {
	return card.Repetitions >= 5 &&
		card.LastQuality >= int(QualityCorrectHesitation) &&
		card.Interval >= 30
}
