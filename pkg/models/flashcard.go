package models

import "time"

// Flashcard tracks a user's card and its SM-2 progress
type Flashcard struct {
	ID               string     `json:"id" db:"id"`
	UserID           string     `json:"user_id" db:"user_id"`
	TopicoID         string     `json:"topico_id" db:"topico_id"`
	Frente           string     `json:"frente" db:"frente"`
	Verso            string     `json:"verso" db:"verso"`
	EasinessFactor   float64    `json:"easiness_factor" db:"easiness_factor"` // SM-2 EF parameter
	Interval         int        `json:"intervalo" db:"intervalo"`             // Current interval in days
	Repetitions      int        `json:"repetitions" db:"repetitions"`
	LastQuality      int        `json:"last_quality" db:"last_quality"` // 0-5 rating of last recall
	ConsecutiveRight int        `json:"consecutive_right" db:"consecutive_right"`
	LastReviewDate   *time.Time `json:"last_review_date" db:"last_review_date"`
	NextReviewDate   time.Time  `json:"next_review_date" db:"next_review_date"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
}
