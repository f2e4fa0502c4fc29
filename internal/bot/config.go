package bot

import (
	"time"
)

// BotConfig represents the configuration for the bot
type BotConfig struct {
	Token    string
	AdminIDs []int64
	// Planned time of each session when a cycle is built from an edital
	TempoPadraoSessao time.Duration
	// Flashcards offered per /flashcards round
	FlashcardsPorRodada int
	// Largest file accepted from chat uploads
	MaxUploadBytes int
	// How long a pending upload prompt stays valid
	StateTTL time.Duration
}

// DefaultConfig returns the default bot configuration
func DefaultConfig() *BotConfig {
	return &BotConfig{
		TempoPadraoSessao:   time.Hour,
		FlashcardsPorRodada: 10,
		MaxUploadBytes:      20 << 20,
		StateTTL:            15 * time.Minute,
	}
}
