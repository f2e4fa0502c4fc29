package models

import "time"

const (
	StatusPendente  = "pendente"
	StatusAtrasada  = "atrasada"
	StatusConcluida = "concluida"
)

const (
	OrigemTeorica   = "teorica"
	OrigemManual    = "manual"
	OrigemFlashcard = "flashcard"
	OrigemErro      = "erro"
)

const (
	DificuldadeFacil   = "facil"
	DificuldadeMedio   = "medio"
	DificuldadeDificil = "dificil"
)

// Revisao is a scheduled review reminder for previously studied material
type Revisao struct {
	ID            string     `json:"id" db:"id"`
	UserID        string     `json:"user_id" db:"user_id"`
	TopicoID      string     `json:"topico_id" db:"topico_id"`
	TopicoNome    string     `json:"topico_nome" db:"topico_nome"`
	DataPrevista  time.Time  `json:"data_prevista" db:"data_prevista"`
	Status        string     `json:"status" db:"status"`
	Origem        string     `json:"origem" db:"origem"`
	Dificuldade   string     `json:"dificuldade" db:"dificuldade"`
	DataConclusao *time.Time `json:"data_conclusao" db:"data_conclusao"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
}

// Dia truncates t to its UTC calendar day
func Dia(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
