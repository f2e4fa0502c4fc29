package models

import "time"

// EditalDefault is a curated curriculum template maintained by admins
type EditalDefault struct {
	ID        string    `json:"id" db:"id"`
	Nome      string    `json:"nome" db:"nome"`
	Orgao     string    `json:"orgao" db:"orgao"`
	Banca     string    `json:"banca" db:"banca"`
	Ano       int       `json:"ano" db:"ano"`
	Publicado bool      `json:"publicado" db:"publicado"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type DisciplinaDefault struct {
	ID              string `json:"id" db:"id"`
	EditalDefaultID string `json:"edital_default_id" db:"edital_default_id"`
	Nome            string `json:"nome" db:"nome"`
	Ordem           int    `json:"ordem" db:"ordem"`
}

type TopicoDefault struct {
	ID                  string `json:"id" db:"id"`
	DisciplinaDefaultID string `json:"disciplina_default_id" db:"disciplina_default_id"`
	Nome                string `json:"nome" db:"nome"`
	Ordem               int    `json:"ordem" db:"ordem"`
}

type FlashcardDefault struct {
	ID              string `json:"id" db:"id"`
	TopicoDefaultID string `json:"topico_default_id" db:"topico_default_id"`
	Frente          string `json:"frente" db:"frente"`
	Verso           string `json:"verso" db:"verso"`
}

// Edital is a user's own study plan, usually cloned from an EditalDefault
type Edital struct {
	ID              string    `json:"id" db:"id"`
	UserID          string    `json:"user_id" db:"user_id"`
	EditalDefaultID *string   `json:"edital_default_id" db:"edital_default_id"`
	Nome            string    `json:"nome" db:"nome"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

type Disciplina struct {
	ID       string `json:"id" db:"id"`
	EditalID string `json:"edital_id" db:"edital_id"`
	UserID   string `json:"user_id" db:"user_id"`
	Nome     string `json:"nome" db:"nome"`
	Ordem    int    `json:"ordem" db:"ordem"`
}

type Topico struct {
	ID           string `json:"id" db:"id"`
	DisciplinaID string `json:"disciplina_id" db:"disciplina_id"`
	UserID       string `json:"user_id" db:"user_id"`
	Nome         string `json:"nome" db:"nome"`
	Ordem        int    `json:"ordem" db:"ordem"`
	Concluido    bool   `json:"concluido" db:"concluido"`
}
