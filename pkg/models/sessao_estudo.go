package models

import "time"

// SessaoEstudo is a finished, timed study activity
type SessaoEstudo struct {
	ID            string    `json:"id" db:"id"`
	UserID        string    `json:"user_id" db:"user_id"`
	TopicoID      string    `json:"topico_id" db:"topico_id"`             // legacy rows may hold "ciclo-<id>"
	CicloSessaoID *string   `json:"ciclo_sessao_id" db:"ciclo_sessao_id"` // typed reference to SessaoCiclo
	TempoEstudado int       `json:"tempo_estudado" db:"tempo_estudado"`   // seconds
	DataEstudo    time.Time `json:"data_estudo" db:"data_estudo"`
	Comentarios   *string   `json:"comentarios" db:"comentarios"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}
