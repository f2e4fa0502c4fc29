package models

import "time"

const (
	SolicitacaoPendente  = "pendente"
	SolicitacaoAprovada  = "aprovada"
	SolicitacaoRejeitada = "rejeitada"
)

// SolicitacaoEdital is a user's request to have an edital added to the catalogue
type SolicitacaoEdital struct {
	ID          string    `json:"id" db:"id"`
	UserID      string    `json:"user_id" db:"user_id"`
	NomeEdital  string    `json:"nome_edital" db:"nome_edital"`
	Orgao       string    `json:"orgao" db:"orgao"`
	ArquivoPath *string   `json:"arquivo_path" db:"arquivo_path"` // storage object path of the uploaded PDF
	Status      string    `json:"status" db:"status"`
	Observacao  *string   `json:"observacao" db:"observacao"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
