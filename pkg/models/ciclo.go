package models

import "time"

// Ciclo is a rotating playlist of subject study sessions
type Ciclo struct {
	ID                  string        `json:"id" db:"id"`
	UserID              string        `json:"user_id" db:"user_id"`
	Nome                string        `json:"nome" db:"nome"`
	Ativo               bool          `json:"ativo" db:"ativo"`
	ProximaSessaoManual *string       `json:"proxima_sessao_manual_id" db:"proxima_sessao_manual_id"` // set by "trocar sessão"
	VoltaIniciadaEm     *time.Time    `json:"volta_iniciada_em" db:"volta_iniciada_em"`               // study logs before this belong to a finished lap
	Sessoes             []SessaoCiclo `json:"sessoes" db:"-"`
	CreatedAt           time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at" db:"updated_at"`
}

// SessaoCiclo is one slot of a cycle: a subject and its planned time
type SessaoCiclo struct {
	ID             string `json:"id" db:"id"`
	CicloID        string `json:"ciclo_id" db:"ciclo_id"`
	DisciplinaID   string `json:"disciplina_id" db:"disciplina_id"`
	DisciplinaNome string `json:"disciplina_nome" db:"disciplina_nome"`
	TempoPrevisto  int    `json:"tempo_previsto" db:"tempo_previsto"` // seconds
	Ordem          int    `json:"ordem" db:"ordem"`
}
