package models

// TempoDisciplina is the time a user studied one subject
type TempoDisciplina struct {
	DisciplinaID   string `json:"disciplina_id" db:"disciplina_id"`
	DisciplinaNome string `json:"disciplina_nome" db:"disciplina_nome"`
	TempoEstudado  int    `json:"tempo_estudado" db:"tempo_estudado"` // seconds
	Sessoes        int    `json:"sessoes" db:"sessoes"`
}
