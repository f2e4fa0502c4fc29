package database

import "github.com/jmoiron/sqlx"

// Repositories groups every repository over one connection
type Repositories struct {
	Users        *UserRepository
	Ciclos       *CicloRepository
	Estudos      *SessaoEstudoRepository
	Revisoes     *RevisaoRepository
	Editais      *EditalRepository
	Flashcards   *FlashcardRepository
	Solicitacoes *SolicitacaoRepository
	Estatisticas *EstatisticaRepository
}

// NewRepositories builds all repositories on db
func NewRepositories(db *sqlx.DB) *Repositories {
	return &Repositories{
		Users:        NewUserRepository(db),
		Ciclos:       NewCicloRepository(db),
		Estudos:      NewSessaoEstudoRepository(db),
		Revisoes:     NewRevisaoRepository(db),
		Editais:      NewEditalRepository(db),
		Flashcards:   NewFlashcardRepository(db),
		Solicitacoes: NewSolicitacaoRepository(db),
		Estatisticas: NewEstatisticaRepository(db),
	}
}
