package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/estudos/internal/ciclo"
	"github.com/example/estudos/internal/database"
	"github.com/example/estudos/internal/revisoes"
	"github.com/example/estudos/pkg/models"
)

// NovoEstudo describes a finished study activity
type NovoEstudo struct {
	CicloSessaoID string
	TopicoID      string
	Segundos      int
	Comentarios   string
	// Schedule the theory reviews for TopicoID
	AgendarRevisoes bool
}

// ResultadoEstudo is the state right after logging a study session
type ResultadoEstudo struct {
	Estudo    models.SessaoEstudo
	Revisoes  []models.Revisao
	Progresso ciclo.Progresso
}

// CriarCiclo creates a cycle and makes it the user's active one
func (s *Service) CriarCiclo(ctx context.Context, userID, nome string, sessoes []models.SessaoCiclo) (*models.Ciclo, error) {
	if strings.TrimSpace(nome) == "" {
		return nil, fmt.Errorf("nome do ciclo is required")
	}
	if len(sessoes) == 0 {
		return nil, fmt.Errorf("a cycle needs at least one session")
	}
	for _, sc := range sessoes {
		if sc.TempoPrevisto <= 0 {
			return nil, fmt.Errorf("tempo previsto must be positive for %q", sc.DisciplinaNome)
		}
	}

	c := &models.Ciclo{UserID: userID, Nome: nome, Sessoes: sessoes}
	if err := s.repos.Ciclos.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// CriarCicloDoEdital builds a cycle with one session per subject of one of
// the user's editais, each planned for segundos
func (s *Service) CriarCicloDoEdital(ctx context.Context, userID, editalID string, segundos int) (*models.Ciclo, error) {
	editais, err := s.repos.Editais.ListEditais(ctx, userID)
	if err != nil {
		return nil, err
	}
	var edital *models.Edital
	for i := range editais {
		if editais[i].ID == editalID {
			edital = &editais[i]
			break
		}
	}
	if edital == nil {
		return nil, fmt.Errorf("failed to get edital: %w", database.ErrNotFound)
	}

	disciplinas, err := s.repos.Editais.ListDisciplinas(ctx, edital.ID)
	if err != nil {
		return nil, err
	}

	sessoes := make([]models.SessaoCiclo, 0, len(disciplinas))
	for i, d := range disciplinas {
		sessoes = append(sessoes, models.SessaoCiclo{
			DisciplinaID:   d.ID,
			DisciplinaNome: d.Nome,
			TempoPrevisto:  segundos,
			Ordem:          i,
		})
	}
	return s.CriarCiclo(ctx, userID, edital.Nome, sessoes)
}

// CicloAtivo returns the user's active cycle with its derived progress
func (s *Service) CicloAtivo(ctx context.Context, userID string) (*models.Ciclo, ciclo.Progresso, error) {
	c, err := s.repos.Ciclos.GetAtivo(ctx, userID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ciclo.Progresso{}, ErrSemCiclo
	}
	if err != nil {
		return nil, ciclo.Progresso{}, err
	}

	p, err := s.progresso(ctx, c)
	if err != nil {
		return nil, ciclo.Progresso{}, err
	}
	return c, p, nil
}

func (s *Service) progresso(ctx context.Context, c *models.Ciclo) (ciclo.Progresso, error) {
	ids := make([]string, len(c.Sessoes))
	for i, sc := range c.Sessoes {
		ids[i] = sc.ID
	}

	var desde time.Time
	if c.VoltaIniciadaEm != nil {
		desde = *c.VoltaIniciadaEm
	}

	estudos, err := s.repos.Estudos.ListByCicloSessoes(ctx, c.UserID, ids, desde)
	if err != nil {
		return ciclo.Progresso{}, err
	}

	var manual string
	if c.ProximaSessaoManual != nil {
		manual = *c.ProximaSessaoManual
	}
	return ciclo.Calcular(ciclo.Ordenar(c.Sessoes), estudos, manual), nil
}

// RegistrarEstudo logs a study session against a session of the user's
// active cycle and returns the updated progress
func (s *Service) RegistrarEstudo(ctx context.Context, userID string, in NovoEstudo) (*ResultadoEstudo, error) {
	if in.Segundos <= 0 {
		return nil, fmt.Errorf("tempo estudado must be positive")
	}

	c, err := s.repos.Ciclos.GetAtivo(ctx, userID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrSemCiclo
	}
	if err != nil {
		return nil, err
	}
	if !contemSessao(c.Sessoes, in.CicloSessaoID) {
		return nil, ciclo.ErrSessaoNaoEncontrada
	}

	now := s.now()
	sessaoID := in.CicloSessaoID
	estudo := models.SessaoEstudo{
		UserID:        userID,
		TopicoID:      in.TopicoID,
		CicloSessaoID: &sessaoID,
		TempoEstudado: in.Segundos,
		DataEstudo:    now,
	}
	if in.Comentarios != "" {
		estudo.Comentarios = &in.Comentarios
	}
	if err := s.repos.Estudos.Create(ctx, &estudo); err != nil {
		return nil, err
	}

	result := &ResultadoEstudo{Estudo: estudo}
	if in.AgendarRevisoes && in.TopicoID != "" {
		revs := revisoes.Agendar(userID, in.TopicoID, now, models.OrigemTeorica, models.DificuldadeMedio, s.opts.Intervalos)
		if err := s.repos.Revisoes.CreateBatch(ctx, revs); err != nil {
			return nil, err
		}
		result.Revisoes = revs
	}

	p, err := s.progresso(ctx, c)
	if err != nil {
		return nil, err
	}

	// A manual pick is consumed once that session is done
	if c.ProximaSessaoManual != nil && *c.ProximaSessaoManual == sessaoID && sessaoConcluida(p, sessaoID) {
		if err := s.repos.Ciclos.SetProximaManual(ctx, c.ID, ""); err != nil {
			return nil, err
		}
		c.ProximaSessaoManual = nil
		p, err = s.progresso(ctx, c)
		if err != nil {
			return nil, err
		}
	}

	result.Progresso = p
	return result, nil
}

// TrocarSessao sets the session at posicao (1-based, in cycle order) as the
// next one to study
func (s *Service) TrocarSessao(ctx context.Context, userID string, posicao int) (*models.SessaoCiclo, error) {
	c, err := s.repos.Ciclos.GetAtivo(ctx, userID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrSemCiclo
	}
	if err != nil {
		return nil, err
	}

	sessoes := ciclo.Ordenar(c.Sessoes)
	if posicao < 1 || posicao > len(sessoes) {
		return nil, ciclo.ErrSessaoNaoEncontrada
	}
	escolhida := sessoes[posicao-1]
	if err := s.repos.Ciclos.SetProximaManual(ctx, c.ID, escolhida.ID); err != nil {
		return nil, err
	}
	return &escolhida, nil
}

// NovaVolta starts a new lap of the active cycle. Earlier study logs stop
// counting toward progress.
func (s *Service) NovaVolta(ctx context.Context, userID string) error {
	c, err := s.repos.Ciclos.GetAtivo(ctx, userID)
	if errors.Is(err, database.ErrNotFound) {
		return ErrSemCiclo
	}
	if err != nil {
		return err
	}
	return s.repos.Ciclos.ReiniciarVolta(ctx, c.ID, s.now())
}

// ReordenarSessao moves the session at posicao to novaPosicao (both 1-based)
func (s *Service) ReordenarSessao(ctx context.Context, userID string, posicao, novaPosicao int) error {
	c, err := s.repos.Ciclos.GetAtivo(ctx, userID)
	if errors.Is(err, database.ErrNotFound) {
		return ErrSemCiclo
	}
	if err != nil {
		return err
	}

	sessoes := ciclo.Ordenar(c.Sessoes)
	if posicao < 1 || posicao > len(sessoes) {
		return ciclo.ErrSessaoNaoEncontrada
	}
	return s.repos.Ciclos.ReorderSessao(ctx, c.ID, sessoes[posicao-1].ID, novaPosicao-1)
}

func contemSessao(sessoes []models.SessaoCiclo, id string) bool {
	for _, sc := range sessoes {
		if sc.ID == id {
			return true
		}
	}
	return false
}

func sessaoConcluida(p ciclo.Progresso, id string) bool {
	for _, e := range p.Sessoes {
		if e.Sessao.ID == id {
			return e.Concluida
		}
	}
	return false
}

// Topicos lists the topics of a subject in the user's plan
func (s *Service) Topicos(ctx context.Context, disciplinaID string) ([]models.Topico, error) {
	return s.repos.Editais.ListTopicos(ctx, disciplinaID)
}

// ConcluirTopico marks a topic as covered and schedules its theory reviews
func (s *Service) ConcluirTopico(ctx context.Context, userID, topicoID string) ([]models.Revisao, error) {
	if err := s.repos.Editais.SetTopicoConcluido(ctx, topicoID, userID, true); err != nil {
		return nil, err
	}
	revs := revisoes.Agendar(userID, topicoID, s.now(), models.OrigemTeorica, models.DificuldadeMedio, s.opts.Intervalos)
	if err := s.repos.Revisoes.CreateBatch(ctx, revs); err != nil {
		return nil, err
	}
	return revs, nil
}
