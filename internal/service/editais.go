package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/estudos/internal/storage"
	"github.com/example/estudos/pkg/models"
)

// Editais lists the catalogue; admins also see unpublished templates
func (s *Service) Editais(ctx context.Context, admin bool) ([]models.EditalDefault, error) {
	return s.repos.Editais.ListDefaults(ctx, admin)
}

// MeusEditais lists the user's own study plans
func (s *Service) MeusEditais(ctx context.Context, userID string) ([]models.Edital, error) {
	return s.repos.Editais.ListEditais(ctx, userID)
}

// ClonarEdital copies a catalogue template into the user's plan and returns
// the new edital id
func (s *Service) ClonarEdital(ctx context.Context, userID, editalDefaultID string) (string, error) {
	return s.repos.Editais.CloneEditalDefault(ctx, editalDefaultID, userID)
}

// PublicarEdital shows or hides a template in the catalogue
func (s *Service) PublicarEdital(ctx context.Context, editalDefaultID string, publicado bool) error {
	return s.repos.Editais.SetPublicado(ctx, editalDefaultID, publicado)
}

// NovaSolicitacao is a user's request to add an edital to the catalogue
type NovaSolicitacao struct {
	NomeEdital  string
	Orgao       string
	NomeArquivo string
	Arquivo     []byte
}

// Solicitar records an inclusion request. The optional PDF is validated
// before anything is uploaded or written.
func (s *Service) Solicitar(ctx context.Context, userID string, in NovaSolicitacao) (*models.SolicitacaoEdital, error) {
	if strings.TrimSpace(in.NomeEdital) == "" {
		return nil, fmt.Errorf("nome do edital is required")
	}

	sol := &models.SolicitacaoEdital{
		UserID:     userID,
		NomeEdital: strings.TrimSpace(in.NomeEdital),
		Orgao:      strings.TrimSpace(in.Orgao),
	}

	if in.Arquivo != nil {
		if err := storage.ValidarArquivo(in.NomeArquivo, in.Arquivo); err != nil {
			return nil, err
		}
		if s.storage == nil {
			return nil, ErrNaoConfigurado
		}
		path := storage.ObjectPath(userID)
		if err := s.storage.Upload(ctx, path, in.NomeArquivo, in.Arquivo); err != nil {
			return nil, err
		}
		sol.ArquivoPath = &path
	}

	if err := s.repos.Solicitacoes.Create(ctx, sol); err != nil {
		return nil, err
	}
	return sol, nil
}

// Solicitacoes lists inclusion requests by status; empty lists all
func (s *Service) Solicitacoes(ctx context.Context, status string) ([]models.SolicitacaoEdital, error) {
	return s.repos.Solicitacoes.ListByStatus(ctx, status)
}

// ResolverSolicitacao approves or rejects a request
func (s *Service) ResolverSolicitacao(ctx context.Context, id string, aprovada bool, observacao string) error {
	status := models.SolicitacaoRejeitada
	if aprovada {
		status = models.SolicitacaoAprovada
	}
	return s.repos.Solicitacoes.UpdateStatus(ctx, id, status, observacao)
}

// LinkArquivo returns a temporary download URL for a request's PDF
func (s *Service) LinkArquivo(ctx context.Context, sol *models.SolicitacaoEdital) (string, error) {
	if sol.ArquivoPath == nil {
		return "", fmt.Errorf("solicitacao has no file")
	}
	if s.storage == nil {
		return "", ErrNaoConfigurado
	}
	return s.storage.SignedDownloadURL(ctx, *sol.ArquivoPath)
}
