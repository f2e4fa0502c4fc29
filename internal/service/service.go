package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/estudos/internal/billing"
	"github.com/example/estudos/internal/database"
	"github.com/example/estudos/internal/spaced_repetition"
	"github.com/example/estudos/pkg/models"
)

// ErrNaoConfigurado is returned when an operation needs a remote service
// that wasn't configured
var ErrNaoConfigurado = errors.New("service not configured")

// ErrSemCiclo is returned when the user has no active cycle
var ErrSemCiclo = errors.New("no active cycle")

// Billing opens payment provider sessions
type Billing interface {
	CreateCheckoutSession(ctx context.Context, req billing.CheckoutRequest) (*billing.SessionResponse, error)
	CreatePortalSession(ctx context.Context, req billing.PortalRequest) (*billing.SessionResponse, error)
}

// Storage keeps uploaded edital files
type Storage interface {
	Upload(ctx context.Context, objectPath, nome string, conteudo []byte) error
	SignedDownloadURL(ctx context.Context, objectPath string) (string, error)
}

// Options tunes the service
type Options struct {
	PriceID    string
	SuccessURL string
	CancelURL  string
	// Days after a theory session when reviews are due
	Intervalos []int
}

// Service implements the study planner operations on top of the repositories
type Service struct {
	repos   *database.Repositories
	billing Billing
	storage Storage
	sm2     *spaced_repetition.SM2
	opts    Options
	now     func() time.Time
}

// New creates a service. billing and storage may be nil; the operations that
// need them then fail with ErrNaoConfigurado.
func New(repos *database.Repositories, b Billing, s Storage, opts Options) *Service {
	return &Service{
		repos:   repos,
		billing: b,
		storage: s,
		sm2:     spaced_repetition.NewSM2(),
		opts:    opts,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Registrar returns the user for a Telegram account, creating it on first
// contact. Admin rights are granted when admin is set.
func (s *Service) Registrar(ctx context.Context, telegramID int64, username, firstName string, admin bool) (*models.User, error) {
	user, err := s.repos.Users.GetOrCreate(ctx, telegramID, username, firstName)
	if err != nil {
		return nil, err
	}
	if admin && !user.IsAdmin {
		if err := s.repos.Users.SetAdmin(ctx, user.ID, true); err != nil {
			return nil, err
		}
		user.IsAdmin = true
	}
	return user, nil
}

// Premium reports whether the user's paid plan is active now
func (s *Service) Premium(user *models.User) bool {
	return user.IsPremium(s.now())
}

// ConfigurarLembrete changes when the user is reminded of due revisions
func (s *Service) ConfigurarLembrete(ctx context.Context, userID string, enabled bool, hour int) error {
	return s.repos.Users.UpdateNotificationSettings(ctx, userID, enabled, hour)
}

// Estatisticas returns the time studied per subject over the last dias
// days, today included
func (s *Service) Estatisticas(ctx context.Context, userID string, dias int) ([]models.TempoDisciplina, int, error) {
	if dias <= 0 {
		return nil, 0, fmt.Errorf("dias must be positive")
	}
	desde := models.Dia(s.now()).AddDate(0, 0, -dias+1)
	porDisciplina, err := s.repos.Estatisticas.TempoPorDisciplina(ctx, userID, desde)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repos.Estatisticas.TotalEstudado(ctx, userID, desde)
	if err != nil {
		return nil, 0, err
	}
	return porDisciplina, total, nil
}
