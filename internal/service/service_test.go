package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/estudos/internal/billing"
	"github.com/example/estudos/internal/ciclo"
	"github.com/example/estudos/internal/database"
	"github.com/example/estudos/internal/revisoes"
	"github.com/example/estudos/internal/storage"
	"github.com/example/estudos/pkg/models"
)

type fakeBilling struct {
	checkout []billing.CheckoutRequest
	portal   []billing.PortalRequest
	err      error
}

func (f *fakeBilling) CreateCheckoutSession(_ context.Context, req billing.CheckoutRequest) (*billing.SessionResponse, error) {
	f.checkout = append(f.checkout, req)
	if f.err != nil {
		return nil, f.err
	}
	return &billing.SessionResponse{URL: "https://pay/cs", CustomerID: "cus_1"}, nil
}

func (f *fakeBilling) CreatePortalSession(_ context.Context, req billing.PortalRequest) (*billing.SessionResponse, error) {
	f.portal = append(f.portal, req)
	return &billing.SessionResponse{URL: "https://pay/portal"}, nil
}

type fakeStorage struct {
	uploads map[string][]byte
}

func (f *fakeStorage) Upload(_ context.Context, objectPath, _ string, conteudo []byte) error {
	if f.uploads == nil {
		f.uploads = make(map[string][]byte)
	}
	f.uploads[objectPath] = conteudo
	return nil
}

func (f *fakeStorage) SignedDownloadURL(_ context.Context, objectPath string) (string, error) {
	return "https://files/" + objectPath + "?token=x", nil
}

type fixture struct {
	svc     *Service
	repos   *database.Repositories
	billing *fakeBilling
	storage *fakeStorage
	clock   time.Time
	user    *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.Connect("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	f := &fixture{
		repos:   database.NewRepositories(db),
		billing: &fakeBilling{},
		storage: &fakeStorage{},
		clock:   time.Now().UTC().Add(time.Minute),
	}
	f.svc = New(f.repos, f.billing, f.storage, Options{PriceID: "price_1", SuccessURL: "https://ok", CancelURL: "https://cancel"})
	f.svc.now = func() time.Time { return f.clock }

	f.user, err = f.svc.Registrar(context.Background(), 42, "ana", "Ana", false)
	require.NoError(t, err)
	return f
}

func (f *fixture) advance(d time.Duration) { f.clock = f.clock.Add(d) }

func (f *fixture) ciclo(t *testing.T, previstos ...int) *models.Ciclo {
	t.Helper()
	sessoes := make([]models.SessaoCiclo, len(previstos))
	for i, p := range previstos {
		sessoes[i] = models.SessaoCiclo{DisciplinaID: "d", DisciplinaNome: "Disciplina", TempoPrevisto: p, Ordem: i}
	}
	c, err := f.svc.CriarCiclo(context.Background(), f.user.ID, "Ciclo TRF", sessoes)
	require.NoError(t, err)
	return c
}

func TestRegistrarIsIdempotentAndGrantsAdmin(t *testing.T) {
	f := newFixture(t)

	again, err := f.svc.Registrar(context.Background(), 42, "ana", "Ana", true)
	require.NoError(t, err)

	assert.Equal(t, f.user.ID, again.ID)
	assert.True(t, again.IsAdmin)
}

func TestRegistrarEstudoUpdatesProgress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.ciclo(t, 3600, 1800)

	res, err := f.svc.RegistrarEstudo(ctx, f.user.ID, NovoEstudo{
		CicloSessaoID:   c.Sessoes[0].ID,
		TopicoID:        "topico-1",
		Segundos:        3600,
		AgendarRevisoes: true,
	})
	require.NoError(t, err)

	require.NotNil(t, res.Estudo.CicloSessaoID)
	assert.Equal(t, c.Sessoes[0].ID, *res.Estudo.CicloSessaoID)
	assert.Len(t, res.Revisoes, 3)
	assert.Equal(t, 50, res.Progresso.ProgressoPercentual)
	assert.Equal(t, 3600, res.Progresso.TempoConcluido)
	require.NotNil(t, res.Progresso.ProximaSessao)
	assert.Equal(t, c.Sessoes[1].ID, res.Progresso.ProximaSessao.ID)

	painel, err := f.svc.PainelRevisoes(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Len(t, painel.ProgramadasAmanha, 1)
	assert.Len(t, painel.ProgramadasProximaSemana, 1)
	assert.Len(t, painel.ProgramadasFuturas, 1)
}

func TestLegacyStudyLogsCountAndNewLapResets(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.ciclo(t, 600, 600)

	_, err := f.svc.RegistrarEstudo(ctx, f.user.ID, NovoEstudo{CicloSessaoID: c.Sessoes[0].ID, Segundos: 600})
	require.NoError(t, err)

	legacy := &models.SessaoEstudo{
		UserID:        f.user.ID,
		TopicoID:      ciclo.PrefixoTopico + c.Sessoes[1].ID,
		TempoEstudado: 900,
		DataEstudo:    f.clock,
	}
	require.NoError(t, f.repos.Estudos.Create(ctx, legacy))

	_, p, err := f.svc.CicloAtivo(ctx, f.user.ID)
	require.NoError(t, err)
	assert.True(t, p.CicloConcluido)
	assert.Equal(t, 100, p.ProgressoPercentual)
	assert.Equal(t, 1200, p.TempoConcluido)
	assert.Equal(t, c.Sessoes[0].ID, p.ProximaSessao.ID)

	f.advance(time.Minute)
	require.NoError(t, f.svc.NovaVolta(ctx, f.user.ID))

	_, p, err = f.svc.CicloAtivo(ctx, f.user.ID)
	require.NoError(t, err)
	assert.False(t, p.CicloConcluido)
	assert.Zero(t, p.ProgressoPercentual)
	assert.Zero(t, p.TempoConcluido)
}

func TestTrocarSessaoIsConsumedWhenDone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.ciclo(t, 600, 600, 600)

	escolhida, err := f.svc.TrocarSessao(ctx, f.user.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, c.Sessoes[2].ID, escolhida.ID)

	_, p, err := f.svc.CicloAtivo(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, c.Sessoes[2].ID, p.ProximaSessao.ID)

	res, err := f.svc.RegistrarEstudo(ctx, f.user.ID, NovoEstudo{CicloSessaoID: c.Sessoes[2].ID, Segundos: 600})
	require.NoError(t, err)
	assert.Equal(t, c.Sessoes[0].ID, res.Progresso.ProximaSessao.ID)

	ativo, _, err := f.svc.CicloAtivo(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Nil(t, ativo.ProximaSessaoManual)

	_, err = f.svc.TrocarSessao(ctx, f.user.ID, 9)
	assert.ErrorIs(t, err, ciclo.ErrSessaoNaoEncontrada)
}

func TestRegistrarEstudoValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.RegistrarEstudo(ctx, f.user.ID, NovoEstudo{CicloSessaoID: "x", Segundos: 60})
	assert.ErrorIs(t, err, ErrSemCiclo)

	f.ciclo(t, 600)
	_, err = f.svc.RegistrarEstudo(ctx, f.user.ID, NovoEstudo{CicloSessaoID: "outra", Segundos: 60})
	assert.ErrorIs(t, err, ciclo.ErrSessaoNaoEncontrada)

	_, err = f.svc.RegistrarEstudo(ctx, f.user.ID, NovoEstudo{CicloSessaoID: "outra", Segundos: 0})
	assert.Error(t, err)
}

func TestReordenarSessao(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.ciclo(t, 600, 600, 600)

	require.NoError(t, f.svc.ReordenarSessao(ctx, f.user.ID, 3, 1))

	ativo, p, err := f.svc.CicloAtivo(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{c.Sessoes[2].ID, c.Sessoes[0].ID, c.Sessoes[1].ID},
		[]string{ativo.Sessoes[0].ID, ativo.Sessoes[1].ID, ativo.Sessoes[2].ID})
	for i, s := range ativo.Sessoes {
		assert.Equal(t, i, s.Ordem)
	}
	assert.Equal(t, c.Sessoes[2].ID, p.ProximaSessao.ID)
}

func TestRevisarFlashcardFailureSchedulesRevision(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	card, err := f.repos.Flashcards.Create(ctx, f.user.ID, "topico-1", "Art. 5º?", "Direitos fundamentais")
	require.NoError(t, err)

	pendentes, err := f.svc.FlashcardsPendentes(ctx, f.user.ID, 10)
	require.NoError(t, err)
	require.Len(t, pendentes, 1)

	updated, passed, err := f.svc.RevisarFlashcard(ctx, f.user.ID, card.ID, 1)
	require.NoError(t, err)
	assert.False(t, passed)
	assert.Equal(t, 1, updated.Interval)

	revs, err := f.repos.Revisoes.ListByUser(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, revs, 1)
	assert.Equal(t, models.OrigemFlashcard, revs[0].Origem)
	assert.True(t, models.Dia(f.clock).AddDate(0, 0, 1).Equal(revs[0].DataPrevista))

	painel, err := f.svc.PainelRevisoes(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Zero(t, painel.Estatisticas.Total)

	_, _, err = f.svc.RevisarFlashcard(ctx, f.user.ID, card.ID, 7)
	assert.Error(t, err)
}

func TestConcluirRevisao(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rev, err := f.svc.AgendarRevisaoManual(ctx, f.user.ID, "topico-1", f.clock, "")
	require.NoError(t, err)

	painel, err := f.svc.PainelRevisoes(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, painel.PendentesHoje, 1)

	require.NoError(t, f.svc.ConcluirRevisao(ctx, f.user.ID, rev.ID))
	err = f.svc.ConcluirRevisao(ctx, f.user.ID, rev.ID)
	assert.ErrorIs(t, err, database.ErrNotFound)

	painel, err = f.svc.PainelRevisoes(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Len(t, painel.ConcluidasHoje, 1)
	assert.Equal(t, 100, painel.Estatisticas.TaxaConclusao)
}

func TestClonarEditalAndCreateCycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tpl := &models.EditalDefault{Nome: "INSS 2024", Publicado: true}
	require.NoError(t, f.repos.Editais.CreateDefault(ctx, tpl))
	for _, nome := range []string{"Português", "Previdenciário"} {
		_, _, err := f.repos.Editais.GetOrCreateDisciplinaDefault(ctx, tpl.ID, nome)
		require.NoError(t, err)
	}

	catalogo, err := f.svc.Editais(ctx, false)
	require.NoError(t, err)
	require.Len(t, catalogo, 1)

	editalID, err := f.svc.ClonarEdital(ctx, f.user.ID, tpl.ID)
	require.NoError(t, err)

	c, err := f.svc.CriarCicloDoEdital(ctx, f.user.ID, editalID, 3600)
	require.NoError(t, err)
	require.Len(t, c.Sessoes, 2)
	assert.Equal(t, "Português", c.Sessoes[0].DisciplinaNome)
	assert.Equal(t, 3600, c.Sessoes[1].TempoPrevisto)

	_, err = f.svc.CriarCicloDoEdital(ctx, f.user.ID, "nope", 3600)
	assert.ErrorIs(t, err, database.ErrNotFound)

	_, err = f.svc.ClonarEdital(ctx, f.user.ID, "nope")
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestSolicitar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Solicitar(ctx, f.user.ID, NovaSolicitacao{
		NomeEdital:  "PF 2025",
		NomeArquivo: "edital.docx",
		Arquivo:     []byte("not a pdf"),
	})
	assert.ErrorIs(t, err, storage.ErrArquivoInvalido)
	assert.Empty(t, f.storage.uploads)

	todas, err := f.svc.Solicitacoes(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, todas)

	sol, err := f.svc.Solicitar(ctx, f.user.ID, NovaSolicitacao{
		NomeEdital:  "PF 2025",
		Orgao:       "Polícia Federal",
		NomeArquivo: "edital.pdf",
		Arquivo:     []byte("%PDF-1.7\n..."),
	})
	require.NoError(t, err)
	require.NotNil(t, sol.ArquivoPath)
	assert.Contains(t, f.storage.uploads, *sol.ArquivoPath)

	link, err := f.svc.LinkArquivo(ctx, sol)
	require.NoError(t, err)
	assert.Contains(t, link, *sol.ArquivoPath)

	require.NoError(t, f.svc.ResolverSolicitacao(ctx, sol.ID, true, ""))
	aprovadas, err := f.svc.Solicitacoes(ctx, models.SolicitacaoAprovada)
	require.NoError(t, err)
	assert.Len(t, aprovadas, 1)
}

func TestAssinarStoresCustomerAndOpensPortal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Portal(ctx, f.user)
	assert.ErrorIs(t, err, billing.ErrSemCliente)

	url, err := f.svc.Assinar(ctx, f.user)
	require.NoError(t, err)
	assert.Equal(t, "https://pay/cs", url)
	require.Len(t, f.billing.checkout, 1)
	assert.Equal(t, "price_1", f.billing.checkout[0].PriceID)

	stored, err := f.repos.Users.GetByID(ctx, f.user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.StripeCustomerID)
	assert.Equal(t, "cus_1", *stored.StripeCustomerID)

	url, err = f.svc.Portal(ctx, stored)
	require.NoError(t, err)
	assert.Equal(t, "https://pay/portal", url)
	assert.Equal(t, "cus_1", f.billing.portal[0].CustomerID)
}

func TestAssinarRemoteFailure(t *testing.T) {
	f := newFixture(t)
	f.billing.err = errors.New("checkout returned status 500")

	_, err := f.svc.Assinar(context.Background(), f.user)

	assert.Error(t, err)
	assert.Len(t, f.billing.checkout, 1)
}

func TestRemoteServicesNotConfigured(t *testing.T) {
	f := newFixture(t)
	svc := New(f.repos, nil, nil, Options{})

	_, err := svc.Assinar(context.Background(), f.user)
	assert.ErrorIs(t, err, ErrNaoConfigurado)

	_, err = svc.Solicitar(context.Background(), f.user.ID, NovaSolicitacao{
		NomeEdital: "X", NomeArquivo: "a.pdf", Arquivo: []byte("%PDF-1.4"),
	})
	assert.ErrorIs(t, err, ErrNaoConfigurado)
}

func TestConcluirTopicoSchedulesTheoryReviews(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tpl := &models.EditalDefault{Nome: "TRT", Publicado: true}
	require.NoError(t, f.repos.Editais.CreateDefault(ctx, tpl))
	d, _, err := f.repos.Editais.GetOrCreateDisciplinaDefault(ctx, tpl.ID, "Direito do Trabalho")
	require.NoError(t, err)
	_, _, err = f.repos.Editais.GetOrCreateTopicoDefault(ctx, d.ID, "Férias")
	require.NoError(t, err)

	editalID, err := f.svc.ClonarEdital(ctx, f.user.ID, tpl.ID)
	require.NoError(t, err)
	disciplinas, err := f.repos.Editais.ListDisciplinas(ctx, editalID)
	require.NoError(t, err)
	require.Len(t, disciplinas, 1)

	topicos, err := f.svc.Topicos(ctx, disciplinas[0].ID)
	require.NoError(t, err)
	require.Len(t, topicos, 1)
	assert.False(t, topicos[0].Concluido)

	revs, err := f.svc.ConcluirTopico(ctx, f.user.ID, topicos[0].ID)
	require.NoError(t, err)
	require.Len(t, revs, 3)
	assert.Equal(t, models.Dia(f.clock).AddDate(0, 0, 1), revs[0].DataPrevista)

	topicos, err = f.svc.Topicos(ctx, disciplinas[0].ID)
	require.NoError(t, err)
	assert.True(t, topicos[0].Concluido)

	painel, err := f.svc.PainelRevisoes(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Len(t, painel.Programadas, 3)

	_, err = f.svc.ConcluirTopico(ctx, f.user.ID, "nope")
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestTodaysRevisionSurvivesReconcilerAheadOfUTC(t *testing.T) {
	local := time.Local
	time.Local = time.FixedZone("UTC+20", 20*3600)
	t.Cleanup(func() { time.Local = local })

	f := newFixture(t)
	ctx := context.Background()
	f.clock = time.Now().UTC()

	_, err := f.svc.AgendarRevisaoManual(ctx, f.user.ID, "topico-1", models.Dia(f.svc.now()), "")
	require.NoError(t, err)

	n, err := revisoes.NewReconciler(f.repos.Revisoes).Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	painel, err := f.svc.PainelRevisoes(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Len(t, painel.PendentesHoje, 1)
	assert.Empty(t, painel.Atrasadas)
}

func TestEstatisticasWindowFollowsServiceClock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.ciclo(t, 3600)

	_, err := f.svc.RegistrarEstudo(ctx, f.user.ID, NovoEstudo{CicloSessaoID: c.Sessoes[0].ID, Segundos: 1800})
	require.NoError(t, err)

	porDisciplina, total, err := f.svc.Estatisticas(ctx, f.user.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1800, total)
	require.Len(t, porDisciplina, 1)
	assert.Equal(t, "Disciplina", porDisciplina[0].DisciplinaNome)

	f.advance(7 * 24 * time.Hour)

	_, total, err = f.svc.Estatisticas(ctx, f.user.ID, 7)
	require.NoError(t, err)
	assert.Zero(t, total)

	_, total, err = f.svc.Estatisticas(ctx, f.user.ID, 8)
	require.NoError(t, err)
	assert.Equal(t, 1800, total)

	_, _, err = f.svc.Estatisticas(ctx, f.user.ID, 0)
	assert.Error(t, err)
}

func TestPremiumUsesServiceClock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.False(t, f.svc.Premium(f.user))

	expira := f.clock.Add(24 * time.Hour)
	require.NoError(t, f.repos.Users.UpdatePlano(ctx, f.user.ID, models.PlanoActive, &expira))
	user, err := f.repos.Users.GetByID(ctx, f.user.ID)
	require.NoError(t, err)

	assert.True(t, f.svc.Premium(user))

	f.advance(48 * time.Hour)
	assert.False(t, f.svc.Premium(user))
}
