package bot

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/estudos/internal/billing"
	"github.com/example/estudos/internal/ciclo"
	"github.com/example/estudos/internal/database"
	"github.com/example/estudos/internal/excel"
	"github.com/example/estudos/internal/revisoes"
	"github.com/example/estudos/internal/service"
	"github.com/example/estudos/internal/storage"
	"github.com/example/estudos/pkg/models"
)

func TestFormatDuracao(t *testing.T) {
	cases := map[int]string{
		0:    "0min",
		59:   "0min",
		60:   "1min",
		2700: "45min",
		3600: "1h",
		5400: "1h30min",
		7500: "2h05min",
		-10:  "0min",
	}
	for in, want := range cases {
		assert.Equal(t, want, formatDuracao(in), "segundos=%d", in)
	}
}

func TestUserMessage(t *testing.T) {
	wrapped := fmt.Errorf("failed to get edital: %w", database.ErrNotFound)

	assert.Contains(t, userMessage(service.ErrSemCiclo), "/editais")
	assert.Contains(t, userMessage(ciclo.ErrSessaoNaoEncontrada), "/ciclo")
	assert.Contains(t, userMessage(storage.ErrArquivoInvalido), "PDF")
	assert.Contains(t, userMessage(excel.ErrFormatoInvalido), ".xlsx")
	assert.Contains(t, userMessage(billing.ErrSemCliente), "/assinar")
	assert.Contains(t, userMessage(service.ErrNaoConfigurado), "não está disponível")
	assert.Contains(t, userMessage(wrapped), "não encontrado")
	assert.Contains(t, userMessage(errors.New("boom")), "Tente novamente")
}

func TestFormatProgresso(t *testing.T) {
	sessoes := []models.SessaoCiclo{
		{ID: "s1", DisciplinaNome: "Português", TempoPrevisto: 3600, Ordem: 0},
		{ID: "s2", DisciplinaNome: "Direito Constitucional", TempoPrevisto: 3600, Ordem: 1},
		{ID: "s3", DisciplinaNome: "Informática", TempoPrevisto: 1800, Ordem: 2},
	}
	s1, s2 := "s1", "s2"
	estudos := []models.SessaoEstudo{
		{CicloSessaoID: &s1, TempoEstudado: 3600},
		{CicloSessaoID: &s2, TempoEstudado: 1800},
	}
	p := ciclo.Calcular(sessoes, estudos, "")

	text := formatProgresso(&models.Ciclo{Nome: "TRF"}, p)
	assert.Contains(t, text, "🔄 Ciclo: TRF")
	assert.Contains(t, text, "Progresso: 33%")
	assert.Contains(t, text, "1. 🟢 Português: 1h/1h")
	assert.Contains(t, text, "2. 🟡 Direito Constitucional: 30min/1h (faltam 30min)")
	assert.Contains(t, text, "3. ⚪ Informática: 0min/30min")
	assert.Contains(t, text, "➡️ Próxima: Direito Constitucional")
}

func TestFormatProgressoConcluido(t *testing.T) {
	sessoes := []models.SessaoCiclo{{ID: "s1", DisciplinaNome: "Português", TempoPrevisto: 600}}
	s1 := "s1"
	p := ciclo.Calcular(sessoes, []models.SessaoEstudo{{CicloSessaoID: &s1, TempoEstudado: 900}}, "")

	assert.Contains(t, formatProgresso(&models.Ciclo{Nome: "X"}, p), "/novavolta")
	assert.Contains(t, formatProxima(p), "/novavolta")
}

func TestFormatProxima(t *testing.T) {
	sessoes := []models.SessaoCiclo{
		{ID: "s1", DisciplinaNome: "Português", TempoPrevisto: 3600, Ordem: 0},
		{ID: "s2", DisciplinaNome: "Matemática", TempoPrevisto: 3600, Ordem: 1},
	}
	s1 := "s1"
	p := ciclo.Calcular(sessoes, []models.SessaoEstudo{{CicloSessaoID: &s1, TempoEstudado: 1200}}, "")

	text := formatProxima(p)
	assert.Contains(t, text, "Português")
	assert.Contains(t, text, "Faltam 40min")

	p = ciclo.Calcular(sessoes, nil, "s2")
	assert.Contains(t, formatProxima(p), "Matemática")

	assert.Contains(t, formatProxima(ciclo.Progresso{}), "não tem sessões")
}

func TestFormatRevisoes(t *testing.T) {
	now := time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC)
	hoje := models.Dia(now)
	rev := func(nome string, dias int, status string) models.Revisao {
		return models.Revisao{
			TopicoNome:   nome,
			DataPrevista: hoje.AddDate(0, 0, dias),
			Status:       status,
			Origem:       models.OrigemTeorica,
			Dificuldade:  models.DificuldadeMedio,
		}
	}

	b := revisoes.Categorizar([]models.Revisao{
		rev("Crase", -2, models.StatusPendente),
		rev("Concordância", 0, models.StatusPendente),
		rev("Regência", 1, models.StatusPendente),
		rev("Pronomes", 3, models.StatusPendente),
		rev("Sintaxe", 30, models.StatusPendente),
	}, now)

	text := formatRevisoes(b)
	assert.Contains(t, text, "⏰ Atrasadas (1)")
	assert.Contains(t, text, "• Crase (16/10)")
	assert.Contains(t, text, "📌 Para hoje (1)")
	assert.Contains(t, text, "📅 Amanhã (1)")
	assert.Contains(t, text, "• Pronomes (21/10)")
	assert.Contains(t, text, "Mais adiante: 1")
	assert.Contains(t, text, "Taxa de conclusão: 0% de 5 revisões")

	assert.Contains(t, formatRevisoes(revisoes.Categorizar(nil, now)), "Nenhuma revisão")
}

func TestFormatRevisoesTruncatesLongSections(t *testing.T) {
	now := time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC)
	var revs []models.Revisao
	for i := 0; i < maxItensSecao+3; i++ {
		revs = append(revs, models.Revisao{
			TopicoNome:   fmt.Sprintf("T%d", i),
			DataPrevista: models.Dia(now),
			Status:       models.StatusPendente,
			Origem:       models.OrigemManual,
		})
	}

	text := formatRevisoes(revisoes.Categorizar(revs, now))
	assert.Contains(t, text, "e mais 3")
	assert.NotContains(t, text, fmt.Sprintf("T%d\n", maxItensSecao))
}

func TestFormatEditais(t *testing.T) {
	text := formatEditais([]models.EditalDefault{
		{Nome: "INSS", Orgao: "INSS", Banca: "Cebraspe", Ano: 2024, Publicado: true},
		{Nome: "Rascunho"},
	})
	assert.Contains(t, text, "1. INSS (INSS, Cebraspe, 2024)")
	assert.Contains(t, text, "2. Rascunho 🔒")

	assert.Contains(t, formatEditais(nil), "/solicitar")
}

func TestFormatEstatisticas(t *testing.T) {
	text := formatEstatisticas([]models.TempoDisciplina{
		{DisciplinaNome: "Português", TempoEstudado: 5400, Sessoes: 2},
	}, 5400, 7)
	assert.Contains(t, text, "Últimos 7 dias: 1h30min")
	assert.Contains(t, text, "• Português: 1h30min em 2 sessões")

	assert.Contains(t, formatEstatisticas(nil, 0, 30), "últimos 30 dias")
}

func TestFormatImportResult(t *testing.T) {
	text := formatImportResult(&excel.ImportResult{
		EditalCreated:      true,
		TotalProcessed:     4,
		DisciplinasCreated: 2,
		TopicosCreated:     3,
		FlashcardsCreated:  1,
		Skipped:            1,
		Errors:             []string{"Row 5: flashcard needs both frente and verso"},
	})
	assert.True(t, strings.HasPrefix(text, "✅ Edital criado."))
	assert.Contains(t, text, "Tópicos novos: 3")
	assert.Contains(t, text, "⚠️ Erros (1)")
	assert.Contains(t, text, "Row 5")
}

func TestFormatResultadoFlashcard(t *testing.T) {
	card := &models.Flashcard{NextReviewDate: time.Date(2026, 10, 24, 0, 0, 0, 0, time.UTC)}

	assert.Equal(t, "✅ Boa! Próxima revisão em 24/10.", formatResultadoFlashcard(card, true, false))
	assert.Contains(t, formatResultadoFlashcard(card, true, true), "dominado")
	assert.Contains(t, formatResultadoFlashcard(card, false, false), "amanhã")
}

func TestParseEstudarArgs(t *testing.T) {
	minutos, posicao, err := parseEstudarArgs("50")
	require.NoError(t, err)
	assert.Equal(t, 50, minutos)
	assert.Equal(t, 0, posicao)

	minutos, posicao, err = parseEstudarArgs(" 90  3 ")
	require.NoError(t, err)
	assert.Equal(t, 90, minutos)
	assert.Equal(t, 3, posicao)

	for _, bad := range []string{"", "abc", "0", "-5", "30 0", "30 x", "1 2 3"} {
		_, _, err := parseEstudarArgs(bad)
		assert.Error(t, err, "args=%q", bad)
	}
}

func TestParseLembrete(t *testing.T) {
	enabled, hour, err := parseLembrete("off")
	require.NoError(t, err)
	assert.False(t, enabled)

	for in, want := range map[string]int{"8": 8, "08h": 8, "21:00": 21, "0": 0} {
		enabled, hour, err = parseLembrete(in)
		require.NoError(t, err, in)
		assert.True(t, enabled)
		assert.Equal(t, want, hour, in)
	}

	for _, bad := range []string{"24", "-1", "manhã"} {
		_, _, err := parseLembrete(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseSolicitacao(t *testing.T) {
	nome, orgao := parseSolicitacao(" Analista Judiciário 2025 | TRF 3 ")
	assert.Equal(t, "Analista Judiciário 2025", nome)
	assert.Equal(t, "TRF 3", orgao)

	nome, orgao = parseSolicitacao("PF Agente")
	assert.Equal(t, "PF Agente", nome)
	assert.Empty(t, orgao)
}

func TestRotulo(t *testing.T) {
	assert.Equal(t, "curto", rotulo("curto", 10))
	assert.Equal(t, "Conjunçõe…", rotulo("Conjunções coordenativas", 10))
}

func TestPluralRevisoes(t *testing.T) {
	assert.Equal(t, "1 revisão", pluralRevisoes(1))
	assert.Equal(t, "3 revisões", pluralRevisoes(3))
}

func TestCreateKeyboard(t *testing.T) {
	b := newBot(nil, DefaultConfig(), nil, nil)
	keyboard := createKeyboard(b.MainMenuButtons())

	require.Len(t, keyboard.InlineKeyboard, 3)
	assert.Len(t, keyboard.InlineKeyboard[0], 2)
	require.NotNil(t, keyboard.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "ciclo", *keyboard.InlineKeyboard[0][0].CallbackData)
}

func TestUserStates(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AdminIDs = []int64{7}
	b := newBot(nil, cfg, nil, nil)

	assert.True(t, b.isAdmin(7))
	assert.False(t, b.isAdmin(8))

	b.setState(1, stateImportar, map[string]string{"edital": "INSS"})
	state, ok := b.popState(1)
	require.True(t, ok)
	assert.Equal(t, stateImportar, state.Action)
	assert.Equal(t, "INSS", state.Data["edital"])

	_, ok = b.popState(1)
	assert.False(t, ok, "state is consumed")

	b.setState(2, stateSolicitar, nil)
	assert.True(t, b.clearState(2))
	assert.False(t, b.clearState(2))
}

func TestUserStateExpires(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StateTTL = time.Minute
	b := newBot(nil, cfg, nil, nil)

	b.setState(1, stateSolicitar, nil)
	b.mu.Lock()
	st := b.userStates[1]
	st.Timestamp = time.Now().Add(-2 * time.Minute)
	b.userStates[1] = st
	b.mu.Unlock()

	_, ok := b.popState(1)
	assert.False(t, ok)
}
