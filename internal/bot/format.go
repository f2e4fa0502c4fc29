package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/example/estudos/internal/billing"
	"github.com/example/estudos/internal/ciclo"
	"github.com/example/estudos/internal/database"
	"github.com/example/estudos/internal/excel"
	"github.com/example/estudos/internal/revisoes"
	"github.com/example/estudos/internal/service"
	"github.com/example/estudos/internal/storage"
	"github.com/example/estudos/pkg/models"
)

// Revisions listed per dashboard section
const maxItensSecao = 10

// userMessage turns an operation error into the text shown in chat
func userMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrSemCiclo):
		return "📭 Você ainda não tem um ciclo ativo. Use /editais para escolher um edital e montar seu ciclo."
	case errors.Is(err, ciclo.ErrSessaoNaoEncontrada):
		return "⚠️ Sessão não encontrada no ciclo ativo. Use /ciclo para ver as posições."
	case errors.Is(err, storage.ErrArquivoInvalido):
		return "⚠️ Arquivo inválido: envie um PDF de até 20 MB."
	case errors.Is(err, excel.ErrFormatoInvalido):
		return "⚠️ Formato não suportado. Envie um arquivo .xlsx ou .csv."
	case errors.Is(err, billing.ErrSemCliente):
		return "💳 Você ainda não tem uma assinatura. Use /assinar para assinar."
	case errors.Is(err, service.ErrNaoConfigurado):
		return "⚙️ Este recurso não está disponível no momento."
	case errors.Is(err, database.ErrNotFound):
		return "🔍 Item não encontrado."
	default:
		return "❌ Ocorreu um erro. Tente novamente mais tarde."
	}
}

// formatDuracao renders seconds as "1h30min", "2h" or "45min"
func formatDuracao(segundos int) string {
	if segundos < 0 {
		segundos = 0
	}
	h := segundos / 3600
	m := (segundos % 3600) / 60
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh%02dmin", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dmin", m)
	}
}

func corEmoji(cor string) string {
	switch cor {
	case ciclo.CorConcluida:
		return "🟢"
	case ciclo.CorParcial:
		return "🟡"
	default:
		return "⚪"
	}
}

func formatProgresso(c *models.Ciclo, p ciclo.Progresso) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🔄 Ciclo: %s\n", c.Nome)
	fmt.Fprintf(&sb, "📈 Progresso: %d%% (%s de %s)\n\n", p.ProgressoPercentual,
		formatDuracao(p.TempoConcluido), formatDuracao(p.TotalTempo))

	for i, e := range p.Sessoes {
		fmt.Fprintf(&sb, "%d. %s %s: %s/%s", i+1, corEmoji(e.Cor), e.Sessao.DisciplinaNome,
			formatDuracao(e.TempoEstudado), formatDuracao(e.Sessao.TempoPrevisto))
		if e.Parcial {
			fmt.Fprintf(&sb, " (faltam %s)", formatDuracao(e.TempoFaltante))
		}
		sb.WriteString("\n")
	}

	if p.CicloConcluido {
		sb.WriteString("\n🎉 Ciclo concluído! Use /novavolta para começar outra volta.")
	} else if p.ProximaSessao != nil {
		fmt.Fprintf(&sb, "\n➡️ Próxima: %s", p.ProximaSessao.DisciplinaNome)
	}
	return sb.String()
}

func formatProxima(p ciclo.Progresso) string {
	if p.ProximaSessao == nil {
		return "📭 Seu ciclo não tem sessões."
	}
	if p.CicloConcluido {
		return fmt.Sprintf("🎉 Ciclo concluído! A próxima volta começa por %s. Use /novavolta para zerar o progresso.",
			p.ProximaSessao.DisciplinaNome)
	}
	for _, e := range p.Sessoes {
		if e.Sessao.ID != p.ProximaSessao.ID {
			continue
		}
		faltam := e.Sessao.TempoPrevisto
		if e.Parcial {
			faltam = e.TempoFaltante
		}
		return fmt.Sprintf("➡️ Próxima sessão: %s\n⏱ Faltam %s.\n\nAo terminar, use /estudar <minutos>.",
			e.Sessao.DisciplinaNome, formatDuracao(faltam))
	}
	return fmt.Sprintf("➡️ Próxima sessão: %s", p.ProximaSessao.DisciplinaNome)
}

func nomeRevisao(r models.Revisao) string {
	if r.TopicoNome != "" {
		return r.TopicoNome
	}
	return "Tópico"
}

func writeSecao(sb *strings.Builder, titulo string, revs []models.Revisao, comData bool) {
	if len(revs) == 0 {
		return
	}
	fmt.Fprintf(sb, "\n%s (%d)\n", titulo, len(revs))
	for i, r := range revs {
		if i == maxItensSecao {
			fmt.Fprintf(sb, "  … e mais %d\n", len(revs)-maxItensSecao)
			break
		}
		if comData {
			fmt.Fprintf(sb, "• %s (%s)\n", nomeRevisao(r), r.DataPrevista.Format("02/01"))
		} else {
			fmt.Fprintf(sb, "• %s\n", nomeRevisao(r))
		}
	}
}

func formatRevisoes(b revisoes.Buckets) string {
	if b.Estatisticas.Total == 0 {
		return "📭 Nenhuma revisão agendada. Conclua tópicos depois de estudar para agendar revisões."
	}

	var sb strings.Builder
	sb.WriteString("🧠 Suas revisões\n")
	writeSecao(&sb, "⏰ Atrasadas", b.Atrasadas, true)
	writeSecao(&sb, "📌 Para hoje", b.PendentesHoje, false)
	writeSecao(&sb, "📅 Amanhã", b.ProgramadasAmanha, false)
	writeSecao(&sb, "🗓 Próximos 7 dias", b.ProgramadasProximaSemana, true)
	if n := len(b.ProgramadasFuturas); n > 0 {
		fmt.Fprintf(&sb, "\n🔭 Mais adiante: %d\n", n)
	}
	fmt.Fprintf(&sb, "\n✅ Concluídas hoje: %d\n", len(b.ConcluidasHoje))
	fmt.Fprintf(&sb, "📊 Taxa de conclusão: %d%% de %d revisões", b.Estatisticas.TaxaConclusao, b.Estatisticas.Total)
	return sb.String()
}

// rotulo shortens s to fit a keyboard button
func rotulo(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max-1]) + "…"
}

func formatFrente(card models.Flashcard, restantes int) string {
	return fmt.Sprintf("🃏 Flashcard (%d para revisar)\n\n%s", restantes, card.Frente)
}

func formatVerso(card models.Flashcard) string {
	return fmt.Sprintf("🃏 %s\n\n💡 %s\n\nComo você se saiu? (0 = não lembrei, 5 = perfeito)", card.Frente, card.Verso)
}

func formatResultadoFlashcard(card *models.Flashcard, acertou, dominado bool) string {
	if !acertou {
		return "❌ Não foi dessa vez. O cartão volta amanhã e o tópico ganhou uma revisão extra."
	}
	text := fmt.Sprintf("✅ Boa! Próxima revisão em %s.", card.NextReviewDate.Format("02/01"))
	if dominado {
		text += " 🏆 Cartão dominado!"
	}
	return text
}

func formatEditais(editais []models.EditalDefault) string {
	if len(editais) == 0 {
		return "📭 Nenhum edital disponível ainda. Use /solicitar para pedir a inclusão de um edital."
	}
	var sb strings.Builder
	sb.WriteString("📚 Editais disponíveis:\n\n")
	for i, e := range editais {
		fmt.Fprintf(&sb, "%d. %s", i+1, e.Nome)
		var extras []string
		if e.Orgao != "" {
			extras = append(extras, e.Orgao)
		}
		if e.Banca != "" {
			extras = append(extras, e.Banca)
		}
		if e.Ano > 0 {
			extras = append(extras, strconv.Itoa(e.Ano))
		}
		if len(extras) > 0 {
			fmt.Fprintf(&sb, " (%s)", strings.Join(extras, ", "))
		}
		if !e.Publicado {
			sb.WriteString(" 🔒")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\nEscolha um edital para copiar para o seu plano e montar o ciclo.")
	return sb.String()
}

func formatEstatisticas(itens []models.TempoDisciplina, total, dias int) string {
	if total == 0 {
		return fmt.Sprintf("📊 Nenhum estudo registrado nos últimos %d dias.", dias)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 Últimos %d dias: %s estudados\n\n", dias, formatDuracao(total))
	for _, it := range itens {
		fmt.Fprintf(&sb, "• %s: %s em %d sessões\n", it.DisciplinaNome, formatDuracao(it.TempoEstudado), it.Sessoes)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatSolicitacao(sol models.SolicitacaoEdital) string {
	text := fmt.Sprintf("📝 %s", sol.NomeEdital)
	if sol.Orgao != "" {
		text += fmt.Sprintf(" (%s)", sol.Orgao)
	}
	text += fmt.Sprintf("\nEnviada em %s", sol.CreatedAt.Format("02/01/2006"))
	if sol.ArquivoPath == nil {
		text += "\nSem arquivo"
	}
	return text
}

func formatImportResult(r *excel.ImportResult) string {
	var sb strings.Builder
	if r.EditalCreated {
		sb.WriteString("✅ Edital criado.\n")
	} else {
		sb.WriteString("✅ Edital atualizado.\n")
	}
	fmt.Fprintf(&sb, "Linhas processadas: %d\n", r.TotalProcessed)
	fmt.Fprintf(&sb, "Disciplinas novas: %d\n", r.DisciplinasCreated)
	fmt.Fprintf(&sb, "Tópicos novos: %d\n", r.TopicosCreated)
	fmt.Fprintf(&sb, "Flashcards novos: %d\n", r.FlashcardsCreated)
	fmt.Fprintf(&sb, "Linhas ignoradas: %d", r.Skipped)
	if len(r.Errors) > 0 {
		fmt.Fprintf(&sb, "\n\n⚠️ Erros (%d):\n", len(r.Errors))
		for i, e := range r.Errors {
			if i == maxItensSecao {
				fmt.Fprintf(&sb, "… e mais %d", len(r.Errors)-maxItensSecao)
				break
			}
			sb.WriteString(e + "\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatLembrete(user *models.User) string {
	if !user.NotificationEnabled {
		return "🔕 Lembretes desativados."
	}
	return fmt.Sprintf("🔔 Lembretes ativos às %02d:00.", user.NotificationHour)
}

// parseEstudarArgs reads "<minutos> [posição]"; posição 0 means the next session
func parseEstudarArgs(args string) (minutos, posicao int, err error) {
	fields := strings.Fields(args)
	if len(fields) == 0 || len(fields) > 2 {
		return 0, 0, fmt.Errorf("usage: /estudar <minutos> [posição]")
	}
	minutos, err = strconv.Atoi(fields[0])
	if err != nil || minutos <= 0 {
		return 0, 0, fmt.Errorf("invalid minutes %q", fields[0])
	}
	if len(fields) == 2 {
		posicao, err = strconv.Atoi(fields[1])
		if err != nil || posicao <= 0 {
			return 0, 0, fmt.Errorf("invalid position %q", fields[1])
		}
	}
	return minutos, posicao, nil
}

// parseLembrete reads "off" or an hour between 0 and 23
func parseLembrete(args string) (enabled bool, hour int, err error) {
	arg := strings.ToLower(strings.TrimSpace(args))
	switch arg {
	case "off", "desligar", "não", "nao":
		return false, 0, nil
	}
	arg = strings.TrimSuffix(strings.TrimSuffix(arg, ":00"), "h")
	hour, err = strconv.Atoi(arg)
	if err != nil || hour < 0 || hour > 23 {
		return false, 0, fmt.Errorf("invalid hour %q", args)
	}
	return true, hour, nil
}

// parseSolicitacao reads "<nome do edital> [| órgão]"
func parseSolicitacao(args string) (nome, orgao string) {
	partes := strings.SplitN(args, "|", 2)
	nome = strings.TrimSpace(partes[0])
	if len(partes) == 2 {
		orgao = strings.TrimSpace(partes[1])
	}
	return nome, orgao
}

func pluralRevisoes(n int) string {
	if n == 1 {
		return "1 revisão"
	}
	return fmt.Sprintf("%d revisões", n)
}
