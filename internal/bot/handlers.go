package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/estudos/internal/ciclo"
	"github.com/example/estudos/internal/excel"
	"github.com/example/estudos/internal/service"
	"github.com/example/estudos/internal/storage"
	"github.com/example/estudos/pkg/models"
)

// Callback data prefixes
const (
	callbackSessao       = "sessao_"
	callbackTopico       = "top_"
	callbackRevisaoOK    = "rev_ok_"
	callbackRevisaoAdiar = "rev_adiar_"
	callbackFlashShow    = "fc_show_"
	callbackFlashQuality = "fc_q_"
	callbackClonar       = "clonar_"
	callbackSolAprovar   = "sol_ok_"
	callbackSolRejeitar  = "sol_no_"
	callbackPublicar     = "pub_"
)

// Topics offered as buttons after a study session
const maxTopicosBotoes = 8

// HandleCommand handles bot commands
func (b *Bot) HandleCommand(ctx context.Context, message *tgbotapi.Message) error {
	user, err := b.user(ctx, message.From)
	if err != nil {
		return err
	}
	chatID := message.Chat.ID
	args := strings.TrimSpace(message.CommandArguments())

	switch message.Command() {
	case "start":
		return b.handleStart(chatID, user)
	case "menu":
		return b.showMainMenu(chatID, "📋 Menu principal. Escolha uma opção:")
	case "ajuda", "help":
		return b.handleHelp(chatID, user)
	case "ciclo":
		return b.handleCiclo(ctx, chatID, user)
	case "proxima":
		return b.handleProxima(ctx, chatID, user)
	case "trocar":
		return b.handleTrocar(ctx, chatID, user, args)
	case "reordenar":
		return b.handleReordenar(ctx, chatID, user, args)
	case "estudar":
		return b.handleEstudar(ctx, chatID, user, args)
	case "novavolta":
		return b.handleNovaVolta(ctx, chatID, user)
	case "revisoes":
		return b.handleRevisoes(ctx, chatID, user)
	case "flashcards":
		return b.handleFlashcards(ctx, chatID, user)
	case "editais":
		return b.handleEditais(ctx, chatID, user)
	case "estatisticas":
		return b.handleEstatisticas(ctx, chatID, user, args)
	case "lembrete":
		return b.handleLembrete(ctx, chatID, user, args)
	case "assinar":
		return b.handleAssinar(ctx, chatID, user)
	case "portal":
		return b.handlePortal(ctx, chatID, user)
	case "solicitar":
		return b.handleSolicitar(chatID, message.From.ID, args)
	case "cancelar":
		return b.handleCancelar(chatID, message.From.ID)
	case "importar", "solicitacoes", "publicar":
		if !b.isAdmin(message.From.ID) {
			return b.sendText(chatID, "⛔ Este comando é exclusivo para administradores.")
		}
		switch message.Command() {
		case "importar":
			return b.handleImportar(chatID, message.From.ID, args)
		case "solicitacoes":
			return b.handleSolicitacoes(ctx, chatID)
		default:
			return b.handlePublicarMenu(ctx, chatID)
		}
	default:
		return b.showMainMenu(chatID, "Comando desconhecido. Use /ajuda para ver os comandos.")
	}
}

// user returns the account of a Telegram user, registering it on first contact
func (b *Bot) user(ctx context.Context, from *tgbotapi.User) (*models.User, error) {
	return b.svc.Registrar(ctx, from.ID, from.UserName, from.FirstName, b.isAdmin(from.ID))
}

func (b *Bot) handleStart(chatID int64, user *models.User) error {
	text := fmt.Sprintf("👋 Olá, %s! Bem-vindo ao seu planner de estudos para concursos.\n\n", user.FirstName) +
		"🔹 Como funciona:\n" +
		"1. Escolha um edital em /editais e monte seu ciclo\n" +
		"2. Estude a próxima sessão e registre com /estudar\n" +
		"3. Marque os tópicos concluídos para agendar revisões\n" +
		"4. Acompanhe revisões e flashcards todos os dias"

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = createKeyboard(b.MainMenuButtons())
	return b.sendMessage(msg)
}

func (b *Bot) handleHelp(chatID int64, user *models.User) error {
	text := "📖 Comandos\n\n" +
		"🔄 Ciclo:\n" +
		"/ciclo - Progresso do ciclo\n" +
		"/proxima - Próxima sessão\n" +
		"/estudar <minutos> [posição] - Registrar estudo\n" +
		"/trocar [posição] - Escolher a próxima sessão\n" +
		"/reordenar <de> <para> - Mudar a ordem das sessões\n" +
		"/novavolta - Começar outra volta\n\n" +
		"🧠 Revisões:\n" +
		"/revisoes - Painel de revisões\n" +
		"/flashcards - Revisar flashcards\n" +
		"/lembrete <hora|off> - Lembrete diário\n\n" +
		"📚 Editais:\n" +
		"/editais - Catálogo de editais\n" +
		"/solicitar <nome> [| órgão] - Pedir inclusão de edital\n\n" +
		"💳 Assinatura:\n" +
		"/assinar - Assinar o plano Premium\n" +
		"/portal - Gerenciar assinatura\n\n" +
		"/estatisticas [dias] - Tempo estudado\n" +
		"/cancelar - Cancelar a operação atual"

	if user.IsAdmin {
		text += "\n\n🛠 Administração:\n" +
			"/importar <nome do edital> - Importar planilha\n" +
			"/solicitacoes - Solicitações pendentes\n" +
			"/publicar - Publicar ou ocultar editais"
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = createKeyboard([][]MenuButton{
		{{Text: "⬅️ Voltar ao menu", CallbackData: "main_menu"}},
	})
	return b.sendMessage(msg)
}

func (b *Bot) handleCiclo(ctx context.Context, chatID int64, user *models.User) error {
	c, p, err := b.svc.CicloAtivo(ctx, user.ID)
	if err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(chatID, formatProgresso(c, p))
	msg.ReplyMarkup = createKeyboard([][]MenuButton{
		{
			{Text: "➡️ Próxima", CallbackData: "proxima"},
			{Text: "🔀 Trocar sessão", CallbackData: "trocar"},
		},
	})
	return b.sendMessage(msg)
}

func (b *Bot) handleProxima(ctx context.Context, chatID int64, user *models.User) error {
	_, p, err := b.svc.CicloAtivo(ctx, user.ID)
	if err != nil {
		return err
	}
	return b.sendText(chatID, formatProxima(p))
}

func (b *Bot) handleTrocar(ctx context.Context, chatID int64, user *models.User, args string) error {
	if args == "" {
		return b.showTrocarMenu(ctx, chatID, user)
	}
	posicao, err := strconv.Atoi(args)
	if err != nil {
		return b.sendText(chatID, "Uso: /trocar <posição>. Veja as posições em /ciclo.")
	}
	return b.trocarSessao(ctx, chatID, user, posicao)
}

func (b *Bot) showTrocarMenu(ctx context.Context, chatID int64, user *models.User) error {
	c, _, err := b.svc.CicloAtivo(ctx, user.ID)
	if err != nil {
		return err
	}

	var buttons [][]MenuButton
	for i, sc := range ciclo.Ordenar(c.Sessoes) {
		buttons = append(buttons, []MenuButton{{
			Text:         rotulo(fmt.Sprintf("%d. %s", i+1, sc.DisciplinaNome), 40),
			CallbackData: callbackSessao + strconv.Itoa(i+1),
		}})
	}

	msg := tgbotapi.NewMessage(chatID, "🔀 Qual sessão você quer estudar agora?")
	msg.ReplyMarkup = createKeyboard(buttons)
	return b.sendMessage(msg)
}

func (b *Bot) trocarSessao(ctx context.Context, chatID int64, user *models.User, posicao int) error {
	sc, err := b.svc.TrocarSessao(ctx, user.ID, posicao)
	if err != nil {
		return err
	}
	return b.sendText(chatID, fmt.Sprintf("🔀 Próxima sessão: %s. Bons estudos!", sc.DisciplinaNome))
}

func (b *Bot) handleReordenar(ctx context.Context, chatID int64, user *models.User, args string) error {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return b.sendText(chatID, "Uso: /reordenar <de> <para>. Exemplo: /reordenar 3 1")
	}
	de, err1 := strconv.Atoi(fields[0])
	para, err2 := strconv.Atoi(fields[1])
	if err1 != nil || err2 != nil {
		return b.sendText(chatID, "Uso: /reordenar <de> <para>. Exemplo: /reordenar 3 1")
	}

	if err := b.svc.ReordenarSessao(ctx, user.ID, de, para); err != nil {
		return err
	}
	return b.handleCiclo(ctx, chatID, user)
}

func (b *Bot) handleEstudar(ctx context.Context, chatID int64, user *models.User, args string) error {
	minutos, posicao, err := parseEstudarArgs(args)
	if err != nil {
		return b.sendText(chatID, "Uso: /estudar <minutos> [posição]. Exemplo: /estudar 50")
	}

	c, p, err := b.svc.CicloAtivo(ctx, user.ID)
	if err != nil {
		return err
	}

	var alvo models.SessaoCiclo
	if posicao == 0 {
		if p.CicloConcluido || p.ProximaSessao == nil {
			return b.sendText(chatID, formatProxima(p))
		}
		alvo = *p.ProximaSessao
	} else {
		sessoes := ciclo.Ordenar(c.Sessoes)
		if posicao > len(sessoes) {
			return ciclo.ErrSessaoNaoEncontrada
		}
		alvo = sessoes[posicao-1]
	}

	res, err := b.svc.RegistrarEstudo(ctx, user.ID, service.NovoEstudo{
		CicloSessaoID: alvo.ID,
		Segundos:      minutos * 60,
	})
	if err != nil {
		return err
	}

	text := fmt.Sprintf("✅ %s registrados em %s.\n\n%s", formatDuracao(minutos*60), alvo.DisciplinaNome, formatProgresso(c, res.Progresso))

	var buttons [][]MenuButton
	topicos, err := b.svc.Topicos(ctx, alvo.DisciplinaID)
	if err != nil {
		log.Printf("Error listing topics of %s: %v", alvo.DisciplinaID, err)
	}
	for _, t := range topicos {
		if t.Concluido {
			continue
		}
		if len(buttons) == maxTopicosBotoes {
			break
		}
		buttons = append(buttons, []MenuButton{{Text: "📘 " + rotulo(t.Nome, 40), CallbackData: callbackTopico + t.ID}})
	}

	msg := tgbotapi.NewMessage(chatID, text)
	if len(buttons) > 0 {
		msg.Text += "\n\nMarque os tópicos que você terminou para agendar as revisões:"
		msg.ReplyMarkup = createKeyboard(buttons)
	}
	return b.sendMessage(msg)
}

func (b *Bot) handleNovaVolta(ctx context.Context, chatID int64, user *models.User) error {
	if err := b.svc.NovaVolta(ctx, user.ID); err != nil {
		return err
	}
	if err := b.sendText(chatID, "🔁 Nova volta iniciada! O progresso do ciclo foi zerado."); err != nil {
		return err
	}
	return b.handleCiclo(ctx, chatID, user)
}

func (b *Bot) concluirTopico(ctx context.Context, callback *tgbotapi.CallbackQuery, user *models.User, topicoID string) error {
	revs, err := b.svc.ConcluirTopico(ctx, user.ID, topicoID)
	if err != nil {
		return err
	}

	datas := make([]string, len(revs))
	for i, r := range revs {
		datas[i] = r.DataPrevista.Format("02/01")
	}
	return b.sendText(callback.Message.Chat.ID, "📘 Tópico concluído! Revisões agendadas para "+strings.Join(datas, ", ")+".")
}

// revisoesView renders the revision dashboard with buttons for what is due
func (b *Bot) revisoesView(ctx context.Context, user *models.User) (string, *tgbotapi.InlineKeyboardMarkup, error) {
	painel, err := b.svc.PainelRevisoes(ctx, user.ID)
	if err != nil {
		return "", nil, err
	}

	var buttons [][]MenuButton
	abertas := append(append([]models.Revisao{}, painel.Atrasadas...), painel.PendentesHoje...)
	for i, r := range abertas {
		if i == maxItensSecao {
			break
		}
		buttons = append(buttons, []MenuButton{
			{Text: "✅ " + rotulo(nomeRevisao(r), 24), CallbackData: callbackRevisaoOK + r.ID},
			{Text: "⏭ Amanhã", CallbackData: callbackRevisaoAdiar + r.ID},
		})
	}

	if len(buttons) == 0 {
		return formatRevisoes(painel), nil, nil
	}
	keyboard := createKeyboard(buttons)
	return formatRevisoes(painel), &keyboard, nil
}

func (b *Bot) handleRevisoes(ctx context.Context, chatID int64, user *models.User) error {
	text, keyboard, err := b.revisoesView(ctx, user)
	if err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	if keyboard != nil {
		msg.ReplyMarkup = keyboard
	}
	return b.sendMessage(msg)
}

func (b *Bot) atualizarRevisao(ctx context.Context, callback *tgbotapi.CallbackQuery, user *models.User, revisaoID string, adiar bool) error {
	var err error
	if adiar {
		err = b.svc.AdiarRevisao(ctx, user.ID, revisaoID, 1)
	} else {
		err = b.svc.ConcluirRevisao(ctx, user.ID, revisaoID)
	}
	if err != nil {
		return err
	}

	text, keyboard, err := b.revisoesView(ctx, user)
	if err != nil {
		return err
	}
	return b.editMessage(callback.Message.Chat.ID, callback.Message.MessageID, text, keyboard)
}

func (b *Bot) handleFlashcards(ctx context.Context, chatID int64, user *models.User) error {
	cards, err := b.svc.FlashcardsPendentes(ctx, user.ID, b.config.FlashcardsPorRodada)
	if err != nil {
		return err
	}
	if len(cards) == 0 {
		return b.sendText(chatID, "🎉 Nenhum flashcard para revisar agora. Volte mais tarde!")
	}

	card := cards[0]
	msg := tgbotapi.NewMessage(chatID, formatFrente(card, len(cards)))
	msg.ReplyMarkup = createKeyboard([][]MenuButton{
		{{Text: "👀 Mostrar resposta", CallbackData: callbackFlashShow + card.ID}},
	})
	return b.sendMessage(msg)
}

func (b *Bot) mostrarVerso(ctx context.Context, callback *tgbotapi.CallbackQuery, user *models.User, flashcardID string) error {
	card, err := b.svc.Flashcard(ctx, user.ID, flashcardID)
	if err != nil {
		return err
	}

	var rows [][]MenuButton
	for _, linha := range [][]int{{0, 1, 2}, {3, 4, 5}} {
		var row []MenuButton
		for _, q := range linha {
			row = append(row, MenuButton{
				Text:         strconv.Itoa(q),
				CallbackData: fmt.Sprintf("%s%d_%s", callbackFlashQuality, q, card.ID),
			})
		}
		rows = append(rows, row)
	}

	keyboard := createKeyboard(rows)
	return b.editMessage(callback.Message.Chat.ID, callback.Message.MessageID, formatVerso(*card), &keyboard)
}

func (b *Bot) responderFlashcard(ctx context.Context, callback *tgbotapi.CallbackQuery, user *models.User, data string) error {
	partes := strings.SplitN(data, "_", 2)
	if len(partes) != 2 {
		return fmt.Errorf("invalid flashcard callback %q", data)
	}
	quality, err := strconv.Atoi(partes[0])
	if err != nil {
		return fmt.Errorf("invalid flashcard quality %q: %w", partes[0], err)
	}

	card, acertou, err := b.svc.RevisarFlashcard(ctx, user.ID, partes[1], quality)
	if err != nil {
		return err
	}

	text := fmt.Sprintf("🃏 %s\n\n💡 %s\n\n%s", card.Frente, card.Verso, formatResultadoFlashcard(card, acertou, b.svc.Dominado(card)))
	if err := b.editMessage(callback.Message.Chat.ID, callback.Message.MessageID, text, nil); err != nil {
		return err
	}
	return b.handleFlashcards(ctx, callback.Message.Chat.ID, user)
}

func (b *Bot) handleEditais(ctx context.Context, chatID int64, user *models.User) error {
	editais, err := b.svc.Editais(ctx, user.IsAdmin)
	if err != nil {
		return err
	}

	var buttons [][]MenuButton
	for i, e := range editais {
		buttons = append(buttons, []MenuButton{{
			Text:         rotulo(fmt.Sprintf("%d. %s", i+1, e.Nome), 40),
			CallbackData: callbackClonar + e.ID,
		}})
	}

	msg := tgbotapi.NewMessage(chatID, formatEditais(editais))
	if len(buttons) > 0 {
		msg.ReplyMarkup = createKeyboard(buttons)
	}
	return b.sendMessage(msg)
}

func (b *Bot) clonarEdital(ctx context.Context, callback *tgbotapi.CallbackQuery, user *models.User, editalDefaultID string) error {
	editalID, err := b.svc.ClonarEdital(ctx, user.ID, editalDefaultID)
	if err != nil {
		return err
	}

	segundos := int(b.config.TempoPadraoSessao.Seconds())
	c, err := b.svc.CriarCicloDoEdital(ctx, user.ID, editalID, segundos)
	if err != nil {
		return err
	}

	chatID := callback.Message.Chat.ID
	text := fmt.Sprintf("✅ Edital copiado! Ciclo \"%s\" criado com %d sessões de %s.\nUse /reordenar para ajustar a ordem.",
		c.Nome, len(c.Sessoes), formatDuracao(segundos))
	if err := b.sendText(chatID, text); err != nil {
		return err
	}
	return b.handleCiclo(ctx, chatID, user)
}

func (b *Bot) handleEstatisticas(ctx context.Context, chatID int64, user *models.User, args string) error {
	dias := 7
	if args != "" {
		n, err := strconv.Atoi(args)
		if err != nil || n <= 0 || n > 365 {
			return b.sendText(chatID, "Uso: /estatisticas [dias], entre 1 e 365.")
		}
		dias = n
	}

	itens, total, err := b.svc.Estatisticas(ctx, user.ID, dias)
	if err != nil {
		return err
	}
	return b.sendText(chatID, formatEstatisticas(itens, total, dias))
}

func (b *Bot) handleLembrete(ctx context.Context, chatID int64, user *models.User, args string) error {
	if args == "" {
		return b.sendText(chatID, formatLembrete(user)+"\n\nUso: /lembrete <hora> ou /lembrete off")
	}

	enabled, hour, err := parseLembrete(args)
	if err != nil {
		return b.sendText(chatID, "⚠️ Informe uma hora entre 0 e 23 ou \"off\".")
	}
	if !enabled {
		hour = user.NotificationHour
	}
	if err := b.svc.ConfigurarLembrete(ctx, user.ID, enabled, hour); err != nil {
		return err
	}

	user.NotificationEnabled = enabled
	user.NotificationHour = hour
	return b.sendText(chatID, formatLembrete(user))
}

func (b *Bot) handleAssinar(ctx context.Context, chatID int64, user *models.User) error {
	if b.svc.Premium(user) {
		return b.sendText(chatID, "✅ Sua assinatura já está ativa. Use /portal para gerenciá-la.")
	}

	url, err := b.svc.Assinar(ctx, user)
	if err != nil {
		return err
	}
	return b.sendLink(chatID, "💳 Assine o plano Premium para liberar todos os recursos.", "Assinar", url)
}

func (b *Bot) handlePortal(ctx context.Context, chatID int64, user *models.User) error {
	url, err := b.svc.Portal(ctx, user)
	if err != nil {
		return err
	}
	return b.sendLink(chatID, "⚙️ Gerencie sua assinatura, forma de pagamento e faturas.", "Abrir portal", url)
}

func (b *Bot) handleSolicitar(chatID, telegramID int64, args string) error {
	nome, orgao := parseSolicitacao(args)
	if nome == "" {
		return b.sendText(chatID, "Uso: /solicitar <nome do edital> [| órgão]\nExemplo: /solicitar Analista 2025 | TRF 3")
	}

	b.setState(telegramID, stateSolicitar, map[string]string{"nome": nome, "orgao": orgao})
	return b.sendText(chatID, "📎 Envie o PDF do edital ou responda \"pular\" para enviar sem arquivo. Use /cancelar para desistir.")
}

func (b *Bot) processSolicitacao(ctx context.Context, message *tgbotapi.Message, nome, orgao string) error {
	user, err := b.user(ctx, message.From)
	if err != nil {
		return err
	}
	retry := map[string]string{"nome": nome, "orgao": orgao}

	in := service.NovaSolicitacao{NomeEdital: nome, Orgao: orgao}
	switch {
	case message.Document != nil:
		if message.Document.FileSize > storage.MaxFileSize {
			b.setState(message.From.ID, stateSolicitar, retry)
			return storage.ErrArquivoInvalido
		}
		data, err := b.downloadDocument(ctx, message.Document, storage.MaxFileSize)
		if err != nil {
			return err
		}
		in.NomeArquivo = message.Document.FileName
		in.Arquivo = data
	case strings.EqualFold(strings.TrimSpace(message.Text), "pular"):
	default:
		b.setState(message.From.ID, stateSolicitar, retry)
		return b.sendText(message.Chat.ID, "📎 Envie o PDF do edital ou responda \"pular\". Use /cancelar para desistir.")
	}

	if _, err := b.svc.Solicitar(ctx, user.ID, in); err != nil {
		if errors.Is(err, storage.ErrArquivoInvalido) {
			b.setState(message.From.ID, stateSolicitar, retry)
		}
		return err
	}
	return b.sendText(message.Chat.ID, "✅ Solicitação enviada! Vamos avaliar e avisar quando o edital estiver no catálogo.")
}

func (b *Bot) handleCancelar(chatID, telegramID int64) error {
	if !b.clearState(telegramID) {
		return b.sendText(chatID, "Nada para cancelar.")
	}
	return b.sendText(chatID, "❎ Operação cancelada.")
}

func (b *Bot) handleImportar(chatID, telegramID int64, args string) error {
	if args == "" {
		return b.sendText(chatID, "Uso: /importar <nome do edital>")
	}
	b.setState(telegramID, stateImportar, map[string]string{"edital": args})
	return b.sendText(chatID, "📎 Envie a planilha (.xlsx ou .csv) com as colunas: Disciplina, Tópico, Frente, Verso. A primeira linha é o cabeçalho.")
}

func (b *Bot) processImport(ctx context.Context, message *tgbotapi.Message, editalNome string) error {
	if b.importer == nil {
		return service.ErrNaoConfigurado
	}

	ext := strings.ToLower(filepath.Ext(message.Document.FileName))
	if ext != ".xlsx" && ext != ".csv" {
		b.setState(message.From.ID, stateImportar, map[string]string{"edital": editalNome})
		return excel.ErrFormatoInvalido
	}

	data, err := b.downloadDocument(ctx, message.Document, b.config.MaxUploadBytes)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp("", "edital-*"+ext)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	cfg := excel.DefaultImportConfig()
	cfg.FilePath = tmp.Name()
	cfg.EditalNome = editalNome

	log.Printf("Importing %s into edital %q for admin %d", message.Document.FileName, editalNome, message.From.ID)
	result, err := b.importer.Import(ctx, cfg)
	if err != nil {
		return err
	}
	return b.sendText(message.Chat.ID, formatImportResult(result))
}

func (b *Bot) handleSolicitacoes(ctx context.Context, chatID int64) error {
	pendentes, err := b.svc.Solicitacoes(ctx, models.SolicitacaoPendente)
	if err != nil {
		return err
	}
	if len(pendentes) == 0 {
		return b.sendText(chatID, "📭 Nenhuma solicitação pendente.")
	}

	for _, sol := range pendentes {
		keyboard := createKeyboard([][]MenuButton{{
			{Text: "✅ Aprovar", CallbackData: callbackSolAprovar + sol.ID},
			{Text: "❌ Rejeitar", CallbackData: callbackSolRejeitar + sol.ID},
		}})
		if sol.ArquivoPath != nil {
			link, err := b.svc.LinkArquivo(ctx, &sol)
			if err != nil {
				log.Printf("Error signing file of request %s: %v", sol.ID, err)
			} else {
				keyboard.InlineKeyboard = append(keyboard.InlineKeyboard,
					tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonURL("📄 Baixar PDF", link)))
			}
		}

		msg := tgbotapi.NewMessage(chatID, formatSolicitacao(sol))
		msg.ReplyMarkup = keyboard
		if err := b.sendMessage(msg); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bot) resolverSolicitacao(ctx context.Context, callback *tgbotapi.CallbackQuery, id string, aprovada bool) error {
	if !b.isAdmin(callback.From.ID) {
		return b.sendText(callback.Message.Chat.ID, "⛔ Este comando é exclusivo para administradores.")
	}
	if err := b.svc.ResolverSolicitacao(ctx, id, aprovada, ""); err != nil {
		return err
	}

	status := "❌ Rejeitada"
	if aprovada {
		status = "✅ Aprovada"
	}
	return b.editMessage(callback.Message.Chat.ID, callback.Message.MessageID, callback.Message.Text+"\n\n"+status, nil)
}

// publicarView lists every template with a toggle button
func (b *Bot) publicarView(ctx context.Context) (string, *tgbotapi.InlineKeyboardMarkup, error) {
	editais, err := b.svc.Editais(ctx, true)
	if err != nil {
		return "", nil, err
	}
	if len(editais) == 0 {
		return "📭 Nenhum edital cadastrado. Use /importar para criar um.", nil, nil
	}

	var buttons [][]MenuButton
	for _, e := range editais {
		icone, alvo := "🔒", "1"
		if e.Publicado {
			icone, alvo = "🟢", "0"
		}
		buttons = append(buttons, []MenuButton{{
			Text:         icone + " " + rotulo(e.Nome, 40),
			CallbackData: callbackPublicar + alvo + "_" + e.ID,
		}})
	}
	keyboard := createKeyboard(buttons)
	return "📚 Toque em um edital para publicar (🟢) ou ocultar (🔒):", &keyboard, nil
}

func (b *Bot) handlePublicarMenu(ctx context.Context, chatID int64) error {
	text, keyboard, err := b.publicarView(ctx)
	if err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	if keyboard != nil {
		msg.ReplyMarkup = keyboard
	}
	return b.sendMessage(msg)
}

func (b *Bot) publicarEdital(ctx context.Context, callback *tgbotapi.CallbackQuery, data string) error {
	if !b.isAdmin(callback.From.ID) {
		return b.sendText(callback.Message.Chat.ID, "⛔ Este comando é exclusivo para administradores.")
	}
	partes := strings.SplitN(data, "_", 2)
	if len(partes) != 2 {
		return fmt.Errorf("invalid publish callback %q", data)
	}
	if err := b.svc.PublicarEdital(ctx, partes[1], partes[0] == "1"); err != nil {
		return err
	}

	text, keyboard, err := b.publicarView(ctx)
	if err != nil {
		return err
	}
	return b.editMessage(callback.Message.Chat.ID, callback.Message.MessageID, text, keyboard)
}

// HandleCallback handles inline button presses
func (b *Bot) HandleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) error {
	if callback == nil || callback.Message == nil || callback.From == nil {
		return fmt.Errorf("invalid callback data: required fields are missing")
	}

	// Always answer to remove the loading state
	answer := tgbotapi.NewCallback(callback.ID, "")
	if _, err := b.api.Request(answer); err != nil {
		log.Printf("Warning: Failed to answer callback: %v", err)
	}

	user, err := b.user(ctx, callback.From)
	if err != nil {
		return err
	}
	chatID := callback.Message.Chat.ID
	data := callback.Data

	switch data {
	case "main_menu":
		return b.showMainMenu(chatID, "📋 Menu principal. Escolha uma opção:")
	case "ciclo":
		return b.handleCiclo(ctx, chatID, user)
	case "proxima":
		return b.handleProxima(ctx, chatID, user)
	case "trocar":
		return b.showTrocarMenu(ctx, chatID, user)
	case "revisoes":
		return b.handleRevisoes(ctx, chatID, user)
	case "flashcards":
		return b.handleFlashcards(ctx, chatID, user)
	case "stats":
		return b.handleEstatisticas(ctx, chatID, user, "")
	case "editais":
		return b.handleEditais(ctx, chatID, user)
	}

	switch {
	case strings.HasPrefix(data, callbackSessao):
		posicao, err := strconv.Atoi(strings.TrimPrefix(data, callbackSessao))
		if err != nil {
			return fmt.Errorf("invalid session position in callback data: %w", err)
		}
		return b.trocarSessao(ctx, chatID, user, posicao)
	case strings.HasPrefix(data, callbackTopico):
		return b.concluirTopico(ctx, callback, user, strings.TrimPrefix(data, callbackTopico))
	case strings.HasPrefix(data, callbackRevisaoOK):
		return b.atualizarRevisao(ctx, callback, user, strings.TrimPrefix(data, callbackRevisaoOK), false)
	case strings.HasPrefix(data, callbackRevisaoAdiar):
		return b.atualizarRevisao(ctx, callback, user, strings.TrimPrefix(data, callbackRevisaoAdiar), true)
	case strings.HasPrefix(data, callbackFlashShow):
		return b.mostrarVerso(ctx, callback, user, strings.TrimPrefix(data, callbackFlashShow))
	case strings.HasPrefix(data, callbackFlashQuality):
		return b.responderFlashcard(ctx, callback, user, strings.TrimPrefix(data, callbackFlashQuality))
	case strings.HasPrefix(data, callbackClonar):
		return b.clonarEdital(ctx, callback, user, strings.TrimPrefix(data, callbackClonar))
	case strings.HasPrefix(data, callbackSolAprovar):
		return b.resolverSolicitacao(ctx, callback, strings.TrimPrefix(data, callbackSolAprovar), true)
	case strings.HasPrefix(data, callbackSolRejeitar):
		return b.resolverSolicitacao(ctx, callback, strings.TrimPrefix(data, callbackSolRejeitar), false)
	case strings.HasPrefix(data, callbackPublicar):
		return b.publicarEdital(ctx, callback, strings.TrimPrefix(data, callbackPublicar))
	default:
		return b.sendText(chatID, "⚠️ Ação desconhecida")
	}
}
