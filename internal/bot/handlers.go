package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/moydoc/go-docgen-backend/internal/domain"
	"github.com/moydoc/go-docgen-backend/internal/repo"
	"github.com/moydoc/go-docgen-backend/internal/services"
)

// Callback data prefixes. Kept short because Telegram caps callback data at
// 64 bytes and template IDs are UUIDs.
const (
	cbCategory = "cat:"  // cat:<slug>: show templates in a category
	cbTemplate = "tpl:"  // tpl:<id>: show a template summary
	cbFill     = "fill:" // fill:<id>: start filling a template
	cbOption   = "opt:"  // opt:<index>: choose a select option
	cbMenu     = "menu"  // back to the main menu
	cbDocs     = "docs"  // list own documents
	cbCats     = "cats"  // back to the category list
	cbCancel   = "cancel"
)

const errGeneric = "Произошла ошибка. Попробуйте позже."

// ensureUser finds or creates the account bound to a Telegram identity.
func (b *Bot) ensureUser(ctx context.Context, from *tgbotapi.User) (*domain.User, error) {
	tid := strconv.FormatInt(from.ID, 10)
	u, err := repo.GetUserByTelegramID(ctx, b.db, tid)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	name := strings.TrimSpace(from.FirstName + " " + from.LastName)
	if name == "" {
		name = from.UserName
	}
	if name == "" {
		name = "Пользователь"
	}
	u = &domain.User{TelegramID: &tid, Name: name}
	if err := repo.CreateUser(ctx, b.db, u); err != nil {
		return nil, err
	}
	return u, nil
}

//
// Commands
//

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		b.cmdStart(ctx, msg)
	case "templates":
		b.sendCategories(ctx, msg.Chat.ID)
	case "documents":
		b.sendDocuments(ctx, msg)
	case "cancel":
		b.cmdCancel(ctx, msg)
	case "help":
		b.send(tgbotapi.NewMessage(msg.Chat.ID,
			"Команды:\n/templates — выбрать шаблон заявления\n/documents — ваши документы\n/cancel — отменить заполнение"))
	default:
		b.send(tgbotapi.NewMessage(msg.Chat.ID, "Неизвестная команда. Используйте /help"))
	}
}

func (b *Bot) cmdStart(ctx context.Context, msg *tgbotapi.Message) {
	if _, err := b.ensureUser(ctx, msg.From); err != nil {
		log.Error().Err(err).Msg("ensure user failed")
		b.send(tgbotapi.NewMessage(msg.Chat.ID, errGeneric))
		return
	}

	out := tgbotapi.NewMessage(msg.Chat.ID,
		"Добро пожаловать в конструктор заявлений! 👋\n\n"+
			"Я помогу вам создать юридически корректные заявления для МФЦ, судов, банков, ФНС и других организаций.\n\nВыберите действие:")
	out.ReplyMarkup = mainMenuKeyboard()
	b.send(out)
}

func (b *Bot) cmdCancel(ctx context.Context, msg *tgbotapi.Message) {
	key := strconv.FormatInt(msg.From.ID, 10)
	had, err := b.forms.Cancel(ctx, key)
	if err != nil {
		log.Error().Err(err).Msg("cancel form failed")
		b.send(tgbotapi.NewMessage(msg.Chat.ID, errGeneric))
		return
	}
	if !had {
		b.send(tgbotapi.NewMessage(msg.Chat.ID, "Сейчас нет активного заполнения."))
		return
	}
	out := tgbotapi.NewMessage(msg.Chat.ID, "❌ Заполнение формы отменено")
	out.ReplyMarkup = mainMenuKeyboard()
	b.send(out)
}

//
// Free text → form input
//

func (b *Bot) handleText(ctx context.Context, msg *tgbotapi.Message) {
	key := strconv.FormatInt(msg.From.ID, 10)
	if !b.forms.Active(key) {
		return // not in form-filling mode; ignore chatter
	}

	res, err := b.forms.Submit(ctx, key, msg.Text)
	if err != nil {
		log.Error().Err(err).Msg("form submit failed")
		b.send(tgbotapi.NewMessage(msg.Chat.ID, errGeneric))
		return
	}
	b.sendStepResult(msg.Chat.ID, res)
}

// sendStepResult replies to an accepted/rejected answer or a completed form.
func (b *Bot) sendStepResult(chatID int64, res *services.StepResult) {
	if res.Rejected != "" {
		b.send(tgbotapi.NewMessage(chatID, "❌ "+res.Rejected+"\n\nПопробуйте еще раз:"))
		b.sendPrompt(chatID, res.Prompt)
		return
	}
	if res.Done {
		out := tgbotapi.NewMessage(chatID,
			"✅ Отлично! Форма заполнена.\n\nВаш документ сохранен, PDF доступен в разделе «Мои документы».")
		out.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📄 Мои документы", cbDocs)),
			tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🏠 Главное меню", cbMenu)),
		)
		b.send(out)
		return
	}
	b.sendPrompt(chatID, res.Prompt)
}

// sendPrompt asks the current field's question, offering option buttons for
// select fields and a cancel button always.
func (b *Bot) sendPrompt(chatID int64, p *services.Prompt) {
	if p == nil {
		return
	}

	text := fmt.Sprintf("[Шаг %d/%d]\n\n❓ %s", p.Step, p.TotalSteps, p.Field.Label)
	if p.Field.IsRequired {
		text += " *"
	}
	if p.Field.Placeholder != "" {
		text += "\n\n💡 Например: " + p.Field.Placeholder
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(p.Options)+1)
	for i, opt := range p.Options {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(opt, cbOption+strconv.Itoa(i)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("❌ Отменить", cbCancel),
	))

	out := tgbotapi.NewMessage(chatID, text)
	out.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	b.send(out)
}

//
// Callback queries
//

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	data := cb.Data
	chatID := cb.Message.Chat.ID
	key := strconv.FormatInt(cb.From.ID, 10)

	switch {
	case data == cbMenu:
		b.answerCallback(cb.ID, "")
		out := tgbotapi.NewMessage(chatID, "Выберите действие:")
		out.ReplyMarkup = mainMenuKeyboard()
		b.send(out)

	case data == cbCats:
		b.answerCallback(cb.ID, "")
		b.sendCategories(ctx, chatID)

	case data == cbDocs:
		b.answerCallback(cb.ID, "")
		b.sendDocumentsFor(ctx, chatID, cb.From)

	case data == cbCancel:
		had, err := b.forms.Cancel(ctx, key)
		if err != nil {
			log.Error().Err(err).Msg("cancel form failed")
			b.answerCallback(cb.ID, errGeneric)
			return
		}
		b.answerCallback(cb.ID, "")
		text := "Сейчас нет активного заполнения."
		if had {
			text = "❌ Заполнение формы отменено"
		}
		out := tgbotapi.NewMessage(chatID, text)
		out.ReplyMarkup = mainMenuKeyboard()
		b.send(out)

	case strings.HasPrefix(data, cbCategory):
		b.answerCallback(cb.ID, "")
		b.sendCategoryTemplates(ctx, chatID, strings.TrimPrefix(data, cbCategory))

	case strings.HasPrefix(data, cbTemplate):
		b.answerCallback(cb.ID, "")
		b.sendTemplateSummary(ctx, chatID, strings.TrimPrefix(data, cbTemplate))

	case strings.HasPrefix(data, cbFill):
		b.startForm(ctx, cb, strings.TrimPrefix(data, cbFill))

	case strings.HasPrefix(data, cbOption):
		b.chooseOption(ctx, cb, strings.TrimPrefix(data, cbOption))

	default:
		b.answerCallback(cb.ID, "")
	}
}

func (b *Bot) startForm(ctx context.Context, cb *tgbotapi.CallbackQuery, templateID string) {
	user, err := b.ensureUser(ctx, cb.From)
	if err != nil {
		log.Error().Err(err).Msg("ensure user failed")
		b.answerCallback(cb.ID, errGeneric)
		return
	}

	key := strconv.FormatInt(cb.From.ID, 10)
	prompt, err := b.forms.Start(ctx, key, user.ID, templateID)
	if err != nil {
		if errors.Is(err, services.ErrTemplateNotFound) {
			b.answerCallback(cb.ID, "Шаблон не найден")
			return
		}
		log.Error().Err(err).Msg("start form failed")
		b.answerCallback(cb.ID, errGeneric)
		return
	}
	b.answerCallback(cb.ID, "")

	total := 0
	if prompt != nil {
		total = prompt.TotalSteps
	}
	b.send(tgbotapi.NewMessage(cb.Message.Chat.ID, fmt.Sprintf(
		"✏️ Начинаем заполнение.\n\nВсего шагов: %d\n\nОтвечайте на вопросы последовательно. Отменить можно командой /cancel", total)))
	b.sendPrompt(cb.Message.Chat.ID, prompt)
}

func (b *Bot) chooseOption(ctx context.Context, cb *tgbotapi.CallbackQuery, raw string) {
	index, err := strconv.Atoi(raw)
	if err != nil {
		b.answerCallback(cb.ID, "Неверный выбор")
		return
	}

	key := strconv.FormatInt(cb.From.ID, 10)
	res, err := b.forms.SelectOption(ctx, key, index)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoSession):
			b.answerCallback(cb.ID, "Сессия не найдена")
		case errors.Is(err, services.ErrOptionOutOfRange), errors.Is(err, services.ErrNotSelectField):
			b.answerCallback(cb.ID, "Неверный выбор")
		default:
			log.Error().Err(err).Msg("select option failed")
			b.answerCallback(cb.ID, errGeneric)
		}
		return
	}

	b.answerCallback(cb.ID, "Выбрано: "+res.Accepted)
	b.sendStepResult(cb.Message.Chat.ID, res)
}

//
// Catalog browsing
//

func mainMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📋 Шаблоны заявлений", cbCats)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📄 Мои документы", cbDocs)),
	)
}

func (b *Bot) sendCategories(ctx context.Context, chatID int64) {
	cats, err := b.templates.Categories(ctx)
	if err != nil {
		log.Error().Err(err).Msg("list categories failed")
		b.send(tgbotapi.NewMessage(chatID, errGeneric))
		return
	}
	if len(cats) == 0 {
		b.send(tgbotapi.NewMessage(chatID, "К сожалению, пока нет доступных шаблонов."))
		return
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(cats))
	for _, c := range cats {
		label := fmt.Sprintf("%s (%d)", c.Name, c.TemplateCount)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, cbCategory+c.Slug),
		))
	}

	out := tgbotapi.NewMessage(chatID, "📋 Выберите категорию заявлений:")
	out.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	b.send(out)
}

func (b *Bot) sendCategoryTemplates(ctx context.Context, chatID int64, slug string) {
	page, err := b.templates.List(ctx, services.ListParams{CategorySlug: slug, Page: 1})
	if err != nil {
		log.Error().Err(err).Msg("list templates failed")
		b.send(tgbotapi.NewMessage(chatID, errGeneric))
		return
	}
	if len(page.Templates) == 0 {
		b.send(tgbotapi.NewMessage(chatID, "В этой категории пока нет шаблонов."))
		return
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(page.Templates)+1)
	for _, t := range page.Templates {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(t.Title, cbTemplate+t.ID),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад", cbCats),
	))

	out := tgbotapi.NewMessage(chatID, "Выберите шаблон:")
	out.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	b.send(out)
}

func (b *Bot) sendTemplateSummary(ctx context.Context, chatID int64, templateID string) {
	tpl, err := b.templates.Get(ctx, templateID)
	if err != nil {
		if errors.Is(err, services.ErrTemplateNotFound) {
			b.send(tgbotapi.NewMessage(chatID, "Шаблон не найден."))
			return
		}
		log.Error().Err(err).Msg("get template failed")
		b.send(tgbotapi.NewMessage(chatID, errGeneric))
		return
	}

	text := fmt.Sprintf("📑 %s\n\n%s\n\nПолей для заполнения: %d", tpl.Title, tpl.Description, len(tpl.Fields))
	out := tgbotapi.NewMessage(chatID, text)
	out.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("✏️ Начать заполнение", cbFill+tpl.ID)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад", cbCategory+tpl.Category.Slug)),
	)
	b.send(out)
}

//
// Documents
//

func (b *Bot) sendDocuments(ctx context.Context, msg *tgbotapi.Message) {
	b.sendDocumentsFor(ctx, msg.Chat.ID, msg.From)
}

func (b *Bot) sendDocumentsFor(ctx context.Context, chatID int64, from *tgbotapi.User) {
	user, err := b.ensureUser(ctx, from)
	if err != nil {
		log.Error().Err(err).Msg("ensure user failed")
		b.send(tgbotapi.NewMessage(chatID, errGeneric))
		return
	}

	page, err := b.documents.ListPage(ctx, user.ID, "", 1, 10)
	if err != nil {
		log.Error().Err(err).Msg("list documents failed")
		b.send(tgbotapi.NewMessage(chatID, errGeneric))
		return
	}
	if len(page.Documents) == 0 {
		b.send(tgbotapi.NewMessage(chatID, "У вас пока нет созданных документов. Используйте /templates для создания нового."))
		return
	}

	var sb strings.Builder
	sb.WriteString("📄 Ваши документы:\n\n")
	for i, d := range page.Documents {
		status := "⏳"
		if d.Status == domain.DocumentStatusGenerated {
			status = "✅"
		}
		fmt.Fprintf(&sb, "%d. %s %s\n   Обновлен: %s\n\n", i+1, status, d.Title, d.UpdatedAt.Format("02.01.2006"))
	}
	b.send(tgbotapi.NewMessage(chatID, sb.String()))
}
