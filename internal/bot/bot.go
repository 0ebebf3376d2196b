// Package bot implements the Telegram transport: it translates chat updates
// (commands, free text, inline-keyboard callbacks) into calls on the catalog,
// form-session, and document services, and formats their results back into
// chat messages. All state beyond the update at hand lives in the services;
// the bot itself is stateless.
package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/moydoc/go-docgen-backend/internal/services"
)

// Bot wires the Telegram API client to the application services.
type Bot struct {
	api       *tgbotapi.BotAPI
	db        *gorm.DB
	templates *services.TemplateService
	documents *services.DocumentService
	forms     *services.FormService
}

// New constructs a Bot for the given token. It performs the getMe handshake,
// so an invalid token fails here rather than on the first update.
func New(token string, db *gorm.DB, tpls *services.TemplateService, docs *services.DocumentService, forms *services.FormService) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	log.Info().Str("username", api.Self.UserName).Msg("telegram bot authorized")
	return &Bot{api: api, db: db, templates: tpls, documents: docs, forms: forms}, nil
}

// Run consumes updates via long polling until ctx is cancelled. Updates for
// different users are independent; updates for one user arrive sequentially,
// which is what keeps per-user session access single-writer.
func (b *Bot) Run(ctx context.Context) {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30

	updates := b.api.GetUpdatesChan(cfg)
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.HandleUpdate(ctx, update)
		}
	}
}

// SetWebhook registers url with Telegram so updates arrive over HTTPS
// instead of long polling. Run must not be used afterwards.
func (b *Bot) SetWebhook(url string) error {
	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return err
	}
	if _, err := b.api.Request(wh); err != nil {
		return err
	}
	log.Info().Str("url", url).Msg("telegram webhook registered")
	return nil
}

// HandleUpdate dispatches one update. It is also the entry point for webhook
// delivery, where the HTTP layer decodes the update and hands it over.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("bot update handler panicked")
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand():
		b.handleCommand(ctx, update.Message)
	case update.Message != nil && update.Message.Text != "":
		b.handleText(ctx, update.Message)
	}
}

// send delivers a chattable and logs delivery failures; the bot never lets a
// failed send break update handling.
func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		log.Error().Err(err).Msg("telegram send failed")
	}
}

// answerCallback acknowledges a callback query, optionally with a toast text.
func (b *Bot) answerCallback(id, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(id, text)); err != nil {
		log.Error().Err(err).Msg("telegram callback answer failed")
	}
}
