// Telegram webhook handler.
//
// This file exposes POST /bot/webhook, the ingestion point for Telegram
// updates when the bot runs in webhook mode instead of long polling. The
// handler decodes the update envelope and hands it to the same dispatcher the
// polling loop uses.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/moydoc/go-docgen-backend/internal/http/middleware"
)

// UpdateHandler consumes one decoded Telegram update.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, update tgbotapi.Update)
}

// BotWebhook godoc
// @ID          botWebhook
// @Summary     Ingest a Telegram update
// @Description Accepts webhook deliveries from the Telegram Bot API. Always
// @Description answers 200 for well-formed payloads so Telegram does not
// @Description retry updates that merely failed downstream.
// @Tags        Bot
// @Accept      json
// @Produce     json
//
// @Success     200  "Update accepted"
// @Failure     400  {object}  handlers.ErrorResponse "Malformed update"
// @Failure     404  {object}  handlers.ErrorResponse "Bot not configured"
// @Router      /bot/webhook [post]
func BotWebhook(bot UpdateHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		if bot == nil {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "bot is not configured")
			return
		}

		var update tgbotapi.Update
		if err := c.ShouldBindJSON(&update); err != nil {
			middleware.LoggerFrom(c).Warn().Err(err).Msg("malformed telegram update")
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "malformed update")
			return
		}

		bot.HandleUpdate(c.Request.Context(), update)
		c.Status(http.StatusOK)
	}
}
