package handlers

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"interiorerp/internal/logging"
	"interiorerp/internal/services"
)

const telegramSecretHeader = "X-Telegram-Bot-Api-Secret-Token"

type IntegrationsHandler struct {
	links         services.TelegramLinkService
	webhookSecret string
}

func NewIntegrationsHandler(links services.TelegramLinkService, webhookSecret string) *IntegrationsHandler {
	return &IntegrationsHandler{links: links, webhookSecret: webhookSecret}
}

// POST /integrations/telegram/link
func (h *IntegrationsHandler) RequestTelegramLink(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	code, err := h.links.IssueCode(c.Request.Context(), u)
	if err != nil {
		fail(c, "telegram", "link", err)
		return
	}
	c.JSON(http.StatusOK, code)
}

// Webhook receives bot updates. It always answers 200 so Telegram does not
// retry updates we chose to ignore.
func (h *IntegrationsHandler) Webhook(c *gin.Context) {
	if h.webhookSecret != "" {
		got := c.GetHeader(telegramSecretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.webhookSecret)) != 1 {
			logging.Logger.Warnf("[telegram][webhook][deny] bad secret from %s", c.ClientIP())
			c.Status(http.StatusUnauthorized)
			return
		}
	}

	var upd tgbotapi.Update
	if err := c.ShouldBindJSON(&upd); err != nil {
		logging.Logger.Infof("[telegram][webhook][bind][err] %v", err)
		c.Status(http.StatusOK)
		return
	}
	h.links.HandleUpdate(c.Request.Context(), upd)
	c.Status(http.StatusOK)
}
