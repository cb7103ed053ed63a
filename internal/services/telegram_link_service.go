package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"interiorerp/internal/models"
	"interiorerp/internal/repositories"
	"interiorerp/internal/utils"
)

// ChatReplier answers a Telegram chat that may not belong to any profile yet.
type ChatReplier interface {
	Reply(ctx context.Context, chatID int64, text string)
}

type LinkCode struct {
	Code      string    `json:"code"`
	DeepLink  string    `json:"deep_link,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TelegramLinkService binds Telegram chats to profiles so task notifications
// reach the bot as well as email.
type TelegramLinkService interface {
	IssueCode(ctx context.Context, u *models.User) (*LinkCode, error)
	HandleUpdate(ctx context.Context, upd tgbotapi.Update)
}

type telegramLinkService struct {
	links       repositories.TelegramLinkRepository
	replier     ChatReplier
	botUsername string
	ttl         time.Duration
	log         *logrus.Logger
}

func NewTelegramLinkService(
	links repositories.TelegramLinkRepository,
	replier ChatReplier,
	botUsername string,
	ttl time.Duration,
	log *logrus.Logger,
) TelegramLinkService {
	return &telegramLinkService{links: links, replier: replier, botUsername: botUsername, ttl: ttl, log: log}
}

func (s *telegramLinkService) IssueCode(ctx context.Context, u *models.User) (*LinkCode, error) {
	code, err := utils.NewLinkCode()
	if err != nil {
		return nil, fmt.Errorf("link code: %w", err)
	}
	l, err := s.links.Create(ctx, u.ID, code, s.ttl)
	if err != nil {
		return nil, err
	}
	out := &LinkCode{Code: l.Code, ExpiresAt: l.ExpiresAt}
	if s.botUsername != "" {
		out.DeepLink = fmt.Sprintf("https://t.me/%s?start=%s", s.botUsername, l.Code)
	}
	s.log.Infof("[telegram][link][issue] user=%s expires=%s", u.ID, l.ExpiresAt.Format(time.RFC3339))
	return out, nil
}

// HandleUpdate accepts "/start <code>" (deep link) and "/link <code>".
// Everything else gets a usage hint.
func (s *telegramLinkService) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	msg := upd.Message
	if msg == nil || msg.Chat == nil {
		return
	}
	chatID := msg.Chat.ID

	if !msg.IsCommand() || (msg.Command() != "start" && msg.Command() != "link") {
		s.replier.Reply(ctx, chatID, "Send <code>/link &lt;code&gt;</code> with the code from your profile page.")
		return
	}
	raw := strings.TrimSpace(msg.CommandArguments())
	if raw == "" {
		s.replier.Reply(ctx, chatID, "Hi! Open your profile page, request a Telegram code and send it here as <code>/link &lt;code&gt;</code>.")
		return
	}

	code, ok := utils.NormalizeLinkCode(raw)
	if !ok {
		s.log.Infof("[telegram][link][err] chat=%d malformed code", chatID)
		s.replier.Reply(ctx, chatID, "That code does not look right. It is 32 hex characters.")
		return
	}
	l, err := s.links.Redeem(ctx, code, chatID)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		s.log.Infof("[telegram][link][deny] chat=%d code expired or used", chatID)
		s.replier.Reply(ctx, chatID, "This code is invalid or has expired. Request a new one.")
		return
	case err != nil:
		s.log.Errorf("[telegram][link][err] chat=%d: %v", chatID, err)
		s.replier.Reply(ctx, chatID, "Could not link your account, please try again later.")
		return
	}
	s.log.Infof("[telegram][link][ok] user=%s chat=%d", l.UserID, chatID)
	s.replier.Reply(ctx, chatID, "Done! You will receive task notifications here.")
}
