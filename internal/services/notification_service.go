package services

import (
	"context"
	"fmt"
	"html"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"gopkg.in/gomail.v2"

	"interiorerp/internal/models"
)

// Notifier delivers best-effort messages to a user. Delivery failures are
// logged and never fail the operation that triggered them.
type Notifier interface {
	Notify(ctx context.Context, to *models.User, subject, body string)
}

type EmailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// NotificationService delivers by email and Telegram, each channel behind its
// own circuit breaker.
type NotificationService struct {
	log *logrus.Logger

	dialer     *gomail.Dialer
	from       string
	emailCB    *gobreaker.CircuitBreaker
	bot        *tgbotapi.BotAPI
	telegramCB *gobreaker.CircuitBreaker
	sms        SMSSender
	smsCB      *gobreaker.CircuitBreaker
}

type SMSSender interface {
	Send(ctx context.Context, to, text string) (string, error)
}

// NewNotificationService wires email and Telegram delivery. Either channel is
// disabled when its settings are empty.
func NewNotificationService(email EmailConfig, botToken string, log *logrus.Logger) *NotificationService {
	s := &NotificationService{
		log:        log,
		from:       email.From,
		emailCB:    newBreaker("email-cb", log),
		telegramCB: newBreaker("telegram-cb", log),
		smsCB:      newBreaker("sms-cb", log),
	}
	if email.Host != "" {
		s.dialer = gomail.NewDialer(email.Host, email.Port, email.User, email.Password)
	}
	if botToken != "" {
		bot, err := tgbotapi.NewBotAPI(botToken)
		if err != nil {
			log.Warnf("[notify][telegram][err] bot init: %v", err)
		} else {
			s.bot = bot
		}
	}
	return s
}

// WithSMS adds SMS as a third channel. Only the subject line is texted.
func (s *NotificationService) WithSMS(sms SMSSender) *NotificationService {
	s.sms = sms
	return s
}

func newBreaker(name string, log *logrus.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Infof("[notify][breaker] %s changed from %s to %s", name, from.String(), to.String())
		},
	})
}

func (s *NotificationService) Notify(ctx context.Context, to *models.User, subject, body string) {
	if to == nil {
		return
	}
	if s.dialer != nil && to.Email != "" {
		_, err := s.emailCB.Execute(func() (interface{}, error) {
			return nil, s.sendEmail(to.Email, subject, body)
		})
		if err != nil {
			s.log.Warnf("[notify][email][err] user=%s: %v", to.ID, err)
		} else {
			s.log.Debugf("[notify][email][ok] user=%s subject=%q", to.ID, subject)
		}
	}
	if s.bot != nil && to.TelegramChatID != 0 {
		_, err := s.telegramCB.Execute(func() (interface{}, error) {
			msg := tgbotapi.NewMessage(to.TelegramChatID, telegramText(subject, body))
			msg.ParseMode = tgbotapi.ModeHTML
			msg.DisableWebPagePreview = true
			return s.bot.Send(msg)
		})
		if err != nil {
			s.log.Warnf("[notify][telegram][err] user=%s: %v", to.ID, err)
		}
	}
	if s.sms != nil && to.Phone != "" {
		_, err := s.smsCB.Execute(func() (interface{}, error) {
			return s.sms.Send(ctx, to.Phone, subject)
		})
		if err != nil {
			s.log.Warnf("[notify][sms][err] user=%s: %v", to.ID, err)
		}
	}
}

// telegramText renders a notification for HTML parse mode. Titles are user input.
func telegramText(subject, body string) string {
	return fmt.Sprintf("<b>%s</b>\n%s", html.EscapeString(subject), html.EscapeString(body))
}

// Reply answers a Telegram chat directly. Used by the bot webhook for chats
// not yet linked to a profile.
func (s *NotificationService) Reply(_ context.Context, chatID int64, text string) {
	if s.bot == nil || chatID == 0 {
		return
	}
	_, err := s.telegramCB.Execute(func() (interface{}, error) {
		msg := tgbotapi.NewMessage(chatID, text)
		msg.ParseMode = tgbotapi.ModeHTML
		return s.bot.Send(msg)
	})
	if err != nil {
		s.log.Warnf("[notify][telegram][err] reply chat=%d: %v", chatID, err)
	}
}

func (s *NotificationService) sendEmail(addr, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", addr)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", fmt.Sprintf("<p>%s</p>", html.EscapeString(body)))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

// NopNotifier drops every message.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, *models.User, string, string) {}
