package services

import (
	"context"
	"errors"
	"testing"

	"interiorerp/internal/models"
)

type fakeSMS struct {
	sent []string
	err  error
}

func (f *fakeSMS) Send(_ context.Context, to, text string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, to+":"+text)
	return "id", nil
}

func TestNotifySMSSendsSubjectOnly(t *testing.T) {
	sms := &fakeSMS{}
	n := NewNotificationService(EmailConfig{}, "", quietLogger()).WithSMS(sms)

	n.Notify(context.Background(), &models.User{ID: "c1", Phone: "+7701"}, "Approval requested", "long body")
	n.Notify(context.Background(), &models.User{ID: "c2"}, "Approval requested", "no phone")
	n.Notify(context.Background(), nil, "x", "y")

	if len(sms.sent) != 1 || sms.sent[0] != "+7701:Approval requested" {
		t.Fatalf("sent = %v", sms.sent)
	}
}

func TestNotifySMSBreakerOpens(t *testing.T) {
	sms := &fakeSMS{err: errors.New("provider down")}
	n := NewNotificationService(EmailConfig{}, "", quietLogger()).WithSMS(sms)
	u := &models.User{ID: "c1", Phone: "+7701"}

	for i := 0; i < 6; i++ {
		n.Notify(context.Background(), u, "s", "b")
	}
	if got := n.smsCB.State().String(); got != "open" {
		t.Fatalf("breaker state = %s, want open", got)
	}
}

func TestTelegramTextEscapesTitles(t *testing.T) {
	tests := []struct {
		name          string
		subject, body string
		want          string
	}{
		{"plain", "New task", "Kitchen", "<b>New task</b>\nKitchen"},
		{"markup in title", "New task: Wall < 2m & trim", "Project <Sharma>", "<b>New task: Wall &lt; 2m &amp; trim</b>\nProject &lt;Sharma&gt;"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := telegramText(tt.subject, tt.body); got != tt.want {
				t.Fatalf("telegramText = %q, want %q", got, tt.want)
			}
		})
	}
}
