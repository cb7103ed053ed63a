package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// SMSClient sends text messages through the Mobizon HTTP API.
type SMSClient struct {
	APIKey  string
	Sender  string
	BaseURL string
	DryRun  bool

	HTTP *http.Client
	Log  *logrus.Logger
}

type sendSMSResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		MessageID string `json:"messageId"`
	} `json:"data"`
}

func NewSMSClient(apiKey, sender, baseURL string, dryRun bool, log *logrus.Logger) *SMSClient {
	return &SMSClient{
		APIKey:  apiKey,
		Sender:  sender,
		BaseURL: strings.TrimRight(baseURL, "/"),
		DryRun:  dryRun,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
		Log:     log,
	}
}

// Send delivers text to the phone number to and returns the provider message id.
// In dry-run mode nothing leaves the process.
func (c *SMSClient) Send(ctx context.Context, to, text string) (string, error) {
	if c.DryRun {
		c.Log.Infof("[sms][send][dry-run] to=%s sender=%q text=%q", to, c.Sender, text)
		return "", nil
	}

	form := url.Values{
		"apiKey":    {c.APIKey},
		"recipient": {strings.TrimPrefix(to, "+")},
		"text":      {text},
	}
	if c.Sender != "" {
		form.Set("from", c.Sender)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.BaseURL+"/service/message/sendsmsmessage", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("send sms: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return "", fmt.Errorf("read sms response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("sms provider: http %d", resp.StatusCode)
	}
	var out sendSMSResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("parse sms response: %w", err)
	}
	if out.Code != 0 {
		return "", fmt.Errorf("sms provider: code %d: %s", out.Code, out.Message)
	}
	c.Log.Debugf("[sms][send][ok] to=%s id=%s", to, out.Data.MessageID)
	return out.Data.MessageID, nil
}
