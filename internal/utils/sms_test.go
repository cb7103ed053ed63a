package utils

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/sirupsen/logrus"
)

func quietLog() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestSMSClientSend(t *testing.T) {
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/service/message/sendsmsmessage" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		got = r.PostForm
		_, _ = w.Write([]byte(`{"code":0,"data":{"messageId":"42"}}`))
	}))
	defer srv.Close()

	c := NewSMSClient("key", "ERP", srv.URL+"/", false, quietLog())
	id, err := c.Send(context.Background(), "+77010000000", "Approval requested")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if id != "42" {
		t.Fatalf("id = %q, want 42", id)
	}
	if got.Get("recipient") != "77010000000" || got.Get("from") != "ERP" || got.Get("apiKey") != "key" {
		t.Fatalf("unexpected form: %v", got)
	}
}

func TestSMSClientProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":1,"message":"bad recipient"}`))
	}))
	defer srv.Close()

	c := NewSMSClient("key", "", srv.URL, false, quietLog())
	if _, err := c.Send(context.Background(), "123", "x"); err == nil {
		t.Fatal("expected provider error")
	}
}

func TestSMSClientDryRunSkipsNetwork(t *testing.T) {
	c := NewSMSClient("key", "", "http://127.0.0.1:1", true, quietLog())
	if _, err := c.Send(context.Background(), "123", "x"); err != nil {
		t.Fatalf("dry run: %v", err)
	}
}
