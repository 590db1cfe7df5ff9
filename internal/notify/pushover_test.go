package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"signal-trading-bot/internal/logger"
)

func init() {
	_ = logger.InitWithConfig(logger.LogConfig{Level: "ERROR", Format: "text"})
}

func TestNewPushoverNotifierMissingCredentials(t *testing.T) {
	t.Setenv("PUSHOVER_TOKEN", "")
	t.Setenv("PUSHOVER_USER", "")
	if _, err := NewPushoverNotifier(); err == nil {
		t.Fatal("expected error when credentials are absent")
	}
}

func TestSendSuccess(t *testing.T) {
	var gotToken, gotTitle, gotPriority string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		gotToken = r.FormValue("token")
		gotTitle = r.FormValue("title")
		gotPriority = r.FormValue("priority")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":1,"request":"abc"}`))
	}))
	defer srv.Close()

	t.Setenv("PUSHOVER_TOKEN", "app-token")
	t.Setenv("PUSHOVER_USER", "user-key")
	t.Setenv("PUSHOVER_API_URL", srv.URL)

	n, err := NewPushoverNotifier()
	if err != nil {
		t.Fatal(err)
	}
	if !n.Send(context.Background(), "order confirmed", "Trade", 1) {
		t.Error("expected Send to report success")
	}
	if gotToken != "app-token" || gotTitle != "Trade" || gotPriority != "1" {
		t.Errorf("unexpected form data token=%q title=%q priority=%q", gotToken, gotTitle, gotPriority)
	}
}

func TestSendAPIRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"status":0,"errors":["user identifier is invalid"]}`))
	}))
	defer srv.Close()

	t.Setenv("PUSHOVER_TOKEN", "app-token")
	t.Setenv("PUSHOVER_USER", "bad-user")
	t.Setenv("PUSHOVER_API_URL", srv.URL)

	n, err := NewPushoverNotifier()
	if err != nil {
		t.Fatal(err)
	}
	if n.Send(context.Background(), "msg", "title", 0) {
		t.Error("expected Send to report failure on api rejection")
	}
}

func TestSendTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	t.Setenv("PUSHOVER_TOKEN", "app-token")
	t.Setenv("PUSHOVER_USER", "user-key")
	t.Setenv("PUSHOVER_API_URL", srv.URL)

	n, err := NewPushoverNotifier()
	if err != nil {
		t.Fatal(err)
	}
	if n.Send(context.Background(), "msg", "title", 0) {
		t.Error("expected Send to report failure when the server is unreachable")
	}
}

func TestStdoutNotifierAlwaysSucceeds(t *testing.T) {
	n := NewStdoutNotifier()
	if !n.Send(context.Background(), "msg", "title", 0) {
		t.Error("stdout notifier must always succeed")
	}
}
