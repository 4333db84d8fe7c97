package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

type slowSender struct {
	delay time.Duration
	err   error

	mu   sync.Mutex
	got  []string
	name string
}

func (s *slowSender) Name() string { return s.name }

func (s *slowSender) Send(_ context.Context, text string) error {
	time.Sleep(s.delay)
	s.mu.Lock()
	s.got = append(s.got, text)
	s.mu.Unlock()
	return s.err
}

func TestNotifierSendDoesNotBlock(t *testing.T) {
	s := &slowSender{name: "slow", delay: 200 * time.Millisecond}
	n := NewNotifier(s)

	start := time.Now()
	n.Send(context.Background(), "hello")
	if time.Since(start) > 100*time.Millisecond {
		t.Fatalf("Send blocked for %v", time.Since(start))
	}

	_ = n.Close()
	if len(s.got) != 1 || s.got[0] != "hello" {
		t.Fatalf("expected delivery after Close, got %v", s.got)
	}
}

func TestNotifierCountsFailures(t *testing.T) {
	bad := &slowSender{name: "bad", err: errors.New("503")}
	good := &slowSender{name: "good"}
	n := NewNotifier(bad, nil, good)

	n.Send(context.Background(), "a")
	n.Send(context.Background(), "b")
	_ = n.Close()

	if n.Failures() != 2 {
		t.Fatalf("expected 2 failures, got %d", n.Failures())
	}
	if len(good.got) != 2 {
		t.Fatalf("good sender should receive both, got %v", good.got)
	}
}

func TestNotifierUnconfiguredIsNoop(t *testing.T) {
	n := FromOptions(Options{TelegramToken: "only-token"})
	if n.Enabled() {
		t.Fatal("telegram without chat id must not be enabled")
	}
	n.Send(context.Background(), "ignored")
	_ = n.Close()
	if n.Failures() != 0 {
		t.Fatalf("expected no failures, got %d", n.Failures())
	}
}

func TestTelegramSenderPayload(t *testing.T) {
	var (
		path string
		body map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewTelegramSender("TOKEN", "123").WithAPIBase(srv.URL)
	if err := s.Send(context.Background(), "<b>BTCUSDT</b>"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	if path != "/botTOKEN/sendMessage" {
		t.Fatalf("unexpected path %s", path)
	}
	if body["chat_id"] != "123" || body["text"] != "<b>BTCUSDT</b>" || body["parse_mode"] != "HTML" || body["disable_web_page_preview"] != true {
		t.Fatalf("unexpected payload: %v", body)
	}
}

func TestTelegramSenderHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "chat not found", http.StatusBadRequest)
	}))
	defer srv.Close()

	if err := NewTelegramSender("T", "1").WithAPIBase(srv.URL).Send(context.Background(), "x"); err == nil {
		t.Fatal("expected error on 400")
	}
}

func TestDiscordSenderConvertsBold(t *testing.T) {
	var body map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	if err := NewDiscordSender(srv.URL).Send(context.Background(), "<b>ETHUSDT</b>\n<b>12.0 bps</b>"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if body["content"] != "**ETHUSDT**\n**12.0 bps**" {
		t.Fatalf("unexpected content: %q", body["content"])
	}
}
