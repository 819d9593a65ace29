package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gws "github.com/gorilla/websocket"

	"github.com/rfweber/qsotrainer/internal/session"
	"github.com/rfweber/qsotrainer/pkg/logger"
)

func TestOriginChecker(t *testing.T) {
	wildcard := originChecker([]string{"*"})
	if !wildcard(httptest.NewRequest(http.MethodGet, "/", nil)) {
		t.Fatal("wildcard should accept any origin")
	}

	strict := originChecker([]string{"http://example.com"})

	allowed := httptest.NewRequest(http.MethodGet, "/", nil)
	allowed.Header.Set("Origin", "http://example.com")
	if !strict(allowed) {
		t.Fatal("configured origin rejected")
	}

	denied := httptest.NewRequest(http.MethodGet, "/", nil)
	denied.Header.Set("Origin", "http://evil.example")
	if strict(denied) {
		t.Fatal("unknown origin accepted")
	}

	// Non-browser clients send no Origin header.
	if !strict(httptest.NewRequest(http.MethodGet, "/", nil)) {
		t.Fatal("missing origin should be accepted")
	}
}

func TestPublishReachesClient(t *testing.T) {
	server := NewServer([]string{"*"}, logger.Nop())
	defer server.Close()

	ts := httptest.NewServer(http.HandlerFunc(server.HandleWS))
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := gws.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Registration happens in the handler goroutine; wait for it.
	deadline := time.Now().Add(2 * time.Second)
	for {
		server.mu.Lock()
		n := len(server.clients)
		server.mu.Unlock()
		if n == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	want := session.Event{
		SessionID: "abc",
		Type:      "state",
		State:     session.StatePlaying,
		Current:   1,
		Total:     3,
	}
	server.Publish(want)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var got session.Event
	if err := json.Unmarshal(payload, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.SessionID != want.SessionID || got.State != want.State || got.Current != want.Current {
		t.Fatalf("event = %+v, want %+v", got, want)
	}
}

func TestPublishWithNoClients(t *testing.T) {
	server := NewServer(nil, logger.Nop())
	defer server.Close()

	// Must not panic or block.
	server.Publish(session.Event{SessionID: "abc", Type: "state"})
}

func TestCloseDisconnectsClients(t *testing.T) {
	server := NewServer([]string{"*"}, logger.Nop())

	ts := httptest.NewServer(http.HandlerFunc(server.HandleWS))
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := gws.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	server.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
