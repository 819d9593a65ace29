package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rfweber/qsotrainer/internal/config"
	"github.com/rfweber/qsotrainer/internal/qso"
	"github.com/rfweber/qsotrainer/internal/session"
	"github.com/rfweber/qsotrainer/internal/websocket"
	"github.com/rfweber/qsotrainer/pkg/logger"
)

type silentPlayer struct{}

func (silentPlayer) PlayToken(string) error { return nil }

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := config.DefaultConfig()
	log := logger.Nop()

	factory := func(string) (session.TokenPlayer, error) {
		return silentPlayer{}, nil
	}
	manager := session.NewManager(qso.NewSeededGenerator(1), factory, nil, nil, log)
	t.Cleanup(manager.CloseAll)

	wsServer := websocket.NewServer(cfg.Server.CORSAllowedOrigins, log)
	t.Cleanup(wsServer.Close)

	return NewRouter(manager, nil, wsServer, cfg, log).Routes()
}

func doJSON(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func createSession(t *testing.T, router http.Handler, body string) sessionResponse {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/v1/sessions", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status %d, body %s", rec.Code, rec.Body.String())
	}
	var resp sessionResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp
}

func TestCreateSessionDefaults(t *testing.T) {
	router := newTestRouter(t)
	resp := createSession(t, router, "")
	if resp.ID == "" || resp.State != session.StateReady {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Total != 5 {
		t.Fatalf("default count = %d, want 5", resp.Total)
	}
}

func TestCreateSessionOverrides(t *testing.T) {
	router := newTestRouter(t)
	resp := createSession(t, router, `{"count": 2, "verbosity": "minimal"}`)
	if resp.Total != 2 {
		t.Fatalf("count = %d, want 2", resp.Total)
	}
}

func TestCreateSessionRejectsBadConfig(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodPost, "/api/v1/sessions", `{"count": 500}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestUnknownSessionIs404(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/api/v1/sessions/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestSessionLifecycleOverHTTP(t *testing.T) {
	router := newTestRouter(t)
	created := createSession(t, router, `{"count": 1}`)
	base := "/api/v1/sessions/" + created.ID

	rec := doJSON(t, router, http.MethodPost, base+"/start", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("start: status %d, body %s", rec.Code, rec.Body.String())
	}
	var started sessionResponse
	if err := json.NewDecoder(rec.Body).Decode(&started); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if started.State != session.StatePlaying {
		t.Fatalf("state = %v, want %v", started.State, session.StatePlaying)
	}

	// Starting again conflicts with the current state.
	rec = doJSON(t, router, http.MethodPost, base+"/start", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("second start: status %d, want 409", rec.Code)
	}

	// The current exchange is visible but never includes ground truth.
	rec = doJSON(t, router, http.MethodGet, base+"/exchange", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("exchange: status %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "ground_truth") {
		t.Fatal("exchange response leaked ground truth")
	}

	// Submitting empty answers completes a one-exchange session.
	rec = doJSON(t, router, http.MethodPost, base+"/submit", `{"answers": {}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("submit: status %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, base, "")
	var final sessionResponse
	if err := json.NewDecoder(rec.Body).Decode(&final); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if final.State != session.StateComplete || final.Current != 1 {
		t.Fatalf("final state = %+v", final)
	}

	rec = doJSON(t, router, http.MethodGet, base+"/summary", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("summary: status %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodDelete, base, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: status %d", rec.Code)
	}
	rec = doJSON(t, router, http.MethodGet, base, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("after delete: status %d, want 404", rec.Code)
	}
}

func TestPauseResumeSkipOverHTTP(t *testing.T) {
	router := newTestRouter(t)
	created := createSession(t, router, `{"count": 2}`)
	base := "/api/v1/sessions/" + created.ID

	if rec := doJSON(t, router, http.MethodPost, base+"/start", ""); rec.Code != http.StatusOK {
		t.Fatalf("start: status %d", rec.Code)
	}
	if rec := doJSON(t, router, http.MethodPost, base+"/pause", ""); rec.Code != http.StatusOK {
		t.Fatalf("pause: status %d", rec.Code)
	}
	if rec := doJSON(t, router, http.MethodPost, base+"/resume", ""); rec.Code != http.StatusOK {
		t.Fatalf("resume: status %d", rec.Code)
	}
	if rec := doJSON(t, router, http.MethodPost, base+"/replay", ""); rec.Code != http.StatusOK {
		t.Fatalf("replay: status %d", rec.Code)
	}

	rec := doJSON(t, router, http.MethodPost, base+"/skip", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("skip: status %d", rec.Code)
	}
	var resp sessionResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Current != 1 || resp.State != session.StatePlaying {
		t.Fatalf("after skip: %+v", resp)
	}

	if rec := doJSON(t, router, http.MethodPost, base+"/stop", ""); rec.Code != http.StatusOK {
		t.Fatalf("stop: status %d", rec.Code)
	}
}

func TestHistoryDisabledWithoutStorage(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/api/v1/history", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/api/v1/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}
