package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/napolitain/idlekeep/internal/game"
	"github.com/napolitain/idlekeep/internal/loader"
)

type testServer struct {
	*httptest.Server
	game *game.Game
	mu   *sync.Mutex
	hub  *Hub
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	defs, err := loader.LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault: %v", err)
	}
	g, err := game.New(defs)
	if err != nil {
		t.Fatalf("game.New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	go hub.Run(ctx)

	mu := &sync.Mutex{}
	srv := httptest.NewServer(NewServer(g, hub, mu).Handler())
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return &testServer{Server: srv, game: g, mu: mu, hub: hub}
}

func (s *testServer) post(t *testing.T, path, body string) (*http.Response, ActionResponse) {
	t.Helper()
	resp, err := http.Post(s.URL+path, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()
	var out ActionResponse
	json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func TestGetState(t *testing.T) {
	s := newTestServer(t)
	resp, err := http.Get(s.URL + "/api/v1/state")
	if err != nil {
		t.Fatalf("GET state: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var view game.View
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(view.Resources) != 3 {
		t.Errorf("visible resources = %d, want food, wood and stone", len(view.Resources))
	}
	if view.Time.Weather != "Average" || view.Time.WeatherVisible {
		t.Errorf("time view = %+v", view.Time)
	}
}

func TestGetCatalog(t *testing.T) {
	s := newTestServer(t)
	resp, err := http.Get(s.URL + "/api/v1/catalog")
	if err != nil {
		t.Fatalf("GET catalog: %v", err)
	}
	defer resp.Body.Close()
	var cat CatalogView
	if err := json.NewDecoder(resp.Body).Decode(&cat); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(cat.Buildings) != len(s.game.Definitions().Buildings) {
		t.Errorf("catalog buildings = %d", len(cat.Buildings))
	}
	for _, u := range cat.Upgrades {
		if len(u.Effects) == 0 {
			t.Errorf("upgrade %s has no described effects", u.ID)
		}
	}
}

func TestConstruct(t *testing.T) {
	s := newTestServer(t)

	resp, out := s.post(t, "/api/v1/construct", `{"id":"farm"}`)
	if resp.StatusCode != http.StatusOK || !out.OK {
		t.Fatalf("construct farm: status %d, %+v", resp.StatusCode, out)
	}
	s.mu.Lock()
	count := s.game.Buildings().Count("farm")
	s.mu.Unlock()
	if count != 1 {
		t.Errorf("farm count = %d, want 1", count)
	}
	if len(out.State.Buildings) == 0 || out.State.Buildings[0].Count != 1 {
		t.Errorf("response state not refreshed: %+v", out.State.Buildings)
	}
}

func TestConstructErrors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		path   string
		body   string
		status int
		hint   string
	}{
		{"typo", "/api/v1/construct", `{"id":"farn"}`, http.StatusNotFound, "did you mean"},
		{"locked", "/api/v1/construct", `{"id":"market"}`, http.StatusConflict, "locked"},
		{"hidden upgrade", "/api/v1/purchase", `{"id":"iron_axes"}`, http.StatusConflict, "requirements"},
		{"bad body", "/api/v1/construct", `nope`, http.StatusBadRequest, "id"},
		{"missing id", "/api/v1/purchase", `{}`, http.StatusBadRequest, "id"},
	}
	for _, tt := range tests {
		resp, err := http.Post(s.URL+tt.path, "application/json", strings.NewReader(tt.body))
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		var buf bytes.Buffer
		buf.ReadFrom(resp.Body)
		resp.Body.Close()
		if resp.StatusCode != tt.status {
			t.Errorf("%s: status = %d, want %d", tt.name, resp.StatusCode, tt.status)
		}
		if !strings.Contains(buf.String(), tt.hint) {
			t.Errorf("%s: body %q does not mention %q", tt.name, buf.String(), tt.hint)
		}
	}
}

func TestCannotAffordStatus(t *testing.T) {
	s := newTestServer(t)
	s.mu.Lock()
	s.game.Ledger().Add("food", -100)
	s.mu.Unlock()

	resp, out := s.post(t, "/api/v1/construct", `{"id":"woodcutter"}`)
	if resp.StatusCode != http.StatusPaymentRequired || out.OK {
		t.Errorf("status = %d, ok = %v; want 402", resp.StatusCode, out.OK)
	}
}

func TestWebSocketRefresh(t *testing.T) {
	s := newTestServer(t)
	url := "ws" + strings.TrimPrefix(s.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	read := func() Message {
		t.Helper()
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("ReadJSON: %v", err)
		}
		return msg
	}

	if msg := read(); msg.Type != "hello" {
		t.Fatalf("first message type = %q, want hello", msg.Type)
	}

	// wait for registration before acting so the refresh is not missed
	deadline := time.Now().Add(5 * time.Second)
	for s.hub.Clients() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	s.post(t, "/api/v1/construct", `{"id":"farm"}`)
	msg := read()
	if msg.Type != "refresh" || msg.Sender != "server" {
		t.Errorf("message = %+v, want a server refresh", msg)
	}
}
