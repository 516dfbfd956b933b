// Package api exposes a running game over HTTP and pushes refresh events to
// WebSocket clients.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"sync"

	"github.com/napolitain/idlekeep/internal/economy"
	"github.com/napolitain/idlekeep/internal/game"
	"github.com/napolitain/idlekeep/internal/loader"
	"github.com/napolitain/idlekeep/internal/models"
)

// ActionRequest names the building or upgrade to act on
type ActionRequest struct {
	ID string `json:"id"`
}

// ActionResponse is returned by construct and purchase
type ActionResponse struct {
	OK    bool      `json:"ok"`
	Error string    `json:"error,omitempty"`
	State game.View `json:"state"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server serves one game. Every access to the game goes through mu, which
// the engine also holds while ticking.
type Server struct {
	mu      *sync.Mutex
	game    *game.Game
	hub     *Hub
	catalog CatalogView
}

// NewServer creates a server and subscribes it to the game's refresh events.
// mu must be the lock the engine holds around ticks.
func NewServer(g *game.Game, hub *Hub, mu *sync.Mutex) *Server {
	s := &Server{mu: mu, game: g, hub: hub, catalog: NewCatalogView(g.Definitions())}
	g.Subscribe(game.ListenerFunc(s.onEvent))
	return s
}

// onEvent runs inside the game's caller, which already holds mu
func (s *Server) onEvent(e game.Event) {
	if s.hub == nil {
		return
	}
	s.hub.Publish("refresh", s.game.View())
}

// Handler returns the HTTP routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/state", s.handleState)
	mux.HandleFunc("GET /api/v1/catalog", s.handleCatalog)
	mux.HandleFunc("POST /api/v1/construct", s.handleConstruct)
	mux.HandleFunc("POST /api/v1/purchase", s.handlePurchase)
	if s.hub != nil {
		mux.HandleFunc("GET /ws", s.handleWs)
	}
	return mux
}

func (s *Server) view() game.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.View()
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.view())
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog)
}

func (s *Server) handleConstruct(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeAction(w, r)
	if !ok {
		return
	}
	defs := s.game.Definitions()
	if !slices.Contains(defs.BuildingIDs(), req.ID) {
		writeJSON(w, http.StatusNotFound, errorResponse{
			Error: loader.UnknownIDError("building", req.ID, defs.BuildingIDs()).Error(),
		})
		return
	}
	s.act(w, func() error { return s.game.Construct(models.BuildingID(req.ID)) })
}

func (s *Server) handlePurchase(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeAction(w, r)
	if !ok {
		return
	}
	defs := s.game.Definitions()
	if !slices.Contains(defs.UpgradeIDs(), req.ID) {
		writeJSON(w, http.StatusNotFound, errorResponse{
			Error: loader.UnknownIDError("upgrade", req.ID, defs.UpgradeIDs()).Error(),
		})
		return
	}
	s.act(w, func() error { return s.game.Purchase(models.UpgradeID(req.ID)) })
}

// act runs an action under the lock and replies with the resulting state
func (s *Server) act(w http.ResponseWriter, action func() error) {
	s.mu.Lock()
	err := action()
	view := s.game.View()
	s.mu.Unlock()

	if err != nil {
		writeJSON(w, statusFor(err), ActionResponse{OK: false, Error: err.Error(), State: view})
		return
	}
	writeJSON(w, http.StatusOK, ActionResponse{OK: true, State: view})
}

func (s *Server) handleWs(w http.ResponseWriter, r *http.Request) {
	hello, err := json.Marshal(Message{Type: "hello", Payload: s.view(), Sender: "server"})
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	s.hub.ServeWs(w, r, hello)
}

func decodeAction(w http.ResponseWriter, r *http.Request) (ActionRequest, bool) {
	var req ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "expected a JSON body with an id"})
		return req, false
	}
	return req, true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, economy.ErrUnknownBuilding), errors.Is(err, economy.ErrUnknownUpgrade):
		return http.StatusNotFound
	case errors.Is(err, economy.ErrCannotAfford):
		return http.StatusPaymentRequired
	default:
		return http.StatusConflict
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
