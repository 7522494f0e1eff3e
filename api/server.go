package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sort"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/keystroke-games/typerace/game/service"
	"github.com/keystroke-games/typerace/transport/websocket"
)

// Server is the HTTP surface of the race server. It exposes a read-only
// observer API over the room registry, a couple of admin operations, the
// WebSocket endpoint players connect to, and the static web client.
type Server struct {
	service   service.RaceService
	hub       *websocket.Hub
	wsRouter  *websocket.Router
	staticDir string
	router    *mux.Router
}

// NewServer creates a new API server. staticDir is the directory served at
// the root path; an empty string disables static hosting.
func NewServer(raceService service.RaceService, hub *websocket.Hub, wsRouter *websocket.Router, staticDir string) *Server {
	s := &Server{
		service:   raceService,
		hub:       hub,
		wsRouter:  wsRouter,
		staticDir: staticDir,
		router:    mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Observer endpoints
	api.HandleFunc("/rooms", s.handleListRooms).Methods("GET")
	api.HandleFunc("/rooms/{code}", s.handleGetRoom).Methods("GET")

	// Admin operations
	api.HandleFunc("/rooms/{code}/start", s.handleStartRace).Methods("POST")
	api.HandleFunc("/rooms/{code}/restart", s.handleRestartRace).Methods("POST")

	s.router.HandleFunc("/healthz", s.handleHealth).Methods("GET")

	// WebSocket
	s.router.HandleFunc("/ws", s.wsRouter.HandleWebSocket)

	// Static web client
	if s.staticDir != "" {
		s.router.PathPrefix("/").Handler(http.FileServer(http.Dir(s.staticDir)))
	}
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func errorStatus(err error) int {
	if errors.Is(err, service.ErrRoomNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// Room Handlers

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	rooms := s.service.ListRooms(r.Context())

	// Newest activity first
	sort.Slice(rooms, func(i, j int) bool {
		return rooms[i].LastActivityAt.After(rooms[j].LastActivityAt)
	})

	// Apply limit if specified
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < len(rooms) {
			rooms = rooms[:l]
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(rooms),
		"rooms": rooms,
	})
}

func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	room, err := s.service.GetRoom(r.Context(), code)
	if err != nil {
		respondError(w, errorStatus(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, room)
}

func (s *Server) handleStartRace(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	room, err := s.service.StartRace(r.Context(), code)
	if err != nil {
		respondError(w, errorStatus(err), err.Error())
		return
	}

	// Push the new state to connected players
	if s.hub != nil {
		s.hub.BroadcastRoom(code, room)
	}

	log.Printf("[API] start room=%s members=%d", code, room.MemberCount())
	respondJSON(w, http.StatusOK, room)
}

func (s *Server) handleRestartRace(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	room, err := s.service.RestartRace(r.Context(), code)
	if err != nil {
		respondError(w, errorStatus(err), err.Error())
		return
	}

	if s.hub != nil {
		s.hub.BroadcastRoom(code, room)
	}

	log.Printf("[API] restart room=%s members=%d", code, room.MemberCount())
	respondJSON(w, http.StatusOK, room)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"rooms":   len(s.service.ListRooms(r.Context())),
		"clients": s.hub.ClientCount(),
		"groups":  s.hub.GroupCount(),
	})
}
