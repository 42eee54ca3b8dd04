// Package api serves the simulation over HTTP.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (admin control plane).
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/talgya/statehouse/internal/engine"
	"github.com/talgya/statehouse/internal/persistence"
	"github.com/talgya/statehouse/internal/politics"
)

// Server serves the simulation state over HTTP. All access to Sim goes
// through mu; the engine itself is not safe for concurrent use.
type Server struct {
	Sim      *engine.Simulation
	DB       *persistence.DB
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.

	mu        sync.Mutex
	logCursor int
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	limiter := NewRateLimiter()
	limiter.SetLimit("advance", 60, time.Hour)
	limiter.SetLimit("intervention", 120, time.Hour)

	mux := http.NewServeMux()

	// Public endpoints (GET, read-only).
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/states", s.handleStates)
	mux.HandleFunc("/api/v1/state/", s.handleStateDetail)
	mux.HandleFunc("/api/v1/parties", s.handleParties)
	mux.HandleFunc("/api/v1/policies", s.handlePolicies)
	mux.HandleFunc("/api/v1/opinion", s.handleOpinion)
	mux.HandleFunc("/api/v1/events", s.handleEvents)
	mux.HandleFunc("/api/v1/log", s.handleLog)

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/advance", s.adminOnly(limiter.Limited("advance", s.handleAdvance)))
	mux.HandleFunc("/api/v1/intervention", s.adminOnly(limiter.Limited("intervention", s.handleIntervention)))
	mux.HandleFunc("/api/v1/snapshot", s.adminOnly(s.handleSnapshot))

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		handler := corsMiddleware(mux)
		if err := http.ListenAndServe(addr, handler); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// corsMiddleware adds CORS headers for allowed frontend origins. Set
// STATESIM_CORS_ORIGINS to a comma-separated list; localhost dev servers
// are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("STATESIM_CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no STATESIM_ADMIN_KEY set)", http.StatusForbidden)
				return
			}
			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sim := s.Sim
	writeJSON(w, map[string]any{
		"turn":  sim.Turn,
		"year":  sim.Year,
		"month": sim.Month,
		"seed":  sim.Seed,
		"president": map[string]any{
			"name":  sim.President.Name,
			"party": sim.President.Party,
		},
		"congress": map[string]any{
			"house_seats":    sim.Congress.HouseSeats,
			"senate_seats":   sim.Congress.SenateSeats,
			"house_control":  sim.Congress.ControlOf(politics.ChamberHouse),
			"senate_control": sim.Congress.ControlOf(politics.ChamberSenate),
		},
		"macro": map[string]any{
			"growth":       sim.Macro.Growth,
			"unemployment": sim.Macro.Unemployment,
			"inflation":    sim.Macro.Inflation,
		},
		"budget": map[string]any{
			"revenue":  sim.Budget.Revenue,
			"spending": sim.Budget.Spending,
			"deficit":  sim.Budget.Deficit(),
		},
	})
}

func (s *Server) handleStates(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	type stateEntry struct {
		Name         string           `json:"name"`
		Abbrev       string           `json:"abbrev"`
		Population   int64            `json:"population"`
		Unemployment float64          `json:"unemployment"`
		Governor     politics.PartyID `json:"governor"`
		Districts    int              `json:"districts"`
	}
	out := make([]stateEntry, 0, len(s.Sim.States))
	for _, st := range s.Sim.States {
		out = append(out, stateEntry{
			Name:         st.Name,
			Abbrev:       st.Abbrev,
			Population:   st.Population,
			Unemployment: st.Unemployment,
			Governor:     st.GovernorParty,
			Districts:    len(st.Districts),
		})
	}
	writeJSON(w, out)
}

func (s *Server) handleStateDetail(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/api/v1/state/")
	name = strings.ReplaceAll(name, "_", " ")

	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.Sim.StateByName(name)
	if st == nil {
		http.Error(w, "unknown state", http.StatusNotFound)
		return
	}
	writeJSON(w, st)
}

func (s *Server) handleParties(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*politics.Party, 0, len(s.Sim.Parties))
	for _, id := range s.Sim.PartyIDs() {
		out = append(out, s.Sim.Parties[id])
	}
	writeJSON(w, out)
}

func (s *Server) handlePolicies(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*politics.Policy, 0, len(s.Sim.Policies))
	for _, p := range s.Sim.Policies {
		if status != "" && string(p.Status) != status {
			continue
		}
		out = append(out, p)
	}
	writeJSON(w, out)
}

func (s *Server) handleOpinion(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, s.Sim.Opinion.Export())
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, s.Sim.Events.Catalog)
}

func (s *Server) handleLog(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 1000 {
			limit = n
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.Sim.Log
	if len(log) > limit {
		log = log[len(log)-limit:]
	}
	writeJSON(w, log)
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Months int `json:"months"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Months < 0 || req.Months > 120 {
		http.Error(w, "months must be in 0..120", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	report, err := s.Sim.Advance(req.Months)
	if err != nil {
		slog.Error("advance failed", "months", req.Months, "error", err)
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	s.persistLocked()
	writeJSON(w, report)
}

// interventionRequest carries one manual operation.
type interventionRequest struct {
	Type string `json:"type"` // "policy", "event", "effect"

	Actor  string           `json:"actor,omitempty"`
	Policy *politics.Policy `json:"policy,omitempty"`

	EventKey string `json:"event_key,omitempty"`

	Effect      *politics.EffectVector `json:"effect,omitempty"`
	Description string                 `json:"description,omitempty"`
}

func (s *Server) handleIntervention(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req interventionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request: "+err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	switch req.Type {
	case "policy":
		err = s.Sim.ProposePolicy(req.Actor, req.Policy)
	case "event":
		err = s.Sim.TriggerEvent(req.EventKey)
	case "effect":
		if req.Effect == nil {
			http.Error(w, "effect required", http.StatusBadRequest)
			return
		}
		err = s.Sim.TriggerEffect(*req.Effect, req.Description)
	default:
		http.Error(w, "unknown intervention type "+req.Type, http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	s.persistLocked()
	writeJSON(w, map[string]any{"ok": true, "turn": s.Sim.Turn})
}

// handleSnapshot returns the canonical snapshot on GET and forces a
// database save on POST.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch r.Method {
	case http.MethodGet:
		data, err := engine.MarshalSnapshot(s.Sim.Export())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	case http.MethodPost:
		s.persistLocked()
		writeJSON(w, map[string]any{"ok": true, "turn": s.Sim.Turn})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// StepAndSave advances one month and persists. Used by the auto-run loop.
func (s *Server) StepAndSave() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	report, err := s.Sim.Advance(1)
	if err != nil {
		return err
	}
	slog.Info("turn complete",
		"turn", s.Sim.Turn, "year", s.Sim.Year, "month", s.Sim.Month,
		"events", len(report.Events), "enacted", len(report.Enacted),
		"elections", len(report.Elections))
	s.persistLocked()
	return nil
}

// Persist forces a database save without advancing.
func (s *Server) Persist() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.DB == nil {
		return nil
	}
	cursor, err := s.DB.SaveState(s.Sim, s.logCursor)
	if err != nil {
		return err
	}
	s.logCursor = cursor
	return nil
}

// persistLocked saves to the database; callers hold mu.
func (s *Server) persistLocked() {
	if s.DB == nil {
		return
	}
	cursor, err := s.DB.SaveState(s.Sim, s.logCursor)
	if err != nil {
		slog.Error("save failed", "error", err)
		return
	}
	s.logCursor = cursor
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}
