// Package apitest provides an in-memory profile/score service for tests.
package apitest

import (
	"cmp"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/vovakirdan/catch-arcade/internal/api"
)

// Server is a fake service speaking the /api/perfiles, /api/scores and
// /api/leaderboard routes. It records every request it receives.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	nextID   int
	profiles map[api.ID]*api.Profile
	order    []api.ID
	history  map[api.ID][]api.HistoryItem
	streak   map[api.ID]int
	requests []string
	failing  bool
	posts    []api.MatchPost
}

// NewServer starts a fake service that is closed when t finishes.
func NewServer(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		profiles: make(map[api.ID]*api.Profile),
		history:  make(map[api.ID][]api.HistoryItem),
		streak:   make(map[api.ID]int),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/perfiles", s.listProfiles)
	mux.HandleFunc("POST /api/perfiles", s.createProfile)
	mux.HandleFunc("GET /api/perfiles/{id}", s.getProfile)
	mux.HandleFunc("PATCH /api/perfiles/{id}", s.updateProfile)
	mux.HandleFunc("PUT /api/perfiles/{id}", s.updateProfile)
	mux.HandleFunc("DELETE /api/perfiles/{id}", s.deleteProfile)
	mux.HandleFunc("POST /api/perfiles/{id}/partidas", s.postMatch)
	mux.HandleFunc("POST /api/scores/{id}", s.postMatch)
	mux.HandleFunc("GET /api/scores/{id}", s.getHistory)
	mux.HandleFunc("GET /api/leaderboard", s.leaderboard)

	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.Method+" "+r.URL.Path)
		failing := s.failing
		s.mu.Unlock()
		if failing {
			http.Error(w, "service unavailable", http.StatusServiceUnavailable)
			return
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(s.Close)
	return s
}

// SetFailing makes every request answer 503.
func (s *Server) SetFailing(failing bool) {
	s.mu.Lock()
	s.failing = failing
	s.mu.Unlock()
}

// Requests returns "METHOD /path" for every request received so far.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.requests)
}

// Count returns how many requests used method on a path starting with prefix.
func (s *Server) Count(method, prefix string) int {
	n := 0
	for _, r := range s.Requests() {
		m, p, _ := strings.Cut(r, " ")
		if m == method && strings.HasPrefix(p, prefix) {
			n++
		}
	}
	return n
}

// Posts returns the match reports received so far.
func (s *Server) Posts() []api.MatchPost {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.posts)
}

// Seed stores a profile directly and returns it with its assigned id.
func (s *Server) Seed(in api.ProfileInput) api.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.insert(in)
}

func (s *Server) insert(in api.ProfileInput) *api.Profile {
	s.nextID++
	p := &api.Profile{
		ID:          api.ID(fmt.Sprintf("p%d", s.nextID)),
		Username:    in.Username,
		Email:       in.Email,
		Avatar:      in.Avatar,
		Preferences: in.Preferences,
	}
	s.profiles[p.ID] = p
	s.order = append(s.order, p.ID)
	return p
}

func (s *Server) listProfiles(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]api.Profile, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.profiles[id])
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createProfile(w http.ResponseWriter, r *http.Request) {
	var in api.ProfileInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusCreated, s.insert(in))
}

func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[api.ID(r.PathValue("id"))]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "profile not found"})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	var patch api.ProfilePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[api.ID(r.PathValue("id"))]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "profile not found"})
		return
	}
	if patch.Username != nil {
		p.Username = *patch.Username
	}
	if patch.Email != nil {
		p.Email = *patch.Email
	}
	if patch.Avatar != nil {
		p.Avatar = *patch.Avatar
	}
	if patch.Preferences != nil {
		p.Preferences = *patch.Preferences
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) deleteProfile(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := api.ID(r.PathValue("id"))
	if _, ok := s.profiles[id]; !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "profile not found"})
		return
	}
	delete(s.profiles, id)
	delete(s.history, id)
	s.order = slices.DeleteFunc(s.order, func(x api.ID) bool { return x == id })
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) postMatch(w http.ResponseWriter, r *http.Request) {
	var m api.MatchPost
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := api.ID(r.PathValue("id"))
	p, ok := s.profiles[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "profile not found"})
		return
	}
	s.posts = append(s.posts, m)

	p.Stats.GamesPlayed++
	p.Stats.TotalScore += m.Score
	if m.Score > 0 {
		p.Stats.Wins++
		s.streak[id]++
		p.Stats.BestStreak = max(p.Stats.BestStreak, s.streak[id])
	} else {
		p.Stats.Losses++
		s.streak[id] = 0
	}
	s.history[id] = append(s.history[id], api.HistoryItem{
		Timestamp:  time.Now().UTC().Format("2006-01-02T15:04:05"),
		Score:      m.Score,
		Difficulty: m.Difficulty,
		Result:     m.Result,
	})
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) getHistory(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := api.ID(r.PathValue("id"))
	if _, ok := s.profiles[id]; !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "profile not found"})
		return
	}
	out := s.history[id]
	if out == nil {
		out = []api.HistoryItem{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) leaderboard(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	type row struct {
		ID         api.ID `json:"id"`
		Username   string `json:"username"`
		TotalScore int    `json:"totalScore"`
		HighScore  int    `json:"highScore"`
	}
	rows := make([]row, 0, len(s.order))
	for _, id := range s.order {
		p := s.profiles[id]
		high := 0
		for _, h := range s.history[id] {
			high = max(high, h.Score)
		}
		rows = append(rows, row{ID: id, Username: p.Username, TotalScore: p.Stats.TotalScore, HighScore: high})
	}
	slices.SortStableFunc(rows, func(a, b row) int { return cmp.Compare(b.TotalScore, a.TotalScore) })
	if len(rows) > 10 {
		rows = rows[:10]
	}
	writeJSON(w, http.StatusOK, rows)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
