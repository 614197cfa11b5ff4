// Package placeholder serves an in-memory /todos collection that speaks
// the same JSON as jsonplaceholder.typicode.com. Unlike the public
// service it actually keeps writes, so it can back offline sessions and
// tests.
package placeholder

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"

	"github.com/Makepad-fr/tada-sync/internal/model"
)

// Options configure a Server.
type Options struct {
	Token  string // when set, requests must carry "Authorization: Bearer <Token>"
	Logger *log.Logger
}

type Server struct {
	mu     sync.Mutex
	todos  []model.Todo
	nextID int

	token string
	log   *log.Logger
}

// New returns a server seeded with a copy of seed.
func New(seed []model.Todo, opts Options) *Server {
	s := &Server{
		todos: make([]model.Todo, len(seed)),
		token: opts.Token,
		log:   opts.Logger,
	}
	copy(s.todos, seed)
	for _, t := range s.todos {
		if t.ID >= s.nextID {
			s.nextID = t.ID + 1
		}
	}
	if s.nextID == 0 {
		s.nextID = 1
	}
	if s.log == nil {
		s.log = log.New(io.Discard)
	}
	return s
}

// Snapshot returns a copy of the stored records.
func (s *Server) Snapshot() []model.Todo {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Todo, len(s.todos))
	copy(out, s.todos)
	return out
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.logRequests, s.requireToken)
	r.Methods(http.MethodGet).Path("/todos").HandlerFunc(s.list)
	r.Methods(http.MethodPost).Path("/todos").HandlerFunc(s.create)
	r.Methods(http.MethodGet).Path("/todos/{id:[0-9]+}").HandlerFunc(s.get)
	r.Methods(http.MethodPut, http.MethodPatch).Path("/todos/{id:[0-9]+}").HandlerFunc(s.update)
	r.Methods(http.MethodDelete).Path("/todos/{id:[0-9]+}").HandlerFunc(s.remove)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{})
	})
	return r
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.mu.Lock()
	out := make([]model.Todo, 0, len(s.todos))
	for _, t := range s.todos {
		if v := q.Get("userId"); v != "" && v != strconv.Itoa(t.UserID) {
			continue
		}
		if v := q.Get("completed"); v != "" && v != strconv.FormatBool(t.Completed) {
			continue
		}
		out = append(out, t)
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	s.mu.Lock()
	i := s.index(id)
	var t model.Todo
	if i >= 0 {
		t = s.todos[i]
	}
	s.mu.Unlock()
	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]any{})
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// patch carries the fields a client may send; nil means "not sent".
type patch struct {
	UserID    *int    `json:"userId"`
	Title     *string `json:"title"`
	Completed *bool   `json:"completed"`
}

func (p patch) apply(t *model.Todo) {
	if p.UserID != nil {
		t.UserID = *p.UserID
	}
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var p patch
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json"})
		return
	}
	s.mu.Lock()
	t := model.Todo{ID: s.nextID}
	s.nextID++
	p.apply(&t)
	s.todos = append(s.todos, t)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	var p patch
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json"})
		return
	}
	s.mu.Lock()
	i := s.index(id)
	var t model.Todo
	if i >= 0 {
		p.apply(&s.todos[i])
		t = s.todos[i]
	}
	s.mu.Unlock()
	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]any{})
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	s.mu.Lock()
	i := s.index(id)
	if i >= 0 {
		s.todos = append(s.todos[:i], s.todos[i+1:]...)
	}
	s.mu.Unlock()
	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]any{})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{})
}

func (s *Server) index(id int) int {
	for i, t := range s.todos {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token != "" {
			got := strings.TrimSpace(r.Header.Get("Authorization"))
			if !strings.HasPrefix(got, "Bearer ") || strings.TrimSpace(got[len("Bearer "):]) != s.token {
				writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "unauthorized"})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Info("request", "method", r.Method, "path", r.URL.Path, "status", rec.status,
			"request_id", r.Header.Get("X-Request-ID"), "took", time.Since(start).Round(time.Microsecond))
	})
}

func pathID(r *http.Request) int {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	return id
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
