// Package stubserver is an in-memory podscript backend used by tests
// and by the hidden `podscript stub` dev command. Task snapshots are
// scripted: each poll of a task consumes the next element of its
// script, so tests can replay exact status sequences.
package stubserver

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/podscript/podscript-cli/internals/schemas"
)

type stubTask struct {
	current schemas.Task
	script  []schemas.Task
	logs    []schemas.TaskLog
}

type Server struct {
	mu     sync.Mutex
	tasks  map[string]*stubTask
	logger *slog.Logger

	// RequireToken, when non empty, makes every task endpoint demand
	// this bearer token and answer 401 otherwise.
	RequireToken string
	// Balance backs /credits/balance. A negative balance makes every
	// transcription start answer 402.
	Balance int

	// DownloadScript and TranscribeScript are cloned into new tasks.
	DownloadScript   []schemas.Task
	TranscribeScript []schemas.Task
}

func New(logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		tasks:   map[string]*stubTask{},
		logger:  logger,
		Balance: 100,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.middlewareLogger)
	r.Post("/auth/login", s.handleLogin)
	r.Post("/auth/register", s.handleLogin)
	r.Get("/credits/balance", s.handleBalance)
	r.Post("/tasks", s.handleCreate)
	r.Post("/tasks/upload", s.handleUpload)
	r.Post("/tasks/transcribe-url", s.handleTranscribeURL)
	r.Post("/tasks/{id}/transcribe", s.handleTranscribe)
	r.Get("/tasks/{id}", s.handleGet)
	r.Get("/tasks/{id}/logs", s.handleLogs)
	r.Get("/tasks/{id}/results", s.handleResults)
	r.Get("/tasks/{id}/transcript", s.handleTranscript)
	return r
}

func (s *Server) middlewareLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("stub request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("duration", time.Since(start)))
	})
}

// SeedTask installs a task with a fixed id and script. Tests use this
// to replay exact snapshot sequences.
func (s *Server) SeedTask(id string, current schemas.Task, script ...schemas.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current.ID = id
	for i := range script {
		script[i].ID = id
	}
	s.tasks[id] = &stubTask{current: current, script: script}
}

// AppendLog adds a log line to a seeded task.
func (s *Server) AppendLog(id, level, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if task, ok := s.tasks[id]; ok {
		task.logs = append(task.logs, schemas.TaskLog{
			Time:    time.Now().Format("15:04:05"),
			Level:   level,
			Message: message,
		})
	}
}

func (s *Server) authorized(r *http.Request) bool {
	if s.RequireToken == "" {
		return true
	}
	return r.Header.Get("Authorization") == "Bearer "+s.RequireToken
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req schemas.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		writeError(w, http.StatusBadRequest, "invalid credentials payload")
		return
	}
	token := s.RequireToken
	if token == "" {
		token = "stub-token-" + uuid.NewString()
	}
	writeJSON(w, http.StatusOK, schemas.LoginResponse{AccessToken: token})
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	balance := s.Balance
	if balance < 0 {
		balance = 0
	}
	writeJSON(w, http.StatusOK, schemas.BalanceResponse{Balance: balance})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	var req schemas.TaskCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.SourceURL) == "" {
		writeError(w, http.StatusBadRequest, "source_url is required")
		return
	}

	task := s.newTask(schemas.TaskStatusQueued, s.DownloadScript)
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "multipart form required")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	file.Close()

	// Uploads skip acquisition entirely.
	task := s.newTask(schemas.TaskStatusDownloaded, nil)
	task.Progress = 1.0
	s.mu.Lock()
	s.tasks[task.ID].current.Progress = 1.0
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleTranscribeURL(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	if s.Balance < 0 {
		writeError(w, http.StatusPaymentRequired, "insufficient balance")
		return
	}
	var req schemas.TranscribeURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AudioURL == "" {
		writeError(w, http.StatusBadRequest, "audio_url is required")
		return
	}
	task := s.newTask(schemas.TaskStatusTranscribing, s.TranscribeScript)
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	if s.Balance < 0 {
		writeError(w, http.StatusPaymentRequired, "insufficient balance")
		return
	}
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	task, ok := s.tasks[id]
	if !ok {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "Task not found")
		return
	}
	if !task.current.Status.AcquisitionDone() {
		status := task.current.Status
		s.mu.Unlock()
		writeError(w, http.StatusBadRequest, "Task must be in 'downloaded' status, current: "+string(status))
		return
	}
	task.current.Status = schemas.TaskStatusTranscribing
	task.current.Progress = 0
	task.script = append([]schemas.Task{}, s.TranscribeScript...)
	for i := range task.script {
		task.script[i].ID = id
	}
	snapshot := task.current
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, snapshot)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	task, ok := s.tasks[id]
	if !ok {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "Task not found")
		return
	}
	if len(task.script) > 0 {
		task.current = task.script[0]
		task.script = task.script[1:]
	}
	snapshot := task.current
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, snapshot)
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	task, ok := s.tasks[id]
	var logs []schemas.TaskLog
	if ok {
		logs = append(logs, task.logs...)
	}
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "Task not found")
		return
	}
	if logs == nil {
		logs = []schemas.TaskLog{}
	}
	writeJSON(w, http.StatusOK, logs)
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	task, ok := s.tasks[id]
	var status schemas.TaskStatus
	if ok {
		status = task.current.Status
	}
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "Task not found")
		return
	}
	if !status.TranscriptionDone() {
		writeError(w, http.StatusBadRequest, "Results not ready")
		return
	}
	writeJSON(w, http.StatusOK, schemas.TaskResults{
		SRTURL:      "/artifacts/" + id + "/result.srt",
		MarkdownURL: "/artifacts/" + id + "/result.md",
	})
}

func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	task, ok := s.tasks[id]
	var transcript schemas.Transcript
	if ok {
		transcript.Segments = append(transcript.Segments, task.current.PartialSegments...)
		if n := len(transcript.Segments); n > 0 {
			transcript.Duration = transcript.Segments[n-1].End
		}
	}
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "Task not found")
		return
	}
	writeJSON(w, http.StatusOK, transcript)
}

func (s *Server) newTask(status schemas.TaskStatus, script []schemas.Task) schemas.Task {
	id := uuid.NewString()
	task := schemas.Task{ID: id, Status: status}

	cloned := append([]schemas.Task{}, script...)
	for i := range cloned {
		cloned[i].ID = id
	}

	s.mu.Lock()
	s.tasks[id] = &stubTask{current: task, script: cloned}
	s.mu.Unlock()
	return task
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
