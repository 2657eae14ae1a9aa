package httpchat

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/yuriiter/freccia/pkg/bot"
	"github.com/yuriiter/freccia/pkg/utils"
)

const maxBodyBytes = 64 << 10

// Handler answers one chat message.
type Handler interface {
	Handle(ctx context.Context, sessionID, text string) (bot.Reply, error)
}

// Resetter forgets a conversation.
type Resetter interface {
	Reset(ctx context.Context, sessionID string) error
}

type ChatRequest struct {
	SessionID string `json:"session_id,omitempty" validate:"omitempty,max=128"`
	Text      string `json:"text" validate:"required,max=1024"`
}

type ChatResponse struct {
	SessionID      string   `json:"session_id"`
	Text           string   `json:"text"`
	Options        []string `json:"options,omitempty"`
	Placeholder    string   `json:"placeholder,omitempty"`
	RemoveKeyboard bool     `json:"remove_keyboard,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server exposes the conversation over JSON.
type Server struct {
	chat     Handler
	sessions Resetter
	metrics  http.Handler
	logger   *slog.Logger
	validate *validator.Validate
}

type Option func(*Server)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics mounts h on GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

func NewHandler(chat Handler, sessions Resetter, opts ...Option) http.Handler {
	s := &Server{
		chat:     chat,
		sessions: sessions,
		logger:   utils.NewNop(),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/health", s.health)
	r.Post("/chat", s.handleChat)
	r.Delete("/sessions/{id}", s.reset)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var body ChatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		s.logger.Warn("chat: invalid request body", "err", err)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := s.validate.Struct(body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if body.SessionID == "" {
		body.SessionID = uuid.NewString()
	}

	reply, err := s.chat.Handle(r.Context(), body.SessionID, body.Text)
	if err != nil {
		s.logger.Error("chat failed", "session_id", body.SessionID, "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "session store unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, ChatResponse{
		SessionID:      body.SessionID,
		Text:           reply.Text,
		Options:        reply.Options,
		Placeholder:    reply.Placeholder,
		RemoveKeyboard: reply.RemoveKeyboard,
	})
}

func (s *Server) reset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.sessions.Reset(r.Context(), id); err != nil {
		s.logger.Error("reset failed", "session_id", id, "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "session store unavailable"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "err", err)
	}
}
