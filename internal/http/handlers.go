package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Krrish0621/Mind-Care-sub000/internal/core"
	"github.com/Krrish0621/Mind-Care-sub000/pkg"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 64 << 10

// Chatter answers one chat turn.
type Chatter interface {
	Reply(ctx context.Context, sessionID, message string) (core.Reply, error)
}

// Screener scores standalone submissions and lists history.
type Screener interface {
	Submit(ctx context.Context, req pkg.AssessmentRequest) (*pkg.AssessmentResponse, error)
	History(ctx context.Context, userToken string) ([]pkg.ScreeningResult, error)
}

// Server bundles together the dependencies required by HTTP handlers.  It
// implements http.Handler so it can be passed to http.Server.
type Server struct {
	Chat      Chatter
	Screening Screener
	Limiter   *RateLimiter
	Logger    *zap.Logger
}

// NewServer constructs a Server.  limiter may be nil to disable rate limiting.
func NewServer(chat Chatter, screening Screener, limiter *RateLimiter, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{Chat: chat, Screening: screening, Limiter: limiter, Logger: logger}
}

// ServeHTTP dispatches incoming requests based on the URL path.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	if path == "/healthz" {
		s.handleHealth(w, r)
		return
	}
	if !s.Limiter.Allow(clientKey(r)) {
		writeError(w, http.StatusTooManyRequests, "too many requests")
		return
	}
	switch {
	case path == "/api/chat":
		if r.Method != http.MethodPost {
			methodNotAllowed(w, http.MethodPost)
			return
		}
		s.handleChat(w, r)
	case path == "/api/assessments":
		switch r.Method {
		case http.MethodPost:
			s.handleSubmitAssessment(w, r)
		case http.MethodGet:
			s.handleHistory(w, r)
		default:
			methodNotAllowed(w, http.MethodGet+", "+http.MethodPost)
		}
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// handleChat runs one conversational turn.  The reply is always 200 with a
// message, even when the turn failed internally.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req pkg.ChatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	// the chat service has already logged any failure
	reply, _ := s.Chat.Reply(r.Context(), req.SessionID, req.Message)
	writeJSON(w, http.StatusOK, pkg.ChatResponse{
		Response:   reply.Text,
		Timestamp:  reply.Timestamp.UTC().Format(time.RFC3339),
		SessionID:  reply.SessionID,
		Escalation: reply.Escalation,
	})
}

// handleSubmitAssessment scores a complete questionnaire.
func (s *Server) handleSubmitAssessment(w http.ResponseWriter, r *http.Request) {
	var req pkg.AssessmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	resp, err := s.Screening.Submit(r.Context(), req)
	if err != nil {
		if errors.Is(err, core.ErrInvalidSubmission) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.Logger.Error("assessment submission failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleHistory returns the newest results for ?userToken=.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("userToken")
	results, err := s.Screening.History(r.Context(), token)
	if err != nil {
		if errors.Is(err, core.ErrMissingUserToken) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.Logger.Error("history lookup failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, pkg.HistoryResponse{UserToken: token, Results: results})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func methodNotAllowed(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
