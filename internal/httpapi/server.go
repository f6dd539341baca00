package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/asafiz/azurebot/internal/config"
	"github.com/asafiz/azurebot/internal/observability"
)

// Replier produces the assistant reply for a raw JSON message list.
type Replier interface {
	Reply(ctx context.Context, rawMessages json.RawMessage) (string, error)
}

type Server struct {
	cfg     config.Config
	relay   Replier
	metrics *observability.Metrics
	static  http.Handler
}

func New(cfg config.Config, relay Replier, metrics *observability.Metrics) *Server {
	return &Server{
		cfg:     cfg,
		relay:   relay,
		metrics: metrics,
		static:  newStaticHandler(),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogger)

	r.Get("/", s.static.ServeHTTP)
	r.Handle("/static/*", http.StripPrefix("/static/", s.static))

	r.Get("/health", s.handleHealth)
	r.Get("/metrics", s.metrics.Handler().ServeHTTP)
	r.Post("/api/chat", s.handleChat)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":         "healthy",
		"aws_configured": s.cfg.AWSConfigured(),
		"region":         s.cfg.AWSRegion,
		"model":          s.cfg.ModelID,
	})
}

type chatRequest struct {
	Messages json.RawMessage `json:"messages"`
}

type chatResponse struct {
	Response string `json:"response"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	// Unparseable JSON is the one case answered with 400, as the Flask
	// original did; everything else gets an in-band reply with 200.
	var raw json.RawMessage
	if err := decodeJSON(r, &raw); err != nil && !errors.Is(err, errEmptyBody) {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	// A well-formed body that is not an object carries no messages.
	var req chatRequest
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &req)
	}

	text, err := s.relay.Reply(r.Context(), req.Messages)
	s.metrics.ObserveReply(replyOutcome(err))
	if err != nil {
		text = renderError(err)
	}
	respondJSON(w, http.StatusOK, chatResponse{Response: text})
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var (
	errEmptyBody    = errors.New("empty body")
	errTrailingData = errors.New("unexpected data after JSON value")
)

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return err
	}
	if dec.More() {
		return errTrailingData
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
