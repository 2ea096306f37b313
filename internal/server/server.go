// Package server exposes a caption session over a small JSON API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/csheth/captionwizard/internal/caption"
	"github.com/csheth/captionwizard/internal/captions"
	"github.com/csheth/captionwizard/internal/notify"
	"github.com/csheth/captionwizard/internal/session"
)

const maxBodyBytes = 64 << 10

// Server exposes one Session over a JSON API.
type Server struct {
	session *session.Session
	logger  *zap.Logger
}

// New returns a Server for sess. A nil logger discards logs.
func New(sess *session.Session, logger *zap.Logger) (*Server, error) {
	if sess == nil {
		return nil, errors.New("session required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{session: sess, logger: logger}, nil
}

// Routes returns the API handler wrapped in request logging.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/options", s.handleOptions)
	mux.HandleFunc("POST /api/captions", s.handleGenerate)
	mux.HandleFunc("GET /api/history", s.handleHistory)
	mux.HandleFunc("DELETE /api/history/{id}", s.handleHistoryDelete)
	mux.HandleFunc("GET /api/saved", s.handleSaved)
	mux.HandleFunc("POST /api/saved", s.handleSave)
	mux.HandleFunc("DELETE /api/saved/{id}", s.handleSavedDelete)
	mux.HandleFunc("GET /api/notification", s.handleNotification)
	return logMiddleware(s.logger, mux)
}

// --- Handlers ---

type healthResp struct {
	Status    string `json:"status"`
	Available bool   `json:"available"`
	Provider  string `json:"provider,omitempty"`
	Busy      bool   `json:"busy"`
}

type optionsResp struct {
	Tones     []caption.Option `json:"tones"`
	Audiences []caption.Option `json:"audiences"`
	Platforms []caption.Option `json:"platforms"`
}

type captionResp struct {
	Caption string          `json:"caption"`
	Entry   *captions.Entry `json:"entry,omitempty"`
	Error   string          `json:"error,omitempty"`
}

type listResp struct {
	Entries []captions.Entry `json:"entries"`
}

type saveReq struct {
	Text string `json:"text"`
}

type actionResp struct {
	Notice string          `json:"notice"`
	Index  *int            `json:"index,omitempty"`
	Entry  *captions.Entry `json:"entry,omitempty"`
	Added  *bool           `json:"added,omitempty"`
}

type notificationResp struct {
	State  string `json:"state"`
	Action string `json:"action,omitempty"`
}

type errorResp struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResp{
		Status:    "ok",
		Available: s.session.Available(),
		Provider:  s.session.ProviderName(),
		Busy:      s.session.Busy(),
	})
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, optionsResp{
		Tones:     caption.Tones,
		Audiences: caption.Audiences,
		Platforms: caption.Platforms,
	})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var form caption.FormState
	if err := decodeBody(w, r, &form); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := form.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	// The request outlives a disconnecting client so the caption still lands in history.
	ctx := context.WithoutCancel(r.Context())
	result, err := s.session.Generate(ctx, form)
	switch {
	case errors.Is(err, session.ErrBusy):
		writeError(w, http.StatusConflict, err)
		return
	case errors.Is(err, session.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, err)
		return
	case errors.Is(err, session.ErrIncompleteForm):
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	if result.Failed() {
		writeJSON(w, http.StatusBadGateway, captionResp{Caption: result.Caption, Error: result.Err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, captionResp{Caption: result.Caption, Entry: result.Entry})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, listResp{Entries: nonNil(s.session.Store().History())})
}

func (s *Server) handleSaved(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, listResp{Entries: nonNil(s.session.Store().Saved())})
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	var req saveReq
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusUnprocessableEntity, errors.New("text is required"))
		return
	}
	entry, added, ticket := s.session.Save(req.Text)
	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	writeJSON(w, status, actionResp{Notice: string(ticket.Notification.Action), Entry: &entry, Added: &added})
}

func (s *Server) handleHistoryDelete(w http.ResponseWriter, r *http.Request) {
	s.deleteByID(w, r.PathValue("id"), s.session.DeleteHistoryByID)
}

func (s *Server) handleSavedDelete(w http.ResponseWriter, r *http.Request) {
	s.deleteByID(w, r.PathValue("id"), s.session.DeleteSavedByID)
}

func (s *Server) deleteByID(w http.ResponseWriter, id string, del func(string) (notify.Ticket, bool)) {
	ticket, ok := del(id)
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("caption not found"))
		return
	}
	index := ticket.Notification.Index
	writeJSON(w, http.StatusOK, actionResp{Notice: string(ticket.Notification.Action), Index: &index})
}

func (s *Server) handleNotification(w http.ResponseWriter, r *http.Request) {
	n, ok := s.session.Flasher().Current()
	if !ok {
		writeJSON(w, http.StatusOK, notificationResp{State: notify.StateIdle.String()})
		return
	}
	writeJSON(w, http.StatusOK, notificationResp{State: notify.StateShowing.String(), Action: string(n.Action)})
}

// --- Helpers ---

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func nonNil(entries []captions.Entry) []captions.Entry {
	if entries == nil {
		return []captions.Entry{}
	}
	return entries
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResp{Error: err.Error()})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logMiddleware(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}
