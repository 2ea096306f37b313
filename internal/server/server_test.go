package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/csheth/captionwizard/internal/caption"
	"github.com/csheth/captionwizard/internal/captions"
	"github.com/csheth/captionwizard/internal/llm"
	"github.com/csheth/captionwizard/internal/session"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type stubLLM struct {
	mu    sync.Mutex
	reply string
	err   error
	block chan struct{}
	calls int
}

func (s *stubLLM) Complete(ctx context.Context, prompt llm.Prompt) (string, error) {
	s.mu.Lock()
	s.calls++
	block := s.block
	s.mu.Unlock()
	if block != nil {
		<-block
	}
	return s.reply, s.err
}

func (s *stubLLM) Name() string { return "stub (test)" }

func newTestServer(t *testing.T, stub *stubLLM) (*Server, *session.Session) {
	t.Helper()
	var deps session.Deps
	if stub != nil {
		gen, err := caption.NewGenerator(stub, time.Second)
		require.NoError(t, err)
		deps.Generator = gen
	}
	sess := session.New(deps)
	srv, err := New(sess, nil)
	require.NoError(t, err)
	return srv, sess
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

const skateForm = `{"description":"a cat on a skateboard","tone":"funny","audience":"general","platform":"instagram","include_hashtags":true}`

func TestNewRequiresSession(t *testing.T) {
	_, err := New(nil, nil)
	assert.Error(t, err)
}

func TestHealthAndOptions(t *testing.T) {
	srv, _ := newTestServer(t, &stubLLM{})
	h := srv.Routes()

	rec := do(t, h, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	health := decode[healthResp](t, rec)
	assert.True(t, health.Available)
	assert.Equal(t, "stub (test)", health.Provider)

	rec = do(t, h, http.MethodGet, "/api/options", "")
	require.Equal(t, http.StatusOK, rec.Code)
	opts := decode[optionsResp](t, rec)
	assert.Len(t, opts.Tones, 8)
	assert.Len(t, opts.Audiences, 8)
	assert.Len(t, opts.Platforms, 5)
	assert.Equal(t, "Teenagers (13-19)", caption.Label(opts.Audiences, "teenagers"))
}

func TestGenerateSuccessRecordsHistory(t *testing.T) {
	stub := &stubLLM{reply: "Cat's got wheels now. #skatecat #furryspeed"}
	srv, sess := newTestServer(t, stub)
	h := srv.Routes()

	rec := do(t, h, http.MethodPost, "/api/captions", skateForm)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[captionResp](t, rec)
	assert.Equal(t, "Cat's got wheels now. #skatecat #furryspeed", resp.Caption)
	require.NotNil(t, resp.Entry)

	rec = do(t, h, http.MethodGet, "/api/history", "")
	list := decode[listResp](t, rec)
	require.Len(t, list.Entries, 1)
	assert.Equal(t, resp.Entry.ID, list.Entries[0].ID)
	assert.Len(t, sess.Store().History(), 1)
	assert.Equal(t, 1, stub.calls)
}

func TestGenerateRejectsBadForms(t *testing.T) {
	srv, _ := newTestServer(t, &stubLLM{reply: "x"})
	h := srv.Routes()

	rec := do(t, h, http.MethodPost, "/api/captions", `{"description":"","tone":"funny","audience":"general","platform":"instagram"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decode[errorResp](t, rec).Error, "description")

	rec = do(t, h, http.MethodPost, "/api/captions", `{"description":"x","tone":"grumpy","audience":"general","platform":"instagram"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/captions", `{"description":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/captions", `{"description":"x","mood":"happy"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateFailureReturnsDisplayText(t *testing.T) {
	stub := &stubLLM{err: &llm.RequestFailedError{Status: 401, Body: `{"error":"bad key"}`}}
	srv, sess := newTestServer(t, stub)

	rec := do(t, srv.Routes(), http.MethodPost, "/api/captions", skateForm)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	resp := decode[captionResp](t, rec)
	assert.True(t, strings.HasPrefix(resp.Caption, "Error: HTTP error! status: 401"), resp.Caption)
	assert.NotEmpty(t, resp.Error)
	assert.Empty(t, sess.Store().History())
}

func TestGenerateWithoutProvider(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec := do(t, srv.Routes(), http.MethodPost, "/api/captions", skateForm)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGenerateWhileBusyConflicts(t *testing.T) {
	stub := &stubLLM{reply: "done", block: make(chan struct{})}
	srv, sess := newTestServer(t, stub)
	h := srv.Routes()

	first := make(chan *httptest.ResponseRecorder, 1)
	go func() { first <- do(t, h, http.MethodPost, "/api/captions", skateForm) }()

	require.Eventually(t, sess.Busy, time.Second, 5*time.Millisecond)
	rec := do(t, h, http.MethodPost, "/api/captions", skateForm)
	assert.Equal(t, http.StatusConflict, rec.Code)

	close(stub.block)
	assert.Equal(t, http.StatusOK, (<-first).Code)
	assert.False(t, sess.Busy())
}

func TestSaveAndDeleteFlow(t *testing.T) {
	srv, sess := newTestServer(t, &stubLLM{})
	h := srv.Routes()

	rec := do(t, h, http.MethodPost, "/api/saved", `{"text":"Sunset mood."}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	saved := decode[actionResp](t, rec)
	assert.Equal(t, "Saved!", saved.Notice)
	require.NotNil(t, saved.Entry)

	rec = do(t, h, http.MethodPost, "/api/saved", `{"text":"Sunset mood."}`)
	require.Equal(t, http.StatusOK, rec.Code)
	dup := decode[actionResp](t, rec)
	require.NotNil(t, dup.Added)
	assert.False(t, *dup.Added)
	assert.Equal(t, saved.Entry.ID, dup.Entry.ID)

	rec = do(t, h, http.MethodPost, "/api/saved", `{"text":"  "}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/notification", "")
	assert.Equal(t, notificationResp{State: "showing", Action: "Saved!"}, decode[notificationResp](t, rec))

	rec = do(t, h, http.MethodDelete, "/api/saved/"+saved.Entry.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	deleted := decode[actionResp](t, rec)
	assert.Equal(t, "Deleted!", deleted.Notice)
	require.NotNil(t, deleted.Index)
	assert.Equal(t, 0, *deleted.Index)
	assert.Empty(t, sess.Store().Saved())

	rec = do(t, h, http.MethodDelete, "/api/saved/"+saved.Entry.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/saved", "")
	assert.Equal(t, listResp{Entries: []captions.Entry{}}, decode[listResp](t, rec))
}

func TestDeleteHistoryEntry(t *testing.T) {
	srv, sess := newTestServer(t, &stubLLM{})
	older := sess.Store().RecordGenerated("older")
	sess.Store().RecordGenerated("newer")

	rec := do(t, srv.Routes(), http.MethodDelete, "/api/history/"+older.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[actionResp](t, rec)
	assert.Equal(t, "Removed from history!", resp.Notice)
	assert.Equal(t, 1, *resp.Index)
	assert.Equal(t, []string{"newer"}, captions.Texts(sess.Store().History()))

	rec = do(t, srv.Routes(), http.MethodDelete, "/api/history/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMethodRouting(t *testing.T) {
	srv, _ := newTestServer(t, &stubLLM{})
	rec := do(t, srv.Routes(), http.MethodGet, "/api/captions", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestLogMiddlewareRecordsStatus(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	sess := session.New(session.Deps{})
	srv, err := New(sess, zap.New(core))
	require.NoError(t, err)

	do(t, srv.Routes(), http.MethodDelete, "/api/saved/nope", "")
	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "DELETE", fields["method"])
	assert.Equal(t, "/api/saved/nope", fields["path"])
	assert.EqualValues(t, http.StatusNotFound, fields["status"])
}
