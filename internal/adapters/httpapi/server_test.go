package httpapi

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/routecard/internal/adapters/memory"
	"github.com/example/routecard/internal/app"
	"github.com/example/routecard/internal/metrics"
	"github.com/example/routecard/internal/models"
)

const testPassword = "s3cret"

type testEnv struct {
	srv    *httptest.Server
	client *http.Client
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	reg := prometheus.NewRegistry()

	repo := app.NewCardRepository(memory.NewCollectionStore(), nil, app.WithMetrics(metrics.New(reg)))
	require.NoError(t, repo.Load(ctx, app.SeedOptions{Defaults: true, Demo: true}))

	auth := app.NewAuthService(repo, nil, app.AuthOptions{DefaultPassword: testPassword, Iterations: 1000})
	require.NoError(t, auth.EnsureDefaultUser(ctx))

	server := NewServer(Config{
		Cards:    app.NewCardService(repo, nil),
		Data:     app.NewDataService(repo, nil, 64),
		Auth:     auth,
		Gatherer: reg,
	})
	srv := httptest.NewServer(server.Handler())
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &testEnv{srv: srv, client: &http.Client{Jar: jar}}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, r)
	require.NoError(t, err)
	resp, err := e.client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (e *testEnv) login(t *testing.T) {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/api/login", map[string]string{"password": testPassword})
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func decodeBody(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

func (e *testEnv) demoCard(t *testing.T) cardResponse {
	t.Helper()
	resp := e.do(t, http.MethodGet, "/api/cards", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cards []cardResponse
	decodeBody(t, resp, &cards)
	require.Len(t, cards, 1)
	return cards[0]
}

func TestAuth(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/data", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/login", map[string]string{"password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	env.login(t)
	resp = env.do(t, http.MethodGet, "/api/session", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var sess sessionResponse
	decodeBody(t, resp, &sess)
	assert.Equal(t, "admin", sess.User)
	assert.False(t, sess.Degraded)

	resp = env.do(t, http.MethodPost, "/api/logout", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = env.do(t, http.MethodGet, "/api/session", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestData_HidesCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	resp := env.do(t, http.MethodGet, "/api/data", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "passwordHash")

	var col models.Collection
	require.NoError(t, json.Unmarshal(raw, &col))
	require.Len(t, col.Cards, 1)

	col.Cards[0].Name = "Renamed shaft"
	resp = env.do(t, http.MethodPost, "/api/data", col)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	card := env.demoCard(t)
	assert.Equal(t, "Renamed shaft", card.Card.Name)

	// The server keeps its users: logging in again still works.
	env.login(t)
}

func TestOperationActions(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)
	card := env.demoCard(t)
	opID := card.Card.Operations[0].ID
	base := "/api/cards/" + card.Card.ID + "/operations/" + opID + "/"

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantApply  bool
	}{
		{"start", base + "start", http.StatusOK, true},
		{"start again is rejected", base + "start", http.StatusConflict, false},
		{"pause", base + "pause", http.StatusOK, true},
		{"resume", base + "resume", http.StatusOK, true},
		{"unknown action", base + "explode", http.StatusBadRequest, false},
		{"unknown card", "/api/cards/nope/operations/" + opID + "/start", http.StatusNotFound, false},
		{"unknown operation", "/api/cards/" + card.Card.ID + "/operations/nope/start", http.StatusNotFound, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.do(t, http.MethodPost, tt.path, nil)
			require.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantStatus == http.StatusOK || tt.wantStatus == http.StatusConflict {
				var res actionResponse
				decodeBody(t, resp, &res)
				assert.Equal(t, tt.wantApply, res.Applied)
				if !tt.wantApply {
					assert.NotEmpty(t, res.Reason)
				}
			}
		})
	}

	card = env.demoCard(t)
	assert.Equal(t, models.StatusInProgress, card.Card.Status)
	assert.Equal(t, models.ProcessInProgress, card.ProcessState)

	resp := env.do(t, http.MethodGet, "/api/cards/"+card.Card.ID+"/log", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var log logResponse
	decodeBody(t, resp, &log)
	require.NotEmpty(t, log.Entries)
	assert.Equal(t, "admin", log.Entries[len(log.Entries)-1].Actor)
	assert.NotNil(t, log.InitialSnapshot)
}

func TestCounts(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)
	card := env.demoCard(t)
	op := card.Card.Operations[0]

	good := 4
	resp := env.do(t, http.MethodPost, "/api/cards/"+card.Card.Barcode+"/operations/"+op.OpCode+"/counts",
		countsRequest{Good: &good})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got models.Operation
	decodeBody(t, resp, &got)
	assert.Equal(t, 4, got.GoodCount)

	resp = env.do(t, http.MethodPost, "/api/cards/"+card.Card.ID+"/operations/"+op.ID+"/counts",
		countsRequest{ItemID: "1", Good: &good})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "aggregate card has no items")
}

func TestFiles(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)
	card := env.demoCard(t)
	content := "data:application/pdf;base64," + base64.StdEncoding.EncodeToString([]byte("%PDF-1.4"))

	resp := env.do(t, http.MethodPost, "/api/cards/"+card.Card.ID+"/files", uploadRequest{Name: "drawing.pdf", Content: content})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var meta models.Attachment
	decodeBody(t, resp, &meta)
	assert.Empty(t, meta.Content)
	assert.Equal(t, int64(8), meta.Size)

	resp = env.do(t, http.MethodGet, "/api/cards/"+card.Card.ID+"/files", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var files []models.Attachment
	decodeBody(t, resp, &files)
	require.Len(t, files, 1)

	resp = env.do(t, http.MethodGet, "/files/"+meta.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))

	tests := []struct {
		name string
		req  uploadRequest
		want int
	}{
		{"bad extension", uploadRequest{Name: "run.exe", Content: content}, http.StatusUnprocessableEntity},
		{"too large", uploadRequest{Name: "big.zip", Content: "data:application/zip;base64," + base64.StdEncoding.EncodeToString(make([]byte, 100))}, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.do(t, http.MethodPost, "/api/cards/"+card.Card.ID+"/files", tt.req)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}

	resp = env.do(t, http.MethodGet, "/files/file_missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealthAndMetrics(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "routecard_store_saves_total"))
}
