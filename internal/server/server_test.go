package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/nikbrunner/dex/internal/importer"
	"github.com/nikbrunner/dex/internal/model"
	"github.com/nikbrunner/dex/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeImporter struct {
	mu    sync.Mutex
	calls [][2]int
	err   error
}

func (f *fakeImporter) ImportRange(ctx context.Context, start, end int, onProgress importer.ProgressFunc) (importer.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, [2]int{start, end})
	if f.err != nil {
		return importer.Result{}, f.err
	}
	return importer.Result{Imported: end - start + 1}, nil
}

type fakeNotifier struct {
	got []model.Entry
}

func (f *fakeNotifier) NotifyEntry(ctx context.Context, entry model.Entry, onProgress notify.ProgressFunc) (*notify.Result, error) {
	f.got = append(f.got, entry)
	return &notify.Result{
		Success: true,
		Message: "Notifications sent to 1 users",
		Details: &notify.Details{SuccessCount: 1, Results: []notify.RecipientResult{{Email: "ash@example.com", Success: true}}},
	}, nil
}

func newTestServer(t *testing.T, im *fakeImporter, n *fakeNotifier, rl RateLimitConfig) *httptest.Server {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	s := New(ctx, Config{RateLimit: rl}, im, n)
	srv := httptest.NewServer(s.Router)
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func TestImportPokemon(t *testing.T) {
	im := &fakeImporter{}
	srv := newTestServer(t, im, &fakeNotifier{}, RateLimitConfig{})

	resp, out := post(t, srv.URL+"/functions/v1/import-pokemon", `{"start": 5, "end": 9}`)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))
	assert.Equal(t, true, out["success"])
	assert.Equal(t, float64(5), out["imported"])
	assert.Equal(t, "Successfully imported Pokemon 5 to 9", out["message"])
	assert.Equal(t, [][2]int{{5, 9}}, im.calls)
}

func TestImportPokemon_Defaults(t *testing.T) {
	im := &fakeImporter{}
	srv := newTestServer(t, im, &fakeNotifier{}, RateLimitConfig{})

	resp, _ := post(t, srv.URL+"/functions/v1/import-pokemon", `{}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = post(t, srv.URL+"/functions/v1/import-pokemon", ``)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, [][2]int{{1, 100}, {1, 100}}, im.calls)
}

func TestImportPokemon_Failure(t *testing.T) {
	im := &fakeImporter{err: errors.New("store imported entries: disk full")}
	srv := newTestServer(t, im, &fakeNotifier{}, RateLimitConfig{})

	resp, out := post(t, srv.URL+"/functions/v1/import-pokemon", `{"start":1,"end":2}`)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "store imported entries: disk full", out["error"])
}

func TestSendNotification(t *testing.T) {
	n := &fakeNotifier{}
	srv := newTestServer(t, &fakeImporter{}, n, RateLimitConfig{})

	resp, out := post(t, srv.URL+"/functions/v1/send-pokemon-notification",
		`{"pokemon":{"id":25,"name":"pikachu","sprites":{"front_default":"https://img/25.png"}}}`)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, out["success"])
	details := out["details"].(map[string]any)
	assert.Equal(t, float64(1), details["successCount"])

	require.Len(t, n.got, 1)
	assert.Equal(t, 25, n.got[0].ID)
	assert.Equal(t, "https://img/25.png", n.got[0].ImageURL())
}

func TestSendNotification_MissingPokemon(t *testing.T) {
	n := &fakeNotifier{}
	srv := newTestServer(t, &fakeImporter{}, n, RateLimitConfig{})

	resp, out := post(t, srv.URL+"/functions/v1/send-pokemon-notification", `{}`)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Pokemon data is required", out["error"])
	assert.Empty(t, n.got)
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t, &fakeImporter{}, &fakeNotifier{}, RateLimitConfig{})

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/functions/v1/import-pokemon", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "apikey, content-type")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, strings.ToLower(resp.Header.Get("Access-Control-Allow-Headers")), "apikey")
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, &fakeImporter{}, &fakeNotifier{}, RateLimitConfig{})

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRateLimiter(t *testing.T) {
	srv := newTestServer(t, &fakeImporter{}, &fakeNotifier{}, RateLimitConfig{RequestsPerSecond: 0.001, Burst: 2})

	var codes []int
	for i := 0; i < 3; i++ {
		resp, _ := post(t, srv.URL+"/functions/v1/import-pokemon", `{"start":1,"end":1}`)
		codes = append(codes, resp.StatusCode)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestImportScheduler(t *testing.T) {
	_, err := NewImportScheduler(context.Background(), "not a schedule", &fakeImporter{}, 1, 10)
	assert.Error(t, err)

	im := &fakeImporter{}
	s, err := NewImportScheduler(context.Background(), "@daily", im, 1, 10)
	require.NoError(t, err)

	s.run(context.Background())
	assert.Equal(t, [][2]int{{1, 10}}, im.calls)

	s.Start(context.Background())
	s.Stop()
}
