package routes

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/briangreenhill/almanac/internal/app"
	"github.com/briangreenhill/almanac/internal/config"
	"github.com/briangreenhill/almanac/internal/upstream"
	"github.com/briangreenhill/almanac/pipeline"
	"github.com/briangreenhill/almanac/render"
)

const historyBody = `{"03":{"0314":[
  {"title":"B","year":"1900","desc":"second","type":"event","link":""},
  {"title":"A","year":"1800","desc":"first","type":"birth","link":""}
]}}`

const doubanBody = `{"subject_collection_items":[
  {"id":"2","title":"Second","rank_value":2,"rating":{"value":8.1,"count":10}},
  {"id":"1","title":"First","rank_value":1,"rating":{"value":9.3,"count":20},"trend_up":true,"rank_value_changed":2}
]}`

type upstreams struct {
	history *httptest.Server
	douban  *httptest.Server
	hits    atomic.Int32
}

func newServer(t *testing.T, historyStatus int) (*Server, *upstreams) {
	t.Helper()
	u := &upstreams{}
	u.history = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.hits.Add(1)
		if historyStatus != http.StatusOK {
			w.WriteHeader(historyStatus)
			return
		}
		if r.URL.Path != "/03.json" {
			_, _ = io.WriteString(w, `{}`)
			return
		}
		_, _ = io.WriteString(w, historyBody)
	}))
	u.douban = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.hits.Add(1)
		if strings.Contains(r.URL.Path, "tv_global_best_weekly") {
			_, _ = io.WriteString(w, "<html>blocked</html>")
			return
		}
		_, _ = io.WriteString(w, doubanBody)
	}))
	t.Cleanup(u.history.Close)
	t.Cleanup(u.douban.Close)

	cfg := config.Default()
	cfg.History.BaseURL = u.history.URL
	cfg.Douban.BaseURL = u.douban.URL
	sources := app.New(cfg, nil)

	s := New(ServerOptions{Logger: zerolog.Nop(), Plugins: sources.Registry, Stats: sources})
	return s, u
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealthz(t *testing.T) {
	s, _ := newServer(t, http.StatusOK)
	rec := get(t, s, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestHistoryEncodings(t *testing.T) {
	s, u := newServer(t, http.StatusOK)

	rec := get(t, s, "/v1/today-in-history?date=2024-03-14&encoding=text")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, render.ContentTypeText, rec.Header().Get("Content-Type"))
	assert.Equal(t, "1. 1800 A\n2. 1900 B\n", rec.Body.String())

	rec = get(t, s, "/v1/today-in-history?date=3-14&encoding=markdown")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, render.ContentTypeMarkdown, rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "# Today in History (3-14)\n"))

	rec = get(t, s, "/v1/today-in-history?date=0314")
	require.Equal(t, http.StatusOK, rec.Code)
	var env struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Data    []struct {
			Title     string `json:"title"`
			EventType string `json:"eventType"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, 200, env.Code)
	assert.Equal(t, "ok", env.Message)
	require.Len(t, env.Data, 2)
	assert.Equal(t, "A", env.Data[0].Title)
	assert.Equal(t, "birth", env.Data[0].EventType)

	// Three requests for the same day share one upstream fetch.
	assert.Equal(t, int32(1), u.hits.Load())
}

func TestHistoryInvalidDate(t *testing.T) {
	s, u := newServer(t, http.StatusOK)

	rec := get(t, s, "/v1/today-in-history?date=2-30")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var env render.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, http.StatusBadRequest, env.Code)
	assert.Contains(t, env.Message, `"2-30"`)

	rec = get(t, s, "/v1/today-in-history?date=2-30&encoding=text")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, render.ContentTypeText, rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasSuffix(rec.Body.String(), "\n"))

	assert.Zero(t, u.hits.Load())
}

func TestHistoryUpstreamFailure(t *testing.T) {
	s, _ := newServer(t, http.StatusServiceUnavailable)
	rec := get(t, s, "/v1/today-in-history?date=3-14")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestDoubanRoutes(t *testing.T) {
	s, _ := newServer(t, http.StatusOK)

	rec := get(t, s, "/v1/douban/weekly?encoding=text")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1. First (9.3)\n2. Second (8.1)\n", rec.Body.String())

	rec = get(t, s, "/v1/douban/weekly/tv_chinese?encoding=markdown")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "| Rank | Title | Rating | Good Rate | Subtitle | Trend |")
	assert.Contains(t, rec.Body.String(), "| 1 | First | 9.3 | - |  | ↑2 |")

	rec = get(t, s, "/v1/douban/weekly/anime")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = get(t, s, "/v1/douban/weekly/tv_global")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestCacheStats(t *testing.T) {
	s, _ := newServer(t, http.StatusOK)
	require.Equal(t, http.StatusOK, get(t, s, "/v1/today-in-history?date=3-14").Code)
	require.Equal(t, http.StatusOK, get(t, s, "/v1/douban/weekly/movie").Code)

	rec := get(t, s, "/v1/cache")
	require.Equal(t, http.StatusOK, rec.Code)
	var env struct {
		Data map[string]struct {
			Policy  string `json:"policy"`
			Entries []struct {
				Key     string `json:"key"`
				Items   int    `json:"items"`
				Valid   bool   `json:"valid"`
				FetchID string `json:"fetch_id"`
			} `json:"entries"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))

	history := env.Data["history"]
	assert.Equal(t, "forever", history.Policy)
	require.Len(t, history.Entries, 1)
	assert.Equal(t, "3-14", history.Entries[0].Key)
	assert.Equal(t, 2, history.Entries[0].Items)
	assert.True(t, history.Entries[0].Valid)
	assert.NotEmpty(t, history.Entries[0].FetchID)

	douban := env.Data["douban"]
	assert.Equal(t, "ttl=1h0m0s", douban.Policy)
	require.Len(t, douban.Entries, 1)
	assert.Equal(t, "movie", douban.Entries[0].Key)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("x: %w", pipeline.ErrInvalidParam), http.StatusBadRequest},
		{fmt.Errorf("x: %w", &upstream.TransportError{URL: "u", StatusCode: 403}), http.StatusBadGateway},
		{fmt.Errorf("x: %w", upstream.ErrSchema), http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusFor(tt.err), tt.err.Error())
	}
}
