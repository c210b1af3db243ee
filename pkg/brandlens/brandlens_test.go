package brandlens

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IshaanNene/BrandLens/internal/types"
)

const homepage = `<!DOCTYPE html><html lang="en"><head>
<title>Wayne Enterprises</title>
<meta name="description" content="Wayne Enterprises builds applied sciences for safer cities">
</head><body>
<header><nav><a href="/">Home</a><a href="/about">About</a></nav></header>
<main><h1>Technology for a better Gotham</h1>
<p>%BODY%</p>
<h2>Applied Sciences</h2><h2>Foundation</h2></main>
</body></html>`

func newSite(t *testing.T) *httptest.Server {
	t.Helper()
	page := strings.Replace(homepage, "%BODY%",
		strings.Repeat("Wayne Enterprises designs materials, vehicles and medical devices. ", 10), 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, page)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T) *Client {
	t.Helper()
	c, err := New(context.Background(),
		WithoutRender(),
		WithMode(ModeBestEffort),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestClientProfile(t *testing.T) {
	srv := newSite(t)
	c := newTestClient(t)

	p := c.Profile(context.Background(), srv.URL)
	require.NotNil(t, p)
	assert.Equal(t, types.StatusSuccess, p.Status)
	assert.Equal(t, types.MethodStatic, p.ExtractionMethod)
	require.NotNil(t, p.StructuredContent)
	assert.Equal(t, "Wayne Enterprises", p.StructuredContent.Title)
	require.NotNil(t, p.Insights, "best effort falls back to deterministic insights")
	assert.NotEmpty(t, p.Insights.Positioning)
}

func TestClientBatchReportsProgress(t *testing.T) {
	srv := newSite(t)
	c := newTestClient(t)

	var (
		mu     sync.Mutex
		events []ProgressEvent
	)
	res := c.Batch(context.Background(), []string{srv.URL, srv.URL + "/missing"}, func(ev ProgressEvent) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	})

	assert.Equal(t, 1, res.Succeeded)
	assert.Equal(t, 1, res.Failed)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, srv.URL+"/missing", res.Failures[0].Brand)

	done := 0
	for _, ev := range events {
		if ev.Done() {
			done++
		}
	}
	assert.Equal(t, 2, done)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	_, err := New(context.Background(), WithMode("sometimes"), WithoutRender())
	assert.Error(t, err)
}

func TestClientExport(t *testing.T) {
	srv := newSite(t)
	dir := t.TempDir()
	c, err := New(context.Background(),
		WithoutRender(),
		WithMode(ModeBestEffort),
		WithOutput("jsonl", dir),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	require.NoError(t, err)
	defer c.Close()

	p := c.Profile(context.Background(), srv.URL)
	require.NoError(t, c.Export(context.Background(), []Profile{*p}))

	data, err := os.ReadFile(filepath.Join(dir, "profiles.jsonl"))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(strings.TrimSpace(string(data)), "\n")+1)
	assert.Contains(t, string(data), `"status":"success"`)
}
