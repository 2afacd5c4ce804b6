package filehost

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediaarchive/internal/retry"
)

func fastRetry() retry.Config {
	return retry.Config{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, Multiplier: 1}
}

func TestPixeldrainID(t *testing.T) {
	cases := map[string]string{
		"https://pixeldrain.com/u/abc123":        "abc123",
		"https://pixeldrain.com/api/file/abc123": "abc123",
		"https://pixeldrain.com/l/list":          "",
		"https://example.com/u/abc123":           "",
	}
	for link, want := range cases {
		got, ok := PixeldrainID(link)
		assert.Equal(t, want, got, link)
		assert.Equal(t, want != "", ok, link)
	}
}

func TestNormalize(t *testing.T) {
	r := NewResolver(nil, nil)
	assert.Equal(t, "https://pixeldrain.com/api/file/abc", r.Normalize("https://pixeldrain.com/u/abc"))
	assert.Equal(t, "https://cdn.example/a.mkv", r.Normalize(" https://cdn.example/a.mkv "))
}

func TestPixeldrainInfoListDelete(t *testing.T) {
	var deleted atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/file/abc/info", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"abc","name":"Dark.S01E01.mkv","size":1500000000}`))
	})
	mux.HandleFunc("/user/files", func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Query().Get("page") {
		case "1":
			_, _ = w.Write([]byte(`{"files":[{"id":"a","name":"a.mkv"},{"id":"b","name":"b.mkv"}]}`))
		case "2":
			_, _ = w.Write([]byte(`{"files":[{"id":"b","name":"b.mkv"},{"id":"c","name":"c.mkv"}]}`))
		default:
			_, _ = w.Write([]byte(`{"files":[]}`))
		}
	})
	mux.HandleFunc("/file/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		deleted.Add(1)
		_, _ = w.Write([]byte(`{"success":true}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	p := NewPixeldrain(PixeldrainConfig{APIKey: "secret", BaseURL: srv.URL, Client: srv.Client(), Retry: fastRetry()})
	ctx := context.Background()

	f, err := p.Info(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "Dark.S01E01.mkv", f.Name)
	assert.EqualValues(t, 1500000000, f.Size)

	files, err := p.ListFiles(ctx)
	require.NoError(t, err)
	require.Len(t, files, 3)

	require.NoError(t, p.Delete(ctx, "a"))
	assert.EqualValues(t, 1, deleted.Load())
}

func TestPixeldrainRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"id":"x","name":"x.mkv"}`))
	}))
	defer srv.Close()

	p := NewPixeldrain(PixeldrainConfig{BaseURL: srv.URL, Client: srv.Client(), Retry: fastRetry()})
	f, err := p.Info(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "x.mkv", f.Name)
	assert.EqualValues(t, 3, calls.Load())
}

func TestPixeldrainNotFoundIsPermanent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewPixeldrain(PixeldrainConfig{BaseURL: srv.URL, Client: srv.Client(), Retry: fastRetry()})
	_, err := p.Info(context.Background(), "x")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.EqualValues(t, 1, calls.Load())
}

func TestListRequiresKey(t *testing.T) {
	p := NewPixeldrain(PixeldrainConfig{})
	_, err := p.ListFiles(context.Background())
	assert.Error(t, err)
}

// ---------------------------------------------------------------------------
// Resolver fallbacks
// ---------------------------------------------------------------------------

func TestResolveUsesContentDisposition(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("unexpected method %s", r.Method)
		}
		w.Header().Set("Content-Disposition", `attachment; filename="Inception.2010.1080p.mkv"`)
		w.Header().Set("Content-Length", "2048")
	}))
	defer srv.Close()

	r := NewResolver(nil, srv.Client())
	info, err := r.Resolve(context.Background(), srv.URL+"/dl/123")
	require.NoError(t, err)
	assert.Equal(t, "Inception.2010.1080p.mkv", info.Name)
	assert.EqualValues(t, 2048, info.SizeBytes)
}

func TestResolveFallsBackToPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	r := NewResolver(nil, srv.Client())
	info, err := r.Resolve(context.Background(), srv.URL+"/files/Dark%20S01E01.mkv")
	require.NoError(t, err)
	assert.Equal(t, "Dark S01E01.mkv", info.Name)

	_, err = r.Resolve(context.Background(), srv.URL+"/files/opaque-id")
	assert.Error(t, err)
}

func TestResolvePixeldrainLink(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/file/abc/info") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprint(w, `{"id":"abc","name":"Dark.S01E02.mkv","size":42}`)
	}))
	defer api.Close()

	p := NewPixeldrain(PixeldrainConfig{BaseURL: api.URL, Client: api.Client(), Retry: fastRetry()})
	r := NewResolver(p, api.Client())
	info, err := r.Resolve(context.Background(), "https://pixeldrain.com/u/abc")
	require.NoError(t, err)
	assert.Equal(t, "Dark.S01E02.mkv", info.Name)
	assert.EqualValues(t, 42, info.SizeBytes)
}

func TestDispositionFilename(t *testing.T) {
	assert.Equal(t, "a b.mkv", dispositionFilename(`attachment; filename*=UTF-8''a%20b.mkv`))
	assert.Equal(t, "", dispositionFilename("inline"))
	assert.Equal(t, "", dispositionFilename(""))
}
