package tmdb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"mediaarchive/internal/cache"
)

func newTestServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/search/movie", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Query().Get("api_key") != "key" || r.URL.Query().Get("language") != "tr-TR" {
			http.Error(w, "bad params", http.StatusBadRequest)
			return
		}
		if r.URL.Query().Get("year") != "2010" {
			http.Error(w, "missing year", http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"results":[{"id":27205,"title":"Başlangıç","original_title":"Inception","release_date":"2010-07-15"}]}`))
	})
	mux.HandleFunc("/movie/27205", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if !strings.Contains(r.URL.Query().Get("append_to_response"), "external_ids") {
			http.Error(w, "missing append", http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{
			"id": 27205, "title": "Başlangıç", "overview": "Rüya", "poster_path": "/p.jpg",
			"backdrop_path": "/b.jpg", "vote_average": 8.4, "release_date": "2010-07-15", "runtime": 148,
			"genres": [{"id": 878, "name": "Science Fiction"}],
			"external_ids": {"imdb_id": "tt1375666"},
			"credits": {"cast": [{"name": "Leonardo DiCaprio"}]},
			"images": {"logos": [{"file_path": "/de.png", "iso_639_1": "de"}, {"file_path": "/en.png", "iso_639_1": "en"}]}
		}`))
	})
	mux.HandleFunc("/tv/1399/season/1/episode/2", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{"name":"Kral Yolu","overview":"o","air_date":"2011-04-24","still_path":"/s.jpg"}`))
	})
	mux.HandleFunc("/find/tt0944947", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Query().Get("external_source") != "imdb_id" {
			http.Error(w, "bad source", http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"movie_results":[],"tv_results":[{"id":1399,"name":"Game of Thrones"}]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestSearchAndDetails(t *testing.T) {
	var hits atomic.Int32
	srv := newTestServer(t, &hits)
	c := NewClient(Config{APIKey: "key", BaseURL: srv.URL, Client: srv.Client()})
	ctx := context.Background()

	results, err := c.SearchMovie(ctx, "Inception", 2010)
	if err != nil {
		t.Fatalf("SearchMovie: %v", err)
	}
	if len(results) != 1 || results[0].OriginalTitle() != "Inception" || results[0].Year() != 2010 {
		t.Fatalf("unexpected results %+v", results)
	}

	d, err := c.MovieDetails(ctx, 27205)
	if err != nil {
		t.Fatalf("MovieDetails: %v", err)
	}
	if d.ExternalIDs.IMDbID != "tt1375666" {
		t.Errorf("imdb id = %q", d.ExternalIDs.IMDbID)
	}
	if got := d.LogoURL(); got != "https://image.tmdb.org/t/p/w300/en.png" {
		t.Errorf("LogoURL = %q", got)
	}
	if d.RuntimeLabel() != "148 dk" {
		t.Errorf("RuntimeLabel = %q", d.RuntimeLabel())
	}
	if names := d.CastNames(); len(names) != 1 || names[0] != "Leonardo DiCaprio" {
		t.Errorf("CastNames = %v", names)
	}
	if len(d.Genres) != 1 || d.Genres[0].ID != 878 || d.Genres[0].Name != "Science Fiction" {
		t.Errorf("Genres = %v", d.Genres)
	}
}

func TestEpisodeAndFind(t *testing.T) {
	var hits atomic.Int32
	srv := newTestServer(t, &hits)
	c := NewClient(Config{APIKey: "key", BaseURL: srv.URL, Client: srv.Client()})
	ctx := context.Background()

	ep, err := c.Episode(ctx, 1399, 1, 2)
	if err != nil {
		t.Fatalf("Episode: %v", err)
	}
	if ep.Name != "Kral Yolu" || ep.AirDate != "2011-04-24" {
		t.Errorf("episode = %+v", ep)
	}

	found, err := c.FindByIMDb(ctx, "tt0944947")
	if err != nil {
		t.Fatalf("FindByIMDb: %v", err)
	}
	if len(found.TVResults) != 1 || found.TVResults[0].ID != 1399 {
		t.Errorf("find = %+v", found)
	}
}

func TestNotFound(t *testing.T) {
	var hits atomic.Int32
	srv := newTestServer(t, &hits)
	c := NewClient(Config{APIKey: "key", BaseURL: srv.URL, Client: srv.Client()})

	if _, err := c.TVDetails(context.Background(), 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestResponsesAreCached(t *testing.T) {
	var hits atomic.Int32
	srv := newTestServer(t, &hits)
	c := NewClient(Config{
		APIKey:  "key",
		BaseURL: srv.URL,
		Client:  srv.Client(),
		Cache:   cache.NewMemory(16, time.Hour),
	})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := c.SearchMovie(ctx, "Inception", 2010); err != nil {
			t.Fatalf("SearchMovie: %v", err)
		}
	}
	if hits.Load() != 1 {
		t.Fatalf("server hits = %d, want 1", hits.Load())
	}
}

func TestDisabledWithoutKey(t *testing.T) {
	c := NewClient(Config{})
	if c.Enabled() {
		t.Fatalf("client without key should be disabled")
	}
	if _, err := c.SearchTV(context.Background(), "x", 0); err == nil {
		t.Fatalf("expected error without api key")
	}
}

func TestImageURL(t *testing.T) {
	if got := ImageURL("/x.jpg", "w500"); got != "https://image.tmdb.org/t/p/w500/x.jpg" {
		t.Errorf("ImageURL = %q", got)
	}
	if ImageURL("", "original") != "" {
		t.Errorf("empty path should stay empty")
	}
}
