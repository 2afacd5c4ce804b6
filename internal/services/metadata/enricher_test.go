package metadata

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediaarchive/internal/domain"
	"mediaarchive/internal/services/metadata/tmdb"
)

type fakeCatalog struct {
	movies   []tmdb.SearchResult
	shows    []tmdb.SearchResult
	find     tmdb.FindResult
	details  map[int]*tmdb.Details
	episode  *tmdb.EpisodeDetails
	delay    time.Duration
	inflight atomic.Int32
	peak     atomic.Int32
	searches []int
	mu       sync.Mutex
}

func (f *fakeCatalog) enter() func() {
	n := f.inflight.Add(1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return func() { f.inflight.Add(-1) }
}

func (f *fakeCatalog) SearchMovie(ctx context.Context, query string, year int) ([]tmdb.SearchResult, error) {
	defer f.enter()()
	f.mu.Lock()
	f.searches = append(f.searches, year)
	f.mu.Unlock()
	if year > 0 {
		var out []tmdb.SearchResult
		for _, r := range f.movies {
			if r.Year() == year {
				out = append(out, r)
			}
		}
		return out, nil
	}
	return f.movies, nil
}

func (f *fakeCatalog) SearchTV(ctx context.Context, query string, year int) ([]tmdb.SearchResult, error) {
	defer f.enter()()
	return f.shows, nil
}

func (f *fakeCatalog) FindByIMDb(ctx context.Context, imdbID string) (tmdb.FindResult, error) {
	defer f.enter()()
	return f.find, nil
}

func (f *fakeCatalog) MovieDetails(ctx context.Context, id int) (*tmdb.Details, error) {
	defer f.enter()()
	if d, ok := f.details[id]; ok {
		return d, nil
	}
	return nil, tmdb.ErrNotFound
}

func (f *fakeCatalog) TVDetails(ctx context.Context, id int) (*tmdb.Details, error) {
	return f.MovieDetails(ctx, id)
}

func (f *fakeCatalog) Episode(ctx context.Context, seriesID, season, episode int) (*tmdb.EpisodeDetails, error) {
	defer f.enter()()
	if f.episode == nil {
		return nil, tmdb.ErrNotFound
	}
	return f.episode, nil
}

func inceptionDetails() *tmdb.Details {
	d := &tmdb.Details{
		ID:           27205,
		Title:        "Başlangıç",
		Overview:     "Rüya içinde rüya.",
		PosterPath:   "/p.jpg",
		BackdropPath: "/b.jpg",
		VoteAverage:  8.4,
		ReleaseDate:  "2010-07-15",
		Runtime:      148,
		Genres:       []tmdb.Genre{{ID: 28, Name: "Aksiyon"}, {ID: 878, Name: "Bilim-Kurgu"}},
	}
	d.ExternalIDs.IMDbID = "tt1375666"
	return d
}

func TestFindMatchBySearch(t *testing.T) {
	catalog := &fakeCatalog{
		movies: []tmdb.SearchResult{
			{ID: 1, Title: "Inception: The Cobol Job", ReleaseDate: "2010-12-07"},
			{ID: 27205, Title: "Başlangıç", Original: "Inception", ReleaseDate: "2010-07-15"},
		},
		details: map[int]*tmdb.Details{27205: inceptionDetails()},
	}
	e := NewEnricher(catalog)

	match, err := e.FindMatch(context.Background(), domain.MatchQuery{Title: "Inception", Year: 2010, Kind: domain.MediaMovie})
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, 27205, match.ExternalID)
	assert.Equal(t, "tt1375666", match.AlternateID)
	assert.Equal(t, "Başlangıç", match.Descriptive.Title)
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/p.jpg", match.Descriptive.Poster)
	assert.Equal(t, "https://image.tmdb.org/t/p/original/b.jpg", match.Descriptive.Backdrop)
	assert.Equal(t, []string{"Aksiyon", "Bilim Kurgu"}, match.Descriptive.Genres)
	assert.Equal(t, "148 dk", match.Descriptive.Runtime)
}

func TestFindMatchRetriesSearchWithoutYear(t *testing.T) {
	catalog := &fakeCatalog{
		movies:  []tmdb.SearchResult{{ID: 27205, Title: "Inception", ReleaseDate: "2010-07-15"}},
		details: map[int]*tmdb.Details{27205: inceptionDetails()},
	}
	e := NewEnricher(catalog)

	match, err := e.FindMatch(context.Background(), domain.MatchQuery{Title: "Inception", Year: 2011, Kind: domain.MediaMovie})
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, []int{2011, 0}, catalog.searches)
}

func TestFindMatchUsesHintedIDs(t *testing.T) {
	catalog := &fakeCatalog{details: map[int]*tmdb.Details{27205: inceptionDetails()}}
	e := NewEnricher(catalog)

	match, err := e.FindMatch(context.Background(), domain.MatchQuery{Title: "whatever", ExternalID: 27205, Kind: domain.MediaMovie})
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Empty(t, catalog.searches)

	catalog.find = tmdb.FindResult{MovieResults: []tmdb.SearchResult{{ID: 27205}}}
	match, err = e.FindMatch(context.Background(), domain.MatchQuery{Title: "whatever", AlternateID: "tt1375666", Kind: domain.MediaMovie})
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, 27205, match.ExternalID)
}

func TestFindMatchNoCandidate(t *testing.T) {
	catalog := &fakeCatalog{movies: []tmdb.SearchResult{{ID: 9, Title: "Completely Different"}}}
	e := NewEnricher(catalog)

	match, err := e.FindMatch(context.Background(), domain.MatchQuery{Title: "Inception", Kind: domain.MediaMovie})
	require.NoError(t, err)
	assert.Nil(t, match)
}

func TestBestCandidatePrefersYear(t *testing.T) {
	results := []tmdb.SearchResult{
		{ID: 1, Title: "Dune", ReleaseDate: "1984-12-14"},
		{ID: 2, Title: "Dune", ReleaseDate: "2021-09-15"},
	}
	best := BestCandidate("Dune", 2021, results)
	require.NotNil(t, best)
	assert.Equal(t, 2, best.ID)

	first := BestCandidate("Dune", 0, results)
	require.NotNil(t, first)
	assert.Equal(t, 1, first.ID)
}

func TestFindEpisode(t *testing.T) {
	catalog := &fakeCatalog{episode: &tmdb.EpisodeDetails{Name: "Yalanlar", AirDate: "2017-12-01", StillPath: "/s.jpg"}}
	e := NewEnricher(catalog)

	ep, err := e.FindEpisode(context.Background(), 70523, 1, 2)
	require.NoError(t, err)
	require.NotNil(t, ep)
	assert.Equal(t, "Yalanlar", ep.Title)
	assert.Equal(t, "https://image.tmdb.org/t/p/original/s.jpg", ep.Backdrop)

	catalog.episode = nil
	ep, err = e.FindEpisode(context.Background(), 70523, 9, 9)
	require.NoError(t, err)
	assert.Nil(t, ep)
}

func TestConcurrencyIsBounded(t *testing.T) {
	catalog := &fakeCatalog{
		episode: &tmdb.EpisodeDetails{Name: "x"},
		delay:   5 * time.Millisecond,
	}
	e := NewEnricher(catalog, WithConcurrency(3))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = e.FindEpisode(context.Background(), 1, 1, 1)
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, catalog.peak.Load(), int32(3))
}

func TestCanceledContextDoesNotCallUpstream(t *testing.T) {
	catalog := &fakeCatalog{episode: &tmdb.EpisodeDetails{Name: "x"}}
	e := NewEnricher(catalog, WithConcurrency(1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// fill the single slot so Acquire must wait on the canceled context
	require.NoError(t, e.gate.Acquire(context.Background(), 1))
	defer e.gate.Release(1)

	_, err := e.FindEpisode(ctx, 1, 1, 1)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.EqualValues(t, 0, catalog.peak.Load())
}

func TestGenreNamesPreferIDsOverLocalizedNames(t *testing.T) {
	got := genreNames([]tmdb.Genre{
		{ID: 878, Name: "Bilim-Kurgu"},
		{ID: 10770, Name: "TV film"},
		{ID: 10765, Name: "Bilim Kurgu & Fantazi"},
		{ID: 10768, Name: "Savaş & Politik"},
		{ID: 99999, Name: "Aksiyon & Macera"},
		{Name: "Anime"},
	})
	assert.Equal(t, []string{
		"Bilim Kurgu", "TV Filmi", "Bilim Kurgu ve Fantazi", "Savaş ve Politika",
		"Aksiyon ve Macera", "Anime",
	}, got)
}
