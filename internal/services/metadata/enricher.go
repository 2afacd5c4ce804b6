// Package metadata matches parsed releases against TMDB.
package metadata

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/semaphore"

	"mediaarchive/internal/domain"
	"mediaarchive/internal/genre"
	"mediaarchive/internal/metrics"
	"mediaarchive/internal/release"
	"mediaarchive/internal/services/metadata/tmdb"
)

const (
	DefaultConcurrency = 12
	// minSimilarity rejects search hits that only share a word or two.
	minSimilarity = 0.72
	yearBonus     = 0.1
)

// Catalog is the subset of the TMDB API the enricher uses.
type Catalog interface {
	SearchMovie(ctx context.Context, query string, year int) ([]tmdb.SearchResult, error)
	SearchTV(ctx context.Context, query string, year int) ([]tmdb.SearchResult, error)
	FindByIMDb(ctx context.Context, imdbID string) (tmdb.FindResult, error)
	MovieDetails(ctx context.Context, id int) (*tmdb.Details, error)
	TVDetails(ctx context.Context, id int) (*tmdb.Details, error)
	Episode(ctx context.Context, seriesID, season, episode int) (*tmdb.EpisodeDetails, error)
}

// Enricher implements ports.MetadataProvider. Every upstream call holds a
// slot of a process-wide weighted semaphore.
type Enricher struct {
	catalog Catalog
	gate    *semaphore.Weighted
	logger  *slog.Logger
}

type Option func(*Enricher)

func WithLogger(l *slog.Logger) Option {
	return func(e *Enricher) {
		if l != nil {
			e.logger = l
		}
	}
}

func WithConcurrency(n int) Option {
	return func(e *Enricher) {
		if n > 0 {
			e.gate = semaphore.NewWeighted(int64(n))
		}
	}
}

func NewEnricher(catalog Catalog, opts ...Option) *Enricher {
	e := &Enricher{
		catalog: catalog,
		gate:    semaphore.NewWeighted(DefaultConcurrency),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Enricher) FindMatch(ctx context.Context, q domain.MatchQuery) (*domain.TitleMatch, error) {
	kind := q.Kind
	if !kind.Valid() {
		kind = domain.MediaMovie
	}

	id := q.ExternalID
	if id <= 0 && q.AlternateID != "" {
		found, err := call(ctx, e, "find", func(ctx context.Context) (tmdb.FindResult, error) {
			return e.catalog.FindByIMDb(ctx, q.AlternateID)
		})
		if err != nil && !errors.Is(err, tmdb.ErrNotFound) {
			return nil, err
		}
		results := found.MovieResults
		if kind == domain.MediaSeries {
			results = found.TVResults
		}
		if len(results) > 0 {
			id = results[0].ID
		}
	}

	if id > 0 {
		match, err := e.matchByID(ctx, kind, id, q.AlternateID)
		if err == nil || !errors.Is(err, tmdb.ErrNotFound) {
			return match, err
		}
		e.logger.Debug("hinted id not found, searching", slog.Int("id", id), slog.String("title", q.Title))
	}

	best, err := e.search(ctx, kind, q.Title, q.Year)
	if err != nil || best == nil {
		return nil, err
	}
	match, err := e.matchByID(ctx, kind, best.ID, q.AlternateID)
	if errors.Is(err, tmdb.ErrNotFound) {
		return nil, nil
	}
	return match, err
}

func (e *Enricher) search(ctx context.Context, kind domain.MediaKind, title string, year int) (*tmdb.SearchResult, error) {
	if title == "" {
		return nil, nil
	}
	searchFn := e.catalog.SearchMovie
	if kind == domain.MediaSeries {
		searchFn = e.catalog.SearchTV
	}
	results, err := call(ctx, e, "search", func(ctx context.Context) ([]tmdb.SearchResult, error) {
		return searchFn(ctx, title, year)
	})
	if err != nil {
		return nil, err
	}
	if len(results) == 0 && year > 0 {
		results, err = call(ctx, e, "search", func(ctx context.Context) ([]tmdb.SearchResult, error) {
			return searchFn(ctx, title, 0)
		})
		if err != nil {
			return nil, err
		}
	}
	return BestCandidate(title, year, results), nil
}

// BestCandidate scores results by title similarity, preferring the local
// and the original title alike, with a bonus for a matching year. Ties keep
// upstream order.
func BestCandidate(title string, year int, results []tmdb.SearchResult) *tmdb.SearchResult {
	var best *tmdb.SearchResult
	bestScore := 0.0
	for i := range results {
		r := &results[i]
		score := max(release.Similarity(title, r.DisplayTitle()), release.Similarity(title, r.OriginalTitle()))
		if score < minSimilarity {
			continue
		}
		if year > 0 && r.Year() == year {
			score += yearBonus
		}
		if score > bestScore {
			best, bestScore = r, score
		}
	}
	return best
}

func (e *Enricher) matchByID(ctx context.Context, kind domain.MediaKind, id int, alternate string) (*domain.TitleMatch, error) {
	details, err := call(ctx, e, "details", func(ctx context.Context) (*tmdb.Details, error) {
		if kind == domain.MediaSeries {
			return e.catalog.TVDetails(ctx, id)
		}
		return e.catalog.MovieDetails(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	imdb := details.ExternalIDs.IMDbID
	if imdb == "" {
		imdb = alternate
	}
	return &domain.TitleMatch{
		ExternalID:  details.ID,
		AlternateID: imdb,
		Kind:        kind,
		Descriptive: domain.Descriptive{
			Title:    details.DisplayTitle(),
			Year:     details.Year(),
			Overview: details.Overview,
			Rating:   details.VoteAverage,
			Poster:   tmdb.ImageURL(details.PosterPath, "w500"),
			Backdrop: tmdb.ImageURL(details.BackdropPath, "original"),
			Logo:     details.LogoURL(),
			Genres:   genreNames(details.Genres),
			Cast:     details.CastNames(),
			Runtime:  details.RuntimeLabel(),
		},
	}, nil
}

func (e *Enricher) FindEpisode(ctx context.Context, seriesID, season, episode int) (*domain.EpisodeDetail, error) {
	ep, err := call(ctx, e, "episode", func(ctx context.Context) (*tmdb.EpisodeDetails, error) {
		return e.catalog.Episode(ctx, seriesID, season, episode)
	})
	if err != nil {
		if errors.Is(err, tmdb.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &domain.EpisodeDetail{
		Title:    ep.Name,
		Overview: ep.Overview,
		AirDate:  ep.AirDate,
		Backdrop: tmdb.ImageURL(ep.StillPath, "original"),
	}, nil
}

func call[T any](ctx context.Context, e *Enricher, op string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if err := e.gate.Acquire(ctx, 1); err != nil {
		return zero, err
	}
	metrics.ProviderInflight.Inc()
	start := time.Now()
	defer func() {
		metrics.ProviderInflight.Dec()
		e.gate.Release(1)
		metrics.ProviderRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}()

	v, err := fn(ctx)
	status := "ok"
	switch {
	case errors.Is(err, tmdb.ErrNotFound):
		status = "not_found"
	case err != nil:
		status = "error"
		e.logger.Warn("tmdb request failed", slog.String("operation", op), slog.String("error", err.Error()))
	}
	metrics.ProviderRequestsTotal.WithLabelValues(op, status).Inc()
	return v, err
}

// genreNames maps by TMDB genre id first, since names follow the request
// language, and falls back to the alias table for unknown ids.
func genreNames(genres []tmdb.Genre) []string {
	names := make([]string, 0, len(genres))
	for _, g := range genres {
		if display, ok := genre.ByTMDBID(g.ID); ok {
			names = append(names, display)
			continue
		}
		names = append(names, g.Name)
	}
	return genre.Normalize(names)
}
