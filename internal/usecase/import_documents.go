package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"mediaarchive/internal/domain"
)

// ImportSource, ImportEpisode and ImportDocument mirror the persisted layout
// so exported catalogs can be imported back.
type ImportSource struct {
	Quality string `json:"quality"`
	ID      string `json:"id"`
	Name    string `json:"name"`
	Size    string `json:"size"`
}

type ImportEpisode struct {
	EpisodeNumber int            `json:"episode_number"`
	Title         string         `json:"title"`
	Overview      string         `json:"overview"`
	Released      string         `json:"released"`
	Backdrop      string         `json:"episode_backdrop"`
	Telegram      []ImportSource `json:"telegram"`
}

type ImportSeason struct {
	SeasonNumber int             `json:"season_number"`
	Episodes     []ImportEpisode `json:"episodes"`
}

type ImportDocument struct {
	Type        string         `json:"type"`
	MediaType   string         `json:"media_type"`
	TMDBID      int            `json:"tmdb_id"`
	IMDBID      string         `json:"imdb_id"`
	DBIndex     int            `json:"db_index"`
	Title       string         `json:"title"`
	ReleaseYear int            `json:"release_year"`
	Rating      float64        `json:"rating"`
	Description string         `json:"description"`
	Poster      string         `json:"poster"`
	Backdrop    string         `json:"backdrop"`
	Logo        string         `json:"logo"`
	Genres      []string       `json:"genres"`
	Cast        []string       `json:"cast"`
	Runtime     string         `json:"runtime"`
	Telegram    []ImportSource `json:"telegram"`
	Seasons     []ImportSeason `json:"seasons"`
}

// Kind reads "type", then "media_type"; anything unrecognized is a movie.
func (d ImportDocument) Kind() domain.MediaKind {
	for _, raw := range []string{d.Type, d.MediaType} {
		if kind, ok := domain.ParseMediaKind(raw); ok {
			return kind
		}
	}
	return domain.MediaMovie
}

type ImportReport struct {
	Movies  int      `json:"movies"`
	Series  int      `json:"series"`
	Sources int      `json:"sources"`
	Skipped int      `json:"skipped"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}

// ImportDocuments loads a JSON document or list of documents. Every source
// goes through the merge engine, so imports cannot introduce duplicates.
type ImportDocuments struct {
	Merge   MergeSource
	DBIndex int
	Logger  *slog.Logger
}

func (uc ImportDocuments) Execute(ctx context.Context, r io.Reader) (ImportReport, error) {
	docs, err := DecodeImport(r)
	if err != nil {
		return ImportReport{}, err
	}

	var report ImportReport
	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		reqs := uc.requests(doc)
		if len(reqs) == 0 {
			report.Skipped++
			continue
		}
		failed := false
		for _, req := range reqs {
			if _, err := uc.Merge.Execute(ctx, req); err != nil {
				failed = true
				report.Errors = append(report.Errors, fmt.Sprintf("document %d (%s): %v", i, doc.Title, err))
				continue
			}
			report.Sources++
		}
		if failed {
			report.Failed++
			continue
		}
		if doc.Kind() == domain.MediaSeries {
			report.Series++
		} else {
			report.Movies++
		}
	}

	uc.logger().Info("import finished",
		slog.Int("movies", report.Movies),
		slog.Int("series", report.Series),
		slog.Int("sources", report.Sources),
		slog.Int("skipped", report.Skipped),
		slog.Int("failed", report.Failed),
	)
	return report, nil
}

// DecodeImport accepts a single JSON object or a list of them.
func DecodeImport(r io.Reader) ([]ImportDocument, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty import", ErrInvalidRelease)
	}
	switch trimmed[0] {
	case '[':
		var docs []ImportDocument
		if err := json.Unmarshal(trimmed, &docs); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRelease, err)
		}
		return docs, nil
	case '{':
		var doc ImportDocument
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRelease, err)
		}
		return []ImportDocument{doc}, nil
	default:
		return nil, fmt.Errorf("%w: import must be an object or a list", ErrInvalidRelease)
	}
}

func (uc ImportDocuments) requests(doc ImportDocument) []domain.MergeRequest {
	key := domain.TitleKey{ExternalID: doc.TMDBID, AlternateID: strings.TrimSpace(doc.IMDBID)}
	kind := doc.Kind()
	dbIndex := doc.DBIndex
	if dbIndex <= 0 {
		dbIndex = uc.DBIndex
	}
	descriptive := &domain.Descriptive{
		Title:    doc.Title,
		Year:     doc.ReleaseYear,
		Overview: doc.Description,
		Rating:   doc.Rating,
		Poster:   doc.Poster,
		Backdrop: doc.Backdrop,
		Logo:     doc.Logo,
		Genres:   doc.Genres,
		Cast:     doc.Cast,
		Runtime:  doc.Runtime,
	}
	base := domain.MergeRequest{Key: key, Kind: kind, DBIndex: dbIndex, Descriptive: descriptive}

	var reqs []domain.MergeRequest
	if kind == domain.MediaMovie {
		for _, src := range doc.Telegram {
			req := base
			req.Source = src.toDomain()
			reqs = append(reqs, req)
		}
		return reqs
	}
	for _, season := range doc.Seasons {
		for _, ep := range season.Episodes {
			for _, src := range ep.Telegram {
				req := base
				req.Source = src.toDomain()
				req.Episode = &domain.EpisodeRef{Season: season.SeasonNumber, Episode: ep.EpisodeNumber}
				req.EpisodeDetail = &domain.EpisodeDetail{
					Title:    ep.Title,
					Overview: ep.Overview,
					AirDate:  ep.Released,
					Backdrop: ep.Backdrop,
				}
				reqs = append(reqs, req)
			}
		}
	}
	return reqs
}

func (s ImportSource) toDomain() domain.Source {
	return domain.Source{Locator: strings.TrimSpace(s.ID), DisplayName: s.Name, QualityLabel: s.Quality, SizeLabel: s.Size}
}

func (uc ImportDocuments) logger() *slog.Logger {
	if uc.Logger != nil {
		return uc.Logger
	}
	return slog.Default()
}
