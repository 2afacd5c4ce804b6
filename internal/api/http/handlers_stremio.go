package apihttp

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"mediaarchive/internal/domain"
	"mediaarchive/internal/usecase"
)

// PageSize is the number of metas per catalog page.
const PageSize = 15

const (
	movieCatalogID  = "movies"
	seriesCatalogID = "series"
	defaultQuality  = "HD"
)

type manifest struct {
	ID          string            `json:"id"`
	Version     string            `json:"version"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Types       []string          `json:"types"`
	Resources   []string          `json:"resources"`
	Catalogs    []manifestCatalog `json:"catalogs"`
}

type manifestCatalog struct {
	Type   string          `json:"type"`
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Genres []string        `json:"genres"`
	Extra  []manifestExtra `json:"extra"`
}

type manifestExtra struct {
	Name string `json:"name"`
}

type stremioMeta struct {
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	Name        string         `json:"name"`
	Poster      string         `json:"poster"`
	Background  string         `json:"background"`
	Logo        string         `json:"logo,omitempty"`
	Year        int            `json:"year,omitempty"`
	Genres      []string       `json:"genres"`
	Description string         `json:"description"`
	IMDbRating  string         `json:"imdbRating"`
	Cast        []string       `json:"cast,omitempty"`
	Runtime     string         `json:"runtime,omitempty"`
	Videos      []stremioVideo `json:"videos,omitempty"`
}

type stremioVideo struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Season    int    `json:"season"`
	Episode   int    `json:"episode"`
	Released  string `json:"released"`
	Overview  string `json:"overview,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

type stremioStream struct {
	Name  string `json:"name"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

func (s *Server) handleManifest(w http.ResponseWriter, r *http.Request) {
	extra := []manifestExtra{{Name: "genre"}, {Name: "search"}, {Name: "skip"}}
	writeJSON(w, http.StatusOK, manifest{
		ID:          "telegram.media",
		Version:     s.addon.Version,
		Name:        s.addon.Name,
		Description: "Dizi ve film arşivim.",
		Types:       []string{"movie", "series"},
		Resources:   []string{"catalog", "meta", "stream"},
		Catalogs: []manifestCatalog{
			{Type: "movie", ID: movieCatalogID, Name: "Filmler", Genres: s.genres, Extra: extra},
			{Type: "series", ID: seriesCatalogID, Name: "Diziler", Genres: s.genres, Extra: extra},
		},
	})
}

// catalogExtras parses the "genre=x/search=y/skip=n" path suffix.
func catalogExtras(raw string) (filter domain.CatalogFilter) {
	skip := 0
	for part := range strings.SplitSeq(raw, "/") {
		name, value, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		if unescaped, err := url.PathUnescape(value); err == nil {
			value = unescaped
		}
		switch name {
		case "genre":
			filter.Genre = strings.TrimSpace(value)
		case "search":
			filter.Search = strings.TrimSpace(value)
		case "skip":
			if n, err := strconv.Atoi(value); err == nil && n > 0 {
				skip = n
			}
		}
	}
	// skip is rounded down to a page boundary
	filter.Offset = (skip / PageSize) * PageSize
	filter.Limit = PageSize
	return filter
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	kind, ok := domain.ParseMediaKind(r.PathValue("type"))
	rest := strings.TrimSuffix(r.PathValue("rest"), ".json")
	catalogID, extra, _ := strings.Cut(rest, "/")
	if !ok || (catalogID != movieCatalogID && catalogID != seriesCatalogID) {
		writeJSON(w, http.StatusOK, map[string]any{"metas": []stremioMeta{}})
		return
	}

	docs, err := s.catalog.List(r.Context(), kind, catalogExtras(extra))
	if err != nil {
		writeRepoError(w, err)
		return
	}
	metas := make([]stremioMeta, 0, len(docs))
	for _, doc := range docs {
		metas = append(metas, toMeta(doc))
	}
	writeJSON(w, http.StatusOK, map[string]any{"metas": metas})
}

func (s *Server) handleMeta(w http.ResponseWriter, r *http.Request) {
	kind, ok := domain.ParseMediaKind(r.PathValue("type"))
	ref, err := parseStremioID(strings.TrimSuffix(r.PathValue("id"), ".json"))
	if !ok || err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid meta id")
		return
	}

	doc, err := s.catalog.Get(r.Context(), kind, ref.Key)
	if errors.Is(err, domain.ErrNotFound) {
		writeJSON(w, http.StatusOK, map[string]any{"meta": struct{}{}})
		return
	}
	if err != nil {
		writeRepoError(w, err)
		return
	}

	meta := toMeta(doc)
	if kind == domain.MediaSeries {
		meta.Videos = s.videos(meta.ID, doc)
	}
	writeJSON(w, http.StatusOK, map[string]any{"meta": meta})
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	kind, ok := domain.ParseMediaKind(r.PathValue("type"))
	ref, err := parseStremioID(strings.TrimSuffix(r.PathValue("id"), ".json"))
	if !ok || err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid stream id")
		return
	}
	empty := map[string]any{"streams": []stremioStream{}}
	if kind == domain.MediaSeries && ref.Episode == nil {
		writeJSON(w, http.StatusOK, empty)
		return
	}

	sources, err := s.sources.Execute(r.Context(), usecase.ListSourcesInput{Kind: kind, Key: ref.Key, Episode: ref.Episode})
	if errors.Is(err, domain.ErrNotFound) {
		writeJSON(w, http.StatusOK, empty)
		return
	}
	if err != nil {
		writeUseCaseError(w, err)
		return
	}

	streams := make([]stremioStream, 0, len(sources))
	for _, src := range sources {
		name := src.QualityLabel
		if name == "" {
			name = defaultQuality
		}
		streams = append(streams, stremioStream{Name: name, Title: src.DisplayName, URL: s.streamURL(src)})
	}
	writeJSON(w, http.StatusOK, map[string]any{"streams": streams})
}

func (s *Server) streamURL(src domain.Source) string {
	if strings.HasPrefix(src.Locator, "http") {
		return src.Locator
	}
	return s.addon.BaseURL + "/dl/" + url.PathEscape(src.Locator) + "/video.mkv"
}

func (s *Server) videos(id string, doc domain.TitleDocument) []stremioVideo {
	yesterday := s.now().UTC().Add(-24 * time.Hour).Format(time.RFC3339)
	var out []stremioVideo
	for _, season := range doc.Seasons {
		for _, ep := range season.Episodes {
			released := ep.AirDate
			if released == "" {
				released = yesterday
			}
			out = append(out, stremioVideo{
				ID:        fmt.Sprintf("%s:%d:%d", id, season.Number, ep.Number),
				Title:     ep.Title,
				Season:    season.Number,
				Episode:   ep.Number,
				Released:  released,
				Overview:  ep.Overview,
				Thumbnail: ep.Backdrop,
			})
		}
	}
	slices.SortStableFunc(out, func(a, b stremioVideo) int {
		if a.Season != b.Season {
			return a.Season - b.Season
		}
		return a.Episode - b.Episode
	})
	return out
}

func toMeta(doc domain.TitleDocument) stremioMeta {
	d := doc.Descriptive
	rating := ""
	if d.Rating > 0 {
		rating = strconv.FormatFloat(d.Rating, 'f', 1, 64)
	}
	genres := d.Genres
	if genres == nil {
		genres = []string{}
	}
	return stremioMeta{
		ID:          stremioID(doc),
		Type:        doc.Kind.StremioType(),
		Name:        d.Title,
		Poster:      d.Poster,
		Background:  d.Backdrop,
		Logo:        d.Logo,
		Year:        d.Year,
		Genres:      genres,
		Description: d.Overview,
		IMDbRating:  rating,
		Cast:        d.Cast,
		Runtime:     d.Runtime,
	}
}

// stremioID is "{tmdb_id}-{db_index}", or the bare IMDb id for titles that
// have no TMDB id.
func stremioID(doc domain.TitleDocument) string {
	if doc.Key.ExternalID > 0 {
		return fmt.Sprintf("%d-%d", doc.Key.ExternalID, doc.DBIndex)
	}
	return doc.Key.AlternateID
}

type stremioRef struct {
	Key     domain.TitleKey
	DBIndex int
	Episode *domain.EpisodeRef
}

// parseStremioID accepts "{tmdb}-{db_index}", "{tmdb}" and "tt…" ids, each
// optionally followed by ":{season}:{episode}".
func parseStremioID(raw string) (stremioRef, error) {
	var ref stremioRef
	parts := strings.Split(strings.TrimSpace(raw), ":")
	head := parts[0]

	switch {
	case strings.HasPrefix(head, "tt") && len(head) > 2:
		ref.Key.AlternateID = head
	default:
		idPart, indexPart, hasIndex := strings.Cut(head, "-")
		id, err := strconv.Atoi(idPart)
		if err != nil || id <= 0 {
			return ref, fmt.Errorf("invalid title id %q", head)
		}
		ref.Key.ExternalID = id
		if hasIndex {
			if ref.DBIndex, err = strconv.Atoi(indexPart); err != nil {
				return ref, fmt.Errorf("invalid db index %q", indexPart)
			}
		}
	}

	switch len(parts) {
	case 1:
	case 3:
		season, err1 := strconv.Atoi(parts[1])
		episode, err2 := strconv.Atoi(parts[2])
		if err1 != nil || err2 != nil || season <= 0 || episode <= 0 {
			return ref, fmt.Errorf("invalid episode in %q", raw)
		}
		ref.Episode = &domain.EpisodeRef{Season: season, Episode: episode}
	default:
		return ref, fmt.Errorf("invalid id %q", raw)
	}
	return ref, nil
}
