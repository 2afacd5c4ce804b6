package domain

import (
	"fmt"
	"strings"
	"time"
)

// Source is one downloadable link for a title or episode.
type Source struct {
	Locator      string `json:"id"`
	DisplayName  string `json:"name"`
	QualityLabel string `json:"quality"`
	SizeLabel    string `json:"size"`
}

// IsDirect reports whether the locator is a URL clients can open without
// going through the local gateway.
func (s Source) IsDirect() bool {
	l := strings.ToLower(s.Locator)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}

type TitleKey struct {
	ExternalID  int
	AlternateID string
}

func (k TitleKey) IsZero() bool {
	return k.ExternalID <= 0 && strings.TrimSpace(k.AlternateID) == ""
}

func (k TitleKey) String() string {
	if k.ExternalID > 0 {
		return fmt.Sprintf("tmdb:%d", k.ExternalID)
	}
	return "imdb:" + k.AlternateID
}

type EpisodeRef struct {
	Season  int
	Episode int
}

type Descriptive struct {
	Title    string
	Year     int
	Overview string
	Rating   float64
	Poster   string
	Backdrop string
	Logo     string
	Genres   []string
	Cast     []string
	Runtime  string
}

type EpisodeDetail struct {
	Title    string
	Overview string
	AirDate  string
	Backdrop string
}

type Episode struct {
	Number   int
	Title    string
	Overview string
	AirDate  string
	Backdrop string
	Sources  []Source
}

type Season struct {
	Number   int
	Episodes []Episode
}

type TitleDocument struct {
	Key         TitleKey
	Kind        MediaKind
	DBIndex     int
	Descriptive Descriptive
	Sources     []Source
	Seasons     []Season
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// MergeRequest describes one source arriving for a title.
type MergeRequest struct {
	Key           TitleKey
	Kind          MediaKind
	DBIndex       int
	Source        Source
	Episode       *EpisodeRef
	EpisodeDetail *EpisodeDetail
	Descriptive   *Descriptive
	Refresh       bool
}

// Check validates the request shape before any store is touched.
func (r MergeRequest) Check() error {
	locator := strings.TrimSpace(r.Source.Locator)
	switch {
	case locator == "":
		return fmt.Errorf("%w: empty locator", ErrPrecondition)
	case r.Key.IsZero():
		return fmt.Errorf("%w: no title key for %s", ErrPrecondition, locator)
	case !r.Kind.Valid():
		return fmt.Errorf("%w: unknown media kind %q for %s", ErrPrecondition, r.Kind, locator)
	case r.Kind == MediaMovie && r.Episode != nil:
		return fmt.Errorf("%w: episode reference on movie source %s", ErrPrecondition, locator)
	case r.Kind == MediaSeries && r.Episode == nil:
		return fmt.Errorf("%w: series source %s without episode reference", ErrPrecondition, locator)
	case r.Episode != nil && (r.Episode.Season <= 0 || r.Episode.Episode <= 0):
		return fmt.Errorf("%w: invalid episode S%dE%d for %s", ErrPrecondition, r.Episode.Season, r.Episode.Episode, locator)
	}
	return nil
}

type MergeResult struct {
	Document TitleDocument
	Created  bool
	// Inserted is false when an existing entry with the same locator was replaced.
	Inserted bool
}

// NewTitleDocument builds the document a first merge creates.
func NewTitleDocument(req MergeRequest, now time.Time) TitleDocument {
	doc := TitleDocument{
		Key:       req.Key,
		Kind:      req.Kind,
		DBIndex:   req.DBIndex,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Descriptive != nil {
		doc.Descriptive = req.Descriptive.clone()
	}
	return doc
}

// Merge applies req to the document in memory. Callers must hold whatever
// lock serializes writers of this document.
func (d *TitleDocument) Merge(req MergeRequest, now time.Time) (inserted bool) {
	if req.Refresh && req.Descriptive != nil {
		d.Descriptive = req.Descriptive.clone()
	}
	if d.Key.ExternalID <= 0 && req.Key.ExternalID > 0 {
		d.Key.ExternalID = req.Key.ExternalID
	}
	if d.Key.AlternateID == "" {
		d.Key.AlternateID = req.Key.AlternateID
	}
	d.UpdatedAt = now

	if req.Kind == MediaMovie {
		d.Sources, inserted = UpsertSource(d.Sources, req.Source)
		return inserted
	}

	season := d.season(req.Episode.Season)
	episode := season.episode(req.Episode.Episode, req.EpisodeDetail)
	if req.Refresh && req.EpisodeDetail != nil {
		episode.applyDetail(*req.EpisodeDetail)
	}
	episode.Sources, inserted = UpsertSource(episode.Sources, req.Source)
	return inserted
}

func (d *TitleDocument) season(number int) *Season {
	for i := range d.Seasons {
		if d.Seasons[i].Number == number {
			return &d.Seasons[i]
		}
	}
	d.Seasons = append(d.Seasons, Season{Number: number})
	return &d.Seasons[len(d.Seasons)-1]
}

func (s *Season) episode(number int, detail *EpisodeDetail) *Episode {
	for i := range s.Episodes {
		if s.Episodes[i].Number == number {
			return &s.Episodes[i]
		}
	}
	ep := Episode{Number: number}
	if detail != nil {
		ep.applyDetail(*detail)
	}
	s.Episodes = append(s.Episodes, ep)
	return &s.Episodes[len(s.Episodes)-1]
}

func (e *Episode) applyDetail(detail EpisodeDetail) {
	e.Title = detail.Title
	e.Overview = detail.Overview
	e.AirDate = detail.AirDate
	e.Backdrop = detail.Backdrop
}

// UpsertSource appends src, or replaces the entry holding the same locator.
func UpsertSource(list []Source, src Source) ([]Source, bool) {
	for i := range list {
		if list[i].Locator == src.Locator {
			list[i] = src
			return list, false
		}
	}
	return append(list, src), true
}

// FindEpisode returns the episode at ref, if present.
func (d TitleDocument) FindEpisode(ref EpisodeRef) (Episode, bool) {
	for _, s := range d.Seasons {
		if s.Number != ref.Season {
			continue
		}
		for _, e := range s.Episodes {
			if e.Number == ref.Episode {
				return e, true
			}
		}
	}
	return Episode{}, false
}

// Validate reports structural duplicates that merges must never produce.
func (d TitleDocument) Validate() error {
	if err := checkLocators(d.Sources); err != nil {
		return err
	}
	seasons := make(map[int]struct{}, len(d.Seasons))
	for _, s := range d.Seasons {
		if _, dup := seasons[s.Number]; dup {
			return fmt.Errorf("%w: duplicate season %d", ErrInconsistentDocument, s.Number)
		}
		seasons[s.Number] = struct{}{}
		episodes := make(map[int]struct{}, len(s.Episodes))
		for _, e := range s.Episodes {
			if _, dup := episodes[e.Number]; dup {
				return fmt.Errorf("%w: duplicate episode S%dE%d", ErrInconsistentDocument, s.Number, e.Number)
			}
			episodes[e.Number] = struct{}{}
			if err := checkLocators(e.Sources); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkLocators(list []Source) error {
	seen := make(map[string]struct{}, len(list))
	for _, src := range list {
		if _, dup := seen[src.Locator]; dup {
			return fmt.Errorf("%w: duplicate locator %s", ErrInconsistentDocument, src.Locator)
		}
		seen[src.Locator] = struct{}{}
	}
	return nil
}

// Clone returns a deep copy.
func (d TitleDocument) Clone() TitleDocument {
	out := d
	out.Descriptive = d.Descriptive.clone()
	out.Sources = append([]Source(nil), d.Sources...)
	if d.Seasons != nil {
		out.Seasons = make([]Season, len(d.Seasons))
		for i, s := range d.Seasons {
			out.Seasons[i] = Season{Number: s.Number}
			if s.Episodes != nil {
				out.Seasons[i].Episodes = make([]Episode, len(s.Episodes))
				for j, e := range s.Episodes {
					e.Sources = append([]Source(nil), e.Sources...)
					out.Seasons[i].Episodes[j] = e
				}
			}
		}
	}
	return out
}

func (d Descriptive) clone() Descriptive {
	out := d
	out.Genres = append([]string(nil), d.Genres...)
	out.Cast = append([]string(nil), d.Cast...)
	return out
}
