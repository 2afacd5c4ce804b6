package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"mediaarchive/internal/domain"
	"mediaarchive/internal/domain/ports"
	"mediaarchive/internal/genre"
	"mediaarchive/internal/platform"
	"mediaarchive/internal/release"
)

const (
	UnknownQualityLabel = "Bilinmiyor"
	UnknownSizeLabel    = "YOK"
)

type PlatformClassifier interface {
	ClassifyRelease(info domain.ReleaseInfo, genres []string) domain.Platform
}

// IngestRelease turns one link into a merged source: filename resolution,
// parsing, metadata lookup, classification and the merge itself.
type IngestRelease struct {
	Merge      MergeSource
	Provider   ports.MetadataProvider
	Files      ports.FileResolver
	Classifier PlatformClassifier
	DBIndex    int
	Logger     *slog.Logger
}

type IngestInput struct {
	Link     string `json:"link"`
	Filename string `json:"filename,omitempty"`
	Size     string `json:"size,omitempty"`
	Refresh  bool   `json:"refresh,omitempty"`
}

type IngestResult struct {
	Filename string           `json:"filename"`
	Kind     domain.MediaKind `json:"kind"`
	Title    string           `json:"title"`
	Key      string           `json:"key"`
	Platform domain.Platform  `json:"platform,omitempty"`
	Created  bool             `json:"created"`
	Inserted bool             `json:"inserted"`
}

func (uc IngestRelease) Execute(ctx context.Context, input IngestInput) (IngestResult, error) {
	link := strings.TrimSpace(input.Link)
	if link == "" {
		return IngestResult{}, fmt.Errorf("%w: empty link", ErrInvalidRelease)
	}
	if uc.Files != nil {
		link = uc.Files.Normalize(link)
	}

	filename := strings.TrimSpace(input.Filename)
	var hostSize int64
	if filename == "" || input.Size == "" {
		if uc.Files == nil {
			if filename == "" {
				return IngestResult{}, fmt.Errorf("%w: no filename for %s", ErrInvalidRelease, link)
			}
		} else if fi, err := uc.Files.Resolve(ctx, link); err != nil {
			if filename == "" {
				return IngestResult{}, wrapFileHost(err)
			}
			uc.logger().Warn("file host lookup failed", slog.String("link", link), slog.String("error", err.Error()))
		} else {
			if filename == "" {
				filename = fi.Name
			}
			hostSize = fi.SizeBytes
		}
	}
	if filename == "" {
		return IngestResult{}, fmt.Errorf("%w: no filename for %s", ErrInvalidRelease, link)
	}

	info := release.Parse(filename)
	if info.MultiPart {
		return IngestResult{}, fmt.Errorf("%w: multi-part file %q", ErrInvalidRelease, filename)
	}
	if strings.TrimSpace(info.Title) == "" {
		return IngestResult{}, fmt.Errorf("%w: no title in %q", ErrInvalidRelease, filename)
	}
	if err := info.Validate(); err != nil {
		return IngestResult{}, fmt.Errorf("%w: %q: %v", ErrInvalidRelease, filename, err)
	}
	kind := info.Kind()

	tmdbID, imdbID := release.ExtractIDs(filename + " " + input.Link)
	match, err := uc.Provider.FindMatch(ctx, domain.MatchQuery{
		Title:       info.Title,
		Year:        info.Year,
		Kind:        kind,
		ExternalID:  tmdbID,
		AlternateID: imdbID,
	})
	if err != nil {
		return IngestResult{}, wrapProvider(err)
	}
	if match == nil || match.Key().IsZero() {
		return IngestResult{}, fmt.Errorf("%w: %q (%s)", ErrNoMatch, info.Title, filename)
	}

	var ref *domain.EpisodeRef
	var detail *domain.EpisodeDetail
	if kind == domain.MediaSeries {
		ref = &domain.EpisodeRef{Season: info.Season, Episode: info.Episode}
		if match.ExternalID > 0 {
			detail, err = uc.Provider.FindEpisode(ctx, match.ExternalID, info.Season, info.Episode)
			if err != nil {
				uc.logger().Warn("episode lookup failed",
					slog.Int("series", match.ExternalID),
					slog.Int("season", info.Season),
					slog.Int("episode", info.Episode),
					slog.String("error", err.Error()),
				)
				detail = nil
			}
		}
	}

	descriptive := match.Descriptive
	if descriptive.Title == "" {
		descriptive.Title = info.Title
	}
	if descriptive.Year == 0 {
		descriptive.Year = info.Year
	}
	p := uc.classifier().ClassifyRelease(info, match.Descriptive.Genres)
	descriptive.Genres = genre.WithPlatform(genre.Normalize(match.Descriptive.Genres), p)

	res, err := uc.Merge.Execute(ctx, domain.MergeRequest{
		Key:           match.Key(),
		Kind:          kind,
		DBIndex:       uc.DBIndex,
		Source:        BuildSource(link, filename, input.Size, hostSize, info),
		Episode:       ref,
		EpisodeDetail: detail,
		Descriptive:   &descriptive,
		Refresh:       input.Refresh,
	})
	if err != nil {
		return IngestResult{}, err
	}

	uc.logger().Info("release merged",
		slog.String("filename", filename),
		slog.String("key", match.Key().String()),
		slog.String("kind", string(kind)),
		slog.Bool("created", res.Created),
		slog.Bool("inserted", res.Inserted),
	)
	return IngestResult{
		Filename: filename,
		Kind:     kind,
		Title:    res.Document.Descriptive.Title,
		Key:      match.Key().String(),
		Platform: p,
		Created:  res.Created,
		Inserted: res.Inserted,
	}, nil
}

// BuildSource fills the source labels. Size precedence: explicit label,
// file host byte count, size tag in the filename. Computed labels use
// binary units so ranking reads them back in the same base.
func BuildSource(locator, filename, explicitSize string, hostBytes int64, info domain.ReleaseInfo) domain.Source {
	quality := info.ResolutionLabel
	if quality == "" {
		quality = UnknownQualityLabel
	}
	size := strings.TrimSpace(explicitSize)
	switch {
	case size != "":
	case hostBytes > 0:
		size = release.FormatSize(hostBytes)
	case info.SizeMB > 0:
		size = release.FormatSize(int64(info.SizeMB * 1024 * 1024))
	default:
		size = UnknownSizeLabel
	}
	return domain.Source{
		Locator:      locator,
		DisplayName:  filename,
		QualityLabel: quality,
		SizeLabel:    size,
	}
}

func (uc IngestRelease) classifier() PlatformClassifier {
	if uc.Classifier != nil {
		return uc.Classifier
	}
	return platform.NewClassifier()
}

func (uc IngestRelease) logger() *slog.Logger {
	if uc.Logger != nil {
		return uc.Logger
	}
	return slog.Default()
}
