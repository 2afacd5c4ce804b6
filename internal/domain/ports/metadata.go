package ports

import (
	"context"
	"time"

	"mediaarchive/internal/domain"
)

//go:generate mockgen -destination=mocks/metadata_mock.go -package=mocks mediaarchive/internal/domain/ports MetadataProvider

// MetadataProvider returns (nil, nil) when nothing matches.
type MetadataProvider interface {
	FindMatch(ctx context.Context, q domain.MatchQuery) (*domain.TitleMatch, error)
	FindEpisode(ctx context.Context, seriesID, season, episode int) (*domain.EpisodeDetail, error)
}

// Cache is a byte-oriented cache with per-entry expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type FileInfo struct {
	Name      string
	SizeBytes int64
}

// FileResolver derives a filename and size for a link.
type FileResolver interface {
	Normalize(link string) string
	Resolve(ctx context.Context, link string) (FileInfo, error)
}
