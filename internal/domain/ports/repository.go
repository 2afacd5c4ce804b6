package ports

import (
	"context"

	"mediaarchive/internal/domain"
)

// TitleStore performs merges atomically. Implementations return
// domain.ErrConflict when a conditional step lost a race and the whole
// merge may be retried.
type TitleStore interface {
	MergeSource(ctx context.Context, req domain.MergeRequest) (domain.MergeResult, error)
}

type CatalogReader interface {
	Get(ctx context.Context, kind domain.MediaKind, key domain.TitleKey) (domain.TitleDocument, error)
	List(ctx context.Context, kind domain.MediaKind, filter domain.CatalogFilter) ([]domain.TitleDocument, error)
}

type CatalogPurger interface {
	Count(ctx context.Context, kind domain.MediaKind) (int64, error)
	DeleteAll(ctx context.Context, kind domain.MediaKind) (int64, error)
}

// TitleRepository is the full storage surface used by the server.
type TitleRepository interface {
	TitleStore
	CatalogReader
	CatalogPurger
}
