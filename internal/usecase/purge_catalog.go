package usecase

import (
	"context"
	"log/slog"

	"mediaarchive/internal/domain"
	"mediaarchive/internal/domain/ports"
)

type PurgeReport struct {
	Movies int64 `json:"movies"`
	Series int64 `json:"series"`
}

// PurgeCatalog deletes every title. Counts are taken before deletion so the
// report reflects what existed when the purge started.
type PurgeCatalog struct {
	Repo   ports.CatalogPurger
	Logger *slog.Logger
}

func (uc PurgeCatalog) Execute(ctx context.Context) (PurgeReport, error) {
	movies, err := uc.Repo.Count(ctx, domain.MediaMovie)
	if err != nil {
		return PurgeReport{}, wrapRepo(err)
	}
	series, err := uc.Repo.Count(ctx, domain.MediaSeries)
	if err != nil {
		return PurgeReport{}, wrapRepo(err)
	}
	if _, err := uc.Repo.DeleteAll(ctx, domain.MediaMovie); err != nil {
		return PurgeReport{}, wrapRepo(err)
	}
	if _, err := uc.Repo.DeleteAll(ctx, domain.MediaSeries); err != nil {
		return PurgeReport{}, wrapRepo(err)
	}

	logger := uc.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn("catalog purged", slog.Int64("movies", movies), slog.Int64("series", series))
	return PurgeReport{Movies: movies, Series: series}, nil
}
