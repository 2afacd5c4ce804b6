package usecase

import (
	"context"
	"errors"

	"mediaarchive/internal/domain"
	"mediaarchive/internal/domain/ports"
	"mediaarchive/internal/ranking"
)

// ListSources returns the ranked sources of a movie, or of one episode of
// a series.
type ListSources struct {
	Repo ports.CatalogReader
}

type ListSourcesInput struct {
	Kind    domain.MediaKind
	Key     domain.TitleKey
	Episode *domain.EpisodeRef
}

func (uc ListSources) Execute(ctx context.Context, input ListSourcesInput) ([]domain.Source, error) {
	doc, err := uc.Repo.Get(ctx, input.Kind, input.Key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, wrapRepo(err)
	}
	if input.Kind == domain.MediaMovie || input.Episode == nil {
		return ranking.Rank(doc.Sources), nil
	}
	ep, ok := doc.FindEpisode(*input.Episode)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return ranking.Rank(ep.Sources), nil
}
