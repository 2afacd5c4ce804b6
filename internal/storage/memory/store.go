// Package memory is an in-process title store used for tests, the CLI dry
// runs and STORAGE_BACKEND=memory deployments.
package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"mediaarchive/internal/domain"
	"mediaarchive/internal/release"
)

type collection struct {
	mu   sync.RWMutex
	docs []*domain.TitleDocument
}

// Store keeps one collection per media kind. Writers of a collection are
// serialized, so every merge is atomic with respect to concurrent merges.
type Store struct {
	movies collection
	series collection
	now    func() time.Time
}

func NewStore() *Store {
	return &Store{now: time.Now}
}

func (s *Store) collection(kind domain.MediaKind) (*collection, error) {
	switch kind {
	case domain.MediaMovie:
		return &s.movies, nil
	case domain.MediaSeries:
		return &s.series, nil
	default:
		return nil, fmt.Errorf("%w: unknown media kind %q", domain.ErrPrecondition, kind)
	}
}

func (s *Store) MergeSource(ctx context.Context, req domain.MergeRequest) (domain.MergeResult, error) {
	if err := req.Check(); err != nil {
		return domain.MergeResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return domain.MergeResult{}, err
	}
	c, err := s.collection(req.Kind)
	if err != nil {
		return domain.MergeResult{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := s.now().UTC()
	doc := c.findForMerge(req.Key)
	if doc == nil {
		created := domain.NewTitleDocument(req, now)
		created.Merge(req, now)
		c.docs = append(c.docs, &created)
		return domain.MergeResult{Document: created.Clone(), Created: true, Inserted: true}, nil
	}
	inserted := doc.Merge(req, now)
	return domain.MergeResult{Document: doc.Clone(), Inserted: inserted}, nil
}

// findForMerge resolves the document a merge applies to. A request carrying
// both ids may claim a document that so far only knows its alternate id.
func (c *collection) findForMerge(key domain.TitleKey) *domain.TitleDocument {
	if doc := c.find(key); doc != nil {
		return doc
	}
	if key.ExternalID > 0 && key.AlternateID != "" {
		for _, doc := range c.docs {
			if doc.Key.ExternalID <= 0 && doc.Key.AlternateID == key.AlternateID {
				return doc
			}
		}
	}
	return nil
}

func (c *collection) find(key domain.TitleKey) *domain.TitleDocument {
	for _, doc := range c.docs {
		if key.ExternalID > 0 {
			if doc.Key.ExternalID == key.ExternalID {
				return doc
			}
			continue
		}
		if key.AlternateID != "" && doc.Key.AlternateID == key.AlternateID {
			return doc
		}
	}
	return nil
}

func (s *Store) Get(ctx context.Context, kind domain.MediaKind, key domain.TitleKey) (domain.TitleDocument, error) {
	if err := ctx.Err(); err != nil {
		return domain.TitleDocument{}, err
	}
	c, err := s.collection(kind)
	if err != nil {
		return domain.TitleDocument{}, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	doc := c.find(key)
	if doc == nil {
		return domain.TitleDocument{}, domain.ErrNotFound
	}
	return doc.Clone(), nil
}

// List returns documents most recently updated first.
func (s *Store) List(ctx context.Context, kind domain.MediaKind, filter domain.CatalogFilter) ([]domain.TitleDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c, err := s.collection(kind)
	if err != nil {
		return nil, err
	}
	search := release.CleanTitle(filter.Search)

	c.mu.RLock()
	matched := make([]domain.TitleDocument, 0, len(c.docs))
	for _, doc := range c.docs {
		if filter.Genre != "" && !slices.Contains(doc.Descriptive.Genres, filter.Genre) {
			continue
		}
		if search != "" && !strings.Contains(release.CleanTitle(doc.Descriptive.Title), search) {
			continue
		}
		matched = append(matched, doc.Clone())
	}
	c.mu.RUnlock()

	slices.SortStableFunc(matched, func(a, b domain.TitleDocument) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})

	offset := max(filter.Offset, 0)
	if offset >= len(matched) {
		return []domain.TitleDocument{}, nil
	}
	matched = matched[offset:]
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

func (s *Store) Count(ctx context.Context, kind domain.MediaKind) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	c, err := s.collection(kind)
	if err != nil {
		return 0, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return int64(len(c.docs)), nil
}

func (s *Store) DeleteAll(ctx context.Context, kind domain.MediaKind) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	c, err := s.collection(kind)
	if err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	n := int64(len(c.docs))
	c.docs = nil
	return n, nil
}
