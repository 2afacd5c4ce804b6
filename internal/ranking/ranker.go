// Package ranking orders the sources of one title or episode for display.
package ranking

import (
	"sort"

	"mediaarchive/internal/domain"
	"mediaarchive/internal/release"
)

type scored struct {
	src        domain.Source
	origin     int
	resolution int
	sizeMB     float64
}

// Rank returns a new slice sorted by direct-link origin, then resolution,
// then size, all descending. Equal keys keep their input order.
func Rank(sources []domain.Source) []domain.Source {
	if len(sources) == 0 {
		return []domain.Source{}
	}
	entries := make([]scored, len(sources))
	for i, src := range sources {
		entries[i] = score(src)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.origin != b.origin {
			return a.origin > b.origin
		}
		if a.resolution != b.resolution {
			return a.resolution > b.resolution
		}
		return a.sizeMB > b.sizeMB
	})
	out := make([]domain.Source, len(entries))
	for i, e := range entries {
		out[i] = e.src
	}
	return out
}

func score(src domain.Source) scored {
	s := scored{src: src}
	if src.IsDirect() {
		s.origin = 1
	}
	s.resolution = release.ResolutionRank(src.QualityLabel)
	if s.resolution == domain.UnknownResolutionRank {
		s.resolution = release.ResolutionRank(src.DisplayName)
	}
	s.sizeMB = release.ParseSize(src.SizeLabel)
	if s.sizeMB == 0 {
		s.sizeMB = release.ParseSize(src.DisplayName)
	}
	return s
}

// Ranker adapts Rank to interfaces that expect a value.
type Ranker struct{}

func (Ranker) Rank(sources []domain.Source) []domain.Source { return Rank(sources) }
