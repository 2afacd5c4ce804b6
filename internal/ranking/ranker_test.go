package ranking

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediaarchive/internal/domain"
)

func locators(sources []domain.Source) []string {
	out := make([]string, len(sources))
	for i, s := range sources {
		out[i] = s.Locator
	}
	return out
}

func TestRankOriginIsPrimaryKey(t *testing.T) {
	sources := []domain.Source{
		{Locator: "gw-2160", QualityLabel: "2160p", SizeLabel: "20GB"},
		{Locator: "https://host/720", QualityLabel: "720p", SizeLabel: "700MB"},
	}
	assert.Equal(t, []string{"https://host/720", "gw-2160"}, locators(Rank(sources)))
}

func TestRankResolutionThenSize(t *testing.T) {
	sources := []domain.Source{
		{Locator: "a", QualityLabel: "720p", SizeLabel: "4GB"},
		{Locator: "b", QualityLabel: "1080p", SizeLabel: "1400 MB"},
		{Locator: "c", QualityLabel: "1080p", SizeLabel: "2800 MB"},
		{Locator: "d", QualityLabel: "Bilinmiyor", SizeLabel: "9GB"},
	}
	assert.Equal(t, []string{"c", "b", "a", "d"}, locators(Rank(sources)))
}

func TestRankLargerSizeWinsTie(t *testing.T) {
	sources := []domain.Source{
		{Locator: "small", QualityLabel: "1080p", SizeLabel: "1400MB"},
		{Locator: "large", QualityLabel: "1080p", SizeLabel: "2800MB"},
	}
	assert.Equal(t, "large", Rank(sources)[0].Locator)
}

func TestRankFallsBackToDisplayName(t *testing.T) {
	sources := []domain.Source{
		{Locator: "a", DisplayName: "Film.720p.mkv"},
		{Locator: "b", DisplayName: "Film.1080p.2GB.mkv"},
	}
	assert.Equal(t, []string{"b", "a"}, locators(Rank(sources)))
}

func TestRankIsStable(t *testing.T) {
	sources := []domain.Source{
		{Locator: "first", QualityLabel: "1080p"},
		{Locator: "second", QualityLabel: "1080p"},
		{Locator: "third", QualityLabel: "1080p"},
	}
	assert.Equal(t, []string{"first", "second", "third"}, locators(Rank(sources)))
}

func TestRankIsIdempotent(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	qualities := []string{"2160p", "1080p", "720p", "480p", "", "4K"}
	sizes := []string{"1GB", "700MB", "", "2,5 GB", "YOK"}
	for round := 0; round < 50; round++ {
		var sources []domain.Source
		for i := 0; i < 8; i++ {
			loc := string(rune('a'+i)) + "-gw"
			if rng.IntN(2) == 0 {
				loc = "https://cdn/" + loc
			}
			sources = append(sources, domain.Source{
				Locator:      loc,
				QualityLabel: qualities[rng.IntN(len(qualities))],
				SizeLabel:    sizes[rng.IntN(len(sizes))],
			})
		}
		once := Rank(sources)
		twice := Rank(once)
		require.Equal(t, once, twice, "round %d", round)
	}
}

func TestRankDoesNotMutateInput(t *testing.T) {
	sources := []domain.Source{
		{Locator: "a", QualityLabel: "480p"},
		{Locator: "b", QualityLabel: "1080p"},
	}
	before := append([]domain.Source(nil), sources...)
	ranked := Rank(sources)
	assert.Equal(t, before, sources)

	ranked[0].Locator = "changed"
	assert.Equal(t, "a", sources[0].Locator)
	assert.Equal(t, "b", sources[1].Locator)
}

func TestRankEmpty(t *testing.T) {
	assert.Empty(t, Rank(nil))
	assert.NotNil(t, Rank(nil))
}
