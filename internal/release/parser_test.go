package release

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediaarchive/internal/domain"
)

func TestParseMovie(t *testing.T) {
	info := Parse("The.Matrix.1999.1080p.BluRay.x264-GROUP.mkv")

	assert.Equal(t, "The Matrix", info.Title)
	assert.Equal(t, 1999, info.Year)
	assert.Equal(t, "1080p", info.ResolutionLabel)
	assert.Equal(t, 1080, info.ResolutionRank)
	assert.Zero(t, info.Season)
	assert.Zero(t, info.Episode)
	assert.Equal(t, domain.MediaMovie, info.Kind())
	assert.Equal(t, "The.Matrix.1999.1080p.BluRay.x264-GROUP.mkv", info.RawFilename)
}

func TestParseEpisode(t *testing.T) {
	info := Parse("Breaking.Bad.S02E05.720p.WEB-DL.mkv")

	assert.Equal(t, 2, info.Season)
	assert.Equal(t, 5, info.Episode)
	assert.Equal(t, 720, info.ResolutionRank)
	assert.True(t, info.IsEpisode())
	require.NoError(t, info.Validate())
}

func TestParseTurkishSeasonEpisodeWords(t *testing.T) {
	tests := []struct {
		name    string
		season  int
		episode int
	}{
		{"Kurulus Osman 3. Sezon 12. Bolum 1080p.mp4", 3, 12},
		{"Yargi 2. Sezon 7. Bölüm 720p.mp4", 2, 7},
		{"Teskilat Sezon 4 Bolum 21.mkv", 4, 21},
		{"Dark Season 1 Episode 3 1080p.mkv", 1, 3},
		{"Kurulus.Osman.S03E12.1080p.mkv", 3, 12},
		{"Show.2x09.720p.mkv", 2, 9},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			info := Parse(tc.name)
			assert.Equal(t, tc.season, info.Season, "season")
			assert.Equal(t, tc.episode, info.Episode, "episode")
			require.NoError(t, info.Validate())
		})
	}
}

func TestParseTurkishSeasonWithoutEpisodeIsPack(t *testing.T) {
	info := Parse("Yargi 2. Sezon 1080p.mp4")

	assert.Equal(t, 2, info.Season)
	assert.Zero(t, info.Episode)
	assert.ErrorIs(t, info.Validate(), domain.ErrSeasonPack)
}

func TestParseRejectsMultiPartEpisodes(t *testing.T) {
	names := []string{
		"Show.S01E02.Part2.720p.mkv",
		"Show.S01E02.CD1.avi",
		"Show S03E04 disc3 1080p.mkv",
		"Show.S01E01.PART-1.mkv",
		"Show.1x05.cd_2.avi",
		"Film.2010.DISC 2.1080p.mkv",
	}
	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			info := Parse(name)
			assert.True(t, info.MultiPart)
			assert.Zero(t, info.Season, "season")
			assert.Zero(t, info.Episode, "episode")
		})
	}
}

func TestMultiPartNeedsTokenBoundary(t *testing.T) {
	names := []string{
		"Counterpart.2.Sezon.3.Bolum.1080p.mkv",
		"Show.S01E02.ABCD1.mkv",
		"Counterpart.S02E03.720p.mkv",
	}
	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			info := Parse(name)
			assert.False(t, info.MultiPart)
			assert.True(t, info.IsEpisode())
		})
	}
	assert.True(t, IsMultiPart("Film [CD2].avi"))
	assert.True(t, IsMultiPart("part1.mkv"))
}

func TestResolutionVocabulary(t *testing.T) {
	tests := []struct {
		in   string
		rank int
	}{
		{"Film.2160p.mkv", 2160},
		{"Film 4K HDR.mkv", 2160},
		{"Film.1440P.mkv", 1440},
		{"film.1080p.mkv", 1080},
		{"film.720p.mkv", 720},
		{"film.540p.mkv", 540},
		{"film.480p.mkv", 480},
		{"film.360p.mkv", 360},
		{"film.dvdrip.avi", domain.UnknownResolutionRank},
		{"", domain.UnknownResolutionRank},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.rank, ResolutionRank(tc.in))
		})
	}
}

func TestParseUnknownResolution(t *testing.T) {
	info := Parse("Some.Home.Video.avi")

	assert.Empty(t, info.ResolutionLabel)
	assert.Equal(t, domain.UnknownResolutionRank, info.ResolutionRank)
	assert.NotEmpty(t, info.Title)
}

func TestParseEmptyFilename(t *testing.T) {
	info := Parse("   ")

	assert.Equal(t, domain.UnknownResolutionRank, info.ResolutionRank)
	assert.Empty(t, info.Title)
}

func TestFallbackTitle(t *testing.T) {
	assert.Equal(t, "Some Movie 2020", FallbackTitle("Some_Movie-[2020].mkv"))
	assert.Equal(t, "no extension here", FallbackTitle("no_extension_here"))
	assert.Equal(t, "fallback", fallbackInfo("fallback.mp4").Title)
	assert.Equal(t, domain.UnknownResolutionRank, fallbackInfo("x").ResolutionRank)
}

func TestParseSize(t *testing.T) {
	assert.Equal(t, 1536.0, ParseSize("1.5GB"))
	assert.Equal(t, 700.0, ParseSize("700 mb"))
	assert.InDelta(t, 1433.6, ParseSize("1,4 Gb"), 0.001)
	assert.Equal(t, 0.0, ParseSize(""))
	assert.Equal(t, 0.0, ParseSize("garbage"))
	assert.Equal(t, 0.0, ParseSize("YOK"))
	assert.InDelta(t, 1433.6, ParseSize("1.4 GiB"), 0.001)
	assert.Equal(t, 700.0, ParseSize("700 MiB"))
}

func TestFormatSizeRoundTripsThroughParseSize(t *testing.T) {
	for _, bytes := range []int64{700 << 20, 1_500_000_000, 4 << 30, 20_000_000_000} {
		label := FormatSize(bytes)
		want := float64(bytes) / (1 << 20)
		assert.InEpsilon(t, want, ParseSize(label), 0.05, "label %q", label)
	}
	assert.Equal(t, "", FormatSize(0))
	assert.Equal(t, "1.4 GiB", FormatSize(1_500_000_000))
}

func TestParseReadsSizeFromFilename(t *testing.T) {
	info := Parse("Film.2019.720p.WEB.1.2GB.mkv")
	assert.InDelta(t, 1228.8, info.SizeMB, 0.001)
}

func TestExtractIDs(t *testing.T) {
	tmdb, imdb := ExtractIDs("Movie tt0133093 1080p.mkv")
	assert.Zero(t, tmdb)
	assert.Equal(t, "tt0133093", imdb)

	tmdb, imdb = ExtractIDs("https://www.themoviedb.org/tv/1399-game-of-thrones")
	assert.Equal(t, 1399, tmdb)
	assert.Empty(t, imdb)

	tmdb, imdb = ExtractIDs("plain name")
	assert.Zero(t, tmdb)
	assert.Empty(t, imdb)
}

func TestCleanTitle(t *testing.T) {
	assert.Equal(t, "leon the professional", CleanTitle("Léon: The Professional"))
	assert.Equal(t, "kurulus osman", CleanTitle("Kuruluş Osman"))
	assert.Equal(t, "fast and furious", CleanTitle("Fast & Furious"))
}

func TestSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, Similarity("The Matrix", "the.matrix"), 0.0001)
	assert.Greater(t, Similarity("Alien 3", "Alien 3"), Similarity("Alien 3", "Alien"))
	assert.Equal(t, 0.0, Similarity("", "x"))
}

func TestValuesIncludesParsedTokens(t *testing.T) {
	info := Parse("Stranger.Things.S01E01.1080p.NF.WEB-DL.x264.mkv")
	assert.Contains(t, info.Values(), info.ResolutionLabel)
	assert.NotContains(t, info.Values(), info.Title)
}
