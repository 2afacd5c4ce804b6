package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mediaarchive/internal/domain"
	"mediaarchive/internal/release"
)

func TestClassifyFilenameKeywords(t *testing.T) {
	c := NewClassifier()
	tests := []struct {
		filename string
		want     domain.Platform
	}{
		{"Stranger.Things.S01E01.1080p.NF.WEB-DL.mkv", domain.PlatformNetflix},
		{"The.Mandalorian.S02E01.DSNP.WEB-DL.mkv", domain.PlatformDisney},
		{"The.Boys.S01E01.AMZN.WEBRip.mkv", domain.PlatformAmazon},
		{"Succession.S04E01.HBOMAX.WEB.mkv", domain.PlatformMax},
		{"Severance.S01E01.ATVP.WEB-DL.mkv", domain.PlatformTVPlus},
		{"Dizi_S01E01_BluTV_720p.mp4", domain.PlatformMax},
		{"Some.Info.Video.mkv", domain.PlatformNone},
		{"", domain.PlatformNone},
	}
	for _, tc := range tests {
		t.Run(tc.filename, func(t *testing.T) {
			assert.Equal(t, tc.want, c.Classify(tc.filename, nil, nil))
		})
	}
}

func TestClassifyUsesParsedValues(t *testing.T) {
	c := NewClassifier()
	assert.Equal(t, domain.PlatformNetflix, c.Classify("show.mkv", []string{"Netflix"}, nil))
}

func TestClassifyGenreAliases(t *testing.T) {
	c := NewClassifier()
	assert.Equal(t, domain.PlatformExxen, c.Classify("dizi.mkv", nil, []string{"Dram", "exxen"}))
	assert.Equal(t, domain.PlatformNone, c.Classify("dizi.mkv", nil, []string{"Dram"}))
}

func TestClassifyFirstMatchWins(t *testing.T) {
	c := NewClassifier()
	// Filename evidence is consulted before genres.
	assert.Equal(t, domain.PlatformAmazon, c.Classify("x.AMZN.mkv", nil, []string{"Netflix"}))
	// Within one table, table order decides.
	assert.Equal(t, domain.PlatformNetflix, c.Classify("x.NF.AMZN.mkv", nil, nil))
	assert.Equal(t, domain.PlatformNetflix, c.Classify("x.AMZN.NF.mkv", nil, nil))
}

func TestCustomMatchers(t *testing.T) {
	c := NewClassifier(FilenameMatcher{Keywords: []Keyword{{Token: "pv", Platform: domain.PlatformAmazon}}})
	assert.Equal(t, domain.PlatformAmazon, c.Classify("film.PV.mkv", nil, nil))
	assert.Equal(t, domain.PlatformNone, c.Classify("film.NF.mkv", nil, nil))
}

func TestPlatformsAreUnique(t *testing.T) {
	seen := map[domain.Platform]bool{}
	for _, p := range Platforms() {
		assert.False(t, seen[p], "duplicate %s", p)
		seen[p] = true
	}
	assert.True(t, seen[domain.PlatformNetflix])
	assert.True(t, seen[domain.PlatformTVPlus])
}

func TestClassifyReleaseIgnoresTitleWords(t *testing.T) {
	c := NewClassifier()
	tests := []struct {
		filename string
		want     domain.Platform
	}{
		{"Mad.Max.Fury.Road.2015.1080p.BluRay.x264.mkv", domain.PlatformNone},
		{"Pain.and.Gain.2013.720p.BluRay.mkv", domain.PlatformNone},
		{"Max.Payne.2008.1080p.WEB-DL.mkv", domain.PlatformNone},
		{"Tod.und.Teufel.2019.1080p.mkv", domain.PlatformNone},
		{"Mad.Max.Fury.Road.2015.1080p.HMAX.WEB-DL.MAX.mkv", domain.PlatformMax},
		{"Dark.S01E02.720p.NF.WEB-DL.mkv", domain.PlatformNetflix},
	}
	for _, tc := range tests {
		t.Run(tc.filename, func(t *testing.T) {
			assert.Equal(t, tc.want, c.ClassifyRelease(release.Parse(tc.filename), nil))
		})
	}
}

func TestClassifyReleaseFallsBackToGenres(t *testing.T) {
	c := NewClassifier()
	info := release.Parse("Mad.Max.Fury.Road.2015.1080p.mkv")
	assert.Equal(t, domain.PlatformNetflix, c.ClassifyRelease(info, []string{"Aksiyon", "Netflix"}))
}

func TestTagArea(t *testing.T) {
	assert.Equal(t, "2015 1080p mkv", TagArea("Mad.Max.Fury.Road.2015.1080p.mkv", "Mad Max Fury Road"))
	assert.Equal(t, "x nf mkv", TagArea("x.NF.mkv", ""))
	assert.Equal(t, "whole name nf", TagArea("Whole.Name.NF", "Other Title"))
}
