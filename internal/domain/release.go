package domain

import "strconv"

// UnknownResolutionRank sorts below every known resolution.
const UnknownResolutionRank = 1

// ReleaseInfo is the structured form of a release filename. Zero numeric
// fields mean the attribute was not found.
type ReleaseInfo struct {
	RawFilename     string
	Title           string
	Year            int
	Season          int
	Episode         int
	ResolutionLabel string
	ResolutionRank  int
	Codec           string
	Audio           string
	Group           string
	Network         string
	Container       string
	SizeMB          float64
	MultiPart       bool
}

func (r ReleaseInfo) IsEpisode() bool {
	return r.Season > 0 && r.Episode > 0
}

func (r ReleaseInfo) Kind() MediaKind {
	if r.Season > 0 {
		return MediaSeries
	}
	return MediaMovie
}

func (r ReleaseInfo) Validate() error {
	if r.Episode > 0 && r.Season <= 0 {
		return ErrEpisodeWithoutSeason
	}
	if r.Season > 0 && r.Episode <= 0 {
		return ErrSeasonPack
	}
	return nil
}

// Values flattens the tag attributes of the release. The title is left out
// so words like "Max" in "Mad Max" are never read as tags.
func (r ReleaseInfo) Values() []string {
	values := make([]string, 0, 8)
	for _, v := range []string{r.ResolutionLabel, r.Codec, r.Audio, r.Group, r.Network, r.Container} {
		if v != "" {
			values = append(values, v)
		}
	}
	if r.Year > 0 {
		values = append(values, strconv.Itoa(r.Year))
	}
	return values
}
