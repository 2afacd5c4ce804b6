package domain

import "strings"

// MediaKind values match the persisted media_type field.
type MediaKind string

const (
	MediaMovie  MediaKind = "movie"
	MediaSeries MediaKind = "tv"
)

func (k MediaKind) Valid() bool {
	return k == MediaMovie || k == MediaSeries
}

// ParseMediaKind accepts the persisted names and the Stremio "series" alias.
func ParseMediaKind(raw string) (MediaKind, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "movie", "movies", "film":
		return MediaMovie, true
	case "tv", "series", "show":
		return MediaSeries, true
	default:
		return "", false
	}
}

// StremioType is the type name used by Stremio clients.
func (k MediaKind) StremioType() string {
	if k == MediaSeries {
		return "series"
	}
	return "movie"
}

// Platform is a streaming service label. The empty value means none.
type Platform string

const (
	PlatformNone    Platform = ""
	PlatformNetflix Platform = "Netflix"
	PlatformDisney  Platform = "Disney"
	PlatformAmazon  Platform = "Amazon"
	PlatformMax     Platform = "Max"
	PlatformExxen   Platform = "Exxen"
	PlatformGain    Platform = "Gain"
	PlatformTabii   Platform = "Tabii"
	PlatformTod     Platform = "Tod"
	PlatformTVPlus  Platform = "Tv+"
)

func (p Platform) String() string { return string(p) }
