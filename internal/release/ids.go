package release

import (
	"regexp"
	"strconv"
)

var (
	imdbIDPattern = regexp.MustCompile(`(tt\d{5,})`)
	tmdbIDPattern = regexp.MustCompile(`/(movie|tv)/(\d+)`)
)

// ExtractIDs finds an IMDb id or a TMDB url path embedded in text.
func ExtractIDs(text string) (tmdbID int, imdbID string) {
	if m := imdbIDPattern.FindStringSubmatch(text); m != nil {
		return 0, m[1]
	}
	if m := tmdbIDPattern.FindStringSubmatch(text); m != nil {
		id, err := strconv.Atoi(m[2])
		if err == nil {
			return id, ""
		}
	}
	return 0, ""
}
