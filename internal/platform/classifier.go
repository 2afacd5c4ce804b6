// Package platform tags releases with the streaming service they came from.
package platform

import (
	"strings"

	"mediaarchive/internal/domain"
)

// Matcher finds a platform in one kind of evidence.
type Matcher interface {
	Match(filename string, values []string, genres []string) domain.Platform
}

// Keyword maps one lower-case tag to a platform.
type Keyword struct {
	Token    string
	Platform domain.Platform
}

// Tags are matched as whole tokens of the normalized filename, so "nf"
// does not fire on "info".
var filenameKeywords = []Keyword{
	{"netflix", domain.PlatformNetflix},
	{"nf", domain.PlatformNetflix},
	{"disney", domain.PlatformDisney},
	{"dsnp", domain.PlatformDisney},
	{"amazon", domain.PlatformAmazon},
	{"amzn", domain.PlatformAmazon},
	{"hbomax", domain.PlatformMax},
	{"hbo", domain.PlatformMax},
	{"blutv", domain.PlatformMax},
	{"max", domain.PlatformMax},
	{"exxen", domain.PlatformExxen},
	{"gain", domain.PlatformGain},
	{"tabii", domain.PlatformTabii},
	{"tod", domain.PlatformTod},
	{"atvp", domain.PlatformTVPlus},
	{"tv+", domain.PlatformTVPlus},
}

var genreAliases = []Keyword{
	{"netflix", domain.PlatformNetflix},
	{"disney", domain.PlatformDisney},
	{"disney+", domain.PlatformDisney},
	{"amazon", domain.PlatformAmazon},
	{"prime video", domain.PlatformAmazon},
	{"max", domain.PlatformMax},
	{"hbo", domain.PlatformMax},
	{"blutv", domain.PlatformMax},
	{"exxen", domain.PlatformExxen},
	{"gain", domain.PlatformGain},
	{"tabii", domain.PlatformTabii},
	{"tod", domain.PlatformTod},
	{"tv+", domain.PlatformTVPlus},
	{"apple tv+", domain.PlatformTVPlus},
}

// FilenameMatcher scans the filename and parsed release values.
type FilenameMatcher struct {
	Keywords []Keyword
}

func (m FilenameMatcher) Match(filename string, values []string, _ []string) domain.Platform {
	haystack := " " + tokenize(filename+" "+strings.Join(values, " ")) + " "
	for _, kw := range m.keywords() {
		if strings.Contains(haystack, " "+kw.Token+" ") {
			return kw.Platform
		}
	}
	return domain.PlatformNone
}

func (m FilenameMatcher) keywords() []Keyword {
	if m.Keywords != nil {
		return m.Keywords
	}
	return filenameKeywords
}

// GenreMatcher maps genre tags named after a platform.
type GenreMatcher struct {
	Aliases []Keyword
}

func (m GenreMatcher) Match(_ string, _ []string, genres []string) domain.Platform {
	aliases := m.Aliases
	if aliases == nil {
		aliases = genreAliases
	}
	for _, alias := range aliases {
		for _, g := range genres {
			if strings.EqualFold(strings.TrimSpace(g), alias.Token) {
				return alias.Platform
			}
		}
	}
	return domain.PlatformNone
}

// Classifier returns the first platform any matcher reports.
type Classifier struct {
	matchers []Matcher
}

func NewClassifier(matchers ...Matcher) Classifier {
	if len(matchers) == 0 {
		matchers = []Matcher{FilenameMatcher{}, GenreMatcher{}}
	}
	return Classifier{matchers: matchers}
}

func (c Classifier) Classify(filename string, values []string, genres []string) domain.Platform {
	for _, m := range c.matchers {
		if p := m.Match(filename, values, genres); p != domain.PlatformNone {
			return p
		}
	}
	return domain.PlatformNone
}

// ClassifyRelease classifies a parsed release. Filename keywords are only
// looked up in the tag area after the title.
func (c Classifier) ClassifyRelease(info domain.ReleaseInfo, genres []string) domain.Platform {
	return c.Classify(TagArea(info.RawFilename, info.Title), info.Values(), genres)
}

// TagArea returns the normalized filename with the leading title removed.
// When the title cannot be located the whole filename is returned.
func TagArea(filename, title string) string {
	name := tokenize(filename)
	t := tokenize(title)
	if t == "" {
		return name
	}
	padded := " " + name + " "
	if i := strings.Index(padded, " "+t+" "); i >= 0 {
		return strings.TrimSpace(padded[i+len(t)+1:])
	}
	return name
}

// Platforms lists every label a matcher can produce, in table order.
func Platforms() []domain.Platform {
	seen := make(map[domain.Platform]struct{})
	var out []domain.Platform
	for _, kw := range append(append([]Keyword(nil), genreAliases...), filenameKeywords...) {
		if _, ok := seen[kw.Platform]; ok {
			continue
		}
		seen[kw.Platform] = struct{}{}
		out = append(out, kw.Platform)
	}
	return out
}

// tokenize lower-cases s and turns separators into single spaces. "+" is
// kept because "tv+" is a tag.
func tokenize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch r {
		case '.', '_', '-', '[', ']', '(', ')', '{', '}', ',', '/', '\\':
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
