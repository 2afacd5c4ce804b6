// Package release turns free-text release filenames into domain.ReleaseInfo.
package release

import (
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/MunifTanjim/go-ptt"

	"mediaarchive/internal/domain"
)

type resolutionTier struct {
	token string
	rank  int
}

// Order matters: longer tokens that contain shorter ones come first.
var resolutionVocabulary = []resolutionTier{
	{"2160p", 2160},
	{"4k", 2160},
	{"1440p", 1440},
	{"1080p", 1080},
	{"720p", 720},
	{"540p", 540},
	{"480p", 480},
	{"360p", 360},
}

var (
	multiPartPattern      = regexp.MustCompile(`(?i)(?:^|[\s._\-\[(])(?:part|cd|disc)[\s._-]?\d+`)
	seasonEpisodePattern  = regexp.MustCompile(`(?i)s\s*(\d{1,2})\s*e\s*(\d{1,3})`)
	seasonXEpisodePattern = regexp.MustCompile(`(?i)\b(\d{1,2})x(\d{1,3})\b`)
	seasonPattern         = regexp.MustCompile(`(?i)(?:(\d{1,2})\.?\s*sezon|sezon\s*(\d{1,2})|season\s*(\d{1,2}))`)
	episodePattern        = regexp.MustCompile(`(?i)(?:(\d{1,3})\.?\s*b[öo]l[üu]m|b[öo]l[üu]m\s*(\d{1,3})|episode\s*(\d{1,3}))`)
	yearPattern           = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)
)

// Parser is stateless and safe for concurrent use.
type Parser struct{}

func NewParser() Parser { return Parser{} }

func (Parser) Parse(filename string) domain.ReleaseInfo { return Parse(filename) }

// Parse never fails. When tokenization panics the result carries only the
// raw filename and a title derived from it.
func Parse(filename string) (info domain.ReleaseInfo) {
	defer func() {
		if recover() != nil {
			info = fallbackInfo(filename)
		}
	}()
	return parse(filename)
}

func parse(filename string) domain.ReleaseInfo {
	raw := strings.TrimSpace(filename)
	if raw == "" {
		return domain.ReleaseInfo{RawFilename: filename, ResolutionRank: domain.UnknownResolutionRank}
	}

	res := ptt.Parse(raw)

	info := domain.ReleaseInfo{
		RawFilename: filename,
		Title:       strings.TrimSpace(res.Title),
		Codec:       res.Codec,
		Group:       res.Group,
		Network:     res.Network,
		Container:   res.Container,
		SizeMB:      ParseSize(res.Size),
	}
	if len(res.Audio) > 0 {
		info.Audio = res.Audio[0]
	}
	if year, err := strconv.Atoi(res.Year); err == nil {
		info.Year = year
	} else if m := yearPattern.FindStringSubmatch(raw); m != nil {
		info.Year, _ = strconv.Atoi(m[1])
	}

	info.ResolutionLabel, info.ResolutionRank = detectResolution(raw, res.Resolution)

	if IsMultiPart(raw) {
		info.MultiPart = true
	} else {
		info.Season, info.Episode = seasonEpisode(raw, res.Seasons, res.Episodes)
	}

	if info.SizeMB == 0 {
		info.SizeMB = ParseSize(raw)
	}
	if info.Title == "" {
		info.Title = FallbackTitle(raw)
	}
	return info
}

// IsMultiPart reports part/cd/disc numbered files.
func IsMultiPart(filename string) bool {
	return multiPartPattern.MatchString(filename)
}

// ResolutionRank maps a label or filename to a resolution height, or
// domain.UnknownResolutionRank when no vocabulary token is present.
func ResolutionRank(s string) int {
	_, rank := detectResolution(s, "")
	return rank
}

func detectResolution(filename, token string) (string, int) {
	for _, candidate := range []string{token, filename} {
		lower := strings.ToLower(candidate)
		if lower == "" {
			continue
		}
		for _, tier := range resolutionVocabulary {
			if strings.Contains(lower, tier.token) {
				label := tier.token
				if token != "" && strings.Contains(strings.ToLower(token), tier.token) {
					label = strings.ToLower(token)
				}
				return label, tier.rank
			}
		}
	}
	return "", domain.UnknownResolutionRank
}

// seasonEpisode trusts go-ptt only when it finds both numbers. "3. Sezon
// 12. Bölüm" comes back from ptt as season 12, so explicit markers are read
// as a pair before any partial ptt value is used.
func seasonEpisode(raw string, seasons, episodes []int) (int, int) {
	pttSeason, pttEpisode := 0, 0
	if len(seasons) > 0 {
		pttSeason = seasons[0]
	}
	if len(episodes) > 0 {
		pttEpisode = episodes[0]
	}

	wordSeason := firstGroup(seasonPattern.FindStringSubmatch(raw))
	wordEpisode := firstGroup(episodePattern.FindStringSubmatch(raw))
	if wordSeason > 0 && wordEpisode > 0 {
		return wordSeason, wordEpisode
	}
	if pttSeason > 0 && pttEpisode > 0 {
		return pttSeason, pttEpisode
	}
	if m := seasonEpisodePattern.FindStringSubmatch(raw); m != nil {
		return atoi(m[1]), atoi(m[2])
	}
	if m := seasonXEpisodePattern.FindStringSubmatch(raw); m != nil {
		return atoi(m[1]), atoi(m[2])
	}

	season, episode := wordSeason, wordEpisode
	if season == 0 {
		season = pttSeason
	}
	if episode == 0 {
		episode = pttEpisode
	}
	return season, episode
}

func firstGroup(match []string) int {
	for _, g := range match[min(1, len(match)):] {
		if g != "" {
			return atoi(g)
		}
	}
	return 0
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func fallbackInfo(filename string) domain.ReleaseInfo {
	return domain.ReleaseInfo{
		RawFilename:    filename,
		Title:          FallbackTitle(filename),
		ResolutionRank: domain.UnknownResolutionRank,
	}
}

var separatorReplacer = strings.NewReplacer(".", " ", "_", " ", "-", " ", "[", " ", "]", " ", "(", " ", ")", " ", "+", " ")

// FallbackTitle strips the extension and separator characters.
func FallbackTitle(filename string) string {
	name := strings.TrimSpace(filename)
	if ext := path.Ext(name); ext != "" && len(ext) <= 5 {
		name = strings.TrimSuffix(name, ext)
	}
	return strings.Join(strings.Fields(separatorReplacer.Replace(name)), " ")
}
