package release

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/hbollon/go-edlib"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var numberPattern = regexp.MustCompile(`\b(\d+)\b`)

// Turkish letters that do not decompose under NFD.
var turkishFolder = strings.NewReplacer("ı", "i", "İ", "i", "ş", "s", "ğ", "g", "ç", "c", "ö", "o", "ü", "u")

// CleanTitle folds case, accents and punctuation so titles compare equal
// across providers and filenames.
func CleanTitle(title string) string {
	s := strings.ToLower(turkishFolder.Replace(title))
	s = removeAccents(s)
	s = strings.ReplaceAll(s, "&", " and ")
	s = strings.ReplaceAll(s, "'", "")

	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func removeAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Similarity scores two titles in [0,1] with Jaro-Winkler over cleaned
// forms. Mismatched sequence numbers ("Alien 3" vs "Alien") are penalized.
func Similarity(a, b string) float64 {
	ca, cb := CleanTitle(a), CleanTitle(b)
	if ca == "" || cb == "" {
		return 0
	}
	score := float64(edlib.JaroWinklerSimilarity(ca, cb))

	na := numberPattern.FindAllString(ca, -1)
	nb := numberPattern.FindAllString(cb, -1)
	if len(na) > 0 && !sameNumbers(na, nb) {
		score *= 0.85
	}
	return score
}

func sameNumbers(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]struct{}, len(a))
	for _, n := range a {
		set[n] = struct{}{}
	}
	for _, n := range b {
		if _, ok := set[n]; !ok {
			return false
		}
	}
	return true
}
