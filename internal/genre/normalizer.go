// Package genre maps provider genre names to the catalog's display genres.
package genre

import (
	"strings"

	"golang.org/x/text/cases"

	"mediaarchive/internal/domain"
)

var aliases = map[string]string{
	"action":             "Aksiyon",
	"adventure":          "Macera",
	"action & adventure": "Aksiyon ve Macera",
	"animation":          "Animasyon",
	"biography":          "Biyografi",
	"comedy":             "Komedi",
	"crime":              "Suç",
	"documentary":        "Belgesel",
	"drama":              "Dram",
	"family":             "Aile",
	"fantasy":            "Fantastik",
	"film-noir":          "Kara Film",
	"game-show":          "Oyun Gösterisi",
	"history":            "Tarih",
	"horror":             "Korku",
	"kids":               "Çocuklar",
	"music":              "Müzik",
	"musical":            "Müzikal",
	"mystery":            "Gizem",
	"news":               "Haberler",
	"reality":            "Gerçeklik",
	"reality-tv":         "Gerçeklik",
	"romance":            "Romantik",
	"science fiction":    "Bilim Kurgu",
	"sci-fi":             "Bilim Kurgu",
	"sci-fi & fantasy":   "Bilim Kurgu ve Fantazi",
	"short":              "Kısa",
	"soap":               "Pembe Dizi",
	"sport":              "Spor",
	"talk":               "Talk-Show",
	"talk-show":          "Talk-Show",
	"thriller":           "Gerilim",
	"tv movie":           "TV Filmi",
	"war":                "Savaş",
	"war & politics":     "Savaş ve Politika",
	"western":            "Vahşi Batı",

	// TMDB names served for tr-TR.
	"bilim-kurgu":           "Bilim Kurgu",
	"tv film":               "TV Filmi",
	"aksiyon & macera":      "Aksiyon ve Macera",
	"bilim kurgu & fantazi": "Bilim Kurgu ve Fantazi",
	"savaş & politik":       "Savaş ve Politika",
	"haber":                 "Haberler",
}

// TMDB genre ids are the same in every language.
var tmdbGenreIDs = map[int]string{
	28:    "Aksiyon",
	12:    "Macera",
	16:    "Animasyon",
	35:    "Komedi",
	80:    "Suç",
	99:    "Belgesel",
	18:    "Dram",
	10751: "Aile",
	14:    "Fantastik",
	36:    "Tarih",
	27:    "Korku",
	10402: "Müzik",
	9648:  "Gizem",
	10749: "Romantik",
	878:   "Bilim Kurgu",
	10770: "TV Filmi",
	53:    "Gerilim",
	10752: "Savaş",
	37:    "Vahşi Batı",
	10759: "Aksiyon ve Macera",
	10762: "Çocuklar",
	10763: "Haberler",
	10764: "Gerçeklik",
	10765: "Bilim Kurgu ve Fantazi",
	10766: "Pembe Dizi",
	10767: "Talk-Show",
	10768: "Savaş ve Politika",
}

// ByTMDBID returns the display genre for a TMDB genre id.
func ByTMDBID(id int) (string, bool) {
	display, ok := tmdbGenreIDs[id]
	return display, ok
}

// Display genres offered by the catalog, in manifest order.
var catalog = []string{
	"Aile", "Aksiyon", "Aksiyon ve Macera", "Animasyon", "Belgesel",
	"Bilim Kurgu", "Bilim Kurgu ve Fantazi", "Biyografi", "Çocuklar",
	"Dram", "Fantastik", "Gerilim", "Gerçeklik", "Gizem", "Haberler",
	"Kara Film", "Komedi", "Korku", "Kısa", "Macera", "Müzik",
	"Müzikal", "Oyun Gösterisi", "Pembe Dizi", "Romantik", "Savaş",
	"Savaş ve Politika", "Spor", "Suç", "TV Filmi", "Talk-Show",
	"Tarih", "Vahşi Batı",
}

// A Caser holds state, so each call gets its own.
func key(s string) string {
	return cases.Fold().String(strings.Join(strings.Fields(s), " "))
}

var foldedAliases = func() map[string]string {
	out := make(map[string]string, len(aliases))
	for k, v := range aliases {
		out[key(k)] = v
	}
	return out
}()

// Normalize maps each genre through the alias table, keeping input order
// and dropping entries whose display value already appeared.
func Normalize(genres []string) []string {
	out := make([]string, 0, len(genres))
	seen := make(map[string]struct{}, len(genres))
	for _, g := range genres {
		g = strings.TrimSpace(g)
		if g == "" {
			continue
		}
		display := g
		if mapped, ok := foldedAliases[key(g)]; ok {
			display = mapped
		}
		k := key(display)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, display)
	}
	return out
}

// WithPlatform appends the platform label as a pseudo-genre.
func WithPlatform(genres []string, p domain.Platform) []string {
	if p == domain.PlatformNone {
		return genres
	}
	for _, g := range genres {
		if key(g) == key(string(p)) {
			return genres
		}
	}
	return append(genres, string(p))
}

// Catalog returns the display genres followed by the platform labels.
func Catalog(platforms []domain.Platform) []string {
	out := append([]string(nil), catalog...)
	for _, p := range platforms {
		out = append(out, string(p))
	}
	return out
}
