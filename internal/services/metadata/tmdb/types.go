package tmdb

import (
	"fmt"
	"strconv"
)

type SearchResult struct {
	ID           int     `json:"id"`
	Title        string  `json:"title,omitempty"`
	Name         string  `json:"name,omitempty"`
	OriginalName string  `json:"original_name,omitempty"`
	Original     string  `json:"original_title,omitempty"`
	Overview     string  `json:"overview,omitempty"`
	PosterPath   string  `json:"poster_path,omitempty"`
	VoteAverage  float64 `json:"vote_average,omitempty"`
	Popularity   float64 `json:"popularity,omitempty"`
	ReleaseDate  string  `json:"release_date,omitempty"`
	FirstAirDate string  `json:"first_air_date,omitempty"`
}

func (r SearchResult) DisplayTitle() string {
	if r.Title != "" {
		return r.Title
	}
	return r.Name
}

// OriginalTitle is the title in the production language.
func (r SearchResult) OriginalTitle() string {
	if r.Original != "" {
		return r.Original
	}
	return r.OriginalName
}

func (r SearchResult) Year() int {
	if r.ReleaseDate != "" {
		return yearOf(r.ReleaseDate)
	}
	return yearOf(r.FirstAirDate)
}

type searchResponse struct {
	Results []SearchResult `json:"results"`
}

type FindResult struct {
	MovieResults []SearchResult `json:"movie_results"`
	TVResults    []SearchResult `json:"tv_results"`
}

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type CastMember struct {
	Name string `json:"name"`
}

type Logo struct {
	FilePath string `json:"file_path"`
	Language string `json:"iso_639_1"`
}

type Details struct {
	ID           int     `json:"id"`
	Title        string  `json:"title,omitempty"`
	Name         string  `json:"name,omitempty"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	VoteAverage  float64 `json:"vote_average"`
	ReleaseDate  string  `json:"release_date,omitempty"`
	FirstAirDate string  `json:"first_air_date,omitempty"`
	Runtime      int     `json:"runtime,omitempty"`
	Genres       []Genre `json:"genres"`
	ExternalIDs  struct {
		IMDbID string `json:"imdb_id"`
	} `json:"external_ids"`
	Credits struct {
		Cast []CastMember `json:"cast"`
	} `json:"credits"`
	Images struct {
		Logos []Logo `json:"logos"`
	} `json:"images"`
}

func (d Details) DisplayTitle() string {
	if d.Title != "" {
		return d.Title
	}
	return d.Name
}

func (d Details) Year() int {
	if d.ReleaseDate != "" {
		return yearOf(d.ReleaseDate)
	}
	return yearOf(d.FirstAirDate)
}

func (d Details) CastNames() []string {
	out := make([]string, 0, len(d.Credits.Cast))
	for _, c := range d.Credits.Cast {
		out = append(out, c.Name)
	}
	return out
}

// LogoURL returns the first English logo.
func (d Details) LogoURL() string {
	for _, l := range d.Images.Logos {
		if l.Language == "en" && l.FilePath != "" {
			return ImageURL(l.FilePath, "w300")
		}
	}
	return ""
}

// RuntimeLabel renders minutes as "{n} dk".
func (d Details) RuntimeLabel() string {
	if d.Runtime <= 0 {
		return ""
	}
	return fmt.Sprintf("%d dk", d.Runtime)
}

type EpisodeDetails struct {
	Name      string `json:"name"`
	Overview  string `json:"overview"`
	AirDate   string `json:"air_date"`
	StillPath string `json:"still_path"`
}

// ImageURL builds an image CDN url; empty paths stay empty.
func ImageURL(path, size string) string {
	if path == "" {
		return ""
	}
	return imageBaseURL + size + path
}

func yearOf(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}
