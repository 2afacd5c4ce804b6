package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"mediaarchive/internal/domain"
)

// Field names are read by other catalog consumers; keep them stable.
type sourceDoc struct {
	Quality string `bson:"quality"`
	ID      string `bson:"id"`
	Name    string `bson:"name"`
	Size    string `bson:"size"`
}

type episodeDoc struct {
	EpisodeNumber int         `bson:"episode_number"`
	Title         string      `bson:"title"`
	Overview      string      `bson:"overview"`
	Released      string      `bson:"released"`
	Backdrop      string      `bson:"episode_backdrop"`
	Telegram      []sourceDoc `bson:"telegram"`
}

type seasonDoc struct {
	SeasonNumber int          `bson:"season_number"`
	Episodes     []episodeDoc `bson:"episodes"`
}

type titleDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	TMDBID      int                `bson:"tmdb_id,omitempty"`
	IMDBID      string             `bson:"imdb_id,omitempty"`
	DBIndex     int                `bson:"db_index"`
	Title       string             `bson:"title"`
	ReleaseYear int                `bson:"release_year"`
	Rating      float64            `bson:"rating"`
	Description string             `bson:"description"`
	Poster      string             `bson:"poster"`
	Backdrop    string             `bson:"backdrop"`
	Logo        string             `bson:"logo"`
	Genres      []string           `bson:"genres"`
	Cast        []string           `bson:"cast"`
	Runtime     string             `bson:"runtime"`
	MediaType   string             `bson:"media_type"`
	Telegram    []sourceDoc        `bson:"telegram,omitempty"`
	Seasons     []seasonDoc        `bson:"seasons,omitempty"`
	CreatedOn   time.Time          `bson:"created_on"`
	UpdatedOn   time.Time          `bson:"updated_on"`
}

func toSourceDoc(s domain.Source) sourceDoc {
	return sourceDoc{Quality: s.QualityLabel, ID: s.Locator, Name: s.DisplayName, Size: s.SizeLabel}
}

func fromSourceDocs(docs []sourceDoc) []domain.Source {
	out := make([]domain.Source, 0, len(docs))
	for _, d := range docs {
		out = append(out, domain.Source{Locator: d.ID, DisplayName: d.Name, QualityLabel: d.Quality, SizeLabel: d.Size})
	}
	return out
}

func toEpisodeDoc(number int, detail *domain.EpisodeDetail) episodeDoc {
	ep := episodeDoc{EpisodeNumber: number, Telegram: []sourceDoc{}}
	if detail != nil {
		ep.Title = detail.Title
		ep.Overview = detail.Overview
		ep.Released = detail.AirDate
		ep.Backdrop = detail.Backdrop
	}
	return ep
}

// descriptiveFields is the $set/$setOnInsert payload for the descriptive block.
func descriptiveFields(d domain.Descriptive) bson.M {
	genres := d.Genres
	if genres == nil {
		genres = []string{}
	}
	cast := d.Cast
	if cast == nil {
		cast = []string{}
	}
	return bson.M{
		"title":        d.Title,
		"release_year": d.Year,
		"rating":       d.Rating,
		"description":  d.Overview,
		"poster":       d.Poster,
		"backdrop":     d.Backdrop,
		"logo":         d.Logo,
		"genres":       genres,
		"cast":         cast,
		"runtime":      d.Runtime,
	}
}

func fromDoc(doc titleDoc) domain.TitleDocument {
	kind := domain.MediaKind(doc.MediaType)
	out := domain.TitleDocument{
		Key:     domain.TitleKey{ExternalID: doc.TMDBID, AlternateID: doc.IMDBID},
		Kind:    kind,
		DBIndex: doc.DBIndex,
		Descriptive: domain.Descriptive{
			Title:    doc.Title,
			Year:     doc.ReleaseYear,
			Overview: doc.Description,
			Rating:   doc.Rating,
			Poster:   doc.Poster,
			Backdrop: doc.Backdrop,
			Logo:     doc.Logo,
			Genres:   doc.Genres,
			Cast:     doc.Cast,
			Runtime:  doc.Runtime,
		},
		CreatedAt: doc.CreatedOn.UTC(),
		UpdatedAt: doc.UpdatedOn.UTC(),
	}
	if kind == domain.MediaMovie {
		out.Sources = fromSourceDocs(doc.Telegram)
		return out
	}
	out.Seasons = make([]domain.Season, 0, len(doc.Seasons))
	for _, s := range doc.Seasons {
		season := domain.Season{Number: s.SeasonNumber, Episodes: make([]domain.Episode, 0, len(s.Episodes))}
		for _, e := range s.Episodes {
			season.Episodes = append(season.Episodes, domain.Episode{
				Number:   e.EpisodeNumber,
				Title:    e.Title,
				Overview: e.Overview,
				AirDate:  e.Released,
				Backdrop: e.Backdrop,
				Sources:  fromSourceDocs(e.Telegram),
			})
		}
		out.Seasons = append(out.Seasons, season)
	}
	return out
}

func fromDocs(docs []titleDoc) []domain.TitleDocument {
	out := make([]domain.TitleDocument, 0, len(docs))
	for _, doc := range docs {
		out = append(out, fromDoc(doc))
	}
	return out
}
