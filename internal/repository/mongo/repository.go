package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"mediaarchive/internal/domain"
)

const (
	DefaultMovieCollection  = "movie"
	DefaultSeriesCollection = "tv"
)

// TitleRepository stores movies and series in two collections of one database.
type TitleRepository struct {
	movies *mongo.Collection
	series *mongo.Collection
	now    func() time.Time
}

func NewTitleRepository(client *mongo.Client, dbName, movieCollection, seriesCollection string) *TitleRepository {
	if movieCollection == "" {
		movieCollection = DefaultMovieCollection
	}
	if seriesCollection == "" {
		seriesCollection = DefaultSeriesCollection
	}
	db := client.Database(dbName)
	return &TitleRepository{
		movies: db.Collection(movieCollection),
		series: db.Collection(seriesCollection),
		now:    time.Now,
	}
}

func Connect(ctx context.Context, uri string, extra ...*options.ClientOptions) (*mongo.Client, error) {
	opts := append([]*options.ClientOptions{options.Client().ApplyURI(uri)}, extra...)
	client, err := mongo.Connect(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// EnsureIndexes creates the identity indexes merges rely on. The partial
// filters let documents lacking one of the ids coexist.
func (r *TitleRepository) EnsureIndexes(ctx context.Context) error {
	if r == nil {
		return nil
	}
	for _, coll := range []*mongo.Collection{r.movies, r.series} {
		if coll == nil {
			continue
		}
		if _, err := coll.Indexes().CreateMany(ctx, indexModels()); err != nil {
			return fmt.Errorf("indexes on %s: %w", coll.Name(), err)
		}
	}
	return nil
}

func indexModels() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "tmdb_id", Value: 1}},
			Options: options.Index().SetUnique(true).
				SetPartialFilterExpression(bson.M{"tmdb_id": bson.M{"$exists": true}}),
		},
		{
			Keys: bson.D{{Key: "imdb_id", Value: 1}},
			Options: options.Index().SetUnique(true).
				SetPartialFilterExpression(bson.M{"imdb_id": bson.M{"$type": "string"}}),
		},
		{Keys: bson.D{{Key: "genres", Value: 1}}},
		{Keys: bson.D{{Key: "updated_on", Value: -1}}},
		{Keys: bson.D{{Key: "title", Value: 1}}},
	}
}

func (r *TitleRepository) collection(kind domain.MediaKind) (*mongo.Collection, error) {
	switch kind {
	case domain.MediaMovie:
		return r.movies, nil
	case domain.MediaSeries:
		return r.series, nil
	default:
		return nil, fmt.Errorf("%w: unknown media kind %q", domain.ErrPrecondition, kind)
	}
}

// keyFilter selects a title by its external id when known, else by the
// alternate id.
func keyFilter(key domain.TitleKey) bson.M {
	if key.ExternalID > 0 {
		return bson.M{"tmdb_id": key.ExternalID}
	}
	return bson.M{"imdb_id": key.AlternateID}
}

func (r *TitleRepository) Get(ctx context.Context, kind domain.MediaKind, key domain.TitleKey) (domain.TitleDocument, error) {
	coll, err := r.collection(kind)
	if err != nil {
		return domain.TitleDocument{}, err
	}
	if key.IsZero() {
		return domain.TitleDocument{}, domain.ErrNotFound
	}
	return findOne(ctx, coll, keyFilter(key))
}

func findOne(ctx context.Context, coll *mongo.Collection, filter bson.M) (domain.TitleDocument, error) {
	var doc titleDoc
	if err := coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.TitleDocument{}, domain.ErrNotFound
		}
		return domain.TitleDocument{}, err
	}
	return fromDoc(doc), nil
}

func listQuery(filter domain.CatalogFilter) bson.M {
	query := bson.M{}
	if g := strings.TrimSpace(filter.Genre); g != "" {
		query["genres"] = g
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query["title"] = bson.M{
			"$regex":   regexp.QuoteMeta(search),
			"$options": "i",
		}
	}
	return query
}

func (r *TitleRepository) List(ctx context.Context, kind domain.MediaKind, filter domain.CatalogFilter) ([]domain.TitleDocument, error) {
	coll, err := r.collection(kind)
	if err != nil {
		return nil, err
	}
	opts := options.Find().SetSort(bson.D{{Key: "updated_on", Value: -1}, {Key: "_id", Value: -1}})
	if filter.Offset > 0 {
		opts.SetSkip(int64(filter.Offset))
	}
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}

	cursor, err := coll.Find(ctx, listQuery(filter), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []titleDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return fromDocs(docs), nil
}

func (r *TitleRepository) Count(ctx context.Context, kind domain.MediaKind) (int64, error) {
	coll, err := r.collection(kind)
	if err != nil {
		return 0, err
	}
	return coll.CountDocuments(ctx, bson.M{})
}

func (r *TitleRepository) DeleteAll(ctx context.Context, kind domain.MediaKind) (int64, error) {
	coll, err := r.collection(kind)
	if err != nil {
		return 0, err
	}
	res, err := coll.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
