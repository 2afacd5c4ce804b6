package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"mediaarchive/internal/domain"
)

// MergeSource applies req as a sequence of single-document conditional
// updates. Each step is idempotent, so a step that matched nothing because
// another writer got there first is either skipped or reported as
// domain.ErrConflict for the caller to retry the whole merge.
func (r *TitleRepository) MergeSource(ctx context.Context, req domain.MergeRequest) (domain.MergeResult, error) {
	if err := req.Check(); err != nil {
		return domain.MergeResult{}, err
	}
	coll, err := r.collection(req.Kind)
	if err != nil {
		return domain.MergeResult{}, err
	}
	now := r.now().UTC().Truncate(time.Millisecond)

	if err := claimExternalID(ctx, coll, req.Key); err != nil {
		return domain.MergeResult{}, err
	}
	created, err := ensureTitle(ctx, coll, req, now)
	if err != nil {
		return domain.MergeResult{}, err
	}
	filter := keyFilter(req.Key)
	if err := fillAlternateID(ctx, coll, req.Key); err != nil {
		return domain.MergeResult{}, err
	}

	var inserted bool
	if req.Kind == domain.MediaMovie {
		inserted, err = upsertMovieSource(ctx, coll, filter, req.Source, now)
	} else {
		inserted, err = upsertEpisodeSource(ctx, coll, filter, req, now)
	}
	if err != nil {
		return domain.MergeResult{}, err
	}

	doc, err := findOne(ctx, coll, filter)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.MergeResult{}, fmt.Errorf("%w: %s vanished during merge", domain.ErrConflict, req.Key)
		}
		return domain.MergeResult{}, err
	}
	return domain.MergeResult{Document: doc, Created: created, Inserted: inserted}, nil
}

// claimExternalID attaches the external id to a document so far known only
// by its alternate id. It never overwrites an existing external id.
func claimExternalID(ctx context.Context, coll *mongo.Collection, key domain.TitleKey) error {
	if key.ExternalID <= 0 || key.AlternateID == "" {
		return nil
	}
	_, err := coll.UpdateOne(ctx,
		bson.M{"imdb_id": key.AlternateID, "tmdb_id": bson.M{"$exists": false}},
		bson.M{"$set": bson.M{"tmdb_id": key.ExternalID}},
	)
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return err
	}
	return nil
}

func fillAlternateID(ctx context.Context, coll *mongo.Collection, key domain.TitleKey) error {
	if key.ExternalID <= 0 || key.AlternateID == "" {
		return nil
	}
	_, err := coll.UpdateOne(ctx,
		bson.M{"tmdb_id": key.ExternalID, "imdb_id": bson.M{"$exists": false}},
		bson.M{"$set": bson.M{"imdb_id": key.AlternateID}},
	)
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return err
	}
	return nil
}

// ensureTitle upserts the bare document. Insert-only fields go through
// $setOnInsert so a concurrent creator never clobbers them.
func ensureTitle(ctx context.Context, coll *mongo.Collection, req domain.MergeRequest, now time.Time) (bool, error) {
	onInsert := bson.M{
		"db_index":   req.DBIndex,
		"media_type": string(req.Kind),
		"created_on": now,
	}
	if req.Kind == domain.MediaMovie {
		onInsert["telegram"] = []sourceDoc{}
	} else {
		onInsert["seasons"] = []seasonDoc{}
	}
	if req.Key.ExternalID > 0 && req.Key.AlternateID != "" {
		onInsert["imdb_id"] = req.Key.AlternateID
	}

	set := bson.M{"updated_on": now}
	descriptive := domain.Descriptive{}
	if req.Descriptive != nil {
		descriptive = *req.Descriptive
	}
	target := onInsert
	if req.Refresh && req.Descriptive != nil {
		target = set
	}
	for k, v := range descriptiveFields(descriptive) {
		target[k] = v
	}

	res, err := coll.UpdateOne(ctx, keyFilter(req.Key),
		bson.M{"$setOnInsert": onInsert, "$set": set},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, fmt.Errorf("%w: concurrent insert of %s", domain.ErrConflict, req.Key)
		}
		return false, err
	}
	return res.UpsertedCount > 0, nil
}

func upsertMovieSource(ctx context.Context, coll *mongo.Collection, filter bson.M, src domain.Source, now time.Time) (bool, error) {
	doc := toSourceDoc(src)

	push := withFilter(filter, bson.M{"telegram.id": bson.M{"$ne": src.Locator}})
	res, err := coll.UpdateOne(ctx, push, bson.M{
		"$push": bson.M{"telegram": doc},
		"$set":  bson.M{"updated_on": now},
	})
	if err != nil {
		return false, err
	}
	if res.MatchedCount > 0 {
		return true, nil
	}

	replace := withFilter(filter, bson.M{"telegram.id": src.Locator})
	res, err = coll.UpdateOne(ctx, replace, bson.M{
		"$set": bson.M{"telegram.$": doc, "updated_on": now},
	})
	if err != nil {
		return false, err
	}
	if res.MatchedCount == 0 {
		return false, fmt.Errorf("%w: source %s neither appended nor replaced", domain.ErrConflict, src.Locator)
	}
	return false, nil
}

func upsertEpisodeSource(ctx context.Context, coll *mongo.Collection, filter bson.M, req domain.MergeRequest, now time.Time) (bool, error) {
	season, episode := req.Episode.Season, req.Episode.Episode

	_, err := coll.UpdateOne(ctx,
		withFilter(filter, bson.M{"seasons.season_number": bson.M{"$ne": season}}),
		bson.M{"$push": bson.M{"seasons": seasonDoc{SeasonNumber: season, Episodes: []episodeDoc{}}}},
	)
	if err != nil {
		return false, err
	}

	_, err = coll.UpdateOne(ctx,
		withFilter(filter, bson.M{"seasons": bson.M{"$elemMatch": bson.M{
			"season_number":           season,
			"episodes.episode_number": bson.M{"$ne": episode},
		}}}),
		bson.M{"$push": bson.M{"seasons.$.episodes": toEpisodeDoc(episode, req.EpisodeDetail)}},
	)
	if err != nil {
		return false, err
	}

	episodeFilters := []interface{}{
		bson.M{"s.season_number": season},
		bson.M{"e.episode_number": episode},
	}
	if req.Refresh && req.EpisodeDetail != nil {
		d := req.EpisodeDetail
		_, err = coll.UpdateOne(ctx, filter,
			bson.M{"$set": bson.M{
				"seasons.$[s].episodes.$[e].title":            d.Title,
				"seasons.$[s].episodes.$[e].overview":         d.Overview,
				"seasons.$[s].episodes.$[e].released":         d.AirDate,
				"seasons.$[s].episodes.$[e].episode_backdrop": d.Backdrop,
			}},
			options.Update().SetArrayFilters(options.ArrayFilters{Filters: episodeFilters}),
		)
		if err != nil {
			return false, err
		}
	}

	src := toSourceDoc(req.Source)
	push := withFilter(filter, bson.M{"seasons": bson.M{"$elemMatch": bson.M{
		"season_number": season,
		"episodes": bson.M{"$elemMatch": bson.M{
			"episode_number": episode,
			"telegram.id":    bson.M{"$ne": req.Source.Locator},
		}},
	}}})
	res, err := coll.UpdateOne(ctx, push,
		bson.M{
			"$push": bson.M{"seasons.$[s].episodes.$[e].telegram": src},
			"$set":  bson.M{"updated_on": now},
		},
		options.Update().SetArrayFilters(options.ArrayFilters{Filters: episodeFilters}),
	)
	if err != nil {
		return false, err
	}
	if res.MatchedCount > 0 {
		return true, nil
	}

	replaceFilters := append(append([]interface{}{}, episodeFilters...), bson.M{"t.id": req.Source.Locator})
	res, err = coll.UpdateOne(ctx, withFilter(filter, episodeLocatorFilter(season, episode, req.Source.Locator)),
		bson.M{"$set": bson.M{
			"seasons.$[s].episodes.$[e].telegram.$[t]": src,
			"updated_on": now,
		}},
		options.Update().SetArrayFilters(options.ArrayFilters{Filters: replaceFilters}),
	)
	if err != nil {
		return false, err
	}
	if res.MatchedCount == 0 {
		return false, fmt.Errorf("%w: source %s on S%dE%d neither appended nor replaced",
			domain.ErrConflict, req.Source.Locator, season, episode)
	}
	return false, nil
}

func episodeLocatorFilter(season, episode int, locator string) bson.M {
	return bson.M{"seasons": bson.M{"$elemMatch": bson.M{
		"season_number": season,
		"episodes": bson.M{"$elemMatch": bson.M{
			"episode_number": episode,
			"telegram.id":    locator,
		}},
	}}}
}

func withFilter(base bson.M, extra bson.M) bson.M {
	out := make(bson.M, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}
