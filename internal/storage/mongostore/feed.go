package mongostore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/mmynk/memoria/internal/models"
	"github.com/mmynk/memoria/internal/storage"
)

// visibleAlbumFilter matches albums of familyID that viewerID may see.
// prefix addresses the album sub-document in a pipeline ("album.") or is
// empty when filtering the albums collection itself.
func visibleAlbumFilter(prefix, familyID, viewerID string) bson.M {
	return bson.M{
		prefix + "family_id": familyID,
		"$or": bson.A{
			bson.M{prefix + "visibility": string(models.VisibilityFamily)},
			bson.M{prefix + "creator_id": viewerID},
		},
	}
}

// joinAlbum narrows to the family's photos and joins each to its album.
func joinAlbum(q storage.FeedQuery) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"family_id": q.FamilyID}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         colAlbums,
			"localField":   "album_id",
			"foreignField": "_id",
			"as":           "album",
		}}},
		{{Key: "$unwind", Value: "$album"}},
		{{Key: "$match", Value: visibleAlbumFilter("album.", q.FamilyID, q.ViewerID)}},
	}
}

// timelinePipeline sorts dated photos first by capture time, then everything
// by upload time, newest first.
func timelinePipeline(q storage.FeedQuery) mongo.Pipeline {
	p := joinAlbum(q)
	p = append(p,
		bson.D{{Key: "$addFields", Value: bson.M{
			"has_capture": bson.M{"$cond": bson.A{bson.M{"$ifNull": bson.A{"$captured_at", false}}, 1, 0}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{
			{Key: "has_capture", Value: -1},
			{Key: "captured_at", Value: -1},
			{Key: "uploaded_at", Value: -1},
			{Key: "_id", Value: 1},
		}}},
	)
	if q.Limit > 0 {
		p = append(p, bson.D{{Key: "$limit", Value: q.Limit}})
	}
	return append(p, bson.D{{Key: "$project", Value: bson.M{"album": 0, "has_capture": 0}}})
}

func mapPipeline(q storage.FeedQuery) mongo.Pipeline {
	p := joinAlbum(q)
	p = append(p,
		bson.D{{Key: "$match", Value: bson.M{"location": bson.M{"$ne": nil}}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "uploaded_at", Value: 1}, {Key: "_id", Value: 1}}}},
	)
	if q.Limit > 0 {
		p = append(p, bson.D{{Key: "$limit", Value: q.Limit}})
	}
	return append(p, bson.D{{Key: "$project", Value: bson.M{"album": 0}}})
}

func (s *Store) aggregatePhotos(ctx context.Context, pipeline mongo.Pipeline) ([]*models.Photo, error) {
	cur, err := s.db.Collection(colPhotos).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var docs []photoDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return photoModels(docs), nil
}

func (s *Store) Timeline(ctx context.Context, q storage.FeedQuery) ([]*models.Photo, error) {
	photos, err := s.aggregatePhotos(ctx, timelinePipeline(q))
	if err != nil {
		return nil, fmt.Errorf("failed to query timeline: %w", err)
	}
	return photos, nil
}

func (s *Store) MapPhotos(ctx context.Context, q storage.FeedQuery) ([]*models.Photo, error) {
	photos, err := s.aggregatePhotos(ctx, mapPipeline(q))
	if err != nil {
		return nil, fmt.Errorf("failed to query map photos: %w", err)
	}
	return photos, nil
}
