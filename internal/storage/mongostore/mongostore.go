// Package mongostore implements storage.Store on MongoDB.
//
// The timeline and map join photos to their albums with $lookup so that
// visibility is decided by the album of record.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mmynk/memoria/internal/models"
	"github.com/mmynk/memoria/internal/storage"
)

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

const (
	colFamilies  = "families"
	colUsers     = "users"
	colAlbums    = "albums"
	colPhotos    = "photos"
	colComments  = "comments"
	colReactions = "reactions"
)

// Store implements storage.Store using one MongoDB database.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// New connects to uri, selects database dbName and ensures indexes.
func New(ctx context.Context, uri, dbName string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	s := &Store{client: client, db: client.Database(dbName)}
	if err := s.ensureIndexes(ctx); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		colUsers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("email_1")},
			{Keys: bson.D{{Key: "family_id", Value: 1}}},
		},
		colFamilies: {
			{Keys: bson.D{{Key: "invitation_code", Value: 1}}, Options: options.Index().SetUnique(true).SetName("invitation_code_1")},
		},
		colAlbums: {
			{Keys: bson.D{{Key: "family_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		colPhotos: {
			{Keys: bson.D{{Key: "album_id", Value: 1}}},
			{Keys: bson.D{{Key: "family_id", Value: 1}, {Key: "captured_at", Value: -1}}},
		},
		colComments: {
			{Keys: bson.D{{Key: "photo_id", Value: 1}, {Key: "created_at", Value: 1}}},
		},
		colReactions: {
			{Keys: bson.D{{Key: "photo_id", Value: 1}, {Key: "author_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}
	for col, idx := range indexes {
		if _, err := s.db.Collection(col).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("%s: %w", col, err)
		}
	}
	return nil
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close disconnects the client.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// translate maps driver errors to storage errors.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return storage.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return storage.ConflictFor(err.Error())
	default:
		return err
	}
}

func findOne[T any](ctx context.Context, col *mongo.Collection, filter any) (*T, error) {
	var doc T
	if err := col.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, translate(err)
	}
	return &doc, nil
}

func findAll[T any](ctx context.Context, col *mongo.Collection, filter any, opts ...*options.FindOptions) ([]T, error) {
	cur, err := col.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	var docs []T
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func requireMatch(res *mongo.UpdateResult) error {
	if res.MatchedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Users

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if _, err := s.db.Collection(colUsers).InsertOne(ctx, fromUser(user)); err != nil {
		return fmt.Errorf("failed to create user: %w", translate(err))
	}
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	doc, err := findOne[userDoc](ctx, s.db.Collection(colUsers), bson.M{"_id": id})
	if err != nil {
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return doc.model(), nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	doc, err := findOne[userDoc](ctx, s.db.Collection(colUsers), bson.M{"email": email})
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return doc.model(), nil
}

func (s *Store) ListFamilyMembers(ctx context.Context, familyID string) ([]*models.User, error) {
	docs, err := findAll[userDoc](ctx, s.db.Collection(colUsers), bson.M{"family_id": familyID},
		options.Find().SetSort(bson.D{{Key: "registered_at", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list family members: %w", err)
	}
	users := make([]*models.User, len(docs))
	for i, d := range docs {
		users[i] = d.model()
	}
	return users, nil
}

func (s *Store) TouchUser(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.Collection(colUsers).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"last_access_at": at}})
	if err != nil {
		return fmt.Errorf("failed to update last access: %w", err)
	}
	return requireMatch(res)
}

func (s *Store) SetUserActive(ctx context.Context, id string, active bool) error {
	res, err := s.db.Collection(colUsers).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"active": active}})
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return requireMatch(res)
}

// Families

// CreateFamilyWithAdmin inserts the family and then its admin. Standalone
// servers have no multi-document transactions, so a failed admin insert
// removes the family again.
func (s *Store) CreateFamilyWithAdmin(ctx context.Context, family *models.Family, admin *models.User) error {
	families := s.db.Collection(colFamilies)
	if _, err := families.InsertOne(ctx, fromFamily(family)); err != nil {
		return fmt.Errorf("failed to insert family: %w", translate(err))
	}
	if _, err := s.db.Collection(colUsers).InsertOne(ctx, fromUser(admin)); err != nil {
		if _, delErr := families.DeleteOne(context.WithoutCancel(ctx), bson.M{"_id": family.ID}); delErr != nil {
			return fmt.Errorf("failed to insert admin: %w (family cleanup failed: %v)", translate(err), delErr)
		}
		return fmt.Errorf("failed to insert admin: %w", translate(err))
	}
	return nil
}

func (s *Store) GetFamily(ctx context.Context, id string) (*models.Family, error) {
	doc, err := findOne[familyDoc](ctx, s.db.Collection(colFamilies), bson.M{"_id": id})
	if err != nil {
		return nil, fmt.Errorf("failed to get family: %w", err)
	}
	return doc.model(), nil
}

func (s *Store) GetFamilyByCode(ctx context.Context, code string) (*models.Family, error) {
	doc, err := findOne[familyDoc](ctx, s.db.Collection(colFamilies),
		bson.M{"invitation_code": models.NormalizeInvitationCode(code)})
	if err != nil {
		return nil, fmt.Errorf("failed to get family by code: %w", err)
	}
	return doc.model(), nil
}

func (s *Store) UpdateFamilySettings(ctx context.Context, id string, settings map[string]any) error {
	if settings == nil {
		settings = map[string]any{}
	}
	res, err := s.db.Collection(colFamilies).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"settings": settings}})
	if err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}
	return requireMatch(res)
}

// Albums

func (s *Store) CreateAlbum(ctx context.Context, album *models.Album) error {
	doc := fromAlbum(album)
	if doc.Tags == nil {
		doc.Tags = []string{}
	}
	if _, err := s.db.Collection(colAlbums).InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create album: %w", translate(err))
	}
	return nil
}

func (s *Store) GetAlbum(ctx context.Context, id string) (*models.Album, error) {
	doc, err := findOne[albumDoc](ctx, s.db.Collection(colAlbums), bson.M{"_id": id})
	if err != nil {
		return nil, fmt.Errorf("failed to get album: %w", err)
	}
	return doc.model(), nil
}

func (s *Store) ListAlbums(ctx context.Context, familyID, viewerID string) ([]*models.Album, error) {
	docs, err := findAll[albumDoc](ctx, s.db.Collection(colAlbums), visibleAlbumFilter("", familyID, viewerID),
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list albums: %w", err)
	}
	albums := make([]*models.Album, len(docs))
	for i, d := range docs {
		albums[i] = d.model()
	}
	return albums, nil
}

// Photos

func (s *Store) CreatePhoto(ctx context.Context, photo *models.Photo) error {
	if _, err := s.db.Collection(colPhotos).InsertOne(ctx, fromPhoto(photo)); err != nil {
		return fmt.Errorf("failed to create photo: %w", translate(err))
	}
	return nil
}

func (s *Store) GetPhoto(ctx context.Context, id string) (*models.Photo, error) {
	doc, err := findOne[photoDoc](ctx, s.db.Collection(colPhotos), bson.M{"_id": id})
	if err != nil {
		return nil, fmt.Errorf("failed to get photo: %w", err)
	}
	return doc.model(), nil
}

func (s *Store) ListAlbumPhotos(ctx context.Context, albumID string) ([]*models.Photo, error) {
	docs, err := findAll[photoDoc](ctx, s.db.Collection(colPhotos), bson.M{"album_id": albumID},
		options.Find().SetSort(bson.D{{Key: "uploaded_at", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list album photos: %w", err)
	}
	return photoModels(docs), nil
}

func photoModels(docs []photoDoc) []*models.Photo {
	photos := make([]*models.Photo, len(docs))
	for i, d := range docs {
		photos[i] = d.model()
	}
	return photos
}

// Comments and reactions

func (s *Store) CreateComment(ctx context.Context, comment *models.Comment) error {
	doc := commentDoc{
		ID:        comment.ID,
		PhotoID:   comment.PhotoID,
		AuthorID:  comment.AuthorID,
		Text:      comment.Text,
		CreatedAt: comment.CreatedAt,
		Edited:    comment.Edited,
	}
	if _, err := s.db.Collection(colComments).InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create comment: %w", translate(err))
	}
	return nil
}

func (s *Store) ListComments(ctx context.Context, photoID string) ([]*models.Comment, error) {
	docs, err := findAll[commentDoc](ctx, s.db.Collection(colComments), bson.M{"photo_id": photoID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	comments := make([]*models.Comment, len(docs))
	for i, d := range docs {
		comments[i] = &models.Comment{
			ID:        d.ID,
			PhotoID:   d.PhotoID,
			AuthorID:  d.AuthorID,
			Text:      d.Text,
			CreatedAt: d.CreatedAt,
			Edited:    d.Edited,
		}
	}
	return comments, nil
}

// UpsertReaction relies on the unique (photo_id, author_id) index. Two
// concurrent first reactions can race on insert; the loser retries as an
// update.
func (s *Store) UpsertReaction(ctx context.Context, reaction *models.Reaction) (*models.Reaction, error) {
	col := s.db.Collection(colReactions)
	filter, update := reactionUpsert(reaction)

	_, err := col.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		_, err = col.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to upsert reaction: %w", translate(err))
	}

	doc, err := findOne[reactionDoc](ctx, col, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to read reaction: %w", err)
	}
	return doc.model(), nil
}

func reactionUpsert(r *models.Reaction) (filter, update bson.M) {
	filter = bson.M{"photo_id": r.PhotoID, "author_id": r.AuthorID}
	update = bson.M{
		"$set":         bson.M{"kind": string(r.Kind), "created_at": r.CreatedAt},
		"$setOnInsert": bson.M{"_id": r.ID},
	}
	return filter, update
}

func (s *Store) ListReactions(ctx context.Context, photoID string) ([]*models.Reaction, error) {
	docs, err := findAll[reactionDoc](ctx, s.db.Collection(colReactions), bson.M{"photo_id": photoID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list reactions: %w", err)
	}
	reactions := make([]*models.Reaction, len(docs))
	for i, d := range docs {
		reactions[i] = d.model()
	}
	return reactions, nil
}
