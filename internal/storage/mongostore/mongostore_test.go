package mongostore

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/mmynk/memoria/internal/models"
	"github.com/mmynk/memoria/internal/storage"
)

func stageNames(p mongo.Pipeline) []string {
	names := make([]string, len(p))
	for i, stage := range p {
		names[i] = stage[0].Key
	}
	return names
}

func TestTimelinePipeline(t *testing.T) {
	q := storage.FeedQuery{FamilyID: "f1", ViewerID: "u1", Limit: 100}
	p := timelinePipeline(q)

	assert.Equal(t,
		[]string{"$match", "$lookup", "$unwind", "$match", "$addFields", "$sort", "$limit", "$project"},
		stageNames(p))

	lookup := p[1][0].Value.(bson.M)
	assert.Equal(t, "albums", lookup["from"])
	assert.Equal(t, "album_id", lookup["localField"])

	visible := p[3][0].Value.(bson.M)
	assert.Equal(t, "f1", visible["album.family_id"])
	assert.Len(t, visible["$or"], 2)

	sort := p[5][0].Value.(bson.D)
	keys := make([]string, len(sort))
	for i, e := range sort {
		keys[i] = e.Key
	}
	assert.Equal(t, []string{"has_capture", "captured_at", "uploaded_at", "_id"}, keys)

	assert.Equal(t, 100, p[6][0].Value)
}

func TestTimelinePipelineWithoutLimit(t *testing.T) {
	p := timelinePipeline(storage.FeedQuery{FamilyID: "f1", ViewerID: "u1"})
	assert.NotContains(t, stageNames(p), "$limit")
}

func TestMapPipeline(t *testing.T) {
	p := mapPipeline(storage.FeedQuery{FamilyID: "f1", ViewerID: "u1"})
	assert.Equal(t,
		[]string{"$match", "$lookup", "$unwind", "$match", "$match", "$sort", "$project"},
		stageNames(p))
	assert.Equal(t, bson.M{"location": bson.M{"$ne": nil}}, p[4][0].Value)
}

func TestVisibleAlbumFilter(t *testing.T) {
	f := visibleAlbumFilter("", "f1", "u1")
	assert.Equal(t, "f1", f["family_id"])
	assert.Equal(t, bson.A{
		bson.M{"visibility": "family"},
		bson.M{"creator_id": "u1"},
	}, f["$or"])
}

func TestReactionUpsertKeepsFirstID(t *testing.T) {
	filter, update := reactionUpsert(&models.Reaction{ID: "r1", PhotoID: "p1", AuthorID: "u1", Kind: models.ReactionLove})
	assert.Equal(t, bson.M{"photo_id": "p1", "author_id": "u1"}, filter)
	assert.Equal(t, bson.M{"_id": "r1"}, update["$setOnInsert"])
	assert.Equal(t, "love", update["$set"].(bson.M)["kind"])
}

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil))
	assert.ErrorIs(t, translate(mongo.ErrNoDocuments), storage.ErrNotFound)

	dup := mongo.WriteException{WriteErrors: []mongo.WriteError{{
		Code:    11000,
		Message: "E11000 duplicate key error collection: memoria.users index: email_1 dup key: { email: \"a@b.c\" }",
	}}}
	assert.ErrorIs(t, translate(dup), storage.ErrEmailTaken)

	other := errors.New("connection reset")
	assert.Equal(t, other, translate(other))
}

// TestStoreIntegration runs against a live server when MEMORIA_TEST_MONGO_URI is set.
func TestStoreIntegration(t *testing.T) {
	uri := os.Getenv("MEMORIA_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("MEMORIA_TEST_MONGO_URI not set")
	}

	ctx := context.Background()
	dbName := "memoria_test_" + uuid.New().String()[:8]
	store, err := New(ctx, uri, dbName)
	require.NoError(t, err)
	t.Cleanup(func() {
		store.db.Drop(context.Background())
		store.Close()
	})

	admin := models.NewUser("ana@example.com", "Ana", "García", "hash")
	admin.Role = models.RoleAdmin
	family := &models.Family{ID: uuid.New().String(), Name: "Familia García", InvitationCode: models.NewInvitationCode(), AdminID: admin.ID, CreatedAt: time.Now().UTC()}
	admin.FamilyID = family.ID
	require.NoError(t, store.CreateFamilyWithAdmin(ctx, family, admin))

	dup := models.NewUser("ana@example.com", "Ana", "Otra", "hash")
	other := &models.Family{ID: uuid.New().String(), Name: "Familia Otra", InvitationCode: models.NewInvitationCode(), AdminID: dup.ID, CreatedAt: time.Now().UTC()}
	dup.FamilyID = other.ID
	assert.ErrorIs(t, store.CreateFamilyWithAdmin(ctx, other, dup), storage.ErrEmailTaken)
	_, err = store.GetFamily(ctx, other.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound, "family must be removed when the admin insert fails")

	found, err := store.GetFamilyByCode(ctx, "  "+family.InvitationCode)
	require.NoError(t, err)
	assert.Equal(t, family.ID, found.ID)

	album := &models.Album{ID: uuid.New().String(), Title: "Verano", FamilyID: family.ID, CreatorID: admin.ID, Visibility: models.VisibilityFamily, CreatedAt: time.Now().UTC()}
	require.NoError(t, store.CreateAlbum(ctx, album))

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 120; i++ {
		p := &models.Photo{ID: uuid.New().String(), AlbumID: album.ID, FamilyID: family.ID, UploadedBy: admin.ID, UploadedAt: base.Add(time.Duration(i) * time.Minute)}
		if i%2 == 0 {
			c := base.Add(-time.Duration(i) * time.Hour)
			p.CapturedAt = &c
			p.Location = &models.Location{Lat: 1, Lng: 2}
		}
		require.NoError(t, store.CreatePhoto(ctx, p))
	}

	timeline, err := store.Timeline(ctx, storage.FeedQuery{FamilyID: family.ID, ViewerID: admin.ID, Limit: storage.DefaultFeedLimit})
	require.NoError(t, err)
	require.Len(t, timeline, 100)
	assert.NotNil(t, timeline[0].CapturedAt)
	assert.Nil(t, timeline[99].CapturedAt)

	mapped, err := store.MapPhotos(ctx, storage.FeedQuery{FamilyID: family.ID, ViewerID: admin.ID})
	require.NoError(t, err)
	assert.Len(t, mapped, 60)

	for _, kind := range []models.ReactionKind{models.ReactionLike, models.ReactionSad} {
		_, err := store.UpsertReaction(ctx, &models.Reaction{ID: uuid.New().String(), PhotoID: timeline[0].ID, AuthorID: admin.ID, Kind: kind, CreatedAt: time.Now().UTC()})
		require.NoError(t, err)
	}
	reactions, err := store.ListReactions(ctx, timeline[0].ID)
	require.NoError(t, err)
	require.Len(t, reactions, 1)
	assert.Equal(t, models.ReactionSad, reactions[0].Kind)
}
