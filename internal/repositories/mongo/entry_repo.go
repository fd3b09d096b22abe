package mongo

import (
	"context"

	"github.com/yoockh/outreach/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EntryRepository works on one lead-shaped collection (entries or
// linkedin_posts). IDs returned by SampleIDs are raw _id values and can be
// passed back to DeleteIDs unchanged.
type EntryRepository interface {
	CountUpTo(ctx context.Context, limit int64) (int64, error)
	SampleIDs(ctx context.Context, n int64) ([]any, error)
	DeleteIDs(ctx context.Context, ids []any) (int64, error)
	Any(ctx context.Context) (bool, error)
	ListRecent(ctx context.Context, limit int64) ([]models.Entry, error)
	DeleteByID(ctx context.Context, id string) (bool, error)
}

type entryRepo struct {
	col *mongo.Collection
}

func NewEntryRepo(db *mongo.Database, collection string) EntryRepository {
	return &entryRepo{col: db.Collection(collection)}
}

func (r *entryRepo) CountUpTo(ctx context.Context, limit int64) (int64, error) {
	return r.col.CountDocuments(ctx, bson.D{}, options.Count().SetLimit(limit))
}

func (r *entryRepo) SampleIDs(ctx context.Context, n int64) ([]any, error) {
	cur, err := r.col.Find(ctx, bson.D{},
		options.Find().
			SetProjection(bson.D{{Key: "_id", Value: 1}}).
			SetLimit(n),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		ID any `bson:"_id"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}

	ids := make([]any, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	return ids, nil
}

// DeleteIDs removes all given documents with a single DeleteMany.
func (r *entryRepo) DeleteIDs(ctx context.Context, ids []any) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := r.col.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *entryRepo) Any(ctx context.Context) (bool, error) {
	err := r.col.FindOne(ctx, bson.D{},
		options.FindOne().SetProjection(bson.D{{Key: "_id", Value: 1}}),
	).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	return err == nil, err
}

func (r *entryRepo) ListRecent(ctx context.Context, limit int64) ([]models.Entry, error) {
	cur, err := r.col.Find(ctx, bson.D{},
		options.Find().
			SetSort(bson.D{{Key: "published", Value: -1}}).
			SetLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Entry{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteByID reports false when no document has the id. Hex ids match both
// ObjectID and string keys since ingestion may have written either.
func (r *entryRepo) DeleteByID(ctx context.Context, id string) (bool, error) {
	res, err := r.col.DeleteOne(ctx, idFilter(id))
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func idFilter(id string) bson.M {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.M{"_id": bson.M{"$in": bson.A{oid, id}}}
	}
	return bson.M{"_id": id}
}
