package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/yoockh/outreach/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type OutreachRepository interface {
	Insert(ctx context.Context, rec *models.OutreachRecord) (string, error)
	ListByOwner(ctx context.Context, ownerUserID string, limit int64) ([]models.OutreachRecord, error)
}

type outreachRepo struct {
	col *mongo.Collection
}

func NewOutreachRepo(db *mongo.Database, collection string) OutreachRepository {
	return &outreachRepo{col: db.Collection(collection)}
}

// Insert stores rec with a fresh ObjectID and returns its hex form.
func (r *outreachRepo) Insert(ctx context.Context, rec *models.OutreachRecord) (string, error) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if rec.ID == "" {
		rec.ID = primitive.NewObjectID().Hex()
	}
	if _, err := r.col.InsertOne(ctx, rec); err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (r *outreachRepo) ListByOwner(ctx context.Context, ownerUserID string, limit int64) ([]models.OutreachRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	if ownerUserID == "" {
		return nil, errors.New("owner user id is required")
	}

	cur, err := r.col.Find(ctx,
		bson.M{"ownerUserId": ownerUserID},
		options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}}).
			SetLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.OutreachRecord{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
