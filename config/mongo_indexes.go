package config

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names shared by the repositories and the index bootstrap.
const (
	CollectionEntries         = "entries"
	CollectionLinkedInPosts   = "linkedin_posts"
	CollectionOutreachHistory = "outreach_history"
)

func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	// listEntries sorts by published desc
	for _, name := range []string{CollectionEntries, CollectionLinkedInPosts} {
		_, err := db.Collection(name).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "published", Value: -1}},
			Options: options.Index().SetName("by_published"),
		})
		if err != nil {
			return err
		}
	}

	_, err := db.Collection(CollectionOutreachHistory).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "ownerUserId", Value: 1}, {Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("by_owner_created"),
	})
	return err
}
