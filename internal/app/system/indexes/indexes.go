// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
Errors are aggregated so every problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	var problems []string

	if err := ensureUsers(ctx, db, logger); err != nil {
		problems = append(problems, "users: "+err.Error())
	}
	if err := ensureEvents(ctx, db, logger); err != nil {
		problems = append(problems, "events: "+err.Error())
	}
	if err := ensureEventMembers(ctx, db, logger); err != nil {
		problems = append(problems, "event_members: "+err.Error())
	}
	if err := ensureEventNotifications(ctx, db, logger); err != nil {
		problems = append(problems, "event_notifications: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func ensureUsers(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	return ensureIndexSet(ctx, db.Collection("users"), logger, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username_ci", Value: 1}},
			Options: options.Index().SetName("uniq_username_ci").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "email_ci", Value: 1}},
			Options: options.Index().SetName("uniq_email_ci").SetUnique(true),
		},
	})
}

func ensureEvents(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	return ensureIndexSet(ctx, db.Collection("events"), logger, []mongo.IndexModel{
		{
			// child lookup for tree materialization and delete cascade
			Keys:    bson.D{{Key: "parent_id", Value: 1}},
			Options: options.Index().SetName("by_parent"),
		},
		{
			Keys:    bson.D{{Key: "title_ci", Value: 1}},
			Options: options.Index().SetName("by_title_ci"),
		},
	})
}

func ensureEventMembers(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	return ensureIndexSet(ctx, db.Collection("event_members"), logger, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "event_id", Value: 1},
				{Key: "user_id", Value: 1},
			},
			Options: options.Index().SetName("uniq_event_user").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("by_user"),
		},
	})
}

func ensureEventNotifications(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	return ensureIndexSet(ctx, db.Collection("event_notifications"), logger, []mongo.IndexModel{
		{
			// due-notification sweep
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "send_at", Value: 1},
			},
			Options: options.Index().SetName("by_status_send_at"),
		},
		{
			// scheduling idempotency key lookup
			Keys: bson.D{
				{Key: "event_id", Value: 1},
				{Key: "user_id", Value: 1},
				{Key: "send_at", Value: 1},
				{Key: "status", Value: 1},
			},
			Options: options.Index().SetName("by_dedup_key"),
		},
	})
}

// ensureIndexSet creates the desired indexes on one collection. CreateMany
// is a no-op for an index that already exists with the same name and keys,
// which is what makes repeated startups safe.
func ensureIndexSet(ctx context.Context, coll *mongo.Collection, logger *zap.Logger, models []mongo.IndexModel) error {
	names, err := coll.Indexes().CreateMany(ctx, models)
	if err != nil {
		return err
	}
	logger.Info("ensured indexes",
		zap.String("collection", coll.Name()),
		zap.Strings("indexes", names))
	return nil
}
