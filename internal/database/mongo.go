package database

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"example.com/trip-planner/backend/internal/config"
)

// OpenMongo подключается к MongoDB и возвращает клиент и коллекцию поездок.
func OpenMongo(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, *mongo.Collection, error) {
	var client *mongo.Client
	err := withRetry(ctx, "mongo", func(ctx context.Context) error {
		candidate, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
		if err != nil {
			return err
		}

		err = ping(ctx, func(ctx context.Context) error {
			return candidate.Ping(ctx, nil)
		})
		if err != nil {
			_ = candidate.Disconnect(context.Background())
			return err
		}

		client = candidate
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return client, client.Database(cfg.Database).Collection(cfg.Collection), nil
}
