package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/inkpress/core/internal/config"
)

// serverSelectionTimeout bounds how long a store operation may wait for a
// reachable node before failing instead of queueing.
const serverSelectionTimeout = 30 * time.Second

// Connect opens a MongoDB client and verifies connectivity with a ping.
func Connect(ctx context.Context, cfg *config.AppConfig) (*mongo.Client, *mongo.Database, error) {
	opts := options.Client().
		ApplyURI(cfg.MongoURI).
		SetServerSelectionTimeout(serverSelectionTimeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("database ping failed: %w", err)
	}

	return client, client.Database(cfg.MongoDB), nil
}
