package database

import (
	"context"
	"fmt"
	"time"

	"clchat/pkg/logger"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

type MongoDB struct {
	client        *mongo.Client
	users         *mongo.Collection
	messages      *mongo.Collection
	stories       *mongo.Collection
	posts         *mongo.Collection
	notifications *mongo.Collection
}

func NewMongoDB(ctx context.Context, uri, dbName string) (*MongoDB, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second)

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(dbName)
	m := &MongoDB{
		client:        client,
		users:         db.Collection("users"),
		messages:      db.Collection("messages"),
		stories:       db.Collection("stories"),
		posts:         db.Collection("posts"),
		notifications: db.Collection("notifications"),
	}

	if err := m.createIndexes(ctx); err != nil {
		return nil, err
	}

	logger.Info("Connected to MongoDB database %q", dbName)
	return m, nil
}

func (m *MongoDB) createIndexes(ctx context.Context) error {
	_, err := m.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create users index: %w", err)
	}

	_, err = m.messages.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			// Room reads sorted by creation order
			Keys: bson.D{{Key: "room", Value: 1}, {Key: "created_at", Value: 1}, {Key: "seq", Value: 1}},
		},
		{
			// Offline-message query: undelivered messages per receiver
			Keys: bson.D{{Key: "receiver", Value: 1}, {Key: "delivered", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create message indexes: %w", err)
	}

	_, err = m.notifications.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create notifications index: %w", err)
	}

	return nil
}

func (m *MongoDB) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
