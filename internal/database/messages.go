package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clchat/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

func parseObjectID(id string) (bson.ObjectID, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return bson.ObjectID{}, ErrNotFound
	}
	return oid, nil
}

func (m *MongoDB) SaveMessage(ctx context.Context, msg *models.Message) error {
	result, err := m.messages.InsertOne(ctx, msg)
	if err != nil {
		return fmt.Errorf("failed to save message: %w", err)
	}
	msg.ID = result.InsertedID.(bson.ObjectID)
	return nil
}

func (m *MongoDB) GetMessage(ctx context.Context, id string) (*models.Message, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	msg := &models.Message{}
	if err := m.messages.FindOne(ctx, bson.M{"_id": oid}).Decode(msg); err != nil {
		return nil, mapNotFound(err)
	}
	return msg, nil
}

func (m *MongoDB) RoomMessages(ctx context.Context, room, viewer string, limit int) ([]*models.Message, error) {
	filter := bson.M{"room": room}
	if viewer != "" {
		filter["deleted_by"] = bson.M{"$ne": viewer}
	}

	// Fetch newest-first so the limit keeps the most recent messages, then
	// reverse into creation order for the client.
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "seq", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := m.messages.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []*models.Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (m *MongoDB) MarkDelivered(ctx context.Context, id string) (*models.Message, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	msg := &models.Message{}
	err = m.messages.FindOneAndUpdate(ctx,
		bson.M{"_id": oid, "delivered": false},
		bson.M{"$set": bson.M{"delivered": true, "delivered_at": time.Now()}},
		opts,
	).Decode(msg)
	if err == nil {
		return msg, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	// Already delivered is not an error; only a missing message is.
	return m.GetMessage(ctx, id)
}

func (m *MongoDB) MarkSeenInRoom(ctx context.Context, room, viewer string) (int64, error) {
	now := time.Now()
	// Pipeline update so a message delivered earlier keeps its original
	// delivered_at; only undelivered messages get stamped now.
	result, err := m.messages.UpdateMany(ctx,
		bson.M{"room": room, "receiver": viewer, "seen": false},
		mongo.Pipeline{{{Key: "$set", Value: bson.M{
			"seen":         true,
			"seen_at":      now,
			"delivered":    true,
			"delivered_at": bson.M{"$cond": bson.A{"$delivered", "$delivered_at", now}},
		}}}},
	)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

func (m *MongoDB) HideMessage(ctx context.Context, id, user string) error {
	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}

	result, err := m.messages.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$addToSet": bson.M{"deleted_by": user}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoDB) DeleteMessage(ctx context.Context, id string) error {
	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}

	result, err := m.messages.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoDB) OfflineMessages(ctx context.Context, user string) ([]*models.Message, error) {
	filter := bson.M{
		"receiver":   user,
		"delivered":  false,
		"deleted_by": bson.M{"$ne": user},
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "seq", Value: 1}})

	cursor, err := m.messages.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []*models.Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}
