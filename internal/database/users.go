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

func mapNotFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}

func (m *MongoDB) CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error) {
	user := &models.User{
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}

	result, err := m.users.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("username %q already taken", username)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	user.ID = result.InsertedID.(bson.ObjectID)
	return user, nil
}

func (m *MongoDB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user := &models.User{}
	err := m.users.FindOne(ctx, bson.M{"username": username}).Decode(user)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return user, nil
}

func (m *MongoDB) UpdateUsername(ctx context.Context, username, newUsername string) (*models.User, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	user := &models.User{}
	err := m.users.FindOneAndUpdate(ctx,
		bson.M{"username": username},
		bson.M{"$set": bson.M{"username": newUsername}},
		opts,
	).Decode(user)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return user, nil
}

func (m *MongoDB) SetOnline(ctx context.Context, username string, online bool, lastSeen time.Time) error {
	_, err := m.users.UpdateOne(ctx,
		bson.M{"username": username},
		bson.M{"$set": bson.M{"online": online, "last_seen": lastSeen}},
	)
	return err
}

func (m *MongoDB) SetProfilePic(ctx context.Context, username, url string) (*models.User, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	user := &models.User{}
	err := m.users.FindOneAndUpdate(ctx,
		bson.M{"username": username},
		bson.M{"$set": bson.M{"profile_pic": url}},
		opts,
	).Decode(user)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return user, nil
}

func (m *MongoDB) AddFriend(ctx context.Context, username, friend string) ([]string, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	user := &models.User{}
	err := m.users.FindOneAndUpdate(ctx,
		bson.M{"username": username},
		bson.M{"$addToSet": bson.M{"friends": friend}},
		opts,
	).Decode(user)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return user.Friends, nil
}

func (m *MongoDB) ListFriends(ctx context.Context, username string) ([]*models.User, error) {
	user, err := m.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if len(user.Friends) == 0 {
		return nil, nil
	}

	cursor, err := m.users.Find(ctx, bson.M{"username": bson.M{"$in": user.Friends}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var friends []*models.User
	if err := cursor.All(ctx, &friends); err != nil {
		return nil, err
	}
	return friends, nil
}

func (m *MongoDB) AddSeenStory(ctx context.Context, username, storyID string) error {
	result, err := m.users.UpdateOne(ctx,
		bson.M{"username": username},
		bson.M{"$addToSet": bson.M{"seen_stories": storyID}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoDB) SetPushSubscription(ctx context.Context, username string, sub map[string]interface{}) error {
	result, err := m.users.UpdateOne(ctx,
		bson.M{"username": username},
		bson.M{"$set": bson.M{"push_subscription": sub}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
