package database

import (
	"context"
	"fmt"

	"clchat/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

func (m *MongoDB) CreateStory(ctx context.Context, story *models.Story) error {
	result, err := m.stories.InsertOne(ctx, story)
	if err != nil {
		return fmt.Errorf("failed to create story: %w", err)
	}
	story.ID = result.InsertedID.(bson.ObjectID)
	return nil
}

func (m *MongoDB) GetStory(ctx context.Context, id string) (*models.Story, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	story := &models.Story{}
	if err := m.stories.FindOne(ctx, bson.M{"_id": oid}).Decode(story); err != nil {
		return nil, mapNotFound(err)
	}
	return story, nil
}

func (m *MongoDB) UpdateStory(ctx context.Context, id, content string, storyType models.StoryType) (*models.Story, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	set := bson.M{}
	if content != "" {
		set["content"] = content
	}
	if storyType != "" {
		set["type"] = storyType
	}
	if len(set) == 0 {
		return m.GetStory(ctx, id)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	story := &models.Story{}
	err = m.stories.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(story)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return story, nil
}

func (m *MongoDB) DeleteStory(ctx context.Context, id string) error {
	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}

	result, err := m.stories.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoDB) ToggleLike(ctx context.Context, id, user string) (int, error) {
	story, err := m.GetStory(ctx, id)
	if err != nil {
		return 0, err
	}

	update := bson.M{"$addToSet": bson.M{"likes": user}}
	for _, u := range story.Likes {
		if u == user {
			update = bson.M{"$pull": bson.M{"likes": user}}
			break
		}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	updated := &models.Story{}
	oid, _ := parseObjectID(id)
	err = m.stories.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(updated)
	if err != nil {
		return 0, mapNotFound(err)
	}
	return len(updated.Likes), nil
}

func (m *MongoDB) AddStoryComment(ctx context.Context, id string, comment models.Comment) ([]models.Comment, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	story := &models.Story{}
	err = m.stories.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$push": bson.M{"comments": comment}},
		opts,
	).Decode(story)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return story.Comments, nil
}

func (m *MongoDB) MarkViewed(ctx context.Context, id, user string) (int, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return 0, err
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	story := &models.Story{}
	err = m.stories.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$addToSet": bson.M{"viewers": user}},
		opts,
	).Decode(story)
	if err != nil {
		return 0, mapNotFound(err)
	}
	return len(story.Viewers), nil
}
