package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type StoryType string

const (
	StoryTypeText  StoryType = "text"
	StoryTypeImage StoryType = "image"
	StoryTypeVideo StoryType = "video"
	StoryTypeOther StoryType = "other"
)

type Story struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"id"`
	User      string        `bson:"user" json:"user"`
	Content   string        `bson:"content" json:"content"`
	Type      StoryType     `bson:"type" json:"type"`
	Likes     []string      `bson:"likes,omitempty" json:"likes,omitempty"`
	Comments  []Comment     `bson:"comments,omitempty" json:"comments,omitempty"`
	Viewers   []string      `bson:"viewers,omitempty" json:"viewers,omitempty"`
	CreatedAt time.Time     `bson:"created_at" json:"createdAt"`
}

type Comment struct {
	User      string    `bson:"user" json:"user"`
	Text      string    `bson:"text,omitempty" json:"text,omitempty"`
	Emoji     string    `bson:"emoji,omitempty" json:"emoji,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

type Post struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"id"`
	User      string        `bson:"user" json:"user"`
	Text      string        `bson:"text,omitempty" json:"text,omitempty"`
	Media     string        `bson:"media,omitempty" json:"media,omitempty"`
	Online    bool          `bson:"online" json:"online"`
	Comments  []Comment     `bson:"comments,omitempty" json:"comments,omitempty"`
	CreatedAt time.Time     `bson:"created_at" json:"createdAt"`
}

type Notification struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"id"`
	User      string        `bson:"user" json:"user"`
	Title     string        `bson:"title" json:"title"`
	Body      string        `bson:"body,omitempty" json:"body,omitempty"`
	Icon      string        `bson:"icon,omitempty" json:"icon,omitempty"`
	URL       string        `bson:"url,omitempty" json:"url,omitempty"`
	Read      bool          `bson:"read" json:"read"`
	CreatedAt time.Time     `bson:"created_at" json:"createdAt"`
}
