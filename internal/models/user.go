package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type User struct {
	ID               bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Username         string        `bson:"username" json:"username"`
	PasswordHash     string        `bson:"password_hash" json:"-"`
	Online           bool          `bson:"online" json:"online"`
	LastSeen         *time.Time    `bson:"last_seen,omitempty" json:"lastSeen,omitempty"`
	Friends          []string      `bson:"friends,omitempty" json:"friends,omitempty"`
	SeenStories      []string      `bson:"seen_stories,omitempty" json:"seenStories,omitempty"`
	ProfilePic       string        `bson:"profile_pic,omitempty" json:"profilePic,omitempty"`
	PushSubscription bson.M        `bson:"push_subscription,omitempty" json:"-"`
	CreatedAt        time.Time     `bson:"created_at" json:"createdAt"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
