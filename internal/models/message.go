package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Message is immutable after creation except for the delivered/seen flags
// and the per-viewer DeletedBy set.
type Message struct {
	ID          bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Room        string        `bson:"room" json:"room"`
	Sender      string        `bson:"sender" json:"sender"`
	Receiver    string        `bson:"receiver,omitempty" json:"receiver,omitempty"`
	Text        string        `bson:"text,omitempty" json:"text,omitempty"`
	Media       string        `bson:"media,omitempty" json:"media,omitempty"`
	Seq         int64         `bson:"seq" json:"seq"`
	Delivered   bool          `bson:"delivered" json:"delivered"`
	Seen        bool          `bson:"seen" json:"seen"`
	DeliveredAt *time.Time    `bson:"delivered_at,omitempty" json:"deliveredAt,omitempty"`
	SeenAt      *time.Time    `bson:"seen_at,omitempty" json:"seenAt,omitempty"`
	DeletedBy   []string      `bson:"deleted_by,omitempty" json:"-"`
	CreatedAt   time.Time     `bson:"created_at" json:"createdAt"`
}

// HiddenFor reports whether the message was soft-deleted by the given user.
func (m *Message) HiddenFor(user string) bool {
	for _, u := range m.DeletedBy {
		if u == user {
			return true
		}
	}
	return false
}
