package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a registered account. Friends hold usernames by value,
// mirrored on both sides when a friendship is created.
type User struct {
	ID           primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	Username     string             `json:"username" bson:"username"`
	Email        string             `json:"email" bson:"email"`
	PasswordHash string             `json:"-" bson:"password"`
	Image        string             `json:"image,omitempty" bson:"image,omitempty"`
	Friends      []string           `json:"friends" bson:"friends"`
	Online       bool               `json:"online" bson:"online"`
	CreatedAt    time.Time          `json:"created_at" bson:"createdAt"`
}

// Post is a blog entry. LikedBy/DislikedBy are membership sets; the
// counters are kept in step with them by the repository layer.
type Post struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Title      string             `json:"title" bson:"title"`
	Content    string             `json:"content" bson:"content"`
	Image      string             `json:"image,omitempty" bson:"image,omitempty"`
	Author     string             `json:"author" bson:"author"`
	Likes      int                `json:"likes" bson:"likes"`
	Dislikes   int                `json:"dislikes" bson:"dislikes"`
	LikedBy    []string           `json:"likedBy" bson:"likedBy"`
	DislikedBy []string           `json:"dislikedBy" bson:"dislikedBy"`
	CreatedAt  time.Time          `json:"created_at" bson:"createdAt"`
}

// Reply is a flat response embedded in a comment; replies carry no
// reactions of their own.
type Reply struct {
	Author string `json:"author" bson:"author"`
	Text   string `json:"text" bson:"text"`
}

// Comment belongs to a post and embeds its replies.
type Comment struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	PostID     primitive.ObjectID `json:"postId" bson:"postId"`
	Author     string             `json:"author" bson:"author"`
	Text       string             `json:"text" bson:"text"`
	Likes      int                `json:"likes" bson:"likes"`
	Dislikes   int                `json:"dislikes" bson:"dislikes"`
	LikedBy    []string           `json:"likedBy" bson:"likedBy"`
	DislikedBy []string           `json:"dislikedBy" bson:"dislikedBy"`
	Replies    []Reply            `json:"replies" bson:"replies"`
	CreatedAt  time.Time          `json:"created_at" bson:"createdAt"`
}

// Message kinds.
const (
	MessageText  = "text"
	MessageImage = "image"
	MessageFile  = "file"
)

// Message is a direct message between two users. Image and file messages
// carry a base64 payload in Content plus the original FileName.
type Message struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	From      string             `json:"from" bson:"from"`
	To        string             `json:"to" bson:"to"`
	Type      string             `json:"type" bson:"type"`
	Content   string             `json:"content" bson:"content"`
	FileName  string             `json:"fileName,omitempty" bson:"fileName,omitempty"`
	CreatedAt time.Time          `json:"created_at" bson:"createdAt"`
}

// Emoji is static picker reference data, seeded at startup.
type Emoji struct {
	ID        primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	Shortcode string             `json:"shortcode" bson:"shortcode"`
	Unicode   string             `json:"unicode" bson:"unicode"`
	Category  string             `json:"category" bson:"category"`
	SortOrder int                `json:"sortOrder" bson:"sortOrder"`
}

// DirectoryEntry is one row of the paginated user directory.
type DirectoryEntry struct {
	Username    string `json:"username"`
	Image       string `json:"image,omitempty"`
	Online      bool   `json:"online"`
	FriendCount int    `json:"friend_count"`
}

// ReactionResult reports post/comment counters after a like or dislike.
type ReactionResult struct {
	Likes    int `json:"likes"`
	Dislikes int `json:"dislikes"`
}
