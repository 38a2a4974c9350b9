package repos

import (
	"context"
	"errors"

	"social-network/internal/models"
)

// Sentinel errors translated to HTTP statuses by the handlers.
var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

// UserUpdate carries the mutable profile fields; nil means "leave as is".
type UserUpdate struct {
	Email        *string
	Image        *string
	Online       *bool
	PasswordHash *string
}

// UserRepo defines access to user accounts and the friend graph.
type UserRepo interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, username string, upd UserUpdate) (*models.User, error)
	DeleteUser(ctx context.Context, username string) error
	AddFriend(ctx context.Context, a, b string) error
	Directory(ctx context.Context, page, limit int) ([]models.DirectoryEntry, int, error)
}

// PostRepo defines access to blog posts.
type PostRepo interface {
	CreatePost(ctx context.Context, p *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	ListPosts(ctx context.Context, author string, page, limit int) ([]models.Post, error)
	// ReactPost applies a like (isLike) or dislike idempotently per user:
	// repeating the same action is a no-op. Returns the resulting counters.
	ReactPost(ctx context.Context, id string, username string, isLike bool) (*models.ReactionResult, error)
	DeletePost(ctx context.Context, id string) error
	// DeletePostsByAuthor removes all posts by author and returns their IDs
	// so the caller can cascade to comments.
	DeletePostsByAuthor(ctx context.Context, author string) ([]string, error)
}

// CommentRepo defines access to comments and their embedded replies.
type CommentRepo interface {
	CreateComment(ctx context.Context, c *models.Comment) error
	GetCommentByID(ctx context.Context, id string) (*models.Comment, error)
	ListCommentsByPost(ctx context.Context, postID string) ([]models.Comment, error)
	AddReply(ctx context.Context, commentID string, reply models.Reply) (*models.Comment, error)
	ReactComment(ctx context.Context, id string, username string, isLike bool) (*models.ReactionResult, error)
	DeleteCommentsByPosts(ctx context.Context, postIDs []string) error
	// DeleteCommentsByAuthor removes comments written by author and strips
	// their replies from the comments that remain.
	DeleteCommentsByAuthor(ctx context.Context, author string) error
}

// MessageRepo defines access to direct messages.
type MessageRepo interface {
	CreateMessage(ctx context.Context, m *models.Message) error
	GetMessageByID(ctx context.Context, id string) (*models.Message, error)
	MessagesBetween(ctx context.Context, a, b string, limit int) ([]models.Message, error)
	UpdateMessageContent(ctx context.Context, id, content string) (*models.Message, error)
	DeleteMessage(ctx context.Context, id string) error
	DeleteMessagesByUser(ctx context.Context, username string) error
}

// EmojiRepo serves the static picker reference data.
type EmojiRepo interface {
	ListEmojis(ctx context.Context) ([]models.Emoji, error)
	SeedEmojis(ctx context.Context, emojis []models.Emoji) error
}

// Repos groups repository interfaces for convenience.
type Repos struct {
	Users    UserRepo
	Posts    PostRepo
	Comments CommentRepo
	Messages MessageRepo
	Emojis   EmojiRepo
}
