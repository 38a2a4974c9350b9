package repos

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"social-network/internal/models"
)

func seedUser(t *testing.T, r *Repos, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com", PasswordHash: "hash"}
	if err := r.Users.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u
}

func seedPost(t *testing.T, r *Repos, author, title string) *models.Post {
	t.Helper()
	p := &models.Post{Title: title, Content: "content", Author: author}
	if err := r.Posts.CreatePost(context.Background(), p); err != nil {
		t.Fatalf("create post: %v", err)
	}
	return p
}

func TestCreateUserDuplicates(t *testing.T) {
	r := NewMemoryRepos()
	ctx := context.Background()

	seedUser(t, r, "alice")

	err := r.Users.CreateUser(ctx, &models.User{Username: "alice", Email: "other@example.com"})
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate username: got %v", err)
	}

	err = r.Users.CreateUser(ctx, &models.User{Username: "bob", Email: "alice@example.com"})
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate email: got %v", err)
	}
}

func TestGetUserNotFound(t *testing.T) {
	r := NewMemoryRepos()
	if _, err := r.Users.GetUserByUsername(context.Background(), "ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v", err)
	}
}

func TestReactPostIdempotent(t *testing.T) {
	r := NewMemoryRepos()
	ctx := context.Background()
	p := seedPost(t, r, "alice", "Hello")

	res, err := r.Posts.ReactPost(ctx, p.ID.Hex(), "bob", true)
	if err != nil {
		t.Fatal(err)
	}
	if res.Likes != 1 {
		t.Errorf("first like: likes = %d", res.Likes)
	}

	// liking again is a no-op
	res, err = r.Posts.ReactPost(ctx, p.ID.Hex(), "bob", true)
	if err != nil {
		t.Fatal(err)
	}
	if res.Likes != 1 {
		t.Errorf("second like: likes = %d", res.Likes)
	}

	got, err := r.Posts.GetPostByID(ctx, p.ID.Hex())
	if err != nil {
		t.Fatal(err)
	}
	if len(got.LikedBy) != 1 || got.LikedBy[0] != "bob" {
		t.Errorf("likedBy = %v", got.LikedBy)
	}

	// a dislike from the same user is tracked independently
	res, err = r.Posts.ReactPost(ctx, p.ID.Hex(), "bob", false)
	if err != nil {
		t.Fatal(err)
	}
	if res.Likes != 1 || res.Dislikes != 1 {
		t.Errorf("after dislike: %+v", res)
	}
}

func TestReactPostNotFound(t *testing.T) {
	r := NewMemoryRepos()
	id := primitive.NewObjectID().Hex()
	if _, err := r.Posts.ReactPost(context.Background(), id, "bob", true); !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v", err)
	}
}

func TestAddFriendSymmetric(t *testing.T) {
	r := NewMemoryRepos()
	ctx := context.Background()
	seedUser(t, r, "alice")
	seedUser(t, r, "bob")

	if err := r.Users.AddFriend(ctx, "alice", "bob"); err != nil {
		t.Fatal(err)
	}
	// adding again must not duplicate
	if err := r.Users.AddFriend(ctx, "alice", "bob"); err != nil {
		t.Fatal(err)
	}

	alice, _ := r.Users.GetUserByUsername(ctx, "alice")
	bob, _ := r.Users.GetUserByUsername(ctx, "bob")

	if len(alice.Friends) != 1 || alice.Friends[0] != "bob" {
		t.Errorf("alice.Friends = %v", alice.Friends)
	}
	if len(bob.Friends) != 1 || bob.Friends[0] != "alice" {
		t.Errorf("bob.Friends = %v", bob.Friends)
	}

	if err := r.Users.AddFriend(ctx, "alice", "ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown friend: got %v", err)
	}
}

func TestDeleteUserStripsFriendships(t *testing.T) {
	r := NewMemoryRepos()
	ctx := context.Background()
	seedUser(t, r, "alice")
	seedUser(t, r, "bob")
	r.Users.AddFriend(ctx, "alice", "bob")

	if err := r.Users.DeleteUser(ctx, "bob"); err != nil {
		t.Fatal(err)
	}

	alice, _ := r.Users.GetUserByUsername(ctx, "alice")
	if len(alice.Friends) != 0 {
		t.Errorf("alice.Friends = %v", alice.Friends)
	}
}

func TestDirectoryPagination(t *testing.T) {
	r := NewMemoryRepos()
	ctx := context.Background()
	for _, name := range []string{"ann", "ben", "cat", "dan", "eve"} {
		seedUser(t, r, name)
	}

	entries, total, err := r.Users.Directory(ctx, 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if total != 5 {
		t.Errorf("total = %d", total)
	}
	if len(entries) != 2 || entries[0].Username != "ann" || entries[1].Username != "ben" {
		t.Errorf("page 1 = %v", entries)
	}

	entries, _, _ = r.Users.Directory(ctx, 3, 2)
	if len(entries) != 1 || entries[0].Username != "eve" {
		t.Errorf("page 3 = %v", entries)
	}

	entries, _, _ = r.Users.Directory(ctx, 9, 2)
	if len(entries) != 0 {
		t.Errorf("out-of-range page = %v", entries)
	}
}

func TestListPostsByAuthor(t *testing.T) {
	r := NewMemoryRepos()
	ctx := context.Background()
	seedPost(t, r, "alice", "First")
	seedPost(t, r, "bob", "Second")

	posts, err := r.Posts.ListPosts(ctx, "alice", 1, 20)
	if err != nil {
		t.Fatal(err)
	}
	if len(posts) != 1 || posts[0].Author != "alice" {
		t.Errorf("posts = %v", posts)
	}

	all, _ := r.Posts.ListPosts(ctx, "", 1, 20)
	if len(all) != 2 {
		t.Errorf("unfiltered count = %d", len(all))
	}
}

func TestCommentsAndReplies(t *testing.T) {
	r := NewMemoryRepos()
	ctx := context.Background()
	p := seedPost(t, r, "alice", "Post")

	c := &models.Comment{PostID: p.ID, Author: "bob", Text: "nice"}
	if err := r.Comments.CreateComment(ctx, c); err != nil {
		t.Fatal(err)
	}

	updated, err := r.Comments.AddReply(ctx, c.ID.Hex(), models.Reply{Author: "alice", Text: "thanks"})
	if err != nil {
		t.Fatal(err)
	}
	if len(updated.Replies) != 1 || updated.Replies[0].Author != "alice" {
		t.Errorf("replies = %v", updated.Replies)
	}

	list, err := r.Comments.ListCommentsByPost(ctx, p.ID.Hex())
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Errorf("comment count = %d", len(list))
	}
}

func TestDeleteCommentsByAuthorStripsReplies(t *testing.T) {
	r := NewMemoryRepos()
	ctx := context.Background()
	p := seedPost(t, r, "alice", "Post")

	c := &models.Comment{PostID: p.ID, Author: "alice", Text: "hi"}
	r.Comments.CreateComment(ctx, c)
	r.Comments.AddReply(ctx, c.ID.Hex(), models.Reply{Author: "bob", Text: "hello"})
	r.Comments.AddReply(ctx, c.ID.Hex(), models.Reply{Author: "carol", Text: "hey"})

	if err := r.Comments.DeleteCommentsByAuthor(ctx, "bob"); err != nil {
		t.Fatal(err)
	}

	got, _ := r.Comments.GetCommentByID(ctx, c.ID.Hex())
	if len(got.Replies) != 1 || got.Replies[0].Author != "carol" {
		t.Errorf("replies after strip = %v", got.Replies)
	}

	// deleting the comment author removes the whole comment
	r.Comments.DeleteCommentsByAuthor(ctx, "alice")
	if _, err := r.Comments.GetCommentByID(ctx, c.ID.Hex()); !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v", err)
	}
}

func TestDeletePostsByAuthorCascade(t *testing.T) {
	r := NewMemoryRepos()
	ctx := context.Background()
	p1 := seedPost(t, r, "alice", "One")
	p2 := seedPost(t, r, "alice", "Two")
	seedPost(t, r, "bob", "Keep")

	c := &models.Comment{PostID: p1.ID, Author: "bob", Text: "hi"}
	r.Comments.CreateComment(ctx, c)

	ids, err := r.Posts.DeletePostsByAuthor(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 {
		t.Fatalf("deleted ids = %v", ids)
	}
	if err := r.Comments.DeleteCommentsByPosts(ctx, ids); err != nil {
		t.Fatal(err)
	}

	if _, err := r.Posts.GetPostByID(ctx, p2.ID.Hex()); !errors.Is(err, ErrNotFound) {
		t.Errorf("post should be gone, got %v", err)
	}
	if _, err := r.Comments.GetCommentByID(ctx, c.ID.Hex()); !errors.Is(err, ErrNotFound) {
		t.Errorf("comment should be gone, got %v", err)
	}

	remaining, _ := r.Posts.ListPosts(ctx, "", 1, 20)
	if len(remaining) != 1 || remaining[0].Author != "bob" {
		t.Errorf("remaining = %v", remaining)
	}
}

func TestMessagesBetween(t *testing.T) {
	r := NewMemoryRepos()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		m := &models.Message{From: "alice", To: "bob", Type: models.MessageText, Content: "hi"}
		if err := r.Messages.CreateMessage(ctx, m); err != nil {
			t.Fatal(err)
		}
	}
	r.Messages.CreateMessage(ctx, &models.Message{From: "bob", To: "alice", Type: models.MessageText, Content: "yo"})
	r.Messages.CreateMessage(ctx, &models.Message{From: "alice", To: "carol", Type: models.MessageText, Content: "psst"})

	msgs, err := r.Messages.MessagesBetween(ctx, "alice", "bob", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 4 {
		t.Errorf("conversation length = %d", len(msgs))
	}

	limited, _ := r.Messages.MessagesBetween(ctx, "alice", "bob", 2)
	if len(limited) != 2 {
		t.Errorf("limited length = %d", len(limited))
	}
}

func TestUpdateAndDeleteMessage(t *testing.T) {
	r := NewMemoryRepos()
	ctx := context.Background()

	m := &models.Message{From: "alice", To: "bob", Type: models.MessageText, Content: "draft"}
	r.Messages.CreateMessage(ctx, m)

	updated, err := r.Messages.UpdateMessageContent(ctx, m.ID.Hex(), "final")
	if err != nil {
		t.Fatal(err)
	}
	if updated.Content != "final" {
		t.Errorf("content = %q", updated.Content)
	}

	if err := r.Messages.DeleteMessage(ctx, m.ID.Hex()); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Messages.GetMessageByID(ctx, m.ID.Hex()); !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v", err)
	}
}

func TestDeleteMessagesByUser(t *testing.T) {
	r := NewMemoryRepos()
	ctx := context.Background()

	r.Messages.CreateMessage(ctx, &models.Message{From: "alice", To: "bob", Content: "1"})
	r.Messages.CreateMessage(ctx, &models.Message{From: "carol", To: "alice", Content: "2"})
	keep := &models.Message{From: "bob", To: "carol", Content: "3"}
	r.Messages.CreateMessage(ctx, keep)

	if err := r.Messages.DeleteMessagesByUser(ctx, "alice"); err != nil {
		t.Fatal(err)
	}

	if _, err := r.Messages.GetMessageByID(ctx, keep.ID.Hex()); err != nil {
		t.Errorf("unrelated message should survive: %v", err)
	}
	msgs, _ := r.Messages.MessagesBetween(ctx, "alice", "bob", 10)
	if len(msgs) != 0 {
		t.Errorf("alice's messages should be gone, got %d", len(msgs))
	}
}

func TestSeedEmojisIdempotent(t *testing.T) {
	r := NewMemoryRepos()
	ctx := context.Background()

	seed := []models.Emoji{
		{Shortcode: "smile", Unicode: "\U0001F604", Category: "smileys", SortOrder: 1},
		{Shortcode: "wave", Unicode: "\U0001F44B", Category: "gestures", SortOrder: 1},
	}
	if err := r.Emojis.SeedEmojis(ctx, seed); err != nil {
		t.Fatal(err)
	}
	if err := r.Emojis.SeedEmojis(ctx, seed); err != nil {
		t.Fatal(err)
	}

	emojis, err := r.Emojis.ListEmojis(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(emojis) != 2 {
		t.Errorf("emoji count = %d", len(emojis))
	}
	// sorted by category, then sort order
	if emojis[0].Shortcode != "wave" {
		t.Errorf("order = %v", emojis)
	}
}
