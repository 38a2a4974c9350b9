package handlers

import (
	"net/http"
	"testing"
)

func createPost(t *testing.T, e *testEnv, token, title string) string {
	t.Helper()

	resp := e.do(http.MethodPost, "/api/posts", token, map[string]string{
		"title":   title,
		"content": "Some content for " + title,
	})
	wantStatus(t, resp, http.StatusCreated)

	var body struct {
		Post struct {
			ID string `json:"id"`
		} `json:"post"`
	}
	decodeBody(t, resp, &body)
	if body.Post.ID == "" {
		t.Fatal("post id missing from response")
	}
	return body.Post.ID
}

func TestCreateAndListPosts(t *testing.T) {
	e := newTestEnv(t)
	alice := e.signup("alice")
	bob := e.signup("bob")

	createPost(t, e, alice, "Hello world")
	createPost(t, e, bob, "Another one")

	resp := e.do(http.MethodGet, "/api/posts", alice, nil)
	wantStatus(t, resp, http.StatusOK)
	var all []struct {
		Author string `json:"author"`
	}
	decodeBody(t, resp, &all)
	if len(all) != 2 {
		t.Fatalf("post count = %d", len(all))
	}

	resp = e.do(http.MethodGet, "/api/posts?author=bob", alice, nil)
	wantStatus(t, resp, http.StatusOK)
	var filtered []struct {
		Author string `json:"author"`
	}
	decodeBody(t, resp, &filtered)
	if len(filtered) != 1 || filtered[0].Author != "bob" {
		t.Errorf("filtered = %v", filtered)
	}
}

func TestCreatePostValidation(t *testing.T) {
	e := newTestEnv(t)
	alice := e.signup("alice")

	resp := e.do(http.MethodPost, "/api/posts", alice, map[string]string{
		"title":   "ab",
		"content": "too short a title",
	})
	wantStatus(t, resp, http.StatusBadRequest)
	resp.Body.Close()

	// posting as someone else is forbidden
	resp = e.do(http.MethodPost, "/api/posts", alice, map[string]string{
		"title":   "Valid title",
		"content": "content",
		"author":  "bob",
	})
	wantStatus(t, resp, http.StatusForbidden)
	resp.Body.Close()
}

func TestReactPostIdempotency(t *testing.T) {
	e := newTestEnv(t)
	alice := e.signup("alice")
	bob := e.signup("bob")
	id := createPost(t, e, alice, "React to me")

	react := func(token, action string) (likes, dislikes int) {
		resp := e.do(http.MethodPatch, "/api/posts/"+id, token, map[string]string{"action": action})
		wantStatus(t, resp, http.StatusOK)
		var body struct {
			Likes    int `json:"likes"`
			Dislikes int `json:"dislikes"`
		}
		decodeBody(t, resp, &body)
		return body.Likes, body.Dislikes
	}

	if likes, _ := react(bob, "like"); likes != 1 {
		t.Errorf("first like: likes = %d", likes)
	}
	// repeating the action does not double-count
	if likes, _ := react(bob, "like"); likes != 1 {
		t.Errorf("second like: likes = %d", likes)
	}
	if likes, _ := react(alice, "like"); likes != 2 {
		t.Errorf("second user like: likes = %d", likes)
	}
	if _, dislikes := react(bob, "dislike"); dislikes != 1 {
		t.Errorf("dislike: dislikes = %d", dislikes)
	}

	resp := e.do(http.MethodGet, "/api/posts/"+id, alice, nil)
	wantStatus(t, resp, http.StatusOK)
	var post struct {
		Likes   int      `json:"likes"`
		LikedBy []string `json:"likedBy"`
	}
	decodeBody(t, resp, &post)
	if post.Likes != 2 || len(post.LikedBy) != 2 {
		t.Errorf("post after reactions: likes=%d likedBy=%v", post.Likes, post.LikedBy)
	}
}

func TestReactPostBadAction(t *testing.T) {
	e := newTestEnv(t)
	alice := e.signup("alice")
	id := createPost(t, e, alice, "A post")

	resp := e.do(http.MethodPatch, "/api/posts/"+id, alice, map[string]string{"action": "love"})
	wantStatus(t, resp, http.StatusBadRequest)
	resp.Body.Close()
}

func TestDeletePostAuthorization(t *testing.T) {
	e := newTestEnv(t)
	alice := e.signup("alice")
	bob := e.signup("bob")
	admin := e.signup("admin")
	id := createPost(t, e, alice, "Protected")

	resp := e.do(http.MethodDelete, "/api/posts/"+id, bob, nil)
	wantStatus(t, resp, http.StatusForbidden)
	resp.Body.Close()

	// the admin account may delete anyone's post
	resp = e.do(http.MethodDelete, "/api/posts/"+id, admin, nil)
	wantStatus(t, resp, http.StatusNoContent)
	resp.Body.Close()

	resp = e.do(http.MethodGet, "/api/posts/"+id, alice, nil)
	wantStatus(t, resp, http.StatusNotFound)
	resp.Body.Close()
}

func TestDeletePostCascadesComments(t *testing.T) {
	e := newTestEnv(t)
	alice := e.signup("alice")
	id := createPost(t, e, alice, "With comments")

	resp := e.do(http.MethodPost, "/api/comments", alice, map[string]string{
		"postId": id,
		"text":   "first!",
	})
	wantStatus(t, resp, http.StatusCreated)
	resp.Body.Close()

	resp = e.do(http.MethodDelete, "/api/posts/"+id, alice, nil)
	wantStatus(t, resp, http.StatusNoContent)
	resp.Body.Close()

	resp = e.do(http.MethodGet, "/api/comments?postId="+id, alice, nil)
	wantStatus(t, resp, http.StatusOK)
	var comments []struct{}
	decodeBody(t, resp, &comments)
	if len(comments) != 0 {
		t.Errorf("comments survived post deletion: %d", len(comments))
	}
}

func TestCommentsAndReplies(t *testing.T) {
	e := newTestEnv(t)
	alice := e.signup("alice")
	bob := e.signup("bob")
	postID := createPost(t, e, alice, "Discuss")

	resp := e.do(http.MethodPost, "/api/comments", bob, map[string]string{
		"postId": postID,
		"text":   "interesting",
	})
	wantStatus(t, resp, http.StatusCreated)
	var comment struct {
		ID string `json:"id"`
	}
	decodeBody(t, resp, &comment)

	// reply to the comment
	resp = e.do(http.MethodPost, "/api/comments", alice, map[string]string{
		"commentId": comment.ID,
		"text":      "thanks",
	})
	wantStatus(t, resp, http.StatusCreated)
	var withReply struct {
		Replies []struct {
			Author string `json:"author"`
			Text   string `json:"text"`
		} `json:"replies"`
	}
	decodeBody(t, resp, &withReply)
	if len(withReply.Replies) != 1 || withReply.Replies[0].Author != "alice" {
		t.Errorf("replies = %v", withReply.Replies)
	}

	// comment reactions share the idempotency contract with posts
	resp = e.do(http.MethodPatch, "/api/comments/"+comment.ID, bob, map[string]string{"action": "like"})
	wantStatus(t, resp, http.StatusOK)
	resp.Body.Close()
	resp = e.do(http.MethodPatch, "/api/comments/"+comment.ID, bob, map[string]string{"action": "like"})
	wantStatus(t, resp, http.StatusOK)
	var res struct {
		Likes int `json:"likes"`
	}
	decodeBody(t, resp, &res)
	if res.Likes != 1 {
		t.Errorf("comment likes = %d", res.Likes)
	}
}

func TestCommentOnUnknownPost(t *testing.T) {
	e := newTestEnv(t)
	alice := e.signup("alice")

	resp := e.do(http.MethodPost, "/api/comments", alice, map[string]string{
		"postId": "65b000000000000000000000",
		"text":   "hello?",
	})
	wantStatus(t, resp, http.StatusNotFound)
	resp.Body.Close()
}
