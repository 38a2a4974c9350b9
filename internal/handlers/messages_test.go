package handlers

import (
	"net/http"
	"testing"
)

func sendMessage(t *testing.T, e *testEnv, token, to, content string) string {
	t.Helper()

	resp := e.do(http.MethodPost, "/api/messages", token, map[string]string{
		"to":      to,
		"content": content,
	})
	wantStatus(t, resp, http.StatusCreated)

	var msg struct {
		ID   string `json:"id"`
		Type string `json:"type"`
	}
	decodeBody(t, resp, &msg)
	if msg.Type != "text" {
		t.Errorf("default type = %q", msg.Type)
	}
	return msg.ID
}

func TestMessageConversation(t *testing.T) {
	e := newTestEnv(t)
	alice := e.signup("alice")
	bob := e.signup("bob")
	carol := e.signup("carol")

	sendMessage(t, e, alice, "bob", "hi bob")
	sendMessage(t, e, bob, "alice", "hi alice")
	sendMessage(t, e, alice, "carol", "unrelated")

	resp := e.do(http.MethodGet, "/api/messages?user1=alice&user2=bob", alice, nil)
	wantStatus(t, resp, http.StatusOK)
	var msgs []struct {
		From string `json:"from"`
		To   string `json:"to"`
	}
	decodeBody(t, resp, &msgs)
	if len(msgs) != 2 {
		t.Errorf("conversation length = %d", len(msgs))
	}

	// a third party cannot read the conversation
	resp = e.do(http.MethodGet, "/api/messages?user1=alice&user2=bob", carol, nil)
	wantStatus(t, resp, http.StatusForbidden)
	resp.Body.Close()
}

func TestMessageToUnknownRecipient(t *testing.T) {
	e := newTestEnv(t)
	alice := e.signup("alice")

	resp := e.do(http.MethodPost, "/api/messages", alice, map[string]string{
		"to":      "ghost",
		"content": "anyone there?",
	})
	wantStatus(t, resp, http.StatusNotFound)
	resp.Body.Close()
}

func TestMessageValidation(t *testing.T) {
	e := newTestEnv(t)
	alice := e.signup("alice")
	e.signup("bob")

	resp := e.do(http.MethodPost, "/api/messages", alice, map[string]string{
		"to":      "bob",
		"content": "   ",
	})
	wantStatus(t, resp, http.StatusBadRequest)
	resp.Body.Close()

	resp = e.do(http.MethodPost, "/api/messages", alice, map[string]string{
		"to":      "bob",
		"type":    "video",
		"content": "clip",
	})
	wantStatus(t, resp, http.StatusBadRequest)
	resp.Body.Close()
}

func TestUpdateMessageSenderOnly(t *testing.T) {
	e := newTestEnv(t)
	alice := e.signup("alice")
	bob := e.signup("bob")
	id := sendMessage(t, e, alice, "bob", "draft")

	// the recipient cannot edit
	resp := e.do(http.MethodPut, "/api/messages/"+id, bob, map[string]string{"content": "hijacked"})
	wantStatus(t, resp, http.StatusForbidden)
	resp.Body.Close()

	resp = e.do(http.MethodPut, "/api/messages/"+id, alice, map[string]string{"content": "final"})
	wantStatus(t, resp, http.StatusOK)
	var updated struct {
		Content string `json:"content"`
	}
	decodeBody(t, resp, &updated)
	if updated.Content != "final" {
		t.Errorf("content = %q", updated.Content)
	}
}

func TestDeleteMessageSenderOnly(t *testing.T) {
	e := newTestEnv(t)
	alice := e.signup("alice")
	bob := e.signup("bob")
	id := sendMessage(t, e, alice, "bob", "oops")

	resp := e.do(http.MethodDelete, "/api/messages/"+id, bob, nil)
	wantStatus(t, resp, http.StatusForbidden)
	resp.Body.Close()

	resp = e.do(http.MethodDelete, "/api/messages/"+id, alice, nil)
	wantStatus(t, resp, http.StatusNoContent)
	resp.Body.Close()

	resp = e.do(http.MethodGet, "/api/messages?user1=alice&user2=bob", alice, nil)
	wantStatus(t, resp, http.StatusOK)
	var msgs []struct{}
	decodeBody(t, resp, &msgs)
	if len(msgs) != 0 {
		t.Errorf("messages after delete = %d", len(msgs))
	}
}
