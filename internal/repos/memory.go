package repos

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"social-network/internal/models"
)

// MemoryAdapter is a mutex-guarded in-process implementation of every
// repository interface. It backs dev mode (no MONGODB_URI configured) and
// the handler tests, and mirrors the Mongo adapter's semantics, including
// reaction idempotency and cascade behavior.
type MemoryAdapter struct {
	mu       sync.RWMutex
	users    map[string]*models.User    // keyed by username
	posts    map[string]*models.Post    // keyed by hex ObjectID
	comments map[string]*models.Comment // keyed by hex ObjectID
	messages map[string]*models.Message // keyed by hex ObjectID
	emojis   map[string]*models.Emoji   // keyed by shortcode
}

func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{
		users:    make(map[string]*models.User),
		posts:    make(map[string]*models.Post),
		comments: make(map[string]*models.Comment),
		messages: make(map[string]*models.Message),
		emojis:   make(map[string]*models.Emoji),
	}
}

// NewMemoryRepos wires one adapter into the Repos bundle.
func NewMemoryRepos() *Repos {
	a := NewMemoryAdapter()
	return &Repos{Users: a, Posts: a, Comments: a, Messages: a, Emojis: a}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func remove(list []string, s string) []string {
	out := list[:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}

func copyUser(u *models.User) *models.User {
	c := *u
	c.Friends = append([]string(nil), u.Friends...)
	return &c
}

func copyPost(p *models.Post) *models.Post {
	c := *p
	c.LikedBy = append([]string(nil), p.LikedBy...)
	c.DislikedBy = append([]string(nil), p.DislikedBy...)
	return &c
}

func copyComment(cm *models.Comment) *models.Comment {
	c := *cm
	c.LikedBy = append([]string(nil), cm.LikedBy...)
	c.DislikedBy = append([]string(nil), cm.DislikedBy...)
	c.Replies = append([]models.Reply(nil), cm.Replies...)
	return &c
}

//
// ===================== USERS =====================
//

func (a *MemoryAdapter) CreateUser(_ context.Context, u *models.User) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.users[u.Username]; ok {
		return ErrDuplicate
	}
	for _, other := range a.users {
		if other.Email == u.Email {
			return ErrDuplicate
		}
	}

	u.ID = primitive.NewObjectID()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	if u.Friends == nil {
		u.Friends = []string{}
	}
	a.users[u.Username] = copyUser(u)
	return nil
}

func (a *MemoryAdapter) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	u, ok := a.users[username]
	if !ok {
		return nil, ErrNotFound
	}
	return copyUser(u), nil
}

func (a *MemoryAdapter) ListUsers(_ context.Context) ([]models.User, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]models.User, 0, len(a.users))
	for _, u := range a.users {
		out = append(out, *copyUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (a *MemoryAdapter) UpdateUser(_ context.Context, username string, upd UserUpdate) (*models.User, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	u, ok := a.users[username]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	if upd.Image != nil {
		u.Image = *upd.Image
	}
	if upd.Online != nil {
		u.Online = *upd.Online
	}
	if upd.PasswordHash != nil {
		u.PasswordHash = *upd.PasswordHash
	}
	return copyUser(u), nil
}

func (a *MemoryAdapter) DeleteUser(_ context.Context, username string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.users[username]; !ok {
		return ErrNotFound
	}
	delete(a.users, username)
	for _, u := range a.users {
		u.Friends = remove(u.Friends, username)
	}
	return nil
}

func (a *MemoryAdapter) AddFriend(_ context.Context, x, y string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	ux, ok := a.users[x]
	if !ok {
		return ErrNotFound
	}
	uy, ok := a.users[y]
	if !ok {
		return ErrNotFound
	}
	if !contains(ux.Friends, y) {
		ux.Friends = append(ux.Friends, y)
	}
	if !contains(uy.Friends, x) {
		uy.Friends = append(uy.Friends, x)
	}
	return nil
}

func (a *MemoryAdapter) Directory(_ context.Context, page, limit int) ([]models.DirectoryEntry, int, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	usernames := make([]string, 0, len(a.users))
	for name := range a.users {
		usernames = append(usernames, name)
	}
	sort.Strings(usernames)

	total := len(usernames)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	entries := make([]models.DirectoryEntry, 0, end-start)
	for _, name := range usernames[start:end] {
		u := a.users[name]
		entries = append(entries, models.DirectoryEntry{
			Username:    u.Username,
			Image:       u.Image,
			Online:      u.Online,
			FriendCount: len(u.Friends),
		})
	}
	return entries, total, nil
}

//
// ===================== POSTS =====================
//

func (a *MemoryAdapter) CreatePost(_ context.Context, p *models.Post) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	p.ID = primitive.NewObjectID()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if p.LikedBy == nil {
		p.LikedBy = []string{}
	}
	if p.DislikedBy == nil {
		p.DislikedBy = []string{}
	}
	a.posts[p.ID.Hex()] = copyPost(p)
	return nil
}

func (a *MemoryAdapter) GetPostByID(_ context.Context, id string) (*models.Post, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	p, ok := a.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyPost(p), nil
}

func (a *MemoryAdapter) ListPosts(_ context.Context, author string, page, limit int) ([]models.Post, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]models.Post, 0, len(a.posts))
	for _, p := range a.posts {
		if author != "" && p.Author != author {
			continue
		}
		out = append(out, *copyPost(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	if limit > 0 {
		start := (page - 1) * limit
		if start > len(out) {
			start = len(out)
		}
		end := start + limit
		if end > len(out) {
			end = len(out)
		}
		out = out[start:end]
	}
	return out, nil
}

func (a *MemoryAdapter) ReactPost(_ context.Context, id string, username string, isLike bool) (*models.ReactionResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	p, ok := a.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	if isLike {
		if !contains(p.LikedBy, username) {
			p.LikedBy = append(p.LikedBy, username)
			p.Likes++
		}
	} else {
		if !contains(p.DislikedBy, username) {
			p.DislikedBy = append(p.DislikedBy, username)
			p.Dislikes++
		}
	}
	return &models.ReactionResult{Likes: p.Likes, Dislikes: p.Dislikes}, nil
}

func (a *MemoryAdapter) DeletePost(_ context.Context, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.posts[id]; !ok {
		return ErrNotFound
	}
	delete(a.posts, id)
	return nil
}

func (a *MemoryAdapter) DeletePostsByAuthor(_ context.Context, author string) ([]string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var ids []string
	for id, p := range a.posts {
		if p.Author == author {
			ids = append(ids, id)
			delete(a.posts, id)
		}
	}
	return ids, nil
}

//
// ===================== COMMENTS =====================
//

func (a *MemoryAdapter) CreateComment(_ context.Context, c *models.Comment) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	c.ID = primitive.NewObjectID()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	if c.LikedBy == nil {
		c.LikedBy = []string{}
	}
	if c.DislikedBy == nil {
		c.DislikedBy = []string{}
	}
	if c.Replies == nil {
		c.Replies = []models.Reply{}
	}
	a.comments[c.ID.Hex()] = copyComment(c)
	return nil
}

func (a *MemoryAdapter) GetCommentByID(_ context.Context, id string) (*models.Comment, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	c, ok := a.comments[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyComment(c), nil
}

func (a *MemoryAdapter) ListCommentsByPost(_ context.Context, postID string) ([]models.Comment, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var out []models.Comment
	for _, c := range a.comments {
		if c.PostID.Hex() == postID {
			out = append(out, *copyComment(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (a *MemoryAdapter) AddReply(_ context.Context, commentID string, reply models.Reply) (*models.Comment, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	c, ok := a.comments[commentID]
	if !ok {
		return nil, ErrNotFound
	}
	c.Replies = append(c.Replies, reply)
	return copyComment(c), nil
}

func (a *MemoryAdapter) ReactComment(_ context.Context, id string, username string, isLike bool) (*models.ReactionResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	c, ok := a.comments[id]
	if !ok {
		return nil, ErrNotFound
	}
	if isLike {
		if !contains(c.LikedBy, username) {
			c.LikedBy = append(c.LikedBy, username)
			c.Likes++
		}
	} else {
		if !contains(c.DislikedBy, username) {
			c.DislikedBy = append(c.DislikedBy, username)
			c.Dislikes++
		}
	}
	return &models.ReactionResult{Likes: c.Likes, Dislikes: c.Dislikes}, nil
}

func (a *MemoryAdapter) DeleteCommentsByPosts(_ context.Context, postIDs []string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	for id, c := range a.comments {
		if contains(postIDs, c.PostID.Hex()) {
			delete(a.comments, id)
		}
	}
	return nil
}

func (a *MemoryAdapter) DeleteCommentsByAuthor(_ context.Context, author string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	for id, c := range a.comments {
		if c.Author == author {
			delete(a.comments, id)
			continue
		}
		kept := c.Replies[:0]
		for _, r := range c.Replies {
			if r.Author != author {
				kept = append(kept, r)
			}
		}
		c.Replies = kept
	}
	return nil
}

//
// ===================== MESSAGES =====================
//

func (a *MemoryAdapter) CreateMessage(_ context.Context, m *models.Message) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	m.ID = primitive.NewObjectID()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	c := *m
	a.messages[m.ID.Hex()] = &c
	return nil
}

func (a *MemoryAdapter) GetMessageByID(_ context.Context, id string) (*models.Message, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	m, ok := a.messages[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := *m
	return &c, nil
}

func (a *MemoryAdapter) MessagesBetween(_ context.Context, x, y string, limit int) ([]models.Message, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var out []models.Message
	for _, m := range a.messages {
		if (m.From == x && m.To == y) || (m.From == y && m.To == x) {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (a *MemoryAdapter) UpdateMessageContent(_ context.Context, id, content string) (*models.Message, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	m, ok := a.messages[id]
	if !ok {
		return nil, ErrNotFound
	}
	m.Content = content
	c := *m
	return &c, nil
}

func (a *MemoryAdapter) DeleteMessage(_ context.Context, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.messages[id]; !ok {
		return ErrNotFound
	}
	delete(a.messages, id)
	return nil
}

func (a *MemoryAdapter) DeleteMessagesByUser(_ context.Context, username string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	for id, m := range a.messages {
		if m.From == username || m.To == username {
			delete(a.messages, id)
		}
	}
	return nil
}

//
// ===================== EMOJIS =====================
//

func (a *MemoryAdapter) ListEmojis(_ context.Context) ([]models.Emoji, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]models.Emoji, 0, len(a.emojis))
	for _, e := range a.emojis {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].SortOrder < out[j].SortOrder
	})
	return out, nil
}

func (a *MemoryAdapter) SeedEmojis(_ context.Context, emojis []models.Emoji) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, e := range emojis {
		if _, ok := a.emojis[e.Shortcode]; ok {
			continue
		}
		c := e
		c.ID = primitive.NewObjectID()
		a.emojis[e.Shortcode] = &c
	}
	return nil
}
