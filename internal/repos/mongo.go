package repos

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"social-network/internal/models"
)

// MongoAdapter implements every repository interface on top of a single
// MongoDB database handle.
type MongoAdapter struct {
	users    *mongo.Collection
	posts    *mongo.Collection
	comments *mongo.Collection
	messages *mongo.Collection
	emojis   *mongo.Collection
}

func NewMongoAdapter(db *mongo.Database) *MongoAdapter {
	return &MongoAdapter{
		users:    db.Collection("users"),
		posts:    db.Collection("posts"),
		comments: db.Collection("comments"),
		messages: db.Collection("messages"),
		emojis:   db.Collection("emojis"),
	}
}

// NewMongoRepos wires one adapter into the Repos bundle.
func NewMongoRepos(db *mongo.Database) *Repos {
	a := NewMongoAdapter(db)
	return &Repos{Users: a, Posts: a, Comments: a, Messages: a, Emojis: a}
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		// malformed IDs behave like unknown ones
		return primitive.NilObjectID, ErrNotFound
	}
	return oid, nil
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case err == mongo.ErrNoDocuments:
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicate
	default:
		return err
	}
}

//
// ===================== USERS =====================
//

func (a *MongoAdapter) CreateUser(ctx context.Context, u *models.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	if u.Friends == nil {
		u.Friends = []string{}
	}
	res, err := a.users.InsertOne(ctx, u)
	if err != nil {
		return translate(err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		u.ID = oid
	}
	return nil
}

func (a *MongoAdapter) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := a.users.FindOne(ctx, bson.M{"username": username}).Decode(&u)
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (a *MongoAdapter) ListUsers(ctx context.Context) ([]models.User, error) {
	cur, err := a.users.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "username", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var out []models.User
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *MongoAdapter) UpdateUser(ctx context.Context, username string, upd UserUpdate) (*models.User, error) {
	set := bson.M{}
	if upd.Email != nil {
		set["email"] = *upd.Email
	}
	if upd.Image != nil {
		set["image"] = *upd.Image
	}
	if upd.Online != nil {
		set["online"] = *upd.Online
	}
	if upd.PasswordHash != nil {
		set["password"] = *upd.PasswordHash
	}
	if len(set) == 0 {
		return a.GetUserByUsername(ctx, username)
	}

	var u models.User
	err := a.users.FindOneAndUpdate(ctx,
		bson.M{"username": username},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (a *MongoAdapter) DeleteUser(ctx context.Context, username string) error {
	res, err := a.users.DeleteOne(ctx, bson.M{"username": username})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	// drop the user from everyone's friends list
	_, err = a.users.UpdateMany(ctx, bson.M{}, bson.M{"$pull": bson.M{"friends": username}})
	return err
}

func (a *MongoAdapter) AddFriend(ctx context.Context, x, y string) error {
	for _, username := range []string{x, y} {
		if err := a.users.FindOne(ctx, bson.M{"username": username}).Err(); err != nil {
			return translate(err)
		}
	}
	// $addToSet keeps the relation duplicate-free on both sides
	if _, err := a.users.UpdateOne(ctx, bson.M{"username": x}, bson.M{"$addToSet": bson.M{"friends": y}}); err != nil {
		return err
	}
	_, err := a.users.UpdateOne(ctx, bson.M{"username": y}, bson.M{"$addToSet": bson.M{"friends": x}})
	return err
}

func (a *MongoAdapter) Directory(ctx context.Context, page, limit int) ([]models.DirectoryEntry, int, error) {
	total, err := a.users.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "username", Value: 1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))
	cur, err := a.users.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, err
	}
	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, 0, err
	}

	entries := make([]models.DirectoryEntry, 0, len(users))
	for _, u := range users {
		entries = append(entries, models.DirectoryEntry{
			Username:    u.Username,
			Image:       u.Image,
			Online:      u.Online,
			FriendCount: len(u.Friends),
		})
	}
	return entries, int(total), nil
}

//
// ===================== POSTS =====================
//

func (a *MongoAdapter) CreatePost(ctx context.Context, p *models.Post) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if p.LikedBy == nil {
		p.LikedBy = []string{}
	}
	if p.DislikedBy == nil {
		p.DislikedBy = []string{}
	}
	res, err := a.posts.InsertOne(ctx, p)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		p.ID = oid
	}
	return nil
}

func (a *MongoAdapter) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var p models.Post
	if err := a.posts.FindOne(ctx, bson.M{"_id": oid}).Decode(&p); err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (a *MongoAdapter) ListPosts(ctx context.Context, author string, page, limit int) ([]models.Post, error) {
	filter := bson.M{}
	if author != "" {
		filter["author"] = author
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts.SetSkip(int64((page - 1) * limit)).SetLimit(int64(limit))
	}
	cur, err := a.posts.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var out []models.Post
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ReactPost records a like or dislike for username. The membership check
// and the counter increment land in a single conditional update, so two
// racing requests from the same user cannot double-count.
func (a *MongoAdapter) ReactPost(ctx context.Context, id string, username string, isLike bool) (*models.ReactionResult, error) {
	return reactTo(ctx, a.posts, id, username, isLike, func(doc bson.Raw) *models.ReactionResult {
		var p models.Post
		if err := bson.Unmarshal(doc, &p); err != nil {
			return &models.ReactionResult{}
		}
		return &models.ReactionResult{Likes: p.Likes, Dislikes: p.Dislikes}
	})
}

func (a *MongoAdapter) DeletePost(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	res, err := a.posts.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (a *MongoAdapter) DeletePostsByAuthor(ctx context.Context, author string) ([]string, error) {
	cur, err := a.posts.Find(ctx, bson.M{"author": author},
		options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	var rows []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID.Hex())
	}

	if _, err := a.posts.DeleteMany(ctx, bson.M{"author": author}); err != nil {
		return nil, err
	}
	return ids, nil
}

//
// ===================== COMMENTS =====================
//

func (a *MongoAdapter) CreateComment(ctx context.Context, c *models.Comment) error {
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
	res, err := a.comments.InsertOne(ctx, c)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		c.ID = oid
	}
	return nil
}

func (a *MongoAdapter) GetCommentByID(ctx context.Context, id string) (*models.Comment, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var c models.Comment
	if err := a.comments.FindOne(ctx, bson.M{"_id": oid}).Decode(&c); err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (a *MongoAdapter) ListCommentsByPost(ctx context.Context, postID string) ([]models.Comment, error) {
	oid, err := parseID(postID)
	if err != nil {
		return nil, err
	}
	cur, err := a.comments.Find(ctx, bson.M{"postId": oid},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var out []models.Comment
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *MongoAdapter) AddReply(ctx context.Context, commentID string, reply models.Reply) (*models.Comment, error) {
	oid, err := parseID(commentID)
	if err != nil {
		return nil, err
	}
	var c models.Comment
	err = a.comments.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$push": bson.M{"replies": reply}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&c)
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (a *MongoAdapter) ReactComment(ctx context.Context, id string, username string, isLike bool) (*models.ReactionResult, error) {
	return reactTo(ctx, a.comments, id, username, isLike, func(doc bson.Raw) *models.ReactionResult {
		var c models.Comment
		if err := bson.Unmarshal(doc, &c); err != nil {
			return &models.ReactionResult{}
		}
		return &models.ReactionResult{Likes: c.Likes, Dislikes: c.Dislikes}
	})
}

func (a *MongoAdapter) DeleteCommentsByPosts(ctx context.Context, postIDs []string) error {
	oids := make([]primitive.ObjectID, 0, len(postIDs))
	for _, id := range postIDs {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	if len(oids) == 0 {
		return nil
	}
	_, err := a.comments.DeleteMany(ctx, bson.M{"postId": bson.M{"$in": oids}})
	return err
}

func (a *MongoAdapter) DeleteCommentsByAuthor(ctx context.Context, author string) error {
	if _, err := a.comments.DeleteMany(ctx, bson.M{"author": author}); err != nil {
		return err
	}
	_, err := a.comments.UpdateMany(ctx, bson.M{},
		bson.M{"$pull": bson.M{"replies": bson.M{"author": author}}})
	return err
}

//
// ===================== MESSAGES =====================
//

func (a *MongoAdapter) CreateMessage(ctx context.Context, m *models.Message) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	res, err := a.messages.InsertOne(ctx, m)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		m.ID = oid
	}
	return nil
}

func (a *MongoAdapter) GetMessageByID(ctx context.Context, id string) (*models.Message, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var m models.Message
	if err := a.messages.FindOne(ctx, bson.M{"_id": oid}).Decode(&m); err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

func (a *MongoAdapter) MessagesBetween(ctx context.Context, x, y string, limit int) ([]models.Message, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"from": x, "to": y},
		bson.M{"from": y, "to": x},
	}}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := a.messages.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var out []models.Message
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *MongoAdapter) UpdateMessageContent(ctx context.Context, id, content string) (*models.Message, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var m models.Message
	err = a.messages.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"content": content}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&m)
	if err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

func (a *MongoAdapter) DeleteMessage(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	res, err := a.messages.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (a *MongoAdapter) DeleteMessagesByUser(ctx context.Context, username string) error {
	_, err := a.messages.DeleteMany(ctx, bson.M{"$or": bson.A{
		bson.M{"from": username},
		bson.M{"to": username},
	}})
	return err
}

//
// ===================== EMOJIS =====================
//

func (a *MongoAdapter) ListEmojis(ctx context.Context) ([]models.Emoji, error) {
	cur, err := a.emojis.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "category", Value: 1}, {Key: "sortOrder", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var out []models.Emoji
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *MongoAdapter) SeedEmojis(ctx context.Context, emojis []models.Emoji) error {
	for _, e := range emojis {
		_, err := a.emojis.UpdateOne(ctx,
			bson.M{"shortcode": e.Shortcode},
			bson.M{"$setOnInsert": bson.M{
				"shortcode": e.Shortcode,
				"unicode":   e.Unicode,
				"category":  e.Category,
				"sortOrder": e.SortOrder,
			}},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// reactTo is the shared reaction update for posts and comments. The filter
// excludes documents that already list username in the target set, so the
// $addToSet/$inc pair fires at most once per user.
func reactTo(ctx context.Context, coll *mongo.Collection, id string, username string, isLike bool,
	counters func(bson.Raw) *models.ReactionResult) (*models.ReactionResult, error) {

	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	setField, countField := "likedBy", "likes"
	if !isLike {
		setField, countField = "dislikedBy", "dislikes"
	}

	var doc bson.Raw
	err = coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid, setField: bson.M{"$ne": username}},
		bson.M{
			"$addToSet": bson.M{setField: username},
			"$inc":      bson.M{countField: 1},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)

	if err == mongo.ErrNoDocuments {
		// already reacted, or the document does not exist at all
		if err := coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
			return nil, translate(err)
		}
		return counters(doc), nil
	}
	if err != nil {
		return nil, err
	}
	return counters(doc), nil
}
