package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Thinkbigalways/pethud2.0/internal/model"
)

type postRepository struct {
	coll *mongo.Collection
}

func NewPostRepository(db *mongo.Database) *postRepository {
	return &postRepository{coll: db.Collection(postsCollection)}
}

// storedComment 兼容历史数据的评论形态：id 可能缺失，
// created_at 可能是字符串而非存储原生时间戳
type storedComment struct {
	ID        string      `bson:"id,omitempty"`
	UserID    string      `bson:"user_id"`
	Username  string      `bson:"username"`
	Content   string      `bson:"content"`
	CreatedAt interface{} `bson:"created_at"`
}

type storedPost struct {
	ID        primitive.ObjectID `bson:"_id"`
	UserID    string             `bson:"user_id"`
	Username  string             `bson:"username"`
	Content   string             `bson:"content"`
	Media     []string           `bson:"media"`
	Likes     []string           `bson:"likes"`
	Comments  []storedComment    `bson:"comments"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

// normalizeComment 在读边界把历史形态归一为统一的 Comment
func normalizeComment(sc storedComment) model.Comment {
	c := model.Comment{
		ID:       sc.ID,
		UserID:   sc.UserID,
		Username: sc.Username,
		Content:  sc.Content,
	}

	switch v := sc.CreatedAt.(type) {
	case primitive.DateTime:
		c.CreatedAt = v.Time().UTC()
	case time.Time:
		c.CreatedAt = v.UTC()
	case string:
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			c.CreatedAt = t.UTC()
		}
	}
	return c
}

func (sp *storedPost) toModel() *model.Post {
	post := &model.Post{
		ID:        sp.ID,
		UserID:    sp.UserID,
		Username:  sp.Username,
		Content:   sp.Content,
		Media:     sp.Media,
		Likes:     sp.Likes,
		Comments:  make([]model.Comment, 0, len(sp.Comments)),
		CreatedAt: sp.CreatedAt,
		UpdatedAt: sp.UpdatedAt,
	}
	if post.Media == nil {
		post.Media = []string{}
	}
	if post.Likes == nil {
		post.Likes = []string{}
	}
	for _, sc := range sp.Comments {
		post.Comments = append(post.Comments, normalizeComment(sc))
	}
	return post
}

func (r *postRepository) CreatePost(ctx context.Context, post *model.Post) error {
	now := time.Now().UTC()
	post.ID = primitive.NewObjectID()
	post.CreatedAt = now
	post.UpdatedAt = now
	if post.Media == nil {
		post.Media = []string{}
	}
	if post.Likes == nil {
		post.Likes = []string{}
	}
	if post.Comments == nil {
		post.Comments = []model.Comment{}
	}

	_, err := r.coll.InsertOne(ctx, post)
	return err
}

func (r *postRepository) GetPostByID(ctx context.Context, id string) (*model.Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	var sp storedPost
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&sp)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return sp.toModel(), nil
}

func (r *postRepository) ListPosts(ctx context.Context, limit int64) ([]*model.Post, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	return decodePosts(ctx, cursor)
}

func (r *postRepository) GetUserPosts(ctx context.Context, userID string, limit int64) ([]*model.Post, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	return decodePosts(ctx, cursor)
}

func decodePosts(ctx context.Context, cursor *mongo.Cursor) ([]*model.Post, error) {
	posts := []*model.Post{}
	for cursor.Next(ctx) {
		var sp storedPost
		if err := cursor.Decode(&sp); err != nil {
			return nil, err
		}
		posts = append(posts, sp.toModel())
	}
	return posts, cursor.Err()
}

func (r *postRepository) DeletePost(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}

func (r *postRepository) UpdateMedia(ctx context.Context, id string, media []string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$set": bson.M{"media": media, "updated_at": time.Now().UTC()},
	})
	return err
}

func (r *postRepository) AddLike(ctx context.Context, postID, userID string) error {
	oid, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return err
	}
	_, err = r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$addToSet": bson.M{"likes": userID},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	})
	return err
}

func (r *postRepository) RemoveLike(ctx context.Context, postID, userID string) error {
	oid, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return err
	}
	_, err = r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$pull": bson.M{"likes": userID},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
	return err
}

func (r *postRepository) AppendComment(ctx context.Context, postID string, comment model.Comment) error {
	oid, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return err
	}
	_, err = r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$push": bson.M{"comments": comment},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
	return err
}

// ReplaceComments 整组重写评论数组。底层存储的原子删除要求元素精确相等，
// 对结构化记录不可用，只能读-过滤-写，接受并发窗口
func (r *postRepository) ReplaceComments(ctx context.Context, postID string, comments []model.Comment) error {
	oid, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return err
	}
	if comments == nil {
		comments = []model.Comment{}
	}
	_, err = r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$set": bson.M{"comments": comments, "updated_at": time.Now().UTC()},
	})
	return err
}
