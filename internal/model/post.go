package model

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post 帖子文档，点赞和评论以内嵌数组存储
type Post struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    string             `bson:"user_id" json:"user_id"`
	Username  string             `bson:"username" json:"username"`
	Content   string             `bson:"content" json:"content"`
	Media     []string           `bson:"media" json:"media"`
	Likes     []string           `bson:"likes" json:"likes"`
	Comments  []Comment          `bson:"comments" json:"comments"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`

	// 视图字段，不入库
	LikeCount    int  `bson:"-" json:"like_count"`
	CommentCount int  `bson:"-" json:"comment_count"`
	IsLiked      bool `bson:"-" json:"is_liked"`
}

// Annotate 填充面向查看者的计数与点赞状态
func (p *Post) Annotate(viewerID string) {
	p.LikeCount = len(p.Likes)
	p.CommentCount = len(p.Comments)
	p.IsLiked = false
	for _, id := range p.Likes {
		if id == viewerID {
			p.IsLiked = true
			break
		}
	}
}

// Comment 评论记录，创建后不可修改，只能删除
type Comment struct {
	ID        string    `bson:"id,omitempty" json:"id"`
	UserID    string    `bson:"user_id" json:"user_id"`
	Username  string    `bson:"username" json:"username"`
	Content   string    `bson:"content" json:"content"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// LegacyID 为缺失 id 的历史评论重建标识（user_id + 创建时间）
// 不保证唯一，仅用于兼容旧数据的删除请求。
func (c Comment) LegacyID() string {
	return fmt.Sprintf("%s_%s", c.UserID, c.CreatedAt.UTC().Format(time.RFC3339))
}

// CommentView 面向查看者归一化后的评论视图
type CommentView struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
	CanDelete bool   `json:"can_delete"`
}
