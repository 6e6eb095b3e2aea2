package interfaces

import (
	"context"

	"github.com/Thinkbigalways/pethud2.0/internal/model"
)

// PostRepository 帖子集合的类型化访问接口。
// 按 ID 查询在文档不存在时返回 (nil, nil)。
type PostRepository interface {
	CreatePost(ctx context.Context, post *model.Post) error
	GetPostByID(ctx context.Context, id string) (*model.Post, error)
	ListPosts(ctx context.Context, limit int64) ([]*model.Post, error)
	GetUserPosts(ctx context.Context, userID string, limit int64) ([]*model.Post, error)
	DeletePost(ctx context.Context, id string) error
	UpdateMedia(ctx context.Context, id string, media []string) error

	// 点赞集合的原子增删（array-union / array-remove）
	AddLike(ctx context.Context, postID, userID string) error
	RemoveLike(ctx context.Context, postID, userID string) error

	// 评论为结构化记录，追加使用原子 push；
	// 删除依赖整组重写（读-过滤-写），存在已知的并发丢失窗口
	AppendComment(ctx context.Context, postID string, comment model.Comment) error
	ReplaceComments(ctx context.Context, postID string, comments []model.Comment) error
}
