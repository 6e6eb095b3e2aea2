package service

import (
	"context"
	"mime/multipart"
	"time"

	"go.uber.org/zap"

	"github.com/Thinkbigalways/pethud2.0/internal/errors"
	"github.com/Thinkbigalways/pethud2.0/internal/model"
	"github.com/Thinkbigalways/pethud2.0/internal/repository/interfaces"
	"github.com/Thinkbigalways/pethud2.0/internal/storage"
	"github.com/Thinkbigalways/pethud2.0/internal/util"
)

const postMediaFolder = "posts"

// PostService 负责帖子聚合（内嵌点赞/评论）及其媒体生命周期
type PostService struct {
	repo  interfaces.PostRepository
	store storage.BlobStore
}

func NewPostService(repo interfaces.PostRepository, store storage.BlobStore) *PostService {
	return &PostService{repo: repo, store: store}
}

// uploadAll 逐个上传文件，单个失败只记录并跳过，不影响其余文件
func (s *PostService) uploadAll(ctx context.Context, files []*multipart.FileHeader, folder string) []string {
	urls := []string{}
	for _, file := range files {
		url, err := s.store.Upload(ctx, file, folder)
		if err != nil {
			util.Logger.Error("上传媒体文件失败，跳过该文件",
				zap.String("filename", file.Filename),
				zap.Error(err))
			continue
		}
		urls = append(urls, url)
	}
	return urls
}

// CreatePost 创建帖子。文件逐个上传，部分失败不阻断创建；
// 也接受客户端直传后的 URL，对每个 URL 尽力补开公共读权限
func (s *PostService) CreatePost(ctx context.Context, user model.Identity, content string, files []*multipart.FileHeader, preUploaded []string) (*model.Post, error) {
	content = util.SanitizeText(content)
	if content == "" {
		return nil, errors.New(errors.ErrValidation, "Post content is required")
	}

	media := s.uploadAll(ctx, files, postMediaFolder)
	for _, url := range preUploaded {
		if err := s.store.MakePublic(ctx, url); err != nil {
			util.Logger.Warn("补开公共读权限失败", zap.String("url", url), zap.Error(err))
		}
		media = append(media, url)
	}

	post := &model.Post{
		UserID:   user.ID,
		Username: user.Username,
		Content:  content,
		Media:    media,
		Likes:    []string{},
		Comments: []model.Comment{},
	}

	if err := s.repo.CreatePost(ctx, post); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "Failed to create post", err)
	}
	return post, nil
}

// DeletePost 删除帖子。先做属主校验，再尽力删除每个媒体对象，
// 单个对象删除失败不阻断文档删除
func (s *PostService) DeletePost(ctx context.Context, postID, userID string) error {
	post, err := s.repo.GetPostByID(ctx, postID)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "Failed to load post", err)
	}
	if post == nil {
		return errors.New(errors.ErrPostNotFound, "Post not found")
	}
	if post.UserID != userID {
		return errors.New(errors.ErrForbidden, "Unauthorized")
	}

	for _, url := range post.Media {
		if !s.store.Delete(ctx, url) {
			util.Logger.Warn("删除帖子媒体失败，继续删除文档", zap.String("url", url))
		}
	}

	if err := s.repo.DeletePost(ctx, postID); err != nil {
		return errors.Wrap(errors.ErrDatabase, "Failed to delete post", err)
	}
	return nil
}

// ReplaceMedia 替换帖子媒体。只有至少一个新上传成功才覆盖，
// 全部失败时保留原媒体列表；覆盖后尽力清理旧对象
func (s *PostService) ReplaceMedia(ctx context.Context, postID, userID string, files []*multipart.FileHeader) (*model.Post, error) {
	post, err := s.repo.GetPostByID(ctx, postID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "Failed to load post", err)
	}
	if post == nil {
		return nil, errors.New(errors.ErrPostNotFound, "Post not found")
	}
	if post.UserID != userID {
		return nil, errors.New(errors.ErrForbidden, "Unauthorized")
	}

	uploaded := s.uploadAll(ctx, files, postMediaFolder)
	if len(uploaded) == 0 {
		return nil, errors.New(errors.ErrStorageWrite, "Failed to upload media")
	}

	if err := s.repo.UpdateMedia(ctx, postID, uploaded); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "Failed to update media", err)
	}

	for _, url := range post.Media {
		if !s.store.Delete(ctx, url) {
			util.Logger.Warn("清理旧媒体失败", zap.String("url", url))
		}
	}

	post.Media = uploaded
	return post, nil
}

// ToggleLike 切换点赞状态，返回切换后的状态。
// 同一用户并发切换存在读后写竞态，对点赞功能可接受
func (s *PostService) ToggleLike(ctx context.Context, postID, userID string) (bool, error) {
	post, err := s.repo.GetPostByID(ctx, postID)
	if err != nil {
		return false, errors.Wrap(errors.ErrDatabase, "Failed to load post", err)
	}
	if post == nil {
		return false, errors.New(errors.ErrPostNotFound, "Post not found")
	}

	liked := false
	for _, id := range post.Likes {
		if id == userID {
			liked = true
			break
		}
	}

	if liked {
		err = s.repo.RemoveLike(ctx, postID, userID)
	} else {
		err = s.repo.AddLike(ctx, postID, userID)
	}
	if err != nil {
		return false, errors.Wrap(errors.ErrDatabase, "Failed to update likes", err)
	}
	return !liked, nil
}

// AddComment 追加评论。空白内容在任何文档读写之前即被拒绝；
// 评论携带客户端生成的标识和时间戳（存储不支持数组元素内的服务端时间戳）
func (s *PostService) AddComment(ctx context.Context, postID string, user model.Identity, content string) (*model.Comment, error) {
	content = util.SanitizeText(content)
	if content == "" {
		return nil, errors.New(errors.ErrValidation, "Comment content is required")
	}

	post, err := s.repo.GetPostByID(ctx, postID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "Failed to load post", err)
	}
	if post == nil {
		return nil, errors.New(errors.ErrPostNotFound, "Post not found")
	}

	comment := model.Comment{
		ID:        util.NewCommentID(),
		UserID:    user.ID,
		Username:  user.Username,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.AppendComment(ctx, postID, comment); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "Failed to add comment", err)
	}
	return &comment, nil
}

// DeleteComment 按标识删除评论。优先精确匹配 id，缺失 id 的历史评论
// 回退到重建标识（user_id + 创建时间）匹配。删除通过整组重写完成
func (s *PostService) DeleteComment(ctx context.Context, postID, commentID, userID string) error {
	post, err := s.repo.GetPostByID(ctx, postID)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "Failed to load post", err)
	}
	if post == nil {
		return errors.New(errors.ErrPostNotFound, "Post not found")
	}

	idx := -1
	for i, c := range post.Comments {
		if c.ID != "" && c.ID == commentID {
			idx = i
			break
		}
	}
	if idx < 0 {
		// 历史评论没有 id，重建标识不保证唯一，命中第一条
		for i, c := range post.Comments {
			if c.ID == "" && c.LegacyID() == commentID {
				idx = i
				break
			}
		}
	}
	if idx < 0 {
		return errors.New(errors.ErrCommentNotFound, "Comment not found")
	}
	if post.Comments[idx].UserID != userID {
		return errors.New(errors.ErrForbidden, "Unauthorized")
	}

	remaining := make([]model.Comment, 0, len(post.Comments)-1)
	remaining = append(remaining, post.Comments[:idx]...)
	remaining = append(remaining, post.Comments[idx+1:]...)

	if err := s.repo.ReplaceComments(ctx, postID, remaining); err != nil {
		return errors.Wrap(errors.ErrDatabase, "Failed to delete comment", err)
	}
	return nil
}

// ListComments 返回归一化的评论视图，时间统一为 ISO 字符串，
// 并按查看者标注可删除标记
func (s *PostService) ListComments(ctx context.Context, postID, viewerID string) ([]model.CommentView, error) {
	post, err := s.repo.GetPostByID(ctx, postID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "Failed to load post", err)
	}
	if post == nil {
		return nil, errors.New(errors.ErrPostNotFound, "Post not found")
	}

	views := make([]model.CommentView, 0, len(post.Comments))
	for _, c := range post.Comments {
		id := c.ID
		if id == "" {
			id = c.LegacyID()
		}
		views = append(views, model.CommentView{
			ID:        id,
			UserID:    c.UserID,
			Username:  c.Username,
			Content:   c.Content,
			CreatedAt: c.CreatedAt.UTC().Format(time.RFC3339),
			CanDelete: c.UserID == viewerID,
		})
	}
	return views, nil
}

// GetPost 返回带查看者标注的单个帖子
func (s *PostService) GetPost(ctx context.Context, postID, viewerID string) (*model.Post, error) {
	post, err := s.repo.GetPostByID(ctx, postID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "Failed to load post", err)
	}
	if post == nil {
		return nil, errors.New(errors.ErrPostNotFound, "Post not found")
	}
	post.Annotate(viewerID)
	return post, nil
}

// ListFeed 返回按创建时间倒序的首页信息流。
// 查询失败以上游查询错误包装，由调用方降级为空结果
func (s *PostService) ListFeed(ctx context.Context, viewerID string, limit int64) ([]*model.Post, error) {
	posts, err := s.repo.ListPosts(ctx, limit)
	if err != nil {
		return nil, errors.Wrap(errors.ErrUpstreamQuery, "Failed to list posts", err)
	}
	for _, post := range posts {
		post.Annotate(viewerID)
	}
	return posts, nil
}

// ListUserPosts 返回指定用户的帖子
func (s *PostService) ListUserPosts(ctx context.Context, userID, viewerID string, limit int64) ([]*model.Post, error) {
	posts, err := s.repo.GetUserPosts(ctx, userID, limit)
	if err != nil {
		return nil, errors.Wrap(errors.ErrUpstreamQuery, "Failed to list posts", err)
	}
	for _, post := range posts {
		post.Annotate(viewerID)
	}
	return posts, nil
}
