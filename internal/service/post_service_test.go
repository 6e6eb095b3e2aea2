package service

import (
	"context"
	"mime/multipart"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Thinkbigalways/pethud2.0/internal/errors"
	"github.com/Thinkbigalways/pethud2.0/internal/model"
)

// MockPostRepository 是 PostRepository 接口的模拟实现
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) CreatePost(ctx context.Context, post *model.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) GetPostByID(ctx context.Context, id string) (*model.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Post), args.Error(1)
}

func (m *MockPostRepository) ListPosts(ctx context.Context, limit int64) ([]*model.Post, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Post), args.Error(1)
}

func (m *MockPostRepository) GetUserPosts(ctx context.Context, userID string, limit int64) ([]*model.Post, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Post), args.Error(1)
}

func (m *MockPostRepository) DeletePost(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPostRepository) UpdateMedia(ctx context.Context, id string, media []string) error {
	args := m.Called(ctx, id, media)
	return args.Error(0)
}

func (m *MockPostRepository) AddLike(ctx context.Context, postID, userID string) error {
	args := m.Called(ctx, postID, userID)
	return args.Error(0)
}

func (m *MockPostRepository) RemoveLike(ctx context.Context, postID, userID string) error {
	args := m.Called(ctx, postID, userID)
	return args.Error(0)
}

func (m *MockPostRepository) AppendComment(ctx context.Context, postID string, comment model.Comment) error {
	args := m.Called(ctx, postID, comment)
	return args.Error(0)
}

func (m *MockPostRepository) ReplaceComments(ctx context.Context, postID string, comments []model.Comment) error {
	args := m.Called(ctx, postID, comments)
	return args.Error(0)
}

// MockBlobStore 是 BlobStore 接口的模拟实现
type MockBlobStore struct {
	mock.Mock
}

func (m *MockBlobStore) Upload(ctx context.Context, file *multipart.FileHeader, folder string) (string, error) {
	args := m.Called(ctx, file, folder)
	return args.String(0), args.Error(1)
}

func (m *MockBlobStore) Delete(ctx context.Context, url string) bool {
	args := m.Called(ctx, url)
	return args.Bool(0)
}

func (m *MockBlobStore) MakePublic(ctx context.Context, url string) error {
	args := m.Called(ctx, url)
	return args.Error(0)
}

// TestCreatePost 测试发帖，部分文件上传失败不阻断创建
func TestCreatePost(t *testing.T) {
	mockRepo := new(MockPostRepository)
	mockStore := new(MockBlobStore)
	service := NewPostService(mockRepo, mockStore)
	ctx := context.Background()
	user := model.Identity{ID: "u1", Username: "alice"}

	files := []*multipart.FileHeader{
		{Filename: "a.jpg"},
		{Filename: "b.jpg"},
		{Filename: "c.jpg"},
	}

	// 第二个文件上传失败，帖子仍创建且只带两条媒体
	mockStore.On("Upload", ctx, files[0], "posts").Return("https://cdn/posts/a.jpg", nil).Once()
	mockStore.On("Upload", ctx, files[1], "posts").Return("", assert.AnError).Once()
	mockStore.On("Upload", ctx, files[2], "posts").Return("https://cdn/posts/c.jpg", nil).Once()
	mockRepo.On("CreatePost", ctx, mock.AnythingOfType("*model.Post")).Return(nil).Once()

	post, err := service.CreatePost(ctx, user, "hello world", files, nil)
	assert.NoError(t, err)
	assert.Equal(t, []string{"https://cdn/posts/a.jpg", "https://cdn/posts/c.jpg"}, post.Media)
	mockRepo.AssertExpectations(t)
	mockStore.AssertExpectations(t)

	// 内容为空白时不触发任何存储或文档操作
	post, err = service.CreatePost(ctx, user, "   ", nil, nil)
	assert.Nil(t, post)
	assert.True(t, errors.Is(err, errors.ErrValidation))
	mockRepo.AssertNumberOfCalls(t, "CreatePost", 1)
}

// TestToggleLike 测试点赞切换，连续两次切换恢复原状态
func TestToggleLike(t *testing.T) {
	mockRepo := new(MockPostRepository)
	mockStore := new(MockBlobStore)
	service := NewPostService(mockRepo, mockStore)
	ctx := context.Background()

	// 第一次切换：未点赞 -> 点赞
	mockRepo.On("GetPostByID", ctx, "p1").Return(&model.Post{UserID: "u2", Likes: []string{}}, nil).Once()
	mockRepo.On("AddLike", ctx, "p1", "u1").Return(nil).Once()
	liked, err := service.ToggleLike(ctx, "p1", "u1")
	assert.NoError(t, err)
	assert.True(t, liked)

	// 第二次切换：点赞 -> 取消
	mockRepo.On("GetPostByID", ctx, "p1").Return(&model.Post{UserID: "u2", Likes: []string{"u1"}}, nil).Once()
	mockRepo.On("RemoveLike", ctx, "p1", "u1").Return(nil).Once()
	liked, err = service.ToggleLike(ctx, "p1", "u1")
	assert.NoError(t, err)
	assert.False(t, liked)
	mockRepo.AssertExpectations(t)

	// 帖子不存在
	mockRepo.On("GetPostByID", ctx, "missing").Return(nil, nil).Once()
	_, err = service.ToggleLike(ctx, "missing", "u1")
	assert.True(t, errors.Is(err, errors.ErrPostNotFound))
}

// TestAddComment 测试评论追加与校验顺序
func TestAddComment(t *testing.T) {
	mockRepo := new(MockPostRepository)
	mockStore := new(MockBlobStore)
	service := NewPostService(mockRepo, mockStore)
	ctx := context.Background()
	user := model.Identity{ID: "u1", Username: "alice"}

	// 空白内容在任何文档读写之前被拒绝
	comment, err := service.AddComment(ctx, "p1", user, "   \n  ")
	assert.Nil(t, comment)
	assert.True(t, errors.Is(err, errors.ErrValidation))
	mockRepo.AssertNotCalled(t, "GetPostByID")
	mockRepo.AssertNotCalled(t, "AppendComment")

	// 正常追加，评论带生成的标识和时间戳
	mockRepo.On("GetPostByID", ctx, "p1").Return(&model.Post{UserID: "u2"}, nil).Once()
	mockRepo.On("AppendComment", ctx, "p1", mock.AnythingOfType("model.Comment")).Return(nil).Once()

	comment, err = service.AddComment(ctx, "p1", user, "nice post")
	assert.NoError(t, err)
	assert.NotEmpty(t, comment.ID)
	assert.Equal(t, "u1", comment.UserID)
	assert.Equal(t, "nice post", comment.Content)
	assert.False(t, comment.CreatedAt.IsZero())
	mockRepo.AssertExpectations(t)
}

// TestListComments 测试评论视图的归一化与 can_delete 标注
func TestListComments(t *testing.T) {
	mockRepo := new(MockPostRepository)
	mockStore := new(MockBlobStore)
	service := NewPostService(mockRepo, mockStore)
	ctx := context.Background()

	ts := time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC)
	post := &model.Post{
		UserID: "u2",
		Comments: []model.Comment{
			{ID: "c1", UserID: "u1", Username: "alice", Content: "mine", CreatedAt: ts},
			{UserID: "u2", Username: "bob", Content: "legacy", CreatedAt: ts},
		},
	}
	mockRepo.On("GetPostByID", ctx, "p1").Return(post, nil).Once()

	views, err := service.ListComments(ctx, "p1", "u1")
	assert.NoError(t, err)
	assert.Len(t, views, 2)
	assert.True(t, views[0].CanDelete)
	assert.False(t, views[1].CanDelete)
	// 缺失 id 的历史评论用重建标识暴露
	assert.Equal(t, "u2_2023-05-01T12:00:00Z", views[1].ID)
	assert.Equal(t, "2023-05-01T12:00:00Z", views[0].CreatedAt)
}

// TestDeleteComment 测试评论删除，覆盖属主校验与历史标识回退
func TestDeleteComment(t *testing.T) {
	mockRepo := new(MockPostRepository)
	mockStore := new(MockBlobStore)
	service := NewPostService(mockRepo, mockStore)
	ctx := context.Background()

	ts := time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC)
	makePost := func() *model.Post {
		return &model.Post{
			UserID: "u2",
			Comments: []model.Comment{
				{ID: "c1", UserID: "u1", Content: "mine", CreatedAt: ts},
				{UserID: "u1", Content: "legacy", CreatedAt: ts},
				{ID: "c3", UserID: "u3", Content: "other", CreatedAt: ts},
			},
		}
	}

	// 精确标识命中，整组重写剩余两条
	mockRepo.On("GetPostByID", ctx, "p1").Return(makePost(), nil).Once()
	mockRepo.On("ReplaceComments", ctx, "p1", mock.MatchedBy(func(cs []model.Comment) bool {
		return len(cs) == 2 && cs[0].ID == "" && cs[1].ID == "c3"
	})).Return(nil).Once()
	err := service.DeleteComment(ctx, "p1", "c1", "u1")
	assert.NoError(t, err)

	// 历史评论通过重建标识命中
	mockRepo.On("GetPostByID", ctx, "p1").Return(makePost(), nil).Once()
	mockRepo.On("ReplaceComments", ctx, "p1", mock.MatchedBy(func(cs []model.Comment) bool {
		return len(cs) == 2 && cs[0].ID == "c1" && cs[1].ID == "c3"
	})).Return(nil).Once()
	err = service.DeleteComment(ctx, "p1", "u1_2023-05-01T12:00:00Z", "u1")
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)

	// 非属主删除被拒绝，不触发重写
	mockRepo.On("GetPostByID", ctx, "p1").Return(makePost(), nil).Once()
	err = service.DeleteComment(ctx, "p1", "c3", "u1")
	assert.True(t, errors.Is(err, errors.ErrForbidden))
	mockRepo.AssertNumberOfCalls(t, "ReplaceComments", 2)

	// 标识未命中
	mockRepo.On("GetPostByID", ctx, "p1").Return(makePost(), nil).Once()
	err = service.DeleteComment(ctx, "p1", "nope", "u1")
	assert.True(t, errors.Is(err, errors.ErrCommentNotFound))
}

// TestListFeed 测试信息流查询的错误包装，供调用方降级
func TestListFeed(t *testing.T) {
	mockRepo := new(MockPostRepository)
	mockStore := new(MockBlobStore)
	service := NewPostService(mockRepo, mockStore)
	ctx := context.Background()

	mockRepo.On("ListPosts", ctx, int64(50)).Return(nil, assert.AnError).Once()
	_, err := service.ListFeed(ctx, "u1", 50)
	assert.True(t, errors.Is(err, errors.ErrUpstreamQuery))

	mockRepo.On("GetUserPosts", ctx, "u2", int64(50)).Return(nil, assert.AnError).Once()
	_, err = service.ListUserPosts(ctx, "u2", "u1", 50)
	assert.True(t, errors.Is(err, errors.ErrUpstreamQuery))
	mockRepo.AssertExpectations(t)
}

// TestDeletePost 测试删帖级联，媒体删除失败不阻断文档删除
func TestDeletePost(t *testing.T) {
	mockRepo := new(MockPostRepository)
	mockStore := new(MockBlobStore)
	service := NewPostService(mockRepo, mockStore)
	ctx := context.Background()

	post := &model.Post{
		UserID: "u1",
		Media:  []string{"https://cdn/posts/a.jpg", "https://cdn/posts/b.jpg"},
	}
	mockRepo.On("GetPostByID", ctx, "p1").Return(post, nil).Once()
	mockStore.On("Delete", ctx, "https://cdn/posts/a.jpg").Return(false).Once()
	mockStore.On("Delete", ctx, "https://cdn/posts/b.jpg").Return(true).Once()
	mockRepo.On("DeletePost", ctx, "p1").Return(nil).Once()

	err := service.DeletePost(ctx, "p1", "u1")
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
	mockStore.AssertExpectations(t)

	// 非属主删除在任何媒体操作之前被拒绝
	mockRepo.On("GetPostByID", ctx, "p1").Return(post, nil).Once()
	err = service.DeletePost(ctx, "p1", "u2")
	assert.True(t, errors.Is(err, errors.ErrForbidden))
	mockStore.AssertNumberOfCalls(t, "Delete", 2)
}

// TestReplaceMedia 测试媒体替换，全部上传失败时保留原媒体
func TestReplaceMedia(t *testing.T) {
	mockRepo := new(MockPostRepository)
	mockStore := new(MockBlobStore)
	service := NewPostService(mockRepo, mockStore)
	ctx := context.Background()

	files := []*multipart.FileHeader{{Filename: "new.jpg"}}
	post := &model.Post{UserID: "u1", Media: []string{"https://cdn/posts/old.jpg"}}

	// 全部上传失败：不更新文档，不清理旧对象
	mockRepo.On("GetPostByID", ctx, "p1").Return(post, nil).Once()
	mockStore.On("Upload", ctx, files[0], "posts").Return("", assert.AnError).Once()

	updated, err := service.ReplaceMedia(ctx, "p1", "u1", files)
	assert.Nil(t, updated)
	assert.True(t, errors.Is(err, errors.ErrStorageWrite))
	mockRepo.AssertNotCalled(t, "UpdateMedia")
	mockStore.AssertNotCalled(t, "Delete")

	// 上传成功：覆盖媒体并清理旧对象
	mockRepo.On("GetPostByID", ctx, "p1").Return(post, nil).Once()
	mockStore.On("Upload", ctx, files[0], "posts").Return("https://cdn/posts/new.jpg", nil).Once()
	mockRepo.On("UpdateMedia", ctx, "p1", []string{"https://cdn/posts/new.jpg"}).Return(nil).Once()
	mockStore.On("Delete", ctx, "https://cdn/posts/old.jpg").Return(true).Once()

	updated, err = service.ReplaceMedia(ctx, "p1", "u1", files)
	assert.NoError(t, err)
	assert.Equal(t, []string{"https://cdn/posts/new.jpg"}, updated.Media)
	mockRepo.AssertExpectations(t)
	mockStore.AssertExpectations(t)
}
