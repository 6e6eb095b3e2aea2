package service

import (
	"context"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Thinkbigalways/pethud2.0/internal/errors"
	"github.com/Thinkbigalways/pethud2.0/internal/model"
)

// MockAdRepository 是 AdRepository 接口的模拟实现
type MockAdRepository struct {
	mock.Mock
}

func (m *MockAdRepository) CreateAd(ctx context.Context, ad *model.Ad) error {
	args := m.Called(ctx, ad)
	return args.Error(0)
}

func (m *MockAdRepository) GetAdByID(ctx context.Context, id string) (*model.Ad, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Ad), args.Error(1)
}

func (m *MockAdRepository) GetUserAds(ctx context.Context, userID string) ([]*model.Ad, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Ad), args.Error(1)
}

func (m *MockAdRepository) FilterAds(ctx context.Context, filter model.AdFilter) ([]*model.Ad, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*model.Ad), args.Get(1).(int64), args.Error(2)
}

func (m *MockAdRepository) UpdateAd(ctx context.Context, id string, fields map[string]interface{}) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *MockAdRepository) DeleteAd(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// TestCreateAd 测试发布广告的校验与默认分类
func TestCreateAd(t *testing.T) {
	mockRepo := new(MockAdRepository)
	mockStore := new(MockBlobStore)
	service := NewMarketplaceService(mockRepo, mockStore)
	ctx := context.Background()
	user := model.Identity{ID: "u1", Username: "alice"}

	// 标题为空时拒绝，不触发上传或写入
	ad, err := service.CreateAd(ctx, user, model.AdInput{Title: "  ", Price: 10}, nil)
	assert.Nil(t, ad)
	assert.True(t, errors.Is(err, errors.ErrValidation))
	mockRepo.AssertNotCalled(t, "CreateAd")

	// 分类缺省时落到 other
	mockRepo.On("CreateAd", ctx, mock.AnythingOfType("*model.Ad")).Return(nil).Once()
	ad, err = service.CreateAd(ctx, user, model.AdInput{Title: "Dog leash", Price: 15.5}, nil)
	assert.NoError(t, err)
	assert.Equal(t, "other", ad.Category)
	assert.Equal(t, 15.5, ad.Price)
	mockRepo.AssertExpectations(t)
}

// TestUpdateAd 测试广告更新，图片全部上传失败时保留原图
func TestUpdateAd(t *testing.T) {
	mockRepo := new(MockAdRepository)
	mockStore := new(MockBlobStore)
	service := NewMarketplaceService(mockRepo, mockStore)
	ctx := context.Background()

	files := []*multipart.FileHeader{{Filename: "new.jpg"}}
	input := model.AdInput{Title: "Cat tree", Price: 40, Category: "accessories"}

	// 全部上传失败：fields 不含 images，旧图不被清理
	mockRepo.On("GetAdByID", ctx, "a1").
		Return(&model.Ad{UserID: "u1", Images: []string{"https://cdn/marketplace/old.jpg"}}, nil).Once()
	mockStore.On("Upload", ctx, files[0], "marketplace").Return("", assert.AnError).Once()
	mockRepo.On("UpdateAd", ctx, "a1", mock.MatchedBy(func(fields map[string]interface{}) bool {
		_, hasImages := fields["images"]
		return !hasImages && fields["title"] == "Cat tree"
	})).Return(nil).Once()

	ad, err := service.UpdateAd(ctx, "a1", "u1", input, files)
	assert.NoError(t, err)
	assert.Equal(t, []string{"https://cdn/marketplace/old.jpg"}, ad.Images)
	mockStore.AssertNotCalled(t, "Delete")

	// 上传成功：覆盖图片并清理旧对象
	mockRepo.On("GetAdByID", ctx, "a1").
		Return(&model.Ad{UserID: "u1", Images: []string{"https://cdn/marketplace/old.jpg"}}, nil).Once()
	mockStore.On("Upload", ctx, files[0], "marketplace").Return("https://cdn/marketplace/new.jpg", nil).Once()
	mockRepo.On("UpdateAd", ctx, "a1", mock.MatchedBy(func(fields map[string]interface{}) bool {
		images, ok := fields["images"].([]string)
		return ok && len(images) == 1 && images[0] == "https://cdn/marketplace/new.jpg"
	})).Return(nil).Once()
	mockStore.On("Delete", ctx, "https://cdn/marketplace/old.jpg").Return(true).Once()

	ad, err = service.UpdateAd(ctx, "a1", "u1", input, files)
	assert.NoError(t, err)
	assert.Equal(t, []string{"https://cdn/marketplace/new.jpg"}, ad.Images)
	mockRepo.AssertExpectations(t)
	mockStore.AssertExpectations(t)

	// 非属主更新被拒绝
	mockRepo.On("GetAdByID", ctx, "a1").Return(&model.Ad{UserID: "u1"}, nil).Once()
	_, err = service.UpdateAd(ctx, "a1", "u2", input, nil)
	assert.True(t, errors.Is(err, errors.ErrForbidden))
}

// TestDeleteAd 测试广告删除级联，图片删除失败不阻断文档删除
func TestDeleteAd(t *testing.T) {
	mockRepo := new(MockAdRepository)
	mockStore := new(MockBlobStore)
	service := NewMarketplaceService(mockRepo, mockStore)
	ctx := context.Background()

	ad := &model.Ad{
		UserID: "u1",
		Images: []string{"https://cdn/marketplace/a.jpg", "https://cdn/marketplace/b.jpg"},
	}
	mockRepo.On("GetAdByID", ctx, "a1").Return(ad, nil).Once()
	mockStore.On("Delete", ctx, "https://cdn/marketplace/a.jpg").Return(false).Once()
	mockStore.On("Delete", ctx, "https://cdn/marketplace/b.jpg").Return(true).Once()
	mockRepo.On("DeleteAd", ctx, "a1").Return(nil).Once()

	err := service.DeleteAd(ctx, "a1", "u1")
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
	mockStore.AssertExpectations(t)

	// 广告不存在
	mockRepo.On("GetAdByID", ctx, "missing").Return(nil, nil).Once()
	err = service.DeleteAd(ctx, "missing", "u1")
	assert.True(t, errors.Is(err, errors.ErrAdNotFound))
}

// TestFilterAds 测试筛选查询的错误包装
func TestFilterAds(t *testing.T) {
	mockRepo := new(MockAdRepository)
	mockStore := new(MockBlobStore)
	service := NewMarketplaceService(mockRepo, mockStore)
	ctx := context.Background()

	filter := model.AdFilter{Search: "leash", Sort: "1", Page: 1, Limit: 6}
	mockRepo.On("FilterAds", ctx, filter).Return([]*model.Ad{{Title: "Dog leash"}}, int64(1), nil).Once()

	ads, total, err := service.FilterAds(ctx, filter)
	assert.NoError(t, err)
	assert.Len(t, ads, 1)
	assert.Equal(t, int64(1), total)

	// 查询失败以上游查询错误包装，供调用方降级
	mockRepo.On("FilterAds", ctx, filter).Return(nil, int64(0), assert.AnError).Once()
	_, _, err = service.FilterAds(ctx, filter)
	assert.True(t, errors.Is(err, errors.ErrUpstreamQuery))
	mockRepo.AssertExpectations(t)
}
