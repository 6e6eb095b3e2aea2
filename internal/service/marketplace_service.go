package service

import (
	"context"
	"mime/multipart"

	"go.uber.org/zap"

	"github.com/Thinkbigalways/pethud2.0/internal/errors"
	"github.com/Thinkbigalways/pethud2.0/internal/model"
	"github.com/Thinkbigalways/pethud2.0/internal/repository/interfaces"
	"github.com/Thinkbigalways/pethud2.0/internal/storage"
	"github.com/Thinkbigalways/pethud2.0/internal/util"
)

const adImageFolder = "marketplace"

// MarketplaceService 市场广告的增删改查，结构上与帖子一致但单一属主
type MarketplaceService struct {
	repo  interfaces.AdRepository
	store storage.BlobStore
}

func NewMarketplaceService(repo interfaces.AdRepository, store storage.BlobStore) *MarketplaceService {
	return &MarketplaceService{repo: repo, store: store}
}

func (s *MarketplaceService) uploadImages(ctx context.Context, files []*multipart.FileHeader) []string {
	urls := []string{}
	for _, file := range files {
		url, err := s.store.Upload(ctx, file, adImageFolder)
		if err != nil {
			util.Logger.Error("上传广告图片失败，跳过该文件",
				zap.String("filename", file.Filename),
				zap.Error(err))
			continue
		}
		urls = append(urls, url)
	}
	return urls
}

// CreateAd 创建广告，标题和价格必填，分类默认 other
func (s *MarketplaceService) CreateAd(ctx context.Context, user model.Identity, input model.AdInput, files []*multipart.FileHeader) (*model.Ad, error) {
	title := util.SanitizeText(input.Title)
	if title == "" || input.Price < 0 {
		return nil, errors.New(errors.ErrValidation, "Title and price are required")
	}

	category := input.Category
	if category == "" {
		category = "other"
	}

	ad := &model.Ad{
		UserID:      user.ID,
		Username:    user.Username,
		Title:       title,
		Description: util.SanitizeText(input.Description),
		Price:       input.Price,
		Location:    input.Location,
		Category:    category,
		Images:      s.uploadImages(ctx, files),
	}

	if err := s.repo.CreateAd(ctx, ad); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "Failed to create ad", err)
	}
	return ad, nil
}

func (s *MarketplaceService) GetAd(ctx context.Context, adID string) (*model.Ad, error) {
	ad, err := s.repo.GetAdByID(ctx, adID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "Failed to load ad", err)
	}
	if ad == nil {
		return nil, errors.New(errors.ErrAdNotFound, "Ad not found")
	}
	return ad, nil
}

func (s *MarketplaceService) ListUserAds(ctx context.Context, userID string) ([]*model.Ad, error) {
	ads, err := s.repo.GetUserAds(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrUpstreamQuery, "Failed to list ads", err)
	}
	return ads, nil
}

// FilterAds 组合搜索/排序/分页。查询失败由调用方决定是否降级为空结果
func (s *MarketplaceService) FilterAds(ctx context.Context, filter model.AdFilter) ([]*model.Ad, int64, error) {
	ads, total, err := s.repo.FilterAds(ctx, filter)
	if err != nil {
		return nil, 0, errors.Wrap(errors.ErrUpstreamQuery, "Failed to filter ads", err)
	}
	return ads, total, nil
}

// UpdateAd 属主更新广告字段。新图片只有至少一个上传成功才覆盖，
// 全部失败时原图片列表保持不变
func (s *MarketplaceService) UpdateAd(ctx context.Context, adID, userID string, input model.AdInput, files []*multipart.FileHeader) (*model.Ad, error) {
	ad, err := s.repo.GetAdByID(ctx, adID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "Failed to load ad", err)
	}
	if ad == nil {
		return nil, errors.New(errors.ErrAdNotFound, "Ad not found")
	}
	if ad.UserID != userID {
		return nil, errors.New(errors.ErrForbidden, "Unauthorized")
	}

	title := util.SanitizeText(input.Title)
	if title == "" {
		return nil, errors.New(errors.ErrValidation, "Title is required")
	}

	category := input.Category
	if category == "" {
		category = "other"
	}

	fields := map[string]interface{}{
		"title":       title,
		"description": util.SanitizeText(input.Description),
		"price":       input.Price,
		"location":    input.Location,
		"category":    category,
	}

	oldImages := ad.Images
	if len(files) > 0 {
		if images := s.uploadImages(ctx, files); len(images) > 0 {
			fields["images"] = images
			ad.Images = images
		}
	}

	if err := s.repo.UpdateAd(ctx, adID, fields); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "Failed to update ad", err)
	}

	// 图片被替换后清理旧对象
	if _, replaced := fields["images"]; replaced {
		for _, url := range oldImages {
			if !s.store.Delete(ctx, url) {
				util.Logger.Warn("清理旧广告图片失败", zap.String("url", url))
			}
		}
	}

	ad.Title = title
	ad.Description = fields["description"].(string)
	ad.Price = input.Price
	ad.Location = input.Location
	ad.Category = category
	return ad, nil
}

// DeleteAd 属主删除广告，先尽力删除每张图片，再删除文档
func (s *MarketplaceService) DeleteAd(ctx context.Context, adID, userID string) error {
	ad, err := s.repo.GetAdByID(ctx, adID)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "Failed to load ad", err)
	}
	if ad == nil {
		return errors.New(errors.ErrAdNotFound, "Ad not found")
	}
	if ad.UserID != userID {
		return errors.New(errors.ErrForbidden, "Unauthorized")
	}

	for _, url := range ad.Images {
		if !s.store.Delete(ctx, url) {
			util.Logger.Warn("删除广告图片失败，继续删除文档", zap.String("url", url))
		}
	}

	if err := s.repo.DeleteAd(ctx, adID); err != nil {
		return errors.Wrap(errors.ErrDatabase, "Failed to delete ad", err)
	}
	return nil
}
