package interfaces

import (
	"context"

	"github.com/Thinkbigalways/pethud2.0/internal/model"
)

// AdRepository 市场广告集合的类型化访问接口
type AdRepository interface {
	CreateAd(ctx context.Context, ad *model.Ad) error
	GetAdByID(ctx context.Context, id string) (*model.Ad, error)
	GetUserAds(ctx context.Context, userID string) ([]*model.Ad, error)
	FilterAds(ctx context.Context, filter model.AdFilter) ([]*model.Ad, int64, error)
	UpdateAd(ctx context.Context, id string, fields map[string]interface{}) error
	DeleteAd(ctx context.Context, id string) error
}
