package interfaces

import (
	"context"

	"github.com/Thinkbigalways/pethud2.0/internal/model"
)

// UserRepository 用户集合的只读/资料更新接口。
// 用户的创建与认证由外部协作方负责。
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	ListUsers(ctx context.Context, limit int64) ([]*model.User, error)
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error
}
