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

// PictureKind 用户图片类型
type PictureKind string

const (
	PictureProfile PictureKind = "profile"
	PictureCover   PictureKind = "cover"
)

// UserService 用户资料读取与头像/封面的媒体生命周期
type UserService struct {
	users interfaces.UserRepository
	posts interfaces.PostRepository
	store storage.BlobStore
}

func NewUserService(users interfaces.UserRepository, posts interfaces.PostRepository, store storage.BlobStore) *UserService {
	return &UserService{users: users, posts: posts, store: store}
}

// GetProfile 按用户名查找资料，失败时回退到查看者邮箱；
// 同时返回该用户的帖子（按查看者标注）
func (s *UserService) GetProfile(ctx context.Context, username string, viewer model.Identity) (*model.User, []*model.Post, error) {
	var user *model.User
	var err error

	if username != "" {
		user, err = s.users.FindByUsername(ctx, username)
		if err != nil {
			return nil, nil, errors.Wrap(errors.ErrDatabase, "Failed to load user", err)
		}
	}
	if user == nil && viewer.Email != "" {
		user, err = s.users.FindByEmail(ctx, viewer.Email)
		if err != nil {
			return nil, nil, errors.Wrap(errors.ErrDatabase, "Failed to load user", err)
		}
	}
	if user == nil {
		return nil, nil, errors.New(errors.ErrUserNotFound, "User not found")
	}

	posts, err := s.posts.GetUserPosts(ctx, user.ID, 50)
	if err != nil {
		// 查询失败降级为空列表，不阻断资料页
		util.Logger.Error("获取用户帖子失败，降级为空列表", zap.Error(err))
		posts = []*model.Post{}
	}
	for _, post := range posts {
		post.Annotate(viewer.ID)
	}

	return user, posts, nil
}

// UpdatePicture 替换头像或封面：尽力删除旧对象，上传新对象（失败即终止），
// 最后更新文档字段
func (s *UserService) UpdatePicture(ctx context.Context, viewer model.Identity, kind PictureKind, file *multipart.FileHeader) (string, error) {
	user, err := s.users.FindByID(ctx, viewer.ID)
	if err != nil {
		return "", errors.Wrap(errors.ErrDatabase, "Failed to load user", err)
	}
	if user == nil {
		return "", errors.New(errors.ErrUserNotFound, "User not found")
	}

	var field, folder, old string
	switch kind {
	case PictureCover:
		field, folder, old = "cover_pic", "profiles/cover", user.CoverPic
	default:
		field, folder, old = "profile_pic", "profiles/pics", user.ProfilePic
	}

	if old != "" {
		if !s.store.Delete(ctx, old) {
			util.Logger.Warn("删除旧图片失败", zap.String("url", old))
		}
	}

	url, err := s.store.Upload(ctx, file, folder)
	if err != nil {
		return "", errors.Wrap(errors.ErrStorageWrite, "Failed to upload picture", err)
	}

	if err := s.users.UpdateFields(ctx, user.ID, map[string]interface{}{field: url}); err != nil {
		return "", errors.Wrap(errors.ErrDatabase, "Failed to update user", err)
	}
	return url, nil
}

// SettingsInput 账号设置表单
type SettingsInput struct {
	FirstName string `form:"first_name" json:"first_name"`
	LastName  string `form:"last_name" json:"last_name"`
	Email     string `form:"email" json:"email"`
	DOB       string `form:"dob" json:"dob"`
	Gender    string `form:"gender" json:"gender"`
	Bio       string `form:"bio" json:"bio"`
}

// UpdateSettings 更新账号资料字段
func (s *UserService) UpdateSettings(ctx context.Context, userID string, input SettingsInput) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "Failed to load user", err)
	}
	if user == nil {
		return errors.New(errors.ErrUserNotFound, "User not found")
	}

	fields := map[string]interface{}{
		"first_name": input.FirstName,
		"last_name":  input.LastName,
		"dob":        input.DOB,
		"gender":     input.Gender,
		"bio":        util.SanitizeText(input.Bio),
	}
	if input.Email != "" {
		fields["email"] = input.Email
	}

	if err := s.users.UpdateFields(ctx, userID, fields); err != nil {
		return errors.Wrap(errors.ErrDatabase, "Failed to update user", err)
	}
	return nil
}

// Suggestions 返回至多 5 个排除查看者自身的用户
func (s *UserService) Suggestions(ctx context.Context, viewerID string) ([]*model.User, error) {
	users, err := s.users.ListUsers(ctx, 10)
	if err != nil {
		return nil, errors.Wrap(errors.ErrUpstreamQuery, "Failed to list users", err)
	}

	suggestions := []*model.User{}
	for _, u := range users {
		if u.ID == viewerID {
			continue
		}
		suggestions = append(suggestions, u)
		if len(suggestions) == 5 {
			break
		}
	}
	return suggestions, nil
}
