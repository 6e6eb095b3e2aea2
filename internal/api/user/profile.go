package user

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Thinkbigalways/pethud2.0/internal/errors"
	"github.com/Thinkbigalways/pethud2.0/internal/middleware"
	"github.com/Thinkbigalways/pethud2.0/internal/model"
	"github.com/Thinkbigalways/pethud2.0/internal/service"
	"github.com/Thinkbigalways/pethud2.0/internal/util"
)

type ProfileHandler struct {
	userService *service.UserService
}

func NewProfileHandler(userService *service.UserService) *ProfileHandler {
	return &ProfileHandler{userService: userService}
}

// GetProfile 获取资料页。username 查询参数缺省时返回查看者自己的资料
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		errors.HandleError(c, errors.New(errors.ErrUnauthorized, "Authentication required"))
		return
	}

	user, posts, err := h.userService.GetProfile(c.Request.Context(), c.Query("username"), identity)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, gin.H{"user": user, "posts": posts}, "")
}

// UploadProfilePic 上传头像，旧头像对象被清理
func (h *ProfileHandler) UploadProfilePic(c *gin.Context) {
	h.uploadPicture(c, service.PictureProfile)
}

// UploadCoverPic 上传封面图，旧封面对象被清理
func (h *ProfileHandler) UploadCoverPic(c *gin.Context) {
	h.uploadPicture(c, service.PictureCover)
}

func (h *ProfileHandler) uploadPicture(c *gin.Context, kind service.PictureKind) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		errors.HandleError(c, errors.New(errors.ErrUnauthorized, "Authentication required"))
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrBadRequest, "Image file is required", err))
		return
	}

	url, err := h.userService.UpdatePicture(c.Request.Context(), identity, kind, file)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, gin.H{"url": url}, "Picture updated")
}

// UpdateSettings 更新账号资料字段
func (h *ProfileHandler) UpdateSettings(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		errors.HandleError(c, errors.New(errors.ErrUnauthorized, "Authentication required"))
		return
	}

	var input service.SettingsInput
	if err := c.ShouldBind(&input); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrBadRequest, "Invalid request body", err))
		return
	}

	if err := h.userService.UpdateSettings(c.Request.Context(), identity.ID, input); err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, nil, "Settings updated")
}

// Suggestions 返回推荐关注的用户。
// 上游查询失败时降级为空结果，避免整页不可用
func (h *ProfileHandler) Suggestions(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		errors.HandleError(c, errors.New(errors.ErrUnauthorized, "Authentication required"))
		return
	}

	users, err := h.userService.Suggestions(c.Request.Context(), identity.ID)
	if err != nil {
		util.Logger.Error("获取推荐用户失败，降级为空列表", zap.Error(err))
		errors.HandleSuccess(c, []*model.User{}, "")
		return
	}
	errors.HandleSuccess(c, users, "")
}
