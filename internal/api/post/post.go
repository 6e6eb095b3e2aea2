package post

import (
	"mime/multipart"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Thinkbigalways/pethud2.0/internal/errors"
	"github.com/Thinkbigalways/pethud2.0/internal/middleware"
	"github.com/Thinkbigalways/pethud2.0/internal/model"
	"github.com/Thinkbigalways/pethud2.0/internal/service"
	"github.com/Thinkbigalways/pethud2.0/internal/util"
)

const defaultFeedLimit = 50

type PostHandler struct {
	postService *service.PostService
}

func NewPostHandler(postService *service.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

// CreatePost 发帖。媒体通过多部分表单上传，
// 也接受客户端直传后的 media[] URL 列表
func (h *PostHandler) CreatePost(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		errors.HandleError(c, errors.New(errors.ErrUnauthorized, "Authentication required"))
		return
	}

	// 解析多部分表单
	if err := c.Request.ParseMultipartForm(32 << 20); err != nil && c.ContentType() == "multipart/form-data" {
		util.Logger.Error("无法解析表单数据", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrBadRequest, "Invalid form data", err))
		return
	}

	content := c.PostForm("content")
	var files []*multipart.FileHeader
	var preUploaded []string
	if form, err := c.MultipartForm(); err == nil && form != nil {
		files = form.File["media[]"]
		preUploaded = form.Value["media[]"]
	}

	post, err := h.postService.CreatePost(c.Request.Context(), identity, content, files, preUploaded)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, post, "Post created")
}

// ListFeed 首页信息流，按创建时间倒序。
// 上游查询失败时降级为空结果，避免整页不可用
func (h *PostHandler) ListFeed(c *gin.Context) {
	identity, _ := middleware.CurrentIdentity(c)

	limit, err := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)
	if err != nil || limit <= 0 || limit > 100 {
		limit = defaultFeedLimit
	}

	posts, err := h.postService.ListFeed(c.Request.Context(), identity.ID, limit)
	if err != nil {
		util.Logger.Error("获取信息流失败，降级为空列表", zap.Error(err))
		errors.HandleSuccess(c, []*model.Post{}, "")
		return
	}
	errors.HandleSuccess(c, posts, "")
}

func (h *PostHandler) GetPost(c *gin.Context) {
	identity, _ := middleware.CurrentIdentity(c)

	post, err := h.postService.GetPost(c.Request.Context(), c.Param("id"), identity.ID)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, post, "")
}

func (h *PostHandler) DeletePost(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		errors.HandleError(c, errors.New(errors.ErrUnauthorized, "Authentication required"))
		return
	}

	if err := h.postService.DeletePost(c.Request.Context(), c.Param("id"), identity.ID); err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, nil, "Post deleted")
}

// ReplaceMedia 整组替换帖子媒体
func (h *PostHandler) ReplaceMedia(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		errors.HandleError(c, errors.New(errors.ErrUnauthorized, "Authentication required"))
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrBadRequest, "Invalid form data", err))
		return
	}

	post, err := h.postService.ReplaceMedia(c.Request.Context(), c.Param("id"), identity.ID, form.File["media[]"])
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, post, "Media updated")
}

// ToggleLike 切换点赞状态
func (h *PostHandler) ToggleLike(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		errors.HandleError(c, errors.New(errors.ErrUnauthorized, "Authentication required"))
		return
	}

	liked, err := h.postService.ToggleLike(c.Request.Context(), c.Param("id"), identity.ID)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, gin.H{"liked": liked}, "")
}

func (h *PostHandler) ListComments(c *gin.Context) {
	identity, _ := middleware.CurrentIdentity(c)

	comments, err := h.postService.ListComments(c.Request.Context(), c.Param("id"), identity.ID)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, comments, "")
}

type commentInput struct {
	Content string `form:"content" json:"content"`
}

func (h *PostHandler) AddComment(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		errors.HandleError(c, errors.New(errors.ErrUnauthorized, "Authentication required"))
		return
	}

	var input commentInput
	if err := c.ShouldBind(&input); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrBadRequest, "Invalid request body", err))
		return
	}

	comment, err := h.postService.AddComment(c.Request.Context(), c.Param("id"), identity, input.Content)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, comment, "Comment added")
}

// DeleteComment 删除评论，帖子标识通过 post_id 查询参数传入
func (h *PostHandler) DeleteComment(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		errors.HandleError(c, errors.New(errors.ErrUnauthorized, "Authentication required"))
		return
	}

	postID := c.Query("post_id")
	if postID == "" {
		errors.HandleError(c, errors.New(errors.ErrBadRequest, "post_id is required"))
		return
	}

	if err := h.postService.DeleteComment(c.Request.Context(), postID, c.Param("id"), identity.ID); err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, nil, "Comment deleted")
}
