package marketplace

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

type MarketplaceHandler struct {
	marketplaceService *service.MarketplaceService
}

func NewMarketplaceHandler(marketplaceService *service.MarketplaceService) *MarketplaceHandler {
	return &MarketplaceHandler{marketplaceService: marketplaceService}
}

func (h *MarketplaceHandler) CreateAd(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		errors.HandleError(c, errors.New(errors.ErrUnauthorized, "Authentication required"))
		return
	}

	var input model.AdInput
	if err := c.ShouldBind(&input); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "Title and price are required", err))
		return
	}

	var files []*multipart.FileHeader
	if form, err := c.MultipartForm(); err == nil && form != nil {
		files = form.File["images[]"]
	}

	ad, err := h.marketplaceService.CreateAd(c.Request.Context(), identity, input, files)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, ad, "Ad created")
}

func (h *MarketplaceHandler) GetAd(c *gin.Context) {
	ad, err := h.marketplaceService.GetAd(c.Request.Context(), c.Param("id"))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, ad, "")
}

// ListAds 广告列表，支持搜索/排序/分页。
// 上游查询失败时降级为空结果，避免整页不可用
func (h *MarketplaceHandler) ListAds(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "6"))

	filter := model.AdFilter{
		Search: c.Query("search"),
		Sort:   c.Query("sort"),
		Page:   page,
		Limit:  limit,
	}

	ads, total, err := h.marketplaceService.FilterAds(c.Request.Context(), filter)
	if err != nil {
		util.Logger.Error("广告筛选查询失败，降级为空结果", zap.Error(err))
		errors.HandleSuccess(c, gin.H{"ads": []*model.Ad{}, "total": 0}, "")
		return
	}
	errors.HandleSuccess(c, gin.H{"ads": ads, "total": total}, "")
}

func (h *MarketplaceHandler) ListMyAds(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		errors.HandleError(c, errors.New(errors.ErrUnauthorized, "Authentication required"))
		return
	}

	ads, err := h.marketplaceService.ListUserAds(c.Request.Context(), identity.ID)
	if err != nil {
		util.Logger.Error("获取我的广告失败，降级为空列表", zap.Error(err))
		errors.HandleSuccess(c, []*model.Ad{}, "")
		return
	}
	errors.HandleSuccess(c, ads, "")
}

func (h *MarketplaceHandler) UpdateAd(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		errors.HandleError(c, errors.New(errors.ErrUnauthorized, "Authentication required"))
		return
	}

	var input model.AdInput
	if err := c.ShouldBind(&input); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "Title and price are required", err))
		return
	}

	var files []*multipart.FileHeader
	if form, err := c.MultipartForm(); err == nil && form != nil {
		files = form.File["images[]"]
	}

	ad, err := h.marketplaceService.UpdateAd(c.Request.Context(), c.Param("id"), identity.ID, input, files)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, ad, "Ad updated")
}

func (h *MarketplaceHandler) DeleteAd(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		errors.HandleError(c, errors.New(errors.ErrUnauthorized, "Authentication required"))
		return
	}

	if err := h.marketplaceService.DeleteAd(c.Request.Context(), c.Param("id"), identity.ID); err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, nil, "Ad deleted")
}
