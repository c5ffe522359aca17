package controller

import (
	"errors"
	"strconv"

	"qahub_backend/internal/service"
	"qahub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type TagController struct {
	TagService *service.TagService
}

func NewTagController(tagService *service.TagService) *TagController {
	return &TagController{TagService: tagService}
}

// List godoc
// @Summary 标签列表
// @Description 按使用次数倒序分页
// @Tags 标签
// @Produce json
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(50)
// @Param search query string false "按名称搜索"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/tags [get]
func (c *TagController) List(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "50"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}

	tags, total, err := c.TagService.List((page-1)*limit, limit, ctx.Query("search"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: tags, Total: total, Page: page, Limit: limit})
}

// Get godoc
// @Summary 标签详情
// @Tags 标签
// @Produce json
// @Param id path int true "标签ID"
// @Success 200 {object} util.Response{data=service.TagResponse}
// @Router /api/tags/{id} [get]
func (c *TagController) Get(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "无效的标签ID")
		return
	}

	tag, err := c.TagService.Get(uint(id))
	if err != nil {
		util.NotFound(ctx, "标签不存在")
		return
	}
	util.Success(ctx, tag)
}

// Create godoc
// @Summary 创建标签
// @Description 标签名自动转小写，仅允许字母数字连字符下划线
// @Tags 标签
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.TagRequest true "标签信息"
// @Success 201 {object} util.Response{data=service.TagResponse}
// @Failure 409 {object} util.Response "标签名已存在"
// @Router /api/admin/tags [post]
func (c *TagController) Create(ctx *gin.Context) {
	var req service.TagRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	tag, err := c.TagService.Create(&req)
	if err != nil {
		respondTagError(ctx, err)
		return
	}
	util.Created(ctx, tag)
}

// Update godoc
// @Summary 编辑标签
// @Tags 标签
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "标签ID"
// @Param body body service.TagRequest true "标签信息"
// @Success 200 {object} util.Response{data=service.TagResponse}
// @Router /api/admin/tags/{id} [put]
func (c *TagController) Update(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "无效的标签ID")
		return
	}

	var req service.TagRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	tag, err := c.TagService.Update(uint(id), &req)
	if err != nil {
		respondTagError(ctx, err)
		return
	}
	util.Success(ctx, tag)
}

// SetSynonym godoc
// @Summary 设置同义标签
// @Description synonymOfId 为空则清除同义指向，成环会被拒绝
// @Tags 标签
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "标签ID"
// @Param body body service.SynonymRequest true "主标签ID"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response "同义链成环"
// @Router /api/admin/tags/{id}/synonym [put]
func (c *TagController) SetSynonym(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "无效的标签ID")
		return
	}

	var req service.SynonymRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.TagService.SetSynonym(uint(id), req.SynonymOfID); err != nil {
		if errors.Is(err, util.ErrTagSynonymCycle) {
			util.BadRequest(ctx, "同义标签不能形成环")
			return
		}
		respondTagError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// Feature godoc
// @Summary 设置精选标签
// @Tags 标签
// @Produce json
// @Security BearerAuth
// @Param id path int true "标签ID"
// @Param featured query bool true "是否精选"
// @Success 200 {object} util.Response
// @Router /api/admin/tags/{id}/featured [put]
func (c *TagController) Feature(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "无效的标签ID")
		return
	}
	featured, err := strconv.ParseBool(ctx.Query("featured"))
	if err != nil {
		util.BadRequest(ctx, "featured 参数无效")
		return
	}

	if err := c.TagService.SetFeatured(uint(id), featured); err != nil {
		respondTagError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// Moderate godoc
// @Summary 设置受控标签
// @Tags 标签
// @Produce json
// @Security BearerAuth
// @Param id path int true "标签ID"
// @Param moderated query bool true "是否受控"
// @Success 200 {object} util.Response
// @Router /api/admin/tags/{id}/moderated [put]
func (c *TagController) Moderate(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "无效的标签ID")
		return
	}
	moderated, err := strconv.ParseBool(ctx.Query("moderated"))
	if err != nil {
		util.BadRequest(ctx, "moderated 参数无效")
		return
	}

	if err := c.TagService.SetModerated(uint(id), moderated); err != nil {
		respondTagError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// Delete godoc
// @Summary 删除标签
// @Tags 标签
// @Produce json
// @Security BearerAuth
// @Param id path int true "标签ID"
// @Success 200 {object} util.Response
// @Router /api/admin/tags/{id} [delete]
func (c *TagController) Delete(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "无效的标签ID")
		return
	}

	if err := c.TagService.SoftDelete(uint(id)); err != nil {
		util.NotFound(ctx, "标签不存在")
		return
	}
	util.Success(ctx, nil)
}

// Hide godoc
// @Summary 下架/恢复上架标签
// @Tags 标签
// @Produce json
// @Security BearerAuth
// @Param id path int true "标签ID"
// @Param hidden query bool true "是否下架"
// @Success 200 {object} util.Response
// @Router /api/admin/tags/{id}/hidden [put]
func (c *TagController) Hide(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "无效的标签ID")
		return
	}
	hidden, err := strconv.ParseBool(ctx.Query("hidden"))
	if err != nil {
		util.BadRequest(ctx, "hidden 参数无效")
		return
	}

	if err := c.TagService.SetHidden(uint(id), hidden); err != nil {
		respondTagError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// Restore godoc
// @Summary 恢复已删除标签
// @Tags 标签
// @Produce json
// @Security BearerAuth
// @Param id path int true "标签ID"
// @Success 200 {object} util.Response
// @Router /api/admin/tags/{id}/restore [post]
func (c *TagController) Restore(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "无效的标签ID")
		return
	}

	if err := c.TagService.Restore(uint(id)); err != nil {
		util.NotFound(ctx, "标签不存在或未被删除")
		return
	}
	util.Success(ctx, nil)
}

func respondTagError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrNotFound):
		util.NotFound(ctx, "标签不存在")
	case errors.Is(err, util.ErrTagNameTaken):
		util.Error(ctx, 409, "标签名已存在")
	case errors.Is(err, util.ErrValidation):
		util.BadRequest(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}
