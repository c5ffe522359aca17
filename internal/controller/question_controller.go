package controller

import (
	"errors"
	"strconv"

	"qahub_backend/internal/model"
	"qahub_backend/internal/repository"
	"qahub_backend/internal/service"
	"qahub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuestionController struct {
	QuestionService *service.QuestionService
}

func NewQuestionController(questionService *service.QuestionService) *QuestionController {
	return &QuestionController{QuestionService: questionService}
}

func isModerator(claims *util.Claims) bool {
	return claims != nil && (claims.Role == model.RoleModerator || claims.Role == model.RoleAdmin)
}

// List godoc
// @Summary 问题列表
// @Description 分页查询问题，支持标签、关键词、状态筛选
// @Tags 问题
// @Produce json
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Param tag query string false "标签筛选"
// @Param search query string false "关键词"
// @Param answered query bool false "是否已解决"
// @Param popular query bool false "只看热门"
// @Param bounty query bool false "只看有悬赏"
// @Param featured query bool false "只看精选"
// @Param author query int false "按作者筛选"
// @Param sort query string false "排序" Enums(new, votes, views) default(new)
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/questions [get]
func (c *QuestionController) List(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	filter := repository.QuestionFilter{
		Offset: (page - 1) * limit,
		Limit:  limit,
		Tag:    ctx.Query("tag"),
		Search: ctx.Query("search"),
		Sort:   ctx.DefaultQuery("sort", "new"),
	}
	if v := ctx.Query("answered"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			filter.Answered = &b
		}
	}
	filter.Popular, _ = strconv.ParseBool(ctx.DefaultQuery("popular", "false"))
	filter.HasBounty, _ = strconv.ParseBool(ctx.DefaultQuery("bounty", "false"))
	if v := ctx.Query("featured"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			filter.Featured = &b
		}
	}
	if v := ctx.Query("author"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			filter.AuthorID = uint(id)
		}
	}

	questions, total, err := c.QuestionService.List(filter)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{List: questions, Total: total, Page: page, Limit: limit})
}

// Detail godoc
// @Summary 问题详情
// @Description 返回问题详情并累计浏览量
// @Tags 问题
// @Produce json
// @Param id path string true "问题ID"
// @Success 200 {object} util.Response{data=service.QuestionResponse}
// @Failure 404 {object} util.Response
// @Router /api/questions/{id} [get]
func (c *QuestionController) Detail(ctx *gin.Context) {
	var viewerID uint
	if claims := util.GetUserFromContext(ctx); claims != nil {
		viewerID = claims.UserID
	}

	resp, err := c.QuestionService.GetDetail(ctx.Param("id"), viewerID)
	if err != nil {
		util.NotFound(ctx, "问题不存在")
		return
	}
	util.Success(ctx, resp)
}

// Create godoc
// @Summary 提问
// @Tags 问题
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.QuestionRequest true "问题内容"
// @Success 201 {object} util.Response{data=service.QuestionResponse}
// @Failure 400 {object} util.Response
// @Router /api/questions [post]
func (c *QuestionController) Create(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	resp, err := c.QuestionService.Create(claims.UserID, &req)
	if err != nil {
		if errors.Is(err, util.ErrValidation) {
			util.BadRequest(ctx, err.Error())
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, resp)
}

// Update godoc
// @Summary 编辑问题
// @Tags 问题
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "问题ID"
// @Param body body service.QuestionRequest true "问题内容"
// @Success 200 {object} util.Response{data=service.QuestionResponse}
// @Failure 403 {object} util.Response
// @Router /api/questions/{id} [put]
func (c *QuestionController) Update(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	resp, err := c.QuestionService.Update(ctx.Param("id"), claims.UserID, isModerator(claims), &req)
	if err != nil {
		respondQuestionError(ctx, err)
		return
	}
	util.Success(ctx, resp)
}

// Vote godoc
// @Summary 给问题投票
// @Description direction 取 up 或 down，不能给自己的问题投票
// @Tags 问题
// @Produce json
// @Security BearerAuth
// @Param id path string true "问题ID"
// @Param direction query string true "方向" Enums(up, down)
// @Success 200 {object} util.Response{data=service.QuestionResponse}
// @Failure 400 {object} util.Response "不能给自己投票"
// @Router /api/questions/{id}/vote [post]
func (c *QuestionController) Vote(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	direction := ctx.Query("direction")
	if direction != "up" && direction != "down" {
		util.BadRequest(ctx, "direction 必须是 up 或 down")
		return
	}

	resp, err := c.QuestionService.Vote(ctx.Param("id"), claims.UserID, direction == "up")
	if err != nil {
		if errors.Is(err, util.ErrSelfVote) {
			util.BadRequest(ctx, "不能给自己的内容投票")
		} else {
			respondQuestionError(ctx, err)
		}
		return
	}
	util.Success(ctx, resp)
}

// Close godoc
// @Summary 关闭/重开问题
// @Tags 问题
// @Produce json
// @Security BearerAuth
// @Param id path string true "问题ID"
// @Param closed query bool true "是否关闭"
// @Success 200 {object} util.Response
// @Router /api/questions/{id}/closed [put]
func (c *QuestionController) Close(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	closed, err := strconv.ParseBool(ctx.Query("closed"))
	if err != nil {
		util.BadRequest(ctx, "closed 参数无效")
		return
	}

	if err := c.QuestionService.SetClosed(ctx.Param("id"), claims.UserID, isModerator(claims), closed); err != nil {
		respondQuestionError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// Feature godoc
// @Summary 设置精选
// @Tags 问题
// @Produce json
// @Security BearerAuth
// @Param id path string true "问题ID"
// @Param featured query bool true "是否精选"
// @Success 200 {object} util.Response
// @Router /api/admin/questions/{id}/featured [put]
func (c *QuestionController) Feature(ctx *gin.Context) {
	featured, err := strconv.ParseBool(ctx.Query("featured"))
	if err != nil {
		util.BadRequest(ctx, "featured 参数无效")
		return
	}

	if err := c.QuestionService.SetFeatured(ctx.Param("id"), featured); err != nil {
		respondQuestionError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// Hide godoc
// @Summary 下架/恢复上架问题
// @Description 下架后对外不可见，不影响删除标记
// @Tags 问题
// @Produce json
// @Security BearerAuth
// @Param id path string true "问题ID"
// @Param hidden query bool true "是否下架"
// @Success 200 {object} util.Response
// @Router /api/admin/questions/{id}/hidden [put]
func (c *QuestionController) Hide(ctx *gin.Context) {
	hidden, err := strconv.ParseBool(ctx.Query("hidden"))
	if err != nil {
		util.BadRequest(ctx, "hidden 参数无效")
		return
	}

	if err := c.QuestionService.SetHidden(ctx.Param("id"), hidden); err != nil {
		respondQuestionError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// SetBounty godoc
// @Summary 设置悬赏
// @Tags 问题
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "问题ID"
// @Param body body service.BountyRequest true "悬赏金额和期限"
// @Success 200 {object} util.Response
// @Router /api/questions/{id}/bounty [post]
func (c *QuestionController) SetBounty(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.BountyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.QuestionService.SetBounty(ctx.Param("id"), claims.UserID, &req); err != nil {
		respondQuestionError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// Delete godoc
// @Summary 删除问题
// @Description 软删除，保留期内可由管理员恢复
// @Tags 问题
// @Produce json
// @Security BearerAuth
// @Param id path string true "问题ID"
// @Success 200 {object} util.Response
// @Router /api/questions/{id} [delete]
func (c *QuestionController) Delete(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.QuestionService.SoftDelete(ctx.Param("id"), claims.UserID, isModerator(claims)); err != nil {
		respondQuestionError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// Restore godoc
// @Summary 恢复已删除问题
// @Tags 问题
// @Produce json
// @Security BearerAuth
// @Param id path string true "问题ID"
// @Success 200 {object} util.Response
// @Router /api/admin/questions/{id}/restore [post]
func (c *QuestionController) Restore(ctx *gin.Context) {
	if err := c.QuestionService.Restore(ctx.Param("id")); err != nil {
		util.NotFound(ctx, "问题不存在或未被删除")
		return
	}
	util.Success(ctx, nil)
}

func respondQuestionError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrNotFound):
		util.NotFound(ctx, "问题不存在")
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	case errors.Is(err, util.ErrValidation):
		util.BadRequest(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}
