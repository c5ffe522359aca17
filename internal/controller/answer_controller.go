package controller

import (
	"errors"
	"strconv"

	"qahub_backend/internal/service"
	"qahub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AnswerController struct {
	AnswerService *service.AnswerService
}

func NewAnswerController(answerService *service.AnswerService) *AnswerController {
	return &AnswerController{AnswerService: answerService}
}

// List godoc
// @Summary 问题下的回答列表
// @Description 已采纳的回答置顶，其余按票数排序
// @Tags 回答
// @Produce json
// @Param id path string true "问题ID"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/questions/{id}/answers [get]
func (c *AnswerController) List(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	answers, total, err := c.AnswerService.ListByQuestion(ctx.Param("id"), (page-1)*limit, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: answers, Total: total, Page: page, Limit: limit})
}

// Accepted godoc
// @Summary 问题当前采纳的回答
// @Tags 回答
// @Produce json
// @Param id path string true "问题ID"
// @Success 200 {object} util.Response{data=service.AnswerResponse}
// @Failure 404 {object} util.Response "该问题暂无采纳回答"
// @Router /api/questions/{id}/answers/accepted [get]
func (c *AnswerController) Accepted(ctx *gin.Context) {
	resp, err := c.AnswerService.GetAccepted(ctx.Param("id"))
	if err != nil {
		respondAnswerError(ctx, err)
		return
	}
	util.Success(ctx, resp)
}

// TopVoted godoc
// @Summary 高票回答榜单
// @Tags 回答
// @Produce json
// @Param limit query int false "数量" default(10)
// @Success 200 {object} util.Response{data=[]service.AnswerResponse}
// @Router /api/answers/top [get]
func (c *AnswerController) TopVoted(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "10"))
	if limit < 1 || limit > 50 {
		limit = 10
	}
	resp, err := c.AnswerService.ListHighlyVoted(limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, resp)
}

// Create godoc
// @Summary 回答问题
// @Tags 回答
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "问题ID"
// @Param body body service.AnswerRequest true "回答内容"
// @Success 201 {object} util.Response{data=service.AnswerResponse}
// @Failure 403 {object} util.Response "问题已关闭"
// @Router /api/questions/{id}/answers [post]
func (c *AnswerController) Create(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.AnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	resp, err := c.AnswerService.Create(ctx.Param("id"), claims.UserID, &req)
	if err != nil {
		respondAnswerError(ctx, err)
		return
	}
	util.Created(ctx, resp)
}

// Update godoc
// @Summary 编辑回答
// @Tags 回答
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "回答ID"
// @Param body body service.AnswerRequest true "回答内容"
// @Success 200 {object} util.Response{data=service.AnswerResponse}
// @Router /api/answers/{id} [put]
func (c *AnswerController) Update(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.AnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	resp, err := c.AnswerService.Update(ctx.Param("id"), claims.UserID, isModerator(claims), &req)
	if err != nil {
		respondAnswerError(ctx, err)
		return
	}
	util.Success(ctx, resp)
}

// Accept godoc
// @Summary 采纳回答
// @Description 仅提问者可操作，换采纳时旧采纳自动撤销
// @Tags 回答
// @Produce json
// @Security BearerAuth
// @Param id path string true "问题ID"
// @Param answerId path string true "回答ID"
// @Success 200 {object} util.Response{data=service.AnswerResponse}
// @Failure 400 {object} util.Response "回答不属于该问题"
// @Failure 403 {object} util.Response "仅提问者可采纳"
// @Router /api/questions/{id}/answers/{answerId}/accept [post]
func (c *AnswerController) Accept(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	resp, err := c.AnswerService.Accept(ctx.Param("id"), ctx.Param("answerId"), claims.UserID)
	if err != nil {
		respondAnswerError(ctx, err)
		return
	}
	util.Success(ctx, resp)
}

// Unaccept godoc
// @Summary 撤销采纳
// @Tags 回答
// @Produce json
// @Security BearerAuth
// @Param id path string true "问题ID"
// @Param answerId path string true "回答ID"
// @Success 200 {object} util.Response
// @Router /api/questions/{id}/answers/{answerId}/accept [delete]
func (c *AnswerController) Unaccept(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.AnswerService.Unaccept(ctx.Param("id"), ctx.Param("answerId"), claims.UserID); err != nil {
		respondAnswerError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// Vote godoc
// @Summary 给回答投票
// @Tags 回答
// @Produce json
// @Security BearerAuth
// @Param id path string true "回答ID"
// @Param direction query string true "方向" Enums(up, down)
// @Success 200 {object} util.Response{data=service.AnswerResponse}
// @Router /api/answers/{id}/vote [post]
func (c *AnswerController) Vote(ctx *gin.Context) {
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

	resp, err := c.AnswerService.Vote(ctx.Param("id"), claims.UserID, direction == "up")
	if err != nil {
		if errors.Is(err, util.ErrSelfVote) {
			util.BadRequest(ctx, "不能给自己的内容投票")
		} else {
			respondAnswerError(ctx, err)
		}
		return
	}
	util.Success(ctx, resp)
}

// Delete godoc
// @Summary 删除回答
// @Tags 回答
// @Produce json
// @Security BearerAuth
// @Param id path string true "回答ID"
// @Success 200 {object} util.Response
// @Router /api/answers/{id} [delete]
func (c *AnswerController) Delete(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.AnswerService.SoftDelete(ctx.Param("id"), claims.UserID, isModerator(claims)); err != nil {
		respondAnswerError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// Hide godoc
// @Summary 下架/恢复上架回答
// @Description 隐藏被采纳的回答会同步问题的已解决状态
// @Tags 回答
// @Produce json
// @Security BearerAuth
// @Param id path string true "回答ID"
// @Param hidden query bool true "是否下架"
// @Success 200 {object} util.Response
// @Router /api/admin/answers/{id}/hidden [put]
func (c *AnswerController) Hide(ctx *gin.Context) {
	hidden, err := strconv.ParseBool(ctx.Query("hidden"))
	if err != nil {
		util.BadRequest(ctx, "hidden 参数无效")
		return
	}

	if err := c.AnswerService.SetHidden(ctx.Param("id"), hidden); err != nil {
		respondAnswerError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// Restore godoc
// @Summary 恢复已删除回答
// @Tags 回答
// @Produce json
// @Security BearerAuth
// @Param id path string true "回答ID"
// @Success 200 {object} util.Response
// @Router /api/admin/answers/{id}/restore [post]
func (c *AnswerController) Restore(ctx *gin.Context) {
	if err := c.AnswerService.Restore(ctx.Param("id")); err != nil {
		util.NotFound(ctx, "回答不存在或未被删除")
		return
	}
	util.Success(ctx, nil)
}

func respondAnswerError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrNotFound):
		util.NotFound(ctx, "记录不存在")
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	case errors.Is(err, util.ErrQuestionMismatch):
		util.BadRequest(ctx, "回答不属于该问题")
	case errors.Is(err, util.ErrValidation):
		util.BadRequest(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}
