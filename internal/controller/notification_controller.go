package controller

import (
	"strconv"

	"qahub_backend/internal/model"
	"qahub_backend/internal/repository"
	"qahub_backend/internal/service"
	"qahub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type NotificationController struct {
	NotificationService *service.NotificationService
}

func NewNotificationController(notificationService *service.NotificationService) *NotificationController {
	return &NotificationController{NotificationService: notificationService}
}

type BroadcastRequest struct {
	RecipientIDs []uint `json:"recipientIds" binding:"required,min=1"`
	Title        string `json:"title" binding:"required,max=200"`
	Message      string `json:"message" binding:"required,max=1000"`
	Important    bool   `json:"important"`
}

// Broadcast godoc
// @Summary 批量下发系统通知
// @Tags 通知
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body controller.BroadcastRequest true "收件人与内容"
// @Success 200 {object} util.Response
// @Router /api/admin/notifications/broadcast [post]
func (c *NotificationController) Broadcast(ctx *gin.Context) {
	var req BroadcastRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	sent, err := c.NotificationService.BroadcastSystem(req.RecipientIDs, req.Title, req.Message, req.Important)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"sent": sent})
}

// Inbox godoc
// @Summary 通知收件箱
// @Description 重要通知置顶，支持按类型和已读状态筛选
// @Tags 通知
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Param type query string false "通知类型" Enums(answer, vote, accept, comment, mention, bounty, moderation, system)
// @Param read query bool false "已读状态"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/notifications [get]
func (c *NotificationController) Inbox(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	filter := repository.NotificationFilter{
		RecipientID: claims.UserID,
		Type:        model.NotificationType(ctx.Query("type")),
		Offset:      (page - 1) * limit,
		Limit:       limit,
	}
	if v := ctx.Query("read"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			filter.IsRead = &b
		}
	}

	notifications, total, err := c.NotificationService.Inbox(filter)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: notifications, Total: total, Page: page, Limit: limit})
}

// UnreadCount godoc
// @Summary 未读通知数
// @Tags 通知
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=object}
// @Router /api/notifications/unread-count [get]
func (c *NotificationController) UnreadCount(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	count, err := c.NotificationService.UnreadCount(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"count": count})
}

// MarkRead godoc
// @Summary 标记已读
// @Tags 通知
// @Produce json
// @Security BearerAuth
// @Param id path string true "通知ID"
// @Success 200 {object} util.Response
// @Router /api/notifications/{id}/read [put]
func (c *NotificationController) MarkRead(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.NotificationService.MarkRead(ctx.Param("id"), claims.UserID); err != nil {
		util.NotFound(ctx, "通知不存在")
		return
	}
	util.Success(ctx, nil)
}

// MarkUnread godoc
// @Summary 标记未读
// @Tags 通知
// @Produce json
// @Security BearerAuth
// @Param id path string true "通知ID"
// @Success 200 {object} util.Response
// @Router /api/notifications/{id}/read [delete]
func (c *NotificationController) MarkUnread(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.NotificationService.MarkUnread(ctx.Param("id"), claims.UserID); err != nil {
		util.NotFound(ctx, "通知不存在")
		return
	}
	util.Success(ctx, nil)
}

// MarkAllRead godoc
// @Summary 全部标记已读
// @Tags 通知
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=object}
// @Router /api/notifications/read-all [put]
func (c *NotificationController) MarkAllRead(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	affected, err := c.NotificationService.MarkAllRead(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"marked": affected})
}

// Delete godoc
// @Summary 删除通知
// @Tags 通知
// @Produce json
// @Security BearerAuth
// @Param id path string true "通知ID"
// @Success 200 {object} util.Response
// @Router /api/notifications/{id} [delete]
func (c *NotificationController) Delete(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.NotificationService.Delete(ctx.Param("id"), claims.UserID); err != nil {
		util.NotFound(ctx, "通知不存在")
		return
	}
	util.Success(ctx, nil)
}
