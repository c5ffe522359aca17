package controller

import (
	"errors"
	"strconv"

	"qahub_backend/internal/model"
	"qahub_backend/internal/service"
	"qahub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	UserService *service.UserService
}

func NewUserController(userService *service.UserService) *UserController {
	return &UserController{UserService: userService}
}

type ResetPasswordRequest struct {
	NewPassword string `json:"newPassword" binding:"required,min=6"`
}

type AdjustReputationRequest struct {
	Delta int `json:"delta" binding:"required"`
}

// GetProfile godoc
// @Summary 获取用户主页
// @Tags 用户
// @Produce json
// @Param id path int true "用户ID"
// @Success 200 {object} util.Response{data=service.UserProfileResponse}
// @Failure 404 {object} util.Response
// @Router /api/users/{id} [get]
func (c *UserController) GetProfile(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "无效的用户ID")
		return
	}

	profile, err := c.UserService.GetProfile(uint(id))
	if err != nil {
		util.NotFound(ctx, "用户不存在")
		return
	}
	util.Success(ctx, profile)
}

// UpdateProfile godoc
// @Summary 更新个人资料
// @Tags 用户
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.UpdateProfileRequest true "资料"
// @Success 200 {object} util.Response{data=service.UserProfileResponse}
// @Router /api/users/profile [put]
func (c *UserController) UpdateProfile(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.UpdateProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	profile, err := c.UserService.UpdateProfile(claims.UserID, &req)
	if err != nil {
		if errors.Is(err, util.ErrNameRegistered) {
			util.Error(ctx, 409, "该用户名已被使用")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, profile)
}

// ChangePassword godoc
// @Summary 修改密码
// @Tags 用户
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.ChangePasswordRequest true "新旧密码"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response "旧密码错误"
// @Router /api/users/password [put]
func (c *UserController) ChangePassword(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.ChangePasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.UserService.ChangePassword(claims.UserID, &req); err != nil {
		if errors.Is(err, util.ErrPasswordMismatch) {
			util.BadRequest(ctx, "旧密码错误")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, nil)
}

// ListUsers godoc
// @Summary 用户列表
// @Description 管理员分页查询用户
// @Tags 用户
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Param search query string false "按名称或邮箱搜索"
// @Param verified query bool false "是否已认证"
// @Param includeDeleted query bool false "包含已删除"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/admin/users [get]
func (c *UserController) ListUsers(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var verified *bool
	if v := ctx.Query("verified"); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			verified = &b
		}
	}
	includeDeleted, _ := strconv.ParseBool(ctx.DefaultQuery("includeDeleted", "false"))

	users, total, err := c.UserService.ListUsers((page-1)*limit, limit, ctx.Query("search"), verified, includeDeleted)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{List: users, Total: total, Page: page, Limit: limit})
}

// SetDisabled godoc
// @Summary 封禁/解封用户
// @Tags 用户
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户ID"
// @Param disabled query bool true "是否禁用"
// @Success 200 {object} util.Response
// @Router /api/admin/users/{id}/disabled [put]
func (c *UserController) SetDisabled(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "无效的用户ID")
		return
	}
	disabled, err := strconv.ParseBool(ctx.Query("disabled"))
	if err != nil {
		util.BadRequest(ctx, "disabled 参数无效")
		return
	}

	if err := c.UserService.SetDisabled(uint(id), disabled); err != nil {
		util.NotFound(ctx, "用户不存在")
		return
	}
	util.Success(ctx, nil)
}

// SetVerified godoc
// @Summary 认证用户
// @Tags 用户
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户ID"
// @Param verified query bool true "是否认证"
// @Success 200 {object} util.Response
// @Router /api/admin/users/{id}/verified [put]
func (c *UserController) SetVerified(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "无效的用户ID")
		return
	}
	verified, err := strconv.ParseBool(ctx.Query("verified"))
	if err != nil {
		util.BadRequest(ctx, "verified 参数无效")
		return
	}

	if err := c.UserService.SetVerified(uint(id), verified); err != nil {
		util.NotFound(ctx, "用户不存在")
		return
	}
	util.Success(ctx, nil)
}

// SetRole godoc
// @Summary 调整用户角色
// @Tags 用户
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户ID"
// @Param role query string true "角色" Enums(user, moderator, admin)
// @Success 200 {object} util.Response
// @Router /api/admin/users/{id}/role [put]
func (c *UserController) SetRole(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "无效的用户ID")
		return
	}

	role := model.UserRole(ctx.Query("role"))
	if role != model.RoleUser && role != model.RoleModerator && role != model.RoleAdmin {
		util.BadRequest(ctx, "role 参数无效")
		return
	}

	if err := c.UserService.SetRole(uint(id), role); err != nil {
		util.NotFound(ctx, "用户不存在")
		return
	}
	util.Success(ctx, nil)
}

// GetUser godoc
// @Summary 管理员查看用户详情
// @Description 包含被停用和已软删的账号
// @Tags 用户
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户ID"
// @Success 200 {object} util.Response{data=model.User}
// @Failure 404 {object} util.Response
// @Router /api/admin/users/{id} [get]
func (c *UserController) GetUser(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "无效的用户ID")
		return
	}

	user, err := c.UserService.GetUserAny(uint(id))
	if err != nil {
		util.NotFound(ctx, "用户不存在")
		return
	}
	util.Success(ctx, user)
}

// ResetPassword godoc
// @Summary 管理员重置用户密码
// @Tags 用户
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户ID"
// @Param body body controller.ResetPasswordRequest true "新密码"
// @Success 200 {object} util.Response
// @Router /api/admin/users/{id}/password [put]
func (c *UserController) ResetPassword(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "无效的用户ID")
		return
	}

	var req ResetPasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.UserService.ResetPassword(uint(id), req.NewPassword); err != nil {
		util.NotFound(ctx, "用户不存在")
		return
	}
	util.Success(ctx, nil)
}

// AdjustReputation godoc
// @Summary 管理员调整用户声望
// @Description 正负增量均可，结果下限为 0
// @Tags 用户
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户ID"
// @Param body body controller.AdjustReputationRequest true "声望增量"
// @Success 200 {object} util.Response{data=service.UserProfileResponse}
// @Router /api/admin/users/{id}/reputation [put]
func (c *UserController) AdjustReputation(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "无效的用户ID")
		return
	}

	var req AdjustReputationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	resp, err := c.UserService.AdjustReputation(uint(id), req.Delta)
	if err != nil {
		util.NotFound(ctx, "用户不存在")
		return
	}
	util.Success(ctx, resp)
}

// DeleteUser godoc
// @Summary 删除用户
// @Description 软删除，保留期内可恢复
// @Tags 用户
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户ID"
// @Success 200 {object} util.Response
// @Router /api/admin/users/{id} [delete]
func (c *UserController) DeleteUser(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "无效的用户ID")
		return
	}

	if err := c.UserService.SoftDelete(uint(id)); err != nil {
		util.NotFound(ctx, "用户不存在")
		return
	}
	util.Success(ctx, nil)
}

// RestoreUser godoc
// @Summary 恢复已删除用户
// @Tags 用户
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户ID"
// @Success 200 {object} util.Response
// @Router /api/admin/users/{id}/restore [post]
func (c *UserController) RestoreUser(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "无效的用户ID")
		return
	}

	if err := c.UserService.Restore(uint(id)); err != nil {
		util.NotFound(ctx, "用户不存在或未被删除")
		return
	}
	util.Success(ctx, nil)
}
