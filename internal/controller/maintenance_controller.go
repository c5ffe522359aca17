package controller

import (
	"strconv"

	"qahub_backend/internal/service"
	"qahub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type MaintenanceController struct {
	RetentionService *service.RetentionService
	RetentionDays    int
}

func NewMaintenanceController(retentionService *service.RetentionService, retentionDays int) *MaintenanceController {
	return &MaintenanceController{
		RetentionService: retentionService,
		RetentionDays:    retentionDays,
	}
}

// Sweep godoc
// @Summary 手动触发保留期清理
// @Description 物理清除软删超过保留期的记录，可重复执行
// @Tags 系统
// @Produce json
// @Security BearerAuth
// @Param days query int false "保留天数，缺省用配置值"
// @Success 200 {object} util.Response{data=service.SweepResult}
// @Router /api/admin/maintenance/retention-sweep [post]
func (c *MaintenanceController) Sweep(ctx *gin.Context) {
	days := c.RetentionDays
	if v := ctx.Query("days"); v != "" {
		d, err := strconv.Atoi(v)
		if err != nil || d < 1 {
			util.BadRequest(ctx, "days 参数无效")
			return
		}
		days = d
	}

	result, err := c.RetentionService.SweepOlderThan(days)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, result)
}
