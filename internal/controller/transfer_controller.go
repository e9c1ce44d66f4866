package controller

import (
	"cbt_cms/internal/model"
	"cbt_cms/internal/service"
	"cbt_cms/internal/util"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type TransferController struct {
	TransferService *service.TransferService
}

func NewTransferController(transferService *service.TransferService) *TransferController {
	return &TransferController{TransferService: transferService}
}

// ListTransfers godoc
// @Summary 导入导出记录
// @Tags 系统
// @Produce json
// @Security ApiKeyAuth
// @Param kind query string false "类型" Enums(question_import, question_export, test_export, test_pdf)
// @Param requested_by query int false "操作人ID"
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response{data=object}
// @Router /transfers [get]
func (c *TransferController) ListTransfers(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	filter := model.TransferJobFilter{
		Kind:        model.TransferKind(ctx.Query("kind")),
		RequestedBy: util.MustParseUint(ctx.Query("requested_by")),
		Page:        page,
		Limit:       limit,
	}

	jobs, total, err := c.TransferService.List(filter)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"items": jobs,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// GetTransfer godoc
// @Summary 导入导出记录详情
// @Tags 系统
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "记录ID"
// @Success 200 {object} util.Response{data=model.TransferJob}
// @Failure 404 {object} util.Response
// @Router /transfers/{id} [get]
func (c *TransferController) GetTransfer(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	job, err := c.TransferService.Get(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, job)
}
