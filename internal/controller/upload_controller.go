package controller

import (
	"cbt_cms/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

type UploadController struct {
	UploadService *service.UploadService
}

func NewUploadController(uploadService *service.UploadService) *UploadController {
	return &UploadController{UploadService: uploadService}
}

// Upload godoc
// @Summary 富文本编辑器上传
// @Description 响应为编辑器组件的格式 {result:[{url,name,size}]} 或 {errorMessage}，不使用统一响应结构
// @Tags 上传
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param file formData file true "图片或视频"
// @Success 200 {object} service.WidgetResponse
// @Router /uploads [post]
func (c *UploadController) Upload(ctx *gin.Context) {
	fh, _ := ctx.FormFile("file")
	ctx.JSON(http.StatusOK, c.UploadService.WidgetUpload(ctx.Request.Context(), fh))
}
