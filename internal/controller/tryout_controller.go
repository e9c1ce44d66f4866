package controller

import (
	"cbt_cms/internal/model"
	"cbt_cms/internal/service"
	"cbt_cms/internal/util"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type TryoutController struct {
	TryoutService *service.TryoutService
}

func NewTryoutController(tryoutService *service.TryoutService) *TryoutController {
	return &TryoutController{TryoutService: tryoutService}
}

// ListTests godoc
// @Summary 测验列表
// @Description pengawas 只能看到自己的测验
// @Tags 测验
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "页码"
// @Param paginate query int false "每页数量"
// @Param search query string false "关键字"
// @Param searchBySpecific query string false "搜索字段"
// @Param school_id query int false "学校ID"
// @Success 200 {object} util.Response{data=model.Page[model.Test]}
// @Router /tests [get]
func (c *TryoutController) ListTests(ctx *gin.Context) {
	viewer, ok := currentViewer(ctx)
	if !ok {
		return
	}
	var params service.TestListParams
	if err := ctx.ShouldBindQuery(&params); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	page, err := c.TryoutService.List(ctx.Request.Context(), viewer, params)
	if err != nil {
		respondError(ctx, err, nil)
		return
	}
	util.Success(ctx, page)
}

// DefaultForm godoc
// @Summary 新建测验的默认值
// @Tags 测验
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.TestForm}
// @Router /tests/defaults [get]
func (c *TryoutController) DefaultForm(ctx *gin.Context) {
	util.Success(ctx, model.DefaultTestForm())
}

// ListSupervisors godoc
// @Summary 可分配的监考人
// @Tags 测验
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.User}
// @Router /tests/supervisors [get]
func (c *TryoutController) ListSupervisors(ctx *gin.Context) {
	users, err := c.TryoutService.Supervisors(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err, nil)
		return
	}
	util.Success(ctx, users)
}

// CreateTest godoc
// @Summary 创建测验
// @Tags 测验
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body model.TestForm true "测验"
// @Success 201 {object} util.Response{data=util.NotifiedData}
// @Failure 400 {object} util.Response
// @Router /tests [post]
func (c *TryoutController) CreateTest(ctx *gin.Context) {
	viewer, ok := currentViewer(ctx)
	if !ok {
		return
	}
	var form model.TestForm
	if err := ctx.ShouldBindJSON(&form); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	rep := newReporter(ctx)
	test, err := c.TryoutService.Create(ctx.Request.Context(), viewer, form, rep)
	if err != nil {
		respondError(ctx, err, rep)
		return
	}
	util.Created(ctx, util.NotifiedData{Result: test, Notifications: rep.Notifications()})
}

// UpdateTest godoc
// @Summary 更新测验
// @Tags 测验
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "测验ID"
// @Param body body model.TestForm true "测验"
// @Success 200 {object} util.Response{data=util.NotifiedData}
// @Router /tests/{id} [put]
func (c *TryoutController) UpdateTest(ctx *gin.Context) {
	viewer, ok := currentViewer(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var form model.TestForm
	if err := ctx.ShouldBindJSON(&form); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	rep := newReporter(ctx)
	test, err := c.TryoutService.Update(ctx.Request.Context(), viewer, id, form, rep)
	if err != nil {
		respondError(ctx, err, rep)
		return
	}
	successWithNotes(ctx, test, rep)
}

// DeleteTest godoc
// @Summary 删除测验
// @Tags 测验
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "测验ID"
// @Param confirm query bool true "确认删除"
// @Param title query string false "通知中显示的名称"
// @Success 200 {object} util.Response{data=util.NotifiedData}
// @Failure 409 {object} util.Response "未确认"
// @Router /tests/{id} [delete]
func (c *TryoutController) DeleteTest(ctx *gin.Context) {
	viewer, ok := currentViewer(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	rep := newReporter(ctx)
	if err := c.TryoutService.Delete(ctx.Request.Context(), viewer, id, ctx.Query("title"), rep); err != nil {
		respondError(ctx, err, rep)
		return
	}
	successWithNotes(ctx, nil, rep)
}

// ExportResults godoc
// @Summary 导出测验结果
// @Description 考试平台异步生成
// @Tags 测验
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "测验ID"
// @Success 200 {object} util.Response{data=util.NotifiedData}
// @Router /tests/{id}/export [post]
func (c *TryoutController) ExportResults(ctx *gin.Context) {
	viewer, ok := currentViewer(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	rep := newReporter(ctx)
	res, err := c.TryoutService.ExportResults(ctx.Request.Context(), viewer, id, rep)
	if err != nil {
		respondError(ctx, err, rep)
		return
	}
	successWithNotes(ctx, res, rep)
}

// ExportPDF godoc
// @Summary 导出题目与答案 PDF
// @Tags 测验
// @Produce application/pdf
// @Security ApiKeyAuth
// @Param id path int true "测验ID"
// @Param school_name query string false "学校名称"
// @Success 200 {file} file
// @Failure 404 {object} util.Response "没有题目"
// @Router /tests/{id}/export/pdf [get]
func (c *TryoutController) ExportPDF(ctx *gin.Context) {
	viewer, ok := currentViewer(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	rep := newReporter(ctx)
	doc, err := c.TryoutService.ExportPDF(ctx.Request.Context(), viewer, id, ctx.Query("school_name"), rep)
	if err != nil {
		respondError(ctx, err, rep)
		return
	}

	ctx.Header(util.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", doc.FileName))
	ctx.Header(util.HeaderPdfPages, strconv.Itoa(doc.Pages))
	if doc.URL != "" {
		ctx.Header(util.HeaderArchiveURL, doc.URL)
	}
	ctx.Data(http.StatusOK, util.MimePDF, doc.Content)
}

// AttachQuestions godoc
// @Summary 向测验分区添加题目
// @Tags 测验
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "测验ID"
// @Param sectionId path int true "分区ID"
// @Param body body model.AttachQuestionsRequest true "题目ID列表"
// @Success 200 {object} util.Response{data=model.TransferResult}
// @Router /tests/{id}/sections/{sectionId}/questions [post]
func (c *TryoutController) AttachQuestions(ctx *gin.Context) {
	viewer, ok := currentViewer(ctx)
	if !ok {
		return
	}
	testID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	sectionID, ok := pathID(ctx, "sectionId")
	if !ok {
		return
	}
	var req model.AttachQuestionsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	res, err := c.TryoutService.AttachQuestions(ctx.Request.Context(), viewer, testID, sectionID, req.QuestionIDs)
	if err != nil {
		respondError(ctx, err, nil)
		return
	}
	util.Success(ctx, res)
}

// ListSchools godoc
// @Summary 学校列表
// @Tags 测验
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "页码"
// @Param paginate query int false "每页数量"
// @Param search query string false "关键字"
// @Success 200 {object} util.Response{data=model.Page[model.School]}
// @Router /schools [get]
func (c *TryoutController) ListSchools(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	paginate, _ := strconv.Atoi(ctx.Query("paginate"))

	res, err := c.TryoutService.Schools(ctx.Request.Context(), page, paginate, ctx.Query("search"))
	if err != nil {
		respondError(ctx, err, nil)
		return
	}
	util.Success(ctx, res)
}
