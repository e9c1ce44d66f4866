package controller

import (
	"cbt_cms/internal/service"
	"cbt_cms/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type QuestionController struct {
	BankService  *service.QuestionBankService
	ListSessions *service.QuestionListSessions
}

func NewQuestionController(bankService *service.QuestionBankService, lists *service.QuestionListSessions) *QuestionController {
	return &QuestionController{BankService: bankService, ListSessions: lists}
}

// ListCategories godoc
// @Summary 题目分类列表
// @Tags 题库
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "页码"
// @Param paginate query int false "每页数量"
// @Param search query string false "关键字"
// @Success 200 {object} util.Response{data=model.Page[model.CategoryQuestion]}
// @Router /question-categories [get]
func (c *QuestionController) ListCategories(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	paginate, _ := strconv.Atoi(ctx.Query("paginate"))

	res, err := c.BankService.Categories(ctx.Request.Context(), page, paginate, ctx.Query("search"))
	if err != nil {
		respondError(ctx, err, nil)
		return
	}
	util.Success(ctx, res)
}

// ListQuestions godoc
// @Summary 分类下的题目列表
// @Description 必须指定分类；结果按分类再过滤一次
// @Tags 题库
// @Produce json
// @Security ApiKeyAuth
// @Param question_category_id query int true "分类ID"
// @Param category_name query string false "分类名称"
// @Param page query int false "页码"
// @Param search query string false "关键字"
// @Param searchBySpecific query string false "按指定字段搜索"
// @Success 200 {object} util.Response{data=model.Page[model.Question]}
// @Failure 400 {object} util.Response "未选择分类"
// @Router /questions [get]
func (c *QuestionController) ListQuestions(ctx *gin.Context) {
	var params service.QuestionListParams
	if err := ctx.ShouldBindQuery(&params); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	res, err := c.BankService.List(ctx.Request.Context(), params)
	if err != nil {
		respondError(ctx, err, nil)
		return
	}
	util.Success(ctx, res)
}

// GetQuestion godoc
// @Summary 题目详情
// @Tags 题库
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "题目ID"
// @Success 200 {object} util.Response{data=model.Question}
// @Router /questions/{id} [get]
func (c *QuestionController) GetQuestion(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	q, err := c.BankService.Get(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err, nil)
		return
	}
	util.Success(ctx, q)
}

// DeleteQuestion godoc
// @Summary 删除题目
// @Description 需要 confirm=true；带上当前列表参数时返回刷新后的列表
// @Tags 题库
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "题目ID"
// @Param confirm query bool true "确认删除"
// @Param question_category_id query int false "当前分类"
// @Param page query int false "当前页"
// @Param search query string false "当前关键字"
// @Success 200 {object} util.Response{data=util.NotifiedData}
// @Failure 409 {object} util.Response "未确认"
// @Router /questions/{id} [delete]
func (c *QuestionController) DeleteQuestion(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var current service.QuestionListParams
	if err := ctx.ShouldBindQuery(&current); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	rep := newReporter(ctx)
	page, err := c.BankService.Delete(ctx.Request.Context(), id, current, rep)
	if err != nil {
		respondError(ctx, err, rep)
		return
	}
	successWithNotes(ctx, page, rep)
}

// ImportTemplate godoc
// @Summary 导入模板地址
// @Tags 题库
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=object}
// @Router /questions/import-template [get]
func (c *QuestionController) ImportTemplate(ctx *gin.Context) {
	util.Success(ctx, gin.H{"url": c.BankService.ImportTemplateURL()})
}

// ImportQuestions godoc
// @Summary 导入题目
// @Description 上传表格交给考试平台异步处理
// @Tags 题库
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param question_category_id formData int true "分类ID"
// @Param file formData file true "导入文件"
// @Success 200 {object} util.Response{data=util.NotifiedData}
// @Failure 400 {object} util.Response
// @Router /questions/import [post]
func (c *QuestionController) ImportQuestions(ctx *gin.Context) {
	viewer, ok := currentViewer(ctx)
	if !ok {
		return
	}
	categoryID := util.MustParseUint(ctx.PostForm("question_category_id"))
	fh, _ := ctx.FormFile("file")

	rep := newReporter(ctx)
	res, err := c.BankService.Import(ctx.Request.Context(), viewer, categoryID, fh, rep)
	if err != nil {
		respondError(ctx, err, rep)
		return
	}
	successWithNotes(ctx, res, rep)
}

type exportQuestionsRequest struct {
	QuestionCategoryID uint `json:"question_category_id" form:"question_category_id"`
}

// ExportQuestions godoc
// @Summary 导出题目
// @Tags 题库
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body exportQuestionsRequest true "分类"
// @Success 200 {object} util.Response{data=util.NotifiedData}
// @Router /questions/export [post]
func (c *QuestionController) ExportQuestions(ctx *gin.Context) {
	viewer, ok := currentViewer(ctx)
	if !ok {
		return
	}
	var req exportQuestionsRequest
	if err := ctx.ShouldBind(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	rep := newReporter(ctx)
	res, err := c.BankService.Export(ctx.Request.Context(), viewer, req.QuestionCategoryID, rep)
	if err != nil {
		respondError(ctx, err, rep)
		return
	}
	successWithNotes(ctx, res, rep)
}
