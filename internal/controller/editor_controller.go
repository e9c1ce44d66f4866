package controller

import (
	"cbt_cms/internal/model"
	"cbt_cms/internal/service"
	"cbt_cms/internal/util"

	"github.com/gin-gonic/gin"
)

// EditorController exposes the server side question form. A session holds one
// draft; commands mutate it, submit saves it through the exam API.
type EditorController struct {
	EditorService *service.EditorService
}

func NewEditorController(editorService *service.EditorService) *EditorController {
	return &EditorController{EditorService: editorService}
}

type applyCommandsRequest struct {
	Commands []model.EditorCommand `json:"commands" binding:"required,min=1,dive"`
}

// Open godoc
// @Summary 打开题目编辑会话
// @Description 不带 question_id 时新建题目；带 question_category_id 时预选分类
// @Tags 题目编辑
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.OpenEditorRequest false "打开参数"
// @Success 201 {object} util.Response{data=model.EditorSession}
// @Router /questions/editor [post]
func (c *EditorController) Open(ctx *gin.Context) {
	viewer, ok := currentViewer(ctx)
	if !ok {
		return
	}
	var req service.OpenEditorRequest
	if ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			util.BadRequest(ctx, err.Error())
			return
		}
	}

	session, err := c.EditorService.Open(ctx.Request.Context(), viewer, req)
	if err != nil {
		respondError(ctx, err, nil)
		return
	}
	util.Created(ctx, session)
}

// Get godoc
// @Summary 获取编辑会话
// @Tags 题目编辑
// @Produce json
// @Security ApiKeyAuth
// @Param sid path string true "会话ID"
// @Success 200 {object} util.Response{data=model.EditorSession}
// @Failure 404 {object} util.Response
// @Router /questions/editor/{sid} [get]
func (c *EditorController) Get(ctx *gin.Context) {
	viewer, ok := currentViewer(ctx)
	if !ok {
		return
	}

	session, err := c.EditorService.Get(ctx.Request.Context(), viewer, ctx.Param("sid"))
	if err != nil {
		respondError(ctx, err, nil)
		return
	}
	util.Success(ctx, session)
}

// Apply godoc
// @Summary 修改草稿
// @Description 按顺序执行命令，任一失败则全部不生效
// @Tags 题目编辑
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param sid path string true "会话ID"
// @Param body body applyCommandsRequest true "命令列表"
// @Success 200 {object} util.Response{data=model.EditorSession}
// @Failure 400 {object} util.Response
// @Router /questions/editor/{sid} [patch]
func (c *EditorController) Apply(ctx *gin.Context) {
	viewer, ok := currentViewer(ctx)
	if !ok {
		return
	}
	var req applyCommandsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	session, err := c.EditorService.Apply(ctx.Request.Context(), viewer, ctx.Param("sid"), req.Commands)
	if err != nil {
		respondError(ctx, err, nil)
		return
	}
	util.Success(ctx, session)
}

// Preview godoc
// @Summary 预览提交内容
// @Description 返回将发送给考试平台的请求体，不发送
// @Tags 题目编辑
// @Produce json
// @Security ApiKeyAuth
// @Param sid path string true "会话ID"
// @Success 200 {object} util.Response{data=object}
// @Failure 400 {object} util.Response
// @Router /questions/editor/{sid}/preview [post]
func (c *EditorController) Preview(ctx *gin.Context) {
	viewer, ok := currentViewer(ctx)
	if !ok {
		return
	}

	payload, err := c.EditorService.Preview(ctx.Request.Context(), viewer, ctx.Param("sid"))
	if err != nil {
		respondError(ctx, err, nil)
		return
	}
	util.Success(ctx, payload)
}

// Submit godoc
// @Summary 提交题目
// @Description 失败时会话保留，返回当前草稿
// @Tags 题目编辑
// @Produce json
// @Security ApiKeyAuth
// @Param sid path string true "会话ID"
// @Success 200 {object} util.Response{data=util.NotifiedData}
// @Failure 400 {object} util.Response
// @Failure 502 {object} util.Response
// @Router /questions/editor/{sid}/submit [post]
func (c *EditorController) Submit(ctx *gin.Context) {
	viewer, ok := currentViewer(ctx)
	if !ok {
		return
	}

	rep := newReporter(ctx)
	session, err := c.EditorService.Submit(ctx.Request.Context(), viewer, ctx.Param("sid"), rep)
	if err != nil {
		if session == nil {
			respondError(ctx, err, rep)
			return
		}
		respondErrorWithResult(ctx, err, rep, session)
		return
	}
	successWithNotes(ctx, session, rep)
}

// Close godoc
// @Summary 关闭编辑会话
// @Tags 题目编辑
// @Produce json
// @Security ApiKeyAuth
// @Param sid path string true "会话ID"
// @Success 200 {object} util.Response
// @Router /questions/editor/{sid} [delete]
func (c *EditorController) Close(ctx *gin.Context) {
	viewer, ok := currentViewer(ctx)
	if !ok {
		return
	}

	if err := c.EditorService.Close(ctx.Request.Context(), viewer, ctx.Param("sid")); err != nil {
		respondError(ctx, err, nil)
		return
	}
	util.Success(ctx, nil)
}
