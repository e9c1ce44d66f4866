package controller

import (
	"cbt_cms/internal/service"
	"cbt_cms/internal/util"

	"github.com/gin-gonic/gin"
)

// OpenList godoc
// @Summary 打开题目列表会话
// @Description 服务端保存筛选条件，搜索在 400ms 无输入后才重新拉取
// @Tags 题库
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.OpenListRequest true "初始分类"
// @Success 201 {object} util.Response{data=service.ListSessionView}
// @Router /questions/lists [post]
func (c *QuestionController) OpenList(ctx *gin.Context) {
	viewer, ok := currentViewer(ctx)
	if !ok {
		return
	}
	var req service.OpenListRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	v, err := c.ListSessions.Open(ctx.Request.Context(), viewer, req)
	if err != nil {
		respondError(ctx, err, nil)
		return
	}
	util.Created(ctx, v)
}

// GetList godoc
// @Summary 获取题目列表会话的当前状态
// @Tags 题库
// @Produce json
// @Security ApiKeyAuth
// @Param lid path string true "会话ID"
// @Success 200 {object} util.Response{data=service.ListSessionView}
// @Router /questions/lists/{lid} [get]
func (c *QuestionController) GetList(ctx *gin.Context) {
	viewer, ok := currentViewer(ctx)
	if !ok {
		return
	}
	v, err := c.ListSessions.Get(viewer, ctx.Param("lid"))
	if err != nil {
		respondError(ctx, err, nil)
		return
	}
	util.Success(ctx, v)
}

// UpdateList godoc
// @Summary 修改题目列表筛选条件
// @Tags 题库
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param lid path string true "会话ID"
// @Param body body service.ListSessionUpdate true "筛选条件"
// @Success 200 {object} util.Response{data=service.ListSessionView}
// @Router /questions/lists/{lid} [patch]
func (c *QuestionController) UpdateList(ctx *gin.Context) {
	viewer, ok := currentViewer(ctx)
	if !ok {
		return
	}
	var u service.ListSessionUpdate
	if err := ctx.ShouldBindJSON(&u); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	v, err := c.ListSessions.Update(viewer, ctx.Param("lid"), u)
	if err != nil {
		respondError(ctx, err, nil)
		return
	}
	util.Success(ctx, v)
}

// CloseList godoc
// @Summary 关闭题目列表会话
// @Tags 题库
// @Produce json
// @Security ApiKeyAuth
// @Param lid path string true "会话ID"
// @Success 200 {object} util.Response
// @Router /questions/lists/{lid} [delete]
func (c *QuestionController) CloseList(ctx *gin.Context) {
	viewer, ok := currentViewer(ctx)
	if !ok {
		return
	}
	if err := c.ListSessions.Close(viewer, ctx.Param("lid")); err != nil {
		respondError(ctx, err, nil)
		return
	}
	util.Success(ctx, nil)
}
