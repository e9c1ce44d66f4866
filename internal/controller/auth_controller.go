package controller

import (
	"cbt_cms/internal/client"
	"cbt_cms/internal/service"
	"cbt_cms/internal/util"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService *service.AuthService
	NavService  *service.NavigationService
}

func NewAuthController(authService *service.AuthService, navService *service.NavigationService) *AuthController {
	return &AuthController{
		AuthService: authService,
		NavService:  navService,
	}
}

// Login godoc
// @Summary 登录
// @Description 使用考试平台账号登录，仅 superadmin 与 pengawas 可用
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body service.LoginRequest true "登录凭据"
// @Success 200 {object} util.Response{data=service.LoginResponse} "成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 401 {object} util.Response "账号或密码错误"
// @Failure 403 {object} util.Response "角色无权访问"
// @Router /login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req service.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	res, err := c.AuthService.Login(ctx.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrPermissionDenied):
			util.Error(ctx, http.StatusForbidden, "Akun tidak memiliki akses ke CMS")
		case client.StatusOf(err) == http.StatusUnauthorized, client.StatusOf(err) == http.StatusUnprocessableEntity:
			util.Unauthorized(ctx)
		default:
			respondError(ctx, err, nil)
		}
		return
	}

	util.Success(ctx, res)
}

// GetProfile godoc
// @Summary 当前用户资料
// @Description 由考试平台 /me 返回当前令牌的用户
// @Tags 认证
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.User} "成功"
// @Failure 401 {object} util.Response "未授权"
// @Router /profile [get]
func (c *AuthController) GetProfile(ctx *gin.Context) {
	user, err := c.AuthService.Profile(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err, nil)
		return
	}
	util.Success(ctx, user)
}

// GetMenu godoc
// @Summary 侧边栏菜单
// @Description 按角色返回导航菜单
// @Tags 认证
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.Menu} "成功"
// @Router /menu [get]
func (c *AuthController) GetMenu(ctx *gin.Context) {
	viewer, ok := currentViewer(ctx)
	if !ok {
		return
	}
	util.Success(ctx, c.NavService.Menu(viewer))
}
