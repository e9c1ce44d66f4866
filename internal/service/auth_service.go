package service

import (
	"cbt_cms/internal/client"
	"cbt_cms/internal/config"
	"cbt_cms/internal/model"
	"cbt_cms/internal/util"
	"context"
	"errors"
	"fmt"
)

var ErrLoginResponse = errors.New("login response without token")

// AuthGateway authenticates against the exam API.
type AuthGateway interface {
	Login(ctx context.Context, email, password string) (*client.LoginResult, error)
	Me(ctx context.Context) (*model.User, error)
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
	Menu  model.Menu  `json:"menu"`
}

type AuthService struct {
	Gateway AuthGateway
	Nav     *NavigationService
	Cfg     *config.Config
}

func NewAuthService(gw AuthGateway, nav *NavigationService, cfg *config.Config) *AuthService {
	return &AuthService{Gateway: gw, Nav: nav, Cfg: cfg}
}

// Login exchanges credentials for an upstream token and wraps it in a CMS
// token. Only superadmin and pengawas accounts may sign in.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	res, err := s.Gateway.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, fmt.Errorf("upstream login: %w", err)
	}
	if res.Token == "" || res.User == nil {
		return nil, ErrLoginResponse
	}

	viewer := model.Viewer{ID: res.User.ID, Name: res.User.Name, Roles: res.User.RoleNames()}
	if !viewer.HasRole(model.RoleSuperadmin) && !viewer.HasRole(model.RolePengawas) {
		return nil, util.ErrPermissionDenied
	}

	token, err := util.GenerateJWT(res.User, res.Token, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
	if err != nil {
		return nil, err
	}
	return &LoginResponse{Token: token, User: res.User, Menu: s.Nav.Menu(viewer)}, nil
}

// Profile asks the exam API who owns the token carried by ctx.
func (s *AuthService) Profile(ctx context.Context) (*model.User, error) {
	return s.Gateway.Me(ctx)
}
