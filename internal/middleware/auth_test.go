package middleware

import (
	"cbt_cms/internal/client"
	"cbt_cms/internal/model"
	"cbt_cms/internal/util"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "middleware-secret"

func newEngine(roles ...model.RoleName) (*gin.Engine, *string) {
	gin.SetMode(gin.TestMode)
	var upstream string
	r := gin.New()
	r.GET("/x", AuthMiddleware(secret), RoleMiddleware(roles...), func(c *gin.Context) {
		upstream = client.TokenFrom(c.Request.Context())
		c.Status(http.StatusNoContent)
	})
	return r, &upstream
}

func token(t *testing.T, key string, roles ...model.RoleName) string {
	t.Helper()
	u := &model.User{ID: 4, Name: "Tester"}
	for _, r := range roles {
		u.Roles = append(u.Roles, model.Role{Name: r})
	}
	tok, err := util.GenerateJWT(u, "upstream-xyz", key, time.Hour)
	require.NoError(t, err)
	return tok
}

func serve(r http.Handler, target, bearer string) int {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestAuthMiddleware(t *testing.T) {
	t.Run("missing token", func(t *testing.T) {
		r, _ := newEngine(model.RolePengawas)
		assert.Equal(t, http.StatusUnauthorized, serve(r, "/x", ""))
	})

	t.Run("wrong signature", func(t *testing.T) {
		r, _ := newEngine(model.RolePengawas)
		assert.Equal(t, http.StatusUnauthorized, serve(r, "/x", token(t, "other-secret", model.RolePengawas)))
	})

	t.Run("query token and upstream token in context", func(t *testing.T) {
		r, upstream := newEngine(model.RolePengawas)
		code := serve(r, "/x?token="+token(t, secret, model.RolePengawas), "")
		assert.Equal(t, http.StatusNoContent, code)
		assert.Equal(t, "upstream-xyz", *upstream)
	})
}

func TestRoleMiddleware(t *testing.T) {
	r, _ := newEngine(model.RolePengawas)
	assert.Equal(t, http.StatusNoContent, serve(r, "/x", token(t, secret, model.RolePengawas)))
	assert.Equal(t, http.StatusNoContent, serve(r, "/x", token(t, secret, model.RoleSuperadmin)))
	assert.Equal(t, http.StatusForbidden, serve(r, "/x", token(t, secret, "user")))
	assert.Equal(t, http.StatusForbidden, serve(r, "/x", token(t, secret)))
}
