package util

import (
	"cbt_cms/internal/model"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carry the viewer and the upstream token the exam API issued at login.
type Claims struct {
	UserID        uint             `json:"user_id"`
	Name          string           `json:"name"`
	Roles         []model.RoleName `json:"roles"`
	UpstreamToken string           `json:"upstream_token"`
	jwt.RegisteredClaims
}

func GenerateJWT(user *model.User, upstreamToken, secret string, expiration time.Duration) (string, error) {
	expirationTime := time.Now().Add(expiration)

	claims := &Claims{
		UserID:        user.ID,
		Name:          user.Name,
		Roles:         user.RoleNames(),
		UpstreamToken: upstreamToken,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ParseJWT(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrTokenInvalidClaims
}

func (c *Claims) Viewer() model.Viewer {
	return model.Viewer{ID: c.UserID, Name: c.Name, Roles: c.Roles}
}

func GetUserFromContext(c *gin.Context) *Claims {
	user, exists := c.Get("user")
	if !exists {
		return nil
	}
	claims, ok := user.(*Claims)
	if !ok {
		return nil
	}
	return claims
}
