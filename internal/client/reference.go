package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"cbt_cms/internal/model"
)

func (c *Client) ListSchools(ctx context.Context, page, paginate int, search string) (*model.Page[model.School], error) {
	env, err := c.call(ctx, http.MethodGet, "/master/schools", listQuery(page, paginate, search), nil)
	if err != nil {
		return nil, err
	}
	var out model.Page[model.School]
	if err := env.into(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListUsers(ctx context.Context, page, paginate int, search string, roleID int) (*model.Page[model.User], error) {
	query := listQuery(page, paginate, search)
	if roleID > 0 {
		query.Set("role_id", strconv.Itoa(roleID))
	}
	env, err := c.call(ctx, http.MethodGet, "/user", query, nil)
	if err != nil {
		return nil, err
	}
	var out model.Page[model.User]
	if err := env.into(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LoginResult is the upstream session issued for a set of credentials.
type LoginResult struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	body := map[string]string{"email": email, "password": password}
	env, err := c.call(ctx, http.MethodPost, "/auth/login", nil, body)
	if err != nil {
		return nil, err
	}
	var out LoginResult
	if err := env.into(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the account owning the token in ctx.
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	env, err := c.call(ctx, http.MethodGet, "/me", nil, nil)
	if err != nil {
		return nil, err
	}
	var out model.User
	if err := env.into(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Upload sends one rich text attachment to the API upload endpoint. The
// response shape varies, so the decoded body is returned as is: a JSON value,
// or the trimmed text when the body is not JSON.
func (c *Client) Upload(ctx context.Context, fileName string, file io.Reader) (any, error) {
	raw, err := c.sendMultipart(ctx, "/service-upload", nil, fileName, file)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return string(bytes.TrimSpace(raw)), nil
	}
	return out, nil
}
