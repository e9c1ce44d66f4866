package client

import (
	"context"
	"net/http"
	"strconv"

	"cbt_cms/internal/model"
)

func (c *Client) ListTests(ctx context.Context, q model.TestListQuery) (*model.Page[model.Test], error) {
	query := listQuery(q.Page, q.Paginate, q.Search)
	setIfNotEmpty(query, "searchBySpecific", q.SearchBySpecific)
	setIfNotEmpty(query, "orderBy", q.OrderBy)
	if q.OrderDirection == "asc" || q.OrderDirection == "desc" {
		query.Set("orderDirection", q.OrderDirection)
	}
	if q.SchoolID > 0 {
		query.Set("school_id", strconv.FormatUint(uint64(q.SchoolID), 10))
	}

	env, err := c.call(ctx, http.MethodGet, "/test", query, nil)
	if err != nil {
		return nil, err
	}
	var page model.Page[model.Test]
	if err := env.into(&page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) CreateTest(ctx context.Context, payload *model.TestPayload) (*model.Test, error) {
	return c.saveTest(ctx, http.MethodPost, "/test", payload)
}

func (c *Client) UpdateTest(ctx context.Context, id uint, payload *model.TestPayload) (*model.Test, error) {
	return c.saveTest(ctx, http.MethodPut, idPath("/test/%d", id), payload)
}

func (c *Client) saveTest(ctx context.Context, method, path string, payload *model.TestPayload) (*model.Test, error) {
	env, err := c.call(ctx, method, path, nil, payload)
	if err != nil {
		return nil, err
	}
	var t model.Test
	if err := env.into(&t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) DeleteTest(ctx context.Context, id uint) (*model.TransferResult, error) {
	env, err := c.call(ctx, http.MethodDelete, idPath("/test/%d", id), nil, nil)
	if err != nil {
		return nil, err
	}
	return &model.TransferResult{Code: env.Code, Message: env.Message}, nil
}

// ExportTest queues an export of the test results.
func (c *Client) ExportTest(ctx context.Context, testID uint) (*model.TransferResult, error) {
	env, err := c.call(ctx, http.MethodPost, "/test/export", nil, map[string]uint{"test_id": testID})
	if err != nil {
		return nil, err
	}
	return &model.TransferResult{Code: env.Code, Message: env.Message, Data: env.Data}, nil
}

// ExportTestQuestions fetches the test with its sections and questions.
func (c *Client) ExportTestQuestions(ctx context.Context, testID uint) (*model.TestExport, error) {
	env, err := c.call(ctx, http.MethodPost, idPath("/test/export/questions/%d", testID), nil, nil)
	if err != nil {
		return nil, err
	}
	var out model.TestExport
	if err := env.into(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AttachQuestions(ctx context.Context, testID, sectionID uint, questionIDs []uint) (*model.TransferResult, error) {
	path := idPath("/test/%d/test-question-categories/%d/questions", testID, sectionID)
	env, err := c.call(ctx, http.MethodPost, path, nil, map[string][]uint{"question_ids": questionIDs})
	if err != nil {
		return nil, err
	}
	return &model.TransferResult{Code: env.Code, Message: env.Message, Data: env.Data}, nil
}
