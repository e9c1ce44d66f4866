package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"cbt_cms/internal/model"
)

func (c *Client) ListQuestions(ctx context.Context, q model.QuestionListQuery) (*model.Page[model.Question], error) {
	query := listQuery(q.Page, q.Paginate, q.Search)
	setIfNotEmpty(query, "searchBySpecific", q.SearchBySpecific)
	if q.QuestionCategoryID > 0 {
		query.Set("question_category_id", strconv.FormatUint(uint64(q.QuestionCategoryID), 10))
	}
	setIfNotEmpty(query, "orderBy", q.OrderBy)
	if q.Order == "asc" || q.Order == "desc" {
		query.Set("order", q.Order)
	}

	env, err := c.call(ctx, http.MethodGet, "/master/questions", query, nil)
	if err != nil {
		return nil, err
	}
	var page model.Page[model.Question]
	if err := env.into(&page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) GetQuestion(ctx context.Context, id uint) (*model.Question, error) {
	env, err := c.call(ctx, http.MethodGet, idPath("/master/questions/%d", id), nil, nil)
	if err != nil {
		return nil, err
	}
	var q model.Question
	if err := env.into(&q); err != nil {
		return nil, err
	}
	return &q, nil
}

func (c *Client) CreateQuestion(ctx context.Context, payload model.QuestionPayload) (*model.Question, error) {
	return c.saveQuestion(ctx, http.MethodPost, "/master/questions", payload)
}

func (c *Client) UpdateQuestion(ctx context.Context, id uint, payload model.QuestionPayload) (*model.Question, error) {
	return c.saveQuestion(ctx, http.MethodPut, idPath("/master/questions/%d", id), payload)
}

func (c *Client) saveQuestion(ctx context.Context, method, path string, payload model.QuestionPayload) (*model.Question, error) {
	env, err := c.call(ctx, method, path, nil, payload)
	if err != nil {
		return nil, err
	}
	var q model.Question
	if err := env.into(&q); err != nil {
		return nil, err
	}
	return &q, nil
}

func (c *Client) DeleteQuestion(ctx context.Context, id uint) (*model.TransferResult, error) {
	env, err := c.call(ctx, http.MethodDelete, idPath("/master/questions/%d", id), nil, nil)
	if err != nil {
		return nil, err
	}
	return &model.TransferResult{Code: env.Code, Message: env.Message}, nil
}

// ImportQuestions uploads a CSV of questions into a category. The API answers
// before processing it.
func (c *Client) ImportQuestions(ctx context.Context, categoryID uint, fileName string, file io.Reader) (*model.TransferResult, error) {
	fields := map[string]string{
		"question_category_id": strconv.FormatUint(uint64(categoryID), 10),
	}
	raw, err := c.sendMultipart(ctx, "/master/questions/import", fields, fileName, file)
	if err != nil {
		return nil, err
	}
	return transferResult(raw)
}

func (c *Client) ExportQuestions(ctx context.Context, categoryID uint) (*model.TransferResult, error) {
	body := map[string]uint{"question_category_id": categoryID}
	env, err := c.call(ctx, http.MethodPost, "/master/questions/export", nil, body)
	if err != nil {
		return nil, err
	}
	return &model.TransferResult{Code: env.Code, Message: env.Message, Data: env.Data}, nil
}

func (c *Client) ListCategories(ctx context.Context, page, paginate int, search string) (*model.Page[model.CategoryQuestion], error) {
	env, err := c.call(ctx, http.MethodGet, "/master/question-categories", listQuery(page, paginate, search), nil)
	if err != nil {
		return nil, err
	}
	var out model.Page[model.CategoryQuestion]
	if err := env.into(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetCategory(ctx context.Context, id uint) (*model.CategoryQuestion, error) {
	env, err := c.call(ctx, http.MethodGet, idPath("/master/question-categories/%d", id), nil, nil)
	if err != nil {
		return nil, err
	}
	var out model.CategoryQuestion
	if err := env.into(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// sendMultipart posts fields plus one file under the "file" form key.
func (c *Client) sendMultipart(ctx context.Context, path string, fields map[string]string, fileName string, file io.Reader) ([]byte, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, err
		}
	}
	part, err := w.CreateFormFile("file", fileName)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("copy upload: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return c.send(ctx, http.MethodPost, path, url.Values{}, &buf, w.FormDataContentType())
}

func transferResult(raw []byte) (*model.TransferResult, error) {
	env, err := decodeEnvelope(raw)
	if err != nil {
		return nil, err
	}
	return &model.TransferResult{Code: env.Code, Message: env.Message, Data: env.Data}, nil
}
