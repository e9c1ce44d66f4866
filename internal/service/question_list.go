package service

import (
	"cbt_cms/internal/model"
	"cbt_cms/pkg/logger"
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SearchDebounce is how long the search box must stay quiet before a refetch.
const SearchDebounce = 400 * time.Millisecond

// QuestionLister is satisfied by QuestionBankService.
type QuestionLister interface {
	List(ctx context.Context, p QuestionListParams) (*model.Page[model.Question], error)
}

// QuestionListState is a snapshot of the list controller.
type QuestionListState struct {
	Params  QuestionListParams
	Page    *model.Page[model.Question]
	Err     error
	Pending bool
}

// QuestionListController keeps the question list of one admin screen in sync
// with its filters. Refetches are not deduplicated: whichever response
// arrives last is kept.
type QuestionListController struct {
	ctx      context.Context
	lister   QuestionLister
	debounce time.Duration
	onChange func(QuestionListState)

	mu     sync.Mutex
	params QuestionListParams
	page   *model.Page[model.Question]
	err     error
	timer   *time.Timer
	pending bool
}

func NewQuestionListController(ctx context.Context, lister QuestionLister, onChange func(QuestionListState)) *QuestionListController {
	return &QuestionListController{
		ctx:      ctx,
		lister:   lister,
		debounce: SearchDebounce,
		onChange: onChange,
		params:   QuestionListParams{Page: 1},
	}
}

// SetCategory selects a category and refetches page 1 immediately.
func (c *QuestionListController) SetCategory(id uint, name string) {
	c.mu.Lock()
	c.params.CategoryID = id
	c.params.CategoryName = name
	c.params.Page = 1
	p := c.params
	c.mu.Unlock()
	c.fetch(p)
}

// SetSearch refetches page 1 once the search has been stable for the
// debounce interval. Each call restarts the wait.
func (c *QuestionListController) SetSearch(search string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.params.Search = search
	c.params.Page = 1
	if c.timer != nil {
		c.timer.Stop()
	}
	c.pending = true
	c.timer = time.AfterFunc(c.debounce, func() {
		c.mu.Lock()
		c.pending = false
		p := c.params
		c.mu.Unlock()
		c.fetch(p)
	})
}

func (c *QuestionListController) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	c.mu.Lock()
	c.params.Page = page
	p := c.params
	c.mu.Unlock()
	c.fetch(p)
}

// Refetch reloads the current page.
func (c *QuestionListController) Refetch() {
	c.mu.Lock()
	p := c.params
	c.mu.Unlock()
	c.fetch(p)
}

func (c *QuestionListController) State() QuestionListState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return QuestionListState{Params: c.params, Page: c.page, Err: c.err, Pending: c.pending}
}

// Stop cancels a pending debounced search.
func (c *QuestionListController) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
	}
	c.pending = false
}

func (c *QuestionListController) fetch(p QuestionListParams) {
	if p.CategoryID == 0 {
		return
	}
	page, err := c.lister.List(c.ctx, p)
	if err != nil {
		logger.Log.Warn("question list refetch failed", zap.Uint("category_id", p.CategoryID), zap.Error(err))
	}

	c.mu.Lock()
	c.page = page
	c.err = err
	state := QuestionListState{Params: c.params, Page: page, Err: err, Pending: c.pending}
	c.mu.Unlock()

	if c.onChange != nil {
		c.onChange(state)
	}
}
