package service

import (
	"cbt_cms/internal/model"
	"cbt_cms/internal/util"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tokenKey struct{}

func newListSessions(l QuestionLister) *QuestionListSessions {
	s := NewQuestionListSessions(l, time.Minute)
	s.Debounce = 20 * time.Millisecond
	return s
}

func TestListSessionOpen(t *testing.T) {
	l := &slowLister{}
	s := newListSessions(l)
	defer s.Shutdown()

	_, err := s.Open(context.Background(), superadmin, OpenListRequest{})
	assert.ErrorIs(t, err, util.ErrCategoryRequired)

	v, err := s.Open(context.Background(), superadmin, OpenListRequest{CategoryID: 4, CategoryName: "Numerasi"})
	require.NoError(t, err)
	assert.NotEmpty(t, v.ID)
	assert.Equal(t, uint(4), v.Params.CategoryID)
	assert.Equal(t, 1, v.Params.Page)
	require.NotNil(t, v.Page)
	assert.False(t, v.Pending)
	assert.Len(t, l.snapshot(), 1)
}

func TestListSessionDebouncesSearch(t *testing.T) {
	l := &slowLister{}
	s := newListSessions(l)
	defer s.Shutdown()

	v, err := s.Open(context.Background(), superadmin, OpenListRequest{CategoryID: 4})
	require.NoError(t, err)

	for _, q := range []string{"a", "ak", "akar"} {
		search := q
		st, err := s.Update(superadmin, v.ID, ListSessionUpdate{Search: &search})
		require.NoError(t, err)
		assert.True(t, st.Pending)
		assert.Equal(t, search, st.Params.Search)
	}
	assert.Len(t, l.snapshot(), 1)

	require.Eventually(t, func() bool {
		st, err := s.Get(superadmin, v.ID)
		return err == nil && !st.Pending && len(l.snapshot()) == 2
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, "akar", l.snapshot()[1].Search)

	page := 3
	st, err := s.Update(superadmin, v.ID, ListSessionUpdate{Page: &page})
	require.NoError(t, err)
	assert.Equal(t, 3, st.Page.CurrentPage)
	assert.Len(t, l.snapshot(), 3)
}

func TestListSessionKeepsRequestValues(t *testing.T) {
	var seen []any
	lister := listerFunc(func(ctx context.Context, p QuestionListParams) (*model.Page[model.Question], error) {
		seen = append(seen, ctx.Value(tokenKey{}))
		return &model.Page[model.Question]{CurrentPage: p.Page}, nil
	})
	s := newListSessions(lister)
	defer s.Shutdown()

	ctx, cancel := context.WithCancel(context.WithValue(context.Background(), tokenKey{}, "upstream"))
	v, err := s.Open(ctx, superadmin, OpenListRequest{CategoryID: 1})
	require.NoError(t, err)
	cancel()

	_, err = s.Update(superadmin, v.ID, ListSessionUpdate{Refetch: true})
	require.NoError(t, err)
	assert.Equal(t, []any{"upstream", "upstream"}, seen)
}

func TestListSessionOwnershipAndExpiry(t *testing.T) {
	l := &slowLister{}
	s := newListSessions(l)
	defer s.Shutdown()
	now := time.Now()
	s.now = func() time.Time { return now }

	v, err := s.Open(context.Background(), superadmin, OpenListRequest{CategoryID: 1})
	require.NoError(t, err)

	_, err = s.Get(model.Viewer{ID: 77, Roles: superadmin.Roles}, v.ID)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	zero := uint(0)
	_, err = s.Update(superadmin, v.ID, ListSessionUpdate{CategoryID: &zero})
	assert.ErrorIs(t, err, util.ErrCategoryRequired)

	now = now.Add(2 * time.Minute)
	_, err = s.Get(superadmin, v.ID)
	assert.ErrorIs(t, err, util.ErrSessionNotFound)

	v, err = s.Open(context.Background(), superadmin, OpenListRequest{CategoryID: 1})
	require.NoError(t, err)
	require.NoError(t, s.Close(superadmin, v.ID))
	assert.ErrorIs(t, s.Close(superadmin, v.ID), util.ErrSessionNotFound)
}

type listerFunc func(ctx context.Context, p QuestionListParams) (*model.Page[model.Question], error)

func (f listerFunc) List(ctx context.Context, p QuestionListParams) (*model.Page[model.Question], error) {
	return f(ctx, p)
}
