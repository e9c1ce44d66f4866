package service

import (
	"cbt_cms/internal/model"
	"cbt_cms/internal/util"
	"context"
	"sync"
	"time"
)

// QuestionListSessions keeps the live question list of each open bank screen.
// Search updates are debounced server side, so a screen can send every
// keystroke and poll the session for the settled page.
type QuestionListSessions struct {
	Lister   QuestionLister
	TTL      time.Duration
	Debounce time.Duration

	mu       sync.Mutex
	sessions map[string]*listSession
	now      func() time.Time
}

type listSession struct {
	ownerID  uint
	ctrl     *QuestionListController
	cancel   context.CancelFunc
	lastSeen time.Time
}

// ListSessionView is what the screen renders.
type ListSessionView struct {
	ID      string                      `json:"id"`
	Params  QuestionListParams          `json:"params"`
	Page    *model.Page[model.Question] `json:"page"`
	Pending bool                        `json:"pending"`
	Error   string                      `json:"error,omitempty"`
}

// OpenListRequest selects the category a list session starts on.
type OpenListRequest struct {
	CategoryID   uint   `json:"question_category_id" binding:"required"`
	CategoryName string `json:"category_name"`
}

// ListSessionUpdate changes the filters of a session. Category and page
// refetch at once, search waits for the debounce interval.
type ListSessionUpdate struct {
	CategoryID   *uint   `json:"question_category_id"`
	CategoryName string  `json:"category_name"`
	Page         *int    `json:"page" binding:"omitempty,min=1"`
	Search       *string `json:"search"`
	Refetch      bool    `json:"refetch"`
}

func NewQuestionListSessions(lister QuestionLister, ttl time.Duration) *QuestionListSessions {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &QuestionListSessions{
		Lister:   lister,
		TTL:      ttl,
		Debounce: SearchDebounce,
		sessions: make(map[string]*listSession),
		now:      time.Now,
	}
}

// Open starts a session and loads page 1 of the category. Later fetches keep
// the values of ctx (the upstream token) but outlive the request.
func (s *QuestionListSessions) Open(ctx context.Context, viewer model.Viewer, req OpenListRequest) (*ListSessionView, error) {
	if req.CategoryID == 0 {
		return nil, util.ErrCategoryRequired
	}

	sctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	ctrl := NewQuestionListController(sctx, s.Lister, nil)
	ctrl.debounce = s.Debounce
	ctrl.SetCategory(req.CategoryID, req.CategoryName)

	id := model.GenerateUUID()
	s.mu.Lock()
	s.sweepLocked()
	s.sessions[id] = &listSession{ownerID: viewer.ID, ctrl: ctrl, cancel: cancel, lastSeen: s.now()}
	s.mu.Unlock()

	return view(id, ctrl.State()), nil
}

func (s *QuestionListSessions) Get(viewer model.Viewer, id string) (*ListSessionView, error) {
	sess, err := s.load(viewer, id)
	if err != nil {
		return nil, err
	}
	return view(id, sess.ctrl.State()), nil
}

// Update applies u and returns the state right after it. A pending search
// shows up as Pending until its refetch lands.
func (s *QuestionListSessions) Update(viewer model.Viewer, id string, u ListSessionUpdate) (*ListSessionView, error) {
	sess, err := s.load(viewer, id)
	if err != nil {
		return nil, err
	}

	if u.CategoryID != nil {
		if *u.CategoryID == 0 {
			return nil, util.ErrCategoryRequired
		}
		sess.ctrl.SetCategory(*u.CategoryID, u.CategoryName)
	}
	if u.Page != nil {
		sess.ctrl.SetPage(*u.Page)
	}
	if u.Search != nil {
		sess.ctrl.SetSearch(*u.Search)
	}
	if u.Refetch {
		sess.ctrl.Refetch()
	}
	return view(id, sess.ctrl.State()), nil
}

func (s *QuestionListSessions) Close(viewer model.Viewer, id string) error {
	sess, err := s.load(viewer, id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	sess.ctrl.Stop()
	sess.cancel()
	return nil
}

// Shutdown stops every session.
func (s *QuestionListSessions) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		sess.ctrl.Stop()
		sess.cancel()
		delete(s.sessions, id)
	}
}

func (s *QuestionListSessions) load(viewer model.Viewer, id string) (*listSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, util.ErrSessionNotFound
	}
	if sess.ownerID != viewer.ID {
		return nil, util.ErrPermissionDenied
	}
	sess.lastSeen = s.now()
	return sess, nil
}

func (s *QuestionListSessions) sweepLocked() {
	now := s.now()
	for id, sess := range s.sessions {
		if now.Sub(sess.lastSeen) > s.TTL {
			sess.ctrl.Stop()
			sess.cancel()
			delete(s.sessions, id)
		}
	}
}

func view(id string, st QuestionListState) *ListSessionView {
	v := &ListSessionView{ID: id, Params: st.Params, Page: st.Page, Pending: st.Pending}
	if st.Err != nil {
		v.Error = st.Err.Error()
	}
	return v
}
