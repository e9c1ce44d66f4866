package service

import (
	"cbt_cms/internal/model"
	"cbt_cms/internal/repository"
	"cbt_cms/internal/util"
	"cbt_cms/pkg/monitoring"
	"context"
	"errors"
	"fmt"
)

// EditorStore keeps editor sessions between requests.
type EditorStore interface {
	Save(ctx context.Context, session *model.EditorSession) error
	Find(ctx context.Context, id string) (*model.EditorSession, error)
	Delete(ctx context.Context, id string) error
}

// EditorGateway loads and saves the edited question.
type EditorGateway interface {
	QuestionGateway
	GetQuestion(ctx context.Context, id uint) (*model.Question, error)
}

// OpenEditorRequest starts an editor for a new question, or for an existing one
// when QuestionID is set. CategoryID is the list's current category, used when
// the record has none.
type OpenEditorRequest struct {
	QuestionID *uint `json:"question_id"`
	CategoryID *uint `json:"question_category_id"`
}

type EditorService struct {
	Store   EditorStore
	Gateway EditorGateway
}

func NewEditorService(store EditorStore, gw EditorGateway) *EditorService {
	return &EditorService{Store: store, Gateway: gw}
}

func (s *EditorService) Open(ctx context.Context, viewer model.Viewer, req OpenEditorRequest) (*model.EditorSession, error) {
	form := NewQuestionForm()
	if req.QuestionID != nil && *req.QuestionID > 0 {
		q, err := s.Gateway.GetQuestion(ctx, *req.QuestionID)
		if err != nil {
			return nil, fmt.Errorf("load question %d: %w", *req.QuestionID, err)
		}
		form.Hydrate(q, req.CategoryID)
	} else if req.CategoryID != nil && *req.CategoryID > 0 {
		d := form.Draft()
		d.QuestionCategoryID = util.UintPtr(*req.CategoryID)
		form = RestoreQuestionForm(d)
	}

	session := &model.EditorSession{
		ID:      model.GenerateUUID(),
		OwnerID: viewer.ID,
		Draft:   form.Draft(),
	}
	if err := s.Store.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *EditorService) Get(ctx context.Context, viewer model.Viewer, id string) (*model.EditorSession, error) {
	return s.load(ctx, viewer, id)
}

// Apply runs the commands in order. Nothing is stored unless every command
// succeeds.
func (s *EditorService) Apply(ctx context.Context, viewer model.Viewer, id string, cmds []model.EditorCommand) (*model.EditorSession, error) {
	session, err := s.load(ctx, viewer, id)
	if err != nil {
		return nil, err
	}

	form := RestoreQuestionForm(session.Draft)
	for i, cmd := range cmds {
		if err := form.Apply(cmd); err != nil {
			return nil, fmt.Errorf("command %d (%s): %w", i, cmd.Op, err)
		}
	}

	session.Draft = form.Draft()
	if err := s.Store.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Preview returns the payload Submit would send.
func (s *EditorService) Preview(ctx context.Context, viewer model.Viewer, id string) (model.QuestionPayload, error) {
	session, err := s.load(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	return RestoreQuestionForm(session.Draft).BuildPayload()
}

// Submit saves the draft through the exam API. The session is stored whatever
// the outcome so a failed submit can be corrected and retried.
func (s *EditorService) Submit(ctx context.Context, viewer model.Viewer, id string, rep Reporter) (*model.EditorSession, error) {
	session, err := s.load(ctx, viewer, id)
	if err != nil {
		return nil, err
	}

	form := RestoreQuestionForm(session.Draft)
	saved, submitErr := form.Submit(ctx, s.Gateway, rep)
	monitoring.QuestionSubmissions.WithLabelValues(string(form.Type()), string(form.Status())).Inc()

	session.Draft = form.Draft()
	if saved != nil {
		session.Saved = saved
	}
	if err := s.Store.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, submitErr
}

func (s *EditorService) Close(ctx context.Context, viewer model.Viewer, id string) error {
	if _, err := s.load(ctx, viewer, id); err != nil {
		return err
	}
	return s.Store.Delete(ctx, id)
}

func (s *EditorService) load(ctx context.Context, viewer model.Viewer, id string) (*model.EditorSession, error) {
	session, err := s.Store.Find(ctx, id)
	if errors.Is(err, repository.ErrSessionMissing) {
		return nil, util.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	if session.OwnerID != viewer.ID {
		return nil, util.ErrPermissionDenied
	}
	return session, nil
}
