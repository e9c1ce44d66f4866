package service

import (
	"cbt_cms/internal/model"
	"cbt_cms/internal/util"
	"cbt_cms/pkg/logger"
	"context"
	"fmt"
	"io"
	"mime/multipart"

	"go.uber.org/zap"
)

const (
	QuestionPageSize     = 10
	questionOrderBy      = "questions.updated_at"
	questionOrder        = "asc"
	deleteQuestionPrompt = "Hapus pertanyaan ini?"
)

// QuestionBankGateway is the part of the exam API the question bank uses.
type QuestionBankGateway interface {
	ListQuestions(ctx context.Context, q model.QuestionListQuery) (*model.Page[model.Question], error)
	GetQuestion(ctx context.Context, id uint) (*model.Question, error)
	DeleteQuestion(ctx context.Context, id uint) (*model.TransferResult, error)
	ImportQuestions(ctx context.Context, categoryID uint, fileName string, file io.Reader) (*model.TransferResult, error)
	ExportQuestions(ctx context.Context, categoryID uint) (*model.TransferResult, error)
	ListCategories(ctx context.Context, page, paginate int, search string) (*model.Page[model.CategoryQuestion], error)
	GetCategory(ctx context.Context, id uint) (*model.CategoryQuestion, error)
}

// QuestionListParams selects one page of a category.
type QuestionListParams struct {
	CategoryID       uint   `form:"question_category_id" json:"question_category_id"`
	CategoryName     string `form:"category_name" json:"category_name"`
	Page             int    `form:"page" json:"page"`
	Search           string `form:"search" json:"search"`
	SearchBySpecific string `form:"searchBySpecific" json:"searchBySpecific,omitempty"`
}

// TransferOutcome is the answer of an import or export request. Page holds
// the refetched list when the transfer changes it.
type TransferOutcome struct {
	Job     *model.TransferJob          `json:"job"`
	Message string                      `json:"message"`
	Page    *model.Page[model.Question] `json:"page,omitempty"`
}

type QuestionBankService struct {
	Gateway     QuestionBankGateway
	Transfers   *TransferService
	TemplateURL string
}

func NewQuestionBankService(gw QuestionBankGateway, transfers *TransferService, templateURL string) *QuestionBankService {
	return &QuestionBankService{Gateway: gw, Transfers: transfers, TemplateURL: templateURL}
}

func (s *QuestionBankService) Categories(ctx context.Context, page, paginate int, search string) (*model.Page[model.CategoryQuestion], error) {
	if page < 1 {
		page = 1
	}
	if paginate < 1 {
		paginate = 100
	}
	return s.Gateway.ListCategories(ctx, page, paginate, search)
}

// List fetches one page of the selected category and keeps only the rows that
// belong to it.
func (s *QuestionBankService) List(ctx context.Context, p QuestionListParams) (*model.Page[model.Question], error) {
	if p.CategoryID == 0 {
		return nil, util.ErrCategoryRequired
	}
	if p.Page < 1 {
		p.Page = 1
	}

	page, err := s.Gateway.ListQuestions(ctx, model.QuestionListQuery{
		Page:               p.Page,
		Paginate:           QuestionPageSize,
		Search:             p.Search,
		SearchBySpecific:   p.SearchBySpecific,
		QuestionCategoryID: p.CategoryID,
		OrderBy:            questionOrderBy,
		Order:              questionOrder,
	})
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}

	name := p.CategoryName
	if name == "" && hasUncategorized(page.Data) {
		if cat, err := s.Gateway.GetCategory(ctx, p.CategoryID); err == nil {
			name = cat.Name
		} else {
			logger.Log.Warn("category lookup failed", zap.Uint("category_id", p.CategoryID), zap.Error(err))
		}
	}
	page.Data = FilterByCategory(page.Data, p.CategoryID, name)
	return page, nil
}

func hasUncategorized(rows []model.Question) bool {
	for _, q := range rows {
		if q.QuestionCategoryID == nil {
			return true
		}
	}
	return false
}

// FilterByCategory keeps rows whose question_category_id matches. Rows without
// an id match on category_name instead.
func FilterByCategory(rows []model.Question, categoryID uint, categoryName string) []model.Question {
	out := make([]model.Question, 0, len(rows))
	for _, q := range rows {
		if q.QuestionCategoryID != nil {
			if *q.QuestionCategoryID == categoryID {
				out = append(out, q)
			}
			continue
		}
		if categoryName != "" && q.CategoryName == categoryName {
			out = append(out, q)
		}
	}
	return out
}

func (s *QuestionBankService) Get(ctx context.Context, id uint) (*model.Question, error) {
	if id == 0 {
		return nil, util.ErrInvalidID
	}
	return s.Gateway.GetQuestion(ctx, id)
}

// Delete removes a question once the reporter confirms, then refetches the
// current page when a category is selected.
func (s *QuestionBankService) Delete(ctx context.Context, id uint, current QuestionListParams, rep Reporter) (*model.Page[model.Question], error) {
	if id == 0 {
		return nil, util.ErrInvalidID
	}
	if !rep.Confirm(deleteQuestionPrompt) {
		return nil, util.ErrNotConfirmed
	}

	if _, err := s.Gateway.DeleteQuestion(ctx, id); err != nil {
		rep.Notify(util.NotifyError, "Gagal menghapus")
		return nil, fmt.Errorf("delete question %d: %w", id, err)
	}
	rep.Notify(util.NotifySuccess, "Berhasil dihapus")

	if current.CategoryID == 0 {
		return nil, nil
	}
	return s.List(ctx, current)
}

// Import hands a spreadsheet to the exam API. Processing is asynchronous; the
// list is refetched right away.
func (s *QuestionBankService) Import(ctx context.Context, viewer model.Viewer, categoryID uint, fh *multipart.FileHeader, rep Reporter) (*TransferOutcome, error) {
	if categoryID == 0 {
		rep.Notify(util.NotifyError, "Pilih kategori terlebih dahulu")
		return nil, util.ErrCategoryRequired
	}
	if fh == nil {
		return nil, util.ErrFileRequired
	}

	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if _, err := util.ValidateMimeType(f, util.AllowedImportTypes); err != nil {
		return nil, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	job := &model.TransferJob{
		Kind:               model.TransferQuestionImport,
		QuestionCategoryID: util.UintPtr(categoryID),
		FileName:           fh.Filename,
		RequestedBy:        viewer.ID,
	}

	res, err := s.Gateway.ImportQuestions(ctx, categoryID, fh.Filename, f)
	if err != nil {
		s.fail(job, err)
		rep.Notify(util.NotifyError, "Gagal memulai import")
		return nil, fmt.Errorf("import questions: %w", err)
	}

	out := s.accept(job, res, "Import diproses.")
	rep.Notify(util.NotifySuccess, out.Message)

	page, err := s.List(ctx, QuestionListParams{CategoryID: categoryID, Page: 1})
	if err != nil {
		logger.Log.Warn("refetch after import failed", zap.Uint("category_id", categoryID), zap.Error(err))
	}
	out.Page = page
	return out, nil
}

func (s *QuestionBankService) Export(ctx context.Context, viewer model.Viewer, categoryID uint, rep Reporter) (*TransferOutcome, error) {
	if categoryID == 0 {
		rep.Notify(util.NotifyError, "Pilih kategori terlebih dahulu")
		return nil, util.ErrCategoryRequired
	}

	job := &model.TransferJob{
		Kind:               model.TransferQuestionExport,
		QuestionCategoryID: util.UintPtr(categoryID),
		RequestedBy:        viewer.ID,
	}

	res, err := s.Gateway.ExportQuestions(ctx, categoryID)
	if err != nil {
		s.fail(job, err)
		rep.Notify(util.NotifyError, "Gagal memulai export")
		return nil, fmt.Errorf("export questions: %w", err)
	}

	out := s.accept(job, res, "Export diproses.")
	rep.Notify(util.NotifySuccess, out.Message)
	return out, nil
}

func (s *QuestionBankService) ImportTemplateURL() string {
	return s.TemplateURL
}

func (s *QuestionBankService) accept(job *model.TransferJob, res *model.TransferResult, fallback string) *TransferOutcome {
	job.Status = model.TransferAccepted
	job.Message = transferMessage(res, fallback)
	s.Transfers.Record(job)
	return &TransferOutcome{Job: job, Message: job.Message}
}

func (s *QuestionBankService) fail(job *model.TransferJob, err error) {
	job.Status = model.TransferFailed
	job.Message = err.Error()
	s.Transfers.Record(job)
}
