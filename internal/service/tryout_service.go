package service

import (
	"bytes"
	"cbt_cms/internal/config"
	"cbt_cms/internal/model"
	"cbt_cms/internal/util"
	"cbt_cms/pkg/logger"
	"cbt_cms/pkg/monitoring"
	"cbt_cms/pkg/pdfexport"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const (
	TestPageSize       = 10
	testOrderBy        = "tests.updated_at"
	testOrderDirection = "desc"
	supervisorPageSize = 200
	deleteTestPrompt   = "Hapus Test?"
)

// TryoutGateway is the part of the exam API tryout management uses.
type TryoutGateway interface {
	ListTests(ctx context.Context, q model.TestListQuery) (*model.Page[model.Test], error)
	CreateTest(ctx context.Context, payload *model.TestPayload) (*model.Test, error)
	UpdateTest(ctx context.Context, id uint, payload *model.TestPayload) (*model.Test, error)
	DeleteTest(ctx context.Context, id uint) (*model.TransferResult, error)
	ExportTest(ctx context.Context, testID uint) (*model.TransferResult, error)
	ExportTestQuestions(ctx context.Context, testID uint) (*model.TestExport, error)
	AttachQuestions(ctx context.Context, testID, sectionID uint, questionIDs []uint) (*model.TransferResult, error)
	ListSchools(ctx context.Context, page, paginate int, search string) (*model.Page[model.School], error)
	ListUsers(ctx context.Context, page, paginate int, search string, roleID int) (*model.Page[model.User], error)
}

// TestListParams is what the tryout screen asks for.
type TestListParams struct {
	Page             int    `form:"page"`
	Paginate         int    `form:"paginate"`
	Search           string `form:"search"`
	SearchBySpecific string `form:"searchBySpecific"`
	SchoolID         uint   `form:"school_id"`
}

// PDFExport is a rendered answer key. URL is set when the file was archived.
type PDFExport struct {
	*pdfexport.Document
	URL string
}

type TryoutService struct {
	Gateway   TryoutGateway
	Transfers *TransferService
	Storage   *StorageService
	Export    config.ExportConfig
	validate  *validator.Validate
}

func NewTryoutService(gw TryoutGateway, transfers *TransferService, storage *StorageService, cfg config.ExportConfig) *TryoutService {
	return &TryoutService{
		Gateway:   gw,
		Transfers: transfers,
		Storage:   storage,
		Export:    cfg,
		validate:  validator.New(),
	}
}

// ScopeListQuery builds the list query. A supervisor always gets its own tests,
// whatever it searched for.
func ScopeListQuery(viewer model.Viewer, p TestListParams) model.TestListQuery {
	q := model.TestListQuery{
		Page:             p.Page,
		Paginate:         p.Paginate,
		Search:           p.Search,
		SearchBySpecific: p.SearchBySpecific,
		OrderBy:          testOrderBy,
		OrderDirection:   testOrderDirection,
		SchoolID:         p.SchoolID,
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Paginate < 1 {
		q.Paginate = TestPageSize
	}
	if viewer.IsSupervisor() {
		q.Search = viewer.IDString()
		q.SearchBySpecific = "user_id"
	}
	return q
}

func (s *TryoutService) List(ctx context.Context, viewer model.Viewer, p TestListParams) (*model.Page[model.Test], error) {
	page, err := s.Gateway.ListTests(ctx, ScopeListQuery(viewer, p))
	if err != nil {
		return nil, fmt.Errorf("list tests: %w", err)
	}

	names, err := s.supervisorNames(ctx)
	if err != nil {
		logger.Log.Warn("supervisor lookup failed", zap.Error(err))
		return page, nil
	}
	for i := range page.Data {
		if id := page.Data[i].UserID; id != nil {
			if name, ok := names[*id]; ok {
				page.Data[i].PengawasName = name
			}
		}
	}
	return page, nil
}

// ensureOwner rejects a supervisor acting on a test it does not own. Ownership
// is read from the exam API with the same user_id scope the list uses.
func (s *TryoutService) ensureOwner(ctx context.Context, viewer model.Viewer, testID uint) error {
	if !viewer.IsSupervisor() {
		return nil
	}
	q := ScopeListQuery(viewer, TestListParams{Paginate: supervisorPageSize})
	for {
		page, err := s.Gateway.ListTests(ctx, q)
		if err != nil {
			return fmt.Errorf("check owner of test %d: %w", testID, err)
		}
		for _, t := range page.Data {
			if t.ID == testID {
				return nil
			}
		}
		if len(page.Data) == 0 || page.CurrentPage >= page.LastPage {
			break
		}
		q.Page = page.CurrentPage + 1
	}
	logger.Log.Warn("supervisor denied on foreign test", zap.Uint("user_id", viewer.ID), zap.Uint("test_id", testID))
	return util.ErrPermissionDenied
}

func (s *TryoutService) supervisorNames(ctx context.Context) (map[uint]string, error) {
	users, err := s.Gateway.ListUsers(ctx, 1, supervisorPageSize, "", model.SupervisorRoleID)
	if err != nil {
		return nil, err
	}
	names := make(map[uint]string, len(users.Data))
	for _, u := range users.Data {
		names[u.ID] = u.Name
	}
	return names, nil
}

// Supervisors lists the users that can be assigned to a test.
func (s *TryoutService) Supervisors(ctx context.Context) ([]model.User, error) {
	users, err := s.Gateway.ListUsers(ctx, 1, supervisorPageSize, "", model.SupervisorRoleID)
	if err != nil {
		return nil, err
	}
	return users.Data, nil
}

// ToPayload normalizes a form into the API body. Dates are cut to YYYY-MM-DD
// and dropped when unparseable. total_time only travels with the per_test
// timer. A supervisor is always the owner.
func (s *TryoutService) ToPayload(viewer model.Viewer, form model.TestForm) (*model.TestPayload, error) {
	p := &model.TestPayload{
		SchoolID:              form.SchoolID,
		Title:                 strings.TrimSpace(form.Title),
		ShuffleQuestions:      boolToInt(form.ShuffleQuestions),
		TimerType:             form.TimerType,
		ScoreType:             form.ScoreType,
		StartDate:             util.DateOnly(form.StartDate),
		EndDate:               util.DateOnly(form.EndDate),
		Slug:                  form.Slug,
		Description:           form.Description,
		TotalQuestions:        form.TotalQuestions,
		PassGrade:             form.PassGrade,
		AssessmentType:        form.AssessmentType,
		Code:                  form.Code,
		MaxAttempts:           form.MaxAttempts,
		IsGraded:              form.IsGraded,
		IsExplanationReleased: form.IsExplanationReleased,
		UserID:                form.UserID,
		Status:                boolToInt(form.Status),
	}
	if sub := strings.TrimSpace(form.SubTitle); sub != "" {
		p.SubTitle = &sub
	}
	if form.TimerType == model.TimerPerTest {
		total := form.TotalTime
		p.TotalTime = &total
	}
	if viewer.IsSupervisor() {
		p.UserID = viewer.ID
	}

	if err := s.validate.Struct(p); err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrInvalidTest, err)
	}
	return p, nil
}

func (s *TryoutService) Create(ctx context.Context, viewer model.Viewer, form model.TestForm, rep Reporter) (*model.Test, error) {
	p, err := s.ToPayload(viewer, form)
	if err != nil {
		return nil, err
	}
	test, err := s.Gateway.CreateTest(ctx, p)
	if err != nil {
		rep.Notify(util.NotifyError, "Gagal menyimpan test")
		return nil, fmt.Errorf("create test: %w", err)
	}
	rep.Notify(util.NotifySuccess, "Test berhasil dibuat")
	return test, nil
}

func (s *TryoutService) Update(ctx context.Context, viewer model.Viewer, id uint, form model.TestForm, rep Reporter) (*model.Test, error) {
	if id == 0 {
		return nil, util.ErrInvalidID
	}
	p, err := s.ToPayload(viewer, form)
	if err != nil {
		return nil, err
	}
	if err := s.ensureOwner(ctx, viewer, id); err != nil {
		return nil, err
	}
	test, err := s.Gateway.UpdateTest(ctx, id, p)
	if err != nil {
		rep.Notify(util.NotifyError, "Gagal menyimpan test")
		return nil, fmt.Errorf("update test %d: %w", id, err)
	}
	rep.Notify(util.NotifySuccess, "Test berhasil diperbarui")
	return test, nil
}

// Delete removes a test after confirmation. label names the test in the
// notification.
func (s *TryoutService) Delete(ctx context.Context, viewer model.Viewer, id uint, label string, rep Reporter) error {
	if id == 0 {
		return util.ErrInvalidID
	}
	if err := s.ensureOwner(ctx, viewer, id); err != nil {
		return err
	}
	if !rep.Confirm(deleteTestPrompt) {
		return util.ErrNotConfirmed
	}
	if strings.TrimSpace(label) == "" {
		label = "Test"
	}

	if _, err := s.Gateway.DeleteTest(ctx, id); err != nil {
		rep.Notify(util.NotifyError, "Gagal menghapus")
		return fmt.Errorf("delete test %d: %w", id, err)
	}
	rep.Notify(util.NotifySuccess, fmt.Sprintf("\"%s\" dihapus.", label))
	return nil
}

// ExportResults asks the exam API to build the test's result export. The file is
// produced asynchronously.
func (s *TryoutService) ExportResults(ctx context.Context, viewer model.Viewer, testID uint, rep Reporter) (*TransferOutcome, error) {
	if testID == 0 {
		return nil, util.ErrInvalidID
	}
	if err := s.ensureOwner(ctx, viewer, testID); err != nil {
		return nil, err
	}
	job := &model.TransferJob{Kind: model.TransferTestExport, TestID: util.UintPtr(testID), RequestedBy: viewer.ID}

	res, err := s.Gateway.ExportTest(ctx, testID)
	if err != nil {
		job.Status = model.TransferFailed
		job.Message = err.Error()
		s.Transfers.Record(job)
		rep.Notify(util.NotifyError, "Gagal memulai export")
		return nil, fmt.Errorf("export test %d: %w", testID, err)
	}

	job.Status = model.TransferAccepted
	job.Message = transferMessage(res, "Export dimulai")
	s.Transfers.Record(job)
	rep.Notify(util.NotifySuccess, "Export dimulai: "+job.Message)
	return &TransferOutcome{Job: job, Message: job.Message}, nil
}

// ExportPDF renders the test's questions with the answer key. schoolName is
// the list row's school, the configured default is used when it is empty.
func (s *TryoutService) ExportPDF(ctx context.Context, viewer model.Viewer, testID uint, schoolName string, rep Reporter) (*PDFExport, error) {
	if testID == 0 {
		return nil, util.ErrInvalidID
	}
	if err := s.ensureOwner(ctx, viewer, testID); err != nil {
		return nil, err
	}

	data, err := s.Gateway.ExportTestQuestions(ctx, testID)
	if err != nil {
		rep.Notify(util.NotifyError, "Data soal tidak ditemukan")
		return nil, fmt.Errorf("export test questions %d: %w", testID, err)
	}
	if data == nil || data.QuestionCount() == 0 {
		rep.Notify(util.NotifyError, "Data soal tidak ditemukan")
		return nil, util.ErrExportEmpty
	}

	if strings.TrimSpace(schoolName) == "" {
		schoolName = s.Export.DefaultSchoolName
	}

	start := time.Now()
	doc, err := pdfexport.Render(data, pdfexport.Options{SchoolName: schoolName, PrintedAt: start})
	monitoring.PDFRenderDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		rep.Notify(util.NotifyError, "Gagal membuat PDF")
		return nil, err
	}

	out := &PDFExport{Document: doc}
	job := &model.TransferJob{
		Kind:        model.TransferTestPDF,
		TestID:      util.UintPtr(testID),
		FileName:    doc.FileName,
		Status:      model.TransferAccepted,
		Message:     fmt.Sprintf("%d soal, %d halaman", data.QuestionCount(), doc.Pages),
		RequestedBy: viewer.ID,
	}

	if s.Export.ArchivePDF && s.Storage != nil {
		object := fmt.Sprintf("exports/%d/%s_%s", testID, start.Format("20060102150405"), doc.FileName)
		url, err := s.Storage.Upload(ctx, object, bytes.NewReader(doc.Content), int64(len(doc.Content)), util.MimePDF)
		if err != nil {
			logger.Log.Warn("archive pdf failed", zap.Uint("test_id", testID), zap.Error(err))
		} else {
			out.URL = url
			job.FileURL = url
		}
	}
	s.Transfers.Record(job)

	rep.Notify(util.NotifySuccess, "File PDF telah berhasil di-generate.")
	return out, nil
}

func (s *TryoutService) AttachQuestions(ctx context.Context, viewer model.Viewer, testID, sectionID uint, questionIDs []uint) (*model.TransferResult, error) {
	if testID == 0 || sectionID == 0 {
		return nil, util.ErrInvalidID
	}
	if len(questionIDs) == 0 {
		return nil, util.ErrQuestionsRequired
	}
	for _, id := range questionIDs {
		if id == 0 {
			return nil, util.ErrInvalidID
		}
	}
	if err := s.ensureOwner(ctx, viewer, testID); err != nil {
		return nil, err
	}
	res, err := s.Gateway.AttachQuestions(ctx, testID, sectionID, questionIDs)
	if err != nil {
		return nil, fmt.Errorf("attach questions to test %d: %w", testID, err)
	}
	return res, nil
}

func (s *TryoutService) Schools(ctx context.Context, page, paginate int, search string) (*model.Page[model.School], error) {
	if page < 1 {
		page = 1
	}
	if paginate < 1 {
		paginate = 100
	}
	return s.Gateway.ListSchools(ctx, page, paginate, search)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
