package service

import (
	"cbt_cms/internal/config"
	"cbt_cms/internal/model"
	"cbt_cms/internal/util"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTryouts struct {
	queries   []model.TestListQuery
	tests     []model.Test
	users     []model.User
	usersErr  error
	payloads  []*model.TestPayload
	updatedID uint
	deleted   []uint
	deleteErr error
	exportRes *model.TransferResult
	exportErr error
	export    *model.TestExport
	attached  []uint
	exported  []uint
	// scoped makes ListTests honour the user_id search like the exam API.
	scoped bool
}

func (f *fakeTryouts) ListTests(ctx context.Context, q model.TestListQuery) (*model.Page[model.Test], error) {
	f.queries = append(f.queries, q)
	rows := make([]model.Test, 0, len(f.tests))
	for _, t := range f.tests {
		if f.scoped && q.SearchBySpecific == "user_id" && (t.UserID == nil || fmt.Sprint(*t.UserID) != q.Search) {
			continue
		}
		rows = append(rows, t)
	}
	return &model.Page[model.Test]{Data: rows, CurrentPage: q.Page}, nil
}

func (f *fakeTryouts) CreateTest(ctx context.Context, p *model.TestPayload) (*model.Test, error) {
	f.payloads = append(f.payloads, p)
	return &model.Test{ID: 10, Title: p.Title}, nil
}

func (f *fakeTryouts) UpdateTest(ctx context.Context, id uint, p *model.TestPayload) (*model.Test, error) {
	f.updatedID = id
	f.payloads = append(f.payloads, p)
	return &model.Test{ID: id, Title: p.Title}, nil
}

func (f *fakeTryouts) DeleteTest(ctx context.Context, id uint) (*model.TransferResult, error) {
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return &model.TransferResult{Code: 200}, nil
}

func (f *fakeTryouts) ExportTest(ctx context.Context, testID uint) (*model.TransferResult, error) {
	f.exported = append(f.exported, testID)
	return f.exportRes, f.exportErr
}

func (f *fakeTryouts) ExportTestQuestions(ctx context.Context, testID uint) (*model.TestExport, error) {
	if f.export == nil {
		return nil, errors.New("empty data")
	}
	return f.export, nil
}

func (f *fakeTryouts) AttachQuestions(ctx context.Context, testID, sectionID uint, ids []uint) (*model.TransferResult, error) {
	f.attached = append(f.attached, ids...)
	return &model.TransferResult{Code: 200, Message: "ok"}, nil
}

func (f *fakeTryouts) ListSchools(ctx context.Context, page, paginate int, search string) (*model.Page[model.School], error) {
	return &model.Page[model.School]{Data: []model.School{{ID: 1, Name: "SMA 1"}}}, nil
}

func (f *fakeTryouts) ListUsers(ctx context.Context, page, paginate int, search string, roleID int) (*model.Page[model.User], error) {
	if f.usersErr != nil {
		return nil, f.usersErr
	}
	return &model.Page[model.User]{Data: f.users}, nil
}

var (
	superadmin = model.Viewer{ID: 1, Roles: []model.RoleName{model.RoleSuperadmin}}
	supervisor = model.Viewer{ID: 12, Roles: []model.RoleName{model.RolePengawas}}
	both       = model.Viewer{ID: 13, Roles: []model.RoleName{model.RolePengawas, model.RoleSuperadmin}}
)

func newTryouts(gw *fakeTryouts) *TryoutService {
	return NewTryoutService(gw, nil, nil, config.ExportConfig{DefaultSchoolName: "Sekolah Umum"})
}

func TestScopeListQuery(t *testing.T) {
	in := TestListParams{Search: "UTBK", SearchBySpecific: "title", SchoolID: 4}

	q := ScopeListQuery(supervisor, in)
	assert.Equal(t, "12", q.Search)
	assert.Equal(t, "user_id", q.SearchBySpecific)
	assert.Equal(t, uint(4), q.SchoolID)
	assert.Equal(t, "tests.updated_at", q.OrderBy)
	assert.Equal(t, "desc", q.OrderDirection)
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, 10, q.Paginate)

	for _, v := range []model.Viewer{superadmin, both} {
		q := ScopeListQuery(v, in)
		assert.Equal(t, "UTBK", q.Search)
		assert.Equal(t, "title", q.SearchBySpecific)
	}
}

func TestTryoutListAnnotatesSupervisor(t *testing.T) {
	gw := &fakeTryouts{
		tests: []model.Test{
			{ID: 1, UserID: util.UintPtr(12)},
			{ID: 2, UserID: util.UintPtr(99)},
			{ID: 3},
		},
		users: []model.User{{ID: 12, Name: "Bu Sari"}},
	}
	page, err := newTryouts(gw).List(context.Background(), supervisor, TestListParams{Search: "x"})
	require.NoError(t, err)

	assert.Equal(t, "12", gw.queries[0].Search)
	assert.Equal(t, "Bu Sari", page.Data[0].PengawasName)
	assert.Equal(t, "", page.Data[1].PengawasName)
	assert.Equal(t, "", page.Data[2].PengawasName)
}

func TestTryoutListWithoutUsers(t *testing.T) {
	gw := &fakeTryouts{tests: []model.Test{{ID: 1, UserID: util.UintPtr(12)}}, usersErr: errors.New("forbidden")}
	page, err := newTryouts(gw).List(context.Background(), superadmin, TestListParams{})
	require.NoError(t, err)
	assert.Len(t, page.Data, 1)
}

func TestToPayload(t *testing.T) {
	svc := newTryouts(&fakeTryouts{})

	t.Run("normalizes", func(t *testing.T) {
		form := model.DefaultTestForm()
		form.SchoolID = 2
		form.Title = " UTBK "
		form.SubTitle = "  "
		form.StartDate = "2024-05-01T10:00:00Z"
		form.EndDate = "not-a-date"
		form.ShuffleQuestions = true
		form.UserID = 5

		p, err := svc.ToPayload(superadmin, form)
		require.NoError(t, err)
		assert.Equal(t, "UTBK", p.Title)
		assert.Nil(t, p.SubTitle)
		assert.Equal(t, "2024-05-01", p.StartDate)
		assert.Equal(t, "", p.EndDate)
		assert.Equal(t, 1, p.ShuffleQuestions)
		assert.Equal(t, 1, p.Status)
		require.NotNil(t, p.TotalTime)
		assert.Equal(t, 3600, *p.TotalTime)
		assert.Equal(t, uint(5), p.UserID)
	})

	t.Run("per category timer drops total time", func(t *testing.T) {
		form := model.DefaultTestForm()
		form.SchoolID = 2
		form.Title = "UTBK"
		form.TimerType = model.TimerPerCategory
		form.Status = false

		p, err := svc.ToPayload(superadmin, form)
		require.NoError(t, err)
		assert.Nil(t, p.TotalTime)
		assert.Equal(t, 0, p.Status)
	})

	t.Run("supervisor owns the test", func(t *testing.T) {
		form := model.DefaultTestForm()
		form.SchoolID = 2
		form.Title = "UTBK"
		form.UserID = 99

		p, err := svc.ToPayload(supervisor, form)
		require.NoError(t, err)
		assert.Equal(t, uint(12), p.UserID)
	})

	t.Run("invalid", func(t *testing.T) {
		form := model.DefaultTestForm()
		form.SchoolID = 2
		form.Title = "UTBK"
		form.TimerType = "per_week"
		_, err := svc.ToPayload(superadmin, form)
		assert.ErrorIs(t, err, util.ErrInvalidTest)

		form = model.DefaultTestForm()
		form.Title = "UTBK"
		_, err = svc.ToPayload(superadmin, form)
		assert.ErrorIs(t, err, util.ErrInvalidTest)
	})
}

func TestTryoutCreateUpdate(t *testing.T) {
	gw := &fakeTryouts{}
	svc := newTryouts(gw)
	form := model.DefaultTestForm()
	form.SchoolID = 1
	form.Title = "Tryout 1"

	rep := NewRequestReporter(false)
	created, err := svc.Create(context.Background(), supervisor, form, rep)
	require.NoError(t, err)
	assert.Equal(t, uint(10), created.ID)
	assert.Equal(t, uint(12), gw.payloads[0].UserID)

	_, err = svc.Update(context.Background(), superadmin, 10, form, rep)
	require.NoError(t, err)
	assert.Equal(t, uint(10), gw.updatedID)
	assert.Len(t, rep.Notifications(), 2)

	_, err = svc.Update(context.Background(), superadmin, 0, form, rep)
	assert.ErrorIs(t, err, util.ErrInvalidID)
}

func TestTryoutDelete(t *testing.T) {
	t.Run("declined", func(t *testing.T) {
		gw := &fakeTryouts{}
		rep := NewRequestReporter(false)
		err := newTryouts(gw).Delete(context.Background(), superadmin, 3, "UTBK", rep)
		assert.ErrorIs(t, err, util.ErrNotConfirmed)
		assert.Empty(t, gw.deleted)
		assert.Equal(t, []string{"Hapus Test?"}, rep.Prompts())
	})

	t.Run("confirmed", func(t *testing.T) {
		gw := &fakeTryouts{}
		rep := NewRequestReporter(true)
		require.NoError(t, newTryouts(gw).Delete(context.Background(), superadmin, 3, "UTBK", rep))
		assert.Equal(t, []uint{3}, gw.deleted)
		assert.Equal(t, `"UTBK" dihapus.`, rep.Notifications()[0].Message)
	})

	t.Run("failure reported", func(t *testing.T) {
		gw := &fakeTryouts{deleteErr: errors.New("boom")}
		rep := NewRequestReporter(true)
		assert.Error(t, newTryouts(gw).Delete(context.Background(), superadmin, 3, "", rep))
		assert.Equal(t, util.NotifyError, rep.Notifications()[0].Kind)
	})
}

func TestTryoutExportResults(t *testing.T) {
	store := &fakeTransferStore{}
	gw := &fakeTryouts{exportRes: &model.TransferResult{Message: "Export diproses di background"}}
	svc := NewTryoutService(gw, NewTransferService(store), nil, config.ExportConfig{})

	rep := NewRequestReporter(false)
	out, err := svc.ExportResults(context.Background(), superadmin, 8, rep)
	require.NoError(t, err)
	assert.Equal(t, "Export diproses di background", out.Message)
	assert.Equal(t, "Export dimulai: Export diproses di background", rep.Notifications()[0].Message)
	require.Len(t, store.jobs, 1)
	assert.Equal(t, model.TransferTestExport, store.jobs[0].Kind)
	assert.Equal(t, uint(8), *store.jobs[0].TestID)
}

func exportFixture() *model.TestExport {
	return &model.TestExport{
		Test: model.ExportTestHeader{Title: "UTBK Sesi 1"},
		QuestionCategories: []model.ExportSection{{
			QuestionCategory: model.ExportSectionCategory{Name: "Numerasi"},
			Questions: []model.TestQuestionWrapper{{Question: model.ExportQuestion{
				Question: "1+1?", Type: model.MultipleChoice, Answer: "b",
				Options: []model.ExportOption{{Option: "a", Text: "1"}, {Option: "b", Text: "2"}},
			}}},
		}},
	}
}

func TestTryoutExportPDF(t *testing.T) {
	t.Run("no questions", func(t *testing.T) {
		gw := &fakeTryouts{export: &model.TestExport{}}
		rep := NewRequestReporter(false)
		_, err := newTryouts(gw).ExportPDF(context.Background(), superadmin, 1, "", rep)
		assert.ErrorIs(t, err, util.ErrExportEmpty)
		assert.Equal(t, "Data soal tidak ditemukan", rep.Notifications()[0].Message)
	})

	t.Run("api error", func(t *testing.T) {
		rep := NewRequestReporter(false)
		_, err := newTryouts(&fakeTryouts{}).ExportPDF(context.Background(), superadmin, 1, "", rep)
		assert.Error(t, err)
		assert.Equal(t, "Data soal tidak ditemukan", rep.Notifications()[0].Message)
	})

	t.Run("rendered and archived", func(t *testing.T) {
		dir := t.TempDir()
		storage := &StorageService{Provider: &LocalStorageProvider{Config: &config.StorageConfig{LocalPath: dir}}}
		store := &fakeTransferStore{}
		svc := NewTryoutService(&fakeTryouts{export: exportFixture()}, NewTransferService(store), storage,
			config.ExportConfig{DefaultSchoolName: "Sekolah Umum", ArchivePDF: true})

		rep := NewRequestReporter(false)
		doc, err := svc.ExportPDF(context.Background(), superadmin, 7, "SMA 1", rep)
		require.NoError(t, err)

		assert.Equal(t, "soal_utbk_sesi_1.pdf", doc.FileName)
		assert.Equal(t, 1, doc.Pages)
		assert.NotEmpty(t, doc.Content)
		require.NotEmpty(t, doc.URL)
		assert.Contains(t, doc.URL, "/uploads/exports/7/")

		matches, err := filepath.Glob(filepath.Join(dir, "exports", "7", "*_soal_utbk_sesi_1.pdf"))
		require.NoError(t, err)
		require.Len(t, matches, 1)
		stored, err := os.ReadFile(matches[0])
		require.NoError(t, err)
		assert.Equal(t, doc.Content, stored)

		require.Len(t, store.jobs, 1)
		assert.Equal(t, model.TransferTestPDF, store.jobs[0].Kind)
		assert.Equal(t, doc.URL, store.jobs[0].FileURL)
		assert.Equal(t, "File PDF telah berhasil di-generate.", rep.Notifications()[0].Message)
	})
}

func TestAttachQuestions(t *testing.T) {
	gw := &fakeTryouts{}
	svc := newTryouts(gw)
	ctx := context.Background()

	_, err := svc.AttachQuestions(ctx, superadmin, 0, 1, []uint{1})
	assert.ErrorIs(t, err, util.ErrInvalidID)
	_, err = svc.AttachQuestions(ctx, superadmin, 1, 1, nil)
	assert.ErrorIs(t, err, util.ErrQuestionsRequired)
	_, err = svc.AttachQuestions(ctx, superadmin, 1, 1, []uint{3, 0})
	assert.ErrorIs(t, err, util.ErrInvalidID)
	assert.Empty(t, gw.attached)

	_, err = svc.AttachQuestions(ctx, superadmin, 1, 2, []uint{3, 4})
	require.NoError(t, err)
	assert.Equal(t, []uint{3, 4}, gw.attached)
}

func TestSupervisorOwnership(t *testing.T) {
	ctx := context.Background()
	owned := []model.Test{
		{ID: 3, UserID: util.UintPtr(12)},
		{ID: 7, UserID: util.UintPtr(99)},
	}
	form := model.DefaultTestForm()
	form.SchoolID = 1
	form.Title = "Tryout 1"

	newScoped := func() (*fakeTryouts, *TryoutService) {
		gw := &fakeTryouts{tests: owned, scoped: true, export: exportFixture(), exportRes: &model.TransferResult{}}
		return gw, NewTryoutService(gw, NewTransferService(&fakeTransferStore{}), nil, config.ExportConfig{})
	}

	t.Run("foreign test is refused", func(t *testing.T) {
		gw, svc := newScoped()
		rep := NewRequestReporter(true)

		_, err := svc.Update(ctx, supervisor, 7, form, rep)
		assert.ErrorIs(t, err, util.ErrPermissionDenied)
		assert.Zero(t, gw.updatedID)

		assert.ErrorIs(t, svc.Delete(ctx, supervisor, 7, "UTBK", rep), util.ErrPermissionDenied)
		assert.Empty(t, gw.deleted)

		_, err = svc.ExportResults(ctx, supervisor, 7, rep)
		assert.ErrorIs(t, err, util.ErrPermissionDenied)
		assert.Empty(t, gw.exported)

		_, err = svc.ExportPDF(ctx, supervisor, 7, "", rep)
		assert.ErrorIs(t, err, util.ErrPermissionDenied)

		_, err = svc.AttachQuestions(ctx, supervisor, 7, 1, []uint{4})
		assert.ErrorIs(t, err, util.ErrPermissionDenied)
		assert.Empty(t, gw.attached)

		for _, q := range gw.queries {
			assert.Equal(t, "12", q.Search)
			assert.Equal(t, "user_id", q.SearchBySpecific)
		}
	})

	t.Run("own test is allowed", func(t *testing.T) {
		gw, svc := newScoped()
		rep := NewRequestReporter(true)

		_, err := svc.Update(ctx, supervisor, 3, form, rep)
		require.NoError(t, err)
		assert.Equal(t, uint(3), gw.updatedID)

		require.NoError(t, svc.Delete(ctx, supervisor, 3, "UTBK", rep))
		assert.Equal(t, []uint{3}, gw.deleted)

		_, err = svc.ExportResults(ctx, supervisor, 3, rep)
		require.NoError(t, err)
		assert.Equal(t, []uint{3}, gw.exported)

		doc, err := svc.ExportPDF(ctx, supervisor, 3, "", rep)
		require.NoError(t, err)
		assert.NotEmpty(t, doc.Content)

		_, err = svc.AttachQuestions(ctx, supervisor, 3, 1, []uint{4})
		require.NoError(t, err)
		assert.Equal(t, []uint{4}, gw.attached)
	})

	t.Run("superadmin skips the lookup", func(t *testing.T) {
		gw, svc := newScoped()
		require.NoError(t, svc.Delete(ctx, superadmin, 7, "UTBK", NewRequestReporter(true)))
		assert.Equal(t, []uint{7}, gw.deleted)
		assert.Empty(t, gw.queries)
	})
}
