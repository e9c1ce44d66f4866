package repository

import (
	"cbt_cms/internal/model"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestTransferJobRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTransferJobRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `transfer_jobs`")).
		WillReturnResult(sqlmock.NewResult(5, 1))

	cat := uint(2)
	job := &model.TransferJob{
		Kind:               model.TransferQuestionExport,
		QuestionCategoryID: &cat,
		Status:             model.TransferAccepted,
		Message:            "Export diproses.",
		RequestedBy:        1,
	}
	require.NoError(t, repo.Create(job))
	assert.Equal(t, uint(5), job.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransferJobRepository_List(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTransferJobRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM `transfer_jobs` WHERE kind = ?")).
		WithArgs("question_import").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(11))

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "created_at", "updated_at", "kind", "status", "message", "file_name", "requested_by"}).
		AddRow(11, now, now, "question_import", "accepted", "Import diproses.", "soal.csv", 1).
		AddRow(10, now, now, "question_import", "failed", "bad file", "x.csv", 1)
	mock.ExpectQuery("SELECT \\* FROM `transfer_jobs` WHERE kind = \\?.*ORDER BY created_at desc").
		WillReturnRows(rows)

	jobs, total, err := repo.List(model.TransferJobFilter{Kind: model.TransferQuestionImport, Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(11), total)
	require.Len(t, jobs, 2)
	assert.Equal(t, uint(11), jobs[0].ID)
	assert.Equal(t, model.TransferFailed, jobs[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
