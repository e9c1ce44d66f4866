package service

import (
	"cbt_cms/internal/model"
	"cbt_cms/internal/util"
	"cbt_cms/pkg/logger"
	"cbt_cms/pkg/monitoring"

	"go.uber.org/zap"
)

// TransferStore persists the import/export audit log.
type TransferStore interface {
	Create(job *model.TransferJob) error
	FindByID(id uint) (*model.TransferJob, error)
	List(filter model.TransferJobFilter) ([]model.TransferJob, int64, error)
}

type TransferService struct {
	Store TransferStore
}

func NewTransferService(store TransferStore) *TransferService {
	return &TransferService{Store: store}
}

// Record stores a job. A failed write is logged and never fails the request
// that triggered the transfer.
func (s *TransferService) Record(job *model.TransferJob) {
	monitoring.TransfersTotal.WithLabelValues(string(job.Kind), string(job.Status)).Inc()
	if s == nil || s.Store == nil {
		return
	}
	if err := s.Store.Create(job); err != nil {
		logger.Log.Error("record transfer job failed",
			zap.String("kind", string(job.Kind)),
			zap.Uint("requested_by", job.RequestedBy),
			zap.Error(err))
	}
}

func (s *TransferService) List(filter model.TransferJobFilter) ([]model.TransferJob, int64, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if s.Store == nil {
		return []model.TransferJob{}, 0, nil
	}
	return s.Store.List(filter)
}

func (s *TransferService) Get(id uint) (*model.TransferJob, error) {
	if id == 0 {
		return nil, util.ErrInvalidID
	}
	return s.Store.FindByID(id)
}

// transferMessage prefers the API's data string, then its message.
func transferMessage(res *model.TransferResult, fallback string) string {
	if s := res.DataString(); s != "" {
		return s
	}
	if res != nil && res.Message != "" {
		return res.Message
	}
	return fallback
}
