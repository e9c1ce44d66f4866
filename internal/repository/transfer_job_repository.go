package repository

import (
	"cbt_cms/internal/model"

	"gorm.io/gorm"
)

type TransferJobRepository struct {
	DB *gorm.DB
}

func NewTransferJobRepository(db *gorm.DB) *TransferJobRepository {
	return &TransferJobRepository{DB: db}
}

func (r *TransferJobRepository) Create(job *model.TransferJob) error {
	return r.DB.Create(job).Error
}

func (r *TransferJobRepository) FindByID(id uint) (*model.TransferJob, error) {
	var job model.TransferJob
	err := r.DB.First(&job, id).Error
	return &job, err
}

// List returns the newest jobs first.
func (r *TransferJobRepository) List(filter model.TransferJobFilter) ([]model.TransferJob, int64, error) {
	query := r.DB.Model(&model.TransferJob{})
	if filter.Kind != "" {
		query = query.Where("kind = ?", filter.Kind)
	}
	if filter.RequestedBy > 0 {
		query = query.Where("requested_by = ?", filter.RequestedBy)
	}

	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Limit > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.Limit).Limit(filter.Limit)
	}

	var jobs []model.TransferJob
	err := query.Order("created_at desc").Find(&jobs).Error
	return jobs, total, err
}
