package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/maxaizer/jobmatch/internal/domain/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Postings struct {
	db *gorm.DB
}

func NewPostingsRepository(db *gorm.DB) *Postings {
	return &Postings{db: db}
}

// Save inserts the posting or overwrites the stored one with the same job id.
func (repo *Postings) Save(ctx context.Context, posting models.Posting) error {
	return repo.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&posting).Error
}

// Get returns models.ErrNotFound when no saga was recorded for jobID.
func (repo *Postings) Get(ctx context.Context, jobID int64) (models.Posting, error) {
	var posting models.Posting
	if err := repo.db.WithContext(ctx).First(&posting, "job_id = ?", jobID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Posting{}, models.ErrNotFound
		}
		return models.Posting{}, err
	}
	return posting, nil
}

// GetUnfinished returns postings that never reached the populated state, oldest first.
func (repo *Postings) GetUnfinished(ctx context.Context) ([]models.Posting, error) {
	var postings []models.Posting
	err := repo.db.WithContext(ctx).
		Where("state <> ?", models.PostingPopulated).
		Order("created_at, job_id").
		Find(&postings).Error
	return postings, err
}

func (repo *Postings) GetAll(ctx context.Context) ([]models.Posting, error) {
	var postings []models.Posting
	err := repo.db.WithContext(ctx).Order("created_at, job_id").Find(&postings).Error
	return postings, err
}

func (repo *Postings) Remove(ctx context.Context, jobID int64) error {
	return repo.db.WithContext(ctx).Delete(&models.Posting{}, "job_id = ?", jobID).Error
}

func (repo *Postings) RemovePopulatedBefore(ctx context.Context, before time.Time) (int64, error) {
	res := repo.db.WithContext(ctx).
		Delete(&models.Posting{}, "state = ? AND updated_at < ?", models.PostingPopulated, before)
	return res.RowsAffected, res.Error
}

func (repo *Postings) CountUnfinishedBefore(ctx context.Context, before time.Time) (int64, error) {
	var count int64
	err := repo.db.WithContext(ctx).Model(&models.Posting{}).
		Where("state <> ? AND updated_at < ?", models.PostingPopulated, before).
		Count(&count).Error
	return count, err
}
