package repositories

import (
	"context"
	"errors"

	"github.com/maxaizer/jobmatch/internal/domain/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SessionLinks struct {
	db *gorm.DB
}

func NewSessionLinksRepository(db *gorm.DB) *SessionLinks {
	return &SessionLinks{db: db}
}

func (repo *SessionLinks) Save(ctx context.Context, chatID int64, token string) error {
	link := models.SessionLink{ChatID: chatID, Token: token}
	return repo.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&link).Error
}

// Load returns an empty token when the chat is not linked.
func (repo *SessionLinks) Load(ctx context.Context, chatID int64) (string, error) {
	var link models.SessionLink
	if err := repo.db.WithContext(ctx).First(&link, "chat_id = ?", chatID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return link.Token, nil
}

func (repo *SessionLinks) GetAll(ctx context.Context) ([]models.SessionLink, error) {
	var links []models.SessionLink
	err := repo.db.WithContext(ctx).Find(&links).Error
	return links, err
}

func (repo *SessionLinks) Remove(ctx context.Context, chatID int64) error {
	return repo.db.WithContext(ctx).Delete(&models.SessionLink{}, "chat_id = ?", chatID).Error
}
