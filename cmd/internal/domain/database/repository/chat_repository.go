package repository

import (
	"wemakedo/cmd/internal/domain/entity"

	"gorm.io/gorm"
)

type DefaultChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) *DefaultChatRepository {
	return &DefaultChatRepository{db: db}
}

func (c *DefaultChatRepository) Create(message *entity.ChatMessage) error {
	if err := c.db.Omit("User").Create(message).Error; err != nil {
		return err
	}
	return c.db.Preload("User").First(message, message.ID).Error
}

// FindRecent returns the newest `limit` messages in ascending order.
func (c *DefaultChatRepository) FindRecent(gatheringID int64, limit int) ([]*entity.ChatMessage, error) {
	var messages []*entity.ChatMessage
	err := c.db.Preload("User").
		Where("gathering_id = ?", gatheringID).
		Order("created_at desc").
		Order("id desc").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
