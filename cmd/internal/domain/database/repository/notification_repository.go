package repository

import (
	"wemakedo/cmd/internal/domain/entity"

	"gorm.io/gorm"
)

type DefaultNotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *DefaultNotificationRepository {
	return &DefaultNotificationRepository{db: db}
}

func (n *DefaultNotificationRepository) Create(notification *entity.Notification) error {
	return n.db.Create(notification).Error
}

func (n *DefaultNotificationRepository) FindUnread(userID string, limit int) ([]*entity.Notification, error) {
	var notifications []*entity.Notification
	err := n.db.Where("user_id = ? AND is_read = ?", userID, false).
		Order("created_at desc").
		Order("id desc").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

func (n *DefaultNotificationRepository) MarkAsRead(id int64, userID string) (int64, error) {
	res := n.db.Model(&entity.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

func (n *DefaultNotificationRepository) MarkAllAsRead(userID string) error {
	return n.db.Model(&entity.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
}
