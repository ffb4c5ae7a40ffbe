package repository

import (
	"errors"
	"wemakedo/cmd/internal/domain/entity"

	"gorm.io/gorm"
)

type DefaultCommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *DefaultCommentRepository {
	return &DefaultCommentRepository{db: db}
}

func (c *DefaultCommentRepository) Create(comment *entity.Comment) error {
	return c.db.Omit("User").Create(comment).Error
}

func (c *DefaultCommentRepository) FindByID(id int64) (*entity.Comment, error) {
	var comment entity.Comment
	err := c.db.First(&comment, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &comment, err
}

// DeleteOwn deletes the comment only when userID wrote it.
func (c *DefaultCommentRepository) DeleteOwn(id int64, userID string) (int64, error) {
	res := c.db.Where("id = ? AND user_id = ?", id, userID).Delete(&entity.Comment{})
	return res.RowsAffected, res.Error
}

type DefaultLikeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) *DefaultLikeRepository {
	return &DefaultLikeRepository{db: db}
}

// Toggle flips the user's like on the gathering and reports the new state.
func (l *DefaultLikeRepository) Toggle(gatheringID int64, userID string, now int64) (bool, error) {
	liked := false
	err := l.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("gathering_id = ? AND user_id = ?", gatheringID, userID).Delete(&entity.Like{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}
		liked = true
		return tx.Create(&entity.Like{GatheringID: gatheringID, UserID: userID, CreatedAt: now}).Error
	})
	return liked, err
}

func (l *DefaultLikeRepository) Exists(gatheringID int64, userID string) (bool, error) {
	var count int64
	err := l.db.Model(&entity.Like{}).
		Where("gathering_id = ? AND user_id = ?", gatheringID, userID).
		Count(&count).Error
	return count > 0, err
}
