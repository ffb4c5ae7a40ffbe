package repository

import (
	"wemakedo/cmd/internal/domain/entity"

	"gorm.io/gorm"
)

type DefaultReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *DefaultReviewRepository {
	return &DefaultReviewRepository{db: db}
}

// Create stores the vote. Review.AfterCreate adjusts the reviewee's manner
// score in the same transaction.
func (r *DefaultReviewRepository) Create(review *entity.Review) error {
	return r.db.Create(review).Error
}

func (r *DefaultReviewRepository) FindByReviewer(reviewerID string, gatheringID int64) ([]*entity.Review, error) {
	var reviews []*entity.Review
	err := r.db.Select("reviewee_id", "score").
		Where("reviewer_id = ? AND gathering_id = ?", reviewerID, gatheringID).
		Order("id asc").
		Find(&reviews).Error
	return reviews, err
}
