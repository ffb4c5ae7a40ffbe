package entity

import "gorm.io/gorm"

// MannerScoreStep is how far a single review moves the reviewee's manner score.
const MannerScoreStep = 0.5

// Review is a post-gathering manner vote from one participant to another.
type Review struct {
	ID          int64  `gorm:"primaryKey"`
	ReviewerID  string `gorm:"not null;size:64;uniqueIndex:idx_reviews_vote"`
	RevieweeID  string `gorm:"not null;size:64;uniqueIndex:idx_reviews_vote;index"`
	GatheringID int64  `gorm:"not null;uniqueIndex:idx_reviews_vote"` // References: gatherings(id)
	Score       int    `gorm:"not null;check:chk_reviews_score,score IN (-1, 1)"`
	CreatedAt   int64  `gorm:"not null"`
}

// AfterCreate moves the reviewee's manner score inside the insert transaction,
// so the vote and the aggregate can never disagree.
func (r *Review) AfterCreate(tx *gorm.DB) error {
	return tx.Model(&User{}).
		Where("id = ?", r.RevieweeID).
		UpdateColumn("manner_score", gorm.Expr("manner_score + ?", float64(r.Score)*MannerScoreStep)).
		Error
}
