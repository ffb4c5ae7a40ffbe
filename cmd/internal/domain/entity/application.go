package entity

// Application is a pending request from a guest to join a gathering.
type Application struct {
	ID          int64  `gorm:"primaryKey"`
	GatheringID int64  `gorm:"not null;uniqueIndex:idx_applications_member"` // References: gatherings(id)
	UserID      string `gorm:"not null;size:64;uniqueIndex:idx_applications_member;index"`
	CreatedAt   int64  `gorm:"not null"`

	// Relations
	User User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
}
