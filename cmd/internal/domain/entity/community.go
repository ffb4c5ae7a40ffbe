package entity

type Comment struct {
	ID          int64  `gorm:"primaryKey"`
	GatheringID int64  `gorm:"not null;index"` // References: gatherings(id)
	UserID      string `gorm:"not null;size:64"`
	Content     string `gorm:"not null;type:text"`
	CreatedAt   int64  `gorm:"not null"`

	// Relations
	User User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
}

type Like struct {
	ID          int64  `gorm:"primaryKey"`
	GatheringID int64  `gorm:"not null;uniqueIndex:idx_likes_member"` // References: gatherings(id)
	UserID      string `gorm:"not null;size:64;uniqueIndex:idx_likes_member;index"`
	CreatedAt   int64  `gorm:"not null"`
}

type ChatMessage struct {
	ID          int64  `gorm:"primaryKey"`
	GatheringID int64  `gorm:"not null;index"` // References: gatherings(id)
	UserID      string `gorm:"not null;size:64"`
	Content     string `gorm:"not null;type:text"`
	CreatedAt   int64  `gorm:"not null;index"`

	// Relations
	User User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
}
