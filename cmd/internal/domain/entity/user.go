package entity

// DefaultMannerScore is the score every new user starts with.
const DefaultMannerScore = 36.5

// User is the public profile of an identity-provider subject.
// ID is the provider's stable subject (Cognito `sub`).
type User struct {
	ID          string  `gorm:"primaryKey;size:64"`
	Email       *string `gorm:"size:320"`
	Name        *string `gorm:"size:80"`
	AvatarURL   *string
	Company     *string `gorm:"size:80"`
	JobTitle    *string `gorm:"size:80"`
	MannerScore float64 `gorm:"not null;default:36.5"`
	CreatedAt   int64   `gorm:"not null"`
	UpdatedAt   int64   `gorm:"not null"`
}
