package entity

type ParticipationStatus string

// ParticipationJoined is the only stored participation state. Pending guests
// live in the applications table, and rejection deletes the application.
const ParticipationJoined ParticipationStatus = "joined"

type Participation struct {
	ID          int64               `gorm:"primaryKey"`
	GatheringID int64               `gorm:"not null;uniqueIndex:idx_participations_member"` // References: gatherings(id)
	UserID      string              `gorm:"not null;size:64;uniqueIndex:idx_participations_member;index"`
	Status      ParticipationStatus `gorm:"not null;size:16;default:joined"`
	CreatedAt   int64               `gorm:"not null"`

	// Relations
	User User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
}
