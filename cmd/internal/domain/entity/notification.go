package entity

type NotificationType string

const (
	NotifyApplicationReceived NotificationType = "application_received"
	NotifyApplicationApproved NotificationType = "application_approved"
	NotifyApplicationRejected NotificationType = "application_rejected"
	NotifyParticipantJoined   NotificationType = "participant_joined"
	NotifyCommentAdded        NotificationType = "comment_added"
	NotifyReviewReceived      NotificationType = "review_received"
)

type Notification struct {
	ID          int64            `gorm:"primaryKey"`
	UserID      string           `gorm:"not null;size:64;index"` // Recipient, references: users(id)
	Type        NotificationType `gorm:"not null;size:32"`
	Title       string           `gorm:"not null;size:100"`
	Message     string           `gorm:"not null;size:500"`
	GatheringID *int64           `gorm:"index"`
	ActorID     *string          `gorm:"size:64"`
	IsRead      bool             `gorm:"not null;default:false"`
	CreatedAt   int64            `gorm:"not null"`
}
