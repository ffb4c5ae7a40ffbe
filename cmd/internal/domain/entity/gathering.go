package entity

type GatheringStatus string

const (
	GatheringRecruiting GatheringStatus = "recruiting"
	GatheringClosed     GatheringStatus = "closed"
	GatheringCanceled   GatheringStatus = "canceled"
)

// Categories lists every category a gathering may be filed under.
var Categories = []string{
	"networking",
	"lunch",
	"meal",
	"study",
	"workout",
	"culture",
	"hobby",
	"travel",
	"game",
	"chat",
}

func IsCategory(s string) bool {
	for _, c := range Categories {
		if c == s {
			return true
		}
	}
	return false
}

type Gathering struct {
	ID        int64   `gorm:"primaryKey"`
	HostID    string  `gorm:"not null;size:64;index"` // References: users(id)
	Title     string  `gorm:"not null;size:100"`
	Content   *string `gorm:"type:text"`
	Location  string  `gorm:"not null"`
	Latitude  *float64
	Longitude *float64
	MeetAt    int64           `gorm:"not null;index"`
	Capacity  int             `gorm:"not null"`
	Category  string          `gorm:"not null;size:32;index"`
	ImageURL  *string
	Status    GatheringStatus `gorm:"not null;size:16;default:recruiting"`
	CreatedAt int64           `gorm:"not null"`

	// Computed by listing queries, never persisted.
	ParticipantCount int64 `gorm:"->;-:migration"`
	LikeCount        int64 `gorm:"->;-:migration"`

	// Relations
	Host           User            `gorm:"foreignKey:HostID;references:ID"`
	Participations []Participation `gorm:"constraint:OnDelete:CASCADE"`
	Applications   []Application   `gorm:"constraint:OnDelete:CASCADE"`
	Comments       []Comment       `gorm:"constraint:OnDelete:CASCADE"`
	Likes          []Like          `gorm:"constraint:OnDelete:CASCADE"`
	ChatMessages   []ChatMessage   `gorm:"constraint:OnDelete:CASCADE"`
	Reviews        []Review        `gorm:"constraint:OnDelete:CASCADE"`
}

// IsFull is computed at read time; nothing ever persists a "full" transition.
func (g *Gathering) IsFull(participants int64) bool {
	return participants >= int64(g.Capacity)
}
