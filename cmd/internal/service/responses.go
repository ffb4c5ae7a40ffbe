package service

import (
	"wemakedo/cmd/internal/domain/entity"
	"wemakedo/cmd/internal/utils"
)

type UserSummary struct {
	ID          string  `json:"id"`
	Name        *string `json:"name"`
	AvatarURL   *string `json:"avatar_url"`
	MannerScore float64 `json:"manner_score"`
}

type GatheringResponse struct {
	ID        int64    `json:"id"`
	HostID    string   `json:"host_id"`
	Title     string   `json:"title"`
	Content   *string  `json:"content"`
	Location  string   `json:"location"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	MeetAt    string   `json:"meet_at"`
	Capacity  int      `json:"capacity"`
	Category  string   `json:"category"`
	ImageURL  *string  `json:"image_url"`
	Status    string   `json:"status"`
	CreatedAt string   `json:"created_at"`
}

// GatheringWithCounts is a listing row: the gathering plus read-time counts.
type GatheringWithCounts struct {
	GatheringResponse
	Host             *UserSummary `json:"host,omitempty"`
	ParticipantCount int64        `json:"participant_count"`
	LikeCount        int64        `json:"like_count"`
	IsFull           bool         `json:"is_full"`
	DistanceMeters   *float64     `json:"distance_meters,omitempty"`
}

// CreateGatheringResponse carries warnings from non-fatal creation steps.
type CreateGatheringResponse struct {
	GatheringResponse
	Warnings []string `json:"warnings,omitempty"`
}

const (
	StateNone    = "none"
	StateApplied = "applied"
	StateJoined  = "joined"
)

type GatheringDetail struct {
	GatheringWithCounts
	Participants []*UserSummary     `json:"participants"`
	Comments     []*CommentResponse `json:"comments"`
	LikedByMe    bool               `json:"liked_by_me"`
	IsHost       bool               `json:"is_host"`
	MyState      string             `json:"my_state"`
}

type JoinResponse struct {
	GatheringID int64  `json:"gathering_id"`
	State       string `json:"state"`
}

type ApplicationWithUser struct {
	GatheringID int64        `json:"gathering_id"`
	User        *UserSummary `json:"user"`
	CreatedAt   string       `json:"created_at"`
}

type CommentResponse struct {
	ID          int64        `json:"id"`
	GatheringID int64        `json:"gathering_id"`
	User        *UserSummary `json:"user,omitempty"`
	UserID      string       `json:"user_id"`
	Content     string       `json:"content"`
	CreatedAt   string       `json:"created_at"`
}

type ChatMessageResponse struct {
	ID          int64        `json:"id"`
	GatheringID int64        `json:"gathering_id"`
	User        *UserSummary `json:"user,omitempty"`
	UserID      string       `json:"user_id"`
	Content     string       `json:"content"`
	CreatedAt   string       `json:"created_at"`
}

type ReviewResponse struct {
	RevieweeID string `json:"reviewee_id"`
	Score      int    `json:"score"`
}

type NotificationResponse struct {
	ID          int64   `json:"id"`
	Type        string  `json:"type"`
	Title       string  `json:"title"`
	Message     string  `json:"message"`
	GatheringID *int64  `json:"gathering_id"`
	ActorID     *string `json:"actor_id"`
	IsRead      bool    `json:"is_read"`
	CreatedAt   string  `json:"created_at"`
}

type ProfileResponse struct {
	ID          string  `json:"id"`
	Email       *string `json:"email,omitempty"`
	Name        *string `json:"name"`
	AvatarURL   *string `json:"avatar_url"`
	Company     *string `json:"company"`
	JobTitle    *string `json:"job_title"`
	MannerScore float64 `json:"manner_score"`
	CreatedAt   string  `json:"created_at"`
}

type MyPageResponse struct {
	Profile *ProfileResponse       `json:"profile"`
	Hosted  []*GatheringWithCounts `json:"hosted"`
	Joined  []*GatheringWithCounts `json:"joined"`
	Liked   []*GatheringWithCounts `json:"liked"`
}

func toUserSummary(user *entity.User) *UserSummary {
	if user == nil || user.ID == "" {
		return nil
	}
	return &UserSummary{
		ID:          user.ID,
		Name:        user.Name,
		AvatarURL:   user.AvatarURL,
		MannerScore: user.MannerScore,
	}
}

func toGatheringResponse(g *entity.Gathering) GatheringResponse {
	return GatheringResponse{
		ID:        g.ID,
		HostID:    g.HostID,
		Title:     g.Title,
		Content:   g.Content,
		Location:  g.Location,
		Latitude:  g.Latitude,
		Longitude: g.Longitude,
		MeetAt:    utils.FormatEpoch(g.MeetAt),
		Capacity:  g.Capacity,
		Category:  g.Category,
		ImageURL:  g.ImageURL,
		Status:    string(g.Status),
		CreatedAt: utils.FormatEpoch(g.CreatedAt),
	}
}

func toGatheringWithCounts(g *entity.Gathering) *GatheringWithCounts {
	return &GatheringWithCounts{
		GatheringResponse: toGatheringResponse(g),
		Host:              toUserSummary(&g.Host),
		ParticipantCount:  g.ParticipantCount,
		LikeCount:         g.LikeCount,
		IsFull:            g.IsFull(g.ParticipantCount),
	}
}

func toGatheringList(gatherings []*entity.Gathering) []*GatheringWithCounts {
	resp := make([]*GatheringWithCounts, len(gatherings))
	for i, g := range gatherings {
		resp[i] = toGatheringWithCounts(g)
	}
	return resp
}

func toCommentResponse(c *entity.Comment) *CommentResponse {
	return &CommentResponse{
		ID:          c.ID,
		GatheringID: c.GatheringID,
		User:        toUserSummary(&c.User),
		UserID:      c.UserID,
		Content:     c.Content,
		CreatedAt:   utils.FormatEpoch(c.CreatedAt),
	}
}

func toChatMessageResponse(m *entity.ChatMessage) *ChatMessageResponse {
	return &ChatMessageResponse{
		ID:          m.ID,
		GatheringID: m.GatheringID,
		User:        toUserSummary(&m.User),
		UserID:      m.UserID,
		Content:     m.Content,
		CreatedAt:   utils.FormatEpoch(m.CreatedAt),
	}
}

func toNotificationResponse(n *entity.Notification) *NotificationResponse {
	return &NotificationResponse{
		ID:          n.ID,
		Type:        string(n.Type),
		Title:       n.Title,
		Message:     n.Message,
		GatheringID: n.GatheringID,
		ActorID:     n.ActorID,
		IsRead:      n.IsRead,
		CreatedAt:   utils.FormatEpoch(n.CreatedAt),
	}
}

func toProfileResponse(user *entity.User) *ProfileResponse {
	return &ProfileResponse{
		ID:          user.ID,
		Email:       user.Email,
		Name:        user.Name,
		AvatarURL:   user.AvatarURL,
		Company:     user.Company,
		JobTitle:    user.JobTitle,
		MannerScore: user.MannerScore,
		CreatedAt:   utils.FormatEpoch(user.CreatedAt),
	}
}
