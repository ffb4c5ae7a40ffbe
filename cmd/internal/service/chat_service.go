package service

import (
	"wemakedo/cmd/internal/domain/entity"
	"wemakedo/cmd/internal/realtime"
	"wemakedo/cmd/internal/utils"
	"wemakedo/cmd/internal/utils/apierror"

	"github.com/go-playground/validator/v10"
)

const chatHistoryLimit = 100

type ChatRepository interface {
	Create(message *entity.ChatMessage) error
	FindRecent(gatheringID int64, limit int) ([]*entity.ChatMessage, error)
}

type ChatMessageRequest struct {
	Content string `json:"content" validate:"required,notblank,max=1000"`
}

type DefaultChatService struct {
	ChatRepo          ChatRepository
	GatheringRepo     GatheringRepository
	ParticipationRepo ParticipationRepository
	Feed              realtime.Publisher
	Validate          *validator.Validate
}

func NewChatService(
	chatRepo ChatRepository,
	gatheringRepo GatheringRepository,
	participationRepo ParticipationRepository,
	feed realtime.Publisher,
	validate *validator.Validate,
) *DefaultChatService {
	return &DefaultChatService{
		ChatRepo:          chatRepo,
		GatheringRepo:     gatheringRepo,
		ParticipationRepo: participationRepo,
		Feed:              feed,
		Validate:          validate,
	}
}

func (c *DefaultChatService) SendMessage(gatheringID int64, req *ChatMessageRequest, callerID string) (*ChatMessageResponse, apierror.ErrorResponse) {
	if apierr := c.checkParticipant(gatheringID, callerID); apierr != nil {
		return nil, apierr
	}

	utils.Sanitize(req)
	if err := c.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	message := &entity.ChatMessage{
		GatheringID: gatheringID,
		UserID:      callerID,
		Content:     req.Content,
		CreatedAt:   utils.NowUTC(),
	}
	if err := c.ChatRepo.Create(message); err != nil {
		return nil, storeFailure(err, "failed to store chat message of user %s in gathering %d", callerID, gatheringID)
	}

	resp := toChatMessageResponse(message)
	publish(c.Feed, realtime.NewEvent(
		realtime.Topic(realtime.TableChatMessages, "gathering_id", gatheringID),
		realtime.TableChatMessages, realtime.ActionInsert, "chat_message", resp,
	))
	return resp, nil
}

// ListMessages returns the latest messages, oldest first.
func (c *DefaultChatService) ListMessages(gatheringID int64, callerID string) ([]*ChatMessageResponse, apierror.ErrorResponse) {
	if apierr := c.checkParticipant(gatheringID, callerID); apierr != nil {
		return nil, apierr
	}

	messages, err := c.ChatRepo.FindRecent(gatheringID, chatHistoryLimit)
	if err != nil {
		return nil, storeFailure(err, "failed to list chat of gathering %d", gatheringID)
	}

	resp := make([]*ChatMessageResponse, len(messages))
	for i, m := range messages {
		resp[i] = toChatMessageResponse(m)
	}
	return resp, nil
}

func (c *DefaultChatService) checkParticipant(gatheringID int64, callerID string) apierror.ErrorResponse {
	if callerID == "" {
		return apierror.UnauthenticatedError
	}

	gathering, err := c.GatheringRepo.FindByID(gatheringID)
	if err != nil {
		return storeFailure(err, "failed to fetch gathering %d", gatheringID)
	}
	if gathering == nil {
		return apierror.NotFoundError
	}

	joined, err := c.ParticipationRepo.Exists(gatheringID, callerID)
	if err != nil {
		return storeFailure(err, "failed to check participation of user %s in gathering %d", callerID, gatheringID)
	}
	if !joined {
		return apierror.NotParticipantError
	}
	return nil
}
