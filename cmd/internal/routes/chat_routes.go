package routes

import (
	"net/http"
	"wemakedo/cmd/internal/service"
	"wemakedo/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
)

type ChatService interface {
	SendMessage(gatheringID int64, req *service.ChatMessageRequest, callerID string) (*service.ChatMessageResponse, apierror.ErrorResponse)
	ListMessages(gatheringID int64, callerID string) ([]*service.ChatMessageResponse, apierror.ErrorResponse)
}

type DefaultChatRoute struct {
	ChatService ChatService
}

func NewChatDefault(chatService ChatService) *DefaultChatRoute {
	return &DefaultChatRoute{ChatService: chatService}
}

func (ch *DefaultChatRoute) SendMessage(c echo.Context) error {
	id, caller, apierr := gatheringAndCaller(c)
	if apierr != nil {
		return fail(c, apierr)
	}

	var req service.ChatMessageRequest
	if err := c.Bind(&req); err != nil {
		return malformed(c)
	}

	message, apierr := ch.ChatService.SendMessage(id, &req, caller)
	if apierr != nil {
		return fail(c, apierr)
	}
	return c.JSON(http.StatusCreated, message)
}

func (ch *DefaultChatRoute) ListMessages(c echo.Context) error {
	id, caller, apierr := gatheringAndCaller(c)
	if apierr != nil {
		return fail(c, apierr)
	}

	messages, apierr := ch.ChatService.ListMessages(id, caller)
	if apierr != nil {
		return fail(c, apierr)
	}

	resp := echo.Map{"messages": messages}
	return c.JSON(http.StatusOK, &resp)
}
