package routes

import (
	"net/http"
	"wemakedo/cmd/internal/service"
	"wemakedo/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
)

type NotificationService interface {
	ListUnread(callerID string) ([]*service.NotificationResponse, apierror.ErrorResponse)
	MarkAsRead(notificationID int64, callerID string) apierror.ErrorResponse
	MarkAllAsRead(callerID string) apierror.ErrorResponse
}

type DefaultNotificationRoute struct {
	NotificationService NotificationService
}

func NewNotificationDefault(notificationService NotificationService) *DefaultNotificationRoute {
	return &DefaultNotificationRoute{NotificationService: notificationService}
}

func (n *DefaultNotificationRoute) ListUnread(c echo.Context) error {
	caller, apierr := callerID(c)
	if apierr != nil {
		return fail(c, apierr)
	}

	notifications, apierr := n.NotificationService.ListUnread(caller)
	if apierr != nil {
		return fail(c, apierr)
	}

	resp := echo.Map{"notifications": notifications}
	return c.JSON(http.StatusOK, &resp)
}

func (n *DefaultNotificationRoute) MarkAsRead(c echo.Context) error {
	id, apierr := int64Param(c, "id")
	if apierr != nil {
		return fail(c, apierr)
	}

	caller, apierr := callerID(c)
	if apierr != nil {
		return fail(c, apierr)
	}

	if apierr := n.NotificationService.MarkAsRead(id, caller); apierr != nil {
		return fail(c, apierr)
	}
	return c.NoContent(http.StatusNoContent)
}

func (n *DefaultNotificationRoute) MarkAllAsRead(c echo.Context) error {
	caller, apierr := callerID(c)
	if apierr != nil {
		return fail(c, apierr)
	}

	if apierr := n.NotificationService.MarkAllAsRead(caller); apierr != nil {
		return fail(c, apierr)
	}
	return c.NoContent(http.StatusNoContent)
}
