package service

import (
	"wemakedo/cmd/internal/utils/apierror"
)

const unreadLimit = 20

type DefaultNotificationService struct {
	NotificationRepo NotificationRepository
}

func NewNotificationService(notificationRepo NotificationRepository) *DefaultNotificationService {
	return &DefaultNotificationService{NotificationRepo: notificationRepo}
}

// ListUnread returns the newest unread notifications. Anonymous callers get
// an empty list.
func (n *DefaultNotificationService) ListUnread(callerID string) ([]*NotificationResponse, apierror.ErrorResponse) {
	if callerID == "" {
		return []*NotificationResponse{}, nil
	}

	notifications, err := n.NotificationRepo.FindUnread(callerID, unreadLimit)
	if err != nil {
		return nil, storeFailure(err, "failed to list notifications of user %s", callerID)
	}

	resp := make([]*NotificationResponse, len(notifications))
	for i, notification := range notifications {
		resp[i] = toNotificationResponse(notification)
	}
	return resp, nil
}

func (n *DefaultNotificationService) MarkAsRead(notificationID int64, callerID string) apierror.ErrorResponse {
	if callerID == "" {
		return apierror.UnauthenticatedError
	}

	rows, err := n.NotificationRepo.MarkAsRead(notificationID, callerID)
	if err != nil {
		return storeFailure(err, "failed to mark notification %d as read", notificationID)
	}
	if rows == 0 {
		return apierror.NotFoundError
	}
	return nil
}

func (n *DefaultNotificationService) MarkAllAsRead(callerID string) apierror.ErrorResponse {
	if callerID == "" {
		return apierror.UnauthenticatedError
	}

	if err := n.NotificationRepo.MarkAllAsRead(callerID); err != nil {
		return storeFailure(err, "failed to mark notifications of user %s as read", callerID)
	}
	return nil
}
