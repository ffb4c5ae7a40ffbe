package service

import (
	"context"
	"errors"
	"wemakedo/cmd/internal/domain/entity"
	"wemakedo/cmd/internal/realtime"
	"wemakedo/cmd/internal/utils"
	"wemakedo/cmd/internal/utils/apierror"

	"github.com/labstack/gommon/log"
	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(notification *entity.Notification) error
	FindUnread(userID string, limit int) ([]*entity.Notification, error)
	MarkAsRead(id int64, userID string) (int64, error)
	MarkAllAsRead(userID string) error
}

// Notifier stores a notification and pushes it to the recipient's feed.
// Failures are logged only: a lost notification never fails the action
// that caused it.
type Notifier struct {
	Repo NotificationRepository
	Feed realtime.Publisher
}

func NewNotifier(repo NotificationRepository, feed realtime.Publisher) *Notifier {
	return &Notifier{Repo: repo, Feed: feed}
}

func (n *Notifier) Notify(recipient, actor string, typ entity.NotificationType, gatheringID int64, title, message string) {
	if n == nil || recipient == "" || recipient == actor {
		return
	}

	notification := &entity.Notification{
		UserID:      recipient,
		Type:        typ,
		Title:       title,
		Message:     message,
		GatheringID: &gatheringID,
		ActorID:     &actor,
		CreatedAt:   utils.NowUTC(),
	}
	if err := n.Repo.Create(notification); err != nil {
		log.Warnf("failed to store %s notification for user %s: %v", typ, recipient, err)
		return
	}

	publish(n.Feed, realtime.NewEvent(
		realtime.Topic(realtime.TableNotifications, "user_id", recipient),
		realtime.TableNotifications,
		realtime.ActionInsert,
		string(typ),
		toNotificationResponse(notification),
	))
}

func publish(feed realtime.Publisher, event realtime.Event) {
	if feed == nil {
		return
	}
	if err := feed.Publish(context.Background(), event); err != nil {
		log.Warnf("failed to publish %s event on %s: %v", event.Type, event.Topic, err)
	}
}

// storeFailure logs an unexpected store error and hides it behind a generic
// response. A foreign-key failure means the caller has no profile row yet.
func storeFailure(err error, format string, args ...any) apierror.ErrorResponse {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return apierror.ProfileMissingError
	}
	log.Errorf(format+": %v", append(args, err)...)
	return apierror.InternalServerError
}
