package service

import (
	"context"
	"sync"
	"testing"
	"time"
	"wemakedo/cmd/internal/config"
	"wemakedo/cmd/internal/domain/database"
	"wemakedo/cmd/internal/domain/database/repository"
	"wemakedo/cmd/internal/domain/entity"
	"wemakedo/cmd/internal/realtime"
	"wemakedo/cmd/internal/utils/validators"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	hostID  = "host-sub"
	aliceID = "alice-sub"
	bobID   = "bob-sub"
	carolID = "carol-sub"
)

type recordingFeed struct {
	mu     sync.Mutex
	events []realtime.Event
}

func (r *recordingFeed) Publish(_ context.Context, event realtime.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingFeed) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, len(r.events))
	for i, e := range r.events {
		types[i] = e.Type
	}
	return types
}

func (r *recordingFeed) onTopic(topic string) []realtime.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var events []realtime.Event
	for _, e := range r.events {
		if e.Topic == topic {
			events = append(events, e)
		}
	}
	return events
}

type fixture struct {
	db   *gorm.DB
	feed *recordingFeed

	users          *repository.DefaultUserRepository
	gatheringRepo  *repository.DefaultGatheringRepository
	participations *repository.DefaultParticipationRepository
	applications   *repository.DefaultApplicationRepository
	notifications  *repository.DefaultNotificationRepository

	gatherings *DefaultGatheringService
	joins      *DefaultParticipationService
	reviews    *DefaultReviewService
	community  *DefaultCommunityService
	chat       *DefaultChatService
	inbox      *DefaultNotificationService
	profiles   *DefaultUserService
	topics     *DefaultFeedService
}

func newFixture(t *testing.T, policy config.JoinPolicy) *fixture {
	t.Helper()

	db, err := database.Init(database.DriverSQLite, "file::memory:?_foreign_keys=on")
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})

	validate := validator.New()
	validators.Register(validate)

	f := &fixture{
		db:             db,
		feed:           &recordingFeed{},
		users:          repository.NewUserRepository(db),
		gatheringRepo:  repository.NewGatheringRepository(db),
		participations: repository.NewParticipationRepository(db),
		applications:   repository.NewApplicationRepository(db),
		notifications:  repository.NewNotificationRepository(db),
	}
	likes := repository.NewLikeRepository(db)
	notifier := NewNotifier(f.notifications, f.feed)

	f.gatherings = NewGatheringService(f.gatheringRepo, f.participations, f.applications, likes, validate, f.feed)
	f.joins = NewParticipationService(f.gatheringRepo, f.participations, f.applications, notifier, f.feed, policy)
	f.reviews = NewReviewService(repository.NewReviewRepository(db), f.gatheringRepo, f.participations, notifier, f.feed, validate)
	f.community = NewCommunityService(repository.NewCommentRepository(db), likes, f.gatheringRepo, f.users, notifier, f.feed, validate)
	f.chat = NewChatService(repository.NewChatRepository(db), f.gatheringRepo, f.participations, f.feed, validate)
	f.inbox = NewNotificationService(f.notifications)
	f.profiles = NewUserService(f.users, f.gatheringRepo, validate, nil)
	f.topics = NewFeedService(f.gatheringRepo, f.participations)

	for _, id := range []string{hostID, aliceID, bobID, carolID} {
		name := id[:len(id)-len("-sub")]
		require.NoError(t, f.users.Upsert(&entity.User{
			ID:          id,
			Name:        &name,
			MannerScore: entity.DefaultMannerScore,
			CreatedAt:   1,
			UpdatedAt:   1,
		}))
	}
	return f
}

func (f *fixture) createGathering(t *testing.T, capacity int) int64 {
	t.Helper()
	req := &CreateGatheringRequest{
		Title:    "Friday board games",
		Location: "Seongsu station exit 3",
		MeetAt:   time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339),
		Capacity: capacity,
		Category: "game",
	}
	resp, apierr := f.gatherings.CreateGathering(req, hostID)
	require.Nil(t, apierr)
	require.Empty(t, resp.Warnings)
	return resp.ID
}

func (f *fixture) count(t *testing.T, model any, gatheringID int64) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Where("gathering_id = ?", gatheringID).Count(&n).Error)
	return n
}

func (f *fixture) hasRow(t *testing.T, model any, gatheringID int64, userID string) bool {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Where("gathering_id = ? AND user_id = ?", gatheringID, userID).Count(&n).Error)
	return n > 0
}

func (f *fixture) unreadTypes(t *testing.T, userID string) []entity.NotificationType {
	t.Helper()
	notifications, err := f.notifications.FindUnread(userID, 50)
	require.NoError(t, err)
	types := make([]entity.NotificationType, len(notifications))
	for i, n := range notifications {
		types[i] = n.Type
	}
	return types
}
