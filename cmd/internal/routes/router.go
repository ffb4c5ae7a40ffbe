package routes

import (
	"net/http"
	"sync"
	"wemakedo/cmd/internal/utils"
	"wemakedo/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

type Handlers struct {
	Gatherings     *DefaultGatheringRoute
	Participations *DefaultParticipationRoute
	Reviews        *DefaultReviewRoute
	Community      *DefaultCommunityRoute
	Chat           *DefaultChatRoute
	Notifications  *DefaultNotificationRoute
	Users          *DefaultUserRoute
	Realtime       *DefaultRealtimeRoute
}

// PostLimiter throttles chat and comment posts per client IP. A non-positive
// limit disables throttling.
func PostLimiter(perSecond float64) echo.MiddlewareFunc {
	if perSecond <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}

	store := middleware.NewRateLimiterMemoryStore(rate.Limit(perSecond))
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		ErrorHandler: func(c echo.Context, _ error) error {
			return fail(c, apierror.NewSimple(http.StatusForbidden, "Client could not be identified"))
		},
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			return fail(c, apierror.TooManyRequestsError)
		},
	})
}

type ProfileProvisioner interface {
	EnsureProfile(identity *utils.TokenData) apierror.ErrorResponse
}

// ProvisionProfiles gives every verified caller a users row before the
// handler runs. Subjects already provisioned by this process are skipped.
// Invalid tokens pass through untouched; handlers reject them.
func ProvisionProfiles(p ProfileProvisioner) echo.MiddlewareFunc {
	var provisioned sync.Map

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, err := utils.ParseTokenDataCtx(c)
			if err != nil || identity == nil {
				return next(c)
			}
			if _, ok := provisioned.Load(identity.Sub); ok {
				return next(c)
			}

			if apierr := p.EnsureProfile(identity); apierr != nil {
				return fail(c, apierr)
			}
			provisioned.Store(identity.Sub, struct{}{})
			return next(c)
		}
	}
}

func Register(e *echo.Echo, h *Handlers, limiter echo.MiddlewareFunc) {
	api := e.Group("/api", ProvisionProfiles(h.Users.UserService))

	// Gatherings
	api.GET("/gatherings", h.Gatherings.ListGatherings)
	api.POST("/gatherings", h.Gatherings.CreateGathering)
	api.GET("/gatherings/lightning", h.Gatherings.ListLightning)
	api.GET("/gatherings/lunch", h.Gatherings.ListLunch)
	api.GET("/gatherings/:id", h.Gatherings.GetGathering)
	api.PATCH("/gatherings/:id", h.Gatherings.UpdateGathering)
	api.DELETE("/gatherings/:id", h.Gatherings.DeleteGathering)
	api.GET("/icebreaker", h.Gatherings.GetIceBreaker)

	// Joining and applications
	api.POST("/gatherings/:id/join", h.Participations.Join)
	api.DELETE("/gatherings/:id/application", h.Participations.CancelApplication)
	api.GET("/gatherings/:id/applications", h.Participations.ListApplications)
	api.POST("/gatherings/:id/applications/:userId/approve", h.Participations.ApproveApplication)
	api.POST("/gatherings/:id/applications/:userId/reject", h.Participations.RejectApplication)

	// Reviews
	api.POST("/gatherings/:id/reviews", h.Reviews.SubmitReview)
	api.GET("/gatherings/:id/reviews/mine", h.Reviews.ListMyReviews)

	// Comments and likes
	api.POST("/gatherings/:id/comments", h.Community.AddComment, limiter)
	api.DELETE("/comments/:commentId", h.Community.DeleteComment)
	api.POST("/gatherings/:id/like", h.Community.ToggleLike)

	// Chat
	api.GET("/gatherings/:id/messages", h.Chat.ListMessages)
	api.POST("/gatherings/:id/messages", h.Chat.SendMessage, limiter)

	// Notifications
	api.GET("/notifications", h.Notifications.ListUnread)
	api.POST("/notifications/read", h.Notifications.MarkAllAsRead)
	api.POST("/notifications/:id/read", h.Notifications.MarkAsRead)

	// Auth and users
	api.GET("/auth/login", h.Users.Login)
	api.GET("/auth/callback", h.Users.Callback)
	api.POST("/auth/signout", h.Users.SignOut)
	api.GET("/mypage", h.Users.GetMyPage)
	api.PUT("/users/@me", h.Users.UpdateProfile)
	api.GET("/users/:id", h.Users.GetUser)

	// Change feed
	api.GET("/realtime", h.Realtime.Subscribe)
}
