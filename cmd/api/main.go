package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"wemakedo/cmd/internal/config"
	"wemakedo/cmd/internal/domain/database"
	"wemakedo/cmd/internal/domain/database/repository"
	cognitoclient "wemakedo/cmd/internal/integration/aws/cognito"
	"wemakedo/cmd/internal/metrics"
	"wemakedo/cmd/internal/realtime"
	"wemakedo/cmd/internal/routes"
	"wemakedo/cmd/internal/service"
	"wemakedo/cmd/internal/utils"
	"wemakedo/cmd/internal/utils/validators"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load configuration: ", err)
	}
	log.SetLevel(cfg.Level())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	validate := validator.New()
	validators.Register(validate)

	db, err := database.Init(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatal("failed to initialize database: ", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if err := metrics.Register(registry); err != nil {
		log.Fatal("failed to register metrics: ", err)
	}

	// Change feed: in-process hub, relayed through Redis when configured
	hub := realtime.NewHub()
	hub.OnDrop = func(realtime.Event) { metrics.DroppedEvent() }

	var feed realtime.Publisher = hub
	if cfg.RedisURL != "" {
		broker := realtime.NewRedisBroker(cfg.RedisURL, hub)
		if err := broker.Ping(ctx); err != nil {
			log.Fatal("failed to reach redis: ", err)
		}
		defer broker.Close()

		go func() {
			if err := broker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Errorf("realtime relay stopped: %v", err)
			}
		}()
		feed = broker
	}

	// Identity: Cognito in production, a shared HMAC secret in development
	var cogClient cognitoclient.CognitoInterface
	keyfunc := utils.NewHMACKeyfunc(cfg.AuthTokenSecret)
	issuer := ""
	if cfg.CognitoEnabled() {
		client, err := cognitoclient.InitCognitoClient(ctx, cognitoclient.Settings{
			Region:       cfg.CognitoRegion,
			ClientID:     cfg.CognitoClientID,
			ClientSecret: cfg.CognitoClientSecret,
			Domain:       cfg.CognitoDomain,
			RedirectURL:  cfg.CognitoRedirectURL,
		})
		if err != nil {
			log.Fatal("failed to initialize cognito client: ", err)
		}
		cogClient = client

		issuer = cfg.CognitoIssuer()
		keyfunc, err = cognitoclient.NewJWKSKeyfunc(ctx, issuer)
		if err != nil {
			log.Fatal("failed to load cognito signing keys: ", err)
		}
	} else {
		log.Warn("cognito is not configured, accepting HMAC-signed development tokens")
	}

	// Getting repositories
	userRepo := repository.NewUserRepository(db)
	gatheringRepo := repository.NewGatheringRepository(db)
	participationRepo := repository.NewParticipationRepository(db)
	applicationRepo := repository.NewApplicationRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	chatRepo := repository.NewChatRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// Getting services
	notifier := service.NewNotifier(notificationRepo, feed)
	gatheringService := service.NewGatheringService(gatheringRepo, participationRepo, applicationRepo, likeRepo, validate, feed)
	participationService := service.NewParticipationService(gatheringRepo, participationRepo, applicationRepo, notifier, feed, cfg.JoinPolicy)
	reviewService := service.NewReviewService(reviewRepo, gatheringRepo, participationRepo, notifier, feed, validate)
	communityService := service.NewCommunityService(commentRepo, likeRepo, gatheringRepo, userRepo, notifier, feed, validate)
	chatService := service.NewChatService(chatRepo, gatheringRepo, participationRepo, feed, validate)
	notificationService := service.NewNotificationService(notificationRepo)
	userService := service.NewUserService(userRepo, gatheringRepo, validate, cogClient)
	feedService := service.NewFeedService(gatheringRepo, participationRepo)

	// Getting routes
	handlers := &routes.Handlers{
		Gatherings:     routes.NewGatheringDefault(gatheringService),
		Participations: routes.NewParticipationDefault(participationService),
		Reviews:        routes.NewReviewDefault(reviewService),
		Community:      routes.NewCommunityDefault(communityService),
		Chat:           routes.NewChatDefault(chatService),
		Notifications:  routes.NewNotificationDefault(notificationService),
		Users:          routes.NewUserDefault(userService),
		Realtime:       routes.NewRealtimeDefault(feedService, hub, cfg.CORSOrigins),
	}

	e := echo.New()
	e.HideBanner = true
	e.Logger.SetLevel(cfg.Level())
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowCredentials: true,
	}))
	e.Use(utils.IdentityMiddleware(keyfunc, issuer))

	routes.Register(e, handlers, routes.PostLimiter(cfg.ChatRateLimit))
	e.GET("/metrics", metrics.Handler(registry))

	log.Infof("join policy: %s", cfg.JoinPolicy)
	go func() {
		if err := e.Start(cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.Logger.Fatal(err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Errorf("shutdown: %v", err)
	}
}
