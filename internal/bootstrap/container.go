package bootstrap

import (
	"context"
	"log"

	"portfolio-notes-be/internal/config"
	"portfolio-notes-be/internal/controller"
	"portfolio-notes-be/internal/pkg/logger"
	"portfolio-notes-be/internal/pkg/mailer"
	"portfolio-notes-be/internal/repository/session"
	"portfolio-notes-be/internal/repository/unitofwork"
	"portfolio-notes-be/internal/service"

	pktNats "portfolio-notes-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	NoteController      controller.INoteController
	PortfolioController controller.IPortfolioController
	AuthController      controller.IAuthController
	OAuthController     controller.IOAuthController
	UserController      controller.IUserController

	// Background services (exposed for main.go to run)
	ActivityService service.IActivityService

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	// 2. Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	// NATS is optional: a nil publisher disables external fan-out only.
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Redis backs the OAuth state store; fall back to in-memory when absent.
	var stateStore session.StateStore
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v. Using in-memory state store", err)
		stateStore = session.NewMemoryStateStore()
	} else {
		stateStore = session.NewRedisStateStore(rdb)
	}

	// 3. Services
	publisherService := service.NewPublisherService(cfg.Events.NoteTopic, pubSub)
	activityService := service.NewActivityService(
		pubSub,
		cfg.Events.NoteTopic,
		uowFactory,
		sysLogger,
	)

	noteService := service.NewNoteService(
		uowFactory,
		publisherService,
		natsPub,
		sysLogger,
	)

	authService := service.NewAuthService(uowFactory, emailService)
	oauthService := service.NewOAuthService(uowFactory, stateStore, sysLogger)
	userService := service.NewUserService(uowFactory)

	// 4. Controllers
	return &Container{
		NoteController:      controller.NewNoteController(noteService),
		PortfolioController: controller.NewPortfolioController(noteService),
		AuthController:      controller.NewAuthController(authService),
		OAuthController:     controller.NewOAuthController(oauthService),
		UserController:      controller.NewUserController(userService),

		ActivityService: activityService,

		Logger: sysLogger,
	}
}
