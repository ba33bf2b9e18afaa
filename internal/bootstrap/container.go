package bootstrap

import (
	"context"
	"log"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/mention-me/AISlackBot/internal/config"
	"github.com/mention-me/AISlackBot/internal/controller"
	"github.com/mention-me/AISlackBot/internal/pkg/logger"
	"github.com/mention-me/AISlackBot/internal/repository/contract"
	"github.com/mention-me/AISlackBot/internal/repository/implementation"
	"github.com/mention-me/AISlackBot/internal/repository/memory"
	redisrepo "github.com/mention-me/AISlackBot/internal/repository/redis"
	"github.com/mention-me/AISlackBot/internal/service"
	"github.com/mention-me/AISlackBot/pkg/classifier"
	pktNats "github.com/mention-me/AISlackBot/pkg/nats"
	"github.com/mention-me/AISlackBot/pkg/slack"
)

type Container struct {
	// Controllers
	SlackController controller.ISlackController

	// Background services (exposed for main.go to run)
	TrainerService    service.ITrainerService
	ClassifierManager *classifier.Manager

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	qaRepo := implementation.NewQARepository(db)

	// 2. Ephemeral conversation state
	var stateRepo contract.StateRepository
	if cfg.Bot.StateBackend == "redis" {
		opt, err := goredis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &goredis.Options{
				Addr: cfg.App.RedisURL,
			}
		}
		rdb := goredis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
		stateRepo = redisrepo.NewStateRepository(rdb, cfg.Bot.StateTTL)
		log.Printf("[INFO] Using state backend: REDIS")
	} else {
		stateRepo = memory.NewStateRepository(cfg.Bot.StateTTL)
		log.Printf("[INFO] Using state backend: MEMORY")
	}

	// 3. Classifier
	models := classifier.NewManager(cfg.Bot.ClassifierPath, sysLogger)
	if err := models.LoadFromDisk(); err != nil {
		// Serving without a valid classifier is unsafe when one should
		// exist; refuse to start.
		log.Fatalf("[FATAL] %v", err)
	}

	// 4. Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// NATS ops events (best effort)
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// 5. Services
	retrainPublisher := service.NewRetrainPublisher(cfg.Bot.RetrainTopic, pubSub)
	trainerService := service.NewTrainerService(pubSub, cfg.Bot.RetrainTopic, qaRepo, models, natsPub, sysLogger)

	transport := slack.NewClient(cfg.Slack.AccessToken, cfg.Slack.Channel)

	resolverService := service.NewResolverService(models, cfg.Bot.ConfidenceThreshold)
	acquisitionService := service.NewAcquisitionService(stateRepo, qaRepo, transport, retrainPublisher, natsPub, sysLogger)
	feedbackService := service.NewFeedbackService(stateRepo, qaRepo, transport, acquisitionService, retrainPublisher, natsPub, cfg.Bot.HardCutoff, sysLogger)
	dialogueService := service.NewDialogueService(stateRepo, qaRepo, transport, resolverService, feedbackService, acquisitionService, cfg.Slack.Channel, sysLogger)

	// 6. Controllers
	return &Container{
		SlackController:   controller.NewSlackController(dialogueService, feedbackService, cfg.Slack.SigningSecret, sysLogger),
		TrainerService:    trainerService,
		ClassifierManager: models,
		Logger:            sysLogger,
	}
}
