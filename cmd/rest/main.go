package main

import (
	"context"
	"log"

	"github.com/mention-me/AISlackBot/internal/bootstrap"
	"github.com/mention-me/AISlackBot/internal/config"
	"github.com/mention-me/AISlackBot/internal/model"
	"github.com/mention-me/AISlackBot/internal/server"
	"github.com/mention-me/AISlackBot/pkg/database"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}
	if err := gormDB.AutoMigrate(&model.QuestionWithAnswer{}); err != nil {
		log.Panicf("Unable to migrate corpus schema: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Start Background Services
	ctx := context.Background()

	// Train from the corpus when no persisted model was loaded, so a first
	// deploy against an existing corpus doesn't start in acquisition mode.
	if !container.ClassifierManager.Trained() {
		if err := container.TrainerService.Rebuild(ctx); err != nil {
			log.Printf("Initial training failed: %v", err)
		}
	}

	if err := container.TrainerService.Consume(ctx); err != nil {
		log.Printf("Background Trainer Error: %v", err)
	}

	// Pick up models written by an out-of-band trainer process.
	go func() {
		if err := container.ClassifierManager.Watch(ctx); err != nil && ctx.Err() == nil {
			log.Printf("Classifier watcher stopped: %v", err)
		}
	}()

	// 5. Initialize Server
	srv := server.New(cfg, container)

	// 6. Run Server
	log.Fatal(srv.Run())
}
