// The trainer is an optional sibling process for deployments where training
// cost should not share a process with serving. It polls the corpus and
// rewrites the persisted classifier whenever the corpus changes; the serving
// process watches the file and hot-swaps the result.
package main

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"log"
	"time"

	"github.com/mention-me/AISlackBot/internal/config"
	"github.com/mention-me/AISlackBot/internal/entity"
	"github.com/mention-me/AISlackBot/internal/repository/implementation"
	"github.com/mention-me/AISlackBot/pkg/classifier"
	"github.com/mention-me/AISlackBot/pkg/database"
)

const pollInterval = 30 * time.Second

func main() {
	cfg := config.Load()

	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}
	qaRepo := implementation.NewQARepository(gormDB)

	log.Printf("Trainer watching corpus every %s", pollInterval)

	ctx := context.Background()
	var lastFingerprint [16]byte

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for ; ; <-ticker.C {
		records, err := qaRepo.All(ctx)
		if err != nil {
			log.Printf("Failed to read corpus: %v", err)
			continue
		}

		fingerprint := fingerprintCorpus(records)
		if fingerprint == lastFingerprint {
			continue
		}

		corpus := make(map[string]*entity.QuestionWithAnswer, len(records))
		for _, record := range records {
			corpus[record.Label] = record
		}

		log.Println("Training")
		model := classifier.Train(corpus)
		if model == nil {
			log.Println("Corpus is empty, nothing to train")
			lastFingerprint = fingerprint
			continue
		}

		if err := model.Save(cfg.Bot.ClassifierPath); err != nil {
			log.Printf("Failed to persist classifier: %v", err)
			continue
		}

		lastFingerprint = fingerprint
		log.Println("Trained")
	}
}

func fingerprintCorpus(records []*entity.QuestionWithAnswer) [16]byte {
	data, err := json.Marshal(records)
	if err != nil {
		return [16]byte{}
	}
	return md5.Sum(data)
}
