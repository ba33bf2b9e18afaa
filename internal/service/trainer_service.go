package service

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/mention-me/AISlackBot/internal/entity"
	"github.com/mention-me/AISlackBot/internal/pkg/logger"
	"github.com/mention-me/AISlackBot/internal/repository/contract"
	"github.com/mention-me/AISlackBot/pkg/classifier"
	"github.com/mention-me/AISlackBot/pkg/events"
	"github.com/mention-me/AISlackBot/pkg/nats"
)

// ITrainerService rebuilds the classifier from the corpus. It consumes
// retrain requests from the event bus and swaps the new model in atomically;
// resolutions keep running against the old model until the swap.
type ITrainerService interface {
	Consume(ctx context.Context) error

	// Rebuild retrains synchronously. Used at startup and by the consumer
	// loop.
	Rebuild(ctx context.Context) error
}

type trainerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	qa        contract.QARepository
	models    *classifier.Manager
	ops       *nats.Publisher
	logger    logger.ILogger
}

func NewTrainerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	qa contract.QARepository,
	models *classifier.Manager,
	ops *nats.Publisher,
	log logger.ILogger,
) ITrainerService {
	return &trainerService{
		pubSub:    pubSub,
		topicName: topicName,
		qa:        qa,
		models:    models,
		ops:       ops,
		logger:    log,
	}
}

func (ts *trainerService) Consume(ctx context.Context) error {
	messages, err := ts.pubSub.Subscribe(ctx, ts.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			ts.processMessage(ctx, msg)
		}
	}()

	return nil
}

// processMessage handles one retrain request. Requests carry no payload;
// coalescing duplicates is unnecessary because rebuilds already run one at a
// time through this loop.
func (ts *trainerService) processMessage(ctx context.Context, msg *message.Message) {
	if err := ts.Rebuild(ctx); err != nil {
		ts.logger.Error("trainer", "Retrain failed", map[string]interface{}{
			"error": err.Error(),
		})
		// Ack anyway: the next corpus mutation publishes a fresh request,
		// and replaying a failed rebuild against the same corpus would fail
		// the same way.
	}
	msg.Ack()
}

func (ts *trainerService) Rebuild(ctx context.Context) error {
	records, err := ts.qa.All(ctx)
	if err != nil {
		return err
	}

	corpus := make(map[string]*entity.QuestionWithAnswer, len(records))
	for _, record := range records {
		corpus[record.Label] = record
	}

	model := classifier.Train(corpus)
	if model == nil {
		ts.logger.Info("trainer", "Corpus is empty, classifier not trained", nil)
		return nil
	}

	if err := model.Save(ts.models.Path()); err != nil {
		// A stale file on disk only affects the next restart; the fresh
		// model still serves this process.
		ts.logger.Error("trainer", "Failed to persist classifier", map[string]interface{}{
			"path":  ts.models.Path(),
			"error": err.Error(),
		})
	}

	ts.models.Swap(model)
	ts.logger.Info("trainer", "Classifier retrained", map[string]interface{}{
		"records": len(records),
	})

	if ts.ops != nil {
		if err := ts.ops.Publish(ctx, events.NewClassifierRetrained(len(records))); err != nil {
			ts.logger.Warn("trainer", "Failed to publish retrain event", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
	return nil
}
