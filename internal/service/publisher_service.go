package service

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// IRetrainPublisher requests classifier retrains. Requests go through the
// event bus so serving latency is decoupled from training cost; the trainer
// consumes them one at a time, so at most one rebuild is in flight.
type IRetrainPublisher interface {
	RequestRetrain(ctx context.Context) error
}

type retrainPublisher struct {
	topicName string
	pubSub    *gochannel.GoChannel
}

func NewRetrainPublisher(topicName string, pubSub *gochannel.GoChannel) IRetrainPublisher {
	return &retrainPublisher{
		topicName: topicName,
		pubSub:    pubSub,
	}
}

func (ps *retrainPublisher) RequestRetrain(_ context.Context) error {
	msg := message.NewMessage(watermill.NewUUID(), nil)
	return ps.pubSub.Publish(ps.topicName, msg)
}
