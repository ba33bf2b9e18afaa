package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/mention-me/AISlackBot/internal/repository/contract"
	"github.com/mention-me/AISlackBot/pkg/store"
)

const (
	threadKeyPrefix      = "THREAD_"
	acquisitionKeyPrefix = "ACQUISITION_"
	improveKeyPrefix     = "IMPROVE_ANSWER_ACQUISITION_"
)

// Dialogue contexts are a closed union, so they travel through redis inside
// an envelope carrying a kind tag.
const (
	kindPending = "PENDING"
	kindGuessed = "GUESSED"
)

type dialogueEnvelope struct {
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// StateRepository keeps conversation state in redis, for deployments where
// the bot runs more than one replica behind the webhook endpoint.
type StateRepository struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewStateRepository(client *goredis.Client, ttl time.Duration) contract.StateRepository {
	return &StateRepository{
		client: client,
		ttl:    ttl,
	}
}

func (r *StateRepository) SaveDialogue(ctx context.Context, dialogue store.DialogueContext) error {
	var kind string
	switch dialogue.(type) {
	case *store.PendingContext:
		kind = kindPending
	case *store.GuessedContext:
		kind = kindGuessed
	default:
		return fmt.Errorf("unknown dialogue context type %T", dialogue)
	}

	payload, err := json.Marshal(dialogue)
	if err != nil {
		return err
	}
	envelope, err := json.Marshal(dialogueEnvelope{Kind: kind, Payload: payload})
	if err != nil {
		return err
	}
	return r.client.Set(ctx, threadKeyPrefix+dialogue.Conversation(), envelope, r.ttl).Err()
}

func (r *StateRepository) GetDialogue(ctx context.Context, conversationID string) (store.DialogueContext, bool, error) {
	data, err := r.client.Get(ctx, threadKeyPrefix+conversationID).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var envelope dialogueEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, false, err
	}

	switch envelope.Kind {
	case kindPending:
		var pending store.PendingContext
		if err := json.Unmarshal(envelope.Payload, &pending); err != nil {
			return nil, false, err
		}
		return &pending, true, nil
	case kindGuessed:
		var guessed store.GuessedContext
		if err := json.Unmarshal(envelope.Payload, &guessed); err != nil {
			return nil, false, err
		}
		return &guessed, true, nil
	default:
		return nil, false, fmt.Errorf("unknown dialogue envelope kind %q", envelope.Kind)
	}
}

func (r *StateRepository) DeleteDialogue(ctx context.Context, conversationID string) error {
	return r.client.Del(ctx, threadKeyPrefix+conversationID).Err()
}

func (r *StateRepository) SaveAcquisition(ctx context.Context, acquisition *store.AnswerAcquisition) error {
	return r.setJSON(ctx, acquisitionKeyPrefix+acquisition.ID, acquisition)
}

func (r *StateRepository) GetAcquisition(ctx context.Context, id string) (*store.AnswerAcquisition, bool, error) {
	var acquisition store.AnswerAcquisition
	found, err := r.getJSON(ctx, acquisitionKeyPrefix+id, &acquisition)
	if !found || err != nil {
		return nil, false, err
	}
	return &acquisition, true, nil
}

func (r *StateRepository) DeleteAcquisition(ctx context.Context, id string) error {
	return r.client.Del(ctx, acquisitionKeyPrefix+id).Err()
}

func (r *StateRepository) SaveImproveAcquisition(ctx context.Context, acquisition *store.ImproveAnswerAcquisition) error {
	return r.setJSON(ctx, improveKeyPrefix+acquisition.ID, acquisition)
}

func (r *StateRepository) GetImproveAcquisition(ctx context.Context, id string) (*store.ImproveAnswerAcquisition, bool, error) {
	var acquisition store.ImproveAnswerAcquisition
	found, err := r.getJSON(ctx, improveKeyPrefix+id, &acquisition)
	if !found || err != nil {
		return nil, false, err
	}
	return &acquisition, true, nil
}

func (r *StateRepository) DeleteImproveAcquisition(ctx context.Context, id string) error {
	return r.client.Del(ctx, improveKeyPrefix+id).Err()
}

func (r *StateRepository) setJSON(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, r.ttl).Err()
}

func (r *StateRepository) getJSON(ctx context.Context, key string, out interface{}) (bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(data, out)
}
