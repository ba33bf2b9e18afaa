package memory

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/mention-me/AISlackBot/internal/repository/contract"
	"github.com/mention-me/AISlackBot/pkg/store"
)

// Key prefixes keep the three state namespaces from colliding in the shared
// cache.
const (
	threadKeyPrefix      = "THREAD_"
	acquisitionKeyPrefix = "ACQUISITION_"
	improveKeyPrefix     = "IMPROVE_ANSWER_ACQUISITION_"
)

// StateRepository keeps conversation state in process memory with a
// configurable TTL.
type StateRepository struct {
	cache *cache.Cache
}

func NewStateRepository(ttl time.Duration) contract.StateRepository {
	// Purge expired items at a fraction of the TTL so abandoned
	// conversations are reclaimed promptly.
	return &StateRepository{
		cache: cache.New(ttl, ttl/6),
	}
}

func (r *StateRepository) SaveDialogue(_ context.Context, dialogue store.DialogueContext) error {
	r.cache.Set(threadKeyPrefix+dialogue.Conversation(), dialogue, cache.DefaultExpiration)
	return nil
}

func (r *StateRepository) GetDialogue(_ context.Context, conversationID string) (store.DialogueContext, bool, error) {
	if x, found := r.cache.Get(threadKeyPrefix + conversationID); found {
		return x.(store.DialogueContext), true, nil
	}
	return nil, false, nil
}

func (r *StateRepository) DeleteDialogue(_ context.Context, conversationID string) error {
	r.cache.Delete(threadKeyPrefix + conversationID)
	return nil
}

func (r *StateRepository) SaveAcquisition(_ context.Context, acquisition *store.AnswerAcquisition) error {
	r.cache.Set(acquisitionKeyPrefix+acquisition.ID, acquisition, cache.DefaultExpiration)
	return nil
}

func (r *StateRepository) GetAcquisition(_ context.Context, id string) (*store.AnswerAcquisition, bool, error) {
	if x, found := r.cache.Get(acquisitionKeyPrefix + id); found {
		return x.(*store.AnswerAcquisition), true, nil
	}
	return nil, false, nil
}

func (r *StateRepository) DeleteAcquisition(_ context.Context, id string) error {
	r.cache.Delete(acquisitionKeyPrefix + id)
	return nil
}

func (r *StateRepository) SaveImproveAcquisition(_ context.Context, acquisition *store.ImproveAnswerAcquisition) error {
	r.cache.Set(improveKeyPrefix+acquisition.ID, acquisition, cache.DefaultExpiration)
	return nil
}

func (r *StateRepository) GetImproveAcquisition(_ context.Context, id string) (*store.ImproveAnswerAcquisition, bool, error) {
	if x, found := r.cache.Get(improveKeyPrefix + id); found {
		return x.(*store.ImproveAnswerAcquisition), true, nil
	}
	return nil, false, nil
}

func (r *StateRepository) DeleteImproveAcquisition(_ context.Context, id string) error {
	r.cache.Delete(improveKeyPrefix + id)
	return nil
}
