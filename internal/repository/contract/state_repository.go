package contract

import (
	"context"

	"github.com/mention-me/AISlackBot/pkg/store"
)

// StateRepository is the ephemeral store for in-flight conversation state.
// It holds three independent namespaces - dialogue contexts, new-answer
// acquisitions and improve-answer acquisitions - keyed by opaque ids.
// Lookups on an absent key return found=false rather than an error, and
// entries expire after the configured TTL so abandoned conversations do not
// accumulate unboundedly.
type StateRepository interface {
	SaveDialogue(ctx context.Context, dialogue store.DialogueContext) error
	GetDialogue(ctx context.Context, conversationID string) (store.DialogueContext, bool, error)
	DeleteDialogue(ctx context.Context, conversationID string) error

	SaveAcquisition(ctx context.Context, acquisition *store.AnswerAcquisition) error
	GetAcquisition(ctx context.Context, id string) (*store.AnswerAcquisition, bool, error)
	DeleteAcquisition(ctx context.Context, id string) error

	SaveImproveAcquisition(ctx context.Context, acquisition *store.ImproveAnswerAcquisition) error
	GetImproveAcquisition(ctx context.Context, id string) (*store.ImproveAnswerAcquisition, bool, error)
	DeleteImproveAcquisition(ctx context.Context, id string) error
}
