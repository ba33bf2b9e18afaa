package contract

import (
	"context"

	"github.com/mention-me/AISlackBot/internal/entity"
)

// QARepository is the durable record store mapping a label to a stored
// question/answer record.
type QARepository interface {
	// Get fetches a record by label, case-insensitively. A missing record
	// returns (nil, nil), not an error.
	Get(ctx context.Context, label string) (*entity.QuestionWithAnswer, error)

	// Put inserts or replaces the record under its label.
	Put(ctx context.Context, qa *entity.QuestionWithAnswer) error

	// All returns every stored record; the training corpus.
	All(ctx context.Context) ([]*entity.QuestionWithAnswer, error)
}
