package store

import (
	"github.com/mention-me/AISlackBot/internal/entity"
	"github.com/mention-me/AISlackBot/pkg/classifier"
)

// FeedbackAction is a button a user can press under a presented answer.
type FeedbackAction string

const (
	GoodAnswer       FeedbackAction = "GOOD_ANSWER"
	WrongAnswer      FeedbackAction = "WRONG_ANSWER"
	AnswerHasChanged FeedbackAction = "ANSWER_HAS_CHANGED"
)

// Valid reports whether the action is one of the enumerated feedback
// values. Anything else in an interaction payload is ignored.
func (a FeedbackAction) Valid() bool {
	switch a {
	case GoodAnswer, WrongAnswer, AnswerHasChanged:
		return true
	}
	return false
}

// DialogueContext is the conversation-scoped state of a question moving
// through the bot. It is a closed union: a context is either Pending (the
// question arrived but no guess exists yet) or Guessed (an answer is on
// display with the remaining ranked candidates behind it). Callers branch
// with a type switch, so a Pending context cannot be read as if it carried
// a guess.
type DialogueContext interface {
	Conversation() string
	dialogueContext()
}

// PendingContext exists from the instant a question is received until a
// candidate is presented or the conversation is handed to acquisition.
type PendingContext struct {
	ConversationID string `json:"conversation_id"`
}

func (c *PendingContext) Conversation() string { return c.ConversationID }
func (c *PendingContext) dialogueContext()     {}

// GuessedContext tracks a presented guess. Candidates[0] is always the
// candidate currently on display; rejection pops it and promotes the next.
type GuessedContext struct {
	ConversationID string                     `json:"conversation_id"`
	Question       string                     `json:"question"`
	GuessedAnswer  *entity.QuestionWithAnswer `json:"guessed_answer"`
	Candidates     []classifier.Candidate     `json:"candidates"`
}

func (c *GuessedContext) Conversation() string { return c.ConversationID }
func (c *GuessedContext) dialogueContext()     {}

// AnswerAcquisition is an in-flight request to the channel for an answer the
// classifier could not provide.
type AnswerAcquisition struct {
	ID       string `json:"id"`
	Question string `json:"question"`
}

// ImproveAnswerAcquisition is an in-flight request to the channel to improve
// an answer that was flagged as outdated.
type ImproveAnswerAcquisition struct {
	ID              string                     `json:"id"`
	Label           string                     `json:"label"`
	AnswerToImprove *entity.QuestionWithAnswer `json:"answer_to_improve"`
}
