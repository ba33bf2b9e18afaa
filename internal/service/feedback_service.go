package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/mention-me/AISlackBot/internal/entity"
	"github.com/mention-me/AISlackBot/internal/pkg/logger"
	"github.com/mention-me/AISlackBot/internal/repository/contract"
	"github.com/mention-me/AISlackBot/pkg/chat"
	"github.com/mention-me/AISlackBot/pkg/classifier"
	"github.com/mention-me/AISlackBot/pkg/events"
	"github.com/mention-me/AISlackBot/pkg/nats"
	"github.com/mention-me/AISlackBot/pkg/store"
)

// IFeedbackService is the state machine over the feedback a user gives on a
// presented guess: accept it, reject it and cascade to the next candidate,
// or flag it as correct-but-stale.
type IFeedbackService interface {
	// PresentGuess sends the answer with feedback buttons and upgrades the
	// conversation's dialogue context to Guessed. candidates must be the
	// ranked list with the presented record's candidate at its head.
	PresentGuess(ctx context.Context, question string, guessed *entity.QuestionWithAnswer, candidates []classifier.Candidate, conversationID string) error

	// Process applies one feedback event to the conversation. Unknown
	// actions and missing or still-Pending contexts are silently ignored:
	// malformed or stale interaction payloads must not crash the
	// conversation.
	Process(ctx context.Context, action store.FeedbackAction, conversationID, userID string) error
}

// transition handles one (Guessed, action) pair.
type transition func(ctx context.Context, guessed *store.GuessedContext, userID string) error

type feedbackService struct {
	states       contract.StateRepository
	qa           contract.QARepository
	transport    chat.Transport
	acquisitions IAcquisitionService
	retrain      IRetrainPublisher
	ops          *nats.Publisher
	hardCutoff   float64
	logger       logger.ILogger

	// Explicit event -> transition table. The Guessed state is the only one
	// that accepts feedback, so the table is one-dimensional; anything not
	// in it is a no-op.
	transitions map[store.FeedbackAction]transition
}

func NewFeedbackService(
	states contract.StateRepository,
	qa contract.QARepository,
	transport chat.Transport,
	acquisitions IAcquisitionService,
	retrain IRetrainPublisher,
	ops *nats.Publisher,
	hardCutoff float64,
	log logger.ILogger,
) IFeedbackService {
	s := &feedbackService{
		states:       states,
		qa:           qa,
		transport:    transport,
		acquisitions: acquisitions,
		retrain:      retrain,
		ops:          ops,
		hardCutoff:   hardCutoff,
		logger:       log,
	}
	s.transitions = map[store.FeedbackAction]transition{
		store.GoodAnswer:       s.accepted,
		store.WrongAnswer:      s.rejected,
		store.AnswerHasChanged: s.flaggedStale,
	}
	return s
}

func (s *feedbackService) PresentGuess(ctx context.Context, question string, guessed *entity.QuestionWithAnswer, candidates []classifier.Candidate, conversationID string) error {
	if err := s.states.SaveDialogue(ctx, &store.GuessedContext{
		ConversationID: conversationID,
		Question:       question,
		GuessedAnswer:  guessed,
		Candidates:     candidates,
	}); err != nil {
		return err
	}

	confidence := 0.0
	if len(candidates) > 0 {
		confidence = candidates[0].Score
	}
	attachments := []chat.Attachment{
		chat.FeedbackButtons(string(store.GoodAnswer), string(store.WrongAnswer), string(store.AnswerHasChanged)),
		chat.Footer(fmt.Sprintf("Conf. %d%%", int(math.Round(confidence*100)))),
	}
	return s.transport.SendMessageWithAttachments(ctx, guessed.Answer, attachments, conversationID)
}

func (s *feedbackService) Process(ctx context.Context, action store.FeedbackAction, conversationID, userID string) error {
	handler, known := s.transitions[action]
	if !known {
		return nil
	}

	dialogue, found, err := s.states.GetDialogue(ctx, conversationID)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}

	switch d := dialogue.(type) {
	case *store.GuessedContext:
		return handler(ctx, d, userID)
	case *store.PendingContext:
		// Feedback raced ahead of the first presentation; nothing to apply.
		return nil
	default:
		return nil
	}
}

// accepted records the question as a known phrasing of the answer it
// matched, so the next retrain factors it in, then closes the conversation.
func (s *feedbackService) accepted(ctx context.Context, guessed *store.GuessedContext, _ string) error {
	question := strings.ToLower(guessed.Question)

	if !guessed.GuessedAnswer.HasPhrasing(question) && len(guessed.Candidates) > 0 {
		guessed.GuessedAnswer.AddPhrasing(question)
		guessed.GuessedAnswer.Label = guessed.Candidates[0].Label
		if err := s.qa.Put(ctx, guessed.GuessedAnswer); err != nil {
			return err
		}
		s.publishOps(ctx, events.NewCorpusUpdated(guessed.GuessedAnswer.Label))
	}

	if err := s.transport.SendMessage(ctx, "Thanks for letting me know!", guessed.ConversationID); err != nil {
		s.logger.Error("feedback", "Failed to send acknowledgment", map[string]interface{}{
			"conversation": guessed.ConversationID,
			"error":        err.Error(),
		})
	}
	if err := s.states.DeleteDialogue(ctx, guessed.ConversationID); err != nil {
		return err
	}

	// Retraining is triggered even when the phrasing was already known, so
	// a record edited out of band still gets picked up.
	return s.retrain.RequestRetrain(ctx)
}

// rejected pops the displayed candidate and either presents the next one or,
// when the list is exhausted or the next score is at or below the hard
// cut-off, hands the original question over to community acquisition.
func (s *feedbackService) rejected(ctx context.Context, guessed *store.GuessedContext, _ string) error {
	if guessed.GuessedAnswer.Label == "" {
		// An unlabeled ad-hoc answer has nothing to cascade from.
		return nil
	}

	remaining := removeCandidate(guessed.Candidates, guessed.GuessedAnswer.Label)

	if len(remaining) == 0 || remaining[0].Score <= s.hardCutoff {
		return s.acquisitions.StartNewAnswer(ctx, guessed.Question, guessed.ConversationID)
	}

	next, err := s.qa.Get(ctx, remaining[0].Label)
	if err != nil {
		return err
	}
	if next == nil {
		s.logger.Error("feedback", "Candidate label has no stored record", map[string]interface{}{
			"label": remaining[0].Label,
		})
		return s.acquisitions.StartNewAnswer(ctx, guessed.Question, guessed.ConversationID)
	}
	next.Label = remaining[0].Label

	return s.PresentGuess(ctx, guessed.Question, next, remaining, guessed.ConversationID)
}

// flaggedStale starts an improve-answer acquisition for the displayed
// answer. The dialogue context is deliberately left alone; the improvement
// runs in the broadcast's own thread.
func (s *feedbackService) flaggedStale(ctx context.Context, guessed *store.GuessedContext, userID string) error {
	label := guessed.GuessedAnswer.Label
	if len(guessed.Candidates) > 0 {
		label = guessed.Candidates[0].Label
	}
	return s.acquisitions.StartImprove(ctx, guessed.GuessedAnswer, label, userID)
}

func (s *feedbackService) publishOps(ctx context.Context, event events.Event) {
	if s.ops == nil {
		return
	}
	if err := s.ops.Publish(ctx, event); err != nil {
		s.logger.Warn("feedback", "Failed to publish ops event", map[string]interface{}{
			"event": event.EventType(),
			"error": err.Error(),
		})
	}
}

// removeCandidate drops every candidate carrying the label, preserving the
// order of the rest.
func removeCandidate(candidates []classifier.Candidate, label string) []classifier.Candidate {
	remaining := make([]classifier.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Label != label {
			remaining = append(remaining, c)
		}
	}
	return remaining
}
