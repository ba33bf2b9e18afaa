package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mention-me/AISlackBot/internal/entity"
	"github.com/mention-me/AISlackBot/internal/pkg/logger"
	"github.com/mention-me/AISlackBot/internal/repository/contract"
	"github.com/mention-me/AISlackBot/pkg/chat"
	"github.com/mention-me/AISlackBot/pkg/events"
	"github.com/mention-me/AISlackBot/pkg/nats"
	"github.com/mention-me/AISlackBot/pkg/store"
)

const (
	apologyMessage = "I'm sorry, my responses are limited, you must ask the right questions"
	thanksMessage  = "Thanks for making me smarter!"
)

// IAcquisitionService drives the two crowd-sourcing flows: getting the
// channel to answer a question the classifier could not, and getting it to
// improve an answer a user flagged as outdated. Each flow is correlated with
// its threaded reply through an opaque acquisition code in a broadcast
// footer.
type IAcquisitionService interface {
	StartNewAnswer(ctx context.Context, question, conversationID string) error
	CompleteNewAnswer(ctx context.Context, answerText string, acquisition *store.AnswerAcquisition, conversationID string) error
	StartImprove(ctx context.Context, answerToImprove *entity.QuestionWithAnswer, label, requestingUser string) error
	CompleteImprove(ctx context.Context, newAnswerText string, acquisition *store.ImproveAnswerAcquisition, conversationID string) error
}

type acquisitionService struct {
	states    contract.StateRepository
	qa        contract.QARepository
	transport chat.Transport
	retrain   IRetrainPublisher
	ops       *nats.Publisher
	logger    logger.ILogger
}

func NewAcquisitionService(
	states contract.StateRepository,
	qa contract.QARepository,
	transport chat.Transport,
	retrain IRetrainPublisher,
	ops *nats.Publisher,
	log logger.ILogger,
) IAcquisitionService {
	return &acquisitionService{
		states:    states,
		qa:        qa,
		transport: transport,
		retrain:   retrain,
		ops:       ops,
		logger:    log,
	}
}

// StartNewAnswer apologises in the asking thread, then broadcasts the
// question to the channel tagged with a fresh acquisition code. From here
// the acquisition owns the conversation's continuation, so the dialogue
// context is dropped.
func (s *acquisitionService) StartNewAnswer(ctx context.Context, question, conversationID string) error {
	askingUser := ""
	thread, err := s.transport.FetchThread(ctx, conversationID)
	if err != nil {
		s.logger.Error("acquisition", "Failed to fetch originating thread", map[string]interface{}{
			"conversation": conversationID,
			"error":        err.Error(),
		})
	} else if len(thread) > 0 {
		askingUser = thread[0].User
	}

	if err := s.transport.SendMessage(ctx, apologyMessage, conversationID); err != nil {
		s.logger.Error("acquisition", "Failed to send apology", map[string]interface{}{
			"conversation": conversationID,
			"error":        err.Error(),
		})
	}

	acquisitionID := uuid.NewString()

	if err := s.states.DeleteDialogue(ctx, conversationID); err != nil {
		return err
	}
	if err := s.states.SaveAcquisition(ctx, &store.AnswerAcquisition{
		ID:       acquisitionID,
		Question: question,
	}); err != nil {
		return err
	}

	broadcast := fmt.Sprintf("<@%s> asked this question:\n>>>```%s```\n*Please reply to this message as a thread with your answer if you know it!*",
		askingUser, question)
	if err := s.transport.SendMessageWithAttachments(ctx, broadcast,
		[]chat.Attachment{chat.AcquisitionFooter(acquisitionID)}, ""); err != nil {
		return err
	}

	s.publishOps(ctx, events.NewAcquisitionStarted(acquisitionID, "new_answer"))
	return nil
}

// CompleteNewAnswer folds a community answer into the corpus as a fresh
// record labelled by its content, with the original question (case-folded)
// as its first known phrasing.
func (s *acquisitionService) CompleteNewAnswer(ctx context.Context, answerText string, acquisition *store.AnswerAcquisition, conversationID string) error {
	record := entity.NewQuestionWithAnswer(answerText, strings.ToLower(acquisition.Question))
	if err := s.qa.Put(ctx, record); err != nil {
		return err
	}

	if err := s.states.DeleteDialogue(ctx, conversationID); err != nil {
		return err
	}
	if err := s.states.DeleteAcquisition(ctx, acquisition.ID); err != nil {
		return err
	}

	if err := s.transport.SendMessage(ctx, thanksMessage, conversationID); err != nil {
		s.logger.Error("acquisition", "Failed to send acknowledgment", map[string]interface{}{
			"conversation": conversationID,
			"error":        err.Error(),
		})
	}

	s.publishOps(ctx, events.NewAcquisitionCompleted(acquisition.ID, record.Label))
	s.publishOps(ctx, events.NewCorpusUpdated(record.Label))
	return s.retrain.RequestRetrain(ctx)
}

// StartImprove broadcasts a request to improve a flagged answer. The
// flagging conversation's dialogue context is left untouched; the
// improvement happens out of band in the broadcast's own thread.
func (s *acquisitionService) StartImprove(ctx context.Context, answerToImprove *entity.QuestionWithAnswer, label, requestingUser string) error {
	acquisitionID := uuid.NewString()

	if err := s.states.SaveImproveAcquisition(ctx, &store.ImproveAnswerAcquisition{
		ID:              acquisitionID,
		Label:           label,
		AnswerToImprove: answerToImprove,
	}); err != nil {
		return err
	}

	broadcast := fmt.Sprintf("<@%s> said this answer could be improved:\n>>>```%s```\n*Please reply to this message as a thread with the improved answer if you can!*",
		requestingUser, answerToImprove.Answer)
	if err := s.transport.SendMessageWithAttachments(ctx, broadcast,
		[]chat.Attachment{chat.AcquisitionFooter(acquisitionID)}, ""); err != nil {
		return err
	}

	s.publishOps(ctx, events.NewAcquisitionStarted(acquisitionID, "improve_answer"))
	return nil
}

// CompleteImprove overwrites the stored answer under the acquisition's
// label, keeping the label and every previously learned phrasing.
func (s *acquisitionService) CompleteImprove(ctx context.Context, newAnswerText string, acquisition *store.ImproveAnswerAcquisition, conversationID string) error {
	record, err := s.qa.Get(ctx, acquisition.Label)
	if err != nil {
		return err
	}
	if record == nil {
		// The record was removed while the acquisition was in flight.
		// Treated like any other missing state: drop silently.
		return s.states.DeleteImproveAcquisition(ctx, acquisition.ID)
	}

	record.ReplaceAnswer(newAnswerText)
	if err := s.qa.Put(ctx, record); err != nil {
		return err
	}

	if err := s.states.DeleteDialogue(ctx, conversationID); err != nil {
		return err
	}
	if err := s.states.DeleteImproveAcquisition(ctx, acquisition.ID); err != nil {
		return err
	}

	if err := s.transport.SendMessage(ctx, thanksMessage, conversationID); err != nil {
		s.logger.Error("acquisition", "Failed to send acknowledgment", map[string]interface{}{
			"conversation": conversationID,
			"error":        err.Error(),
		})
	}

	s.publishOps(ctx, events.NewAcquisitionCompleted(acquisition.ID, record.Label))
	s.publishOps(ctx, events.NewCorpusUpdated(record.Label))
	return s.retrain.RequestRetrain(ctx)
}

func (s *acquisitionService) publishOps(ctx context.Context, event events.Event) {
	if s.ops == nil {
		return
	}
	if err := s.ops.Publish(ctx, event); err != nil {
		s.logger.Warn("acquisition", "Failed to publish ops event", map[string]interface{}{
			"event": event.EventType(),
			"error": err.Error(),
		})
	}
}
