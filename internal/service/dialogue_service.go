package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/mention-me/AISlackBot/internal/pkg/logger"
	"github.com/mention-me/AISlackBot/internal/repository/contract"
	"github.com/mention-me/AISlackBot/pkg/chat"
	"github.com/mention-me/AISlackBot/pkg/store"
)

// forceAcquisitionMarker lets a user skip the classifier and send a question
// straight to the community.
const forceAcquisitionMarker = "***! "

// dumpCommand posts the whole corpus as a snippet, for eyeballing what the
// bot has learned.
const dumpCommand = "DUMP"

// IDialogueService is the entry point for inbound messages: it decides
// whether a message starts a new resolution, completes an outstanding
// acquisition, or is nothing the bot cares about.
type IDialogueService interface {
	HandleMessage(ctx context.Context, msg chat.InboundMessage) error
}

type dialogueService struct {
	states       contract.StateRepository
	qa           contract.QARepository
	transport    chat.Transport
	resolver     IResolverService
	feedback     IFeedbackService
	acquisitions IAcquisitionService
	channel      string
	logger       logger.ILogger
}

func NewDialogueService(
	states contract.StateRepository,
	qa contract.QARepository,
	transport chat.Transport,
	resolver IResolverService,
	feedback IFeedbackService,
	acquisitions IAcquisitionService,
	channel string,
	log logger.ILogger,
) IDialogueService {
	return &dialogueService{
		states:       states,
		qa:           qa,
		transport:    transport,
		resolver:     resolver,
		feedback:     feedback,
		acquisitions: acquisitions,
		channel:      channel,
		logger:       log,
	}
}

func (s *dialogueService) HandleMessage(ctx context.Context, msg chat.InboundMessage) error {
	if msg.Channel != s.channel {
		// Message in another channel than we're interested in. Bail out.
		return nil
	}

	s.logger.Debug("dialogue", "Received message", map[string]interface{}{
		"ts":   msg.Timestamp,
		"text": msg.Text,
	})

	if msg.Text == dumpCommand {
		return s.dumpCorpus(ctx)
	}

	isQuestion := strings.Contains(msg.Text, "?")

	if isQuestion && !msg.IsThreadReply() {
		return s.startResolution(ctx, msg)
	}

	if !msg.IsThreadReply() {
		// General chatter at channel level, nothing for the bot to do.
		return nil
	}

	return s.handleThreadReply(ctx, msg)
}

// startResolution runs a fresh question through the classifier, presenting
// the best guess when one clears the confidence threshold and falling back
// to community acquisition otherwise.
func (s *dialogueService) startResolution(ctx context.Context, msg chat.InboundMessage) error {
	conversationID := msg.Timestamp
	question := msg.Text

	// Track the conversation from the instant the question arrives, before
	// a guess exists.
	if err := s.states.SaveDialogue(ctx, &store.PendingContext{ConversationID: conversationID}); err != nil {
		return err
	}

	if forced := strings.Contains(question, forceAcquisitionMarker); forced || !s.resolver.Trained() {
		question = strings.Replace(question, forceAcquisitionMarker, "", 1)
		return s.acquisitions.StartNewAnswer(ctx, question, conversationID)
	}

	guess, candidates := s.resolver.Resolve(ctx, question)
	if guess == "" {
		return s.acquisitions.StartNewAnswer(ctx, question, conversationID)
	}

	record, err := s.qa.Get(ctx, guess)
	if err != nil {
		return err
	}
	if record == nil {
		s.logger.Error("dialogue", "Classifier guess has no stored record", map[string]interface{}{
			"label": guess,
		})
		return s.acquisitions.StartNewAnswer(ctx, question, conversationID)
	}
	record.Label = guess

	return s.feedback.PresentGuess(ctx, question, record, candidates, conversationID)
}

// handleThreadReply checks whether the reply belongs to an outstanding
// acquisition. A thread without a parseable acquisition code, or with a code
// no namespace knows, is ignored.
func (s *dialogueService) handleThreadReply(ctx context.Context, msg chat.InboundMessage) error {
	thread, err := s.transport.FetchThread(ctx, msg.ThreadTimestamp)
	if err != nil {
		s.logger.Error("dialogue", "Failed to fetch thread", map[string]interface{}{
			"thread": msg.ThreadTimestamp,
			"error":  err.Error(),
		})
		return err
	}

	code := chat.ExtractAcquisitionCode(thread)
	if code == "" {
		return nil
	}

	if acquisition, found, err := s.states.GetAcquisition(ctx, code); err != nil {
		return err
	} else if found {
		s.logger.Info("dialogue", "Completing answer acquisition", map[string]interface{}{
			"acquisition": code,
		})
		return s.acquisitions.CompleteNewAnswer(ctx, msg.Text, acquisition, msg.ThreadTimestamp)
	}

	if improve, found, err := s.states.GetImproveAcquisition(ctx, code); err != nil {
		return err
	} else if found {
		s.logger.Info("dialogue", "Completing improve-answer acquisition", map[string]interface{}{
			"acquisition": code,
		})
		return s.acquisitions.CompleteImprove(ctx, msg.Text, improve, msg.ThreadTimestamp)
	}

	// Expired, already completed, or a spoofed code: not applicable.
	return nil
}

func (s *dialogueService) dumpCorpus(ctx context.Context) error {
	records, err := s.qa.All(ctx)
	if err != nil {
		return err
	}

	byLabel := make(map[string]interface{}, len(records))
	for _, record := range records {
		byLabel[record.Label] = record
	}
	content, err := json.MarshalIndent(byLabel, "", "  ")
	if err != nil {
		return err
	}
	return s.transport.SendSnippet(ctx, string(content))
}
