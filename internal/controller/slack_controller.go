package controller

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"

	"github.com/mention-me/AISlackBot/internal/pkg/logger"
	"github.com/mention-me/AISlackBot/internal/service"
	"github.com/mention-me/AISlackBot/pkg/chat"
	"github.com/mention-me/AISlackBot/pkg/store"
)

type ISlackController interface {
	RegisterRoutes(r fiber.Router)
	Events(ctx *fiber.Ctx) error
	Interactions(ctx *fiber.Ctx) error
}

type slackController struct {
	dialogue      service.IDialogueService
	feedback      service.IFeedbackService
	signingSecret string
	logger        logger.ILogger
}

func NewSlackController(
	dialogue service.IDialogueService,
	feedback service.IFeedbackService,
	signingSecret string,
	log logger.ILogger,
) ISlackController {
	return &slackController{
		dialogue:      dialogue,
		feedback:      feedback,
		signingSecret: signingSecret,
		logger:        log,
	}
}

func (c *slackController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/slack")
	h.Post("/events", c.Events)
	h.Post("/interactions", c.Interactions)
}

// Events receives Slack Events API webhooks. Slack expects a fast 200, so
// message handling is dispatched off the request path; at-least-once
// delivery and per-conversation ordering are the transport's promise.
func (c *slackController) Events(ctx *fiber.Ctx) error {
	body := ctx.Body()
	if err := c.verifySignature(ctx, body); err != nil {
		return ctx.SendStatus(fiber.StatusUnauthorized)
	}

	event, err := slackevents.ParseEvent(json.RawMessage(body), slackevents.OptionNoVerifyToken())
	if err != nil {
		c.logger.Warn("controller", "Unparseable event payload", map[string]interface{}{
			"error": err.Error(),
		})
		return ctx.SendStatus(fiber.StatusBadRequest)
	}

	switch event.Type {
	case slackevents.URLVerification:
		var challenge slackevents.ChallengeResponse
		if err := json.Unmarshal(body, &challenge); err != nil {
			return ctx.SendStatus(fiber.StatusBadRequest)
		}
		return ctx.SendString(challenge.Challenge)

	case slackevents.CallbackEvent:
		if msg, ok := event.InnerEvent.Data.(*slackevents.MessageEvent); ok {
			c.dispatchMessage(msg)
		}
	}

	return ctx.SendStatus(fiber.StatusOK)
}

func (c *slackController) dispatchMessage(msg *slackevents.MessageEvent) {
	// Don't reply to itself, and drop events with nothing to read.
	if msg.SubType == "bot_message" || msg.BotID != "" || msg.Text == "" {
		return
	}

	inbound := chat.InboundMessage{
		Text:            msg.Text,
		Channel:         msg.Channel,
		User:            msg.User,
		Timestamp:       msg.TimeStamp,
		ThreadTimestamp: msg.ThreadTimeStamp,
		Subtype:         msg.SubType,
	}

	go func() {
		if err := c.dialogue.HandleMessage(context.Background(), inbound); err != nil {
			c.logger.Error("controller", "Message handling failed", map[string]interface{}{
				"ts":    inbound.Timestamp,
				"error": err.Error(),
			})
		}
	}()
}

// Interactions receives button clicks from the feedback attachments.
func (c *slackController) Interactions(ctx *fiber.Ctx) error {
	if err := c.verifySignature(ctx, ctx.Body()); err != nil {
		return ctx.SendStatus(fiber.StatusUnauthorized)
	}

	payload := ctx.FormValue("payload")
	if payload == "" {
		return ctx.SendStatus(fiber.StatusBadRequest)
	}

	var callback slack.InteractionCallback
	if err := json.Unmarshal([]byte(payload), &callback); err != nil {
		c.logger.Warn("controller", "Unparseable interaction payload", map[string]interface{}{
			"error": err.Error(),
		})
		return ctx.SendStatus(fiber.StatusBadRequest)
	}

	if callback.CallbackID == chat.FeedbackCallbackID {
		c.dispatchFeedback(callback)
	}

	// Replying with the original text replaces the message, which strips
	// the buttons so the same guess cannot be voted on twice.
	return ctx.JSON(fiber.Map{"text": callback.OriginalMessage.Text})
}

func (c *slackController) dispatchFeedback(callback slack.InteractionCallback) {
	actions := callback.ActionCallback.AttachmentActions
	if len(actions) == 0 {
		return
	}

	action := store.FeedbackAction(actions[0].Name)
	threadID := callback.OriginalMessage.ThreadTimestamp
	if !action.Valid() || threadID == "" {
		return
	}

	userID := callback.User.ID
	go func() {
		if err := c.feedback.Process(context.Background(), action, threadID, userID); err != nil {
			c.logger.Error("controller", "Feedback handling failed", map[string]interface{}{
				"thread": threadID,
				"action": string(action),
				"error":  err.Error(),
			})
		}
	}()
}

func (c *slackController) verifySignature(ctx *fiber.Ctx, body []byte) error {
	header := http.Header{}
	for key, values := range ctx.GetReqHeaders() {
		for _, value := range values {
			header.Add(key, value)
		}
	}

	verifier, err := slack.NewSecretsVerifier(header, c.signingSecret)
	if err != nil {
		return err
	}
	if _, err := verifier.Write(body); err != nil {
		return err
	}
	return verifier.Ensure()
}
