// Package slack implements the chat transport contract over the Slack Web
// API. All traffic is scoped to a single configured channel.
package slack

import (
	"context"

	"github.com/slack-go/slack"

	"github.com/mention-me/AISlackBot/pkg/chat"
)

// Client wraps a Slack Web API client bound to one channel.
type Client struct {
	api     *slack.Client
	channel string
}

// NewClient builds a transport for the given bot token and channel id.
func NewClient(token, channel string) *Client {
	return &Client{
		api:     slack.New(token),
		channel: channel,
	}
}

// Channel returns the channel id this client is scoped to.
func (c *Client) Channel() string {
	return c.channel
}

// SendMessage posts plain text, threaded when threadID is non-empty.
func (c *Client) SendMessage(ctx context.Context, text, threadID string) error {
	return c.SendMessageWithAttachments(ctx, text, nil, threadID)
}

// SendMessageWithAttachments posts text with attachments, threaded when
// threadID is non-empty.
func (c *Client) SendMessageWithAttachments(ctx context.Context, text string, attachments []chat.Attachment, threadID string) error {
	opts := []slack.MsgOption{
		slack.MsgOptionText(text, false),
	}
	if threadID != "" {
		opts = append(opts, slack.MsgOptionTS(threadID))
	}
	if len(attachments) > 0 {
		opts = append(opts, slack.MsgOptionAttachments(toSlackAttachments(attachments)...))
	}

	_, _, err := c.api.PostMessageContext(ctx, c.channel, opts...)
	return err
}

// SendSnippet uploads content as a text snippet to the channel.
func (c *Client) SendSnippet(ctx context.Context, content string) error {
	_, err := c.api.UploadFileV2Context(ctx, slack.UploadFileV2Parameters{
		Channel:  c.channel,
		Content:  content,
		FileSize: len(content),
		Filename: "corpus.json",
		Title:    "Corpus dump",
	})
	return err
}

// FetchThread returns the ordered messages of the thread rooted at the given
// timestamp.
func (c *Client) FetchThread(ctx context.Context, threadID string) ([]chat.Message, error) {
	msgs, _, _, err := c.api.GetConversationRepliesContext(ctx, &slack.GetConversationRepliesParameters{
		ChannelID: c.channel,
		Timestamp: threadID,
	})
	if err != nil {
		return nil, err
	}

	out := make([]chat.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toChatMessage(m))
	}
	return out, nil
}

func toChatMessage(m slack.Message) chat.Message {
	msg := chat.Message{
		Text:            m.Text,
		User:            m.User,
		Timestamp:       m.Timestamp,
		ThreadTimestamp: m.ThreadTimestamp,
		FromBot:         m.BotID != "" || m.SubType == "bot_message",
	}
	for _, a := range m.Attachments {
		if a.Footer != "" {
			msg.Footers = append(msg.Footers, a.Footer)
		}
	}
	return msg
}

func toSlackAttachments(attachments []chat.Attachment) []slack.Attachment {
	out := make([]slack.Attachment, 0, len(attachments))
	for _, a := range attachments {
		sa := slack.Attachment{
			Fallback:   a.Fallback,
			CallbackID: a.CallbackID,
			Footer:     a.Footer,
		}
		for _, action := range a.Actions {
			sa.Actions = append(sa.Actions, slack.AttachmentAction{
				Name:  action.Name,
				Text:  action.Text,
				Value: action.Value,
				Type:  "button",
				Style: action.Style,
			})
		}
		out = append(out, sa)
	}
	return out
}
