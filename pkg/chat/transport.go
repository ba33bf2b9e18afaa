// Package chat defines the transport contract the bot speaks through. The
// dialogue engine only ever sees these types; the Slack implementation lives
// in pkg/slack and can be swapped for another chat system.
package chat

import "context"

// InboundMessage is a message event delivered by the chat system. Events
// with a bot-origin subtype or no text must be discarded before they reach
// the router.
type InboundMessage struct {
	Text            string
	Channel         string
	User            string
	Timestamp       string
	ThreadTimestamp string
	Subtype         string
}

// IsThreadReply reports whether the message was posted inside an existing
// thread rather than at the channel top level.
func (m InboundMessage) IsThreadReply() bool {
	return m.ThreadTimestamp != ""
}

// Message is one message inside a fetched thread.
type Message struct {
	Text            string
	User            string
	Timestamp       string
	ThreadTimestamp string
	FromBot         bool
	Footers         []string
}

// Action is an interactive button carried on an attachment.
type Action struct {
	Name  string
	Text  string
	Value string
	Style string
}

// Attachment decorates an outbound message with buttons and/or a footer.
type Attachment struct {
	Fallback   string
	CallbackID string
	Footer     string
	Actions    []Action
}

// Transport sends and fetches messages in the bot's channel. Sends are not
// retried on failure; a duplicate prompt confuses users more than a missing
// one, so a failed send is reported to the caller and dropped.
type Transport interface {
	// SendMessage posts plain text, threaded when threadID is non-empty.
	SendMessage(ctx context.Context, text, threadID string) error

	// SendMessageWithAttachments posts text with attachments, threaded when
	// threadID is non-empty.
	SendMessageWithAttachments(ctx context.Context, text string, attachments []Attachment, threadID string) error

	// SendSnippet uploads a block of content as a text snippet.
	SendSnippet(ctx context.Context, content string) error

	// FetchThread returns the ordered messages of the thread rooted at the
	// given timestamp.
	FetchThread(ctx context.Context, threadID string) ([]Message, error)
}
