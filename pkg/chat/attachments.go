package chat

import "strings"

// Button styles understood by the chat system.
const (
	ButtonStylePrimary = "primary"
	ButtonStyleDanger  = "danger"
)

// AcquisitionCodePrefix tags a broadcast footer with the opaque code that
// correlates it with an eventual threaded reply.
const AcquisitionCodePrefix = "Acquisition Code: "

// FeedbackCallbackID identifies the answer-feedback button set in
// interaction callbacks.
const FeedbackCallbackID = "answer_feedback"

// FeedbackButtons returns the attachment soliciting feedback on a presented
// answer.
func FeedbackButtons(good, wrong, changed string) Attachment {
	return Attachment{
		Fallback:   "Feedback isnt working currently, sorry",
		CallbackID: FeedbackCallbackID,
		Actions: []Action{
			{Name: good, Text: "Good answer", Value: good, Style: ButtonStylePrimary},
			{Name: wrong, Text: "Wrong answer", Value: wrong, Style: ButtonStyleDanger},
			{Name: changed, Text: "Answer has changed", Value: changed},
		},
	}
}

// Footer returns an attachment carrying only a footer string.
func Footer(text string) Attachment {
	return Attachment{
		Fallback: text,
		Footer:   text,
	}
}

// AcquisitionFooter returns the machine-parseable footer embedding an
// acquisition code in a broadcast.
func AcquisitionFooter(code string) Attachment {
	return Footer(AcquisitionCodePrefix + code)
}

// ExtractAcquisitionCode scans a fetched thread for the acquisition code
// planted in a broadcast footer. The most recent bot-authored message wins;
// absence of a parseable code means the thread is not acquisition-related.
func ExtractAcquisitionCode(messages []Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if !messages[i].FromBot {
			continue
		}
		for _, footer := range messages[i].Footers {
			if strings.HasPrefix(footer, AcquisitionCodePrefix) {
				return strings.TrimPrefix(footer, AcquisitionCodePrefix)
			}
		}
	}
	return ""
}
