package service

import (
	"context"
	"strings"
	"sync"

	"github.com/mention-me/AISlackBot/internal/entity"
	"github.com/mention-me/AISlackBot/internal/pkg/logger"
	"github.com/mention-me/AISlackBot/pkg/chat"
	"github.com/mention-me/AISlackBot/pkg/classifier"
	"github.com/mention-me/AISlackBot/pkg/store"
)

// nopLogger keeps test output quiet.
type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

var _ logger.ILogger = nopLogger{}

// fakeQARepository is a map-backed record store.
type fakeQARepository struct {
	mu      sync.Mutex
	records map[string]*entity.QuestionWithAnswer
	puts    int
}

func newFakeQARepository(records ...*entity.QuestionWithAnswer) *fakeQARepository {
	repo := &fakeQARepository{records: make(map[string]*entity.QuestionWithAnswer)}
	for _, record := range records {
		repo.records[record.Label] = record
	}
	return repo
}

func (r *fakeQARepository) Get(_ context.Context, label string) (*entity.QuestionWithAnswer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for stored, record := range r.records {
		if strings.EqualFold(stored, label) {
			clone := *record
			clone.Questions = append([]string(nil), record.Questions...)
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakeQARepository) Put(_ context.Context, qa *entity.QuestionWithAnswer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *qa
	clone.Questions = append([]string(nil), qa.Questions...)
	r.records[qa.Label] = &clone
	r.puts++
	return nil
}

func (r *fakeQARepository) All(_ context.Context) ([]*entity.QuestionWithAnswer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.QuestionWithAnswer, 0, len(r.records))
	for _, record := range r.records {
		out = append(out, record)
	}
	return out, nil
}

// sentMessage records one outbound transport call.
type sentMessage struct {
	Text        string
	ThreadID    string
	Attachments []chat.Attachment
}

// fakeTransport records sends and serves canned threads.
type fakeTransport struct {
	mu       sync.Mutex
	sent     []sentMessage
	snippets []string
	threads  map[string][]chat.Message
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{threads: make(map[string][]chat.Message)}
}

func (t *fakeTransport) SendMessage(_ context.Context, text, threadID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sent = append(t.sent, sentMessage{Text: text, ThreadID: threadID})
	return nil
}

func (t *fakeTransport) SendMessageWithAttachments(_ context.Context, text string, attachments []chat.Attachment, threadID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sent = append(t.sent, sentMessage{Text: text, ThreadID: threadID, Attachments: attachments})
	return nil
}

func (t *fakeTransport) SendSnippet(_ context.Context, content string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snippets = append(t.snippets, content)
	return nil
}

func (t *fakeTransport) FetchThread(_ context.Context, threadID string) ([]chat.Message, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.threads[threadID], nil
}

func (t *fakeTransport) lastSent() sentMessage {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.sent) == 0 {
		return sentMessage{}
	}
	return t.sent[len(t.sent)-1]
}

// fakeRetrainPublisher counts retrain requests.
type fakeRetrainPublisher struct {
	requests int
}

func (p *fakeRetrainPublisher) RequestRetrain(context.Context) error {
	p.requests++
	return nil
}

// newAnswerStart records one StartNewAnswer call.
type newAnswerStart struct {
	Question       string
	ConversationID string
}

// improveStart records one StartImprove call.
type improveStart struct {
	Label          string
	RequestingUser string
	Answer         string
}

// completion records one CompleteNewAnswer or CompleteImprove call.
type completion struct {
	Answer         string
	AcquisitionID  string
	ConversationID string
}

// fakeAcquisitions records hand-offs from the dialogue and feedback layers.
type fakeAcquisitions struct {
	startedNew       []newAnswerStart
	startedImprove   []improveStart
	completedNew     []completion
	completedImprove []completion
}

func (a *fakeAcquisitions) StartNewAnswer(_ context.Context, question, conversationID string) error {
	a.startedNew = append(a.startedNew, newAnswerStart{Question: question, ConversationID: conversationID})
	return nil
}

func (a *fakeAcquisitions) CompleteNewAnswer(_ context.Context, answerText string, acquisition *store.AnswerAcquisition, conversationID string) error {
	a.completedNew = append(a.completedNew, completion{
		Answer:         answerText,
		AcquisitionID:  acquisition.ID,
		ConversationID: conversationID,
	})
	return nil
}

func (a *fakeAcquisitions) StartImprove(_ context.Context, answerToImprove *entity.QuestionWithAnswer, label, requestingUser string) error {
	a.startedImprove = append(a.startedImprove, improveStart{
		Label:          label,
		RequestingUser: requestingUser,
		Answer:         answerToImprove.Answer,
	})
	return nil
}

func (a *fakeAcquisitions) CompleteImprove(_ context.Context, newAnswerText string, acquisition *store.ImproveAnswerAcquisition, conversationID string) error {
	a.completedImprove = append(a.completedImprove, completion{
		Answer:         newAnswerText,
		AcquisitionID:  acquisition.ID,
		ConversationID: conversationID,
	})
	return nil
}

// stubResolver returns canned classifications.
type stubResolver struct {
	trained    bool
	guess      string
	candidates []classifier.Candidate
}

func (r *stubResolver) Trained() bool { return r.trained }

func (r *stubResolver) Resolve(context.Context, string) (string, []classifier.Candidate) {
	return r.guess, r.candidates
}
