package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mention-me/AISlackBot/internal/entity"
	"github.com/mention-me/AISlackBot/internal/repository/contract"
	"github.com/mention-me/AISlackBot/pkg/chat"
	"github.com/mention-me/AISlackBot/pkg/store"

	"github.com/mention-me/AISlackBot/internal/repository/memory"
)

type acquisitionFixture struct {
	states    contract.StateRepository
	qa        *fakeQARepository
	transport *fakeTransport
	retrain   *fakeRetrainPublisher
	service   IAcquisitionService
}

func newAcquisitionFixture(t *testing.T, records ...*entity.QuestionWithAnswer) *acquisitionFixture {
	t.Helper()
	f := &acquisitionFixture{
		states:    memory.NewStateRepository(time.Hour),
		qa:        newFakeQARepository(records...),
		transport: newFakeTransport(),
		retrain:   &fakeRetrainPublisher{},
	}
	f.service = NewAcquisitionService(f.states, f.qa, f.transport, f.retrain, nil, nopLogger{})
	return f
}

// broadcastCode digs the acquisition code out of a recorded broadcast.
func broadcastCode(t *testing.T, sent sentMessage) string {
	t.Helper()
	require.Len(t, sent.Attachments, 1)
	footer := sent.Attachments[0].Footer
	require.True(t, strings.HasPrefix(footer, chat.AcquisitionCodePrefix), footer)
	return strings.TrimPrefix(footer, chat.AcquisitionCodePrefix)
}

func TestStartNewAnswerApologisesAndBroadcasts(t *testing.T) {
	f := newAcquisitionFixture(t)
	ctx := context.Background()

	f.transport.threads["t1"] = []chat.Message{
		{User: "U123", Text: "where are the stairs?"},
	}
	require.NoError(t, f.states.SaveDialogue(ctx, &store.PendingContext{ConversationID: "t1"}))

	require.NoError(t, f.service.StartNewAnswer(ctx, "where are the stairs?", "t1"))

	require.Len(t, f.transport.sent, 2)

	apology := f.transport.sent[0]
	assert.Equal(t, "I'm sorry, my responses are limited, you must ask the right questions", apology.Text)
	assert.Equal(t, "t1", apology.ThreadID)

	broadcast := f.transport.sent[1]
	assert.Empty(t, broadcast.ThreadID, "broadcast goes to the channel, not the thread")
	assert.Contains(t, broadcast.Text, "<@U123> asked this question:")
	assert.Contains(t, broadcast.Text, "where are the stairs?")

	code := broadcastCode(t, broadcast)
	acquisition, found, err := f.states.GetAcquisition(ctx, code)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "where are the stairs?", acquisition.Question)

	_, found, err = f.states.GetDialogue(ctx, "t1")
	require.NoError(t, err)
	assert.False(t, found, "acquisition takes over from the dialogue")
}

func TestStartNewAnswerWithUnknownAsker(t *testing.T) {
	f := newAcquisitionFixture(t)

	// No canned thread, so the asking user cannot be determined. The flow
	// must still run end to end.
	require.NoError(t, f.service.StartNewAnswer(context.Background(), "why?", "t1"))

	require.Len(t, f.transport.sent, 2)
	assert.Contains(t, f.transport.sent[1].Text, "<@> asked this question:")
}

func TestCompleteNewAnswerStoresRecord(t *testing.T) {
	f := newAcquisitionFixture(t)
	ctx := context.Background()

	acquisition := &store.AnswerAcquisition{ID: "abc-123", Question: "Where Are The Stairs?"}
	require.NoError(t, f.states.SaveAcquisition(ctx, acquisition))

	require.NoError(t, f.service.CompleteNewAnswer(ctx, "Behind the lifts", acquisition, "t2"))

	label := entity.DeriveLabel("Behind the lifts")
	record, err := f.qa.Get(ctx, label)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "Behind the lifts", record.Answer)
	// The question is folded to lower case, and the answer itself becomes
	// an extra phrasing so answer-like questions match.
	assert.Equal(t, []string{"where are the stairs?", "Behind the lifts"}, record.Questions)

	assert.Equal(t, "Thanks for making me smarter!", f.transport.lastSent().Text)
	assert.Equal(t, "t2", f.transport.lastSent().ThreadID)
	assert.Equal(t, 1, f.retrain.requests)

	_, found, err := f.states.GetAcquisition(ctx, "abc-123")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCompleteNewAnswerSingleCharacter(t *testing.T) {
	f := newAcquisitionFixture(t)
	ctx := context.Background()

	acquisition := &store.AnswerAcquisition{ID: "abc-456", Question: "how many floors?"}
	require.NoError(t, f.states.SaveAcquisition(ctx, acquisition))

	require.NoError(t, f.service.CompleteNewAnswer(ctx, "7", acquisition, "t3"))

	record, err := f.qa.Get(ctx, entity.DeriveLabel("7"))
	require.NoError(t, err)
	require.NotNil(t, record)
	// Too short to be useful as a phrasing of itself.
	assert.Equal(t, []string{"how many floors?"}, record.Questions)
}

func TestStartImproveBroadcastsAndSavesState(t *testing.T) {
	stale := entity.NewQuestionWithAnswer("Lunch is at noon", "what time is lunch?")
	f := newAcquisitionFixture(t, stale)
	ctx := context.Background()

	require.NoError(t, f.service.StartImprove(ctx, stale, stale.Label, "U9"))

	require.Len(t, f.transport.sent, 1)
	broadcast := f.transport.sent[0]
	assert.Empty(t, broadcast.ThreadID)
	assert.Contains(t, broadcast.Text, "<@U9> said this answer could be improved:")
	assert.Contains(t, broadcast.Text, "Lunch is at noon")

	code := broadcastCode(t, broadcast)
	acquisition, found, err := f.states.GetImproveAcquisition(ctx, code)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, stale.Label, acquisition.Label)
}

func TestCompleteImproveKeepsLabelAndPhrasings(t *testing.T) {
	stale := entity.NewQuestionWithAnswer("Lunch is at noon", "what time is lunch?", "when is lunch?")
	f := newAcquisitionFixture(t, stale)
	ctx := context.Background()

	acquisition := &store.ImproveAnswerAcquisition{ID: "imp-1", Label: stale.Label, AnswerToImprove: stale}
	require.NoError(t, f.states.SaveImproveAcquisition(ctx, acquisition))

	require.NoError(t, f.service.CompleteImprove(ctx, "Lunch is at 1pm now", acquisition, "t4"))

	record, err := f.qa.Get(ctx, stale.Label)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "Lunch is at 1pm now", record.Answer)
	assert.Equal(t, stale.Label, record.Label, "label survives the rewrite")
	assert.Contains(t, record.Questions, "what time is lunch?")
	assert.Contains(t, record.Questions, "when is lunch?")

	assert.Equal(t, "Thanks for making me smarter!", f.transport.lastSent().Text)
	assert.Equal(t, 1, f.retrain.requests)

	_, found, err := f.states.GetImproveAcquisition(ctx, "imp-1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCompleteImproveMissingRecordDropsSilently(t *testing.T) {
	f := newAcquisitionFixture(t)
	ctx := context.Background()

	acquisition := &store.ImproveAnswerAcquisition{ID: "imp-2", Label: "gone"}
	require.NoError(t, f.states.SaveImproveAcquisition(ctx, acquisition))

	require.NoError(t, f.service.CompleteImprove(ctx, "new answer", acquisition, "t5"))

	assert.Empty(t, f.transport.sent)
	assert.Zero(t, f.retrain.requests)
	_, found, err := f.states.GetImproveAcquisition(ctx, "imp-2")
	require.NoError(t, err)
	assert.False(t, found)
}
