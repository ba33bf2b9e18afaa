package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mention-me/AISlackBot/internal/entity"
	"github.com/mention-me/AISlackBot/pkg/classifier"
)

func trainedManager(t *testing.T) (*classifier.Manager, map[string]*entity.QuestionWithAnswer) {
	t.Helper()

	lunch := entity.NewQuestionWithAnswer("Lunch is at 1pm", "what time is lunch?", "when do we eat lunch?")
	wifi := entity.NewQuestionWithAnswer("The wifi password is hunter2", "what is the wifi password?")
	corpus := map[string]*entity.QuestionWithAnswer{
		lunch.Label: lunch,
		wifi.Label:  wifi,
	}

	model := classifier.Train(corpus)
	require.NotNil(t, model)

	manager := classifier.NewManager("unused", nopLogger{})
	manager.Swap(model)
	return manager, corpus
}

func TestResolveConfidentMatch(t *testing.T) {
	manager, corpus := trainedManager(t)
	resolver := NewResolverService(manager, 0.5)

	guess, candidates := resolver.Resolve(context.Background(), "WHAT time is LUNCH?")

	require.NotEmpty(t, guess)
	_, known := corpus[guess]
	assert.True(t, known)
	assert.Equal(t, "Lunch is at 1pm", corpus[guess].Answer)

	require.NotEmpty(t, candidates)
	assert.Equal(t, guess, candidates[0].Label, "guess is always the top candidate")
	assert.Greater(t, candidates[0].Score, 0.5)
}

func TestResolveBelowThresholdReturnsCandidatesOnly(t *testing.T) {
	manager, _ := trainedManager(t)

	// A probability can never exceed 1, so this threshold suppresses every
	// guess while still exposing the ranked list.
	resolver := NewResolverService(manager, 1.0)

	guess, candidates := resolver.Resolve(context.Background(), "what time is lunch?")

	assert.Empty(t, guess)
	assert.NotEmpty(t, candidates)
}

func TestResolveUntrained(t *testing.T) {
	manager := classifier.NewManager("unused", nopLogger{})
	resolver := NewResolverService(manager, 0.5)

	assert.False(t, resolver.Trained())

	guess, candidates := resolver.Resolve(context.Background(), "anything?")
	assert.Empty(t, guess)
	assert.Nil(t, candidates)
}

func TestResolveTrainedReporting(t *testing.T) {
	manager, _ := trainedManager(t)
	resolver := NewResolverService(manager, 0.5)
	assert.True(t, resolver.Trained())
}
