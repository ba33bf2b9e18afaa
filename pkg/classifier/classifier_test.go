package classifier

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mention-me/AISlackBot/internal/entity"
)

func testCorpus() map[string]*entity.QuestionWithAnswer {
	lunch := entity.NewQuestionWithAnswer("Lunch is served at 1pm in the kitchen", "what time is lunch?")
	wifi := entity.NewQuestionWithAnswer("The wifi password is hunter2", "what is the wifi password?")
	return map[string]*entity.QuestionWithAnswer{
		lunch.Label: lunch,
		wifi.Label:  wifi,
	}
}

func TestTrainEmptyCorpus(t *testing.T) {
	assert.Nil(t, Train(nil))
	assert.Nil(t, Train(map[string]*entity.QuestionWithAnswer{}))
}

func TestTrainSingleRecordCorpus(t *testing.T) {
	lunch := entity.NewQuestionWithAnswer("Lunch is served at 1pm", "what time is lunch?")
	model := Train(map[string]*entity.QuestionWithAnswer{lunch.Label: lunch})
	require.NotNil(t, model)

	candidates := model.Classify("what time is lunch?")
	require.Len(t, candidates, 1, "the padding sentinel must not leak into results")
	assert.Equal(t, lunch.Label, candidates[0].Label)
}

func TestClassifyRanksDescending(t *testing.T) {
	model := Train(testCorpus())
	require.NotNil(t, model)

	candidates := model.Classify("what time is lunch?")
	require.Len(t, candidates, 2)

	for i := 1; i < len(candidates); i++ {
		assert.GreaterOrEqual(t, candidates[i-1].Score, candidates[i].Score)
	}
	assert.Equal(t, entity.DeriveLabel("Lunch is served at 1pm in the kitchen"), candidates[0].Label)

	total := 0.0
	for _, c := range candidates {
		assert.GreaterOrEqual(t, c.Score, 0.0)
		assert.LessOrEqual(t, c.Score, 1.0)
		total += c.Score
	}
	assert.InDelta(t, 1.0, total, 0.0001)
}

func TestClassifyMatchesOnAnswerContent(t *testing.T) {
	// The answer text is learned as a document, so a question phrased with
	// the answer's own words still finds the record.
	model := Train(testCorpus())
	require.NotNil(t, model)

	candidates := model.Classify("is lunch served in the kitchen?")
	require.NotEmpty(t, candidates)
	assert.Equal(t, entity.DeriveLabel("Lunch is served at 1pm in the kitchen"), candidates[0].Label)
}

func TestClassifyIsCaseInsensitive(t *testing.T) {
	model := Train(testCorpus())
	require.NotNil(t, model)

	lower := model.Classify("what is the wifi password?")
	upper := model.Classify("WHAT IS THE WIFI PASSWORD?")
	require.NotEmpty(t, lower)
	require.NotEmpty(t, upper)
	assert.Equal(t, lower[0].Label, upper[0].Label)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	model := Train(testCorpus())
	require.NotNil(t, model)

	path := filepath.Join(t.TempDir(), "classifier.gob")
	require.NoError(t, model.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)

	want := model.Classify("what time is lunch?")
	got := loaded.Classify("what time is lunch?")
	assert.Equal(t, want, got)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.gob"))
	assert.Error(t, err)
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "lower cases and splits on punctuation",
			text: "What time is Lunch?",
			want: []string{"what", "time", "is", "lunch"},
		},
		{
			name: "keeps numbers",
			text: "lunch at 1pm",
			want: []string{"lunch", "at", "1pm"},
		},
		{
			name: "empty input",
			text: "",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.text)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
