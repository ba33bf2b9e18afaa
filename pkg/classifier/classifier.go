package classifier

import (
	"sort"
	"strings"
	"unicode"

	"github.com/jbrukh/bayesian"

	"github.com/mention-me/AISlackBot/internal/entity"
)

// Candidate is one classifier output: a record label with the probability
// that it answers the classified text. A classification yields a sequence of
// candidates sorted descending by score.
type Candidate struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// The bayesian classifier requires at least two classes. Single-record
// corpora are padded with this sentinel, which never receives a document and
// is filtered out of results.
const sentinelClass bayesian.Class = "__none__"

// Model wraps a trained naive bayes classifier. A Model is immutable once
// built; retraining produces a fresh Model which is swapped in whole.
type Model struct {
	classifier *bayesian.Classifier
}

// Train builds a model from the full corpus. Every known phrasing of each
// record is learned as a document for the record's label, along with the
// answer text itself when it is longer than one character. An empty corpus
// yields no model rather than an error: the bot then runs purely in
// acquisition mode until a record exists.
func Train(corpus map[string]*entity.QuestionWithAnswer) *Model {
	if len(corpus) == 0 {
		return nil
	}

	classes := make([]bayesian.Class, 0, len(corpus)+1)
	for label := range corpus {
		classes = append(classes, bayesian.Class(label))
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i] < classes[j] })
	if len(classes) < 2 {
		classes = append(classes, sentinelClass)
	}

	c := bayesian.NewClassifier(classes...)
	for label, record := range corpus {
		class := bayesian.Class(label)
		for _, question := range record.Questions {
			c.Learn(Tokenize(question), class)
		}
		if len(record.Answer) > 1 && !record.HasPhrasing(record.Answer) {
			c.Learn(Tokenize(record.Answer), class)
		}
	}

	return &Model{classifier: c}
}

// Load restores a previously saved model from disk.
func Load(path string) (*Model, error) {
	c, err := bayesian.NewClassifierFromFile(path)
	if err != nil {
		return nil, err
	}
	return &Model{classifier: c}, nil
}

// Save persists the model so a restart (or a sibling process) can pick it up
// without retraining.
func (m *Model) Save(path string) error {
	return m.classifier.WriteToFile(path)
}

// Classify scores the text against every label and returns the candidates
// sorted descending by score. Ties keep the classifier's own class order; no
// secondary key is imposed.
func (m *Model) Classify(text string) []Candidate {
	scores, _, _ := m.classifier.ProbScores(Tokenize(strings.ToLower(text)))

	candidates := make([]Candidate, 0, len(scores))
	for i, score := range scores {
		class := m.classifier.Classes[i]
		if class == sentinelClass {
			continue
		}
		candidates = append(candidates, Candidate{
			Label: string(class),
			Score: score,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	return candidates
}

// Tokenize splits text into lower-cased word tokens.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
