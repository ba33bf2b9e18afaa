package entity

import (
	"crypto/md5"
	"fmt"
)

// QuestionWithAnswer is a stored answer record together with every phrasing
// of the question known to map onto it. The phrasing list is insertion
// ordered and duplicate free; the training pipeline feeds each phrasing to
// the classifier as a document for the record's label.
type QuestionWithAnswer struct {
	Label     string
	Answer    string
	Questions []string
}

// DeriveLabel returns the content-derived label for an answer: the md5 hex
// of the answer text when it was first given.
func DeriveLabel(answer string) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(answer)))
}

// NewQuestionWithAnswer builds a record for a freshly acquired answer.
// The answer text itself becomes an extra phrasing once it is longer than
// one character: the answer often contains the words of the question, so it
// makes a usable classification document on its own.
func NewQuestionWithAnswer(answer string, questions ...string) *QuestionWithAnswer {
	qa := &QuestionWithAnswer{
		Label:  DeriveLabel(answer),
		Answer: answer,
	}
	for _, q := range questions {
		qa.AddPhrasing(q)
	}
	if len(answer) > 1 {
		qa.AddPhrasing(answer)
	}
	return qa
}

// HasPhrasing reports whether the phrasing is already known for this record.
func (q *QuestionWithAnswer) HasPhrasing(phrasing string) bool {
	for _, existing := range q.Questions {
		if existing == phrasing {
			return true
		}
	}
	return false
}

// AddPhrasing appends a phrasing unless it is already present. Returns true
// if the record changed.
func (q *QuestionWithAnswer) AddPhrasing(phrasing string) bool {
	if phrasing == "" || q.HasPhrasing(phrasing) {
		return false
	}
	q.Questions = append(q.Questions, phrasing)
	return true
}

// ReplaceAnswer swaps in an improved answer while keeping the label and all
// previously learned phrasings, then re-applies the answer-as-phrasing
// heuristic for the new text.
func (q *QuestionWithAnswer) ReplaceAnswer(answer string) {
	q.Answer = answer
	if len(answer) > 1 {
		q.AddPhrasing(answer)
	}
}
