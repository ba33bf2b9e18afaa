package model

import (
	"time"

	"gorm.io/datatypes"
)

// QuestionWithAnswer is the persistence shape of an answer record. The
// phrasing list is held as a JSON column so ordering survives round-trips.
type QuestionWithAnswer struct {
	Label     string `gorm:"primaryKey"`
	Answer    string
	Questions datatypes.JSON
	CreatedAt time.Time
	UpdatedAt *time.Time
}

func (QuestionWithAnswer) TableName() string {
	return "question_with_answers"
}
