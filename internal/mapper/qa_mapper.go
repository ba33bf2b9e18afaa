package mapper

import (
	"encoding/json"

	"github.com/mention-me/AISlackBot/internal/entity"
	"github.com/mention-me/AISlackBot/internal/model"
)

type QAMapper struct{}

func NewQAMapper() *QAMapper {
	return &QAMapper{}
}

func (m *QAMapper) ToModel(qa *entity.QuestionWithAnswer) (*model.QuestionWithAnswer, error) {
	questions, err := json.Marshal(qa.Questions)
	if err != nil {
		return nil, err
	}
	return &model.QuestionWithAnswer{
		Label:     qa.Label,
		Answer:    qa.Answer,
		Questions: questions,
	}, nil
}

func (m *QAMapper) ToEntity(qa *model.QuestionWithAnswer) (*entity.QuestionWithAnswer, error) {
	var questions []string
	if len(qa.Questions) > 0 {
		if err := json.Unmarshal(qa.Questions, &questions); err != nil {
			return nil, err
		}
	}
	return &entity.QuestionWithAnswer{
		Label:     qa.Label,
		Answer:    qa.Answer,
		Questions: questions,
	}, nil
}
