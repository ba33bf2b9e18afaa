package implementation

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/mention-me/AISlackBot/internal/entity"
	"github.com/mention-me/AISlackBot/internal/mapper"
	"github.com/mention-me/AISlackBot/internal/model"
	"github.com/mention-me/AISlackBot/internal/repository/contract"
)

type QARepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.QAMapper
}

func NewQARepository(db *gorm.DB) contract.QARepository {
	return &QARepositoryImpl{
		db:     db,
		mapper: mapper.NewQAMapper(),
	}
}

func (r *QARepositoryImpl) Get(ctx context.Context, label string) (*entity.QuestionWithAnswer, error) {
	var m model.QuestionWithAnswer
	err := r.db.WithContext(ctx).Where("LOWER(label) = LOWER(?)", label).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m)
}

func (r *QARepositoryImpl) Put(ctx context.Context, qa *entity.QuestionWithAnswer) error {
	m, err := r.mapper.ToModel(qa)
	if err != nil {
		return err
	}
	// Save upserts on the primary key, which covers both the first store of
	// an acquired answer and phrasing/answer updates on an existing label.
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *QARepositoryImpl) All(ctx context.Context) ([]*entity.QuestionWithAnswer, error) {
	var models []model.QuestionWithAnswer
	if err := r.db.WithContext(ctx).Find(&models).Error; err != nil {
		return nil, err
	}

	records := make([]*entity.QuestionWithAnswer, 0, len(models))
	for i := range models {
		record, err := r.mapper.ToEntity(&models[i])
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}
