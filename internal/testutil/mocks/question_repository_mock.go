package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/vocabflash/internal/models"
)

// MockQuestionRepository is a mock implementation of repository.QuestionRepository
type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) Get(ctx context.Context, id int64) (*models.Question, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Question), args.Error(1)
}

func (m *MockQuestionRepository) MarkAnswered(ctx context.Context, id int64, correct bool) error {
	args := m.Called(ctx, id, correct)
	return args.Error(0)
}

func (m *MockQuestionRepository) SetDifficulty(ctx context.Context, id int64, difficulty int) error {
	args := m.Called(ctx, id, difficulty)
	return args.Error(0)
}

func (m *MockQuestionRepository) InsertOptions(ctx context.Context, questionID int64, options []models.QuestionOption) error {
	args := m.Called(ctx, questionID, options)
	return args.Error(0)
}

func (m *MockQuestionRepository) Options(ctx context.Context, questionID int64) ([]models.QuestionOption, error) {
	args := m.Called(ctx, questionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.QuestionOption), args.Error(1)
}
