package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"studygen/internal/domain"
)

// --- MockGenerator ---
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) GenerateSummary(ctx context.Context, params domain.SummaryParams) (*domain.GeneratedSummary, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GeneratedSummary), args.Error(1)
}

func (m *MockGenerator) GenerateQuizQuestion(ctx context.Context, params domain.QuestionParams) (*domain.GeneratedQuestion, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GeneratedQuestion), args.Error(1)
}

// paramsAt returns the question params of the i-th recorded call.
func (m *MockGenerator) paramsAt(i int) domain.QuestionParams {
	return m.Calls[i].Arguments.Get(1).(domain.QuestionParams)
}
