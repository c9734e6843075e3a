package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Longevitate/carefinder/internal/domain/repositories"
)

type MockTextEmbedder struct {
	mock.Mock
}

func (m *MockTextEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float32), args.Error(1)
}

func (m *MockTextEmbedder) Model() string {
	return "mock-embedding"
}

type MockCorpusSource struct {
	mock.Mock
}

func (m *MockCorpusSource) Load(ctx context.Context) (*repositories.CorpusData, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repositories.CorpusData), args.Error(1)
}

func (m *MockCorpusSource) Name() string {
	return "mock"
}
