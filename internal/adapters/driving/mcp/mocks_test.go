package mcp

import (
	"context"

	"github.com/roswate/ayten-bot/internal/core/domain"
)

// mockRetrieverService is a mock implementation of driving.RetrieverService.
type mockRetrieverService struct {
	results  []domain.RetrievalResult
	err      error
	lastOpts domain.RetrieveOptions
}

func (m *mockRetrieverService) Retrieve(
	_ context.Context,
	_ string,
	opts domain.RetrieveOptions,
) ([]domain.RetrievalResult, error) {
	m.lastOpts = opts
	return m.results, m.err
}

// mockAskService is a mock implementation of driving.AskService.
type mockAskService struct {
	answer *domain.Answer
	err    error
	got    string
}

func (m *mockAskService) Ask(_ context.Context, message string) (*domain.Answer, error) {
	m.got = message
	return m.answer, m.err
}

func (m *mockAskService) Chat(_ context.Context, _ []domain.Message, message string) (*domain.Answer, error) {
	return m.Ask(context.Background(), message)
}

// mockStatusService is a mock implementation of driving.StatusService.
type mockStatusService struct {
	status *domain.IndexStatus
	err    error
}

func (m *mockStatusService) Status(_ context.Context) (*domain.IndexStatus, error) {
	return m.status, m.err
}
