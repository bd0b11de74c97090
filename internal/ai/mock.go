package ai

import "context"

// MockProvider is a canned Provider for tests.
type MockProvider struct {
	Response string
	Err      error
	Calls    int
}

func (m *MockProvider) Complete(ctx context.Context, prompt string) (string, error) {
	m.Calls++
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}
