package llm

import "context"

// MockClient returns scripted completions in order, recording requests.
// Used in chain and handler tests.
type MockClient struct {
	Responses []string
	Err       error
	Calls     [][]Message
}

// Complete pops the next scripted response. The last response repeats once
// the script runs out.
func (m *MockClient) Complete(_ context.Context, messages []Message) (string, error) {
	m.Calls = append(m.Calls, messages)
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Responses) == 0 {
		return "", nil
	}
	if len(m.Responses) == 1 {
		return m.Responses[0], nil
	}
	resp := m.Responses[0]
	m.Responses = m.Responses[1:]
	return resp, nil
}
