package model

import (
	"context"
	"errors"
	"sync"
)

// ErrNoMockResponse is returned once a MockClient runs out of canned responses.
var ErrNoMockResponse = errors.New("mock model: no canned response left")

type MockResponse struct {
	Text string
	Err  error
}

// MockCall records one GenerateContent invocation.
type MockCall struct {
	ModelName         string
	SystemInstruction string
	Request           Request
}

// MockClient is a deterministic Client for tests. Handles share the client's
// FIFO queue of responses and its call log.
type MockClient struct {
	mu        sync.Mutex
	responses []MockResponse
	calls     []MockCall
}

func NewMockClient(responses ...MockResponse) *MockClient {
	return &MockClient{responses: responses}
}

func (m *MockClient) Model(name, systemInstruction string) Handle {
	return &mockHandle{client: m, name: name, system: systemInstruction}
}

func (m *MockClient) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

func (m *MockClient) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

type mockHandle struct {
	client *MockClient
	name   string
	system string
}

func (h *mockHandle) GenerateContent(_ context.Context, req Request) (*Response, error) {
	m := h.client
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, MockCall{ModelName: h.name, SystemInstruction: h.system, Request: req})
	if len(m.responses) == 0 {
		return nil, ErrNoMockResponse
	}
	resp := m.responses[0]
	m.responses = m.responses[1:]
	if resp.Err != nil {
		return nil, resp.Err
	}
	return NewResponse(resp.Text), nil
}
