// Package model wraps the hosted generative model behind a small handle
// interface so the pipelines never touch the SDK types directly.
package model

import "context"

// MIMETypeJSON asks the model for structured JSON output.
const MIMETypeJSON = "application/json"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Client hands out model handles. An empty name selects the configured
// default model; an empty systemInstruction means none.
type Client interface {
	Model(name, systemInstruction string) Handle
}

// Handle generates content with a fixed model and system instruction.
type Handle interface {
	GenerateContent(ctx context.Context, req Request) (*Response, error)
}

type Content struct {
	Role Role
	Text string
}

type Request struct {
	Contents         []Content
	ResponseMIMEType string
}

// UserRequest is a request holding a single user turn.
func UserRequest(text string) Request {
	return Request{Contents: []Content{{Role: RoleUser, Text: text}}}
}

type Response struct {
	text string
}

func NewResponse(text string) *Response {
	return &Response{text: text}
}

// Text returns the generated text, empty when the model produced none.
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	return r.text
}
