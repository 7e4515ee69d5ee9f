package model

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"gwi.com/tutorgen/internal/logger"
)

const DefaultModelName = "gemini-1.5-flash"

type GeminiClient struct {
	client       *genai.Client
	defaultModel string
	log          *logger.Logger
}

func NewGeminiClient(ctx context.Context, apiKey, defaultModel string, log *logger.Logger) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key is required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	if defaultModel == "" {
		defaultModel = DefaultModelName
	}
	return &GeminiClient{
		client:       client,
		defaultModel: defaultModel,
		log:          log.With("component", "GeminiClient"),
	}, nil
}

func (c *GeminiClient) Close() {
	if c.client == nil {
		return
	}
	if err := c.client.Close(); err != nil {
		c.log.Error("Error closing GenAI client", "error", err)
	} else {
		c.log.Debug("GenAI client closed")
	}
}

func (c *GeminiClient) Model(name, systemInstruction string) Handle {
	if name == "" {
		name = c.defaultModel
	}
	m := c.client.GenerativeModel(name)
	if systemInstruction != "" {
		m.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(systemInstruction)},
		}
	}
	return &geminiHandle{model: m, name: name, log: c.log}
}

type geminiHandle struct {
	model *genai.GenerativeModel
	name  string
	log   *logger.Logger
}

func (h *geminiHandle) GenerateContent(ctx context.Context, req Request) (*Response, error) {
	if len(req.Contents) == 0 {
		return nil, errors.New("generate request has no contents")
	}
	last := req.Contents[len(req.Contents)-1]
	if last.Role != RoleUser {
		return nil, fmt.Errorf("last content must come from %q, got %q", RoleUser, last.Role)
	}

	h.model.ResponseMIMEType = req.ResponseMIMEType

	var (
		resp *genai.GenerateContentResponse
		err  error
	)
	if len(req.Contents) == 1 {
		resp, err = h.model.GenerateContent(ctx, genai.Text(last.Text))
	} else {
		session := h.model.StartChat()
		session.History = toGeminiContents(req.Contents[:len(req.Contents)-1])
		resp, err = session.SendMessage(ctx, genai.Text(last.Text))
	}
	if err != nil {
		return nil, fmt.Errorf("gemini %s generate request failed: %w", h.name, err)
	}

	text := responseText(resp)
	if text == "" {
		h.log.Warn("Gemini response was empty or had no text parts", "model", h.name)
	}
	return NewResponse(text), nil
}

func toGeminiContents(contents []Content) []*genai.Content {
	out := make([]*genai.Content, len(contents))
	for i, c := range contents {
		role := "user"
		if c.Role == RoleAssistant {
			role = "model"
		}
		out[i] = &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(c.Text)},
		}
	}
	return out
}

// responseText joins the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return b.String()
}
