package core

import (
	"context"
	"errors"
	"strings"

	"gwi.com/tutorgen/internal/logger"
	"gwi.com/tutorgen/internal/model"
	"gwi.com/tutorgen/internal/store"
)

const followUpFailedMessage = "Failed to get answer"

type TutorialService struct {
	dbStore          *store.Store
	models           model.Client
	modelName        string
	systemPromptPath string
	log              *logger.Logger
}

type TutorialServiceConfig struct {
	// ModelName overrides the client's default model when set.
	ModelName        string
	SystemPromptPath string
}

// NewTutorialService builds the service. models may be nil for read-only use;
// generation and follow-ups then fail with KindConfig.
func NewTutorialService(db *store.Store, models model.Client, cfg TutorialServiceConfig, log *logger.Logger) *TutorialService {
	return &TutorialService{
		dbStore:          db,
		models:           models,
		modelName:        cfg.ModelName,
		systemPromptPath: cfg.SystemPromptPath,
		log:              log.With("service", "TutorialService"),
	}
}

// GeneratedTutorial is a freshly created tutorial and its steps in step_order.
type GeneratedTutorial struct {
	Tutorial *store.Tutorial `json:"tutorial"`
	Steps    []store.Step    `json:"steps"`
}

// TutorialDetail is a tutorial with its steps and each step's conversation.
type TutorialDetail struct {
	*store.Tutorial
	Steps []store.Step `json:"steps"`
}

// GenerateTutorial asks the model for a tutorial on topic and persists it.
// Failures are returned as *Error; the tutorial row and its steps are written
// in one transaction, so a failed step insert leaves no tutorial behind.
func (s *TutorialService) GenerateTutorial(ctx context.Context, topic string) (*GeneratedTutorial, error) {
	if strings.TrimSpace(topic) == "" {
		return nil, newError(KindInput, "topic is required", nil)
	}
	if s.models == nil {
		return nil, newError(KindConfig, "no model client configured", nil)
	}

	systemPrompt, err := LoadSystemPrompt(s.systemPromptPath)
	if err != nil {
		s.log.Error("Error generating tutorial", "stage", "prompt", "error", err)
		return nil, newError(KindConfig, "failed to load system prompt", err)
	}

	req := model.UserRequest(topicPrompt(topic))
	req.ResponseMIMEType = model.MIMETypeJSON

	resp, err := s.models.Model(s.modelName, systemPrompt).GenerateContent(ctx, req)
	if err != nil {
		s.log.Error("Error generating tutorial", "stage", "model", "topic", topic, "error", err)
		return nil, newError(KindModel, "failed to generate tutorial", err)
	}

	content := resp.Text()
	if content == "" {
		s.log.Error("Error generating tutorial", "stage", "model", "topic", topic, "error", ErrNoContent)
		return nil, newError(KindModel, ErrNoContent.Error(), ErrNoContent)
	}

	drafts, err := DecodeSteps(content)
	if err != nil {
		s.log.Error("Error generating tutorial", "stage", "decode", "topic", topic, "error", err)
		if errors.Is(err, ErrInvalidFormat) {
			return nil, newError(KindModel, ErrInvalidFormat.Error(), err)
		}
		return nil, newError(KindModel, "failed to parse model output", err)
	}

	var result GeneratedTutorial
	err = s.dbStore.WithTx(ctx, func(tx *store.Store) error {
		tutorial, err := tx.CreateTutorial(ctx, topic)
		if err != nil {
			return err
		}

		rows := make([]store.Step, len(drafts))
		for i, d := range drafts {
			rows[i] = store.Step{
				TutorialID: tutorial.ID,
				Title:      d.Title,
				Content:    d.Content,
				Command:    d.Command,
				StepOrder:  i,
			}
		}
		steps, err := tx.CreateSteps(ctx, rows)
		if err != nil {
			return err
		}

		result = GeneratedTutorial{Tutorial: tutorial, Steps: steps}
		return nil
	})
	if err != nil {
		s.log.Error("Error generating tutorial", "stage", "store", "topic", topic, "error", err)
		return nil, newError(KindPersistence, "failed to save tutorial", err)
	}

	s.log.Info("Generated tutorial", "tutorial_id", result.Tutorial.ID, "steps", len(result.Steps))
	return &result, nil
}

// AskFollowUp stores the question, asks the model about the step described
// by stepContext and stores the answer. It returns the assistant message.
func (s *TutorialService) AskFollowUp(ctx context.Context, stepID, stepContext, question string) (*store.Message, error) {
	if err := ValidateQuestion(question); err != nil {
		return nil, err
	}
	if s.models == nil {
		return nil, newError(KindConfig, followUpFailedMessage, nil)
	}

	if _, err := s.dbStore.CreateMessage(ctx, stepID, store.RoleUser, question); err != nil {
		s.log.Error("Error asking follow-up", "stage", "store", "step_id", stepID, "error", err)
		return nil, newError(KindPersistence, followUpFailedMessage, err)
	}

	handle := s.models.Model(s.modelName, followUpInstruction(stepContext))
	resp, err := handle.GenerateContent(ctx, model.UserRequest(question))
	if err != nil {
		s.log.Error("Error asking follow-up", "stage", "model", "step_id", stepID, "error", err)
		return nil, newError(KindModel, followUpFailedMessage, err)
	}

	answer := resp.Text()
	if answer == "" {
		answer = FallbackAnswer
	}

	message, err := s.dbStore.CreateMessage(ctx, stepID, store.RoleAssistant, answer)
	if err != nil {
		s.log.Error("Error asking follow-up", "stage", "store", "step_id", stepID, "error", err)
		return nil, newError(KindPersistence, followUpFailedMessage, err)
	}
	return message, nil
}

// ValidateQuestion rejects a blank follow-up question with a KindInput error.
func ValidateQuestion(question string) error {
	if strings.TrimSpace(question) == "" {
		return newError(KindInput, "question is required", nil)
	}
	return nil
}

// GetStep returns the step with id, or nil when it does not exist.
func (s *TutorialService) GetStep(ctx context.Context, id string) (*store.Step, error) {
	step, err := s.dbStore.GetStep(ctx, id)
	if err != nil {
		return nil, newError(KindPersistence, "failed to get step", err)
	}
	return step, nil
}

// GetStepMessages returns a step's conversation oldest first.
func (s *TutorialService) GetStepMessages(ctx context.Context, stepID string) ([]store.Message, error) {
	messages, err := s.dbStore.ListMessages(ctx, stepID)
	if err != nil {
		return nil, newError(KindPersistence, "failed to get messages", err)
	}
	return messages, nil
}

// GetTutorial returns the tutorial with its ordered steps and conversations,
// or nil when it does not exist. Store errors are surfaced, never swallowed.
func (s *TutorialService) GetTutorial(ctx context.Context, id string) (*TutorialDetail, error) {
	tutorial, err := s.dbStore.GetTutorial(ctx, id)
	if err != nil {
		return nil, newError(KindPersistence, "failed to get tutorial", err)
	}
	if tutorial == nil {
		return nil, nil // Not found
	}

	steps, err := s.dbStore.ListSteps(ctx, id)
	if err != nil {
		return nil, newError(KindPersistence, "failed to get tutorial steps", err)
	}
	return &TutorialDetail{Tutorial: tutorial, Steps: steps}, nil
}

// GetTutorials lists tutorials newest first. A store failure is logged and
// yields an empty list.
func (s *TutorialService) GetTutorials(ctx context.Context) []store.Tutorial {
	tutorials, err := s.dbStore.ListTutorials(ctx)
	if err != nil {
		s.log.Error("Error fetching tutorials", "error", err)
		return []store.Tutorial{}
	}
	return tutorials
}
