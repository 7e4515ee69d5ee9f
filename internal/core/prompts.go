package core

import (
	"fmt"
	"os"

	"gwi.com/tutorgen/internal/store"
)

const (
	topicPromptTemplate = "I want to learn: %s"

	followUpInstructionTemplate = `Sei un assistente tecnico. L'utente ha una domanda su uno specifico passaggio di un tutorial.

Contesto del passaggio:
%s

Rispondi in modo conciso e utile.`

	// FallbackAnswer is stored when the model returns no text for a follow-up.
	FallbackAnswer = "Non ho potuto generare una risposta."
)

// LoadSystemPrompt reads the tutorial system prompt. It is read on every
// generation so edits take effect without a restart.
func LoadSystemPrompt(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read system prompt %s: %w", path, err)
	}
	return string(b), nil
}

func topicPrompt(topic string) string {
	return fmt.Sprintf(topicPromptTemplate, topic)
}

func followUpInstruction(stepContext string) string {
	return fmt.Sprintf(followUpInstructionTemplate, stepContext)
}

// BuildStepContext renders the step fields the follow-up assistant is framed with.
func BuildStepContext(step *store.Step) string {
	command := ""
	if step.Command != nil {
		command = *step.Command
	}
	return fmt.Sprintf("Title: %s\nContent: %s\nCommand: %s", step.Title, step.Content, command)
}
