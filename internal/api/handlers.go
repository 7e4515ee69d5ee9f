package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"gwi.com/tutorgen/internal/core"
	"gwi.com/tutorgen/internal/logger"
	"gwi.com/tutorgen/internal/store"
)

type APIHandler struct {
	tutorialService *core.TutorialService
	log             *logger.Logger
}

func NewAPIHandler(ts *core.TutorialService, log *logger.Logger) *APIHandler {
	return &APIHandler{tutorialService: ts, log: log.With("component", "APIHandler")}
}

type ErrorResponse struct {
	Error string    `json:"error"`
	Kind  core.Kind `json:"kind,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writePipelineError maps a pipeline failure onto an HTTP status. The body
// carries only the caller-safe message and the failure kind.
func (h *APIHandler) writePipelineError(w http.ResponseWriter, err error) {
	var pe *core.Error
	if !errors.As(err, &pe) {
		h.log.Error("Unclassified pipeline error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	status := http.StatusInternalServerError
	switch pe.Kind {
	case core.KindInput:
		status = http.StatusBadRequest
	case core.KindModel:
		status = http.StatusBadGateway
	}
	writeJSON(w, status, ErrorResponse{Error: pe.Message, Kind: pe.Kind})
}

func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type GenerateTutorialRequest struct {
	Topic string `json:"topic"`
}

func (h *APIHandler) GenerateTutorialHandler(w http.ResponseWriter, r *http.Request) {
	var req GenerateTutorialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	generated, err := h.tutorialService.GenerateTutorial(r.Context(), req.Topic)
	if err != nil {
		h.writePipelineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, generated)
}

func (h *APIHandler) ListTutorialsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.tutorialService.GetTutorials(r.Context()))
}

func (h *APIHandler) GetTutorialHandler(w http.ResponseWriter, r *http.Request) {
	tutorialID := chi.URLParam(r, "tutorialID")

	detail, err := h.tutorialService.GetTutorial(r.Context(), tutorialID)
	if err != nil {
		h.log.Error("Error getting tutorial", "tutorial_id", tutorialID, "error", err, "cause", errors.Unwrap(err))
		h.writePipelineError(w, err)
		return
	}
	if detail == nil {
		writeError(w, http.StatusNotFound, "Tutorial not found")
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *APIHandler) ListStepMessagesHandler(w http.ResponseWriter, r *http.Request) {
	stepID := chi.URLParam(r, "stepID")

	messages, err := h.tutorialService.GetStepMessages(r.Context(), stepID)
	if err != nil {
		h.log.Error("Error listing messages", "step_id", stepID, "error", err, "cause", errors.Unwrap(err))
		h.writePipelineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

type FollowUpRequest struct {
	Question    string  `json:"question"`
	StepContext *string `json:"step_context,omitempty"`
}

type FollowUpResponse struct {
	Message *store.Message `json:"message"`
}

func (h *APIHandler) FollowUpHandler(w http.ResponseWriter, r *http.Request) {
	stepID := chi.URLParam(r, "stepID")

	var req FollowUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := core.ValidateQuestion(req.Question); err != nil {
		h.writePipelineError(w, err)
		return
	}

	var stepContext string
	if req.StepContext != nil {
		stepContext = *req.StepContext
	} else {
		step, err := h.tutorialService.GetStep(r.Context(), stepID)
		if err != nil {
			h.log.Error("Error loading step for follow-up", "step_id", stepID, "error", err, "cause", errors.Unwrap(err))
			h.writePipelineError(w, err)
			return
		}
		if step == nil {
			writeError(w, http.StatusNotFound, "Step not found")
			return
		}
		stepContext = core.BuildStepContext(step)
	}

	message, err := h.tutorialService.AskFollowUp(r.Context(), stepID, stepContext, req.Question)
	if err != nil {
		h.writePipelineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, FollowUpResponse{Message: message})
}
