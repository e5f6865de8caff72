package handlers

import (
	"errors"
	"net/http"
	"time"

	apperrors "github.com/SAP-F-2025/survey-service/internal/errors"
	"github.com/SAP-F-2025/survey-service/internal/models"
	"github.com/SAP-F-2025/survey-service/internal/services"
	"github.com/SAP-F-2025/survey-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// ===== COMMON RESPONSE STRUCTURES =====

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// ===== SUBMISSION RESPONSES =====

type AnswerResponse struct {
	QuestionID        uint                  `json:"question_id"`
	QuestionVersion   *int                  `json:"question_version,omitempty"`
	Kind              models.QuestionKind   `json:"kind"`
	SelectedOptionIDs []uint                `json:"selected_option_ids,omitempty"`
	Value             *bool                 `json:"value,omitempty"`
	Text              *string               `json:"text,omitempty"`
	Pairs             []models.MatchingPair `json:"pairs,omitempty"`
}

type SubmissionResponse struct {
	ID          uint                    `json:"id"`
	FormID      uint                    `json:"form_id"`
	Respondent  models.RespondentSpec   `json:"respondent"`
	SourceIP    string                  `json:"source_ip,omitempty"`
	Status      models.SubmissionStatus `json:"status"`
	Answers     []AnswerResponse        `json:"answers"`
	CreatedAt   time.Time               `json:"created_at"`
	UpdatedAt   time.Time               `json:"updated_at"`
	SubmittedAt *time.Time              `json:"submitted_at,omitempty"`
}

type SubmissionListResponse struct {
	Submissions []SubmissionResponse `json:"submissions"`
	Total       int64                `json:"total"`
	Limit       int                  `json:"limit"`
	Offset      int                  `json:"offset"`
}

func NewSubmissionResponse(s *models.Submission) SubmissionResponse {
	resp := SubmissionResponse{
		ID:          s.ID(),
		FormID:      s.FormID(),
		Respondent:  s.Respondent().Spec(),
		SourceIP:    s.SourceIP(),
		Status:      s.Status(),
		Answers:     make([]AnswerResponse, 0, s.AnswerCount()),
		CreatedAt:   s.CreatedAt(),
		UpdatedAt:   s.UpdatedAt(),
		SubmittedAt: s.SubmittedAt(),
	}

	for _, answer := range s.Answers() {
		ar := AnswerResponse{
			QuestionID:      answer.QuestionID(),
			QuestionVersion: answer.QuestionVersion(),
			Kind:            answer.Kind(),
		}
		switch a := answer.(type) {
		case *models.ChoiceAnswer:
			ar.SelectedOptionIDs = a.SelectedOptionIDs()
		case *models.TrueFalseAnswer:
			v := a.Value()
			ar.Value = &v
		case *models.TextAnswer:
			text := a.Text()
			ar.Text = &text
		case *models.MatchingAnswer:
			ar.Pairs = a.Pairs()
		}
		resp.Answers = append(resp.Answers, ar)
	}

	return resp
}

// ===== BASE HANDLER STRUCT =====

// BaseHandler provides common logging functionality for all handlers
type BaseHandler struct {
	logger utils.Logger
}

// NewBaseHandler creates a new base handler with logging capability
func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{
		logger: logger,
	}
}

// LogRequest logs incoming HTTP requests with context information
func (h *BaseHandler) LogRequest(c *gin.Context, message string, additionalFields ...interface{}) {
	fields := []interface{}{
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"remote_addr", c.ClientIP(),
		"request_id", c.GetHeader("X-Request-ID"),
	}
	fields = append(fields, additionalFields...)

	utils.GetLoggerFromContext(c, h.logger).Info(message, fields...)
}

// LogError logs error details with context information
func (h *BaseHandler) LogError(c *gin.Context, err error, message string, additionalFields ...interface{}) {
	fields := []interface{}{
		"request_id", c.GetHeader("X-Request-ID"),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	}
	fields = append(fields, additionalFields...)

	utils.GetLoggerFromContext(c, h.logger).LogError(err, message, fields...)
}

// handleServiceError maps domain failures onto HTTP status codes. Policy and
// answer validation failures keep their structured details in the body.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var answerErrors *services.ValidationFailedError
	if errors.As(err, &answerErrors) {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Message: "Answer validation failed",
			Details: answerErrors.Errors,
			Code:    "validation_failed",
		})
		return
	}

	var policy *services.PolicyViolationError
	if errors.As(err, &policy) {
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: policy.Reason,
			Details: map[string]interface{}{
				"rule":   policy.Rule,
				"reason": policy.Reason,
			},
			Code: "policy_violation",
		})
		return
	}

	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrFormNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Form not found"})
	case errors.Is(err, services.ErrSubmissionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Submission not found"})
	case errors.Is(err, services.ErrCampaignNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Campaign not found"})
	case services.IsNotFound(err):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Resource not found"})
	case errors.Is(err, services.ErrEditNotAllowed):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Submission can no longer be edited",
			Code:    "edit_not_allowed",
		})
	case errors.Is(err, services.ErrAlreadySubmitted):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Submission has already been submitted",
			Code:    "already_submitted",
		})
	case errors.Is(err, apperrors.ErrCommitConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Message: "Submission conflicts with a concurrent request"})
	case errors.Is(err, services.ErrInvalidArgument):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request",
			Details: err.Error(),
		})
	default:
		h.LogError(c, err, "Unhandled service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}

// HealthCheck reports liveness
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "survey-service",
	})
}
