package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/survey-service/internal/models"
	"github.com/SAP-F-2025/survey-service/internal/repositories"
	"github.com/SAP-F-2025/survey-service/internal/services"
	"github.com/SAP-F-2025/survey-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type SubmissionHandler struct {
	BaseHandler
	submissionService services.SubmissionService
}

func NewSubmissionHandler(submissionService services.SubmissionService, logger utils.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		BaseHandler:       NewBaseHandler(logger),
		submissionService: submissionService,
	}
}

// StartSubmission opens a draft submission for a form
// @Summary Start submission
// @Tags submissions
// @Accept json
// @Produce json
// @Param form_id path uint true "Form ID"
// @Param request body services.StartSubmissionRequest true "Respondent"
// @Success 201 {object} SubmissionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /forms/{form_id}/submissions [post]
func (h *SubmissionHandler) StartSubmission(c *gin.Context) {
	formID := parseIDParam(c, "form_id")
	if formID == 0 {
		return
	}

	var req services.StartSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	req.FormID = formID
	req.SourceIP = c.ClientIP()

	h.LogRequest(c, "Starting submission", "form_id", formID, "respondent_type", req.Respondent.Type)

	submission, err := h.submissionService.Start(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewSubmissionResponse(submission))
}

// ListSubmissions lists the submissions of a form
// @Summary List submissions
// @Tags submissions
// @Produce json
// @Param form_id path uint true "Form ID"
// @Param status query string false "DRAFT or SUBMITTED"
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} SubmissionListResponse
// @Router /forms/{form_id}/submissions [get]
func (h *SubmissionHandler) ListSubmissions(c *gin.Context) {
	formID := parseIDParam(c, "form_id")
	if formID == 0 {
		return
	}

	var filters repositories.SubmissionFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid query parameters",
			Details: err.Error(),
		})
		return
	}
	filters.FormID = formID
	filters = filters.Normalize()

	submissions, total, err := h.submissionService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	resp := SubmissionListResponse{
		Submissions: make([]SubmissionResponse, 0, len(submissions)),
		Total:       total,
		Limit:       filters.Limit,
		Offset:      filters.Offset,
	}
	for _, s := range submissions {
		resp.Submissions = append(resp.Submissions, NewSubmissionResponse(s))
	}

	c.JSON(http.StatusOK, resp)
}

// GetSubmission retrieves a submission by ID
// @Summary Get submission
// @Tags submissions
// @Produce json
// @Param id path uint true "Submission ID"
// @Success 200 {object} SubmissionResponse
// @Failure 404 {object} ErrorResponse
// @Router /submissions/{id} [get]
func (h *SubmissionHandler) GetSubmission(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	submission, err := h.submissionService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, NewSubmissionResponse(submission))
}

// DeleteSubmission deletes a submission
// @Summary Delete submission
// @Tags submissions
// @Param id path uint true "Submission ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /submissions/{id} [delete]
func (h *SubmissionHandler) DeleteSubmission(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting submission", "submission_id", id)

	if err := h.submissionService.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// SaveChoiceAnswer upserts a choice answer on a draft
// @Summary Save choice answer
// @Tags answers
// @Accept json
// @Produce json
// @Param id path uint true "Submission ID"
// @Param request body services.SaveChoiceAnswerRequest true "Answer"
// @Success 200 {object} SubmissionResponse
// @Failure 409 {object} ErrorResponse
// @Router /submissions/{id}/answers/choice [post]
func (h *SubmissionHandler) SaveChoiceAnswer(c *gin.Context) {
	var req services.SaveChoiceAnswerRequest
	h.saveAnswer(c, &req, func(id uint) (*models.Submission, error) {
		return h.submissionService.SaveChoiceAnswer(c.Request.Context(), id, &req)
	})
}

// SaveTrueFalseAnswer upserts a true/false answer on a draft
// @Router /submissions/{id}/answers/true-false [post]
func (h *SubmissionHandler) SaveTrueFalseAnswer(c *gin.Context) {
	var req services.SaveTrueFalseAnswerRequest
	h.saveAnswer(c, &req, func(id uint) (*models.Submission, error) {
		return h.submissionService.SaveTrueFalseAnswer(c.Request.Context(), id, &req)
	})
}

// SaveTextAnswer upserts a text answer on a draft
// @Router /submissions/{id}/answers/text [post]
func (h *SubmissionHandler) SaveTextAnswer(c *gin.Context) {
	var req services.SaveTextAnswerRequest
	h.saveAnswer(c, &req, func(id uint) (*models.Submission, error) {
		return h.submissionService.SaveTextAnswer(c.Request.Context(), id, &req)
	})
}

// SaveMatchingAnswer upserts a matching answer on a draft
// @Router /submissions/{id}/answers/matching [post]
func (h *SubmissionHandler) SaveMatchingAnswer(c *gin.Context) {
	var req services.SaveMatchingAnswerRequest
	h.saveAnswer(c, &req, func(id uint) (*models.Submission, error) {
		return h.submissionService.SaveMatchingAnswer(c.Request.Context(), id, &req)
	})
}

// RemoveAnswer deletes one answer from a draft
// @Summary Remove answer
// @Tags answers
// @Param id path uint true "Submission ID"
// @Param question_id path uint true "Question ID"
// @Success 200 {object} SubmissionResponse
// @Router /submissions/{id}/answers/{question_id} [delete]
func (h *SubmissionHandler) RemoveAnswer(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}
	questionID := parseIDParam(c, "question_id")
	if questionID == 0 {
		return
	}

	submission, err := h.submissionService.RemoveAnswer(c.Request.Context(), id, questionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, NewSubmissionResponse(submission))
}

// SubmitSubmission validates every answer and finalizes the submission
// @Summary Submit
// @Tags submissions
// @Produce json
// @Param id path uint true "Submission ID"
// @Success 200 {object} SubmissionResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /submissions/{id}/submit [post]
func (h *SubmissionHandler) SubmitSubmission(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Submitting submission", "submission_id", id)

	submission, err := h.submissionService.Submit(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, NewSubmissionResponse(submission))
}

func (h *SubmissionHandler) saveAnswer(c *gin.Context, req interface{}, save func(id uint) (*models.Submission, error)) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	submission, err := save(id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, NewSubmissionResponse(submission))
}
