package events

import (
	"time"

	"github.com/SAP-F-2025/survey-service/internal/models"
	"github.com/google/uuid"
)

// EventType represents the lifecycle events emitted by the survey service
type EventType string

const (
	EventSubmissionStarted        EventType = "submission.started"
	EventSubmissionSubmitted      EventType = "submission.submitted"
	EventFormResponseLimitReached EventType = "form.response_limit_reached"
)

const (
	eventSource  = "survey-service"
	eventVersion = "1.0"
)

// SubmissionEvent is the envelope for every published event
type SubmissionEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

type SubmissionStartedEvent struct {
	SubmissionID uint                  `json:"submission_id"`
	FormID       uint                  `json:"form_id"`
	Respondent   models.RespondentSpec `json:"respondent"`
	SourceIP     string                `json:"source_ip,omitempty"`
	StartedAt    time.Time             `json:"started_at"`
}

type SubmissionSubmittedEvent struct {
	SubmissionID uint                  `json:"submission_id"`
	FormID       uint                  `json:"form_id"`
	Respondent   models.RespondentSpec `json:"respondent"`
	AnswerCount  int                   `json:"answer_count"`
	SubmittedAt  time.Time             `json:"submitted_at"`
}

type ResponseLimitReachedEvent struct {
	FormID     uint      `json:"form_id"`
	LimitedN   int       `json:"limited_n"`
	Submitted  int       `json:"submitted"`
	DetectedAt time.Time `json:"detected_at"`
}

// Event factory functions

func NewSubmissionStartedEvent(s *models.Submission) *SubmissionEvent {
	return newEvent(EventSubmissionStarted, SubmissionStartedEvent{
		SubmissionID: s.ID(),
		FormID:       s.FormID(),
		Respondent:   s.Respondent().Spec(),
		SourceIP:     s.SourceIP(),
		StartedAt:    s.CreatedAt(),
	})
}

func NewSubmissionSubmittedEvent(s *models.Submission) *SubmissionEvent {
	submittedAt := s.UpdatedAt()
	if t := s.SubmittedAt(); t != nil {
		submittedAt = *t
	}
	return newEvent(EventSubmissionSubmitted, SubmissionSubmittedEvent{
		SubmissionID: s.ID(),
		FormID:       s.FormID(),
		Respondent:   s.Respondent().Spec(),
		AnswerCount:  s.AnswerCount(),
		SubmittedAt:  submittedAt,
	})
}

func NewResponseLimitReachedEvent(formID uint, limitedN, submitted int) *SubmissionEvent {
	return newEvent(EventFormResponseLimitReached, ResponseLimitReachedEvent{
		FormID:     formID,
		LimitedN:   limitedN,
		Submitted:  submitted,
		DetectedAt: time.Now().UTC(),
	})
}

func newEvent(eventType EventType, data interface{}) *SubmissionEvent {
	return &SubmissionEvent{
		ID:        GenerateEventID(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
}

// GenerateEventID returns a random event id
func GenerateEventID() string {
	return uuid.NewString()
}
