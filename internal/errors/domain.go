package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound         = stderrors.New("resource not found")
	ErrEditNotAllowed   = stderrors.New("submission can no longer be edited")
	ErrAlreadySubmitted = stderrors.New("submission already submitted")
	ErrInvalidArgument  = stderrors.New("invalid argument")
	ErrCommitConflict   = stderrors.New("submission commit conflict")
)

// Policy rules reported by PolicyViolationError.
const (
	RuleNotOpenYet          = "not_open_yet"
	RuleClosed              = "closed"
	RuleAnonymousNotAllowed = "anonymous_not_allowed"
	RuleDuplicateRespondent = "duplicate_respondent"
	RuleLimitReached        = "limit_reached"
)

// Answer error codes reported by the submission validator.
const (
	CodeRequired       = "required"
	CodeUnknown        = "unknown"
	CodeInvalidOption  = "invalid_option"
	CodeOutOfRange     = "out_of_range"
	CodeMinViolation   = "min_violation"
	CodeMaxViolation   = "max_violation"
	CodeMinLength      = "min_length"
	CodeMaxLength      = "max_length"
	CodeInvalidLeft    = "invalid_left"
	CodeInvalidRight   = "invalid_right"
	CodeDuplicateRight = "duplicate_right"
	CodeTypeMismatch   = "type_mismatch"
)

// PolicyViolationError is returned when a form policy rejects a start or submit.
type PolicyViolationError struct {
	Rule   string `json:"rule"`
	Reason string `json:"reason"`
}

func (e *PolicyViolationError) Error() string {
	return fmt.Sprintf("policy violation (%s): %s", e.Rule, e.Reason)
}

func NewPolicyViolation(rule, reason string) *PolicyViolationError {
	return &PolicyViolationError{Rule: rule, Reason: reason}
}

// AnswerError describes one rejected answer.
type AnswerError struct {
	QuestionID uint   `json:"question_id"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

type AnswerErrors []AnswerError

// Codes returns the error codes in report order.
func (ae AnswerErrors) Codes() []string {
	codes := make([]string, 0, len(ae))
	for _, e := range ae {
		codes = append(codes, e.Code)
	}
	return codes
}

// ForQuestion returns the errors reported against one question.
func (ae AnswerErrors) ForQuestion(questionID uint) AnswerErrors {
	var out AnswerErrors
	for _, e := range ae {
		if e.QuestionID == questionID {
			out = append(out, e)
		}
	}
	return out
}

// ValidationFailedError carries every answer error found during submit.
type ValidationFailedError struct {
	Errors AnswerErrors `json:"errors"`
}

func (e *ValidationFailedError) Error() string {
	if len(e.Errors) == 0 {
		return "answer validation failed"
	}
	parts := make([]string, 0, len(e.Errors))
	for _, ae := range e.Errors {
		parts = append(parts, fmt.Sprintf("q%d:%s", ae.QuestionID, ae.Code))
	}
	return fmt.Sprintf("answer validation failed: %s", strings.Join(parts, ", "))
}

// CommitConflictError is raised by stores when a guarded submit loses a race.
type CommitConflictError struct {
	Rule string
}

func (e *CommitConflictError) Error() string {
	return fmt.Sprintf("%s: %s", ErrCommitConflict.Error(), e.Rule)
}

func (e *CommitConflictError) Unwrap() error {
	return ErrCommitConflict
}

// NotFoundf wraps ErrNotFound with a formatted message.
func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
}

// InvalidArgumentf wraps ErrInvalidArgument with a formatted message.
func InvalidArgumentf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
