package services

import (
	"errors"

	apperrors "github.com/SAP-F-2025/survey-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	ErrNotFound         = apperrors.ErrNotFound
	ErrEditNotAllowed   = apperrors.ErrEditNotAllowed
	ErrAlreadySubmitted = apperrors.ErrAlreadySubmitted
	ErrInvalidArgument  = apperrors.ErrInvalidArgument

	ErrFormNotFound       error = &notFoundError{resource: "form"}
	ErrSubmissionNotFound error = &notFoundError{resource: "submission"}
	ErrCampaignNotFound   error = &notFoundError{resource: "campaign"}
)

type notFoundError struct {
	resource string
}

func (e *notFoundError) Error() string { return e.resource + " not found" }

func (e *notFoundError) Is(target error) bool { return target == apperrors.ErrNotFound }

// ===== CUSTOM ERROR TYPES =====

type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors
type PolicyViolationError = apperrors.PolicyViolationError
type ValidationFailedError = apperrors.ValidationFailedError

// ===== ERROR HELPERS =====

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, apperrors.ErrNotFound)
}

// IsPolicyViolation checks if a form policy rejected the operation
func IsPolicyViolation(err error) bool {
	var pv *PolicyViolationError
	return errors.As(err, &pv)
}

// IsValidationFailed checks if answer validation rejected a submit
func IsValidationFailed(err error) bool {
	var vf *ValidationFailedError
	return errors.As(err, &vf)
}

// IsValidation checks if a request failed struct or argument validation
func IsValidation(err error) bool {
	if errors.Is(err, apperrors.ErrInvalidArgument) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

// IsConflict checks if the submission state forbids the operation
func IsConflict(err error) bool {
	return errors.Is(err, apperrors.ErrEditNotAllowed) ||
		errors.Is(err, apperrors.ErrAlreadySubmitted) ||
		errors.Is(err, apperrors.ErrCommitConflict)
}
