package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestPolicyViolationError(t *testing.T) {
	err := NewPolicyViolation(RuleClosed, "form closed at 2025-01-01T00:00:00Z")

	expected := "policy violation (closed): form closed at 2025-01-01T00:00:00Z"
	if err.Error() != expected {
		t.Errorf("Expected '%s', got '%s'", expected, err.Error())
	}

	var pv *PolicyViolationError
	wrapped := fmt.Errorf("start failed: %w", err)
	if !stderrors.As(wrapped, &pv) || pv.Rule != RuleClosed {
		t.Errorf("Expected wrapped error to unwrap to a closed policy violation")
	}
}

func TestValidationFailedError(t *testing.T) {
	err := &ValidationFailedError{Errors: AnswerErrors{
		{QuestionID: 1, Code: CodeRequired, Message: "answer is required"},
		{QuestionID: 3, Code: CodeInvalidOption, Message: "option 99 is not offered"},
	}}

	expected := "answer validation failed: q1:required, q3:invalid_option"
	if err.Error() != expected {
		t.Errorf("Expected '%s', got '%s'", expected, err.Error())
	}

	codes := err.Errors.Codes()
	if len(codes) != 2 || codes[0] != CodeRequired || codes[1] != CodeInvalidOption {
		t.Errorf("Unexpected codes %v", codes)
	}

	if got := err.Errors.ForQuestion(3); len(got) != 1 || got[0].Code != CodeInvalidOption {
		t.Errorf("Expected one invalid_option error for question 3, got %v", got)
	}

	empty := &ValidationFailedError{}
	if empty.Error() != "answer validation failed" {
		t.Errorf("Unexpected message for empty error: %s", empty.Error())
	}
}

func TestCommitConflictError(t *testing.T) {
	err := fmt.Errorf("save: %w", &CommitConflictError{Rule: RuleLimitReached})

	if !stderrors.Is(err, ErrCommitConflict) {
		t.Errorf("Expected commit conflict to match ErrCommitConflict")
	}

	var cc *CommitConflictError
	if !stderrors.As(err, &cc) || cc.Rule != RuleLimitReached {
		t.Errorf("Expected conflict rule limit_reached")
	}
}

func TestSentinelWrappers(t *testing.T) {
	if err := NotFoundf("submission %d", 7); !stderrors.Is(err, ErrNotFound) {
		t.Errorf("Expected NotFoundf to wrap ErrNotFound, got %v", err)
	} else if err.Error() != "submission 7: resource not found" {
		t.Errorf("Unexpected message: %s", err.Error())
	}

	if err := InvalidArgumentf("email is required"); !stderrors.Is(err, ErrInvalidArgument) {
		t.Errorf("Expected InvalidArgumentf to wrap ErrInvalidArgument, got %v", err)
	}
}
