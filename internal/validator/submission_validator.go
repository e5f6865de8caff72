package validator

import (
	"fmt"
	"unicode/utf8"

	apperrors "github.com/SAP-F-2025/survey-service/internal/errors"
	"github.com/SAP-F-2025/survey-service/internal/models"
)

// SubmissionValidator checks a submission's answers against the current
// question snapshots. It collects every error instead of stopping at the first.
type SubmissionValidator struct{}

func NewSubmissionValidator() *SubmissionValidator {
	return &SubmissionValidator{}
}

// Validate runs the required-but-missing pass in snapshot order, then the
// per-answer pass in ascending question id order.
func (v *SubmissionValidator) Validate(submission *models.Submission, snapshots *models.SnapshotSet) AnswerErrors {
	var errs AnswerErrors

	for _, q := range snapshots.All() {
		if !q.Required() {
			continue
		}
		if _, ok := submission.FindAnswer(q.QuestionID()); !ok {
			errs = append(errs, answerError(q.QuestionID(), apperrors.CodeRequired, "answer is required"))
		}
	}

	for _, answer := range submission.Answers() {
		q, ok := snapshots.Get(answer.QuestionID())
		if !ok {
			errs = append(errs, answerError(answer.QuestionID(), apperrors.CodeUnknown,
				"question is not part of this form"))
			continue
		}
		errs = append(errs, v.validateAnswer(q, answer)...)
	}

	return errs
}

func (v *SubmissionValidator) validateAnswer(q *models.QuestionSnapshot, answer models.SubmissionAnswer) AnswerErrors {
	switch a := answer.(type) {
	case *models.ChoiceAnswer:
		if q.Kind() == models.KindChoice {
			return validateChoice(q, a)
		}
	case *models.TrueFalseAnswer:
		if q.Kind() == models.KindTrueFalse {
			return nil
		}
	case *models.TextAnswer:
		if q.Kind() == models.KindText {
			return validateText(q, a)
		}
	case *models.MatchingAnswer:
		if q.Kind() == models.KindMatching {
			return validateMatching(q, a)
		}
	}
	return AnswerErrors{answerError(q.QuestionID(), apperrors.CodeTypeMismatch,
		fmt.Sprintf("%s answer does not fit a %s question", answer.Kind(), q.Kind()))}
}

func validateChoice(q *models.QuestionSnapshot, a *models.ChoiceAnswer) AnswerErrors {
	id := q.QuestionID()
	selected := a.SelectedOptionIDs()

	for _, optionID := range selected {
		if !q.HasOption(optionID) {
			return AnswerErrors{answerError(id, apperrors.CodeInvalidOption,
				fmt.Sprintf("option %d is not offered by this question", optionID))}
		}
	}

	count := len(selected)
	if q.SelectionMode() != models.SelectionMulti {
		if q.Required() && count != 1 {
			return AnswerErrors{answerError(id, apperrors.CodeOutOfRange,
				fmt.Sprintf("exactly one option must be selected, got %d", count))}
		}
		if count > 1 {
			return AnswerErrors{answerError(id, apperrors.CodeOutOfRange,
				fmt.Sprintf("at most one option may be selected, got %d", count))}
		}
		return nil
	}

	var errs AnswerErrors
	minSel, maxSel := 0, q.OptionCount()
	if m := q.MinSelections(); m != nil {
		minSel = *m
	}
	if m := q.MaxSelections(); m != nil {
		maxSel = *m
	}
	if count < minSel {
		errs = append(errs, answerError(id, apperrors.CodeMinViolation,
			fmt.Sprintf("at least %d options must be selected, got %d", minSel, count)))
	}
	if count > maxSel {
		errs = append(errs, answerError(id, apperrors.CodeMaxViolation,
			fmt.Sprintf("at most %d options may be selected, got %d", maxSel, count)))
	}
	if q.Required() && count == 0 {
		errs = append(errs, answerError(id, apperrors.CodeRequired, "at least one option is required"))
	}
	return errs
}

// A blank answer to a required text question reports only "required";
// length bounds are not checked on top of it.
func validateText(q *models.QuestionSnapshot, a *models.TextAnswer) AnswerErrors {
	id := q.QuestionID()
	if q.Required() && a.IsBlank() {
		return AnswerErrors{answerError(id, apperrors.CodeRequired, "answer text is required")}
	}

	var errs AnswerErrors
	length := utf8.RuneCountInString(a.Text())
	if m := q.MinLength(); m != nil && length < *m {
		errs = append(errs, answerError(id, apperrors.CodeMinLength,
			fmt.Sprintf("text must be at least %d characters, got %d", *m, length)))
	}
	if m := q.MaxLength(); m != nil && length > *m {
		errs = append(errs, answerError(id, apperrors.CodeMaxLength,
			fmt.Sprintf("text must be at most %d characters, got %d", *m, length)))
	}
	return errs
}

func validateMatching(q *models.QuestionSnapshot, a *models.MatchingAnswer) AnswerErrors {
	id := q.QuestionID()
	pairs := a.Pairs()

	for _, p := range pairs {
		if !q.HasLeft(p.LeftID) {
			return AnswerErrors{answerError(id, apperrors.CodeInvalidLeft,
				fmt.Sprintf("left item %d is not part of this question", p.LeftID))}
		}
		if !q.HasRight(p.RightID) {
			return AnswerErrors{answerError(id, apperrors.CodeInvalidRight,
				fmt.Sprintf("right item %d is not part of this question", p.RightID))}
		}
	}

	var errs AnswerErrors
	used := make(map[uint]struct{}, len(pairs))
	for _, p := range pairs {
		if _, dup := used[p.RightID]; dup {
			errs = append(errs, answerError(id, apperrors.CodeDuplicateRight,
				fmt.Sprintf("right item %d is matched more than once", p.RightID)))
			break
		}
		used[p.RightID] = struct{}{}
	}
	if q.Required() && len(pairs) == 0 {
		errs = append(errs, answerError(id, apperrors.CodeRequired, "at least one pair is required"))
	}
	return errs
}

func answerError(questionID uint, code, message string) AnswerError {
	return AnswerError{QuestionID: questionID, Code: code, Message: message}
}
