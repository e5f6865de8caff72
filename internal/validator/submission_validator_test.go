package validator

import (
	"testing"
	"time"

	apperrors "github.com/SAP-F-2025/survey-service/internal/errors"
	"github.com/SAP-F-2025/survey-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func draftWith(t *testing.T, answers ...models.SubmissionAnswer) *models.Submission {
	t.Helper()
	s, err := models.NewSubmission(1, models.AnonymousRespondent(), time.Now())
	require.NoError(t, err)
	for _, a := range answers {
		require.NoError(t, s.AddOrReplaceAnswer(a, time.Now()))
	}
	return s
}

func singleChoice(id uint, required bool, options ...uint) *models.QuestionSnapshot {
	return models.NewSnapshotBuilder().QuestionID(id).Kind(models.KindChoice).Required(required).
		Choice(models.SelectionSingle, nil, nil, options).MustBuild()
}

func multiChoice(id uint, required bool, minSel, maxSel *int, options ...uint) *models.QuestionSnapshot {
	return models.NewSnapshotBuilder().QuestionID(id).Kind(models.KindChoice).Required(required).
		Choice(models.SelectionMulti, minSel, maxSel, options).MustBuild()
}

func textQuestion(id uint, required bool, minLen, maxLen *int) *models.QuestionSnapshot {
	return models.NewSnapshotBuilder().QuestionID(id).Kind(models.KindText).Required(required).
		Text(models.TextShort, minLen, maxLen).MustBuild()
}

func matchingQuestion(id uint, required bool, left, right []uint) *models.QuestionSnapshot {
	return models.NewSnapshotBuilder().QuestionID(id).Kind(models.KindMatching).Required(required).
		Matching(left, right).MustBuild()
}

func TestSubmissionValidator_RequiredPass(t *testing.T) {
	v := NewSubmissionValidator()
	snapshots := models.NewSnapshotSet(
		textQuestion(3, true, nil, nil),
		singleChoice(1, true, 10, 11),
		models.NewSnapshotBuilder().QuestionID(2).Kind(models.KindTrueFalse).MustBuild(),
	)

	errs := v.Validate(draftWith(t), snapshots)

	require.Len(t, errs, 2)
	assert.Equal(t, uint(3), errs[0].QuestionID)
	assert.Equal(t, uint(1), errs[1].QuestionID)
	assert.Equal(t, []string{apperrors.CodeRequired, apperrors.CodeRequired}, errs.Codes())
}

func TestSubmissionValidator_UnknownAndTypeMismatch(t *testing.T) {
	v := NewSubmissionValidator()
	snapshots := models.NewSnapshotSet(textQuestion(1, false, nil, nil))

	errs := v.Validate(draftWith(t,
		models.NewTrueFalseAnswer(1, nil, true),
		models.NewTextAnswer(42, nil, "stray"),
	), snapshots)

	require.Len(t, errs, 2)
	assert.Equal(t, apperrors.AnswerError{QuestionID: 1, Code: apperrors.CodeTypeMismatch,
		Message: "TRUE_FALSE answer does not fit a TEXT question"}, errs[0])
	assert.Equal(t, uint(42), errs[1].QuestionID)
	assert.Equal(t, apperrors.CodeUnknown, errs[1].Code)
}

func TestSubmissionValidator_SingleChoice(t *testing.T) {
	v := NewSubmissionValidator()

	tests := []struct {
		name     string
		required bool
		selected []uint
		want     []string
	}{
		{"required none", true, nil, []string{apperrors.CodeOutOfRange}},
		{"required two", true, []uint{10, 11}, []string{apperrors.CodeOutOfRange}},
		{"required one", true, []uint{11}, nil},
		{"optional none", false, nil, nil},
		{"optional two", false, []uint{10, 12}, []string{apperrors.CodeOutOfRange}},
		{"invalid option short-circuits", true, []uint{10, 99}, []string{apperrors.CodeInvalidOption}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snapshots := models.NewSnapshotSet(singleChoice(1, tt.required, 10, 11, 12))
			errs := v.Validate(draftWith(t, models.NewChoiceAnswer(1, nil, tt.selected)), snapshots)
			if tt.want == nil {
				assert.Empty(t, errs)
				return
			}
			assert.Equal(t, tt.want, errs.Codes())
		})
	}
}

func TestSubmissionValidator_MultiChoice(t *testing.T) {
	v := NewSubmissionValidator()

	tests := []struct {
		name     string
		required bool
		min, max *int
		selected []uint
		want     []string
	}{
		{"min 1 none", false, models.IntPtr(1), models.IntPtr(2), nil, []string{apperrors.CodeMinViolation}},
		{"max 2 three", false, models.IntPtr(1), models.IntPtr(2), []uint{1, 2, 3}, []string{apperrors.CodeMaxViolation}},
		{"one selected", false, models.IntPtr(1), models.IntPtr(2), []uint{2}, nil},
		{"two selected", false, models.IntPtr(1), models.IntPtr(2), []uint{1, 3}, nil},
		{"required none with min", true, models.IntPtr(1), nil, nil,
			[]string{apperrors.CodeMinViolation, apperrors.CodeRequired}},
		{"required none no bounds", true, nil, nil, nil, []string{apperrors.CodeRequired}},
		{"max defaults to option count", false, nil, nil, []uint{1, 2, 3}, nil},
		{"invalid option", false, nil, nil, []uint{1, 7}, []string{apperrors.CodeInvalidOption}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snapshots := models.NewSnapshotSet(multiChoice(1, tt.required, tt.min, tt.max, 1, 2, 3))
			errs := v.Validate(draftWith(t, models.NewChoiceAnswer(1, nil, tt.selected)), snapshots)
			if tt.want == nil {
				assert.Empty(t, errs)
				return
			}
			assert.Equal(t, tt.want, errs.Codes())
		})
	}
}

func TestSubmissionValidator_Text(t *testing.T) {
	v := NewSubmissionValidator()

	tests := []struct {
		name     string
		required bool
		text     string
		want     []string
	}{
		{"blank required reports required only", true, "", []string{apperrors.CodeRequired}},
		{"whitespace required", true, "   ", []string{apperrors.CodeRequired}},
		{"too short", true, "abc", []string{apperrors.CodeMinLength}},
		{"too long", false, "abcdefghijkl", []string{apperrors.CodeMaxLength}},
		{"optional blank still bounded", false, "", []string{apperrors.CodeMinLength}},
		{"within bounds", true, "hello", nil},
		{"counts characters not bytes", true, "héllo", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snapshots := models.NewSnapshotSet(textQuestion(1, tt.required, models.IntPtr(5), models.IntPtr(10)))
			errs := v.Validate(draftWith(t, models.NewTextAnswer(1, nil, tt.text)), snapshots)
			if tt.want == nil {
				assert.Empty(t, errs)
				return
			}
			assert.Equal(t, tt.want, errs.Codes())
		})
	}
}

func TestSubmissionValidator_Matching(t *testing.T) {
	v := NewSubmissionValidator()
	left, right := []uint{1, 2}, []uint{10, 20}

	tests := []struct {
		name     string
		required bool
		pairs    []models.MatchingPair
		want     []string
	}{
		{"duplicate right", false, []models.MatchingPair{{LeftID: 1, RightID: 10}, {LeftID: 2, RightID: 10}},
			[]string{apperrors.CodeDuplicateRight}},
		{"invalid left", false, []models.MatchingPair{{LeftID: 3, RightID: 10}, {LeftID: 1, RightID: 99}},
			[]string{apperrors.CodeInvalidLeft}},
		{"invalid right", false, []models.MatchingPair{{LeftID: 1, RightID: 30}},
			[]string{apperrors.CodeInvalidRight}},
		{"required empty", true, nil, []string{apperrors.CodeRequired}},
		{"valid", true, []models.MatchingPair{{LeftID: 1, RightID: 20}, {LeftID: 2, RightID: 10}}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snapshots := models.NewSnapshotSet(matchingQuestion(1, tt.required, left, right))
			errs := v.Validate(draftWith(t, models.NewMatchingAnswer(1, nil, tt.pairs)), snapshots)
			if tt.want == nil {
				assert.Empty(t, errs)
				return
			}
			assert.Equal(t, tt.want, errs.Codes())
		})
	}
}

func TestSubmissionValidator_AccumulatesAcrossAnswers(t *testing.T) {
	v := NewSubmissionValidator()
	snapshots := models.NewSnapshotSet(
		singleChoice(1, true, 10, 11),
		textQuestion(2, true, models.IntPtr(3), nil),
		matchingQuestion(3, false, []uint{1}, []uint{5}),
		models.NewSnapshotBuilder().QuestionID(4).Kind(models.KindTrueFalse).Required(true).MustBuild(),
	)

	errs := v.Validate(draftWith(t,
		models.NewChoiceAnswer(1, nil, []uint{12}),
		models.NewTextAnswer(2, nil, "ab"),
		models.NewMatchingAnswer(3, nil, []models.MatchingPair{{LeftID: 1, RightID: 6}}),
	), snapshots)

	assert.Equal(t, []string{
		apperrors.CodeRequired,
		apperrors.CodeInvalidOption,
		apperrors.CodeMinLength,
		apperrors.CodeInvalidRight,
	}, errs.Codes())
	assert.Equal(t, uint(4), errs[0].QuestionID)
}

func TestValidator_ValidateStruct(t *testing.T) {
	type request struct {
		Respondent models.RespondentType `json:"respondent" validate:"required,respondent_type"`
		OptionIDs  []uint                `json:"option_ids" validate:"unique_ids"`
	}

	v := New()
	assert.NoError(t, v.Validate(&request{Respondent: models.RespondentEmail, OptionIDs: []uint{1, 2}}))

	err := v.Validate(&request{Respondent: "ROBOT", OptionIDs: []uint{1, 1}})
	require.Error(t, err)
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs, 2)
	assert.Equal(t, "respondent", verrs[0].Field)
	assert.Equal(t, "respondent_type", verrs[0].Rule)
	assert.Equal(t, "option_ids", verrs[1].Field)
	assert.Equal(t, "unique_ids", verrs[1].Rule)
}
