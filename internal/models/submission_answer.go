package models

import "strings"

// SubmissionAnswer is one of ChoiceAnswer, TrueFalseAnswer, TextAnswer or MatchingAnswer.
type SubmissionAnswer interface {
	QuestionID() uint
	QuestionVersion() *int
	Kind() QuestionKind
	isSubmissionAnswer()
}

type answerBase struct {
	questionID      uint
	questionVersion *int
}

func (a answerBase) QuestionID() uint      { return a.questionID }
func (a answerBase) QuestionVersion() *int { return copyInt(a.questionVersion) }
func (answerBase) isSubmissionAnswer()     {}

type ChoiceAnswer struct {
	answerBase
	selected []uint
}

func NewChoiceAnswer(questionID uint, questionVersion *int, selectedOptionIDs []uint) *ChoiceAnswer {
	return &ChoiceAnswer{
		answerBase: answerBase{questionID: questionID, questionVersion: copyInt(questionVersion)},
		selected:   orderedSet(selectedOptionIDs),
	}
}

func (a *ChoiceAnswer) Kind() QuestionKind { return KindChoice }

func (a *ChoiceAnswer) SelectedOptionIDs() []uint {
	return append([]uint(nil), a.selected...)
}

type TrueFalseAnswer struct {
	answerBase
	value bool
}

func NewTrueFalseAnswer(questionID uint, questionVersion *int, value bool) *TrueFalseAnswer {
	return &TrueFalseAnswer{
		answerBase: answerBase{questionID: questionID, questionVersion: copyInt(questionVersion)},
		value:      value,
	}
}

func (a *TrueFalseAnswer) Kind() QuestionKind { return KindTrueFalse }
func (a *TrueFalseAnswer) Value() bool        { return a.value }

type TextAnswer struct {
	answerBase
	text string
}

func NewTextAnswer(questionID uint, questionVersion *int, text string) *TextAnswer {
	return &TextAnswer{
		answerBase: answerBase{questionID: questionID, questionVersion: copyInt(questionVersion)},
		text:       text,
	}
}

func (a *TextAnswer) Kind() QuestionKind { return KindText }
func (a *TextAnswer) Text() string       { return a.text }

// IsBlank reports whether the text is empty after trimming whitespace.
func (a *TextAnswer) IsBlank() bool {
	return strings.TrimSpace(a.text) == ""
}

type MatchingPair struct {
	LeftID  uint `json:"left_id" validate:"required"`
	RightID uint `json:"right_id" validate:"required"`
}

type MatchingAnswer struct {
	answerBase
	pairs []MatchingPair
}

func NewMatchingAnswer(questionID uint, questionVersion *int, pairs []MatchingPair) *MatchingAnswer {
	return &MatchingAnswer{
		answerBase: answerBase{questionID: questionID, questionVersion: copyInt(questionVersion)},
		pairs:      append([]MatchingPair(nil), pairs...),
	}
}

func (a *MatchingAnswer) Kind() QuestionKind { return KindMatching }

func (a *MatchingAnswer) Pairs() []MatchingPair {
	return append([]MatchingPair(nil), a.pairs...)
}
