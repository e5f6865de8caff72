package models

import "time"

type ReportParams struct {
	IncludeDrafts bool `json:"include_drafts" form:"include_drafts"`
}

// QuestionStats holds the counters shared by every question report.
type QuestionStats struct {
	QuestionID    uint         `json:"question_id"`
	Kind          QuestionKind `json:"kind"`
	Required      bool         `json:"required"`
	AnsweredCount int          `json:"answered_count"`
	OmittedCount  int          `json:"omitted_count"`
}

// QuestionReport is one of ChoiceQuestionReport, TrueFalseQuestionReport,
// TextQuestionReport or MatchingQuestionReport.
type QuestionReport interface {
	Stats() QuestionStats
	isQuestionReport()
}

type ChoiceOptionStat struct {
	OptionID uint `json:"option_id"`
	Count    int  `json:"count"`
}

type ChoiceQuestionReport struct {
	QuestionStats
	SelectionMode SelectionMode      `json:"selection_mode"`
	MinSelections *int               `json:"min_selections,omitempty"`
	MaxSelections *int               `json:"max_selections,omitempty"`
	Options       []ChoiceOptionStat `json:"options"`
}

type TrueFalseQuestionReport struct {
	QuestionStats
	TrueCount  int `json:"true_count"`
	FalseCount int `json:"false_count"`
}

type TextQuestionReport struct {
	QuestionStats
	TextMode  TextMode `json:"text_mode"`
	MinLength *int     `json:"min_length,omitempty"`
	MaxLength *int     `json:"max_length,omitempty"`
}

type MatchingPairStat struct {
	LeftID  uint `json:"left_id"`
	RightID uint `json:"right_id"`
	Count   int  `json:"count"`
}

type MatchingQuestionReport struct {
	QuestionStats
	LeftIDs         []uint             `json:"left_ids"`
	RightIDs        []uint             `json:"right_ids"`
	PairFrequencies []MatchingPairStat `json:"pair_frequencies"`
}

func (r ChoiceQuestionReport) Stats() QuestionStats    { return r.QuestionStats }
func (r TrueFalseQuestionReport) Stats() QuestionStats { return r.QuestionStats }
func (r TextQuestionReport) Stats() QuestionStats      { return r.QuestionStats }
func (r MatchingQuestionReport) Stats() QuestionStats  { return r.QuestionStats }

func (ChoiceQuestionReport) isQuestionReport()    {}
func (TrueFalseQuestionReport) isQuestionReport() {}
func (TextQuestionReport) isQuestionReport()      {}
func (MatchingQuestionReport) isQuestionReport()  {}

type FormReport struct {
	FormID           uint             `json:"form_id"`
	TotalSubmissions int              `json:"total_submissions"`
	SubmittedCount   int              `json:"submitted_count"`
	DraftCount       int              `json:"draft_count"`
	CompletionRate   float64          `json:"completion_rate"`
	Questions        []QuestionReport `json:"questions"`
	GeneratedAt      time.Time        `json:"generated_at"`
}

type CampaignReport struct {
	CampaignID       uint         `json:"campaign_id"`
	FormsCount       int          `json:"forms_count"`
	TotalSubmissions int          `json:"total_submissions"`
	SubmittedCount   int          `json:"submitted_count"`
	DraftCount       int          `json:"draft_count"`
	CompletionRate   float64      `json:"completion_rate"`
	Forms            []FormReport `json:"forms"`
	GeneratedAt      time.Time    `json:"generated_at"`
}
