package models

import (
	"time"

	"gorm.io/datatypes"
)

// Campaign groups forms for rollup reporting.
type Campaign struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null;size:200"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Forms []Form `json:"forms,omitempty" gorm:"foreignKey:CampaignID"`
}

type Form struct {
	ID                    uint              `json:"id" gorm:"primaryKey"`
	CampaignID            uint              `json:"campaign_id" gorm:"not null;index"`
	Title                 string            `json:"title" gorm:"not null;size:200"`
	AnonymousAllowed      bool              `json:"anonymous_allowed" gorm:"default:false"`
	AllowEditBeforeSubmit bool              `json:"allow_edit_before_submit" gorm:"default:true"`
	OpenAt                *time.Time        `json:"open_at"`
	CloseAt               *time.Time        `json:"close_at"`
	LimitMode             ResponseLimitMode `json:"limit_mode" gorm:"size:32;default:UNLIMITED"`
	LimitedN              *int              `json:"limited_n"`
	CreatedAt             time.Time         `json:"created_at"`
	UpdatedAt             time.Time         `json:"updated_at"`

	Questions []Question `json:"questions,omitempty" gorm:"foreignKey:FormID"`
}

func (f Form) Policies() FormPolicies {
	mode := f.LimitMode
	if mode == "" {
		mode = LimitUnlimited
	}
	return FormPolicies{
		FormID:                f.ID,
		OpenAt:                f.OpenAt,
		CloseAt:               f.CloseAt,
		AnonymousAllowed:      f.AnonymousAllowed,
		AllowEditBeforeSubmit: f.AllowEditBeforeSubmit,
		LimitMode:             mode,
		LimitedN:              f.LimitedN,
	}
}

type MatchingSide string

const (
	MatchingLeft  MatchingSide = "LEFT"
	MatchingRight MatchingSide = "RIGHT"
)

// Question is the live, editable question definition a snapshot is taken from.
type Question struct {
	ID            uint          `json:"id" gorm:"primaryKey"`
	FormID        uint          `json:"form_id" gorm:"not null;index"`
	Position      int           `json:"position" gorm:"not null;default:0"`
	Kind          QuestionKind  `json:"kind" gorm:"size:32;not null"`
	Prompt        string        `json:"prompt" gorm:"type:text"`
	Required      bool          `json:"required" gorm:"default:false"`
	SelectionMode SelectionMode `json:"selection_mode,omitempty" gorm:"size:16"`
	MinSelections *int          `json:"min_selections"`
	MaxSelections *int          `json:"max_selections"`
	TextMode      TextMode      `json:"text_mode,omitempty" gorm:"size:16"`
	MinLength     *int          `json:"min_length"`
	MaxLength     *int          `json:"max_length"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`

	Options       []QuestionOption `json:"options,omitempty" gorm:"foreignKey:QuestionID"`
	MatchingItems []MatchingItem   `json:"matching_items,omitempty" gorm:"foreignKey:QuestionID"`
}

type QuestionOption struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	QuestionID uint   `json:"question_id" gorm:"not null;index"`
	Position   int    `json:"position" gorm:"not null;default:0"`
	Label      string `json:"label" gorm:"size:500"`
}

type MatchingItem struct {
	ID         uint         `json:"id" gorm:"primaryKey"`
	QuestionID uint         `json:"question_id" gorm:"not null;index"`
	Side       MatchingSide `json:"side" gorm:"size:8;not null"`
	Position   int          `json:"position" gorm:"not null;default:0"`
	Label      string       `json:"label" gorm:"size:500"`
}

// Snapshot freezes the answerable shape of the question. Options and
// matching items must already be ordered by position.
func (q Question) Snapshot() (*QuestionSnapshot, error) {
	b := NewSnapshotBuilder().QuestionID(q.ID).Kind(q.Kind).Required(q.Required)
	switch q.Kind {
	case KindChoice:
		ids := make([]uint, 0, len(q.Options))
		for _, o := range q.Options {
			ids = append(ids, o.ID)
		}
		mode := q.SelectionMode
		if mode == "" {
			mode = SelectionSingle
		}
		b.Choice(mode, q.MinSelections, q.MaxSelections, ids)
	case KindText:
		mode := q.TextMode
		if mode == "" {
			mode = TextShort
		}
		b.Text(mode, q.MinLength, q.MaxLength)
	case KindMatching:
		var left, right []uint
		for _, item := range q.MatchingItems {
			if item.Side == MatchingLeft {
				left = append(left, item.ID)
			} else {
				right = append(right, item.ID)
			}
		}
		b.Matching(left, right)
	}
	return b.Build()
}

type SubmissionRecord struct {
	ID               uint             `json:"id" gorm:"primaryKey"`
	FormID           uint             `json:"form_id" gorm:"not null;index:idx_submissions_form_status"`
	RespondentType   RespondentType   `json:"respondent_type" gorm:"size:16;not null"`
	RespondentUserID *uint            `json:"respondent_user_id" gorm:"index"`
	RespondentEmail  *string          `json:"respondent_email" gorm:"size:320;index"`
	RespondentCode   *string          `json:"respondent_code" gorm:"size:100;index"`
	SourceIP         string           `json:"source_ip" gorm:"size:64"`
	Status           SubmissionStatus `json:"status" gorm:"size:16;not null;index:idx_submissions_form_status"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
	SubmittedAt      *time.Time       `json:"submitted_at"`

	Answers []SubmissionAnswerRecord `json:"answers" gorm:"foreignKey:SubmissionID;constraint:OnDelete:CASCADE"`
}

func (SubmissionRecord) TableName() string { return "submissions" }

type SubmissionAnswerRecord struct {
	ID              uint           `json:"id" gorm:"primaryKey"`
	SubmissionID    uint           `json:"submission_id" gorm:"not null;uniqueIndex:idx_submission_answers_question"`
	QuestionID      uint           `json:"question_id" gorm:"not null;uniqueIndex:idx_submission_answers_question"`
	QuestionVersion *int           `json:"question_version"`
	Kind            QuestionKind   `json:"kind" gorm:"size:32;not null"`
	Payload         datatypes.JSON `json:"payload" gorm:"type:jsonb"`
}

func (SubmissionAnswerRecord) TableName() string { return "submission_answers" }

// RespondentClaim is the unique commit-time marker for one-per-respondent forms.
type RespondentClaim struct {
	FormID        uint           `gorm:"primaryKey"`
	IdentityKind  RespondentType `gorm:"primaryKey;size:16"`
	IdentityValue string         `gorm:"primaryKey;size:320"`
	SubmissionID  uint           `gorm:"not null"`
	CreatedAt     time.Time
}

// FormResponseCounter is the atomic submitted counter for limited forms.
type FormResponseCounter struct {
	FormID    uint `gorm:"primaryKey;autoIncrement:false"`
	Submitted int  `gorm:"not null;default:0"`
	UpdatedAt time.Time
}
