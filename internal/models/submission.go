package models

import (
	"sort"
	"time"

	apperrors "github.com/SAP-F-2025/survey-service/internal/errors"
)

type SubmissionStatus string

const (
	SubmissionDraft     SubmissionStatus = "DRAFT"
	SubmissionSubmitted SubmissionStatus = "SUBMITTED"
)

// Submission is one respondent's answer set for one form.
// Status only moves from DRAFT to SUBMITTED; answers are frozen afterwards.
type Submission struct {
	id          uint
	formID      uint
	respondent  Respondent
	sourceIP    string
	status      SubmissionStatus
	createdAt   time.Time
	updatedAt   time.Time
	submittedAt *time.Time
	answers     map[uint]SubmissionAnswer
}

// NewSubmission opens a draft stamped with now.
func NewSubmission(formID uint, respondent Respondent, now time.Time) (*Submission, error) {
	if formID == 0 {
		return nil, apperrors.InvalidArgumentf("submission requires a form id")
	}
	if respondent.Type() == "" {
		return nil, apperrors.InvalidArgumentf("submission requires a respondent")
	}
	now = now.UTC()
	return &Submission{
		formID:     formID,
		respondent: respondent,
		status:     SubmissionDraft,
		createdAt:  now,
		updatedAt:  now,
		answers:    make(map[uint]SubmissionAnswer),
	}, nil
}

// SubmissionState is the persisted shape used to rehydrate a Submission.
type SubmissionState struct {
	ID          uint
	FormID      uint
	Respondent  Respondent
	SourceIP    string
	Answers     []SubmissionAnswer
	Status      SubmissionStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
	SubmittedAt *time.Time
}

// RehydrateSubmission restores a stored submission without running lifecycle checks.
func RehydrateSubmission(state SubmissionState) *Submission {
	s := &Submission{
		id:          state.ID,
		formID:      state.FormID,
		respondent:  state.Respondent,
		sourceIP:    state.SourceIP,
		status:      state.Status,
		createdAt:   state.CreatedAt,
		updatedAt:   state.UpdatedAt,
		submittedAt: copyTime(state.SubmittedAt),
		answers:     make(map[uint]SubmissionAnswer, len(state.Answers)),
	}
	if s.status == "" {
		s.status = SubmissionDraft
	}
	for _, a := range state.Answers {
		if a != nil {
			s.answers[a.QuestionID()] = a
		}
	}
	return s
}

func (s *Submission) ID() uint                 { return s.id }
func (s *Submission) FormID() uint             { return s.formID }
func (s *Submission) Respondent() Respondent   { return s.respondent }
func (s *Submission) SourceIP() string         { return s.sourceIP }
func (s *Submission) Status() SubmissionStatus { return s.status }
func (s *Submission) CreatedAt() time.Time     { return s.createdAt }
func (s *Submission) UpdatedAt() time.Time     { return s.updatedAt }
func (s *Submission) SubmittedAt() *time.Time  { return copyTime(s.submittedAt) }
func (s *Submission) IsSubmitted() bool        { return s.status == SubmissionSubmitted }

func (s *Submission) SetSourceIP(ip string) {
	s.sourceIP = ip
}

// AssignID is called by stores on first save. An assigned id never changes.
func (s *Submission) AssignID(id uint) {
	if s.id == 0 {
		s.id = id
	}
}

func (s *Submission) AddOrReplaceAnswer(answer SubmissionAnswer, now time.Time) error {
	if s.status == SubmissionSubmitted {
		return apperrors.ErrEditNotAllowed
	}
	if answer == nil || answer.QuestionID() == 0 {
		return apperrors.InvalidArgumentf("answer requires a question id")
	}
	s.answers[answer.QuestionID()] = answer
	s.touch(now)
	return nil
}

func (s *Submission) RemoveAnswer(questionID uint, now time.Time) error {
	if s.status == SubmissionSubmitted {
		return apperrors.ErrEditNotAllowed
	}
	delete(s.answers, questionID)
	s.touch(now)
	return nil
}

func (s *Submission) FindAnswer(questionID uint) (SubmissionAnswer, bool) {
	a, ok := s.answers[questionID]
	return a, ok
}

// Answers returns the answers ordered by question id.
func (s *Submission) Answers() []SubmissionAnswer {
	out := make([]SubmissionAnswer, 0, len(s.answers))
	for _, a := range s.answers {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuestionID() < out[j].QuestionID() })
	return out
}

func (s *Submission) AnswerCount() int {
	return len(s.answers)
}

// MarkSubmitted freezes the submission. now becomes both submittedAt and updatedAt.
func (s *Submission) MarkSubmitted(now time.Time) error {
	if s.status == SubmissionSubmitted {
		return apperrors.ErrAlreadySubmitted
	}
	now = now.UTC()
	s.status = SubmissionSubmitted
	s.submittedAt = &now
	s.updatedAt = now
	return nil
}

// Clone returns an independent copy. Answers are immutable and shared.
func (s *Submission) Clone() *Submission {
	c := *s
	c.submittedAt = copyTime(s.submittedAt)
	c.answers = make(map[uint]SubmissionAnswer, len(s.answers))
	for k, v := range s.answers {
		c.answers[k] = v
	}
	return &c
}

func (s *Submission) touch(now time.Time) {
	s.updatedAt = now.UTC()
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
