package postgres

import (
	"encoding/json"
	"fmt"

	"github.com/SAP-F-2025/survey-service/internal/models"
	"gorm.io/datatypes"
)

// answerPayload is the jsonb body of a submission_answers row.
type answerPayload struct {
	SelectedOptionIDs []uint                `json:"selected_option_ids,omitempty"`
	Value             *bool                 `json:"value,omitempty"`
	Text              *string               `json:"text,omitempty"`
	Pairs             []models.MatchingPair `json:"pairs,omitempty"`
}

func toSubmissionRecord(s *models.Submission) (*models.SubmissionRecord, error) {
	r := s.Respondent()
	rec := &models.SubmissionRecord{
		ID:             s.ID(),
		FormID:         s.FormID(),
		RespondentType: r.Type(),
		SourceIP:       s.SourceIP(),
		Status:         s.Status(),
		CreatedAt:      s.CreatedAt(),
		UpdatedAt:      s.UpdatedAt(),
		SubmittedAt:    s.SubmittedAt(),
	}
	switch r.Type() {
	case models.RespondentUser:
		id, _ := r.UserID()
		rec.RespondentUserID = &id
	case models.RespondentEmail:
		email := r.Email()
		rec.RespondentEmail = &email
	case models.RespondentCode:
		code := r.Code()
		rec.RespondentCode = &code
	}

	for _, a := range s.Answers() {
		ar, err := toAnswerRecord(s.ID(), a)
		if err != nil {
			return nil, err
		}
		rec.Answers = append(rec.Answers, ar)
	}
	return rec, nil
}

func toAnswerRecord(submissionID uint, a models.SubmissionAnswer) (models.SubmissionAnswerRecord, error) {
	var payload answerPayload
	switch v := a.(type) {
	case *models.ChoiceAnswer:
		payload.SelectedOptionIDs = v.SelectedOptionIDs()
	case *models.TrueFalseAnswer:
		value := v.Value()
		payload.Value = &value
	case *models.TextAnswer:
		text := v.Text()
		payload.Text = &text
	case *models.MatchingAnswer:
		payload.Pairs = v.Pairs()
	default:
		return models.SubmissionAnswerRecord{}, fmt.Errorf("unsupported answer type %T", a)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return models.SubmissionAnswerRecord{}, fmt.Errorf("failed to encode answer %d: %w", a.QuestionID(), err)
	}
	return models.SubmissionAnswerRecord{
		SubmissionID:    submissionID,
		QuestionID:      a.QuestionID(),
		QuestionVersion: a.QuestionVersion(),
		Kind:            a.Kind(),
		Payload:         datatypes.JSON(body),
	}, nil
}

func toSubmission(rec *models.SubmissionRecord) (*models.Submission, error) {
	respondent, err := toRespondent(rec)
	if err != nil {
		return nil, fmt.Errorf("submission %d: %w", rec.ID, err)
	}

	answers := make([]models.SubmissionAnswer, 0, len(rec.Answers))
	for _, ar := range rec.Answers {
		a, err := toAnswer(ar)
		if err != nil {
			return nil, fmt.Errorf("submission %d: %w", rec.ID, err)
		}
		answers = append(answers, a)
	}

	return models.RehydrateSubmission(models.SubmissionState{
		ID:          rec.ID,
		FormID:      rec.FormID,
		Respondent:  respondent,
		SourceIP:    rec.SourceIP,
		Answers:     answers,
		Status:      rec.Status,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
		SubmittedAt: rec.SubmittedAt,
	}), nil
}

func toRespondent(rec *models.SubmissionRecord) (models.Respondent, error) {
	spec := models.RespondentSpec{Type: rec.RespondentType, UserID: rec.RespondentUserID}
	if rec.RespondentEmail != nil {
		spec.Email = *rec.RespondentEmail
	}
	if rec.RespondentCode != nil {
		spec.Code = *rec.RespondentCode
	}
	return models.RespondentFromSpec(spec)
}

func toAnswer(ar models.SubmissionAnswerRecord) (models.SubmissionAnswer, error) {
	var payload answerPayload
	if len(ar.Payload) > 0 {
		if err := json.Unmarshal(ar.Payload, &payload); err != nil {
			return nil, fmt.Errorf("failed to decode answer %d: %w", ar.QuestionID, err)
		}
	}

	switch ar.Kind {
	case models.KindChoice:
		return models.NewChoiceAnswer(ar.QuestionID, ar.QuestionVersion, payload.SelectedOptionIDs), nil
	case models.KindTrueFalse:
		return models.NewTrueFalseAnswer(ar.QuestionID, ar.QuestionVersion, payload.Value != nil && *payload.Value), nil
	case models.KindText:
		text := ""
		if payload.Text != nil {
			text = *payload.Text
		}
		return models.NewTextAnswer(ar.QuestionID, ar.QuestionVersion, text), nil
	case models.KindMatching:
		return models.NewMatchingAnswer(ar.QuestionID, ar.QuestionVersion, payload.Pairs), nil
	default:
		return nil, fmt.Errorf("answer %d has unknown kind %q", ar.QuestionID, ar.Kind)
	}
}
