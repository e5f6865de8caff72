package models

import (
	"strconv"
	"strings"

	apperrors "github.com/SAP-F-2025/survey-service/internal/errors"
)

type RespondentType string

const (
	RespondentAnonymous RespondentType = "ANONYMOUS"
	RespondentUser      RespondentType = "USER"
	RespondentEmail     RespondentType = "EMAIL"
	RespondentCode      RespondentType = "CODE"
)

// Respondent identifies who fills a submission. Exactly one variant is set.
type Respondent struct {
	kind   RespondentType
	userID uint
	email  string
	code   string
}

func AnonymousRespondent() Respondent {
	return Respondent{kind: RespondentAnonymous}
}

func UserRespondent(userID uint) (Respondent, error) {
	if userID == 0 {
		return Respondent{}, apperrors.InvalidArgumentf("user respondent requires a user id")
	}
	return Respondent{kind: RespondentUser, userID: userID}, nil
}

func EmailRespondent(email string) (Respondent, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return Respondent{}, apperrors.InvalidArgumentf("email respondent requires an email")
	}
	return Respondent{kind: RespondentEmail, email: email}, nil
}

func CodeRespondent(code string) (Respondent, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return Respondent{}, apperrors.InvalidArgumentf("code respondent requires a code")
	}
	return Respondent{kind: RespondentCode, code: code}, nil
}

func (r Respondent) Type() RespondentType { return r.kind }
func (r Respondent) IsAnonymous() bool    { return r.kind == RespondentAnonymous }
func (r Respondent) Email() string        { return r.email }
func (r Respondent) Code() string         { return r.code }

func (r Respondent) UserID() (uint, bool) {
	return r.userID, r.kind == RespondentUser
}

// Identity returns the key used for one-per-respondent checks.
// Anonymous respondents have no identity.
func (r Respondent) Identity() (RespondentType, string, bool) {
	switch r.kind {
	case RespondentUser:
		return r.kind, strconv.FormatUint(uint64(r.userID), 10), true
	case RespondentEmail:
		return r.kind, r.email, true
	case RespondentCode:
		return r.kind, r.code, true
	default:
		return r.kind, "", false
	}
}

// RespondentSpec is the wire form of a respondent.
type RespondentSpec struct {
	Type   RespondentType `json:"type" validate:"required,respondent_type"`
	UserID *uint          `json:"user_id,omitempty"`
	Email  string         `json:"email,omitempty" validate:"omitempty,email"`
	Code   string         `json:"code,omitempty" validate:"omitempty,max=100"`
}

// RespondentFromSpec builds the variant named by spec.Type from its payload.
func RespondentFromSpec(spec RespondentSpec) (Respondent, error) {
	switch spec.Type {
	case RespondentAnonymous:
		return AnonymousRespondent(), nil
	case RespondentUser:
		if spec.UserID == nil {
			return Respondent{}, apperrors.InvalidArgumentf("user respondent requires a user id")
		}
		return UserRespondent(*spec.UserID)
	case RespondentEmail:
		return EmailRespondent(spec.Email)
	case RespondentCode:
		return CodeRespondent(spec.Code)
	default:
		return Respondent{}, apperrors.InvalidArgumentf("unknown respondent type %q", spec.Type)
	}
}

// Spec converts the respondent back to its wire form.
func (r Respondent) Spec() RespondentSpec {
	spec := RespondentSpec{Type: r.kind}
	switch r.kind {
	case RespondentUser:
		id := r.userID
		spec.UserID = &id
	case RespondentEmail:
		spec.Email = r.email
	case RespondentCode:
		spec.Code = r.code
	}
	return spec
}
