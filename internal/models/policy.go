package models

import (
	"fmt"
	"time"

	apperrors "github.com/SAP-F-2025/survey-service/internal/errors"
)

type ResponseLimitMode string

const (
	LimitUnlimited        ResponseLimitMode = "UNLIMITED"
	LimitOnePerRespondent ResponseLimitMode = "ONE_PER_RESPONDENT"
	LimitLimitedN         ResponseLimitMode = "LIMITED_N"
)

// FormPolicies is the read-only availability and limit configuration of a form.
type FormPolicies struct {
	FormID                uint              `json:"form_id"`
	OpenAt                *time.Time        `json:"open_at,omitempty"`
	CloseAt               *time.Time        `json:"close_at,omitempty"`
	AnonymousAllowed      bool              `json:"anonymous_allowed"`
	AllowEditBeforeSubmit bool              `json:"allow_edit_before_submit"`
	LimitMode             ResponseLimitMode `json:"limit_mode"`
	LimitedN              *int              `json:"limited_n,omitempty"`
}

// CheckWindow rejects now when it falls outside [OpenAt, CloseAt].
func (p FormPolicies) CheckWindow(now time.Time) error {
	if p.OpenAt != nil && now.Before(*p.OpenAt) {
		return apperrors.NewPolicyViolation(apperrors.RuleNotOpenYet,
			fmt.Sprintf("form %d opens at %s", p.FormID, p.OpenAt.UTC().Format(time.RFC3339)))
	}
	if p.CloseAt != nil && now.After(*p.CloseAt) {
		return apperrors.NewPolicyViolation(apperrors.RuleClosed,
			fmt.Sprintf("form %d closed at %s", p.FormID, p.CloseAt.UTC().Format(time.RFC3339)))
	}
	return nil
}

// SubmitLimit returns the response cap when the form is LIMITED_N.
func (p FormPolicies) SubmitLimit() (int, bool) {
	if p.LimitMode != LimitLimitedN || p.LimitedN == nil {
		return 0, false
	}
	return *p.LimitedN, true
}

// SubmitGuard is what a store must enforce atomically when committing a submit.
type SubmitGuard struct {
	OnePerRespondent bool
	Limit            *int
}

func (p FormPolicies) Guard() SubmitGuard {
	g := SubmitGuard{OnePerRespondent: p.LimitMode == LimitOnePerRespondent}
	if n, ok := p.SubmitLimit(); ok {
		g.Limit = &n
	}
	return g
}
