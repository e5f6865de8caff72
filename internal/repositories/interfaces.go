package repositories

import (
	"errors"

	apperrors "github.com/SAP-F-2025/survey-service/internal/errors"
	"github.com/SAP-F-2025/survey-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type SubmissionFilters struct {
	FormID    uint                     `json:"form_id" form:"-"`
	Status    *models.SubmissionStatus `json:"status" form:"status" validate:"omitempty,submission_status"`
	Limit     int                      `json:"limit" form:"limit"`
	Offset    int                      `json:"offset" form:"offset"`
	SortBy    string                   `json:"sort_by" form:"sort_by"`       // "created_at", "updated_at", "submitted_at"
	SortOrder string                   `json:"sort_order" form:"sort_order"` // "asc", "desc"
}

// Normalize applies paging defaults.
func (f SubmissionFilters) Normalize() SubmissionFilters {
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Limit > 200 {
		f.Limit = 200
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	switch f.SortBy {
	case "created_at", "updated_at", "submitted_at":
	default:
		f.SortBy = "created_at"
	}
	if f.SortOrder != "asc" {
		f.SortOrder = "desc"
	}
	return f
}

// Repository groups every store the services depend on.
type Repository interface {
	Form() FormRepository
	Submission() SubmissionRepository
	Campaign() CampaignRepository
}

// ===== ERROR HELPERS =====

func IsNotFoundError(err error) bool {
	return errors.Is(err, apperrors.ErrNotFound)
}

func IsCommitConflict(err error) bool {
	return errors.Is(err, apperrors.ErrCommitConflict)
}
