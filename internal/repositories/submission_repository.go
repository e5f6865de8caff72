package repositories

import (
	"context"

	"github.com/SAP-F-2025/survey-service/internal/models"
)

// SubmissionRepository persists submissions and answers.
type SubmissionRepository interface {
	// Basic CRUD operations
	Save(ctx context.Context, submission *models.Submission) (*models.Submission, error)
	GetByID(ctx context.Context, id uint) (*models.Submission, error)
	Delete(ctx context.Context, id uint) error

	// SaveSubmitted persists a submission that has just been marked submitted.
	// The guard is enforced atomically with the write; a lost race returns
	// an error matching errors.ErrCommitConflict.
	SaveSubmitted(ctx context.Context, submission *models.Submission, guard models.SubmitGuard) (*models.Submission, error)

	// Query operations
	List(ctx context.Context, filters SubmissionFilters) ([]*models.Submission, int64, error)
	ListByForm(ctx context.Context, formID uint) ([]*models.Submission, error)

	// Policy checks
	ExistsSubmittedByRespondent(ctx context.Context, formID uint, kind models.RespondentType, value string) (bool, error)
	CountSubmittedByForm(ctx context.Context, formID uint) (int, error)
}
