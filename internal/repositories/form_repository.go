package repositories

import (
	"context"

	"github.com/SAP-F-2025/survey-service/internal/models"
)

// FormRepository exposes the form configuration the submission engine reads.
type FormRepository interface {
	LoadFormPolicies(ctx context.Context, formID uint) (*models.FormPolicies, error)
	BuildQuestionSnapshots(ctx context.Context, formID uint) (*models.SnapshotSet, error)
}

// SnapshotSource builds the question snapshots of a form.
type SnapshotSource interface {
	BuildQuestionSnapshots(ctx context.Context, formID uint) (*models.SnapshotSet, error)
}

type CampaignRepository interface {
	ListFormIDsByCampaign(ctx context.Context, campaignID uint) ([]uint, error)
}
