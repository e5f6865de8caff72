package postgres

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/SAP-F-2025/survey-service/internal/errors"
	"github.com/SAP-F-2025/survey-service/internal/models"
	"github.com/SAP-F-2025/survey-service/internal/repositories"
	"gorm.io/gorm"
)

type FormPostgreSQL struct {
	db *gorm.DB
}

func NewFormPostgreSQL(db *gorm.DB) repositories.FormRepository {
	return &FormPostgreSQL{db: db}
}

// LoadFormPolicies reads the policy columns of a form
func (f *FormPostgreSQL) LoadFormPolicies(ctx context.Context, formID uint) (*models.FormPolicies, error) {
	var form models.Form
	if err := f.db.WithContext(ctx).First(&form, formID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundf("form %d", formID)
		}
		return nil, fmt.Errorf("failed to load form %d: %w", formID, err)
	}

	policies := form.Policies()
	return &policies, nil
}

// BuildQuestionSnapshots freezes every question of the form in position order
func (f *FormPostgreSQL) BuildQuestionSnapshots(ctx context.Context, formID uint) (*models.SnapshotSet, error) {
	var count int64
	if err := f.db.WithContext(ctx).Model(&models.Form{}).Where("id = ?", formID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check form %d: %w", formID, err)
	}
	if count == 0 {
		return nil, apperrors.NotFoundf("form %d", formID)
	}

	var questions []models.Question
	if err := f.db.WithContext(ctx).
		Where("form_id = ?", formID).
		Order("position ASC, id ASC").
		Preload("Options", byPosition).
		Preload("MatchingItems", byPosition).
		Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("failed to load questions of form %d: %w", formID, err)
	}

	snapshots := make([]*models.QuestionSnapshot, 0, len(questions))
	for _, q := range questions {
		s, err := q.Snapshot()
		if err != nil {
			return nil, fmt.Errorf("failed to snapshot question %d: %w", q.ID, err)
		}
		snapshots = append(snapshots, s)
	}
	return models.NewSnapshotSet(snapshots...), nil
}

func byPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC, id ASC")
}

type CampaignPostgreSQL struct {
	db *gorm.DB
}

func NewCampaignPostgreSQL(db *gorm.DB) repositories.CampaignRepository {
	return &CampaignPostgreSQL{db: db}
}

func (c *CampaignPostgreSQL) ListFormIDsByCampaign(ctx context.Context, campaignID uint) ([]uint, error) {
	var ids []uint
	if err := c.db.WithContext(ctx).Model(&models.Form{}).
		Where("campaign_id = ?", campaignID).
		Order("id ASC").
		Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to list forms of campaign %d: %w", campaignID, err)
	}
	return ids, nil
}
