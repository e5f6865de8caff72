package postgres

import (
	"fmt"

	"github.com/SAP-F-2025/survey-service/internal/models"
	"github.com/SAP-F-2025/survey-service/internal/repositories"
	"gorm.io/gorm"
)

type Repository struct {
	form       repositories.FormRepository
	submission repositories.SubmissionRepository
	campaign   repositories.CampaignRepository
}

func NewRepository(db *gorm.DB) repositories.Repository {
	return &Repository{
		form:       NewFormPostgreSQL(db),
		submission: NewSubmissionPostgreSQL(db),
		campaign:   NewCampaignPostgreSQL(db),
	}
}

func (r *Repository) Form() repositories.FormRepository             { return r.form }
func (r *Repository) Submission() repositories.SubmissionRepository { return r.submission }
func (r *Repository) Campaign() repositories.CampaignRepository     { return r.campaign }

// AutoMigrate creates or updates every table the service owns
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Campaign{},
		&models.Form{},
		&models.Question{},
		&models.QuestionOption{},
		&models.MatchingItem{},
		&models.SubmissionRecord{},
		&models.SubmissionAnswerRecord{},
		&models.RespondentClaim{},
		&models.FormResponseCounter{},
	); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
