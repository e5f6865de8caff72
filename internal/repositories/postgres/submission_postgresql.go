package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	apperrors "github.com/SAP-F-2025/survey-service/internal/errors"
	"github.com/SAP-F-2025/survey-service/internal/models"
	"github.com/SAP-F-2025/survey-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SubmissionPostgreSQL struct {
	db *gorm.DB
}

func NewSubmissionPostgreSQL(db *gorm.DB) repositories.SubmissionRepository {
	return &SubmissionPostgreSQL{db: db}
}

// Save upserts a draft and replaces its answers. Rows that are already
// SUBMITTED are left untouched and ErrEditNotAllowed is returned.
func (s *SubmissionPostgreSQL) Save(ctx context.Context, submission *models.Submission) (*models.Submission, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.saveTx(tx, submission, apperrors.ErrEditNotAllowed)
	})
	if err != nil {
		return nil, err
	}
	return submission, nil
}

// SaveSubmitted writes the submission, then claims the respondent identity
// and the response slot inside the same transaction.
func (s *SubmissionPostgreSQL) SaveSubmitted(ctx context.Context, submission *models.Submission, guard models.SubmitGuard) (*models.Submission, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.saveTx(tx, submission, apperrors.ErrAlreadySubmitted); err != nil {
			return err
		}
		if guard.OnePerRespondent {
			if err := s.claimRespondent(tx, submission); err != nil {
				return err
			}
		}
		if guard.Limit != nil {
			return s.claimSlot(tx, submission, *guard.Limit)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return submission, nil
}

func (s *SubmissionPostgreSQL) claimRespondent(tx *gorm.DB, submission *models.Submission) error {
	kind, value, ok := submission.Respondent().Identity()
	if !ok {
		return nil
	}
	claim := models.RespondentClaim{
		FormID:        submission.FormID(),
		IdentityKind:  kind,
		IdentityValue: value,
		SubmissionID:  submission.ID(),
	}
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&claim)
	if res.Error != nil {
		return fmt.Errorf("failed to claim respondent: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return &apperrors.CommitConflictError{Rule: apperrors.RuleDuplicateRespondent}
	}
	return nil
}

func (s *SubmissionPostgreSQL) claimSlot(tx *gorm.DB, submission *models.Submission, limit int) error {
	var current int64
	if err := tx.Model(&models.SubmissionRecord{}).
		Where("form_id = ? AND status = ? AND id <> ?", submission.FormID(), models.SubmissionSubmitted, submission.ID()).
		Count(&current).Error; err != nil {
		return fmt.Errorf("failed to count submitted responses: %w", err)
	}

	seed := models.FormResponseCounter{FormID: submission.FormID(), Submitted: int(current), UpdatedAt: time.Now()}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return fmt.Errorf("failed to seed response counter: %w", err)
	}

	res := tx.Model(&models.FormResponseCounter{}).
		Where("form_id = ? AND submitted < ?", submission.FormID(), limit).
		Updates(map[string]interface{}{
			"submitted":  gorm.Expr("submitted + 1"),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to increment response counter: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return &apperrors.CommitConflictError{Rule: apperrors.RuleLimitReached}
	}
	return nil
}

// saveTx only updates rows still in DRAFT; frozen is returned when the stored
// row has already been submitted.
func (s *SubmissionPostgreSQL) saveTx(tx *gorm.DB, submission *models.Submission, frozen error) error {
	rec, err := toSubmissionRecord(submission)
	if err != nil {
		return err
	}
	answers := rec.Answers
	rec.Answers = nil

	if rec.ID == 0 {
		if err := tx.Omit(clause.Associations).Create(rec).Error; err != nil {
			return fmt.Errorf("failed to create submission: %w", err)
		}
	} else if err := s.updateDraft(tx, rec, frozen); err != nil {
		return err
	}

	if err := tx.Where("submission_id = ?", rec.ID).Delete(&models.SubmissionAnswerRecord{}).Error; err != nil {
		return fmt.Errorf("failed to clear answers of submission %d: %w", rec.ID, err)
	}
	if len(answers) > 0 {
		for i := range answers {
			answers[i].SubmissionID = rec.ID
		}
		if err := tx.Create(&answers).Error; err != nil {
			return fmt.Errorf("failed to write answers of submission %d: %w", rec.ID, err)
		}
	}

	submission.AssignID(rec.ID)
	return nil
}

func (s *SubmissionPostgreSQL) updateDraft(tx *gorm.DB, rec *models.SubmissionRecord, frozen error) error {
	res := tx.Model(&models.SubmissionRecord{}).
		Where("id = ? AND status = ?", rec.ID, models.SubmissionDraft).
		Updates(map[string]interface{}{
			"source_ip":    rec.SourceIP,
			"status":       rec.Status,
			"submitted_at": rec.SubmittedAt,
			"updated_at":   rec.UpdatedAt,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update submission %d: %w", rec.ID, res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := tx.Model(&models.SubmissionRecord{}).Where("id = ?", rec.ID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check submission %d: %w", rec.ID, err)
	}
	if count == 0 {
		return apperrors.NotFoundf("submission %d", rec.ID)
	}
	return frozen
}

func (s *SubmissionPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Submission, error) {
	var rec models.SubmissionRecord
	if err := s.db.WithContext(ctx).Preload("Answers").First(&rec, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundf("submission %d", id)
		}
		return nil, fmt.Errorf("failed to load submission %d: %w", id, err)
	}
	return toSubmission(&rec)
}

// Delete removes the submission and releases any policy claims it held
func (s *SubmissionPostgreSQL) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec models.SubmissionRecord
		if err := tx.First(&rec, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFoundf("submission %d", id)
			}
			return fmt.Errorf("failed to load submission %d: %w", id, err)
		}

		if err := tx.Where("submission_id = ?", id).Delete(&models.SubmissionAnswerRecord{}).Error; err != nil {
			return fmt.Errorf("failed to delete answers of submission %d: %w", id, err)
		}
		if err := tx.Where("submission_id = ?", id).Delete(&models.RespondentClaim{}).Error; err != nil {
			return fmt.Errorf("failed to release respondent claim: %w", err)
		}
		if rec.Status == models.SubmissionSubmitted {
			if err := tx.Model(&models.FormResponseCounter{}).
				Where("form_id = ? AND submitted > 0", rec.FormID).
				Update("submitted", gorm.Expr("submitted - 1")).Error; err != nil {
				return fmt.Errorf("failed to release response slot: %w", err)
			}
		}
		return tx.Delete(&models.SubmissionRecord{}, id).Error
	})
}

func (s *SubmissionPostgreSQL) List(ctx context.Context, filters repositories.SubmissionFilters) ([]*models.Submission, int64, error) {
	filters = filters.Normalize()
	var recs []models.SubmissionRecord
	var total int64

	// apply filter first
	query := s.db.WithContext(ctx).Model(&models.SubmissionRecord{})
	if filters.FormID != 0 {
		query = query.Where("form_id = ?", filters.FormID)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count submissions: %w", err)
	}

	// then apply pagination and sorting
	order := fmt.Sprintf("%s %s, id %s", filters.SortBy, filters.SortOrder, filters.SortOrder)
	if err := query.Order(order).Limit(filters.Limit).Offset(filters.Offset).
		Preload("Answers").Find(&recs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list submissions: %w", err)
	}

	out, err := toSubmissions(recs)
	return out, total, err
}

func (s *SubmissionPostgreSQL) ListByForm(ctx context.Context, formID uint) ([]*models.Submission, error) {
	var recs []models.SubmissionRecord
	if err := s.db.WithContext(ctx).
		Where("form_id = ?", formID).
		Order("id ASC").
		Preload("Answers").
		Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to list submissions of form %d: %w", formID, err)
	}
	return toSubmissions(recs)
}

func (s *SubmissionPostgreSQL) ExistsSubmittedByRespondent(ctx context.Context, formID uint, kind models.RespondentType, value string) (bool, error) {
	query := s.db.WithContext(ctx).Model(&models.SubmissionRecord{}).
		Where("form_id = ? AND status = ?", formID, models.SubmissionSubmitted)

	switch kind {
	case models.RespondentUser:
		userID, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return false, apperrors.InvalidArgumentf("user identity %q is not numeric", value)
		}
		query = query.Where("respondent_user_id = ?", uint(userID))
	case models.RespondentEmail:
		query = query.Where("respondent_email = ?", value)
	case models.RespondentCode:
		query = query.Where("respondent_code = ?", value)
	default:
		return false, nil
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check respondent: %w", err)
	}
	return count > 0, nil
}

func (s *SubmissionPostgreSQL) CountSubmittedByForm(ctx context.Context, formID uint) (int, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.SubmissionRecord{}).
		Where("form_id = ? AND status = ?", formID, models.SubmissionSubmitted).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count submissions of form %d: %w", formID, err)
	}
	return int(count), nil
}

func toSubmissions(recs []models.SubmissionRecord) ([]*models.Submission, error) {
	out := make([]*models.Submission, 0, len(recs))
	for i := range recs {
		sub, err := toSubmission(&recs[i])
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, nil
}
