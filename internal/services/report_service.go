package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/survey-service/internal/models"
	"github.com/SAP-F-2025/survey-service/internal/repositories"
)

type reportService struct {
	repo       repositories.Repository
	snapshots  repositories.SnapshotSource
	calculator *reportCalculator
	logger     *slog.Logger
	opLogger   *ServiceLogger
}

// NewReportService builds reports from the repository. snapshots may be a
// cached source; when nil the form repository is used directly.
func NewReportService(repo repositories.Repository, snapshots repositories.SnapshotSource, logger *slog.Logger, clock Clock) ReportService {
	if snapshots == nil {
		snapshots = repo.Form()
	}
	return &reportService{
		repo:       repo,
		snapshots:  snapshots,
		calculator: newReportCalculator(clock),
		logger:     logger,
		opLogger:   NewServiceLogger(logger, "report"),
	}
}

func (s *reportService) GenerateFormReport(ctx context.Context, formID uint, params models.ReportParams) (report *models.FormReport, err error) {
	start := time.Now()
	defer func() {
		s.opLogger.LogOperation(ctx, "generate_form_report", formID, "form", time.Since(start), err)
	}()

	return s.formReport(ctx, formID, params)
}

func (s *reportService) GenerateCampaignReport(ctx context.Context, campaignID uint, params models.ReportParams) (report *models.CampaignReport, err error) {
	start := time.Now()
	defer func() {
		s.opLogger.LogOperation(ctx, "generate_campaign_report", campaignID, "campaign", time.Since(start), err)
	}()

	formIDs, err := s.repo.Campaign().ListFormIDsByCampaign(ctx, campaignID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCampaignNotFound
		}
		return nil, fmt.Errorf("failed to list campaign forms: %w", err)
	}

	forms := make([]models.FormReport, 0, len(formIDs))
	for _, formID := range formIDs {
		form, err := s.formReport(ctx, formID, params)
		if err != nil {
			return nil, fmt.Errorf("form %d: %w", formID, err)
		}
		forms = append(forms, *form)
	}

	s.logger.Debug("Campaign report aggregated", "campaign_id", campaignID, "forms_count", len(forms))
	return s.calculator.aggregateCampaign(campaignID, forms), nil
}

func (s *reportService) formReport(ctx context.Context, formID uint, params models.ReportParams) (*models.FormReport, error) {
	snapshots, err := s.snapshots.BuildQuestionSnapshots(ctx, formID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrFormNotFound
		}
		return nil, fmt.Errorf("failed to build question snapshots: %w", err)
	}

	submissions, err := s.repo.Submission().ListByForm(ctx, formID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}

	return s.calculator.computeFormReport(formID, snapshots, submissions, params), nil
}
