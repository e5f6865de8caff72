package services

import (
	"context"

	"github.com/SAP-F-2025/survey-service/internal/models"
	"github.com/SAP-F-2025/survey-service/internal/repositories"
)

// ===== SERVICE INTERFACES =====

// SubmissionService drives the submission lifecycle from start to submit
type SubmissionService interface {
	// Lifecycle
	Start(ctx context.Context, req *StartSubmissionRequest) (*models.Submission, error)
	Submit(ctx context.Context, submissionID uint) (*models.Submission, error)

	// Draft editing
	SaveChoiceAnswer(ctx context.Context, submissionID uint, req *SaveChoiceAnswerRequest) (*models.Submission, error)
	SaveTrueFalseAnswer(ctx context.Context, submissionID uint, req *SaveTrueFalseAnswerRequest) (*models.Submission, error)
	SaveTextAnswer(ctx context.Context, submissionID uint, req *SaveTextAnswerRequest) (*models.Submission, error)
	SaveMatchingAnswer(ctx context.Context, submissionID uint, req *SaveMatchingAnswerRequest) (*models.Submission, error)
	RemoveAnswer(ctx context.Context, submissionID, questionID uint) (*models.Submission, error)

	// Queries
	GetByID(ctx context.Context, submissionID uint) (*models.Submission, error)
	List(ctx context.Context, filters repositories.SubmissionFilters) ([]*models.Submission, int64, error)
	Delete(ctx context.Context, submissionID uint) error
}

// ReportService aggregates submissions into form and campaign reports
type ReportService interface {
	GenerateFormReport(ctx context.Context, formID uint, params models.ReportParams) (*models.FormReport, error)
	GenerateCampaignReport(ctx context.Context, campaignID uint, params models.ReportParams) (*models.CampaignReport, error)
}

// ReportExportService renders reports as downloadable files
type ReportExportService interface {
	ExportFormReport(ctx context.Context, formID uint, params models.ReportParams, format string) (*ExportFile, error)
	ExportCampaignReport(ctx context.Context, campaignID uint, params models.ReportParams, format string) (*ExportFile, error)
}

// ServiceManager hands out every service the HTTP layer needs
type ServiceManager interface {
	Submission() SubmissionService
	Report() ReportService
	ReportExport() ReportExportService
}

type serviceManager struct {
	submission   SubmissionService
	report       ReportService
	reportExport ReportExportService
}

func NewServiceManager(submission SubmissionService, report ReportService, reportExport ReportExportService) ServiceManager {
	return &serviceManager{
		submission:   submission,
		report:       report,
		reportExport: reportExport,
	}
}

func (m *serviceManager) Submission() SubmissionService     { return m.submission }
func (m *serviceManager) Report() ReportService             { return m.report }
func (m *serviceManager) ReportExport() ReportExportService { return m.reportExport }

// ===== REQUEST DTOs =====

type StartSubmissionRequest struct {
	FormID     uint                  `json:"-"`
	Respondent models.RespondentSpec `json:"respondent" validate:"required"`
	SourceIP   string                `json:"-"`
}

type SaveChoiceAnswerRequest struct {
	QuestionID        uint   `json:"question_id" validate:"required"`
	QuestionVersion   *int   `json:"question_version,omitempty" validate:"omitempty,min=1"`
	SelectedOptionIDs []uint `json:"selected_option_ids" validate:"omitempty,unique_ids"`
}

type SaveTrueFalseAnswerRequest struct {
	QuestionID      uint  `json:"question_id" validate:"required"`
	QuestionVersion *int  `json:"question_version,omitempty" validate:"omitempty,min=1"`
	Value           *bool `json:"value" validate:"required"`
}

type SaveTextAnswerRequest struct {
	QuestionID      uint   `json:"question_id" validate:"required"`
	QuestionVersion *int   `json:"question_version,omitempty" validate:"omitempty,min=1"`
	Text            string `json:"text" validate:"max=10000"`
}

type SaveMatchingAnswerRequest struct {
	QuestionID      uint                  `json:"question_id" validate:"required"`
	QuestionVersion *int                  `json:"question_version,omitempty" validate:"omitempty,min=1"`
	Pairs           []models.MatchingPair `json:"pairs" validate:"dive"`
}

// ExportFile is a rendered report ready to be streamed to a client
type ExportFile struct {
	FileName    string
	ContentType string
	Data        []byte
}
