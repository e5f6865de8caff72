package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/SAP-F-2025/survey-service/internal/errors"
	"github.com/SAP-F-2025/survey-service/internal/models"
	"github.com/xuri/excelize/v2"
)

const (
	FormatXLSX      = "xlsx"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	summarySheet   = "Summary"
	questionsSheet = "Questions"
	formsSheet     = "Forms"
)

type reportExportService struct {
	reports ReportService
	logger  *slog.Logger
}

func NewReportExportService(reports ReportService, logger *slog.Logger) ReportExportService {
	return &reportExportService{
		reports: reports,
		logger:  logger,
	}
}

func (s *reportExportService) ExportFormReport(ctx context.Context, formID uint, params models.ReportParams, format string) (*ExportFile, error) {
	if err := checkFormat(format); err != nil {
		return nil, err
	}

	report, err := s.reports.GenerateFormReport(ctx, formID, params)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := writeSummary(f, [][2]interface{}{
		{"Form ID", report.FormID},
		{"Total submissions", report.TotalSubmissions},
		{"Submitted", report.SubmittedCount},
		{"Drafts", report.DraftCount},
		{"Completion rate", report.CompletionRate},
		{"Generated at", report.GeneratedAt.Format(time.RFC3339)},
	}); err != nil {
		return nil, err
	}

	if err := writeQuestions(f, []models.FormReport{*report}, false); err != nil {
		return nil, err
	}

	return s.render(f, exportFileName("form", formID, params))
}

func (s *reportExportService) ExportCampaignReport(ctx context.Context, campaignID uint, params models.ReportParams, format string) (*ExportFile, error) {
	if err := checkFormat(format); err != nil {
		return nil, err
	}

	report, err := s.reports.GenerateCampaignReport(ctx, campaignID, params)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := writeSummary(f, [][2]interface{}{
		{"Campaign ID", report.CampaignID},
		{"Forms", report.FormsCount},
		{"Total submissions", report.TotalSubmissions},
		{"Submitted", report.SubmittedCount},
		{"Drafts", report.DraftCount},
		{"Completion rate", report.CompletionRate},
		{"Generated at", report.GeneratedAt.Format(time.RFC3339)},
	}); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(formsSheet); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	headers := []interface{}{"form_id", "total", "submitted", "drafts", "completion_rate"}
	if err := f.SetSheetRow(formsSheet, "A1", &headers); err != nil {
		return nil, fmt.Errorf("failed to write Excel row: %w", err)
	}
	for i, form := range report.Forms {
		row := []interface{}{form.FormID, form.TotalSubmissions, form.SubmittedCount, form.DraftCount, form.CompletionRate}
		if err := f.SetSheetRow(formsSheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return nil, fmt.Errorf("failed to write Excel row: %w", err)
		}
	}

	if err := writeQuestions(f, report.Forms, true); err != nil {
		return nil, err
	}

	return s.render(f, exportFileName("campaign", campaignID, params))
}

func (s *reportExportService) render(f *excelize.File, fileName string) (*ExportFile, error) {
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.Info("Report exported", "file_name", fileName, "bytes", buf.Len())
	return &ExportFile{
		FileName:    fileName,
		ContentType: xlsxContentType,
		Data:        buf.Bytes(),
	}, nil
}

// writeSummary renames the default sheet and fills it with label/value rows
func writeSummary(f *excelize.File, rows [][2]interface{}) error {
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	for i, row := range rows {
		values := []interface{}{row[0], row[1]}
		if err := f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", i+1), &values); err != nil {
			return fmt.Errorf("failed to write Excel row: %w", err)
		}
	}
	return nil
}

func writeQuestions(f *excelize.File, forms []models.FormReport, withFormID bool) error {
	if _, err := f.NewSheet(questionsSheet); err != nil {
		return fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	headers := []interface{}{"question_id", "kind", "required", "answered", "omitted", "details"}
	if withFormID {
		headers = append([]interface{}{"form_id"}, headers...)
	}
	if err := f.SetSheetRow(questionsSheet, "A1", &headers); err != nil {
		return fmt.Errorf("failed to write Excel row: %w", err)
	}

	rowIndex := 2
	for _, form := range forms {
		for _, q := range form.Questions {
			stats := q.Stats()
			row := []interface{}{stats.QuestionID, string(stats.Kind), stats.Required, stats.AnsweredCount, stats.OmittedCount, questionDetails(q)}
			if withFormID {
				row = append([]interface{}{form.FormID}, row...)
			}
			if err := f.SetSheetRow(questionsSheet, fmt.Sprintf("A%d", rowIndex), &row); err != nil {
				return fmt.Errorf("failed to write Excel row: %w", err)
			}
			rowIndex++
		}
	}
	return nil
}

// questionDetails flattens the kind-specific part of a question report
func questionDetails(q models.QuestionReport) string {
	switch r := q.(type) {
	case models.ChoiceQuestionReport:
		counts := make([]string, 0, len(r.Options))
		for _, o := range r.Options {
			counts = append(counts, fmt.Sprintf("%d:%d", o.OptionID, o.Count))
		}
		return fmt.Sprintf("mode=%s;min=%s;max=%s;counts=%s",
			r.SelectionMode, optionalInt(r.MinSelections), optionalInt(r.MaxSelections), strings.Join(counts, "|"))
	case models.TrueFalseQuestionReport:
		return fmt.Sprintf("true=%d;false=%d", r.TrueCount, r.FalseCount)
	case models.TextQuestionReport:
		return fmt.Sprintf("mode=%s;min=%s;max=%s", r.TextMode, optionalInt(r.MinLength), optionalInt(r.MaxLength))
	case models.MatchingQuestionReport:
		pairs := make([]string, 0, len(r.PairFrequencies))
		for _, p := range r.PairFrequencies {
			pairs = append(pairs, fmt.Sprintf("%d-%d:%d", p.LeftID, p.RightID, p.Count))
		}
		return "pairs=" + strings.Join(pairs, "|")
	default:
		return ""
	}
}

func optionalInt(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}

func exportFileName(prefix string, id uint, params models.ReportParams) string {
	name := fmt.Sprintf("%s-%d", prefix, id)
	if params.IncludeDrafts {
		name += "-with-drafts"
	}
	return name + "." + FormatXLSX
}

func checkFormat(format string) error {
	switch strings.ToLower(format) {
	case "", FormatXLSX:
		return nil
	default:
		return apperrors.InvalidArgumentf("unsupported export format %q", format)
	}
}
