package handlers

import (
	"fmt"
	"net/http"

	"github.com/SAP-F-2025/survey-service/internal/models"
	"github.com/SAP-F-2025/survey-service/internal/services"
	"github.com/SAP-F-2025/survey-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	BaseHandler
	reportService services.ReportService
	exportService services.ReportExportService
}

func NewReportHandler(reportService services.ReportService, exportService services.ReportExportService, logger utils.Logger) *ReportHandler {
	return &ReportHandler{
		BaseHandler:   NewBaseHandler(logger),
		reportService: reportService,
		exportService: exportService,
	}
}

// GetFormReport aggregates the answers of one form
// @Summary Form report
// @Tags reports
// @Produce json
// @Param form_id path uint true "Form ID"
// @Param include_drafts query bool false "Count draft answers"
// @Success 200 {object} models.FormReport
// @Failure 404 {object} ErrorResponse
// @Router /forms/{form_id}/report [get]
func (h *ReportHandler) GetFormReport(c *gin.Context) {
	formID := parseIDParam(c, "form_id")
	if formID == 0 {
		return
	}

	report, err := h.reportService.GenerateFormReport(c.Request.Context(), formID, reportParams(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetCampaignReport rolls up the reports of every form in a campaign
// @Summary Campaign report
// @Tags reports
// @Produce json
// @Param campaign_id path uint true "Campaign ID"
// @Param include_drafts query bool false "Count draft answers"
// @Success 200 {object} models.CampaignReport
// @Router /campaigns/{campaign_id}/report [get]
func (h *ReportHandler) GetCampaignReport(c *gin.Context) {
	campaignID := parseIDParam(c, "campaign_id")
	if campaignID == 0 {
		return
	}

	report, err := h.reportService.GenerateCampaignReport(c.Request.Context(), campaignID, reportParams(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// ExportFormReport downloads the form report as a spreadsheet
// @Router /forms/{form_id}/report/export [get]
func (h *ReportHandler) ExportFormReport(c *gin.Context) {
	formID := parseIDParam(c, "form_id")
	if formID == 0 {
		return
	}

	h.LogRequest(c, "Exporting form report", "form_id", formID)

	file, err := h.exportService.ExportFormReport(c.Request.Context(), formID, reportParams(c), c.Query("format"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	sendFile(c, file)
}

// ExportCampaignReport downloads the campaign report as a spreadsheet
// @Router /campaigns/{campaign_id}/report/export [get]
func (h *ReportHandler) ExportCampaignReport(c *gin.Context) {
	campaignID := parseIDParam(c, "campaign_id")
	if campaignID == 0 {
		return
	}

	h.LogRequest(c, "Exporting campaign report", "campaign_id", campaignID)

	file, err := h.exportService.ExportCampaignReport(c.Request.Context(), campaignID, reportParams(c), c.Query("format"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	sendFile(c, file)
}

func reportParams(c *gin.Context) models.ReportParams {
	return models.ReportParams{IncludeDrafts: parseBoolQuery(c, "include_drafts")}
}

func sendFile(c *gin.Context, file *services.ExportFile) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.FileName))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
