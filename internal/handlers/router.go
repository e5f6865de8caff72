package handlers

import (
	"github.com/SAP-F-2025/survey-service/internal/services"
	"github.com/SAP-F-2025/survey-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	submissionHandler *SubmissionHandler
	reportHandler     *ReportHandler
}

func NewHandlerManager(serviceManager services.ServiceManager, logger utils.Logger) *HandlerManager {
	return &HandlerManager{
		submissionHandler: NewSubmissionHandler(serviceManager.Submission(), logger),
		reportHandler:     NewReportHandler(serviceManager.Report(), serviceManager.ReportExport(), logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", HealthCheck)

	v1 := router.Group("/api/v1")
	{
		forms := v1.Group("/forms")
		{
			forms.POST("/:form_id/submissions", hm.submissionHandler.StartSubmission)
			forms.GET("/:form_id/submissions", hm.submissionHandler.ListSubmissions)

			forms.GET("/:form_id/report", hm.reportHandler.GetFormReport)
			forms.GET("/:form_id/report/export", hm.reportHandler.ExportFormReport)
		}

		submissions := v1.Group("/submissions")
		{
			submissions.GET("/:id", hm.submissionHandler.GetSubmission)
			submissions.DELETE("/:id", hm.submissionHandler.DeleteSubmission)
			submissions.POST("/:id/submit", hm.submissionHandler.SubmitSubmission)

			// Draft answers
			submissions.POST("/:id/answers/choice", hm.submissionHandler.SaveChoiceAnswer)
			submissions.POST("/:id/answers/true-false", hm.submissionHandler.SaveTrueFalseAnswer)
			submissions.POST("/:id/answers/text", hm.submissionHandler.SaveTextAnswer)
			submissions.POST("/:id/answers/matching", hm.submissionHandler.SaveMatchingAnswer)
			submissions.DELETE("/:id/answers/:question_id", hm.submissionHandler.RemoveAnswer)
		}

		campaigns := v1.Group("/campaigns")
		{
			campaigns.GET("/:campaign_id/report", hm.reportHandler.GetCampaignReport)
			campaigns.GET("/:campaign_id/report/export", hm.reportHandler.ExportCampaignReport)
		}
	}
}
