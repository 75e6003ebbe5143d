package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dosetrack/dosetrack-backend/internal/http/response"
	"github.com/dosetrack/dosetrack-backend/internal/services"
)

type ReportHandler struct {
	reportService services.ReportService
}

func NewReportHandler(reportService services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// GET /api/reports/adherence?from=YYYY-MM-DD&to=YYYY-MM-DD[&medication_id][&schedule_id]
func (rh *ReportHandler) Adherence(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	query, ok := rh.bindQuery(c)
	if !ok {
		return
	}

	report, err := rh.reportService.Adherence(c.Request.Context(), userID, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.RespondOK(c, gin.H{"report": report})
}

// GET /api/reports/adherence/medications?from=YYYY-MM-DD&to=YYYY-MM-DD
func (rh *ReportHandler) ByMedication(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	query, ok := rh.bindQuery(c)
	if !ok {
		return
	}

	breakdown, err := rh.reportService.ByMedication(c.Request.Context(), userID, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.RespondOK(c, gin.H{"report": breakdown})
}

// GET /api/reports/adherence/schedules?from=YYYY-MM-DD&to=YYYY-MM-DD[&medication_id]
func (rh *ReportHandler) BySchedule(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	query, ok := rh.bindQuery(c)
	if !ok {
		return
	}

	breakdown, err := rh.reportService.BySchedule(c.Request.Context(), userID, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.RespondOK(c, gin.H{"report": breakdown})
}

// GET /api/reports/adherence/daily
func (rh *ReportHandler) Daily(c *gin.Context) {
	rh.preset(c, rh.reportService.Daily)
}

// GET /api/reports/adherence/weekly
func (rh *ReportHandler) Weekly(c *gin.Context) {
	rh.preset(c, rh.reportService.Weekly)
}

// GET /api/reports/adherence/monthly
func (rh *ReportHandler) Monthly(c *gin.Context) {
	rh.preset(c, rh.reportService.Monthly)
}

// GET /api/reports/intake-timeline?from=YYYY-MM-DD&to=YYYY-MM-DD[&medication_id][&schedule_id]
func (rh *ReportHandler) Timeline(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	query, ok := rh.bindQuery(c)
	if !ok {
		return
	}

	entries, err := rh.reportService.Timeline(c.Request.Context(), userID, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.RespondOK(c, gin.H{"timeline": entries})
}

func (rh *ReportHandler) preset(c *gin.Context, run func(ctx context.Context, userID uuid.UUID) (*services.AdherenceReport, error)) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	report, err := run(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.RespondOK(c, gin.H{"report": report})
}

func (rh *ReportHandler) bindQuery(c *gin.Context) (services.AdherenceQuery, bool) {
	medicationID, ok := queryUUID(c, "medication_id")
	if !ok {
		return services.AdherenceQuery{}, false
	}
	scheduleID, ok := queryUUID(c, "schedule_id")
	if !ok {
		return services.AdherenceQuery{}, false
	}
	return services.AdherenceQuery{
		From:         c.Query("from"),
		To:           c.Query("to"),
		MedicationID: medicationID,
		ScheduleID:   scheduleID,
	}, true
}
