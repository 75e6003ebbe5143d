package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dosetrack/dosetrack-backend/internal/http/response"
	"github.com/dosetrack/dosetrack-backend/internal/services"
)

type ScheduleHandler struct {
	scheduleService services.ScheduleService
}

func NewScheduleHandler(scheduleService services.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleService: scheduleService}
}

// GET /api/medications/:id/schedules?include_inactive=true
func (sh *ScheduleHandler) ListByMedication(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	medicationID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	includeInactive := c.Query("include_inactive") == "true"

	schedules, err := sh.scheduleService.ListByMedication(c.Request.Context(), userID, medicationID, includeInactive)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.RespondOK(c, gin.H{"schedules": schedules})
}

// POST /api/medications/:id/schedules
func (sh *ScheduleHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	medicationID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req services.ScheduleInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	sched, err := sh.scheduleService.Create(c.Request.Context(), userID, medicationID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"schedule": sched})
}

// PUT /api/schedules/:id
func (sh *ScheduleHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	scheduleID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req services.ScheduleInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	sched, err := sh.scheduleService.Update(c.Request.Context(), userID, scheduleID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.RespondOK(c, gin.H{"schedule": sched})
}

// DELETE /api/schedules/:id
func (sh *ScheduleHandler) Deactivate(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	scheduleID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := sh.scheduleService.Deactivate(c.Request.Context(), userID, scheduleID); err != nil {
		response.Error(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
