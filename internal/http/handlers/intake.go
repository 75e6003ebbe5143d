package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dosetrack/dosetrack-backend/internal/http/response"
	"github.com/dosetrack/dosetrack-backend/internal/services"
)

type IntakeHandler struct {
	intakeService services.IntakeService
}

func NewIntakeHandler(intakeService services.IntakeService) *IntakeHandler {
	return &IntakeHandler{intakeService: intakeService}
}

// GET /api/intakes?from=RFC3339&to=RFC3339[&medication_id][&schedule_id]
//
// Defaults to the last 30 days.
func (ih *IntakeHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	now := time.Now().UTC()
	from, ok := queryTime(c, "from", now.AddDate(0, 0, -30))
	if !ok {
		return
	}
	to, ok := queryTime(c, "to", now)
	if !ok {
		return
	}
	medicationID, ok := queryUUID(c, "medication_id")
	if !ok {
		return
	}
	scheduleID, ok := queryUUID(c, "schedule_id")
	if !ok {
		return
	}

	intakes, err := ih.intakeService.List(c.Request.Context(), userID, services.IntakeListQuery{
		From:         from,
		To:           to,
		MedicationID: medicationID,
		ScheduleID:   scheduleID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.RespondOK(c, gin.H{"intakes": intakes})
}

// POST /api/intakes
func (ih *IntakeHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.IntakeInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	intake, err := ih.intakeService.Create(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"intake": intake})
}

// DELETE /api/intakes/:id
func (ih *IntakeHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	intakeID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := ih.intakeService.Delete(c.Request.Context(), userID, intakeID); err != nil {
		response.Error(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

func queryTime(c *gin.Context, name string, def time.Time) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_time", fmt.Errorf("%s must be RFC3339", name))
		return time.Time{}, false
	}
	return ts.UTC(), true
}
