package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dosetrack/dosetrack-backend/internal/http/response"
	"github.com/dosetrack/dosetrack-backend/internal/services"
)

type MedicationHandler struct {
	medicationService services.MedicationService
}

func NewMedicationHandler(medicationService services.MedicationService) *MedicationHandler {
	return &MedicationHandler{medicationService: medicationService}
}

// GET /api/medications?active=true
func (mh *MedicationHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	activeOnly := c.Query("active") == "true"

	meds, err := mh.medicationService.List(c.Request.Context(), userID, activeOnly)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.RespondOK(c, gin.H{"medications": meds})
}

// GET /api/medications/:id
func (mh *MedicationHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	medicationID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	med, err := mh.medicationService.Get(c.Request.Context(), userID, medicationID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.RespondOK(c, gin.H{"medication": med})
}

// POST /api/medications
func (mh *MedicationHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.MedicationInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	med, err := mh.medicationService.Create(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"medication": med})
}

// PUT /api/medications/:id
func (mh *MedicationHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	medicationID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req services.MedicationInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	med, err := mh.medicationService.Update(c.Request.Context(), userID, medicationID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.RespondOK(c, gin.H{"medication": med})
}

// DELETE /api/medications/:id
//
// Deactivates rather than deletes, so past intakes keep their history.
func (mh *MedicationHandler) Deactivate(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	medicationID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := mh.medicationService.Deactivate(c.Request.Context(), userID, medicationID); err != nil {
		response.Error(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
