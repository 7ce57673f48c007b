package medication

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medremind/reminder-api/internal/handler"
	"github.com/medremind/reminder-api/internal/middleware"
	"github.com/medremind/reminder-api/internal/model"
	"github.com/medremind/reminder-api/internal/service/medication"
)

type Handler struct {
	svc *medication.Service
}

func NewHandler(svc *medication.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	medications := r.Group("/dependants/:id/medications")
	{
		medications.POST("", h.CreateMedication)
		medications.GET("", h.ListMedications)
		medications.GET("/:medicationId", h.GetMedication)
		medications.PUT("/:medicationId", h.UpdateMedication)
		medications.DELETE("/:medicationId", h.DeleteMedication)

		medications.POST("/:medicationId/completions", h.SetCompletion)
		medications.DELETE("/:medicationId/completions", h.DeleteCompletion)
	}
}

// ids pulls the caregiver and path ids every medication route needs. The
// second return is false when a response has already been written.
func (h *Handler) ids(c *gin.Context, withMedication bool) (caregiverID, dependantID, medicationID uuid.UUID, ok bool) {
	caregiverID, found := middleware.CaregiverID(c)
	if !found {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid caregiver ID"))
		return
	}

	dependantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid dependant ID"))
		return
	}

	if withMedication {
		medicationID, err = uuid.Parse(c.Param("medicationId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid medication ID"))
			return
		}
	}
	ok = true
	return
}

func (h *Handler) CreateMedication(c *gin.Context) {
	caregiverID, dependantID, _, ok := h.ids(c, false)
	if !ok {
		return
	}

	var req model.CreateMedicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	medication, err := h.svc.CreateMedication(c.Request.Context(), caregiverID, dependantID, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(medication))
}

func (h *Handler) ListMedications(c *gin.Context) {
	caregiverID, dependantID, _, ok := h.ids(c, false)
	if !ok {
		return
	}

	medications, err := h.svc.ListMedications(c.Request.Context(), caregiverID, dependantID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(medications))
}

func (h *Handler) GetMedication(c *gin.Context) {
	caregiverID, dependantID, medicationID, ok := h.ids(c, true)
	if !ok {
		return
	}

	medication, err := h.svc.GetMedication(c.Request.Context(), caregiverID, dependantID, medicationID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(medication))
}

func (h *Handler) UpdateMedication(c *gin.Context) {
	caregiverID, dependantID, medicationID, ok := h.ids(c, true)
	if !ok {
		return
	}

	var req model.UpdateMedicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	medication, err := h.svc.UpdateMedication(c.Request.Context(), caregiverID, dependantID, medicationID, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(medication))
}

func (h *Handler) DeleteMedication(c *gin.Context) {
	caregiverID, dependantID, medicationID, ok := h.ids(c, true)
	if !ok {
		return
	}

	if err := h.svc.DeleteMedication(c.Request.Context(), caregiverID, dependantID, medicationID); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func (h *Handler) SetCompletion(c *gin.Context) {
	caregiverID, dependantID, medicationID, ok := h.ids(c, true)
	if !ok {
		return
	}

	var req model.CompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	record, err := h.svc.SetCompletion(c.Request.Context(), caregiverID, dependantID, medicationID, req.DoseTime)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(record))
}

func (h *Handler) DeleteCompletion(c *gin.Context) {
	caregiverID, dependantID, medicationID, ok := h.ids(c, true)
	if !ok {
		return
	}

	var req model.CompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	if err := h.svc.DeleteCompletion(c.Request.Context(), caregiverID, dependantID, medicationID, req.DoseTime); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}
