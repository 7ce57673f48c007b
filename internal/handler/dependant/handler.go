package dependant

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medremind/reminder-api/internal/handler"
	"github.com/medremind/reminder-api/internal/middleware"
	"github.com/medremind/reminder-api/internal/model"
	"github.com/medremind/reminder-api/internal/service/dependant"
	"github.com/medremind/reminder-api/internal/service/task"
)

type Handler struct {
	svc     *dependant.Service
	taskSvc *task.Service
}

func NewHandler(svc *dependant.Service, taskSvc *task.Service) *Handler {
	return &Handler{svc: svc, taskSvc: taskSvc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	dependants := r.Group("/dependants")
	{
		dependants.POST("", h.CreateDependant)
		dependants.GET("", h.ListDependants)
		dependants.GET("/:id", h.GetDependant)
		dependants.PUT("/:id", h.UpdateDependant)
		dependants.DELETE("/:id", h.DeleteDependant)
	}
}

func (h *Handler) CreateDependant(c *gin.Context) {
	caregiverID, ok := middleware.CaregiverID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid caregiver ID"))
		return
	}

	var req model.CreateDependantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	dependant, err := h.svc.CreateDependant(c.Request.Context(), caregiverID, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	h.taskSvc.InvalidateDependants(caregiverID)
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(dependant))
}

func (h *Handler) ListDependants(c *gin.Context) {
	caregiverID, ok := middleware.CaregiverID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid caregiver ID"))
		return
	}

	dependants, err := h.svc.ListDependants(c.Request.Context(), caregiverID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(dependants))
}

func (h *Handler) GetDependant(c *gin.Context) {
	caregiverID, ok := middleware.CaregiverID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid caregiver ID"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid dependant ID"))
		return
	}

	dependant, err := h.svc.GetDependant(c.Request.Context(), caregiverID, id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(dependant))
}

func (h *Handler) UpdateDependant(c *gin.Context) {
	caregiverID, ok := middleware.CaregiverID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid caregiver ID"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid dependant ID"))
		return
	}

	var req model.UpdateDependantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	dependant, err := h.svc.UpdateDependant(c.Request.Context(), caregiverID, id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	h.taskSvc.InvalidateDependants(caregiverID)
	c.JSON(http.StatusOK, handler.NewSuccessResponse(dependant))
}

func (h *Handler) DeleteDependant(c *gin.Context) {
	caregiverID, ok := middleware.CaregiverID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid caregiver ID"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid dependant ID"))
		return
	}

	if err := h.svc.DeleteDependant(c.Request.Context(), caregiverID, id); err != nil {
		handler.RespondError(c, err)
		return
	}

	h.taskSvc.InvalidateDependants(caregiverID)
	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}
