package task

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medremind/reminder-api/internal/handler"
	"github.com/medremind/reminder-api/internal/middleware"
	"github.com/medremind/reminder-api/internal/model"
	"github.com/medremind/reminder-api/internal/service/calendar"
	"github.com/medremind/reminder-api/internal/service/task"
)

const dateParamLayout = "2006-01-02"

type Handler struct {
	svc         *task.Service
	calendarSvc *calendar.Service
}

func NewHandler(svc *task.Service, calendarSvc *calendar.Service) *Handler {
	return &Handler{svc: svc, calendarSvc: calendarSvc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/tasks", h.ListTasks)
	r.GET("/calendar", h.GetCalendar)
	r.GET("/dependants/:id/tasks", h.ListDependantTasks)
}

// ListTasks returns the caregiver's task list for one day, across all
// dependants, shaped as a flat list projection.
func (h *Handler) ListTasks(c *gin.Context) {
	caregiverID, ok := middleware.CaregiverID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid caregiver ID"))
		return
	}

	day, err := dateParam(c, "date")
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid date, expected YYYY-MM-DD"))
		return
	}

	tasks, err := h.svc.Aggregate(c.Request.Context(), caregiverID, model.DayWindowFor(day), time.Now())
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	projection := h.calendarSvc.Project(tasks, model.CalendarModeList, day)
	c.JSON(http.StatusOK, handler.NewSuccessResponse(projection))
}

// GetCalendar returns a projection over a date range, bucketed per calendar
// date in grid mode and grouped per dependant when more than one appears.
func (h *Handler) GetCalendar(c *gin.Context) {
	caregiverID, ok := middleware.CaregiverID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid caregiver ID"))
		return
	}

	from, err := dateParam(c, "from")
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid from date, expected YYYY-MM-DD"))
		return
	}
	to, err := dateParam(c, "to")
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid to date, expected YYYY-MM-DD"))
		return
	}
	if to.Before(from) {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("to must not precede from"))
		return
	}

	mode := model.CalendarMode(c.DefaultQuery("mode", string(model.CalendarModeGrid)))
	if mode != model.CalendarModeGrid && mode != model.CalendarModeList {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("mode must be grid or list"))
		return
	}

	window := model.DayWindow{Start: from, End: to.AddDate(0, 0, 1)}
	tasks, err := h.svc.Aggregate(c.Request.Context(), caregiverID, window, time.Now())
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	// List mode renders a single day; the start of the range is the
	// selected date.
	projection := h.calendarSvc.Project(tasks, mode, from)
	c.JSON(http.StatusOK, handler.NewSuccessResponse(projection))
}

// ListDependantTasks is the single-dependant day view.
func (h *Handler) ListDependantTasks(c *gin.Context) {
	caregiverID, ok := middleware.CaregiverID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid caregiver ID"))
		return
	}

	dependantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid dependant ID"))
		return
	}

	day, err := dateParam(c, "date")
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid date, expected YYYY-MM-DD"))
		return
	}

	tasks, err := h.svc.AggregateForDependant(c.Request.Context(), caregiverID, dependantID, model.DayWindowFor(day), time.Now())
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	projection := h.calendarSvc.Project(tasks, model.CalendarModeList, day)
	c.JSON(http.StatusOK, handler.NewSuccessResponse(projection))
}

// dateParam parses a YYYY-MM-DD query parameter, defaulting to today when
// absent.
func dateParam(c *gin.Context, name string) (time.Time, error) {
	value := c.Query(name)
	if value == "" {
		return time.Now(), nil
	}
	return time.Parse(dateParamLayout, value)
}
