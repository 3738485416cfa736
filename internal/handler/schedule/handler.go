package schedule

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/amante/clinic-booking-api/internal/handler"
	"github.com/amante/clinic-booking-api/internal/middleware"
	"github.com/amante/clinic-booking-api/internal/model"
	"github.com/amante/clinic-booking-api/internal/service/schedule"
	"github.com/amante/clinic-booking-api/pkg/httputil"
)

const dateFormat = "2006-01-02"

type Handler struct {
	service *schedule.Service
}

func NewHandler(service *schedule.Service) *Handler {
	return &Handler{service: service}
}

// RegisterPublicRoutes exposes the slot listing used by patients before
// they authenticate.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/providers/:id/slots", h.AvailableSlots)
	rg.GET("/providers/:id/schedule", h.Config)
}

// RegisterProtectedRoutes exposes schedule management to the provider.
func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	routes := rg.Group("/schedule")
	{
		routes.GET("", h.OwnConfig)
		routes.PUT("/settings", h.UpdateSettings)
		routes.PUT("/weekly", h.UpdateWeekly)
		routes.POST("/breaks", h.AddBreak)
		routes.PUT("/breaks/:id", h.UpdateBreak)
		routes.DELETE("/breaks/:id", h.DeleteBreak)
		routes.POST("/days-off", h.AddDayOff)
		routes.PUT("/days-off/:id", h.UpdateDayOff)
		routes.DELETE("/days-off/:id", h.DeleteDayOff)
	}
}

func (h *Handler) AvailableSlots(c *gin.Context) {
	providerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid provider ID"})
		return
	}

	date, err := time.Parse(dateFormat, c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be in YYYY-MM-DD format"})
		return
	}

	slots, err := h.service.AvailableSlots(c.Request.Context(), providerID, date)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{
		"date":  date.Format(dateFormat),
		"slots": slots,
	})
}

func (h *Handler) Config(c *gin.Context) {
	providerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid provider ID"})
		return
	}

	cfg, err := h.service.Config(c.Request.Context(), providerID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, cfg)
}

func (h *Handler) OwnConfig(c *gin.Context) {
	cfg, err := h.service.OwnConfig(c.Request.Context(), middleware.UserIDFrom(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, cfg)
}

func (h *Handler) UpdateSettings(c *gin.Context) {
	var req model.UpdateSettingsRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	settings, err := h.service.UpdateSettings(c.Request.Context(), middleware.UserIDFrom(c), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, settings)
}

func (h *Handler) UpdateWeekly(c *gin.Context) {
	var req model.UpdateWeeklyScheduleRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	windows, err := h.service.UpdateWeekly(c.Request.Context(), middleware.UserIDFrom(c), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, windows)
}

func (h *Handler) AddBreak(c *gin.Context) {
	var req model.BreakRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	brk, err := h.service.AddBreak(c.Request.Context(), middleware.UserIDFrom(c), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondCreated(c, brk)
}

func (h *Handler) UpdateBreak(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid break ID"})
		return
	}

	var req model.BreakRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	brk, err := h.service.UpdateBreak(c.Request.Context(), middleware.UserIDFrom(c), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, brk)
}

func (h *Handler) DeleteBreak(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid break ID"})
		return
	}

	if err := h.service.DeleteBreak(c.Request.Context(), middleware.UserIDFrom(c), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"deleted": id})
}

func (h *Handler) AddDayOff(c *gin.Context) {
	var req model.DayOffRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	dayOff, err := h.service.AddDayOff(c.Request.Context(), middleware.UserIDFrom(c), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondCreated(c, dayOff)
}

func (h *Handler) UpdateDayOff(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid day off ID"})
		return
	}

	var req model.DayOffRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	dayOff, err := h.service.UpdateDayOff(c.Request.Context(), middleware.UserIDFrom(c), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, dayOff)
}

func (h *Handler) DeleteDayOff(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid day off ID"})
		return
	}

	if err := h.service.DeleteDayOff(c.Request.Context(), middleware.UserIDFrom(c), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"deleted": id})
}
