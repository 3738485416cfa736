package booking

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/amante/clinic-booking-api/internal/handler"
	"github.com/amante/clinic-booking-api/internal/middleware"
	"github.com/amante/clinic-booking-api/internal/model"
	"github.com/amante/clinic-booking-api/internal/service/booking"
	"github.com/amante/clinic-booking-api/pkg/httputil"
)

type Handler struct {
	service *booking.Service
}

func NewHandler(service *booking.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	routes := rg.Group("/bookings")
	{
		routes.POST("", h.Create)
		routes.GET("", h.List)
		routes.GET("/:id", h.Get)
		routes.POST("/:id/confirm", h.Confirm)
		routes.POST("/:id/reject", h.Reject)
		routes.POST("/:id/complete", h.Complete)
		routes.POST("/:id/cancel", h.Cancel)
	}
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateBookingRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	b, err := h.service.Create(c.Request.Context(), middleware.UserIDFrom(c), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondCreated(c, b)
}

func (h *Handler) List(c *gin.Context) {
	status := model.BookingStatus(c.Query("status"))
	userID := middleware.UserIDFrom(c)

	var (
		list []*model.Booking
		err  error
	)
	switch middleware.RoleFrom(c) {
	case model.RoleProvider:
		list, err = h.service.ListForProvider(c.Request.Context(), userID, status)
	case model.RolePatient:
		list, err = h.service.ListForPatient(c.Request.Context(), userID, status)
	default:
		c.JSON(http.StatusForbidden, gin.H{"error": "unknown role"})
		return
	}
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, list)
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := h.bookingID(c)
	if !ok {
		return
	}

	b, err := h.service.Get(c.Request.Context(), middleware.UserIDFrom(c), middleware.RoleFrom(c), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, b)
}

func (h *Handler) Confirm(c *gin.Context) {
	id, ok := h.bookingID(c)
	if !ok {
		return
	}

	b, err := h.service.Confirm(c.Request.Context(), middleware.UserIDFrom(c), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, b)
}

func (h *Handler) Reject(c *gin.Context) {
	id, ok := h.bookingID(c)
	if !ok {
		return
	}

	var req model.RejectBookingRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	b, err := h.service.Reject(c.Request.Context(), middleware.UserIDFrom(c), id, req.Reason)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, b)
}

func (h *Handler) Complete(c *gin.Context) {
	id, ok := h.bookingID(c)
	if !ok {
		return
	}

	b, err := h.service.Complete(c.Request.Context(), middleware.UserIDFrom(c), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, b)
}

func (h *Handler) Cancel(c *gin.Context) {
	id, ok := h.bookingID(c)
	if !ok {
		return
	}

	b, err := h.service.Cancel(c.Request.Context(), middleware.UserIDFrom(c), middleware.RoleFrom(c), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, b)
}

func (h *Handler) bookingID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking ID"})
		return uuid.Nil, false
	}
	return id, true
}
