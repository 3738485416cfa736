package provider

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/amante/clinic-booking-api/internal/handler"
	"github.com/amante/clinic-booking-api/internal/middleware"
	"github.com/amante/clinic-booking-api/internal/model"
	"github.com/amante/clinic-booking-api/internal/service/provider"
	"github.com/amante/clinic-booking-api/pkg/httputil"
)

type Handler struct {
	service *provider.Service
}

func NewHandler(service *provider.Service) *Handler {
	return &Handler{service: service}
}

// RegisterPublicRoutes exposes the provider directory.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	routes := rg.Group("/providers")
	{
		routes.GET("", h.List)
		routes.GET("/:id", h.Get)
	}
}

// RegisterProtectedRoutes exposes profile management to the provider.
func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.PUT("/providers/me", h.UpdateProfile)
}

func (h *Handler) List(c *gin.Context) {
	var filters model.ProviderFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
		return
	}

	providers, err := h.service.List(c.Request.Context(), &filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, providers)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid provider ID"})
		return
	}

	p, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, p)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var req model.UpdateProviderProfileRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	p, err := h.service.UpdateProfile(c.Request.Context(), middleware.UserIDFrom(c), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, p)
}
