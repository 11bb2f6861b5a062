package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"medicare_backend/internal/hospitals/service"
	"medicare_backend/internal/hospitals/transport"
	"medicare_backend/platform/httpkit"
	"medicare_backend/platform/validator"
)

// Handler handles HTTP requests for hospital search.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// New creates a new hospitals handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Search runs a hospital search for a location.
// POST /api/hospitals/search
func (h *Handler) Search(c *gin.Context) {
	var req transport.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	view, err := h.svc.Search(c.Request.Context(), req.Location)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, view)
}

// Current returns the latest published search result.
// GET /api/hospitals/current
func (h *Handler) Current(c *gin.Context) {
	view, ok := h.svc.Current()
	if !ok {
		httpkit.Error(c, http.StatusNotFound, "no search has completed yet", nil)
		return
	}
	httpkit.OK(c, view)
}

// Select focuses the map on one hospital from the current result.
// POST /api/hospitals/select
func (h *Handler) Select(c *gin.Context) {
	var req transport.SelectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	focus, err := h.svc.SelectHospital(req.ID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, focus)
}
