// Package hospitals provides the hospital finder bounded context module.
package hospitals

import (
	"medicare_backend/internal/hospitals/geocode"
	"medicare_backend/internal/hospitals/handler"
	"medicare_backend/internal/hospitals/overpass"
	"medicare_backend/internal/hospitals/service"
	apphttp "medicare_backend/internal/http"
	"medicare_backend/platform/config"
	"medicare_backend/platform/logger"
	"medicare_backend/platform/validator"
)

// Module is the hospital finder bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the hospitals module.
func NewModule(cfg *config.Config, val *validator.Validator, log *logger.Logger) *Module {
	geocoder := geocode.NewClient(cfg, log)
	fetcher := overpass.NewClient(cfg, log)

	// The geocoding client doubles as the free-text healthcare searcher;
	// whether the orchestrator ever calls that path is config-gated.
	svc := service.NewService(geocoder, fetcher, geocoder, cfg, log)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "hospitals"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts hospital search routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.API.Group("/hospitals")
	group.POST("/search", m.handler.Search)
	group.GET("/current", m.handler.Current)
	group.POST("/select", m.handler.Select)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
