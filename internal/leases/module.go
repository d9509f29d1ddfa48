// Package leases is the lease search bounded context: query composition
// against the legacy store, batched contact resolution, paged search and
// spreadsheet export.
package leases

import (
	apphttp "lease_portal_backend/internal/http"
	"lease_portal_backend/internal/leases/handler"
	"lease_portal_backend/internal/leases/repository"
	"lease_portal_backend/internal/leases/service"
	"lease_portal_backend/platform/config"
	"lease_portal_backend/platform/logger"
	"lease_portal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leases bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	svc     *service.Service
}

// NewModule creates and initializes the leases module.
func NewModule(pool *pgxpool.Pool, cfg config.SearchConfig, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, cfg, log)

	return &Module{
		handler: handler.New(svc, val),
		svc:     svc,
	}
}

// Service exposes the search service for non-HTTP consumers (the snapshot
// worker).
func (m *Module) Service() *service.Service {
	return m.svc
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leases"
}

// RegisterRoutes mounts lease routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/leases"))
}

var _ apphttp.Module = (*Module)(nil)
