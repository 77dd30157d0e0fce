// Package routing provides the intake routing and assignment bounded context.
// This file defines the module that encapsulates its setup and route
// registration.
package routing

import (
	"github.com/paasforest/immigrationai-sub000/internal/events"
	apphttp "github.com/paasforest/immigrationai-sub000/internal/http"
	"github.com/paasforest/immigrationai-sub000/internal/routing/domain"
	"github.com/paasforest/immigrationai-sub000/internal/routing/handler"
	"github.com/paasforest/immigrationai-sub000/internal/routing/matcher"
	"github.com/paasforest/immigrationai-sub000/internal/routing/ports"
	"github.com/paasforest/immigrationai-sub000/internal/routing/repository"
	"github.com/paasforest/immigrationai-sub000/internal/routing/service"
	"github.com/paasforest/immigrationai-sub000/platform/config"
	"github.com/paasforest/immigrationai-sub000/platform/logger"
	"github.com/paasforest/immigrationai-sub000/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the routing bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the routing module with all its
// dependencies. The case converter and task enqueuer are outbound ports
// satisfied by adapters at the composition root.
func NewModule(
	pool *pgxpool.Pool,
	converter ports.CaseConverter,
	tasks ports.TaskEnqueuer,
	bus events.Bus,
	val *validator.Validator,
	cfg *config.Config,
	log *logger.Logger,
) *Module {
	repo := repository.New(pool)
	weights := domain.WeightsFromConfig(cfg)
	find := matcher.New(repo, weights, cfg.GetCandidateLimit())
	svc := service.New(repo, find, converter, tasks, bus, cfg, log)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "routing"
}

// Service returns the orchestrator for the scheduler worker and adapters.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts assignment routes for authenticated providers.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Provider.Group("/assignments"))
	m.handler.RegisterLeadRoutes(ctx.Provider.Group("/leads"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
