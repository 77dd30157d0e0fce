// Package leads provides the intake side of the pipeline: public
// submission, tracking, and the provider-facing lead detail.
package leads

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/paasforest/immigrationai-sub000/internal/events"
	apphttp "github.com/paasforest/immigrationai-sub000/internal/http"
	"github.com/paasforest/immigrationai-sub000/internal/leads/handler"
	"github.com/paasforest/immigrationai-sub000/internal/leads/ports"
	"github.com/paasforest/immigrationai-sub000/internal/leads/repository"
	"github.com/paasforest/immigrationai-sub000/internal/leads/service"
	"github.com/paasforest/immigrationai-sub000/platform/logger"
	"github.com/paasforest/immigrationai-sub000/platform/validator"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule creates and initializes the leads module. The task enqueuer is
// an outbound port satisfied by the scheduler client at the composition
// root.
func NewModule(pool *pgxpool.Pool, tasks ports.AssignEnqueuer, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, tasks, bus, log)

	return &Module{handler: handler.New(svc, val)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// RegisterRoutes mounts the public intake routes (behind the stricter
// intake rate limiter) and the provider lead detail.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	public := ctx.V1.Group("/leads")
	if ctx.IntakeRateLimiter != nil {
		public.Use(ctx.IntakeRateLimiter.RateLimit())
	}
	m.handler.RegisterPublicRoutes(public)

	m.handler.RegisterProviderRoutes(ctx.Provider.Group("/leads"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
