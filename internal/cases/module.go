// Package cases turns accepted leads into durable case records and serves
// the provider's case list.
package cases

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/paasforest/immigrationai-sub000/internal/cases/handler"
	"github.com/paasforest/immigrationai-sub000/internal/cases/ports"
	"github.com/paasforest/immigrationai-sub000/internal/cases/reference"
	"github.com/paasforest/immigrationai-sub000/internal/cases/repository"
	"github.com/paasforest/immigrationai-sub000/internal/cases/service"
	"github.com/paasforest/immigrationai-sub000/internal/events"
	apphttp "github.com/paasforest/immigrationai-sub000/internal/http"
	"github.com/paasforest/immigrationai-sub000/platform/logger"
)

// Module is the cases bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the cases module. The account resolver
// is an outbound port satisfied by an adapter at the composition root.
func NewModule(pool *pgxpool.Pool, accounts ports.AccountResolver, bus events.Bus, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, accounts, reference.New(), bus, log)

	return &Module{
		handler: handler.New(svc),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "cases"
}

// Service returns the converter for the routing adapter.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts case routes for authenticated providers.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Provider.Group("/cases"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
