// Package providers manages adviser profiles and the specializations the
// matcher reads.
package providers

import (
	"github.com/jackc/pgx/v5/pgxpool"

	apphttp "github.com/paasforest/immigrationai-sub000/internal/http"
	"github.com/paasforest/immigrationai-sub000/internal/providers/handler"
	"github.com/paasforest/immigrationai-sub000/internal/providers/repository"
	"github.com/paasforest/immigrationai-sub000/internal/providers/service"
	"github.com/paasforest/immigrationai-sub000/platform/logger"
	"github.com/paasforest/immigrationai-sub000/platform/validator"
)

// Module is the providers bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule creates and initializes the providers module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)

	return &Module{handler: handler.New(svc, val)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "providers"
}

// RegisterRoutes mounts provider self-service routes and the public
// service-type listing.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	providerGroup := ctx.Provider.Group("/providers")
	m.handler.RegisterRoutes(providerGroup, ctx.V1)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
