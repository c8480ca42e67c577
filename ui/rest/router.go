// router.go assembles the Fiber app, grounded on cmd/rest.go's bootstrap
// (Recovery + CORS + optional logger, base-path grouping) generalised from
// Basic Auth to session-token auth.
package rest

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"

	authapp "github.com/doualaexpress/deligate/auth/application"
	authinfra "github.com/doualaexpress/deligate/auth/infrastructure"
	"github.com/doualaexpress/deligate/auth/security"
	"github.com/doualaexpress/deligate/core/config"
	deliveryapp "github.com/doualaexpress/deligate/delivery/application"
	"github.com/doualaexpress/deligate/ui/rest/middleware"

	tenant "github.com/doualaexpress/deligate/tenant/domain"
)

// Deps bundles everything router construction needs, handed in from
// cmd/serve.go once the storage adapter and application services exist.
type Deps struct {
	Config *config.Config
	Location *time.Location
	Agencies tenant.AgencyRepository
	Groups tenant.GroupRepository
	Deliveries *deliveryapp.Service
	Auth *authapp.Service
	Issuer *security.TokenIssuer
	Blocklist authinfra.Blocklist
}

func NewApp(deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		EnableTrustedProxyCheck: len(deps.Config.App.TrustedProxies) > 0,
		TrustedProxies: deps.Config.App.TrustedProxies,
		ProxyHeader: fiber.HeaderXForwardedHost,
	})

	app.Use(middleware.Recovery())
	if deps.Config.App.Debug {
		app.Use(logger.New())
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: joinOrigins(deps.Config.App.CorsAllowedOrigins),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	var router fiber.Router = app
	if deps.Config.App.BasePath != "" {
		router = app.Group(deps.Config.App.BasePath)
	}
	apiGroup := router.Group("/api/v1")

	authMiddleware := authinfra.NewAuthMiddleware(deps.Issuer, deps.Blocklist)
	requireSuperAdmin := authinfra.RequireRole(tenant.RoleSuperAdmin)

	RegisterHealth(apiGroup)
	RegisterAuth(apiGroup, authMiddleware, deps.Auth)
	RegisterAgencies(apiGroup, authMiddleware, requireSuperAdmin, deps.Agencies)
	RegisterGroups(apiGroup, authMiddleware, deps.Groups)
	RegisterDeliveries(apiGroup, authMiddleware, deps.Deliveries, deps.Location)
	RegisterStats(apiGroup, authMiddleware, deps.Deliveries)
	RegisterSearch(apiGroup, authMiddleware, deps.Deliveries)

	return app
}

func joinOrigins(origins []string) string {
	if len(origins) == 0 {
		return "*"
	}
	out := origins[0]
	for _, o := range origins[1:] {
		out += "," + o
	}
	return out
}
