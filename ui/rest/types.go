// Package rest is the thin HTTP surface: one Fiber handler struct per
// resource, each wrapping an application-layer service, grounded on the
// teacher's InitRestX(router, usecase) registration-function shape.
package rest

import (
	"github.com/gofiber/fiber/v2"

	authinfra "github.com/doualaexpress/deligate/auth/infrastructure"
	"github.com/doualaexpress/deligate/pkg/apiresponse"
	tenant "github.com/doualaexpress/deligate/tenant/domain"
)

func scopeFromCtx(c *fiber.Ctx) tenant.Scope {
	return authinfra.ScopeFromCtx(c)
}

func ok(c *fiber.Ctx, data any) error {
	return c.JSON(apiresponse.Ok(data))
}

func okPaginated(c *fiber.Ctx, data any, p apiresponse.Pagination) error {
	return c.JSON(apiresponse.OkPaginated(data, p))
}
