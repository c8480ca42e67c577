package rest

import (
	"github.com/gofiber/fiber/v2"

	deliveryapp "github.com/doualaexpress/deligate/delivery/application"
	"github.com/doualaexpress/deligate/pkg/apiresponse"
	"github.com/doualaexpress/deligate/pkg/apperror"
)

type SearchHandler struct {
	Deliveries *deliveryapp.Service
}

// RegisterSearch wires GET /search?q=...: an ILIKE substring search
// over phone/items/customer_name/quartier, capped at 100 rows by the
// repository.
func RegisterSearch(router fiber.Router, authMiddleware fiber.Handler, deliveries *deliveryapp.Service) *SearchHandler {
	h := &SearchHandler{Deliveries: deliveries}
	router.Get("/search", authMiddleware, h.Search)
	return h
}

func (h *SearchHandler) Search(c *fiber.Ctx) error {
	q := c.Query("q")
	if q == "" {
		apiresponse.PanicIfNeeded(apperror.InvalidArgumentError("q is required"))
	}
	results, err := h.Deliveries.Search(c.Context(), q, scopeFromCtx(c))
	apiresponse.PanicIfNeeded(apperror.As(err))
	return ok(c, results)
}
