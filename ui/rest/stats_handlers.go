package rest

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	deliveryapp "github.com/doualaexpress/deligate/delivery/application"
	"github.com/doualaexpress/deligate/pkg/apiresponse"
	"github.com/doualaexpress/deligate/pkg/apperror"
)

type StatsHandler struct {
	Deliveries *deliveryapp.Service
}

// RegisterStats wires GET /stats/daily, delegating to daily_stats.
func RegisterStats(router fiber.Router, authMiddleware fiber.Handler, deliveries *deliveryapp.Service) *StatsHandler {
	h := &StatsHandler{Deliveries: deliveries}
	router.Get("/stats/daily", authMiddleware, h.Daily)
	return h
}

func (h *StatsHandler) Daily(c *fiber.Ctx) error {
	var date *string
	if v := c.Query("date"); v != "" {
		date = &v
	}
	var groupID *int64
	if v := c.Query("group_id"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			apiresponse.PanicIfNeeded(apperror.InvalidArgumentError("invalid group_id"))
		}
		groupID = &n
	}

	stats, err := h.Deliveries.DailyStats(c.Context(), date, groupID, scopeFromCtx(c))
	apiresponse.PanicIfNeeded(apperror.As(err))
	return ok(c, stats)
}
