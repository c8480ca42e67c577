package rest

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	deliveryapp "github.com/doualaexpress/deligate/delivery/application"
	deliverydomain "github.com/doualaexpress/deligate/delivery/domain"
	"github.com/doualaexpress/deligate/pkg/apiresponse"
	"github.com/doualaexpress/deligate/pkg/apperror"
	"github.com/doualaexpress/deligate/pkg/timeutils"
)

type DeliveryHandler struct {
	Deliveries *deliveryapp.Service
	Location *time.Location
}

// RegisterDeliveries wires the tenant-scoped delivery CRUD/status/history
// routes.
func RegisterDeliveries(router fiber.Router, authMiddleware fiber.Handler, deliveries *deliveryapp.Service, loc *time.Location) *DeliveryHandler {
	h := &DeliveryHandler{Deliveries: deliveries, Location: loc}
	group := router.Group("/deliveries", authMiddleware)
	group.Get("/", h.List)
	group.Post("/", h.Create)
	group.Post("/bulk", h.BulkCreate)
	group.Get("/:id", h.Get)
	group.Put("/:id", h.Update)
	group.Get("/:id/history", h.History)
	return h
}

func (h *DeliveryHandler) List(c *fiber.Ctx) error {
	scope := scopeFromCtx(c)
	loc := h.Location
	if loc == nil {
		loc = time.UTC
	}

	f := deliverydomain.Filter{
		Status: deliverydomain.Status(c.Query("status")),
		Phone: c.Query("phone"),
		SortBy: c.Query("sort_by"),
		SortDesc: c.Query("sort_desc") == "true",
	}
	if v := c.Query("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			f.Page = n
		}
	}
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			f.Limit = n
		}
	}
	if v := c.Query("group_id"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			f.GroupID = &n
		}
	}
	if v := c.Query("date"); v != "" {
		if t, err := timeutils.ParseDateOnly(v, loc); err == nil {
			f.Date = &t
		} else {
			apiresponse.PanicIfNeeded(apperror.InvalidArgumentError("invalid date"))
		}
	}
	if v := c.Query("start_date"); v != "" {
		if t, err := timeutils.ParseDateOnly(v, loc); err == nil {
			f.StartDate = &t
		} else {
			apiresponse.PanicIfNeeded(apperror.InvalidArgumentError("invalid start_date"))
		}
	}
	if v := c.Query("end_date"); v != "" {
		if t, err := timeutils.ParseDateOnly(v, loc); err == nil {
			f.EndDate = &t
		} else {
			apiresponse.PanicIfNeeded(apperror.InvalidArgumentError("invalid end_date"))
		}
	}

	rows, pag, err := h.Deliveries.List(c.Context(), f, scope)
	apiresponse.PanicIfNeeded(mapDeliveryErr(err))

	return okPaginated(c, rows, apiresponse.Pagination{
		Page: pag.Page, Limit: pag.Limit, Total: pag.Total, TotalPages: pag.TotalPages,
	})
}

func (h *DeliveryHandler) Get(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		apiresponse.PanicIfNeeded(apperror.InvalidArgumentError("invalid delivery id"))
	}
	d, err := h.Deliveries.Get(c.Context(), id, scopeFromCtx(c))
	apiresponse.PanicIfNeeded(mapDeliveryErr(err))
	return ok(c, d)
}

type createDeliveryRequest struct {
	Phone string `json:"phone"`
	Items string `json:"items"`
	AmountDue int64 `json:"amount_due"`
	Quartier string `json:"quartier"`
	Carrier string `json:"carrier"`
	Notes string `json:"notes"`
	GroupID *int64 `json:"group_id"`
}

func (h *DeliveryHandler) Create(c *fiber.Ctx) error {
	var req createDeliveryRequest
	if err := c.BodyParser(&req); err != nil {
		apiresponse.PanicIfNeeded(apperror.InvalidArgumentError("malformed request body"))
	}
	apiresponse.PanicIfNeeded(validateCreateDeliveryRequest(c.Context(), req))

	d := &deliverydomain.Delivery{
		Phone: req.Phone,
		Items: req.Items,
		AmountDue: req.AmountDue,
		Quartier: req.Quartier,
		Carrier: req.Carrier,
		Notes: req.Notes,
		GroupID: req.GroupID,
		Status: deliverydomain.StatusPending,
	}
	if err := h.Deliveries.Create(c.Context(), d, scopeFromCtx(c)); err != nil {
		apiresponse.PanicIfNeeded(mapDeliveryErr(err))
	}
	return c.Status(fiber.StatusCreated).JSON(apiresponse.Ok(d))
}

func (h *DeliveryHandler) BulkCreate(c *fiber.Ctx) error {
	var reqs []createDeliveryRequest
	if err := c.BodyParser(&reqs); err != nil {
		apiresponse.PanicIfNeeded(apperror.InvalidArgumentError("malformed request body"))
	}
	apiresponse.PanicIfNeeded(validateBulkCreateRequest(reqs))

	rows := make([]*deliverydomain.Delivery, len(reqs))
	for i, r := range reqs {
		rows[i] = &deliverydomain.Delivery{
			Phone: r.Phone,
			Items: r.Items,
			AmountDue: r.AmountDue,
			Quartier: r.Quartier,
			Carrier: r.Carrier,
			Notes: r.Notes,
			GroupID: r.GroupID,
			Status: deliverydomain.StatusPending,
		}
	}

	result, err := h.Deliveries.BulkCreate(c.Context(), rows, scopeFromCtx(c))
	apiresponse.PanicIfNeeded(mapDeliveryErr(err))

	return ok(c, fiber.Map{
		"created": result.Created,
		"failed": result.Failed,
		"results": result.Results,
	})
}

type updateDeliveryRequest struct {
	Status deliverydomain.Status `json:"status"`
	ManualFee *int64 `json:"manual_fee"`
	ManualPaid *int64 `json:"manual_paid"`
}

// Update applies the status-transition algebra via the same
// ApplyStatusChange path the ingestion pipeline's Update Resolver uses, so
// direct API calls and inbound-message updates share one source of truth.
func (h *DeliveryHandler) Update(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		apiresponse.PanicIfNeeded(apperror.InvalidArgumentError("invalid delivery id"))
	}

	var req updateDeliveryRequest
	if err := c.BodyParser(&req); err != nil {
		apiresponse.PanicIfNeeded(apperror.InvalidArgumentError("malformed request body"))
	}
	apiresponse.PanicIfNeeded(validateUpdateDeliveryRequest(c.Context(), req))

	d, err := h.Deliveries.Get(c.Context(), id, scopeFromCtx(c))
	apiresponse.PanicIfNeeded(mapDeliveryErr(err))

	err = h.Deliveries.ApplyStatusChange(c.Context(), d, deliveryapp.StatusChangeRequest{
		Target: req.Status,
		ManualFee: req.ManualFee,
		ManualPaid: req.ManualPaid,
		Actor: "api",
	})
	apiresponse.PanicIfNeeded(mapDeliveryErr(err))
	return ok(c, d)
}

func (h *DeliveryHandler) History(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		apiresponse.PanicIfNeeded(apperror.InvalidArgumentError("invalid delivery id"))
	}
	entries, err := h.Deliveries.History(c.Context(), id, scopeFromCtx(c))
	apiresponse.PanicIfNeeded(mapDeliveryErr(err))
	return ok(c, entries)
}

// mapDeliveryErr translates delivery/domain sentinel errors to the right
// apperror.GenericError kind, the way mapTenantErr does for tenant/domain.
func mapDeliveryErr(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, deliverydomain.ErrDeliveryNotFound):
		return apperror.NotFoundError(err.Error())
	case errors.Is(err, deliverydomain.ErrNegativeAmount),
		errors.Is(err, deliverydomain.ErrTooManyBulkRows),
		errors.Is(err, deliverydomain.ErrPhoneAlreadyOpen):
		return apperror.InvalidArgumentError(err.Error())
	default:
		return apperror.As(err)
	}
}
