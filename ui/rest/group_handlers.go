package rest

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/doualaexpress/deligate/pkg/apiresponse"
	"github.com/doualaexpress/deligate/pkg/apperror"
	tenant "github.com/doualaexpress/deligate/tenant/domain"
)

type GroupHandler struct {
	Groups tenant.GroupRepository
}

// RegisterGroups wires the tenant-scoped group management routes:
// list visible to scope, rename/toggle, soft- or hard-delete.
func RegisterGroups(router fiber.Router, authMiddleware fiber.Handler, groups tenant.GroupRepository) *GroupHandler {
	h := &GroupHandler{Groups: groups}
	group := router.Group("/groups", authMiddleware)
	group.Get("/", h.List)
	group.Put("/:id", h.Update)
	group.Delete("/:id", h.Delete)
	return h
}

func (h *GroupHandler) List(c *fiber.Ctx) error {
	groups, err := h.Groups.List(c.Context(), scopeFromCtx(c))
	apiresponse.PanicIfNeeded(mapTenantErr(err))
	return ok(c, groups)
}

type updateGroupRequest struct {
	Name *string `json:"name"`
	Active *bool `json:"active"`
}

func (h *GroupHandler) Update(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		apiresponse.PanicIfNeeded(apperror.InvalidArgumentError("invalid group id"))
	}

	group, err := h.Groups.GetByID(c.Context(), id)
	apiresponse.PanicIfNeeded(mapTenantErr(err))
	if !scopeFromCtx(c).Allows(group.AgencyID) {
		apiresponse.PanicIfNeeded(apperror.NotFoundError(tenant.ErrGroupNotFound.Error()))
	}

	var req updateGroupRequest
	if err := c.BodyParser(&req); err != nil {
		apiresponse.PanicIfNeeded(apperror.InvalidArgumentError("malformed request body"))
	}
	if req.Name != nil {
		group.Name = *req.Name
	}
	if req.Active != nil {
		group.Active = *req.Active
	}

	if err := h.Groups.Update(c.Context(), group); err != nil {
		apiresponse.PanicIfNeeded(mapTenantErr(err))
	}
	return ok(c, group)
}

func (h *GroupHandler) Delete(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		apiresponse.PanicIfNeeded(apperror.InvalidArgumentError("invalid group id"))
	}

	group, err := h.Groups.GetByID(c.Context(), id)
	apiresponse.PanicIfNeeded(mapTenantErr(err))
	if !scopeFromCtx(c).Allows(group.AgencyID) {
		apiresponse.PanicIfNeeded(apperror.NotFoundError(tenant.ErrGroupNotFound.Error()))
	}

	if c.Query("hard") == "true" {
		if err := h.Groups.Detach(c.Context(), id); err != nil {
			apiresponse.PanicIfNeeded(apperror.As(err))
		}
		if err := h.Groups.HardDelete(c.Context(), id); err != nil {
			apiresponse.PanicIfNeeded(apperror.As(err))
		}
		return ok(c, fiber.Map{"deleted": true, "hard": true})
	}

	if err := h.Groups.SoftDelete(c.Context(), id); err != nil {
		apiresponse.PanicIfNeeded(apperror.As(err))
	}
	return ok(c, fiber.Map{"deleted": true, "hard": false})
}
