package rest

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/doualaexpress/deligate/auth/security"
	"github.com/doualaexpress/deligate/pkg/apiresponse"
	"github.com/doualaexpress/deligate/pkg/apperror"
	tenant "github.com/doualaexpress/deligate/tenant/domain"
)

type AgencyHandler struct {
	Agencies tenant.AgencyRepository
}

// RegisterAgencies wires the super_admin-only agency management routes:
// list, create, partial update, soft-delete.
func RegisterAgencies(router fiber.Router, authMiddleware, requireSuperAdmin fiber.Handler, agencies tenant.AgencyRepository) *AgencyHandler {
	h := &AgencyHandler{Agencies: agencies}
	group := router.Group("/agencies", authMiddleware, requireSuperAdmin)
	group.Get("/", h.List)
	group.Post("/", h.Create)
	group.Put("/:id", h.Update)
	group.Delete("/:id", h.Delete)
	return h
}

func (h *AgencyHandler) List(c *fiber.Ctx) error {
	agencies, err := h.Agencies.List(c.Context())
	apiresponse.PanicIfNeeded(apperror.As(err))
	return ok(c, agencies)
}

type createAgencyRequest struct {
	Name string `json:"name"`
	Email string `json:"email"`
	Password string `json:"password"`
	Code string `json:"code"`
	Address string `json:"address"`
	Phone string `json:"phone"`
}

func (h *AgencyHandler) Create(c *fiber.Ctx) error {
	var req createAgencyRequest
	if err := c.BodyParser(&req); err != nil {
		apiresponse.PanicIfNeeded(apperror.InvalidArgumentError("malformed request body"))
	}
	apiresponse.PanicIfNeeded(validateCreateAgencyRequest(c.Context(), req))

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		apiresponse.PanicIfNeeded(apperror.InternalError("could not hash password"))
	}

	agency := &tenant.Agency{
		Name: req.Name,
		Email: req.Email,
		PasswordHash: hash,
		Role: tenant.RoleAgency,
		Active: true,
		Code: req.Code,
		Address: req.Address,
		Phone: req.Phone,
	}
	if err := h.Agencies.Create(c.Context(), agency); err != nil {
		apiresponse.PanicIfNeeded(mapTenantErr(err))
	}
	return c.Status(fiber.StatusCreated).JSON(apiresponse.Ok(agency))
}

type updateAgencyRequest struct {
	Name *string `json:"name"`
	Email *string `json:"email"`
	Password *string `json:"password"`
	Active *bool `json:"is_active"`
	Code *string `json:"code"`
	Address *string `json:"address"`
	Phone *string `json:"phone"`
}

func (h *AgencyHandler) Update(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		apiresponse.PanicIfNeeded(apperror.InvalidArgumentError("invalid agency id"))
	}
	agency, err := h.Agencies.GetByID(c.Context(), id)
	apiresponse.PanicIfNeeded(mapTenantErr(err))

	var req updateAgencyRequest
	if err := c.BodyParser(&req); err != nil {
		apiresponse.PanicIfNeeded(apperror.InvalidArgumentError("malformed request body"))
	}

	if req.Name != nil {
		agency.Name = *req.Name
	}
	if req.Email != nil {
		agency.Email = *req.Email
	}
	if req.Password != nil && *req.Password != "" {
		hash, err := security.HashPassword(*req.Password)
		if err != nil {
			apiresponse.PanicIfNeeded(apperror.InternalError("could not hash password"))
		}
		agency.PasswordHash = hash
	}
	if req.Active != nil {
		agency.Active = *req.Active
	}
	if req.Code != nil {
		agency.Code = *req.Code
	}
	if req.Address != nil {
		agency.Address = *req.Address
	}
	if req.Phone != nil {
		agency.Phone = *req.Phone
	}

	if err := h.Agencies.Update(c.Context(), agency); err != nil {
		apiresponse.PanicIfNeeded(mapTenantErr(err))
	}
	return ok(c, agency)
}

func (h *AgencyHandler) Delete(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		apiresponse.PanicIfNeeded(apperror.InvalidArgumentError("invalid agency id"))
	}
	if err := h.Agencies.SoftDelete(c.Context(), id); err != nil {
		apiresponse.PanicIfNeeded(mapTenantErr(err))
	}
	return ok(c, fiber.Map{"deleted": true})
}

// mapTenantErr translates tenant/domain sentinel errors to the right
// apperror.GenericError kind.
func mapTenantErr(err error) error {
	if err == nil {
		return nil
	}
	switch err {
	case tenant.ErrAgencyNotFound, tenant.ErrGroupNotFound:
		return apperror.NotFoundError(err.Error())
	case tenant.ErrDuplicateAgency, tenant.ErrDuplicateGroup:
		return apperror.ConflictError(err.Error())
	default:
		return apperror.As(err)
	}
}
