package rest

import (
	"github.com/gofiber/fiber/v2"

	authapp "github.com/doualaexpress/deligate/auth/application"
	authinfra "github.com/doualaexpress/deligate/auth/infrastructure"
	"github.com/doualaexpress/deligate/pkg/apiresponse"
	"github.com/doualaexpress/deligate/pkg/apperror"
)

type AuthHandler struct {
	Service *authapp.Service
}

// RegisterAuth wires POST /auth/login, POST /auth/logout and GET /auth/me.
// Logout and Me require the auth middleware; Login does not.
func RegisterAuth(router fiber.Router, authMiddleware fiber.Handler, svc *authapp.Service) *AuthHandler {
	h := &AuthHandler{Service: svc}
	group := router.Group("/auth")
	group.Post("/login", h.Login)
	group.Post("/logout", authMiddleware, h.Logout)
	group.Get("/me", authMiddleware, h.Me)
	group.Get("/join-by-code", h.JoinByCode)
	return h
}

type loginRequest struct {
	Email string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		apiresponse.PanicIfNeeded(apperror.InvalidArgumentError("malformed request body"))
	}
	apiresponse.PanicIfNeeded(validateLoginRequest(c.Context(), req))

	session, err := h.Service.Login(c.Context(), req.Email, req.Password)
	apiresponse.PanicIfNeeded(toAuthError(err))

	return ok(c, fiber.Map{
		"token": session.Token,
		"user": fiber.Map{
			"id": session.Agency.ID,
			"role": session.Agency.Role,
			"agency_id": session.Agency.ID,
		},
	})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	token := authinfra.TokenFromCtx(c)
	claims := authinfra.ClaimsFromCtx(c)
	err := h.Service.Logout(c.Context(), token, claims)
	apiresponse.PanicIfNeeded(apperror.As(err))
	return ok(c, fiber.Map{"logged_out": true})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	claims := authinfra.ClaimsFromCtx(c)
	agency, err := h.Service.Me(c.Context(), claims)
	apiresponse.PanicIfNeeded(apperror.As(err))
	return ok(c, fiber.Map{
		"agency_id": claims.AgencyID,
		"role": claims.Role,
		"expires_at": claims.ExpiresAt,
		"agency": agency,
	})
}

// JoinByCode is the anonymous lookup a WhatsApp group admin uses to confirm
// which agency a join code belongs to, without authenticating.
func (h *AuthHandler) JoinByCode(c *fiber.Ctx) error {
	code := c.Query("code")
	if code == "" {
		apiresponse.PanicIfNeeded(apperror.InvalidArgumentError("code is required"))
	}
	meta, err := h.Service.JoinByCode(c.Context(), code)
	apiresponse.PanicIfNeeded(apperror.As(err))
	return ok(c, meta)
}

// toAuthError maps auth/domain sentinel errors to the right apperror.GenericError.
func toAuthError(err error) error {
	if err == nil {
		return nil
	}
	return apperror.UnauthenticatedError(err.Error())
}
