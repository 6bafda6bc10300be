package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/inkhaven/blog-backend/internal/dto"
	"github.com/inkhaven/blog-backend/internal/services"
)

const oauthStateCookie = "oauth_state"

type AuthHandler struct {
	authService *services.AuthService
	google      services.GoogleVerifier
}

func NewAuthHandler(authService *services.AuthService, google services.GoogleVerifier) *AuthHandler {
	return &AuthHandler{authService: authService, google: google}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Email == "" || len(req.Password) < 8 {
		return badRequest(c, "Email required and password must be at least 8 characters")
	}

	if err := h.authService.Register(c.Context(), &req); err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return internalError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.OkResponse{OK: true})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.authService.Login(c.Context(), &req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return unauthorized(c, err.Error())
		}
		return internalError(c, err)
	}

	return c.JSON(resp)
}

func (h *AuthHandler) RequestMagicLink(c *fiber.Ctx) error {
	var req dto.MagicLinkRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Email == "" {
		return badRequest(c, "Email is required")
	}

	if err := h.authService.RequestMagicLink(c.Context(), req.Email); err != nil {
		return internalError(c, err)
	}

	return c.JSON(dto.OkResponse{OK: true})
}

func (h *AuthHandler) VerifyMagicLink(c *fiber.Ctx) error {
	email := c.Query("email")
	token := c.Query("token")
	if email == "" || token == "" {
		return badRequest(c, "Email and token are required")
	}

	resp, err := h.authService.VerifyMagicLink(c.Context(), email, token)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidMagicLink):
			return unauthorized(c, err.Error())
		case errors.Is(err, services.ErrMagicLinkUsed), errors.Is(err, services.ErrMagicLinkExpired):
			return badRequest(c, err.Error())
		}
		return internalError(c, err)
	}

	return c.JSON(resp)
}

func (h *AuthHandler) RequestPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Email == "" {
		return badRequest(c, "Email is required")
	}

	if err := h.authService.RequestPasswordReset(c.Context(), req.Email); err != nil {
		return internalError(c, err)
	}

	return c.JSON(dto.OkResponse{OK: true})
}

func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req dto.PasswordResetConfirmRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Token == "" || len(req.NewPassword) < 8 {
		return badRequest(c, "Token required and password must be at least 8 characters")
	}

	if err := h.authService.ResetPassword(c.Context(), req.Token, req.NewPassword); err != nil {
		if errors.Is(err, services.ErrResetTokenInvalid) || errors.Is(err, services.ErrResetTokenExpired) {
			return badRequest(c, err.Error())
		}
		return internalError(c, err)
	}

	return c.JSON(dto.OkResponse{OK: true})
}

// GoogleLogin redirects the browser into Google's consent flow with a
// single-use state cookie.
func (h *AuthHandler) GoogleLogin(c *fiber.Ctx) error {
	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return internalError(c, err)
	}
	state := hex.EncodeToString(raw)

	c.Cookie(&fiber.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Expires:  time.Now().Add(10 * time.Minute),
		HTTPOnly: true,
		SameSite: "Lax",
	})
	return c.Redirect(h.google.AuthURL(state), fiber.StatusTemporaryRedirect)
}

func (h *AuthHandler) GoogleCallback(c *fiber.Ctx) error {
	code := c.Query("code")
	state := c.Query("state")
	if code == "" {
		return badRequest(c, "Authorization code is required")
	}
	if state == "" || state != c.Cookies(oauthStateCookie) {
		return unauthorized(c, "invalid oauth state")
	}
	c.ClearCookie(oauthStateCookie)

	profile, err := h.google.ResolveProfile(c.Context(), code)
	if err != nil {
		return unauthorized(c, "failed to verify google identity")
	}

	resp, err := h.authService.HandleGoogleLogin(c.Context(), profile)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(resp)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.authService.RefreshTokens(c.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, services.ErrInvalidToken) {
			return unauthorized(c, err.Error())
		}
		return internalError(c, err)
	}

	return c.JSON(resp)
}

// Logout always reports success for well-formed requests; whether the token
// was live is deliberately not observable.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req dto.LogoutRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.authService.Logout(c.Context(), req.RefreshToken); err != nil {
		return internalError(c, err)
	}

	return c.JSON(dto.OkResponse{OK: true})
}
