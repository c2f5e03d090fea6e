package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ivasibi/ascent/internal/auth/dto"
	"github.com/ivasibi/ascent/internal/auth/session"
	"github.com/ivasibi/ascent/internal/auth/service"
	autherror "github.com/ivasibi/ascent/internal/errors"
	"github.com/ivasibi/ascent/pkg/constant"
)

type AuthHandler struct {
	userService *service.UserService
	sessionTTL  time.Duration
}

func NewAuthHandler(userService *service.UserService, sessionTTL time.Duration) *AuthHandler {
	return &AuthHandler{userService: userService, sessionTTL: sessionTTL}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input dto.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid input",
		})
	}

	if err := h.userService.Register(c.Context(), input); err != nil {
		switch {
		case errors.Is(err, autherror.ErrUsernameAlreadyInUse),
			errors.Is(err, autherror.ErrEmailAlreadyInUse):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, autherror.ErrInvalidArgument):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "registration failed"})
		}
	}

	return c.SendStatus(fiber.StatusCreated)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input dto.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid input",
		})
	}

	carrier := h.carrier(c)
	if err := h.userService.Login(c.Context(), carrier, input); err != nil {
		switch {
		case errors.Is(err, autherror.ErrInvalidCredentials):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, autherror.ErrUserDisabled):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "login failed"})
		}
	}

	h.writeCookie(c, carrier)
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	carrier := h.carrier(c)
	if err := h.userService.Logout(c.Context(), carrier); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "logout failed"})
	}

	h.writeCookie(c, carrier)
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AuthHandler) Navbar(c *fiber.Ctx) error {
	view, err := h.userService.Navbar(c.Context(), h.carrier(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "navbar unavailable"})
	}

	return c.Status(fiber.StatusOK).JSON(view)
}

// carrier binds the inbound session cookie, if any, to a per-request handle.
func (h *AuthHandler) carrier(c *fiber.Ctx) *session.Carrier {
	return session.NewCarrier(c.Cookies(constant.SessionCookieName))
}

// writeCookie reflects the carrier's post-operation state back to the
// browser: a fresh token after login, an expired cookie after logout.
func (h *AuthHandler) writeCookie(c *fiber.Ctx, carrier *session.Carrier) {
	token := carrier.Token()
	cookie := &fiber.Cookie{
		Name:     constant.SessionCookieName,
		Value:    token,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		MaxAge:   int(h.sessionTTL.Seconds()),
	}
	if token == "" {
		cookie.MaxAge = -1
		cookie.Expires = time.Unix(0, 0)
	}
	c.Cookie(cookie)
}
