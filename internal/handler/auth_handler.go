package handler

import (
	"errors"

	"github.com/arturoeanton/devmind-gateway/internal/domain"
	"github.com/arturoeanton/devmind-gateway/internal/port"
	"github.com/arturoeanton/devmind-gateway/internal/service"
	"github.com/gofiber/fiber/v3"
)

// AuthHandler handles registration and login.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register sets up auth routes on the given (unprotected) router.
func (h *AuthHandler) Register(router fiber.Router) {
	router.Post("/register", h.RegisterUser)
	router.Post("/login", h.Login)
}

// RegisterUser creates a new account and returns a bearer token.
func (h *AuthHandler) RegisterUser(c fiber.Ctx) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if err := c.Bind().JSON(&body); err != nil || body.Email == "" || body.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Email and password required",
		})
	}

	token, user, err := h.authService.Register(c.Context(), body.Email, body.Password, body.Name)
	if err != nil {
		if errors.Is(err, port.ErrDuplicateEmail) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Email already registered",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token": token,
		"user":  userPayload(user),
	})
}

// Login authenticates an existing account and returns a bearer token.
func (h *AuthHandler) Login(c fiber.Ctx) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind().JSON(&body); err != nil || body.Email == "" || body.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Email and password required",
		})
	}

	token, user, err := h.authService.Login(c.Context(), body.Email, body.Password)
	if err != nil {
		if errors.Is(err, port.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid credentials",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  userPayload(user),
	})
}

func userPayload(u *domain.User) fiber.Map {
	return fiber.Map{
		"id":    u.ID,
		"email": u.Email,
		"name":  u.Name,
	}
}
