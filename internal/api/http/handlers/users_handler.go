package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/logistics-kit/delivery-service/internal/api/dto"
	"github.com/logistics-kit/delivery-service/internal/domain"
	"github.com/logistics-kit/delivery-service/internal/service"
	apperrors "github.com/logistics-kit/delivery-service/pkg/util"
)

// UsersHandler exposes auth endpoints and the user directory.
type UsersHandler struct {
	auth     *service.AuthService
	identity *service.IdentityService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService, identityService *service.IdentityService) *UsersHandler {
	return &UsersHandler{auth: authService, identity: identityService}
}

// Register handles POST /auth/register.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, token, exp, err := h.auth.Register(c.Context(), service.RegisterInput{
		Email:       req.Email,
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		Password:    req.Password,
		Role:        req.Role,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"user": userResponse(user),
			"auth": dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

// Login handles POST /auth/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	user, token, exp, err := h.auth.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user": userResponse(user),
			"auth": dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

// ListDrivers handles GET /users/drivers (admin assignment screen).
func (h *UsersHandler) ListDrivers(c *fiber.Ctx) error {
	drivers, err := h.identity.ListDrivers(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(drivers))
	for i := range drivers {
		items = append(items, userResponse(&drivers[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func userResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:          user.ID,
		Email:       user.Email,
		FullName:    user.FullName,
		PhoneNumber: user.PhoneNumber,
		Role:        user.Role,
	}
}
