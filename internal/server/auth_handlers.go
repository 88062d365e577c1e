package server

import (
	"inkwell/internal/featureflags"
	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Register handles POST /api/auth/register
func (s *Server) Register(c *fiber.Ctx) error {
	ctx := c.Context()

	// Kill switch for incident response; open by default.
	if !s.featureFlags.Enabled(featureflags.FlagRegistration, "", true) {
		return models.RespondWithError(c, fiber.StatusServiceUnavailable,
			models.NewValidationError("Registration is temporarily disabled"))
	}

	var req struct {
		Username  string `json:"username"`
		Email     string `json:"email"`
		Password  string `json:"password"`
		AvatarURL string `json:"avatar_url,omitempty"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.Register(ctx, service.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		return respondError(c, err)
	}

	token, err := s.userService.GenerateToken(user)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user":  user,
		"token": token,
	})
}

// Login handles POST /api/auth/login
func (s *Server) Login(c *fiber.Ctx) error {
	ctx := c.Context()

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Username == "" || req.Password == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Username and password are required"))
	}

	user, err := s.userService.Login(ctx, req.Username, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	token, err := s.userService.GenerateToken(user)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"user":  user,
		"token": token,
	})
}

// GetMe handles GET /api/auth/me
func (s *Server) GetMe(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	user, err := s.userService.GetByID(ctx, userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}
