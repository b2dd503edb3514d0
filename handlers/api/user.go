package api

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"threadpost/config"
	"threadpost/middleware"
	"threadpost/models"
	"threadpost/storage"
	"threadpost/utils"
)

const tokenTTL = 24 * time.Hour

// UserHandler handles account registration and login
type UserHandler struct {
	config *config.Config
	users  *storage.UserStorage
}

// NewUserHandler creates a new user handler
func NewUserHandler(cfg *config.Config, users *storage.UserStorage) *UserHandler {
	return &UserHandler{
		config: cfg,
		users:  users,
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleRegister creates a new account in the user directory
func (h *UserHandler) HandleRegister(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ValidationError("Invalid request body", err)
	}

	user := &models.User{
		Name:  utils.SanitizeStrict(req.Name),
		Email: utils.SanitizeStrict(req.Email),
	}
	if err := h.users.Create(user, req.Password); err != nil {
		return err
	}

	utils.Log.Info("User registered: email=%s", user.Email)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Account created.",
		"user":    user,
	})
}

// HandleLogin authenticates an account and issues a token
func (h *UserHandler) HandleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ValidationError("Invalid request body", err)
	}

	user, err := h.users.Authenticate(req.Email, req.Password)
	if err != nil {
		return err
	}

	token, err := middleware.IssueToken(h.config.JWT.Secret, user.ID, user.Email, tokenTTL)
	if err != nil {
		return utils.InternalServerError("Failed to issue token", err)
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// HandleMe returns the profile of the authenticated user
func (h *UserHandler) HandleMe(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(string)
	if userID == "" {
		return utils.UnauthorizedError("Not authenticated", nil)
	}

	user, err := h.users.GetByID(userID)
	if err != nil {
		return err
	}

	return c.JSON(user)
}
