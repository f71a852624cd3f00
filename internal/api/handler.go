package api

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"renoviq-server/internal/model"
	"renoviq-server/internal/service"
	"renoviq-server/internal/session"
)

type AuthHandler struct {
	authService  service.AuthService
	sessions     session.Store
	validate     *validator.Validate
	secureCookie bool
}

func NewAuthHandler(authService service.AuthService, sessions session.Store, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		sessions:     sessions,
		validate:     validator.New(),
		secureCookie: secureCookie,
	}
}

type RegisterRequest struct {
	FirstName       string `json:"firstName" validate:"required"`
	LastName        string `json:"lastName" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Username        string `json:"username" validate:"required,min=3"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6"`
}

type ResendOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var request RegisterRequest

	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON", "details": err.Error()})
	}

	if err := h.validate.Struct(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input", "details": err.Error()})
	}

	err := h.authService.Register(c.Context(), service.RegisterInput{
		FirstName: request.FirstName,
		LastName:  request.LastName,
		Email:     request.Email,
		Username:  request.Username,
		Password:  request.Password,
	})

	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Email already registered"})
		case errors.Is(err, service.ErrUsernameTaken):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Username already taken"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to register user"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Verification code sent to your email"})
}

func (h *AuthHandler) VerifyOTP(c *fiber.Ctx) error {
	var request VerifyOTPRequest

	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	if err := h.validate.Struct(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input", "details": err.Error()})
	}

	user, err := h.authService.VerifyOTP(c.Context(), request.Email, request.OTP)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "User not found"})
		case errors.Is(err, service.ErrAlreadyVerified):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "User already verified"})
		case errors.Is(err, service.ErrCodeExpired):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "OTP expired"})
		case errors.Is(err, service.ErrCodeInvalid):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid OTP"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to verify OTP"})
	}

	if err := h.establishSession(c, user); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Login failed after verification"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "user": user})
}

func (h *AuthHandler) ResendOTP(c *fiber.Ctx) error {
	var request ResendOTPRequest

	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	if err := h.validate.Struct(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input", "details": err.Error()})
	}

	err := h.authService.ResendOTP(c.Context(), request.Email)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "User not found"})
		case errors.Is(err, service.ErrAlreadyVerified):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "User already verified"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to resend OTP"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Verification code resent to your email"})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var request LoginRequest

	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	if err := h.validate.Struct(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input", "details": err.Error()})
	}

	user, err := h.authService.Login(c.Context(), request.Username, request.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		case errors.Is(err, service.ErrEmailNotVerified):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Please verify your email first"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to log in"})
	}

	if err := h.establishSession(c, user); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to establish session"})
	}

	return c.Status(fiber.StatusOK).JSON(user)
}

// Logout destroys the session if one exists. Logging out twice is not an
// error.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	token := c.Cookies(SessionCookieName)
	if token != "" {
		if err := h.sessions.Destroy(c.Context(), token); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to log out"})
		}
	}

	h.clearSessionCookie(c)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Successfully logged out"})
}

func (h *AuthHandler) CurrentUser(c *fiber.Ctx) error {
	userID, err := GetUserIDFromSession(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	user, err := h.authService.GetUser(c.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch user"})
	}

	return c.Status(fiber.StatusOK).JSON(user)
}

func (h *AuthHandler) establishSession(c *fiber.Ctx, user *model.User) error {
	sess, err := h.sessions.Create(c.Context(), user.ID)
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    sess.Token,
		Expires:  sess.ExpiresAt,
		HTTPOnly: true,
		Secure:   h.secureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})

	return nil
}

func (h *AuthHandler) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   h.secureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
}
