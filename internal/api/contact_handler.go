package api

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"renoviq-server/internal/model"
	"renoviq-server/internal/service"
)

type ContactHandler struct {
	contactService service.ContactService
	validate       *validator.Validate
}

func NewContactHandler(contactService service.ContactService) *ContactHandler {
	return &ContactHandler{
		contactService: contactService,
		validate:       validator.New(),
	}
}

type ContactRequest struct {
	FullName string `json:"fullName" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Company  string `json:"company"`
	Message  string `json:"message" validate:"required"`
}

func (h *ContactHandler) Submit(c *fiber.Ctx) error {
	var request ContactRequest

	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	if err := h.validate.Struct(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Full name, email, and message are required", "details": err.Error()})
	}

	entry := &model.ContactMessage{
		FullName: request.FullName,
		Email:    request.Email,
		Company:  request.Company,
		Message:  request.Message,
	}

	if err := h.contactService.Submit(c.Context(), entry); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to submit contact form"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Contact form submitted successfully"})
}
