package api

import (
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"renoviq-server/internal/service"
)

// MaxImageSize caps uploads at 5MB, matching the client-side limit.
const MaxImageSize = 5 * 1024 * 1024

type RenovationHandler struct {
	renovationService service.RenovationService
}

func NewRenovationHandler(renovationService service.RenovationService) *RenovationHandler {
	return &RenovationHandler{renovationService: renovationService}
}

func (h *RenovationHandler) List(c *fiber.Ctx) error {
	userID, err := GetUserIDFromSession(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	renovations, err := h.renovationService.ListByUser(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch renovations"})
	}

	return c.Status(fiber.StatusOK).JSON(renovations)
}

func (h *RenovationHandler) Create(c *fiber.Ctx) error {
	userID, err := GetUserIDFromSession(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Image file is required"})
	}

	if fileHeader.Size > MaxImageSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Image exceeds the 5MB limit"})
	}

	roomType := c.FormValue("roomType")
	if roomType == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "roomType is required"})
	}

	var description *string
	if d := c.FormValue("description"); d != "" {
		description = &d
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to read uploaded file"})
	}
	defer file.Close()

	image, err := io.ReadAll(io.LimitReader(file, MaxImageSize+1))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to read uploaded file"})
	}
	if len(image) > MaxImageSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Image exceeds the 5MB limit"})
	}

	renovation, err := h.renovationService.Create(c.Context(), service.CreateRenovationInput{
		UserID:      userID,
		Image:       image,
		ContentType: fileHeader.Header.Get("Content-Type"),
		RoomType:    roomType,
		Description: description,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidFileType) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid file type. Only images are allowed."})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create renovation"})
	}

	return c.Status(fiber.StatusCreated).JSON(renovation)
}

func (h *RenovationHandler) Delete(c *fiber.Ctx) error {
	userID, err := GetUserIDFromSession(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	renovationID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid renovation ID"})
	}

	if err := h.renovationService.Delete(c.Context(), renovationID, userID); err != nil {
		if errors.Is(err, service.ErrRenovationNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Renovation not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete renovation"})
	}

	return c.SendStatus(fiber.StatusOK)
}
