package service

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"renoviq-server/internal/events"
	"renoviq-server/internal/model"
	"renoviq-server/internal/repository"
)

var (
	ErrInvalidFileType    = errors.New("invalid file type, only images are allowed")
	ErrRenovationNotFound = errors.New("renovation not found")
)

type CreateRenovationInput struct {
	UserID      uuid.UUID
	Image       []byte
	ContentType string
	RoomType    string
	Description *string
}

type RenovationService interface {
	Create(ctx context.Context, input CreateRenovationInput) (*model.Renovation, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Renovation, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
}

type renovationService struct {
	renovationRepo repository.RenovationRepository
	publisher      events.EventPublisher
}

func NewRenovationService(renovationRepo repository.RenovationRepository, publisher events.EventPublisher) RenovationService {
	return &renovationService{
		renovationRepo: renovationRepo,
		publisher:      publisher,
	}
}

// Create stores the upload as a data URI. The generated image is currently the
// original echoed back; the inference pipeline is not part of this service.
func (s *renovationService) Create(ctx context.Context, input CreateRenovationInput) (*model.Renovation, error) {
	if !strings.HasPrefix(input.ContentType, "image/") {
		return nil, ErrInvalidFileType
	}

	dataURI := "data:" + input.ContentType + ";base64," + base64.StdEncoding.EncodeToString(input.Image)

	renovation := &model.Renovation{
		UserID:         input.UserID,
		OriginalImage:  dataURI,
		GeneratedImage: dataURI,
		RoomType:       input.RoomType,
		Description:    input.Description,
	}

	renovation, err := s.renovationRepo.Create(ctx, renovation)
	if err != nil {
		return nil, err
	}

	if err := s.publisher.PublishRenovationCreated(renovation.ID, renovation.UserID, renovation.RoomType); err != nil {
		slog.WarnContext(ctx, "failed to publish renovation.created event", "error", err)
	}

	return renovation, nil
}

func (s *renovationService) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Renovation, error) {
	return s.renovationRepo.ListByUserID(ctx, userID)
}

// Delete removes the renovation only when it belongs to userID.
func (s *renovationService) Delete(ctx context.Context, id, userID uuid.UUID) error {
	err := s.renovationRepo.DeleteOwned(ctx, id, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrRenovationNotFound
	}

	return err
}
