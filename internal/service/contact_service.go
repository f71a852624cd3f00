package service

import (
	"context"
	"fmt"

	"renoviq-server/internal/mailer"
	"renoviq-server/internal/model"
	"renoviq-server/internal/repository"
)

type ContactService interface {
	Submit(ctx context.Context, entry *model.ContactMessage) error
}

type contactService struct {
	contactRepo repository.ContactRepository
	mail        mailer.Sender
}

func NewContactService(contactRepo repository.ContactRepository, mail mailer.Sender) ContactService {
	return &contactService{
		contactRepo: contactRepo,
		mail:        mail,
	}
}

// Submit persists the entry first, then forwards it by email. A notification
// failure after the row is written surfaces to the caller; the entry is kept.
func (s *contactService) Submit(ctx context.Context, entry *model.ContactMessage) error {
	if err := s.contactRepo.Create(ctx, entry); err != nil {
		return err
	}

	if err := s.mail.SendContactNotification(ctx, entry.FullName, entry.Email, entry.Company, entry.Message); err != nil {
		return fmt.Errorf("sending contact notification: %w", err)
	}

	return nil
}
