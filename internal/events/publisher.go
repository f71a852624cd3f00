package events

import (
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

type EventPublisher interface {
	PublishUserRegistered(userID uuid.UUID, email string) error
	PublishUserVerified(userID uuid.UUID) error
	PublishRenovationCreated(renovationID, userID uuid.UUID, roomType string) error
}

type NatsPublisher struct {
	conn *nats.Conn
}

func NewNatsPublisher(natsURL string) (EventPublisher, error) {
	nc, err := nats.Connect(natsURL)

	if err != nil {
		return nil, err
	}

	return &NatsPublisher{conn: nc}, nil
}

type UserRegisteredEvent struct {
	EventType    string    `json:"event_type"`
	UserID       uuid.UUID `json:"user_id"`
	Email        string    `json:"email"`
	RegisteredAt time.Time `json:"registered_at"`
}

type UserVerifiedEvent struct {
	EventType  string    `json:"event_type"`
	UserID     uuid.UUID `json:"user_id"`
	VerifiedAt time.Time `json:"verified_at"`
}

type RenovationCreatedEvent struct {
	EventType    string    `json:"event_type"`
	RenovationID uuid.UUID `json:"renovation_id"`
	UserID       uuid.UUID `json:"user_id"`
	RoomType     string    `json:"room_type"`
	CreatedAt    time.Time `json:"created_at"`
}

func (p *NatsPublisher) publish(subject string, event any) error {
	eventJSON, err := json.Marshal(event)
	if err != nil {
		log.Printf("Error marshalling event JSON: %v", err)
		return err
	}

	if err := p.conn.Publish(subject, eventJSON); err != nil {
		log.Printf("Error publishing to NATS: %v", err)
		return err
	}

	log.Printf("Published event to NATS on subject '%s'", subject)

	return nil
}

func (p *NatsPublisher) PublishUserRegistered(userID uuid.UUID, email string) error {
	return p.publish("user.registered", UserRegisteredEvent{
		EventType:    "user.registered",
		UserID:       userID,
		Email:        email,
		RegisteredAt: time.Now(),
	})
}

func (p *NatsPublisher) PublishUserVerified(userID uuid.UUID) error {
	return p.publish("user.verified", UserVerifiedEvent{
		EventType:  "user.verified",
		UserID:     userID,
		VerifiedAt: time.Now(),
	})
}

func (p *NatsPublisher) PublishRenovationCreated(renovationID, userID uuid.UUID, roomType string) error {
	return p.publish("renovation.created", RenovationCreatedEvent{
		EventType:    "renovation.created",
		RenovationID: renovationID,
		UserID:       userID,
		RoomType:     roomType,
		CreatedAt:    time.Now(),
	})
}

// NoopPublisher is used when NATS is not configured. Lifecycle events are
// best-effort in this deployment and dropping them is acceptable.
type NoopPublisher struct{}

func (NoopPublisher) PublishUserRegistered(uuid.UUID, string) error { return nil }

func (NoopPublisher) PublishUserVerified(uuid.UUID) error { return nil }

func (NoopPublisher) PublishRenovationCreated(uuid.UUID, uuid.UUID, string) error { return nil }
