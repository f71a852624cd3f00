package service_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"renoviq-server/internal/model"
	"renoviq-server/internal/repository"
)

// fakeUserRepo mimics the uniqueness guarantees of the real table: the
// duplicate check and insert happen under one lock, so concurrent creates for
// the same email/username resolve to exactly one success.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, existing := range f.users {
		if existing.Email == user.Email {
			return uuid.Nil, repository.ErrDuplicateEmail
		}
		if existing.Username == user.Username {
			return uuid.Nil, repository.ErrDuplicateUsername
		}
	}

	id := uuid.New()
	stored := *user
	stored.ID = id
	f.users[id] = &stored

	return id, nil
}

func (f *fakeUserRepo) find(match func(*model.User) bool) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, user := range f.users {
		if match(user) {
			copied := *user
			return &copied, nil
		}
	}

	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return f.find(func(u *model.User) bool { return u.ID == id })
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return f.find(func(u *model.User) bool { return u.Email == email })
}

func (f *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return f.find(func(u *model.User) bool { return u.Username == username })
}

func (f *fakeUserRepo) FindByGoogleID(ctx context.Context, googleID string) (*model.User, error) {
	return f.find(func(u *model.User) bool { return u.GoogleID != nil && *u.GoogleID == googleID })
}

func (f *fakeUserRepo) MarkVerified(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}

	user.IsVerified = true
	user.VerificationCode = nil
	user.VerificationExpiry = nil

	return nil
}

func (f *fakeUserRepo) SetVerificationCode(ctx context.Context, id uuid.UUID, code string, expiry time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}

	user.VerificationCode = &code
	user.VerificationExpiry = &expiry

	return nil
}

func (f *fakeUserRepo) LinkGoogleID(ctx context.Context, id uuid.UUID, googleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}

	user.GoogleID = &googleID

	return nil
}

// expireCode backdates the stored expiry so tests can exercise the lazy
// expiry check without sleeping.
func (f *fakeUserRepo) expireCode(email string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, user := range f.users {
		if user.Email == email {
			past := time.Now().Add(-time.Minute)
			user.VerificationExpiry = &past
		}
	}
}

type fakeMailer struct {
	mu        sync.Mutex
	lastCode  string
	sent      int
	failSends bool
}

func (f *fakeMailer) SendVerificationCode(ctx context.Context, to, firstName, lastName, code string, resend bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failSends {
		return errors.New("smtp unreachable")
	}

	f.lastCode = code
	f.sent++

	return nil
}

func (f *fakeMailer) SendContactNotification(ctx context.Context, fullName, email, company, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failSends {
		return errors.New("smtp unreachable")
	}

	f.sent++

	return nil
}

func (f *fakeMailer) code() string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.lastCode
}

type fakeContactRepo struct {
	mu      sync.Mutex
	entries []model.ContactMessage
}

func (f *fakeContactRepo) Create(ctx context.Context, entry *model.ContactMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entry.ID = uuid.New()
	entry.CreatedAt = time.Now()
	f.entries = append(f.entries, *entry)

	return nil
}

func (f *fakeContactRepo) stored() []model.ContactMessage {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]model.ContactMessage{}, f.entries...)
}

type fakeRenovationRepo struct {
	mu          sync.Mutex
	renovations map[uuid.UUID]*model.Renovation
}

func newFakeRenovationRepo() *fakeRenovationRepo {
	return &fakeRenovationRepo{renovations: make(map[uuid.UUID]*model.Renovation)}
}

func (f *fakeRenovationRepo) Create(ctx context.Context, renovation *model.Renovation) (*model.Renovation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	renovation.ID = uuid.New()
	renovation.CreatedAt = time.Now()
	stored := *renovation
	f.renovations[renovation.ID] = &stored

	return renovation, nil
}

func (f *fakeRenovationRepo) ListByUserID(ctx context.Context, userID uuid.UUID) ([]model.Renovation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	result := []model.Renovation{}
	for _, renovation := range f.renovations {
		if renovation.UserID == userID {
			result = append(result, *renovation)
		}
	}

	return result, nil
}

func (f *fakeRenovationRepo) DeleteOwned(ctx context.Context, id, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	renovation, ok := f.renovations[id]
	if !ok || renovation.UserID != userID {
		return repository.ErrNotFound
	}

	delete(f.renovations, id)

	return nil
}
