package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"renoviq-server/internal/events"
	"renoviq-server/internal/mailer"
	"renoviq-server/internal/model"
	"renoviq-server/internal/otp"
	"renoviq-server/internal/repository"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrUserNotFound       = errors.New("user not found")
	ErrAlreadyVerified    = errors.New("user already verified")
	ErrCodeExpired        = errors.New("verification code expired")
	ErrCodeInvalid        = errors.New("invalid verification code")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrEmailNotVerified   = errors.New("please verify your email first")
)

type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Username  string
	Password  string
}

type GoogleProfile struct {
	GoogleID  string
	Email     string
	FirstName string
	LastName  string
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) error
	VerifyOTP(ctx context.Context, email, code string) (*model.User, error)
	ResendOTP(ctx context.Context, email string) error
	Login(ctx context.Context, username, password string) (*model.User, error)
	GoogleLogin(ctx context.Context, profile GoogleProfile) (*model.User, error)
	GetUser(ctx context.Context, userID uuid.UUID) (*model.User, error)
}

type authService struct {
	userRepo  repository.UserRepository
	mail      mailer.Sender
	publisher events.EventPublisher
	otpTTL    time.Duration
}

func NewAuthService(userRepo repository.UserRepository, mail mailer.Sender, publisher events.EventPublisher) AuthService {
	return &authService{
		userRepo:  userRepo,
		mail:      mail,
		publisher: publisher,
		otpTTL:    otp.DefaultTTL,
	}
}

// Register creates the user in the pending-verification state and dispatches
// the code by email. The uniqueness check rides on the users table unique
// indexes, so two concurrent registrations for the same email/username cannot
// both succeed. An email failure after the insert is surfaced to the caller
// but the row stays; the user recovers via resend.
func (s *authService) Register(ctx context.Context, input RegisterInput) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	code, err := otp.Generate()
	if err != nil {
		return err
	}
	expiry := time.Now().Add(s.otpTTL)

	user := &model.User{
		FirstName:          input.FirstName,
		LastName:           input.LastName,
		Email:              input.Email,
		Username:           input.Username,
		PasswordHash:       string(hashedPassword),
		IsVerified:         false,
		VerificationCode:   &code,
		VerificationExpiry: &expiry,
	}

	newID, err := s.userRepo.Create(ctx, user)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateEmail):
			return ErrEmailTaken
		case errors.Is(err, repository.ErrDuplicateUsername):
			return ErrUsernameTaken
		}
		return err
	}
	user.ID = newID

	if err := s.publisher.PublishUserRegistered(user.ID, user.Email); err != nil {
		slog.WarnContext(ctx, "failed to publish user.registered event", "error", err)
	}

	if err := s.mail.SendVerificationCode(ctx, user.Email, user.FirstName, user.LastName, code, false); err != nil {
		return fmt.Errorf("sending verification email: %w", err)
	}

	return nil
}

func (s *authService) VerifyOTP(ctx context.Context, email, code string) (*model.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if user.IsVerified {
		return nil, ErrAlreadyVerified
	}

	if user.VerificationExpiry == nil || time.Now().After(*user.VerificationExpiry) {
		return nil, ErrCodeExpired
	}

	if user.VerificationCode == nil || *user.VerificationCode != code {
		return nil, ErrCodeInvalid
	}

	if err := s.userRepo.MarkVerified(ctx, user.ID); err != nil {
		return nil, err
	}

	user.IsVerified = true
	user.VerificationCode = nil
	user.VerificationExpiry = nil

	if err := s.publisher.PublishUserVerified(user.ID); err != nil {
		slog.WarnContext(ctx, "failed to publish user.verified event", "error", err)
	}

	return user, nil
}

// ResendOTP replaces the outstanding code, which also invalidates the
// previous one.
func (s *authService) ResendOTP(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if user.IsVerified {
		return ErrAlreadyVerified
	}

	code, err := otp.Generate()
	if err != nil {
		return err
	}
	expiry := time.Now().Add(s.otpTTL)

	if err := s.userRepo.SetVerificationCode(ctx, user.ID, code, expiry); err != nil {
		return err
	}

	if err := s.mail.SendVerificationCode(ctx, user.Email, user.FirstName, user.LastName, code, true); err != nil {
		return fmt.Errorf("sending verification email: %w", err)
	}

	return nil
}

// Login checks credentials before verification status so both failures
// surface as the same generic rejection to the credentials check, and the
// verification message only ever reaches the account's real owner.
func (s *authService) Login(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	// OAuth-only accounts carry no password hash; a password login against
	// them is a plain rejection, not a malformed-hash failure.
	if user.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}

	ok, err := comparePasswords(user.PasswordHash, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	if !user.IsVerified {
		return nil, ErrEmailNotVerified
	}

	return user, nil
}

// GoogleLogin resolves the federated identity to a local user: by google id
// first, then by email (linking the id onto the existing row), finally by
// creating a verified passwordless account.
func (s *authService) GoogleLogin(ctx context.Context, profile GoogleProfile) (*model.User, error) {
	user, err := s.userRepo.FindByGoogleID(ctx, profile.GoogleID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	user, err = s.userRepo.FindByEmail(ctx, profile.Email)
	if err == nil {
		if err := s.userRepo.LinkGoogleID(ctx, user.ID, profile.GoogleID); err != nil {
			return nil, err
		}
		user.GoogleID = &profile.GoogleID
		return user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	return s.createGoogleUser(ctx, profile)
}

func (s *authService) createGoogleUser(ctx context.Context, profile GoogleProfile) (*model.User, error) {
	user := &model.User{
		FirstName:  profile.FirstName,
		LastName:   profile.LastName,
		Email:      profile.Email,
		Username:   usernameFromEmail(profile.Email),
		IsVerified: true,
		GoogleID:   &profile.GoogleID,
	}

	newID, err := s.userRepo.Create(ctx, user)
	if errors.Is(err, repository.ErrDuplicateUsername) {
		// Derived username collided with an unrelated account; retry with a
		// random suffix.
		user.Username = user.Username + "-" + uuid.NewString()[:8]
		newID, err = s.userRepo.Create(ctx, user)
	}
	if err != nil {
		return nil, err
	}
	user.ID = newID

	if err := s.publisher.PublishUserRegistered(user.ID, user.Email); err != nil {
		slog.WarnContext(ctx, "failed to publish user.registered event", "error", err)
	}

	return user, nil
}

func (s *authService) GetUser(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return user, nil
}

// comparePasswords reports whether plaintext matches the stored bcrypt hash.
// A mismatch is a clean false; any other failure (malformed stored hash,
// empty hash on an OAuth-only account) is an error the caller must not
// swallow into false.
func comparePasswords(storedHash, plaintext string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(plaintext))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}

	return false, fmt.Errorf("malformed password hash: %w", err)
}

func usernameFromEmail(email string) string {
	local, _, found := strings.Cut(email, "@")
	if !found || local == "" {
		return "user-" + uuid.NewString()[:8]
	}

	return local
}
