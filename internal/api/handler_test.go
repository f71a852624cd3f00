package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"renoviq-server/internal/api"
	"renoviq-server/internal/events"
	"renoviq-server/internal/model"
	"renoviq-server/internal/repository"
	"renoviq-server/internal/service"
	"renoviq-server/internal/session"
)

type memUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*model.User
}

func (f *memUserRepo) Create(ctx context.Context, user *model.User) (uuid.UUID, error) {
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

func (f *memUserRepo) find(match func(*model.User) bool) (*model.User, error) {
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

func (f *memUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return f.find(func(u *model.User) bool { return u.ID == id })
}

func (f *memUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return f.find(func(u *model.User) bool { return u.Email == email })
}

func (f *memUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return f.find(func(u *model.User) bool { return u.Username == username })
}

func (f *memUserRepo) FindByGoogleID(ctx context.Context, googleID string) (*model.User, error) {
	return f.find(func(u *model.User) bool { return u.GoogleID != nil && *u.GoogleID == googleID })
}

func (f *memUserRepo) MarkVerified(ctx context.Context, id uuid.UUID) error {
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

func (f *memUserRepo) SetVerificationCode(ctx context.Context, id uuid.UUID, code string, expiry time.Time) error {
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

func (f *memUserRepo) LinkGoogleID(ctx context.Context, id uuid.UUID, googleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.GoogleID = &googleID

	return nil
}

type memRenovationRepo struct {
	mu          sync.Mutex
	renovations map[uuid.UUID]*model.Renovation
}

func (f *memRenovationRepo) Create(ctx context.Context, renovation *model.Renovation) (*model.Renovation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	renovation.ID = uuid.New()
	renovation.CreatedAt = time.Now()
	stored := *renovation
	f.renovations[renovation.ID] = &stored

	return renovation, nil
}

func (f *memRenovationRepo) ListByUserID(ctx context.Context, userID uuid.UUID) ([]model.Renovation, error) {
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

func (f *memRenovationRepo) DeleteOwned(ctx context.Context, id, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	renovation, ok := f.renovations[id]
	if !ok || renovation.UserID != userID {
		return repository.ErrNotFound
	}
	delete(f.renovations, id)

	return nil
}

type memContactRepo struct {
	mu      sync.Mutex
	entries []model.ContactMessage
}

func (f *memContactRepo) Create(ctx context.Context, entry *model.ContactMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entry.ID = uuid.New()
	entry.CreatedAt = time.Now()
	f.entries = append(f.entries, *entry)

	return nil
}

func (f *memContactRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.entries)
}

type captureMailer struct {
	mu       sync.Mutex
	lastCode string
}

func (m *captureMailer) SendVerificationCode(ctx context.Context, to, firstName, lastName, code string, resend bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastCode = code
	return nil
}

func (m *captureMailer) SendContactNotification(ctx context.Context, fullName, email, company, message string) error {
	return nil
}

func (m *captureMailer) code() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastCode
}

type testEnv struct {
	app      *fiber.App
	mail     *captureMailer
	contacts *memContactRepo
}

func newTestApp(t *testing.T) *testEnv {
	t.Helper()

	userRepo := &memUserRepo{users: make(map[uuid.UUID]*model.User)}
	renovationRepo := &memRenovationRepo{renovations: make(map[uuid.UUID]*model.Renovation)}
	contactRepo := &memContactRepo{}
	mail := &captureMailer{}
	sessions := session.NewMemoryStore(time.Hour)

	authService := service.NewAuthService(userRepo, mail, events.NoopPublisher{})
	renovationService := service.NewRenovationService(renovationRepo, events.NoopPublisher{})
	contactService := service.NewContactService(contactRepo, mail)

	authHandler := api.NewAuthHandler(authService, sessions, false)
	renovationHandler := api.NewRenovationHandler(renovationService)
	contactHandler := api.NewContactHandler(contactService)

	app := fiber.New()
	apiRoutes := app.Group("/api")
	apiRoutes.Post("/register", authHandler.Register)
	apiRoutes.Post("/verify-otp", authHandler.VerifyOTP)
	apiRoutes.Post("/resend-otp", authHandler.ResendOTP)
	apiRoutes.Post("/login", authHandler.Login)
	apiRoutes.Post("/logout", authHandler.Logout)
	apiRoutes.Post("/contact", contactHandler.Submit)

	requireSession := api.SessionMiddleware(sessions)
	apiRoutes.Get("/user", requireSession, authHandler.CurrentUser)
	apiRoutes.Get("/renovations", requireSession, renovationHandler.List)
	apiRoutes.Post("/renovations", requireSession, renovationHandler.Create)
	apiRoutes.Delete("/renovations/:id", requireSession, renovationHandler.Delete)

	return &testEnv{app: app, mail: mail, contacts: contactRepo}
}

func (e *testEnv) doJSON(t *testing.T, method, path string, body any, cookie string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != "" {
		req.Header.Set("Cookie", api.SessionCookieName+"="+cookie)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)

	return resp
}

func sessionCookie(t *testing.T, resp *http.Response) string {
	t.Helper()

	for _, c := range resp.Cookies() {
		if c.Name == api.SessionCookieName {
			return c.Value
		}
	}

	t.Fatal("no session cookie in response")
	return ""
}

func registerAndVerify(t *testing.T, env *testEnv, email, username string) string {
	t.Helper()

	resp := env.doJSON(t, fiber.MethodPost, "/api/register", fiber.Map{
		"firstName": "Jane", "lastName": "Doe",
		"email": email, "username": username,
		"password": "Passw0rd!", "confirmPassword": "Passw0rd!",
	}, "")
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = env.doJSON(t, fiber.MethodPost, "/api/verify-otp", fiber.Map{
		"email": email, "otp": env.mail.code(),
	}, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	return sessionCookie(t, resp)
}

func TestRegister_PasswordMismatch(t *testing.T) {
	env := newTestApp(t)

	resp := env.doJSON(t, fiber.MethodPost, "/api/register", fiber.Map{
		"firstName": "Jane", "lastName": "Doe",
		"email": "jane@x.com", "username": "jane1",
		"password": "Passw0rd!", "confirmPassword": "different",
	}, "")
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestRegister_DuplicateEmailSecondCallFails(t *testing.T) {
	env := newTestApp(t)

	body := fiber.Map{
		"firstName": "Jane", "lastName": "Doe",
		"email": "jane@x.com", "username": "jane1",
		"password": "Passw0rd!", "confirmPassword": "Passw0rd!",
	}

	resp := env.doJSON(t, fiber.MethodPost, "/api/register", body, "")
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	body["username"] = "jane2"
	resp = env.doJSON(t, fiber.MethodPost, "/api/register", body, "")
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestLogin_UnverifiedRejected(t *testing.T) {
	env := newTestApp(t)

	resp := env.doJSON(t, fiber.MethodPost, "/api/register", fiber.Map{
		"firstName": "Jane", "lastName": "Doe",
		"email": "jane@x.com", "username": "jane1",
		"password": "Passw0rd!", "confirmPassword": "Passw0rd!",
	}, "")
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = env.doJSON(t, fiber.MethodPost, "/api/login", fiber.Map{
		"username": "jane1", "password": "Passw0rd!",
	}, "")
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestVerifyThenLoginFlow(t *testing.T) {
	env := newTestApp(t)

	cookie := registerAndVerify(t, env, "jane@x.com", "jane1")
	require.NotEmpty(t, cookie)

	resp := env.doJSON(t, fiber.MethodPost, "/api/login", fiber.Map{
		"username": "jane1", "password": "Passw0rd!",
	}, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var user model.User
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&user))
	require.True(t, user.IsVerified)
	require.Equal(t, "jane1", user.Username)
}

func TestCurrentUser_RequiresSession(t *testing.T) {
	env := newTestApp(t)

	resp := env.doJSON(t, fiber.MethodGet, "/api/user", nil, "")
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	cookie := registerAndVerify(t, env, "jane@x.com", "jane1")

	resp = env.doJSON(t, fiber.MethodGet, "/api/user", nil, cookie)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestLogout_Idempotent(t *testing.T) {
	env := newTestApp(t)

	cookie := registerAndVerify(t, env, "jane@x.com", "jane1")

	resp := env.doJSON(t, fiber.MethodPost, "/api/logout", nil, cookie)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Second logout with the same (now dead) session is still a 200.
	resp = env.doJSON(t, fiber.MethodPost, "/api/logout", nil, cookie)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// The session is really gone.
	resp = env.doJSON(t, fiber.MethodGet, "/api/user", nil, cookie)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func uploadRenovation(t *testing.T, env *testEnv, cookie, contentType string) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(map[string][]string)
	header["Content-Disposition"] = []string{`form-data; name="image"; filename="room.png"`}
	header["Content-Type"] = []string{contentType}
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte{0x89, 0x50, 0x4e, 0x47})
	require.NoError(t, err)

	require.NoError(t, writer.WriteField("roomType", "kitchen"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(fiber.MethodPost, "/api/renovations", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if cookie != "" {
		req.Header.Set("Cookie", api.SessionCookieName+"="+cookie)
	}

	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)

	return resp
}

func TestRenovations_Unauthenticated(t *testing.T) {
	env := newTestApp(t)

	resp := env.doJSON(t, fiber.MethodGet, "/api/renovations", nil, "")
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = uploadRenovation(t, env, "", "image/png")
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRenovationUpload_RejectsNonImage(t *testing.T) {
	env := newTestApp(t)
	cookie := registerAndVerify(t, env, "jane@x.com", "jane1")

	resp := uploadRenovation(t, env, cookie, "text/plain")
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestRenovationLifecycle(t *testing.T) {
	env := newTestApp(t)
	cookie := registerAndVerify(t, env, "jane@x.com", "jane1")

	resp := uploadRenovation(t, env, cookie, "image/png")
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var created model.Renovation
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	require.True(t, strings.HasPrefix(created.OriginalImage, "data:image/png;base64,"))

	resp = env.doJSON(t, fiber.MethodGet, "/api/renovations", nil, cookie)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var list []model.Renovation
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list, 1)

	resp = env.doJSON(t, fiber.MethodDelete, "/api/renovations/"+created.ID.String(), nil, cookie)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = env.doJSON(t, fiber.MethodDelete, "/api/renovations/not-a-uuid", nil, cookie)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestContact_Submit(t *testing.T) {
	env := newTestApp(t)

	resp := env.doJSON(t, fiber.MethodPost, "/api/contact", fiber.Map{
		"fullName": "Jane Doe",
		"email":    "jane@x.com",
		"company":  "Acme",
		"message":  "Interested in a full remodel.",
	}, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, 1, env.contacts.count())
}

func TestContact_MissingFieldsRejected(t *testing.T) {
	env := newTestApp(t)

	// Company is the only optional field.
	for _, body := range []fiber.Map{
		{"email": "jane@x.com", "message": "Hello"},
		{"fullName": "Jane Doe", "message": "Hello"},
		{"fullName": "Jane Doe", "email": "jane@x.com"},
		{"fullName": "Jane Doe", "email": "not-an-email", "message": "Hello"},
	} {
		resp := env.doJSON(t, fiber.MethodPost, "/api/contact", body, "")
		require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	}
	require.Equal(t, 0, env.contacts.count())
}
