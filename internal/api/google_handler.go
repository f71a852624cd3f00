package api

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"renoviq-server/internal/model"
	"renoviq-server/internal/service"
	"renoviq-server/internal/session"
)

const oauthStateCookie = "renoviq_oauth_state"

type GoogleOAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	// SuccessRedirect is where the browser lands after the callback
	// establishes a session.
	SuccessRedirect string
}

// GoogleHandler owns the Google-specific OAuth flow. The oauth2 config is
// built once at startup and injected, never read from ambient globals.
type GoogleHandler struct {
	authService     service.AuthService
	sessions        session.Store
	config          *oauth2.Config
	successRedirect string
	secureCookie    bool
	userinfoURL     string
}

func NewGoogleHandler(authService service.AuthService, sessions session.Store, cfg GoogleOAuthConfig, secureCookie bool) *GoogleHandler {
	return &GoogleHandler{
		authService: authService,
		sessions:    sessions,
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     google.Endpoint,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
		},
		successRedirect: cfg.SuccessRedirect,
		secureCookie:    secureCookie,
		userinfoURL:     "https://www.googleapis.com/oauth2/v2/userinfo",
	}
}

// Login redirects the user to Google's consent page with a random state bound
// to a short-lived cookie.
func (g *GoogleHandler) Login(c *fiber.Ctx) error {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to start OAuth flow"})
	}
	state := hex.EncodeToString(buf)

	c.Cookie(&fiber.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Expires:  time.Now().Add(10 * time.Minute),
		HTTPOnly: true,
		Secure:   g.secureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})

	return c.Redirect(g.config.AuthCodeURL(state), fiber.StatusTemporaryRedirect)
}

// Callback exchanges the authorization code, resolves the Google profile to a
// local user, and establishes a session. No password is involved on this
// path.
func (g *GoogleHandler) Callback(c *fiber.Ctx) error {
	if c.Query("state") == "" || c.Query("state") != c.Cookies(oauthStateCookie) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid OAuth state"})
	}

	token, err := g.config.Exchange(c.Context(), c.Query("code"))
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Failed to exchange token"})
	}

	profile, err := g.fetchProfile(token)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch user info"})
	}

	user, err := g.authService.GoogleLogin(c.Context(), profile)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to log in with Google"})
	}

	if err := g.establishSession(c, user); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to establish session"})
	}

	return c.Redirect(g.successRedirect, fiber.StatusTemporaryRedirect)
}

func (g *GoogleHandler) fetchProfile(token *oauth2.Token) (service.GoogleProfile, error) {
	response, err := http.Get(g.userinfoURL + "?access_token=" + token.AccessToken)
	if err != nil {
		return service.GoogleProfile{}, err
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return service.GoogleProfile{}, fmt.Errorf("userinfo request returned status %d", response.StatusCode)
	}

	var googleUser struct {
		ID         string `json:"id"`
		Email      string `json:"email"`
		GivenName  string `json:"given_name"`
		FamilyName string `json:"family_name"`
	}
	if err := json.NewDecoder(response.Body).Decode(&googleUser); err != nil {
		return service.GoogleProfile{}, err
	}

	return service.GoogleProfile{
		GoogleID:  googleUser.ID,
		Email:     googleUser.Email,
		FirstName: googleUser.GivenName,
		LastName:  googleUser.FamilyName,
	}, nil
}

func (g *GoogleHandler) establishSession(c *fiber.Ctx, user *model.User) error {
	sess, err := g.sessions.Create(c.Context(), user.ID)
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    sess.Token,
		Expires:  sess.ExpiresAt,
		HTTPOnly: true,
		Secure:   g.secureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})

	return nil
}
