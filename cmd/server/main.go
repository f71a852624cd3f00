package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/gofiber/contrib/otelfiber/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	_ "github.com/jackc/pgx/v5/stdlib"

	"renoviq-server/internal/api"
	"renoviq-server/internal/events"
	"renoviq-server/internal/mailer"
	"renoviq-server/internal/repository"
	"renoviq-server/internal/service"
	"renoviq-server/internal/session"
	"renoviq-server/internal/tracing"
	_ "renoviq-server/migrations"
)

func main() {
	if err := godotenv.Load(".env.dev"); err != nil {
		fmt.Println("No .env.dev file found, reading from environment variables")
	}

	api.SetupGlobalHandler("renoviq-server")

	shutdownTracer, err := tracing.InitTracerProvider("renoviq-server")
	if err != nil {
		log.Fatalf("Failed to initialize OpenTelemetry: %v", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Printf("Error shutting down tracer provider: %v", err)
		}
	}()

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		handleMigrations()
		return
	}

	db := connectDB()
	defer db.Close()

	sessions := buildSessionStore()
	mail := buildMailer()
	publisher := buildPublisher()

	userRepo := repository.NewPostgresUserRepository(db)
	renovationRepo := repository.NewPostgresRenovationRepository(db)
	contactRepo := repository.NewPostgresContactRepository(db)

	authService := service.NewAuthService(userRepo, mail, publisher)
	renovationService := service.NewRenovationService(renovationRepo, publisher)
	contactService := service.NewContactService(contactRepo, mail)

	secureCookie := os.Getenv("COOKIE_SECURE") == "true"

	authHandler := api.NewAuthHandler(authService, sessions, secureCookie)
	renovationHandler := api.NewRenovationHandler(renovationService)
	contactHandler := api.NewContactHandler(contactService)
	googleHandler := api.NewGoogleHandler(authService, sessions, api.GoogleOAuthConfig{
		ClientID:        os.Getenv("GOOGLE_CLIENT_ID"),
		ClientSecret:    os.Getenv("GOOGLE_CLIENT_SECRET"),
		RedirectURL:     os.Getenv("GOOGLE_REDIRECT_URL"),
		SuccessRedirect: getenv("OAUTH_SUCCESS_REDIRECT", "/"),
	}, secureCookie)

	app := fiber.New(fiber.Config{
		BodyLimit: 8 * 1024 * 1024, // multipart uploads are capped at 5MB after parsing
	})
	app.Use(otelfiber.Middleware())
	app.Use(api.PrometheusMiddleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": "renoviq-server"})
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

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

	oauthRoutes := app.Group("/auth")
	oauthRoutes.Get("/google", googleHandler.Login)
	oauthRoutes.Get("/google/callback", googleHandler.Callback)

	port := getenv("APP_PORT", "8000")

	log.Printf("Listening renoviq-server on port %s", port)
	log.Fatal(app.Listen(":" + port))
}

func connectDB() *sqlx.DB {
	db, err := sqlx.Connect("pgx", databaseURL())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Successfully connected to the database.")
	return db
}

func databaseURL() string {
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbName := os.Getenv("DB_NAME")

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		dbUser, dbPassword, dbHost, dbPort, dbName,
	)
}

// buildSessionStore picks Redis when configured and falls back to the
// in-process store otherwise. Both honor the same inactivity window.
func buildSessionStore() session.Store {
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     redisAddr,
			Password: os.Getenv("REDIS_PASSWORD"),
		})
		log.Printf("Using Redis session store at %s", redisAddr)
		return session.NewRedisStore(client, session.DefaultTTL)
	}

	store := session.NewMemoryStore(session.DefaultTTL)
	store.StartJanitor(session.DefaultTTL)
	log.Println("REDIS_ADDR not set, using in-memory session store")
	return store
}

func buildMailer() mailer.Sender {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		log.Println("SMTP_HOST not set, verification emails will be logged only")
		return mailer.LogSender{}
	}

	port, err := strconv.Atoi(getenv("SMTP_PORT", "587"))
	if err != nil {
		log.Fatalf("Invalid SMTP_PORT: %v", err)
	}

	return mailer.NewSMTPSender(&mailer.SMTPConfig{
		Host:         host,
		Port:         port,
		User:         os.Getenv("SMTP_USER"),
		Password:     os.Getenv("SMTP_PASS"),
		AppName:      getenv("APP_NAME", "RenoviqAI"),
		ContactInbox: os.Getenv("CONTACT_FORM_RECEIVER_EMAIL"),
		CodeExpMins:  10,
	})
}

func buildPublisher() events.EventPublisher {
	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		log.Println("NATS_URL not set, lifecycle events disabled")
		return events.NoopPublisher{}
	}

	publisher, err := events.NewNatsPublisher(natsURL)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	log.Println("Successfully connected to NATS.")
	return publisher
}

func handleMigrations() {
	fmt.Println("Running database migrations...")

	db, err := sql.Open("pgx", databaseURL())
	if err != nil {
		log.Fatalf("failed to connect to database for migration: %v", err)
	}
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("failed to set goose dialect: %v", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		log.Fatalf("goose: failed to run migrations: %v", err)
	}

	fmt.Println("Migrations applied successfully!")
}

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
