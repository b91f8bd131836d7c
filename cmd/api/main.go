package main

import (
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"

	"shopmetrics-backend/internal/application"
	"shopmetrics-backend/internal/application/webhook_handlers"
	apiinfra "shopmetrics-backend/internal/infrastructure/api"
	"shopmetrics-backend/internal/infrastructure/cache"
	"shopmetrics-backend/internal/infrastructure/encryption"
	"shopmetrics-backend/internal/infrastructure/metrics"
	securitymiddleware "shopmetrics-backend/internal/infrastructure/middleware"
	"shopmetrics-backend/internal/infrastructure/repository"
	shopifyinfra "shopmetrics-backend/internal/infrastructure/shopify"
	"shopmetrics-backend/internal/ports"
)

const overviewCacheTTL = 30 * time.Second

func main() {
	// Initialize logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("⚠️  Warning: .env file not found")
	}

	// Get configuration from environment
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		logger.Fatal().Msg("DATABASE_URL environment variable is required")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal().Msg("JWT_SECRET environment variable is required")
	}

	encryptionKey := os.Getenv("ENCRYPTION_KEY")
	if encryptionKey == "" {
		logger.Fatal().Msg("ENCRYPTION_KEY environment variable is required")
	}

	appURL := os.Getenv("APP_URL")
	if appURL == "" {
		appURL = "http://localhost:8080"
	}

	// Connect to Postgres and migrate the schema
	db, err := repository.ConnectDatabase(databaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}

	// Initialize infrastructure (implementations)
	encryptionService, err := encryption.NewService(encryptionKey)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize encryption service")
	}

	verifier := buildVerifier(logger)
	clientFactory := shopifyinfra.NewFactory(logger)

	// Initialize repositories
	tenantRepo := repository.NewGormTenantRepository(db)
	userRepo := repository.NewGormUserRepository(db)
	registrationStore := repository.NewGormRegistrationStore(db)
	entityStore := repository.NewGormEntityStore(db)
	analyticsRepo := repository.NewGormAnalyticsRepository(db)

	// Optional Redis cache for the dashboard overview
	var analyticsCache ports.AnalyticsCache
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		redisCache, err := cache.NewAnalyticsCache(redisAddr, overviewCacheTTL, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("Redis unavailable, continuing without analytics cache")
		} else {
			analyticsCache = redisCache
			defer redisCache.Close()
		}
	}

	// Initialize application services
	reconciler := application.NewReconciler(tenantRepo, entityStore, logger)
	ingestionService := application.NewIngestionService(tenantRepo, entityStore, clientFactory, encryptionService, logger)
	webhookManager := application.NewWebhookManager(appURL, logger)
	authService := application.NewAuthService(
		tenantRepo,
		userRepo,
		registrationStore,
		encryptionService,
		clientFactory,
		webhookManager,
		ingestionService,
		jwtSecret,
		logger,
	)
	analyticsService := application.NewAnalyticsService(analyticsRepo, analyticsCache, logger)

	// Initialize webhook dispatcher and register handlers
	webhookDispatcher := application.NewWebhookDispatcher(logger)
	webhookDispatcher.RegisterHandler(webhook_handlers.NewOrderHandler(reconciler, logger))
	webhookDispatcher.RegisterHandler(webhook_handlers.NewCustomerHandler(reconciler, logger))

	// Initialize HTTP APIs
	healthAPI := apiinfra.NewHealthAPI(db, logger)
	webhookAPI := apiinfra.NewWebhookAPI(verifier, webhookDispatcher, logger)
	authAPI := apiinfra.NewAuthAPI(authService, logger)
	analyticsAPI := apiinfra.NewAnalyticsAPI(analyticsService, ingestionService, logger)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	// Public routes
	r.Get("/health", healthAPI.HandleHealth)
	r.Get("/dbtest", healthAPI.HandleDBTest)
	r.Handle("/metrics", metrics.Handler())

	// Swagger documentation - public
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	r.Get("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		http.ServeFile(w, r, "./docs/swagger.json")
	})

	// Webhook endpoints: verified by signature, not by session
	r.Post("/webhooks/test", webhookAPI.HandleTest)
	r.Post("/webhooks/{resource}/{action}", webhookAPI.HandleDelivery)

	// Auth endpoints
	r.Post("/api/auth/register", authAPI.HandleRegister)
	r.Post("/api/auth/login", authAPI.HandleLogin)

	// Dashboard endpoints: require a session token
	r.Group(func(r chi.Router) {
		r.Use(securitymiddleware.JWTAuth(jwtSecret, logger))
		r.Get("/api/overview", analyticsAPI.HandleOverview)
		r.Get("/api/orders-by-date", analyticsAPI.HandleOrdersByDate)
		r.Get("/api/top-customers", analyticsAPI.HandleTopCustomers)
		r.Get("/api/recent-orders", analyticsAPI.HandleRecentOrders)
		r.Post("/api/sync", analyticsAPI.HandleSync)
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logger.Info().Str("port", port).Msg("Starting API server")
	logger.Info().Msg("Swagger documentation available at http://localhost:" + port + "/swagger/index.html")
	if err := http.ListenAndServe(":"+port, r); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start server")
	}
}

func buildVerifier(logger zerolog.Logger) *shopifyinfra.WebhookVerifier {
	verifier, err := shopifyinfra.NewVerifierForEnv(
		os.Getenv("SHOPIFY_WEBHOOK_SECRET"),
		os.Getenv("WEBHOOK_SKIP_VERIFY") == "true",
		os.Getenv("APP_ENV"),
		logger,
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("SHOPIFY_WEBHOOK_SECRET environment variable is required")
	}
	return verifier
}
