package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"resumecraft_backend/database"
	"resumecraft_backend/internal/auth"
	"resumecraft_backend/internal/config"
	"resumecraft_backend/internal/email"
	"resumecraft_backend/internal/handlers"
	"resumecraft_backend/internal/logger"
	"resumecraft_backend/internal/middleware"
	"resumecraft_backend/internal/models"
	"resumecraft_backend/internal/payment"
	"resumecraft_backend/internal/render"
	"resumecraft_backend/internal/repositories"
	"resumecraft_backend/internal/routes"
	"resumecraft_backend/internal/services"
	"resumecraft_backend/internal/validator"
	"resumecraft_backend/internal/workers"
)

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	gormDB, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to GORM", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("Failed to get *sql.DB from GORM", "error", err)
	}
	if err = sqlDB.Ping(); err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	logger.Info("Database connected")

	if err := database.Migrate(gormDB); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	if err := seedFirstAdmin(gormDB); err != nil {
		logger.Fatal("Failed to seed first admin user", "error", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		// The limiter fails open, so a missing Redis degrades rather than
		// blocks startup.
		logger.Warn("Redis unavailable, rate limiting degraded", "addr", cfg.Redis.Addr, "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ginRouter, serviceContainer := SetupRouter(cfg, gormDB, rdb)

	worker := workers.NewSubscriptionWorker(serviceContainer.SubscriptionService)
	worker.Start(ctx)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Server starting", "address", address)
	if err := ginRouter.Run(address); err != nil {
		logger.Fatal("Server startup error", "error", err)
	}
}

// ServiceContainer bundles the services the router and workers share.
type ServiceContainer struct {
	AuthService         services.AuthService
	DiscountService     services.DiscountService
	UsageService        services.UsageService
	SubscriptionService services.SubscriptionService
	BillingService      services.BillingService
	ResumeService       services.ResumeService
	EmailProvider       email.Provider
}

func SetupRouter(cfg *config.Config, gormDB *gorm.DB, rdb *redis.Client) (*gin.Engine, *ServiceContainer) {
	serviceContainer := initializeServices(cfg, gormDB)
	appHandlers := initializeHandlers(cfg, serviceContainer, rdb)

	ginRouter := initializeGinRouter()
	routes.RegisterRoutes(ginRouter, appHandlers)

	return ginRouter, serviceContainer
}

func initializeServices(cfg *config.Config, gormDB *gorm.DB) *ServiceContainer {
	var emailProvider email.Provider
	if cfg.Email.SMTPHost != "" {
		provider, err := email.NewSMTPProvider(email.Config{
			Host:      cfg.Email.SMTPHost,
			Port:      cfg.Email.SMTPPort,
			Username:  cfg.Email.SMTPUsername,
			Password:  cfg.Email.SMTPPassword,
			FromEmail: cfg.Email.FromEmail,
			FromName:  cfg.Email.FromName,
		})
		if err != nil {
			logger.Fatal("Failed to initialize email provider", "error", err)
		}
		emailProvider = provider
	} else {
		logger.Warn("SMTP not configured, emails will be logged only")
		emailProvider = &LogEmailProvider{}
	}

	userRepo := repositories.NewUserRepository(gormDB)
	discountRepo := repositories.NewDiscountRepository(gormDB)
	usageRepo := repositories.NewUsageRepository(gormDB)
	subscriptionRepo := repositories.NewSubscriptionRepository(gormDB)
	resumeRepo := repositories.NewResumeRepository(gormDB)
	activityRepo := repositories.NewActivityRepository(gormDB)

	gateway := payment.NewClient(cfg.Payment.SecretKey, cfg.Payment.BaseURL)
	engine := render.NewChromedpEngine(cfg.Render.ChromePath, cfg.RenderTimeout())
	exporter := render.NewExporter(engine)

	discountService := services.NewDiscountService(discountRepo)
	usageService := services.NewUsageService(usageRepo, subscriptionRepo)
	subscriptionService := services.NewSubscriptionService(subscriptionRepo, userRepo, activityRepo, emailProvider)
	billingService := services.NewBillingService(subscriptionRepo, userRepo, activityRepo, discountService, subscriptionService, gateway)
	authService := services.NewAuthService(userRepo, subscriptionService, emailProvider)
	resumeService := services.NewResumeService(resumeRepo, subscriptionRepo, activityRepo, usageService, exporter)

	return &ServiceContainer{
		AuthService:         authService,
		DiscountService:     discountService,
		UsageService:        usageService,
		SubscriptionService: subscriptionService,
		BillingService:      billingService,
		ResumeService:       resumeService,
		EmailProvider:       emailProvider,
	}
}

func initializeHandlers(cfg *config.Config, serviceContainer *ServiceContainer, rdb *redis.Client) *handlers.AppHandlers {
	customValidator := validator.New()
	baseHandler := handlers.NewBaseHandler(customValidator)

	downloadLimiter := middleware.RateLimitMiddleware(rdb, "download", cfg.RateLimit.DownloadsPerMinute, time.Minute)

	return &handlers.AppHandlers{
		AuthHandler:         handlers.NewAuthHandler(baseHandler, serviceContainer.AuthService),
		DiscountHandler:     handlers.NewDiscountHandler(baseHandler, serviceContainer.DiscountService),
		SubscriptionHandler: handlers.NewSubscriptionHandler(baseHandler, serviceContainer.SubscriptionService, serviceContainer.UsageService),
		PaymentHandler:      handlers.NewPaymentHandler(baseHandler, serviceContainer.BillingService),
		ResumeHandler:       handlers.NewResumeHandler(baseHandler, serviceContainer.ResumeService, downloadLimiter),
	}
}

func initializeGinRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       12 * time.Hour,
	}))
	return router
}

// seedFirstAdmin creates the bootstrap admin account when the instance has
// none. Skipped unless both env vars are set.
func seedFirstAdmin(db *gorm.DB) error {
	adminEmail := os.Getenv("FIRST_ADMIN_EMAIL")
	adminPassword := os.Getenv("FIRST_ADMIN_PASSWORD")
	if adminEmail == "" || adminPassword == "" {
		logger.Warn("FIRST_ADMIN_EMAIL or FIRST_ADMIN_PASSWORD is not set. Skipping admin seeding.")
		return nil
	}

	var existing models.User
	err := db.Where("email = ?", adminEmail).First(&existing).Error
	if err == nil {
		logger.Info("Admin user already exists. Skipping creation.", "email", adminEmail)
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check for admin user: %w", err)
	}

	hash, err := auth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &models.User{
		Name:         "Administrator",
		Email:        adminEmail,
		PasswordHash: hash,
		Role:         models.UserRoleAdmin,
	}
	if err := db.Create(admin).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	logger.Info("Created first admin user", "email", adminEmail)
	return nil
}
