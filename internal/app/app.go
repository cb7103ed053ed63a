package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "interiorerp/docs"
	"interiorerp/internal/config"
	"interiorerp/internal/handlers"
	"interiorerp/internal/logging"
	"interiorerp/internal/pdf"
	"interiorerp/internal/realtime"
	"interiorerp/internal/repositories"
	"interiorerp/internal/routes"
	"interiorerp/internal/services"
	"interiorerp/internal/utils"
)

// Stores holds the open database handles and the repositories built on them.
type Stores struct {
	SQL   *sql.DB
	Mongo *mongo.Client
	DB    *mongo.Database

	Users      repositories.UserRepository
	Tenants    repositories.TenantRepository
	Projects   repositories.ProjectRepository
	Tasks      repositories.TaskRepository
	Documents  repositories.DocumentRepository
	Financials repositories.FinancialRepository
	Meetings   repositories.MeetingRepository
	Links      repositories.TelegramLinkRepository
}

// OpenStores connects Postgres and Mongo and prepares schema and indexes.
func OpenStores(ctx context.Context, cfg *config.Config) (*Stores, error) {
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := repositories.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	client, err := repositories.ConnectMongo(ctx, cfg.Mongo.URI)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	mdb := client.Database(cfg.Mongo.Database)
	if err := repositories.EnsureIndexes(ctx, mdb); err != nil {
		_ = client.Disconnect(ctx)
		_ = db.Close()
		return nil, err
	}

	return &Stores{
		SQL:        db,
		Mongo:      client,
		DB:         mdb,
		Users:      repositories.NewUserRepository(db),
		Tenants:    repositories.NewTenantRepository(db),
		Projects:   repositories.NewProjectRepository(mdb),
		Tasks:      repositories.NewTaskRepository(mdb),
		Documents:  repositories.NewDocumentRepository(mdb),
		Financials: repositories.NewFinancialRepository(mdb),
		Meetings:   repositories.NewMeetingRepository(mdb),
		Links:      repositories.NewTelegramLinkRepository(db),
	}, nil
}

func (s *Stores) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Mongo.Disconnect(ctx); err != nil {
		logging.Logger.Warnf("[app][close][err] mongo: %v", err)
	}
	if err := s.SQL.Close(); err != nil {
		logging.Logger.Warnf("[app][close][err] postgres: %v", err)
	}
}

// Run starts the HTTP server and blocks until it exits.
func Run() error {
	cfg := config.MustLoad()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logging.Init(cfg.Log, "interiorerp-api")
	log := logging.Logger

	ctx := context.Background()
	stores, err := OpenStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer stores.Close()

	// === Services ===
	notifier := services.NewNotificationService(services.EmailConfig{
		Host:     cfg.Email.SMTPHost,
		Port:     cfg.Email.SMTPPort,
		User:     cfg.Email.SMTPUser,
		Password: cfg.Email.SMTPPassword,
		From:     cfg.Email.FromEmail,
	}, cfg.Telegram.BotToken, log)
	if cfg.SMS.APIKey != "" || cfg.SMS.DryRun {
		notifier.WithSMS(utils.NewSMSClient(cfg.SMS.APIKey, cfg.SMS.Sender, cfg.SMS.BaseURL, cfg.SMS.DryRun, log))
	}

	ttl := time.Duration(cfg.Auth.AccessTTLMins) * time.Minute
	authService := services.NewAuthService(stores.Users, stores.Tenants, cfg.Auth.JWTSecret, ttl, log)
	projectService := services.NewProjectService(stores.Projects, stores.Tasks, stores.Documents, stores.Financials, log)
	taskService := services.NewTaskService(stores.Projects, stores.Tasks, stores.Users, notifier, log)
	documentService := services.NewDocumentService(stores.Projects, stores.Tasks, stores.Documents, log)
	financialService := services.NewFinancialService(stores.Projects, stores.Tasks, stores.Financials, log)
	meetingService := services.NewMeetingService(stores.Projects, stores.Tasks, stores.Meetings)
	metricsService := services.NewVendorMetricsService(stores.Projects, stores.Tasks, stores.Financials, stores.Users, log)
	linkTTL := time.Duration(cfg.Telegram.LinkTTLMins) * time.Minute
	linkService := services.NewTelegramLinkService(stores.Links, notifier, cfg.Telegram.BotUsername, linkTTL, log)

	watcher := realtime.NewWatcher(stores.DB, log)
	broker := realtime.NewBroker(watcher)

	// === Handlers ===
	h := routes.Handlers{
		Auth:      handlers.NewAuthHandler(authService),
		Project:   handlers.NewProjectHandler(projectService),
		Task:      handlers.NewTaskHandler(taskService),
		Document:  handlers.NewDocumentHandler(documentService),
		Financial: handlers.NewFinancialHandler(financialService),
		Meeting:   handlers.NewMeetingHandler(meetingService),
		Vendor:    handlers.NewVendorHandler(metricsService, pdf.NewGenerator(cfg.Files.FontPath)),
		Stream:    handlers.NewStreamHandler(projectService, broker, watcher),

		Integrations: handlers.NewIntegrationsHandler(linkService, cfg.Telegram.WebhookSecret),
	}

	// === Gin ===
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger())
	router.Use(corsMiddleware())
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	routes.SetupRoutes(router, h, []byte(cfg.Auth.JWTSecret), stores.Users)

	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Infof("[app][run] listening on %s", listenAddr)
	return router.Run(listenAddr)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logging.Logger.Debugf("[http] %s %s %d %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
