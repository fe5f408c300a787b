package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	_ "dashboard/docs"
	"dashboard/internal/config"
	"dashboard/internal/database"
	"dashboard/internal/handlers"
	"dashboard/internal/middleware"
	"dashboard/internal/pdf"
	"dashboard/internal/repositories"
	"dashboard/internal/routes"
	"dashboard/internal/services"
	"dashboard/internal/session"
)

const Version = "1.0.0"

const shutdownTimeout = 10 * time.Second

// App owns the datastore handle and the HTTP router.
type App struct {
	cfg    *config.Config
	log    *logrus.Logger
	db     *database.DB
	router *gin.Engine
}

// New opens the datastore, applies pending migrations and wires
// repositories -> services -> handlers -> routes.
func New(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*App, error) {
	loc, err := time.LoadLocation(cfg.Reports.Timezone)
	if err != nil {
		return nil, fmt.Errorf("reports timezone: %w", err)
	}

	// === DB ===
	db, err := database.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	applied, err := database.Migrate(ctx, db, func(msg string) {
		log.WithField("operation", "app.migrate").Info(msg)
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	log.WithField("operation", "app.New").Infof("[db] driver=%s migrations_applied=%d", db.Driver(), applied)

	// === Repos ===
	taskRepo := repositories.NewTaskRepository(db)
	projectRepo := repositories.NewProjectRepository(db)

	// === Services ===
	taskService := services.NewTaskService(taskRepo, loc)
	projectService := services.NewProjectService(projectRepo)
	youtubeService := services.NewYouTubeService(cfg.YouTube, log)

	var mailer services.EmailService
	if cfg.Email.Enabled() {
		mailer = services.NewEmailService(
			cfg.Email.SMTPHost,
			cfg.Email.SMTPPort,
			cfg.Email.SMTPUser,
			cfg.Email.SMTPPassword,
			cfg.Email.FromEmail,
		)
	}
	reportService := services.NewReportService(taskService, pdf.NewReportGenerator(cfg.Reports.FontPath), mailer, cfg.Email.ReportTo, cfg.Email.AllowedRecipients...)

	// Telegram is optional; a bad token only disables notifications.
	var notifier services.Notifier
	if cfg.Telegram.Enabled() {
		tg, err := services.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.APIEndpoint)
		if err != nil {
			log.WithField("operation", "app.New").Warnf("[tg][disabled] %v", err)
		} else {
			notifier = tg
		}
	}

	sessions := session.NewManager(session.NewMemoryStore(cfg.Session.Lifetime), cfg.Session)

	// === Handlers ===
	h := routes.Handlers{
		System:      handlers.NewSystemHandler(Version),
		Task:        handlers.NewTaskHandler(taskService, notifier, log),
		Project:     handlers.NewProjectHandler(projectService, log),
		YouTube:     handlers.NewYouTubeHandler(youtubeService, sessions, log),
		Report:      handlers.NewReportHandler(reportService, log),
		ReportEmail: reportService.CanEmail(),
		Sessions:    middleware.Sessions(sessions, log),
	}

	// === Gin ===
	if cfg.Server.Env == config.EnvProd {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	routes.SetupRoutes(router, h)

	return &App{cfg: cfg, log: log, db: db, router: router}, nil
}

func (a *App) Router() http.Handler { return a.router }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.WithField("operation", "app.Run").Infof("[http] listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	a.log.WithField("operation", "app.Run").Info("[http] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

func (a *App) Close() error {
	return a.db.Close()
}
