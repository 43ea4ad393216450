package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dcalliari/appe/internal"
	"github.com/dcalliari/appe/internal/auth"
	authPostgres "github.com/dcalliari/appe/internal/auth/postgres"
	"github.com/dcalliari/appe/internal/booking"
	bookingPostgres "github.com/dcalliari/appe/internal/booking/postgres"
	"github.com/dcalliari/appe/internal/chat"
	chatPostgres "github.com/dcalliari/appe/internal/chat/postgres"
	"github.com/dcalliari/appe/internal/core/events"
	"github.com/dcalliari/appe/internal/document"
	documentPostgres "github.com/dcalliari/appe/internal/document/postgres"
	"github.com/dcalliari/appe/internal/notice"
	noticePostgres "github.com/dcalliari/appe/internal/notice/postgres"
	"github.com/dcalliari/appe/internal/transport"
	"github.com/dcalliari/appe/internal/transport/middleware"
	"github.com/dcalliari/appe/internal/transport/rest"
	"github.com/dcalliari/appe/internal/user"
	userPostgres "github.com/dcalliari/appe/internal/user/postgres"
	"github.com/dcalliari/appe/internal/visitor"
	visitorPostgres "github.com/dcalliari/appe/internal/visitor/postgres"
	"github.com/dcalliari/appe/pkg/logger"
	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

const shutdownTimeout = 30 * time.Second

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	Gorm   *gorm.DB
	Router *chi.Mux
	Hub    *chat.Hub
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}
	lg := deps.Logger

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	lg.Info("starting HTTP server", "address", addr, "env", deps.Config.Env)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		lg.Info("received signal, shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		// hijacked websocket connections are not tracked by Shutdown
		deps.Hub.Close()
		if err := server.Shutdown(ctx); err != nil {
			lg.Error("server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Error("server failed to start", "error", err)
			deps.Hub.Close()
			_ = deps.DB.Close()
			os.Exit(1)
		}
	}

	if err := deps.DB.Close(); err != nil {
		lg.Error("database close error", "error", err)
	}
	lg.Info("server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	lg := logger.LoggerWrapper()
	transport.ExposeInternalErrors(cfg.IsDevelopment())

	db, err := initDB(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	bus := events.NewEventBus(lg)

	var metrics *middleware.Metrics
	if cfg.Observability.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewDBStatsCollector(db.DB, "appe"),
		)
		metrics = middleware.NewMetrics(reg)
		bus.SubscribeAll(events.DomainEventTypes, metrics.CountEvent)
	}

	tokens := auth.NewJWTTokenGenerator(cfg.Security.JWTSecret, cfg.Security.TokenDuration)
	authService := auth.NewService(authPostgres.NewRepository(gormDB), tokens, lg)

	hub := chat.NewHub(authService, cfg.Server.Origins(), lg)
	bus.Subscribe(events.EventTypeChatMessageSent, hub.OnMessageSent)

	store, err := document.NewDiskFileStore(cfg.Storage.DocumentsDir)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open document storage: %w", err)
	}
	maxUpload := cfg.Storage.MaxUploadMB << 20

	handlers := rest.Handlers{
		Auth:     auth.NewHandler(authService, cfg.Security.AllowAnonymous),
		Profile:  user.NewHandler(user.NewService(userPostgres.NewUserRepository(gormDB), cfg.Security.BCryptCost, lg)),
		Notice:   notice.NewHandler(notice.NewService(noticePostgres.NewNoticeRepository(gormDB), lg)),
		Chat:     chat.NewHandler(chat.NewService(chatPostgres.NewChatRepository(db), bus, lg)),
		ChatHub:  hub,
		Visitor:  visitor.NewHandler(visitor.NewService(visitorPostgres.NewVisitorRepository(gormDB), bus, lg)),
		Booking:  booking.NewHandler(booking.NewService(bookingPostgres.NewBookingRepository(gormDB), bus, lg)),
		Document: document.NewHandler(document.NewService(documentPostgres.NewDocumentRepository(gormDB), store, maxUpload, lg), maxUpload),
	}

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, db.DB, handlers, rest.Options{
		AllowedOrigins: cfg.Server.Origins(),
		LoginRequests:  cfg.RateLimit.LoginRequests,
		LoginWindow:    cfg.RateLimit.LoginWindow,
		Metrics:        metrics,
		MetricsPath:    cfg.Observability.Metrics.Path,
	}, lg)

	return &Dependencies{
		Config: cfg,
		DB:     db,
		Gorm:   gormDB,
		Router: router,
		Hub:    hub,
		Logger: lg,
	}, nil
}

// initDB opens the pgx-backed pool shared by sqlx and gorm.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return dbConn, nil
}

// initGorm reuses the sqlx pool. TranslateError turns unique violations into
// gorm.ErrDuplicatedKey for the repositories.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		TranslateError: true,
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
	})
}
