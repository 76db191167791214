package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/01moynul/taptoeat-golang/internal/apperr"
	"github.com/01moynul/taptoeat-golang/internal/audit"
	"github.com/01moynul/taptoeat-golang/internal/auth"
	"github.com/01moynul/taptoeat-golang/internal/cart"
	"github.com/01moynul/taptoeat-golang/internal/config"
	"github.com/01moynul/taptoeat-golang/internal/database"
	"github.com/01moynul/taptoeat-golang/internal/delivery"
	"github.com/01moynul/taptoeat-golang/internal/handlers"
	"github.com/01moynul/taptoeat-golang/internal/logger"
	"github.com/01moynul/taptoeat-golang/internal/models"
	"github.com/01moynul/taptoeat-golang/internal/realtime"
	"github.com/01moynul/taptoeat-golang/internal/routes"
	"github.com/01moynul/taptoeat-golang/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"
)

func main() {
	// 0. --- Load Environment Variables (.env) ---
	dotenvErr := config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Service: "taptoeat-api",
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
	})
	if dotenvErr != nil {
		log.Warn("could not load .env file, relying on system environment variables")
	}

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. --- Main Database Connection ---
	db, err := database.OpenDB(ctx, cfg.DBDSN, database.PoolOptions{MaxOpenConns: cfg.DBMaxOpenConns})
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	// 2. --- Stores ---
	hub := realtime.NewHub(log)

	users := store.NewUserStore(db, hub)
	notifications := store.NewNotificationStore(db, hub)
	settings := store.NewSettingStore(db)
	orders := store.NewOrderStore(db, hub)
	activity := store.NewActivityStore(db, hub)

	defaults, err := store.DefaultSettings()
	if err != nil {
		return fmt.Errorf("load default settings: %w", err)
	}
	added, err := settings.Seed(ctx, defaults)
	if err != nil {
		return fmt.Errorf("seed settings: %w", err)
	}
	if added > 0 {
		log.Info("seeded system settings", "count", added)
	}

	if err := bootstrapAdmin(ctx, users, cfg, log); err != nil {
		return err
	}

	// 3. --- Application Setup ---
	app := &handlers.Handlers{
		Logger:   log,
		Tokens:   auth.NewIssuer(cfg.JWTSecret, cfg.JWTTTL),
		Audit:    audit.NewRecorder(activity, log),
		Carts:    cart.NewStore(),
		Workflow: delivery.NewWorkflow(orders, log),
		Hub:      hub,
		Upgrader: &websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     allowOrigin(cfg.CORSOrigins),
		},

		Users:         users,
		Menu:          store.NewMenuStore(db),
		Orders:        orders,
		Notifications: notifications,
		Tickets:       store.NewTicketStore(db, hub),
		Settings:      settings,
		Activity:      activity,
		Vendors:       store.NewVendorStore(db, hub),
	}

	router := routes.SetupRouter(app, routes.Options{
		CORSOrigins: cfg.CORSOrigins,
		Maintenance: settings,
		Logger:      log,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 4. --- Background Workers ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return hub.Run(gctx) })
	g.Go(func() error {
		return realtime.NewCountsRefresher(hub, notifications, cfg.CountsRefreshInterval, log).Run(gctx)
	})

	// 5. --- Start Server ---
	g.Go(func() error {
		log.Info("starting TapToEat API server", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// bootstrapAdmin creates the configured admin account once.
func bootstrapAdmin(ctx context.Context, users *store.UserStore, cfg config.Config, log *slog.Logger) error {
	if cfg.BootstrapAdminEmail == "" {
		return nil
	}

	_, err := users.GetByEmail(ctx, cfg.BootstrapAdminEmail)
	if err == nil {
		return nil
	}
	if !apperr.IsKind(err, apperr.KindNotFound) {
		return fmt.Errorf("look up bootstrap admin: %w", err)
	}

	var pw models.Password
	if err := pw.Set(cfg.BootstrapAdminPassword); err != nil {
		return fmt.Errorf("hash bootstrap admin password: %w", err)
	}
	u, err := users.Create(ctx, store.NewUser{
		Role:         models.RoleAdmin,
		Email:        cfg.BootstrapAdminEmail,
		FullName:     "Administrator",
		PasswordHash: pw.Hash,
	})
	if err != nil {
		return fmt.Errorf("create bootstrap admin: %w", err)
	}
	log.Info("created bootstrap admin", "user_id", u.ID)
	return nil
}

// allowOrigin accepts websocket upgrades from the configured CORS origins and
// from non-browser clients that send no Origin header.
func allowOrigin(origins []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(origins, origin)
	}
}
