// @title NavExpo API
// @version 1.0
// @description Event management backend: events, users and seat-limited attendee registration.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"navexpo/config"
	_ "navexpo/docs"
	"navexpo/internal/adapters/auth"
	"navexpo/internal/adapters/email"
	"navexpo/internal/adapters/queue"
	delivery "navexpo/internal/delivery/http"
	"navexpo/internal/delivery/http/controllers"
	"navexpo/internal/domain"
	"navexpo/internal/repository/memory"
	"navexpo/internal/repository/postgres"
	"navexpo/internal/services"
)

const shutdownTimeout = 10 * time.Second

// repositories is the storage backend selected by STORE_DRIVER.
type repositories struct {
	events    domain.EventRepository
	attendees domain.AttendeeRepository
	users     domain.UserRepository
	tx        domain.Transactor
	db        *sql.DB // nil for the memory store
}

func main() {
	logger := config.NewLogger()
	if err := run(logger); err != nil {
		logger.Error("api stopped", "err", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if repos.db != nil {
		defer repos.db.Close()
	}

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:             cfg.Email.SESRegion,
			AccessKeyID:        cfg.Email.SESAccessKeyID,
			SecretAccessKey:    cfg.Email.SESSecretAccessKey,
			InsecureSkipVerify: cfg.Email.SESInsecureSkip,
		},
	}, logger)
	if err != nil {
		return fmt.Errorf("mailer: %w", err)
	}
	renderer, err := email.NewTemplateRenderer()
	if err != nil {
		return fmt.Errorf("email templates: %w", err)
	}
	emailService := services.NewEmailService(mailer, renderer, logger)

	notifier, closeNotifier := newNotifier(ctx, cfg, emailService, logger)
	defer closeNotifier()

	timeout := cfg.Store.Timeout
	jwt := auth.NewJWT(cfg.JWT.Secret, "navexpo")
	admission := services.NewAdmissionService(repos.events, repos.attendees, repos.tx, logger, timeout, services.DefaultRetryPolicy)

	var pinger controllers.Pinger
	if repos.db != nil {
		pinger = repos.db
	}
	ctrls := delivery.Controllers{
		Auth: controllers.NewAuthController(logger,
			services.NewAuthService(repos.users, auth.NewBcryptHasher(auth.DefaultCost), jwt, cfg.JWT.Expiry, emailService, logger)),
		User:     controllers.NewUserController(logger, services.NewUserService(repos.users, timeout)),
		Event:    controllers.NewEventController(logger, services.NewEventService(repos.events, repos.attendees, repos.users, repos.tx, logger, timeout)),
		Attendee: controllers.NewAttendeeController(logger, services.NewAttendeeService(repos.events, repos.attendees, admission, notifier, logger, timeout)),
		Health:   controllers.NewHealthController(logger, pinger),
	}
	router := delivery.NewRouter(ctrls, jwt, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      http.TimeoutHandler(delivery.Handler(router, logger, cfg.Server.AllowedOrigins), cfg.Server.RequestTimeout, "request timed out"),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("api listening", "addr", srv.Addr, "store", cfg.Store.Driver, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*repositories, error) {
	switch cfg.Store.Driver {
	case "memory":
		logger.Warn("using in-memory store; data is lost on restart")
		store := memory.NewStore()
		return &repositories{
			events:    memory.NewEventRepository(store),
			attendees: memory.NewAttendeeRepository(store),
			users:     memory.NewUserRepository(store),
			tx:        memory.NewTransactor(),
		}, nil
	case "postgres":
		db, err := postgres.Open(ctx, cfg.Database.URL, cfg.Database.MaxOpenConns)
		if err != nil {
			return nil, err
		}
		if cfg.Database.RunMigrations {
			if err := postgres.Migrate(db); err != nil {
				_ = db.Close()
				return nil, fmt.Errorf("migrate: %w", err)
			}
		}
		return &repositories{
			events:    postgres.NewEventRepository(db),
			attendees: postgres.NewAttendeeRepository(db),
			users:     postgres.NewUserRepository(db),
			tx:        postgres.NewTransactor(db),
			db:        db,
		}, nil
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.Store.Driver)
	}
}

// newNotifier queues confirmations on Redis when REDIS_ADDR is set and sends them
// directly otherwise.
func newNotifier(ctx context.Context, cfg *config.Config, emails domain.EmailService, logger *slog.Logger) (domain.RegistrationNotifier, func()) {
	direct := services.NewEmailNotifier(emails, logger, cfg.Store.Timeout)
	if cfg.Redis.Addr == "" {
		return direct, func() {}
	}
	rdb, err := queue.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Warn("redis unavailable, sending confirmations directly", "addr", cfg.Redis.Addr, "err", err)
		return direct, func() {}
	}
	return queue.NewNotifier(queue.New(rdb, logger)), func() { _ = rdb.Close() }
}
