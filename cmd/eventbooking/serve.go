package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"eventbooking/config"
	_ "eventbooking/docs"
	"eventbooking/internal/adapters/auth"
	"eventbooking/internal/adapters/email"
	"eventbooking/internal/adapters/media"
	httpdelivery "eventbooking/internal/delivery/http"
	"eventbooking/internal/delivery/http/controllers"
	"eventbooking/internal/delivery/http/middleware"
	"eventbooking/internal/domain"
	"eventbooking/internal/repository/postgres"
	"eventbooking/internal/services"
	"eventbooking/internal/validation"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		logger := config.NewLogger(cfg.Environment)

		migrate, _ := cmd.Flags().GetBool("migrate")
		return serve(cmd.Context(), cfg, logger, migrate)
	},
}

func init() {
	serveCmd.Flags().Bool("migrate", false, "Apply pending database migrations before serving")
}

func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger, migrate bool) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn := postgres.NewLazyConnector(cfg.DBUrl, cfg.DBConnectTimeout)
	defer conn.Close()

	if migrate {
		applied, err := postgres.Migrate(ctx, conn)
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logger.Info("migrations applied", "count", len(applied))
	}

	limiter := middleware.NewRateLimiter(cfg.BookingRateLimitRPS, cfg.BookingRateLimitBurst, cfg.TrustedProxies)
	defer limiter.Stop()

	handler, err := buildHandler(cfg, logger, conn, limiter)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              net.JoinHostPort("", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	logger.Info("server listening", "addr", ln.Addr().String(), "env", cfg.Environment)
	return runServer(ctx, logger, server, ln, shutdownTimeout)
}

// runServer serves on ln until ctx is done, then drains in-flight requests.
// Request contexts are not derived from ctx, so a signal lets running
// requests finish instead of cancelling them.
func runServer(ctx context.Context, logger *slog.Logger, server *http.Server, ln net.Listener, drain time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), drain)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// buildHandler wires repositories, services, adapters and controllers into the HTTP handler.
func buildHandler(cfg *config.Config, logger *slog.Logger, conn postgres.Connector, limiter *middleware.RateLimiter) (http.Handler, error) {
	validator := validation.New()

	eventRepo := postgres.NewEventRepository(conn)
	bookingRepo := postgres.NewBookingRepository(conn)

	mailer, err := email.NewMailer(logger, email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:          cfg.AWS.Region,
			AccessKeyID:     cfg.AWS.AccessKeyID,
			SecretAccessKey: cfg.AWS.SecretAccessKey,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("mailer: %w", err)
	}
	emailService := services.NewEmailService(logger, mailer, email.NewTemplateRenderer())

	uploader, err := media.NewUploader(logger, media.Config{
		Provider:      cfg.Media.Provider,
		Folder:        cfg.Media.Folder,
		LocalDir:      cfg.Media.LocalDir,
		PublicBaseURL: cfg.Media.PublicBaseURL,
		S3: media.S3Config{
			Region:          cfg.AWS.Region,
			Bucket:          cfg.Media.S3Bucket,
			AccessKeyID:     cfg.AWS.AccessKeyID,
			SecretAccessKey: cfg.AWS.SecretAccessKey,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("media uploader: %w", err)
	}

	eventService := services.NewEventService(eventRepo, validator, cfg.ContextTimeout)
	bookingService := services.NewBookingService(logger, eventRepo, bookingRepo, emailService, validator, cfg.ContextTimeout)

	var verifier domain.TokenVerifier
	if cfg.APISecretKey != "" {
		verifier = auth.NewAdminVerifier(cfg.APISecretKey)
	}
	routerCfg := httpdelivery.RouterConfig{
		AdminVerifier:  verifier,
		BookingLimiter: limiter,
		AllowedOrigins: cfg.AllowedOrigins,
	}
	if cfg.Media.Provider != "s3" {
		routerCfg.UploadsDir = cfg.Media.LocalDir
	}

	return httpdelivery.NewRouter(
		logger,
		controllers.NewEventController(logger, eventService, uploader, validator),
		controllers.NewBookingController(logger, bookingService),
		controllers.NewHealthController(logger, postgres.NewHealthCheck(conn)),
		routerCfg,
	), nil
}
