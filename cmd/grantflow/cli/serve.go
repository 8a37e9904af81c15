package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/grantflow/internal/app"
	"github.com/rpggio/grantflow/internal/config"
	"github.com/rpggio/grantflow/internal/events"
	"github.com/rpggio/grantflow/internal/mcp"
	"github.com/rpggio/grantflow/internal/observability/metrics"
	"github.com/rpggio/grantflow/internal/transport"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

// ServeCmd starts the MCP server.
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the treasury over MCP (stdio or HTTP)",
		Args:  cobra.NoArgs,
		RunE:  serve,
	}
	cmd.Flags().String("transport", "", "override transport.mode (http or stdio)")
	return cmd
}

func serve(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if mode, _ := cmd.Flags().GetString("transport"); mode != "" {
		cfg.Transport.Mode = mode
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx)

	db, err := openDB(cfg.DB.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	publisher, closePublisher, err := newPublisher(cfg.Queue, logger)
	if err != nil {
		return err
	}
	defer closePublisher()

	if cfg.Metrics.Enabled {
		metrics.Init(cfg.Metrics.Host, cfg.Metrics.Port)
	}

	services := app.NewServices(db, publisher, logger)
	mcpServer := mcp.NewServer(mcp.Config{
		Services:      mcpServices(services),
		Resolver:      services.APIKeys,
		AuthEnabled:   cfg.Auth.Enabled,
		TransportMode: cfg.Transport.Mode,
		Logger:        logger,
	})

	if cfg.Transport.Mode == "stdio" {
		return runStdio(ctx, logger, mcpServer)
	}
	return runHTTP(ctx, logger, cfg, services, mcpServer)
}

func mcpServices(s *app.Services) mcp.Services {
	return mcp.Services{
		Treasuries: s.Treasuries,
		Streams:    s.Streams,
		Vestings:   s.Vestings,
		Activity:   s.Activity,
		Custody:    s.Custody,
	}
}

// newPublisher connects the AMQP publisher when the queue is enabled.
func newPublisher(cfg config.QueueConfig, logger zerolog.Logger) (events.Publisher, func(), error) {
	if !cfg.Enabled {
		return events.NopPublisher{}, func() {}, nil
	}
	p, err := events.NewAMQPPublisher(events.AMQPConfig{
		URL:           cfg.URL,
		Exchange:      cfg.Exchange,
		RoutingPrefix: cfg.RoutingPrefix,
		MaxRetryTimes: cfg.MaxRetryTimes,
		RetryInterval: cfg.RetryInterval,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("connect event queue: %w", err)
	}
	logger.Info().Str("exchange", cfg.Exchange).Msg("publishing events to amqp")
	return p, func() {
		if err := p.Close(); err != nil {
			logger.Warn().Err(err).Msg("closing amqp publisher")
		}
	}, nil
}

func runStdio(ctx context.Context, logger zerolog.Logger, server *sdkmcp.Server) error {
	logger.Info().Str("auth", "disabled").Msg("starting stdio transport")

	// Run blocks until stdin closes or ctx is cancelled.
	if err := server.Run(ctx, &sdkmcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stdio server: %w", err)
	}
	logger.Info().Msg("shutting down")
	return nil
}

func runHTTP(ctx context.Context, logger zerolog.Logger, cfg config.Config, services *app.Services, server *sdkmcp.Server) error {
	var auth func(http.Handler) http.Handler
	if cfg.Auth.Enabled {
		auth = transport.AuthMiddleware(services.APIKeys)
	}
	router := transport.NewServer(mcp.NewHandler(mcpServices(services), logger), auth)

	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return server },
		&sdkmcp.StreamableHTTPOptions{SessionTimeout: 30 * time.Minute},
	)
	router.Handle("/mcp", mcpHandler)
	router.Handle("/mcp/*", mcpHandler)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Bool("auth", cfg.Auth.Enabled).Msg("server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	logger.Info().Msg("shutting down")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
