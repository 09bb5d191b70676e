package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Krrish0621/Mind-Care-sub000/internal/config"
	"github.com/Krrish0621/Mind-Care-sub000/internal/core"
	"github.com/Krrish0621/Mind-Care-sub000/internal/db"
	httpserver "github.com/Krrish0621/Mind-Care-sub000/internal/http"
	"github.com/Krrish0621/Mind-Care-sub000/internal/llm"
	"github.com/Krrish0621/Mind-Care-sub000/internal/session"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := config.New()
	var configFile string

	cmd := &cobra.Command{
		Use:          "triage-server",
		Short:        "Wellness triage chatbot with PHQ-9 and GAD-7 screenings",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v, configFile)
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg.LogDev)
			if err != nil {
				return errors.Wrap(err, "initialize logger")
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg, logger)
		},
	}
	cmd.Flags().StringVar(&configFile, "config", "", "path to a config file (yaml, json or toml)")
	cobra.CheckErr(config.BindFlags(v, cmd.Flags()))
	return cmd
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// results bundles the configured result store with its escalator and cleanup.
type results struct {
	store     core.ResultStore
	escalator core.Escalator
	close     func() error
}

func openResults(ctx context.Context, cfg *config.Config) (*results, error) {
	switch cfg.Store.Driver {
	case config.DriverSQLite:
		store, err := db.OpenSQLite(cfg.Store.DSN)
		if err != nil {
			return nil, err
		}
		return &results{store: store, close: store.Close}, nil
	case config.DriverPostgres:
		conn, err := sql.Open("postgres", cfg.Store.DSN)
		if err != nil {
			return nil, errors.Wrap(err, "open database")
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := conn.PingContext(pingCtx); err != nil {
			_ = conn.Close()
			return nil, errors.Wrap(err, "ping database")
		}
		if err := db.Migrate(ctx, conn); err != nil {
			_ = conn.Close()
			return nil, err
		}
		return &results{
			store:     db.NewRepository(conn),
			escalator: db.NewNotifier(conn, cfg.Notify.Channel),
			close:     conn.Close,
		}, nil
	default:
		return &results{store: db.NewMemoryStore(), close: func() error { return nil }}, nil
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	res, err := openResults(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.close(); err != nil {
			logger.Warn("closing result store", zap.Error(err))
		}
	}()
	logger.Info("result store ready", zap.String("driver", cfg.Store.Driver))

	sessions := session.NewMemoryStore(cfg.Session.TTL, logger.Named("sessions"))
	opts := []core.Option{
		core.WithResultSink(res.store),
		core.WithBookingURL(cfg.BookingURL),
		core.WithLogger(logger.Named("chat")),
	}
	if res.escalator != nil {
		opts = append(opts, core.WithEscalator(res.escalator))
	}
	if cfg.OpenAI.APIKey != "" {
		client := llm.NewOpenAIClient(llm.Config{
			APIKey:  cfg.OpenAI.APIKey,
			BaseURL: cfg.OpenAI.BaseURL,
			Model:   cfg.OpenAI.Model,
		})
		opts = append(opts, core.WithResponder(llm.NewEmpathizer(client, 0)))
		logger.Info("generated replies enabled", zap.String("model", cfg.OpenAI.Model))
	}
	chat := core.NewChatService(sessions, opts...)
	screening := core.NewScreeningService(res.store, res.escalator, logger.Named("screening"))

	handler := httpserver.NewServer(chat, screening,
		httpserver.NewRateLimiter(cfg.Rate.PerSecond, cfg.Rate.Burst), logger.Named("http"))
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "http server")
		}
		return nil
	})
	g.Go(func() error {
		return sessions.Run(gctx, cfg.Session.SweepInterval)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	chat.Wait()
	return err
}
