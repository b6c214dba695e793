package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-room-bookings/internal/bookings"
	"github.com/ariefcatur/go-room-bookings/internal/config"
	"github.com/ariefcatur/go-room-bookings/internal/httpx"
	kafkax "github.com/ariefcatur/go-room-bookings/internal/kafka"
	"github.com/ariefcatur/go-room-bookings/internal/logger"
	"github.com/ariefcatur/go-room-bookings/internal/redisx"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string
	root := &cobra.Command{
		Use:           "bookings-api",
		Short:         "Room booking HTTP API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "optional .env file")

	root.AddCommand(newServeCmd(&envFile))
	root.AddCommand(newMigrateCmd(&envFile))
	return root
}

func newServeCmd(envFile *string) *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadWithFile(*envFile)
			if err != nil {
				return err
			}
			return serve(cfg, logger.New(), migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", true, "create tables on startup")
	return cmd
}

func newMigrateCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the booking tables and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadWithFile(*envFile)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
			defer cancel()

			b, err := openStore(ctx, cfg, true)
			if err != nil {
				return err
			}
			b.Close()
			logger.New().Info("schema ready", logger.Driver(cfg.StoreDriver))
			return nil
		},
	}
}

func serve(cfg *config.Config, log *logger.Logger, migrate bool) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	b, err := openStore(ctx, cfg, migrate)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer b.Close()

	svc := &bookings.Service{
		Store:       b.Store,
		Log:         log,
		ServiceName: cfg.ServiceName,
	}

	if cfg.RedisAddr != "" {
		rdb := redisx.New(cfg.RedisAddr)
		defer func() { _ = rdb.Close() }()
		svc.Cache = &redisx.ListCache{RDB: rdb, Log: log}
	}

	// events stay off unless brokers are configured
	var prod *kafkax.Producer
	if brokers := cfg.Brokers(); len(brokers) > 0 {
		prodCtx, stopProd := context.WithCancel(context.Background())
		defer stopProd()
		prod = kafkax.NewProducer(brokers, bookings.TopicBookingEvents, 1024, log)
		prod.Start(prodCtx)
		svc.Producer = prod
	}

	router := httpx.NewRouter(cfg.RequestTimeout)
	bh := &httpx.BookingsHandler{Service: svc}
	if b.Audit != nil {
		bh.Audit = b.Audit
	}
	bh.Register(router)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP listening", logger.Addr(cfg.HTTPAddr), logger.Driver(cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		// handlers still running after this point have their events dropped by Publish
		log.Error("shutdown", logger.Error(err))
	}
	if prod != nil {
		prod.Close()
		prod.WaitClosed()
	}
	return nil
}
