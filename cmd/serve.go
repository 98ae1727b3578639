package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/quotegen/internal/admin"
	"github.com/ziadkadry99/quotegen/internal/config"
	"github.com/ziadkadry99/quotegen/internal/live"
	"github.com/ziadkadry99/quotegen/internal/server"
	"github.com/ziadkadry99/quotegen/internal/telemetry"
	"github.com/ziadkadry99/quotegen/internal/trending"
	"github.com/ziadkadry99/quotegen/internal/visitors"
)

var (
	servePort   int
	serveMemory bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the quotegen HTTP server",
	Long:  `Starts the REST API, the live websocket feed and the admin history endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "port to listen on (overrides config)")
	serveCmd.Flags().BoolVar(&serveMemory, "memory", false, "keep history and stats in memory only")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort > 0 {
		cfg.Server.Port = servePort
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, "quotegen", cfg.Telemetry.Endpoint, Version)
	if err != nil {
		return fmt.Errorf("setting up tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: flushing traces: %v\n", err)
		}
	}()

	store, closeStore, err := openStore(cfg, serveMemory)
	if err != nil {
		return err
	}
	defer closeStore()

	svc, err := newQuoteService(cfg, store)
	if err != nil {
		return err
	}

	secret, configured := cfg.AdminSecret()
	if !configured {
		fmt.Fprintf(os.Stderr, "Warning: no admin secret configured, using the default %q. Set admin.secret or %sADMIN__SECRET.\n",
			config.DefaultAdminSecret, config.EnvPrefix)
	}
	ttl := time.Duration(cfg.Admin.SessionTTLMinutes) * time.Minute
	sessions, err := admin.NewSessions(secret, store, cfg.History.PageSize, ttl)
	if err != nil {
		return fmt.Errorf("creating admin sessions: %w", err)
	}
	go sessions.Run(ctx, time.Minute)

	flags := visitors.NewMemoryFlags(time.Duration(cfg.Visitors.FlagTTLMinutes) * time.Minute)
	go sweepFlags(ctx, flags, time.Minute)
	counter := visitors.NewCounter(store, flags)

	feed := trending.Start(store, cfg.Trending.Limit, nil)
	defer feed.Close()

	srv := server.New(server.Config{
		Port:     cfg.Server.Port,
		AllowAll: cfg.Server.AllowAll,
	}, server.Deps{
		Store:    store,
		Quotes:   svc,
		Counter:  counter,
		Trending: feed,
		Sessions: sessions,
		Live:     live.New(counter, store, cfg.Trending.Limit),
	})

	// Graceful shutdown.
	go func() {
		<-ctx.Done()
		fmt.Fprintln(os.Stderr, "\nShutting down server...")
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(sctx)
	}()

	fmt.Fprintf(os.Stderr, "quotegen server v%s starting on port %d\n", Version, cfg.Server.Port)
	fmt.Fprintf(os.Stderr, "  Provider: %s (%s)\n", cfg.Provider, cfg.Model)
	if serveMemory || cfg.Storage.Driver == config.StorageMemory {
		fmt.Fprintln(os.Stderr, "  Storage: memory")
	} else {
		fmt.Fprintf(os.Stderr, "  Storage: %s\n", cfg.Storage.Path)
	}
	if cfg.Telemetry.Endpoint != "" {
		fmt.Fprintf(os.Stderr, "  Tracing: %s\n", cfg.Telemetry.Endpoint)
	}

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func sweepFlags(ctx context.Context, flags *visitors.MemoryFlags, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := flags.Sweep(); n > 0 && verbose {
				fmt.Fprintf(os.Stderr, "Expired %d visitor sessions\n", n)
			}
		}
	}
}
