package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/easel"
	httpAdapter "github.com/aretw0/easel/internal/adapters/http"
	"github.com/aretw0/easel/internal/metrics"
	"github.com/aretw0/easel/internal/presentation/tui"
	"github.com/aretw0/easel/pkg/domain"
	"github.com/aretw0/easel/pkg/observability"
)

// ServeOptions contains the configuration for the serve command.
type ServeOptions struct {
	EngineConfig
	Addr  string
	Watch bool
	Debug bool
}

// Serve starts the HTTP API server and blocks until a signal arrives or the
// listener fails. Interaction events feed both the SSE stream and the
// Prometheus collectors; /metrics is mounted next to the API.
func Serve(opts ServeOptions) error {
	logger := createLogger(opts.Debug)
	tui.PrintBanner(easel.Version)

	stream := observability.NewStream()
	collector := metrics.NewCollector(prometheus.DefaultRegisterer)
	hooks := domain.MergeHooks(stream.Hooks(), collector.Hooks())

	engine, err := NewEngine(opts.EngineConfig, logger, easel.WithHooks(hooks))
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", httpAdapter.NewHandler(engine, httpAdapter.WithStream(stream)))

	srv := &http.Server{
		Addr:    opts.Addr,
		Handler: mux,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)

	go func() {
		fmt.Printf("Starting Easel Server on %s\n", srv.Addr)
		fmt.Printf("Serving diagram: %s\n", opts.DiagramPath)
		serverErrors <- srv.ListenAndServe()
	}()

	watchCtx, cancelWatch := context.WithCancel(context.Background())
	defer cancelWatch()
	if opts.Watch {
		go watchAndReload(watchCtx, engine, logger)
	}

	// Channel to listen for interrupt or terminate signals.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		fmt.Printf("\nStart shutdown... Signal: %v\n", sig)

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			fmt.Printf("Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("error killing server: %w", err)
			}
		}
		fmt.Println("Easel Server stopped gracefully")
	}
	return nil
}

// watchAndReload reloads the diagram whenever the document changes on disk.
func watchAndReload(ctx context.Context, engine *easel.Engine, logger *slog.Logger) {
	watchCh, err := engine.Watch(ctx)
	if err != nil {
		logger.Warn("watch disabled", "err", err)
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-watchCh:
			if !ok {
				return
			}
			// Delay slightly to ensure the file system is stable.
			time.Sleep(100 * time.Millisecond)
			if err := engine.Reload(ctx); err != nil {
				logger.Error("reload failed", "err", err)
				continue
			}
			printSystemMessage("Change detected, diagram reloaded.")
		}
	}
}
