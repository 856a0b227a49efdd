package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/vango-dev/toastkit/pkg/live"
	"github.com/vango-dev/toastkit/pkg/toast"
)

// demoPayload is the message shape the demo server pushes. Real hosts
// define their own payload type.
type demoPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func demoCmd() *cobra.Command {
	var (
		host       string
		port       int
		maxVisible int
		dedupe     string
		interval   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run a demo server that feeds toasts to connected renderers",
		Long: `Run a demo server.

The server pushes a synthetic toast every interval and exposes:

  GET /toasts/state  - current snapshot as JSON
  GET /toasts/ws     - WebSocket snapshot stream + command channel
  GET /metrics       - Prometheus metrics

Examples:
  toastkit demo
  toastkit demo --port=8080 --interval=2s
  toastkit demo --max-visible=3 --dedupe=refresh`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(host, port, maxVisible, dedupe, interval)
		},
	}

	cmd.Flags().StringVarP(&host, "host", "H", "127.0.0.1", "Host to bind to")
	cmd.Flags().IntVarP(&port, "port", "p", 7070, "Port to listen on")
	cmd.Flags().IntVar(&maxVisible, "max-visible", 5, "Visibility cap; extra toasts queue")
	cmd.Flags().StringVar(&dedupe, "dedupe", "ignore", "Dedupe policy: ignore or refresh")
	cmd.Flags().DurationVar(&interval, "interval", 3*time.Second, "Delay between synthetic toasts")

	return cmd
}

func runDemo(host string, port, maxVisible int, dedupe string, interval time.Duration) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	var policy toast.DedupePolicy
	switch dedupe {
	case "ignore":
		policy = toast.DedupeIgnore
	case "refresh":
		policy = toast.DedupeRefresh
	default:
		return fmt.Errorf("unknown dedupe policy %q", dedupe)
	}

	engine := toast.New[demoPayload](
		toast.WithMaxVisible(maxVisible),
		toast.WithDedupe(policy),
		toast.WithLogger(logger),
		toast.WithMetrics(toast.NewMetrics()),
		toast.WithScope("demo"),
	)
	defer engine.Destroy()

	notifier := toast.NewNotifier(engine,
		toast.WithDefaultDuration(8*time.Second),
	)

	bridge := live.NewBridge(engine, live.WithLogger(logger))
	defer bridge.Close()

	mux := chi.NewRouter()
	mux.Use(middleware.Recoverer)
	mux.Mount("/toasts", bridge.Router())
	mux.Handle("/metrics", promhttp.Handler())

	addr := fmt.Sprintf("%s:%d", host, port)
	srv := &http.Server{Addr: addr, Handler: mux}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go feed(ctx, notifier, interval)

	printBanner()
	fmt.Println("  demo")
	fmt.Println()
	success("Listening on http://%s", addr)
	info("snapshot  http://%s/toasts/state", addr)
	info("stream    ws://%s/toasts/ws", addr)
	info("metrics   http://%s/metrics", addr)
	fmt.Println()

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	fmt.Println("\n  Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// feed pushes a synthetic toast every interval until ctx is done.
func feed(ctx context.Context, notifier *toast.Notifier[demoPayload], interval time.Duration) {
	samples := []struct {
		variant string
		title   string
		body    string
	}{
		{toast.VariantSuccess, "Deploy finished", "Release v2.4.1 is live"},
		{toast.VariantInfo, "New sign-in", "Session started from 10.0.0.12"},
		{toast.VariantWarning, "Disk usage high", "Volume data-1 is at 87%"},
		{toast.VariantError, "Webhook failed", "POST to billing returned 502"},
		{toast.VariantInfo, "Export ready", "orders-2026-08.csv is available"},
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s := samples[rand.Intn(len(samples))]
			notifier.Push(s.variant, demoPayload{Title: s.title, Body: s.body})
		}
	}
}
