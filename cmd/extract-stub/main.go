// ABOUTME: Entry point for the simulated extraction service
// ABOUTME: Serves submit, status and chat on the paths the capture API calls

package main

import (
	"context"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"

	"github.com/anhbatoichoi/content-capture-universe/api/middleware"
	"github.com/anhbatoichoi/content-capture-universe/infrastructure/logger/structured"
)

func main() {
	var addr string
	var latency time.Duration
	var probability float64
	var logLevel string

	root := &cobra.Command{
		Use:          "extract-stub",
		Short:        "Run a simulated extraction service",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := structured.NewLogger(structured.Options{Level: logLevel, Format: "text"})

			router := chi.NewRouter()
			router.Use(middleware.RequestLoggingMiddleware(logger))
			api := humachi.New(router, huma.DefaultConfig("Extraction Stub", "1.0.0"))

			rng := rand.New(rand.NewSource(time.Now().UnixNano()))
			newStub(rng.Float64, probability, latency, logger).RegisterRoutes(api)

			srv := &http.Server{
				Addr:              addr,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			go func() {
				logger.Info("Extraction stub listening", map[string]interface{}{
					"address":          addr,
					"done_probability": probability,
				})
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatalf("Server failed to start: %v", err)
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(ctx)
		},
	}

	root.Flags().StringVar(&addr, "addr", ":8081", "listen address")
	root.Flags().DurationVar(&latency, "latency", 500*time.Millisecond, "delay added to every response")
	root.Flags().Float64Var(&probability, "done-probability", DefaultDoneProbability, "chance that a status check finishes a job")
	root.Flags().StringVar(&logLevel, "log-level", "info", "log level")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
