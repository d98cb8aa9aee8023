// ABOUTME: Command line client for the content capture library
// ABOUTME: Converts HTML, captures pages and manages extraction jobs from a terminal

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/anhbatoichoi/content-capture-universe/capturelib"
	"github.com/anhbatoichoi/content-capture-universe/infrastructure/logger/structured"
	"github.com/anhbatoichoi/content-capture-universe/infrastructure/storage/sqlite"
)

func main() {
	if err := newRootCmd(newApp()).Execute(); err != nil {
		os.Exit(1)
	}
}

// app holds the flags shared by every command and builds library clients
type app struct {
	apiURL       string
	dbPath       string
	pollInterval time.Duration
	logLevel     string

	// extra options appended to every client, used by tests
	options []capturelib.Option
}

func newApp() *app {
	return &app{}
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "capturectl",
		Short:         "Capture pages, convert HTML to Markdown and track extraction jobs",
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&a.apiURL, "api-url", getenv("EXTRACTION_API_URL", "http://localhost:8081/api"), "extraction API base URL")
	root.PersistentFlags().StringVar(&a.dbPath, "db", getenv("CAPTURECTL_DB", "capturectl.db"), "SQLite file holding jobs between runs (empty keeps them in memory)")
	root.PersistentFlags().DurationVar(&a.pollInterval, "poll-interval", 10*time.Second, "delay between status checks of one job")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(
		convertCmd(),
		captureCmd(a),
		submitCmd(a),
		jobsCmd(a),
		refreshCmd(a),
		clearCmd(a),
		watchCmd(a),
		chatCmd(a),
	)
	return root
}

// withClient opens a client for the duration of fn and closes it afterwards
func (a *app) withClient(ctx context.Context, stderr io.Writer, resume bool, fn func(*capturelib.Client) error) error {
	logger := structured.NewLogger(structured.Options{
		Level:  a.logLevel,
		Format: "text",
		Output: stderr,
	})

	opts := []capturelib.Option{
		capturelib.WithBaseURL(a.apiURL),
		capturelib.WithLogger(logger),
		capturelib.WithPollInterval(a.pollInterval),
		capturelib.WithResumePolling(resume),
	}

	if a.dbPath != "" {
		storage, err := sqlite.NewStorage(a.dbPath, logger)
		if err != nil {
			return fmt.Errorf("open %s: %w", a.dbPath, err)
		}
		defer storage.Close()
		opts = append(opts, capturelib.WithStorage(storage))
	}

	client, err := capturelib.NewClient(ctx, append(opts, a.options...)...)
	if err != nil {
		return err
	}

	runErr := fn(client)
	if err := client.Close(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}
