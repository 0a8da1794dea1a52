package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sage-ingest/sage/internal/config"
	"github.com/sage-ingest/sage/internal/gate"
	"github.com/sage-ingest/sage/internal/httpintake"
	"github.com/sage-ingest/sage/internal/logging"
	"github.com/sage-ingest/sage/internal/model"
	"github.com/sage-ingest/sage/internal/runner"
	"github.com/sage-ingest/sage/internal/schema"
)

// runValidateYAML loads every schema document under -dir and reports
// whether the Schema Loader accepted them, printing the resolved catalog,
// package, and sender counts on success.
func runValidateYAML(args []string) error {
	fs := newFlagSet("validate-yaml")
	dir := fs.String("dir", "", "directory of catalog/package/sender YAML documents")
	fs.Parse(args)
	if *dir == "" {
		return fmt.Errorf("-dir is required")
	}

	result, err := schema.LoadDir(*dir)
	if err != nil {
		return err
	}
	fmt.Printf("OK: %d documents loaded -> %d catalogs, %d packages, %d senders\n",
		result.DocumentCount, len(result.Schema.Catalogs), len(result.Schema.Packages), len(result.Schema.Senders))
	return nil
}

// runValidateSender runs only the Sender Gate check for a hypothetical
// submission, without decoding or validating a file — useful for checking
// a sender's authorization configuration in isolation.
func runValidateSender(args []string) error {
	fs := newFlagSet("validate-sender")
	dir := fs.String("dir", "", "directory of catalog/package/sender YAML documents")
	sender := fs.String("sender", "", "sender_id")
	pkg := fs.String("package", "", "package name")
	channel := fs.String("channel", "api", "submission channel")
	apiKey := fs.String("api-key", "", "channel api key, if applicable")
	fs.Parse(args)
	if *dir == "" || *sender == "" || *pkg == "" {
		return fmt.Errorf("-dir, -sender, and -package are required")
	}

	result, err := schema.LoadDir(*dir)
	if err != nil {
		return err
	}

	sub := model.Submission{
		SenderID:    *sender,
		PackageName: *pkg,
		Channel:     model.Channel(*channel),
		ReceivedAt:  time.Now(),
		APIKey:      *apiKey,
	}
	res := gate.Check(result.Schema, sub)
	if !res.Allowed {
		return fmt.Errorf("denied: [%s] %s", res.Finding.RuleName, res.Finding.Message)
	}
	fmt.Println("OK: sender is authorized for this submission")
	return nil
}

// runProcessPackage runs the full Load/Validate/Sink pipeline against a
// file on disk, printing every Finding and the Sink outcome.
func runProcessPackage(args []string) error {
	fs := newFlagSet("process-package")
	dir := fs.String("dir", "", "directory of catalog/package/sender YAML documents")
	sender := fs.String("sender", "", "sender_id")
	pkg := fs.String("package", "", "package name")
	channel := fs.String("channel", "direct_upload", "submission channel")
	file := fs.String("file", "", "path to the submission payload")
	fs.Parse(args)
	if *dir == "" || *sender == "" || *pkg == "" || *file == "" {
		return fmt.Errorf("-dir, -sender, -package, and -file are required")
	}

	result, err := schema.LoadDir(*dir)
	if err != nil {
		return err
	}

	blob, err := os.ReadFile(*file)
	if err != nil {
		return fmt.Errorf("reading %s: %w", *file, err)
	}

	sub := model.Submission{
		SenderID:    *sender,
		PackageName: *pkg,
		Channel:     model.Channel(*channel),
		Blob:        blob,
		FileName:    *file,
		ReceivedAt:  time.Now(),
	}

	controller := runner.New(result.Schema, nil)
	outcome := controller.Process(context.Background(), sub)

	for _, f := range outcome.Diagnostic.Findings {
		fmt.Printf("[%s] %s %s: %s (%s)\n", f.Severity, f.Scope, f.Locator, f.Message, f.RuleName)
	}
	fmt.Printf("run_id=%s status=%s applied=%v rows_inserted=%d\n",
		outcome.RunID, outcome.Diagnostic.Status(), outcome.Applied, outcome.SinkResult.RowsInserted)
	if outcome.Diagnostic.HasErrors() {
		return fmt.Errorf("run completed with errors")
	}
	return nil
}

// runServe starts the HTTP intake adapter, loading configuration from the
// environment (adapted from the teacher's cmd/server/main.go bootstrap
// sequence: load config, load schema, build the server, wait for a signal,
// shut down gracefully).
func runServe(args []string) error {
	fs := newFlagSet("serve")
	fs.Parse(args)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	result, err := schema.LoadDir(cfg.Schema.Dir)
	if err != nil {
		return fmt.Errorf("loading schema: %w", err)
	}
	fmt.Printf("loaded %d documents: %d catalogs, %d packages, %d senders\n",
		result.DocumentCount, len(result.Schema.Catalogs), len(result.Schema.Packages), len(result.Schema.Senders))

	controller := runner.New(result.Schema, nil)
	server := httpintake.NewServer(controller, cfg)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		fmt.Println("shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "shutdown error: %v\n", err)
		}
	}()

	fmt.Printf("listening on %s\n", cfg.Server.Addr())
	if err := server.Start(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
