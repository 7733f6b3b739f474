// Command docctl is the operator CLI for the document queue: it uploads
// files, inspects and requeues documents, and exports results.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"docworker/internal/config"
	"docworker/internal/logger"
	"docworker/internal/port"
	"docworker/internal/repository/postgres"
	"docworker/internal/service"
	"docworker/internal/storage"
	"docworker/internal/summarizer"
)

// app carries what every subcommand needs. svc is filled in lazily by
// PersistentPreRunE unless a test has already set it.
type app struct {
	svc     service.DocumentService
	out     io.Writer
	log     zerolog.Logger
	cleanup func()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{out: os.Stdout}
	if err := newRootCmd(a).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:          "docctl",
		Short:        "Operate the docworker document queue",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.svc != nil {
				return nil
			}
			return a.connect(cmd.Context(), verbose)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.cleanup != nil {
				a.cleanup()
			}
		},
	}
	root.SetOut(a.out)
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level to stderr")

	root.AddCommand(
		newUploadCmd(a),
		newListCmd(a),
		newShowCmd(a),
		newRequeueCmd(a),
		newResummarizeCmd(a),
		newDeleteCmd(a),
		newBlobsCmd(a),
		newExportCmd(a),
	)
	return root
}

func (a *app) connect(ctx context.Context, verbose bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	a.log = logger.New(cfg.Log, "docctl", os.Stderr)

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	blobs, err := storage.New(ctx, &cfg.Storage)
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to initialize %s storage: %w", cfg.Storage.Provider, err)
	}

	// Only resummarize needs a provider; the other commands work without one.
	var instructed port.InstructedSummarizer
	if s, err := summarizer.New(&cfg.Summarizer, a.log); err != nil {
		a.log.Debug().Err(err).Msg("summarizer unavailable")
	} else {
		instructed = s
	}

	a.svc = service.NewDocumentService(postgres.NewDocumentRepo(db), blobs, instructed, a.log)
	a.cleanup = func() { db.Close() }
	return nil
}
