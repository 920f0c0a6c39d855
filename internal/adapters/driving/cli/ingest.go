package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/docquery-labs/docquery-cli/internal/core/domain"
	"github.com/docquery-labs/docquery-cli/internal/logger"
)

var (
	ingestWorkers int
	ingestWatch   bool
	ingestClear   bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path...]",
	Short: "Ingest documents into the index",
	Long: `Extracts, chunks, embeds and indexes the given files. Directories
are walked recursively and every supported file is ingested. Files whose
content is unchanged since the last run are skipped.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().IntVarP(&ingestWorkers, "workers", "w", 0, "concurrent ingestion workers (default 4)")
	ingestCmd.Flags().BoolVar(&ingestWatch, "watch", false, "keep watching directories and re-ingest on change")
	ingestCmd.Flags().BoolVar(&ingestClear, "clear", false, "empty the index before ingesting")
	rootCmd.AddCommand(ingestCmd)
}

// workersSetter is implemented by services with a tunable worker bound.
type workersSetter interface {
	SetWorkers(n int)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	if ingestWorkers > 0 {
		if s, ok := ingestService.(workersSetter); ok {
			s.SetWorkers(ingestWorkers)
		}
	}

	ctx := cmd.Context()

	if ingestClear {
		if err := ingestService.Clear(ctx); err != nil {
			return fmt.Errorf("clearing index: %w", err)
		}
		cmd.Println("Index cleared.")
	}

	total := &domain.IngestReport{}

	for _, path := range args {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}

		var report *domain.IngestReport
		if info.IsDir() {
			report, err = ingestService.IngestDir(ctx, path)
		} else {
			report, err = ingestService.Ingest(ctx, []string{path})
		}
		if report != nil {
			mergeReport(total, report)
		}
		if err != nil {
			// A cancelled batch still prints what it got through.
			printReport(cmd, total)
			return err
		}
	}

	printReport(cmd, total)

	if ingestWatch {
		return watchAndIngest(ctx, cmd, args)
	}
	return nil
}

// watchAndIngest blocks, re-ingesting files as they change on disk.
func watchAndIngest(ctx context.Context, cmd *cobra.Command, paths []string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}
		// Watching the parent directory catches atomic-rename saves.
		dir := path
		if !info.IsDir() {
			dir = filepath.Dir(path)
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
	}

	cmd.Println("Watching for changes (Ctrl-C to stop)...")

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if domain.DetectFormat(event.Name) == domain.FormatUnknown {
				continue
			}
			logger.Debug("Change detected: %s", event.Name)
			report, err := ingestService.Ingest(ctx, []string{event.Name})
			if err != nil {
				return err
			}
			if report.Ingested > 0 {
				cmd.Printf("Re-ingested %s\n", event.Name)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}

func mergeReport(dst, src *domain.IngestReport) {
	dst.Ingested += src.Ingested
	dst.Skipped += src.Skipped
	dst.Failed += src.Failed
	dst.Failures = append(dst.Failures, src.Failures...)
}

func printReport(cmd *cobra.Command, report *domain.IngestReport) {
	cmd.Printf("Ingested %d, skipped %d, failed %d (of %d)\n",
		report.Ingested, report.Skipped, report.Failed, report.Total())

	for _, f := range report.Failures {
		cmd.Printf("  FAILED %s [%s]: %s\n", f.Path, f.Kind, f.Reason)
	}
}
