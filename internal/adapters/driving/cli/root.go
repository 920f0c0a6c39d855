// Package cli implements the docquery command line interface.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/docquery-labs/docquery-cli/internal/core/ports/driving"
	"github.com/docquery-labs/docquery-cli/internal/logger"
)

// version is set from main via Execute.
var version = "dev"

// Services used by the commands. Wired from main via SetServices, or
// built lazily through the factory once flags are parsed.
var (
	ingestService driving.IngestService
	queryService  driving.QueryService
)

// ServiceFactory builds the services once the data directory is known.
type ServiceFactory func(dataDir string) (driving.IngestService, driving.QueryService, error)

var serviceFactory ServiceFactory

// Global flags.
var (
	verboseFlag bool
	dataDirFlag string
)

var rootCmd = &cobra.Command{
	Use:   "docquery",
	Short: "Ask questions about your documents",
	Long: `DocQuery ingests PDF, DOCX and text documents (including scanned
utility bills), indexes them with vector embeddings and answers
natural-language questions grounded in their content.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verboseFlag)
		if ingestService == nil && queryService == nil && serviceFactory != nil {
			ingest, query, err := serviceFactory(dataDirFlag)
			if err != nil {
				return err
			}
			ingestService = ingest
			queryService = query
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "data directory (default ~/.docquery/data)")
}

// SetServices wires concrete services into the commands.
func SetServices(ingest driving.IngestService, query driving.QueryService) {
	ingestService = ingest
	queryService = query
}

// SetServiceFactory registers a lazy service builder used when no
// services were wired directly. The factory receives the --data-dir
// flag value after parsing.
func SetServiceFactory(f ServiceFactory) {
	serviceFactory = f
}

// Execute runs the root command. It installs signal handling so a
// Ctrl-C during a long ingestion cancels cleanly with a partial report.
func Execute(v string) error {
	version = v

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}
