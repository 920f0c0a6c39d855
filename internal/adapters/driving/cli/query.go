package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docquery-labs/docquery-cli/internal/core/domain"
)

var (
	queryTopK        int
	queryFormat      string
	queryTemperature float64
	queryJSON        bool
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Ask a question about your documents",
	Long: `Retrieves the most relevant chunks for the question and generates a
grounded answer with citations. Use --format to restrict retrieval to
one document type, e.g. --format utility_bill.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of chunks to retrieve (default 5)")
	queryCmd.Flags().StringVarP(&queryFormat, "format", "f", "", "restrict to a document format (pdf, docx, utility_bill, text)")
	queryCmd.Flags().Float64VarP(&queryTemperature, "temperature", "t", 0, "generation temperature")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output the full query context as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	question := args[0]

	if queryService == nil {
		return errors.New("query service not configured")
	}

	format := domain.Format(queryFormat)
	if queryFormat != "" && !format.Valid() {
		return fmt.Errorf("unknown format %q", queryFormat)
	}

	opts := domain.QueryOptions{
		TopK:        queryTopK,
		Format:      format,
		Temperature: queryTemperature,
	}

	qc, err := queryService.Query(cmd.Context(), question, opts)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if queryJSON {
		data, err := json.MarshalIndent(qc, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal query context: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println(qc.Answer)

	if qc.NoContext {
		cmd.Println()
		cmd.Println("(no indexed documents matched this question)")
		return nil
	}

	if len(qc.Citations) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for i, c := range qc.Citations {
			cmd.Printf("  [%d] %s (chunk %d)\n", i+1, c.Path, c.Position)
		}
	}

	return nil
}
