package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/f3rmion/manchu/internal/export"
	"github.com/f3rmion/manchu/internal/manchu"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export [query]",
	Short: "Export search results as CSV or an Anki deck",
	Long: `Run a search and write the results to a file.

Without --output the file is written to ui.export_dir and named after the
query (manchu_dataset_<query>.csv). An --output that names a directory gets
the same file name; anything else is used as the file path. The format
follows --format, or the output extension when --format is not set.

Examples:
  manchu export abka
  manchu export -o corpus.csv
  manchu export heaven --format apkg -o ~/decks`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

var (
	exportOutput string
	exportFormat string
)

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file or directory")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "csv or apkg (default from the output extension, else csv)")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := cliLogger(cfg)

	s, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	var query string
	if len(args) > 0 {
		query = args[0]
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Store.Timeout)
	defer cancel()

	records, err := s.Search(ctx, query)
	if err != nil {
		return fmt.Errorf("searching: %w", err)
	}

	format := exportFormat
	if format == "" {
		format = formatFromPath(exportOutput)
	}

	path, err := writeExport(format, exportOutput, cfg.UI.ExportDir, query, records)
	if err != nil {
		return err
	}

	logger.Debug("exported", slog.String("path", path), slog.Int("records", len(records)))
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d records to %s\n", len(records), path)
	return nil
}

func formatFromPath(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".apkg") {
		return "apkg"
	}
	return "csv"
}

// writeExport writes to output when it names a file, and otherwise into
// the output directory (or defaultDir) under the query's file name.
func writeExport(format, output, defaultDir, query string, records []manchu.Record) (string, error) {
	if output == "" {
		return exportRecords(format, defaultDir, query, records)
	}
	if info, err := os.Stat(output); err == nil && info.IsDir() {
		return exportRecords(format, output, query, records)
	}

	switch format {
	case "csv":
		return output, export.WriteFile(output, records)
	case "apkg", "anki":
		return output, export.WriteAnki(output, records)
	default:
		return "", fmt.Errorf("unknown export format %q (want csv or apkg)", format)
	}
}
