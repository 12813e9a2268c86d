package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/f3rmion/manchu/internal/align"
	"github.com/f3rmion/manchu/internal/export"
	"github.com/f3rmion/manchu/internal/manchu"
	"github.com/f3rmion/manchu/internal/results"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the corpus",
	Long: `Search Manchu, Latin and English text for a substring, case-insensitively.
An empty query lists every translated record.

Examples:
  manchu search abka
  manchu search "heaven" --export csv
  manchu search --export apkg -o ~/decks`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

var (
	searchExport string
	searchOutDir string
	searchTokens bool
)

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringVar(&searchExport, "export", "", "also export results: csv or apkg")
	searchCmd.Flags().StringVarP(&searchOutDir, "output", "o", "", "export directory (default ui.export_dir)")
	searchCmd.Flags().BoolVar(&searchTokens, "tokens", false, "show the token alignment of each record")
}

func runSearch(cmd *cobra.Command, args []string) error {
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

	m := results.NewManager(s, logger)
	if err := m.Search(ctx, query); err != nil {
		return err
	}
	records := m.Records()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d results for %q\n", len(records), query)
	for i, r := range records {
		fmt.Fprintf(out, "\n[%d/%d] #%d\n", i+1, len(records), r.ID)
		fmt.Fprintln(out, formatRecord(r))
		if searchTokens {
			fmt.Fprintln(out, formatAlignment(m.Index(), r.ID))
		}
	}

	if searchExport == "" {
		return nil
	}
	dir := searchOutDir
	if dir == "" {
		dir = cfg.UI.ExportDir
	}
	path, err := exportRecords(searchExport, dir, m.Query(), records)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nExported %d records to %s\n", len(records), path)
	return nil
}

func formatRecord(r manchu.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  Manchu:  %s\n", r.ManchuText)
	fmt.Fprintf(&b, "  Latin:   %s", r.LatinText)
	if r.EnglishText != "" {
		b.WriteString("\n  English:\n")
		b.WriteString(indent.String(wordwrap.String(r.EnglishText, 68), 4))
	}
	if r.Source != "" {
		fmt.Fprintf(&b, "\n  Source:  %s", r.Source)
	}
	return b.String()
}

// formatAlignment lists token pairs by position. A side that is shorter
// shows an empty cell.
func formatAlignment(idx *align.Index, recordID int64) string {
	mt, lt := idx.Tokens(recordID)
	n := max(len(mt), len(lt))

	var b strings.Builder
	b.WriteString("  Tokens:")
	for i := range n {
		var m, l string
		if i < len(mt) {
			m = mt[i].Text
		}
		if i < len(lt) {
			l = lt[i].Text
		}
		fmt.Fprintf(&b, "\n    %3d  %s  %s", i, m, l)
	}
	return b.String()
}

func exportRecords(format, dir, query string, records []manchu.Record) (string, error) {
	switch format {
	case "csv":
		return export.ToFile(dir, query, records)
	case "apkg", "anki":
		return export.ToAnki(dir, query, records)
	default:
		return "", fmt.Errorf("unknown export format %q (want csv or apkg)", format)
	}
}
