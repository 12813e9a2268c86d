package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/f3rmion/manchu/internal/manchu"
	"github.com/muesli/reflow/truncate"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List corpus entries page by page",
	Long: `List translated records, or untranslated documents with --untranslated.
Pages hold ui.page_size entries unless --size is given.

Examples:
  manchu list
  manchu list --page 3
  manchu list --untranslated`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var (
	listUntranslated bool
	listPage         int
	listSize         int
)

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().BoolVarP(&listUntranslated, "untranslated", "u", false, "list untranslated documents")
	listCmd.Flags().IntVarP(&listPage, "page", "p", 1, "page number, starting at 1")
	listCmd.Flags().IntVar(&listSize, "size", 0, "entries per page (default ui.page_size)")
}

func runList(cmd *cobra.Command, args []string) error {
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

	size := listSize
	if size <= 0 {
		size = cfg.UI.PageSize
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Store.Timeout)
	defer cancel()

	out := cmd.OutOrStdout()
	if listUntranslated {
		docs, err := s.ListUntranslated(ctx)
		if err != nil {
			return err
		}
		lo, hi, page, pages := pageBounds(len(docs), listPage, size)
		fmt.Fprintf(out, "Untranslated: page %d/%d (%d total)\n", page, pages, len(docs))
		printUntranslated(out, docs[lo:hi])
		return nil
	}

	records, err := s.ListTranslated(ctx)
	if err != nil {
		return err
	}
	lo, hi, page, pages := pageBounds(len(records), listPage, size)
	fmt.Fprintf(out, "Translated: page %d/%d (%d total)\n", page, pages, len(records))
	for _, r := range records[lo:hi] {
		fmt.Fprintf(out, "\n#%d\n%s\n", r.ID, formatRecord(r))
	}
	return nil
}

// pageBounds clamps page (1-based) into range and returns the slice bounds
// for it. An empty list has one empty page.
func pageBounds(n, page, size int) (lo, hi, clamped, pages int) {
	pages = max(1, (n+size-1)/size)
	clamped = min(max(page, 1), pages)
	lo = min((clamped-1)*size, n)
	hi = min(lo+size, n)
	return lo, hi, clamped, pages
}

func printUntranslated(w io.Writer, docs []manchu.UntranslatedRecord) {
	for _, d := range docs {
		fmt.Fprintf(w, "\n#%d\n  Image:   %s\n", d.ID, d.ImageURL)
		if d.SourceLink != "" {
			fmt.Fprintf(w, "  Source:  %s\n", d.SourceLink)
		}
		if d.Description != "" {
			fmt.Fprintf(w, "  About:   %s\n", truncate.StringWithTail(d.Description, 72, "..."))
		}
	}
}
