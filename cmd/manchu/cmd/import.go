package cmd

import (
	"context"
	"fmt"

	"github.com/f3rmion/manchu/internal/importer"
	"github.com/f3rmion/manchu/internal/store"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import records from CSV, JSONL or an Anki deck",
	Long: `Import corpus entries into the local SQLite store.

CSV files need manchu and latin columns (english, image_url and source are
optional). JSONL files hold one record object per line. Anki decks map note
fields by name, see 'manchu anki inspect' to list a deck's fields.

With --untranslated, CSV and JSONL files are read as untranslated documents
(image_url required, description and source_link optional).

Examples:
  manchu import corpus.csv
  manchu import scans.jsonl --untranslated
  manchu import deck.apkg --manchu-field Front --english-field Back`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var (
	importUntranslated bool
	importDryRun       bool
	importFields       importer.FieldMap
)

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().BoolVarP(&importUntranslated, "untranslated", "u", false, "import untranslated documents")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "parse the file without writing")
	importCmd.Flags().StringVar(&importFields.Manchu, "manchu-field", "", "Anki field holding Manchu script")
	importCmd.Flags().StringVar(&importFields.Latin, "latin-field", "", "Anki field holding the transliteration")
	importCmd.Flags().StringVar(&importFields.English, "english-field", "", "Anki field holding the translation")
	importCmd.Flags().StringVar(&importFields.Source, "source-field", "", "Anki field holding the source")
}

func runImport(cmd *cobra.Command, args []string) error {
	path := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := cliLogger(cfg)

	res, err := importer.File(path, importer.Options{
		Untranslated: importUntranslated,
		Fields:       importFields,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Parsed %s: %d entries, %d skipped\n", path, res.Len(), res.Skipped)
	if importDryRun {
		return nil
	}

	s, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	w, ok := s.(store.Writer)
	if !ok {
		return fmt.Errorf("%w: backend %q", store.ErrReadOnly, cfg.Store.Backend)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Store.Timeout)
	defer cancel()

	var n int
	if importUntranslated {
		n, err = w.InsertUntranslated(ctx, res.Untranslated)
	} else {
		n, err = w.InsertRecords(ctx, res.Records)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Imported %d entries\n", n)
	return nil
}
