package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/f3rmion/manchu/internal/clipboard"
	"github.com/f3rmion/manchu/internal/manchu"
	"github.com/f3rmion/manchu/internal/translate"
	"github.com/spf13/cobra"
)

var translateCmd = &cobra.Command{
	Use:   "translate [text]",
	Short: "Translate between Manchu and English",
	Long: `Translate text through the configured chat-completion API.

manchu-to-english expects Manchu script and prints Latin and English.
english-to-manchu expects English and prints Manchu and Latin.
Reads stdin when no text is given.

Examples:
  manchu translate "ᠠᠪᡴᠠ"
  manchu translate -d english-to-manchu "heaven"
  echo "ᠠᠪᡴᠠ" | manchu translate --copy`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTranslate,
}

var (
	translateDirection string
	translateCopy      bool
)

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().StringVarP(&translateDirection, "direction", "d", "", "manchu-to-english or english-to-manchu (default translation.direction)")
	translateCmd.Flags().BoolVar(&translateCopy, "copy", false, "copy the result to the clipboard")
}

func runTranslate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := cliLogger(cfg)

	dirName := translateDirection
	if dirName == "" {
		dirName = cfg.Translation.Direction
	}
	dir, err := manchu.ParseDirection(dirName)
	if err != nil {
		return err
	}

	text, err := translateInput(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	svc, err := newTranslator(cfg, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Translation.Timeout)
	defer cancel()

	out, err := svc.Translate(ctx, text, dir)
	if err != nil {
		return err
	}

	result, err := formatTranslation(out, dir)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), result)

	if translateCopy {
		if err := clipboard.Write(result); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not copy to clipboard: %v\n", err)
		}
	}
	return nil
}

func translateInput(stdin io.Reader, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	b, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

// formatTranslation prints the two populated fields in the order the
// direction labels them.
func formatTranslation(out manchu.TranslationOutput, dir manchu.Direction) (string, error) {
	labels, err := translate.Labels(dir)
	if err != nil {
		return "", err
	}
	lines := make([]string, 0, len(labels))
	for _, label := range labels {
		lines = append(lines, label+": "+outputField(out, label))
	}
	return strings.Join(lines, "\n"), nil
}

func outputField(out manchu.TranslationOutput, label string) string {
	switch label {
	case "Latin":
		return out.Latin
	case "English":
		return out.English
	case "Manchu":
		return out.Manchu
	}
	return ""
}
