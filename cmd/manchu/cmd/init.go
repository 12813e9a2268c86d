package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/f3rmion/manchu/internal/config"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize manchu configuration",
	Long: `Write a default config.yaml to your config directory.

The file selects the corpus store (a local SQLite database or a Supabase
project) and the translation API. Secrets may be left empty and supplied
through SUPABASE_KEY and DEEPSEEK_API_KEY instead.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().Bool("force", false, "overwrite existing configuration")
}

func runInit(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")
	configDir := getConfigDir()
	path := filepath.Join(configDir, config.FileName)

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config file already exists: %s\nUse --force to overwrite", path)
	}

	if err := config.EnsureConfigDir(configDir); err != nil {
		return err
	}
	if err := config.Save(path, config.Default()); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Initialized manchu configuration in %s\n\n", configDir)
	fmt.Fprintf(out, "  Created %s\n", config.FileName)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  1. Set DEEPSEEK_API_KEY (or translation.api_key) to enable translation")
	fmt.Fprintln(out, "  2. Run 'manchu import <file>' to load records into the local store")
	fmt.Fprintln(out, "  3. Run 'manchu' to open the interactive TUI")

	return nil
}
