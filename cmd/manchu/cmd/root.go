// Package cmd contains all CLI commands for the manchu tool.
package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/f3rmion/manchu/internal/config"
	"github.com/f3rmion/manchu/internal/llm"
	"github.com/f3rmion/manchu/internal/logging"
	"github.com/f3rmion/manchu/internal/store"
	"github.com/f3rmion/manchu/internal/translate"
	"github.com/f3rmion/manchu/internal/tui"
	"github.com/f3rmion/manchu/internal/tui/bigchar"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "manchu",
	Short: "Search and translate a Manchu text corpus",
	Long: `manchu is a terminal client for a corpus of Manchu texts with
Latin transliterations and English translations.

It can:
  - search the corpus and step through aligned Manchu and Latin tokens
  - translate between Manchu and English through a chat-completion API
  - browse translated and untranslated entries
  - import CSV, JSONL and Anki decks, and export results as CSV or Anki decks

Running 'manchu' without arguments launches the interactive TUI.`,
	RunE: runUnifiedTUI,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config directory (default is $HOME/.config/manchu)")
	rootCmd.PersistentFlags().Bool("verbose", false, "verbose output")

	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig reads in ENV variables and resolves the config directory.
func initConfig() {
	if cfgFile != "" {
		viper.Set("config_dir", cfgFile)
	} else {
		dir, err := config.GetConfigDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error finding home directory:", err)
			os.Exit(1)
		}
		viper.Set("config_dir", dir)
	}

	viper.SetEnvPrefix("MANCHU")
	viper.AutomaticEnv()
}

// getConfigDir returns the configuration directory path.
func getConfigDir() string {
	return viper.GetString("config_dir")
}

// loadConfig reads the user config and applies command-line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(getConfigDir())
	if err != nil {
		return nil, err
	}
	if viper.GetBool("verbose") {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

// cliLogger logs to stderr so command output on stdout stays clean.
func cliLogger(cfg *config.Config) *slog.Logger {
	return logging.New(cfg.Log, os.Stderr)
}

func openStore(cfg *config.Config, logger *slog.Logger) (store.Store, error) {
	s, err := store.Open(cfg.Store, logger)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	return s, nil
}

// newTranslator returns llm.ErrMissingAPIKey when no key is configured.
func newTranslator(cfg *config.Config, logger *slog.Logger) (*translate.Service, error) {
	client, err := llm.NewClient(llm.Config{
		APIKey:      cfg.Translation.APIKey,
		BaseURL:     cfg.Translation.BaseURL,
		Model:       cfg.Translation.Model,
		Timeout:     cfg.Translation.Timeout,
		MaxTokens:   cfg.Translation.MaxTokens,
		Temperature: cfg.Translation.Temperature,
	}, logger)
	if err != nil {
		return nil, err
	}
	return translate.NewService(client, logger), nil
}

// runUnifiedTUI launches the unified TUI application.
func runUnifiedTUI(cmd *cobra.Command, args []string) error {
	configDir := getConfigDir()
	if err := config.EnsureConfigDir(configDir); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// The alternate screen owns the terminal, so logs go to a file.
	logger, closer, err := logging.NewFile(cfg.Log, configDir, "manchu.log")
	if err != nil {
		return err
	}
	defer closer.Close()

	s, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	translator, err := newTranslator(cfg, logger)
	if err != nil {
		if !errors.Is(err, llm.ErrMissingAPIKey) {
			return err
		}
		logger.Warn("translation disabled", slog.String("reason", err.Error()))
	}

	var big *bigchar.Renderer
	if cfg.UI.BigToken {
		big, err = bigchar.Load(bigchar.DefaultFontPaths...)
		if err != nil {
			logger.Info("large token rendering disabled", slog.String("reason", err.Error()))
		}
	}

	logger.Info("starting TUI",
		slog.String("backend", cfg.Store.Backend),
		slog.Bool("translation", translator != nil))

	return tui.Run(tui.Deps{
		Config:     cfg,
		ConfigDir:  configDir,
		Store:      s,
		Translator: translator,
		BigToken:   big,
		Logger:     logger,
	})
}
