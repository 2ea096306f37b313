package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/csheth/captionwizard/internal/caption"
	"github.com/csheth/captionwizard/internal/captions"
	"github.com/csheth/captionwizard/internal/clipboard"
	"github.com/csheth/captionwizard/internal/config"
	"github.com/csheth/captionwizard/internal/llm"
	"github.com/csheth/captionwizard/internal/logging"
	"github.com/csheth/captionwizard/internal/notify"
	"github.com/csheth/captionwizard/internal/session"
	"github.com/csheth/captionwizard/internal/tui"
)

// globalFlags are shared by every command; flags win over the config file.
type globalFlags struct {
	configFile   string
	provider     string
	model        string
	endpoint     string
	historyLimit int
	logFile      string
	logLevel     string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	var (
		noAltScreen  bool
		describeFrom string
	)

	rootCmd := &cobra.Command{
		Use:     "captionwizard",
		Short:   "Generate social media captions for your photos",
		Version: version,
		Long: `Caption Wizard turns a short image description into a ready-to-post caption.

Pick a tone, an audience and a platform, optionally ask for hashtags, and the
configured completion provider writes the caption. Generated captions are kept
in a session history; the ones you like can be saved, copied and deleted.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.Logging, logging.Discard)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			sess, hint := buildSession(cfg, logger)
			opts := []tea.ProgramOption{}
			if !noAltScreen {
				opts = append(opts, tea.WithAltScreen())
			}
			program := tea.NewProgram(tui.New(tui.Config{
				Session:         sess,
				Logger:          logger,
				DescribeFrom:    describeFrom,
				UnavailableHint: hint,
			}), opts...)

			if _, err := program.Run(); err != nil {
				return fmt.Errorf("program error: %w", err)
			}
			return nil
		},
	}

	addGlobalFlags(rootCmd, flags)

	rootCmd.Flags().BoolVar(&noAltScreen, "no-alt-screen", false, "Disable the alternate screen buffer")
	rootCmd.Flags().StringVar(&describeFrom, "describe-from", "", "Seed the description from a .txt/.md/.pdf file or URL")

	rootCmd.AddCommand(newServeCmd(flags), newOptionsCmd())
	return rootCmd
}

func addGlobalFlags(cmd *cobra.Command, flags *globalFlags) {
	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.configFile, "config", "", "Config file (default: ./"+config.FileName+" or ~/"+config.FileName+")")
	pf.StringVarP(&flags.provider, "provider", "p", "", "Completion provider (groq/openai/anthropic)")
	pf.StringVarP(&flags.model, "model", "m", "", "Model to use (provider-specific)")
	pf.StringVar(&flags.endpoint, "endpoint", "", "Completion endpoint URL")
	pf.IntVar(&flags.historyLimit, "history-limit", 0, "Keep at most this many history entries (0 keeps all)")
	pf.StringVar(&flags.logFile, "log-file", "", "Write logs to this file")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level (debug/info/warn/error)")
}

// loadConfig reads the config file and applies flags only where they were set explicitly.
func loadConfig(cmd *cobra.Command, flags *globalFlags) (*config.Config, error) {
	cfg, err := config.Load(flags.configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if cmd.Flags().Changed("provider") {
		cfg.SetProvider(strings.ToLower(strings.TrimSpace(flags.provider)))
	}
	if cmd.Flags().Changed("model") && flags.model != "" {
		cfg.LLM.Model = flags.model
	}
	if cmd.Flags().Changed("endpoint") && flags.endpoint != "" {
		cfg.LLM.Endpoint = flags.endpoint
	}
	if cmd.Flags().Changed("history-limit") {
		cfg.HistoryLimit = flags.historyLimit
	}
	if cmd.Flags().Changed("log-file") {
		cfg.Logging.File = flags.logFile
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level = flags.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// buildSession wires the store, notification slot, clipboard and generator. When no
// client can be built the session stays usable for browsing and the returned hint says why.
func buildSession(cfg *config.Config, logger *zap.Logger) (*session.Session, string) {
	deps := session.Deps{
		Store:   captions.NewStore(captions.WithHistoryLimit(cfg.HistoryLimit)),
		Flasher: notify.New(cfg.GetNotificationTTL()),
		Logger:  logger,
	}
	if clipboard.Available() {
		deps.Clipboard = clipboard.System{}
	} else {
		logger.Warn("no system clipboard found; copies stay in memory")
		deps.Clipboard = clipboard.NewMemory(nil)
	}

	client, err := llm.New(cfg.ClientConfig())
	if err != nil {
		logger.Warn("caption generation disabled", zap.Error(err))
		return session.New(deps), capitalize(err.Error()) + "."
	}
	gen, err := caption.NewGenerator(client, cfg.GetRequestTimeout())
	if err != nil {
		return session.New(deps), capitalize(err.Error()) + "."
	}
	deps.Generator = gen
	logger.Info("completion provider ready",
		zap.String("provider", cfg.LLM.Provider),
		zap.String("model", cfg.LLM.Model),
		zap.String("endpoint", cfg.LLM.Endpoint))
	return session.New(deps), ""
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
