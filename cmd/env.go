package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/safetyquiz/internal/imagegen"
	"github.com/abhisek/safetyquiz/internal/imagestore"
	"github.com/abhisek/safetyquiz/internal/llm"
	"github.com/abhisek/safetyquiz/internal/logging"
	"github.com/abhisek/safetyquiz/internal/notify"
	"github.com/abhisek/safetyquiz/internal/quizconfig"
	"github.com/abhisek/safetyquiz/internal/records"
	"github.com/abhisek/safetyquiz/internal/settings"
	"github.com/abhisek/safetyquiz/internal/store"
)

// env is everything a command needs, built from flags and the environment.
type env struct {
	settings  settings.Settings
	logger    *slog.Logger
	logCloser io.Closer

	questions *quizconfig.Store
	results   *records.Store
	images    *imagestore.Store

	events *store.Store
}

// loadEnv resolves settings, creates the data directory and opens the file
// stores. The event database is opened on first use.
func loadEnv(cmd *cobra.Command) (*env, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	if err := settings.LoadDotEnv(envFile); err != nil {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}
	dataDir, _ := cmd.Flags().GetString("data-dir")
	s := settings.FromEnv(dataDir)
	if err := s.EnsureDataDir(); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	logger, closer := logging.New(logging.Options{Path: s.LogFile, Level: s.LogLevel})
	slog.SetDefault(logger)

	images := imagestore.New(s.ImageDir)
	return &env{
		settings:  s,
		logger:    logger,
		logCloser: closer,
		questions: quizconfig.NewStore(s.ConfigFile, images, logger.With("component", "quizconfig")),
		results:   records.NewStore(s.ResultsFile),
		images:    images,
	}, nil
}

func (e *env) Close() {
	if e.events != nil {
		e.events.Close()
	}
	e.logCloser.Close()
}

// eventRepo opens the generation event log. A database that cannot be
// opened disables event logging rather than failing the command.
func (e *env) eventRepo() store.EventRepo {
	if e.events == nil {
		if err := store.EnsureDir(e.settings.DBPath); err != nil {
			e.logger.Warn("event log disabled", "component", "store", "error", err)
			return nil
		}
		st, err := store.Open(e.settings.DBPath)
		if err != nil {
			e.logger.Warn("event log disabled", "component", "store", "error", err)
			return nil
		}
		e.events = st
	}
	return e.events.EventRepo()
}

// generator builds the image generator. A text model, when one is
// configured, enhances prompts in enhanced mode.
func (e *env) generator(ctx context.Context) (*imagegen.Generator, error) {
	events := e.eventRepo()

	opts := []imagegen.Option{
		imagegen.WithTimeout(e.settings.ImageTimeout),
		imagegen.WithLogger(e.logger.With("component", "imagegen")),
	}
	llmCfg, ok := llm.Resolve()
	if ok {
		provider, err := llm.NewProvider(ctx, llmCfg, events)
		if err != nil {
			e.logger.Warn("prompt enhancer unavailable", "component", "llm", "error", err)
		} else {
			opts = append(opts, imagegen.WithEnhancer(llm.NewPromptEnhancer(provider, llmCfg.Timeout)))
		}
	}

	providers, err := imagegen.NewProviders(ctx, imageConfig(e.settings, llmCfg), events, e.logger)
	if err != nil {
		return nil, fmt.Errorf("image providers: %w", err)
	}
	return imagegen.NewGenerator(providers, opts...), nil
}

// imageConfig reuses the text model credentials for the SDK-backed image
// providers, falling back to the vendors' standard key variables.
func imageConfig(s settings.Settings, lc llm.Config) imagegen.Config {
	cfg := imagegen.Config{
		Providers: s.ImageProviders,
		HFToken:   s.HFToken,
		OpenAI:    lc.OpenAI,
	}
	if cfg.OpenAI.APIKey == "" {
		cfg.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	cfg.GeminiAPIKey = lc.Gemini.APIKey
	for _, key := range []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"} {
		if cfg.GeminiAPIKey == "" {
			cfg.GeminiAPIKey = os.Getenv(key)
		}
	}
	return cfg
}

// reminders builds the reminder dispatcher. Without a bot token reminders
// are only logged.
func (e *env) reminders() *notify.Dispatcher {
	var n notify.Notifier = notify.LogNotifier{Logger: e.logger}
	if e.settings.TelegramToken != "" {
		n = notify.NewTelegram(e.settings.TelegramToken, "", nil)
	}
	return notify.NewDispatcher(n, e.settings.ReminderRate, e.logger.With("component", "notify"))
}
