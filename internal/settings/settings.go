// Package settings reads process configuration from the environment and an
// optional .env file.
package settings

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/abhisek/safetyquiz/internal/imagegen"
	"github.com/abhisek/safetyquiz/internal/notify"
)

// Prefix is prepended to every variable name.
const Prefix = "SAFETYQUIZ_"

// DefaultDataDir holds every file the app writes.
const DefaultDataDir = "data"

// Settings is the resolved process configuration.
type Settings struct {
	DataDir     string
	ConfigFile  string
	ResultsFile string
	ImageDir    string
	DBPath      string
	LogFile     string
	LogLevel    string
	HTTPAddr    string

	ImageTimeout   time.Duration
	ImageProviders []string
	ImageMode      imagegen.Mode
	HFToken        string

	TelegramToken string
	QuizLink      string
	ReminderRate  float64
}

// LoadDotEnv loads path (or ".env" when empty) into the environment.
// Existing variables win. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// FromEnv resolves Settings from the environment. A non-empty dataDir
// overrides SAFETYQUIZ_DATA_DIR; file locations not set explicitly are
// placed inside the data directory. Malformed values fall back to defaults.
func FromEnv(dataDir string) Settings {
	if dataDir == "" {
		dataDir = env("DATA_DIR", DefaultDataDir)
	}
	s := Settings{
		DataDir:     dataDir,
		ConfigFile:  env("CONFIG_FILE", filepath.Join(dataDir, "quiz_config.json")),
		ResultsFile: env("RESULTS_FILE", filepath.Join(dataDir, "participants.csv")),
		ImageDir:    env("IMAGE_DIR", filepath.Join(dataDir, "images")),
		DBPath:      env("DB", filepath.Join(dataDir, "events.db")),
		LogFile:     env("LOG_FILE", filepath.Join(dataDir, "logs", "safetyquiz.log")),
		LogLevel:    env("LOG_LEVEL", "info"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),

		ImageTimeout:   imagegen.DefaultTimeout,
		ImageProviders: imagegen.ParseProviders(env("IMAGE_PROVIDERS", strings.Join(imagegen.DefaultProviders, ","))),
		ImageMode:      imagegen.ModeAuto,
		HFToken:        env("HF_TOKEN", ""),

		TelegramToken: env("TELEGRAM_BOT_TOKEN", ""),
		QuizLink:      env("QUIZ_LINK", notify.DefaultQuizLink),
		ReminderRate:  notify.DefaultRate,
	}

	if d, err := time.ParseDuration(env("IMAGE_TIMEOUT", "")); err == nil && d > 0 {
		s.ImageTimeout = d
	}
	if m, err := imagegen.ParseMode(env("IMAGE_MODE", "")); err == nil {
		s.ImageMode = m
	}
	if r, err := strconv.ParseFloat(env("REMINDER_RATE", ""), 64); err == nil && r > 0 {
		s.ReminderRate = r
	}
	return s
}

// EnsureDataDir creates the data, image and log directories.
func (s Settings) EnsureDataDir() error {
	for _, dir := range []string{s.DataDir, s.ImageDir, filepath.Dir(s.LogFile)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}

func env(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(Prefix + key)); v != "" {
		return v
	}
	return def
}
