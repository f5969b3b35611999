package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abhisek/safetyquiz/internal/app"
	"github.com/abhisek/safetyquiz/internal/flow"
	"github.com/abhisek/safetyquiz/internal/screens/admin"
	"github.com/abhisek/safetyquiz/internal/screens/home"
	"github.com/abhisek/safetyquiz/internal/screens/quiz"
)

// runApp builds the stores and collaborators and launches the TUI.
func runApp(cmd *cobra.Command) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	if migrated, err := e.questions.Migrate(); err != nil {
		fmt.Fprintln(os.Stderr, "Quiz config could not be read, using defaults:", err)
	} else if migrated {
		e.logger.Info("quiz config upgraded", "component", "quizconfig", "path", e.settings.ConfigFile)
	}

	quizDeps := quiz.Deps{
		Controller:   flow.NewController(e.questions, e.questions, e.results, flow.WithLogger(e.logger)),
		Settings:     e.questions,
		Images:       e.images,
		Mode:         e.settings.ImageMode,
		ImageTimeout: e.settings.ImageTimeout,
		Logger:       e.logger,
	}
	adminDeps := admin.Deps{
		Questions:    e.questions,
		Results:      e.results,
		Images:       e.images,
		Mode:         e.settings.ImageMode,
		ImageTimeout: e.settings.ImageTimeout,
		Reminders:    e.reminders(),
		QuizLink:     e.settings.QuizLink,
		ExportDir:    filepath.Join(e.settings.DataDir, "exports"),
		Logger:       e.logger,
	}

	gen, err := e.generator(cmd.Context())
	if err != nil {
		fmt.Fprintln(os.Stderr, "Image generation not configured:", err)
		fmt.Fprintln(os.Stderr, "Questions will be shown without generated illustrations.")
	} else {
		quizDeps.Generator = gen
		adminDeps.Generator = gen
	}

	return app.Run(app.Options{
		Quiz:   quizDeps,
		Admin:  adminDeps,
		Stats:  func() home.Stats { return e.stats() },
		Status: func() string { return e.status() },
	})
}

func (e *env) stats() home.Stats {
	var st home.Stats
	if qs, err := e.questions.ListQuestions(); err == nil {
		st.Questions = len(qs)
	}
	if recs, err := e.results.List(); err == nil {
		st.Participants = len(recs)
	}
	st.PassingScore = e.questions.PassingScore()
	return st
}

func (e *env) status() string {
	passing, limit := e.questions.Settings()
	return fmt.Sprintf("pass %d/10  %ds", passing, limit)
}
