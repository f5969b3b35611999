package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/safetyquiz/internal/quizconfig"
)

var questionsCmd = &cobra.Command{
	Use:     "questions",
	Aliases: []string{"q"},
	Short:   "Manage the question bank",
}

var questionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List questions in stored order",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		qs, err := e.questions.ListQuestions()
		warnLoad(cmd, err)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-6s  %-36s  %-5s  %s\n", "ID", "Title", "Image", "Saved")
		fmt.Fprintln(out, strings.Repeat("─", 60))
		for _, q := range qs {
			fmt.Fprintf(out, "%-6s  %-36s  %-5s  %s\n",
				q.ID, truncate(q.Title(), 36), yesNo(q.ImageEnabled), yesNo(e.images.Exists(q.ID)))
		}
		return nil
	},
}

var questionsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one question",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		q, err := e.questions.GetQuestion(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "ID:       %s\n", q.ID)
		fmt.Fprintf(out, "Title:    %s\n", q.Title())
		fmt.Fprintf(out, "Image:    %s\n", yesNo(q.ImageEnabled))
		if q.ImagePrompt != "" {
			fmt.Fprintf(out, "Prompt:   %s\n", q.ImagePrompt)
		}
		if path, err := e.images.Path(q.ID); err == nil {
			fmt.Fprintf(out, "Saved:    %s\n", path)
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, q.Text())
		return nil
	},
}

var questionsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Append a question; unset fields take their defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		q := quizconfig.NewQuestion()
		applyQuestionFlags(cmd, &q)
		id, err := e.questions.AddQuestion(q)
		if err != nil {
			return fmt.Errorf("add question: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", id)
		return nil
	},
}

var questionsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change the given fields of a question",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		q, err := e.questions.GetQuestion(args[0])
		if err != nil {
			return err
		}
		applyQuestionFlags(cmd, &q)
		if err := e.questions.UpdateQuestion(args[0], q); err != nil {
			return fmt.Errorf("update question: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", args[0])
		return nil
	},
}

var questionsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a question and its saved image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.questions.DeleteQuestion(args[0]); err != nil {
			if errors.Is(err, quizconfig.ErrLastQuestion) {
				return errors.New("cannot delete the last remaining question")
			}
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
		return nil
	},
}

var questionsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Rewrite a legacy single-question config in the current format",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		migrated, err := e.questions.Migrate()
		if err != nil {
			return err
		}
		if migrated {
			fmt.Fprintf(cmd.OutOrStdout(), "Migrated %s\n", e.settings.ConfigFile)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "Config is already current.")
		}
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{questionsAddCmd, questionsUpdateCmd} {
		c.Flags().String("title", "", "Scenario title")
		c.Flags().String("text", "", "Question text")
		c.Flags().String("prompt", "", "Image prompt (blank uses the default scene)")
		c.Flags().Bool("image", true, "Show an illustration with the question")
	}

	questionsCmd.AddCommand(questionsListCmd)
	questionsCmd.AddCommand(questionsShowCmd)
	questionsCmd.AddCommand(questionsAddCmd)
	questionsCmd.AddCommand(questionsUpdateCmd)
	questionsCmd.AddCommand(questionsDeleteCmd)
	questionsCmd.AddCommand(questionsMigrateCmd)
}

// applyQuestionFlags copies only the flags given on the command line.
func applyQuestionFlags(cmd *cobra.Command, q *quizconfig.Question) {
	f := cmd.Flags()
	if f.Changed("title") {
		q.ScenarioTitle, _ = f.GetString("title")
	}
	if f.Changed("text") {
		q.QuestionText, _ = f.GetString("text")
	}
	if f.Changed("prompt") {
		q.ImagePrompt, _ = f.GetString("prompt")
	}
	if f.Changed("image") {
		q.ImageEnabled, _ = f.GetBool("image")
	}
}

// warnLoad reports a soft config load failure without aborting.
func warnLoad(cmd *cobra.Command, err error) {
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning: using default configuration:", err)
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
