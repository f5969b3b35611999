package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/safetyquiz/internal/imagegen"
	"github.com/abhisek/safetyquiz/internal/store"
)

var imageCmd = &cobra.Command{
	Use:   "image",
	Short: "Generate question illustrations and inspect provider calls",
}

var imageGenerateCmd = &cobra.Command{
	Use:   "generate <question-id>",
	Short: "Generate and save the illustration of a question",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		mode := e.settings.ImageMode
		if name, _ := cmd.Flags().GetString("mode"); name != "" {
			if mode, err = imagegen.ParseMode(name); err != nil {
				return err
			}
		}
		q, err := e.questions.GetQuestion(args[0])
		if err != nil {
			return err
		}

		gen, err := e.generator(cmd.Context())
		if err != nil {
			return err
		}
		if len(gen.Providers()) == 0 {
			return fmt.Errorf("no image provider is configured (SAFETYQUIZ_IMAGE_PROVIDERS)")
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), e.settings.ImageTimeout)
		defer cancel()
		fmt.Fprintf(cmd.ErrOrStderr(), "Generating %s with %s...\n", q.ID, mode.Label())
		img, err := gen.Generate(ctx, imagegen.Request{QuestionID: q.ID, Prompt: q.ImagePrompt, Mode: mode})
		if err != nil {
			return err
		}
		path, err := e.images.Save(q.ID, img.Data)
		if err != nil {
			return fmt.Errorf("save image: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Saved %s\n", path)
		fmt.Fprintf(out, "Image by %s\n", img.Source)
		if img.Fallback {
			fmt.Fprintln(out, "Only the fallback prompt succeeded.")
		}
		return nil
	},
}

var imageDeleteCmd = &cobra.Command{
	Use:   "delete <question-id>",
	Short: "Delete the saved illustration of a question",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.images.Delete(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted image of %s\n", args[0])
		return nil
	},
}

var imageEventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List recent image and prompt generation calls",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		kind, _ := cmd.Flags().GetString("kind")
		question, _ := cmd.Flags().GetString("question")

		e, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		repo := e.eventRepo()
		if repo == nil {
			return fmt.Errorf("event log unavailable at %s", e.settings.DBPath)
		}
		events, err := repo.QueryGenerations(cmd.Context(), store.QueryOpts{Limit: limit, Kind: kind, QuestionID: question})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(events) == 0 {
			fmt.Fprintln(out, "No generation events found.")
			return nil
		}

		fmt.Fprintf(out, "%-5s  %-19s  %-6s  %-12s  %-10s  %-6s  %-7s  %s\n",
			"Seq", "Timestamp", "Kind", "Provider", "Purpose", "Q", "Ms", "OK")
		fmt.Fprintln(out, strings.Repeat("─", 80))
		for _, ev := range events {
			ok := "✓"
			if !ev.Success {
				ok = "✗ " + truncate(ev.ErrorMessage, 40)
			}
			fmt.Fprintf(out, "%-5d  %-19s  %-6s  %-12s  %-10s  %-6s  %-7d  %s\n",
				ev.Sequence,
				ev.Timestamp.Local().Format("2006-01-02 15:04:05"),
				ev.Kind,
				truncate(ev.Provider, 12),
				truncate(ev.Purpose, 10),
				ev.QuestionID,
				ev.LatencyMs,
				ok,
			)
		}
		return nil
	},
}

var imageStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show success rate and latency per image provider",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		repo := e.eventRepo()
		if repo == nil {
			return fmt.Errorf("event log unavailable at %s", e.settings.DBPath)
		}
		stats, err := repo.ProviderStats(cmd.Context(), store.KindImage)
		if err != nil {
			return fmt.Errorf("query stats: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(stats) == 0 {
			fmt.Fprintln(out, "No image generation recorded yet.")
			return nil
		}
		fmt.Fprintf(out, "%-14s  %6s  %6s  %8s  %10s\n", "Provider", "Calls", "OK", "Rate", "Avg")
		fmt.Fprintln(out, strings.Repeat("─", 52))
		for _, s := range stats {
			rate := 0.0
			if s.Calls > 0 {
				rate = float64(s.Successes) / float64(s.Calls) * 100
			}
			avg := time.Duration(s.AvgLatencyMs * float64(time.Millisecond)).Round(time.Millisecond)
			fmt.Fprintf(out, "%-14s  %6d  %6d  %7.0f%%  %10s\n", s.Provider, s.Calls, s.Successes, rate, avg)
		}
		return nil
	},
}

func init() {
	imageGenerateCmd.Flags().String("mode", "", "Image mode: auto, flux, turbo, simplified or enhanced")
	imageEventsCmd.Flags().Int("limit", 20, "Maximum number of events")
	imageEventsCmd.Flags().String("kind", "", "Only events of this kind (image or prompt)")
	imageEventsCmd.Flags().String("question", "", "Only events for this question id")

	imageCmd.AddCommand(imageGenerateCmd)
	imageCmd.AddCommand(imageDeleteCmd)
	imageCmd.AddCommand(imageEventsCmd)
	imageCmd.AddCommand(imageStatsCmd)
}
