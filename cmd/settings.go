package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change the passing score and time limit",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		_, err = e.questions.Load()
		warnLoad(cmd, err)
		passing, limit := e.questions.Settings()
		fmt.Fprintf(cmd.OutOrStdout(), "Passing score: %d/10\nTime limit:    %ds\n", passing, limit)
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change settings; omitted flags keep their value",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		passing, limit := e.questions.Settings()
		if cmd.Flags().Changed("passing-score") {
			passing, _ = cmd.Flags().GetInt("passing-score")
		}
		if cmd.Flags().Changed("time-limit") {
			limit, _ = cmd.Flags().GetInt("time-limit")
		}
		if err := e.questions.UpdateSettings(passing, limit); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved: passing score %d/10, time limit %ds\n", passing, limit)
		return nil
	},
}

func init() {
	settingsSetCmd.Flags().Int("passing-score", 0, "Minimum score to pass (1-10)")
	settingsSetCmd.Flags().Int("time-limit", 0, "Answer countdown in seconds (> 0)")
	settingsCmd.AddCommand(settingsSetCmd)
}
