package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "safetyquiz",
	Short: "Buddy-care safety quiz",
	Long:  "safetyquiz runs the scenario safety quiz in the terminal and administers its questions, results and reminders.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("data-dir", "", "Directory for config, results, images and logs (overrides SAFETYQUIZ_DATA_DIR)")
	rootCmd.PersistentFlags().String("env-file", ".env", "Optional dotenv file loaded before reading SAFETYQUIZ_* variables")

	rootCmd.AddCommand(questionsCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(resultsCmd)
	rootCmd.AddCommand(remindCmd)
	rootCmd.AddCommand(imageCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}
