package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/safetyquiz/internal/notify"
)

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Send the monthly quiz reminder to every participant",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		recs, err := listRecords(cmd, e)
		if err != nil || recs == nil {
			return err
		}
		handles := make([]string, 0, len(recs))
		for _, r := range recs {
			handles = append(handles, r.TelegramHandle)
		}

		link, _ := cmd.Flags().GetString("link")
		if link == "" {
			link = e.settings.QuizLink
		}
		if e.settings.TelegramToken == "" {
			fmt.Fprintln(cmd.ErrOrStderr(), "SAFETYQUIZ_TELEGRAM_BOT_TOKEN is not set; reminders are only logged.")
		}

		s := e.reminders().Send(cmd.Context(), handles, notify.ReminderMessage(link))
		fmt.Fprintf(cmd.OutOrStdout(), "Reminders sent to %d of %d participants", s.Sent, s.Recipients)
		if s.Failed > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), ", %d failed", s.Failed)
		}
		fmt.Fprintln(cmd.OutOrStdout(), ".")
		return nil
	},
}

func init() {
	remindCmd.Flags().String("link", "", "Quiz link for the message (default SAFETYQUIZ_QUIZ_LINK)")
}
