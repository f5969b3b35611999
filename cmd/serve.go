package cmd

import (
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abhisek/safetyquiz/internal/httpapi"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a read-only JSON view of questions and results",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = e.settings.HTTPAddr
		}
		origins, _ := cmd.Flags().GetString("cors-origins")

		handler := httpapi.NewRouter(httpapi.Deps{
			Questions:      e.questions,
			Results:        e.results,
			Images:         e.images,
			Logger:         e.logger,
			AllowedOrigins: splitList(origins),
		})

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		cmd.Printf("Listening on %s\n", addr)
		return httpapi.Serve(ctx, addr, handler, e.logger)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default SAFETYQUIZ_HTTP_ADDR)")
	serveCmd.Flags().String("cors-origins", "", "Comma-separated allowed origins (default any)")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
