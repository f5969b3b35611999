package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/safetyquiz/internal/records"
	"github.com/abhisek/safetyquiz/internal/report"
)

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Inspect and export passing attempts",
}

var resultsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List participant records",
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

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-4s  %-6s  %-8s  %-3s  %-24s  %-20s  %-5s  %s\n",
			"Row", "UNIT", "COY", "PLT", "Rank Name", "Telegram", "Score", "Timestamp")
		fmt.Fprintln(out, strings.Repeat("─", 100))
		for i, r := range recs {
			fmt.Fprintf(out, "%-4d  %-6s  %-8s  %-3s  %-24s  %-20s  %-5d  %s\n",
				i+1, r.Unit, r.Company, r.Platoon, truncate(r.RankName, 24), truncate(r.TelegramHandle, 20),
				r.Score, r.Timestamp.Local().Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

var resultsDeleteCmd = &cobra.Command{
	Use:   "delete <row>",
	Short: "Delete a record by its row number in `results list`",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		row, err := strconv.Atoi(args[0])
		if err != nil || row < 1 {
			return fmt.Errorf("invalid row %q", args[0])
		}
		e, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.results.DeleteAt(row - 1); err != nil {
			if errors.Is(err, records.ErrNoData) {
				return errors.New(report.NoDataMessage)
			}
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted row %d\n", row)
		return nil
	},
}

var resultsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export records as xlsx, csv or pdf",
	RunE: func(cmd *cobra.Command, args []string) error {
		formatName, _ := cmd.Flags().GetString("format")
		format, err := report.ParseFormat(formatName)
		if err != nil {
			return err
		}
		e, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		recs, err := listRecords(cmd, e)
		if err != nil || recs == nil {
			return err
		}

		path, _ := cmd.Flags().GetString("out")
		if path == "" {
			path = "participants." + string(format)
		}
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		if err := report.Write(f, format, recs, time.Now()); err != nil {
			f.Close()
			return fmt.Errorf("export: %w", err)
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d records to %s\n", len(recs), path)
		return nil
	},
}

var resultsChartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Show quiz completion per company",
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
		width, _ := cmd.Flags().GetInt("width")
		fmt.Fprintln(cmd.OutOrStdout(), report.RenderChart(report.CompletionByCompany(recs), width))
		return nil
	},
}

func init() {
	resultsExportCmd.Flags().String("format", "xlsx", "Export format: xlsx, csv or pdf")
	resultsExportCmd.Flags().StringP("out", "o", "", "Output file (default participants.<format>)")
	resultsChartCmd.Flags().Int("width", 80, "Chart width in columns")

	resultsCmd.AddCommand(resultsListCmd)
	resultsCmd.AddCommand(resultsDeleteCmd)
	resultsCmd.AddCommand(resultsExportCmd)
	resultsCmd.AddCommand(resultsChartCmd)
}

// listRecords prints the no-data message and returns nil records when the
// results table does not exist yet.
func listRecords(cmd *cobra.Command, e *env) ([]records.Record, error) {
	recs, err := e.results.List()
	if errors.Is(err, records.ErrNoData) {
		fmt.Fprintln(cmd.OutOrStdout(), report.NoDataMessage)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read results: %w", err)
	}
	if recs == nil {
		recs = []records.Record{}
	}
	return recs, nil
}
