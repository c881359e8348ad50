package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/justchokingaround/extender/internal/database"
	"github.com/justchokingaround/extender/internal/history"
)

// historyCmd lists past runs, or searches recorded files with --search
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show previous runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		query, _ := cmd.Flags().GetString("search")
		limit, _ := cmd.Flags().GetInt("limit")
		status, _ := cmd.Flags().GetString("status")

		svc := history.NewService(database.GetDB())

		if cmd.Flags().Changed("search") {
			files, err := svc.Search(query, limit)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				fmt.Println("No matching files.")
				return nil
			}
			rows := make([][]string, 0, len(files))
			for _, f := range files {
				rows = append(rows, []string{shortID(f.RunID), f.Status, f.SourcePath,
					filepath.Base(f.OutputPath), formatSeconds(f.OutputSeconds())})
			}
			printTable([]string{"RUN", "STATUS", "SOURCE", "OUTPUT", "LENGTH"}, rows)
			return nil
		}

		runs, err := svc.GetRuns(history.FilterOptions{Status: status, Limit: limit})
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No runs recorded yet.")
			return nil
		}

		rows := make([][]string, 0, len(runs))
		for _, r := range runs {
			elapsed := "-"
			if r.FinishedAt != nil {
				elapsed = r.Elapsed.Round(time.Second).String()
			}
			rows = append(rows, []string{shortID(r.ID), humanize.Time(r.StartedAt), r.Intent(), r.Status,
				strconv.Itoa(r.TotalFiles), strconv.Itoa(r.Completed), strconv.Itoa(r.Failed), elapsed})
		}
		printTable([]string{"ID", "STARTED", "INTENT", "STATUS", "FILES", "OK", "FAILED", "ELAPSED"}, rows)
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run id>",
	Short: "Show the files of one run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := history.NewService(database.GetDB())
		run, files, err := svc.GetRun(args[0])
		if errors.Is(err, history.ErrRunNotFound) {
			return fmt.Errorf("no run with ID %q", args[0])
		}
		if err != nil {
			return err
		}

		fmt.Printf("Run:      %s\n", run.ID)
		fmt.Printf("Started:  %s (%s)\n", run.StartedAt.Format(time.DateTime), humanize.Time(run.StartedAt))
		fmt.Printf("Intent:   %s\n", run.Intent())
		fmt.Printf("Status:   %s\n", run.Status)
		if run.Message != "" {
			fmt.Printf("Message:  %s\n", run.Message)
		}
		if run.FinishedAt != nil {
			fmt.Printf("Elapsed:  %s\n", run.Elapsed.Round(time.Second))
		}
		fmt.Println()

		rows := make([][]string, 0, len(files))
		for _, f := range files {
			rows = append(rows, []string{strconv.Itoa(f.Position + 1), f.Status, filepath.Base(f.SourcePath),
				formatSeconds(f.Duration), strconv.Itoa(f.Repeat), f.OutputPath, f.Error})
		}
		printTable([]string{"#", "STATUS", "SOURCE", "DURATION", "REPEAT", "OUTPUT", "ERROR"}, rows)
		return nil
	},
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show totals across all runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		stats, err := history.NewService(database.GetDB()).GetStats()
		if err != nil {
			return err
		}

		fmt.Printf("Runs:         %s (%s completed, %s cancelled)\n", humanize.Comma(stats.TotalRuns),
			humanize.Comma(stats.CompletedRuns), humanize.Comma(stats.CancelledRuns))
		fmt.Printf("Files:        %s\n", humanize.Comma(stats.TotalFiles))
		fmt.Printf("Output time:  %s\n", formatSeconds(stats.OutputTime.Seconds()))

		if len(stats.ByStatus) > 0 {
			fmt.Println()
			rows := make([][]string, 0, len(stats.ByStatus))
			for _, row := range stats.ByStatus {
				rows = append(rows, []string{row.Status, humanize.Comma(row.Files), formatSeconds(row.OutputSeconds),
					fmt.Sprintf("%.1f", row.AvgRepeat)})
			}
			printTable([]string{"STATUS", "FILES", "OUTPUT", "AVG REPEAT"}, rows)
		}
		return nil
	},
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete runs older than a given age",
	RunE: func(cmd *cobra.Command, args []string) error {
		olderThan, _ := cmd.Flags().GetDuration("older-than")
		if olderThan <= 0 {
			return fmt.Errorf("--older-than must be positive")
		}

		removed, err := history.NewService(database.GetDB()).Cleanup(time.Now().Add(-olderThan))
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d %s.\n", removed, plural(int(removed), "run", "runs"))
		return nil
	},
}

func init() {
	historyCmd.Flags().StringP("search", "s", "", "fuzzy search recorded source paths")
	historyCmd.Flags().IntP("limit", "l", 20, "maximum number of rows (0 = all)")
	historyCmd.Flags().String("status", "", "only runs with this status (running, completed, cancelled)")

	historyPruneCmd.Flags().Duration("older-than", 30*24*time.Hour, "age of runs to delete")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyStatsCmd)
	historyCmd.AddCommand(historyPruneCmd)
}

var (
	tableHeaderStyle = lipgloss.NewStyle().Bold(true).PaddingRight(2)
	tableCellStyle   = lipgloss.NewStyle().PaddingRight(2)
)

// printTable writes rows as borderless aligned columns
func printTable(headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		BorderHeader(false).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			return tableCellStyle
		})
	fmt.Fprintln(os.Stdout, t.Render())
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// formatSeconds renders seconds as H:MM:SS
func formatSeconds(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second)).Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d:%02d", h, m, s)
}
