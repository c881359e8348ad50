package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/justchokingaround/extender/internal/clipboard"
	"github.com/justchokingaround/extender/internal/database"
	"github.com/justchokingaround/extender/internal/extender"
	"github.com/justchokingaround/extender/internal/extender/tools"
	"github.com/justchokingaround/extender/internal/metrics"
	"github.com/justchokingaround/extender/internal/tui"
)

// runCmd extends every given file
var runCmd = &cobra.Command{
	Use:   "run <file or directory>...",
	Short: "Repeat video files to a target length or a number of times",
	Example: `  extender run intro.mp4 --hours 1
  extender run clips/ --minutes 30
  extender run a.mkv b.mkv --times 5 --plain`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hours, _ := cmd.Flags().GetInt("hours")
		minutes, _ := cmd.Flags().GetInt("minutes")
		times, _ := cmd.Flags().GetInt("times")
		plain, _ := cmd.Flags().GetBool("plain")

		// No target given: one hour
		if !cmd.Flags().Changed("hours") && !cmd.Flags().Changed("minutes") && !cmd.Flags().Changed("times") {
			hours = 1
		}

		files, skipped, err := extender.CollectInputs(args)
		if err != nil {
			return err
		}
		for _, path := range skipped {
			logger.Warn("skipping input that is not a video file", "path", path)
			fmt.Fprintf(os.Stderr, "Skipping %s: not a video file\n", path)
		}

		job := extender.Job{Files: files, Hours: hours, Minutes: minutes, Times: times}
		if err := job.Validate(); err != nil {
			return err
		}
		cmd.SilenceUsage = true

		// Settings are fixed for the whole batch even if the file is reloaded
		c := currentConfig()
		ffmpeg, ffprobe, err := tools.Detect(c.Tools.FFmpeg, c.Tools.FFprobe)
		if err != nil {
			return err
		}
		logger.Debug("using tools", "ffmpeg", ffmpeg.Binary, "ffmpeg_version", ffmpeg.Version,
			"ffprobe", ffprobe.Binary, "ffprobe_version", ffprobe.Version)

		reg := prometheus.NewRegistry()
		m := metrics.New(reg)
		if c.Metrics.Enabled {
			stop := serveMetrics(reg, c.Metrics.Listen)
			defer stop()
		}

		extCfg := c.Extender
		orch, err := extender.NewOrchestrator(extender.Options{
			Config:  &extCfg,
			Prober:  extender.NewFFprobe(ffprobe.Binary),
			Runner:  extender.NewFFmpegRunner(ffmpeg.Binary, extCfg.TerminateGrace, logger),
			DB:      database.GetDB(),
			Logger:  logger,
			Metrics: m,
		})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var summary extender.Summary
		if plain || !isTerminal(os.Stdout) {
			printer := tui.NewPlainPrinter(os.Stdout)
			orch.Subscribe(printer.Handle)
			summary, err = orch.Run(ctx, job)
		} else {
			summary, err = runInteractive(ctx, orch, job, extCfg.ProgressInterval, c.Clipboard.Command)
		}
		if err != nil {
			return err
		}

		printSummary(summary)

		if summary.Failed > 0 {
			return fmt.Errorf("%d of %d files failed", summary.Failed, len(job.Files))
		}
		if summary.State == extender.StateCancelled {
			return extender.ErrCancelled
		}
		return nil
	},
}

func init() {
	runCmd.Flags().Int("hours", 0, "target length in hours")
	runCmd.Flags().Int("minutes", 0, "target length in minutes (0-59), added to --hours")
	runCmd.Flags().IntP("times", "n", 0, "repeat each file exactly this many times (overrides --hours/--minutes)")
	runCmd.Flags().Bool("plain", false, "print plain progress lines instead of the interactive view")
}

// runInteractive drives the batch with the bubbletea progress view
func runInteractive(ctx context.Context, orch *extender.Orchestrator, job extender.Job, interval time.Duration, clipCommand string) (extender.Summary, error) {
	title := fmt.Sprintf("Extending %d %s", len(job.Files), plural(len(job.Files), "file", "files"))
	model := tui.NewRunModel(orch, clipboard.NewService(clipCommand, logger), title, len(job.Files))

	p := tea.NewProgram(model, tea.WithContext(ctx))
	orch.Subscribe(tui.Forward(p.Send, interval))

	if err := orch.Start(ctx, job); err != nil {
		return extender.Summary{}, err
	}

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		logger.Error("terminal UI failed", "error", err)
	}

	// The view may exit early on an interrupt; the batch still needs to wind down
	if orch.State() == extender.StateRunning {
		_ = orch.Cancel()
	}
	return orch.Wait(), nil
}

// serveMetrics exposes reg on /metrics until the returned func is called
func serveMetrics(reg *prometheus.Registry, addr string) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "addr", addr, "error", err)
		}
	}()
	logger.Info("serving metrics", "addr", addr)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

func printSummary(s extender.Summary) {
	fmt.Println()
	for _, f := range s.Files {
		switch f.Status {
		case extender.StatusCompleted:
			size := ""
			if info, err := os.Stat(f.OutputPath); err == nil {
				size = ", " + humanize.IBytes(uint64(info.Size()))
			}
			fmt.Printf("  ok        %s -> %s (%dx%s)\n", filepath.Base(f.Path), f.OutputPath, f.Repeat, size)
		case extender.StatusCancelled:
			fmt.Printf("  cancelled %s\n", filepath.Base(f.Path))
		default:
			fmt.Printf("  failed    %s: %v\n", filepath.Base(f.Path), f.Err)
		}
	}

	fmt.Printf("\n%s: %d completed, %d failed", s.Message, s.Completed, s.Failed)
	if s.Skipped > 0 {
		fmt.Printf(", %d not started", s.Skipped)
	}
	fmt.Printf(" in %s\n", s.Elapsed.Round(time.Second))
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
