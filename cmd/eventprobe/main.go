package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/v0xg/eventprobe/internal/advisor"
	"github.com/v0xg/eventprobe/internal/config"
	"github.com/v0xg/eventprobe/internal/recorder"
	"github.com/v0xg/eventprobe/internal/scenario"
	"github.com/v0xg/eventprobe/internal/session"
)

var (
	configFile string
	strict     bool
)

func main() {
	// Load .env file if present (silently ignore if not found)
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "eventprobe",
		Short: "End-to-end check of the football admin event workflow",
		Long: `eventprobe drives a real browser through the football admin site: it logs in,
opens the events section, creates an event through the form, and checks that
the event shows up on the public competition listing.

Settings come from flags, EVENTPROBE_* environment variables (a .env file is
loaded if present) and an optional YAML config file.

Example:
  eventprobe --headless --liga "tavasz_kupa" --record run.gif`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         run,
	}

	f := rootCmd.Flags()
	f.StringVarP(&configFile, "config", "c", "", "YAML config file")
	f.BoolVar(&strict, "strict", false, "Exit non-zero when the event is not found on the listing")
	f.String("admin-url", "", "Admin login page (default: the demo site)")
	f.String("listing-url", "", "Public event listing page")
	f.String("email", "", "Admin email")
	f.String("password", "", "Admin password")
	f.String("liga", "", "Name of the event to create (default \"esemény\")")
	f.Bool("unique", false, "Append the run ID to the event name")
	f.String("start", "", "Event start date YYYY-MM-DD (default: today)")
	f.String("date-locale", "", "Keyboard date formats to try: us, eu, hu")
	f.Bool("headless", false, "Run the browser without a window")
	f.Int("width", 0, "Viewport width (default 1280)")
	f.Int("height", 0, "Viewport height (default 900)")
	f.String("profile", "", "Chrome/Chromium profile directory (close browser first)")
	f.Duration("slow-motion", 0, "Delay before each browser input, for watching runs")
	f.Duration("timeout", 0, "Element lookup timeout (default 10s)")
	f.String("provider", "", "AI locator advisor: claude, openai (default: disabled)")
	f.String("model", "", "Specific model override for the advisor")
	f.StringP("record", "o", "", "Write a GIF of the run to this file")
	f.String("failure-shot", "", "Screenshot file written when the run fails")
	f.BoolP("verbose", "v", false, "Show debug logs")
	f.String("log-format", "", "Log format: console, json")

	return rootCmd
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}
	runID := uuid.NewString()
	sc := cfg.Scenario(time.Now())
	if cfg.Event.Unique {
		sc.Event = sc.Event.Tagged(runID[:8])
	}
	if err := sc.Validate(); err != nil {
		return err
	}

	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()
	log = log.With(zap.String("run_id", runID))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	if cfg.Timeouts.Run > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeouts.Run)
		defer cancel()
	}

	log.Debug("starting eventprobe",
		zap.String("admin_url", sc.AdminURL),
		zap.String("liga", sc.Event.Liga),
		zap.String("start", sc.Event.StartDate()),
		zap.String("end", sc.Event.EndDate()))

	fmt.Printf("→ Launching browser... ")
	browser, err := session.Launch(ctx, cfg.Session())
	if err != nil {
		fmt.Println("failed")
		return err
	}
	defer browser.Close()
	fmt.Println("done")

	probe := scenario.New(browser, sc, log)
	probe.Out = os.Stdout
	probe.Resolver.Interval = cfg.Timeouts.Interval
	probe.Writer.Settle = cfg.Timeouts.Settle
	probe.Writer.Locale = cfg.DateLocale()

	if cfg.Advisor.Provider != "" {
		provider, err := advisor.NewProvider(cfg.Advisor.Provider, cfg.Advisor.Model, cfg.Advisor.APIKey)
		if err != nil {
			return fmt.Errorf("advisor init failed: %w", err)
		}
		probe.Resolver.Advisor = advisor.New(provider, browser, log.Named("advisor"))
	}

	var rec *recorder.Recorder
	if cfg.Output.Record != "" {
		rec = recorder.New(browser, log.Named("recorder"))
		probe.Observer = rec
	}

	rep, runErr := probe.Run(ctx)

	if rec != nil {
		writeRecording(rec, cfg.Output)
	}
	if runErr != nil {
		logFailure(log, runErr)
		saveFailureShot(browser, cfg.Output.FailureShot, log)
		return runErr
	}

	summarize(rep)
	if strict && !rep.Verdict.OK() {
		return fmt.Errorf("event %q not found on %s", sc.Event.Liga, sc.ListingURL)
	}
	return nil
}

func newLogger(c config.LoggingConfig) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if c.Format == "console" {
		zc = zap.NewDevelopmentConfig()
		zc.DisableStacktrace = true
	}
	zc.Encoding = c.Format
	zc.OutputPaths = []string{"stderr"}
	zc.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	if c.Verbose {
		zc.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return zc.Build()
}

// logFailure records a mandatory-step failure with the call stack
func logFailure(log *zap.Logger, err error) {
	log.Error("run failed", zap.Error(err), zap.Stack("stack"))
}

func writeRecording(rec *recorder.Recorder, out config.OutputConfig) {
	fmt.Printf("→ Generating GIF (%d frames)... ", len(rec.Frames()))
	size, err := rec.WriteGIF(out.Record, recorder.Options{FrameDelay: out.FrameDelay, MaxWidth: out.MaxWidth})
	if err != nil {
		fmt.Println("failed")
		fmt.Fprintf(os.Stderr, "⚠ GIF generation failed: %v\n", err)
		return
	}
	fmt.Println("done")
	fmt.Printf("✓ Saved to %s (%.1f MB)\n", out.Record, float64(size)/(1024*1024))
}

func saveFailureShot(s session.Session, path string, log *zap.Logger) {
	if path == "" {
		return
	}
	// the run context may already be cancelled
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := recorder.SaveScreenshot(ctx, s, path); err != nil {
		log.Warn("failure screenshot not saved", zap.Error(err))
		return
	}
	fmt.Printf("⚠ Failure screenshot saved to %s\n", path)
}

func summarize(rep *scenario.Report) {
	confirmed := 0
	for _, f := range rep.Fields {
		if f.Confirmed {
			confirmed++
		}
	}
	mark := "✓"
	if !rep.Verdict.OK() {
		mark = "⚠"
	}
	fmt.Printf("%s Event %s (%d/%d fields confirmed, %s)\n",
		mark, rep.Verdict, confirmed, len(rep.Fields), rep.Duration.Round(time.Millisecond))
}
