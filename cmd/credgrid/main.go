package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/credgrid/internal/batch"
	"github.com/JonMunkholm/credgrid/internal/config"
	"github.com/JonMunkholm/credgrid/internal/logging"
	"github.com/JonMunkholm/credgrid/internal/render"
	_ "github.com/JonMunkholm/credgrid/internal/render/layouts" // Register all layouts
	"github.com/JonMunkholm/credgrid/internal/report"
)

var Version = "dev"

// errFailed is returned when the run finished but some input failed.
// The summary has already been printed, so main only sets the exit code.
var errFailed = errors.New("one or more inputs failed")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCmd(&app{}).ExecuteContext(ctx)
	stop()
	if err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintln(os.Stderr, "credgrid:", err)
		}
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "credgrid",
		Short:         "Generate printable credential tag sheets from organization rosters",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	a.bindFlags(root)

	root.AddCommand(genCmd(a), valCmd(a), csvCmd(a), qrCmd(a))
	return root
}

// app holds what every subcommand shares once flags are parsed.
type app struct {
	cfg     config.Config
	catalog render.Catalog

	flags struct {
		outputDir       string
		layout          string
		validateCourses bool
		includeMissing  bool
		logLevel        string
		logFormat       string
		themes          string
		report          string
		concurrency     int
	}
}

func (a *app) bindFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.StringVarP(&a.flags.outputDir, "output-dir", "o", "", "directory for generated documents (RENDER_OUTPUT_DIR)")
	f.StringVarP(&a.flags.layout, "layout", "l", "", "credential layout: "+layoutList()+" (RENDER_LAYOUT)")
	f.BoolVar(&a.flags.validateCourses, "validate-courses", true, "treat unregistered courses as not allowed (ROSTER_VALIDATE_COURSES)")
	f.BoolVar(&a.flags.includeMissing, "include-missing", false, "keep members with missing or unregistered data (ROSTER_INCLUDE_MISSING)")
	f.StringVar(&a.flags.logLevel, "log-level", "", "debug, info, warn or error (LOG_LEVEL)")
	f.StringVar(&a.flags.logFormat, "log-format", "", "text or json (LOG_FORMAT)")
	f.StringVar(&a.flags.themes, "themes", "", "YAML file with theme overrides (THEME_FILE)")
	f.StringVar(&a.flags.report, "report", "", "write an HTML run report to this path (RENDER_REPORT_FILE)")
	f.IntVarP(&a.flags.concurrency, "concurrency", "j", 0, "documents generated at once (BATCH_MAX_CONCURRENT)")
}

func layoutList() string {
	return strings.Join(render.IDs(), ", ")
}

// setup loads .env and the environment, applies the flags that were set
// and validates the result before any input is touched.
func (a *app) setup(cmd *cobra.Command) error {
	// Overload lets a local .env win over the shell environment.
	envErr := godotenv.Overload()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("output-dir") {
		cfg.Render.OutputDir = a.flags.outputDir
	}
	if flags.Changed("layout") {
		cfg.Render.Layout = a.flags.layout
	}
	if flags.Changed("validate-courses") {
		cfg.Roster.ValidateCourses = a.flags.validateCourses
	}
	if flags.Changed("include-missing") {
		cfg.Roster.IncludeMissing = a.flags.includeMissing
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = a.flags.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Logging.Format = a.flags.logFormat
	}
	if flags.Changed("themes") {
		cfg.Render.ThemeFile = a.flags.themes
	}
	if flags.Changed("report") {
		cfg.Render.ReportFile = a.flags.report
	}
	if flags.Changed("concurrency") {
		cfg.Batch.MaxConcurrent = a.flags.concurrency
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	if envErr != nil {
		slog.Debug("no .env file found, using environment variables")
	} else {
		slog.Debug("loaded .env file (overwriting existing env vars)")
	}

	catalog, err := render.LoadCatalog(cfg.Render.ThemeFile)
	if err != nil {
		return err
	}
	if _, err := catalog.Get(cfg.Render.Layout); err != nil {
		return fmt.Errorf("%w (available: %s)", err, layoutList())
	}

	slog.Info("configuration loaded",
		"layout", cfg.Render.Layout,
		"output_dir", cfg.Render.OutputDir,
		"max_concurrent", cfg.Batch.MaxConcurrent,
	)
	slog.Debug("configuration", "config", cfg.String())

	a.cfg = *cfg
	a.catalog = catalog
	return nil
}

func (a *app) runner() *batch.Runner {
	return batch.NewRunner(a.cfg, a.catalog)
}

// finish prints the summary, writes the optional HTML report and turns
// failed inputs into errFailed.
func (a *app) finish(ctx context.Context, cmd *cobra.Command, s *batch.Summary) error {
	if err := report.Console(cmd.ErrOrStderr(), s); err != nil {
		return err
	}
	if path := a.cfg.Render.ReportFile; path != "" {
		// The report is written even when the run was interrupted.
		if err := report.WriteHTML(context.WithoutCancel(ctx), path, s); err != nil {
			return err
		}
		slog.Info("report written", "path", path)
	}
	if !s.OK() {
		return errFailed
	}
	return nil
}
