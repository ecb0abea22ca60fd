package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gompdf/pagefit/internal/config"
	"github.com/gompdf/pagefit/internal/logging"
	"github.com/gompdf/pagefit/internal/report"
	"github.com/gompdf/pagefit/internal/res"
	"github.com/gompdf/pagefit/pkg/api"
)

var (
	// Global flags
	verbose    bool
	configPath string
	pageSize   string
	measurer   string
	chromeURL  string
	format     string
	outDir     string
	force      bool
	timeout    time.Duration

	// Set up by PersistentPreRunE
	cfg     *config.Config
	options api.Options
	logger  *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "pagefit",
	Short: "Fit a résumé onto a single page",
	Long: `pagefit measures a résumé rendered from YAML and tunes its spacing and
font scale until the content fits one letter or A4 page.

Spacing shrinks first, in 0.1 steps down to 0.6, then the body font in 0.05
steps down to 0.8. Content is never changed.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var checkCmd = &cobra.Command{
	Use:   "check [resume.yaml]",
	Short: "Measure a résumé at its default layout",
	Long: `Renders the résumé at the default constraints and reports whether it fits.
Exits non-zero when the content overflows.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

var fitCmd = &cobra.Command{
	Use:   "fit [resume.yaml]",
	Short: "Auto-fit a résumé and report the resulting scales",
	Args:  cobra.ExactArgs(1),
	RunE:  runFit,
}

var applyCmd = &cobra.Command{
	Use:   "apply [resume.yaml] [script]",
	Short: "Run an adjustment script and measure the result",
	Long: `Applies catalogue commands in order, then measures once.

Example:
  pagefit apply resume.yaml "tighten-spacing*2, reduce-body-font"`,
	Args: cobra.ExactArgs(2),
	RunE: runApply,
}

var exportCmd = &cobra.Command{
	Use:   "export [resume.yaml]",
	Short: "Auto-fit a résumé and export it as PDF or HTML",
	Long: `Auto-fits the résumé and writes it. Export is refused while the content
still overflows unless --force is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

var commandsCmd = &cobra.Command{
	Use:   "commands [term]",
	Short: "List adjustment commands, optionally filtered",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCommands,
}

var watchCmd = &cobra.Command{
	Use:   "watch [resume.yaml]",
	Short: "Re-measure whenever the résumé file changes",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

var batchCmd = &cobra.Command{
	Use:   "batch [resume.yaml...]",
	Short: "Fit and export many résumés concurrently",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runBatch,
}

var tuneCmd = &cobra.Command{
	Use:   "tune [resume.yaml]",
	Short: "Tune the layout interactively with the command bar",
	Long: `Opens the interactive view. ctrl+k opens the command bar, typing filters
commands and highlights matching sections, enter runs the selected command.`,
	Args: cobra.ExactArgs(1),
	RunE: runTune,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default pagefit.yaml and a sample resume.yaml next to it",
	Args:  cobra.NoArgs,
	RunE:  runInit,
}

var (
	outputPath  string
	workers     int
	logFile     string
	overwrite   bool
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.FileName, "Config file")
	rootCmd.PersistentFlags().StringVarP(&pageSize, "page-size", "p", "", "Page size: letter or a4")
	rootCmd.PersistentFlags().StringVar(&measurer, "measurer", "", "Measurer: layout or browser")
	rootCmd.PersistentFlags().StringVar(&chromeURL, "chrome-url", "", "DevTools URL of a running Chrome")
	rootCmd.PersistentFlags().StringVarP(&format, "format", "f", "", "Export format: pdf or html")
	rootCmd.PersistentFlags().StringVar(&outDir, "out-dir", "", "Directory for exported files")
	rootCmd.PersistentFlags().BoolVar(&force, "force", false, "Export even when the content overflows")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "Operation timeout")

	exportCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file (default: <out-dir>/<name>.<format>)")
	batchCmd.Flags().IntVar(&workers, "workers", 0, "Concurrent documents (default: GOMAXPROCS)")
	tuneCmd.Flags().StringVar(&logFile, "log-file", filepath.Join(os.TempDir(), "pagefit.log"), "Where the interactive view logs")
	initCmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing files")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(fitCmd)
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(commandsCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(tuneCmd)
	rootCmd.AddCommand(initCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// configAtURL reports whether --config names an http(s) or data: location
// rather than a file.
func configAtURL(location string) bool {
	return res.Remote(location) || strings.HasPrefix(location, "data:")
}

// loadConfig reads a config file, or fetches it when location is a URL. A
// missing file means defaults; a missing URL is an error.
func loadConfig(ctx context.Context, location string) (*config.Config, error) {
	if configAtURL(location) {
		return config.Open(ctx, res.NewLoader(""), location)
	}
	return config.Load(location)
}

// setup loads the config, lets flags override it and builds the logger.
func setup(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	var err error
	cfg, err = loadConfig(ctx, configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("page-size") {
		cfg.PageSize = pageSize
	}
	if flags.Changed("measurer") {
		cfg.Measurer = measurer
	}
	if flags.Changed("chrome-url") {
		cfg.Browser.ControlURL = chromeURL
		cfg.Measurer = config.MeasurerBrowser
	}
	if flags.Changed("format") {
		cfg.Output.Format = format
	}
	if flags.Changed("out-dir") {
		cfg.Output.Dir = outDir
	}
	if flags.Changed("force") {
		cfg.Output.Force = force
	}

	logOpts := logging.Options{
		Level:       cfg.Logging.Level,
		Verbose:     verbose,
		Development: cfg.Logging.Development,
	}
	// The interactive view owns the terminal.
	if cmd.Name() == "tune" {
		logOpts.OutputPaths = []string{logFile}
	}
	if logger, err = logging.New(logOpts); err != nil {
		return err
	}

	if options, err = api.OptionsFromConfig(cfg); err != nil {
		return err
	}
	options.Logger = logger
	logger.Debug("configured",
		zap.String("config", configPath),
		zap.String("pageSize", string(options.PageSize)),
		zap.String("measurer", string(options.Backend)),
		zap.String("format", string(options.Format)))
	return nil
}

// commandContext bounds a one-shot command by --timeout and by SIGINT/SIGTERM.
func commandContext(bounded bool) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	if !bounded {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

func printer(w io.Writer) *report.Printer {
	return report.NewPrinter(w, report.TerminalWidth(os.Stdout, report.DefaultWidth))
}
