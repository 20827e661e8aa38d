package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/imgo/config"
	"github.com/s0up4200/imgo/imgur"
	"github.com/s0up4200/imgo/metrics"
)

var (
	cfgFile   string
	cfg       *config.Config
	logger    zerolog.Logger
	client    *imgur.Client
	api       *imgur.API
	registry  *prom.Registry
	version   = "dev"
	buildTime = "unknown"
)

// logOutput receives log lines; tests replace it
var logOutput io.Writer = os.Stderr

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "imgo",
	Short: "A command line client for the Imgur API",
	Long: `imgo performs authenticated requests against the Imgur v3 API and
reports failures as typed errors: exhausted user or application credits,
structured API errors, and unrecognized client errors.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// SetVersion sets the version information injected at build time
func SetVersion(v, bt string) {
	version = v
	buildTime = bt
	rootCmd.Version = v
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := execute(); err != nil {
		reportError(os.Stderr, err)
		os.Exit(1)
	}
}

// execute runs the root command and dumps request metrics whether or not the
// command failed
func execute() error {
	defer dumpMetrics()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")

	rootCmd.AddCommand(versionCmd)
}

// reportError prints err, adding the quota details for rate limit errors
func reportError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)

	if rl, ok := imgur.AsRateLimit(err); ok {
		fmt.Fprintf(w, "Exhausted quota: %s\n", rl.Scope)
		if date := rl.ResetDate(); date != "" {
			fmt.Fprintf(w, "Credits reset at: %s\n", date)
		}
	}
}

// initializeApp loads the configuration and creates the API client
func initializeApp(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger = setupLogger(cfg.Logging)

	opts := []imgur.Option{
		imgur.WithTimeout(cfg.API.Timeout),
		imgur.WithAccessToken(cfg.API.AccessToken),
		imgur.WithConcurrency(cfg.API.Concurrency),
		imgur.WithUserAgent("imgo/" + version),
	}

	if cfg.Metrics.Enabled {
		registry = prom.NewRegistry()
		opts = append(opts, imgur.WithRecorder(metrics.NewRecorder(registry, cfg.Metrics.Namespace)))
	}

	client, err = imgur.NewClient(cfg.API.BaseURL, cfg.API.ClientID, logger, opts...)
	if err != nil {
		return fmt.Errorf("failed to create Imgur client: %w", err)
	}
	api = imgur.NewAPI(client)

	logger.Debug().
		Str("base_url", cfg.API.BaseURL).
		Bool("user_auth", cfg.API.AccessToken != "").
		Msg("Imgur client initialized")

	return nil
}

// dumpMetrics logs the gathered request metrics at debug level
func dumpMetrics() {
	if registry == nil {
		return
	}

	families, err := registry.Gather()
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to gather metrics")
		return
	}

	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			event := logger.Debug().Str("metric", mf.GetName())
			for _, lp := range m.GetLabel() {
				event = event.Str(lp.GetName(), lp.GetValue())
			}
			switch {
			case m.GetCounter() != nil:
				event = event.Float64("value", m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				event = event.
					Uint64("count", m.GetHistogram().GetSampleCount()).
					Float64("sum", m.GetHistogram().GetSampleSum())
			}
			event.Msg("Request metric")
		}
	}
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	// Set log level
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	// Configure output format
	if cfg.Format == "json" {
		return zerolog.New(logOutput).With().Timestamp().Logger()
	}

	// Console format
	output := zerolog.ConsoleWriter{
		Out:        logOutput,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !isatty.IsTerminal(os.Stderr.Fd()),
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

// versionCmd prints build information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "imgo %s (built %s)\n", version, buildTime)
	},
}
