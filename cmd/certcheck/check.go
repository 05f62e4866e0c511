package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/nao1215/certcheck/internal/batch"
	"github.com/nao1215/certcheck/internal/config"
	certlog "github.com/nao1215/certcheck/internal/log"
	"github.com/nao1215/certcheck/internal/probe"
	"github.com/nao1215/certcheck/internal/report"
	"github.com/nao1215/certcheck/internal/transport"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"golang.org/x/term"
)

// NewCheckCmd creates the check command.
func NewCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [domain...]",
		Short: "Probe http/https and www variants of domains",
		Long: `Check expands every domain into four URLs (http://, https://,
http://www. and https://www.), sends a GET request to all of them at the
same time and prints each result in the order the responses arrive.

Results are grouped as OK (200), redirect (301 or 302, with its
Location), forbidden (403), not found (404), any other status code, and
exceptions (connection errors, certificate errors and timeouts).

Examples:
  # Check a single domain
  certcheck check example.com

  # Check several domains, one after another
  certcheck check -g example.com example.org

  # Follow redirects and wait at most 2.5 seconds per request
  certcheck check -r -t 2.5 example.com

  # Read domains from a file and write a Markdown report
  certcheck check -l domains.txt -m -o report.md

  # Go through a SOCKS5 proxy
  certcheck check --proxy socks5://127.0.0.1:9050 example.com

  # Check an onion service through an embedded Tor daemon
  certcheck check --tor -t 30 exampleonion.onion

  # Keep JSON logs in a rotated file
  certcheck check -v --log-file certcheck.log --log-format json example.com`,
		Args: cobra.ArbitraryArgs,
		RunE: runCheckCmd,
	}

	// Probe behavior flags
	cmd.Flags().BoolP("follow-redirect", "r", false,
		"Follow redirects and report the final response")
	cmd.Flags().Float64P("timeout", "t", config.DefaultTimeout.Seconds(),
		"Request timeout in seconds")
	cmd.Flags().BoolP("group-by-domain", "g", false,
		"Check domains one at a time instead of all at once")
	cmd.Flags().String("proxy", "",
		"Proxy URL (http://, https://, socks5:// or socks5h://)")
	cmd.Flags().Bool("tor", false,
		"Start an embedded Tor daemon and send every request through it")
	cmd.Flags().Duration("tor-timeout", config.DefaultTorStartupTimeout,
		"Timeout for embedded Tor startup")

	// Input flags
	cmd.Flags().StringP("list", "l", "",
		"File with one domain per line ('#' starts a comment)")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .certcheck in current or home directory)")

	// Output flags
	cmd.Flags().String("layout", config.DefaultLayout,
		"Text layout: url-first or status-first")
	cmd.Flags().Bool("no-color", false,
		"Disable colored output")
	cmd.Flags().BoolP("json", "j", false,
		"Print one JSON object per result (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Write a Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write output to specified file path (creates directories if needed)")
	cmd.Flags().String("log-file", "",
		"Write logs to a rotated file instead of stderr")
	cmd.Flags().String("log-format", config.DefaultLogFormat,
		"Log format: text or json")

	return cmd
}

// runCheckCmd executes the check command.
func runCheckCmd(cmd *cobra.Command, args []string) (err error) {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger, closeLog, err := setupLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, closeLog())
	}()
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	if cfg.Tor {
		daemon := transport.NewTorDaemon(transport.WithTorStartupTimeout(cfg.TorStartupTimeout))
		stop, err := startTor(ctx, cfg, daemon, cmd.ErrOrStderr(), logger)
		if err != nil {
			return err
		}
		defer stop()
	}

	stdout := cmd.OutOrStdout()
	colorOn := cfg.ReportFile == "" && useColor(cfg, stdout)

	out, err := openOutput(cfg.ReportFile, stdout)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, out.Close())
	}()

	return runCheck(ctx, cfg, out, colorOn, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from the configuration file and the cobra
// command flags. Flags are applied last and only when set explicitly, so
// they override the file. Domains are collected from the arguments, then
// the --list file, then the configuration file.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	cfg.ConfigFilePath, err = flags.GetString("config")
	if err != nil {
		return nil, err
	}

	// If the user explicitly specified a config file path, error if not found.
	// Otherwise run with defaults when no file exists.
	var file *config.File
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		file, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	cfg.Domains = append(cfg.Domains, args...)

	cfg.ListFile, err = flags.GetString("list")
	if err != nil {
		return nil, err
	}
	if cfg.ListFile != "" {
		listed, err := config.LoadDomainList(cfg.ListFile)
		if err != nil {
			return nil, err
		}
		cfg.Domains = append(cfg.Domains, listed...)
	}

	if file != nil {
		if err := file.Apply(cfg); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
		}
	}

	if flags.Changed("timeout") {
		seconds, err := flags.GetFloat64("timeout")
		if err != nil {
			return nil, err
		}
		if cfg.Timeout, err = config.SecondsToDuration(seconds); err != nil {
			return nil, err
		}
	}
	if flags.Changed("follow-redirect") {
		if cfg.FollowRedirects, err = flags.GetBool("follow-redirect"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("group-by-domain") {
		if cfg.GroupByDomain, err = flags.GetBool("group-by-domain"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("layout") {
		if cfg.Layout, err = flags.GetString("layout"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("no-color") {
		if cfg.NoColor, err = flags.GetBool("no-color"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("proxy") {
		if cfg.Proxy, err = flags.GetString("proxy"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("tor") {
		if cfg.Tor, err = flags.GetBool("tor"); err != nil {
			return nil, err
		}
	}
	cfg.TorStartupTimeout, err = flags.GetDuration("tor-timeout")
	if err != nil {
		return nil, err
	}
	if flags.Changed("log-file") {
		if cfg.LogFile, err = flags.GetString("log-file"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("log-format") {
		if cfg.LogFormat, err = flags.GetString("log-format"); err != nil {
			return nil, err
		}
	}

	cfg.JSONReport, err = flags.GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = flags.GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = flags.GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.Verbose = getVerboseFlag(cmd)

	if err := cfg.NormalizeDomains(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setupLogger creates the redacting logger in the configured format. Logs go
// to stderr unless a log file is configured; relative log file paths live
// in the XDG state directory. The returned function closes the log file.
func setupLogger(cfg *config.Config, stderr io.Writer) (*slog.Logger, func() error, error) {
	format, err := certlog.ParseFormat(cfg.LogFormat)
	if err != nil {
		return nil, nil, err
	}

	if cfg.LogFile == "" {
		logger, err := certlog.NewLogger(stderr, format, cfg.Verbose)
		if err != nil {
			return nil, nil, err
		}
		return logger, func() error { return nil }, nil
	}

	path := cfg.LogFile
	if !filepath.IsAbs(path) {
		path = filepath.Join(config.XDGStateDir(), path)
	}
	w, err := certlog.NewRotatingWriter(path)
	if err != nil {
		return nil, nil, err
	}
	logger, err := certlog.NewLogger(w, format, cfg.Verbose)
	if err != nil {
		return nil, nil, multierr.Append(err, w.Close())
	}
	return logger, w.Close, nil
}

// torDaemon is the part of transport.TorDaemon used by startTor.
type torDaemon interface {
	Start(ctx context.Context) error
	ProxyURL() (*url.URL, error)
	Stop() error
}

var _ torDaemon = (*transport.TorDaemon)(nil)

// startTor starts daemon and points cfg.Proxy at it.
// The returned function stops the daemon.
func startTor(ctx context.Context, cfg *config.Config, daemon torDaemon, stderr io.Writer, logger *slog.Logger) (func(), error) {
	fmt.Fprintln(stderr, "Starting embedded Tor daemon (this may take a few minutes)...")
	if err := daemon.Start(ctx); err != nil {
		return nil, err
	}

	stop := func() {
		logger.Info("stopping embedded Tor daemon...")
		if err := daemon.Stop(); err != nil {
			logger.Error("failed to stop embedded Tor", "error", err)
		}
	}

	proxyURL, err := daemon.ProxyURL()
	if err != nil {
		stop()
		return nil, err
	}
	logger.Info("embedded Tor daemon started", "proxy", proxyURL)
	cfg.Proxy = proxyURL.String()

	return stop, nil
}

// useColor reports whether text output to w should be colored: colors are
// off with --no-color, with NO_COLOR set, or when w is not a terminal.
func useColor(cfg *config.Config, w io.Writer) bool {
	if cfg.NoColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) //nolint:gosec // file descriptors fit in int
}

// nopCloser keeps stdout open when the output is closed.
type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// openOutput returns the file at path, truncated and created with 0600
// along with its parent directories, or stdout when path is empty.
func openOutput(path string, stdout io.Writer) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{stdout}, nil
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, nil
}

// newPresenter returns the handler that renders results in the configured
// output format.
func newPresenter(cfg *config.Config, w io.Writer, opts ...report.Option) (probe.Handler, error) {
	switch {
	case cfg.JSONReport:
		return report.NewJSONHandler(w), nil
	case cfg.MarkdownReport:
		return report.NewMarkdownHandler(w), nil
	default:
		layout, err := report.ParseLayout(cfg.Layout)
		if err != nil {
			return nil, err
		}
		return report.NewTextHandler(w, layout, opts...)
	}
}

// runCheck probes cfg.Domains and writes the results to w.
//
// In text mode the banner comes first and every run ends with its elapsed
// time, followed by a summary line once all runs are done. engineOpts are
// appended to the options derived from cfg.
func runCheck(ctx context.Context, cfg *config.Config, w io.Writer, colorOn bool, logger *slog.Logger, engineOpts ...probe.Option) error {
	textMode := !cfg.JSONReport && !cfg.MarkdownReport
	textOpts := []report.Option{report.WithColor(colorOn)}

	presenter, err := newPresenter(cfg, w, textOpts...)
	if err != nil {
		return err
	}
	tally := report.NewTally()
	handler := report.NewMultiHandler(presenter, tally)

	proxyURL, err := transport.ParseProxy(cfg.Proxy)
	if err != nil {
		return fmt.Errorf("%w: %w", config.ErrInvalidProxy, err)
	}

	opts := []probe.Option{
		probe.WithFollowRedirects(cfg.FollowRedirects),
		probe.WithTimeout(cfg.Timeout),
		probe.WithLogger(logger),
		probe.WithProxy(proxyURL),
	}
	if textMode {
		opts = append(opts, probe.WithElapsedReporter(func(d time.Duration) {
			if err := report.WriteElapsed(w, d, textOpts...); err != nil {
				logger.Warn("failed to write elapsed time", "error", err)
			}
		}))
	}
	opts = append(opts, engineOpts...)

	if textMode {
		if err := report.WriteBanner(w, getVersion(), cfg.Domains, textOpts...); err != nil {
			return fmt.Errorf("failed to write banner: %w", err)
		}
	}

	logger.Info("starting check",
		"domains", cfg.Domains,
		"timeout", cfg.Timeout,
		"follow_redirects", cfg.FollowRedirects,
		"group_by_domain", cfg.GroupByDomain,
		"proxy", cfg.Proxy,
	)

	processor := batch.NewProcessor(
		func(domains []string) (batch.Runner, error) {
			engine, err := probe.New(domains, handler, opts...)
			if err != nil {
				return nil, err
			}
			return engine, nil
		},
		batch.WithLogger(logger),
		batch.WithGroupStart(func(domain string) {
			logger.Info("checking domain", "domain", domain)
		}),
	)

	runErr := processor.Process(ctx, cfg.Domains, cfg.GroupByDomain)
	if err := report.Flush(handler); err != nil {
		runErr = multierr.Append(runErr, fmt.Errorf("failed to write report: %w", err))
	}

	if textMode {
		if _, err := fmt.Fprintln(w, tally.Summary()); err != nil {
			runErr = multierr.Append(runErr, err)
		}
	}
	return runErr
}
