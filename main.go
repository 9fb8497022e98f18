// Package main provides the linkcheck CLI entrypoint.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/linkchecker-go/linkcheck/auth"
	"github.com/linkchecker-go/linkcheck/cache"
	"github.com/linkchecker-go/linkcheck/config"
	"github.com/linkchecker-go/linkcheck/engine"
	"github.com/linkchecker-go/linkcheck/logger"
	"github.com/linkchecker-go/linkcheck/politeness"
	"github.com/linkchecker-go/linkcheck/protocols"
	"github.com/linkchecker-go/linkcheck/robots"
	"github.com/linkchecker-go/linkcheck/tui"
	"github.com/linkchecker-go/linkcheck/urlitem"
	"github.com/linkchecker-go/linkcheck/urlutil"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/term"
)

// Exit codes (component design §6): 0 clean, 1 broken links found, 2
// usage error, 3 internal/engine error.
const (
	exitOK          = 0
	exitBrokenLinks = 1
	exitUsage       = 2
	exitInternal    = 3
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	cfg, err := config.Parse(argv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitUsage
	}
	if len(cfg.Seeds) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: linkcheck [flags] <url> [url...]")
		return exitUsage
	}

	log, err := buildZapLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitInternal
	}
	defer log.Sync()
	log = log.With(zap.String("run_id", uuid.New().String()))

	formatters, closers, err := buildFormatters(cfg.Formatters)
	for _, c := range closers {
		defer c.Close()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitUsage
	}

	ignoredTags, err := cfg.IgnoredWarningTags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitUsage
	}
	intern, err := cfg.CompileIntern()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitUsage
	}
	extern, err := cfg.CompileExtern()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitUsage
	}
	ignoreURL, err := cfg.CompileIgnoreURL()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitUsage
	}

	resultLogger := logger.New(logger.Options{
		Verbose:         len(cfg.DebugAreas) > 0,
		WarningsEnabled: !cfg.NoWarnings,
		IgnoredWarnings: ignoredTags,
	}, formatters...)
	resultLogger.Start()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Interactive {
		return runInteractive(ctx, cfg, intern, extern, ignoreURL, ignoredTags, resultLogger, log)
	}

	director, reporter, err := buildDirector(cfg, intern, extern, ignoreURL, ignoredTags, resultLogger, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitInternal
	}

	go reporter.Run(ctx)

	if err := director.Run(ctx, cfg.Seeds); err != nil {
		log.Error("crawl ended with errors", zap.Error(err))
	}

	stats := director.Snapshot()
	resultLogger.End()

	log.Info("run complete", zap.Int("checked", stats.Checked), zap.Int("invalid", stats.Invalid))

	if stats.Invalid > 0 {
		return exitBrokenLinks
	}
	return exitOK
}

// fanoutSink forwards every logged wire to both the streaming formatter
// pipeline (so -F file outputs still get written) and the TUI's in-memory
// sink (so the final summary view can be rendered from it).
type fanoutSink struct {
	logger *logger.Logger
	tui    *tui.Sink
}

func (f fanoutSink) LogItem(w urlitem.Wire) {
	f.logger.LogItem(w)
	f.tui.LogItem(w)
}

// runInteractive drives the crawl behind a Bubble Tea progress view
// (component design: "interactive progress view"), sampling
// engine.StatusReporter snapshots onto a channel the TUI model consumes.
func runInteractive(ctx context.Context, cfg *config.Config, intern, extern, ignoreURL urlutil.PatternSet, ignoredTags map[urlitem.WarningTag]bool, resultLogger *logger.Logger, log *zap.Logger) int {
	sink := tui.NewSink()
	director, reporter, err := buildDirector(cfg, intern, extern, ignoreURL, ignoredTags, fanoutSink{logger: resultLogger, tui: sink}, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitInternal
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	progressCh := make(chan engine.Stats, 1)
	reporter = reporter.WithProgressChannel(progressCh)
	go reporter.Run(runCtx)

	model := tui.NewModel(runCtx, cancel, director, cfg.Seeds, sink, progressCh)
	program := tea.NewProgram(model)
	finalModel, err := program.Run()
	resultLogger.End()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitInternal
	}

	m := finalModel.(tui.Model)
	if m.HasBrokenLinks() {
		return exitBrokenLinks
	}
	return exitOK
}

func buildZapLogger() (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	zapCfg.Encoding = "console"
	zapCfg.EncoderConfig.TimeKey = "ts"
	return zapCfg.Build()
}

// closer abstracts the output files opened for -F formatter destinations,
// so the caller can defer-close them uniformly without special-casing
// stdout.
type closer interface {
	Close() error
}

type noopCloser struct{}

func (noopCloser) Close() error { return nil }

// buildFormatters resolves each config.FormatterSpec into a wired
// logger.Formatter plus the handle backing its destination.
func buildFormatters(specs []config.FormatterSpec) ([]logger.Formatter, []closer, error) {
	formatters := make([]logger.Formatter, 0, len(specs))
	closers := make([]closer, 0, len(specs))

	isColorTerminal := term.IsTerminal(int(os.Stdout.Fd()))

	for _, spec := range specs {
		var w *os.File
		onStdout := spec.Dest == "-" || spec.Dest == ""
		if onStdout {
			w = os.Stdout
			closers = append(closers, noopCloser{})
		} else {
			f, err := os.Create(spec.Dest)
			if err != nil {
				return nil, closers, fmt.Errorf("open output %q: %w", spec.Dest, err)
			}
			w = f
			closers = append(closers, f)
		}

		switch spec.Format {
		case "text":
			formatters = append(formatters, logger.NewTextFormatter(w, isColorTerminal && onStdout))
		case "html":
			formatters = append(formatters, logger.NewHTMLFormatter(w))
		case "csv":
			formatters = append(formatters, logger.NewCSVFormatter(w, ','))
		case "xml":
			formatters = append(formatters, logger.NewXMLFormatter(w))
		case "gml":
			formatters = append(formatters, logger.NewGMLFormatter(w))
		case "dot":
			formatters = append(formatters, logger.NewDOTFormatter(w))
		case "sql":
			formatters = append(formatters, logger.NewSQLFormatter(w, ""))
		case "sitemap", "sitemap_xml":
			formatters = append(formatters, logger.NewSitemapFormatter(w))
		case "blacklist":
			formatters = append(formatters, logger.NewBlacklistFormatter(w))
		default:
			return nil, closers, fmt.Errorf("unknown output format %q", spec.Format)
		}
	}
	return formatters, closers, nil
}

// buildDirector wires the cache, robots layer, politeness pool, protocol
// registry, and credential store into a ready-to-run engine.Director,
// following component design §5's assembly order.
func buildDirector(cfg *config.Config, intern, extern, ignoreURL urlutil.PatternSet, ignoredTags map[urlitem.WarningTag]bool, sink engine.ResultSink, log *zap.Logger) (*engine.Director, *engine.StatusReporter, error) {
	httpClient := &http.Client{Timeout: cfg.Timeout}

	var credentials *auth.Store
	if cfg.LoginURL != "" {
		jar, err := auth.NewJar()
		if err != nil {
			return nil, nil, fmt.Errorf("build cookie jar: %w", err)
		}
		httpClient.Jar = jar
		if err := auth.Login(context.Background(), httpClient, auth.LoginConfig{URL: cfg.LoginURL}); err != nil {
			return nil, nil, fmt.Errorf("login: %w", err)
		}
	}

	resultCache := cache.New(true)
	robotsCache := robots.New(httpClient)
	politenessPool := politeness.NewPool(time.Second, 1.0, 2*time.Second)

	registry := protocols.NewRegistry(
		protocols.NewHTTPHandler(httpClient, cfg.UserAgent, credentials),
		protocols.NewFTPHandler(),
		protocols.NewFileHandler(),
		protocols.NewMailtoHandler(""),
		protocols.NewNewsHandler(""),
		protocols.NewTelnetHandler(),
	)

	reg := prometheus.NewRegistry()
	metrics := engine.NewMetrics(reg)

	directorCfg := engine.Config{
		Concurrency:    cfg.Threads,
		MaxDepth:       cfg.RecursionLevel,
		RecurseExtern:  cfg.CheckExtern,
		CheckExtern:    cfg.CheckExtern,
		CheckAnchors:   cfg.CheckAnchors,
		RequestTimeout: cfg.Timeout,
		UserAgent:      cfg.UserAgent,
		Intern:         intern,
		Extern:         extern,
		IgnoreURL:      ignoreURL,
		IgnoreWarnings: ignoredTags,
		Retry:          engine.DefaultRetryPolicy(),
	}

	director := engine.New(directorCfg, resultCache, robotsCache, politenessPool, registry, sink, metrics, log)
	reporter := engine.NewStatusReporter(director, 5*time.Second, log)
	return director, reporter, nil
}
