package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/gerunddev/wikivault/internal/config"
	"github.com/gerunddev/wikivault/internal/convert"
	"github.com/gerunddev/wikivault/internal/export"
	"github.com/gerunddev/wikivault/internal/logger"
	"github.com/gerunddev/wikivault/internal/media"
	"github.com/gerunddev/wikivault/internal/render"
	"github.com/gerunddev/wikivault/internal/styles"
	"github.com/gerunddev/wikivault/internal/tui"
	"github.com/gerunddev/wikivault/internal/vault"
	"github.com/gerunddev/wikivault/internal/wikiapi"
)

// ErrUsage is returned for malformed command lines
var ErrUsage = errors.New("usage: wikivault convert <export.xml> [output_dir] [--skip-redirects] [--verbose] [--renderer pandoc|api|none] [--config path]")

// ConvertArgs holds the parsed convert command line
type ConvertArgs struct {
	Input      string
	OutputDir  string
	ConfigPath string
	Renderer   string
	// SkipRedirects and Verbose are nil unless given on the command line
	SkipRedirects *bool
	Verbose       *bool
}

// ParseConvertArgs parses the arguments after "convert"
func ParseConvertArgs(args []string) (*ConvertArgs, error) {
	a := &ConvertArgs{}
	var positional []string

	for i := 0; i < len(args); i++ {
		arg := args[i]
		name, value, hasValue := strings.Cut(arg, "=")

		switch name {
		case "--skip-redirects", "--verbose", "-v":
			on := true
			if hasValue {
				b, err := strconv.ParseBool(value)
				if err != nil {
					return nil, fmt.Errorf("%s takes true or false: %w", name, ErrUsage)
				}
				on = b
			}
			if name == "--skip-redirects" {
				a.SkipRedirects = &on
			} else {
				a.Verbose = &on
			}
		case "--renderer", "--config":
			if !hasValue {
				if i+1 >= len(args) {
					return nil, fmt.Errorf("%s needs a value: %w", name, ErrUsage)
				}
				i++
				value = args[i]
			}
			if name == "--renderer" {
				a.Renderer = value
			} else {
				a.ConfigPath = value
			}
		default:
			if strings.HasPrefix(arg, "-") {
				return nil, fmt.Errorf("unknown flag %s: %w", arg, ErrUsage)
			}
			positional = append(positional, arg)
		}
	}

	switch len(positional) {
	case 2:
		a.OutputDir = positional[1]
		fallthrough
	case 1:
		a.Input = positional[0]
	default:
		return nil, ErrUsage
	}
	return a, nil
}

// apply layers command line flags over the loaded configuration
func (a *ConvertArgs) apply(cfg *config.Config) error {
	if a.OutputDir != "" {
		abs, err := filepath.Abs(a.OutputDir)
		if err != nil {
			return fmt.Errorf("failed to resolve output directory: %w", err)
		}
		cfg.OutputDir = abs
	}
	if a.Renderer != "" {
		cfg.Renderer = a.Renderer
	}
	if a.SkipRedirects != nil {
		cfg.SkipRedirects = *a.SkipRedirects
	}
	if a.Verbose != nil {
		cfg.Verbose = *a.Verbose
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// RunConvert loads the export and converts it into the vault. Log output
// goes to logOut; progress, when set, hears about every page.
func RunConvert(ctx context.Context, a *ConvertArgs, logOut io.Writer, progress convert.ProgressFunc) (*convert.Result, *config.Config, error) {
	cfg, err := config.Load(a.ConfigPath)
	if err != nil {
		return nil, nil, err
	}
	if err := a.apply(cfg); err != nil {
		return nil, nil, err
	}

	log := logger.NewWithLevel(logOut, logger.Verbose(cfg.Verbose))
	if cfg.LogFile != "" {
		l, cleanup, err := logger.NewFileLogger(logOut, cfg.LogFile, logger.Verbose(cfg.Verbose))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		defer cleanup()
		log = l
	}
	log.ConfigLoaded(a.ConfigPath, cfg.Renderer, cfg.OutputDir)

	exp, err := export.LoadFile(a.Input)
	if err != nil {
		return nil, nil, err
	}
	host, err := exp.Host()
	if err != nil {
		return nil, nil, err
	}

	writer, err := vault.NewWriter(cfg.OutputDir)
	if err != nil {
		return nil, nil, err
	}

	api := wikiapi.NewClient(
		wikiapi.Endpoint(cfg.Scheme, host, cfg.APIPath),
		&http.Client{Timeout: cfg.HTTPTimeout},
		cfg.UserAgent,
	)
	renderer, err := render.New(cfg.Renderer, render.Options{
		PandocPath: cfg.PandocPath,
		Timeout:    cfg.RenderTimeout,
		Parser:     api,
	})
	if err != nil {
		return nil, nil, err
	}

	resolver := media.NewResolver(api, writer, cfg.MediaDir, log)
	conv := convert.NewConverter(writer, resolver, renderer, convert.Options{
		MediaDir:      cfg.MediaDir,
		IndexDir:      cfg.IndexDir,
		SkipRedirects: cfg.SkipRedirects,
		Unwrap:        cfg.Unwrap(),
		Progress:      progress,
	}, log)

	log.ConversionStarted(a.Input, cfg.OutputDir, len(exp.Pages))
	result, err := conv.Run(ctx, exp.Pages)
	stats := resolver.Stats()
	result.MediaDownloaded = stats.Fetched
	result.MediaCached = stats.Cached
	log.ConversionCompleted(result.Converted, result.Skipped, len(result.Errors), result.Duration())
	return result, cfg, err
}

// Convert runs the convert command. On a terminal it shows a progress
// display; otherwise, or with --verbose, the log stream goes to stderr.
func Convert(args []string) {
	errorStyle := styles.ErrorStyle
	warningStyle := styles.WarningStyle

	a, err := ParseConvertArgs(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("✗ "+err.Error()))
		os.Exit(1)
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(sigCtx)
	defer cancel()

	var (
		result *convert.Result
		cfg    *config.Config
	)
	if interactive(a) {
		result, cfg, err = convertWithProgress(ctx, cancel, a)
	} else {
		fmt.Println(styles.InfoStyle.Render("Converting " + a.Input + " ..."))
		result, cfg, err = RunConvert(ctx, a, os.Stderr, nil)
	}

	if err != nil {
		if result != nil {
			fmt.Println(warningStyle.Render("⚠ " + result.String()))
		}
		fmt.Fprintln(os.Stderr, errorStyle.Render("✗ Error: "+err.Error()))
		os.Exit(1)
	}
	printSummary(result, cfg)
}

// interactive reports whether the progress display can take over stdout
func interactive(a *ConvertArgs) bool {
	if a.Verbose != nil && *a.Verbose {
		return false
	}
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// convertWithProgress runs the conversion in the background and feeds
// each page to the progress display. Console logging is off while the
// display owns the terminal; a configured log file still gets everything.
func convertWithProgress(ctx context.Context, cancel context.CancelFunc, a *ConvertArgs) (*convert.Result, *config.Config, error) {
	p := tea.NewProgram(tui.InitConvertModel(a.Input, cancel))

	var cfg *config.Config
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		var (
			result *convert.Result
			err    error
		)
		result, cfg, err = RunConvert(ctx, a, io.Discard, func(done, total int, o convert.Outcome, err error) {
			p.Send(tui.PageMsg{Done: done, Total: total, Outcome: o, Err: err})
		})
		p.Send(tui.DoneMsg{Result: result, Err: err})
	}()

	final, err := p.Run()
	if err != nil {
		cancel()
		<-finished
		return nil, nil, fmt.Errorf("failed to run progress display: %w", err)
	}
	<-finished

	result, err := final.(tui.ConvertModel).Result()
	return result, cfg, err
}

func printSummary(result *convert.Result, cfg *config.Config) {
	warningStyle := styles.WarningStyle

	fmt.Println(styles.SuccessStyle.Render("✓ " + result.String()))
	if result.RenderFailed > 0 {
		fmt.Println(warningStyle.Render(fmt.Sprintf("⚠ %d pages kept raw markup after the renderer failed", result.RenderFailed)))
	}
	if n := len(result.Errors); n > 0 {
		fmt.Println(warningStyle.Render(fmt.Sprintf("⚠ %d pages or indexes could not be written", n)))
	}
	fmt.Println(styles.DimStyle.Render("  Vault ready at: ") + styles.HighlightStyle.Render(cfg.OutputDir))
}
