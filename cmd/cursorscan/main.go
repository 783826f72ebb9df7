// Package main provides the CLI entry point for cursorscan.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/ideamans/go-l10n"
	"golang.org/x/sync/errgroup"

	"github.com/user/cursorscan/pkg/adapters/ffmpeg"
	"github.com/user/cursorscan/pkg/adapters/filesink"
	"github.com/user/cursorscan/pkg/adapters/ggrenderer"
	"github.com/user/cursorscan/pkg/adapters/logger"
	"github.com/user/cursorscan/pkg/adapters/mp4probe"
	"github.com/user/cursorscan/pkg/adapters/nullsink"
	"github.com/user/cursorscan/pkg/adapters/osfilesystem"
	"github.com/user/cursorscan/pkg/config"
	"github.com/user/cursorscan/pkg/controller"
	"github.com/user/cursorscan/pkg/decode"
	"github.com/user/cursorscan/pkg/ports"
	"github.com/user/cursorscan/pkg/summarizer"
	"github.com/user/cursorscan/pkg/worker"
)

// CLI defines the command-line interface with subcommands.
type CLI struct {
	Scan    ScanCmd    `cmd:"" help:"Scan a video for the cursor marker."`
	Probe   ProbeCmd   `cmd:"" help:"Show duration and frame size of a video."`
	Version VersionCmd `cmd:"" help:"Show version information."`
}

// CommonFlags are shared by scan and probe.
type CommonFlags struct {
	// Configuration
	Config  string `short:"c" type:"path" help:"YAML configuration file."`
	EnvFile string `default:".env" help:"Environment file loaded before reading CURSORSCAN_* variables."`

	// Decoder options
	FFmpeg *string `help:"Path to ffmpeg executable (falls back to FFMPEG_PATH env, then ./ffmpeg, then PATH)."`
	Prober *string `help:"Metadata prober (ffmpeg or mp4)."`

	// Logging options
	LogLevel *string `short:"l" help:"Log level (debug, info, warn, error)."`
	Quiet    bool    `short:"Q" help:"Suppress all log output."`
}

// ScanCmd defines the scan subcommand.
type ScanCmd struct {
	// Required arguments
	Path string `arg:"" type:"existingfile" help:"Video file to scan."`

	CommonFlags `embed:""`

	// Pacing options
	Mode        *string  `short:"m" help:"Step pacing (play or magic)."`
	Speed       *float64 `short:"s" help:"Play speed (0.07-2.0, 1.0 = 60 steps per second)."`
	Interval    *int     `short:"i" help:"Magic mode step interval in milliseconds (1-10000)."`
	Start       *float64 `help:"Seek to this offset in seconds before scanning."`
	MaxFrames   *int     `short:"n" help:"Stop after this many frames (0 = until the end)."`
	ReadTimeout *int     `help:"Give up on a frame after this many milliseconds (0 = wait)."`

	// Output options
	Report *string `short:"r" help:"Write a Markdown scan summary to this file."`

	// Debug options
	Debug      bool     `short:"d" help:"Save every frame with the marker trail as PNG."`
	DebugDir   *string  `help:"Directory for debug output."`
	DebugScale *float64 `help:"Scale factor for debug frames."`
}

// ProbeCmd defines the probe subcommand.
type ProbeCmd struct {
	Path string `arg:"" type:"existingfile" help:"Video file to probe."`

	CommonFlags `embed:""`
}

// VersionCmd shows version information.
type VersionCmd struct{}

var version = "dev"

func main() {
	cli := CLI{}

	parser := kong.Must(&cli,
		kong.Name("cursorscan"),
		kong.Description(l10n.T("Locate the cursor marker in every frame of a video.")),
		kong.UsageOnError(),
		kong.ValueFormatter(translatedHelp),
	)
	for _, node := range parser.Model.Children {
		node.Help = l10n.T(node.Help)
	}

	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	err = ctx.Run()
	ctx.FatalIfErrorf(err)
}

// translatedHelp renders flag and argument help through the lexicon.
func translatedHelp(value *kong.Value) string {
	v := *value
	v.Help = l10n.T(value.Help)
	return kong.DefaultHelpValueFormatter(&v)
}

// Run executes the scan command.
func (cmd *ScanCmd) Run() error {
	cfg, err := cmd.buildConfig()
	if err != nil {
		return err
	}

	log := newLogger(cfg, cmd.Quiet)

	ctx, cancel := signalContext(log)
	defer cancel()

	ffmpegPath, err := locateFFmpeg(cfg)
	if err != nil {
		return err
	}

	// Create adapters
	prober := newProber(cfg, ffmpegPath, log)
	opener := ffmpeg.NewOpener(ffmpegPath, log)
	manager := decode.NewManager(opener, log, decodeOptions(cfg))

	sink, err := newSink(cfg)
	if err != nil {
		return err
	}

	w, ch := worker.New(prober, manager, log)
	ctrl := controller.New(ch, sink, log, controllerOptions(cfg))

	g, gctx := errgroup.WithContext(ctx)
	workerCtx, stopWorker := context.WithCancel(gctx)
	defer stopWorker()

	g.Go(func() error {
		return w.Run(workerCtx)
	})

	var summary controller.Summary
	g.Go(func() error {
		// The worker may be blocked on a hung decoder, so cancel rather than wait for the queue.
		defer stopWorker()
		defer ch.Close()

		s, err := ctrl.Run(gctx, cmd.Path)
		summary = s
		return err
	})

	err = g.Wait()
	if err != nil && !(errors.Is(err, context.Canceled) && ctx.Err() != nil) {
		return err
	}

	log.Info("Scan finished: %d frames, %d markers", summary.Frames, summary.Markers)
	for _, p := range summary.Positions {
		fmt.Printf("%d,%d\n", p.X, p.Y)
	}

	if cfg.ReportPath != "" {
		if err := writeReport(cfg, summary); err != nil {
			return err
		}
		log.Info("Report saved to %s", cfg.ReportPath)
	}
	return nil
}

// writeReport saves a Markdown summary of the scan.
func writeReport(cfg config.Config, summary controller.Summary) error {
	report := summarizer.NewBuilder().
		WithScan(summary).
		WithSettings(summarizer.Settings{
			Mode:        cfg.Mode,
			Speed:       cfg.Speed,
			IntervalMs:  cfg.IntervalMs,
			StartOffset: cfg.StartOffset,
			MaxFrames:   cfg.MaxFrames,
			Prober:      cfg.Prober,
		}).
		Build()

	w := summarizer.NewWriter(summarizer.NewMarkdownFormatter(), osfilesystem.New())
	if err := w.Write(cfg.ReportPath, report); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// buildConfig layers defaults, the config file, the environment and flags.
func (cmd *ScanCmd) buildConfig() (config.Config, error) {
	cfg, err := cmd.CommonFlags.baseConfig()
	if err != nil {
		return cfg, err
	}

	if cmd.Mode != nil {
		cfg.Mode = *cmd.Mode
	}
	if cmd.Speed != nil {
		cfg.Speed = *cmd.Speed
	}
	if cmd.Interval != nil {
		cfg.IntervalMs = *cmd.Interval
	}
	if cmd.Start != nil {
		cfg.StartOffset = *cmd.Start
	}
	if cmd.MaxFrames != nil {
		cfg.MaxFrames = *cmd.MaxFrames
	}
	if cmd.ReadTimeout != nil {
		cfg.ReadTimeoutMs = *cmd.ReadTimeout
	}
	if cmd.Report != nil {
		cfg.ReportPath = *cmd.Report
	}
	if cmd.Debug {
		cfg.Debug = true
	}
	if cmd.DebugDir != nil {
		cfg.DebugDir = *cmd.DebugDir
	}
	if cmd.DebugScale != nil {
		cfg.DebugScale = *cmd.DebugScale
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Run executes the probe command.
func (cmd *ProbeCmd) Run() error {
	cfg, err := cmd.CommonFlags.baseConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := newLogger(cfg, cmd.Quiet)

	ctx, cancel := signalContext(log)
	defer cancel()

	var ffmpegPath string
	if cfg.Prober == config.ProberFFmpeg {
		if ffmpegPath, err = locateFFmpeg(cfg); err != nil {
			return err
		}
	}

	meta, err := newProber(cfg, ffmpegPath, log).Probe(ctx, cmd.Path)
	if err != nil {
		return err
	}

	fmt.Println(l10n.F("%s: %.2fs, %dx%d", cmd.Path, meta.Duration, meta.Width, meta.Height))
	return nil
}

// Run executes the version command.
func (cmd *VersionCmd) Run() error {
	fmt.Println(l10n.F("cursorscan version %s", version))
	return nil
}

// baseConfig loads defaults, the optional config file and the environment,
// then applies the shared flags.
func (f *CommonFlags) baseConfig() (config.Config, error) {
	if err := config.LoadEnv(f.EnvFile); err != nil {
		return config.Config{}, err
	}

	cfg := config.Defaults()
	if f.Config != "" {
		var err error
		if cfg, err = config.LoadFromFile(f.Config); err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
	}
	cfg.ApplyEnv()

	if f.FFmpeg != nil {
		cfg.FFmpegPath = *f.FFmpeg
	}
	if f.Prober != nil {
		cfg.Prober = *f.Prober
	}
	if f.LogLevel != nil {
		cfg.LogLevel = *f.LogLevel
	}
	return cfg, nil
}

// controllerOptions converts validated pacing settings to controller.Options.
func controllerOptions(cfg config.Config) controller.Options {
	mode, err := controller.ParseMode(cfg.Mode)
	if err != nil {
		mode = controller.ModePlay
	}
	return controller.Options{
		Mode:        mode,
		Speed:       cfg.Speed,
		Interval:    time.Duration(cfg.IntervalMs) * time.Millisecond,
		StartOffset: cfg.StartOffset,
		MaxFrames:   cfg.MaxFrames,
		Tick:        time.Duration(cfg.TickMs) * time.Millisecond,
		Stall:       time.Duration(cfg.StallMs) * time.Millisecond,
	}
}

func decodeOptions(cfg config.Config) decode.Options {
	return decode.Options{
		ReadTimeout: time.Duration(cfg.ReadTimeoutMs) * time.Millisecond,
	}
}

func newLogger(cfg config.Config, quiet bool) ports.Logger {
	if quiet {
		return logger.NewNoop()
	}
	return logger.NewConsole(ports.ParseLogLevel(cfg.LogLevel))
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(log ports.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			log.Warn("Interrupted, shutting down...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

func locateFFmpeg(cfg config.Config) (string, error) {
	if cfg.FFmpegPath != "" {
		ffmpeg.SetFFmpegPath(cfg.FFmpegPath)
	}
	path, err := ffmpeg.FindFFmpeg()
	if err != nil {
		return "", fmt.Errorf("%w (install ffmpeg or pass --ffmpeg)", err)
	}
	return path, nil
}

func newProber(cfg config.Config, ffmpegPath string, log ports.Logger) ports.MetadataProber {
	if cfg.Prober == config.ProberMP4 {
		return mp4probe.New(log)
	}
	return ffmpeg.NewProber(ffmpegPath, log)
}

func newSink(cfg config.Config) (ports.DebugSink, error) {
	if !cfg.Debug {
		return nullsink.New(), nil
	}
	fs := osfilesystem.New()
	if err := fs.MkdirAll(cfg.DebugDir); err != nil {
		return nil, fmt.Errorf("create debug directory: %w", err)
	}
	return filesink.New(cfg.DebugDir, fs, ggrenderer.New(), cfg.DebugScale), nil
}
