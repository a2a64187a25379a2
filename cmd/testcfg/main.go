package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/pintos-tools/testcfg/internal/logger"
	"github.com/pintos-tools/testcfg/internal/profile"
	"github.com/pintos-tools/testcfg/internal/testconfig"
	"github.com/pintos-tools/testcfg/internal/transcript"
	"github.com/pintos-tools/testcfg/internal/watch"
)

var (
	version = "0.1.0"
	commit  = "unknown"
	date    = "unknown"
)

// options collects the command-line flags
type options struct {
	output      string
	profilePath string
	watch       bool
	logDir      string
}

// app carries the process streams and clock so tests can replace them
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	now    func() time.Time

	// watch mode only; zero debounce means watch.DefaultDebounce
	debounce  time.Duration
	afterSave func()
}

func main() {
	a := &app{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr, now: time.Now}
	if err := a.rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func (a *app) rootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "testcfg [transcript]",
		Short: "Turn a pintos `make check` transcript into a .test_config file",
		Long: `testcfg reads the console output of a pintos test run and writes a
.test_config file listing how to launch every test, grouped by test directory.

Tests whose launch line carries -p <path>:<name> are read directly. Thread
tests are recovered from the pass/FAIL summary at the end of the transcript and
matched back to their launch line by name.

Examples:
  make check > make-check-output.txt
  testcfg < make-check-output.txt > .test_config
  testcfg make-check-output.txt -o .test_config
  testcfg make-check-output.txt -o .test_config --watch`,
		Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.Context(), opts, args)
		},
	}
	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.SetIn(a.stdin)
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)
	bindFlags(cmd.Flags(), opts)
	return cmd
}

func bindFlags(fs *pflag.FlagSet, opts *options) {
	fs.StringVarP(&opts.output, "output", "o", "", "write the config to this file instead of stdout")
	fs.StringVar(&opts.profilePath, "profile", "", "YAML transcript profile (defaults to the built-in pintos profile)")
	fs.BoolVarP(&opts.watch, "watch", "w", false, "regenerate the output whenever the transcript file changes")
	fs.StringVar(&opts.logDir, "log-dir", logger.DefaultDir, "directory for debug.log (level from "+logger.LevelEnv+")")
}

func (a *app) run(ctx context.Context, opts *options, args []string) error {
	inputPath := ""
	if len(args) == 1 {
		inputPath = args[0]
	}
	if opts.watch && (inputPath == "" || opts.output == "" || opts.output == "-") {
		return fmt.Errorf("--watch needs a transcript file argument and --output")
	}

	prof := profile.Default()
	if opts.profilePath != "" {
		var err error
		if prof, err = profile.Load(opts.profilePath); err != nil {
			return err
		}
	}

	fileLogger, err := logger.NewFileLogger(opts.logDir)
	if err != nil {
		return err
	}
	defer func() {
		if err := fileLogger.Close(); err != nil {
			fmt.Fprintf(a.stderr, "Warning: failed to close debug log: %v\n", err)
		}
	}()

	parser, err := transcript.NewParser(prof, fileLogger)
	if err != nil {
		return err
	}
	g := &generator{parser: parser, logger: fileLogger, now: a.now}

	if inputPath == "" {
		if f, ok := a.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			return fmt.Errorf("no transcript given: pass a file or pipe `make check` output on stdin")
		}
		return g.writeTo(opts.output, a.stdout, func() (io.ReadCloser, error) { return io.NopCloser(a.stdin), nil })
	}

	open := func() (io.ReadCloser, error) { return os.Open(inputPath) }
	if err := g.writeTo(opts.output, a.stdout, open); err != nil {
		return err
	}
	if !opts.watch {
		return nil
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := watch.New(inputPath, fileLogger)
	if err != nil {
		return err
	}
	if a.debounce > 0 {
		w.Debounce = a.debounce
	}
	a.saved()
	fmt.Fprintf(a.stderr, "Watching %s, writing %s (Ctrl-C to stop)\n", inputPath, opts.output)
	return w.Run(ctx, func() error {
		if err := g.writeTo(opts.output, a.stdout, open); err != nil {
			return err
		}
		fileLogger.Info("Regenerated %s", opts.output)
		a.saved()
		return nil
	})
}

func (a *app) saved() {
	if a.afterSave != nil {
		a.afterSave()
	}
}

// generator runs the parse and render pipeline once per call
type generator struct {
	parser *transcript.Parser
	logger logger.Logger
	now    func() time.Time
}

func (g *generator) generate(in io.Reader, out io.Writer) error {
	lines, err := transcript.ReadLines(in)
	if err != nil {
		return err
	}
	table, _ := g.parser.Generate(lines)
	return testconfig.Write(out, table, testconfig.Options{
		DisplayRoot: g.parser.Profile().DisplayRoot,
		GeneratedOn: g.now(),
	})
}

// writeTo renders to stdout when output is empty or "-", otherwise replaces
// the output file atomically.
func (g *generator) writeTo(output string, stdout io.Writer, open func() (io.ReadCloser, error)) error {
	in, err := open()
	if err != nil {
		return fmt.Errorf("failed to open transcript: %w", err)
	}
	defer func() { _ = in.Close() }()

	if output == "" || output == "-" {
		return g.generate(in, stdout)
	}

	tmp, err := os.CreateTemp(filepath.Dir(output), "."+filepath.Base(output)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temporary output: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := g.generate(in, tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(0644); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to set output permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary output: %w", err)
	}
	if err := os.Rename(tmp.Name(), output); err != nil {
		return fmt.Errorf("failed to replace %s: %w", output, err)
	}
	g.logger.Debug("Wrote %s", output)
	return nil
}
