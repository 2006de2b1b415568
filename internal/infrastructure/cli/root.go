// Package cli is the cobra front end of gpa.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/doeshing/gpa/internal/app"
	appconfig "github.com/doeshing/gpa/internal/application/config"
	"github.com/doeshing/gpa/internal/domain"
	"github.com/doeshing/gpa/internal/infrastructure/cli/commands"
	configinfra "github.com/doeshing/gpa/internal/infrastructure/config"
	"github.com/doeshing/gpa/internal/pkg/logger"
	"github.com/doeshing/gpa/internal/ports"
	"github.com/doeshing/gpa/internal/version"
)

// ErrRunHadFailures is returned in --strict mode when at least one document failed.
var ErrRunHadFailures = errors.New("one or more documents failed")

// Options holds CLI-level configuration.
type Options struct {
	// Verbose forces debug logging regardless of flags (GPA_DEBUG).
	Verbose    bool
	Getenv     func(string) string
	HTTPClient *http.Client
	Stderr     io.Writer
	Prompter   ports.ConfirmationPrompter
}

type globalFlags struct {
	configPath string
	verbose    bool
	quiet      bool
}

type runFlags struct {
	inputDir   string
	outputDir  string
	model      string
	maxDocs    int
	filter     string
	formats    []string
	noCache    bool
	clearCache bool
	noProgress bool
	strict     bool
}

// session builds the container on first use and closes it at the end.
type session struct {
	opts      Options
	flags     *globalFlags
	container *app.Container
}

func (s *session) Container(ctx context.Context) (*app.Container, error) {
	if s.container != nil {
		return s.container, nil
	}
	level := logger.LevelFromFlags(s.flags.verbose || s.opts.Verbose, s.flags.quiet)
	c, err := app.BuildContainer(ctx, app.Options{
		ConfigPath: s.flags.configPath,
		LogLevel:   level,
		LogWriter:  s.opts.Stderr,
		HTTPClient: s.opts.HTTPClient,
		Getenv:     s.opts.Getenv,
	})
	if err != nil {
		return nil, err
	}
	s.container = c
	return c, nil
}

func (s *session) ConfigLoader() *configinfra.FileLoader {
	loader := configinfra.NewFileLoader(s.flags.configPath)
	if s.opts.Getenv != nil {
		loader = loader.WithEnv(s.opts.Getenv)
	}
	return loader
}

// Close implements io.Closer.
func (s *session) Close() error {
	if s.container == nil {
		return nil
	}
	err := s.container.Close()
	s.container = nil
	return err
}

// Execute builds the root command, runs it and releases resources.
func Execute(ctx context.Context, opts Options) error {
	root, closer := NewRootCmd(opts)
	defer closer.Close()
	return root.ExecuteContext(ctx)
}

// NewRootCmd wires the cobra root command. The returned closer releases the
// cache and history handles opened by any command.
func NewRootCmd(opts Options) (*cobra.Command, io.Closer) {
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Prompter == nil {
		opts.Prompter = NewPrompter(nil, opts.Stderr)
	}
	gf := &globalFlags{}
	sess := &session{opts: opts, flags: gf}
	env := commands.Env{
		Container:    sess.Container,
		ConfigLoader: sess.ConfigLoader,
		Prompter:     opts.Prompter,
	}

	var rf runFlags
	root := &cobra.Command{
		Use:     "gpa",
		Short:   "Gemini PDF batch analyzer",
		Long:    "gpa extracts text from every PDF in a directory, asks Gemini for a structured summary, caches the answers and exports them as CSV, JSON, JSONL or Excel.",
		Version: version.Version,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if rf.maxDocs < 0 {
				return fmt.Errorf("--max-docs must be >= 0")
			}
			if len(rf.formats) > 0 {
				if _, err := domain.ParseFormats(rf.formats); err != nil {
					return err
				}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, sess, rf)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&gf.configPath, "config", "", "Config file (default ~/.gpa/config.yaml or $GPA_CONFIG)")
	pf.BoolVarP(&gf.verbose, "verbose", "v", false, "Enable debug logging")
	pf.BoolVarP(&gf.quiet, "quiet", "q", false, "Only log warnings and errors")

	f := root.Flags()
	f.StringVarP(&rf.inputDir, "input-dir", "i", "", "Directory containing PDF files (default from config or $INPUT_DIR)")
	f.StringVarP(&rf.outputDir, "output-dir", "o", "", "Directory for exported results (default from config or $OUTPUT_DIR)")
	f.StringVarP(&rf.model, "model-name", "m", "", "Gemini model name (default from config or $MODEL_NAME)")
	f.IntVarP(&rf.maxDocs, "max-docs", "n", 0, "Maximum number of documents to process (0 = all)")
	f.StringVarP(&rf.filter, "filter", "F", "", "Glob pattern matched against file names, e.g. 'report*.pdf'")
	f.StringSliceVarP(&rf.formats, "format", "f", nil, "Export formats: csv, json, jsonl, excel (repeatable or comma separated; default csv,jsonl)")
	f.BoolVar(&rf.noCache, "no-cache", false, "Ignore and do not update the result cache")
	f.BoolVar(&rf.clearCache, "clear-cache", false, "Clear the result cache and exit")
	f.BoolVar(&rf.noProgress, "no-progress", false, "Disable the progress display")
	f.BoolVar(&rf.strict, "strict", false, "Exit non-zero when any document fails")

	root.AddCommand(
		commands.NewCacheCommand(env),
		commands.NewHistoryCommand(env),
		commands.NewDoctorCommand(env),
		commands.NewConfigCommand(env),
		commands.NewVersionCommand(),
	)
	return root, sess
}

func runPipeline(cmd *cobra.Command, sess *session, rf runFlags) error {
	ctx := cmd.Context()
	container, err := sess.Container(ctx)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if rf.clearCache {
		if err := container.CacheStore.Clear(); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
		fmt.Fprintln(out, commands.MsgCacheCleared)
		return nil
	}

	if err := appconfig.Validate(container.Config); err != nil {
		return domain.ConfigError("validate config", err)
	}

	var formats []domain.ExportFormat
	if len(rf.formats) > 0 {
		formats, err = domain.ParseFormats(rf.formats)
		if err != nil {
			return err
		}
	}

	svc := container.AnalyzeService
	if !rf.noProgress && !sess.flags.quiet {
		svc.Progress = NewSpinner(sess.opts.Stderr)
	}

	report, err := svc.Run(ctx, domain.RunRequest{
		InputDir:  rf.inputDir,
		OutputDir: rf.outputDir,
		Model:     rf.model,
		MaxDocs:   rf.maxDocs,
		Filter:    rf.filter,
		Formats:   formats,
		UseCache:  !rf.noCache,
	})
	if err != nil {
		return err
	}

	if !sess.flags.quiet {
		RenderReport(out, report)
	}
	if rf.strict && report.HasFailures() {
		return ErrRunHadFailures
	}
	return nil
}
