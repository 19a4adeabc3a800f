package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"seqview/internal/config"
	"seqview/internal/loader"
	"seqview/internal/logging"
	"seqview/internal/ncbi"
	"seqview/internal/render"
)

// version is the program version. It can be overridden at build time with -ldflags "-X main.version=..."
var version = "0.1.0"

type options struct {
	configPath string
	format     string
	foldCase   bool
	noColor    bool
	verbose    bool
}

// app carries what every subcommand needs once flags and config are merged.
type app struct {
	cfg    *config.Config
	logger *log.Logger
	out    io.Writer
	client *ncbi.Client
}

func newApp(opts *options, cmd *cobra.Command) (*app, func() error, error) {
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	// flags override config when provided
	if cmd.Flags().Changed("format") {
		cfg.OutputFormat = opts.format
	}
	if opts.foldCase {
		cfg.FoldExtensionCase = true
	}

	logger, closeLog := logging.New(logging.Options{
		Prefix:  "seqview",
		Level:   cfg.LogLevel,
		Verbose: opts.verbose,
		LogFile: cfg.LogFile,
		Out:     cmd.ErrOrStderr(),
	})
	logger.Debug("loaded config", "log_file", cfg.LogFile, "log_level", cfg.LogLevel,
		"output_format", cfg.OutputFormat, "fold_extension_case", cfg.FoldExtensionCase)

	client := ncbi.NewClient(cfg.NcbiApiKey)
	if cfg.NcbiBaseURL != "" {
		client.BaseURL = cfg.NcbiBaseURL
	}
	if cfg.NcbiCacheTTLSecs > 0 {
		client.TTL = time.Duration(cfg.NcbiCacheTTLSecs) * time.Second
	}
	return &app{cfg: cfg, logger: logger, out: cmd.OutOrStdout(), client: client}, closeLog, nil
}

func (a *app) loader() *loader.Loader {
	return loader.New(loader.Options{
		Logger:   a.logger,
		FoldCase: a.cfg.FoldExtensionCase,
		MaxBytes: a.cfg.MaxUploadBytes,
	})
}

func (a *app) renderer(noColor bool) (render.Renderer, error) {
	return render.ByName(a.cfg.OutputFormat, a.out, noColor)
}

func newParseCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <file>",
		Short: "Split a FASTA or GenBank file into labeled sections",
		Long: `Parse reads a file and prints its sections.

The parser is chosen from the file extension: fasta/fa use the FASTA parser,
genbank/gb/gbk the GenBank parser, and anything else is printed unchanged as a
single section named after the file. Extensions are case-sensitive unless
--fold-case is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeLog, err := newApp(opts, cmd)
			if err != nil {
				return err
			}
			defer closeLog()

			r, err := a.renderer(opts.noColor)
			if err != nil {
				return err
			}
			ld := a.loader()
			res, err := ld.LoadFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			a.logger.Info("parsed file", "path", args[0], "kind", res.Kind, "sections", len(res.Sections))
			return ld.Render(cmd.Context(), r, res)
		},
	}
}

func newFetchCmd(opts *options) *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "fetch <accession>",
		Short: "Download a GenBank record from NCBI and print its sections",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeLog, err := newApp(opts, cmd)
			if err != nil {
				return err
			}
			defer closeLog()

			r, err := a.renderer(opts.noColor)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			start := time.Now()
			text, err := a.client.FetchGenBank(ctx, args[0])
			if err != nil {
				return err
			}
			a.logger.Debug("fetched record", "accession", args[0], "bytes", len(text), "duration_ms", time.Since(start).Milliseconds())

			ld := a.loader()
			res, err := ld.Parse(args[0]+".gb", text)
			if err != nil {
				return err
			}
			return ld.Render(ctx, r, res)
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "overall timeout for the NCBI request")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "seqview", version)
		},
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "seqview",
		Short:         "Split sequence files into labeled sections",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "path to config.json or config.yaml (optional)")
	pf.StringVarP(&opts.format, "format", "f", config.DefaultOutputFormat, "output format: text, json or yaml")
	pf.BoolVar(&opts.foldCase, "fold-case", false, "match file extensions case-insensitively")
	pf.BoolVar(&opts.noColor, "no-color", false, "disable colored text output")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose (debug) logging")

	root.AddCommand(newParseCmd(opts), newFetchCmd(opts), newVersionCmd())
	return root
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
