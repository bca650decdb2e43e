// Package cli implements the oncopurpose command-line interface: local
// corpus search, drug scoring, and dataset statistics without a running
// server.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/trovesx/OncoPurpose/internal/config"
	"github.com/trovesx/OncoPurpose/internal/corpus"
	"github.com/trovesx/OncoPurpose/internal/infrastructure/monitoring/logging"
	"github.com/trovesx/OncoPurpose/internal/scoring"
	"github.com/trovesx/OncoPurpose/internal/search"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// rootOptions holds the global flags shared by every subcommand.
type rootOptions struct {
	configPath string
	corpusDir  string
	output     string
	noColor    bool
}

// env carries the lazily initialized dependencies through the command tree.
type env struct {
	opts   *rootOptions
	cfg    *config.Config
	idx    *corpus.Index
	engine *search.Engine
	scorer *scoring.Scorer
	log    logging.Logger
	out    io.Writer
}

// NewRootCommand builds the oncopurpose command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}
	e := &env{opts: opts, out: os.Stdout}

	root := &cobra.Command{
		Use:           "oncopurpose",
		Short:         "Drug repurposing search and scoring for oncology",
		Version:       fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if opts.noColor {
				color.NoColor = true
			}
			e.out = cmd.OutOrStdout()
			return e.init()
		},
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to config file")
	root.PersistentFlags().StringVar(&opts.corpusDir, "corpus-dir", "", "override corpus data directory")
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", "table", "output format: table or json")
	root.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	root.AddCommand(newSearchCmd(e))
	root.AddCommand(newScoreCmd(e))
	root.AddCommand(newStatsCmd(e))

	return root
}

// init loads configuration and the corpus once per invocation.
func (e *env) init() error {
	if e.idx != nil {
		return nil
	}

	cfg, err := config.Load(e.opts.configPath)
	if err != nil {
		return err
	}
	if e.opts.corpusDir != "" {
		cfg.Corpus.Dir = e.opts.corpusDir
	}
	e.cfg = cfg

	// The CLI stays quiet unless something goes wrong.
	e.log = logging.NewNopLogger()

	loaded, err := corpus.NewLoader(cfg.Corpus.Dir, e.log).Load()
	if err != nil {
		return err
	}
	e.idx = corpus.BuildIndex(loaded)
	e.scorer = scoring.New()
	e.engine = search.New(e.idx, e.scorer, e.log)
	return nil
}

// printJSON writes the value as indented JSON.
func (e *env) printJSON(v interface{}) error {
	enc := json.NewEncoder(e.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Execute runs the CLI.
func Execute() error {
	return NewRootCommand().Execute()
}
