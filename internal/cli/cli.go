// Package cli implements the serdegraph command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/serdegraph/pkg/buildinfo"
	"github.com/matzehuels/serdegraph/pkg/config"
	"github.com/matzehuels/serdegraph/pkg/observability"
	"github.com/matzehuels/serdegraph/pkg/pipeline"
	sgio "github.com/matzehuels/serdegraph/pkg/io"
)

const appName = "serdegraph"

// Log levels accepted by New.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	verbose    bool
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level. At debug level pipeline and
// cache events are logged as well.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		hooks := observability.NewLogHooks(c.Logger)
		observability.SetPipelineHooks(hooks)
		observability.SetCacheHooks(hooks)
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "serdegraph classifies serde types and links their fields",
		Long: `serdegraph reads a model of Rust type declarations, classifies every public
type by how it serializes, resolves the types its fields refer to and renders
the result as a draw.io CSV, a Graphviz diagram or a JSON report.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "project file (default: nearest "+config.FileName+")")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if c.verbose {
			c.SetLogLevel(LogDebug)
		}
	}

	root.AddCommand(c.graphCommand())
	root.AddCommand(c.classifyCommand())
	root.AddCommand(c.resolveCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.rulesCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// config loads the project file once: the --config path when given,
// otherwise the nearest serdegraph.toml above the working directory.
func (c *CLI) config() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	var (
		cfg *config.Config
		err error
	)
	if c.configPath != "" {
		cfg, err = config.Load(c.configPath)
	} else {
		cfg, err = config.Discover(".")
	}
	if err != nil {
		return nil, err
	}
	if cfg.Path() != "" {
		c.Logger.Debug("loaded project file", "path", cfg.Path())
	}
	c.cfg = cfg
	return cfg, nil
}

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, cfg *config.Config, noCache bool) (*pipeline.Runner, error) {
	if noCache {
		return pipeline.NewRunner(nil, nil, c.Logger), nil
	}
	store, keyer, err := cfg.OpenCache(ctx)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(store, keyer, c.Logger), nil
}

// modelPath picks the model argument, falling back to the project file.
func modelPath(args []string, cfg *config.Config) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	if cfg.Model != "" {
		return cfg.Model, nil
	}
	return "", fmt.Errorf("no model given: pass a model file or set model in %s", config.FileName)
}

// loadModel reads and freezes the model at path with the project's impl
// policy.
func (c *CLI) loadModel(path string, cfg *config.Config) (*sgio.Model, error) {
	m, err := sgio.ImportModel(path, sgio.ReadOptions{StrictImpls: cfg.StrictImpls})
	if err != nil {
		return nil, err
	}
	for _, id := range m.Orphans {
		c.Logger.Warn("impl for undeclared type dropped", "type", id)
	}
	return m, nil
}

// basePath strips the extension from a model path: "model.json" -> "model".
func basePath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}

// reportedError marks an error whose details a command already printed.
type reportedError struct{ err error }

func (e reportedError) Error() string { return e.err.Error() }
func (e reportedError) Unwrap() error { return e.err }

func reported(err error) error { return reportedError{err} }

// IsReported reports whether err was already shown to the user, so the
// caller only needs to set the exit status.
func IsReported(err error) bool {
	var r reportedError
	return errors.As(err, &r)
}
