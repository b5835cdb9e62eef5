package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/serdegraph/pkg/config"
	"github.com/matzehuels/serdegraph/pkg/pipeline"
)

// graphFlags holds flag values for the graph command.
type graphFlags struct {
	output      string
	formats     string
	rules       string
	bareRules   bool
	onlyJSON    bool
	noHeader    bool
	failFast    bool
	strictImpls bool
	workers     int
	noCache     bool
	refresh     bool
	title       string
	namespace   string
	rankDir     string
	detailed    bool
}

// graphCommand creates the graph command: the full load, build and render
// run.
func (c *CLI) graphCommand() *cobra.Command {
	var flags graphFlags

	cmd := &cobra.Command{
		Use:   "graph [model.json]",
		Short: "Classify a model and render its type graph",
		Long: `Classify every public type of a serde model, link the types its fields refer
to and write the result.

Formats:
  csv   draw.io CSV import (default)
  dot   Graphviz source
  svg   Graphviz SVG
  png   Graphviz PNG
  json  classification report

Each format is written to <output>.<format>. The output base defaults to the
model path without its extension.`,
		Example: `  serdegraph graph model.json
  serdegraph graph model.json -f csv,svg -o docs/types
  serdegraph graph model.json --json --rules extra-rules.toml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			applyGraphFlags(cmd, &flags, cfg)
			path, err := modelPath(args, cfg)
			if err != nil {
				return err
			}
			return c.runGraph(cmd.Context(), path, cfg, flags)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.output, "output", "o", "", "output base path (default: model path without extension)")
	f.StringVarP(&flags.formats, "format", "f", "", "comma-separated formats: csv, dot, svg, png, json")
	f.StringVarP(&flags.rules, "rules", "r", "", "rules file merged into the built-in rules")
	f.BoolVar(&flags.bareRules, "bare-rules", false, "start from an empty rule set instead of the built-in one")
	f.BoolVar(&flags.onlyJSON, "json", false, "keep only JSON-serializable types and strong edges")
	f.BoolVar(&flags.noHeader, "no-header", false, "omit the draw.io configuration header")
	f.BoolVar(&flags.failFast, "fail-fast", false, "stop at the first unresolved reference")
	f.BoolVar(&flags.strictImpls, "strict-impls", false, "fail on impl blocks for undeclared types")
	f.IntVar(&flags.workers, "workers", 0, "types resolved concurrently (0 or 1: sequential)")
	f.BoolVar(&flags.noCache, "no-cache", false, "disable caching")
	f.BoolVar(&flags.refresh, "refresh", false, "ignore cached results but store new ones")
	f.StringVar(&flags.title, "title", "", "draw.io diagram title")
	f.StringVar(&flags.namespace, "namespace", "", "draw.io namespace")
	f.StringVar(&flags.rankDir, "rankdir", pipeline.DefaultRankDir, "Graphviz rank direction: LR, RL, TB, BT")
	f.BoolVar(&flags.detailed, "detailed", false, "show kind and category in Graphviz labels")

	return cmd
}

// applyGraphFlags fills flags the user did not set from the project file
// and writes set flags back into cfg, so that cfg holds the effective
// values.
func applyGraphFlags(cmd *cobra.Command, flags *graphFlags, cfg *config.Config) {
	changed := cmd.Flags().Changed

	str := func(name string, flag, conf *string) {
		if changed(name) {
			*conf = *flag
		} else if *conf != "" {
			*flag = *conf
		}
	}
	boolean := func(name string, flag, conf *bool) {
		if changed(name) {
			*conf = *flag
		} else {
			*flag = *conf
		}
	}

	str("output", &flags.output, &cfg.Output)
	str("rules", &flags.rules, &cfg.Rules)
	str("title", &flags.title, &cfg.Title)
	str("namespace", &flags.namespace, &cfg.Namespace)
	str("rankdir", &flags.rankDir, &cfg.RankDir)
	boolean("bare-rules", &flags.bareRules, &cfg.BareRules)
	boolean("json", &flags.onlyJSON, &cfg.OnlyJSON)
	boolean("no-header", &flags.noHeader, &cfg.NoHeader)
	boolean("fail-fast", &flags.failFast, &cfg.FailFast)
	boolean("strict-impls", &flags.strictImpls, &cfg.StrictImpls)
	boolean("detailed", &flags.detailed, &cfg.Detailed)

	if changed("workers") {
		cfg.Workers = flags.workers
	} else {
		flags.workers = cfg.Workers
	}
	if !changed("format") && len(cfg.Formats) > 0 {
		flags.formats = strings.Join(cfg.Formats, ",")
	}
}

func (c *CLI) runGraph(ctx context.Context, path string, cfg *config.Config, flags graphFlags) error {
	formats, err := pipeline.ParseFormats(flags.formats)
	if err != nil {
		return err
	}
	rules, err := cfg.LoadRules()
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, cfg, flags.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	spinner := newSpinner(ctx, "Classifying "+filepath.Base(path)+"...")
	spinner.Start()
	res, runErr := runner.Execute(ctx, pipeline.Options{
		ModelPath:   path,
		StrictImpls: flags.strictImpls,
		OnlyJSON:    flags.onlyJSON,
		FailFast:    flags.failFast,
		Workers:     flags.workers,
		Formats:     formats,
		NoHeader:    flags.noHeader,
		Title:       flags.title,
		Namespace:   flags.namespace,
		RankDir:     flags.rankDir,
		Detailed:    flags.detailed,
		Refresh:     flags.refresh,
		Rules:       rules,
	})
	spinner.Stop()

	if runErr != nil && !pipeline.IsUnresolved(runErr) {
		return runErr
	}

	base := flags.output
	if base == "" {
		base = basePath(path)
	}
	written, err := writeArtifacts(base, res.Artifacts)
	if err != nil {
		return err
	}

	stats := res.Build.Stats()
	printSuccess("Classified %s", StyleValue.Render(filepath.Base(path)))
	fmt.Println(statsLine(stats, res.CacheInfo.BuildHit))
	for _, p := range written {
		printFile(p)
	}
	if stats.Types > 0 {
		fmt.Println(categoryTable(stats))
	}
	for _, id := range res.Orphans {
		printDetail("impl for undeclared type %s dropped", id)
	}

	return reportUnresolved(path, runErr)
}

// writeArtifacts writes each artifact to base.<format> in canonical
// format order and returns the written paths.
func writeArtifacts(base string, artifacts map[string][]byte) ([]string, error) {
	if dir := filepath.Dir(base); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
	}
	var written []string
	for _, format := range pipeline.Formats {
		data, ok := artifacts[format]
		if !ok {
			continue
		}
		p := outputPath(base, format)
		if err := os.WriteFile(p, data, 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", p, err)
		}
		written = append(written, p)
	}
	return written, nil
}

// outputPath appends the format extension to base unless base already
// carries it.
func outputPath(base, format string) string {
	if filepath.Ext(base) == "."+format {
		return base
	}
	return base + "." + format
}
