package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"github.com/matzehuels/serdegraph/pkg/builder"
	"github.com/matzehuels/serdegraph/pkg/classify"
	"github.com/matzehuels/serdegraph/pkg/config"
	errs "github.com/matzehuels/serdegraph/pkg/errors"
	"github.com/matzehuels/serdegraph/pkg/pipeline"
)

// classifyCommand creates the classify command, which prints the category
// of every public type.
func (c *CLI) classifyCommand() *cobra.Command {
	var (
		category string
		onlyJSON bool
		roots    bool
		noCache  bool
	)

	cmd := &cobra.Command{
		Use:   "classify [model.json]",
		Short: "Print the category of every public type",
		Example: `  serdegraph classify model.json
  serdegraph classify model.json --category green
  serdegraph classify model.json --roots`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("json") {
				cfg.OnlyJSON = onlyJSON
			}
			var filter *classify.Category
			if category != "" {
				cat, err := classify.ParseCategory(category)
				if err != nil {
					return err
				}
				filter = &cat
			}
			path, err := modelPath(args, cfg)
			if err != nil {
				return err
			}

			res, hit, buildErr := c.build(cmd.Context(), path, cfg, noCache)
			if res == nil {
				return buildErr
			}

			nodes := res.Nodes
			if roots {
				if nodes, err = rootNodes(res); err != nil {
					return err
				}
			}
			if filter != nil {
				nodes = slices.DeleteFunc(slices.Clone(nodes), func(n builder.Node) bool {
					return n.Category != *filter
				})
			}

			printSuccess("Classified %s", StyleValue.Render(filepath.Base(path)))
			fmt.Println(statsLine(res.Stats(), hit))
			if len(nodes) == 0 {
				printInfo("No matching types")
			} else {
				fmt.Println(typeTable(nodes))
			}
			return reportUnresolved(path, buildErr)
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "only list types of this category")
	cmd.Flags().BoolVar(&onlyJSON, "json", false, "keep only JSON-serializable types and strong edges")
	cmd.Flags().BoolVar(&roots, "roots", false, "only list types no other type references")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	return cmd
}

// rootNodes returns the public types that no field of another type
// references, in ID order.
func rootNodes(res *builder.Result) ([]builder.Node, error) {
	g, err := res.Graph()
	if err != nil {
		return nil, err
	}
	var out []builder.Node
	for _, src := range g.Sources() {
		if !src.Meta.Bool(builder.MetaPublic) {
			continue
		}
		if n, ok := res.Node(src.ID); ok {
			out = append(out, n)
		}
	}
	return out, nil
}

// build runs load and build for the model at path with the project
// options, through the cache. A non-nil result may come with an
// *errors.UnresolvedReferences.
func (c *CLI) build(ctx context.Context, path string, cfg *config.Config, noCache bool) (*builder.Result, bool, error) {
	rules, err := cfg.LoadRules()
	if err != nil {
		return nil, false, err
	}
	runner, err := c.newRunner(ctx, cfg, noCache)
	if err != nil {
		return nil, false, err
	}
	defer runner.Close()

	opts := pipeline.Options{
		ModelPath:   path,
		StrictImpls: cfg.StrictImpls,
		OnlyJSON:    cfg.OnlyJSON,
		FailFast:    cfg.FailFast,
		Workers:     cfg.Workers,
		Rules:       rules,
		Logger:      c.Logger,
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	raw, err := pipeline.ReadModel(opts)
	if err != nil {
		return nil, false, err
	}

	done := timed(c.Logger)
	res, _, _, hit, err := runner.BuildWithCacheInfo(ctx, raw, opts)
	if res != nil {
		done("classified types", "types", len(res.Nodes), "cached", hit)
	}
	return res, hit, err
}

// reportUnresolved lists unresolved references and marks err as reported.
// Other errors pass through unchanged.
func reportUnresolved(path string, err error) error {
	var unresolved *errs.UnresolvedReferences
	if !errors.As(err, &unresolved) {
		return err
	}
	printWarning("%d unresolved references", len(unresolved.Errs))
	for _, u := range unresolved.Errs {
		printDetail("%s: %s", u.Source, u.Reference)
	}
	first := unresolved.Errs[0]
	printNextStep("Trace a reference", fmt.Sprintf("%s resolve %s %s %s", appName, path, first.Source, first.Reference))
	return reported(err)
}
