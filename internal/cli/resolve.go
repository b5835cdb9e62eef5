package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/serdegraph/pkg/errors"
	"github.com/matzehuels/serdegraph/pkg/resolve"
)

// resolveCommand creates the resolve command, which explains how one field
// reference resolves.
func (c *CLI) resolveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <model.json> <source> <reference>",
		Short: "Explain which rule resolves a field reference",
		Long: `Resolve one field reference of a declared type and print every candidate the
resolver tried, in priority order.`,
		Example: `  serdegraph resolve model.json block::Block Header
  serdegraph resolve model.json validator::Info vote::Power`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			rules, err := cfg.LoadRules()
			if err != nil {
				return err
			}
			m, err := c.loadModel(args[0], cfg)
			if err != nil {
				return err
			}
			source, ref := args[1], args[2]
			if !m.Registry.Has(source) {
				printWarning("%s is not declared in %s", source, args[0])
			}

			res, steps, err := resolve.New(m.Registry, rules).Trace(source, ref)
			printTrace(steps)

			var ue *errs.UnresolvedReferenceError
			switch {
			case errors.As(err, &ue):
				printError("%s", ue.Error())
				return reported(err)
			case err != nil:
				return err
			case res.Skipped:
				printInfo("%s is a known foreign type of %s and is skipped", ref, source)
			default:
				printSuccess("%s %s %s", ref, StyleDim.Render(iconArrow), StyleValue.Render(res.Target))
				printKeyValue("Rule", res.Rule.String())
				if rec, ok := m.Registry.Get(res.Target); ok {
					cat := rec.Category()
					printKeyValue("Category", categoryStyle(cat).Render(cat.String()))
				}
			}
			return nil
		},
	}
	return cmd
}

// printTrace prints one line per candidate: found candidates are marked
// with a check, misses are dimmed.
func printTrace(steps []resolve.Step) {
	for _, s := range steps {
		rule := fmt.Sprintf("%-17s", s.Rule)
		switch {
		case s.Rule == resolve.RuleSkip:
			fmt.Println("  " + styleIconInfo.Render(iconInfo) + " " + StyleDim.Render(rule) + " skip rule")
		case s.Found:
			fmt.Println("  " + styleIconSuccess.Render(iconSuccess) + " " + StyleDim.Render(rule) + " " + StyleValue.Render(s.Candidate))
		default:
			fmt.Println("  " + StyleDim.Render("· "+rule+" "+s.Candidate))
		}
	}
}
