package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// rulesCommand prints the resolver rules in effect as TOML, ready to be
// edited and passed back with --rules.
func (c *CLI) rulesCommand() *cobra.Command {
	var (
		rulesFile string
		bare      bool
	)
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Print the active resolver rules as TOML",
		Example: `  serdegraph rules > rules.toml
  serdegraph rules --rules extra.toml --bare-rules`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("rules") {
				cfg.Rules = rulesFile
			}
			if cmd.Flags().Changed("bare-rules") {
				cfg.BareRules = bare
			}
			rules, err := cfg.LoadRules()
			if err != nil {
				return err
			}
			return rules.Encode(os.Stdout)
		},
	}
	cmd.Flags().StringVarP(&rulesFile, "rules", "r", "", "rules file merged into the built-in rules")
	cmd.Flags().BoolVar(&bare, "bare-rules", false, "start from an empty rule set")
	return cmd
}
