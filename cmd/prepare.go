package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/graphql-cli/graphql-cli-prepare/bindgen"
	"github.com/graphql-cli/graphql-cli-prepare/bundle"
	"github.com/graphql-cli/graphql-cli-prepare/config"
	"github.com/graphql-cli/graphql-cli-prepare/prepare"
)

func (c *CommandLine) newPrepareCmd() *baseCmd {
	cmd := &cobra.Command{
		Use:   "graphql-prepare",
		Short: "Bundle schemas and generate bindings for GraphQL projects",
		Long: `graphql-prepare bundles a project's schema imports into one flattened
schema document and generates client-binding source code from it.

Both steps record their output locations in the prepare extensions of
your .graphqlconfig, so later runs can reuse them. When neither
--bundle nor --bindings is given, both steps run.` + c.generatorHelp(),
		Example:       "graphql-prepare --project app --output ./generated --save",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          c.runPrepare,
	}

	cmd.Flags().StringSliceP("project", "p", nil, `Process only the named project. May be specified
multiple times; projects will be processed in the
given order. If not given, every configured
project is processed.`)
	cmd.Flags().StringP("output", "o", "", "Output folder for bundle and binding files")
	cmd.Flags().StringP("generator", "g", "", "Binding generator to use")
	cmd.Flags().Bool("bundle", false, "Flatten schema imports into a single bundle")
	cmd.Flags().Bool("bindings", false, "Generate client bindings from the schema")
	cmd.Flags().Bool("save", false, "Persist output locations into the configuration file")
	cmd.Flags().BoolP("verbose", "v", false, "Output logging")

	return &baseCmd{cmd}
}

func (c *CommandLine) generatorHelp() string {
	if len(c.gens) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n\nBuilt-in generators:\n")
	for _, gc := range c.gens {
		fmt.Fprintf(&b, "\t%s\t%s\n", gc.name, gc.help)
	}
	return b.String()
}

func (c *CommandLine) runPrepare(cmd *cobra.Command, _ []string) error {
	opts, err := prepareOptions(cmd.Flags())
	if err != nil {
		return err
	}

	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			return err
		}
		defer l.Sync()
		zap.ReplaceGlobals(l)
	}

	store := c.store
	if store == nil {
		if store, err = c.openStore(); err != nil {
			return err
		}
	}

	reporter := c.reporter
	if reporter == nil {
		reporter = prepare.ConsoleReporter{Out: cmd.OutOrStdout()}
	}

	o := prepare.New(c.fs, store, bundle.New(c.fs), bindgen.Lookup, reporter)
	return o.Run(cmd.Context(), opts)
}

// openStore discovers and loads the nearest configuration file.
// GRAPHQL_CONFIG short-circuits discovery.
func (c *CommandLine) openStore() (prepare.Store, error) {
	path := os.Getenv("GRAPHQL_CONFIG")
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}

		if path, err = config.Find(c.fs, wd); err != nil {
			return nil, err
		}
	}

	return config.Load(c.fs, path)
}

// prepareOptions maps command line flags onto run arguments.
func prepareOptions(flags *pflag.FlagSet) (opts prepare.Options, err error) {
	if opts.Projects, err = flags.GetStringSlice("project"); err != nil {
		return
	}
	if opts.Output, err = flags.GetString("output"); err != nil {
		return
	}
	if opts.Generator, err = flags.GetString("generator"); err != nil {
		return
	}
	if opts.Bundle, err = flags.GetBool("bundle"); err != nil {
		return
	}
	if opts.Bindings, err = flags.GetBool("bindings"); err != nil {
		return
	}
	opts.Save, err = flags.GetBool("save")
	return
}
