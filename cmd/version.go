package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is version of the current graphql-prepare binary.
// dev refers to a local build. It will be overwritten
// during CI/CD.
var version = "dev"

func (c *CommandLine) newVersionCmd() *baseCmd {
	return &baseCmd{
		Command: &cobra.Command{
			Use:   "version",
			Short: "Print the version",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Printf("graphql-prepare %s\n", version)
			},
		},
	}
}
