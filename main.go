package main

import (
	"fmt"
	"os"

	"github.com/graphql-cli/graphql-cli-prepare/bindgen"
	"github.com/graphql-cli/graphql-cli-prepare/cmd"
)

var cli *cmd.CommandLine

func init() {
	cli = cmd.NewCLI()
	cli.AllowPlugins("graphql-prepare-gen-")

	// Register JavaScript binding generator
	cli.RegisterGenerator(bindgen.JsGenerator{}, "binding-js",
		"Generate a JavaScript client binding.")

	// Register TypeScript binding generator
	cli.RegisterGenerator(bindgen.TsGenerator{}, "binding-ts",
		"Generate a typed TypeScript client binding.")
}

func main() {
	if err := cli.Run(os.Args); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
