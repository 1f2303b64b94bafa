// Package cmd implements the command line interface for graphql-prepare.
package cmd

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/graphql-cli/graphql-cli-prepare/bindgen"
	"github.com/graphql-cli/graphql-cli-prepare/prepare"
)

type option func(*CommandLine)

// WithFS configures the underlying afero.Fs used to read/write files.
func WithFS(fs afero.Fs) option {
	return func(c *CommandLine) {
		c.fs = fs
	}
}

// WithStore overrides configuration store discovery. Mainly a test seam.
func WithStore(s prepare.Store) option {
	return func(c *CommandLine) {
		c.store = s
	}
}

// WithReporter overrides the console status reporter.
func WithReporter(r prepare.Reporter) option {
	return func(c *CommandLine) {
		c.reporter = r
	}
}

type genConfig struct {
	g    bindgen.Generator
	name string
	help string
}

// CommandLine provides a convenient API for adding generators to graphql-prepare.
type CommandLine struct {
	prefix   string
	fs       afero.Fs
	store    prepare.Store
	reporter prepare.Reporter

	cmds []cmder
	gens []genConfig
}

type cmder interface {
	getCommand() *cobra.Command
}

type baseCmd struct {
	*cobra.Command
}

func (cmd *baseCmd) getCommand() *cobra.Command { return cmd.Command }

func (c *CommandLine) addCommand(cmds ...cmder) *CommandLine {
	c.cmds = append(c.cmds, cmds...)
	return c
}

func (c *CommandLine) build() *cobra.Command {
	bindgen.AllowPlugins(c.prefix)
	for _, gc := range c.gens {
		bindgen.Register(gc.name, gc.g)
	}

	cmd := c.newPrepareCmd()
	for _, cmdr := range c.cmds {
		cmd.AddCommand(cmdr.getCommand())
	}

	return cmd.Command
}

// NewCLI returns a CommandLine implementation.
func NewCLI(opts ...option) (c *CommandLine) {
	c = new(CommandLine)

	for _, opt := range opts {
		opt(c)
	}

	if c.fs == nil {
		c.fs = afero.NewOsFs()
	}

	return
}

// AllowPlugins sets the plugin prefix to be used
// when looking up plugin executables.
func (c *CommandLine) AllowPlugins(prefix string) { c.prefix = prefix }

// RegisterGenerator registers a binding generator with the CLI.
func (c *CommandLine) RegisterGenerator(g bindgen.Generator, name, help string) {
	c.gens = append(c.gens, genConfig{
		g:    g,
		name: name,
		help: help,
	})
}

func wrapPanic(err error, stack []byte) error {
	return fmt.Errorf("graphql-prepare: recovered from unexpected panic: %w\n\n%s", err, stack)
}

// Run executes the prepare command.
func (c *CommandLine) Run(args []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			stack := debug.Stack()

			rerr, ok := r.(error)
			if ok {
				err = wrapPanic(rerr, stack)
				return
			}

			err = wrapPanic(fmt.Errorf("%#v", r), stack)
		}
	}()

	cmd := c.addCommand(c.newVersionCmd()).build()

	cmd.SetArgs(args[1:])
	return cmd.Execute()
}
