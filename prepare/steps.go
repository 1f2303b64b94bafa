package prepare

import (
	"context"
	"fmt"

	"github.com/spf13/afero"

	"github.com/graphql-cli/graphql-cli-prepare/config"
)

// runBundle flattens the project schema and writes the result,
// overwriting any previous bundle. The output directory is prepared
// before the flattener runs, so a bad destination never leaves a
// half-written file.
func (o *Orchestrator) runBundle(p *config.Project, opts Options) (BundleFragment, error) {
	input, err := o.res.bundleInput(p)
	if err != nil {
		return BundleFragment{}, err
	}

	output, err := o.res.bundleOutput(p, opts)
	if err != nil {
		return BundleFragment{}, err
	}

	text, err := o.flattener.Flatten(input)
	if err != nil {
		return BundleFragment{}, err
	}

	if err = afero.WriteFile(o.fs, output, []byte(text), 0644); err != nil {
		return BundleFragment{}, fmt.Errorf("prepare: writing bundle %s: %w", output, err)
	}

	return BundleFragment{Output: output}, nil
}

// runBinding generates binding source for the project, reading from the
// bundle produced earlier in this run when there is one. The generator
// is resolved before any file I/O happens.
func (o *Orchestrator) runBinding(ctx context.Context, p *config.Project, opts Options, bundleOutput string) (BindingFragment, error) {
	generator, err := o.res.generator(p, opts)
	if err != nil {
		return BindingFragment{}, err
	}

	output, err := o.res.bindingOutput(p, opts, generator)
	if err != nil {
		return BindingFragment{}, err
	}

	input, err := o.res.bindingInput(p, bundleOutput)
	if err != nil {
		return BindingFragment{}, err
	}

	schema, err := afero.ReadFile(o.fs, input)
	if err != nil {
		return BindingFragment{}, fmt.Errorf("prepare: reading schema %s: %w", input, err)
	}

	g := o.lookup(generator)
	if g == nil {
		return BindingFragment{}, &ResolveError{
			Project:  p.Name,
			Category: "generator",
			Hint:     fmt.Sprintf("No generator named %q is available", generator),
		}
	}

	src, err := g.Generate(ctx, string(schema), nil)
	if err != nil {
		return BindingFragment{}, err
	}

	if err = afero.WriteFile(o.fs, output, []byte(src), 0644); err != nil {
		return BindingFragment{}, fmt.Errorf("prepare: writing bindings %s: %w", output, err)
	}

	return BindingFragment{Output: output, Generator: generator}, nil
}
