// Package prepare implements bundling and binding generation for
// configured projects.
//
// For every targeted project it can flatten the project's schema
// imports into a single bundle, generate client binding source from a
// schema, and persist the output locations back into the project's
// configuration extensions.
package prepare

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/graphql-cli/graphql-cli-prepare/bindgen"
	"github.com/graphql-cli/graphql-cli-prepare/config"
)

// Options are the caller-supplied arguments for a single run.
// They are immutable for the duration of the run.
type Options struct {
	// Projects restricts the run to the named projects. Empty means
	// every project in the configuration store.
	Projects []string

	// Output overrides the output folder for bundle and binding files.
	Output string

	// Generator overrides the binding generator name.
	Generator string

	// Bundle and Bindings select the steps to run. Neither set means both.
	Bundle   bool
	Bindings bool

	// Save persists resolved paths back to the configuration store.
	Save bool
}

// BundleFragment is the configuration fragment produced by the bundle step.
type BundleFragment struct {
	Output string
}

// BindingFragment is the configuration fragment produced by the binding step.
type BindingFragment struct {
	Output    string
	Generator string
}

// Store is the host CLI's project configuration store.
type Store interface {
	Path() string
	Projects() []*config.Project
	Project(name string) (*config.Project, error)
	SaveConfig(p *config.Project) error
}

// Flattener produces one self-contained schema text from a schema file,
// resolving its import directives transitively.
type Flattener interface {
	Flatten(schemaPath string) (string, error)
}

// Orchestrator runs the bundle and binding steps over a set of projects.
type Orchestrator struct {
	fs        afero.Fs
	store     Store
	flattener Flattener
	lookup    func(name string) bindgen.Generator
	reporter  Reporter

	res *resolver
	log *zap.Logger
}

// New returns an Orchestrator. A nil reporter disables status output.
func New(fs afero.Fs, store Store, flattener Flattener, lookup func(string) bindgen.Generator, reporter Reporter) *Orchestrator {
	if reporter == nil {
		reporter = NopReporter{}
	}

	return &Orchestrator{
		fs:        fs,
		store:     store,
		flattener: flattener,
		lookup:    lookup,
		reporter:  reporter,
		res:       &resolver{fs: fs, reporter: reporter},
		log:       zap.L().Named("prepare"),
	}
}

// Run processes every targeted project in store order. The first
// failure aborts the whole run.
func (o *Orchestrator) Run(ctx context.Context, opts Options) error {
	bundle, bindings := opts.Bundle, opts.Bindings
	if !bundle && !bindings {
		bundle, bindings = true, true
	}

	projects, err := o.selectProjects(opts)
	if err != nil {
		return err
	}

	explicit := len(opts.Projects) > 0
	for _, p := range projects {
		o.log.Debug("processing project", zap.String("project", p.Name))

		// transient per-project state, reset before each project
		bundleOutput := ""

		if bundle {
			switch {
			case explicit || bundleConfigured(p):
				o.reporter.Start(fmt.Sprintf("Bundling schema for project %s", p.Name))
				frag, err := o.runBundle(p, opts)
				if err != nil {
					return err
				}

				bundleOutput = frag.Output
				o.mergeBundle(p, frag)
				o.reporter.Succeed(fmt.Sprintf("Bundled schema written to %s", frag.Output))
			default:
				o.reporter.Info(fmt.Sprintf("Bundling skipped for project %s: no bundle configuration found", p.Name))
			}
		}

		if bindings {
			switch {
			case explicit || bindingConfigured(p):
				o.reporter.Start(fmt.Sprintf("Generating bindings for project %s", p.Name))
				frag, err := o.runBinding(ctx, p, opts, bundleOutput)
				if err != nil {
					return err
				}

				o.mergeBinding(p, frag)
				o.reporter.Succeed(fmt.Sprintf("Bindings written to %s", frag.Output))
			default:
				o.reporter.Info(fmt.Sprintf("Bindings skipped for project %s: no binding configuration found", p.Name))
			}
		}

		if opts.Save {
			if err := o.save(p); err != nil {
				return err
			}
			o.reporter.Info(fmt.Sprintf("Configuration saved to %s", o.store.Path()))
		}
	}

	return nil
}

func (o *Orchestrator) selectProjects(opts Options) ([]*config.Project, error) {
	if len(opts.Projects) > 0 {
		projects := make([]*config.Project, len(opts.Projects))
		for i, name := range opts.Projects {
			p, err := o.store.Project(name)
			if err != nil {
				return nil, err
			}
			projects[i] = p
		}
		return projects, nil
	}

	projects := o.store.Projects()
	if len(projects) == 0 {
		return nil, fmt.Errorf("prepare: no projects defined in %s", o.store.Path())
	}
	return projects, nil
}

// bundleConfigured reports whether the project already carries a bundle
// setting, which gates the bundle step when no explicit project was given.
func bundleConfigured(p *config.Project) bool {
	return p.HasExtension(config.BundleExtension) || p.HasExtension(config.DeprecatedBundleExtension)
}

func bindingConfigured(p *config.Project) bool {
	return p.HasExtension(config.BindingExtension) || p.HasExtension(config.DeprecatedBindingExtension)
}

// The orchestrator owns the merge: steps return immutable fragments and
// never touch project state themselves.
func (o *Orchestrator) mergeBundle(p *config.Project, frag BundleFragment) {
	p.SetExtension(config.BundleExtension, frag.Output)
}

func (o *Orchestrator) mergeBinding(p *config.Project, frag BindingFragment) {
	p.SetExtension(config.BindingExtension, map[string]interface{}{
		"output":    frag.Output,
		"generator": frag.Generator,
	})
}

// save persists the project configuration, migrating any deprecated
// extension keys away.
func (o *Orchestrator) save(p *config.Project) error {
	p.RemoveExtension(config.DeprecatedBundleExtension)
	p.RemoveExtension(config.DeprecatedBindingExtension)
	return o.store.SaveConfig(p)
}
