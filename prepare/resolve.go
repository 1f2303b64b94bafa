package prepare

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/graphql-cli/graphql-cli-prepare/config"
)

// ResolveError reports a setting that could not be determined from the
// run arguments or the project configuration.
type ResolveError struct {
	Project  string
	Category string
	Hint     string
}

func (e *ResolveError) Error() string {
	msg := fmt.Sprintf("prepare: project %s: %s cannot be determined", e.Project, e.Category)
	if e.Hint != "" {
		msg += ". " + e.Hint
	}
	return msg
}

// SchemaNotFoundError reports a resolved schema path with no file behind it.
type SchemaNotFoundError struct {
	Project string
	Path    string
	Hint    string
}

func (e *SchemaNotFoundError) Error() string {
	msg := fmt.Sprintf("prepare: project %s: schema not found at %s", e.Project, e.Path)
	if e.Hint != "" {
		msg += ". " + e.Hint
	}
	return msg
}

// resolver applies the fixed precedence order for paths and generator
// names. It is a pure function of the project state and run arguments,
// except for the output directory check.
type resolver struct {
	fs       afero.Fs
	reporter Reporter
}

// candidate is one entry of an ordered lookup chain. The first
// candidate with a value wins; a warning attached to the winner is
// surfaced through the reporter.
type candidate struct {
	value      string
	warn       string
	fromBundle bool
}

func (r *resolver) first(cands ...candidate) (candidate, bool) {
	for _, c := range cands {
		if c.value == "" {
			continue
		}
		if c.warn != "" {
			r.reporter.Warn(c.warn)
		}
		return c, true
	}
	return candidate{}, false
}

// deprecatedString reads a deprecated string-valued extension key.
func deprecatedString(p *config.Project, oldKey, newKey string) candidate {
	v, ok := p.ExtensionString(oldKey)
	if !ok {
		return candidate{}
	}
	return candidate{value: v, warn: deprecationWarning(p, oldKey, newKey)}
}

func deprecatedField(p *config.Project, oldKey, field, newKey string) candidate {
	v, ok := p.ExtensionField(oldKey, field)
	if !ok {
		return candidate{}
	}
	return candidate{value: v, warn: deprecationWarning(p, oldKey, newKey)}
}

func deprecationWarning(p *config.Project, oldKey, newKey string) string {
	return fmt.Sprintf("Project %s uses deprecated extension %q; run with --save to migrate it to %q",
		p.Name, oldKey, newKey)
}

// bundleInput resolves the schema file to flatten: always the project's
// declared schemaPath.
func (r *resolver) bundleInput(p *config.Project) (string, error) {
	if p.SchemaPath == "" {
		return "", &ResolveError{
			Project:  p.Name,
			Category: "input schema",
			Hint:     "Set schemaPath in your .graphqlconfig",
		}
	}

	return r.checkSchema(p, candidate{value: p.SchemaPath})
}

// bindingInput resolves the schema to generate bindings from,
// preferring a bundle produced earlier in this run.
func (r *resolver) bindingInput(p *config.Project, bundleOutput string) (string, error) {
	c, ok := r.first(
		candidate{value: bundleOutput, fromBundle: true},
		bundleSetting(p),
		candidate{value: p.SchemaPath},
	)
	if !ok {
		return "", &ResolveError{
			Project:  p.Name,
			Category: "input schema",
			Hint:     "Set schemaPath in your .graphqlconfig or run with --bundle",
		}
	}

	return r.checkSchema(p, c)
}

func bundleSetting(p *config.Project) candidate {
	if v, ok := p.ExtensionString(config.BundleExtension); ok {
		return candidate{value: v, fromBundle: true}
	}

	c := deprecatedString(p, config.DeprecatedBundleExtension, config.BundleExtension)
	c.fromBundle = c.value != ""
	return c
}

func (r *resolver) checkSchema(p *config.Project, c candidate) (string, error) {
	exists, err := afero.Exists(r.fs, c.value)
	if err != nil {
		return "", err
	}
	if exists {
		return c.value, nil
	}

	serr := &SchemaNotFoundError{Project: p.Name, Path: c.value}
	if c.fromBundle {
		serr.Hint = "Run with --bundle first to produce it"
	}
	return "", serr
}

// generator resolves the binding generator name.
func (r *resolver) generator(p *config.Project, opts Options) (string, error) {
	v, _ := p.ExtensionField(config.BindingExtension, "generator")

	c, ok := r.first(
		candidate{value: opts.Generator},
		candidate{value: v},
		deprecatedField(p, config.DeprecatedBindingExtension, "generator", config.BindingExtension),
	)
	if !ok {
		return "", &ResolveError{
			Project:  p.Name,
			Category: "generator",
			Hint:     "No existing configuration found and no --generator specified",
		}
	}
	return c.value, nil
}

// bundleOutput resolves where the flattened schema is written.
func (r *resolver) bundleOutput(p *config.Project, opts Options) (string, error) {
	existing, _ := p.ExtensionString(config.BundleExtension)

	c, ok := r.first(
		candidate{value: outputOverride(p, opts, "graphql")},
		candidate{value: existing},
		deprecatedString(p, config.DeprecatedBundleExtension, config.BundleExtension),
	)
	if !ok {
		return "", &ResolveError{
			Project:  p.Name,
			Category: "bundle output path",
			Hint:     "No existing configuration found and no --output specified",
		}
	}

	return c.value, r.ensureDir(c.value)
}

// bindingOutput resolves where generated binding source is written. The
// file extension follows from the generator name.
func (r *resolver) bindingOutput(p *config.Project, opts Options, generator string) (string, error) {
	existing, _ := p.ExtensionField(config.BindingExtension, "output")

	c, ok := r.first(
		candidate{value: outputOverride(p, opts, bindingExtension(generator))},
		candidate{value: existing},
		deprecatedField(p, config.DeprecatedBindingExtension, "output", config.BindingExtension),
	)
	if !ok {
		return "", &ResolveError{
			Project:  p.Name,
			Category: "binding output path",
			Hint:     "No existing configuration found and no --output specified",
		}
	}

	return c.value, r.ensureDir(c.value)
}

func outputOverride(p *config.Project, opts Options, ext string) string {
	if opts.Output == "" {
		return ""
	}
	return filepath.Join(opts.Output, p.Name+"."+ext)
}

func (r *resolver) ensureDir(path string) error {
	dir := filepath.Dir(path)
	if err := r.fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("prepare: creating output directory %s: %w", dir, err)
	}
	return nil
}

// bindingExtension maps a generator name to its output file extension.
// Generators with a TypeScript suffix produce typed source.
func bindingExtension(generator string) string {
	if strings.HasSuffix(generator, "-ts") {
		return "ts"
	}
	return "js"
}
