// Package bundle flattens a schema file and its imports into one
// self-contained schema document.
//
// Imports are declared with comment directives:
//
//	# import * from "./types.graphql"
//	# import User, Post from "./models.graphql"
//
// A wildcard import merges every definition of the target file. A named
// import merges the named definitions plus the transitive closure of
// types they reference.
package bundle

import (
	"bytes"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/afero"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"
	"github.com/vektah/gqlparser/v2/parser"
	"go.uber.org/zap"
)

var importLine = regexp.MustCompile(`^#\s*import\s+(\*|[\w\s,]+?)\s+from\s+["']([^"']+)["']\s*$`)

// Flattener resolves schema import directives against a filesystem.
type Flattener struct {
	fs  afero.Fs
	log *zap.Logger
}

// New returns a Flattener reading through fs.
func New(fs afero.Fs) *Flattener {
	return &Flattener{
		fs:  fs,
		log: zap.L().Named("bundle"),
	}
}

// Flatten resolves all imports of the schema file, transitively, and
// returns a single schema text containing every reachable definition.
func (f *Flattener) Flatten(schemaPath string) (string, error) {
	root, err := f.load(schemaPath, make(map[string]*module))
	if err != nil {
		return "", err
	}

	c := &collector{
		defs:       make(map[string]bool),
		directives: make(map[string]bool),
		wildcarded: make(map[*module]bool),
	}
	if err = c.wildcard(root); err != nil {
		return "", err
	}
	c.closure()

	out := &ast.SchemaDocument{
		Schema:          root.doc.Schema,
		SchemaExtension: root.doc.SchemaExtension,
		Definitions:     c.out,
		Directives:      c.outDirectives,
	}

	var buf bytes.Buffer
	formatter.NewFormatter(&buf).FormatSchemaDocument(out)

	f.log.Debug("flattened schema",
		zap.String("path", schemaPath),
		zap.Int("definitions", len(c.out)))

	return buf.String(), nil
}

type importStmt struct {
	names []string // nil means wildcard
	path  string   // resolved relative to the importing file
}

type module struct {
	path    string
	doc     *ast.SchemaDocument
	imports []importStmt

	// resolved import targets, parallel to imports
	targets []*module
}

// load parses the file at path and, recursively, every file it imports.
// Cycles are broken through the seen map.
func (f *Flattener) load(path string, seen map[string]*module) (*module, error) {
	path = filepath.Clean(path)
	if m, ok := seen[path]; ok {
		return m, nil
	}

	b, err := afero.ReadFile(f.fs, path)
	if err != nil {
		return nil, fmt.Errorf("bundle: reading %s: %w", path, err)
	}

	doc, err := parser.ParseSchema(&ast.Source{Name: path, Input: string(b)})
	if err != nil {
		return nil, fmt.Errorf("bundle: parsing %s: %w", path, err)
	}

	m := &module{path: path, doc: doc, imports: parseImports(path, string(b))}
	seen[path] = m

	for _, i := range m.imports {
		t, err := f.load(i.path, seen)
		if err != nil {
			return nil, err
		}
		m.targets = append(m.targets, t)
	}

	return m, nil
}

func parseImports(path, src string) (imports []importStmt) {
	dir := filepath.Dir(path)

	for _, line := range strings.Split(src, "\n") {
		match := importLine.FindStringSubmatch(strings.TrimSpace(line))
		if match == nil {
			continue
		}

		stmt := importStmt{path: filepath.Clean(filepath.Join(dir, match[2]))}
		if match[1] != "*" {
			for _, name := range strings.Split(match[1], ",") {
				stmt.names = append(stmt.names, strings.TrimSpace(name))
			}
		}

		imports = append(imports, stmt)
	}
	return
}

// collector accumulates definitions in discovery order. First
// definition of a name wins.
type collector struct {
	out           ast.DefinitionList
	outDirectives ast.DirectiveDefinitionList

	defs       map[string]bool
	directives map[string]bool
	wildcarded map[*module]bool

	// every module seen, in load order; used by closure lookups
	mods []*module
}

func (c *collector) add(def *ast.Definition) {
	if c.defs[def.Name] {
		return
	}
	c.defs[def.Name] = true
	c.out = append(c.out, def)
}

func (c *collector) addDirective(def *ast.DirectiveDefinition) {
	if c.directives[def.Name] {
		return
	}
	c.directives[def.Name] = true
	c.outDirectives = append(c.outDirectives, def)
}

// wildcard merges every definition of m, then follows m's imports.
func (c *collector) wildcard(m *module) error {
	if c.wildcarded[m] {
		return nil
	}
	c.wildcarded[m] = true
	c.trackOne(m)

	for _, def := range m.doc.Definitions {
		c.add(def)
	}
	for _, def := range m.doc.Directives {
		c.addDirective(def)
	}

	for i, stmt := range m.imports {
		target := m.targets[i]
		if stmt.names == nil {
			if err := c.wildcard(target); err != nil {
				return err
			}
			continue
		}

		for _, name := range stmt.names {
			def := lookup(target, name, make(map[*module]bool))
			if def == nil {
				return fmt.Errorf("bundle: %s: could not find %q in %s", m.path, name, target.path)
			}
			c.add(def)
		}
		c.track(target)
	}

	return nil
}

// track records a module and its imports for closure lookups without
// merging them.
func (c *collector) track(m *module) {
	if !c.trackOne(m) {
		return
	}

	for _, t := range m.targets {
		c.track(t)
	}
}

func (c *collector) trackOne(m *module) bool {
	for _, known := range c.mods {
		if known == m {
			return false
		}
	}
	c.mods = append(c.mods, m)
	return true
}

// lookup finds a definition by name in m or anything m imports.
func lookup(m *module, name string, seen map[*module]bool) *ast.Definition {
	if seen[m] {
		return nil
	}
	seen[m] = true

	for _, def := range m.doc.Definitions {
		if def.Name == name {
			return def
		}
	}
	for _, t := range m.targets {
		if def := lookup(t, name, seen); def != nil {
			return def
		}
	}
	return nil
}

// closure pulls in types referenced by collected definitions until the
// output is self-contained. Unresolvable names are left for the schema
// consumer to report.
func (c *collector) closure() {
	for changed := true; changed; {
		changed = false

		for _, name := range c.missing() {
			for _, m := range c.mods {
				if def := ownDef(m, name); def != nil {
					c.add(def)
					changed = true
					break
				}
			}
		}

		for _, name := range c.missingDirectives() {
			for _, m := range c.mods {
				if def := ownDirective(m, name); def != nil {
					c.addDirective(def)
					changed = true
					break
				}
			}
		}
	}
}

func ownDef(m *module, name string) *ast.Definition {
	for _, def := range m.doc.Definitions {
		if def.Name == name {
			return def
		}
	}
	return nil
}

func ownDirective(m *module, name string) *ast.DirectiveDefinition {
	for _, def := range m.doc.Directives {
		if def.Name == name {
			return def
		}
	}
	return nil
}

func (c *collector) missing() (names []string) {
	seen := make(map[string]bool)

	appendName := func(name string) {
		if name == "" || builtinTypes[name] || c.defs[name] || seen[name] {
			return
		}
		seen[name] = true
		names = append(names, name)
	}

	for _, def := range c.out {
		for _, f := range def.Fields {
			appendName(namedType(f.Type))
			for _, arg := range f.Arguments {
				appendName(namedType(arg.Type))
			}
		}
		for _, name := range def.Interfaces {
			appendName(name)
		}
		for _, name := range def.Types {
			appendName(name)
		}
	}
	for _, def := range c.outDirectives {
		for _, arg := range def.Arguments {
			appendName(namedType(arg.Type))
		}
	}
	return
}

func (c *collector) missingDirectives() (names []string) {
	seen := make(map[string]bool)

	appendName := func(name string) {
		if builtinDirectives[name] || c.directives[name] || seen[name] {
			return
		}
		seen[name] = true
		names = append(names, name)
	}

	for _, def := range c.out {
		for _, d := range def.Directives {
			appendName(d.Name)
		}
		for _, f := range def.Fields {
			for _, d := range f.Directives {
				appendName(d.Name)
			}
		}
	}
	return
}

func namedType(t *ast.Type) string {
	for t.Elem != nil {
		t = t.Elem
	}
	return t.NamedType
}

var builtinTypes = map[string]bool{
	"String":  true,
	"Int":     true,
	"Float":   true,
	"Boolean": true,
	"ID":      true,
}

var builtinDirectives = map[string]bool{
	"skip":        true,
	"include":     true,
	"deprecated":  true,
	"specifiedBy": true,
}
