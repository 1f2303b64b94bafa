// Package bindgen contains generators for producing client binding
// source code from a GraphQL schema.
package bindgen

import (
	"context"
	"fmt"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
)

// Generator converts a schema text into client binding source.
type Generator interface {
	// Generate handles converting a GraphQL schema to binding source code.
	Generate(ctx context.Context, schema string, opts map[string]interface{}) (string, error)
}

// GeneratorError represents an error from a generator.
type GeneratorError struct {
	// GenName is the generator name which encountered a problem.
	GenName string

	// Msg is any message the generator wants to provide back to the caller.
	Msg string
}

func (e GeneratorError) Error() string {
	return fmt.Sprintf("bindgen: generator error occurred in %s: %s", e.GenName, e.Msg)
}

var (
	gens         = make(map[string]Generator)
	pluginPrefix string
)

// Register registers a generator under the given name.
func Register(name string, g Generator) { gens[name] = g }

// AllowPlugins sets the plugin prefix to be used
// when looking up plugin executables.
func AllowPlugins(prefix string) { pluginPrefix = prefix }

// Lookup returns the generator registered under name. Unregistered
// names resolve to an external plugin when a plugin prefix was allowed.
func Lookup(name string) Generator {
	if g, ok := gens[name]; ok {
		return g
	}
	if pluginPrefix != "" {
		return &PluginGenerator{Name: name, Prefix: pluginPrefix}
	}
	return nil
}

func loadSchema(name, schema string) (*ast.Schema, error) {
	s, err := gqlparser.LoadSchema(&ast.Source{Name: "schema.graphql", Input: schema})
	if err != nil {
		return nil, GeneratorError{GenName: name, Msg: err.Error()}
	}
	return s, nil
}

// rootFields returns the fields of an operation root type, meta fields
// excluded, or nil when the root is not defined.
func rootFields(root *ast.Definition) (fields []*ast.FieldDefinition) {
	if root == nil {
		return nil
	}

	for _, f := range root.Fields {
		if len(f.Name) >= 2 && f.Name[:2] == "__" {
			continue
		}
		fields = append(fields, f)
	}
	return
}
