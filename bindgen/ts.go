package bindgen

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"text/template"

	"github.com/vektah/gqlparser/v2/ast"
)

// TsGenerator generates a TypeScript client binding: typed interfaces
// for every schema type plus a delegating Binding class whose methods
// carry typed signatures.
type TsGenerator struct{}

var tsTmpl = template.Must(template.New("binding.ts").Parse(`import { Binding as BaseBinding, BindingOptions } from 'graphql-binding'
import { GraphQLResolveInfo } from 'graphql'
{{range .Types}}
{{- if eq .Kind "interface"}}
export interface {{.Name}} {
{{- range .Fields}}
  {{.Name}}: {{.Type}}
{{- end}}
}
{{else}}
export type {{.Name}} = {{.Alias}}
{{end}}
{{- end}}
export class Binding extends BaseBinding {
  constructor({ schema, fragmentReplacements }: BindingOptions) {
    super({ schema, fragmentReplacements })
  }
{{range .Query}}
  {{.Name}} = (args: {{.Type}}, info?: GraphQLResolveInfo | string): Promise<{{.Return}}> =>
    this.delegate('query', '{{.Name}}', args, {}, info)
{{end}}
{{- range .Mutation}}
  {{.Name}} = (args: {{.Type}}, info?: GraphQLResolveInfo | string): Promise<{{.Return}}> =>
    this.delegate('mutation', '{{.Name}}', args, {}, info)
{{end}}
{{- range .Subscription}}
  {{.Name}} = (args: {{.Type}}, infoOrQuery?: GraphQLResolveInfo | string): Promise<AsyncIterator<{{.Return}}>> =>
    this.delegateSubscription('{{.Name}}', args, infoOrQuery)
{{end}}
}
`))

type tsModel struct {
	Types []tsTypeDef

	Query        []tsField
	Mutation     []tsField
	Subscription []tsField
}

type tsTypeDef struct {
	Kind   string // interface or alias
	Name   string
	Fields []tsField
	Alias  string
}

type tsField struct {
	Name   string
	Type   string
	Return string
}

// Generate implements the Generator interface.
func (TsGenerator) Generate(_ context.Context, schema string, _ map[string]interface{}) (string, error) {
	s, err := loadSchema("binding-ts", schema)
	if err != nil {
		return "", err
	}

	m := tsModel{
		Query:        tsMethods(s.Query),
		Mutation:     tsMethods(s.Mutation),
		Subscription: tsMethods(s.Subscription),
		Types:        tsTypes(s),
	}

	var buf bytes.Buffer
	if err := tsTmpl.Execute(&buf, m); err != nil {
		return "", GeneratorError{GenName: "binding-ts", Msg: err.Error()}
	}
	return buf.String(), nil
}

func tsMethods(root *ast.Definition) (methods []tsField) {
	for _, f := range rootFields(root) {
		methods = append(methods, tsField{
			Name:   f.Name,
			Type:   tsArgs(f.Arguments),
			Return: tsType(f.Type),
		})
	}
	return
}

func tsArgs(args ast.ArgumentDefinitionList) string {
	if len(args) == 0 {
		return "{}"
	}

	parts := make([]string, len(args))
	for i, arg := range args {
		name := arg.Name
		if !arg.Type.NonNull {
			name += "?"
		}
		parts[i] = fmt.Sprintf("%s: %s", name, tsType(arg.Type))
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

func tsTypes(s *ast.Schema) (defs []tsTypeDef) {
	names := make([]string, 0, len(s.Types))
	for name := range s.Types {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		def := s.Types[name]
		if strings.HasPrefix(name, "__") || tsScalars[name] != "" {
			continue
		}
		if def == s.Query || def == s.Mutation || def == s.Subscription {
			continue
		}

		switch def.Kind {
		case ast.Object, ast.Interface, ast.InputObject:
			td := tsTypeDef{Kind: "interface", Name: name}
			for _, f := range def.Fields {
				if strings.HasPrefix(f.Name, "__") {
					continue
				}
				td.Fields = append(td.Fields, tsField{Name: f.Name, Type: tsType(f.Type)})
			}
			defs = append(defs, td)
		case ast.Enum:
			vals := make([]string, len(def.EnumValues))
			for i, v := range def.EnumValues {
				vals[i] = fmt.Sprintf("'%s'", v.Name)
			}
			defs = append(defs, tsTypeDef{Kind: "alias", Name: name, Alias: strings.Join(vals, " | ")})
		case ast.Union:
			defs = append(defs, tsTypeDef{Kind: "alias", Name: name, Alias: strings.Join(def.Types, " | ")})
		case ast.Scalar:
			defs = append(defs, tsTypeDef{Kind: "alias", Name: name, Alias: "any"})
		}
	}
	return
}

// tsType maps a GraphQL type reference to its TypeScript counterpart.
func tsType(t *ast.Type) string {
	var s string
	if t.Elem != nil {
		s = "Array<" + tsType(t.Elem) + ">"
	} else if mapped := tsScalars[t.NamedType]; mapped != "" {
		s = mapped
	} else {
		s = t.NamedType
	}

	if !t.NonNull {
		s += " | null"
	}
	return s
}

var tsScalars = map[string]string{
	"String":  "string",
	"ID":      "string",
	"Int":     "number",
	"Float":   "number",
	"Boolean": "boolean",
}
