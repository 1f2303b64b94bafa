package bindgen

import (
	"bytes"
	"context"
	"text/template"

	"github.com/vektah/gqlparser/v2/ast"
)

// JsGenerator generates a JavaScript client binding: a class whose
// query/mutation/subscription members delegate each root field.
type JsGenerator struct{}

var jsTmpl = template.Must(template.New("binding.js").Parse(`const { Binding: BaseBinding } = require('graphql-binding')

module.exports = class Binding extends BaseBinding {
  constructor({ schema, fragmentReplacements }) {
    super({ schema, fragmentReplacements })

    this.query = {
{{- range .Query}}
      {{.}}: (args, info) => this.delegate('query', '{{.}}', args, {}, info),
{{- end}}
    }

    this.mutation = {
{{- range .Mutation}}
      {{.}}: (args, info) => this.delegate('mutation', '{{.}}', args, {}, info),
{{- end}}
    }

    this.subscription = {
{{- range .Subscription}}
      {{.}}: (args, infoOrQuery) => this.delegateSubscription('{{.}}', args, infoOrQuery),
{{- end}}
    }
  }
}
`))

type jsModel struct {
	Query        []string
	Mutation     []string
	Subscription []string
}

// Generate implements the Generator interface.
func (JsGenerator) Generate(_ context.Context, schema string, _ map[string]interface{}) (string, error) {
	s, err := loadSchema("binding-js", schema)
	if err != nil {
		return "", err
	}

	var m jsModel
	m.Query = fieldNames(s.Query)
	m.Mutation = fieldNames(s.Mutation)
	m.Subscription = fieldNames(s.Subscription)

	var buf bytes.Buffer
	if err := jsTmpl.Execute(&buf, m); err != nil {
		return "", GeneratorError{GenName: "binding-js", Msg: err.Error()}
	}
	return buf.String(), nil
}

func fieldNames(root *ast.Definition) (names []string) {
	for _, f := range rootFields(root) {
		names = append(names, f.Name)
	}
	return
}
