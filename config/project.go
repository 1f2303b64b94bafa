package config

// Extension keys persisted by the prepare command.
const (
	// BundleExtension holds the output path of the flattened schema.
	BundleExtension = "prepare-bundle"

	// BindingExtension holds the binding output path and generator name.
	BindingExtension = "prepare-binding"
)

// Deprecated extension keys. They are still honored on read and are
// removed once the configuration is saved.
const (
	DeprecatedBundleExtension  = "bundle"
	DeprecatedBindingExtension = "binding"
)

// Project is a named schema + configuration unit. Its Extensions map is
// shared with the Store that produced it, so mutations become visible
// to a later SaveConfig.
type Project struct {
	Name       string
	SchemaPath string
	Extensions map[string]interface{}
}

// HasExtension reports whether the project carries the extension key.
func (p *Project) HasExtension(key string) bool {
	_, ok := p.Extensions[key]
	return ok
}

// ExtensionString returns the extension value, if it is a plain string.
func (p *Project) ExtensionString(key string) (string, bool) {
	s, ok := p.Extensions[key].(string)
	return s, ok && s != ""
}

// ExtensionField returns a field of an object-valued extension,
// e.g. the "output" field of "prepare-binding".
func (p *Project) ExtensionField(key, field string) (string, bool) {
	obj, ok := p.Extensions[key].(map[string]interface{})
	if !ok {
		return "", false
	}

	s, ok := obj[field].(string)
	return s, ok && s != ""
}

// SetExtension sets an extension value, replacing any previous one.
func (p *Project) SetExtension(key string, value interface{}) {
	p.Extensions[key] = value
}

// RemoveExtension drops an extension key, if present.
func (p *Project) RemoveExtension(key string) {
	delete(p.Extensions, key)
}
