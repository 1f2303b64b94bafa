package prepare

import (
	"errors"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/graphql-cli/graphql-cli-prepare/config"
)

type recordingReporter struct {
	starts, succeeds, infos, warns []string
}

func (r *recordingReporter) Start(msg string)   { r.starts = append(r.starts, msg) }
func (r *recordingReporter) Succeed(msg string) { r.succeeds = append(r.succeeds, msg) }
func (r *recordingReporter) Info(msg string)    { r.infos = append(r.infos, msg) }
func (r *recordingReporter) Warn(msg string)    { r.warns = append(r.warns, msg) }

func newProject(name, schemaPath string, exts map[string]interface{}) *config.Project {
	if exts == nil {
		exts = make(map[string]interface{})
	}
	return &config.Project{Name: name, SchemaPath: schemaPath, Extensions: exts}
}

func newResolver(fs afero.Fs) (*resolver, *recordingReporter) {
	rep := new(recordingReporter)
	return &resolver{fs: fs, reporter: rep}, rep
}

func TestGeneratorResolution(t *testing.T) {
	testCases := []struct {
		Name      string
		Opts      Options
		Exts      map[string]interface{}
		expect    string
		expectErr string
		warned    bool
	}{
		{
			Name:   "FlagOverride",
			Opts:   Options{Generator: "binding-ts"},
			Exts:   map[string]interface{}{config.BindingExtension: map[string]interface{}{"generator": "binding-js"}},
			expect: "binding-ts",
		},
		{
			Name:   "PersistedSetting",
			Exts:   map[string]interface{}{config.BindingExtension: map[string]interface{}{"generator": "binding-js"}},
			expect: "binding-js",
		},
		{
			Name:   "DeprecatedSetting",
			Exts:   map[string]interface{}{config.DeprecatedBindingExtension: map[string]interface{}{"generator": "binding-js"}},
			expect: "binding-js",
			warned: true,
		},
		{
			Name:      "Undetermined",
			expectErr: "generator cannot be determined",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.Name, func(subT *testing.T) {
			r, rep := newResolver(afero.NewMemMapFs())

			gen, err := r.generator(newProject("app", "", testCase.Exts), testCase.Opts)
			if testCase.expectErr != "" {
				if err == nil || !strings.Contains(err.Error(), testCase.expectErr) {
					subT.Errorf("expected error containing %q, got: %v", testCase.expectErr, err)
				}
				return
			}

			if err != nil {
				subT.Error(err)
				return
			}
			if gen != testCase.expect {
				subT.Errorf("expected generator %q but got %q", testCase.expect, gen)
			}
			if testCase.warned != (len(rep.warns) > 0) {
				subT.Errorf("expected warned=%t, warns: %v", testCase.warned, rep.warns)
			}
		})
	}
}

func TestBindingExtension(t *testing.T) {
	testCases := []struct {
		generator string
		expect    string
	}{
		{"binding-ts", "ts"},
		{"binding-js", "js"},
		{"graphql-binding", "js"},
		{"my-custom-ts", "ts"},
	}

	for _, testCase := range testCases {
		if ext := bindingExtension(testCase.generator); ext != testCase.expect {
			t.Errorf("bindingExtension(%q) = %q, expected %q", testCase.generator, ext, testCase.expect)
		}
	}
}

func TestBundleOutputResolution(t *testing.T) {
	fs := afero.NewMemMapFs()
	r, _ := newResolver(fs)

	// flag override joins the project name with the bundle extension
	out, err := r.bundleOutput(newProject("app", "s.graphql", nil), Options{Output: "/out"})
	if err != nil {
		t.Error(err)
		return
	}
	if out != "/out/app.graphql" {
		t.Errorf("expected /out/app.graphql, got %s", out)
	}

	// the destination directory must exist afterwards
	if ok, _ := afero.DirExists(fs, "/out"); !ok {
		t.Error("expected output directory to be created")
	}

	// persisted setting wins when no flag is given
	exts := map[string]interface{}{config.BundleExtension: "/generated/app.graphql"}
	out, err = r.bundleOutput(newProject("app", "s.graphql", exts), Options{})
	if err != nil {
		t.Error(err)
		return
	}
	if out != "/generated/app.graphql" {
		t.Errorf("expected /generated/app.graphql, got %s", out)
	}

	// nothing resolvable
	_, err = r.bundleOutput(newProject("app", "s.graphql", nil), Options{})
	var rerr *ResolveError
	if !errors.As(err, &rerr) {
		t.Errorf("expected ResolveError, got: %v", err)
		return
	}
	if !strings.Contains(err.Error(), "bundle output path cannot be determined") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestBindingInputResolution(t *testing.T) {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, "/fresh.graphql", []byte("type Query { ok: Boolean }"), 0644)
	afero.WriteFile(fs, "/schema.graphql", []byte("type Query { ok: Boolean }"), 0644)

	r, rep := newResolver(fs)

	// a bundle produced in this run wins over everything
	exts := map[string]interface{}{config.BundleExtension: "/stale.graphql"}
	in, err := r.bindingInput(newProject("app", "/schema.graphql", exts), "/fresh.graphql")
	if err != nil {
		t.Error(err)
		return
	}
	if in != "/fresh.graphql" {
		t.Errorf("expected /fresh.graphql, got %s", in)
	}

	// a persisted bundle setting with no file behind it suggests bundling
	_, err = r.bindingInput(newProject("app", "/schema.graphql", exts), "")
	var serr *SchemaNotFoundError
	if !errors.As(err, &serr) {
		t.Errorf("expected SchemaNotFoundError, got: %v", err)
		return
	}
	if !strings.Contains(err.Error(), "--bundle") {
		t.Errorf("expected bundle hint in: %v", err)
	}

	// deprecated bundle key still resolves, with a warning
	afero.WriteFile(fs, "/old.graphql", []byte("type Query { ok: Boolean }"), 0644)
	deprecated := map[string]interface{}{config.DeprecatedBundleExtension: "/old.graphql"}
	in, err = r.bindingInput(newProject("app", "/schema.graphql", deprecated), "")
	if err != nil {
		t.Error(err)
		return
	}
	if in != "/old.graphql" {
		t.Errorf("expected /old.graphql, got %s", in)
	}
	if len(rep.warns) == 0 {
		t.Error("expected a deprecation warning")
	}

	// falls back to the project schema path
	in, err = r.bindingInput(newProject("app", "/schema.graphql", nil), "")
	if err != nil {
		t.Error(err)
		return
	}
	if in != "/schema.graphql" {
		t.Errorf("expected /schema.graphql, got %s", in)
	}

	// nothing resolvable at all
	_, err = r.bindingInput(newProject("app", "", nil), "")
	if err == nil || !strings.Contains(err.Error(), "input schema cannot be determined") {
		t.Errorf("expected input schema error, got: %v", err)
	}
}

func TestBundleInputResolution(t *testing.T) {
	fs := afero.NewMemMapFs()
	r, _ := newResolver(fs)

	_, err := r.bundleInput(newProject("app", "", nil))
	if err == nil || !strings.Contains(err.Error(), "input schema cannot be determined") {
		t.Errorf("expected input schema error, got: %v", err)
	}

	_, err = r.bundleInput(newProject("app", "/missing.graphql", nil))
	var serr *SchemaNotFoundError
	if !errors.As(err, &serr) {
		t.Errorf("expected SchemaNotFoundError, got: %v", err)
	}

	afero.WriteFile(fs, "/schema.graphql", []byte("type Query { ok: Boolean }"), 0644)
	in, err := r.bundleInput(newProject("app", "/schema.graphql", nil))
	if err != nil {
		t.Error(err)
		return
	}
	if in != "/schema.graphql" {
		t.Errorf("expected /schema.graphql, got %s", in)
	}
}
