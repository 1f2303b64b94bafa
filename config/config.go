// Package config implements the .graphqlconfig project configuration store.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// DefaultProjectName is the name given to the project of a
// single-project configuration file.
const DefaultProjectName = "default"

// configNames are the file names probed during discovery, in order.
var configNames = []string{".graphqlconfig", ".graphqlconfig.yaml", ".graphqlconfig.yml"}

// Find locates the nearest configuration file, starting in dir and
// walking up towards the filesystem root.
func Find(fs afero.Fs, dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for {
		for _, name := range configNames {
			path := filepath.Join(dir, name)

			exists, err := afero.Exists(fs, path)
			if err != nil {
				return "", err
			}
			if exists {
				return path, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("config: no %s found in %s or any parent directory", configNames[0], dir)
		}
		dir = parent
	}
}

// Store reads and writes a single configuration file.
type Store struct {
	fs   afero.Fs
	path string
	doc  *document
	json bool
}

// Load parses the configuration file at path.
func Load(fs afero.Fs, path string) (*Store, error) {
	b, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	doc := new(document)
	if err = yaml.Unmarshal(b, doc); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return &Store{
		fs:   fs,
		path: path,
		doc:  doc,
		json: isJSON(b),
	}, nil
}

// Path returns the location of the underlying configuration file.
func (s *Store) Path() string { return s.path }

// Projects returns every configured project, in document order.
// A single-project configuration yields one project named "default".
func (s *Store) Projects() []*Project {
	if len(s.doc.Projects) == 0 {
		if s.doc.SchemaPath == "" && s.doc.Extensions == nil {
			return nil
		}
		return []*Project{s.project(DefaultProjectName, &s.doc.projectDoc)}
	}

	projects := make([]*Project, len(s.doc.Projects))
	for i, e := range s.doc.Projects {
		projects[i] = s.project(e.Name, &e.projectDoc)
	}
	return projects
}

// Project returns the named project.
func (s *Store) Project(name string) (*Project, error) {
	if len(s.doc.Projects) == 0 && name == DefaultProjectName {
		return s.project(DefaultProjectName, &s.doc.projectDoc), nil
	}

	for _, e := range s.doc.Projects {
		if e.Name == name {
			return s.project(name, &e.projectDoc), nil
		}
	}
	return nil, fmt.Errorf("config: project %q is not defined in %s", name, s.path)
}

// SaveConfig writes the project's configuration back to the file,
// preserving every other project in the document.
func (s *Store) SaveConfig(p *Project) error {
	pd := s.projectDoc(p.Name)
	if pd == nil {
		return fmt.Errorf("config: project %q is not defined in %s", p.Name, s.path)
	}
	pd.SchemaPath = p.SchemaPath
	pd.Extensions = p.Extensions

	var (
		b   []byte
		err error
	)
	if s.json {
		b, err = json.MarshalIndent(s.doc, "", "  ")
		b = append(b, '\n')
	} else {
		b, err = yaml.Marshal(s.doc)
	}
	if err != nil {
		return fmt.Errorf("config: encoding %s: %w", s.path, err)
	}

	return afero.WriteFile(s.fs, s.path, b, os.FileMode(0644))
}

func (s *Store) project(name string, pd *projectDoc) *Project {
	if pd.Extensions == nil {
		pd.Extensions = make(map[string]interface{})
	}

	return &Project{
		Name:       name,
		SchemaPath: pd.SchemaPath,
		Extensions: pd.Extensions,
	}
}

func (s *Store) projectDoc(name string) *projectDoc {
	if len(s.doc.Projects) == 0 && name == DefaultProjectName {
		return &s.doc.projectDoc
	}

	for _, e := range s.doc.Projects {
		if e.Name == name {
			return &e.projectDoc
		}
	}
	return nil
}

func isJSON(b []byte) bool {
	b = bytes.TrimLeft(b, " \t\r\n")
	return len(b) > 0 && b[0] == '{'
}

// document is the on-disk layout of a configuration file. Single-project
// files carry the project fields at the top level.
type document struct {
	projectDoc `yaml:",inline"`

	Projects projectList `yaml:"projects,omitempty" json:"projects,omitempty"`
}

type projectDoc struct {
	SchemaPath string                 `yaml:"schemaPath,omitempty" json:"schemaPath,omitempty"`
	Includes   []string               `yaml:"includes,omitempty" json:"includes,omitempty"`
	Excludes   []string               `yaml:"excludes,omitempty" json:"excludes,omitempty"`
	Extensions map[string]interface{} `yaml:"extensions,omitempty" json:"extensions,omitempty"`
}

type projectEntry struct {
	Name string
	projectDoc
}

// projectList keeps projects in document order, which map decoding
// would lose.
type projectList []*projectEntry

func (l *projectList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("config: projects must be a mapping")
	}

	for i := 0; i < len(node.Content); i += 2 {
		e := &projectEntry{Name: node.Content[i].Value}
		if err := node.Content[i+1].Decode(&e.projectDoc); err != nil {
			return err
		}
		*l = append(*l, e)
	}
	return nil
}

func (l projectList) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range l {
		key := new(yaml.Node)
		key.SetString(e.Name)

		val := new(yaml.Node)
		if err := val.Encode(e.projectDoc); err != nil {
			return nil, err
		}

		node.Content = append(node.Content, key, val)
	}
	return node, nil
}

func (l projectList) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range l {
		if i > 0 {
			buf.WriteByte(',')
		}

		k, err := json.Marshal(e.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')

		v, err := json.Marshal(e.projectDoc)
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
