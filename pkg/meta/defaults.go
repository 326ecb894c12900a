package meta

import (
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"
)

// Defaults is the application-level page head.
type Defaults struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Tags        []Tag  `yaml:"meta"`
}

// Set returns the default tags as a validated Set.
func (d Defaults) Set() (Set, error) {
	s := make(Set, len(d.Tags))
	if err := s.Add(d.Tags...); err != nil {
		return nil, err
	}
	return s, nil
}

// ParseDefaults decodes a YAML page head:
//
//	title: Acme
//	description: Tools for teams
//	meta:
//	  - name: keywords
//	    content: acme, tools
//	  - http_equiv: X-UA-Compatible
//	    content: IE=edge
func ParseDefaults(data []byte) (Defaults, error) {
	var d Defaults
	if err := yaml.Unmarshal(data, &d); err != nil {
		return Defaults{}, fmt.Errorf("meta: parse defaults: %w", err)
	}
	for _, t := range d.Tags {
		if err := t.Validate(); err != nil {
			return Defaults{}, err
		}
	}
	return d, nil
}

// LoadDefaults reads and parses a YAML page head from fsys.
func LoadDefaults(fsys fs.FS, path string) (Defaults, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return Defaults{}, fmt.Errorf("meta: read defaults: %w", err)
	}
	return ParseDefaults(data)
}
