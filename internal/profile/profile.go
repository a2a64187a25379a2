// Package profile describes the text grammar of a test-harness transcript:
// the launcher keyword, separators, flags to canonicalize away, and where the
// thread family lives. The pintos profile is embedded and used by default.
package profile

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed pintos.yaml
var pintosYAML []byte

// Profile holds every constant the transcript parser needs
type Profile struct {
	Name           string   `yaml:"name"`
	Launcher       string   `yaml:"launcher"`
	Separator      string   `yaml:"separator"`
	Redirect       string   `yaml:"redirect"`
	RunFlag        string   `yaml:"run_flag"`
	PathFlag       string   `yaml:"path_flag"`
	BooleanFlags   []string `yaml:"boolean_flags"`
	ValuedFlags    []string `yaml:"valued_flags"`
	ThreadSubtree  string   `yaml:"thread_subtree"`
	ThreadMarker   string   `yaml:"thread_marker"`
	SummaryHeaders []string `yaml:"summary_headers"`
	DisplayRoot    string   `yaml:"display_root"`

	ExactNameMatch     bool `yaml:"exact_name_match"`
	NestedSummaryPaths bool `yaml:"nested_summary_paths"`
}

// Default returns a fresh copy of the embedded pintos profile
func Default() *Profile {
	var p Profile
	if err := yaml.Unmarshal(pintosYAML, &p); err != nil {
		panic(fmt.Sprintf("embedded pintos profile is invalid: %v", err))
	}
	return &p
}

// Load reads a YAML profile from path. Keys missing from the file keep the
// pintos defaults.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML profile layered over the pintos defaults and validates it
func Parse(data []byte) (*Profile, error) {
	p := Default()
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("parse profile: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate reports the first field that would make the parser unusable
func (p *Profile) Validate() error {
	if strings.TrimSpace(p.Launcher) == "" {
		return fmt.Errorf("profile %q: launcher must not be empty", p.Name)
	}
	if strings.TrimSpace(p.Separator) == "" {
		return fmt.Errorf("profile %q: separator must not be empty", p.Name)
	}
	if strings.TrimSpace(p.RunFlag) == "" {
		return fmt.Errorf("profile %q: run_flag must not be empty", p.Name)
	}
	if strings.TrimSpace(p.PathFlag) == "" {
		return fmt.Errorf("profile %q: path_flag must not be empty", p.Name)
	}
	for _, h := range p.SummaryHeaders {
		if _, err := regexp.Compile(h); err != nil {
			return fmt.Errorf("profile %q: summary header %q: %w", p.Name, h, err)
		}
	}
	return nil
}
