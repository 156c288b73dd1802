// Package plan models build/test plan documents and flattens them into
// Mapping Rows for the dashboard's relational table.
//
// Plan files in the wild are loosely structured: the tests field of an
// entry may be a scalar or a list, the device field may be a string, a
// mapping with a name key, or absent entirely, and builds or tests
// sections may be missing. Decoding is tolerant throughout; missing
// optional fields get sentinel defaults instead of errors.
package plan

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Sentinel values substituted for missing optional fields.
const (
	UnknownValue = "Unknown"
	UnnamedBuild = "Unnamed Build"
)

// Document is one parsed plan file.
type Document struct {
	Jobs []Job `yaml:"jobs"`
}

// Job is one CI job with its builds and job-level test entries.
type Job struct {
	Name   string      `yaml:"name"`
	Builds []Build     `yaml:"builds"`
	Tests  []TestEntry `yaml:"tests"`
}

// Build is one build configuration under a job. Targets are make-style
// build targets; some of them ("kselftest", anything containing "test")
// double as test suites.
type Build struct {
	BuildName  string      `yaml:"build_name"`
	TargetArch string      `yaml:"target_arch"`
	Toolchain  string      `yaml:"toolchain"`
	Targets    StringList  `yaml:"targets"`
	Tests      []TestEntry `yaml:"tests"`
}

// TestEntry pairs a device with the test suites to run on it.
type TestEntry struct {
	Device DeviceRef  `yaml:"device"`
	Tests  StringList `yaml:"tests"`
}

// StringList decodes a YAML node that is either a scalar or a sequence
// of scalars into a []string. A scalar becomes a one-element list.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *StringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		if s == "" {
			*l = nil
			return nil
		}
		*l = StringList{s}
		return nil
	case yaml.SequenceNode:
		var ss []string
		if err := node.Decode(&ss); err != nil {
			return err
		}
		*l = StringList(ss)
		return nil
	default:
		return fmt.Errorf("plan: tests must be a string or a list, got %s", kindName(node.Kind))
	}
}

// DeviceRef decodes a device reference that is either a plain string or
// a mapping with a name key. Empty or absent devices resolve to "".
type DeviceRef string

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *DeviceRef) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		*d = DeviceRef(s)
		return nil
	case yaml.MappingNode:
		var m struct {
			Name string `yaml:"name"`
		}
		if err := node.Decode(&m); err != nil {
			return err
		}
		*d = DeviceRef(m.Name)
		return nil
	default:
		return fmt.Errorf("plan: device must be a string or a mapping, got %s", kindName(node.Kind))
	}
}

// Name returns the device name, or the Unknown sentinel when empty.
func (d DeviceRef) Name() string {
	if d == "" {
		return UnknownValue
	}
	return string(d)
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "unknown"
	}
}
