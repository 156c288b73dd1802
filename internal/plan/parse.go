package plan

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ValidationError reports a structurally invalid plan document.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return "plan: " + e.msg }

// IsValidation reports whether err is a plan validation error.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Parse decodes a plan document from YAML bytes and validates it.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("plan: parse: %w", err)
	}
	if err := Validate(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ParseFile reads and parses a plan document from a local path.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("plan: read %s: %w", path, err)
	}
	return Parse(data)
}

// Validate checks the minimal structure a plan document must have.
// A document without a jobs list cannot produce any rows.
func Validate(doc *Document) error {
	if doc == nil || len(doc.Jobs) == 0 {
		return &ValidationError{msg: "no jobs section"}
	}
	for i, job := range doc.Jobs {
		if job.Name == "" {
			return &ValidationError{msg: fmt.Sprintf("job %d has no name", i)}
		}
	}
	return nil
}
