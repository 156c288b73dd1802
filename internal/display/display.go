// Package display provides human-readable names for machine keys.
//
// Rule: keys are for machines, words are for humans. Use these in CLI
// output, page headings, export headers, and chart labels. Keep raw
// keys for query parameters, JSON fields, and equality comparisons.
package display

// columnTitles maps row field keys to the titles shown to users.
var columnTitles = map[string]string{
	"job_name":    "Job Name",
	"build_name":  "Build Name",
	"test_name":   "Test Name",
	"device":      "Device",
	"target_arch": "Target Architecture",
	"toolchain":   "Toolchain",
	"source_file": "Configuration File",
	"level":       "Level",
}

// ColumnTitle returns the human title for a column key.
// Unknown keys are returned as-is.
func ColumnTitle(key string) string {
	if title, ok := columnTitles[key]; ok {
		return title
	}
	return key
}

// levelNames maps row level tags to descriptions of where the test was
// declared in the plan document.
var levelNames = map[string]string{
	"job":    "job-level tests section",
	"build":  "build-level tests section",
	"target": "build target (derived)",
}

// LevelName returns the description for a level tag.
// Unknown tags are returned as-is.
func LevelName(tag string) string {
	if name, ok := levelNames[tag]; ok {
		return name
	}
	return tag
}
