package plan

import "strings"

// Level tags the nesting depth at which a row's test was discovered.
type Level string

const (
	// LevelJob marks tests listed directly under a job.
	LevelJob Level = "job"
	// LevelBuild marks tests listed under a build.
	LevelBuild Level = "build"
	// LevelTarget marks pseudo-tests derived from build targets that
	// name a test suite (e.g. kselftest, perf).
	LevelTarget Level = "target"
)

// Row is one flattened fact record: a single (job, build, test, device,
// arch, toolchain) combination from one plan file. All fields are
// non-empty strings; missing source values carry sentinel defaults.
type Row struct {
	JobName    string `json:"job_name"`
	BuildName  string `json:"build_name"`
	TestName   string `json:"test_name"`
	Device     string `json:"device"`
	TargetArch string `json:"target_arch"`
	Toolchain  string `json:"toolchain"`
	SourceFile string `json:"source_file"`
	Level      Level  `json:"level"`
}

// Flatten explodes a plan document into its Mapping Rows.
//
// Both job-level and build-level tests sections are scanned. Job-level
// tests are crossed with every build of the job (they run against each
// build's artifacts); build-level tests attach to their own build only.
// A job without builds still contributes its job-level tests under a
// sentinel build. Build targets that name a test suite expand into one
// pseudo-row per device seen in the build's tests section.
func Flatten(doc *Document, sourceFile string) []Row {
	if doc == nil {
		return nil
	}
	var rows []Row
	for _, job := range doc.Jobs {
		jobName := orUnknown(job.Name)

		if len(job.Builds) == 0 {
			for _, entry := range job.Tests {
				rows = appendEntry(rows, jobName, Build{}, entry, sourceFile, LevelJob)
			}
			continue
		}

		for _, build := range job.Builds {
			for _, entry := range job.Tests {
				rows = appendEntry(rows, jobName, build, entry, sourceFile, LevelJob)
			}
			for _, entry := range build.Tests {
				rows = appendEntry(rows, jobName, build, entry, sourceFile, LevelBuild)
			}
			rows = appendTargets(rows, jobName, build, sourceFile)
		}
	}
	return rows
}

// appendEntry emits one row per test name in the entry.
func appendEntry(rows []Row, jobName string, build Build, entry TestEntry, sourceFile string, level Level) []Row {
	for _, testName := range entry.Tests {
		if testName == "" {
			continue
		}
		rows = append(rows, Row{
			JobName:    jobName,
			BuildName:  buildName(build),
			TestName:   testName,
			Device:     entry.Device.Name(),
			TargetArch: orUnknown(build.TargetArch),
			Toolchain:  orUnknown(build.Toolchain),
			SourceFile: sourceFile,
			Level:      level,
		})
	}
	return rows
}

// appendTargets emits pseudo-rows for test-suite build targets, one per
// device named in the build's tests section.
func appendTargets(rows []Row, jobName string, build Build, sourceFile string) []Row {
	var suites []string
	for _, target := range build.Targets {
		if isTestTarget(target) {
			suites = append(suites, target)
		}
	}
	if len(suites) == 0 {
		return rows
	}

	seen := make(map[string]bool)
	var devices []string
	for _, entry := range build.Tests {
		name := entry.Device.Name()
		if name == UnknownValue || seen[name] {
			continue
		}
		seen[name] = true
		devices = append(devices, name)
	}

	for _, suite := range suites {
		for _, device := range devices {
			rows = append(rows, Row{
				JobName:    jobName,
				BuildName:  buildName(build),
				TestName:   suite,
				Device:     device,
				TargetArch: orUnknown(build.TargetArch),
				Toolchain:  orUnknown(build.Toolchain),
				SourceFile: sourceFile,
				Level:      LevelTarget,
			})
		}
	}
	return rows
}

// isTestTarget reports whether a build target names a test suite.
func isTestTarget(target string) bool {
	return strings.Contains(strings.ToLower(target), "test") || target == "perf"
}

func buildName(b Build) string {
	if b.BuildName == "" {
		return UnnamedBuild
	}
	return b.BuildName
}

func orUnknown(s string) string {
	if s == "" {
		return UnknownValue
	}
	return s
}
