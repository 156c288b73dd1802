package plan

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

const twoRowPlan = `
jobs:
  - name: linux-next
    builds:
      - build_name: gcc-13-defconfig
        target_arch: arm64
        toolchain: gcc
        tests:
          - device: rk3399
            tests: [boot, selftest]
`

func TestFlatten_TwoRowExample(t *testing.T) {
	doc, err := Parse([]byte(twoRowPlan))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	rows := Flatten(doc, "plan.yml")
	want := []Row{
		{
			JobName:    "linux-next",
			BuildName:  "gcc-13-defconfig",
			TestName:   "boot",
			Device:     "rk3399",
			TargetArch: "arm64",
			Toolchain:  "gcc",
			SourceFile: "plan.yml",
			Level:      LevelBuild,
		},
		{
			JobName:    "linux-next",
			BuildName:  "gcc-13-defconfig",
			TestName:   "selftest",
			Device:     "rk3399",
			TargetArch: "arm64",
			Toolchain:  "gcc",
			SourceFile: "plan.yml",
			Level:      LevelBuild,
		},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestFlatten_ScalarTests(t *testing.T) {
	doc, err := Parse([]byte(`
jobs:
  - name: stable
    builds:
      - build_name: b1
        tests:
          - device: qemu-x86
            tests: ltp
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	rows := Flatten(doc, "scalar.yml")
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].TestName != "ltp" {
		t.Errorf("TestName = %q, want ltp", rows[0].TestName)
	}
}

func TestFlatten_DeviceMapping(t *testing.T) {
	doc, err := Parse([]byte(`
jobs:
  - name: stable
    builds:
      - build_name: b1
        tests:
          - device:
              name: juno-r2
              lab: cambridge
            tests: [boot]
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	rows := Flatten(doc, "p.yml")
	if len(rows) != 1 || rows[0].Device != "juno-r2" {
		t.Fatalf("rows = %+v, want single row with device juno-r2", rows)
	}
}

func TestFlatten_MissingFieldsGetSentinels(t *testing.T) {
	doc, err := Parse([]byte(`
jobs:
  - name: bare
    builds:
      - tests:
          - tests: [boot]
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	rows := Flatten(doc, "p.yml")
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	r := rows[0]
	if r.BuildName != UnnamedBuild {
		t.Errorf("BuildName = %q, want %q", r.BuildName, UnnamedBuild)
	}
	for field, v := range map[string]string{
		"Device":     r.Device,
		"TargetArch": r.TargetArch,
		"Toolchain":  r.Toolchain,
	} {
		if v != UnknownValue {
			t.Errorf("%s = %q, want %q", field, v, UnknownValue)
		}
	}
}

func TestFlatten_NoRequiredFieldEmpty(t *testing.T) {
	doc, err := Parse([]byte(`
jobs:
  - name: mixed
    tests:
      - device: dragonboard
        tests: [kunit]
    builds:
      - build_name: clang-nightly
        target_arch: riscv64
        toolchain: clang
        targets: [kselftest]
        tests:
          - device: hifive
            tests: [boot, ltp]
          - tests: kvm-unit-tests
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	rows := Flatten(doc, "mixed.yml")
	if len(rows) == 0 {
		t.Fatal("no rows produced")
	}
	for i, r := range rows {
		for field, v := range map[string]string{
			"JobName":    r.JobName,
			"BuildName":  r.BuildName,
			"TestName":   r.TestName,
			"Device":     r.Device,
			"TargetArch": r.TargetArch,
			"Toolchain":  r.Toolchain,
			"SourceFile": r.SourceFile,
			"Level":      string(r.Level),
		} {
			if v == "" {
				t.Errorf("row %d: field %s is empty", i, field)
			}
		}
	}
}

func TestFlatten_JobLevelTestsCrossBuilds(t *testing.T) {
	doc, err := Parse([]byte(`
jobs:
  - name: cross
    tests:
      - device: rk3399
        tests: [boot]
    builds:
      - build_name: b-gcc
        toolchain: gcc
      - build_name: b-clang
        toolchain: clang
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	rows := Flatten(doc, "cross.yml")
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2 (one per build)", len(rows))
	}
	builds := map[string]bool{}
	for _, r := range rows {
		if r.Level != LevelJob {
			t.Errorf("Level = %q, want %q", r.Level, LevelJob)
		}
		builds[r.BuildName] = true
	}
	if !builds["b-gcc"] || !builds["b-clang"] {
		t.Errorf("missing build cross-product: %v", builds)
	}
}

func TestFlatten_JobWithoutBuilds(t *testing.T) {
	doc, err := Parse([]byte(`
jobs:
  - name: buildless
    tests:
      - device: qemu-arm
        tests: [boot]
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	rows := Flatten(doc, "p.yml")
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].BuildName != UnnamedBuild {
		t.Errorf("BuildName = %q, want sentinel", rows[0].BuildName)
	}
}

func TestFlatten_TargetSuites(t *testing.T) {
	doc, err := Parse([]byte(`
jobs:
  - name: targets
    builds:
      - build_name: b1
        targets: [Image, modules, kselftest, perf]
        tests:
          - device: rk3399
            tests: [boot]
          - device: juno-r2
            tests: [boot]
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	rows := Flatten(doc, "t.yml")

	var targetRows []Row
	for _, r := range rows {
		if r.Level == LevelTarget {
			targetRows = append(targetRows, r)
		}
	}
	// 2 suite targets x 2 devices
	if len(targetRows) != 4 {
		t.Fatalf("got %d target rows, want 4: %+v", len(targetRows), targetRows)
	}
	for _, r := range targetRows {
		if r.TestName != "kselftest" && r.TestName != "perf" {
			t.Errorf("unexpected pseudo-test %q", r.TestName)
		}
	}
}

func TestFlatten_BuildWithoutTests(t *testing.T) {
	doc, err := Parse([]byte(`
jobs:
  - name: silent
    builds:
      - build_name: b1
        target_arch: x86_64
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if rows := Flatten(doc, "p.yml"); len(rows) != 0 {
		t.Errorf("got %d rows, want 0", len(rows))
	}
}

func TestValidate(t *testing.T) {
	if _, err := Parse([]byte("foo: bar")); !IsValidation(err) {
		t.Errorf("expected validation error for missing jobs, got %v", err)
	}
	if _, err := Parse([]byte("jobs: []")); !IsValidation(err) {
		t.Errorf("expected validation error for empty jobs, got %v", err)
	}
	if _, err := Parse([]byte("jobs:\n  - builds: []")); !IsValidation(err) {
		t.Errorf("expected validation error for unnamed job, got %v", err)
	}
}

func TestParse_Malformed(t *testing.T) {
	if _, err := Parse([]byte(":\n\t- bad")); err == nil {
		t.Error("expected parse error")
	}
}
