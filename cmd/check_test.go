package cmd

import (
	"strings"
	"testing"
)

func TestCheck_SchemaOK(t *testing.T) {
	resetRootCmdState()
	path := writeSchemaFile(t, demoSchemaYAML)
	rootCmd.SetArgs([]string{"check", "--schema", path})
	out := captureOutput(t, func() {
		if err := rootCmd.Execute(); err != nil {
			t.Fatalf("Execute error: %v", err)
		}
	})
	if !strings.Contains(out, "schema OK (2 fields)") {
		t.Fatalf("expected schema OK line, got %q", out)
	}
}

func TestCheck_RequiresSchemaFlag(t *testing.T) {
	resetRootCmdState()
	rootCmd.SetArgs([]string{"check"})
	err := rootCmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "--schema") {
		t.Fatalf("expected missing --schema error, got: %v", err)
	}
}

func TestCheck_ReportsDuplicateFieldKeys(t *testing.T) {
	resetRootCmdState()
	path := writeSchemaFile(t, `fields:
  - key: name
    operators: [eq]
  - key: name
    operators: [contains]
`)
	rootCmd.SetArgs([]string{"check", "--schema", path})
	var execErr error
	out := captureOutput(t, func() {
		execErr = rootCmd.Execute()
	})
	if execErr == nil {
		t.Fatal("expected check to fail on duplicate keys")
	}
	if !strings.Contains(out, `duplicate field key "name"`) {
		t.Fatalf("expected duplicate key finding, got %q", out)
	}
}

func TestCheck_BadRuleFailsCompile(t *testing.T) {
	resetRootCmdState()
	path := writeSchemaFile(t, demoSchemaYAML+`rules:
  - expr: "size("
    message: broken
`)
	rootCmd.SetArgs([]string{"check", "--schema", path})
	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("expected CEL compile error")
	}
	if !strings.Contains(err.Error(), "rule 0") {
		t.Fatalf("error should name the failing rule, got: %v", err)
	}
}

func TestCheck_FiltersOK(t *testing.T) {
	resetRootCmdState()
	schema := writeSchemaFile(t, demoSchemaYAML)
	filters := writeFiltersFile(t, "saved.json",
		`{"filters":[{"field":"name","operator":"contains","value":"test","connector":"and"},{"field":"status","operator":"eq","value":"active"}]}`)
	rootCmd.SetArgs([]string{"check", "--schema", schema, "--filters", filters})
	out := captureOutput(t, func() {
		if err := rootCmd.Execute(); err != nil {
			t.Fatalf("Execute error: %v", err)
		}
	})
	if !strings.Contains(out, "filters OK (2 expressions)") {
		t.Fatalf("expected filters OK line, got %q", out)
	}
}

func TestCheck_UnknownFilterFieldSurfaces(t *testing.T) {
	resetRootCmdState()
	schema := writeSchemaFile(t, demoSchemaYAML)
	filters := writeFiltersFile(t, "saved.json",
		`{"filters":[{"field":"nope","operator":"eq","value":"x"}]}`)
	rootCmd.SetArgs([]string{"check", "--schema", schema, "--filters", filters})
	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("expected error for unknown filter field")
	}
	if !strings.Contains(err.Error(), `unknown field "nope"`) {
		t.Fatalf("expected unknown field error, got: %v", err)
	}
}

func TestCheck_RuleViolationReported(t *testing.T) {
	resetRootCmdState()
	schema := writeSchemaFile(t, demoSchemaYAML+`rules:
  - expr: "size(_) <= 1"
    message: keep it to one filter
`)
	filters := writeFiltersFile(t, "saved.json",
		`{"filters":[{"field":"name","operator":"contains","value":"a","connector":"and"},{"field":"status","operator":"eq","value":"active"}]}`)
	rootCmd.SetArgs([]string{"check", "--schema", schema, "--filters", filters})
	var execErr error
	out := captureOutput(t, func() {
		execErr = rootCmd.Execute()
	})
	if execErr == nil {
		t.Fatal("expected rule violation to fail the check")
	}
	if !strings.Contains(out, "keep it to one filter") {
		t.Fatalf("expected the rule message in findings, got %q", out)
	}
}
