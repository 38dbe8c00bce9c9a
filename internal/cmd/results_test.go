package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestResultsCommandEmpty(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := writeTestConfig(t, tmpDir, "test-user")

	output, err := runCLI(t, "", "results", "--config", cfgPath)
	if err != nil {
		t.Fatalf("results command failed: %v", err)
	}
	if !strings.Contains(output, "No results recorded yet") {
		t.Errorf("Expected empty-state message, got: %s", output)
	}
}

func TestResultsCommandAfterRun(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := writeTestConfig(t, tmpDir, "test-user")

	if _, err := runCLI(t, "", "run", "segmentation-native", "--config", cfgPath); err != nil {
		t.Fatalf("run command failed: %v", err)
	}

	// A fresh invocation reloads the persisted set from the store file.
	output, err := runCLI(t, "", "results", "--config", cfgPath)
	if err != nil {
		t.Fatalf("results command failed: %v", err)
	}

	if !strings.Contains(output, "segmentation-native") {
		t.Errorf("Expected recorded result row, got: %s", output)
	}
	if !strings.Contains(output, "Platform success rates:") {
		t.Errorf("Expected per-platform breakdown, got: %s", output)
	}
	if !strings.Contains(output, "native") {
		t.Errorf("Expected native platform rate, got: %s", output)
	}
}

func TestViewCommandsDoNotTouchAuditLog(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := writeTestConfig(t, tmpDir, "test-user")

	for _, args := range [][]string{
		{"results", "--config", cfgPath},
		{"export", "--config", cfgPath},
		{"platforms", "--config", cfgPath},
	} {
		if _, err := runCLI(t, "", args...); err != nil {
			t.Fatalf("%s command failed: %v", args[0], err)
		}
	}

	// Viewing state must not create the audit database as a side effect.
	if _, err := os.Stat(filepath.Join(tmpDir, "audit.db")); !os.IsNotExist(err) {
		t.Errorf("Expected no audit database after view-only commands, stat err: %v", err)
	}
}

func TestResultsCommandRerunReplaces(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := writeTestConfig(t, tmpDir, "test-user")

	for i := 0; i < 2; i++ {
		if _, err := runCLI(t, "", "run", "churn-native", "--config", cfgPath); err != nil {
			t.Fatalf("run %d failed: %v", i+1, err)
		}
	}

	output, err := runCLI(t, "", "results", "--config", cfgPath)
	if err != nil {
		t.Fatalf("results command failed: %v", err)
	}
	if !strings.Contains(output, "Total runs: 1") {
		t.Errorf("Rerun should replace the prior result, got: %s", output)
	}
}
