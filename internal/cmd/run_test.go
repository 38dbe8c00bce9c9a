package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunCommandCompletesAgent(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := writeTestConfig(t, tmpDir, "test-user")

	output, err := runCLI(t, "", "run", "sentiment-native", "--config", cfgPath)
	if err != nil {
		t.Fatalf("run command failed: %v\noutput: %s", err, output)
	}

	if !strings.Contains(output, "sentiment-native") {
		t.Errorf("Output should name the agent, got: %s", output)
	}
	if !strings.Contains(output, "completed") {
		t.Errorf("Output should report completion, got: %s", output)
	}
	if !strings.Contains(output, "Total runs: 1") {
		t.Errorf("Summary should count the run, got: %s", output)
	}

	// The result set persisted to the configured store path.
	if _, err := os.Stat(filepath.Join(tmpDir, "results.json")); err != nil {
		t.Errorf("Expected results store file to exist: %v", err)
	}
}

func TestRunCommandUnknownAgent(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := writeTestConfig(t, tmpDir, "test-user")

	_, err := runCLI(t, "", "run", "no-such-agent", "--config", cfgPath)
	if err == nil {
		t.Fatal("Expected error for unknown agent id")
	}
	if !strings.Contains(err.Error(), "unknown agent") {
		t.Errorf("Expected unknown agent error, got: %v", err)
	}
}

func TestRunCommandRequiresUser(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := writeTestConfig(t, tmpDir, "")

	_, err := runCLI(t, "", "run", "sentiment-native", "--config", cfgPath)
	if err == nil {
		t.Fatal("Expected error when no user context is configured")
	}
	if !strings.Contains(err.Error(), "user context") {
		t.Errorf("Expected a user context error, got: %v", err)
	}
}

func TestRunCommandUserFlagOverride(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := writeTestConfig(t, tmpDir, "")

	output, err := runCLI(t, "", "run", "churn-native", "--config", cfgPath, "--user", "flag-user")
	if err != nil {
		t.Fatalf("run command failed: %v\noutput: %s", err, output)
	}
	if !strings.Contains(output, "completed") {
		t.Errorf("Output should report completion, got: %s", output)
	}
}

func TestRunCommandInvalidTimeout(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := writeTestConfig(t, tmpDir, "test-user")

	_, err := runCLI(t, "", "run", "sentiment-native", "--config", cfgPath, "--timeout", "banana")
	if err == nil {
		t.Fatal("Expected error for malformed timeout")
	}
	if !strings.Contains(err.Error(), "invalid timeout") {
		t.Errorf("Expected timeout parse error, got: %v", err)
	}
}

func TestSweepCommandRunsAllPairs(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := writeTestConfig(t, tmpDir, "test-user")

	output, err := runCLI(t, "", "sweep", "--config", cfgPath)
	if err != nil {
		t.Fatalf("sweep command failed: %v\noutput: %s", err, output)
	}

	// Only the native platform is connected without endpoints, but every
	// prototype still runs on every platform via the simulated path.
	if !strings.Contains(output, "Total runs: 9") {
		t.Errorf("Sweep should resolve all 9 prototype/platform pairs, got: %s", output)
	}
	if !strings.Contains(output, "Failed: 0") {
		t.Errorf("All simulated pairs should complete, got: %s", output)
	}
}
