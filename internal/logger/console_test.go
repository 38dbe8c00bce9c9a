package logger

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogLevelFiltering(t *testing.T) {
	tests := []struct {
		configured string
		logged     []string
		suppressed []string
	}{
		{"trace", []string{"TRACE", "DEBUG", "INFO", "WARN", "ERROR"}, nil},
		{"info", []string{"INFO", "WARN", "ERROR"}, []string{"TRACE", "DEBUG"}},
		{"error", []string{"ERROR"}, []string{"TRACE", "DEBUG", "INFO", "WARN"}},
	}

	for _, tt := range tests {
		t.Run(tt.configured, func(t *testing.T) {
			var buf bytes.Buffer
			cl := NewConsoleLogger(&buf, tt.configured)

			cl.LogTrace("trace msg")
			cl.LogDebug("debug msg")
			cl.LogInfo("info msg")
			cl.LogWarn("warn msg")
			cl.LogError("error msg")

			out := buf.String()
			for _, level := range tt.logged {
				assert.Contains(t, out, "["+level+"]")
			}
			for _, level := range tt.suppressed {
				assert.NotContains(t, out, "["+level+"]")
			}
		})
	}
}

func TestInvalidLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	cl := NewConsoleLogger(&buf, "loud")

	cl.LogDebug("hidden")
	cl.LogInfo("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNilWriterDiscards(t *testing.T) {
	cl := NewConsoleLogger(nil, "trace")

	// Must not panic.
	cl.LogInfo("message")
	cl.LogRunStart("agent", "native")
	cl.LogRunComplete("agent", "native", "failed", 0, "boom")
	cl.LogProgress(50, "op")
}

func TestRunLifecycleMessages(t *testing.T) {
	var buf bytes.Buffer
	cl := NewConsoleLogger(&buf, "info")

	cl.LogRunStart("Sentiment Analyzer", "hubspot")
	cl.LogRunComplete("Sentiment Analyzer", "hubspot", "completed", 0.94, "")
	cl.LogRunComplete("Churn Predictor", "salesforce", "failed", 0, "authorization required")

	out := buf.String()
	assert.Contains(t, out, "Starting Sentiment Analyzer on hubspot")
	assert.Contains(t, out, "completed (confidence 0.94)")
	assert.Contains(t, out, "failed: authorization required")
}

func TestLogProgress(t *testing.T) {
	var buf bytes.Buffer
	cl := NewConsoleLogger(&buf, "info")

	cl.LogProgress(33.3, "Testing churn-native on native")

	out := buf.String()
	assert.Contains(t, out, "33%")
	assert.Contains(t, out, "Testing churn-native on native")
}

func TestConcurrentLogging(t *testing.T) {
	var buf bytes.Buffer
	cl := NewConsoleLogger(&buf, "info")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cl.LogInfo("concurrent message")
		}()
	}
	wg.Wait()

	lines := strings.Count(buf.String(), "\n")
	assert.Equal(t, 20, lines)
}
