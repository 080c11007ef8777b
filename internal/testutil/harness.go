// Package testutil provides shared helpers for exercising the full
// pipeline in tests: a thread-safe log buffer and a temp-dir harness that
// writes pipeline files, runs the app, and captures the outcome.
package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gabeda-io/gabeda/internal/app"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds the outcomes of an end-to-end pipeline run.
type HarnessResult struct {
	LogOutput string
	OutputDir string
	Err       error
	App       *app.App
}

// RunPipelineTest writes the given files (pipeline HCL and CSV inputs,
// keyed by relative path) into a temporary directory, runs the app against
// it, and returns the captured result. Exported CSVs land in OutputDir.
func RunPipelineTest(t *testing.T, files map[string]string) *HarnessResult {
	t.Helper()
	return RunPipelineTestWithContext(context.Background(), t, files)
}

// RunPipelineTestWithContext is RunPipelineTest with a caller-provided
// context, for cancellation tests.
func RunPipelineTestWithContext(ctx context.Context, t *testing.T, files map[string]string) *HarnessResult {
	t.Helper()

	tmpDir := t.TempDir()
	for name, content := range files {
		filePath := filepath.Join(tmpDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0o755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0o644))
	}

	outputDir := filepath.Join(tmpDir, "output")
	cfg, err := app.NewConfig(app.Config{
		PipelinePath: tmpDir,
		OutputDir:    outputDir,
		LogLevel:     "debug",
		LogFormat:    "text",
	})
	require.NoError(t, err)

	logBuffer := &SafeBuffer{}
	testApp := app.NewApp(logBuffer, cfg)
	runErr := testApp.Run(ctx)

	return &HarnessResult{
		LogOutput: logBuffer.String(),
		OutputDir: outputDir,
		Err:       runErr,
		App:       testApp,
	}
}
