package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundamental-grader/internal/domain"
	"fundamental-grader/internal/grading"
	"fundamental-grader/internal/pipeline"
)

func newTestPipeline(t *testing.T, outputDir string) *pipeline.GradingPipeline {
	t.Helper()
	engine, err := grading.NewEngine(grading.DefaultOptions(domain.VariantCore))
	require.NoError(t, err)
	return pipeline.NewGradingPipeline(engine, outputDir)
}

func TestRun_Fixtures(t *testing.T) {
	dir := t.TempDir()

	out, err := run(context.Background(), newTestPipeline(t, dir), domain.VariantCore, true, "")
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Len(t, out.Result.Companies, 12)
	assert.FileExists(t, filepath.Join(dir, pipeline.FileGradedCSV))
}

func TestRun_FixturesReportsPipelineError(t *testing.T) {
	// A regular file where the output directory should be makes writing fail.
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	out, err := run(context.Background(), newTestPipeline(t, filepath.Join(blocker, "out")), domain.VariantCore, true, "")
	require.Error(t, err)
	assert.Nil(t, out)
}

func TestRun_MissingInputFile(t *testing.T) {
	out, err := run(context.Background(), newTestPipeline(t, ""), domain.VariantCore, false, filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.Nil(t, out)
}
