package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspectReportsVocabularyAndSplits(t *testing.T) {
	dir := t.TempDir()
	manifestPath := filepath.Join(dir, "data_file.csv")
	require.NoError(t, os.WriteFile(manifestPath, []byte("train,walk,a,20\ntrain,run,b,15\ntest,walk,c,5\n"), 0644))

	t.Setenv("MANIFEST_PATH", manifestPath)
	t.Setenv("CACHE_ROOT", filepath.Join(dir, "npz"))
	t.Setenv("MIN_SEQ_LENGTH", "12")
	t.Setenv("OCCLUSION_CLASS", "walk")
	t.Setenv("BATCH_SIZE", "2")
	t.Setenv("SHUFFLE_SEED", "1")
	t.Setenv("LOG_LEVEL", "error")

	root, a := newRootCommand()
	defer a.close()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"inspect"})

	require.NoError(t, root.Execute())

	got := out.String()
	assert.Contains(t, got, "(3 records, 2 within [12,300] frames)")
	assert.Contains(t, got, "  class 0: run\n  class 1: walk\n")
	assert.Contains(t, got, `occlusion: 10 frames blanked for class "walk"`)
	assert.Contains(t, got, "train: 2 samples, 0 batches of 2 per epoch")
	assert.Contains(t, got, "test: 0 samples, 0 batches of 2 per epoch")
}

func TestInspectFailsWithoutManifest(t *testing.T) {
	t.Setenv("MANIFEST_PATH", filepath.Join(t.TempDir(), "missing.csv"))
	t.Setenv("LOG_LEVEL", "error")

	root, a := newRootCommand()
	defer a.close()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"inspect"})

	assert.ErrorContains(t, root.Execute(), "missing.csv")
}
