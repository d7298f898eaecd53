package promote

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbrus062/bookshelf-operator/internal/manifest"
)

func setupBatch(t *testing.T, files map[string]string) string {
	t.Helper()
	batchDir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(batchDir, name), []byte(content), 0o644))
	}
	return batchDir
}

func TestPlan_OnlyMatchedFilenames(t *testing.T) {
	batchDir := setupBatch(t, map[string]string{"dante.txt": "inferno"})
	entries := []manifest.Entry{
		{RelPath: "Primary/Classics/Dante.txt", URL: "http://x/dante.txt"},
		{RelPath: "Primary/Classics/Homer.txt", URL: "http://x/homer.txt"},
	}

	root := t.TempDir()
	plan, err := Plan(entries, batchDir, root)
	require.NoError(t, err)

	require.Len(t, plan, 1)
	assert.Equal(t, filepath.Join(batchDir, "dante.txt"), plan[0].Source)
	assert.Equal(t, filepath.Join(root, "Primary", "Classics", "Dante.txt"), plan[0].Dest)
}

func TestPlan_IgnoresBatchSubdirectories(t *testing.T) {
	batchDir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(batchDir, "dante.txt"), 0o755))

	plan, err := Plan([]manifest.Entry{{RelPath: "Primary/dante.txt"}}, batchDir, t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, plan)
}

func TestExecute_CopiesAndPreservesMode(t *testing.T) {
	batchDir := setupBatch(t, map[string]string{"dante.txt": "inferno"})
	require.NoError(t, os.Chmod(filepath.Join(batchDir, "dante.txt"), 0o600))

	root := t.TempDir()
	plan := []Item{{
		Source: filepath.Join(batchDir, "dante.txt"),
		Dest:   filepath.Join(root, "Primary", "Classics", "Dante.txt"),
	}}

	counts, err := Execute(plan, nil)
	require.NoError(t, err)
	assert.Equal(t, Counts{Copied: 1}, counts)

	got, err := os.ReadFile(plan[0].Dest)
	require.NoError(t, err)
	assert.Equal(t, "inferno", string(got))

	info, err := os.Stat(plan[0].Dest)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestExecute_NeverOverwrites(t *testing.T) {
	batchDir := setupBatch(t, map[string]string{"dante.txt": "new translation"})

	root := t.TempDir()
	dest := filepath.Join(root, "Dante.txt")
	require.NoError(t, os.WriteFile(dest, []byte("first edition"), 0o644))

	counts, err := Execute([]Item{{Source: filepath.Join(batchDir, "dante.txt"), Dest: dest}}, nil)
	require.NoError(t, err)
	assert.Equal(t, Counts{Existed: 1}, counts)

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "first edition", string(got), "existing destination must stay byte-for-byte unchanged")
}

func TestExecute_RerunCountsCopiedAsExisting(t *testing.T) {
	batchDir := setupBatch(t, map[string]string{"dante.txt": "inferno"})
	plan := []Item{{
		Source: filepath.Join(batchDir, "dante.txt"),
		Dest:   filepath.Join(t.TempDir(), "Dante.txt"),
	}}

	first, err := Execute(plan, nil)
	require.NoError(t, err)
	assert.Equal(t, Counts{Copied: 1}, first)

	second, err := Execute(plan, nil)
	require.NoError(t, err)
	assert.Equal(t, Counts{Existed: 1}, second)
}

func TestConfirmers(t *testing.T) {
	plan := []Item{{Source: "a", Dest: "b"}}

	ok, err := AlwaysConfirm{}.Confirm(plan)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = NeverConfirm{}.Confirm(plan)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPromptConfirm_ExactTokenOnly(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"yes\n", true},
		{"  yes  \n", true},
		{"y\n", false},
		{"YES\n", false},
		{"no\n", false},
		{"\n", false},
		{"", false}, // EOF counts as a decline
	}
	for _, tt := range tests {
		var out bytes.Buffer
		p := PromptConfirm{In: strings.NewReader(tt.input), Out: &out}
		ok, err := p.Confirm([]Item{{Source: "a", Dest: "b"}})
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.want, ok, "input %q", tt.input)
		assert.Contains(t, out.String(), ConfirmToken)
	}
}

func TestDescribe(t *testing.T) {
	var out bytes.Buffer
	Describe([]Item{{Source: "/batch/dante.txt", Dest: "/root/Dante.txt"}}, &out)
	assert.Equal(t, "  /batch/dante.txt -> /root/Dante.txt\n", out.String())
}
