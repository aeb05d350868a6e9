package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rahulagowda004/FIle-Explorer-Agent/internal/tools"
)

// makeTree creates files (relative path -> content) under a temp dir.
func makeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func TestSearchCommand(t *testing.T) {
	isolate(t)
	root := makeTree(t, map[string]string{
		"notes.txt":                  "a",
		"a.tx":                       "b",
		"reports/q1.txt":             "c",
		"reports/deep/x/y/z/far.txt": "d",
	})

	output, err := execute(t, "", "search", "*.txt", "--path", root, "--max-depth", "2")
	require.NoError(t, err, output)

	assert.Contains(t, output, "Found 2 items matching '*.txt'")
	assert.Contains(t, output, filepath.Join(root, "notes.txt"))
	assert.Contains(t, output, filepath.Join(root, "reports", "q1.txt"))
	assert.NotContains(t, output, filepath.Join(root, "a.tx"))
	assert.NotContains(t, output, "far.txt")
}

func TestSearchCommandJSON(t *testing.T) {
	isolate(t)
	root := makeTree(t, map[string]string{
		"config.yaml":     "x",
		"app/config.json": "y",
		"app/readme.md":   "z",
	})

	output, err := execute(t, "", "search", "config", "--path", root, "--type", "files", "--json")
	require.NoError(t, err, output)

	var res tools.SearchOutput
	require.NoError(t, json.Unmarshal([]byte(output), &res), output)
	assert.True(t, res.Success)
	assert.Equal(t, 2, res.TotalCount)
	assert.Len(t, res.FoundItems, 2)
	assert.Equal(t, "files", res.SearchType)
	for _, item := range res.FoundItems {
		assert.Equal(t, "file", item.Type)
		assert.True(t, strings.Contains(item.Name, "config"), item.Name)
	}
}

func TestSearchCommandMaxResults(t *testing.T) {
	isolate(t)
	files := map[string]string{}
	for i := 0; i < 20; i++ {
		files[filepath.Join("many", "f"+string(rune('a'+i))+".log")] = "x"
	}
	root := makeTree(t, files)

	output, err := execute(t, "", "search", "*.log", "--path", root, "--max-results", "5", "--json")
	require.NoError(t, err, output)

	var res tools.SearchOutput
	require.NoError(t, json.Unmarshal([]byte(output), &res))
	assert.Equal(t, 5, res.TotalCount)
	assert.True(t, res.Truncated)
}

func TestSearchCommandErrors(t *testing.T) {
	isolate(t)

	t.Run("missing path", func(t *testing.T) {
		missing := filepath.Join(t.TempDir(), "nope")
		output, err := execute(t, "", "search", "x", "--path", missing)
		assert.Error(t, err)
		assert.Contains(t, output, "does not exist")
	})

	t.Run("invalid type", func(t *testing.T) {
		_, err := execute(t, "", "search", "x", "--path", t.TempDir(), "--type", "links")
		assert.ErrorContains(t, err, "invalid search type")
	})

	t.Run("pattern required", func(t *testing.T) {
		_, err := execute(t, "", "search")
		assert.Error(t, err)
	})
}

func TestDuplicatesCommand(t *testing.T) {
	isolate(t)
	root := makeTree(t, map[string]string{
		"a.txt":      "same content",
		"b.txt":      "same content",
		"sub/c.txt":  "same content",
		"unique.txt": "different!!!",
		"empty.txt":  "",
	})

	output, err := execute(t, "", "duplicates", root)
	require.NoError(t, err, output)
	assert.Contains(t, output, "Found 1 duplicate groups (2 duplicate files")
	assert.Contains(t, output, "Group 1: 3 files")
	assert.NotContains(t, output, "unique.txt")

	output, err = execute(t, "", "duplicates", root, "--recursive=false", "--hash", "blake3")
	require.NoError(t, err, output)
	assert.Contains(t, output, "Group 1: 2 files")
	assert.NotContains(t, output, filepath.Join("sub", "c.txt"))
}

func TestDuplicatesCommandErrors(t *testing.T) {
	isolate(t)

	_, err := execute(t, "", "duplicates", t.TempDir(), "--hash", "md5")
	assert.Error(t, err)

	output, err := execute(t, "", "duplicates", filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
	assert.Contains(t, output, "does not exist")
}
