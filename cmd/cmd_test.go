package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args, capturing cobra's output streams.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func writeTemplates(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, source := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(source), 0o644))
	}
	return dir
}

func TestRenderCommandRequiresTemplate(t *testing.T) {
	_, err := execute(t, "render")
	assert.Error(t, err)
}

func TestRenderCommandUnknownTemplate(t *testing.T) {
	dir := writeTemplates(t, nil)
	_, err := execute(t, "render", "missing", "--templates", dir)
	assert.Error(t, err)
}

func TestCheckCommandReportsFailures(t *testing.T) {
	dir := writeTemplates(t, map[string]string{
		"good.hb":   "fine",
		"broken.hb": "{{#x}}",
	})
	_, err := execute(t, "check", "--templates", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 template(s) failed to compile")
}

func TestCheckCommandPasses(t *testing.T) {
	dir := writeTemplates(t, map[string]string{"good.hb": "fine"})
	_, err := execute(t, "check", "--templates", dir)
	assert.NoError(t, err)
}

func TestLoadDataFiles(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "a.json")
	yamlPath := filepath.Join(dir, "b.yaml")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"x":1}`), 0o644))
	require.NoError(t, os.WriteFile(yamlPath, []byte("y: two"), 0o644))

	contexts, err := loadDataFiles([]string{jsonPath, yamlPath})
	require.NoError(t, err)
	require.Len(t, contexts, 2)

	first, ok := contexts[0].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 1, first["x"])

	second, ok := contexts[1].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "two", second["y"])
}

func TestLoadDataFilesRejectsUnknownExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	_, err := loadDataFiles([]string{path})
	assert.Error(t, err)
}
