package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadDirReadsMarkdownAndText(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "lung-cancer.md", "# Lung cancer\n\nCommon symptoms include persistent cough.")
	writeFile(t, dir, "notes.txt", "Plain text corpus notes.")
	writeFile(t, dir, "ignored.json", `{"not": "corpus"}`)
	writeFile(t, dir, "empty.md", "   \n")

	docs, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	byTitle := make(map[string]Document, len(docs))
	for _, doc := range docs {
		byTitle[doc.Title] = doc
	}

	lung, ok := byTitle["Lung cancer"]
	require.True(t, ok)
	assert.Contains(t, lung.Text, "persistent cough")

	notes, ok := byTitle["notes"]
	require.True(t, ok)
	assert.Equal(t, "Plain text corpus notes.", notes.Text)
}

func TestLoadDirRecursesIntoSubdirectories(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, filepath.Join("cancers", "melanoma.md"), "# Melanoma\n\nSkin cancer overview.")

	docs, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Melanoma", docs[0].Title)
}

func TestLoadDirTitleFallsBackToFilename(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "breast-cancer.md", "Screening guidelines without a heading.")

	docs, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "breast-cancer", docs[0].Title)
}

func TestLoadDirMissingRoot(t *testing.T) {
	_, err := LoadDir(filepath.Join(t.TempDir(), "does-not-exist"))
	require.Error(t, err)
}
