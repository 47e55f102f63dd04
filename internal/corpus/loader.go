// Package corpus loads curated knowledge documents, splits them into
// section-bounded chunks and writes them to the vector store.
package corpus

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Document is one corpus file read from disk.
type Document struct {
	Path  string
	Title string
	Text  string
}

// LoadDir reads the .md and .txt corpus files under root, skipping empty
// files. The document title is the first level-one heading, falling back to
// the file name without extension.
func LoadDir(root string) ([]Document, error) {
	var docs []Document

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".md" && ext != ".txt" {
			return nil
		}

		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read corpus file %s: %w", path, err)
		}

		text := strings.TrimSpace(string(raw))
		if text == "" {
			return nil
		}

		docs = append(docs, Document{
			Path:  path,
			Title: documentTitle(path, text),
			Text:  text,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return docs, nil
}

func documentTitle(path, text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
		if line != "" && !strings.HasPrefix(line, "#") {
			break
		}
	}

	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
