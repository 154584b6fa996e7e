// Package vault writes the generated notes, indexes and media files under
// the output root.
package vault

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Writer writes files relative to a vault root. Every write goes to a
// temporary file first and is renamed into place, so an interrupted run
// never leaves a half-written note.
type Writer struct {
	Root string
}

// NewWriter creates the vault root if needed
func NewWriter(root string) (*Writer, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &Writer{Root: root}, nil
}

// Path returns the absolute location of a vault-relative path
func (w *Writer) Path(rel string) string {
	return filepath.Join(w.Root, filepath.FromSlash(rel))
}

// Exists reports whether a regular file exists at rel
func (w *Writer) Exists(rel string) bool {
	info, err := os.Stat(w.Path(rel))
	return err == nil && info.Mode().IsRegular()
}

// WriteFile writes data to rel, creating parent directories
func (w *Writer) WriteFile(rel string, data []byte) error {
	return w.Create(rel, bytes.NewReader(data))
}

// Create streams r into rel, creating parent directories
func (w *Writer) Create(rel string, r io.Reader) error {
	target := w.Path(rel)
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp := filepath.Join(dir, ".tmp-"+uuid.New().String())
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to write %s: %w", rel, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write %s: %w", rel, err)
	}

	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to move %s into place: %w", rel, err)
	}
	return nil
}
