package mdtransform

import (
	"fmt"
	"os"
	"path/filepath"
)

// Directory suffixes for the per-session triple under the data root.
const (
	outputDirSuffix   = "_out"
	templateDirSuffix = "_template"
)

// Workspace maps tokens to their directory triple under a single data
// root: the source directory named after the token, plus sibling output
// and template directories.
type Workspace struct {
	Root string
}

// SourceDir is where an uploaded archive is extracted.
func (w Workspace) SourceDir(token string) string {
	return filepath.Join(w.Root, token)
}

// OutputDir holds finished artifacts for download.
func (w Workspace) OutputDir(token string) string {
	return filepath.Join(w.Root, token+outputDirSuffix)
}

// TemplateDir holds generated preambles and reference documents.
func (w Workspace) TemplateDir(token string) string {
	return filepath.Join(w.Root, token+templateDirSuffix)
}

// Prepare creates the source directory for a fresh upload, clearing any
// leftover content from a previous upload under the same token.
func (w Workspace) Prepare(token string) error {
	dir := w.SourceDir(token)
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("clearing session dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating session dir: %w", err)
	}
	return nil
}

// Ensure creates the output and template directories ahead of a
// conversion.
func (w Workspace) Ensure(token string) error {
	for _, dir := range []string{w.OutputDir(token), w.TemplateDir(token)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating session dir: %w", err)
		}
	}
	return nil
}

// Remove deletes the whole triple. Missing directories are not an error.
func (w Workspace) Remove(token string) error {
	var firstErr error
	for _, dir := range []string{w.SourceDir(token), w.OutputDir(token), w.TemplateDir(token)} {
		if err := os.RemoveAll(dir); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Exists reports whether the token has an extracted source directory.
func (w Workspace) Exists(token string) bool {
	info, err := os.Stat(w.SourceDir(token))
	return err == nil && info.IsDir()
}
