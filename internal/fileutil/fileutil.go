// Package fileutil provides file, directory, and archive utilities shared
// by the session and rendering layers.
package fileutil

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Sentinel errors for file utility operations.
var (
	ErrNoMarkdownEntry = errors.New("archive contains no .md entry")
	ErrUnsafeZipEntry  = errors.New("archive entry escapes target directory")
)

// HasMarkdownEntry reports whether the zip archive at path contains at
// least one .md entry, without extracting anything.
func HasMarkdownEntry(path string) (bool, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return false, fmt.Errorf("opening archive: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		if strings.HasSuffix(f.Name, ".md") {
			return true, nil
		}
	}
	return false, nil
}

// ExtractArchive validates that the zip archive contains a Markdown file,
// then extracts all entries into extractTo. The target directory is cleared
// first so a re-upload fully replaces earlier content. Returns
// ErrNoMarkdownEntry without extracting when validation fails.
func ExtractArchive(zipPath, extractTo string) error {
	ok, err := HasMarkdownEntry(zipPath)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoMarkdownEntry
	}

	if err := ClearDirectory(extractTo); err != nil {
		return err
	}
	if err := os.MkdirAll(extractTo, 0o750); err != nil {
		return fmt.Errorf("creating extract dir: %w", err)
	}

	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		if err := extractEntry(f, extractTo); err != nil {
			return err
		}
	}
	return nil
}

// extractEntry writes one archive entry under extractTo, rejecting paths
// that would land outside it.
func extractEntry(f *zip.File, extractTo string) error {
	dest := filepath.Join(extractTo, filepath.FromSlash(f.Name))
	rel, err := filepath.Rel(extractTo, dest)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return fmt.Errorf("%w: %q", ErrUnsafeZipEntry, f.Name)
	}

	if f.FileInfo().IsDir() {
		return os.MkdirAll(dest, 0o750)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o750); err != nil {
		return fmt.Errorf("creating entry dir: %w", err)
	}

	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("opening entry %q: %w", f.Name, err)
	}
	defer src.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o640)
	if err != nil {
		return fmt.Errorf("creating %q: %w", dest, err)
	}
	if _, err := io.Copy(out, src); err != nil {
		_ = out.Close()
		return fmt.Errorf("extracting %q: %w", f.Name, err)
	}
	return out.Close()
}

// ClearDirectory removes every entry inside dir, keeping dir itself.
// A missing dir is not an error.
func ClearDirectory(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading dir: %w", err)
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return fmt.Errorf("removing %q: %w", e.Name(), err)
		}
	}
	return nil
}

// Subdirs returns the names of the immediate subdirectories of dir, in
// directory order.
func Subdirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// AllSubdirs returns the absolute paths of every subdirectory of dir,
// recursively, in lexical walk order. dir itself is not included.
func AllSubdirs(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && path != dir {
			abs, err := filepath.Abs(path)
			if err != nil {
				return err
			}
			paths = append(paths, abs)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking dir: %w", err)
	}
	return paths, nil
}

// FindMarkdown returns the base name of the first .md file directly inside
// dir, in directory order. Returns "" when none exists.
func FindMarkdown(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("reading dir: %w", err)
	}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".md") {
			return e.Name(), nil
		}
	}
	return "", nil
}

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// WriteScratchFile writes content to path, returning a cleanup function
// that removes it. The scratch file lives next to the source it was derived
// from so relative references keep resolving.
func WriteScratchFile(path, content string) (cleanup func(), err error) {
	if err := os.WriteFile(path, []byte(content), 0o640); err != nil {
		return nil, fmt.Errorf("writing scratch file: %w", err)
	}
	return func() { _ = os.Remove(path) }, nil
}
