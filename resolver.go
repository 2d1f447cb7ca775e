package mdtransform

import (
	"fmt"
	"path/filepath"

	"github.com/LoserCoderLi/markdown-transform/internal/fileutil"
)

// ResourcePaths computes the engine's resource search path for a session
// source directory: every subdirectory recursively, then the source
// directory itself, then the first top-level subdirectory again when one
// exists. The trailing repeat biases the engine's first-match-wins search
// toward the conventional single-assets-folder layout. Order is
// significant downstream and is preserved exactly.
func ResourcePaths(sourceDir string) ([]string, error) {
	paths, err := fileutil.AllSubdirs(sourceDir)
	if err != nil {
		return nil, fmt.Errorf("listing resource dirs: %w", err)
	}

	abs, err := filepath.Abs(sourceDir)
	if err != nil {
		return nil, fmt.Errorf("resolving source dir: %w", err)
	}
	paths = append(paths, abs)

	top, err := fileutil.Subdirs(sourceDir)
	if err != nil {
		return nil, fmt.Errorf("listing top-level dirs: %w", err)
	}
	if len(top) > 0 {
		paths = append(paths, filepath.Join(abs, top[0]))
	}
	return paths, nil
}
