package mdtransform

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/LoserCoderLi/markdown-transform/internal/fileutil"
)

// scratchFile is the intermediate Markdown written beside the source
// document for the engine to consume. It is removed after every run, even
// a failed one, so a retry starts clean.
const scratchFile = "temp.md"

// joinResourcePaths builds the engine's search-path argument from the
// resolved session directories.
func joinResourcePaths(paths []string) string {
	return strings.Join(paths, string(os.PathListSeparator))
}

// renderPDF runs the engine over preprocessed content with the xelatex
// backend and the session's preamble included in the header. The engine
// runs with the source directory as working directory so bare relative
// references still resolve.
func renderPDF(ctx context.Context, runner CommandRunner, sourceDir, outputPath, preamblePath string, resourcePaths []string, content string) error {
	scratch := filepath.Join(sourceDir, scratchFile)
	cleanup, err := fileutil.WriteScratchFile(scratch, content)
	if err != nil {
		return err
	}
	defer cleanup()

	args := []string{
		scratchFile,
		"-o", filepath.ToSlash(outputPath),
		"--pdf-engine=xelatex",
		"--include-in-header=" + preamblePath,
		"--resource-path", joinResourcePaths(resourcePaths),
		"-V", "tables=true",
		"-V", "longtable=true",
		"-V", "booktabs=true",
		"--listings",
		"--highlight-style=pygments",
		"-V", "geometry:margin=1in",
	}
	return runEngine(ctx, runner, sourceDir, args...)
}
