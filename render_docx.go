package mdtransform

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/LoserCoderLi/markdown-transform/internal/docx"
	"github.com/LoserCoderLi/markdown-transform/internal/fileutil"
)

// intermediateDOCXFile is the engine's raw output before cover, TOC, and
// header composition.
const intermediateDOCXFile = "intermediate.docx"

// renderDOCX converts in two stages. The engine first produces an
// intermediate document from the reference template, with a field-based
// TOC three levels deep. The composer then splices the cover page in front
// of the body and installs the running headers, footers, and optional
// first-page logo. The intermediate is removed once composition succeeds.
func renderDOCX(ctx context.Context, runner CommandRunner, sourceDir, outputPath, templatePath string, resourcePaths []string, content string, opts docx.ComposeOptions) error {
	scratch := filepath.Join(sourceDir, scratchFile)
	cleanup, err := fileutil.WriteScratchFile(scratch, content)
	if err != nil {
		return err
	}
	defer cleanup()

	intermediate := filepath.Join(filepath.Dir(outputPath), intermediateDOCXFile)
	args := []string{
		scratchFile,
		"-o", filepath.ToSlash(intermediate),
		"--toc",
		"--toc-depth=3",
		"--reference-doc", templatePath,
		"--resource-path", joinResourcePaths(resourcePaths),
		"--wrap=none",
	}
	if err := runEngine(ctx, runner, sourceDir, args...); err != nil {
		return err
	}

	if err := docx.Compose(intermediate, outputPath, opts); err != nil {
		return fmt.Errorf("composing document: %w", err)
	}
	_ = os.Remove(intermediate)
	return nil
}
