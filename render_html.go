package mdtransform

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/LoserCoderLi/markdown-transform/internal/fileutil"
)

// StylesheetFile is the shared stylesheet under the data root's templates
// directory. It is written once, on first HTML conversion, and shared by
// every session afterward; an operator may edit it in place.
const StylesheetFile = "templates/styles.css"

// renderHTML runs the engine in self-contained mode so the output carries
// every image and the stylesheet inline.
func renderHTML(ctx context.Context, runner CommandRunner, sourceDir, outputPath, stylesheetPath string, resourcePaths []string, content string) error {
	scratch := filepath.Join(sourceDir, scratchFile)
	cleanup, err := fileutil.WriteScratchFile(scratch, content)
	if err != nil {
		return err
	}
	defer cleanup()

	args := []string{
		scratchFile,
		"-o", filepath.ToSlash(outputPath),
		"--self-contained",
		"--resource-path", joinResourcePaths(resourcePaths),
		"-c", stylesheetPath,
	}
	return runEngine(ctx, runner, sourceDir, args...)
}

// EnsureStylesheet writes the default stylesheet under dataRoot if one is
// not already present, and returns its path.
func EnsureStylesheet(dataRoot string) (string, error) {
	path := filepath.Join(dataRoot, filepath.FromSlash(StylesheetFile))
	if fileutil.FileExists(path) {
		return path, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create stylesheet dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultStylesheet), 0o644); err != nil {
		return "", fmt.Errorf("write stylesheet: %w", err)
	}
	return path, nil
}

const defaultStylesheet = `body {
    font-family: Arial, sans-serif;
    margin: 20px;
    background-color: #f9f9f9;
    color: #333;
}

h1, h2, h3, h4, h5, h6 {
    color: #444;
    margin-top: 1.2em;
    margin-bottom: 0.6em;
}

h1 {
    font-size: 2.5em;
    border-bottom: 2px solid #ddd;
    padding-bottom: 0.3em;
}

h2 {
    font-size: 2em;
    border-bottom: 1px solid #ddd;
    padding-bottom: 0.2em;
}

h3 {
    font-size: 1.75em;
}

p {
    line-height: 1.6;
    margin-bottom: 1.2em;
}

a {
    color: #0066cc;
    text-decoration: none;
}

a:hover {
    text-decoration: underline;
}

ul, ol {
    margin-left: 20px;
    margin-bottom: 1.2em;
}

code {
    font-family: Consolas, "Courier New", monospace;
    background-color: #f4f4f4;
    padding: 2px 4px;
    border-radius: 4px;
}

pre code {
    display: block;
    padding: 10px;
    background-color: #f4f4f4;
    border: 1px solid #ddd;
    border-radius: 4px;
    overflow-x: auto;
}

blockquote {
    border-left: 4px solid #ddd;
    padding-left: 1em;
    color: #666;
    margin: 1.2em 0;
    background-color: #f4f4f4;
}

table {
    width: 100%;
    border-collapse: collapse;
    margin-bottom: 1.2em;
}

table, th, td {
    border: 1px solid #ddd;
    padding: 0.6em;
}

th {
    background-color: #f2f2f2;
    text-align: left;
}
`
