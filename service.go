package mdtransform

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/LoserCoderLi/markdown-transform/internal/docx"
	"github.com/LoserCoderLi/markdown-transform/internal/fileutil"
	"github.com/LoserCoderLi/markdown-transform/internal/logutil"
)

// logoFile is where an uploaded cover logo is stored inside the session
// source directory.
const logoFile = "logo.png"

// Service owns the conversion pipeline: session workspaces, the upload
// ledger, and the renderers. A single Service handles any number of
// concurrent sessions; conversions for the same token are serialized.
type Service struct {
	ws      Workspace
	ledger  *Ledger
	names   *filenameCache
	runner  CommandRunner
	preview *previewRenderer
	now     func() time.Time

	uploadLog   *slog.Logger
	convertLog  *slog.Logger
	downloadLog *slog.Logger

	mu       sync.Mutex
	inflight map[string]*sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithRunner replaces the engine invoker, primarily for tests.
func WithRunner(r CommandRunner) Option {
	return func(s *Service) { s.runner = r }
}

// WithClock replaces the time source, primarily for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a Service rooted at dataRoot with per-stream rotating
// logs under logDir. An empty logDir sends logs to stderr.
func NewService(dataRoot, logDir string, opts ...Option) *Service {
	s := &Service{
		ws:          Workspace{Root: dataRoot},
		runner:      &ExecRunner{},
		preview:     newPreviewRenderer(),
		now:         time.Now,
		uploadLog:   logutil.NewStream(logDir, "upload"),
		convertLog:  logutil.NewStream(logDir, "convert"),
		downloadLog: logutil.NewStream(logDir, "download"),
		inflight:    make(map[string]*sync.Mutex),
	}
	s.ledger = NewLedger(dataRoot, s.uploadLog)
	s.names = newFilenameCache(s.ledger)
	for _, opt := range opts {
		opt(s)
	}
	s.ledger.now = s.now
	return s
}

// UploadResult reports a completed upload.
type UploadResult struct {
	Token        string
	MarkdownFile string // basename of the document inside the archive
}

// Upload registers a session from a zip archive: extracts it into a
// fresh source directory and records the Markdown filename in the ledger.
// An empty token mints a new one; a caller-supplied token re-uploads into
// that session, clearing and replacing its source directory so a later
// conversion never mixes old and new assets. The archive must contain at
// least one .md entry or the whole upload is rejected before anything is
// written.
func (s *Service) Upload(ctx context.Context, archivePath, token string) (UploadResult, error) {
	if err := ctx.Err(); err != nil {
		return UploadResult{}, err
	}
	if token != "" && !ValidToken(token) {
		return UploadResult{}, ErrInvalidToken
	}

	ok, err := fileutil.HasMarkdownEntry(archivePath)
	if err != nil {
		return UploadResult{}, fmt.Errorf("inspecting archive: %w", err)
	}
	if !ok {
		return UploadResult{}, ErrNoMarkdownInArchive
	}

	if token == "" {
		token = NewToken(s.now())
	}
	if err := s.ws.Prepare(token); err != nil {
		return UploadResult{}, err
	}
	if err := fileutil.ExtractArchive(archivePath, s.ws.SourceDir(token)); err != nil {
		_ = s.ws.Remove(token)
		return UploadResult{}, fmt.Errorf("extracting archive: %w", err)
	}

	mdFile, err := fileutil.FindMarkdown(s.ws.SourceDir(token))
	if err != nil {
		_ = s.ws.Remove(token)
		return UploadResult{}, err
	}
	if mdFile == "" {
		// The archive's markdown entry sat inside a subdirectory.
		_ = s.ws.Remove(token)
		return UploadResult{}, ErrNoMarkdownInArchive
	}

	s.names.record(token, mdFile)
	s.uploadLog.Info("archive uploaded", "token", token, "markdown", mdFile)
	return UploadResult{Token: token, MarkdownFile: mdFile}, nil
}

// Convert produces an artifact in the requested format and returns its
// path inside the session output directory. Conversions on the same token
// are serialized; distinct tokens convert in parallel.
func (s *Service) Convert(ctx context.Context, token, format string, params ConvertParams, logo io.Reader) (string, error) {
	if !ValidToken(token) {
		return "", ErrInvalidToken
	}
	if !IsValidFormat(format) {
		return "", ErrInvalidFormat
	}
	if err := params.Validate(); err != nil {
		return "", err
	}
	mdFile, found := s.names.lookup(token)
	if !found {
		return "", ErrTokenNotFound
	}
	if !s.ws.Exists(token) {
		return "", ErrSessionNotFound
	}
	params, err := params.withDefaults(s.now())
	if err != nil {
		return "", err
	}

	unlock := s.lockToken(token)
	defer unlock()

	if err := s.ws.Ensure(token); err != nil {
		return "", err
	}

	sourceDir := s.ws.SourceDir(token)
	inputPath := filepath.Join(sourceDir, mdFile)
	raw, err := os.ReadFile(inputPath)
	if err != nil {
		return "", fmt.Errorf("reading markdown: %w", err)
	}

	resourcePaths, err := ResourcePaths(sourceDir)
	if err != nil {
		return "", err
	}

	logoPath := ""
	if logo != nil {
		logoPath = filepath.Join(sourceDir, logoFile)
		if err := saveLogo(logoPath, logo); err != nil {
			return "", err
		}
	}

	outputPath := filepath.Join(s.ws.OutputDir(token), artifactName(mdFile, format))

	start := s.now()
	switch format {
	case FormatPDF:
		err = s.convertPDF(ctx, token, string(raw), outputPath, logoPath, resourcePaths, params)
	case FormatHTML:
		err = s.convertHTML(ctx, token, string(raw), outputPath, resourcePaths, params)
	case FormatDOCX:
		err = s.convertDOCX(ctx, token, string(raw), outputPath, logoPath, resourcePaths, params)
	}
	if err != nil {
		s.convertLog.Error("conversion failed", "token", token, "format", format, "error", err)
		return "", err
	}

	if !fileutil.FileExists(outputPath) {
		s.convertLog.Error("artifact missing after conversion", "token", token, "format", format)
		return "", ErrArtifactNotCreated
	}

	s.convertLog.Info("conversion finished",
		"token", token, "format", format, "elapsed", s.now().Sub(start))
	return outputPath, nil
}

func (s *Service) convertPDF(ctx context.Context, token, content, outputPath, logoPath string, resourcePaths []string, params ConvertParams) error {
	templateDir := s.ws.TemplateDir(token)

	pre := Preprocessor{SourceDir: s.ws.SourceDir(token)}

	// The bare preamble defines none of the cover macros, so the bare path
	// gets a body-only rewrite.
	var preamblePath, prepared string
	var err error
	if params.UseTemplate {
		preamblePath, err = WriteStyledPreamble(templateDir, params.LeftHeader, params.RightHeader, params.CoverFooter)
		if err != nil {
			return err
		}
		prepared, err = pre.ForPDF(content, PDFProlog{
			Title:     params.Title,
			Version:   versionLabel(params.Version),
			Date:      params.Date,
			LogoPath:  logoPath,
			Statement: params.Statement,
		})
	} else {
		preamblePath, err = WriteBarePreamble(templateDir)
		if err != nil {
			return err
		}
		prepared, err = pre.ForPDFBody(content)
	}
	if err != nil {
		return err
	}

	return renderPDF(ctx, s.runner, s.ws.SourceDir(token), outputPath, preamblePath, resourcePaths, prepared)
}

func (s *Service) convertHTML(ctx context.Context, token, content, outputPath string, resourcePaths []string, params ConvertParams) error {
	stylesheet, err := EnsureStylesheet(s.ws.Root)
	if err != nil {
		return err
	}

	pre := Preprocessor{SourceDir: s.ws.SourceDir(token)}
	prepared := pre.ForHTML(content, params.Title)

	return renderHTML(ctx, s.runner, s.ws.SourceDir(token), outputPath, stylesheet, resourcePaths, prepared)
}

func (s *Service) convertDOCX(ctx context.Context, token, content, outputPath, logoPath string, resourcePaths []string, params ConvertParams) error {
	templatePath, err := WriteDOCXTemplate(s.ws.TemplateDir(token), params.LeftHeader, params.RightHeader)
	if err != nil {
		return err
	}

	pre := Preprocessor{SourceDir: s.ws.SourceDir(token)}
	prepared := pre.ForDOCX(content)

	return renderDOCX(ctx, s.runner, s.ws.SourceDir(token), outputPath, templatePath, resourcePaths, prepared, docx.ComposeOptions{
		Title:       params.Title,
		Version:     versionLabel(params.Version),
		Date:        params.Date,
		Statement:   params.Statement,
		LeftHeader:  params.LeftHeader,
		RightHeader: params.RightHeader,
		LogoPath:    logoPath,
	})
}

// Artifact resolves a download request to a file path inside the session's
// output directory. The filename is restricted to a bare basename so a
// request cannot reach outside the session.
func (s *Service) Artifact(token, filename string) (string, error) {
	if !ValidToken(token) {
		return "", ErrInvalidToken
	}
	if filename == "" || filename != filepath.Base(filename) || strings.HasPrefix(filename, ".") {
		return "", ErrEmptyFilename
	}
	path := filepath.Join(s.ws.OutputDir(token), filename)
	if !fileutil.FileExists(path) {
		s.downloadLog.Warn("artifact not found", "token", token, "file", filename)
		return "", ErrArtifactNotFound
	}
	s.downloadLog.Info("artifact served", "token", token, "file", filename)
	return path, nil
}

// Cleanup removes a session eagerly: the directory triple, the memo, and
// the token's ledger records, so a later lookup reports not-found rather
// than a vanished session.
func (s *Service) Cleanup(token string) error {
	if !ValidToken(token) {
		return ErrInvalidToken
	}
	s.names.invalidate(token)
	s.ledger.Remove(token)
	return s.ws.Remove(token)
}

// Preview renders the session's Markdown to plain HTML without invoking
// the engine.
func (s *Service) Preview(ctx context.Context, token string) (string, error) {
	if !ValidToken(token) {
		return "", ErrInvalidToken
	}
	mdFile, found := s.names.lookup(token)
	if !found {
		return "", ErrTokenNotFound
	}
	raw, err := os.ReadFile(filepath.Join(s.ws.SourceDir(token), mdFile))
	if err != nil {
		return "", fmt.Errorf("reading markdown: %w", err)
	}
	return s.preview.Render(ctx, strings.TrimSuffix(mdFile, filepath.Ext(mdFile)), string(raw))
}

// lockToken serializes work per token. The per-token mutexes live for the
// process lifetime; the universe of tokens in a day is small.
func (s *Service) lockToken(token string) (unlock func()) {
	s.mu.Lock()
	m, ok := s.inflight[token]
	if !ok {
		m = &sync.Mutex{}
		s.inflight[token] = m
	}
	s.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// artifactName swaps the document extension for the output format's.
func artifactName(mdFile, format string) string {
	base := strings.TrimSuffix(mdFile, filepath.Ext(mdFile))
	return base + "." + format
}

func saveLogo(path string, logo io.Reader) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("saving logo: %w", err)
	}
	if _, err := io.Copy(f, logo); err != nil {
		_ = f.Close()
		return fmt.Errorf("saving logo: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("saving logo: %w", err)
	}
	return nil
}
