package mdtransform

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for library operations.
var (
	// Input validation errors. An empty token is invalid, not a distinct
	// case.
	ErrInvalidToken  = errors.New("invalid session token")
	ErrInvalidFormat = errors.New("invalid output format")
	ErrEmptyFilename = errors.New("filename cannot be empty")

	// Extraction errors.
	ErrNoMarkdownInArchive = errors.New("archive contains no markdown file")

	// Lookup errors.
	ErrTokenNotFound = errors.New("no markdown file recorded for token")

	// Session errors.
	ErrSessionNotFound = errors.New("session directory does not exist")

	// Conversion errors.
	ErrArtifactNotCreated = errors.New("artifact was not created")
	ErrArtifactNotFound   = errors.New("artifact not found")
	ErrImageMeasure       = errors.New("failed to measure image")

	// Parameter validation errors.
	ErrFieldTooLong = errors.New("field exceeds maximum length")
	ErrInvalidDate  = errors.New("invalid date value")
)

// EngineError reports a non-zero exit from the external typesetting engine.
// It carries the full argv, exit code, and captured stderr so that engine
// failure causes stay distinguishable in logs even though the HTTP boundary
// collapses them into one generic message.
type EngineError struct {
	Args     []string
	ExitCode int
	Stderr   string
}

func (e *EngineError) Error() string {
	msg := fmt.Sprintf("engine %s exited with code %d", e.Args[0], e.ExitCode)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}
