package main

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	mdtransform "github.com/LoserCoderLi/markdown-transform"
)

type handlers struct {
	svc            *mdtransform.Service
	maxUploadBytes int64
}

// upload accepts a multipart zip archive under the "file" field, registers
// a session, and returns its token.
func (h *handlers) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		respondError(w, http.StatusBadRequest, "no file selected")
		return
	}

	archivePath, cleanup, err := stashUpload(file)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "storing upload failed")
		return
	}
	defer cleanup()

	// A client may re-upload into an existing session by sending its urlid;
	// the source directory is cleared and replaced.
	result, err := h.svc.Upload(r.Context(), archivePath, r.FormValue("urlid"))
	if err != nil {
		if errors.Is(err, mdtransform.ErrNoMarkdownInArchive) {
			respondError(w, http.StatusBadRequest, "archive contains no markdown document")
			return
		}
		if errors.Is(err, mdtransform.ErrInvalidToken) {
			respondError(w, http.StatusBadRequest, "invalid urlid")
			return
		}
		respondError(w, http.StatusInternalServerError, "extracting archive failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"success": "file uploaded and extracted",
		"urlid":   result.Token,
		"name":    result.MarkdownFile,
	})
}

// convert runs a conversion and returns the artifact's download location.
func (h *handlers) convert(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, "invalid form data")
		return
	}

	format := r.FormValue("output_format")
	if format == "" {
		// Older clients send the short field name.
		format = r.FormValue("format")
	}
	if format == "" {
		respondError(w, http.StatusBadRequest, "no format specified")
		return
	}
	token := r.FormValue("urlid")
	if token == "" {
		respondError(w, http.StatusBadRequest, "no urlid specified")
		return
	}

	params := mdtransform.ConvertParams{
		Title:       r.FormValue("title"),
		Version:     r.FormValue("version"),
		Statement:   r.FormValue("statement"),
		LeftHeader:  r.FormValue("left_header"),
		RightHeader: r.FormValue("right_header"),
		CoverFooter: r.FormValue("cover_footer"),
		Date:        r.FormValue("date"),
		UseTemplate: r.FormValue("use_template") != "false",
	}

	var logo io.Reader
	if logoFile, _, err := r.FormFile("logo"); err == nil {
		defer logoFile.Close()
		logo = logoFile
	}

	artifact, err := h.svc.Convert(r.Context(), token, format, params, logo)
	if err != nil {
		h.convertError(w, format, err)
		return
	}

	name := filepath.Base(artifact)
	respondJSON(w, http.StatusOK, map[string]string{
		"success":  "conversion finished",
		"urlid":    token,
		"file":     name,
		"download": "/download/" + token + "/" + name,
	})
}

// convertError maps pipeline failures to status codes. Engine diagnostics
// never leave the server; the logs carry them.
func (h *handlers) convertError(w http.ResponseWriter, format string, err error) {
	switch {
	case errors.Is(err, mdtransform.ErrInvalidFormat):
		respondError(w, http.StatusBadRequest, "invalid format")
	case errors.Is(err, mdtransform.ErrInvalidToken), errors.Is(err, mdtransform.ErrFieldTooLong),
		errors.Is(err, mdtransform.ErrInvalidDate):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, mdtransform.ErrTokenNotFound), errors.Is(err, mdtransform.ErrSessionNotFound):
		respondError(w, http.StatusBadRequest, "unknown urlid")
	default:
		respondError(w, http.StatusInternalServerError, format+" file was not created")
	}
}

// download serves a finished artifact from the session output directory.
func (h *handlers) download(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "urlid")
	filename := chi.URLParam(r, "filename")

	path, err := h.svc.Artifact(token, filename)
	if err != nil {
		if errors.Is(err, mdtransform.ErrArtifactNotFound) {
			respondError(w, http.StatusNotFound, "file not found")
			return
		}
		respondError(w, http.StatusBadRequest, "invalid request")
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	http.ServeFile(w, r, path)
}

// preview renders the session's document as plain HTML.
func (h *handlers) preview(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "urlid")

	html, err := h.svc.Preview(r.Context(), token)
	if err != nil {
		if errors.Is(err, mdtransform.ErrTokenNotFound) || errors.Is(err, mdtransform.ErrInvalidToken) {
			respondError(w, http.StatusNotFound, "unknown urlid")
			return
		}
		respondError(w, http.StatusInternalServerError, "preview failed")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(html))
}

// cleanup deletes a session's directories on request.
func (h *handlers) cleanup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URLID string `json:"urlid"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "parsing request failed")
		return
	}
	if req.URLID == "" {
		respondError(w, http.StatusBadRequest, "no urlid specified")
		return
	}

	if err := h.svc.Cleanup(req.URLID); err != nil {
		if errors.Is(err, mdtransform.ErrInvalidToken) {
			respondError(w, http.StatusBadRequest, "invalid urlid")
			return
		}
		respondError(w, http.StatusInternalServerError, "cleanup failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"success": "session directories removed"})
}

// stashUpload copies the multipart part to a temp file so the extractor
// can open it as a zip.
func stashUpload(file multipart.File) (string, func(), error) {
	tmp, err := os.CreateTemp("", "mdtransform-upload-*.zip")
	if err != nil {
		return "", nil, err
	}
	path := tmp.Name()
	cleanup := func() { _ = os.Remove(path) }

	if _, err := io.Copy(tmp, file); err != nil {
		_ = tmp.Close()
		cleanup()
		return "", nil, err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", nil, err
	}
	return path, cleanup, nil
}
