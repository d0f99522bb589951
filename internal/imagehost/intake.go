// AngelaMos | 2026
// intake.go

package imagehost

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"

	"github.com/shyam-international/exportsite/internal/core"
)

const (
	FieldImage      = "image"
	DefaultMaxBytes = 10 << 20
	multipartMemory = 1 << 20
)

var (
	ErrFileTooLarge = errors.New("file too large")
	ErrNotImage     = errors.New("only image files are allowed")
)

// FromRequest reads the optional image part of a multipart request. It
// returns nil without error when no file was sent.
func FromRequest(r *http.Request, field string, maxBytes int64) (*Upload, error) {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return nil, nil
	}

	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, fmt.Errorf("read upload: %w: %w", core.ErrInvalidInput, err)
	}
	defer file.Close() //nolint:errcheck // read-only multipart part

	if header.Size > maxBytes {
		return nil, ErrFileTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, ErrFileTooLarge
	}

	mime := mimetype.Detect(data)
	if !strings.HasPrefix(mime.String(), "image/") {
		return nil, ErrNotImage
	}

	ext := mime.Extension()
	if ext == "" {
		ext = strings.ToLower(filepath.Ext(header.Filename))
	}

	return &Upload{
		Filename:    header.Filename,
		ContentType: mime.String(),
		Ext:         ext,
		Data:        data,
	}, nil
}

// ParseForm parses a multipart body capped at maxBytes plus form overhead.
// Non-multipart requests are left untouched.
func ParseForm(w http.ResponseWriter, r *http.Request, maxBytes int64) error {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return nil
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return ErrFileTooLarge
		}
		return fmt.Errorf("parse form: %w: %w", core.ErrInvalidInput, err)
	}
	return nil
}

// Fit shrinks the image to fit within width x height, preserving aspect
// ratio and never enlarging. Formats imaging cannot decode pass through.
func Fit(u *Upload, width, height int) *Upload {
	if u == nil || width <= 0 || height <= 0 {
		return u
	}

	img, err := imaging.Decode(bytes.NewReader(u.Data), imaging.AutoOrientation(true))
	if err != nil {
		return u
	}

	b := img.Bounds()
	if b.Dx() <= width && b.Dy() <= height {
		return u
	}

	format, err := imaging.FormatFromExtension(u.Ext)
	if err != nil {
		return u
	}

	var buf bytes.Buffer
	fitted := imaging.Fit(img, width, height, imaging.Lanczos)
	if err := imaging.Encode(&buf, fitted, format, imaging.JPEGQuality(85)); err != nil {
		return u
	}

	out := *u
	out.Data = buf.Bytes()
	return &out
}

// UploadError maps intake errors to client responses.
func UploadError(err error) *core.AppError {
	switch {
	case errors.Is(err, ErrFileTooLarge):
		return core.NewAppError(
			core.ErrInvalidInput,
			"File too large (max 10MB)",
			http.StatusBadRequest,
			"LIMIT_FILE_SIZE",
		)
	case errors.Is(err, ErrNotImage):
		return core.BadRequestError("Only image files are allowed")
	case errors.Is(err, core.ErrInvalidInput):
		return core.BadRequestError("File upload failed: " + err.Error())
	default:
		return core.UpstreamError("Image upload failed", err)
	}
}
