// Package upload validates uploaded image files before they reach storage.
//
// The validator runs every check and collects every failure instead of
// short-circuiting, so a rejected upload reports all of its problems at once.
package upload

import (
	"bytes"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/rise-and-shine/recipebook/pkg/imageproc"
)

const maxFilenameLength = 255

// Extensions that must never appear anywhere in a filename, including as a
// hidden extension before the final one (e.g. "photo.exe.png").
var forbiddenExtensions = []string{
	"exe", "bat", "cmd", "sh", "php", "pl", "py", "js", "jar", "com", "scr", "msi", "dll",
}

// Characters disallowed in filenames.
const forbiddenFilenameChars = "<>:\"|?*\x00"

// Magic byte signatures per declared MIME type.
var signatures = map[string][][]byte{
	"image/jpeg": {{0xFF, 0xD8, 0xFF}},
	"image/png":  {{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}},
	"image/gif":  {{0x47, 0x49, 0x46, 0x38}},
	"image/webp": {{0x52, 0x49, 0x46, 0x46}}, // RIFF; WEBP marker checked at offset 8
}

// Result aggregates the outcome of all validation checks.
// Any non-empty Errors list means rejection.
type Result struct {
	OK     bool     `json:"ok"`
	Errors []string `json:"errors,omitempty"`
}

// Validator checks uploaded files against configured bounds.
type Validator struct {
	cfg Config
}

// NewValidator creates a file validator with the given bounds.
func NewValidator(cfg Config) *Validator {
	cfg.normalize()
	return &Validator{cfg: cfg}
}

// Config returns the bounds the validator enforces.
func (v *Validator) Config() Config {
	return v.cfg
}

// Validate runs all checks against the file and collects every failure.
func (v *Validator) Validate(data []byte, declaredName, declaredMime string, size int64) Result {
	var errs []string

	errs = append(errs, v.checkSize(data, size)...)
	errs = append(errs, v.checkFilename(declaredName)...)
	errs = append(errs, v.checkMimeType(declaredMime)...)
	errs = append(errs, v.checkExtension(declaredName)...)
	errs = append(errs, v.checkSignature(data, declaredMime)...)
	errs = append(errs, v.checkDimensions(data)...)

	return Result{OK: len(errs) == 0, Errors: errs}
}

func (v *Validator) checkSize(data []byte, size int64) []string {
	var errs []string

	if len(data) == 0 || size == 0 {
		errs = append(errs, "file is empty")
		return errs
	}
	if size < v.cfg.MinFileSize {
		errs = append(errs, fmt.Sprintf("file size %d is below the minimum of %d bytes", size, v.cfg.MinFileSize))
	}
	if size > v.cfg.MaxFileSize {
		errs = append(errs, fmt.Sprintf("file size %d exceeds the maximum of %d bytes", size, v.cfg.MaxFileSize))
	}
	return errs
}

func (v *Validator) checkFilename(name string) []string {
	var errs []string

	if name == "" {
		return append(errs, "filename is empty")
	}
	if len(name) > maxFilenameLength {
		errs = append(errs, fmt.Sprintf("filename exceeds %d characters", maxFilenameLength))
	}
	if strings.Contains(name, "..") || strings.ContainsAny(name, "/\\") {
		errs = append(errs, "filename must not contain path traversal sequences")
	}
	if strings.ContainsAny(name, forbiddenFilenameChars) {
		errs = append(errs, "filename contains forbidden characters")
	}

	// Reject denylisted extensions hidden anywhere before the final one.
	parts := strings.Split(strings.ToLower(name), ".")
	if len(parts) > 2 {
		for _, inner := range parts[1 : len(parts)-1] {
			if slices.Contains(forbiddenExtensions, inner) {
				errs = append(errs, fmt.Sprintf("filename contains a forbidden double extension %q", inner))
			}
		}
	}
	return errs
}

func (v *Validator) checkMimeType(declaredMime string) []string {
	if slices.Contains(v.cfg.AllowedMimeTypes, strings.ToLower(declaredMime)) {
		return nil
	}
	return []string{fmt.Sprintf("mime type %q is not allowed", declaredMime)}
}

func (v *Validator) checkExtension(name string) []string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if ext == "" {
		return []string{"filename has no extension"}
	}
	if slices.Contains(v.cfg.AllowedExtensions, ext) {
		return nil
	}
	return []string{fmt.Sprintf("file extension %q is not allowed", ext)}
}

// checkSignature verifies the leading bytes match the declared MIME type's
// magic numbers. A mismatch rejects the file even when the extension and the
// declared MIME type are both allowed.
func (v *Validator) checkSignature(data []byte, declaredMime string) []string {
	sigs, known := signatures[strings.ToLower(declaredMime)]
	if !known {
		// The declared MIME check already reported unknown types.
		return nil
	}

	for _, sig := range sigs {
		if len(data) >= len(sig) && bytes.Equal(data[:len(sig)], sig) {
			if strings.EqualFold(declaredMime, "image/webp") {
				return v.checkWebPMarker(data)
			}
			return nil
		}
	}
	return []string{fmt.Sprintf("file signature does not match declared mime type %q", declaredMime)}
}

// checkWebPMarker verifies the "WEBP" marker that follows the RIFF header.
func (v *Validator) checkWebPMarker(data []byte) []string {
	if len(data) >= 12 && bytes.Equal(data[8:12], []byte("WEBP")) {
		return nil
	}
	return []string{`file signature does not match declared mime type "image/webp"`}
}

func (v *Validator) checkDimensions(data []byte) []string {
	width, height, err := imageproc.Dimensions(data)
	if err != nil {
		return []string{"file is not a decodable image"}
	}

	var errs []string
	if width < v.cfg.MinWidth || width > v.cfg.MaxWidth {
		errs = append(errs, fmt.Sprintf(
			"image width %d is outside the allowed range [%d, %d]", width, v.cfg.MinWidth, v.cfg.MaxWidth))
	}
	if height < v.cfg.MinHeight || height > v.cfg.MaxHeight {
		errs = append(errs, fmt.Sprintf(
			"image height %d is outside the allowed range [%d, %d]", height, v.cfg.MinHeight, v.cfg.MaxHeight))
	}
	return errs
}
