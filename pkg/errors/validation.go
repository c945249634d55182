package errors

import (
	"path/filepath"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// SupportedFormats lists the image encodings the pixel layer can read and write.
var SupportedFormats = map[string]bool{
	"png":  true,
	"jpeg": true,
	"gif":  true,
	"bmp":  true,
	"tiff": true,
}

// NormalizeFormat lowercases a format name and folds common aliases
// (jpg, tif) into their canonical names.
func NormalizeFormat(format string) string {
	switch f := strings.ToLower(strings.TrimPrefix(format, ".")); f {
	case "jpg":
		return "jpeg"
	case "tif":
		return "tiff"
	default:
		return f
	}
}

// ValidateFormat checks that format names a supported image encoding.
func ValidateFormat(format string) error {
	if !SupportedFormats[NormalizeFormat(format)] {
		return New(ErrCodeInvalidFormat, "invalid format: %q (must be one of: png, jpeg, gif, bmp, tiff)", format)
	}
	return nil
}

// ValidateImagePath validates a path to an image file on disk.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
//   - The extension must name a supported format
func ValidateImagePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	ext := filepath.Ext(path)
	if ext == "" {
		return New(ErrCodeInvalidPath, "path has no image extension: %q", path)
	}
	if err := ValidateFormat(ext); err != nil {
		return Wrap(ErrCodeInvalidPath, err, "unsupported image extension %q", ext)
	}
	return nil
}

// ValidateRecordID checks that id is a canonical UUID string.
func ValidateRecordID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "record id cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid record id %q", id)
	}
	return nil
}
