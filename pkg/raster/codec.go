package raster

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/augment/pkg/errors"
)

// DefaultQuality is the JPEG quality used when none is given.
const DefaultQuality = 95

var formats = map[string]imaging.Format{
	"png":  imaging.PNG,
	"jpeg": imaging.JPEG,
	"gif":  imaging.GIF,
	"bmp":  imaging.BMP,
	"tiff": imaging.TIFF,
}

// FormatOf resolves a format name or file extension ("jpg", ".PNG") to its
// canonical name.
func FormatOf(name string) (string, error) {
	f := errors.NormalizeFormat(name)
	if _, ok := formats[f]; !ok {
		return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported image format %q", name)
	}
	return f, nil
}

// FormatFromPath resolves the format of path from its extension.
func FormatFromPath(path string) (string, error) {
	return FormatOf(filepath.Ext(path))
}

// Decode reads an image and reports the name of its encoding.
// EXIF orientation is applied so pixel coordinates match what viewers show.
func Decode(r io.Reader) (image.Image, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", fmt.Errorf("read image: %w", err)
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeInvalidFormat, err, "unrecognized image data")
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s", format)
	}
	return img, format, nil
}

// Open decodes the image stored at path.
func Open(path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", errors.Wrap(errors.ErrCodeFileNotFound, err, "image not found: %s", path)
		}
		return nil, "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	img, format, err := Decode(f)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", path, err)
	}
	return img, format, nil
}

// Encode writes img to w in the named format. quality only affects jpeg;
// values outside 1..100 fall back to [DefaultQuality].
func Encode(w io.Writer, img image.Image, format string, quality int) error {
	f, err := FormatOf(format)
	if err != nil {
		return err
	}
	if quality < 1 || quality > 100 {
		quality = DefaultQuality
	}
	if err := imaging.Encode(w, img, formats[f], imaging.JPEGQuality(quality)); err != nil {
		return fmt.Errorf("encode %s: %w", f, err)
	}
	return nil
}

// EncodeBytes is [Encode] into a new byte slice.
func EncodeBytes(img image.Image, format string, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, format, quality); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save encodes img to path, choosing the format from the extension.
func Save(path string, img image.Image, quality int) error {
	if err := errors.ValidateImagePath(path); err != nil {
		return err
	}
	if quality < 1 || quality > 100 {
		quality = DefaultQuality
	}
	if err := imaging.Save(img, path, imaging.JPEGQuality(quality)); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
