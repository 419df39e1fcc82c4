// Package storage persists uploaded user assets such as profile pictures.
package storage

import (
	"context"
	"errors"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	apperrors "kali/internal/errors"
)

// AssetDir is the directory, relative to the store root, holding profile pictures.
const AssetDir = "user_images"

// ErrInvalidPath is returned for asset paths that escape the store root.
var ErrInvalidPath = errors.New("invalid asset path")

// AssetStore writes, deletes and checks assets addressed by a relative slash path.
type AssetStore interface {
	Write(ctx context.Context, path string, data []byte) error
	Delete(ctx context.Context, path string) error
	Exists(ctx context.Context, path string) (bool, error)
}

// imageTypes maps the accepted image suffixes to their content types.
var imageTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".bmp":  "image/bmp",
}

// sniffedExtensions maps detected raster image types to the stored suffix.
var sniffedExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/bmp":  ".bmp",
}

// AssetPath returns the stored path of a user's profile picture. The name is
// derived from the user id and the recognized image suffix of filename; when
// the suffix is not recognized the content must sniff as a raster image,
// otherwise ErrUnsupportedMedia is returned.
func AssetPath(userID, filename string, data []byte) (string, error) {
	ext, ok := extension(filename, data)
	if !ok {
		return "", apperrors.ErrUnsupportedMedia
	}
	return path.Join(AssetDir, userID+ext), nil
}

// ContentType returns the content type an asset is served with.
func ContentType(assetPath string) string {
	if ct, ok := imageTypes[strings.ToLower(path.Ext(assetPath))]; ok {
		return ct
	}
	return "application/octet-stream"
}

func extension(filename string, data []byte) (string, bool) {
	name := filename
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	ext := strings.ToLower(path.Ext(name))
	if _, ok := imageTypes[ext]; ok {
		return ext, true
	}

	detected := mimetype.Detect(data)
	for mime, sniffed := range sniffedExtensions {
		if detected.Is(mime) {
			return sniffed, true
		}
	}
	return "", false
}

// cleanKey validates p and returns it in canonical slash form.
func cleanKey(p string) (string, error) {
	if p == "" || strings.Contains(p, `\`) {
		return "", ErrInvalidPath
	}
	cleaned := path.Clean(p)
	if path.IsAbs(cleaned) || cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrInvalidPath
	}
	return cleaned, nil
}
