// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskTrack Contributors

// Package avatar turns uploaded profile pictures into square PNG images.
package avatar

import (
	"bytes"
	"image"
	_ "image/jpeg" // register decoder
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/image/draw"

	"github.com/tasktrack/tasktrack/pkg/errutil"
)

// Defaults used when a Normalizer is built with zero values.
const (
	DefaultSize     = 500
	DefaultMaxBytes = 1 << 20
)

// MaxPixels bounds the canvas an upload may declare. Compressed images can
// claim far more pixels than their byte size suggests.
const MaxPixels = 40_000_000

// ContentType of every normalized avatar.
const ContentType = "image/png"

// Public errors.
var (
	ErrUnsupportedFormat = errutil.Validation("Please upload an image")
	ErrTooLarge          = errutil.Validation("File too large")
	ErrEmpty             = errutil.Validation("Please upload an image")
)

var allowedExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}

// AllowedName reports whether filename carries an accepted image extension.
func AllowedName(filename string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// Normalizer decodes, resizes and re-encodes avatar uploads.
type Normalizer struct {
	size     int
	maxBytes int64
}

// NewNormalizer returns a Normalizer producing size×size images from uploads
// of at most maxBytes.
func NewNormalizer(size int, maxBytes int64) *Normalizer {
	if size <= 0 {
		size = DefaultSize
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Normalizer{size: size, maxBytes: maxBytes}
}

// Size is the edge length of normalized images.
func (n *Normalizer) Size() int { return n.size }

// MaxBytes is the largest accepted upload.
func (n *Normalizer) MaxBytes() int64 { return n.maxBytes }

// Normalize reads an upload and returns PNG bytes.
func (n *Normalizer) Normalize(r io.Reader) ([]byte, error) {
	raw, err := io.ReadAll(io.LimitReader(r, n.maxBytes+1))
	if err != nil {
		return nil, oops.Code("AVATAR_READ_FAILED").Wrap(err)
	}
	if len(raw) == 0 {
		return nil, oops.Code("AVATAR_EMPTY").Wrap(ErrEmpty)
	}
	if int64(len(raw)) > n.maxBytes {
		return nil, oops.Code("AVATAR_TOO_LARGE").With("max_bytes", n.maxBytes).Wrap(ErrTooLarge)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, oops.Code("AVATAR_FORMAT_INVALID").With("decode_error", err.Error()).Wrap(ErrUnsupportedFormat)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, oops.Code("AVATAR_DIMENSIONS_TOO_LARGE").
			With("width", cfg.Width).
			With("height", cfg.Height).
			Wrap(ErrTooLarge)
	}

	src, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, oops.Code("AVATAR_FORMAT_INVALID").With("decode_error", err.Error()).Wrap(ErrUnsupportedFormat)
	}

	dst := image.NewRGBA(image.Rect(0, 0, n.size, n.size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	var out bytes.Buffer
	if err := png.Encode(&out, dst); err != nil {
		return nil, oops.Code("AVATAR_ENCODE_FAILED").With("source_format", format).Wrap(err)
	}
	return out.Bytes(), nil
}
