package covers

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // PNG decoder registration
	"os"
	"os/exec"
	"path/filepath"

	"github.com/rs/zerolog"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // WebP decoder registration
)

// maxCoverDimension is the longest edge after re-encoding.
const maxCoverDimension = 1024

// Compressor re-encodes cover images down to a target file size.
//
// The chain degrades through three strategies before giving up on
// compression entirely:
//
//  1. cwebp, when installed
//  2. ffmpeg, when installed
//  3. an in-process Catmull-Rom resize to JPEG
//
// If every strategy fails or still exceeds the budget, the original
// bytes are returned unchanged. A cover that is too large is better
// than no cover.
type Compressor struct {
	maxBytes int
	log      zerolog.Logger

	// lookPath and run are swappable for tests.
	lookPath func(name string) (string, error)
	run      func(ctx context.Context, name string, args ...string) error
}

// NewCompressor creates a compressor targeting maxBytes per cover.
func NewCompressor(maxBytes int, log zerolog.Logger) *Compressor {
	return &Compressor{
		maxBytes: maxBytes,
		log:      log.With().Str("component", "covers").Logger(),
		lookPath: exec.LookPath,
		run: func(ctx context.Context, name string, args ...string) error {
			return exec.CommandContext(ctx, name, args...).Run()
		},
	}
}

// Compress returns the encoded cover bytes and the file extension they
// should be stored under. Inputs already within budget pass through
// untouched.
func (c *Compressor) Compress(ctx context.Context, data []byte) ([]byte, string) {
	if len(data) <= c.maxBytes {
		return data, "webp"
	}

	if out, err := c.compressTool(ctx, data, "cwebp"); err == nil {
		return out, "webp"
	} else {
		c.log.Debug().Err(err).Msg("cwebp unavailable or failed")
	}

	if out, err := c.compressTool(ctx, data, "ffmpeg"); err == nil {
		return out, "jpg"
	} else {
		c.log.Debug().Err(err).Msg("ffmpeg unavailable or failed")
	}

	if out, err := c.reencodeJPEG(data); err == nil && len(out) <= c.maxBytes {
		return out, "jpg"
	} else if err != nil {
		c.log.Debug().Err(err).Msg("in-process re-encode failed")
	}

	c.log.Warn().Int("bytes", len(data)).Msg("storing cover uncompressed")
	return data, "webp"
}

func (c *Compressor) compressTool(ctx context.Context, data []byte, tool string) ([]byte, error) {
	if _, err := c.lookPath(tool); err != nil {
		return nil, fmt.Errorf("%s not installed", tool)
	}

	dir, err := os.MkdirTemp("", "cover-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	in := filepath.Join(dir, "in.img")
	if err := os.WriteFile(in, data, 0600); err != nil {
		return nil, err
	}

	var out string
	var args []string
	switch tool {
	case "cwebp":
		out = filepath.Join(dir, "out.webp")
		args = []string{"-quiet", "-q", "80", "-resize", "1024", "0", in, "-o", out}
	case "ffmpeg":
		out = filepath.Join(dir, "out.jpg")
		args = []string{"-y", "-loglevel", "error", "-i", in, "-vf", "scale='min(1024,iw)':-1", "-q:v", "5", out}
	default:
		return nil, fmt.Errorf("unknown tool %s", tool)
	}

	if err := c.run(ctx, tool, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", tool, err)
	}
	result, err := os.ReadFile(out)
	if err != nil {
		return nil, err
	}
	if len(result) == 0 || len(result) > c.maxBytes {
		return nil, fmt.Errorf("%s output %d bytes, budget %d", tool, len(result), c.maxBytes)
	}
	return result, nil
}

// reencodeJPEG scales the image down to maxCoverDimension on its
// longest edge and encodes it as JPEG.
func (c *Compressor) reencodeJPEG(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width > maxCoverDimension || height > maxCoverDimension {
		ratio := float64(width) / float64(height)
		if ratio > 1 {
			width = maxCoverDimension
			height = int(float64(maxCoverDimension) / ratio)
		} else {
			height = maxCoverDimension
			width = int(float64(maxCoverDimension) * ratio)
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 85}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
