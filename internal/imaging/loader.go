package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

// CodecError reports a failure to read or write an image file.
//
// Op is "decode" or "encode". The underlying error is available through
// errors.Unwrap / errors.As.
type CodecError struct {
	Op   string
	Path string
	Err  error
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("failed to %s image %q: %v", e.Op, e.Path, e.Err)
}

func (e *CodecError) Unwrap() error { return e.Err }

// Load reads an image file and returns it as a non-premultiplied RGBA buffer
// with its origin at (0,0).
//
// Supported formats are PNG, JPEG and GIF. Formats without an alpha channel
// decode as fully opaque, which leaves the whole canvas as sprite content.
//
// # Errors
//
//   - *CodecError if the file cannot be opened or decoded
func Load(path string) (*image.NRGBA, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, &CodecError{Op: "decode", Path: path, Err: err}
	}
	return ToNRGBA(img), nil
}

// ToNRGBA converts any image to an *image.NRGBA whose bounds start at (0,0).
//
// The result is always a copy, so callers may modify it freely. NRGBA
// input is copied byte for byte; other models go through draw.Src.
func ToNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok {
		return imaging.Clone(n)
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// Save encodes img as PNG to path, preserving the alpha channel. The PNG
// format is used regardless of the file extension.
//
// # Errors
//
//   - *CodecError if the file cannot be created, written or closed
func Save(img image.Image, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return &CodecError{Op: "encode", Path: path, Err: err}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = &CodecError{Op: "encode", Path: path, Err: cerr}
		}
	}()

	if err := imaging.Encode(f, img, imaging.PNG); err != nil {
		return &CodecError{Op: "encode", Path: path, Err: err}
	}
	return nil
}

// DefaultOutputPath derives the output file name for an input path by
// appending "_corrected" to the file stem and using a .png extension.
//
//	sprites/tile.png  -> sprites/tile_corrected.png
//	tile.jpeg         -> tile_corrected.png
func DefaultOutputPath(input string) string {
	dir := filepath.Dir(input)
	base := filepath.Base(input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, stem+"_corrected.png")
}
