package resize

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"

	log "github.com/sirupsen/logrus"
	"golang.org/x/image/draw"

	// Decoders for the recognized upload extensions.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

const (
	// MaxUploadBytes is the payload cap enforced by the hosting service.
	MaxUploadBytes = 7_600_000

	// DefaultWidth is the target used when the user confirms a resize
	// without having configured one.
	DefaultWidth = 1920

	// minWidth is the floor for the downscale loop in FitUnderCap.
	minWidth = 16

	jpegQuality = 90
)

// ErrBadImage wraps decode failures (corrupt or unsupported input).
var ErrBadImage = errors.New("cannot decode image")

// Dimensions returns the pixel width and height of the encoded image
// without decoding the full pixel data.
func Dimensions(data []byte) (int, int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrBadImage, err)
	}
	return cfg.Width, cfg.Height, nil
}

// Resize scales the image so its width equals targetWidth, height scaled
// proportionally. The source bytes are never modified. Images are never
// upscaled: a target at or above the current width returns the input
// unchanged. GIFs are re-encoded as GIF (frame by frame when animated),
// PNGs as PNG, everything else as JPEG.
func Resize(data []byte, targetWidth int) ([]byte, error) {
	if targetWidth < 1 {
		return nil, fmt.Errorf("invalid target width %d", targetWidth)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadImage, err)
	}
	if targetWidth >= cfg.Width {
		log.Debugf("Target width %d >= current width %d, skipping resize", targetWidth, cfg.Width)
		return data, nil
	}

	if format == "gif" {
		return resizeGIF(data, targetWidth, cfg.Width)
	}
	return resizeStatic(data, targetWidth, format)
}

func resizeStatic(data []byte, targetWidth int, format string) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadImage, err)
	}

	bounds := src.Bounds()
	targetHeight := scaleHeight(bounds.Dx(), bounds.Dy(), targetWidth)
	dst := image.NewRGBA(image.Rect(0, 0, targetWidth, targetHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Src, nil)

	var out bytes.Buffer
	if format == "png" {
		err = png.Encode(&out, dst)
	} else {
		err = jpeg.Encode(&out, dst, &jpeg.Options{Quality: jpegQuality})
	}
	if err != nil {
		return nil, fmt.Errorf("encoding resized image: %w", err)
	}

	log.Debugf("Resized %dx%d -> %dx%d (%s, %d bytes)",
		bounds.Dx(), bounds.Dy(), targetWidth, targetHeight, format, out.Len())
	return out.Bytes(), nil
}

// resizeGIF scales every frame, preserving delays, disposal and loop
// count. Frame rectangles are scaled by the same ratio as the canvas so
// partial-frame animations keep their layout.
func resizeGIF(data []byte, targetWidth, origWidth int) ([]byte, error) {
	src, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadImage, err)
	}

	ratio := float64(targetWidth) / float64(origWidth)
	out := &gif.GIF{
		Image:     make([]*image.Paletted, 0, len(src.Image)),
		Delay:     src.Delay,
		Disposal:  src.Disposal,
		LoopCount: src.LoopCount,
	}
	out.Config = image.Config{
		ColorModel: src.Config.ColorModel,
		Width:      scaleDim(src.Config.Width, ratio),
		Height:     scaleDim(src.Config.Height, ratio),
	}

	for _, frame := range src.Image {
		r := frame.Bounds()
		dstRect := image.Rect(
			scaleDim(r.Min.X, ratio), scaleDim(r.Min.Y, ratio),
			scaleDim(r.Max.X, ratio), scaleDim(r.Max.Y, ratio),
		)
		dst := image.NewPaletted(dstRect, frame.Palette)
		draw.NearestNeighbor.Scale(dst, dstRect, frame, r, draw.Src, nil)
		out.Image = append(out.Image, dst)
	}

	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, out); err != nil {
		return nil, fmt.Errorf("encoding resized GIF: %w", err)
	}
	log.Debugf("Resized GIF %d frame(s) to width %d (%d bytes)", len(out.Image), targetWidth, buf.Len())
	return buf.Bytes(), nil
}

// FitUnderCap downscales the image starting at startWidth, halving the
// width until the encoded output fits maxBytes or the width floor is
// reached. The best effort is returned even if it still exceeds the cap;
// the service rejection is then reported per item.
func FitUnderCap(data []byte, startWidth, maxBytes int) ([]byte, error) {
	width, _, err := Dimensions(data)
	if err != nil {
		return nil, err
	}

	w := startWidth
	if w >= width {
		w = width / 2
	}
	if w < minWidth {
		w = minWidth
	}

	out, err := Resize(data, w)
	if err != nil {
		return nil, err
	}
	for len(out) > maxBytes && w/2 >= minWidth {
		w /= 2
		log.Warnf("Image size is still too big (%d bytes), retrying at width %d", len(out), w)
		out, err = Resize(data, w)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func scaleHeight(w, h, targetWidth int) int {
	th := int(float64(targetWidth)*float64(h)/float64(w) + 0.5)
	if th < 1 {
		th = 1
	}
	return th
}

func scaleDim(v int, ratio float64) int {
	s := int(float64(v)*ratio + 0.5)
	if s < 0 {
		s = 0
	}
	return s
}
