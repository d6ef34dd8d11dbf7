// Package imaging normalizes uploaded pictures before they reach object
// storage: every stored image has fixed dimensions and a fresh random name.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"math"
	"net/http"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp"

	"storefront/internal/catalog"
)

// MaxPixels bounds the decoded size of an upload.
const MaxPixels = 40_000_000

// Fit controls how the source is mapped onto the target box.
type Fit int

const (
	// Cover fills the box and crops the overflow.
	Cover Fit = iota
	// Contain scales to fit inside the box and pads the rest with the background.
	Contain
	// Inside scales down to fit inside the box; output may be smaller than the box.
	Inside
)

// Background is what transparent pixels are flattened onto.
type Background int

const (
	Transparent Background = iota
	White
)

// Preset describes the output of one image field.
type Preset struct {
	Dir        string
	Width      int
	Height     int
	Fit        Fit
	Background Background
}

var presets = map[catalog.Field]Preset{
	catalog.HeaderIcon:           {Dir: "header", Width: 256, Height: 256, Fit: Contain, Background: Transparent},
	catalog.HeaderLogo:           {Dir: "header", Width: 600, Height: 200, Fit: Inside, Background: Transparent},
	catalog.PropagandaBigImage:   {Dir: "propagandas", Width: 1920, Height: 600, Fit: Cover, Background: White},
	catalog.PropagandaSmallImage: {Dir: "propagandas", Width: 800, Height: 600, Fit: Cover, Background: White},
	catalog.ProductImage:         {Dir: "products", Width: 800, Height: 800, Fit: Contain, Background: White},
}

// PresetFor returns the preset of an image field.
func PresetFor(f catalog.Field) (Preset, bool) {
	p, ok := presets[f]
	return p, ok
}

var accepted = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Sniff returns the detected content type, or a 400 error when it is not an
// accepted image format.
func Sniff(data []byte) (string, error) {
	ct := http.DetectContentType(data)
	if !accepted[ct] {
		return "", catalog.Invalid("unsupported image type %s", ct)
	}
	return ct, nil
}

// Result is a processed image ready for upload.
type Result struct {
	Key         string
	ContentType string
	Data        []byte
	Width       int
	Height      int
}

// Process runs data through the preset and names the result.
func Process(data []byte, p Preset) (Result, error) {
	if _, err := Sniff(data); err != nil {
		return Result{}, err
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Result{}, catalog.Invalid("image could not be decoded")
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return Result{}, catalog.Invalid("image is larger than %d megapixels", MaxPixels/1_000_000)
	}
	src, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return Result{}, catalog.Invalid("image could not be decoded")
	}

	img := resize(trim(src), p)

	var buf bytes.Buffer
	res := Result{Width: img.Bounds().Dx(), Height: img.Bounds().Dy()}
	if p.Background == White {
		flat := imaging.New(res.Width, res.Height, color.White)
		flat = imaging.Overlay(flat, img, image.Pt(0, 0), 1.0)
		err = imaging.Encode(&buf, flat, imaging.JPEG, imaging.JPEGQuality(85))
		res.ContentType = "image/jpeg"
	} else {
		err = imaging.Encode(&buf, img, imaging.PNG)
		res.ContentType = "image/png"
	}
	if err != nil {
		return Result{}, fmt.Errorf("encode image: %w", err)
	}
	res.Data = buf.Bytes()
	res.Key = p.Dir + "/" + NewName()
	return res, nil
}

// NewName returns a random 32 character hex name.
func NewName() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// trim crops fully transparent rows and columns off the edges. An image that
// is transparent everywhere is left alone.
func trim(src image.Image) image.Image {
	img := imaging.Clone(src)
	b := img.Bounds()
	minX, minY, maxX, maxY := b.Max.X, b.Max.Y, b.Min.X-1, b.Min.Y-1
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.Pix[img.PixOffset(x, y)+3] == 0 {
				continue
			}
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)
		}
	}
	if maxX < minX {
		return img
	}
	return imaging.Crop(img, image.Rect(minX, minY, maxX+1, maxY+1))
}

func resize(img image.Image, p Preset) *image.NRGBA {
	switch p.Fit {
	case Cover:
		return imaging.Fill(img, p.Width, p.Height, imaging.Center, imaging.Lanczos)
	case Inside:
		return imaging.Fit(img, p.Width, p.Height, imaging.Lanczos)
	default:
		b := img.Bounds()
		scale := math.Min(float64(p.Width)/float64(b.Dx()), float64(p.Height)/float64(b.Dy()))
		w := max(1, int(math.Round(float64(b.Dx())*scale)))
		h := max(1, int(math.Round(float64(b.Dy())*scale)))
		scaled := imaging.Resize(img, w, h, imaging.Lanczos)
		canvas := imaging.New(p.Width, p.Height, color.NRGBA{})
		return imaging.PasteCenter(canvas, scaled)
	}
}
